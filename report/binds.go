// Package report provides the parameterized SQL report template
// engine: bind name extraction from template text, interactive bind
// value collection, and the catalog of saved templates with preview
// and file generation against the backend.
package report

import (
	"context"
	"errors"
	"regexp"
)

// ErrCancelled reports that the user declined to supply a bind value,
// aborting the operation with no partial bind set.
var ErrCancelled = errors.New("report cancelled")

// bindPattern matches named bind parameters such as :customer_id in
// template sql. A colon followed by anything other than a word
// character is not a bind. Note that the trailing part of a "::int"
// style sql cast does match, so casts are not supported in template
// sql.
var bindPattern = regexp.MustCompile(`:\w+`)

// ExtractBindNames returns the named bind parameters in sql without
// their leading colons, deduplicated, in first-occurrence order. Sql
// with no binds returns nil.
func ExtractBindNames(sql string) []string {
	var names []string
	seen := map[string]bool{}
	for _, match := range bindPattern.FindAllString(sql, -1) {
		name := match[1:]
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// A Prompter supplies bind values and confirmations interactively. Ask
// returns ok false when the user declines to answer; an empty answer
// with ok true is a legitimate value. Implementations include the
// terminal prompter in the command line binary and the form-driven
// prompter in the web front end.
type Prompter interface {
	Ask(ctx context.Context, name string) (value string, ok bool, err error)
	Confirm(ctx context.Context, question string) (bool, error)
}

// CollectBinds prompts for each bind name in order and returns the
// completed name to value set. A declined prompt aborts the whole
// collection with ErrCancelled; no partial set is ever returned. An
// empty names list returns an empty, non-nil set without prompting.
func CollectBinds(ctx context.Context, prompter Prompter, names []string) (map[string]string, error) {
	binds := make(map[string]string, len(names))
	for _, name := range names {
		value, ok, err := prompter.Ask(ctx, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrCancelled
		}
		binds[name] = value
	}
	return binds, nil
}
