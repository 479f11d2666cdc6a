package db

// This functions.go registers a REGEXP function as set out in the
// package docs for modernc.org/sqlite.RegisterFunction and
// modernc.org/sqlite.FunctionImpl. The function backs the text search
// in invoices.sql and is available to report template sql run locally.
//
// Note that a cached regexp might be worth implementing.

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"modernc.org/sqlite"
)

var registerOnce sync.Once

// RegisterFunctions registers the custom Go function with the sqlite
// driver. Refer to the sqlite `func_test.go` test for further examples.
func RegisterFunctions() {
	registerOnce.Do(func() {
		sqlite.MustRegisterDeterministicScalarFunction(
			// Register the function "REGEXP" globally for all connections.
			"REGEXP",
			2,
			func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
				var s1 string
				var s2 string

				switch arg0 := args[0].(type) {
				case string:
					s1 = arg0
				default:
					return nil, errors.New("expected argv[0] to be text")
				}

				switch arg1 := args[1].(type) {
				case string:
					s2 = arg1
				default:
					return nil, errors.New("expected argv[1] to be text")
				}

				matched, err := regexp.MatchString(s1, s2)
				if err != nil {
					return nil, fmt.Errorf("bad regular expression: %q", err)
				}

				return matched, nil
			},
		)
	})
}
