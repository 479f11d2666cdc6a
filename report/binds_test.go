package report

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractBindNames(t *testing.T) {

	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "no binds",
			sql:  "SELECT * FROM invoices",
			want: nil,
		},
		{
			name: "single bind",
			sql:  "SELECT * FROM invoices WHERE client_no = :client",
			want: []string{"client"},
		},
		{
			name: "dedupe keeps first occurrence order",
			sql:  "SELECT :b, :a FROM t WHERE x = :b AND y = :a",
			want: []string{"b", "a"},
		},
		{
			name: "underscores and digits",
			sql:  "WHERE d BETWEEN :date_from AND :date_to2",
			want: []string{"date_from", "date_to2"},
		},
		{
			name: "bare colon is not a bind",
			sql:  "SELECT 'a:' || ':' FROM t",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractBindNames(tt.sql)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("unexpected bind names (-want +got):\n%s", diff)
			}
		})
	}
}

// scriptPrompter answers Ask from a scripted value list; a value of
// "!decline" declines. Confirm always answers confirmAnswer.
type scriptPrompter struct {
	answers       []string
	asked         []string
	confirmAnswer bool
	confirmed     []string
}

func (p *scriptPrompter) Ask(ctx context.Context, name string) (string, bool, error) {
	p.asked = append(p.asked, name)
	if len(p.answers) == 0 {
		return "", false, errors.New("scripted prompter exhausted")
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	if answer == "!decline" {
		return "", false, nil
	}
	return answer, true, nil
}

func (p *scriptPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	p.confirmed = append(p.confirmed, question)
	return p.confirmAnswer, nil
}

func TestCollectBinds(t *testing.T) {

	prompter := &scriptPrompter{answers: []string{"3", ""}}
	got, err := CollectBinds(context.Background(), prompter, []string{"client", "city"})
	if err != nil {
		t.Fatal(err)
	}
	// an empty answer is a legitimate value
	want := map[string]string{"client": "3", "city": ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected binds (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"client", "city"}, prompter.asked); diff != "" {
		t.Errorf("unexpected prompt order (-want +got):\n%s", diff)
	}
}

func TestCollectBindsEmpty(t *testing.T) {

	prompter := &scriptPrompter{}
	got, err := CollectBinds(context.Background(), prompter, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected an empty non-nil set, got %v", got)
	}
	if len(prompter.asked) != 0 {
		t.Error("expected no prompting for an empty name list")
	}
}

func TestCollectBindsCancelled(t *testing.T) {

	prompter := &scriptPrompter{answers: []string{"3", "!decline"}}
	got, err := CollectBinds(context.Background(), prompter, []string{"a", "b", "c"})
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no partial bind set, got %v", got)
	}
	// collection stops at the declined bind
	if len(prompter.asked) != 2 {
		t.Errorf("expected prompting to stop after the decline, asked %v", prompter.asked)
	}
}
