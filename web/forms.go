package web

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/gorilla/schema"

	"salesadmin/report"
)

// ------------------------------------------------------------------------------
// Helpers
// ------------------------------------------------------------------------------

// Validator holds a map of validation errors, keyed by the form field name.
type Validator struct {
	Errors map[string]string
}

// NewValidator creates a new, initialized Validator.
func NewValidator() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if the Errors map is empty.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError adds an error message to the map for a given field if one
// doesn't already exist for that field.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Check is a helper for conditional validation. If `ok` is false, it
// calls AddError with the provided key and message.
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// FieldError is a helper to check if the specified field has triggered
// an error.
func (v *Validator) FieldError(field string) bool {
	_, ok := v.Errors[field]
	return ok
}

// ------------------------------------------------------------------------------
// URL parameter parsing, using gorilla mux.Vars
// ------------------------------------------------------------------------------

// validMuxVars checks that the required keys are in the url route
// variable parameters, such as the `id` in
//
//	"/invoice/{id:[0-9]+}"
func validMuxVars(vars map[string]string, keys ...string) (map[string]string, error) {
	for _, key := range keys {
		if _, ok := vars[key]; !ok {
			return nil, fmt.Errorf("parameter %q missing", key)
		}
	}
	return vars, nil
}

// ------------------------------------------------------------------------------
// Forms
// ------------------------------------------------------------------------------

// SearchForm represents the URL query parameter filters for the
// invoice listing.
type SearchForm struct {
	Status       string    `schema:"status"`
	DateFrom     time.Time `schema:"date-from"`
	DateTo       time.Time `schema:"date-to"`
	SearchString string    `schema:"search"`
	Page         int       `schema:"page"`
}

// defaultDateToAndFrom sets the default dateFrom and dateTo dates to
// the current calendar year.
func defaultDateToAndFrom() (time.Time, time.Time) {
	year := time.Now().UTC().Year()
	df := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	dt := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return df, dt
}

// NewSearchForm creates a SearchForm with defaults.
func NewSearchForm() *SearchForm {
	dateFrom, dateTo := defaultDateToAndFrom()
	return &SearchForm{
		Status:   "All",
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Page:     1, // 1-based pagination.
	}
}

// Validate checks SearchForm fields and populates Validator with any
// errors. Note that the `Check` is like an assertion of truth; if that
// fails, the provided message is recorded against the field.
func (f *SearchForm) Validate(v *Validator) {

	allowedStatus := map[string]bool{
		"All": true, "Pending": true, "Paid": true, "Cancelled": true,
	}
	v.Check(allowedStatus[f.Status], "status", "Invalid status value provided.")

	v.Check(!f.DateTo.Before(f.DateFrom), "date-to", "End date cannot be before the start date.")
	v.Check(!f.DateFrom.IsZero(), "date-from", "From date must be provided.")

	if f.Page < 1 {
		f.Page = 1
	}
}

// Offset calculates the database offset for (1-based) pagination.
func (f *SearchForm) Offset() int {
	return (f.Page - 1) * pageLen
}

// TemplateForm is the report template draft form.
type TemplateForm struct {
	Name string `schema:"name"`
	SQL  string `schema:"sql"`
}

// CheckTemplateForm decodes a posted template draft.
func CheckTemplateForm(postData url.Values) (*TemplateForm, error) {
	var form TemplateForm
	decoder := newSchemaDecoder()
	if err := decoder.Decode(&form, postData); err != nil {
		return nil, fmt.Errorf("post data decoding error: %v", err)
	}
	return &form, nil
}

// Validate validates the template draft form; both fields are required
// for a save.
func (f *TemplateForm) Validate(v *Validator) {
	v.Check(strings.TrimSpace(f.Name) != "", "name", "A template name is required.")
	v.Check(strings.TrimSpace(f.SQL) != "", "sql", "A sql query is required.")
}

// bindField is the form field name carrying the value for one named
// bind parameter.
func bindField(name string) string {
	return "bind-" + name
}

// CheckBindValues collects the bind values for names from posted form
// data, returning the completed set or the names still missing. An
// empty submitted value is a legitimate bind value; a missing field is
// not.
func CheckBindValues(postData url.Values, names []string) (binds map[string]string, missing []string) {
	binds = make(map[string]string, len(names))
	for _, name := range names {
		values, ok := postData[bindField(name)]
		if !ok || len(values) == 0 {
			missing = append(missing, name)
			continue
		}
		binds[name] = values[0]
	}
	if len(missing) > 0 {
		return nil, missing
	}
	return binds, nil
}

// bindInput pairs a bind name with its form field name for the bind
// collection form.
type bindInput struct {
	Name  string
	Field string
}

func bindInputs(names []string) []bindInput {
	inputs := make([]bindInput, len(names))
	for i, name := range names {
		inputs[i] = bindInput{Name: name, Field: bindField(name)}
	}
	return inputs
}

// templateBindInputs derives the bind collection inputs for sql text.
func templateBindInputs(sql string) []bindInput {
	return bindInputs(report.ExtractBindNames(sql))
}

// ------------------------------------------------------------------------------
// General decoding funcs
// ------------------------------------------------------------------------------

// newSchemaDecoder creates a new schema.Decoder instance and registers
// a custom converter for the time.Time type.
func newSchemaDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	decoder.RegisterConverter(time.Time{}, func(value string) reflect.Value {
		t, err := time.Parse("2006-01-02", value) // other patterns can be tried here.
		if err != nil {
			return reflect.ValueOf(time.Time{})
		}
		return reflect.ValueOf(t)
	})

	return decoder
}

// DecodeURLParams is a helper that decodes URL query parameters from a
// request into a destination struct (dst).
func DecodeURLParams(r *http.Request, dst any) error {
	decoder := newSchemaDecoder()
	if err := decoder.Decode(dst, r.URL.Query()); err != nil {
		return fmt.Errorf("url parameter decoding error: %v", err)
	}
	return nil
}
