package report

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"salesadmin/apiclient"
)

// fakeReportAPI serves a canned catalog and records report calls.
type fakeReportAPI struct {
	templates []apiclient.ReportTemplate
	rows      []apiclient.Row
	export    []byte

	templatesErr error
	createErr    error
	runErr       error
	previewErr   error

	created     []string
	deleted     []apiclient.Key
	runBinds    []map[string]string
	exportBinds []map[string]string
	previewed   []string
}

func (f *fakeReportAPI) ReportTemplates(ctx context.Context) ([]apiclient.ReportTemplate, error) {
	return f.templates, f.templatesErr
}

func (f *fakeReportAPI) CreateReportTemplate(ctx context.Context, name, sqlQuery string) (apiclient.ReportTemplate, error) {
	f.created = append(f.created, name)
	return apiclient.ReportTemplate{TemplateID: "100", Name: name, SQLQuery: sqlQuery}, f.createErr
}

func (f *fakeReportAPI) DeleteReportTemplate(ctx context.Context, id apiclient.Key) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeReportAPI) RunReport(ctx context.Context, id apiclient.Key, binds map[string]string) ([]apiclient.Row, error) {
	f.runBinds = append(f.runBinds, binds)
	return f.rows, f.runErr
}

func (f *fakeReportAPI) ExportReport(ctx context.Context, id apiclient.Key, format apiclient.ReportFormat, binds map[string]string) ([]byte, error) {
	f.exportBinds = append(f.exportBinds, binds)
	return f.export, nil
}

func (f *fakeReportAPI) PreviewQuery(ctx context.Context, sqlQuery string) ([]apiclient.Row, error) {
	f.previewed = append(f.previewed, sqlQuery)
	return f.rows, f.previewErr
}

func testCatalog() []apiclient.ReportTemplate {
	return []apiclient.ReportTemplate{
		{TemplateID: "1", Name: "all invoices", SQLQuery: "SELECT * FROM invoices"},
		{TemplateID: "2", Name: "by client",
			SQLQuery: "SELECT * FROM invoices WHERE client_no = :client"},
	}
}

func testEngine(t *testing.T, api *fakeReportAPI, prompter Prompter) *Engine {
	t.Helper()
	e := NewEngine(api, prompter, t.TempDir(), nil)
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestEngineRefresh(t *testing.T) {

	api := &fakeReportAPI{templates: testCatalog()}
	e := testEngine(t, api, &scriptPrompter{})

	if len(e.Templates()) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(e.Templates()))
	}
	if _, ok := e.Template("2"); !ok {
		t.Error("expected to find template 2")
	}
	if _, ok := e.Template("99"); ok {
		t.Error("did not expect to find template 99")
	}
}

func TestEngineSaveTemplate(t *testing.T) {

	api := &fakeReportAPI{templates: testCatalog()}
	e := testEngine(t, api, &scriptPrompter{})

	// both fields are required and checked before any network call
	for _, draft := range []Draft{
		{},
		{Name: "x"},
		{SQL: "SELECT 1"},
		{Name: "  ", SQL: "SELECT 1"},
	} {
		e.SetDraft(draft)
		if err := e.SaveTemplate(context.Background()); !errors.Is(err, ErrValidation) {
			t.Errorf("draft %+v: expected ErrValidation, got %v", draft, err)
		}
	}
	if len(api.created) != 0 {
		t.Fatal("expected no create calls for invalid drafts")
	}

	e.SetDraft(Draft{Name: "by city", SQL: "SELECT * FROM clients WHERE city = :city"})
	e.setPreview(&Preview{Rows: []apiclient.Row{}})
	if err := e.SaveTemplate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"by city"}, api.created); diff != "" {
		t.Errorf("unexpected creates (-want +got):\n%s", diff)
	}
	if e.Draft() != (Draft{}) {
		t.Error("expected the draft to be cleared after a save")
	}
	if e.Preview() != nil {
		t.Error("expected the preview to be cleared after a save")
	}
}

func TestEngineDeleteTemplate(t *testing.T) {

	api := &fakeReportAPI{templates: testCatalog()}
	prompter := &scriptPrompter{confirmAnswer: false}
	e := testEngine(t, api, prompter)

	// declined confirmation cancels without a network call
	if err := e.DeleteTemplate(context.Background(), "1"); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if len(api.deleted) != 0 {
		t.Fatal("expected no delete call after a declined confirmation")
	}

	prompter.confirmAnswer = true
	e.setPreview(&Preview{TemplateID: "1"})
	if err := e.DeleteTemplate(context.Background(), "1"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]apiclient.Key{"1"}, api.deleted); diff != "" {
		t.Errorf("unexpected deletes (-want +got):\n%s", diff)
	}
	if e.Preview() != nil {
		t.Error("expected the deleted template's preview to be cleared")
	}
}

func TestEnginePreviewTemplate(t *testing.T) {

	rows := []apiclient.Row{
		{Columns: []string{"INVOICENO"}, Values: map[string]any{"INVOICENO": "41"}},
	}
	api := &fakeReportAPI{templates: testCatalog(), rows: rows}
	prompter := &scriptPrompter{answers: []string{"3"}}
	e := testEngine(t, api, prompter)

	if err := e.PreviewTemplate(context.Background(), "2"); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"client": "3"}
	if diff := cmp.Diff([]map[string]string{want}, api.runBinds); diff != "" {
		t.Errorf("unexpected run binds (-want +got):\n%s", diff)
	}
	p := e.Preview()
	if p == nil || p.TemplateID != "2" || len(p.Rows) != 1 {
		t.Fatalf("unexpected preview %+v", p)
	}

	// a bind-free template runs without prompting
	if err := e.PreviewTemplate(context.Background(), "1"); err != nil {
		t.Fatal(err)
	}
	if len(prompter.asked) != 1 {
		t.Errorf("expected no further prompts, asked %v", prompter.asked)
	}
}

func TestEnginePreviewTemplateCancelled(t *testing.T) {

	api := &fakeReportAPI{templates: testCatalog()}
	prompter := &scriptPrompter{answers: []string{"!decline"}}
	e := testEngine(t, api, prompter)

	e.setPreview(&Preview{TemplateID: "1"})
	err := e.PreviewTemplate(context.Background(), "2")
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if len(api.runBinds) != 0 {
		t.Error("expected no run after a cancelled bind collection")
	}
	if e.Preview() == nil {
		t.Error("expected a cancellation to leave the previous preview in place")
	}
}

func TestEnginePreviewTemplateFailure(t *testing.T) {

	api := &fakeReportAPI{templates: testCatalog(), runErr: errors.New("no such table: t")}
	e := testEngine(t, api, &scriptPrompter{})

	e.setPreview(&Preview{TemplateID: "1"})
	err := e.PreviewTemplate(context.Background(), "1")
	if err == nil {
		t.Fatal("expected an error")
	}
	if e.Preview() != nil {
		t.Error("expected a failed run to clear the preview")
	}
}

func TestEnginePreviewDraft(t *testing.T) {

	api := &fakeReportAPI{templates: testCatalog()}
	prompter := &scriptPrompter{answers: []string{"o'brien"}}
	e := testEngine(t, api, prompter)

	e.SetDraft(Draft{SQL: "SELECT * FROM clients WHERE city = :city"})
	if err := e.PreviewDraft(context.Background()); err != nil {
		t.Fatal(err)
	}

	// binds are inlined as quoted literals, with quotes escaped
	want := []string{"SELECT * FROM clients WHERE city = 'o''brien'"}
	if diff := cmp.Diff(want, api.previewed); diff != "" {
		t.Errorf("unexpected preview sql (-want +got):\n%s", diff)
	}
	p := e.Preview()
	if p == nil || p.TemplateID != "" {
		t.Fatalf("expected a draft preview, got %+v", p)
	}

	e.SetDraft(Draft{})
	if err := e.PreviewDraft(context.Background()); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for an empty draft, got %v", err)
	}
}

func TestEngineGenerate(t *testing.T) {

	api := &fakeReportAPI{templates: testCatalog(), export: []byte("PK\x03\x04")}
	prompter := &scriptPrompter{answers: []string{"3"}}
	e := testEngine(t, api, prompter)

	filePath, err := e.Generate(context.Background(), "2", apiclient.FormatExcel)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(filePath) != "report.xlsx" {
		t.Errorf("expected report.xlsx, got %s", filePath)
	}
	want := map[string]string{"client": "3"}
	if diff := cmp.Diff([]map[string]string{want}, api.exportBinds); diff != "" {
		t.Errorf("unexpected export binds (-want +got):\n%s", diff)
	}

	if _, err := e.Generate(context.Background(), "1", "csv"); err == nil {
		t.Error("expected an error for an unknown format")
	}
	if _, err := e.Generate(context.Background(), "99", apiclient.FormatPDF); err == nil {
		t.Error("expected an error for an unknown template")
	}
}
