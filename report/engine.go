package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"salesadmin/apiclient"
)

// ErrValidation reports a template draft which cannot be saved.
var ErrValidation = errors.New("validation failed")

// ReportAPI is the subset of the backend client used by the Engine.
type ReportAPI interface {
	ReportTemplates(ctx context.Context) ([]apiclient.ReportTemplate, error)
	CreateReportTemplate(ctx context.Context, name, sqlQuery string) (apiclient.ReportTemplate, error)
	DeleteReportTemplate(ctx context.Context, id apiclient.Key) error
	RunReport(ctx context.Context, id apiclient.Key, binds map[string]string) ([]apiclient.Row, error)
	ExportReport(ctx context.Context, id apiclient.Key, format apiclient.ReportFormat, binds map[string]string) ([]byte, error)
	PreviewQuery(ctx context.Context, sqlQuery string) ([]apiclient.Row, error)
}

// Draft is a not-yet-saved report template being edited.
type Draft struct {
	Name string
	SQL  string
}

// Preview is the result grid of the most recent template run or draft
// test run. TemplateID is empty for a draft preview.
type Preview struct {
	TemplateID apiclient.Key
	Rows       []apiclient.Row
}

// Engine manages the saved report template catalog, the template
// draft, and the current preview grid. Bind values are collected
// through the Prompter before any report runs. Methods are safe for
// concurrent use.
type Engine struct {
	api         ReportAPI
	prompter    Prompter
	downloadDir string
	log         *slog.Logger

	mu        sync.Mutex
	templates []apiclient.ReportTemplate
	draft     Draft
	preview   *Preview
}

// NewEngine makes a report engine. Generated report files are written
// to downloadDir.
func NewEngine(api ReportAPI, prompter Prompter, downloadDir string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		api:         api,
		prompter:    prompter,
		downloadDir: downloadDir,
		log:         logger,
	}
}

// Refresh fetches the saved template catalog from the backend.
func (e *Engine) Refresh(ctx context.Context) error {
	templates, err := e.api.ReportTemplates(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch report templates: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates = templates
	return nil
}

// Templates returns the catalog from the last Refresh.
func (e *Engine) Templates() []apiclient.ReportTemplate {
	e.mu.Lock()
	defer e.mu.Unlock()
	templates := make([]apiclient.ReportTemplate, len(e.templates))
	copy(templates, e.templates)
	return templates
}

// Template finds a template in the catalog by id.
func (e *Engine) Template(id apiclient.Key) (apiclient.ReportTemplate, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, tpl := range e.templates {
		if tpl.TemplateID == id {
			return tpl, true
		}
	}
	return apiclient.ReportTemplate{}, false
}

// SetDraft replaces the template draft under edit.
func (e *Engine) SetDraft(draft Draft) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = draft
}

// Draft returns the template draft under edit.
func (e *Engine) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Preview returns the current preview grid, or nil when there is none.
func (e *Engine) Preview() *Preview {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.preview
}

func (e *Engine) setPreview(p *Preview) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.preview = p
}

// SaveTemplate saves the current draft as a new template. Both the
// name and the sql are required; a draft failing validation returns an
// ErrValidation error before any network call. On success the draft
// and preview are cleared and the catalog refreshed.
func (e *Engine) SaveTemplate(ctx context.Context) error {
	draft := e.Draft()
	if strings.TrimSpace(draft.Name) == "" {
		return fmt.Errorf("%w: a template name is required", ErrValidation)
	}
	if strings.TrimSpace(draft.SQL) == "" {
		return fmt.Errorf("%w: a template sql query is required", ErrValidation)
	}

	tpl, err := e.api.CreateReportTemplate(ctx, draft.Name, draft.SQL)
	if err != nil {
		return fmt.Errorf("could not save template %q: %w", draft.Name, err)
	}
	e.log.Info("saved report template", "id", tpl.TemplateID, "name", draft.Name)

	e.SetDraft(Draft{})
	e.setPreview(nil)
	return e.Refresh(ctx)
}

// DeleteTemplate deletes a saved template after confirmation. A
// declined confirmation returns ErrCancelled without a network call.
// When the preview showed the deleted template it is cleared.
func (e *Engine) DeleteTemplate(ctx context.Context, id apiclient.Key) error {
	tpl, ok := e.Template(id)
	if !ok {
		return fmt.Errorf("no template with id %s", id)
	}

	confirmed, err := e.prompter.Confirm(ctx,
		fmt.Sprintf("delete report template %q?", tpl.Name))
	if err != nil {
		return err
	}
	if !confirmed {
		return ErrCancelled
	}

	if err := e.api.DeleteReportTemplate(ctx, id); err != nil {
		return fmt.Errorf("could not delete template %q: %w", tpl.Name, err)
	}
	e.log.Info("deleted report template", "id", id, "name", tpl.Name)

	if p := e.Preview(); p != nil && p.TemplateID == id {
		e.setPreview(nil)
	}
	return e.Refresh(ctx)
}

// PreviewTemplate runs a saved template and stores its result grid as
// the current preview. Bind values are collected first; a declined
// bind returns ErrCancelled and leaves the previous preview in place.
// A failed run clears the preview and surfaces the backend's message.
func (e *Engine) PreviewTemplate(ctx context.Context, id apiclient.Key) error {
	tpl, ok := e.Template(id)
	if !ok {
		return fmt.Errorf("no template with id %s", id)
	}

	binds, err := CollectBinds(ctx, e.prompter, ExtractBindNames(tpl.SQLQuery))
	if err != nil {
		return err
	}

	rows, err := e.api.RunReport(ctx, id, binds)
	if err != nil {
		e.setPreview(nil)
		return fmt.Errorf("report %q failed: %w", tpl.Name, err)
	}
	e.log.Info("previewed report", "id", id, "name", tpl.Name, "rows", len(rows))
	e.setPreview(&Preview{TemplateID: id, Rows: rows})
	return nil
}

// PreviewDraft test-runs the draft's sql and stores its result grid as
// the current preview. Bind values are collected as they are for saved
// templates; because the backend preview endpoint takes raw sql, the
// collected values are inlined as quoted literals before the run.
func (e *Engine) PreviewDraft(ctx context.Context) error {
	draft := e.Draft()
	if strings.TrimSpace(draft.SQL) == "" {
		return fmt.Errorf("%w: a sql query is required", ErrValidation)
	}

	binds, err := CollectBinds(ctx, e.prompter, ExtractBindNames(draft.SQL))
	if err != nil {
		return err
	}

	rows, err := e.api.PreviewQuery(ctx, InlineBinds(draft.SQL, binds))
	if err != nil {
		e.setPreview(nil)
		return fmt.Errorf("draft query failed: %w", err)
	}
	e.setPreview(&Preview{Rows: rows})
	return nil
}

// ExportPreviewXLSX writes the current preview grid to an xlsx
// spreadsheet at filePath.
func (e *Engine) ExportPreviewXLSX(filePath string) error {
	p := e.Preview()
	if p == nil {
		return errors.New("there is no preview to export")
	}
	return WriteXLSX(p.Rows, filePath)
}

// InlineBinds replaces each :name bind in sql with its value as a
// single-quoted literal, escaping embedded quotes. It is used where a
// query must travel as raw sql, such as the backend's draft preview
// endpoint.
func InlineBinds(sql string, binds map[string]string) string {
	return bindPattern.ReplaceAllStringFunc(sql, func(match string) string {
		value, ok := binds[match[1:]]
		if !ok {
			return match
		}
		return "'" + strings.ReplaceAll(value, "'", "''") + "'"
	})
}

// Generate runs a saved template on the backend in the named format
// and writes the returned file into the engine's download directory,
// returning the written path. Bind values are collected first.
func (e *Engine) Generate(ctx context.Context, id apiclient.Key, format apiclient.ReportFormat) (string, error) {
	if !format.Valid() {
		return "", fmt.Errorf("unknown report format %q", format)
	}
	tpl, ok := e.Template(id)
	if !ok {
		return "", fmt.Errorf("no template with id %s", id)
	}

	binds, err := CollectBinds(ctx, e.prompter, ExtractBindNames(tpl.SQLQuery))
	if err != nil {
		return "", err
	}

	contents, err := e.api.ExportReport(ctx, id, format, binds)
	if err != nil {
		return "", fmt.Errorf("report export %q failed: %w", tpl.Name, err)
	}

	filePath := filepath.Join(e.downloadDir, format.Filename())
	if err := os.WriteFile(filePath, contents, 0o644); err != nil {
		return "", fmt.Errorf("could not write report file: %w", err)
	}
	e.log.Info("generated report", "id", id, "name", tpl.Name, "file", filePath)
	return filePath, nil
}
