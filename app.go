package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	charmlog "github.com/charmbracelet/log"

	"salesadmin/apiclient"
	"salesadmin/config"
	"salesadmin/db"
	"salesadmin/invoice"
	"salesadmin/report"
	"salesadmin/web"
)

// App is the central orchestrator for the application's business logic.
// It coordinates the configuration, the backend API client, the local
// database and the report engine.
type App struct {
	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer
}

// NewApp creates and returns a new App instance writing to the standard
// streams.
func NewApp() *App {
	charm := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
	})
	return &App{
		logger: slog.New(charm),
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
}

// setup loads the configuration and builds the backend API client.
func (a *App) setup(cfgPath string) (*config.Config, *apiclient.Client, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	httpClient := &http.Client{Timeout: cfg.APITimeout}
	api := apiclient.New(cfg.APIBaseURL, httpClient, a.logger)
	return cfg, api, nil
}

// engine builds a report engine over the backend API with a terminal
// prompter for parameter collection.
func (a *App) engine(cfg *config.Config, api *apiclient.Client) *report.Engine {
	prompter := &terminalPrompter{
		in:  bufio.NewReader(a.stdin),
		out: a.stdout,
	}
	return report.NewEngine(api, prompter, cfg.DownloadDir, a.logger)
}

// Serve starts the admin web server.
func (a *App) Serve(ctx context.Context, cfgPath string) error {
	cfg, api, err := a.setup(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateWeb(); err != nil {
		return err
	}
	database, err := db.NewConnection(cfg.DatabasePath, a.logger)
	if err != nil {
		return err
	}
	defer database.Close()

	webApp, err := web.New(a.logger, cfg, database, api)
	if err != nil {
		return err
	}
	return webApp.StartServer(ctx)
}

// Sync fetches records from the backend and upserts them into the
// local database for offline listing and local report queries. An
// empty `only` syncs every entity; otherwise only the named one.
func (a *App) Sync(ctx context.Context, cfgPath, only string) error {
	cfg, api, err := a.setup(cfgPath)
	if err != nil {
		return err
	}
	database, err := db.NewConnection(cfg.DatabasePath, a.logger)
	if err != nil {
		return err
	}
	defer database.Close()

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"client-types", func(ctx context.Context) error {
			clientTypes, err := api.ClientTypes(ctx)
			if err != nil {
				return err
			}
			if err := database.ClientTypesUpsert(ctx, clientTypes); err != nil {
				return err
			}
			a.logger.Info("synced client types", "count", len(clientTypes))
			return nil
		}},
		{"clients", func(ctx context.Context) error {
			clients, err := api.Clients(ctx)
			if err != nil {
				return err
			}
			if err := database.ClientsUpsert(ctx, clients); err != nil {
				return err
			}
			a.logger.Info("synced clients", "count", len(clients))
			return nil
		}},
		{"product-types", func(ctx context.Context) error {
			productTypes, err := api.ProductTypes(ctx)
			if err != nil {
				return err
			}
			if err := database.ProductTypesUpsert(ctx, productTypes); err != nil {
				return err
			}
			a.logger.Info("synced product types", "count", len(productTypes))
			return nil
		}},
		{"products", func(ctx context.Context) error {
			products, err := api.Products(ctx)
			if err != nil {
				return err
			}
			if err := database.ProductsUpsert(ctx, products); err != nil {
				return err
			}
			a.logger.Info("synced products", "count", len(products))
			return nil
		}},
		{"jobs", func(ctx context.Context) error {
			jobs, err := api.Jobs(ctx)
			if err != nil {
				return err
			}
			if err := database.JobsUpsert(ctx, jobs); err != nil {
				return err
			}
			a.logger.Info("synced jobs", "count", len(jobs))
			return nil
		}},
		{"employees", func(ctx context.Context) error {
			employees, err := api.Employees(ctx)
			if err != nil {
				return err
			}
			if err := database.EmployeesUpsert(ctx, employees); err != nil {
				return err
			}
			a.logger.Info("synced employees", "count", len(employees))
			return nil
		}},
		{"invoices", func(ctx context.Context) error {
			// The backend serves invoice headers and detail lines
			// separately.
			invoices, err := api.Invoices(ctx, nil)
			if err != nil {
				return err
			}
			details, err := api.InvoiceDetails(ctx)
			if err != nil {
				return err
			}
			detailsByInvoice := make(map[apiclient.Key][]apiclient.InvoiceDetail)
			for _, d := range details {
				detailsByInvoice[d.InvoiceNo] = append(detailsByInvoice[d.InvoiceNo], d)
			}
			for i := range invoices {
				invoices[i].Details = detailsByInvoice[invoices[i].InvoiceNo]
			}
			if err := database.InvoicesUpsert(ctx, invoices); err != nil {
				return err
			}
			a.logger.Info("synced invoices", "count", len(invoices), "details", len(details))
			return nil
		}},
		{"report-templates", func(ctx context.Context) error {
			templates, err := api.ReportTemplates(ctx)
			if err != nil {
				return err
			}
			if err := database.ReportTemplatesUpsert(ctx, templates); err != nil {
				return err
			}
			a.logger.Info("synced report templates", "count", len(templates))
			return nil
		}},
	}

	ran := false
	for _, step := range steps {
		if only != "" && only != step.name {
			continue
		}
		if err := step.run(ctx); err != nil {
			return fmt.Errorf("%s sync error: %w", step.name, err)
		}
		ran = true
	}
	if !ran {
		names := make([]string, len(steps))
		for i, step := range steps {
			names[i] = step.name
		}
		return fmt.Errorf("unknown entity %q: choose one of %s", only, strings.Join(names, ", "))
	}
	return nil
}

// Wipe deletes all records from the local database.
func (a *App) Wipe(ctx context.Context, cfgPath string) error {
	cfg, _, err := a.setup(cfgPath)
	if err != nil {
		return err
	}
	database, err := db.NewConnection(cfg.DatabasePath, a.logger)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Wipe(ctx); err != nil {
		return err
	}
	a.logger.Info("local database wiped", "path", cfg.DatabasePath)
	return nil
}

// SubmitInvoice loads an invoice draft from a yaml file, shows the
// calculated totals and submits it to the backend after confirmation.
func (a *App) SubmitInvoice(ctx context.Context, cfgPath, draftPath string) error {
	_, api, err := a.setup(cfgPath)
	if err != nil {
		return err
	}

	draft, err := invoice.LoadDraft(draftPath)
	if err != nil {
		return err
	}
	if err := draft.Validate(); err != nil {
		return err
	}

	clients, err := api.Clients(ctx)
	if err != nil {
		return fmt.Errorf("clients fetch error: %w", err)
	}
	if err := a.printDraft(draft, clients); err != nil {
		return err
	}

	prompter := &terminalPrompter{in: bufio.NewReader(a.stdin), out: a.stdout}
	ok, err := prompter.Confirm(ctx, "Submit this invoice?")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.stdout, "submission cancelled")
		return nil
	}

	invoiceNo, err := draft.Submit(ctx, api)
	var partial *invoice.PartialSubmitError
	if errors.As(err, &partial) {
		return fmt.Errorf(
			"invoice %s was saved but its line items were not; resubmit to complete: %w",
			partial.InvoiceNo, err)
	}
	if err != nil {
		return err
	}
	a.logger.Info("invoice submitted", "invoiceNo", invoiceNo)
	return nil
}

// InvoiceTotals loads an invoice draft from a yaml file and prints its
// line items and calculated totals without submitting anything.
func (a *App) InvoiceTotals(ctx context.Context, cfgPath, draftPath string) error {
	_, api, err := a.setup(cfgPath)
	if err != nil {
		return err
	}
	draft, err := invoice.LoadDraft(draftPath)
	if err != nil {
		return err
	}
	clients, err := api.Clients(ctx)
	if err != nil {
		return fmt.Errorf("clients fetch error: %w", err)
	}
	return a.printDraft(draft, clients)
}

// printDraft prints a draft's line items and totals.
func (a *App) printDraft(draft *invoice.Draft, clients []apiclient.ClientRecord) error {
	totals := draft.Totals(invoice.DiscountRates(clients))
	tw := tabwriter.NewWriter(a.stdout, 0, 8, 2, ' ', 0)
	for _, li := range draft.LineItems() {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
			li.ProductNo, li.Quantity, li.UnitPrice.StringFixed(2), li.LineTotal().StringFixed(2))
	}
	fmt.Fprintf(tw, "subtotal\t\t\t%s\n", totals.Subtotal.StringFixed(2))
	fmt.Fprintf(tw, "discount (%s%%)\t\t\t%s\n", totals.DiscountRate.String(), totals.DiscountAmount.StringFixed(2))
	fmt.Fprintf(tw, "grand total\t\t\t%s\n", totals.GrandTotal.StringFixed(2))
	return tw.Flush()
}

// ListReports prints the saved report templates.
func (a *App) ListReports(ctx context.Context, cfgPath string) error {
	cfg, api, err := a.setup(cfgPath)
	if err != nil {
		return err
	}
	engine := a.engine(cfg, api)
	if err := engine.Refresh(ctx); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tname\tsql")
	for _, tpl := range engine.Templates() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", tpl.TemplateID, tpl.Name, tpl.SQLQuery)
	}
	return tw.Flush()
}

// SaveReport saves a new report template on the backend.
func (a *App) SaveReport(ctx context.Context, cfgPath, name, sqlQuery string) error {
	cfg, api, err := a.setup(cfgPath)
	if err != nil {
		return err
	}
	engine := a.engine(cfg, api)
	engine.SetDraft(report.Draft{Name: name, SQL: sqlQuery})
	if err := engine.SaveTemplate(ctx); err != nil {
		return err
	}
	a.logger.Info("report template saved", "name", name)
	return nil
}

// DeleteReport deletes a saved report template after confirmation.
func (a *App) DeleteReport(ctx context.Context, cfgPath string, id apiclient.Key) error {
	cfg, api, err := a.setup(cfgPath)
	if err != nil {
		return err
	}
	engine := a.engine(cfg, api)
	if err := engine.Refresh(ctx); err != nil {
		return err
	}
	err = engine.DeleteTemplate(ctx, id)
	if errors.Is(err, report.ErrCancelled) {
		fmt.Fprintln(a.stdout, "deletion cancelled")
		return nil
	}
	if err != nil {
		return err
	}
	a.logger.Info("report template deleted", "id", id)
	return nil
}

// PreviewReport runs a saved report template, prompting for any
// parameter values, and prints the resulting rows. When xlsxPath is
// set the rows are also written to that xlsx file.
func (a *App) PreviewReport(ctx context.Context, cfgPath string, id apiclient.Key, xlsxPath string) error {
	cfg, api, err := a.setup(cfgPath)
	if err != nil {
		return err
	}
	engine := a.engine(cfg, api)
	if err := engine.Refresh(ctx); err != nil {
		return err
	}
	err = engine.PreviewTemplate(ctx, id)
	if errors.Is(err, report.ErrCancelled) {
		fmt.Fprintln(a.stdout, "preview cancelled")
		return nil
	}
	if err != nil {
		return err
	}
	return a.printPreview(engine, xlsxPath)
}

// PreviewDraft test-runs report sql without saving it as a template,
// prompting for any parameter values.
func (a *App) PreviewDraft(ctx context.Context, cfgPath, sqlQuery, xlsxPath string) error {
	cfg, api, err := a.setup(cfgPath)
	if err != nil {
		return err
	}
	engine := a.engine(cfg, api)
	engine.SetDraft(report.Draft{Name: "draft", SQL: sqlQuery})
	err = engine.PreviewDraft(ctx)
	if errors.Is(err, report.ErrCancelled) {
		fmt.Fprintln(a.stdout, "preview cancelled")
		return nil
	}
	if err != nil {
		return err
	}
	return a.printPreview(engine, xlsxPath)
}

// GenerateReport generates a report file from a saved template into the
// configured download directory.
func (a *App) GenerateReport(ctx context.Context, cfgPath string, id apiclient.Key, format apiclient.ReportFormat) error {
	cfg, api, err := a.setup(cfgPath)
	if err != nil {
		return err
	}
	engine := a.engine(cfg, api)
	if err := engine.Refresh(ctx); err != nil {
		return err
	}
	filePath, err := engine.Generate(ctx, id, format)
	if errors.Is(err, report.ErrCancelled) {
		fmt.Fprintln(a.stdout, "generation cancelled")
		return nil
	}
	if err != nil {
		return err
	}
	a.logger.Info("report generated", "file", filePath)
	return nil
}

// LocalReport runs report sql against the locally synced database,
// prompting for any parameter values. The backend and the local cache
// share the :name parameter syntax, so saved template sql can be
// trialled offline.
func (a *App) LocalReport(ctx context.Context, cfgPath, sqlQuery string) error {
	cfg, _, err := a.setup(cfgPath)
	if err != nil {
		return err
	}
	database, err := db.NewConnection(cfg.DatabasePath, a.logger)
	if err != nil {
		return err
	}
	defer database.Close()

	prompter := &terminalPrompter{in: bufio.NewReader(a.stdin), out: a.stdout}
	binds, err := report.CollectBinds(ctx, prompter, report.ExtractBindNames(sqlQuery))
	if errors.Is(err, report.ErrCancelled) {
		fmt.Fprintln(a.stdout, "query cancelled")
		return nil
	}
	if err != nil {
		return err
	}

	rows, err := database.RunQuery(ctx, sqlQuery, binds)
	if err != nil {
		return err
	}
	return a.printRows(rows)
}

// printPreview prints the engine's current preview, optionally also
// writing it to an xlsx file.
func (a *App) printPreview(engine *report.Engine, xlsxPath string) error {
	preview := engine.Preview()
	if preview == nil {
		return errors.New("no preview available")
	}
	if err := a.printRows(preview.Rows); err != nil {
		return err
	}
	if xlsxPath != "" {
		if err := engine.ExportPreviewXLSX(xlsxPath); err != nil {
			return err
		}
		a.logger.Info("preview saved", "file", xlsxPath)
	}
	return nil
}

// printRows prints a report result grid in tab-separated columns.
func (a *App) printRows(rows []apiclient.Row) error {
	tw := tabwriter.NewWriter(a.stdout, 0, 8, 2, ' ', 0)
	if len(rows) > 0 {
		fmt.Fprintln(tw, strings.Join(rows[0].Columns, "\t"))
	}
	for _, row := range rows {
		values := make([]string, len(row.Columns))
		for i, col := range row.Columns {
			values[i] = fmt.Sprint(row.Get(col))
		}
		fmt.Fprintln(tw, strings.Join(values, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(a.stdout, "%d rows\n", len(rows))
	return err
}

// terminalPrompter collects report parameter values and confirmations
// interactively. EOF on stdin declines.
type terminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// Ask prompts for the value of one named parameter. An empty line is a
// legitimate (empty) value; EOF declines.
func (p *terminalPrompter) Ask(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	fmt.Fprintf(p.out, "%s: ", name)
	line, err := p.in.ReadString('\n')
	if err == io.EOF {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return strings.TrimRight(line, "\r\n"), true, nil
}

// Confirm asks a yes/no question, defaulting to no.
func (p *terminalPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	line, err := p.in.ReadString('\n')
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
