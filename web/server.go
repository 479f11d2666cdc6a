package web

// This file describes the web server for this project.
//
// Note that modules called by this server should provide self-describing
// errors since these are sent directly to an internal server error func:
//
//	web.ServerError(w, r, err)
//
// This web server also sets out each endpoint handler as a HandlerFunc.
// This allows for the router to provide arguments to the handler, as
// discussed in Mat Ryer's post at
//
//	https://grafana.com/blog/how-i-write-http-services-in-go-after-13-years/
//
// Another use of this pattern is to initialise only the templates needed
// for a specific endpoint, allowing for endpoint-specific template error
// catching.
//
// Helper functions, such as `ServerError` and `clientError`, are at the
// end of the file.

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"salesadmin/apiclient"
	"salesadmin/config"
	"salesadmin/db"
	"salesadmin/invoice"
	"salesadmin/report"
)

// pageLen is the number of items to show in a page listing.
const pageLen = 15

// BackendAPI is the subset of the backend client used by the web
// front end.
type BackendAPI interface {
	Invoices(ctx context.Context, opts *apiclient.InvoiceListOptions) ([]apiclient.Invoice, error)
	InvoiceDetails(ctx context.Context) ([]apiclient.InvoiceDetail, error)
	Clients(ctx context.Context) ([]apiclient.ClientRecord, error)
	Products(ctx context.Context) ([]apiclient.Product, error)
	ReportTemplates(ctx context.Context) ([]apiclient.ReportTemplate, error)
	CreateReportTemplate(ctx context.Context, name, sqlQuery string) (apiclient.ReportTemplate, error)
	DeleteReportTemplate(ctx context.Context, id apiclient.Key) error
	RunReport(ctx context.Context, id apiclient.Key, binds map[string]string) ([]apiclient.Row, error)
	ExportReport(ctx context.Context, id apiclient.Key, format apiclient.ReportFormat, binds map[string]string) ([]byte, error)
	PreviewQuery(ctx context.Context, sqlQuery string) ([]apiclient.Row, error)
}

// WebApp is the configuration object for the web server.
type WebApp struct {
	log        *slog.Logger
	cfg        *config.Config
	db         *db.DB
	api        BackendAPI
	staticFS   fs.FS // the fs holding the static web resources.
	templateFS fs.FS // the fs holding the web templates.
	server     *http.Server
}

// New initialises a WebApp. In development mode the static and
// template files are served from the configured on-disk directories
// rather than the embedded copies.
func New(
	logger *slog.Logger,
	cfg *config.Config,
	database *db.DB,
	api BackendAPI,
) (*WebApp, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var staticPath, templatesPath string
	if cfg.Web.DevelopmentMode {
		staticPath = cfg.Web.StaticPath
		templatesPath = cfg.Web.TemplatesPath
	}
	fm, err := makeMounts(staticPath, templatesPath)
	if err != nil {
		return nil, err
	}

	// Add settings for the http server.
	server := &http.Server{
		Addr:              cfg.Web.ListenAddress,
		ReadHeaderTimeout: time.Duration(30 * time.Second),
		WriteTimeout:      time.Duration(30 * time.Second),
		MaxHeaderBytes:    1 << 19, // 100k ish
	}

	webApp := &WebApp{
		log:        logger,
		cfg:        cfg,
		db:         database,
		api:        api,
		staticFS:   fm.static,
		templateFS: fm.templates,
		server:     server,
	}
	return webApp, nil
}

// StartServer starts a WebApp. In development mode the templates are
// also watched for writes, rebuilding the routes so edits show without
// a restart.
func (web *WebApp) StartServer(ctx context.Context) error {
	handler := newSwappableHandler(web.routes())
	web.server.Handler = handler

	if web.cfg.Web.DevelopmentMode {
		go func() {
			if err := web.watchTemplates(ctx, handler); err != nil &&
				!errors.Is(err, context.Canceled) {
				web.log.Error("template watcher stopped", "error", err)
			}
		}()
	}

	web.log.Info("starting server", "address", web.cfg.Web.ListenAddress)
	return web.server.ListenAndServe()
}

// routes connects all of the endpoints and provides middleware.
func (web *WebApp) routes() http.Handler {

	r := mux.NewRouter()

	fileServer := http.FileServerFS(web.staticFS)
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", fileServer))

	r.Handle(
		"/",
		web.handleRoot(), // synonym for /invoices
	)

	// Invoice pages.
	r.Handle(
		"/invoices",
		web.handleInvoices(),
	)
	r.Handle(
		"/invoice/{id:[0-9]+}",
		web.handleInvoiceDetail(),
	)

	// Report pages.
	r.Handle(
		"/reports",
		web.handleReports(),
	)
	r.Handle(
		"/reports/save",
		web.handleReportSave(),
	).Methods("POST")
	r.Handle(
		"/reports/preview-draft",
		web.handleDraftPreview(),
	).Methods("POST")
	r.Handle(
		"/reports/{id:[0-9]+}/delete",
		web.handleReportDelete(),
	).Methods("POST")
	r.Handle(
		"/reports/{id:[0-9]+}/binds",
		web.handleReportBinds(),
	)
	r.Handle(
		"/reports/{id:[0-9]+}/preview",
		web.handleReportPreview(),
	).Methods("POST")
	r.Handle(
		"/reports/{id:[0-9]+}/export/{format:(?:excel|pdf)}",
		web.handleReportExport(),
	).Methods("POST")

	logging := handlers.LoggingHandler(os.Stdout, preventCSRF(r))
	return logging
}

// handleRoot deals with http calls to "/" by redirecting to "/invoices".
func (web *WebApp) handleRoot() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/invoices", http.StatusFound)
	})
}

// handleInvoices serves the /invoices list from the local cache.
func (web *WebApp) handleInvoices() http.Handler {

	name := "invoices.html"
	tpls := []string{"base.html", "invoices.html"}
	templates := template.Must(template.ParseFS(web.templateFS, tpls...))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		form := NewSearchForm()
		if err := DecodeURLParams(r, form); err != nil {
			web.ServerError(w, r, err)
			return
		}

		// Create a validator and validate the form.
		validator := NewValidator()
		form.Validate(validator)

		// Initialise pagination for the default state; the real record
		// count is applied after a successful query.
		pagination, _ := NewPagination(pageLen, 1, 1, r.URL.Query())

		// Prepare data for the template, allowing passing of validation
		// errors back to the template if necessary.
		data := struct {
			PageTitle   string
			Invoices    []db.Invoice
			Form        *SearchForm
			Validator   *Validator
			Pagination  *Pagination
			CurrentPage string
		}{
			PageTitle:   "Invoices",
			Form:        form,
			Validator:   validator,
			Pagination:  pagination,
			CurrentPage: "invoices",
		}

		// Render template with errors and return if the form is invalid.
		if !validator.Valid() {
			web.render(w, r, templates, name, data)
			return
		}

		invoices, err := web.db.InvoicesGet(
			ctx,
			form.Status,
			form.DateFrom,
			form.DateTo,
			form.SearchString,
			pageLen,
			form.Offset(),
		)
		if err != nil && err != sql.ErrNoRows {
			web.ServerError(w, r, err)
			return
		}

		// Set valid data from successful database call.
		data.Invoices = invoices

		// Set pagination for the number of invoices. Each invoice row
		// carries the search query row count as a field.
		var recordsNo int
		if len(data.Invoices) == 0 {
			recordsNo = 1
		} else {
			recordsNo = data.Invoices[0].RowCount
		}
		data.Pagination, err = NewPagination(pageLen, recordsNo, form.Page, r.URL.Query())
		if err != nil {
			web.ServerError(w, r, err)
			return
		}

		web.render(w, r, templates, name, data)
	})
}

// viewLineItem is a display row on the invoice detail page.
type viewLineItem struct {
	ProductNo   apiclient.Key
	ProductName string
	Qty         int
	Price       string
	LineTotal   string
}

// handleInvoiceDetail serves the detail page at /invoice/<id> for a
// single invoice, with line items and calculated totals.
func (web *WebApp) handleInvoiceDetail() http.Handler {

	name := "invoice.html"
	tpls := []string{"base.html", "invoice.html"}
	templates := template.Must(template.ParseFS(web.templateFS, tpls...))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		// Extract route parameters.
		vars, err := validMuxVars(mux.Vars(r), "id")
		if err != nil {
			web.clientError(w, err.Error(), http.StatusBadRequest)
			return
		}
		invoiceNo := apiclient.Key(vars["id"])

		invoices, err := web.api.Invoices(ctx, nil)
		if err != nil {
			web.ServerError(w, r, err)
			return
		}
		var found *apiclient.Invoice
		for i := range invoices {
			if invoices[i].InvoiceNo == invoiceNo {
				found = &invoices[i]
				break
			}
		}
		if found == nil {
			web.notFound(w, r, fmt.Sprintf("Invoice %q not found", invoiceNo))
			return
		}

		// The backend serves details for all invoices in one listing.
		details, err := web.api.InvoiceDetails(ctx)
		if err != nil {
			web.ServerError(w, r, err)
			return
		}
		for _, detail := range details {
			if detail.InvoiceNo == invoiceNo {
				found.Details = append(found.Details, detail)
			}
		}

		clients, err := web.api.Clients(ctx)
		if err != nil {
			web.ServerError(w, r, err)
			return
		}
		products, err := web.api.Products(ctx)
		if err != nil {
			web.ServerError(w, r, err)
			return
		}
		productNames := make(map[apiclient.Key]string, len(products))
		for _, p := range products {
			productNames[p.ProductNo] = p.Name
		}

		draft := invoice.FromInvoice(*found)
		totals := draft.Totals(invoice.DiscountRates(clients))

		var clientName string
		for _, c := range clients {
			if c.ClientNo == found.ClientNo {
				clientName = c.Name
				break
			}
		}

		var lineItems []viewLineItem
		for _, li := range draft.LineItems() {
			lineItems = append(lineItems, viewLineItem{
				ProductNo:   li.ProductNo,
				ProductName: productNames[li.ProductNo],
				Qty:         li.Quantity,
				Price:       li.UnitPrice.StringFixed(2),
				LineTotal:   li.LineTotal().StringFixed(2),
			})
		}

		data := struct {
			PageTitle      string
			Invoice        *apiclient.Invoice
			ClientName     string
			LineItems      []viewLineItem
			Subtotal       string
			DiscountRate   string
			DiscountAmount string
			GrandTotal     string
			CurrentPage    string
		}{
			PageTitle:      fmt.Sprintf("Invoice %s", invoiceNo),
			Invoice:        found,
			ClientName:     clientName,
			LineItems:      lineItems,
			Subtotal:       totals.Subtotal.StringFixed(2),
			DiscountRate:   totals.DiscountRate.String(),
			DiscountAmount: totals.DiscountAmount.StringFixed(2),
			GrandTotal:     totals.GrandTotal.StringFixed(2),
			CurrentPage:    "invoices",
		}

		web.render(w, r, templates, name, data)
	})
}

// handleReports serves the /reports page: the saved template catalog
// and the template draft form.
func (web *WebApp) handleReports() http.Handler {

	name := "reports.html"
	tpls := []string{"base.html", "reports.html"}
	templates := template.Must(template.ParseFS(web.templateFS, tpls...))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		reportTemplates, err := web.api.ReportTemplates(ctx)
		if err != nil {
			web.ServerError(w, r, err)
			return
		}

		// The draft form round-trips through the query string so a
		// failed save can redisplay it.
		form := &TemplateForm{
			Name: r.URL.Query().Get("name"),
			SQL:  r.URL.Query().Get("sql"),
		}

		data := struct {
			PageTitle   string
			Templates   []apiclient.ReportTemplate
			Form        *TemplateForm
			Validator   *Validator
			CurrentPage string
		}{
			PageTitle:   "Reports",
			Templates:   reportTemplates,
			Form:        form,
			Validator:   NewValidator(),
			CurrentPage: "reports",
		}

		web.render(w, r, templates, name, data)
	})
}

// handleReportSave saves a new report template from the draft form.
func (web *WebApp) handleReportSave() http.Handler {

	name := "reports.html"
	tpls := []string{"base.html", "reports.html"}
	templates := template.Must(template.ParseFS(web.templateFS, tpls...))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := r.ParseForm(); err != nil {
			web.clientError(w, fmt.Sprintf("invalid POST request: %v", err), http.StatusBadRequest)
			return
		}
		form, err := CheckTemplateForm(r.PostForm)
		if err != nil {
			web.clientError(w, err.Error(), http.StatusBadRequest)
			return
		}

		validator := NewValidator()
		form.Validate(validator)
		if !validator.Valid() {
			// Redisplay the catalog with the validation errors; no
			// network save is attempted.
			reportTemplates, err := web.api.ReportTemplates(ctx)
			if err != nil {
				web.ServerError(w, r, err)
				return
			}
			data := struct {
				PageTitle   string
				Templates   []apiclient.ReportTemplate
				Form        *TemplateForm
				Validator   *Validator
				CurrentPage string
			}{
				PageTitle:   "Reports",
				Templates:   reportTemplates,
				Form:        form,
				Validator:   validator,
				CurrentPage: "reports",
			}
			web.render(w, r, templates, name, data)
			return
		}

		if _, err := web.api.CreateReportTemplate(ctx, form.Name, form.SQL); err != nil {
			web.ServerError(w, r, err)
			return
		}
		http.Redirect(w, r, "/reports", http.StatusSeeOther)
	})
}

// handleReportDelete deletes a saved report template. Confirmation
// happens client-side on the delete form.
func (web *WebApp) handleReportDelete() http.Handler {

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		vars, err := validMuxVars(mux.Vars(r), "id")
		if err != nil {
			web.clientError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := web.api.DeleteReportTemplate(ctx, apiclient.Key(vars["id"])); err != nil {
			web.ServerError(w, r, err)
			return
		}
		http.Redirect(w, r, "/reports", http.StatusSeeOther)
	})
}

// handleReportBinds serves the bind collection form for a saved
// template ahead of a preview or export.
func (web *WebApp) handleReportBinds() http.Handler {

	name := "report-binds.html"
	tpls := []string{"base.html", "report-binds.html"}
	templates := template.Must(template.ParseFS(web.templateFS, tpls...))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		vars, err := validMuxVars(mux.Vars(r), "id")
		if err != nil {
			web.clientError(w, err.Error(), http.StatusBadRequest)
			return
		}
		tpl, ok, err := web.reportTemplate(ctx, apiclient.Key(vars["id"]))
		if err != nil {
			web.ServerError(w, r, err)
			return
		}
		if !ok {
			web.notFound(w, r, fmt.Sprintf("Report template %q not found", vars["id"]))
			return
		}

		data := struct {
			PageTitle   string
			Template    apiclient.ReportTemplate
			Draft       *TemplateForm
			Binds       []bindInput
			CurrentPage string
		}{
			PageTitle:   fmt.Sprintf("Report %s", tpl.Name),
			Template:    tpl,
			Binds:       templateBindInputs(tpl.SQLQuery),
			CurrentPage: "reports",
		}
		web.render(w, r, templates, name, data)
	})
}

// handleReportPreview runs a saved template with the posted bind
// values and renders the result grid.
func (web *WebApp) handleReportPreview() http.Handler {

	name := "report-preview.html"
	tpls := []string{"base.html", "report-preview.html"}
	templates := template.Must(template.ParseFS(web.templateFS, tpls...))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		vars, err := validMuxVars(mux.Vars(r), "id")
		if err != nil {
			web.clientError(w, err.Error(), http.StatusBadRequest)
			return
		}
		tpl, ok, err := web.reportTemplate(ctx, apiclient.Key(vars["id"]))
		if err != nil {
			web.ServerError(w, r, err)
			return
		}
		if !ok {
			web.notFound(w, r, fmt.Sprintf("Report template %q not found", vars["id"]))
			return
		}

		if err := r.ParseForm(); err != nil {
			web.clientError(w, fmt.Sprintf("invalid POST request: %v", err), http.StatusBadRequest)
			return
		}
		binds, missing := CheckBindValues(r.PostForm, report.ExtractBindNames(tpl.SQLQuery))
		if len(missing) > 0 {
			web.clientError(w,
				fmt.Sprintf("missing bind values: %v", missing), http.StatusBadRequest)
			return
		}

		rows, err := web.api.RunReport(ctx, tpl.TemplateID, binds)
		if err != nil {
			// Surface the backend's message on the failure page rather
			// than a bare 500.
			web.renderReportError(w, r, tpl.Name, err)
			return
		}

		web.renderGrid(w, r, templates, name, tpl, rows)
	})
}

// handleReportExport runs a saved template on the backend in the
// requested format and streams the file back as a download.
func (web *WebApp) handleReportExport() http.Handler {

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		vars, err := validMuxVars(mux.Vars(r), "id", "format")
		if err != nil {
			web.clientError(w, err.Error(), http.StatusBadRequest)
			return
		}
		format := apiclient.ReportFormat(vars["format"])
		if !format.Valid() {
			web.clientError(w, fmt.Sprintf("unknown format %q", vars["format"]), http.StatusBadRequest)
			return
		}
		tpl, ok, err := web.reportTemplate(ctx, apiclient.Key(vars["id"]))
		if err != nil {
			web.ServerError(w, r, err)
			return
		}
		if !ok {
			web.notFound(w, r, fmt.Sprintf("Report template %q not found", vars["id"]))
			return
		}

		if err := r.ParseForm(); err != nil {
			web.clientError(w, fmt.Sprintf("invalid POST request: %v", err), http.StatusBadRequest)
			return
		}
		binds, missing := CheckBindValues(r.PostForm, report.ExtractBindNames(tpl.SQLQuery))
		if len(missing) > 0 {
			web.clientError(w,
				fmt.Sprintf("missing bind values: %v", missing), http.StatusBadRequest)
			return
		}

		contents, err := web.api.ExportReport(ctx, tpl.TemplateID, format, binds)
		if err != nil {
			web.renderReportError(w, r, tpl.Name, err)
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", format.Filename()))
		w.Header().Set("Content-Length", strconv.Itoa(len(contents)))
		w.Write(contents)
	})
}

// handleDraftPreview test-runs a not-yet-saved template's sql. When
// the sql carries binds whose values have not yet been posted, the
// bind collection form is rendered first.
func (web *WebApp) handleDraftPreview() http.Handler {

	bindsName := "report-binds.html"
	bindsTpls := []string{"base.html", "report-binds.html"}
	bindsTemplates := template.Must(template.ParseFS(web.templateFS, bindsTpls...))

	name := "report-preview.html"
	tpls := []string{"base.html", "report-preview.html"}
	templates := template.Must(template.ParseFS(web.templateFS, tpls...))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := r.ParseForm(); err != nil {
			web.clientError(w, fmt.Sprintf("invalid POST request: %v", err), http.StatusBadRequest)
			return
		}
		form, err := CheckTemplateForm(r.PostForm)
		if err != nil {
			web.clientError(w, err.Error(), http.StatusBadRequest)
			return
		}
		validator := NewValidator()
		validator.Check(form.SQL != "", "sql", "A sql query is required.")
		if !validator.Valid() {
			web.clientError(w, "a sql query is required", http.StatusBadRequest)
			return
		}

		names := report.ExtractBindNames(form.SQL)
		binds, missing := CheckBindValues(r.PostForm, names)
		if len(missing) > 0 {
			// Collect the bind values, round-tripping the draft.
			data := struct {
				PageTitle   string
				Template    apiclient.ReportTemplate
				Draft       *TemplateForm
				Binds       []bindInput
				CurrentPage string
			}{
				PageTitle:   "Draft report",
				Draft:       form,
				Binds:       bindInputs(names),
				CurrentPage: "reports",
			}
			web.render(w, r, bindsTemplates, bindsName, data)
			return
		}

		// The backend preview endpoint takes raw sql, so the collected
		// values are inlined as quoted literals.
		rows, err := web.api.PreviewQuery(ctx, report.InlineBinds(form.SQL, binds))
		if err != nil {
			web.renderReportError(w, r, "draft", err)
			return
		}

		draftTpl := apiclient.ReportTemplate{Name: "draft", SQLQuery: form.SQL}
		web.renderGrid(w, r, templates, name, draftTpl, rows)
	})
}

/* -------------------------------------------------------------------------- */
// Helpers
/* -------------------------------------------------------------------------- */

// reportTemplate finds a saved template by id in the backend catalog.
func (web *WebApp) reportTemplate(ctx context.Context, id apiclient.Key) (apiclient.ReportTemplate, bool, error) {
	reportTemplates, err := web.api.ReportTemplates(ctx)
	if err != nil {
		return apiclient.ReportTemplate{}, false, err
	}
	for _, tpl := range reportTemplates {
		if tpl.TemplateID == id {
			return tpl, true, nil
		}
	}
	return apiclient.ReportTemplate{}, false, nil
}

// renderGrid renders a report result grid.
func (web *WebApp) renderGrid(
	w http.ResponseWriter,
	r *http.Request,
	templates *template.Template,
	name string,
	tpl apiclient.ReportTemplate,
	rows []apiclient.Row,
) {
	var columns []string
	if len(rows) > 0 {
		columns = rows[0].Columns
	}
	data := struct {
		PageTitle   string
		Template    apiclient.ReportTemplate
		Columns     []string
		Rows        []apiclient.Row
		CurrentPage string
	}{
		PageTitle:   fmt.Sprintf("Report %s", tpl.Name),
		Template:    tpl,
		Columns:     columns,
		Rows:        rows,
		CurrentPage: "reports",
	}
	web.render(w, r, templates, name, data)
}

// renderReportError reports a failed report run with the backend's
// message.
func (web *WebApp) renderReportError(w http.ResponseWriter, r *http.Request, name string, err error) {
	web.log.Warn("report run failed", "report", name, "error", err)
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		web.clientError(w,
			fmt.Sprintf("report %q failed: %s", name, apiErr.Message),
			http.StatusBadGateway)
		return
	}
	web.ServerError(w, r, err)
}

// render renders the specified template.
func (web *WebApp) render(w http.ResponseWriter, r *http.Request, template *template.Template, filename string, data any) {
	buf := new(bytes.Buffer)
	err := template.ExecuteTemplate(buf, filename, data)
	if err != nil {
		web.log.Error("template rendering error", "template", filename, "error", err)
		web.ServerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// ServerError logs and returns an internal server error. The error
// should contain the information needed for logging.
func (web *WebApp) ServerError(w http.ResponseWriter, r *http.Request, errs ...error) {
	err := errors.Join(errs...)
	web.log.Error(err.Error(), "method", r.Method, "uri", r.URL.RequestURI())
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// clientError returns a client error.
func (web *WebApp) clientError(w http.ResponseWriter, message string, status int) {
	if message == "" {
		message = http.StatusText(status)
	}
	http.Error(w, message, status)
}

// notFound raises a 404 clientError.
func (web *WebApp) notFound(w http.ResponseWriter, r *http.Request, message string) {
	web.clientError(w, message, http.StatusNotFound)
}
