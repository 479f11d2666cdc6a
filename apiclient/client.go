// Package apiclient provides the single typed client used for all
// calls to the sales-management REST backend. Every screen-level
// operation goes through this client rather than ad hoc per-caller
// URLs; the base URL is injected once at construction.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/google/go-querystring/query"
)

// genericErrorMessage is reported when the backend fails without a
// usable error payload.
const genericErrorMessage = "request failed; check backend logs"

// Client is a wrapper for making calls to the sales backend API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *slog.Logger
}

// New creates a new backend API client for the given base URL, for
// example "http://localhost:4000/api". If no httpClient is provided
// http.DefaultClient is used.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	// Logger setup.
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(
			os.Stdout,
			&slog.HandlerOptions{Level: slog.LevelDebug},
		))
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        logger,
	}
}

// APIError is an error reported by the backend. Message carries the
// backend's own error string when one was provided, otherwise a generic
// fallback.
type APIError struct {
	Status  int
	Message string
}

// Error fulfills the error interface for APIError.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// newRequest is a helper to create a new HTTP request with common headers.
func (c *Client) newRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request payload: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// apiError converts a non-2xx response body to an *APIError, using the
// backend's `{"error": "..."}` payload when one is present.
func apiError(status int, body []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	message := genericErrorMessage
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		message = payload.Error
	}
	return &APIError{Status: status, Message: message}
}

// do is a helper to execute an HTTP request and decode the JSON
// response. A nil `v` is supported for API calls not providing a
// response, such as DELETE calls.
func do[T any](c *Client, req *http.Request, v *T) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return apiError(resp.StatusCode, body)
	}

	if v != nil { // v might be nil for a DELETE request, for example.
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// doRaw executes an HTTP request returning the raw response body, used
// for binary report exports.
func (c *Client) doRaw(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp.StatusCode, body)
	}
	return body, nil
}

// list fetches a JSON array of records from path.
func list[T any](ctx context.Context, c *Client, path string, opts any) ([]T, error) {
	requestURL := c.baseURL + path
	if opts != nil {
		params, err := query.Values(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to encode list options: %w", err)
		}
		if encoded := params.Encode(); encoded != "" {
			requestURL += "?" + encoded
		}
	}

	c.log.Debug(fmt.Sprintf("list request %v", requestURL))

	req, err := c.newRequest(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, err
	}
	var records []T
	if err := do(c, req, &records); err != nil {
		c.log.Error(fmt.Sprintf("list %s: %v", path, err))
		return nil, err
	}
	c.log.Info(fmt.Sprintf("list %s: retrieved %d records", path, len(records)))
	return records, nil
}

// create posts a record payload to path, returning the stored record.
func create[T any](ctx context.Context, c *Client, path string, payload any) (T, error) {
	var record T
	req, err := c.newRequest(ctx, "POST", c.baseURL+path, payload)
	if err != nil {
		return record, err
	}
	if err := do(c, req, &record); err != nil {
		c.log.Error(fmt.Sprintf("create %s: %v", path, err))
		return record, err
	}
	return record, nil
}

// update puts a record payload to path/id, returning the stored record.
func update[T any](ctx context.Context, c *Client, path string, id Key, payload any) (T, error) {
	var record T
	req, err := c.newRequest(ctx, "PUT", fmt.Sprintf("%s%s/%s", c.baseURL, path, id), payload)
	if err != nil {
		return record, err
	}
	if err := do(c, req, &record); err != nil {
		c.log.Error(fmt.Sprintf("update %s/%s: %v", path, id, err))
		return record, err
	}
	return record, nil
}

// remove deletes the record at path/id.
func (c *Client) remove(ctx context.Context, path string, id Key) error {
	req, err := c.newRequest(ctx, "DELETE", fmt.Sprintf("%s%s/%s", c.baseURL, path, id), nil)
	if err != nil {
		return err
	}
	if err := do[struct{}](c, req, nil); err != nil {
		c.log.Error(fmt.Sprintf("delete %s/%s: %v", path, id, err))
		return err
	}
	return nil
}

// ------------------------------------------------------------------------------
// Invoices
// ------------------------------------------------------------------------------

// InvoiceListOptions are optional filters for listing invoices.
type InvoiceListOptions struct {
	Status   string `url:"status,omitempty"`
	DateFrom string `url:"date_from,omitempty"`
	DateTo   string `url:"date_to,omitempty"`
}

// Invoices fetches invoice headers. A nil opts fetches all invoices.
func (c *Client) Invoices(ctx context.Context, opts *InvoiceListOptions) ([]Invoice, error) {
	if opts == nil {
		return list[Invoice](ctx, c, "/invoices", nil)
	}
	return list[Invoice](ctx, c, "/invoices", opts)
}

// CreateInvoice persists a new invoice header, returning the stored
// invoice including its backend-assigned number.
func (c *Client) CreateInvoice(ctx context.Context, inv InvoiceUpsert) (Invoice, error) {
	return create[Invoice](ctx, c, "/invoices", inv)
}

// UpdateInvoice updates an existing invoice header.
func (c *Client) UpdateInvoice(ctx context.Context, id Key, inv InvoiceUpsert) (Invoice, error) {
	return update[Invoice](ctx, c, "/invoices", id, inv)
}

// DeleteInvoice deletes an invoice header.
func (c *Client) DeleteInvoice(ctx context.Context, id Key) error {
	return c.remove(ctx, "/invoices", id)
}

// InvoiceDetails fetches all invoice detail rows.
func (c *Client) InvoiceDetails(ctx context.Context) ([]InvoiceDetail, error) {
	return list[InvoiceDetail](ctx, c, "/invoice-details", nil)
}

// ReplaceInvoiceDetails persists all detail rows for an invoice in one
// bulk call. Every detail must carry the owning invoice number.
func (c *Client) ReplaceInvoiceDetails(ctx context.Context, details []InvoiceDetail) error {
	payload := map[string][]InvoiceDetail{"details": details}
	req, err := c.newRequest(ctx, "POST", c.baseURL+"/invoice-details/bulk", payload)
	if err != nil {
		return err
	}
	if err := do[struct{}](c, req, nil); err != nil {
		c.log.Error(fmt.Sprintf("bulk invoice details: %v", err))
		return err
	}
	c.log.Info(fmt.Sprintf("bulk invoice details: saved %d rows", len(details)))
	return nil
}

// ------------------------------------------------------------------------------
// Reference data
// ------------------------------------------------------------------------------

// Clients fetches all client records.
func (c *Client) Clients(ctx context.Context) ([]ClientRecord, error) {
	return list[ClientRecord](ctx, c, "/clients", nil)
}

// CreateClient persists a new client record.
func (c *Client) CreateClient(ctx context.Context, client ClientRecord) (ClientRecord, error) {
	return create[ClientRecord](ctx, c, "/clients", client)
}

// UpdateClient updates a client record.
func (c *Client) UpdateClient(ctx context.Context, id Key, client ClientRecord) (ClientRecord, error) {
	return update[ClientRecord](ctx, c, "/clients", id, client)
}

// DeleteClient deletes a client record.
func (c *Client) DeleteClient(ctx context.Context, id Key) error {
	return c.remove(ctx, "/clients", id)
}

// ClientTypes fetches all client type records.
func (c *Client) ClientTypes(ctx context.Context) ([]ClientType, error) {
	return list[ClientType](ctx, c, "/client-types", nil)
}

// CreateClientType persists a new client type.
func (c *Client) CreateClientType(ctx context.Context, ct ClientType) (ClientType, error) {
	return create[ClientType](ctx, c, "/client-types", ct)
}

// UpdateClientType updates a client type.
func (c *Client) UpdateClientType(ctx context.Context, id Key, ct ClientType) (ClientType, error) {
	return update[ClientType](ctx, c, "/client-types", id, ct)
}

// DeleteClientType deletes a client type.
func (c *Client) DeleteClientType(ctx context.Context, id Key) error {
	return c.remove(ctx, "/client-types", id)
}

// Products fetches all product records.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	return list[Product](ctx, c, "/products", nil)
}

// CreateProduct persists a new product.
func (c *Client) CreateProduct(ctx context.Context, p Product) (Product, error) {
	return create[Product](ctx, c, "/products", p)
}

// UpdateProduct updates a product.
func (c *Client) UpdateProduct(ctx context.Context, id Key, p Product) (Product, error) {
	return update[Product](ctx, c, "/products", id, p)
}

// DeleteProduct deletes a product.
func (c *Client) DeleteProduct(ctx context.Context, id Key) error {
	return c.remove(ctx, "/products", id)
}

// ProductTypes fetches all product type records.
func (c *Client) ProductTypes(ctx context.Context) ([]ProductType, error) {
	return list[ProductType](ctx, c, "/product-types", nil)
}

// CreateProductType persists a new product type.
func (c *Client) CreateProductType(ctx context.Context, pt ProductType) (ProductType, error) {
	return create[ProductType](ctx, c, "/product-types", pt)
}

// UpdateProductType updates a product type.
func (c *Client) UpdateProductType(ctx context.Context, id Key, pt ProductType) (ProductType, error) {
	return update[ProductType](ctx, c, "/product-types", id, pt)
}

// DeleteProductType deletes a product type.
func (c *Client) DeleteProductType(ctx context.Context, id Key) error {
	return c.remove(ctx, "/product-types", id)
}

// Employees fetches all employee records.
func (c *Client) Employees(ctx context.Context) ([]Employee, error) {
	return list[Employee](ctx, c, "/employees", nil)
}

// CreateEmployee persists a new employee.
func (c *Client) CreateEmployee(ctx context.Context, e Employee) (Employee, error) {
	return create[Employee](ctx, c, "/employees", e)
}

// UpdateEmployee updates an employee.
func (c *Client) UpdateEmployee(ctx context.Context, id Key, e Employee) (Employee, error) {
	return update[Employee](ctx, c, "/employees", id, e)
}

// DeleteEmployee deletes an employee.
func (c *Client) DeleteEmployee(ctx context.Context, id Key) error {
	return c.remove(ctx, "/employees", id)
}

// Jobs fetches all job records.
func (c *Client) Jobs(ctx context.Context) ([]Job, error) {
	return list[Job](ctx, c, "/jobs", nil)
}

// CreateJob persists a new job.
func (c *Client) CreateJob(ctx context.Context, j Job) (Job, error) {
	return create[Job](ctx, c, "/jobs", j)
}

// UpdateJob updates a job.
func (c *Client) UpdateJob(ctx context.Context, id Key, j Job) (Job, error) {
	return update[Job](ctx, c, "/jobs", id, j)
}

// DeleteJob deletes a job.
func (c *Client) DeleteJob(ctx context.Context, id Key) error {
	return c.remove(ctx, "/jobs", id)
}

// ------------------------------------------------------------------------------
// Reports
// ------------------------------------------------------------------------------

// ReportFormat selects the output of a report export.
type ReportFormat string

// Valid report export formats; `excel` exports report.xlsx and `pdf`
// report.pdf.
const (
	FormatExcel ReportFormat = "excel"
	FormatPDF   ReportFormat = "pdf"
)

// Filename returns the download filename for the format.
func (f ReportFormat) Filename() string {
	if f == FormatExcel {
		return "report.xlsx"
	}
	return "report.pdf"
}

// Valid reports whether the format is a known export format.
func (f ReportFormat) Valid() bool {
	return f == FormatExcel || f == FormatPDF
}

// ReportTemplates fetches the saved report template catalog.
func (c *Client) ReportTemplates(ctx context.Context) ([]ReportTemplate, error) {
	return list[ReportTemplate](ctx, c, "/reports/templates", nil)
}

// CreateReportTemplate persists a new report template.
func (c *Client) CreateReportTemplate(ctx context.Context, name, sqlQuery string) (ReportTemplate, error) {
	return create[ReportTemplate](ctx, c, "/reports/templates", templateCreate{
		TemplateName: name,
		SQLQuery:     sqlQuery,
	})
}

// DeleteReportTemplate deletes a saved report template.
func (c *Client) DeleteReportTemplate(ctx context.Context, id Key) error {
	return c.remove(ctx, "/reports/templates", id)
}

// RunReport executes a saved template with the given bind values and
// returns the tabular JSON result.
func (c *Client) RunReport(ctx context.Context, id Key, binds map[string]string) ([]Row, error) {
	if binds == nil {
		binds = map[string]string{}
	}
	payload := struct {
		Format string            `json:"format"`
		Binds  map[string]string `json:"binds"`
	}{
		Format: "json",
		Binds:  binds,
	}

	req, err := c.newRequest(ctx, "POST", fmt.Sprintf("%s/reports/generate/%s", c.baseURL, id), payload)
	if err != nil {
		return nil, err
	}
	var rows []Row
	if err := do(c, req, &rows); err != nil {
		c.log.Error(fmt.Sprintf("run report %s: %v", id, err))
		return nil, err
	}
	c.log.Info(fmt.Sprintf("run report %s: %d rows", id, len(rows)))
	return rows, nil
}

// ExportReport renders a saved template as a binary document in the
// requested format.
func (c *Client) ExportReport(ctx context.Context, id Key, format ReportFormat, binds map[string]string) ([]byte, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("invalid report format %q", format)
	}
	if binds == nil {
		binds = map[string]string{}
	}
	payload := struct {
		Format string            `json:"format"`
		Binds  map[string]string `json:"binds"`
	}{
		Format: string(format),
		Binds:  binds,
	}

	req, err := c.newRequest(ctx, "POST", fmt.Sprintf("%s/reports/generate/%s", c.baseURL, id), payload)
	if err != nil {
		return nil, err
	}
	document, err := c.doRaw(req)
	if err != nil {
		c.log.Error(fmt.Sprintf("export report %s as %s: %v", id, format, err))
		return nil, err
	}
	c.log.Info(fmt.Sprintf("export report %s as %s: %d bytes", id, format, len(document)))
	return document, nil
}

// PreviewQuery executes unsaved query text directly, without a saved
// template, returning the tabular JSON result.
func (c *Client) PreviewQuery(ctx context.Context, sqlQuery string) ([]Row, error) {
	payload := struct {
		SQLQuery string `json:"SqlQuery"`
	}{
		SQLQuery: sqlQuery,
	}

	req, err := c.newRequest(ctx, "POST", c.baseURL+"/reports/preview", payload)
	if err != nil {
		return nil, err
	}
	var rows []Row
	if err := do(c, req, &rows); err != nil {
		c.log.Error(fmt.Sprintf("preview query: %v", err))
		return nil, err
	}
	return rows, nil
}
