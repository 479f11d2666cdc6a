package invoice

import (
	"context"
	"errors"
	"fmt"

	"salesadmin/apiclient"
)

// ErrSubmitInFlight reports a submit attempted while a previous submit
// on the same draft has not yet completed.
var ErrSubmitInFlight = errors.New("a submit is already in progress")

// API is the subset of the backend client used by Submit.
type API interface {
	CreateInvoice(ctx context.Context, inv apiclient.InvoiceUpsert) (apiclient.Invoice, error)
	UpdateInvoice(ctx context.Context, id apiclient.Key, inv apiclient.InvoiceUpsert) (apiclient.Invoice, error)
	ReplaceInvoiceDetails(ctx context.Context, details []apiclient.InvoiceDetail) error
}

// PartialSubmitError reports a submit whose invoice header was saved
// but whose line item save failed, leaving an invoice without details
// on the backend.
type PartialSubmitError struct {
	InvoiceNo apiclient.Key
	Err       error
}

func (e *PartialSubmitError) Error() string {
	return fmt.Sprintf(
		"invoice %s was saved but its line items were not: %v", e.InvoiceNo, e.Err,
	)
}

func (e *PartialSubmitError) Unwrap() error {
	return e.Err
}

// Submit persists the draft through the backend in two phases: first
// the invoice header (created or updated depending on whether the
// draft carries an invoice number), then a bulk replace of its line
// items keyed by the saved invoice number. A failure after the first
// phase returns a *PartialSubmitError naming the orphaned invoice. A
// second Submit while one is in flight returns ErrSubmitInFlight.
//
// Submit does not mutate the draft; on success callers discard it and
// re-fetch the invoice list.
func (d *Draft) Submit(ctx context.Context, api API) (apiclient.Key, error) {
	if !d.busy.CompareAndSwap(false, true) {
		return "", ErrSubmitInFlight
	}
	defer d.busy.Store(false)

	if err := d.Validate(); err != nil {
		return "", err
	}

	upsert := apiclient.InvoiceUpsert{
		Date:     apiclient.Date{Time: d.Date},
		ClientNo: d.ClientNo,
		Employee: d.Employee,
		Status:   string(d.Status),
		Memo:     d.Memo,
	}

	invoiceNo := d.InvoiceNo
	if invoiceNo == "" {
		created, err := api.CreateInvoice(ctx, upsert)
		if err != nil {
			return "", fmt.Errorf("invoice create failed: %w", err)
		}
		invoiceNo = created.InvoiceNo
		if invoiceNo == "" {
			return "", errors.New("invoice create returned no invoice number")
		}
	} else {
		if _, err := api.UpdateInvoice(ctx, invoiceNo, upsert); err != nil {
			return "", fmt.Errorf("invoice %s update failed: %w", invoiceNo, err)
		}
	}

	if len(d.lineItems) == 0 {
		return invoiceNo, nil
	}

	details := make([]apiclient.InvoiceDetail, len(d.lineItems))
	for i, li := range d.lineItems {
		details[i] = apiclient.InvoiceDetail{
			InvoiceNo: invoiceNo,
			ProductNo: li.ProductNo,
			Qty:       li.Quantity,
			Price:     li.UnitPrice,
		}
	}
	if err := api.ReplaceInvoiceDetails(ctx, details); err != nil {
		return invoiceNo, &PartialSubmitError{InvoiceNo: invoiceNo, Err: err}
	}
	return invoiceNo, nil
}
