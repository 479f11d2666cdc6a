// Package invoice provides the invoice draft calculator: an editable
// ordered list of product line items with derived subtotal, discount
// and grand total figures, and the two-phase submit that persists a
// draft through the backend API.
package invoice

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"salesadmin/apiclient"
)

// ErrIndexOutOfRange reports a line item index outside the draft's
// current line item list.
var ErrIndexOutOfRange = errors.New("line item index out of range")

// Status is the lifecycle status of an invoice.
type Status string

// Valid invoice statuses.
const (
	StatusPending   Status = "Pending"
	StatusPaid      Status = "Paid"
	StatusCancelled Status = "Cancelled"
)

// Valid reports whether the status is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// LineItem is one product/quantity/price row within an invoice draft.
type LineItem struct {
	ProductNo apiclient.Key
	Quantity  int
	UnitPrice decimal.Decimal
}

// LineTotal is the quantity multiplied by the unit price.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Draft is an in-memory, not-yet-persisted invoice being edited. A
// Draft is either new (empty InvoiceNo) or hydrated from a fetched
// invoice for editing. Line item order is display-relevant and
// preserved by all mutations.
type Draft struct {
	InvoiceNo apiclient.Key // empty for a new invoice
	Date      time.Time
	ClientNo  apiclient.Key
	Employee  apiclient.Key
	Status    Status
	Memo      string

	lineItems []LineItem
	busy      atomic.Bool // submit in-flight guard
}

// NewDraft creates an empty draft dated today in the local time zone.
func NewDraft() *Draft {
	year, month, day := time.Now().Date()
	return &Draft{
		Date: time.Date(year, month, day, 0, 0, 0, 0, time.Local),
	}
}

// FromInvoice hydrates a draft from a fetched invoice for editing.
// Invalid detail quantities default to 1 and prices to zero, matching
// the add/update rules.
func FromInvoice(inv apiclient.Invoice) *Draft {
	d := &Draft{
		InvoiceNo: inv.InvoiceNo,
		Date:      inv.Date.Time,
		ClientNo:  inv.ClientNo,
		Employee:  inv.Employee,
		Status:    Status(inv.Status),
		Memo:      inv.Memo,
	}
	if d.Date.IsZero() {
		d.Date = NewDraft().Date
	}
	for _, detail := range inv.Details {
		li := LineItem{
			ProductNo: detail.ProductNo,
			Quantity:  detail.Qty,
			UnitPrice: detail.Price,
		}
		if li.Quantity < 1 {
			li.Quantity = 1
		}
		if li.UnitPrice.IsNegative() {
			li.UnitPrice = decimal.Zero
		}
		d.lineItems = append(d.lineItems, li)
	}
	return d
}

// LineItems returns a copy of the draft's line items.
func (d *Draft) LineItems() []LineItem {
	items := make([]LineItem, len(d.lineItems))
	copy(items, d.lineItems)
	return items
}

// AddLineItem appends a new empty line item with quantity 1 and a zero
// price. There is no constraint on the number of line items.
func (d *Draft) AddLineItem() {
	d.lineItems = append(d.lineItems, LineItem{Quantity: 1})
}

// LineItemPatch describes a partial update to a line item. Setting
// Product changes the product selection and simultaneously overwrites
// the unit price with the product's current sell price; any prior
// manual price override is discarded. Quantity and UnitPrice apply
// after a product selection, so a patch may select a product and still
// override its price.
type LineItemPatch struct {
	Product   *apiclient.Product
	Quantity  *int
	UnitPrice *decimal.Decimal
}

// UpdateLineItem applies a patch to the line item at index i. A
// quantity below 1 defaults to 1; a negative price defaults to zero.
func (d *Draft) UpdateLineItem(i int, patch LineItemPatch) error {
	if i < 0 || i >= len(d.lineItems) {
		return fmt.Errorf("update index %d: %w", i, ErrIndexOutOfRange)
	}
	li := &d.lineItems[i]

	if patch.Product != nil {
		li.ProductNo = patch.Product.ProductNo
		li.UnitPrice = patch.Product.SellPrice
	}
	if patch.Quantity != nil {
		li.Quantity = *patch.Quantity
	}
	if patch.UnitPrice != nil {
		li.UnitPrice = *patch.UnitPrice
	}

	if li.Quantity < 1 {
		li.Quantity = 1
	}
	if li.UnitPrice.IsNegative() {
		li.UnitPrice = decimal.Zero
	}
	return nil
}

// RemoveLineItem deletes the line item at index i, preserving the
// relative order of the remaining items.
func (d *Draft) RemoveLineItem(i int) error {
	if i < 0 || i >= len(d.lineItems) {
		return fmt.Errorf("remove index %d: %w", i, ErrIndexOutOfRange)
	}
	d.lineItems = append(d.lineItems[:i], d.lineItems[i+1:]...)
	return nil
}

// Validate checks the draft fields which the backend requires before
// any submit is attempted.
func (d *Draft) Validate() error {
	if d.Date.IsZero() {
		return errors.New("an invoice date is required")
	}
	if !d.Status.Valid() {
		return fmt.Errorf("invoice status must be one of %s, %s or %s",
			StatusPending, StatusPaid, StatusCancelled)
	}
	return nil
}
