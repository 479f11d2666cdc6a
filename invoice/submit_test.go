package invoice

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"salesadmin/apiclient"
)

// fakeAPI records invoice calls and can be made to fail or block.
type fakeAPI struct {
	createdNo  apiclient.Key
	createErr  error
	updateErr  error
	detailsErr error
	unblock    chan struct{} // when non-nil, CreateInvoice blocks on it
	started    chan struct{} // closed when CreateInvoice is first entered
	startOnce  sync.Once

	mu      sync.Mutex
	creates []apiclient.InvoiceUpsert
	updates []apiclient.Key
	details [][]apiclient.InvoiceDetail
}

func (f *fakeAPI) CreateInvoice(ctx context.Context, inv apiclient.InvoiceUpsert) (apiclient.Invoice, error) {
	if f.started != nil {
		f.startOnce.Do(func() { close(f.started) })
	}
	if f.unblock != nil {
		<-f.unblock
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, inv)
	return apiclient.Invoice{InvoiceNo: f.createdNo}, f.createErr
}

func (f *fakeAPI) UpdateInvoice(ctx context.Context, id apiclient.Key, inv apiclient.InvoiceUpsert) (apiclient.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, id)
	return apiclient.Invoice{InvoiceNo: id}, f.updateErr
}

func (f *fakeAPI) ReplaceInvoiceDetails(ctx context.Context, details []apiclient.InvoiceDetail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.details = append(f.details, details)
	return f.detailsErr
}

func submittableDraft(t *testing.T) *Draft {
	t.Helper()
	d := NewDraft()
	d.ClientNo = "3"
	d.Employee = "2"
	d.Status = StatusPending
	d.AddLineItem()
	qty, price := 2, dec(t, "2.50")
	if err := d.UpdateLineItem(0, LineItemPatch{Quantity: &qty, UnitPrice: &price}); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestSubmitCreate(t *testing.T) {

	api := &fakeAPI{createdNo: "55"}
	d := submittableDraft(t)

	invoiceNo, err := d.Submit(context.Background(), api)
	if err != nil {
		t.Fatal(err)
	}
	if invoiceNo != "55" {
		t.Errorf("expected invoice number 55, got %s", invoiceNo)
	}
	if len(api.creates) != 1 || len(api.updates) != 0 {
		t.Fatalf("expected one create and no updates, got %d/%d",
			len(api.creates), len(api.updates))
	}

	// the bulk save is keyed by the created invoice number
	want := [][]apiclient.InvoiceDetail{{
		{InvoiceNo: "55", ProductNo: "", Qty: 2, Price: decimal.NewFromFloat(2.5)},
	}}
	opt := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
	if diff := cmp.Diff(want, api.details, opt); diff != "" {
		t.Errorf("unexpected detail payload (-want +got):\n%s", diff)
	}
}

func TestSubmitUpdate(t *testing.T) {

	api := &fakeAPI{}
	d := submittableDraft(t)
	d.InvoiceNo = "41"

	invoiceNo, err := d.Submit(context.Background(), api)
	if err != nil {
		t.Fatal(err)
	}
	if invoiceNo != "41" {
		t.Errorf("expected invoice number 41, got %s", invoiceNo)
	}
	if len(api.creates) != 0 || len(api.updates) != 1 {
		t.Fatalf("expected one update and no creates, got %d/%d",
			len(api.updates), len(api.creates))
	}
	if api.details[0][0].InvoiceNo != "41" {
		t.Errorf("expected details keyed by 41, got %s", api.details[0][0].InvoiceNo)
	}
}

func TestSubmitNoLineItems(t *testing.T) {

	api := &fakeAPI{createdNo: "56"}
	d := NewDraft()
	d.Status = StatusCancelled

	if _, err := d.Submit(context.Background(), api); err != nil {
		t.Fatal(err)
	}
	if len(api.details) != 0 {
		t.Error("expected no bulk detail call for a draft without line items")
	}
}

func TestSubmitHeaderFailure(t *testing.T) {

	api := &fakeAPI{createErr: errors.New("boom")}
	d := submittableDraft(t)

	_, err := d.Submit(context.Background(), api)
	if err == nil {
		t.Fatal("expected an error")
	}
	var partial *PartialSubmitError
	if errors.As(err, &partial) {
		t.Error("a header failure should not be a partial submit")
	}
	if len(api.details) != 0 {
		t.Error("expected no detail call after a header failure")
	}
}

func TestSubmitPartialFailure(t *testing.T) {

	api := &fakeAPI{createdNo: "57", detailsErr: errors.New("boom")}
	d := submittableDraft(t)

	_, err := d.Submit(context.Background(), api)
	var partial *PartialSubmitError
	if !errors.As(err, &partial) {
		t.Fatalf("expected a PartialSubmitError, got %v", err)
	}
	if partial.InvoiceNo != "57" {
		t.Errorf("expected the orphaned invoice to be 57, got %s", partial.InvoiceNo)
	}
}

func TestSubmitValidatesFirst(t *testing.T) {

	api := &fakeAPI{}
	d := NewDraft() // no status

	if _, err := d.Submit(context.Background(), api); err == nil {
		t.Fatal("expected a validation error")
	}
	if len(api.creates) != 0 {
		t.Error("expected no network call for an invalid draft")
	}
}

func TestSubmitInFlight(t *testing.T) {

	api := &fakeAPI{
		createdNo: "58",
		unblock:   make(chan struct{}),
		started:   make(chan struct{}),
	}
	d := submittableDraft(t)

	firstDone := make(chan error, 1)
	go func() {
		_, err := d.Submit(context.Background(), api)
		firstDone <- err
	}()

	// second submit while the first is blocked in CreateInvoice
	<-api.started
	_, second := d.Submit(context.Background(), api)
	if !errors.Is(second, ErrSubmitInFlight) {
		t.Errorf("expected ErrSubmitInFlight, got %v", second)
	}

	close(api.unblock)
	if err := <-firstDone; err != nil {
		t.Errorf("unexpected error from first submit: %v", err)
	}
}
