package invoice

import (
	"testing"

	"salesadmin/apiclient"
)

func TestTotals(t *testing.T) {

	lookup := DiscountRates([]apiclient.ClientRecord{
		{ClientNo: "1", Name: "Anders Marine", Discount: 10},
		{ClientNo: "2", Name: "Brightwater", Discount: 0},
	})

	d := NewDraft()
	d.ClientNo = "1"
	d.AddLineItem()
	d.AddLineItem()
	qty, price := 2, dec(t, "10.00")
	if err := d.UpdateLineItem(0, LineItemPatch{Quantity: &qty, UnitPrice: &price}); err != nil {
		t.Fatal(err)
	}
	qty2, price2 := 1, dec(t, "5.00")
	if err := d.UpdateLineItem(1, LineItemPatch{Quantity: &qty2, UnitPrice: &price2}); err != nil {
		t.Fatal(err)
	}

	// 2 x 10.00 + 1 x 5.00 = 25.00, 10% discount
	got := d.Totals(lookup)
	if !got.Subtotal.Equal(dec(t, "25.00")) {
		t.Errorf("expected subtotal 25.00, got %s", got.Subtotal)
	}
	if !got.DiscountAmount.Equal(dec(t, "2.50")) {
		t.Errorf("expected discount 2.50, got %s", got.DiscountAmount)
	}
	if !got.GrandTotal.Equal(dec(t, "22.50")) {
		t.Errorf("expected grand total 22.50, got %s", got.GrandTotal)
	}
}

func TestTotalsUnknownClient(t *testing.T) {

	lookup := DiscountRates([]apiclient.ClientRecord{
		{ClientNo: "1", Discount: 15},
	})

	d := NewDraft()
	d.AddLineItem()
	qty, price := 3, dec(t, "4.00")
	if err := d.UpdateLineItem(0, LineItemPatch{Quantity: &qty, UnitPrice: &price}); err != nil {
		t.Fatal(err)
	}

	for _, clientNo := range []apiclient.Key{"", "99"} {
		d.ClientNo = clientNo
		got := d.Totals(lookup)
		if !got.DiscountRate.IsZero() {
			t.Errorf("client %q: expected zero discount rate, got %s", clientNo, got.DiscountRate)
		}
		if !got.GrandTotal.Equal(dec(t, "12.00")) {
			t.Errorf("client %q: expected grand total 12.00, got %s", clientNo, got.GrandTotal)
		}
	}
}

func TestTotalsEmptyDraft(t *testing.T) {

	d := NewDraft()
	got := d.Totals(nil)
	if !got.Subtotal.IsZero() || !got.GrandTotal.IsZero() {
		t.Errorf("expected zero totals for an empty draft, got %+v", got)
	}
}
