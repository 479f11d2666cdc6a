package invoice

import (
	"github.com/shopspring/decimal"

	"salesadmin/apiclient"
)

var oneHundred = decimal.NewFromInt(100)

// Totals holds the derived figures for an invoice draft. The discount
// rate is a percentage of the subtotal.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountRate   decimal.Decimal
	DiscountAmount decimal.Decimal
	GrandTotal     decimal.Decimal
}

// DiscountLookup resolves a client number to its discount percentage.
// The second return is false when the client is unknown.
type DiscountLookup func(clientNo apiclient.Key) (decimal.Decimal, bool)

// DiscountRates builds a DiscountLookup over a fetched client list.
func DiscountRates(clients []apiclient.ClientRecord) DiscountLookup {
	rates := make(map[apiclient.Key]decimal.Decimal, len(clients))
	for _, c := range clients {
		rates[c.ClientNo] = decimal.NewFromFloat(c.Discount)
	}
	return func(clientNo apiclient.Key) (decimal.Decimal, bool) {
		rate, ok := rates[clientNo]
		return rate, ok
	}
}

// Totals computes the draft's subtotal, discount and grand total. The
// computation is pure: it does not mutate the draft and performs no
// network calls. An unselected or unknown client yields a zero
// discount rate rather than an error.
func (d *Draft) Totals(lookup DiscountLookup) Totals {
	t := Totals{
		Subtotal:       decimal.Zero,
		DiscountRate:   decimal.Zero,
		DiscountAmount: decimal.Zero,
	}
	for _, li := range d.lineItems {
		t.Subtotal = t.Subtotal.Add(li.LineTotal())
	}
	if lookup != nil {
		if rate, ok := lookup(d.ClientNo); ok {
			t.DiscountRate = rate
		}
	}
	t.DiscountAmount = t.Subtotal.Mul(t.DiscountRate).Div(oneHundred)
	t.GrandTotal = t.Subtotal.Sub(t.DiscountAmount)
	return t
}
