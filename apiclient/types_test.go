package apiclient

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKeyRoundTrip(t *testing.T) {

	tests := []struct {
		name    string
		in      string
		want    Key
		wantOut string
	}{
		{"number", `12`, Key("12"), `12`},
		{"string", `"C-4"`, Key("C-4"), `"C-4"`},
		{"numeric string", `"12"`, Key("12"), `12`},
		{"null", `null`, Key(""), `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var k Key
			if err := json.Unmarshal([]byte(tt.in), &k); err != nil {
				t.Fatal(err)
			}
			if k != tt.want {
				t.Errorf("got %q want %q", k, tt.want)
			}
			out, err := json.Marshal(k)
			if err != nil {
				t.Fatal(err)
			}
			if string(out) != tt.wantOut {
				t.Errorf("got %s want %s", out, tt.wantOut)
			}
		})
	}
}

func TestDateUnmarshal(t *testing.T) {

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain date", `"2025-08-30"`, "2025-08-30"},
		{"timestamp", `"2025-08-30T00:00:00.000Z"`, "2025-08-30"},
		{"no zone", `"2025-08-30T10:11:12"`, "2025-08-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			if err := json.Unmarshal([]byte(tt.in), &d); err != nil {
				t.Fatal(err)
			}
			if got := d.Format("2006-01-02"); got != tt.want {
				t.Errorf("got %s want %s", got, tt.want)
			}
		})
	}

	var d Date
	if err := json.Unmarshal([]byte(`"tomorrow"`), &d); err == nil {
		t.Error("expected an error for an unparseable date")
	}
}

// TestRowColumnOrder verifies that a report row preserves the wire
// order of the JSON object keys; the preview grid derives its column
// set from the first row.
func TestRowColumnOrder(t *testing.T) {

	var row Row
	data := []byte(`{"ZED": 1, "ALPHA": "x", "MID": null}`)
	if err := json.Unmarshal(data, &row); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"ZED", "ALPHA", "MID"}, row.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if got, want := row.Get("ALPHA"), "x"; got != want {
		t.Errorf("got %v want %v", got, want)
	}
	if row.Get("MID") != nil {
		t.Errorf("expected nil for a null column, got %v", row.Get("MID"))
	}
}

func TestInvoiceAlternateKey(t *testing.T) {

	var inv Invoice
	if err := json.Unmarshal([]byte(`{"invoiceNo": 101}`), &inv); err != nil {
		t.Fatal(err)
	}
	if got, want := inv.InvoiceNo, Key("101"); got != want {
		t.Errorf("got %q want %q", got, want)
	}

	// The canonical key wins when both are present.
	inv = Invoice{}
	if err := json.Unmarshal([]byte(`{"INVOICENO": 7, "invoiceNo": 101}`), &inv); err != nil {
		t.Fatal(err)
	}
	if got, want := inv.InvoiceNo, Key("7"); got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestInvoiceDetailColumnCasing(t *testing.T) {

	var d InvoiceDetail
	data := []byte(`{"INVOICENO": 101, "PRODUCT_NO": 11, "QTY": 2, "PRICE": 10.5}`)
	if err := json.Unmarshal(data, &d); err != nil {
		t.Fatal(err)
	}
	if got, want := d.InvoiceNo, Key("101"); got != want {
		t.Errorf("got %q want %q", got, want)
	}
	if got, want := d.Qty, 2; got != want {
		t.Errorf("got %d want %d", got, want)
	}
	if got, want := d.Price.String(), "10.5"; got != want {
		t.Errorf("got %s want %s", got, want)
	}
}
