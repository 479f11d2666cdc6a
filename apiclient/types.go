package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Key is an opaque backend-assigned identifier. The backend reports
// identifiers inconsistently as either JSON numbers or strings, so Key
// normalises both to a string, and marshals numeric keys back to JSON
// numbers.
type Key string

// UnmarshalJSON implements the json.Unmarshaler interface for Key.
func (k *Key) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*k = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*k = Key(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid key %q: %w", s, err)
	}
	*k = Key(n.String())
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Key, emitting
// numeric keys as JSON numbers.
func (k Key) MarshalJSON() ([]byte, error) {
	if k == "" {
		return []byte(`""`), nil
	}
	if _, err := strconv.ParseFloat(string(k), 64); err == nil {
		return []byte(k), nil
	}
	return json.Marshal(string(k))
}

// Date is a calendar date as reported by the backend, which emits
// either plain "2006-01-02" dates or full timestamps.
type Date struct {
	time.Time
}

// UnmarshalJSON implements the json.Unmarshaler interface for Date.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date format: %s", s)
}

// MarshalJSON implements the json.Marshaler interface for Date. Dates
// are always sent to the backend in "2006-01-02" form.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// ClientRecord represents a backend client record, with the client
// type name and discount rate joined in from the associated client
// type. (The name avoids a clash with the API Client itself.)
type ClientRecord struct {
	ClientNo     Key     `json:"CLIENT_NO"`
	Name         string  `json:"CLIENTNAME"`
	ClientTypeID Key     `json:"CLIENT_TYPE_ID"`
	ClientType   string  `json:"CLIENT_TYPE,omitempty"`
	Discount     float64 `json:"DISCOUNT"`
	Gender       string  `json:"GENDER,omitempty"`
	Phone        string  `json:"PHONE,omitempty"`
	Email        string  `json:"EMAIL,omitempty"`
	Address      string  `json:"ADDRESS,omitempty"`
	City         string  `json:"CITY,omitempty"`
}

// ClientType represents a backend client type record. The discount rate
// is a percentage applied to invoices for clients of this type.
type ClientType struct {
	ClientTypeID Key     `json:"CLIENT_TYPE_ID"`
	TypeName     string  `json:"TYPE_NAME"`
	DiscountRate float64 `json:"DISCOUNT_RATE"`
	Remarks      string  `json:"REMARKS,omitempty"`
}

// Product represents a backend product record.
type Product struct {
	ProductNo     Key             `json:"PRODUCT_NO"`
	Name          string          `json:"PRODUCTNAME"`
	ProductTypeID Key             `json:"PRODUCTTYPE_ID"`
	ProductType   string          `json:"PRODUCTTYPE_NAME,omitempty"`
	CostPrice     decimal.Decimal `json:"COST_PRICE"`
	SellPrice     decimal.Decimal `json:"SELL_PRICE"`
	QtyOnHand     int             `json:"QTY_ON_HAND"`
	ReorderLevel  int             `json:"REORDER_LEVEL,omitempty"`
}

// ProductType represents a backend product type record.
type ProductType struct {
	ProductTypeID Key    `json:"PRODUCTTYPE_ID"`
	TypeName      string `json:"TYPE_NAME"`
	Manufacturer  string `json:"MANUFACTURER,omitempty"`
	Remarks       string `json:"REMARKS,omitempty"`
}

// Employee represents a backend employee record.
type Employee struct {
	EmployeeID  Key     `json:"EMPLOYEEID"`
	Name        string  `json:"EMPLOYEENAME"`
	JobID       Key     `json:"JOB_ID"`
	JobTitle    string  `json:"JOB_TITLE,omitempty"`
	Gender      string  `json:"GENDER,omitempty"`
	Phone       string  `json:"PHONE,omitempty"`
	Address     string  `json:"ADDRESS,omitempty"`
	Salary      float64 `json:"SALARY,omitempty"`
	WorkingSite string  `json:"WORKING_SITE,omitempty"`
}

// Job represents a backend job record.
type Job struct {
	JobID      Key     `json:"JOB_ID"`
	Title      string  `json:"JOB_TITLE"`
	Department string  `json:"DEPARTMENT,omitempty"`
	MinSalary  float64 `json:"MIN_SALARY,omitempty"`
	MaxSalary  float64 `json:"MAX_SALARY,omitempty"`
}

// Invoice represents a backend invoice header, optionally with its
// detail rows when the backend includes them.
type Invoice struct {
	InvoiceNo Key             `json:"INVOICENO"`
	Date      Date            `json:"INVOICE_DATE"`
	ClientNo  Key             `json:"CLIENT_NO"`
	Employee  Key             `json:"EMPLOYEEID"`
	Status    string          `json:"INVOICE_STATUS"`
	Memo      string          `json:"INVOICEMEMO"`
	Details   []InvoiceDetail `json:"details,omitempty"`
}

// UnmarshalJSON implements the json.Unmarshaler interface for Invoice.
// Create responses report the new identifier as either "INVOICENO" or
// "invoiceNo" depending on the backend code path, so both are accepted.
func (inv *Invoice) UnmarshalJSON(data []byte) error {

	// type alias to stop recursion.
	type Alias Invoice

	helper := &struct {
		*Alias
		AltInvoiceNo Key `json:"invoiceNo"`
	}{
		Alias: (*Alias)(inv),
	}
	if err := json.Unmarshal(data, &helper); err != nil {
		return err
	}
	if inv.InvoiceNo == "" {
		inv.InvoiceNo = helper.AltInvoiceNo
	}
	return nil
}

// InvoiceUpsert is the payload for creating or updating an invoice
// header.
type InvoiceUpsert struct {
	Date     Date   `json:"Invoice_date"`
	ClientNo Key    `json:"Client_no"`
	Employee Key    `json:"EmployeeID"`
	Status   string `json:"Invoice_status"`
	Memo     string `json:"InvoiceMemo"`
}

// InvoiceDetail is one product line on an invoice.
type InvoiceDetail struct {
	InvoiceNo Key             `json:"InvoiceNo"`
	ProductNo Key             `json:"Product_no"`
	Qty       int             `json:"Qty"`
	Price     decimal.Decimal `json:"Price"`
}

// UnmarshalJSON implements the json.Unmarshaler interface for
// InvoiceDetail, accepting both the request-payload key casing and the
// backend's column casing on fetched rows.
func (d *InvoiceDetail) UnmarshalJSON(data []byte) error {

	type Alias InvoiceDetail

	helper := &struct {
		*Alias
		AltInvoiceNo Key              `json:"INVOICENO"`
		AltProductNo Key              `json:"PRODUCT_NO"`
		AltQty       *int             `json:"QTY"`
		AltPrice     *decimal.Decimal `json:"PRICE"`
	}{
		Alias: (*Alias)(d),
	}
	if err := json.Unmarshal(data, &helper); err != nil {
		return err
	}
	if d.InvoiceNo == "" {
		d.InvoiceNo = helper.AltInvoiceNo
	}
	if d.ProductNo == "" {
		d.ProductNo = helper.AltProductNo
	}
	if d.Qty == 0 && helper.AltQty != nil {
		d.Qty = *helper.AltQty
	}
	if d.Price.IsZero() && helper.AltPrice != nil {
		d.Price = *helper.AltPrice
	}
	return nil
}

// ReportTemplate represents a saved SQL report template.
type ReportTemplate struct {
	TemplateID Key    `json:"TEMPLATEID"`
	Name       string `json:"TEMPLATENAME"`
	SQLQuery   string `json:"SQLQUERY"`
}

// templateCreate is the payload for saving a new report template.
type templateCreate struct {
	TemplateName string `json:"TemplateName"`
	SQLQuery     string `json:"SqlQuery"`
}

// Row is one row of a tabular report result. Report rows are untyped
// key/value records whose column set is derived dynamically, so Row
// additionally records the column order of the JSON object as sent by
// the backend.
type Row struct {
	Columns []string
	Values  map[string]any
}

// UnmarshalJSON implements the json.Unmarshaler interface for Row,
// walking the object tokens to preserve the wire order of the keys.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object for a report row, got %v", tok)
	}

	r.Columns = nil
	r.Values = make(map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected report row key %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		r.Columns = append(r.Columns, key)
		r.Values[key] = value
	}
	return nil
}

// Get returns the row value for a column.
func (r Row) Get(column string) any {
	return r.Values[column]
}
