package invoice

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	yaml "gopkg.in/yaml.v2"

	"salesadmin/apiclient"
)

// draftFile is the yaml representation of a draft used by the command
// line submit path. Prices are plain decimal strings such as "2.50".
type draftFile struct {
	InvoiceNo string `yaml:"invoice_no"` // empty for a new invoice
	Date      string `yaml:"date"`       // YYYY-MM-DD, defaults to today
	ClientNo  string `yaml:"client_no"`
	Employee  string `yaml:"employee_id"`
	Status    string `yaml:"status"`
	Memo      string `yaml:"memo"`
	LineItems []struct {
		ProductNo string `yaml:"product_no"`
		Quantity  int    `yaml:"quantity"`
		Price     string `yaml:"price"`
	} `yaml:"line_items"`
}

// LoadDraft reads an invoice draft from a yaml file. Line item
// quantities below 1 default to 1 and negative prices to zero, as
// they do for interactive edits.
func LoadDraft(filePath string) (*Draft, error) {
	contents, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("could not read draft file %s: %w", filePath, err)
	}

	var df draftFile
	if err := yaml.UnmarshalStrict(contents, &df); err != nil {
		return nil, fmt.Errorf("could not parse draft file %s: %w", filePath, err)
	}

	d := NewDraft()
	d.InvoiceNo = apiclient.Key(df.InvoiceNo)
	d.ClientNo = apiclient.Key(df.ClientNo)
	d.Employee = apiclient.Key(df.Employee)
	d.Status = Status(df.Status)
	d.Memo = df.Memo

	if df.Date != "" {
		date, err := time.ParseInLocation("2006-01-02", df.Date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("draft date %q is not YYYY-MM-DD: %w", df.Date, err)
		}
		d.Date = date
	}

	for i, item := range df.LineItems {
		price := decimal.Zero
		if item.Price != "" {
			price, err = decimal.NewFromString(item.Price)
			if err != nil {
				return nil, fmt.Errorf("line item %d price %q: %w", i, item.Price, err)
			}
		}
		d.AddLineItem()
		qty := item.Quantity
		err = d.UpdateLineItem(i, LineItemPatch{Quantity: &qty, UnitPrice: &price})
		if err != nil {
			return nil, err
		}
		d.lineItems[i].ProductNo = apiclient.Key(item.ProductNo)
	}
	return d, nil
}
