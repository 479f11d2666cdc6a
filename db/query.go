package db

// query.go deals with reading the local cache: the filtered invoice
// listing and the offline execution of report template sql.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"salesadmin/apiclient"
)

// Invoice is the concrete type of each row returned by InvoicesGet.
type Invoice struct {
	InvoiceNo int     `db:"invoice_no"`
	Date      string  `db:"date"`
	Client    string  `db:"client"`
	Status    string  `db:"status"`
	Subtotal  float64 `db:"subtotal"`
	RowCount  int     `db:"row_count"`
}

// InvoicesGet gets cached invoices with their client name and summed
// detail values. The search term is a regular expression matched
// against the client name and memo. It isn't necessary to run this
// query in a transaction.
func (db *DB) InvoicesGet(ctx context.Context, status string, dateFrom, dateTo time.Time, search string, limit, offset int) ([]Invoice, error) {

	// Set named statement and parameter list.
	stmt := db.invoicesGetStmt

	switch status {
	case "All", "Pending", "Paid", "Cancelled":
	default:
		return nil, fmt.Errorf(
			"status must be one of All, Pending, Paid or Cancelled, got %q", status,
		)
	}

	// namedArgs uses sqlx's named query capability.
	namedArgs := map[string]any{
		"StatusFilter": status,
		"DateFrom":     dateFrom.Format("2006-01-02"),
		"DateTo":       dateTo.Format("2006-01-02"),
		"TextSearch":   search,
		"HereLimit":    limit,
		"HereOffset":   offset,
	}
	if err := stmt.verifyArgs(namedArgs); err != nil {
		return nil, fmt.Errorf("invoices verify args error: %v", err)
	}

	// Scan results into the provided slice.
	var invoices []Invoice
	err := stmt.SelectContext(ctx, &invoices, namedArgs)
	db.logQuery("invoices", stmt, namedArgs, err)
	if err != nil {
		return nil, fmt.Errorf("invoices select error: %v", err)
	}

	// Return early if no rows were returned.
	if len(invoices) == 0 {
		return nil, sql.ErrNoRows
	}
	return invoices, nil
}

// RunQuery runs report template sql against the local cache. The
// sqlite driver shares the backend's :name bind syntax, so a saved
// template runs unchanged. Column order follows the select list.
func (db *DB) RunQuery(ctx context.Context, sqlQuery string, binds map[string]string) ([]apiclient.Row, error) {

	namedArgs := make(map[string]any, len(binds))
	for name, value := range binds {
		namedArgs[name] = value
	}

	rows, err := sqlx.NamedQueryContext(ctx, db.DB, sqlQuery, namedArgs)
	if err != nil {
		return nil, fmt.Errorf("local query error: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("local query columns error: %w", err)
	}

	var results []apiclient.Row
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("local query scan error: %w", err)
		}
		row := apiclient.Row{
			Columns: columns,
			Values:  make(map[string]any, len(columns)),
		}
		for i, column := range columns {
			value := values[i]
			if b, ok := value.([]byte); ok {
				value = string(b)
			}
			row.Values[column] = value
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("local query rows error: %w", err)
	}
	return results, nil
}
