package db

// sync.go deals with mirroring backend records into the local cache.

import (
	"context"
	"fmt"

	"salesadmin/apiclient"
)

// keyArg converts a backend key for binding. Empty keys bind as null
// so that sqlite assigns a rowid rather than failing on a blank
// primary key.
func keyArg(k apiclient.Key) any {
	if k == "" {
		return nil
	}
	return string(k)
}

// ClientTypesUpsert upserts client type records.
func (db *DB) ClientTypesUpsert(ctx context.Context, clientTypes []apiclient.ClientType) error {
	if len(clientTypes) == 0 {
		return nil
	}
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit.

	stmt := db.clientTypeUpsertStmt.bindTx(ctx, tx)
	for _, ct := range clientTypes {
		namedArgs := map[string]any{
			"ClientTypeID": keyArg(ct.ClientTypeID),
			"TypeName":     ct.TypeName,
			"DiscountRate": ct.DiscountRate,
			"Remarks":      ct.Remarks,
		}
		if err := stmt.verifyArgs(namedArgs); err != nil {
			return fmt.Errorf("client types upsert verify arguments error: %v", err)
		}
		if _, err := stmt.ExecContext(ctx, namedArgs); err != nil {
			db.logQuery("client_types", stmt, namedArgs, err)
			return fmt.Errorf("failed to upsert client type %v: %w", ct.ClientTypeID, err)
		}
	}
	return tx.Commit()
}

// ClientsUpsert upserts client records.
func (db *DB) ClientsUpsert(ctx context.Context, clients []apiclient.ClientRecord) error {
	if len(clients) == 0 {
		return nil
	}
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit.

	stmt := db.clientUpsertStmt.bindTx(ctx, tx)
	for _, c := range clients {
		namedArgs := map[string]any{
			"ClientNo":     keyArg(c.ClientNo),
			"Name":         c.Name,
			"ClientTypeID": keyArg(c.ClientTypeID),
			"Discount":     c.Discount,
			"Gender":       c.Gender,
			"Phone":        c.Phone,
			"Email":        c.Email,
			"Address":      c.Address,
			"City":         c.City,
		}
		if err := stmt.verifyArgs(namedArgs); err != nil {
			return fmt.Errorf("clients upsert verify arguments error: %v", err)
		}
		if _, err := stmt.ExecContext(ctx, namedArgs); err != nil {
			db.logQuery("clients", stmt, namedArgs, err)
			return fmt.Errorf("failed to upsert client %v: %w", c.ClientNo, err)
		}
	}
	return tx.Commit()
}

// ProductTypesUpsert upserts product type records.
func (db *DB) ProductTypesUpsert(ctx context.Context, productTypes []apiclient.ProductType) error {
	if len(productTypes) == 0 {
		return nil
	}
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit.

	stmt := db.productTypeUpsertStmt.bindTx(ctx, tx)
	for _, pt := range productTypes {
		namedArgs := map[string]any{
			"ProductTypeID": keyArg(pt.ProductTypeID),
			"TypeName":      pt.TypeName,
			"Manufacturer":  pt.Manufacturer,
			"Remarks":       pt.Remarks,
		}
		if err := stmt.verifyArgs(namedArgs); err != nil {
			return fmt.Errorf("product types upsert verify arguments error: %v", err)
		}
		if _, err := stmt.ExecContext(ctx, namedArgs); err != nil {
			db.logQuery("product_types", stmt, namedArgs, err)
			return fmt.Errorf("failed to upsert product type %v: %w", pt.ProductTypeID, err)
		}
	}
	return tx.Commit()
}

// ProductsUpsert upserts product records. Prices are stored as decimal
// strings.
func (db *DB) ProductsUpsert(ctx context.Context, products []apiclient.Product) error {
	if len(products) == 0 {
		return nil
	}
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit.

	stmt := db.productUpsertStmt.bindTx(ctx, tx)
	for _, p := range products {
		namedArgs := map[string]any{
			"ProductNo":     keyArg(p.ProductNo),
			"Name":          p.Name,
			"ProductTypeID": keyArg(p.ProductTypeID),
			"CostPrice":     p.CostPrice.String(),
			"SellPrice":     p.SellPrice.String(),
			"QtyOnHand":     p.QtyOnHand,
			"ReorderLevel":  p.ReorderLevel,
		}
		if err := stmt.verifyArgs(namedArgs); err != nil {
			return fmt.Errorf("products upsert verify arguments error: %v", err)
		}
		if _, err := stmt.ExecContext(ctx, namedArgs); err != nil {
			db.logQuery("products", stmt, namedArgs, err)
			return fmt.Errorf("failed to upsert product %v: %w", p.ProductNo, err)
		}
	}
	return tx.Commit()
}

// JobsUpsert upserts job records.
func (db *DB) JobsUpsert(ctx context.Context, jobs []apiclient.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit.

	stmt := db.jobUpsertStmt.bindTx(ctx, tx)
	for _, j := range jobs {
		namedArgs := map[string]any{
			"JobID":      keyArg(j.JobID),
			"Title":      j.Title,
			"Department": j.Department,
			"MinSalary":  j.MinSalary,
			"MaxSalary":  j.MaxSalary,
		}
		if err := stmt.verifyArgs(namedArgs); err != nil {
			return fmt.Errorf("jobs upsert verify arguments error: %v", err)
		}
		if _, err := stmt.ExecContext(ctx, namedArgs); err != nil {
			db.logQuery("jobs", stmt, namedArgs, err)
			return fmt.Errorf("failed to upsert job %v: %w", j.JobID, err)
		}
	}
	return tx.Commit()
}

// EmployeesUpsert upserts employee records.
func (db *DB) EmployeesUpsert(ctx context.Context, employees []apiclient.Employee) error {
	if len(employees) == 0 {
		return nil
	}
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit.

	stmt := db.employeeUpsertStmt.bindTx(ctx, tx)
	for _, e := range employees {
		namedArgs := map[string]any{
			"EmployeeID":  keyArg(e.EmployeeID),
			"Name":        e.Name,
			"JobID":       keyArg(e.JobID),
			"Gender":      e.Gender,
			"Phone":       e.Phone,
			"Address":     e.Address,
			"Salary":      e.Salary,
			"WorkingSite": e.WorkingSite,
		}
		if err := stmt.verifyArgs(namedArgs); err != nil {
			return fmt.Errorf("employees upsert verify arguments error: %v", err)
		}
		if _, err := stmt.ExecContext(ctx, namedArgs); err != nil {
			db.logQuery("employees", stmt, namedArgs, err)
			return fmt.Errorf("failed to upsert employee %v: %w", e.EmployeeID, err)
		}
	}
	return tx.Commit()
}

// InvoicesUpsert performs upserts for a slice of invoices. It replaces
// all detail rows for each invoice in the set to ensure consistency.
func (db *DB) InvoicesUpsert(ctx context.Context, invoices []apiclient.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit.

	for _, inv := range invoices {

		// Delete any existing detail rows for this invoice.
		stmt := db.invoiceDetailsDeleteStmt.bindTx(ctx, tx)
		namedArgs := map[string]any{
			"InvoiceNo": keyArg(inv.InvoiceNo),
		}
		if err := stmt.verifyArgs(namedArgs); err != nil {
			return fmt.Errorf("invoice details delete verify arguments error: %v", err)
		}
		if _, err := stmt.ExecContext(ctx, namedArgs); err != nil {
			db.logQuery("invoice_details_delete", stmt, namedArgs, err)
			return fmt.Errorf("failed to delete details for invoice %v: %w", inv.InvoiceNo, err)
		}

		stmt = db.invoiceUpsertStmt.bindTx(ctx, tx)
		namedArgs = map[string]any{
			"InvoiceNo":  keyArg(inv.InvoiceNo),
			"Date":       inv.Date.Format("2006-01-02"),
			"ClientNo":   keyArg(inv.ClientNo),
			"EmployeeID": keyArg(inv.Employee),
			"Status":     inv.Status,
			"Memo":       inv.Memo,
		}
		if err := stmt.verifyArgs(namedArgs); err != nil {
			return fmt.Errorf("invoice upsert verify arguments error: %v", err)
		}
		if _, err := stmt.ExecContext(ctx, namedArgs); err != nil {
			db.logQuery("invoice_upsert", stmt, namedArgs, err)
			return fmt.Errorf("failed to upsert invoice %v: %w", inv.InvoiceNo, err)
		}

		stmt = db.invoiceDetailInsertStmt.bindTx(ctx, tx)
		for _, detail := range inv.Details {
			namedArgs = map[string]any{
				"InvoiceNo": keyArg(inv.InvoiceNo),
				"ProductNo": keyArg(detail.ProductNo),
				"Qty":       detail.Qty,
				"Price":     detail.Price.String(),
			}
			if err := stmt.verifyArgs(namedArgs); err != nil {
				return fmt.Errorf("invoice detail insert verify arguments error: %v", err)
			}
			if _, err := stmt.ExecContext(ctx, namedArgs); err != nil {
				db.logQuery("invoice_details_insert", stmt, namedArgs, err)
				return fmt.Errorf(
					"failed to insert detail for invoice %v: %w", inv.InvoiceNo, err,
				)
			}
		}
	}
	return tx.Commit()
}

// ReportTemplatesUpsert upserts report template records.
func (db *DB) ReportTemplatesUpsert(ctx context.Context, templates []apiclient.ReportTemplate) error {
	if len(templates) == 0 {
		return nil
	}
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit.

	stmt := db.templateUpsertStmt.bindTx(ctx, tx)
	for _, tpl := range templates {
		namedArgs := map[string]any{
			"TemplateID": keyArg(tpl.TemplateID),
			"Name":       tpl.Name,
			"SQLQuery":   tpl.SQLQuery,
		}
		if err := stmt.verifyArgs(namedArgs); err != nil {
			return fmt.Errorf("report templates upsert verify arguments error: %v", err)
		}
		if _, err := stmt.ExecContext(ctx, namedArgs); err != nil {
			db.logQuery("report_templates", stmt, namedArgs, err)
			return fmt.Errorf("failed to upsert report template %v: %w", tpl.TemplateID, err)
		}
	}
	return tx.Commit()
}

// Wipe removes all cached rows, leaving the schema in place.
func (db *DB) Wipe(ctx context.Context) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit.

	for _, table := range []string{
		"invoice_details",
		"invoices",
		"report_templates",
		"products",
		"product_types",
		"clients",
		"client_types",
		"employees",
		"jobs",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to wipe table %s: %w", table, err)
		}
	}
	return tx.Commit()
}
