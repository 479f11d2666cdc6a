package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"salesadmin/apiclient"
)

// setupTestDB sets up an in-memory test database connection.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDB, err := NewConnection("file::memory:?cache=shared", nil)
	if err != nil {
		t.Fatalf("in-memory test database opening error: %v", err)
	}
	t.Cleanup(func() {
		if err := testDB.Close(); err != nil {
			t.Fatalf("unexpected db close error: %v", err)
		}
	})
	return testDB
}

func testDate(t *testing.T, s string) time.Time {
	t.Helper()
	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return date
}

// loadTestData mirrors a small set of backend records into the cache.
func loadTestData(t *testing.T, testDB *DB) {
	t.Helper()
	ctx := context.Background()

	err := testDB.ClientTypesUpsert(ctx, []apiclient.ClientType{
		{ClientTypeID: "1", TypeName: "Trade", DiscountRate: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = testDB.ClientsUpsert(ctx, []apiclient.ClientRecord{
		{ClientNo: "1", Name: "Anders Marine", ClientTypeID: "1", Discount: 10, City: "Harwich"},
		{ClientNo: "2", Name: "Brightwater", City: "Felixstowe"},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = testDB.ProductTypesUpsert(ctx, []apiclient.ProductType{
		{ProductTypeID: "1", TypeName: "Rigging"},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = testDB.ProductsUpsert(ctx, []apiclient.Product{
		{ProductNo: "10", Name: "Shackle 8mm", ProductTypeID: "1",
			SellPrice: decimal.NewFromFloat(2.5), QtyOnHand: 40},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = testDB.JobsUpsert(ctx, []apiclient.Job{
		{JobID: "1", Title: "Sales Clerk", Department: "Sales"},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = testDB.EmployeesUpsert(ctx, []apiclient.Employee{
		{EmployeeID: "2", Name: "J Fenwick", JobID: "1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = testDB.InvoicesUpsert(ctx, []apiclient.Invoice{
		{
			InvoiceNo: "41",
			Date:      apiclient.Date{Time: testDate(t, "2026-08-30")},
			ClientNo:  "1",
			Employee:  "2",
			Status:    "Pending",
			Memo:      "harbour works",
			Details: []apiclient.InvoiceDetail{
				{ProductNo: "10", Qty: 2, Price: decimal.NewFromFloat(2.5)},
				{ProductNo: "10", Qty: 1, Price: decimal.NewFromFloat(5)},
			},
		},
		{
			InvoiceNo: "42",
			Date:      apiclient.Date{Time: testDate(t, "2026-07-01")},
			ClientNo:  "2",
			Status:    "Paid",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = testDB.ReportTemplatesUpsert(ctx, []apiclient.ReportTemplate{
		{TemplateID: "1", Name: "by city",
			SQLQuery: "SELECT name FROM clients WHERE city = :city"},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestInvoicesGet(t *testing.T) {

	testDB := setupTestDB(t)
	loadTestData(t, testDB)
	ctx := context.Background()

	from, to := testDate(t, "2026-01-01"), testDate(t, "2026-12-31")

	invoices, err := testDB.InvoicesGet(ctx, "All", from, to, "", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(invoices) != 2 {
		t.Fatalf("expected 2 invoices, got %d", len(invoices))
	}
	// most recent first
	if invoices[0].InvoiceNo != 41 {
		t.Errorf("expected invoice 41 first, got %d", invoices[0].InvoiceNo)
	}
	// 2 x 2.50 + 1 x 5.00
	if invoices[0].Subtotal != 10 {
		t.Errorf("expected subtotal 10, got %v", invoices[0].Subtotal)
	}
	if invoices[0].RowCount != 2 {
		t.Errorf("expected row count 2, got %d", invoices[0].RowCount)
	}

	// status filter
	invoices, err = testDB.InvoicesGet(ctx, "Paid", from, to, "", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(invoices) != 1 || invoices[0].InvoiceNo != 42 {
		t.Errorf("unexpected paid invoices %v", invoices)
	}

	// regexp search over client name and memo
	invoices, err = testDB.InvoicesGet(ctx, "All", from, to, "^harbour", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(invoices) != 1 || invoices[0].Client != "Anders Marine" {
		t.Errorf("unexpected search results %v", invoices)
	}

	// date window excluding everything
	_, err = testDB.InvoicesGet(ctx, "All", testDate(t, "2027-01-01"), to, "", 20, 0)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}

	// unknown status
	if _, err := testDB.InvoicesGet(ctx, "Overdue", from, to, "", 20, 0); err == nil {
		t.Error("expected an error for an unknown status")
	}
}

func TestInvoicesUpsertReplacesDetails(t *testing.T) {

	testDB := setupTestDB(t)
	loadTestData(t, testDB)
	ctx := context.Background()

	// re-sync invoice 41 with a single detail row
	err := testDB.InvoicesUpsert(ctx, []apiclient.Invoice{
		{
			InvoiceNo: "41",
			Date:      apiclient.Date{Time: testDate(t, "2026-08-30")},
			ClientNo:  "1",
			Status:    "Paid",
			Details: []apiclient.InvoiceDetail{
				{ProductNo: "10", Qty: 1, Price: decimal.NewFromFloat(2.5)},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	var count int
	err = testDB.Get(&count,
		"SELECT COUNT(*) FROM invoice_details WHERE invoice_no = 41")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected old detail rows to be replaced, got %d rows", count)
	}

	var status string
	err = testDB.Get(&status, "SELECT status FROM invoices WHERE invoice_no = 41")
	if err != nil {
		t.Fatal(err)
	}
	if status != "Paid" {
		t.Errorf("expected updated status Paid, got %q", status)
	}
}

func TestInvoicesUpsertRollsBackOnFailure(t *testing.T) {

	testDB := setupTestDB(t)
	loadTestData(t, testDB)
	ctx := context.Background()

	// re-sync invoice 41 together with an invoice whose non-numeric
	// key fails the integer primary key. The whole batch should roll
	// back, leaving invoice 41's original detail rows in place.
	err := testDB.InvoicesUpsert(ctx, []apiclient.Invoice{
		{
			InvoiceNo: "41",
			Date:      apiclient.Date{Time: testDate(t, "2026-08-30")},
			ClientNo:  "1",
			Status:    "Paid",
			Details: []apiclient.InvoiceDetail{
				{ProductNo: "10", Qty: 9, Price: decimal.NewFromFloat(99)},
			},
		},
		{
			InvoiceNo: "not-a-number",
			Date:      apiclient.Date{Time: testDate(t, "2026-08-30")},
			Status:    "Pending",
		},
	})
	if err == nil {
		t.Fatal("expected upsert error for non-numeric invoice key")
	}

	var count int
	err = testDB.Get(&count,
		"SELECT COUNT(*) FROM invoice_details WHERE invoice_no = 41")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected the original 2 detail rows after rollback, got %d", count)
	}

	var status string
	err = testDB.Get(&status, "SELECT status FROM invoices WHERE invoice_no = 41")
	if err != nil {
		t.Fatal(err)
	}
	if status != "Pending" {
		t.Errorf("expected original status Pending after rollback, got %q", status)
	}
}

func TestRunQuery(t *testing.T) {

	testDB := setupTestDB(t)
	loadTestData(t, testDB)
	ctx := context.Background()

	rows, err := testDB.RunQuery(ctx,
		"SELECT name, city FROM clients WHERE city = :city", map[string]string{
			"city": "Harwich",
		})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if diff := cmp.Diff([]string{"name", "city"}, rows[0].Columns); diff != "" {
		t.Errorf("column order mismatch (-want +got):\n%s", diff)
	}
	if got := rows[0].Get("name"); got != "Anders Marine" {
		t.Errorf("expected Anders Marine, got %v", got)
	}

	// no binds
	rows, err = testDB.RunQuery(ctx, "SELECT COUNT(*) AS n FROM clients", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	// broken sql surfaces the driver error
	if _, err := testDB.RunQuery(ctx, "SELECT * FROM no_such_table", nil); err == nil {
		t.Error("expected an error for a missing table")
	}
}

func TestWipe(t *testing.T) {

	testDB := setupTestDB(t)
	loadTestData(t, testDB)
	ctx := context.Background()

	if err := testDB.Wipe(ctx); err != nil {
		t.Fatal(err)
	}

	from, to := testDate(t, "2000-01-01"), testDate(t, "2099-12-31")
	_, err := testDB.InvoicesGet(ctx, "All", from, to, "", 20, 0)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected an empty cache after a wipe, got %v", err)
	}
}
