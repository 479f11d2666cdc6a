// Package db provides the local sales cache: an sqlite mirror of the
// backend's reference data, invoices and report templates.
//
// Although the database backend is sqlite to allow for cross-platform
// desktop use, the database is not considered a simple storage layer.
// Each query is held in an sql file in the `sql` directory which can be
// run directly on the sqlite command line. The use of external,
// runnable sql files as Go prepared statements is made possible
// through the parameterization scheme set out in parameterize.go.
//
// Because sqlite shares the backend's named bind syntax, saved report
// templates can also be run against the cache offline; see RunQuery.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx" // helper library
	_ "modernc.org/sqlite"    // pure go sqlite driver
)

//go:embed sql
var sqlFiles embed.FS

// schemaFile is idempotent and run on every connection.
const schemaFile = "schema.sql"

// parameterizedStmt describes an sql file parsed into an sqlx
// NamedStmt expecting the provided args.
type parameterizedStmt struct {
	sqlFile string
	args    []string
	*sqlx.NamedStmt
}

// bindTx returns a copy of the statement bound to tx, so that its
// executions commit or roll back with the transaction rather than
// autocommitting on the db handle.
func (p *parameterizedStmt) bindTx(ctx context.Context, tx *sqlx.Tx) *parameterizedStmt {
	return &parameterizedStmt{
		p.sqlFile,
		p.args,
		tx.NamedStmtContext(ctx, p.NamedStmt),
	}
}

// verifyArgs determines if the number of arguments provided to a
// parameterizedStmt is as expected. This check could be more thorough.
func (p *parameterizedStmt) verifyArgs(args map[string]any) error {
	if got, want := len(args), len(p.args); got != want {
		return fmt.Errorf(
			"argument length to named statement from %q incorrect: got %d want %d",
			p.sqlFile,
			got,
			want,
		)
	}
	return nil
}

// DB provides a wrapper around the sql.DB connection for
// application-specific db operations.
type DB struct {
	*sqlx.DB
	sqlFS fs.FS
	log   *slog.Logger

	// Prepared statements.
	clientUpsertStmt      *parameterizedStmt
	clientTypeUpsertStmt  *parameterizedStmt
	productUpsertStmt     *parameterizedStmt
	productTypeUpsertStmt *parameterizedStmt
	employeeUpsertStmt    *parameterizedStmt
	jobUpsertStmt         *parameterizedStmt

	invoiceUpsertStmt        *parameterizedStmt
	invoiceDetailsDeleteStmt *parameterizedStmt
	invoiceDetailInsertStmt  *parameterizedStmt

	templateUpsertStmt *parameterizedStmt

	invoicesGetStmt *parameterizedStmt
}

// NewConnection creates a new connection to an sqlite database at the
// given path, initialises the schema and prepares the named
// statements.
func NewConnection(dbPath string, logger *slog.Logger) (*DB, error) {

	// dataSource is the default setting for file-based databases.
	dataSource := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", dbPath)

	// for in-memory test databases, check the necessary cached setting is used.
	if strings.Contains(dbPath, ":memory:") {
		if !strings.Contains(dbPath, "cache=shared") {
			return nil, fmt.Errorf("in-memory connection %q should contain '?cache=shared'", dbPath)
		}
		dataSource = dbPath
	}
	dbDB, err := sql.Open("sqlite", dataSource)
	if err != nil {
		return nil, err
	}

	// RegisterFunctions registers the custom REGEXP function. This can
	// occur per call to NewConnection as it is a singleton using
	// sync.Once.
	RegisterFunctions()

	if err := dbDB.Ping(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	sqlFS, err := fs.Sub(sqlFiles, "sql")
	if err != nil {
		return nil, fmt.Errorf("could not mount sql files: %w", err)
	}

	// Wrap the standard library *sql.DB with sqlx.
	db := &DB{
		DB:    sqlx.NewDb(dbDB, "sqlite"),
		sqlFS: sqlFS,
		log:   logger,
	}

	if err := db.initSchema(); err != nil {
		return nil, err
	}
	if err := db.prepareNamedStatements(); err != nil {
		return nil, fmt.Errorf("could not prepare named statements: %w", err)
	}
	return db, nil
}

// initSchema creates the necessary tables if they don't already exist.
// The schema file can be run idempotently.
func (db *DB) initSchema() error {

	schema, err := fs.ReadFile(db.sqlFS, schemaFile)
	if err != nil {
		return fmt.Errorf("could not read schema file at %q: %w", schemaFile, err)
	}

	_, err = db.ExecContext(context.Background(), string(schema))
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// prepareNamedStatements prepares all the named statements for this
// database connection.
func (db *DB) prepareNamedStatements() error {
	for _, p := range []struct {
		stmt    **parameterizedStmt
		sqlFile string
	}{
		{&db.clientUpsertStmt, "client_upsert.sql"},
		{&db.clientTypeUpsertStmt, "client_type_upsert.sql"},
		{&db.productUpsertStmt, "product_upsert.sql"},
		{&db.productTypeUpsertStmt, "product_type_upsert.sql"},
		{&db.employeeUpsertStmt, "employee_upsert.sql"},
		{&db.jobUpsertStmt, "job_upsert.sql"},
		{&db.invoiceUpsertStmt, "invoice_upsert.sql"},
		{&db.invoiceDetailsDeleteStmt, "invoice_details_delete.sql"},
		{&db.invoiceDetailInsertStmt, "invoice_details_insert.sql"},
		{&db.templateUpsertStmt, "report_template_upsert.sql"},
		{&db.invoicesGetStmt, "invoices.sql"},
	} {
		var err error
		*p.stmt, err = db.prepNamedStatement(db.sqlFS, p.sqlFile)
		if err != nil {
			return fmt.Errorf("%s statement error: %w", p.sqlFile, err)
		}
	}
	return nil
}

// prepNamedStatement prepares the SQL queries.
func (db *DB) prepNamedStatement(fileFS fs.FS, filePath string) (*parameterizedStmt, error) {
	query, err := ParameterizeFile(fileFS, filePath)
	if err != nil {
		return nil, fmt.Errorf("could not parameterize %q: %w", filePath, err)
	}

	pQuery, err := db.PrepareNamed(string(query.Body))
	if err != nil {
		return nil, fmt.Errorf("could not prepare statement %q: %w", filePath, err)
	}
	return &parameterizedStmt{
		filePath,
		query.Parameters,
		pQuery,
	}, nil
}

// logQuery is for helping debug SQL issues.
func (db *DB) logQuery(name string, stmt *parameterizedStmt, args map[string]any, err error) {
	const debug = false
	if !debug {
		return
	}
	db.log.Debug("sql",
		"name", name,
		"query", stmt.QueryString,
		"args", fmt.Sprintf("%#v", args),
		"error", err,
	)
}
