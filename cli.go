package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"salesadmin/apiclient"
)

// Applicator defines the interface for the core application logic.
// This allows the CLI to be tested independently of the main app implementation.
type Applicator interface {
	Serve(ctx context.Context, cfgPath string) error
	Sync(ctx context.Context, cfgPath, only string) error
	Wipe(ctx context.Context, cfgPath string) error
	SubmitInvoice(ctx context.Context, cfgPath, draftPath string) error
	InvoiceTotals(ctx context.Context, cfgPath, draftPath string) error
	ListReports(ctx context.Context, cfgPath string) error
	SaveReport(ctx context.Context, cfgPath, name, sqlQuery string) error
	DeleteReport(ctx context.Context, cfgPath string, id apiclient.Key) error
	PreviewReport(ctx context.Context, cfgPath string, id apiclient.Key, xlsxPath string) error
	PreviewDraft(ctx context.Context, cfgPath, sqlQuery, xlsxPath string) error
	GenerateReport(ctx context.Context, cfgPath string, id apiclient.Key, format apiclient.ReportFormat) error
	LocalReport(ctx context.Context, cfgPath, sqlQuery string) error
}

// BuildCLI creates the full CLI command structure for the application.
// It injects the core application logic (the Applicator) into the command actions.
func BuildCLI(app Applicator) *cli.Command {
	// Define flags that are common across multiple commands.
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "config.yaml",
		Usage:   "path to the configuration file",
	}

	saveXLSXFlag := &cli.StringFlag{
		Name:    "save",
		Usage:   "also save the previewed rows to this xlsx file",
		Aliases: []string{"s"},
	}

	serveCmd := &cli.Command{
		Name:  "serve",
		Usage: "Start the admin web server",
		Flags: []cli.Flag{configFlag},
		Action: func(ctx context.Context, c *cli.Command) error {
			return app.Serve(ctx, c.String("config"))
		},
	}

	syncCmd := &cli.Command{
		Name:  "sync",
		Usage: "Fetch records from the backend into the local database",
		Flags: []cli.Flag{
			configFlag,
			&cli.StringFlag{
				Name:    "only",
				Usage:   "sync a single entity (e.g. 'clients', 'invoices')",
				Aliases: []string{"o"},
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return app.Sync(ctx, c.String("config"), c.String("only"))
		},
	}

	wipeCmd := &cli.Command{
		Name:  "wipe",
		Usage: "Delete all records from the local database",
		Flags: []cli.Flag{configFlag},
		Action: func(ctx context.Context, c *cli.Command) error {
			return app.Wipe(ctx, c.String("config"))
		},
	}

	invoiceCmd := &cli.Command{
		Name:  "invoice",
		Usage: "Invoice operations",
		Commands: []*cli.Command{
			{
				Name:  "submit",
				Usage: "Submit an invoice draft yaml file to the backend",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "file", Usage: "the invoice draft yaml file", Aliases: []string{"f"}, Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return app.SubmitInvoice(ctx, c.String("config"), c.String("file"))
				},
			},
			{
				Name:  "totals",
				Usage: "Show the calculated totals for an invoice draft yaml file",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "file", Usage: "the invoice draft yaml file", Aliases: []string{"f"}, Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return app.InvoiceTotals(ctx, c.String("config"), c.String("file"))
				},
			},
		},
	}

	reportCmd := &cli.Command{
		Name:    "report",
		Usage:   "Report template operations",
		Aliases: []string{"rep"},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the saved report templates",
				Flags: []cli.Flag{configFlag},
				Action: func(ctx context.Context, c *cli.Command) error {
					return app.ListReports(ctx, c.String("config"))
				},
			},
			{
				Name:  "save",
				Usage: "Save a new report template",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "name", Usage: "the template name", Aliases: []string{"n"}, Required: true},
					&cli.StringFlag{Name: "sql", Usage: "the template sql, with optional :name parameters", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return app.SaveReport(ctx, c.String("config"), c.String("name"), c.String("sql"))
				},
			},
			{
				Name:  "delete",
				Usage: "Delete a saved report template",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "id", Usage: "the template id", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return app.DeleteReport(ctx, c.String("config"), apiclient.Key(c.String("id")))
				},
			},
			{
				Name:  "preview",
				Usage: "Run a saved report template and show the rows",
				Flags: []cli.Flag{
					configFlag,
					saveXLSXFlag,
					&cli.StringFlag{Name: "id", Usage: "the template id", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return app.PreviewReport(ctx, c.String("config"), apiclient.Key(c.String("id")), c.String("save"))
				},
			},
			{
				Name:  "preview-draft",
				Usage: "Test-run report sql without saving it as a template",
				Flags: []cli.Flag{
					configFlag,
					saveXLSXFlag,
					&cli.StringFlag{Name: "sql", Usage: "the sql to run, with optional :name parameters", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return app.PreviewDraft(ctx, c.String("config"), c.String("sql"), c.String("save"))
				},
			},
			{
				Name:  "generate",
				Usage: "Generate a report file from a saved template into the download directory",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "id", Usage: "the template id", Required: true},
					&cli.StringFlag{Name: "format", Usage: "the output format: excel or pdf", Value: "excel"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return app.GenerateReport(
						ctx,
						c.String("config"),
						apiclient.Key(c.String("id")),
						apiclient.ReportFormat(c.String("format")),
					)
				},
			},
			{
				Name:  "local",
				Usage: "Run report sql against the locally synced database",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "sql", Usage: "the sql to run, with optional :name parameters", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return app.LocalReport(ctx, c.String("config"), c.String("sql"))
				},
			},
		},
	}

	// Assemble the root command.
	rootCmd := &cli.Command{
		Name:     "salesadmin",
		Usage:    "An admin front end for the sales management backend",
		Commands: []*cli.Command{serveCmd, syncCmd, wipeCmd, invoiceCmd, reportCmd},
	}

	return rootCmd
}
