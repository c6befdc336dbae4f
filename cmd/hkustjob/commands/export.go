package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Khootz/hkustjob/internal/activity"
	"github.com/Khootz/hkustjob/internal/jobs"
	"github.com/Khootz/hkustjob/internal/sheets"
)

// ExportSheetsAction writes the cached jobs to a new tab of the configured
// spreadsheet.
func ExportSheetsAction(ctx context.Context, cmd *cli.Command) error {
	st, err := jobs.ParseStatus(cmd.String("status"))
	if err != nil {
		return err
	}

	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	creds := app.Config.SheetsCredentials
	if path := cmd.String("credentials"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read credentials: %w", err)
		}
		creds = string(raw)
	}
	if creds == "" || app.Config.SpreadsheetURL == "" {
		return errors.New("sheets export needs GOOGLE_SHEETS_CREDENTIALS (or --credentials) and SPREADSHEET_URL")
	}

	all, _, err := loadCached(ctx, app)
	if err != nil {
		return err
	}
	list := jobs.Filter{Status: st}.Apply(all)

	exp, err := sheets.NewExporter(ctx, app.Config.SpreadsheetURL, creds)
	if err != nil {
		return err
	}

	name := cmd.String("sheet")
	if name == "" {
		name = "Jobs " + time.Now().Format("2006-01-02 15-04")
	}
	tab, _, err := exp.Export(ctx, name, list)
	if err != nil {
		return err
	}

	entry := activity.NewEntry(activity.TypeSystem, "Exported to Sheets", fmt.Sprintf("%d jobs to %q", len(list), tab), activity.StatusSuccess)
	if err := app.Activity.Record(ctx, entry); err != nil {
		// non-fatal
		fmt.Printf("warning: activity log: %v\n", err)
	}

	fmt.Printf("✓ Exported %d job(s) to sheet %q\n", len(list), tab)
	return nil
}
