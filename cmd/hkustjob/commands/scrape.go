package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/Khootz/hkustjob/internal/model"
	"github.com/Khootz/hkustjob/internal/pagerange"
)

// ScrapeAction runs one scrape and optionally downloads the spreadsheet
// the backend generated.
func ScrapeAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	input := cmd.String("pages")
	if input == "" {
		input = app.Config.ScrapePages
	}

	resp, err := app.Worker.Run(ctx, input, cmd.String("session"))
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("scrape failed: %s", resp.Message)
	}

	printScrapeResult(resp)

	out := cmd.String("out")
	if out == "" || resp.Data.ExcelPath() == "" {
		return nil
	}
	return saveDownload(ctx, app, resp.Data.ExcelPath(), out)
}

// DownloadAction fetches a result file produced by an earlier scrape.
func DownloadAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	return saveDownload(ctx, app, cmd.String("path"), cmd.String("out"))
}

// ParseAction validates a page range without scraping.
func ParseAction(_ context.Context, cmd *cli.Command) error {
	pages, err := pagerange.Parse(cmd.String("pages"))
	if err != nil {
		return err
	}
	fmt.Printf("%d page(s): %v\n", len(pages), pages)
	if advice := pagerange.Advise(pages); advice != "" {
		fmt.Println(advice)
	}
	return nil
}

// HealthAction checks that the scraping backend is reachable.
func HealthAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	hs, err := app.Client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("backend %s: %w", app.Client.BaseURL(), err)
	}
	fmt.Printf("✓ %s is %s (%s)\n", app.Client.BaseURL(), hs.Status, hs.Timestamp)
	return nil
}

// DebugAction asks the backend to fetch one listing page and report what
// it saw, for diagnosing session problems.
func DebugAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	cred := cmd.String("session")
	if cred == "" {
		if cred, err = app.Sessions.Credential(ctx); err != nil {
			return err
		}
	}

	info, err := app.Client.Debug(ctx, model.DebugRequest{PHPSessionID: cred, Page: int(cmd.Int("page"))})
	if err != nil {
		return fmt.Errorf("debug: %w", err)
	}
	if !info.Success {
		return fmt.Errorf("debug failed: %s", info.Message)
	}
	if d := info.Details; d != nil {
		fmt.Printf("URL:           %s\n", d.URL)
		fmt.Printf("Status:        %d\n", d.ResponseStatus)
		fmt.Printf("Length:        %d bytes\n", d.ResponseLength)
		fmt.Printf("Job rows:      %d\n", d.JobRowsFound)
		fmt.Printf("Session used:  %s\n", d.SessionIDUsed)
		if len(d.SampleJob) > 0 {
			fmt.Printf("Sample job:    %s\n", d.SampleJob)
		}
	}
	return nil
}

func printScrapeResult(resp *model.ScrapingResponse) {
	fmt.Printf("✓ %s\n", resp.Message)
	if resp.Data == nil {
		return
	}
	fmt.Printf("  Jobs: %d\n", len(resp.Data.Jobs))
	if s := resp.Data.Summary; s != nil {
		fmt.Printf("  Pages scraped: %d\n", s.TotalPagesScraped)
		fmt.Printf("  Duplicates skipped: %d\n", s.DuplicatesSkipped)
	}
	if p := resp.Data.ExcelPath(); p != "" {
		fmt.Printf("  Spreadsheet: %s\n", p)
	}
}

func saveDownload(ctx context.Context, app *AppContext, remote, out string) error {
	data, err := app.Client.DownloadResult(ctx, remote)
	if err != nil {
		return fmt.Errorf("download %s: %w", remote, err)
	}
	if out == "" {
		out = filepath.Base(remote)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("✓ Saved %s (%d bytes)\n", out, len(data))
	return nil
}
