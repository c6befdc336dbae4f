// hkustjob — HKUST job-board dashboard service
//
// Drives a scraping backend that logs in to the HKUST job board with a
// PHP session credential and returns job postings. Keeps the session
// credential and the last scraped job list in Redis, PostgreSQL or memory,
// and exposes them through:
//   - a CLI (scrape, download, session, jobs, export, …)
//   - a gRPC service (hkustjob.v1.Dashboard)
//   - a JSON HTTP API for the dashboard pages
//
// Scrapes can also run on a cron cadence from `serve`.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/Khootz/hkustjob/cmd/hkustjob/commands"
)

func envFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "env",
		Usage: "path to an env file",
		Value: ".env",
	}
}

func sessionFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "session",
		Usage: "PHP session ID (defaults to the saved one)",
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "hkustjob",
		Usage: "HKUST job-board scraping dashboard",
		Commands: []*cli.Command{
			{
				Name:  "scrape",
				Usage: "scrape a range of listing pages",
				Flags: []cli.Flag{
					envFlag(),
					sessionFlag(),
					&cli.StringFlag{
						Name:  "pages",
						Usage: `page or range, e.g. "3" or "1-5" (defaults to SCRAPE_PAGES)`,
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "also download the generated spreadsheet to this file",
					},
				},
				Action: commands.ScrapeAction,
			},
			{
				Name:  "pages",
				Usage: "validate a page range without scraping",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "pages",
						Usage:    `page or range, e.g. "3" or "1-5"`,
						Required: true,
					},
				},
				Action: commands.ParseAction,
			},
			{
				Name:  "download",
				Usage: "download a spreadsheet produced by a scrape",
				Flags: []cli.Flag{
					envFlag(),
					&cli.StringFlag{
						Name:     "path",
						Usage:    "file path reported by the backend",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "local file (defaults to the remote file name)",
					},
				},
				Action: commands.DownloadAction,
			},
			{
				Name:   "health",
				Usage:  "check the scraping backend",
				Flags:  []cli.Flag{envFlag()},
				Action: commands.HealthAction,
			},
			{
				Name:  "debug",
				Usage: "ask the backend to fetch one page and report what it saw",
				Flags: []cli.Flag{
					envFlag(),
					sessionFlag(),
					&cli.IntFlag{
						Name:  "page",
						Usage: "listing page to fetch",
						Value: 1,
					},
				},
				Action: commands.DebugAction,
			},
			{
				Name:  "session",
				Usage: "manage the saved PHP session credential",
				Commands: []*cli.Command{
					{
						Name:  "set",
						Usage: "save the credential",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:     "value",
								Usage:    "PHPSESSID cookie value",
								Required: true,
							},
						},
						Action: commands.SessionSetAction,
					},
					{
						Name:   "show",
						Usage:  "show the saved credential (masked)",
						Flags:  []cli.Flag{envFlag()},
						Action: commands.SessionShowAction,
					},
					{
						Name:   "clear",
						Usage:  "remove the saved credential",
						Flags:  []cli.Flag{envFlag()},
						Action: commands.SessionClearAction,
					},
				},
			},
			{
				Name:  "jobs",
				Usage: "inspect scraped jobs",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list the last scraped jobs",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:  "search",
								Usage: "match company or title",
							},
							&cli.StringFlag{
								Name:  "status",
								Usage: "all, new, generated, applied or no_email",
								Value: "all",
							},
						},
						Action: commands.JobsListAction,
					},
					{
						Name:   "stats",
						Usage:  "show job counters",
						Flags:  []cli.Flag{envFlag()},
						Action: commands.JobsStatsAction,
					},
					{
						Name:  "feed",
						Usage: "list every job stored so far (needs DATABASE_URL)",
						Flags: []cli.Flag{
							envFlag(),
							&cli.IntFlag{
								Name:  "limit",
								Usage: "maximum number of jobs",
								Value: 50,
							},
						},
						Action: commands.JobsFeedAction,
					},
				},
			},
			{
				Name:  "activity",
				Usage: "show recent activity",
				Flags: []cli.Flag{
					envFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "maximum number of entries",
						Value: 20,
					},
				},
				Action: commands.ActivityAction,
			},
			{
				Name:  "export",
				Usage: "export scraped jobs",
				Commands: []*cli.Command{
					{
						Name:  "sheets",
						Usage: "write the last scraped jobs to a new Google Sheets tab",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:  "sheet",
								Usage: "tab name (defaults to a timestamp)",
							},
							&cli.StringFlag{
								Name:  "status",
								Usage: "only export jobs with this status",
								Value: "all",
							},
							&cli.StringFlag{
								Name:  "credentials",
								Usage: "service account JSON file (defaults to GOOGLE_SHEETS_CREDENTIALS)",
							},
						},
						Action: commands.ExportSheetsAction,
					},
				},
			},
			{
				Name:  "serve",
				Usage: "run the gRPC service, dashboard API and scheduler",
				Flags: []cli.Flag{
					envFlag(),
					&cli.BoolFlag{
						Name:  "run-on-start",
						Usage: "scrape once immediately when a cadence is set",
					},
				},
				Action: commands.ServeAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatalf("[hkustjob] %v", err)
	}
}
