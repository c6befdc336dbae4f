package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Khootz/hkustjob/internal/jobs"
	"github.com/Khootz/hkustjob/internal/model"
	"github.com/Khootz/hkustjob/internal/store"
)

// JobsListAction prints the cached jobs, filtered by --search and --status.
func JobsListAction(ctx context.Context, cmd *cli.Command) error {
	st, err := jobs.ParseStatus(cmd.String("status"))
	if err != nil {
		return err
	}

	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	all, savedAt, err := loadCached(ctx, app)
	if err != nil {
		return err
	}

	list := jobs.Filter{Search: cmd.String("search"), Status: st}.Apply(all)
	printJobs(list)
	fmt.Printf("\n%d of %d job(s), scraped %s\n", len(list), len(all), savedAt.Local().Format(time.DateTime))
	return nil
}

// JobsStatsAction prints the dashboard counters for the cached jobs.
func JobsStatsAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	all, _, err := loadCached(ctx, app)
	if err != nil {
		return err
	}

	s := jobs.Summarize(all)
	fmt.Printf("Total:      %d\n", s.Total)
	fmt.Printf("New:        %d\n", s.New)
	fmt.Printf("Generated:  %d\n", s.Generated)
	fmt.Printf("Applied:    %d\n", s.Applied)
	fmt.Printf("No email:   %d\n", s.NoEmail)
	return nil
}

// JobsFeedAction prints the stored job feed, newest first.
func JobsFeedAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	if app.Feed == nil {
		return errors.New("the job feed needs DATABASE_URL")
	}
	entries, err := app.Feed.List(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ADDED\tCOMPANY\tTITLE\tSTATUS")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.CreatedAt.Local().Format(time.DateOnly), e.Job.Company, e.Job.JobTitle, jobs.StatusOf(e.Job))
	}
	return w.Flush()
}

// ActivityAction prints recent activity entries.
func ActivityAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	entries, err := app.Activity.Recent(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSTATUS\tACTION\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format(time.DateTime), e.Status, e.Action, e.Description)
	}
	return w.Flush()
}

func loadCached(ctx context.Context, app *AppContext) ([]model.Job, time.Time, error) {
	all, savedAt, err := app.Cache.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, time.Time{}, errors.New("no jobs cached yet, run `hkustjob scrape` first")
	}
	return all, savedAt, err
}

func printJobs(list []model.Job) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMPANY\tTITLE\tNATURE\tDEADLINE\tSTATUS")
	for _, j := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", j.Company, j.JobTitle, j.JobNature, j.Deadline, jobs.StatusOf(j))
	}
	w.Flush()
}
