// Package scheduler wires up the cron job that periodically triggers a
// scrape at the cadence chosen in settings.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/Khootz/hkustjob/internal/model"
	"github.com/Khootz/hkustjob/internal/scraper"
)

// Cadence values accepted from settings.
const (
	CadenceManual = "manual"
	CadenceHourly = "hourly"
	CadenceDaily  = "daily"
	CadenceWeekly = "weekly"
)

var cadenceSpecs = map[string]string{
	CadenceHourly: "@hourly",
	CadenceDaily:  "@daily",
	CadenceWeekly: "@weekly",
}

// SpecFor returns the cron spec for a cadence. An explicit cron expression
// in override wins. The empty spec means "manual": nothing is scheduled.
func SpecFor(cadence, override string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		if _, err := cron.ParseStandard(override); err != nil {
			return "", fmt.Errorf("invalid cron spec %q: %w", override, err)
		}
		return override, nil
	}
	c := strings.ToLower(strings.TrimSpace(cadence))
	if c == "" || c == CadenceManual {
		return "", nil
	}
	spec, ok := cadenceSpecs[c]
	if !ok {
		return "", fmt.Errorf("unknown scrape cadence %q", cadence)
	}
	return spec, nil
}

// Runner runs one scrape. *scraper.Worker implements it.
type Runner interface {
	Run(ctx context.Context, pagesInput, credential string) (*model.ScrapingResponse, error)
}

// Scheduler wraps robfig/cron and manages the scrape loop.
type Scheduler struct {
	cron       *cron.Cron
	runner     Runner
	spec       string
	pages      string
	runOnStart bool
}

// New creates a Scheduler that scrapes pages on every tick of spec.
// Each tick uses the saved session credential.
func New(runner Runner, spec, pages string, runOnStart bool) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLogger(cron.DefaultLogger)),
		runner:     runner,
		spec:       spec,
		pages:      pages,
		runOnStart: runOnStart,
	}
}

// Start registers the job and starts the scheduler. With an empty spec it
// does nothing. When runOnStart is set one scrape also runs immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.spec == "" {
		log.Println("[scheduler] Cadence is manual — nothing scheduled")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		s.runScrape(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s, pages: %s", s.spec, s.pages)

	if s.runOnStart {
		go s.runScrape(ctx)
	}
	return nil
}

// Stop shuts down the scheduler and waits for a running scrape to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) runScrape(ctx context.Context) {
	log.Printf("[scheduler] Scrape cycle started (pages %s)", s.pages)

	resp, err := s.runner.Run(ctx, s.pages, "")
	switch {
	case errors.Is(err, scraper.ErrNoCredential):
		log.Println("[scheduler] No saved session credential — skipping cycle")
		return
	case err != nil:
		log.Printf("[scheduler] Scrape error: %v", err)
		return
	case !resp.Success:
		log.Printf("[scheduler] Backend reported failure: %s", resp.Message)
		return
	}

	log.Println("[scheduler] Scrape cycle complete")
}
