package scraper

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Khootz/hkustjob/internal/activity"
	"github.com/Khootz/hkustjob/internal/model"
	"github.com/Khootz/hkustjob/internal/notify"
	"github.com/Khootz/hkustjob/internal/pagerange"
	"github.com/Khootz/hkustjob/internal/store"
)

// Backend starts a scrape. *Client implements it.
type Backend interface {
	StartScraping(ctx context.Context, req model.ScrapingRequest) (*model.ScrapingResponse, error)
}

// FeedSaver persists scraped jobs. *feed.Repository implements it.
type FeedSaver interface {
	Save(ctx context.Context, jobs []model.Job) (inserted, duplicates int, err error)
}

// WorkerConfig wires a Worker. Backend, Sessions and Cache are required;
// the rest are skipped when nil.
type WorkerConfig struct {
	Backend  Backend
	Sessions *store.SessionStore
	Cache    *store.JobCache
	Feed     FeedSaver
	Activity activity.Log
	Notifier notify.Notifier
}

// Worker runs one scrape end to end: it validates the page range,
// resolves the session credential, calls the backend, then caches and
// stores the jobs it gets back and records the run.
type Worker struct {
	backend  Backend
	sessions *store.SessionStore
	cache    *store.JobCache
	feed     FeedSaver
	activity activity.Log
	notifier notify.Notifier

	mu       sync.Mutex
	progress model.ScrapingProgress
}

func NewWorker(cfg WorkerConfig) *Worker {
	n := cfg.Notifier
	if n == nil {
		n = notify.Nop{}
	}
	return &Worker{
		backend:  cfg.Backend,
		sessions: cfg.Sessions,
		cache:    cfg.Cache,
		feed:     cfg.Feed,
		activity: cfg.Activity,
		notifier: n,
	}
}

// Run scrapes the pages described by pagesInput. credential overrides the
// saved session credential and, when given, replaces it.
//
// Page-range errors from pagerange and ErrNoCredential are returned before
// any request is made. A backend response with Success=false is returned
// without an error.
func (w *Worker) Run(ctx context.Context, pagesInput, credential string) (*model.ScrapingResponse, error) {
	pages, err := pagerange.Parse(pagesInput)
	if err != nil {
		return nil, err
	}

	cred, err := w.resolveCredential(ctx, credential)
	if err != nil {
		return nil, err
	}

	label := pagesLabel(pages)
	if advice := pagerange.Advise(pages); advice != "" {
		log.Printf("[worker] %s", advice)
	}
	log.Printf("[worker] Starting scrape of %s", label)

	first := pages[0]
	w.setProgress(model.ScrapingProgress{
		TotalPages:  len(pages),
		Status:      model.ProgressInProgress,
		CurrentPage: &first,
		Message:     "Scraping " + label,
	})

	start := time.Now()
	resp, err := w.backend.StartScraping(ctx, model.ScrapingRequest{Pages: pages, PHPSessionID: cred})
	if err != nil {
		w.finishWithError(ctx, label, err.Error(), time.Since(start))
		return nil, err
	}
	if !resp.Success {
		w.finishWithError(ctx, label, resp.Message, time.Since(start))
		return resp, nil
	}

	var found []model.Job
	if resp.Data != nil {
		found = resp.Data.Jobs
	}

	// ── Persist (non-fatal) ────────────────────────────────
	if err := w.cache.Save(ctx, found); err != nil {
		log.Printf("[worker] Job cache save failed: %v", err)
	}

	newJobs := len(found)
	if w.feed != nil {
		inserted, dupes, err := w.feed.Save(ctx, found)
		if err != nil {
			log.Printf("[worker] Feed save failed: %v", err)
		} else {
			newJobs = inserted
			log.Printf("[worker] Feed: inserted=%d duplicates=%d", inserted, dupes)
		}
	}

	completed := len(pages)
	if resp.Data != nil && resp.Data.Summary != nil && resp.Data.Summary.TotalPagesScraped > 0 {
		completed = resp.Data.Summary.TotalPagesScraped
	}
	w.setProgress(model.ScrapingProgress{
		TotalPages:     len(pages),
		CompletedPages: completed,
		TotalJobsFound: len(found),
		NewJobs:        newJobs,
		Status:         model.ProgressCompleted,
		Message:        resp.Message,
	})

	elapsed := time.Since(start)
	desc := fmt.Sprintf("Found %d jobs (%d new)", len(found), newJobs)
	log.Printf("[worker] Scrape of %s done in %s: %s", label, elapsed.Round(time.Millisecond), desc)

	entry := activity.NewEntry(activity.TypeScrape, "Scraped "+label, desc, activity.StatusSuccess)
	entry.Details = resp.Message
	entry.Duration = elapsed
	w.record(ctx, entry)
	w.notify(ctx, "Scraping complete", fmt.Sprintf("%s: %s", label, desc))

	return resp, nil
}

// Progress returns a snapshot of the current or last run.
func (w *Worker) Progress() model.ScrapingProgress {
	w.mu.Lock()
	defer w.mu.Unlock()
	p := w.progress
	if p.CurrentPage != nil {
		cp := *p.CurrentPage
		p.CurrentPage = &cp
	}
	return p
}

func (w *Worker) resolveCredential(ctx context.Context, credential string) (string, error) {
	if cred := strings.TrimSpace(credential); cred != "" {
		if err := w.sessions.SetCredential(ctx, cred); err != nil {
			log.Printf("[worker] Saving session credential failed: %v", err)
		}
		return cred, nil
	}

	cred, err := w.sessions.Credential(ctx)
	if err != nil {
		return "", fmt.Errorf("load session credential: %w", err)
	}
	if cred == "" {
		return "", ErrNoCredential
	}
	return cred, nil
}

func (w *Worker) finishWithError(ctx context.Context, label, msg string, elapsed time.Duration) {
	log.Printf("[worker] Scrape of %s failed: %s", label, msg)

	w.mu.Lock()
	w.progress.Status = model.ProgressError
	w.progress.CurrentPage = nil
	w.progress.Message = msg
	w.mu.Unlock()

	entry := activity.NewEntry(activity.TypeScrape, "Scrape of "+label+" failed", msg, activity.StatusError)
	entry.Duration = elapsed
	w.record(ctx, entry)
	w.notify(ctx, "Scraping failed", fmt.Sprintf("%s: %s", label, msg))
}

func (w *Worker) setProgress(p model.ScrapingProgress) {
	w.mu.Lock()
	w.progress = p
	w.mu.Unlock()
}

func (w *Worker) record(ctx context.Context, e activity.Entry) {
	if w.activity == nil {
		return
	}
	if err := w.activity.Record(ctx, e); err != nil {
		log.Printf("[worker] Activity record failed: %v", err)
	}
}

func (w *Worker) notify(ctx context.Context, subject, body string) {
	if err := w.notifier.Notify(ctx, subject, body); err != nil {
		log.Printf("[worker] Notification failed: %v", err)
	}
}

func pagesLabel(pages []int) string {
	if len(pages) == 1 {
		return fmt.Sprintf("page %d", pages[0])
	}
	return fmt.Sprintf("pages %d-%d", pages[0], pages[len(pages)-1])
}
