package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/Khootz/hkustjob/internal/model"
	"github.com/Khootz/hkustjob/internal/scheduler"
	"github.com/Khootz/hkustjob/internal/scraper"
)

// ── SpecFor ────────────────────────────────────────────────────────────────

func TestSpecFor_Cadences(t *testing.T) {
	cases := []struct {
		cadence string
		want    string
	}{
		{"hourly", "@hourly"},
		{"daily", "@daily"},
		{"Weekly", "@weekly"},
		{"manual", ""},
		{"", ""},
	}
	for _, c := range cases {
		got, err := scheduler.SpecFor(c.cadence, "")
		if err != nil {
			t.Errorf("SpecFor(%q) returned unexpected error: %v", c.cadence, err)
		}
		if got != c.want {
			t.Errorf("SpecFor(%q) = %q, want %q", c.cadence, got, c.want)
		}
	}
}

func TestSpecFor_OverrideWins(t *testing.T) {
	got, err := scheduler.SpecFor("daily", "30 7 * * 1-5")
	if err != nil || got != "30 7 * * 1-5" {
		t.Errorf("SpecFor with override = %q, %v", got, err)
	}
}

func TestSpecFor_Invalid(t *testing.T) {
	if _, err := scheduler.SpecFor("fortnightly", ""); err == nil {
		t.Error("unknown cadence should be rejected")
	}
	if _, err := scheduler.SpecFor("daily", "not a cron"); err == nil {
		t.Error("bad override should be rejected")
	}
}

// ── Scheduler ──────────────────────────────────────────────────────────────

type chanRunner struct {
	calls chan [2]string
	err   error
}

func (r *chanRunner) Run(_ context.Context, pages, cred string) (*model.ScrapingResponse, error) {
	r.calls <- [2]string{pages, cred}
	if r.err != nil {
		return nil, r.err
	}
	return &model.ScrapingResponse{Success: true}, nil
}

func TestStart_RunOnStartUsesConfiguredPages(t *testing.T) {
	r := &chanRunner{calls: make(chan [2]string, 1)}
	s := scheduler.New(r, "@daily", "1-3", true)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	select {
	case got := <-r.calls:
		if got[0] != "1-3" || got[1] != "" {
			t.Errorf("Run(%q, %q), want Run(\"1-3\", \"\")", got[0], got[1])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scrape did not run on start")
	}
}

func TestStart_NoCredentialIsNotFatal(t *testing.T) {
	r := &chanRunner{calls: make(chan [2]string, 1), err: scraper.ErrNoCredential}
	s := scheduler.New(r, "@hourly", "1", true)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-r.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("scrape did not run on start")
	}
	s.Stop()
}

func TestStart_ManualSchedulesNothing(t *testing.T) {
	r := &chanRunner{calls: make(chan [2]string, 1)}
	s := scheduler.New(r, "", "1", true)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	select {
	case <-r.calls:
		t.Error("manual cadence should not run a scrape")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStart_InvalidSpec(t *testing.T) {
	s := scheduler.New(&chanRunner{calls: make(chan [2]string, 1)}, "every tuesday", "1", false)
	if err := s.Start(context.Background()); err == nil {
		s.Stop()
		t.Error("Start with an invalid spec should fail")
	}
}
