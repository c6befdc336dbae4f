package jobs_test

import (
	"testing"

	"github.com/Khootz/hkustjob/internal/jobs"
	"github.com/Khootz/hkustjob/internal/model"
)

var sample = []model.Job{
	{Company: "Acme Corp", JobTitle: "Software Intern"},
	{Company: "Globex", JobTitle: "Data Analyst", Letter: true},
	{Company: "Initech", JobTitle: "Software Engineer", Letter: true, Applied: model.Applied(true)},
	{Company: "Umbrella", JobTitle: "Lab Assistant", Applied: model.NoEmailState()},
}

// ── StatusOf ───────────────────────────────────────────────────────────────

func TestStatusOf(t *testing.T) {
	want := []jobs.Status{jobs.StatusNew, jobs.StatusGenerated, jobs.StatusApplied, jobs.StatusNoEmail}
	for i, j := range sample {
		if got := jobs.StatusOf(j); got != want[i] {
			t.Errorf("StatusOf(%s) = %q, want %q", j.Company, got, want[i])
		}
	}
}

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	cases := map[string]jobs.Status{
		"":          jobs.StatusAll,
		"all":       jobs.StatusAll,
		"new":       jobs.StatusNew,
		"Applied":   jobs.StatusApplied,
		"generated": jobs.StatusGenerated,
		" no_email": jobs.StatusNoEmail,
	}
	for in, want := range cases {
		got, err := jobs.ParseStatus(in)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	if _, err := jobs.ParseStatus("sent"); err == nil {
		t.Error("ParseStatus(\"sent\") expected error, got nil")
	}
}

// ── Filter ─────────────────────────────────────────────────────────────────

func TestFilter_SearchMatchesTitleOrCompany(t *testing.T) {
	got := jobs.Filter{Search: "SOFTWARE"}.Apply(sample)
	if len(got) != 2 || got[0].Company != "Acme Corp" || got[1].Company != "Initech" {
		t.Errorf("search by title = %+v", got)
	}
	got = jobs.Filter{Search: "globex"}.Apply(sample)
	if len(got) != 1 || got[0].Company != "Globex" {
		t.Errorf("search by company = %+v", got)
	}
}

func TestFilter_StatusAndSearchCombine(t *testing.T) {
	got := jobs.Filter{Search: "software", Status: jobs.StatusApplied}.Apply(sample)
	if len(got) != 1 || got[0].Company != "Initech" {
		t.Errorf("combined filter = %+v", got)
	}
}

func TestFilter_EmptyMatchesAll(t *testing.T) {
	for _, f := range []jobs.Filter{{}, {Status: jobs.StatusAll}, {Search: "   "}} {
		if got := f.Apply(sample); len(got) != len(sample) {
			t.Errorf("%+v.Apply returned %d jobs, want %d", f, len(got), len(sample))
		}
	}
}

func TestFilter_NoMatchReturnsEmptySlice(t *testing.T) {
	got := jobs.Filter{Search: "zzz"}.Apply(sample)
	if got == nil || len(got) != 0 {
		t.Errorf("no-match Apply = %#v, want empty non-nil slice", got)
	}
}

// ── Summarize ──────────────────────────────────────────────────────────────

func TestSummarize(t *testing.T) {
	got := jobs.Summarize(sample)
	want := jobs.Stats{Total: 4, New: 1, Generated: 1, Applied: 1, NoEmail: 1}
	if got != want {
		t.Errorf("Summarize = %+v, want %+v", got, want)
	}
	if empty := jobs.Summarize(nil); empty != (jobs.Stats{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", empty)
	}
}
