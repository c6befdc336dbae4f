package jobs

import (
	"strings"

	"github.com/Khootz/hkustjob/internal/model"
)

// Filter narrows a job list the way the Jobs page does.
type Filter struct {
	Search string // case-insensitive substring of title or company
	Status Status // "" or StatusAll disables status filtering
}

// Matches reports whether j passes the filter.
func (f Filter) Matches(j model.Job) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(j.JobTitle), q) &&
			!strings.Contains(strings.ToLower(j.Company), q) {
			return false
		}
	}
	if f.Status != "" && f.Status != StatusAll && StatusOf(j) != f.Status {
		return false
	}
	return true
}

// Apply returns the jobs that match, preserving order.
func (f Filter) Apply(list []model.Job) []model.Job {
	out := make([]model.Job, 0, len(list))
	for _, j := range list {
		if f.Matches(j) {
			out = append(out, j)
		}
	}
	return out
}

// Stats are the counters on the dashboard overview.
type Stats struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Generated int `json:"generated"`
	Applied   int `json:"applied"`
	NoEmail   int `json:"no_email"`
}

func Summarize(list []model.Job) Stats {
	s := Stats{Total: len(list)}
	for _, j := range list {
		switch StatusOf(j) {
		case StatusNew:
			s.New++
		case StatusGenerated:
			s.Generated++
		case StatusApplied:
			s.Applied++
		case StatusNoEmail:
			s.NoEmail++
		}
	}
	return s
}
