// Package model defines the wire shapes exchanged with the scraping backend
// and the job records the dashboard keeps.
package model

import (
	"encoding/json"
	"fmt"
)

// NoEmail is the literal the backend puts in Job.Applied when a posting
// has no contact address to apply to.
const NoEmail = "NO EMAIL"

// AppliedState is either a boolean or the literal "NO EMAIL".
type AppliedState struct {
	Applied bool
	NoEmail bool
}

// Applied returns a boolean AppliedState.
func Applied(v bool) AppliedState { return AppliedState{Applied: v} }

// NoEmailState returns the "NO EMAIL" AppliedState.
func NoEmailState() AppliedState { return AppliedState{NoEmail: true} }

func (a AppliedState) MarshalJSON() ([]byte, error) {
	if a.NoEmail {
		return json.Marshal(NoEmail)
	}
	return json.Marshal(a.Applied)
}

func (a *AppliedState) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*a = AppliedState{Applied: b}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("applied: want bool or %q, got %s", NoEmail, data)
	}
	if s != NoEmail {
		return fmt.Errorf("applied: unknown value %q", s)
	}
	*a = AppliedState{NoEmail: true}
	return nil
}

// Job is one posting as returned by the backend. The trailing fields are
// only sent by some backend versions.
type Job struct {
	Company     string       `json:"company"`
	JobTitle    string       `json:"job_title"`
	JobNature   string       `json:"job_nature"`
	Email       string       `json:"email"`
	Website     string       `json:"website"`
	Details     string       `json:"details"`
	Deadline    string       `json:"deadline"`
	PostingDate string       `json:"posting_date"`
	Applied     AppliedState `json:"applied"`
	Letter      bool         `json:"letter"`
	JobID       string       `json:"job_id,omitempty"`
	DetailURL   string       `json:"detail_url,omitempty"`

	Link        string `json:"link,omitempty"`
	ScrapedDate string `json:"scraped_date,omitempty"`
	Page        int    `json:"page,omitempty"`
}

// URL returns the best link to the posting's detail page.
func (j Job) URL() string {
	if j.DetailURL != "" {
		return j.DetailURL
	}
	return j.Link
}

// ScrapingRequest is the body of POST /api/scrape.
type ScrapingRequest struct {
	Pages        []int  `json:"pages"`
	PHPSessionID string `json:"phpSessionId"`
}

// ScrapingResponse is the body returned by POST /api/scrape.
// Data is nil whenever Success is false.
type ScrapingResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    *ScrapeData `json:"data"`
}

// ScrapeData carries the jobs of a successful scrape.
type ScrapeData struct {
	Jobs          []Job    `json:"jobs"`
	Summary       *Summary `json:"summary,omitempty"`
	ExcelFilePath *string  `json:"excel_file_path,omitempty"`

	// Flat counters sent by backends that predate Summary.
	TotalJobs    int   `json:"total_jobs,omitempty"`
	PagesScraped []int `json:"pages_scraped,omitempty"`
}

// Summary describes a completed scrape.
type Summary struct {
	TotalPagesScraped int    `json:"total_pages_scraped"`
	Pages             []int  `json:"pages"`
	TotalJobs         int    `json:"total_jobs"`
	DuplicatesSkipped int    `json:"duplicates_skipped"`
	ExcelFilename     string `json:"excel_filename,omitempty"`
}

// ExcelPath returns the generated spreadsheet path, or "" when the backend
// did not produce one.
func (d *ScrapeData) ExcelPath() string {
	if d == nil || d.ExcelFilePath == nil {
		return ""
	}
	return *d.ExcelFilePath
}

// HealthStatus is the body returned by GET /api/health.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// DebugRequest is the body of POST /api/debug.
type DebugRequest struct {
	PHPSessionID string `json:"phpSessionId"`
	Page         int    `json:"page"`
}

// DebugInfo is the body returned by POST /api/debug.
type DebugInfo struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Details *DebugDetails `json:"debug_info,omitempty"`
}

// DebugDetails is what the backend saw when it fetched a single listing page.
type DebugDetails struct {
	URL            string          `json:"url"`
	ResponseStatus int             `json:"response_status"`
	ResponseLength int             `json:"response_length"`
	JobRowsFound   int             `json:"job_rows_found"`
	SampleJob      json.RawMessage `json:"sample_job,omitempty"`
	HTMLSample     string          `json:"html_sample"`
	SessionIDUsed  string          `json:"session_id_used"`
}

// ProgressStatus is the lifecycle state of a scrape run.
type ProgressStatus string

const (
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressError      ProgressStatus = "error"
)

// ScrapingProgress is a snapshot of the current or last scrape run.
type ScrapingProgress struct {
	TotalPages     int            `json:"total_pages"`
	CompletedPages int            `json:"completed_pages"`
	TotalJobsFound int            `json:"total_jobs_found"`
	NewJobs        int            `json:"new_jobs"`
	Status         ProgressStatus `json:"status"`
	CurrentPage    *int           `json:"current_page,omitempty"`
	Message        string         `json:"message,omitempty"`
}
