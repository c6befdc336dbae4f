// Package jobs derives the dashboard views over a list of scraped jobs:
// per-job status, search and status filtering, and summary counts.
//
// Status is derived from the backend fields, in this order:
//
//	applied == "NO EMAIL" ──► no_email
//	applied == true       ──► applied
//	letter  == true       ──► generated
//	otherwise             ──► new
package jobs

import (
	"fmt"
	"strings"

	"github.com/Khootz/hkustjob/internal/model"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusApplied   Status = "applied"
	StatusGenerated Status = "generated"
	StatusNoEmail   Status = "no_email"

	// StatusAll matches every job in a Filter.
	StatusAll Status = "all"
)

// StatusOf returns the display status of j.
func StatusOf(j model.Job) Status {
	switch {
	case j.Applied.NoEmail:
		return StatusNoEmail
	case j.Applied.Applied:
		return StatusApplied
	case j.Letter:
		return StatusGenerated
	}
	return StatusNew
}

// ParseStatus converts user input to a Status. "" and "all" yield StatusAll.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case "", StatusAll:
		return StatusAll, nil
	case StatusNew, StatusApplied, StatusGenerated, StatusNoEmail:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}
