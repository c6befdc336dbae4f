// Package sheets exports the cached job list to a Google Sheets tab.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Khootz/hkustjob/internal/jobs"
	"github.com/Khootz/hkustjob/internal/model"
)

const maxSheetName = 100

// Header is the first row of every exported tab.
var Header = []any{
	"Company", "Job Title", "Job Nature", "Email", "Website",
	"Deadline", "Posting Date", "Status", "Link", "Page",
}

// Exporter writes job lists into one spreadsheet.
type Exporter struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewExporter builds an Exporter from a service-account credentials JSON
// document and a spreadsheet URL or bare ID.
func NewExporter(ctx context.Context, spreadsheet, credentialsJSON string, opts ...option.ClientOption) (*Exporter, error) {
	credentialsJSON = strings.TrimSpace(credentialsJSON)
	if credentialsJSON == "" {
		return nil, fmt.Errorf("sheets: credentials are empty")
	}

	var creds map[string]any
	if err := json.Unmarshal([]byte(credentialsJSON), &creds); err != nil {
		return nil, fmt.Errorf("sheets: invalid credentials JSON: %w", err)
	}
	if creds["type"] != "service_account" {
		return nil, fmt.Errorf("sheets: credentials must be a service account, got type %v", creds["type"])
	}

	opts = append([]option.ClientOption{option.WithCredentialsJSON([]byte(credentialsJSON))}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return NewExporterWithService(svc, spreadsheet)
}

// NewExporterWithService wraps an already configured Sheets service.
func NewExporterWithService(svc *sheets.Service, spreadsheet string) (*Exporter, error) {
	id := ExtractSpreadsheetID(spreadsheet)
	if id == "" {
		return nil, fmt.Errorf("sheets: cannot find a spreadsheet id in %q", spreadsheet)
	}
	return &Exporter{svc: svc, spreadsheetID: id}, nil
}

// Export adds a tab named sheetName at the front of the spreadsheet and
// writes the header and one row per job into it. It returns the final tab
// name and its sheet id.
func (e *Exporter) Export(ctx context.Context, sheetName string, list []model.Job) (string, int64, error) {
	sheetName = SanitizeSheetName(sheetName)

	batch := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: sheetName, Index: 0},
			},
		}},
	}
	resp, err := e.svc.Spreadsheets.BatchUpdate(e.spreadsheetID, batch).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("create sheet %q: %w", sheetName, err)
	}

	var sheetID int64
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		sheetID = resp.Replies[0].AddSheet.Properties.SheetId
	}

	vr := &sheets.ValueRange{Values: Rows(list)}
	_, err = e.svc.Spreadsheets.Values.Update(e.spreadsheetID, fmt.Sprintf("'%s'!A1", sheetName), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return "", 0, fmt.Errorf("write sheet %q: %w", sheetName, err)
	}

	log.Printf("[sheets] Wrote %d jobs to sheet %q (id %d)", len(list), sheetName, sheetID)
	return sheetName, sheetID, nil
}

// Rows renders the header plus one row per job.
func Rows(list []model.Job) [][]any {
	values := make([][]any, 0, len(list)+1)
	values = append(values, Header)
	for _, j := range list {
		var page any = ""
		if j.Page > 0 {
			page = j.Page
		}
		values = append(values, []any{
			j.Company,
			j.JobTitle,
			j.JobNature,
			j.Email,
			j.Website,
			j.Deadline,
			j.PostingDate,
			string(jobs.StatusOf(j)),
			j.URL(),
			page,
		})
	}
	return values
}

// SanitizeSheetName replaces characters Sheets rejects in tab names and
// bounds the length.
func SanitizeSheetName(name string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", "?", "_", "*", "_", "[", "_", "]", "_", "'", "_")
	out := strings.TrimSpace(r.Replace(name))
	if out == "" {
		out = "Jobs"
	}
	if runes := []rune(out); len(runes) > maxSheetName {
		out = string(runes[:maxSheetName])
	}
	return out
}

// ExtractSpreadsheetID pulls the id out of a Sheets URL such as
// https://docs.google.com/spreadsheets/d/<id>/edit#gid=0. A bare id is
// returned unchanged.
func ExtractSpreadsheetID(s string) string {
	s = strings.TrimSpace(s)
	_, rest, found := strings.Cut(s, "/d/")
	if !found {
		if strings.ContainsAny(s, "/?#") {
			return ""
		}
		return s
	}
	if i := strings.IndexAny(rest, "/?#"); i != -1 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}
