// Package feed persists scraped jobs in PostgreSQL so results accumulate
// across scrape runs instead of only living in the last-run cache.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Khootz/hkustjob/internal/db"
	"github.com/Khootz/hkustjob/internal/model"
)

// Entry is one stored job.
type Entry struct {
	ID        int64
	SourceKey string
	Job       model.Job
	CreatedAt time.Time
}

// Repository reads and writes the job_feed table.
type Repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

// SourceKey identifies a job across scrape runs: the portal job id when
// present, then its detail URL, then company and title.
func SourceKey(j model.Job) string {
	if id := strings.TrimSpace(j.JobID); id != "" {
		return "id:" + id
	}
	if u := strings.TrimSpace(j.URL()); u != "" {
		return "url:" + u
	}
	return "ct:" + strings.ToLower(strings.TrimSpace(j.Company)) + "|" + strings.ToLower(strings.TrimSpace(j.JobTitle))
}

// Save inserts jobs, skipping any whose source key is already stored.
// A row that fails to insert is logged and skipped.
func (r *Repository) Save(ctx context.Context, jobs []model.Job) (inserted, duplicates int, err error) {
	for _, job := range jobs {
		rawJSON, err := json.Marshal(job)
		if err != nil {
			slog.Warn("feed: encode job failed", "company", job.Company, "err", err)
			continue
		}

		// ── Dedup insert (skip if source_key already exists) ──
		tag, err := r.q.Exec(ctx,
			`INSERT INTO job_feed (source_key, company, job_title, raw_data, page)
			 SELECT $1, $2, $3, $4::jsonb, $5
			 WHERE NOT EXISTS (
			   SELECT 1 FROM job_feed WHERE source_key = $1
			 )`,
			SourceKey(job), job.Company, job.JobTitle, string(rawJSON), nullablePage(job.Page),
		)
		if err != nil {
			if ctx.Err() != nil {
				return inserted, duplicates, fmt.Errorf("feed save: %w", ctx.Err())
			}
			slog.Warn("feed: insert failed", "company", job.Company, "title", job.JobTitle, "err", err)
			continue
		}

		if tag.RowsAffected() == 0 {
			duplicates++
		} else {
			inserted++
		}
	}
	return inserted, duplicates, nil
}

// List returns up to limit stored jobs, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.q.Query(ctx,
		`SELECT id, source_key, raw_data, created_at
		 FROM job_feed
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query job_feed: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e   Entry
			raw []byte
		)
		if err := rows.Scan(&e.ID, &e.SourceKey, &raw, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if err := json.Unmarshal(raw, &e.Job); err != nil {
			return nil, fmt.Errorf("decode job %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullablePage(p int) *int {
	if p <= 0 {
		return nil
	}
	return &p
}
