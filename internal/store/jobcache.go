package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Khootz/hkustjob/internal/model"
)

// JobCacheKey is the key the last fetched job list lives under.
const JobCacheKey = "jobs:last"

type cachedJobs struct {
	SavedAt time.Time   `json:"saved_at"`
	Jobs    []model.Job `json:"jobs"`
}

// JobCache keeps the most recent scrape result so the job views work
// without calling the backend again.
type JobCache struct {
	kv  KV
	now func() time.Time
}

func NewJobCache(kv KV) *JobCache {
	return &JobCache{kv: kv, now: time.Now}
}

// Save replaces the cached job list.
func (c *JobCache) Save(ctx context.Context, jobs []model.Job) error {
	if jobs == nil {
		jobs = []model.Job{}
	}
	raw, err := json.Marshal(cachedJobs{SavedAt: c.now().UTC(), Jobs: jobs})
	if err != nil {
		return fmt.Errorf("encode job cache: %w", err)
	}
	return c.kv.Set(ctx, JobCacheKey, string(raw))
}

// Load returns the cached jobs and when they were saved.
// It returns ErrNotFound when nothing has been cached yet.
func (c *JobCache) Load(ctx context.Context) ([]model.Job, time.Time, error) {
	raw, err := c.kv.Get(ctx, JobCacheKey)
	if err != nil {
		return nil, time.Time{}, err
	}
	var cached cachedJobs
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode job cache: %w", err)
	}
	return cached.Jobs, cached.SavedAt, nil
}
