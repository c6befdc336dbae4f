// Package activity keeps the activity log shown on the dashboard: one
// entry per scrape run or notable system event, newest first.
package activity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeScrape Type = "scrape"
	TypeSystem Type = "system"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusWarning Status = "warning"
)

// Entry is one line of the activity log.
type Entry struct {
	ID          uuid.UUID     `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	Type        Type          `json:"type"`
	Action      string        `json:"action"`
	Description string        `json:"description"`
	Status      Status        `json:"status"`
	Details     string        `json:"details,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
}

// NewEntry stamps a fresh entry with a random ID and the current time.
func NewEntry(typ Type, action, description string, status Status) Entry {
	return Entry{
		ID:          uuid.New(),
		Timestamp:   time.Now().UTC(),
		Type:        typ,
		Action:      action,
		Description: description,
		Status:      status,
	}
}

// Log records entries and returns the most recent ones.
type Log interface {
	Record(ctx context.Context, e Entry) error
	// Recent returns at most n entries, newest first.
	Recent(ctx context.Context, n int) ([]Entry, error)
}

// DefaultCapacity bounds how many entries a log keeps.
const DefaultCapacity = 200

// MemoryLog is an in-process Log.
type MemoryLog struct {
	mu      sync.Mutex
	entries []Entry // newest first
	cap     int
}

func NewMemoryLog(capacity int) *MemoryLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryLog{cap: capacity}
}

func (m *MemoryLog) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append([]Entry{e}, m.entries...)
	if len(m.entries) > m.cap {
		m.entries = m.entries[:m.cap]
	}
	return nil
}

func (m *MemoryLog) Recent(_ context.Context, n int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n <= 0 || n > len(m.entries) {
		n = len(m.entries)
	}
	out := make([]Entry, n)
	copy(out, m.entries[:n])
	return out, nil
}
