package activity_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Khootz/hkustjob/internal/activity"
)

func fill(t *testing.T, l activity.Log, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		e := activity.NewEntry(activity.TypeScrape, fmt.Sprintf("run %d", i), "", activity.StatusSuccess)
		if err := l.Record(context.Background(), e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
}

// ── NewEntry ───────────────────────────────────────────────────────────────

func TestNewEntry_StampsIDAndTime(t *testing.T) {
	a := activity.NewEntry(activity.TypeSystem, "start", "service started", activity.StatusSuccess)
	b := activity.NewEntry(activity.TypeSystem, "start", "service started", activity.StatusSuccess)
	if a.ID == uuid.Nil || a.ID == b.ID {
		t.Errorf("entries should get distinct non-nil IDs: %s, %s", a.ID, b.ID)
	}
	if a.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

// ── MemoryLog ──────────────────────────────────────────────────────────────

func TestMemoryLog_NewestFirstAndCapped(t *testing.T) {
	l := activity.NewMemoryLog(3)
	fill(t, l, 5)

	got, err := l.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent returned %d entries, want 3", len(got))
	}
	for i, want := range []string{"run 4", "run 3", "run 2"} {
		if got[i].Action != want {
			t.Errorf("entry %d = %q, want %q", i, got[i].Action, want)
		}
	}

	two, _ := l.Recent(context.Background(), 2)
	if len(two) != 2 || two[0].Action != "run 4" {
		t.Errorf("Recent(2) = %+v", two)
	}
}

// ── RedisLog ───────────────────────────────────────────────────────────────

func TestRedisLog_RecordTrimAndRecent(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	l := activity.NewRedisLog(rdb, 3)
	fill(t, l, 5)

	items, err := mr.List(activity.RedisKey)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("redis list length = %d, want 3", len(items))
	}

	got, err := l.Recent(context.Background(), 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || got[0].Action != "run 4" || got[1].Action != "run 3" {
		t.Errorf("Recent(2) = %+v", got)
	}
}

func TestRedisLog_PublishesEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sub := rdb.Subscribe(ctx, activity.EventChannel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	e := activity.NewEntry(activity.TypeScrape, "Scraped pages 1-3", "12 jobs", activity.StatusSuccess)
	if err := activity.NewRedisLog(rdb, 0).Record(ctx, e); err != nil {
		t.Fatalf("Record: %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("ReceiveMessage: %v", err)
	}
	var got activity.Entry
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.ID != e.ID || got.Action != e.Action {
		t.Errorf("published %+v, want %+v", got, e)
	}
}
