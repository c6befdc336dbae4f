package notify_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Khootz/hkustjob/internal/notify"
)

// fakeTelegram answers getMe and sendMessage like the Bot API does.
type fakeTelegram struct {
	mu   sync.Mutex
	sent []map[string]string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"hkustjob","username":"hkustjob_bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.mu.Lock()
		f.sent = append(f.sent, map[string]string{
			"chat_id": r.FormValue("chat_id"),
			"text":    r.FormValue("text"),
		})
		f.mu.Unlock()
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
	}
}

func TestTelegram_SendsToChat(t *testing.T) {
	fake := &fakeTelegram{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	tg, err := notify.NewTelegramWithClient("TOKEN", srv.URL+"/bot%s/%s", 42, srv.Client())
	if err != nil {
		t.Fatalf("NewTelegramWithClient: %v", err)
	}
	if err := tg.Notify(context.Background(), "Scrape complete", "12 jobs from pages 1-3"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(fake.sent))
	}
	if fake.sent[0]["chat_id"] != "42" {
		t.Errorf("chat_id = %q, want 42", fake.sent[0]["chat_id"])
	}
	if !strings.Contains(fake.sent[0]["text"], "Scrape complete") || !strings.Contains(fake.sent[0]["text"], "12 jobs") {
		t.Errorf("text = %q", fake.sent[0]["text"])
	}
}

func TestTelegram_RequiresTokenAndChat(t *testing.T) {
	if _, err := notify.NewTelegramWithClient("", "http://unused/bot%s/%s", 42, http.DefaultClient); err == nil {
		t.Error("empty token should be rejected")
	}
	if _, err := notify.NewTelegramWithClient("TOKEN", "http://unused/bot%s/%s", 0, http.DefaultClient); err == nil {
		t.Error("zero chat id should be rejected")
	}
}

func TestNop(t *testing.T) {
	var n notify.Notifier = notify.Nop{}
	if err := n.Notify(context.Background(), "x", "y"); err != nil {
		t.Errorf("Nop.Notify = %v", err)
	}
}
