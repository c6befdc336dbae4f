// Package dashboard implements the JSON HTTP API the dashboard pages use.
//
// Routes:
//
//	GET    /health              → service liveness
//	GET    /jobs                → cached jobs (?search=&status=) with counters
//	GET    /jobs/feed           → stored job feed, newest first (?limit=)
//	POST   /scrape              → run a scrape {pages, phpSessionId?}
//	GET    /progress            → current or last scrape run
//	GET    /activity            → recent activity entries (?limit=)
//	GET    /session             → whether a session credential is saved
//	PUT    /session             → save {phpSessionId}; blank clears it
//	DELETE /session             → clear the saved credential
//	GET    /download?path=...   → proxy a generated result file
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/Khootz/hkustjob/internal/activity"
	"github.com/Khootz/hkustjob/internal/feed"
	"github.com/Khootz/hkustjob/internal/jobs"
	"github.com/Khootz/hkustjob/internal/model"
	"github.com/Khootz/hkustjob/internal/pagerange"
	"github.com/Khootz/hkustjob/internal/scraper"
	"github.com/Khootz/hkustjob/internal/store"
)

// Scraper runs scrapes and reports progress. *scraper.Worker implements it.
type Scraper interface {
	Run(ctx context.Context, pagesInput, credential string) (*model.ScrapingResponse, error)
	Progress() model.ScrapingProgress
}

// Downloader fetches result files. *scraper.Client implements it.
type Downloader interface {
	DownloadResult(ctx context.Context, filePath string) ([]byte, error)
}

// FeedLister lists stored jobs. *feed.Repository implements it.
type FeedLister interface {
	List(ctx context.Context, limit int) ([]feed.Entry, error)
}

// Deps are the Handler's collaborators. Feed and Activity may be nil.
type Deps struct {
	Scraper    Scraper
	Downloader Downloader
	Sessions   *store.SessionStore
	Cache      *store.JobCache
	Feed       FeedLister
	Activity   activity.Log
	Version    string
}

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler holds shared dependencies.
type Handler struct {
	d Deps
}

func NewHandler(d Deps) *Handler {
	return &Handler{d: d}
}

// RegisterRoutes mounts all dashboard routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /jobs", h.listJobs)
	mux.HandleFunc("GET /jobs/feed", h.listFeed)
	mux.HandleFunc("POST /scrape", h.startScrape)
	mux.HandleFunc("GET /progress", h.progress)
	mux.HandleFunc("GET /activity", h.recentActivity)
	mux.HandleFunc("GET /session", h.getSession)
	mux.HandleFunc("PUT /session", h.putSession)
	mux.HandleFunc("DELETE /session", h.deleteSession)
	mux.HandleFunc("GET /download", h.download)
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]string{
		"status":  "ok",
		"service": "hkustjob",
		"version": h.d.Version,
	})
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	st, err := jobs.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	all, savedAt, err := h.d.Cache.Load(r.Context())
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("[dashboard] job cache load error: %v", err)
		jsonError(w, "cache error", http.StatusInternalServerError)
		return
	}

	var updatedAt *time.Time
	if !savedAt.IsZero() {
		updatedAt = &savedAt
	}
	filter := jobs.Filter{Search: r.URL.Query().Get("search"), Status: st}
	jsonOK(w, map[string]any{
		"jobs":      filter.Apply(all),
		"stats":     jobs.Summarize(all),
		"updatedAt": updatedAt,
	})
}

func (h *Handler) listFeed(w http.ResponseWriter, r *http.Request) {
	if h.d.Feed == nil {
		jsonError(w, "job feed is not configured", http.StatusNotFound)
		return
	}
	entries, err := h.d.Feed.List(r.Context(), queryInt(r, "limit", 100))
	if err != nil {
		log.Printf("[dashboard] feed list error: %v", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	type feedItem struct {
		ID        int64     `json:"id"`
		SourceKey string    `json:"sourceKey"`
		Job       model.Job `json:"job"`
		CreatedAt time.Time `json:"createdAt"`
	}
	out := make([]feedItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, feedItem{ID: e.ID, SourceKey: e.SourceKey, Job: e.Job, CreatedAt: e.CreatedAt})
	}
	jsonOK(w, out)
}

func (h *Handler) startScrape(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Pages        string `json:"pages"`
		PHPSessionID string `json:"phpSessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	resp, err := h.d.Scraper.Run(r.Context(), body.Pages, body.PHPSessionID)
	if err != nil {
		writeScrapeError(w, err)
		return
	}
	jsonOK(w, resp)
}

func (h *Handler) progress(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, h.d.Scraper.Progress())
}

func (h *Handler) recentActivity(w http.ResponseWriter, r *http.Request) {
	if h.d.Activity == nil {
		jsonOK(w, []activity.Entry{})
		return
	}
	entries, err := h.d.Activity.Recent(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		log.Printf("[dashboard] activity read error: %v", err)
		jsonError(w, "activity log error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, entries)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	cred, err := h.d.Sessions.Credential(r.Context())
	if err != nil {
		log.Printf("[dashboard] session read error: %v", err)
		jsonError(w, "session store error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, map[string]bool{"saved": cred != ""})
}

func (h *Handler) putSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PHPSessionID string `json:"phpSessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := h.d.Sessions.SetCredential(r.Context(), body.PHPSessionID); err != nil {
		log.Printf("[dashboard] session write error: %v", err)
		jsonError(w, "session store error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.d.Sessions.Clear(r.Context()); err != nil {
		log.Printf("[dashboard] session clear error: %v", err)
		jsonError(w, "session store error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	filePath := r.URL.Query().Get("path")
	if filePath == "" {
		jsonError(w, "path is required", http.StatusBadRequest)
		return
	}
	data, err := h.d.Downloader.DownloadResult(r.Context(), filePath)
	if err != nil {
		writeScrapeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(filePath)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func writeScrapeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pagerange.ErrInvalidRangeFormat),
		errors.Is(err, pagerange.ErrInvalidPageNumber),
		errors.Is(err, pagerange.ErrRangeTooLarge),
		errors.Is(err, scraper.ErrNoCredential):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if apiErr, ok := scraper.AsAPIError(err); ok {
		jsonErrorStatus(w, apiErr.Message, http.StatusBadGateway, apiErr.Status)
		return
	}
	log.Printf("[dashboard] scrape error: %v", err)
	jsonError(w, "internal server error", http.StatusInternalServerError)
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// jsonErrorStatus also reports the backend's own HTTP status (0 when the
// backend could not be reached).
func jsonErrorStatus(w http.ResponseWriter, msg string, code, backendStatus int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{"error": msg, "backendStatus": backendStatus})
}
