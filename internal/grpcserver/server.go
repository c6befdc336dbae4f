// Package grpcserver implements the hkustjob.v1.Dashboard gRPC service.
//
// It delegates all work to the scrape worker, the job cache and the
// backend client, and handles only the gRPC transport concerns: error
// mapping and conversion between domain values and protobuf Structs.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

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

// HealthChecker checks the backend. *scraper.Client implements it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*model.HealthStatus, error)
}

// Server implements DashboardServer.
type Server struct {
	scraper Scraper
	backend HealthChecker
	cache   *store.JobCache
}

// NewServer constructs a gRPC Server.
func NewServer(s Scraper, backend HealthChecker, cache *store.JobCache) *Server {
	return &Server{scraper: s, backend: backend, cache: cache}
}

var _ DashboardServer = (*Server)(nil)

// ─── RPC implementations ──────────────────────────────────────────────────────

// ParsePages validates a page-range input and returns the expanded pages
// with the advisory the UI shows for long ranges.
func (s *Server) ParsePages(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	pages, err := pagerange.Parse(req.GetValue())
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(map[string]any{
		"pages":    pages,
		"advisory": pagerange.Advise(pages),
	})
}

// StartScrape runs one scrape. Fields: pages (string), phpSessionId (optional).
func (s *Server) StartScrape(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	resp, err := s.scraper.Run(ctx, fields["pages"].GetStringValue(), fields["phpSessionId"].GetStringValue())
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(resp)
}

// ListJobs returns the cached jobs filtered by search and status, plus the
// dashboard counters over the whole cached list.
func (s *Server) ListJobs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	st, err := jobs.ParseStatus(fields["status"].GetStringValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	all, savedAt, err := s.cache.Load(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, toGRPCError(err)
	}

	filter := jobs.Filter{Search: fields["search"].GetStringValue(), Status: st}
	updatedAt := ""
	if !savedAt.IsZero() {
		updatedAt = savedAt.Format(time.RFC3339)
	}
	return toStruct(map[string]any{
		"jobs":      filter.Apply(all),
		"stats":     jobs.Summarize(all),
		"updatedAt": updatedAt,
	})
}

// Progress returns the current or last scrape run.
func (s *Server) Progress(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(s.scraper.Progress())
}

// Health proxies the backend health check.
func (s *Server) Health(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	hs, err := s.backend.HealthCheck(ctx)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(hs)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	switch {
	case errors.Is(err, pagerange.ErrInvalidRangeFormat),
		errors.Is(err, pagerange.ErrInvalidPageNumber),
		errors.Is(err, pagerange.ErrRangeTooLarge):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, scraper.ErrNoCredential):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	if apiErr, ok := scraper.AsAPIError(err); ok {
		return status.Error(apiCode(apiErr.Status), apiErr.Message)
	}
	return status.Error(codes.Internal, "internal server error")
}

func apiCode(httpStatus int) codes.Code {
	switch {
	case httpStatus == 0:
		return codes.Unavailable
	case httpStatus == http.StatusUnauthorized, httpStatus == http.StatusForbidden:
		return codes.Unauthenticated
	case httpStatus == http.StatusNotFound:
		return codes.NotFound
	case httpStatus >= 400 && httpStatus < 500:
		return codes.InvalidArgument
	}
	return codes.Internal
}

// toStruct converts a JSON-encodable value into a protobuf Struct, keeping
// the JSON field names the backend uses.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}
