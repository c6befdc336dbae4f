package grpcserver_test

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Khootz/hkustjob/internal/grpcserver"
	"github.com/Khootz/hkustjob/internal/model"
	"github.com/Khootz/hkustjob/internal/pagerange"
	"github.com/Khootz/hkustjob/internal/scraper"
	"github.com/Khootz/hkustjob/internal/store"
)

type fakeScraper struct {
	resp     *model.ScrapingResponse
	err      error
	gotPages string
	gotCred  string
	progress model.ScrapingProgress
}

func (f *fakeScraper) Run(_ context.Context, pages, cred string) (*model.ScrapingResponse, error) {
	f.gotPages, f.gotCred = pages, cred
	if _, err := pagerange.Parse(pages); err != nil {
		return nil, err
	}
	return f.resp, f.err
}

func (f *fakeScraper) Progress() model.ScrapingProgress { return f.progress }

type fakeHealth struct {
	hs  *model.HealthStatus
	err error
}

func (f fakeHealth) HealthCheck(context.Context) (*model.HealthStatus, error) { return f.hs, f.err }

func dial(t *testing.T, srv grpcserver.DashboardServer) *grpcserver.DashboardClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	grpcserver.Register(s, srv)
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return grpcserver.NewDashboardClient(conn)
}

func codeOf(err error) codes.Code { return status.Code(err) }

// ── ParsePages ─────────────────────────────────────────────────────────────

func TestParsePages(t *testing.T) {
	c := dial(t, grpcserver.NewServer(&fakeScraper{}, fakeHealth{}, store.NewJobCache(store.NewMemory())))

	out, err := c.ParsePages(context.Background(), "1 - 3")
	if err != nil {
		t.Fatalf("ParsePages: %v", err)
	}
	pages := out.GetFields()["pages"].GetListValue().GetValues()
	if len(pages) != 3 || pages[0].GetNumberValue() != 1 || pages[2].GetNumberValue() != 3 {
		t.Errorf("pages = %v", pages)
	}
	if adv := out.GetFields()["advisory"].GetStringValue(); adv != "" {
		t.Errorf("advisory = %q, want empty", adv)
	}

	for _, in := range []string{"0", "5-1", "1-200"} {
		if _, err := c.ParsePages(context.Background(), in); codeOf(err) != codes.InvalidArgument {
			t.Errorf("ParsePages(%q) code = %v, want InvalidArgument", in, codeOf(err))
		}
	}
}

// ── StartScrape ────────────────────────────────────────────────────────────

func TestStartScrape_Success(t *testing.T) {
	fs := &fakeScraper{resp: &model.ScrapingResponse{
		Success: true,
		Message: "ok",
		Data:    &model.ScrapeData{Jobs: []model.Job{{Company: "Acme", JobTitle: "Intern"}}},
	}}
	c := dial(t, grpcserver.NewServer(fs, fakeHealth{}, store.NewJobCache(store.NewMemory())))

	req, _ := structpb.NewStruct(map[string]any{"pages": "2-3", "phpSessionId": "sess"})
	out, err := c.StartScrape(context.Background(), req)
	if err != nil {
		t.Fatalf("StartScrape: %v", err)
	}
	if fs.gotPages != "2-3" || fs.gotCred != "sess" {
		t.Errorf("Run(%q, %q)", fs.gotPages, fs.gotCred)
	}
	if !out.GetFields()["success"].GetBoolValue() {
		t.Errorf("response = %v", out)
	}
	jobsList := out.GetFields()["data"].GetStructValue().GetFields()["jobs"].GetListValue().GetValues()
	if len(jobsList) != 1 || jobsList[0].GetStructValue().GetFields()["company"].GetStringValue() != "Acme" {
		t.Errorf("jobs = %v", jobsList)
	}
}

func TestStartScrape_ErrorMapping(t *testing.T) {
	cases := []struct {
		name  string
		pages string
		err   error
		want  codes.Code
	}{
		{"bad range", "9-1", nil, codes.InvalidArgument},
		{"no credential", "1", scraper.ErrNoCredential, codes.FailedPrecondition},
		{"network", "1", &scraper.APIError{Status: 0, Message: "dial tcp: refused"}, codes.Unavailable},
		{"bad request", "1", &scraper.APIError{Status: 400, Message: "PHP Session ID is required"}, codes.InvalidArgument},
		{"unauthorized", "1", &scraper.APIError{Status: 401, Message: "expired"}, codes.Unauthenticated},
		{"not found", "1", &scraper.APIError{Status: 404, Message: "Request failed"}, codes.NotFound},
		{"server", "1", &scraper.APIError{Status: 500, Message: "boom"}, codes.Internal},
	}
	for _, tc := range cases {
		fs := &fakeScraper{err: tc.err}
		c := dial(t, grpcserver.NewServer(fs, fakeHealth{}, store.NewJobCache(store.NewMemory())))
		req, _ := structpb.NewStruct(map[string]any{"pages": tc.pages})
		_, err := c.StartScrape(context.Background(), req)
		if got := codeOf(err); got != tc.want {
			t.Errorf("%s: code = %v, want %v (err %v)", tc.name, got, tc.want, err)
		}
	}
}

// ── ListJobs ───────────────────────────────────────────────────────────────

func TestListJobs_FiltersCachedJobs(t *testing.T) {
	cache := store.NewJobCache(store.NewMemory())
	_ = cache.Save(context.Background(), []model.Job{
		{Company: "Acme", JobTitle: "Software Intern"},
		{Company: "Globex", JobTitle: "Software Engineer", Applied: model.Applied(true)},
		{Company: "Umbrella", JobTitle: "Chemist", Applied: model.NoEmailState()},
	})
	c := dial(t, grpcserver.NewServer(&fakeScraper{}, fakeHealth{}, cache))

	req, _ := structpb.NewStruct(map[string]any{"search": "software", "status": "applied"})
	out, err := c.ListJobs(context.Background(), req)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	list := out.GetFields()["jobs"].GetListValue().GetValues()
	if len(list) != 1 || list[0].GetStructValue().GetFields()["company"].GetStringValue() != "Globex" {
		t.Errorf("jobs = %v", list)
	}
	stats := out.GetFields()["stats"].GetStructValue().GetFields()
	if stats["total"].GetNumberValue() != 3 || stats["no_email"].GetNumberValue() != 1 {
		t.Errorf("stats = %v", stats)
	}
	if out.GetFields()["updatedAt"].GetStringValue() == "" {
		t.Error("updatedAt should be set once jobs are cached")
	}
}

func TestListJobs_EmptyCacheAndBadStatus(t *testing.T) {
	c := dial(t, grpcserver.NewServer(&fakeScraper{}, fakeHealth{}, store.NewJobCache(store.NewMemory())))

	out, err := c.ListJobs(context.Background(), &structpb.Struct{})
	if err != nil {
		t.Fatalf("ListJobs on empty cache: %v", err)
	}
	if n := len(out.GetFields()["jobs"].GetListValue().GetValues()); n != 0 {
		t.Errorf("jobs on empty cache = %d, want 0", n)
	}

	req, _ := structpb.NewStruct(map[string]any{"status": "sent"})
	if _, err := c.ListJobs(context.Background(), req); codeOf(err) != codes.InvalidArgument {
		t.Errorf("bad status code = %v, want InvalidArgument", codeOf(err))
	}
}

// ── Progress / Health ──────────────────────────────────────────────────────

func TestProgressAndHealth(t *testing.T) {
	fs := &fakeScraper{progress: model.ScrapingProgress{TotalPages: 5, CompletedPages: 5, Status: model.ProgressCompleted}}
	hc := fakeHealth{hs: &model.HealthStatus{Status: "healthy", Timestamp: "now"}}
	c := dial(t, grpcserver.NewServer(fs, hc, store.NewJobCache(store.NewMemory())))

	p, err := c.Progress(context.Background())
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if p.GetFields()["status"].GetStringValue() != "completed" || p.GetFields()["total_pages"].GetNumberValue() != 5 {
		t.Errorf("progress = %v", p)
	}

	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.GetFields()["status"].GetStringValue() != "healthy" {
		t.Errorf("health = %v", h)
	}
}

func TestHealth_BackendDown(t *testing.T) {
	hc := fakeHealth{err: &scraper.APIError{Status: 0, Message: "connection refused"}}
	c := dial(t, grpcserver.NewServer(&fakeScraper{}, hc, store.NewJobCache(store.NewMemory())))

	if _, err := c.Health(context.Background()); codeOf(err) != codes.Unavailable {
		t.Errorf("code = %v, want Unavailable", codeOf(err))
	}
}
