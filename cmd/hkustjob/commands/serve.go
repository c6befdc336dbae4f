package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"
	"google.golang.org/grpc"

	"github.com/Khootz/hkustjob/internal/activity"
	"github.com/Khootz/hkustjob/internal/dashboard"
	"github.com/Khootz/hkustjob/internal/grpcserver"
	"github.com/Khootz/hkustjob/internal/scheduler"
)

// ServeAction runs the gRPC service, the dashboard HTTP API and the scrape
// scheduler until the process is interrupted.
func ServeAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()
	cfg := app.Config

	if cfg.TelegramEnabled() {
		log.Println("[hkustjob] Telegram notifications enabled")
	}
	if cfg.SheetsEnabled() {
		log.Println("[hkustjob] Sheets export configured")
	}

	// ── gRPC server ─────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("listen :%s: %w", cfg.GRPCPort, err)
	}
	grpcSrv := grpc.NewServer()
	grpcserver.Register(grpcSrv, grpcserver.NewServer(app.Worker, app.Client, app.Cache))

	go func() {
		log.Printf("[hkustjob] gRPC %s listening on :%s", grpcserver.ServiceName, cfg.GRPCPort)
		if err := grpcSrv.Serve(lis); err != nil {
			log.Printf("[hkustjob] gRPC server error: %v", err)
		}
	}()

	// ── HTTP dashboard ──────────────────────────────────────────────────────
	deps := dashboard.Deps{
		Scraper:    app.Worker,
		Downloader: app.Client,
		Sessions:   app.Sessions,
		Cache:      app.Cache,
		Activity:   app.Activity,
		Version:    Version,
	}
	if app.Feed != nil {
		deps.Feed = app.Feed
	}
	mux := http.NewServeMux()
	dashboard.NewHandler(deps).RegisterRoutes(mux)

	// Scrapes of long ranges can take minutes, so no WriteTimeout.
	httpSrv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.DashboardPort),
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("[hkustjob] v%s dashboard listening on :%s", Version, cfg.DashboardPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[hkustjob] HTTP server error: %v", err)
		}
	}()

	// ── Scheduler ───────────────────────────────────────────────────────────
	sched := scheduler.New(app.Worker, cfg.CronSpec, cfg.ScrapePages, cmd.Bool("run-on-start"))
	if err := sched.Start(ctx); err != nil {
		grpcSrv.Stop()
		httpSrv.Close()
		return fmt.Errorf("scheduler: %w", err)
	}

	started := activity.NewEntry(activity.TypeSystem, "Service started", fmt.Sprintf("gRPC :%s, dashboard :%s", cfg.GRPCPort, cfg.DashboardPort), activity.StatusSuccess)
	if err := app.Activity.Record(ctx, started); err != nil {
		log.Printf("[hkustjob] Activity log: %v", err)
	}

	// ── Graceful shutdown ───────────────────────────────────────────────────
	<-ctx.Done()

	log.Println("[hkustjob] Shutting down…")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[hkustjob] HTTP shutdown error: %v", err)
	}
	grpcSrv.GracefulStop()

	log.Println("[hkustjob] Stopped.")
	return nil
}
