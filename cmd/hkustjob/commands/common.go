package commands

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Khootz/hkustjob/internal/activity"
	"github.com/Khootz/hkustjob/internal/config"
	"github.com/Khootz/hkustjob/internal/db"
	"github.com/Khootz/hkustjob/internal/feed"
	"github.com/Khootz/hkustjob/internal/notify"
	"github.com/Khootz/hkustjob/internal/scraper"
	"github.com/Khootz/hkustjob/internal/store"
)

// Version is reported by the health endpoints.
const Version = "1.0.0"

// AppContext holds everything a command needs.
type AppContext struct {
	Config   *config.Config
	Client   *scraper.Client
	Sessions *store.SessionStore
	Cache    *store.JobCache
	Feed     *feed.Repository // nil without DATABASE_URL
	Activity activity.Log
	Notifier notify.Notifier
	Worker   *scraper.Worker

	pool *pgxpool.Pool
	rdb  *redis.Client
}

// NewAppContext loads configuration, connects the configured state
// backends and builds the scrape worker.
//
// Key-value state goes to Redis when REDIS_URL is set, else to PostgreSQL
// when DATABASE_URL is set, else to process memory. The job feed needs
// PostgreSQL.
func NewAppContext(ctx context.Context, envFile string) (*AppContext, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	app := &AppContext{
		Config:   cfg,
		Client:   scraper.New(scraper.ClientConfig{BaseURL: cfg.BaseURL()}, scraper.WithLogger(slog.Default())),
		Notifier: notify.Nop{},
	}

	if cfg.DatabaseURL != "" {
		log.Println("[hkustjob] Connecting to PostgreSQL…")
		app.pool, err = db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := db.Migrate(ctx, app.pool); err != nil {
			app.Close()
			return nil, err
		}
		log.Println("[hkustjob] PostgreSQL connected ✓")
		app.Feed = feed.NewRepository(app.pool)
	}

	if cfg.RedisURL != "" {
		log.Println("[hkustjob] Connecting to Redis…")
		app.rdb, err = db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		log.Println("[hkustjob] Redis connected ✓")
	}

	var kv store.KV
	switch {
	case app.rdb != nil:
		kv = store.NewRedis(app.rdb)
		app.Activity = activity.NewRedisLog(app.rdb, activity.DefaultCapacity)
	case app.pool != nil:
		kv = store.NewPostgres(app.pool)
		app.Activity = activity.NewMemoryLog(activity.DefaultCapacity)
	default:
		log.Println("[hkustjob] No REDIS_URL or DATABASE_URL — state is kept in memory only")
		kv = store.NewMemory()
		app.Activity = activity.NewMemoryLog(activity.DefaultCapacity)
	}
	app.Sessions = store.NewSessionStore(kv)
	app.Cache = store.NewJobCache(kv)

	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			// non-fatal: scrapes still run without notifications
			slog.Warn("telegram notifier disabled", "err", err)
		} else {
			app.Notifier = tg
		}
	}

	wc := scraper.WorkerConfig{
		Backend:  app.Client,
		Sessions: app.Sessions,
		Cache:    app.Cache,
		Activity: app.Activity,
		Notifier: app.Notifier,
	}
	if app.Feed != nil {
		wc.Feed = app.Feed
	}
	app.Worker = scraper.NewWorker(wc)

	return app, nil
}

// Close releases the database connections.
func (a *AppContext) Close() {
	if a.rdb != nil {
		a.rdb.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
