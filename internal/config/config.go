// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, Load returns
// an error and the command exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Khootz/hkustjob/internal/pagerange"
	"github.com/Khootz/hkustjob/internal/scheduler"
	"github.com/Khootz/hkustjob/internal/scraper"
)

// Config holds all runtime configuration.
type Config struct {
	// Scraping backend
	ScraperDev    bool
	ScraperOrigin string

	// State
	RedisURL    string
	DatabaseURL string

	// Scheduled scrapes
	ScrapePages string
	// CronSpec is "" when scrapes are manual only.
	CronSpec string

	// Listeners
	GRPCPort      string
	DashboardPort string

	// Notifications (optional)
	TelegramToken  string
	TelegramChatID int64

	// Sheets export (optional)
	SheetsCredentials string
	SpreadsheetURL    string
}

// Load reads envFile when it exists, then the environment, and returns a
// validated Config. A missing envFile is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	dev, err := getEnvAsBool("SCRAPER_DEV", false)
	if err != nil {
		return nil, err
	}
	origin := os.Getenv("SCRAPER_ORIGIN")
	if !dev && origin == "" {
		return nil, fmt.Errorf("SCRAPER_ORIGIN is required unless SCRAPER_DEV is set")
	}

	pages := getEnv("SCRAPE_PAGES", "1")
	if _, err := pagerange.Parse(pages); err != nil {
		return nil, fmt.Errorf("SCRAPE_PAGES: %w", err)
	}

	spec, err := scheduler.SpecFor(getEnv("SCRAPE_CADENCE", scheduler.CadenceManual), os.Getenv("SCRAPE_CRON"))
	if err != nil {
		return nil, fmt.Errorf("SCRAPE_CADENCE/SCRAPE_CRON: %w", err)
	}

	var chatID int64
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		chatID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID must be an integer, got %q", v)
		}
	}

	return &Config{
		ScraperDev:        dev,
		ScraperOrigin:     origin,
		RedisURL:          os.Getenv("REDIS_URL"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ScrapePages:       pages,
		CronSpec:          spec,
		GRPCPort:          getEnv("GRPC_PORT", "9090"),
		DashboardPort:     getEnv("DASHBOARD_PORT", "8083"),
		TelegramToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:    chatID,
		SheetsCredentials: os.Getenv("GOOGLE_SHEETS_CREDENTIALS"),
		SpreadsheetURL:    os.Getenv("SPREADSHEET_URL"),
	}, nil
}

// BaseURL is the scraping backend origin for this configuration.
func (c *Config) BaseURL() string {
	return scraper.ResolveBaseURL(c.ScraperDev, c.ScraperOrigin)
}

// Persistent reports whether any persistent state backend is configured.
// Without one, session and cache state live only as long as the process.
func (c *Config) Persistent() bool {
	return c.RedisURL != "" || c.DatabaseURL != ""
}

// TelegramEnabled reports whether both Telegram settings are present.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// SheetsEnabled reports whether both Sheets settings are present.
func (c *Config) SheetsEnabled() bool {
	return c.SheetsCredentials != "" && c.SpreadsheetURL != ""
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvAsBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}
