package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	HubBaseURL string
	HubToken   string
	Dataset    string

	Year        int
	Month       int
	SampleCount int
	PageSize    int
	SkipPolicy  string
	RetryMax    int
	HTTPTimeout int // seconds

	OpeningMaxPly int

	OutputPath   string
	ReportPath   string
	FeaturesPath string

	RedisURL    string
	CacheTTLSec int
	DatabaseURL string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Dataset:       "Lichess/standard-chess-games",
		SampleCount:   1000,
		PageSize:      100,
		SkipPolicy:    "skip",
		RetryMax:      3,
		HTTPTimeout:   15,
		OpeningMaxPly: 10,
		CacheTTLSec:   21600,
	}

	cfg.HubBaseURL = strings.TrimSpace(os.Getenv("HUB_BASE_URL"))
	cfg.HubToken = strings.TrimSpace(os.Getenv("HUB_TOKEN"))
	if v := strings.TrimSpace(os.Getenv("DATASET")); v != "" {
		cfg.Dataset = v
	}

	if v := strings.TrimSpace(os.Getenv("YEAR")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Year = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MONTH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Month = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("SAMPLE_COUNT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.SampleCount = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("PAGE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("SKIP_POLICY")); v != "" {
		cfg.SkipPolicy = v
	}
	if v := strings.TrimSpace(os.Getenv("RETRY_MAX")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RetryMax = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_TIMEOUT")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPTimeout = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("OPENING_MAX_PLY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.OpeningMaxPly = n
		}
	}

	cfg.OutputPath = strings.TrimSpace(os.Getenv("OUTPUT_PATH"))
	cfg.ReportPath = strings.TrimSpace(os.Getenv("REPORT_PATH"))
	cfg.FeaturesPath = strings.TrimSpace(os.Getenv("FEATURES_PATH"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if v := strings.TrimSpace(os.Getenv("CACHE_TTL")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheTTLSec = n
		}
	}

	if cfg.HubBaseURL == "" {
		return nil, errors.New("HUB_BASE_URL is required")
	}
	if cfg.Year == 0 {
		return nil, errors.New("YEAR is required")
	}
	if cfg.Month < 1 || cfg.Month > 12 {
		return nil, errors.New("MONTH must be between 1 and 12")
	}

	return cfg, nil
}
