package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"budgetlens/internal/services/budgets"
	"budgetlens/internal/services/healthscore"
	"budgetlens/internal/services/insights"
	"budgetlens/internal/services/yearreview"
)

// Thresholds holds the tunable constants of the analytics engines
type Thresholds struct {
	PacingAheadMargin     float64 `json:"pacing_ahead_margin"`
	PacingOnTrackMargin   float64 `json:"pacing_on_track_margin"`
	AnomalyPercent        float64 `json:"anomaly_percent"`
	PaceMarginPercent     float64 `json:"pace_margin_percent"`
	TrendMultiplier       float64 `json:"trend_multiplier"`
	ConsistencyMultiplier float64 `json:"consistency_multiplier"`
	StableBand            float64 `json:"stable_band"`
}

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr     string   `json:"listen_addr"`
	Debug          bool     `json:"debug"`
	AllowedOrigins []string `json:"allowed_origins"`

	DataDirectory string `json:"data_directory"`

	// Password unlocks an encrypted data directory at startup. Empty means
	// prompt on a terminal, or start locked.
	Password string `json:"-"`

	Thresholds Thresholds `json:"thresholds"`
}

// DefaultThresholds returns the stock analytics constants
func DefaultThresholds() Thresholds {
	b := budgets.DefaultThresholds()
	h := healthscore.DefaultOptions()
	i := insights.DefaultOptions()
	return Thresholds{
		PacingAheadMargin:     b.AheadMargin,
		PacingOnTrackMargin:   b.OnTrackMargin,
		AnomalyPercent:        i.AnomalyPercent,
		PaceMarginPercent:     i.PaceMarginPercent,
		TrendMultiplier:       h.TrendMultiplier,
		ConsistencyMultiplier: h.ConsistencyMultiplier,
		StableBand:            yearreview.DefaultStableBand,
	}
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return &Config{
		ListenAddr:     ":8080",
		Debug:          false,
		AllowedOrigins: []string{"http://localhost:5173"},
		DataDirectory:  filepath.Join(wd, "data"),
		Thresholds:     DefaultThresholds(),
	}
}

// Load reads an optional .env file, then overrides the defaults with
// BUDGET_* environment variables. Variables already set in the environment
// win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a config from an environment lookup
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	if addr := getenv("BUDGET_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if debug := getenv("BUDGET_DEBUG"); debug == "true" || debug == "1" {
		cfg.Debug = true
	}
	if dataDir := getenv("BUDGET_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	}
	if origins := getenv("BUDGET_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}
	cfg.Password = getenv("BUDGET_PASSWORD")

	th := &cfg.Thresholds
	floats := []struct {
		key      string
		dst      *float64
		positive bool
	}{
		{"BUDGET_PACING_AHEAD_MARGIN", &th.PacingAheadMargin, false},
		{"BUDGET_PACING_ON_TRACK_MARGIN", &th.PacingOnTrackMargin, false},
		{"BUDGET_INSIGHT_ANOMALY_PERCENT", &th.AnomalyPercent, false},
		{"BUDGET_INSIGHT_PACE_MARGIN", &th.PaceMarginPercent, false},
		{"BUDGET_HEALTH_TREND_MULTIPLIER", &th.TrendMultiplier, false},
		{"BUDGET_HEALTH_CONSISTENCY_MULTIPLIER", &th.ConsistencyMultiplier, false},
		// a zero band would report flat categories as trending down
		{"BUDGET_YEAR_STABLE_BAND", &th.StableBand, true},
	}
	for _, f := range floats {
		raw := getenv(f.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%s: expected a non-negative number, got %q", f.key, raw)
		}
		if f.positive && v == 0 {
			return nil, fmt.Errorf("%s: expected a positive number, got %q", f.key, raw)
		}
		*f.dst = v
	}

	return cfg, nil
}

// Budgets returns the pacing thresholds
func (t Thresholds) Budgets() budgets.Thresholds {
	return budgets.Thresholds{AheadMargin: t.PacingAheadMargin, OnTrackMargin: t.PacingOnTrackMargin}
}

// Health returns the health score options
func (t Thresholds) Health() healthscore.Options {
	return healthscore.Options{TrendMultiplier: t.TrendMultiplier, ConsistencyMultiplier: t.ConsistencyMultiplier}
}

// Insights returns the insight generator options
func (t Thresholds) Insights() insights.Options {
	return insights.Options{AnomalyPercent: t.AnomalyPercent, PaceMarginPercent: t.PaceMarginPercent}
}
