package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mfriesel/flint/internal/rank"
)

// Config represents the flint configuration.
type Config struct {
	Sources SourcesConfig `yaml:"sources"`
	Ranking RankingConfig `yaml:"ranking"`
	History HistoryConfig `yaml:"history"`
	Daemon  DaemonConfig  `yaml:"daemon"`
}

// SourcesConfig selects which candidate sources are scanned.
type SourcesConfig struct {
	Desktop         bool `yaml:"desktop"`           // Scan freedesktop .desktop entries
	Path            bool `yaml:"path"`              // Scan executables on $PATH
	Flatpak         bool `yaml:"flatpak"`           // List installed flatpak applications
	Snap            bool `yaml:"snap"`              // List installed snap packages
	ShowHiddenFiles bool `yaml:"show_hidden_files"` // Include dotfiles in the $PATH scan
}

// RankingConfig holds result ranking settings.
type RankingConfig struct {
	MaxResults   int               `yaml:"max_results"` // Max matches returned (0 = unlimited)
	Weights      rank.Weights      `yaml:"weights"`     // Score channel weights
	FuzzyWeights rank.FuzzyWeights `yaml:"fuzzy_weights"`
}

// HistoryConfig holds usage history settings.
type HistoryConfig struct {
	Path              string `yaml:"path"`                // History file path (overrides default)
	FlushIntervalSecs int    `yaml:"flush_interval_secs"` // Periodic daemon flush (0 = flush on exit only)
}

// DaemonConfig holds daemon-related settings.
type DaemonConfig struct {
	SocketPath          string `yaml:"socket_path"`           // Unix socket path (overrides default)
	LogLevel            string `yaml:"log_level"`             // debug, info, warn, error
	LogFile             string `yaml:"log_file"`              // Log file path (empty = stderr)
	IdleTimeoutMins     int    `yaml:"idle_timeout_mins"`     // Auto-shutdown after idle (0 = never)
	Watch               bool   `yaml:"watch"`                 // Watch application dirs and refresh the catalog
	RefreshIntervalMins int    `yaml:"refresh_interval_mins"` // Periodic catalog refresh (0 = never)
	Autostart           bool   `yaml:"autostart"`             // Spawn flintd when a query finds no daemon
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Sources: SourcesConfig{
			Desktop:         true,
			Path:            true,
			Flatpak:         true,
			Snap:            true,
			ShowHiddenFiles: false,
		},
		Ranking: RankingConfig{
			MaxResults:   0, // Return everything; frontends cap display themselves
			Weights:      rank.DefaultWeights(),
			FuzzyWeights: rank.DefaultFuzzyWeights(),
		},
		History: HistoryConfig{
			Path:              "", // Use default from paths
			FlushIntervalSecs: 30,
		},
		Daemon: DaemonConfig{
			SocketPath:          "", // Use default from paths
			LogLevel:            "info",
			LogFile:             "",
			IdleTimeoutMins:     0, // Never timeout
			Watch:               true,
			RefreshIntervalMins: 15,
			Autostart:           false,
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	paths := DefaultPaths()
	return c.SaveToFile(paths.ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !isValidLogLevel(c.Daemon.LogLevel) {
		return fmt.Errorf("daemon.log_level must be debug, info, warn, or error (got: %s)", c.Daemon.LogLevel)
	}

	if c.Daemon.IdleTimeoutMins < 0 {
		return errors.New("daemon.idle_timeout_mins must be >= 0")
	}

	if c.Daemon.RefreshIntervalMins < 0 {
		return errors.New("daemon.refresh_interval_mins must be >= 0")
	}

	if c.History.FlushIntervalSecs < 0 {
		return errors.New("history.flush_interval_secs must be >= 0")
	}

	// Ranking values never prevent startup; invalid ones are fixed with warnings.
	c.Ranking.ValidateAndFix()

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("FLINT_HISTORY"); v != "" {
		c.History.Path = v
	}
	if v := os.Getenv("FLINT_SOCKET"); v != "" {
		c.Daemon.SocketPath = v
	}
	if v := os.Getenv("FLINT_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Daemon.LogLevel = v
		}
	}
	if v := os.Getenv("FLINT_DEBUG"); v == "1" || v == "true" {
		c.Daemon.LogLevel = "debug"
	}
}

// ValidationWarning represents a config validation warning.
type ValidationWarning struct {
	Field   string
	Message string
}

// ValidateAndFix validates ranking config values. Invalid values are fixed
// by falling back to defaults or clamping. Returns a list of warnings for
// diagnostics. Validation never prevents startup.
func (r *RankingConfig) ValidateAndFix() []ValidationWarning {
	defaults := DefaultConfig().Ranking
	var warnings []ValidationWarning

	warn := func(field, msg string) {
		w := ValidationWarning{Field: field, Message: msg}
		warnings = append(warnings, w)
		log.Printf("WARN config: ranking.%s: %s", field, msg)
	}

	if r.MaxResults < 0 {
		warn("max_results", fmt.Sprintf("must be >= 0, got %d; falling back to default %d", r.MaxResults, defaults.MaxResults))
		r.MaxResults = defaults.MaxResults
	}

	// Channel weights must be non-negative.
	weightFields := []struct {
		name string
		val  *float64
	}{
		{"weights.fuzzy", &r.Weights.Fuzzy},
		{"weights.base", &r.Weights.Base},
		{"weights.history", &r.Weights.History},
	}
	for _, w := range weightFields {
		if *w.val < 0.0 {
			warn(w.name, fmt.Sprintf("must be >= 0.0, got %f; clamping to 0.0", *w.val))
			*w.val = 0.0
		}
	}

	// Fuzzy bonuses must be non-negative; negative values would invert
	// the subsequence scoring.
	fuzzyFields := []struct {
		name string
		val  *float64
		def  float64
	}{
		{"fuzzy_weights.char_match", &r.FuzzyWeights.CharMatch, defaults.FuzzyWeights.CharMatch},
		{"fuzzy_weights.consecutive", &r.FuzzyWeights.Consecutive, defaults.FuzzyWeights.Consecutive},
		{"fuzzy_weights.word_boundary", &r.FuzzyWeights.WordBoundary, defaults.FuzzyWeights.WordBoundary},
		{"fuzzy_weights.length_penalty", &r.FuzzyWeights.LengthPenalty, defaults.FuzzyWeights.LengthPenalty},
	}
	for _, f := range fuzzyFields {
		if *f.val < 0.0 {
			warn(f.name, fmt.Sprintf("must be >= 0.0, got %f; falling back to default %f", *f.val, f.def))
			*f.val = f.def
		}
	}

	return warnings
}
