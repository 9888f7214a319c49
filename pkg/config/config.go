package config

import (
	"time"

	"causeway-hq/causeway/pkg/telemetry/metrics"
)

// Config is the root configuration.
type Config struct {
	Models  ModelsConfig   `yaml:"models"`
	Graph   GraphConfig    `yaml:"graph"`
	Explain ExplainConfig  `yaml:"explain"`
	Metrics metrics.Config `yaml:"metrics"`
}

// ModelsConfig configures where model documents come from.
type ModelsConfig struct {
	// Dir is the model directory. The model is named after its base
	// name.
	Dir string `yaml:"dir"`

	// MaxFileSize caps a single model document, in bytes.
	// Default: 10MB
	MaxFileSize int64 `yaml:"max_file_size"`

	// DebounceInterval is the quiet period the watcher waits after a
	// change before rebuilding. Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// GraphConfig configures the graph store.
type GraphConfig struct {
	// Store selects the store implementation: "sqlite" or "memory".
	// Default: sqlite
	Store string `yaml:"store"`

	// Path is the SQLite database file. Default: data/graph.db
	Path string `yaml:"path"`

	// WALMode enables Write-Ahead Logging. Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// MaxOpenConns / MaxIdleConns bound the connection pool.
	// Defaults: 10 / 5
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`

	// CleanupSchedule is a cron expression for scheduled stale-entity
	// cleanup, e.g. "0 3 * * *". Empty disables scheduling.
	CleanupSchedule string `yaml:"cleanup_schedule"`
}

// ExplainConfig configures the explanation engine.
type ExplainConfig struct {
	// Mode: "recompute", "trust", or "verify". Default: recompute
	Mode string `yaml:"mode"`

	// Authority decides which path a verify-mode trace follows on a
	// mismatch: "computed" or "supplied". Default: computed
	Authority string `yaml:"authority"`
}
