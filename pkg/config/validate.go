package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for values no component could act
// on.
func (c *Config) Validate() error {
	switch c.Graph.Store {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("graph.store must be \"sqlite\" or \"memory\", got %q", c.Graph.Store)
	}
	if c.Graph.Store == "sqlite" && c.Graph.Path == "" {
		return fmt.Errorf("graph.path is required for the sqlite store")
	}
	if c.Graph.MaxOpenConns < 1 {
		return fmt.Errorf("graph.max_open_conns must be at least 1, got %d", c.Graph.MaxOpenConns)
	}
	if c.Graph.CleanupSchedule != "" {
		if _, err := cron.ParseStandard(c.Graph.CleanupSchedule); err != nil {
			return fmt.Errorf("graph.cleanup_schedule: %w", err)
		}
	}

	switch c.Explain.Mode {
	case "recompute", "trust", "verify":
	default:
		return fmt.Errorf("explain.mode must be \"recompute\", \"trust\", or \"verify\", got %q", c.Explain.Mode)
	}
	switch c.Explain.Authority {
	case "computed", "supplied":
	default:
		return fmt.Errorf("explain.authority must be \"computed\" or \"supplied\", got %q", c.Explain.Authority)
	}

	if c.Models.MaxFileSize <= 0 {
		return fmt.Errorf("models.max_file_size must be positive, got %d", c.Models.MaxFileSize)
	}
	return nil
}
