package config

import "time"

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Models: ModelsConfig{
			Dir:              "models",
			MaxFileSize:      10 * 1024 * 1024,
			DebounceInterval: 100 * time.Millisecond,
		},
		Graph: GraphConfig{
			Store:        "sqlite",
			Path:         "data/graph.db",
			WALMode:      true,
			BusyTimeout:  5 * time.Second,
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Explain: ExplainConfig{
			Mode:      "recompute",
			Authority: "computed",
		},
	}
}
