package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"causeway-hq/causeway/pkg/config"
	"causeway-hq/causeway/pkg/dml/ast"
	"causeway-hq/causeway/pkg/dml/parser"
	"causeway-hq/causeway/pkg/dml/resolver"
	"causeway-hq/causeway/pkg/graph"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "causeway",
	Short: "Causeway - decision-model knowledge graphs and explanations",
	Long: `Causeway maps tree-structured decision models into a property knowledge
graph and explains decision outcomes for input cases.

It provides:
  - Loading and validation of YAML model documents
  - Cross-model reference resolution with bulk diagnostics
  - Idempotent graph builds with deterministic entity identities
  - Rule-trace explanations of why a case got its outcome`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when omitted)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration file named by --config, or the
// defaults when none was given.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// modelDir picks the model directory: the positional argument when
// present, the configured directory otherwise.
func modelDir(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Models.Dir
}

// loadResolvedModel loads a model directory and resolves every
// reference.
func loadResolvedModel(cfg *config.Config, dir string) (*ast.DecisionModel, error) {
	loader := parser.NewLoader().WithMaxFileSize(cfg.Models.MaxFileSize)
	model, err := loader.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	if err := resolver.Resolve(model); err != nil {
		return nil, err
	}
	return model, nil
}

// openStore opens the configured graph store. The caller closes it.
func openStore(cfg *config.Config) (graph.Store, error) {
	if cfg.Graph.Store == "memory" {
		return graph.NewMemoryStore(), nil
	}
	return graph.NewSQLiteStore(&graph.SQLiteConfig{
		Path:         cfg.Graph.Path,
		MaxOpenConns: cfg.Graph.MaxOpenConns,
		MaxIdleConns: cfg.Graph.MaxIdleConns,
		WALMode:      cfg.Graph.WALMode,
		BusyTimeout:  cfg.Graph.BusyTimeout,
	})
}
