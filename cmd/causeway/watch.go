package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"causeway-hq/causeway/pkg/dml/parser"
	"causeway-hq/causeway/pkg/dml/resolver"
	"causeway-hq/causeway/pkg/dml/source"
	"causeway-hq/causeway/pkg/graph"
	"causeway-hq/causeway/pkg/telemetry/metrics"
)

var watchCmd = &cobra.Command{
	Use:   "watch [model-dir]",
	Short: "Watch a model directory and rebuild the graph on change",
	Long: `Watch builds the graph once, then watches the model directory and
rebuilds after each change burst. A model that fails to load or resolve
is logged and skipped; the graph keeps its last good state.

When metrics.listen is configured, a Prometheus endpoint is served at
/metrics for the lifetime of the watch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir := modelDir(cfg, args)

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		collector := metrics.NewCollector(&cfg.Metrics, nil)
		logger := slog.Default().With("component", "watch")

		src := source.NewFileSource(&source.FileSourceConfig{
			Dir:              dir,
			DebounceInterval: cfg.Models.DebounceInterval,
			Extensions:       []string{".yaml", ".yml"},
		})
		loader := parser.NewLoader().WithMaxFileSize(cfg.Models.MaxFileSize)
		builder := graph.NewBuilder()

		rebuild := func() error {
			docs, err := src.LoadDocuments(cmd.Context())
			if err != nil {
				return err
			}
			model, err := loader.Load(src.Name(), docs)
			if err != nil {
				return err
			}
			if err := resolver.Resolve(model); err != nil {
				return err
			}
			start := time.Now()
			report, err := builder.Build(cmd.Context(), model, store)
			if err != nil {
				collector.RecordBuild(model.Name, "error", time.Since(start), 0, 0, 0, 0)
				return err
			}
			collector.RecordBuild(model.Name, "success", time.Since(start),
				report.NodesCreated, report.NodesUpdated, report.EdgesCreated, report.EdgesUpdated)
			return nil
		}

		if err := rebuild(); err != nil {
			return fmt.Errorf("initial build: %w", err)
		}

		if cfg.Metrics.Enabled && cfg.Metrics.Listen != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", collector.Handler())
			server := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux}
			go func() {
				logger.Info("metrics endpoint started", "listen", cfg.Metrics.Listen)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("metrics endpoint failed", "error", err)
				}
			}()
			defer server.Close()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Printf("watching %s; press Ctrl-C to stop\n", dir)
		return src.Watch(ctx, rebuild)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
