package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"causeway-hq/causeway/pkg/dml/ast"
	"causeway-hq/causeway/pkg/graph"
	"causeway-hq/causeway/pkg/telemetry/metrics"
)

var cleanupSchedule string

var cleanupCmd = &cobra.Command{
	Use:   "cleanup [model-dir]",
	Short: "Remove graph entities the model no longer contains",
	Long: `Cleanup deletes nodes that belong to the model but no longer
correspond to any entity in it. Builds never delete, so renamed and
dropped entities accumulate as stale nodes until a cleanup runs.

With --schedule (or graph.cleanup_schedule in the config file) cleanup
runs on a cron schedule until interrupted, reloading the model before
each run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cleanupSchedule != "" {
			cfg.Graph.CleanupSchedule = cleanupSchedule
		}
		dir := modelDir(cfg, args)

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		collector := metrics.NewCollector(&cfg.Metrics, nil)

		if cfg.Graph.CleanupSchedule == "" {
			model, err := loadResolvedModel(cfg, dir)
			if err != nil {
				return err
			}
			report, err := graph.Cleanup(cmd.Context(), model, store)
			if err != nil {
				return err
			}
			collector.RecordCleanup(model.Name, len(report.Removed))
			fmt.Printf("removed %d stale entities from %q\n", len(report.Removed), report.Model)
			for _, identity := range report.Removed {
				fmt.Printf("  - %s\n", identity)
			}
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		provider := func(ctx context.Context) (*ast.DecisionModel, error) {
			return loadResolvedModel(cfg, dir)
		}
		scheduler := graph.NewScheduler(store, provider, cfg.Graph.CleanupSchedule)
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		fmt.Printf("cleanup scheduled (%s); press Ctrl-C to stop\n", cfg.Graph.CleanupSchedule)
		<-ctx.Done()
		scheduler.Stop()
		return nil
	},
}

func init() {
	cleanupCmd.Flags().StringVar(&cleanupSchedule, "schedule", "", "cron schedule for recurring cleanup (e.g. \"0 3 * * *\")")
	rootCmd.AddCommand(cleanupCmd)
}
