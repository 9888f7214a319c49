package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"causeway-hq/causeway/pkg/graph"
	"causeway-hq/causeway/pkg/telemetry/metrics"
)

var buildCleanup bool

var buildCmd = &cobra.Command{
	Use:   "build [model-dir]",
	Short: "Build or refresh the knowledge graph from a model directory",
	Long: `Build maps the resolved model into the graph store. Builds are
idempotent: every entity is upserted under its deterministic identity,
so rebuilding an unchanged model changes nothing and never creates
duplicates. Build never deletes; pass --cleanup to also remove entities
the model no longer contains.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		model, err := loadResolvedModel(cfg, modelDir(cfg, args))
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		collector := metrics.NewCollector(&cfg.Metrics, nil)

		start := time.Now()
		report, err := graph.NewBuilder().Build(cmd.Context(), model, store)
		if err != nil {
			collector.RecordBuild(model.Name, "error", time.Since(start), 0, 0, 0, 0)
			return fmt.Errorf("build graph for %q: %w", model.Name, err)
		}
		collector.RecordBuild(model.Name, "success", time.Since(start),
			report.NodesCreated, report.NodesUpdated, report.EdgesCreated, report.EdgesUpdated)

		fmt.Printf("built graph for %q: %d nodes created, %d updated; %d edges created, %d updated\n",
			report.Model, report.NodesCreated, report.NodesUpdated, report.EdgesCreated, report.EdgesUpdated)
		for _, s := range report.Skipped {
			fmt.Printf("skipped %s: %s\n", s.Identity, s.Reason)
		}

		if buildCleanup {
			cleanupReport, err := graph.Cleanup(cmd.Context(), model, store)
			if err != nil {
				return fmt.Errorf("cleanup after build: %w", err)
			}
			collector.RecordCleanup(model.Name, len(cleanupReport.Removed))
			fmt.Printf("cleanup removed %d stale entities\n", len(cleanupReport.Removed))
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVar(&buildCleanup, "cleanup", false, "also remove entities the model no longer contains")
	rootCmd.AddCommand(buildCmd)
}
