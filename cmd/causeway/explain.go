package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"causeway-hq/causeway/pkg/caseio"
	"causeway-hq/causeway/pkg/dml/ast"
	"causeway-hq/causeway/pkg/explain"
	"causeway-hq/causeway/pkg/graph"
	"causeway-hq/causeway/pkg/telemetry/metrics"
)

var explainFlags struct {
	caseFile    string
	sheet       string
	target      string
	mode        string
	authority   string
	outcome     string
	materialize bool
}

var explainCmd = &cobra.Command{
	Use:   "explain [model-dir]",
	Short: "Explain why a case gets its outcome for a target attribute",
	Long: `Explain loads a case table, refreshes the graph, and traces the rule
chain that determines the target attribute for that case. The trace
names the justifying rule, every condition with its bound value, rules
shadowed by higher-precedence ones, and any derived attributes that had
to be explained along the way.

The case table is CSV or XLSX with two columns: qualified attribute
name and value. Values are coerced by the attribute's declared type.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if explainFlags.mode != "" {
			cfg.Explain.Mode = explainFlags.mode
		}
		if explainFlags.authority != "" {
			cfg.Explain.Authority = explainFlags.authority
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		model, err := loadResolvedModel(cfg, modelDir(cfg, args))
		if err != nil {
			return err
		}
		if model.Attribute(explainFlags.target) == nil {
			return fmt.Errorf("target %q is not an attribute of model %q", explainFlags.target, model.Name)
		}

		c, err := readCase(model)
		if err != nil {
			return err
		}
		if explainFlags.outcome != "" {
			c.Outcomes[explainFlags.target] = parseOutcome(explainFlags.outcome)
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		// Refresh the graph so the explanation sees the model as it is
		// on disk. Idempotent, so a no-change refresh costs nothing.
		if _, err := graph.NewBuilder().Build(cmd.Context(), model, store); err != nil {
			return fmt.Errorf("refresh graph for %q: %w", model.Name, err)
		}

		engine := explain.NewEngine(store, &explain.Config{
			Mode:      explain.Mode(cfg.Explain.Mode),
			Authority: explain.Authority(cfg.Explain.Authority),
		})
		collector := metrics.NewCollector(&cfg.Metrics, nil)

		start := time.Now()
		trace, err := engine.Explain(cmd.Context(), c, explainFlags.target)
		if err != nil {
			collector.RecordExplanation(cfg.Explain.Mode, "error", time.Since(start), 0)
			return err
		}
		collector.RecordExplanation(cfg.Explain.Mode, "success", time.Since(start), len(trace.Steps))

		if explainFlags.materialize {
			if err := explain.Materialize(cmd.Context(), trace, store); err != nil {
				return err
			}
		}

		fmt.Print(explain.Render(trace))
		return nil
	},
}

// readCase loads the case table named by --case, dispatching on the
// file extension.
func readCase(model *ast.DecisionModel) (*explain.Case, error) {
	switch strings.ToLower(filepath.Ext(explainFlags.caseFile)) {
	case ".xlsx":
		return caseio.ReadXLSXFile(model, explainFlags.caseFile, explainFlags.sheet)
	case ".csv":
		return caseio.ReadCSVFile(model, explainFlags.caseFile)
	default:
		return nil, fmt.Errorf("unsupported case table format %q (want .csv or .xlsx)", explainFlags.caseFile)
	}
}

func init() {
	explainCmd.Flags().StringVar(&explainFlags.caseFile, "case", "", "case table file (.csv or .xlsx)")
	explainCmd.Flags().StringVar(&explainFlags.sheet, "sheet", "", "sheet name for XLSX case tables (default: first sheet)")
	explainCmd.Flags().StringVarP(&explainFlags.target, "target", "t", "", "qualified name of the attribute to explain")
	explainCmd.Flags().StringVar(&explainFlags.mode, "mode", "", "explanation mode: recompute, trust, or verify")
	explainCmd.Flags().StringVar(&explainFlags.authority, "authority", "", "verify-mode authority on mismatch: computed or supplied")
	explainCmd.Flags().StringVar(&explainFlags.outcome, "outcome", "", "supplied outcome for trust and verify modes")
	explainCmd.Flags().BoolVar(&explainFlags.materialize, "materialize", false, "record the case subgraph (SATISFIED_BY edges) in the store")
	explainCmd.MarkFlagRequired("case")
	explainCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(explainCmd)
}

// parseOutcome interprets a supplied outcome flag the way case values
// are coerced: booleans and numbers when they parse, string otherwise.
func parseOutcome(s string) interface{} {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	var f float64
	if _, err := fmt.Sscanf(s, "%g", &f); err == nil && fmt.Sprintf("%g", f) == s {
		return f
	}
	return s
}
