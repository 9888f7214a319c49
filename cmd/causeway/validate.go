package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"causeway-hq/causeway/pkg/dml/lint"
	"causeway-hq/causeway/pkg/dml/parser"
	"causeway-hq/causeway/pkg/dml/resolver"
)

var validateCmd = &cobra.Command{
	Use:   "validate [model-dir]",
	Short: "Load and resolve a model directory, reporting every problem",
	Long: `Validate loads every model document in the directory, resolves
cross-model references, and runs the model health checks.

Load and resolution problems are reported in bulk: one run surfaces
every malformed element, duplicate definition, and dangling reference,
not just the first. Health check findings are warnings and do not fail
validation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir := modelDir(cfg, args)

		loader := parser.NewLoader().WithMaxFileSize(cfg.Models.MaxFileSize)
		model, err := loader.LoadDir(dir)
		if err != nil {
			return fmt.Errorf("model %q failed to load:\n%w", dir, err)
		}
		if err := resolver.Resolve(model); err != nil {
			return fmt.Errorf("model %q has unresolved references:\n%w", model.Name, err)
		}

		warnings := lint.Check(model)
		for _, w := range warnings {
			fmt.Printf("warning: %s\n", w)
		}

		fmt.Printf("model %q is valid: %d attributes, %d rule sets, %d rules, %d services",
			model.Name, len(model.Attributes), len(model.RuleSets), len(model.Rules()), len(model.Services))
		if len(warnings) > 0 {
			fmt.Printf(" (%d warnings)", len(warnings))
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
