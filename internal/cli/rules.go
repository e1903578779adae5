package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/llamasearchai/opennode-scan/internal/engine"
)

var rulesCategory string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the detection rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		var custom []engine.SecurityRule
		if rulesFile != "" {
			loaded, err := engine.LoadRulesFile(rulesFile)
			if err != nil {
				return err
			}
			custom = loaded
		}
		registry, err := engine.NewRegistry(custom)
		if err != nil {
			return err
		}

		var cat engine.Category
		if rulesCategory != "" {
			parsed, err := engine.ParseCategory(rulesCategory)
			if err != nil {
				return err
			}
			cat = parsed
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSEVERITY\tCATEGORY\tCWE\tNAME")
		for _, r := range registry.RulesFor(cat) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Severity, r.Category, r.CWE, r.Name)
		}
		return w.Flush()
	},
}

func init() {
	rulesListCmd.Flags().StringVar(&rulesCategory, "category", "", "Only show rules in this category")
	rulesListCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML file with additional rules")

	rulesCmd.AddCommand(rulesListCmd)
	rootCmd.AddCommand(rulesCmd)
}
