package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/llamasearchai/opennode-scan/internal/engine"
	"github.com/llamasearchai/opennode-scan/internal/logging"
)

var (
	excludePatterns   []string
	standards         []string
	severityThreshold string
	outputFormat      string
	failOn            string
	workers           int
	noAudit           bool
	rulesFile         string
)

var scanCmd = &cobra.Command{
	Use:   "scan <path>",
	Short: "Scan a project tree and print the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(debugMode)
		if err != nil {
			return err
		}
		defer logger.Sync()

		opts := engine.DefaultOptions()
		opts.ExcludePatterns = excludePatterns
		if len(standards) > 0 {
			opts.ComplianceStandards = standards
		}
		if severityThreshold != "" {
			sev, err := engine.ParseSeverity(severityThreshold)
			if err != nil {
				return err
			}
			opts.SeverityThreshold = sev
		}
		if workers > 0 {
			opts.Workers = workers
		}
		opts.EnableAudit = !noAudit
		if rulesFile != "" {
			rules, err := engine.LoadRulesFile(rulesFile)
			if err != nil {
				return err
			}
			opts.CustomRules = rules
		}

		scanner, err := engine.New(opts)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		root := args[0]
		logger.Info("scanning", zap.String("root", root))

		report, err := scanner.Scan(ctx, root)
		if err != nil {
			return err
		}

		switch strings.ToLower(outputFormat) {
		case "", "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		case "markdown":
			fmt.Println(engine.ToMarkdown(report))
		default:
			return fmt.Errorf("invalid format: %s (allowed: json, markdown)", outputFormat)
		}

		if failOn != "" {
			gate, err := engine.ParseRiskLevel(failOn)
			if err != nil {
				return err
			}
			if report.Metrics.RiskLevel.Rank() >= gate.Rank() {
				return fmt.Errorf("risk level %s is at or above the %s gate",
					report.Metrics.RiskLevel, gate)
			}
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().StringSliceVar(&excludePatterns, "exclude", nil, "Glob patterns to exclude (repeatable)")
	scanCmd.Flags().StringSliceVar(&standards, "standards", nil, "Compliance standards to evaluate")
	scanCmd.Flags().StringVar(&severityThreshold, "severity-threshold", "", "Drop findings below this severity")
	scanCmd.Flags().StringVar(&outputFormat, "format", "json", "Output format: json or markdown")
	scanCmd.Flags().StringVar(&failOn, "fail-on", "", "Exit non-zero when the risk level reaches this value")
	scanCmd.Flags().IntVar(&workers, "workers", 0, "File scanning worker count (0 = NumCPU)")
	scanCmd.Flags().BoolVar(&noAudit, "no-audit", false, "Skip the npm audit subprocess")
	scanCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML file with additional rules")

	rootCmd.AddCommand(scanCmd)
}
