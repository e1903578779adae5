package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "opennode-scan",
	Short: "Security scanner for Node.js project trees",
	Long: `opennode-scan runs the security scanning and compliance engine over a
local project tree: code rules, secret detection, dependency checks,
configuration checks, compliance standards and a hardening assessment.`,
}

var debugMode bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
}
