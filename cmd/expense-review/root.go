package main

import (
	"github.com/spf13/cobra"
)

// defaultConfigPath is read when present; other paths given with --config must exist
const defaultConfigPath = "configs/config.yaml"

// rootOptions holds the persistent flags
type rootOptions struct {
	configFile string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "expense-review",
		Short: "Validate receipts against an expense policy and report the results",
		Long: `expense-review reads an expense policy, extracts every receipt in a
directory, validates each one against the policy and routes exceptions to a
human reviewer before writing an Excel status report.

Example Usage:
  expense-review run --policy policy.docx --images receipts/
  expense-review run --reviewer http --extractor sidecar
  expense-review version`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", defaultConfigPath, "Path to the configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
