package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/pipeline"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/config"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/interfaces/console"
	"github.com/sriram-gona-01/expense-project-finalcode/pkg/utils"
)

// flagKeys maps run flags onto configuration keys
var flagKeys = map[string]string{
	"policy":         "pipeline.policy_path",
	"images":         "pipeline.image_dir",
	"output":         "report.output_path",
	"reviewer":       "review.mode",
	"extractor":      "ocr.extractor",
	"count-approved": "report.count_approved_as_accepted",
}

func newRunCmd(root *rootOptions) *cobra.Command {
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process every receipt in the image directory",
		Long: `The run command loads the expense policy, extracts each receipt in order,
validates it and asks a reviewer to approve or reject every exception.

The report is written when the run completes and also when a stage fails,
in which case it holds the receipts processed so far and the command exits
with status 1.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, root, v)
		},
	}

	flags := cmd.Flags()
	flags.String("policy", "", "Policy document (.docx, .txt, .md, .json, .yaml)")
	flags.String("images", "", "Directory holding the receipt images")
	flags.String("output", "", "Excel report path")
	flags.String("reviewer", "", "Reviewer for exceptions: console or http")
	flags.String("extractor", "", "Receipt extractor: openai or sidecar")
	flags.Bool("count-approved", false, "Count approved exceptions in the reimbursable totals")

	for name, key := range flagKeys {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}

	return cmd
}

func runPipeline(cmd *cobra.Command, root *rootOptions, v *viper.Viper) error {
	// .env is optional
	_ = gotenv.Load()

	cfg, err := config.LoadFrom(v, resolveConfigPath(cmd, root.configFile))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logCfg := utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}
	if root.verbose {
		logCfg.Level = "debug"
	}
	logger, err := utils.NewLogger(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Setup failed", zap.Error(err))
		return err
	}
	defer app.Close()

	state, runErr := app.pipeline.Run(ctx, pipeline.Input{
		PolicyRef: cfg.Pipeline.PolicyPath,
		Receipts:  app.receipts,
	})

	// the report is written for partial runs too, so it must outlive cancellation
	reportErr := app.pipeline.WriteReport(context.WithoutCancel(ctx), state)
	if reportErr != nil {
		logger.Error("Failed to write report", zap.Error(reportErr))
	}

	view := console.SummaryView{
		RunID:        state.RunID,
		PolicySource: state.PolicySource,
		Summary:      state.Summary(cfg.Report.CountApprovedAsAccepted),
		Err:          runErr,
	}
	if reportErr == nil {
		view.ReportPath = app.writer.OutputPath()
	}
	console.PrintSummary(cmd.OutOrStdout(), view)

	return errors.Join(runErr, reportErr)
}

// resolveConfigPath drops the default path when no such file exists
func resolveConfigPath(cmd *cobra.Command, path string) string {
	if cmd.Flags().Changed("config") {
		return path
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
