package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/catalogbridge/internal/cmd/output"
	"github.com/agentstation/catalogbridge/internal/metrics"
	"github.com/agentstation/catalogbridge/pkg/errors"
	"github.com/agentstation/catalogbridge/pkg/logging"
	"github.com/agentstation/catalogbridge/pkg/reconcile"
)

// MigrateFlags holds the flags of the migrate command.
type MigrateFlags struct {
	DryRun      bool
	Products    []string
	Report      string
	MetricsFile string
	Strict      bool
}

// NewMigrateCommand creates the migrate command.
func (a *App) NewMigrateCommand() *cobra.Command {
	flags := &MigrateFlags{}

	cmd := &cobra.Command{
		Use:     "migrate",
		GroupID: "core",
		Short:   "Bring every target product up to date with its source article",
		Long: `Migrate resolves the sales channel, media folder, currency, language and
tax rules on the target shop, lists every target product and reconciles
each one against the source article with the same number.

Products without a source article are skipped. A failure on one product
is recorded and the run moves on to the next.`,
		Example: `  catalogbridge migrate                           # Reconcile the whole catalog
  catalogbridge migrate --dry-run                 # Read everything, write nothing
  catalogbridge migrate --product SW10001         # Reconcile one product
  catalogbridge migrate --report migration.md     # Write a markdown report
  catalogbridge migrate -o json > result.json     # Machine-readable result`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMigrate(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "perform lookups but send no create, update or upload")
	cmd.Flags().StringSliceVar(&flags.Products, "product", nil, "restrict the run to these product numbers (repeatable)")
	cmd.Flags().StringVar(&flags.Report, "report", "", "write a markdown report to this file")
	cmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "", "write prometheus metrics in textfile format to this file")
	cmd.Flags().BoolVar(&flags.Strict, "strict", false, "exit with an error when any product failed")

	return cmd
}

func (a *App) runMigrate(cmd *cobra.Command, flags *MigrateFlags) error {
	if err := a.config.Validate(); err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	recorder := metrics.New()
	tokens, targetClient := a.TargetClient(recorder, flags.DryRun)
	syncer, err := reconcile.New(targetClient, a.SourceClient(recorder),
		a.SyncConfig(flags.Products, flags.DryRun),
		reconcile.WithTokenSource(tokens),
		reconcile.WithMetrics(recorder),
	)
	if err != nil {
		return err
	}

	result, runErr := syncer.Run(ctx)
	if result == nil {
		return runErr
	}

	if err := output.FormatResult(cmd.OutOrStdout(), result, output.DetectFormat(a.config.Format)); err != nil {
		return err
	}
	if flags.Report != "" {
		if err := output.WriteReportFile(flags.Report, result); err != nil {
			return err
		}
		logger.Info().Str("path", flags.Report).Msg("Wrote migration report")
	}
	if flags.MetricsFile != "" {
		if err := recorder.WriteTextfile(flags.MetricsFile); err != nil {
			return errors.WrapResource("write", "metrics", flags.MetricsFile, err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if flags.Strict && result.HasFailures() {
		return errors.NewRunFailureError(result.Stats.Failed, len(result.Outcomes))
	}
	return nil
}
