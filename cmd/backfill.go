package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/labinv/internal/backfill"
)

var (
	backfillDryRun      bool
	backfillConcurrency int
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Fill missing chemical fields from the reference knowledge base",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		m, err := loadMatcher()
		if err != nil {
			return eris.Wrap(err, "load reference")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if backfillConcurrency != 0 {
			cfg.Backfill.Concurrency = backfillConcurrency
			if err := cfg.Validate("backfill"); err != nil {
				return err
			}
		}

		report, err := backfill.NewRunner(st, m, backfill.Options{
			Concurrency: cfg.Backfill.Concurrency,
			DryRun:      backfillDryRun,
			Retry:       storeRetry(),
		}).Run(ctx)
		if err != nil {
			return eris.Wrap(err, "backfill")
		}

		zap.L().Info("backfill complete",
			zap.Bool("dry_run", report.DryRun),
			zap.Int("scanned", report.Scanned),
			zap.Int("matched", report.Matched),
			zap.Int("updated", report.Updated),
			zap.Int("fields_filled", report.FieldsFilled),
		)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	backfillCmd.Flags().BoolVar(&backfillDryRun, "dry-run", false, "compute updates without writing them")
	backfillCmd.Flags().IntVar(&backfillConcurrency, "concurrency", 0, "parallel lookups (default from config)")
	rootCmd.AddCommand(backfillCmd)
}
