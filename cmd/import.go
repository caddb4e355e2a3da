package main

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/labinv/internal/model"
	"github.com/sells-group/labinv/internal/store"
)

var importInput string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the lab workbook into the inventory database",
	Long:  "Normalizes the lab workbook and replaces the chemicals, budget and consumables tables with its contents in one transaction.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		lw, err := readLabWorkbook(importInput, cfg.Workbook)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.ReplaceInventory(ctx, store.Inventory{
			Chemicals:   lw.Chemicals,
			Budget:      lw.Budget,
			Consumables: lw.Consumables,
		}, model.ImportRun{
			Source:  filepath.Base(importInput),
			Skipped: lw.Skipped,
		})
		if err != nil {
			return eris.Wrap(err, "import workbook")
		}

		zap.L().Info("import complete",
			zap.String("run_id", run.ID),
			zap.String("input", importInput),
			zap.Int("chemicals", run.Chemicals),
			zap.Int("budget_items", run.Budget),
			zap.Int("consumables", run.Consumables),
			zap.Int("skipped", lw.Skipped),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importInput, "input", "", "path to the lab workbook (required)")
	_ = importCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(importCmd)
}
