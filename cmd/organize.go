package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/labinv/internal/normalize"
	"github.com/sells-group/labinv/internal/sheet"
)

var (
	organizeInput  string
	organizeOutput string
)

var organizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "Normalize the lab workbook into an organized workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		lw, err := readLabWorkbook(organizeInput, cfg.Workbook)
		if err != nil {
			return err
		}

		budgetSummary := normalize.SummarizeBudget(lw.Budget)
		consumablesSummary := normalize.SummarizeConsumables(lw.Consumables)

		if err := sheet.WriteOrganized(organizeOutput, sheet.Organized{
			Chemicals:          lw.Chemicals,
			Budget:             lw.Budget,
			BudgetSummary:      budgetSummary,
			Consumables:        lw.Consumables,
			ConsumablesSummary: consumablesSummary,
		}); err != nil {
			return eris.Wrap(err, "write organized workbook")
		}

		zap.L().Info("organize complete",
			zap.String("output", organizeOutput),
			zap.Int("chemicals", len(lw.Chemicals)),
			zap.Int("skipped", lw.Skipped),
			zap.String("chemicals_total", normalize.TotalCost(normalize.SummarizeChemicals(lw.Chemicals)).StringFixed(2)),
			zap.Int("budget_items", len(lw.Budget)),
			zap.String("budget_total", normalize.TotalCost(budgetSummary).StringFixed(2)),
			zap.Int("consumables", len(lw.Consumables)),
			zap.String("consumables_total", normalize.TotalCost(consumablesSummary).StringFixed(2)),
		)
		return nil
	},
}

func init() {
	organizeCmd.Flags().StringVar(&organizeInput, "input", "", "path to the lab workbook (required)")
	organizeCmd.Flags().StringVar(&organizeOutput, "output", "organized_inventory.xlsx", "path of the organized workbook")
	_ = organizeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(organizeCmd)
}
