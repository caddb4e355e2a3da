package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/labinv/internal/config"
	"github.com/sells-group/labinv/internal/model"
	"github.com/sells-group/labinv/internal/normalize"
	"github.com/sells-group/labinv/internal/sheet"
)

// labWorkbook is a raw laboratory workbook after normalization.
type labWorkbook struct {
	Chemicals   []model.CanonicalRecord
	Skipped     int
	Budget      []model.BudgetItem
	Consumables []model.Consumable
}

// readLabWorkbook reads and normalizes the three inventory sheets. The
// chemicals sheet is required; a missing budget or consumables sheet is
// logged and left empty.
func readLabWorkbook(path string, wc config.WorkbookConfig) (*labWorkbook, error) {
	wb, err := sheet.Open(path)
	if err != nil {
		return nil, err
	}

	rows, err := wb.Rows(sheet.Options{SheetName: wc.Chemicals.Name, SkipRows: wc.Chemicals.SkipRows})
	if err != nil {
		return nil, eris.Wrap(err, "read chemicals")
	}
	res, err := normalize.NewChemicalNormalizer().NormalizeSheet(rows)
	if err != nil {
		return nil, eris.Wrap(err, "normalize chemicals")
	}
	out := &labWorkbook{Chemicals: res.Records, Skipped: res.Skipped}

	if wb.HasSheet(wc.Budget.Name) {
		rows, err := wb.Rows(sheet.Options{SheetName: wc.Budget.Name, SkipRows: wc.Budget.SkipRows})
		if err != nil {
			return nil, eris.Wrap(err, "read budget")
		}
		out.Budget, err = normalize.NormalizeBudget(rows, normalize.DefaultBudgetLayout, normalize.BudgetVocabulary)
		if err != nil {
			return nil, eris.Wrap(err, "normalize budget")
		}
	} else {
		zap.L().Warn("budget sheet not found", zap.String("sheet", wc.Budget.Name))
	}

	if wb.HasSheet(wc.Consumables.Name) {
		rows, err := wb.Rows(sheet.Options{SheetName: wc.Consumables.Name, SkipRows: wc.Consumables.SkipRows})
		if err != nil {
			return nil, eris.Wrap(err, "read consumables")
		}
		out.Consumables, err = normalize.NormalizeConsumables(rows, normalize.DefaultConsumablesLayout,
			normalize.ConsumablesVocabulary, normalize.VendorAliases)
		if err != nil {
			return nil, eris.Wrap(err, "normalize consumables")
		}
	} else {
		zap.L().Warn("consumables sheet not found", zap.String("sheet", wc.Consumables.Name))
	}

	return out, nil
}
