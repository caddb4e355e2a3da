package normalize

import (
	"strings"

	"github.com/sells-group/labinv/internal/model"
)

// BudgetLayout says where budget fields live in a raw row.
type BudgetLayout struct {
	Category    model.Column
	Item        model.Column
	VendorModel model.Column
	Description model.Column
	Cost        model.Column
}

// DefaultBudgetLayout is the column order of the "1_Overall Budget" sheet.
var DefaultBudgetLayout = BudgetLayout{
	Category:    model.Col(0),
	Item:        model.Col(1),
	VendorModel: model.Col(2),
	Description: model.Col(3),
	Cost:        model.Col(4),
}

// NormalizeBudget extracts priced budget lines. Section labels carry forward
// even on rows without an item; only rows with a positive cost are kept.
func NormalizeBudget(rows []model.RawRecord, layout BudgetLayout, vocab Vocabulary) ([]model.BudgetItem, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	var items []model.BudgetItem
	state := vocab.Initial()
	for _, raw := range rows {
		state = vocab.Advance(state, raw.Get(layout.Category))

		item := CleanText(raw.Get(layout.Item))
		if item == "" {
			continue
		}
		cost := ParseCost(raw.Get(layout.Cost))
		if cost == nil || *cost <= 0 {
			continue
		}
		items = append(items, model.BudgetItem{
			Category:    string(state),
			Item:        item,
			VendorModel: CleanText(raw.Get(layout.VendorModel)),
			Description: CleanText(raw.Get(layout.Description)),
			Cost:        *cost,
		})
	}
	return items, nil
}

// ConsumablesLayout says where consumable fields live in a raw row.
type ConsumablesLayout struct {
	Category model.Column
	Item     model.Column
	Vendor   model.Column
	Cost     model.Column
}

// DefaultConsumablesLayout is the column order of the "2_Consumables" sheet.
var DefaultConsumablesLayout = ConsumablesLayout{
	Category: model.Col(0),
	Item:     model.Col(1),
	Vendor:   model.Col(2),
	Cost:     model.Col(3),
}

// consumableSummaryMarker identifies the catch-all total row of the sheet.
const consumableSummaryMarker = "Other general consumables"

// NormalizeConsumables extracts consumable lines. An unparseable cost is 0.
func NormalizeConsumables(rows []model.RawRecord, layout ConsumablesLayout, vocab Vocabulary, vendors AliasTable) ([]model.Consumable, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	var items []model.Consumable
	state := vocab.Initial()
	for _, raw := range rows {
		state = vocab.Advance(state, raw.Get(layout.Category))

		item := CleanText(raw.Get(layout.Item))
		if item == "" || strings.Contains(item, consumableSummaryMarker) {
			continue
		}
		var cost float64
		if c := ParseCost(raw.Get(layout.Cost)); c != nil {
			cost = *c
		}
		items = append(items, model.Consumable{
			Category:      string(state),
			Item:          item,
			Vendor:        vendors.Normalize(raw.Get(layout.Vendor)),
			EstimatedCost: cost,
		})
	}
	return items, nil
}
