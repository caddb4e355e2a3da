package normalize

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sells-group/labinv/internal/model"
)

// Summarize groups items by category in order of first appearance, counting
// items and summing their cost.
func Summarize[T any](items []T, key func(T) (category string, cost float64)) []model.CategorySummary {
	var out []model.CategorySummary
	index := make(map[string]int)
	for _, it := range items {
		cat, cost := key(it)
		i, ok := index[cat]
		if !ok {
			i = len(out)
			index[cat] = i
			out = append(out, model.CategorySummary{Category: cat, TotalCost: decimal.Zero})
		}
		out[i].ItemCount++
		out[i].TotalCost = out[i].TotalCost.Add(decimal.NewFromFloat(cost))
	}
	return out
}

// SortByTotalDesc orders summaries by total cost, largest first. Equal totals
// keep their relative order.
func SortByTotalDesc(s []model.CategorySummary) {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].TotalCost.GreaterThan(s[j].TotalCost)
	})
}

// SummarizeChemicals groups chemicals by category, summing estimated cost.
func SummarizeChemicals(recs []model.CanonicalRecord) []model.CategorySummary {
	return Summarize(recs, func(r model.CanonicalRecord) (string, float64) {
		if r.Cost == nil {
			return r.Category, 0
		}
		return r.Category, *r.Cost
	})
}

// SummarizeBudget groups budget lines by category, largest total first.
func SummarizeBudget(items []model.BudgetItem) []model.CategorySummary {
	s := Summarize(items, func(b model.BudgetItem) (string, float64) { return b.Category, b.Cost })
	SortByTotalDesc(s)
	return s
}

// SummarizeConsumables groups consumables by category.
func SummarizeConsumables(items []model.Consumable) []model.CategorySummary {
	return Summarize(items, func(c model.Consumable) (string, float64) { return c.Category, c.EstimatedCost })
}

// TotalCost sums the totals of a set of summaries.
func TotalCost(s []model.CategorySummary) decimal.Decimal {
	total := decimal.Zero
	for _, c := range s {
		total = total.Add(c.TotalCost)
	}
	return total
}
