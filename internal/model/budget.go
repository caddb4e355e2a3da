package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetItem is one priced line of the laboratory budget sheet.
type BudgetItem struct {
	Category    string  `json:"category"`
	Item        string  `json:"item"`
	VendorModel string  `json:"vendor_model"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
}

// Consumable is one line of the consumables sheet.
type Consumable struct {
	Category      string  `json:"category"`
	Item          string  `json:"item"`
	Vendor        string  `json:"vendor"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// CategorySummary aggregates items sharing a category.
type CategorySummary struct {
	Category  string          `json:"category"`
	ItemCount int             `json:"item_count"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// ImportRun records one import of a workbook into the store.
type ImportRun struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Chemicals   int       `json:"chemicals"`
	Budget      int       `json:"budget_items"`
	Consumables int       `json:"consumables"`
	Skipped     int       `json:"skipped"`
	CreatedAt   time.Time `json:"created_at"`
}
