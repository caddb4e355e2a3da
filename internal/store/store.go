package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/labinv/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = eris.New("store: not found")

// ChemicalFilter specifies criteria for listing chemicals. A Limit of zero
// or less returns every matching row.
type ChemicalFilter struct {
	Category string `json:"category,omitempty"`
	Search   string `json:"search,omitempty"` // substring of name, CAS or catalog number
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the lab inventory.
type Store interface {
	// Imports replace the whole table in one transaction.
	// ReplaceInventory replaces all three tables and records run in a
	// single transaction; the counts on the returned run are the rows loaded.
	ReplaceInventory(ctx context.Context, inv Inventory, run model.ImportRun) (*model.ImportRun, error)
	ReplaceChemicals(ctx context.Context, recs []model.CanonicalRecord) (int, error)
	ReplaceBudgetItems(ctx context.Context, items []model.BudgetItem) (int, error)
	ReplaceConsumables(ctx context.Context, items []model.Consumable) (int, error)

	// Chemicals
	ListChemicals(ctx context.Context, filter ChemicalFilter) ([]model.StoredChemical, error)
	GetChemical(ctx context.Context, id int64) (*model.StoredChemical, error)
	ApplyBackfill(ctx context.Context, id int64, updates []model.FieldUpdate) error
	Coverage(ctx context.Context) (*model.Coverage, error)

	// Budget and consumables, in import order.
	ListBudgetItems(ctx context.Context) ([]model.BudgetItem, error)
	ListConsumables(ctx context.Context) ([]model.Consumable, error)

	// Import audit
	CreateImportRun(ctx context.Context, run model.ImportRun) (*model.ImportRun, error)
	ListImportRuns(ctx context.Context, limit int) ([]model.ImportRun, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// Inventory is the full content of one workbook import.
type Inventory struct {
	Chemicals   []model.CanonicalRecord
	Budget      []model.BudgetItem
	Consumables []model.Consumable
}

// tableLoad is the replacement content of one table.
type tableLoad struct {
	table   string
	columns []string
	rows    [][]any
}

var (
	budgetColumns     = []string{"category", "item", "vendor_model", "description", "cost"}
	consumableColumns = []string{"category", "item", "vendor", "estimated_cost"}
)

func chemicalLoad(recs []model.CanonicalRecord) tableLoad {
	rows := make([][]any, len(recs))
	for i, r := range recs {
		rows[i] = chemicalRow(r)
	}
	return tableLoad{table: "chemicals", columns: chemicalColumns, rows: rows}
}

func budgetLoad(items []model.BudgetItem) tableLoad {
	rows := make([][]any, len(items))
	for i, it := range items {
		rows[i] = []any{it.Category, it.Item, it.VendorModel, it.Description, it.Cost}
	}
	return tableLoad{table: "budget_items", columns: budgetColumns, rows: rows}
}

func consumableLoad(items []model.Consumable) tableLoad {
	rows := make([][]any, len(items))
	for i, it := range items {
		rows[i] = []any{it.Category, it.Item, it.Vendor, it.EstimatedCost}
	}
	return tableLoad{table: "consumables", columns: consumableColumns, rows: rows}
}

func (inv Inventory) loads() []tableLoad {
	return []tableLoad{chemicalLoad(inv.Chemicals), budgetLoad(inv.Budget), consumableLoad(inv.Consumables)}
}

// setRunCounts copies per-table counts, in Inventory.loads order, onto run.
func setRunCounts(run *model.ImportRun, counts []int) {
	run.Chemicals, run.Budget, run.Consumables = counts[0], counts[1], counts[2]
}

var chemicalColumns = []string{
	"name", "category", "cas_number", "quantity", "unit", "supplier",
	"catalog_number", "molecular_weight", "cost", "date_opened", "link", "notes",
}

const selectChemical = `SELECT id, name, category, cas_number, formula, molecular_weight, quantity, unit,
	hazard_class, storage_conditions, supplier, catalog_number, cost, sds_url, link,
	date_opened, notes, created_at, updated_at FROM chemicals`

func chemicalRow(r model.CanonicalRecord) []any {
	category := r.Category
	if category == "" {
		category = "Uncategorized"
	}
	return []any{
		r.Name, category, r.CASNumber, r.Quantity, r.Unit, r.Vendor,
		r.CatalogNumber, r.MolecularWeight, r.Cost, r.DateOpened, r.Link, r.Notes,
	}
}

// backfillSet builds the SET clause for ApplyBackfill. Each column is only
// written when it is still empty at write time, so a concurrent edit is
// never overwritten. ph renders the placeholder for argument n (1-based).
func backfillSet(updates []model.FieldUpdate, ph func(n int) string) (string, []any, error) {
	clauses := make([]string, 0, len(updates))
	args := make([]any, 0, len(updates))
	seen := make(map[model.BackfillField]bool, len(updates))
	for _, u := range updates {
		if !u.Field.Valid() {
			return "", nil, eris.Errorf("store: field %q cannot be backfilled", u.Field)
		}
		if seen[u.Field] {
			return "", nil, eris.Errorf("store: duplicate update for %s", u.Field)
		}
		seen[u.Field] = true

		col := string(u.Field)
		args = append(args, u.Value)
		p := ph(len(args))
		if u.Field == model.FieldMolecularWeight {
			if _, ok := u.Value.(float64); !ok {
				return "", nil, eris.Errorf("store: molecular_weight must be float64, got %T", u.Value)
			}
			clauses = append(clauses, fmt.Sprintf("%s = CASE WHEN %s IS NULL OR %s = 0 THEN %s ELSE %s END", col, col, col, p, col))
			continue
		}
		if _, ok := u.Value.(string); !ok {
			return "", nil, eris.Errorf("store: %s must be a string, got %T", col, u.Value)
		}
		clauses = append(clauses, fmt.Sprintf("%s = CASE WHEN TRIM(COALESCE(%s, '')) = '' THEN %s ELSE %s END", col, col, p, col))
	}
	return strings.Join(clauses, ", "), args, nil
}

const (
	selectBudgetItems = `SELECT category, item, vendor_model, description, cost FROM budget_items ORDER BY id`
	selectConsumables = `SELECT category, item, vendor, estimated_cost FROM consumables ORDER BY id`
)

type scannable interface {
	Scan(dest ...any) error
}

// rowIterator is the part of *sql.Rows and pgx.Rows the scanners use.
type rowIterator interface {
	scannable
	Next() bool
	Err() error
}

func scanBudgetItems(rows rowIterator) ([]model.BudgetItem, error) {
	var items []model.BudgetItem
	for rows.Next() {
		var it model.BudgetItem
		if err := rows.Scan(&it.Category, &it.Item, &it.VendorModel, &it.Description, &it.Cost); err != nil {
			return nil, eris.Wrap(err, "scan budget item")
		}
		items = append(items, it)
	}
	return items, eris.Wrap(rows.Err(), "iterate budget items")
}

func scanConsumables(rows rowIterator) ([]model.Consumable, error) {
	var items []model.Consumable
	for rows.Next() {
		var it model.Consumable
		if err := rows.Scan(&it.Category, &it.Item, &it.Vendor, &it.EstimatedCost); err != nil {
			return nil, eris.Wrap(err, "scan consumable")
		}
		items = append(items, it)
	}
	return items, eris.Wrap(rows.Err(), "iterate consumables")
}
