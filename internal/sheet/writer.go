package sheet

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/labinv/internal/model"
)

// Organized sheet names.
const (
	ChemicalsSheet          = "Chemicals"
	BudgetDetailsSheet      = "Budget Details"
	BudgetSummarySheet      = "Budget Summary"
	ConsumablesSheet        = "Consumables"
	ConsumablesSummarySheet = "Consumables Summary"
)

// Organized is the cleaned content of a laboratory workbook.
type Organized struct {
	Chemicals          []model.CanonicalRecord
	Budget             []model.BudgetItem
	BudgetSummary      []model.CategorySummary
	Consumables        []model.Consumable
	ConsumablesSummary []model.CategorySummary
}

var chemicalHeader = []string{
	"name", "category", "cas_number", "vendor", "catalog_number", "quantity", "unit",
	"molecular_weight", "location", "date_opened", "estimated_cost", "link", "notes",
}

var summaryHeader = []string{"category", "total_cost", "item_count"}

// WriteOrganized writes o to a new workbook at path, one sheet per section.
// Empty sections still get a sheet with a header row.
func WriteOrganized(path string, o Organized) error {
	f := xlsx.NewFile()

	sh, err := addSheet(f, ChemicalsSheet, chemicalHeader)
	if err != nil {
		return err
	}
	for _, c := range o.Chemicals {
		row := sh.AddRow()
		addStrings(row, c.Name, c.Category, c.CASNumber, c.Vendor, c.CatalogNumber)
		row.AddCell().SetInt(c.Quantity)
		addStrings(row, c.Unit)
		addOptionalFloat(row, c.MolecularWeight)
		addStrings(row, c.Location, c.DateOpened)
		addOptionalFloat(row, c.Cost)
		addStrings(row, c.Link, c.Notes)
	}

	sh, err = addSheet(f, BudgetDetailsSheet, []string{"category", "item", "vendor_model", "description", "cost"})
	if err != nil {
		return err
	}
	for _, b := range o.Budget {
		row := sh.AddRow()
		addStrings(row, b.Category, b.Item, b.VendorModel, b.Description)
		row.AddCell().SetFloat(b.Cost)
	}

	if err := writeSummary(f, BudgetSummarySheet, o.BudgetSummary); err != nil {
		return err
	}

	sh, err = addSheet(f, ConsumablesSheet, []string{"category", "item", "vendor", "estimated_cost"})
	if err != nil {
		return err
	}
	for _, c := range o.Consumables {
		row := sh.AddRow()
		addStrings(row, c.Category, c.Item, c.Vendor)
		row.AddCell().SetFloat(c.EstimatedCost)
	}

	if err := writeSummary(f, ConsumablesSummarySheet, o.ConsumablesSummary); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}

func writeSummary(f *xlsx.File, name string, rows []model.CategorySummary) error {
	sh, err := addSheet(f, name, summaryHeader)
	if err != nil {
		return err
	}
	for _, s := range rows {
		row := sh.AddRow()
		addStrings(row, s.Category)
		row.AddCell().SetFloat(s.TotalCost.Round(2).InexactFloat64())
		row.AddCell().SetInt(s.ItemCount)
	}
	return nil
}

func addSheet(f *xlsx.File, name string, header []string) (*xlsx.Sheet, error) {
	sh, err := f.AddSheet(name)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: add sheet %q", name)
	}
	addStrings(sh.AddRow(), header...)
	return sh, nil
}

func addStrings(row *xlsx.Row, values ...string) {
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// addOptionalFloat leaves the cell blank for nil.
func addOptionalFloat(row *xlsx.Row, v *float64) {
	cell := row.AddCell()
	if v != nil {
		cell.SetFloat(*v)
	}
}
