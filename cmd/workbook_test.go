package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/labinv/internal/backfill"
	"github.com/sells-group/labinv/internal/config"
	"github.com/sells-group/labinv/internal/model"
	"github.com/sells-group/labinv/internal/sheet"
	"github.com/sells-group/labinv/internal/store"
)

var testWorkbookConfig = config.WorkbookConfig{
	Chemicals:   config.SheetConfig{Name: "3_Chemicals&Reagents", SkipRows: 1},
	Budget:      config.SheetConfig{Name: "1_Overall Budget ", SkipRows: 1},
	Consumables: config.SheetConfig{Name: "2_Consumables", SkipRows: 1},
}

// writeLabWorkbook builds a small workbook shaped like the lab's. The budget
// sheet is only added when withBudget is set.
func writeLabWorkbook(t *testing.T, withBudget bool) string {
	t.Helper()
	f := xlsx.NewFile()
	add := func(name string, rows [][]string) {
		sh, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, r := range rows {
			row := sh.AddRow()
			for _, c := range r {
				row.AddCell().SetString(c)
			}
		}
	}

	add("3_Chemicals&Reagents", [][]string{
		{"Category", "Qty", "Opened", "Name", "Vendor", "", "CAS", "Cat#", "Size", "Location", "MW", "", "Cost", "Link"},
		{"Presusors/polymers", "1", "", "Agar", "sigma aldrich", "", "", "A1296", "500 g", "", "", "", "$80.00", ""},
		{"", "", "", ""},
		{"Solvent", "2", "2024-03-01", "Mystery solvent", "VWR", "", "0064-17-5", "", "1 L", "", "46.07", "", "", ""},
	})
	if withBudget {
		add("1_Overall Budget ", [][]string{
			{"Category", "Item", "Vendor/Model", "Description", "Cost"},
			{"Safety equipment", "Fume hood", "Labconco", "", "$1,200.50"},
			{"", "Eyewash", "", "", "300"},
			{"", "Gloves", "", "", ""},
		})
	}
	add("2_Consumables", [][]string{
		{"Category", "Item", "Vendor", "Cost"},
		{"Plasticware", "Pipette tips", "vwr", "120"},
		{"", "Other general consumables", "", "500"},
	})

	path := filepath.Join(t.TempDir(), "lab.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadLabWorkbook(t *testing.T) {
	lw, err := readLabWorkbook(writeLabWorkbook(t, true), testWorkbookConfig)
	require.NoError(t, err)

	require.Len(t, lw.Chemicals, 2)
	assert.Equal(t, 1, lw.Skipped)
	assert.Equal(t, "Agar", lw.Chemicals[0].Name)
	assert.Equal(t, "Precursors & Polymers", lw.Chemicals[0].Category)
	assert.Equal(t, "Sigma-Aldrich", lw.Chemicals[0].Vendor)
	assert.Equal(t, "Solvents", lw.Chemicals[1].Category)
	assert.Equal(t, "64-17-5", lw.Chemicals[1].CASNumber)

	require.Len(t, lw.Budget, 2)
	assert.Equal(t, "Safety Equipment", lw.Budget[1].Category)
	assert.InDelta(t, 1200.5, lw.Budget[0].Cost, 0.001)

	require.Len(t, lw.Consumables, 1)
	assert.Equal(t, "Plasticware", lw.Consumables[0].Category)
}

func TestReadLabWorkbook_MissingOptionalSheet(t *testing.T) {
	lw, err := readLabWorkbook(writeLabWorkbook(t, false), testWorkbookConfig)
	require.NoError(t, err)
	assert.Len(t, lw.Chemicals, 2)
	assert.Empty(t, lw.Budget)
	assert.Len(t, lw.Consumables, 1)
}

func TestReadLabWorkbook_MissingChemicalsSheet(t *testing.T) {
	wc := testWorkbookConfig
	wc.Chemicals.Name = "Chemicals"

	_, err := readLabWorkbook(writeLabWorkbook(t, true), wc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read chemicals")
}

func useTestConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = &config.Config{
		Store:     config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(t.TempDir(), "inventory.db")},
		Workbook:  testWorkbookConfig,
		Reference: config.ReferenceConfig{TieBreak: "longest"},
		Backfill:  config.BackfillConfig{Concurrency: 2},
	}
	t.Cleanup(func() { cfg = prev })
}

func TestOrganizeCommand_WritesWorkbook(t *testing.T) {
	useTestConfig(t)
	organizeInput = writeLabWorkbook(t, true)
	organizeOutput = filepath.Join(t.TempDir(), "organized.xlsx")
	organizeCmd.SetContext(context.Background())

	require.NoError(t, organizeCmd.RunE(organizeCmd, nil))

	rows, err := sheet.ReadRows(organizeOutput, sheet.Options{SheetName: sheet.ChemicalsSheet, HeaderRow: 1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Agar", rows[0].Get(model.Named("name")))
}

func TestImportThenBackfill(t *testing.T) {
	useTestConfig(t)
	ctx := context.Background()

	importInput = writeLabWorkbook(t, true)
	importCmd.SetContext(ctx)
	require.NoError(t, importCmd.RunE(importCmd, nil))

	var out bytes.Buffer
	backfillCmd.SetOut(&out)
	backfillCmd.SetContext(ctx)
	t.Cleanup(func() { backfillCmd.SetOut(nil) })
	require.NoError(t, backfillCmd.RunE(backfillCmd, nil))

	var report backfill.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 2, report.Scanned)
	assert.GreaterOrEqual(t, report.Updated, 1)

	st, err := openStore(ctx)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	chems, err := st.ListChemicals(ctx, store.ChemicalFilter{Search: "agar"})
	require.NoError(t, err)
	require.Len(t, chems, 1)
	assert.Equal(t, "9002-18-0", chems[0].CASNumber)
	assert.NotEmpty(t, chems[0].SDSURL)

	runs, err := st.ListImportRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "lab.xlsx", runs[0].Source)
	assert.Equal(t, 2, runs[0].Chemicals)
	assert.Equal(t, 1, runs[0].Skipped)
}
