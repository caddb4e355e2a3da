package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/labinv/internal/model"
)

// chemRow builds a raw row in the chemical sheet column order.
func chemRow(row int, category, qty, name string, extra map[int]string) model.RawRecord {
	cells := make([]string, 14)
	cells[0] = category
	cells[1] = qty
	cells[3] = name
	for i, v := range extra {
		cells[i] = v
	}
	return model.RawRecord{Row: row, Cells: cells}
}

func TestNormalize_BlankNameSkipsAndKeepsState(t *testing.T) {
	n := NewChemicalNormalizer()
	for _, name := range []string{"", "   ", "nan"} {
		_, ok, next := n.Normalize(chemRow(1, "Solvent", "3", name, nil), "Reagents")
		assert.False(t, ok, "name: %q", name)
		assert.Equal(t, CategoryState("Reagents"), next, "name: %q", name)
	}
}

func TestNormalize_CategoryCarryForward(t *testing.T) {
	n := NewChemicalNormalizer()
	rows := []model.RawRecord{
		chemRow(0, "", "1", "Agar", nil),
		chemRow(1, "Reagents", "1", "DMSO", nil),
		chemRow(2, "", "1", "Epoxy", nil),
		chemRow(3, "see note", "1", "Bismaleimide", nil),
		chemRow(4, "Wax", "1", "Lauric acid", nil),
		chemRow(5, "Solvent", "1", "", nil),
		chemRow(6, "", "1", "Myristyl myristate", nil),
	}

	res, err := n.NormalizeSheet(rows)
	require.NoError(t, err)
	require.Len(t, res.Records, 6)
	assert.Equal(t, 7, res.Rows)
	assert.Equal(t, 1, res.Skipped)

	got := make([]string, len(res.Records))
	for i, r := range res.Records {
		got[i] = r.Category
	}
	assert.Equal(t, []string{
		"Uncategorized",
		"Reagents",
		"Reagents",
		"Reagents",
		"Waxes",
		"Waxes",
	}, got)
	// Row 5 has no name, so its "Solvent" label never applied.
	assert.Equal(t, CategoryState("Waxes"), res.Final)
	assert.Equal(t, "Myristyl myristate", res.Records[5].Name)
}

func TestNormalize_StateTracksLastRecognisedLabel(t *testing.T) {
	n := NewChemicalNormalizer()
	labels := []string{"", "Solvent", "junk", "", "Initiators", "Liposome", "", "Solvent "}
	expect := []CategoryState{
		"Uncategorized", "Solvents", "Solvents", "Solvents",
		"Initiators", "Liposomes", "Liposomes", "Solvents",
	}
	state := n.Vocabulary.Initial()
	for i, label := range labels {
		_, ok, next := n.Normalize(chemRow(i, label, "1", "Thing", nil), state)
		require.True(t, ok)
		assert.Equal(t, expect[i], next, "row %d", i)
		state = next
	}
}

func TestNormalize_EndToEnd(t *testing.T) {
	n := NewChemicalNormalizer()
	rows := []model.RawRecord{
		chemRow(0, "Solvent", "2", "Ethanol", nil),
		chemRow(1, "", "xx", "Methanol", nil),
	}

	res, err := n.NormalizeSheet(rows)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	assert.Equal(t, "Ethanol", res.Records[0].Name)
	assert.Equal(t, "Solvents", res.Records[0].Category)
	assert.Equal(t, 2, res.Records[0].Quantity)

	assert.Equal(t, "Methanol", res.Records[1].Name)
	assert.Equal(t, "Solvents", res.Records[1].Category)
	assert.Equal(t, 0, res.Records[1].Quantity)
}

func TestNormalize_AllFields(t *testing.T) {
	n := NewChemicalNormalizer()
	raw := chemRow(3, "Presusors/polymers", "12.7", "  Poly(ethylene oxide) ", map[int]string{
		2:  "2023-01-15 00:00:00",
		4:  "SIGMA ALDRICH",
		6:  "0025322-68-3 00:00:00",
		7:  " 189464 ",
		8:  "500 g",
		9:  "flamable cabnet",
		10: "4000k",
		12: "$85.20",
		13: "https://example.com/peo",
	})

	rec, ok, state := n.Normalize(raw, n.Vocabulary.Initial())
	require.True(t, ok)
	assert.Equal(t, CategoryState("Precursors & Polymers"), state)
	assert.Equal(t, "Poly(ethylene oxide)", rec.Name)
	assert.Equal(t, "Precursors & Polymers", rec.Category)
	assert.Equal(t, "25322-68-3", rec.CASNumber)
	assert.Equal(t, "Sigma-Aldrich", rec.Vendor)
	assert.Equal(t, "189464", rec.CatalogNumber)
	assert.Equal(t, 12, rec.Quantity)
	assert.Equal(t, "500 g", rec.Unit)
	assert.Equal(t, "Flammable Cabinet", rec.Location)
	assert.Equal(t, "Location: Flammable Cabinet", rec.Notes)
	assert.Equal(t, "2023-01-15", rec.DateOpened)
	assert.Equal(t, "https://example.com/peo", rec.Link)
	require.NotNil(t, rec.MolecularWeight)
	assert.InDelta(t, 4_000_000, *rec.MolecularWeight, 0.001)
	require.NotNil(t, rec.Cost)
	assert.InDelta(t, 85.2, *rec.Cost, 0.001)
}

func TestNormalize_BadSecondaryFieldsKeepRow(t *testing.T) {
	n := NewChemicalNormalizer()
	raw := chemRow(0, "", "`", "Gelatin", map[int]string{
		6:  "nan",
		10: "polymer",
		12: "ask PI",
	})

	rec, ok, _ := n.Normalize(raw, n.Vocabulary.Initial())
	require.True(t, ok)
	assert.Equal(t, "Gelatin", rec.Name)
	assert.Equal(t, 0, rec.Quantity)
	assert.Equal(t, "", rec.CASNumber)
	assert.Nil(t, rec.MolecularWeight)
	assert.Nil(t, rec.Cost)
	assert.Equal(t, "", rec.Notes)
}

func TestNormalize_ShortRow(t *testing.T) {
	n := NewChemicalNormalizer()
	rec, ok, _ := n.Normalize(model.RawRecord{Cells: []string{"Wax", "1", "", "Paraffin"}}, "Uncategorized")
	require.True(t, ok)
	assert.Equal(t, "Paraffin", rec.Name)
	assert.Equal(t, "Waxes", rec.Category)
	assert.Equal(t, "", rec.Link)
}

func TestNormalize_NamedLayout(t *testing.T) {
	n := &Normalizer{
		Layout: Layout{
			Name:            model.Named("Chemical"),
			Category:        model.Named("Type"),
			Quantity:        model.Named("Qty"),
			DateOpened:      NoColumn,
			Vendor:          model.Named("Supplier"),
			CASNumber:       model.Named("CAS"),
			CatalogNumber:   NoColumn,
			Unit:            NoColumn,
			Location:        NoColumn,
			MolecularWeight: model.Named("MW"),
			Cost:            NoColumn,
			Link:            NoColumn,
		},
		Vocabulary: ChemicalVocabulary,
		Vendors:    VendorAliases,
		Locations:  LocationAliases,
	}
	header := map[string]int{"Type": 0, "Chemical": 1, "Qty": 2, "Supplier": 3, "CAS": 4, "MW": 5}
	raw := model.RawRecord{
		Cells:  []string{"Solvent", "Acetone", "4", "Fisher", "67-64-1", "58.08"},
		Header: header,
	}

	rec, ok, _ := n.Normalize(raw, n.Vocabulary.Initial())
	require.True(t, ok)
	assert.Equal(t, "Acetone", rec.Name)
	assert.Equal(t, "Solvents", rec.Category)
	assert.Equal(t, 4, rec.Quantity)
	assert.Equal(t, "Fisher Scientific", rec.Vendor)
	assert.Equal(t, "67-64-1", rec.CASNumber)
	require.NotNil(t, rec.MolecularWeight)
	assert.InDelta(t, 58.08, *rec.MolecularWeight, 0.001)
	assert.Equal(t, "", rec.DateOpened)
}

func TestNormalizeSheet_Empty(t *testing.T) {
	n := NewChemicalNormalizer()
	_, err := n.NormalizeSheet(nil)
	require.ErrorIs(t, err, ErrEmptySheet)
}

func TestNormalizeSheet_AllSkipped(t *testing.T) {
	n := NewChemicalNormalizer()
	res, err := n.NormalizeSheet([]model.RawRecord{chemRow(0, "Wax", "", "", nil)})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, CategoryState("Uncategorized"), res.Final)
}

func TestVocabulary_Advance(t *testing.T) {
	v := Vocabulary{
		Labels: map[string]string{"Office": "Office & Computing"},
		Open:   true,
		Ignore: []string{"and"},
	}
	assert.Equal(t, CategoryState(""), v.Initial())
	assert.Equal(t, CategoryState("Office & Computing"), v.Advance("", "Office"))
	assert.Equal(t, CategoryState("Personnel"), v.Advance("x", " Personnel "))
	assert.Equal(t, CategoryState("x"), v.Advance("x", "and"))
	assert.Equal(t, CategoryState("x"), v.Advance("x", "NaN"))
	assert.Equal(t, CategoryState("x"), v.Advance("x", ""))
}
