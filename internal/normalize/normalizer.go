package normalize

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/labinv/internal/model"
)

// ErrEmptySheet is returned when a sheet yields no rows at all.
var ErrEmptySheet = eris.New("normalize: sheet has no rows")

// NoColumn is a column reference that always reads as empty.
var NoColumn = model.Column{Index: -1}

// Layout says where each chemical field lives in a raw row.
type Layout struct {
	Name            model.Column
	Category        model.Column
	Quantity        model.Column
	DateOpened      model.Column
	Vendor          model.Column
	CASNumber       model.Column
	CatalogNumber   model.Column
	Unit            model.Column
	Location        model.Column
	MolecularWeight model.Column
	Cost            model.Column
	Link            model.Column
}

// ChemicalLayout is the column order of the "3_Chemicals&Reagents" sheet.
var ChemicalLayout = Layout{
	Category:        model.Col(0),
	Quantity:        model.Col(1),
	DateOpened:      model.Col(2),
	Name:            model.Col(3),
	Vendor:          model.Col(4),
	CASNumber:       model.Col(6),
	CatalogNumber:   model.Col(7),
	Unit:            model.Col(8),
	Location:        model.Col(9),
	MolecularWeight: model.Col(10),
	Cost:            model.Col(12),
	Link:            model.Col(13),
}

// Normalizer converts raw chemical rows into canonical records.
type Normalizer struct {
	Layout     Layout
	Vocabulary Vocabulary
	Vendors    AliasTable
	Locations  AliasTable
}

// NewChemicalNormalizer returns a Normalizer for the laboratory chemical sheet.
func NewChemicalNormalizer() *Normalizer {
	return &Normalizer{
		Layout:     ChemicalLayout,
		Vocabulary: ChemicalVocabulary,
		Vendors:    VendorAliases,
		Locations:  LocationAliases,
	}
}

// Normalize converts one row. It reports ok=false for rows without a name,
// in which case the returned state equals the input state.
func (n *Normalizer) Normalize(raw model.RawRecord, state CategoryState) (model.CanonicalRecord, bool, CategoryState) {
	name := CleanText(raw.Get(n.Layout.Name))
	if name == "" {
		return model.CanonicalRecord{}, false, state
	}

	state = n.Vocabulary.Advance(state, raw.Get(n.Layout.Category))

	rec := model.CanonicalRecord{
		Name:            name,
		Category:        string(state),
		CASNumber:       CleanCAS(raw.Get(n.Layout.CASNumber)),
		Vendor:          n.Vendors.Normalize(raw.Get(n.Layout.Vendor)),
		CatalogNumber:   CleanText(raw.Get(n.Layout.CatalogNumber)),
		Quantity:        ParseQuantity(raw.Get(n.Layout.Quantity)),
		Unit:            CleanText(raw.Get(n.Layout.Unit)),
		MolecularWeight: ParseMolecularWeight(raw.Get(n.Layout.MolecularWeight)),
		Cost:            ParseCost(raw.Get(n.Layout.Cost)),
		Location:        n.Locations.Normalize(raw.Get(n.Layout.Location)),
		DateOpened:      ParseDate(raw.Get(n.Layout.DateOpened)),
		Link:            CleanText(raw.Get(n.Layout.Link)),
	}
	if rec.Location != "" {
		rec.Notes = "Location: " + rec.Location
	}
	if rec.Category == "" {
		rec.Category = "Uncategorized"
	}
	return rec, true, state
}

// SheetResult is the outcome of normalizing a whole sheet.
type SheetResult struct {
	Records []model.CanonicalRecord
	Rows    int
	Skipped int
	Final   CategoryState
}

// NormalizeSheet normalizes rows in order, carrying the category state from
// the vocabulary default. Records keep their input order.
func (n *Normalizer) NormalizeSheet(rows []model.RawRecord) (*SheetResult, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	res := &SheetResult{Rows: len(rows)}
	state := n.Vocabulary.Initial()
	for _, raw := range rows {
		rec, ok, next := n.Normalize(raw, state)
		state = next
		if !ok {
			res.Skipped++
			zap.L().Debug("normalize: skipped row without name", zap.Int("row", raw.Row))
			continue
		}
		res.Records = append(res.Records, rec)
	}
	res.Final = state
	return res, nil
}
