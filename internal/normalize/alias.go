package normalize

import (
	"strings"

	"golang.org/x/text/cases"
)

// AliasTable collapses spelling variants of a value onto one canonical form.
// Variants are compared after case folding, with hyphens, underscores and
// runs of whitespace treated as a single space.
type AliasTable struct {
	canon map[string]string
}

// NewAliasTable builds a table from canonical value -> known variants. Each
// canonical value also matches itself.
func NewAliasTable(variants map[string][]string) AliasTable {
	t := AliasTable{canon: make(map[string]string)}
	for canonical, vs := range variants {
		t.canon[aliasKey(canonical)] = canonical
		for _, v := range vs {
			t.canon[aliasKey(v)] = canonical
		}
	}
	return t
}

// Normalize trims s, maps missing-value sentinels to "" and known variants to
// their canonical spelling. Unknown values are returned trimmed.
func (t AliasTable) Normalize(s string) string {
	s = CleanText(s)
	if s == "" {
		return ""
	}
	if c, ok := t.canon[aliasKey(s)]; ok {
		return c
	}
	return s
}

// Len returns the number of distinct variant keys.
func (t AliasTable) Len() int { return len(t.canon) }

func aliasKey(s string) string {
	s = cases.Fold().String(s)
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// VendorAliases are the supplier spellings found in the inventory workbook.
var VendorAliases = NewAliasTable(map[string][]string{
	"Sigma-Aldrich":     {"Sigma Aldrich", "SIGMA", "Sigma", "Aldrich", "MilliporeSigma"},
	"Fisher Scientific": {"Fisher", "Fisher Sci"},
	"Thermo Scientific": {"Thermo Sci"},
	"Thermo Fisher":     {"ThermoFisher", "Thermo Fisher Scientific"},
	"TCI":               {"TCI America", "TCI Chemicals"},
	"Alfa Aesar":        {"Alfa"},
	"VWR":               {"VWR International"},
})

// LocationAliases are the storage location spellings found in the workbook.
var LocationAliases = NewAliasTable(map[string][]string{
	"Flammable Cabinet": {"flamable cabnet", "flamable cabinet", "flammable cabnet"},
	"Corrosive Cabinet": {"corrosive cabnet", "acid cabinet"},
	"Fridge":            {"refrigerator", "fridge 4C"},
	"Freezer":           {"-20 freezer", "freezer -20"},
})
