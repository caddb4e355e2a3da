// Package backfill fills missing identity and safety columns of stored
// chemicals from the reference knowledge base without overwriting data.
package backfill

import (
	"strings"

	"github.com/sells-group/labinv/internal/model"
)

// Compute returns the updates that match would contribute to stored. A field
// is updated only when the stored value is empty and the reference value is
// set; a nil match yields an empty result.
func Compute(stored model.StoredChemical, match *model.Match) model.BackfillResult {
	res := model.BackfillResult{ChemicalID: stored.ID, Name: stored.Name}
	if match == nil {
		return res
	}
	res.MatchedKey = match.Entry.Name
	res.Pass = match.Pass

	ref := match.Entry
	addText := func(field model.BackfillField, current, value string) {
		if isBlank(current) && !isBlank(value) {
			res.Updates = append(res.Updates, model.FieldUpdate{Field: field, Value: strings.TrimSpace(value)})
		}
	}

	addText(model.FieldCASNumber, stored.CASNumber, ref.CAS)
	addText(model.FieldFormula, stored.Formula, ref.Formula)
	// A nil reference weight is "no single value", never a replacement.
	if weightMissing(stored.MolecularWeight) && ref.MolecularWeight != nil {
		res.Updates = append(res.Updates, model.FieldUpdate{Field: model.FieldMolecularWeight, Value: *ref.MolecularWeight})
	}
	addText(model.FieldHazardClass, stored.HazardClass, ref.Hazard)
	addText(model.FieldStorageConditions, stored.StorageConditions, ref.Storage)
	addText(model.FieldSDSURL, stored.SDSURL, ref.SDS)

	return res
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// weightMissing treats a stored zero like NULL: inventory imports write 0
// when the sheet had no weight.
func weightMissing(w *float64) bool {
	return w == nil || *w == 0
}
