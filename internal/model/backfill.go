package model

// BackfillField names a chemical column that backfill may fill.
type BackfillField string

// Backfill fields, named by their storage column.
const (
	FieldCASNumber         BackfillField = "cas_number"
	FieldFormula           BackfillField = "formula"
	FieldMolecularWeight   BackfillField = "molecular_weight"
	FieldHazardClass       BackfillField = "hazard_class"
	FieldStorageConditions BackfillField = "storage_conditions"
	FieldSDSURL            BackfillField = "sds_url"
)

// BackfillFields lists the tracked fields in update order.
var BackfillFields = []BackfillField{
	FieldCASNumber,
	FieldFormula,
	FieldMolecularWeight,
	FieldHazardClass,
	FieldStorageConditions,
	FieldSDSURL,
}

// Valid reports whether f is one of the tracked fields.
func (f BackfillField) Valid() bool {
	for _, k := range BackfillFields {
		if k == f {
			return true
		}
	}
	return false
}

// FieldUpdate sets one empty column. Value is a string, or a float64 for
// molecular_weight.
type FieldUpdate struct {
	Field BackfillField `json:"field"`
	Value any           `json:"value"`
}

// BackfillResult is the set of updates computed for one stored chemical.
type BackfillResult struct {
	ChemicalID int64         `json:"chemical_id"`
	Name       string        `json:"name"`
	MatchedKey string        `json:"matched_key,omitempty"`
	Pass       MatchPass     `json:"pass,omitempty"`
	Updates    []FieldUpdate `json:"updates"`
}

// Matched reports whether a reference entry was found.
func (r BackfillResult) Matched() bool {
	return r.MatchedKey != ""
}

// Empty reports whether there is nothing to persist.
func (r BackfillResult) Empty() bool {
	return len(r.Updates) == 0
}
