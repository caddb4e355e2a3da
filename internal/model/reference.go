package model

// ReferenceEntry holds known-good identity and safety values for one chemical.
// A nil MolecularWeight means the substance has no single value (polymers).
type ReferenceEntry struct {
	Name            string   `yaml:"name" json:"name"`
	CAS             string   `yaml:"cas" json:"cas"`
	Formula         string   `yaml:"formula" json:"formula"`
	MolecularWeight *float64 `yaml:"molecular_weight" json:"molecular_weight"`
	Hazard          string   `yaml:"hazard" json:"hazard"`
	Storage         string   `yaml:"storage" json:"storage"`
	SDS             string   `yaml:"sds" json:"sds"`
}

// MatchPass identifies which lookup pass produced a match.
type MatchPass string

const (
	MatchContainment MatchPass = "containment"
	MatchToken       MatchPass = "token"
)

// Match is a reference entry found for a query name.
type Match struct {
	Entry ReferenceEntry `json:"entry"`
	Pass  MatchPass      `json:"pass"`
}
