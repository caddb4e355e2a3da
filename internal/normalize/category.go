package normalize

import "strings"

// CategoryState is the category carried forward from the last recognised
// label cell. It is passed into and returned from each normalization call.
type CategoryState string

// Vocabulary decides which category cells are real labels.
type Vocabulary struct {
	// Labels maps accepted raw labels to their display form.
	Labels map[string]string
	// Open accepts any non-ignored label, not only those in Labels.
	Open bool
	// Ignore lists cell texts that never change the state.
	Ignore []string
	// Default is the state at the start of a sheet.
	Default string
}

// Initial returns the state a sheet starts with.
func (v Vocabulary) Initial() CategoryState {
	return CategoryState(v.Default)
}

// Advance returns the state after seeing a category cell. Blank, ignored and
// (for closed vocabularies) unknown cells leave the state unchanged.
func (v Vocabulary) Advance(state CategoryState, cell string) CategoryState {
	label := CleanText(cell)
	if label == "" {
		return state
	}
	for _, ig := range v.Ignore {
		if strings.EqualFold(label, ig) {
			return state
		}
	}
	if display, ok := v.Labels[label]; ok {
		return CategoryState(display)
	}
	if v.Open {
		return CategoryState(label)
	}
	return state
}

// ChemicalVocabulary is the closed set of chemical shelf categories.
var ChemicalVocabulary = Vocabulary{
	Labels: map[string]string{
		"Presusors/polymers":    "Precursors & Polymers",
		"Reagents":              "Reagents",
		"Initiators":            "Initiators",
		"Acrylate/acryamide":    "Acrylates & Acrylamides",
		"Solvent":               "Solvents",
		"Fillers and particles": "Fillers & Particles",
		"Surfactant":            "Surfactants",
		"Wax":                   "Waxes",
		"Liposome":              "Liposomes",
	},
	Default: "Uncategorized",
}

// BudgetVocabulary accepts any budget section label and tidies known ones.
var BudgetVocabulary = Vocabulary{
	Labels: map[string]string{
		"Utrasound imgaing/printing equipment": "Ultrasound Imaging/Printing Equipment",
		"Material preparation equipment":       "Material Preparation Equipment",
		"Material characterization equipment":  "Material Characterization Equipment",
		"Cell culture":                         "Cell Culture & Animal Experiments",
		"use of shared":                        "Shared Facility Usage",
		"access to a departmental":             "Departmental Machine Shop",
		"Common equipment":                     "Common Equipment",
		"Safety equipment":                     "Safety Equipment",
		"Supplies":                             "Supplies",
		"Office":                               "Office & Computing",
		"Personnel":                            "Personnel",
	},
	Open:   true,
	Ignore: []string{"and"},
}

// ConsumablesVocabulary accepts any label as a consumables section.
var ConsumablesVocabulary = Vocabulary{
	Open:    true,
	Default: "General",
}
