package model

import "time"

// Column addresses a cell in a RawRecord, by header name when Name is set
// and by zero-based position otherwise.
type Column struct {
	Name  string
	Index int
}

// Col returns a positional column reference.
func Col(index int) Column { return Column{Index: index} }

// Named returns a header-name column reference.
func Named(name string) Column { return Column{Name: name, Index: -1} }

// RawRecord is one spreadsheet row before normalization.
type RawRecord struct {
	Row    int            // zero-based row number within the sheet
	Cells  []string       // positional cell text, "" for empty cells
	Header map[string]int // optional header name -> position
}

// Get returns the cell addressed by c, or "" when the row has no such cell.
func (r RawRecord) Get(c Column) string {
	idx := c.Index
	if c.Name != "" {
		i, ok := r.Header[c.Name]
		if !ok {
			return ""
		}
		idx = i
	}
	if idx < 0 || idx >= len(r.Cells) {
		return ""
	}
	return r.Cells[idx]
}

// CanonicalRecord is a cleaned, typed chemical row ready for persistence.
type CanonicalRecord struct {
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	CASNumber       string   `json:"cas_number"`
	Vendor          string   `json:"vendor"`
	CatalogNumber   string   `json:"catalog_number"`
	Quantity        int      `json:"quantity"`
	Unit            string   `json:"unit"`
	MolecularWeight *float64 `json:"molecular_weight,omitempty"`
	Cost            *float64 `json:"estimated_cost,omitempty"`
	Location        string   `json:"location"`
	DateOpened      string   `json:"date_opened"`
	Link            string   `json:"link"`
	Notes           string   `json:"notes"`
}

// StoredChemical is a chemical row as persisted, including the safety
// columns that backfill fills in.
type StoredChemical struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	CASNumber         string    `json:"cas_number"`
	Formula           string    `json:"formula"`
	MolecularWeight   *float64  `json:"molecular_weight,omitempty"`
	Quantity          int       `json:"quantity"`
	Unit              string    `json:"unit"`
	HazardClass       string    `json:"hazard_class"`
	StorageConditions string    `json:"storage_conditions"`
	Supplier          string    `json:"supplier"`
	CatalogNumber     string    `json:"catalog_number"`
	Cost              *float64  `json:"cost,omitempty"`
	SDSURL            string    `json:"sds_url"`
	Link              string    `json:"link"`
	DateOpened        string    `json:"date_opened"`
	Notes             string    `json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Coverage counts how many stored chemicals carry identity and safety data.
type Coverage struct {
	Total   int `json:"total"`
	WithCAS int `json:"with_cas"`
	WithSDS int `json:"with_sds"`
}
