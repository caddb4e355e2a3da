// Package reference holds the curated chemical knowledge base and the
// name matcher used to backfill inventory rows from it.
package reference

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/labinv/internal/model"
)

//go:embed knowledge_base.yaml
var defaultKnowledgeBase []byte

// ErrEmptyKnowledgeBase is returned when a knowledge base has no entries.
var ErrEmptyKnowledgeBase = eris.New("reference: knowledge base has no entries")

// KnowledgeBase is an immutable, ordered set of reference entries.
type KnowledgeBase struct {
	entries []model.ReferenceEntry
	byKey   map[string]int
}

type kbFile struct {
	Entries []model.ReferenceEntry `yaml:"entries"`
}

// Parse decodes a YAML knowledge base. Entry names must be non-empty and
// unique ignoring case; entries keep their file order.
func Parse(data []byte) (*KnowledgeBase, error) {
	var f kbFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "reference: parse knowledge base")
	}
	if len(f.Entries) == 0 {
		return nil, ErrEmptyKnowledgeBase
	}

	kb := &KnowledgeBase{
		entries: make([]model.ReferenceEntry, 0, len(f.Entries)),
		byKey:   make(map[string]int, len(f.Entries)),
	}
	for i, e := range f.Entries {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			return nil, eris.Errorf("reference: entry %d has no name", i)
		}
		key := foldKey(e.Name)
		if _, dup := kb.byKey[key]; dup {
			return nil, eris.Errorf("reference: duplicate entry %q", e.Name)
		}
		kb.byKey[key] = len(kb.entries)
		kb.entries = append(kb.entries, e)
	}
	return kb, nil
}

// Load reads a knowledge base from path, or returns the embedded default
// when path is empty.
func Load(path string) (*KnowledgeBase, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reference: read knowledge base %s", path)
	}
	return Parse(data)
}

// Default returns the knowledge base compiled into the binary.
func Default() (*KnowledgeBase, error) {
	return Parse(defaultKnowledgeBase)
}

// Len returns the number of entries.
func (kb *KnowledgeBase) Len() int { return len(kb.entries) }

// Entries returns a copy of the entries in declaration order.
func (kb *KnowledgeBase) Entries() []model.ReferenceEntry {
	out := make([]model.ReferenceEntry, len(kb.entries))
	copy(out, kb.entries)
	return out
}

// Get returns the entry whose name equals name ignoring case.
func (kb *KnowledgeBase) Get(name string) (model.ReferenceEntry, bool) {
	i, ok := kb.byKey[foldKey(strings.TrimSpace(name))]
	if !ok {
		return model.ReferenceEntry{}, false
	}
	return kb.entries[i], true
}

func foldKey(s string) string {
	return cases.Fold().String(s)
}
