package reference

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/labinv/internal/model"
)

// TieBreak decides which entry wins when several satisfy the same pass.
type TieBreak string

const (
	// TieBreakLongest prefers longer keys, then declaration order.
	TieBreakLongest TieBreak = "longest"
	// TieBreakDeclared keeps knowledge base declaration order.
	TieBreakDeclared TieBreak = "declared"
)

// minTokenLen is the shortest key token the token pass will use; shorter
// tokens ("and", "acid" fragments) match too much.
const minTokenLen = 4

// ParseTieBreak validates a tie-break name. Empty means TieBreakLongest.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(strings.ToLower(strings.TrimSpace(s))) {
	case "", TieBreakLongest:
		return TieBreakLongest, nil
	case TieBreakDeclared:
		return TieBreakDeclared, nil
	default:
		return "", eris.Errorf("reference: unknown tie break %q", s)
	}
}

type candidate struct {
	entry  model.ReferenceEntry
	key    string
	tokens []string
}

// Matcher finds the reference entry for a free-text chemical name. It is
// safe for concurrent use.
type Matcher struct {
	candidates []candidate // declared order, or longest key first
	shortest   []candidate // shortest key first; nil for TieBreakDeclared
	tieBreak   TieBreak
}

// NewMatcher builds a matcher over kb.
func NewMatcher(kb *KnowledgeBase, tb TieBreak) (*Matcher, error) {
	if kb == nil || kb.Len() == 0 {
		return nil, ErrEmptyKnowledgeBase
	}
	if tb == "" {
		tb = TieBreakLongest
	}

	cands := make([]candidate, 0, kb.Len())
	for _, e := range kb.entries {
		key := foldKey(e.Name)
		var tokens []string
		for _, tok := range strings.Fields(key) {
			if utf8.RuneCountInString(tok) >= minTokenLen {
				tokens = append(tokens, tok)
			}
		}
		cands = append(cands, candidate{entry: e, key: key, tokens: tokens})
	}
	m := &Matcher{candidates: cands, tieBreak: tb}
	if tb == TieBreakLongest {
		m.shortest = append([]candidate(nil), cands...)
		sort.SliceStable(m.shortest, func(i, j int) bool {
			return utf8.RuneCountInString(m.shortest[i].key) < utf8.RuneCountInString(m.shortest[j].key)
		})
		sort.SliceStable(cands, func(i, j int) bool {
			return utf8.RuneCountInString(cands[i].key) > utf8.RuneCountInString(cands[j].key)
		})
	}
	return m, nil
}

// TieBreak returns the matcher's tie-break policy.
func (m *Matcher) TieBreak() TieBreak { return m.tieBreak }

// Lookup returns the entry for name, trying containment first and then
// shared long tokens. ok is false when neither pass matches.
//
// An exact name always wins. After that, TieBreakLongest takes the longest
// key found within the query, then the shortest key that contains the
// query; TieBreakDeclared takes the first declared key either way.
func (m *Matcher) Lookup(name string) (model.Match, bool) {
	query := foldKey(strings.TrimSpace(name))
	if query == "" {
		return model.Match{}, false
	}

	// Pass 1: containment.
	if c, ok := m.containment(query); ok {
		zap.L().Debug("reference: containment match",
			zap.String("query", name),
			zap.String("key", c.entry.Name),
		)
		return model.Match{Entry: c.entry, Pass: model.MatchContainment}, true
	}

	// Pass 2: any long key token within query.
	for _, c := range m.candidates {
		for _, tok := range c.tokens {
			if strings.Contains(query, tok) {
				zap.L().Debug("reference: token match",
					zap.String("query", name),
					zap.String("key", c.entry.Name),
					zap.String("token", tok),
				)
				return model.Match{Entry: c.entry, Pass: model.MatchToken}, true
			}
		}
	}

	return model.Match{}, false
}

func (m *Matcher) containment(query string) (candidate, bool) {
	for _, c := range m.candidates {
		if c.key == query {
			return c, true
		}
	}
	if m.tieBreak == TieBreakDeclared {
		for _, c := range m.candidates {
			if strings.Contains(query, c.key) || strings.Contains(c.key, query) {
				return c, true
			}
		}
		return candidate{}, false
	}
	for _, c := range m.candidates {
		if strings.Contains(query, c.key) {
			return c, true
		}
	}
	for _, c := range m.shortest {
		if strings.Contains(c.key, query) {
			return c, true
		}
	}
	return candidate{}, false
}
