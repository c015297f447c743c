package safety

import (
	"fmt"
	"strings"
)

// Table is the process-wide banned-pesticide index. It is built once and never
// mutated, so it is shared by all requests without locking.
type Table struct {
	entries   []*entry
	byName    map[string]*entry
	universal []*entry
	byCrop    map[string][]*entry
}

type entry struct {
	rule     Rule
	matchers []matcher
}

// NewTable validates the rules and builds the name and crop indexes.
func NewTable(rules []Rule) (*Table, error) {
	t := &Table{
		byName: make(map[string]*entry, len(rules)),
		byCrop: make(map[string][]*entry),
	}

	for i, r := range rules {
		if err := validateRule(i, r); err != nil {
			return nil, err
		}
		key := normalizeName(r.ChemicalName)
		if _, dup := t.byName[key]; dup {
			return nil, fmt.Errorf("rule %d: duplicate chemical %q", i, r.ChemicalName)
		}

		e := &entry{rule: cloneRule(r)}
		names := append([]string{r.ChemicalName}, r.Aliases...)
		for _, n := range names {
			m, err := newMatcher(n)
			if err != nil {
				return nil, fmt.Errorf("rule %d (%s): alias %q: %w", i, r.ChemicalName, n, err)
			}
			if m.re != nil {
				e.matchers = append(e.matchers, m)
			}
		}

		t.entries = append(t.entries, e)
		t.byName[key] = e

		if r.Status.Universal() {
			t.universal = append(t.universal, e)
			continue
		}
		seen := make(map[string]bool)
		for _, c := range r.BannedCrops {
			ck := NormalizeCrop(c)
			if ck == "" || seen[ck] {
				continue
			}
			seen[ck] = true
			t.byCrop[ck] = append(t.byCrop[ck], e)
		}
	}
	return t, nil
}

// Len returns the number of rules.
func (t *Table) Len() int { return len(t.entries) }

// Rule looks a chemical up by canonical name or alias-insensitive canonical key.
func (t *Table) Rule(chemical string) (Rule, bool) {
	e, ok := t.byName[normalizeName(chemical)]
	if !ok {
		return Rule{}, false
	}
	return cloneRule(e.rule), true
}

// BannedFor returns every chemical that must not be recommended for crop:
// all universally banned chemicals plus the restricted ones scoped to crop.
// Order follows the rule file.
func (t *Table) BannedFor(crop string) []string {
	entries := t.entriesFor(crop)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.rule.ChemicalName
	}
	return names
}

// RulesFor is BannedFor with the full rule records.
func (t *Table) RulesFor(crop string) []Rule {
	entries := t.entriesFor(crop)
	rules := make([]Rule, len(entries))
	for i, e := range entries {
		rules[i] = cloneRule(e.rule)
	}
	return rules
}

func (t *Table) entriesFor(crop string) []*entry {
	scoped := t.byCrop[NormalizeCrop(crop)]
	out := make([]*entry, 0, len(t.universal)+len(scoped))
	out = append(out, t.universal...)
	out = append(out, scoped...)
	return out
}

// NormalizeCrop folds case and whitespace so "  guava " and "Guava" share a key.
func NormalizeCrop(crop string) string {
	return strings.Join(strings.Fields(strings.ToLower(crop)), " ")
}

func normalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}

func cloneRule(r Rule) Rule {
	r.Aliases = append([]string(nil), r.Aliases...)
	r.BannedCrops = append([]string(nil), r.BannedCrops...)
	return r
}
