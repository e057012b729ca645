package rules

import (
	"fmt"
)

// Variant is one hypothesis for how a marker arose at a word boundary:
// FirstSuffix ends the first word and SecondPrefix starts the second.
// Either may be empty.
type Variant struct {
	FirstSuffix  string
	SecondPrefix string
}

// Rule maps a marker (a vowel sign or consonant cluster) to its variants.
type Rule struct {
	Marker   string
	Variants []Variant
}

// Table is an ordered, read-only set of rules. Iteration order decides the
// order candidates are generated in, never whether they are generated.
type Table struct {
	rules []Rule
	index map[string]int
}

// New builds a table from rules in the given order.
// Markers must be non-empty and unique.
func New(rules ...Rule) (*Table, error) {
	t := &Table{
		rules: make([]Rule, 0, len(rules)),
		index: make(map[string]int, len(rules)),
	}
	for i, r := range rules {
		if r.Marker == "" {
			return nil, fmt.Errorf("rule %d: marker must be non-empty", i)
		}
		if _, dup := t.index[r.Marker]; dup {
			return nil, fmt.Errorf("rule %d: duplicate marker %q", i, r.Marker)
		}
		variants := make([]Variant, len(r.Variants))
		copy(variants, r.Variants)
		t.index[r.Marker] = len(t.rules)
		t.rules = append(t.rules, Rule{Marker: r.Marker, Variants: variants})
	}
	return t, nil
}

// MustNew is like New but panics on error. Intended for static tables.
func MustNew(rules ...Rule) *Table {
	t, err := New(rules...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of markers.
func (t *Table) Len() int { return len(t.rules) }

// Markers returns the markers in table order.
func (t *Table) Markers() []string {
	out := make([]string, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.Marker
	}
	return out
}

// Variants returns the variants for marker in table order, or nil when the
// marker is not in the table.
func (t *Table) Variants(marker string) []Variant {
	i, ok := t.index[marker]
	if !ok {
		return nil
	}
	out := make([]Variant, len(t.rules[i].Variants))
	copy(out, t.rules[i].Variants)
	return out
}

// Rules returns a copy of the table's rules.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	for i, r := range t.rules {
		out[i] = Rule{Marker: r.Marker, Variants: t.Variants(r.Marker)}
	}
	return out
}

// Each calls fn for every rule in order without copying. fn must not retain
// or modify the variants slice.
func (t *Table) Each(fn func(marker string, variants []Variant)) {
	for _, r := range t.rules {
		fn(r.Marker, r.Variants)
	}
}
