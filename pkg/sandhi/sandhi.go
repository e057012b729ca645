// Package sandhi proposes and checks two-word splits of fused Sanskrit text.
//
// A span such as देवास्ति is the surface form of two words joined under a
// sandhi rule. Generate undoes every rule in a table at every place its
// marker occurs, Validate keeps the splits whose halves are both known
// words, and Evaluate checks a labelled split against the result.
package sandhi

import (
	"strings"

	"github.com/japaniel/sandhi/pkg/rules"
)

// Candidate is a hypothesised pre-sandhi pair.
type Candidate struct {
	First  string
	Second string
}

// Lexicon is the membership test used to validate candidates.
type Lexicon interface {
	Contains(word string) bool
}

// Generate enumerates every candidate split of span under table.
//
// For each marker, in table order, and each of its variants, in order, every
// occurrence of the marker is tried as the boundary, left to right. The first
// word is the span up to and including the boundary occurrence with all
// occurrences of the marker removed, followed by the variant's first suffix.
// The second word is the variant's second prefix followed by the rest of the
// span. Markers match as literal text. Duplicates are kept.
func Generate(span string, table *rules.Table) []Candidate {
	if table == nil || span == "" {
		return nil
	}
	var out []Candidate
	table.Each(func(marker string, variants []rules.Variant) {
		ends := occurrenceEnds(span, marker)
		if len(ends) == 0 {
			return
		}
		heads := make([]string, len(ends))
		for i, end := range ends {
			heads[i] = strings.ReplaceAll(span[:end], marker, "")
		}
		for _, v := range variants {
			for i, end := range ends {
				out = append(out, Candidate{
					First:  heads[i] + v.FirstSuffix,
					Second: v.SecondPrefix + span[end:],
				})
			}
		}
	})
	return out
}

// occurrenceEnds returns the byte offset just past each non-overlapping
// occurrence of marker in s, scanning left to right.
func occurrenceEnds(s, marker string) []int {
	if marker == "" {
		return nil
	}
	var ends []int
	off := 0
	for {
		i := strings.Index(s[off:], marker)
		if i < 0 {
			return ends
		}
		off += i + len(marker)
		ends = append(ends, off)
	}
}

// Validate returns the candidates whose halves are both in lex, in order.
func Validate(candidates []Candidate, lex Lexicon) []Candidate {
	if lex == nil {
		return nil
	}
	var out []Candidate
	for _, c := range candidates {
		if lex.Contains(c.First) && lex.Contains(c.Second) {
			out = append(out, c)
		}
	}
	return out
}

// Evaluate returns the valid candidates for span and whether the expected
// pair is among them.
func Evaluate(span, expectedFirst, expectedSecond string, table *rules.Table, lex Lexicon) ([]Candidate, bool) {
	accepted := Validate(Generate(span, table), lex)
	return accepted, Contains(accepted, Candidate{First: expectedFirst, Second: expectedSecond})
}

// Contains reports whether want appears in candidates.
func Contains(candidates []Candidate, want Candidate) bool {
	for _, c := range candidates {
		if c == want {
			return true
		}
	}
	return false
}
