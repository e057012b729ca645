package sandhi

import "github.com/japaniel/sandhi/pkg/rules"

// Example is one labelled span.
type Example struct {
	Span           string
	ExpectedFirst  string
	ExpectedSecond string
	// Flag is carried from the dataset for reporting; it does not affect
	// evaluation.
	Flag int
}

// Record is the outcome of evaluating one example.
type Record struct {
	Example
	Candidates []Candidate
	Correct    bool
}

// Splitter bundles a rule table and a lexicon. Both are shared read-only, so
// a Splitter is safe for concurrent use.
type Splitter struct {
	table *rules.Table
	lex   Lexicon
}

// NewSplitter creates a splitter over table and lex.
func NewSplitter(table *rules.Table, lex Lexicon) *Splitter {
	return &Splitter{table: table, lex: lex}
}

// Table returns the splitter's rule table.
func (s *Splitter) Table() *rules.Table { return s.table }

// Known reports whether word is itself in the lexicon.
func (s *Splitter) Known(word string) bool {
	return s.lex != nil && s.lex.Contains(word)
}

// Candidates returns every generated split of span, valid or not.
func (s *Splitter) Candidates(span string) []Candidate {
	return Generate(span, s.table)
}

// Split returns the valid splits of span.
func (s *Splitter) Split(span string) []Candidate {
	return Validate(Generate(span, s.table), s.lex)
}

// Evaluate runs ex through the splitter.
func (s *Splitter) Evaluate(ex Example) Record {
	accepted, ok := Evaluate(ex.Span, ex.ExpectedFirst, ex.ExpectedSecond, s.table, s.lex)
	return Record{Example: ex, Candidates: accepted, Correct: ok}
}
