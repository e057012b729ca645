package lexicon

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Lexicon is an immutable set of known word forms.
type Lexicon struct {
	words map[string]struct{}
}

// New creates a lexicon from words. Duplicates collapse.
func New(words ...string) *Lexicon {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return &Lexicon{words: m}
}

// Contains reports whether word is in the lexicon.
func (l *Lexicon) Contains(word string) bool {
	if l == nil {
		return false
	}
	_, ok := l.words[word]
	return ok
}

// Len returns the number of distinct words.
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.words)
}

// Words returns the members in sorted order.
func (l *Lexicon) Words() []string {
	if l == nil {
		return nil
	}
	out := make([]string, 0, len(l.words))
	for w := range l.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// ParseWordList reads a word list. On each line the first whitespace
// separated token is an underscore separated list of word forms, e.g.
//
//	देव_देवः_देवम्	noun	m
//
// yields देव, देवः and देवम्. Blank lines and empty fragments are ignored.
func ParseWordList(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		for _, w := range strings.Split(fields[0], "_") {
			if w != "" {
				words = append(words, w)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// LoadFile reads a word list from path.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	words, err := ParseWordList(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return words, nil
}

// SourceError records a word list that could not be read.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string { return fmt.Sprintf("word list %s: %v", e.Path, e.Err) }

func (e *SourceError) Unwrap() error { return e.Err }

// SourceStat is the number of words a source contributed before merging.
type SourceStat struct {
	Path  string
	Words int
}

// Report describes how a lexicon was assembled.
type Report struct {
	Sources  []SourceStat
	Failures []*SourceError
}

// Degraded reports whether any source failed to load.
func (r Report) Degraded() bool { return len(r.Failures) > 0 }

// Err joins all source failures, or returns nil.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Load unions the word lists at paths. A source that cannot be read
// contributes no words and is listed in the report; whether a degraded
// lexicon is acceptable is the caller's decision.
func Load(paths ...string) (*Lexicon, Report) {
	var rep Report
	merged := make(map[string]struct{})
	for _, p := range paths {
		words, err := LoadFile(p)
		if err != nil {
			rep.Failures = append(rep.Failures, &SourceError{Path: p, Err: err})
			rep.Sources = append(rep.Sources, SourceStat{Path: p})
			continue
		}
		for _, w := range words {
			merged[w] = struct{}{}
		}
		rep.Sources = append(rep.Sources, SourceStat{Path: p, Words: len(words)})
	}
	return &Lexicon{words: merged}, rep
}
