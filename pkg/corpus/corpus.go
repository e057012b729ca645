// Package corpus runs the splitter over running Devanagari text, such as an
// article fetched from the web, where no expected split is known.
package corpus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/go-shiori/go-readability"

	"github.com/japaniel/sandhi/pkg/sandhi"
)

// maxBodySize limits fetched HTML.
const maxBodySize = 10 * 1024 * 1024

// ZWNJ and ZWJ.
const joiners = "\u200c\u200d"

// Article is the readable text of a page.
type Article struct {
	Title    string
	Byline   string
	SiteName string
	Text     string
}

// ExtractArticle pulls the main text out of an HTML page.
func ExtractArticle(html []byte, pageURL *url.URL) (Article, error) {
	a, err := readability.FromReader(bytes.NewReader(html), pageURL)
	if err != nil {
		return Article{}, fmt.Errorf("extract article: %w", err)
	}
	return Article{
		Title:    a.Title,
		Byline:   a.Byline,
		SiteName: a.SiteName,
		Text:     a.TextContent,
	}, nil
}

// Fetch downloads the page at rawURL and extracts its article.
func Fetch(ctx context.Context, rawURL string) (Article, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return Article{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Article{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; sandhi-cli)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "sa,hi;q=0.9,en;q=0.5")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Article{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Article{}, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	if resp.ContentLength > maxBodySize {
		return Article{}, fmt.Errorf("content-length %d exceeds limit of %d bytes", resp.ContentLength, maxBodySize)
	}
	// Read one byte past the limit to tell a full body from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return Article{}, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodySize {
		return Article{}, fmt.Errorf("response body exceeded maximum size limit of %d bytes", maxBodySize)
	}
	return ExtractArticle(body, pageURL)
}

// Word is one Devanagari word and the splits proposed for it.
type Word struct {
	Surface string
	// Known is true when the word itself is in the lexicon.
	Known  bool
	Splits []sandhi.Candidate
}

// Sentence is a sentence and its analysed words.
type Sentence struct {
	Text  string
	Words []Word
}

// Analyzer proposes splits for every word of a text.
type Analyzer struct {
	s *sandhi.Splitter
}

// NewAnalyzer creates an analyzer over s.
func NewAnalyzer(s *sandhi.Splitter) *Analyzer {
	return &Analyzer{s: s}
}

// Analyze proposes splits for each word of a single sentence.
func (a *Analyzer) Analyze(text string) []Word {
	var out []Word
	for _, w := range Words(text) {
		out = append(out, Word{
			Surface: w,
			Known:   a.s.Known(w),
			Splits:  a.s.Split(w),
		})
	}
	return out
}

// AnalyzeDocument splits the text into sentences and analyzes each sentence.
// Sentences without Devanagari words are dropped.
func (a *Analyzer) AnalyzeDocument(text string) []Sentence {
	var result []Sentence
	for _, s := range SplitSentences(text) {
		words := a.Analyze(s)
		if len(words) == 0 {
			continue
		}
		result = append(result, Sentence{Text: strings.TrimSpace(s), Words: words})
	}
	return result
}

// SplitSentences splits on danda (।), double danda (॥), Latin sentence
// punctuation and newlines. Delimiters stay with their sentence.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '।' || r == '॥' || r == '.' || r == '?' || r == '!' || r == '\n' {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

// Words returns the maximal runs of Devanagari letters and combining marks
// in text. Joiners inside a run are kept; digits, dandas and everything
// outside the script end a word.
func Words(text string) []string {
	var words []string
	start := -1
	for i, r := range text {
		if isWordRune(r) || (start >= 0 && isJoiner(r)) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, strings.TrimRight(text[start:i], joiners))
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, strings.TrimRight(text[start:], joiners))
	}
	return words
}

func isWordRune(r rune) bool {
	if !unicode.Is(unicode.Devanagari, r) {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsMark(r)
}

func isJoiner(r rune) bool { return r == '\u200c' || r == '\u200d' }
