package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/japaniel/sandhi/pkg/sandhi"
)

// Header is the first row of a results table.
var Header = []string{"Input", "Expected First", "Expected Second", "Found", "Correct"}

// FormatCandidates renders candidates as a list of quoted pairs:
// [('देव', 'आस्ति'), ('देवा', 'अस्ति')].
func FormatCandidates(cands []sandhi.Candidate) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, c := range cands {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		writeQuoted(&b, c.First)
		b.WriteString(", ")
		writeQuoted(&b, c.Second)
		b.WriteByte(')')
	}
	b.WriteByte(']')
	return b.String()
}

// writeQuoted renders s as a quoted literal: single quotes unless s
// contains a single quote and no double quote, with backslash escapes for
// the quote, the backslash and non-printable runes.
func writeQuoted(b *strings.Builder, s string) {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	b.WriteRune(quote)
	for _, r := range s {
		switch {
		case r == quote || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case !unicode.IsPrint(r):
			switch {
			case r < 0x100:
				fmt.Fprintf(b, `\x%02x`, r)
			case r < 0x10000:
				fmt.Fprintf(b, `\u%04x`, r)
			default:
				fmt.Fprintf(b, `\U%08x`, r)
			}
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(quote)
}

// FormatBool renders the correctness column.
func FormatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// FormatAccuracy renders the summary line for accuracy in percent.
func FormatAccuracy(accuracy float64) string {
	return fmt.Sprintf("Total Accuracy: %.2f%%", accuracy)
}

// WriteCSV writes the header and one row per record.
func WriteCSV(w io.Writer, records []sandhi.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.Span, r.ExpectedFirst, r.ExpectedSecond, FormatCandidates(r.Candidates), FormatBool(r.Correct)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the results table to path, replacing any existing file.
func WriteCSVFile(path string, records []sandhi.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results: %w", err)
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return fmt.Errorf("write results: %w", err)
	}
	return f.Close()
}
