package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/japaniel/sandhi/pkg/sandhi"
)

// minFields is span, expected first, expected second, flag.
const minFields = 4

// Stats counts dataset rows.
type Stats struct {
	Rows     int
	Accepted int
	// Skipped rows had fewer than four fields or a non-integer flag.
	Skipped int
}

// Read parses comma separated rows of span, expected first word, expected
// second word and an integer flag. Malformed rows are skipped and counted;
// a read or CSV syntax error fails the whole dataset.
func Read(r io.Reader) ([]sandhi.Example, Stats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var (
		out   []sandhi.Example
		stats Stats
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read dataset: %w", err)
		}
		stats.Rows++

		ex, ok := parseRow(rec)
		if !ok {
			stats.Skipped++
			continue
		}
		out = append(out, ex)
		stats.Accepted++
	}
	return out, stats, nil
}

// ReadFile parses the dataset at path.
func ReadFile(path string) ([]sandhi.Example, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func parseRow(rec []string) (sandhi.Example, bool) {
	if len(rec) < minFields {
		return sandhi.Example{}, false
	}
	flag, err := strconv.Atoi(strings.TrimSpace(rec[3]))
	if err != nil {
		return sandhi.Example{}, false
	}
	return sandhi.Example{
		Span:           rec[0],
		ExpectedFirst:  rec[1],
		ExpectedSecond: rec[2],
		Flag:           flag,
	}, true
}
