package db

import (
	"time"

	"github.com/japaniel/sandhi/pkg/sandhi"
)

// Run is one evaluation of a dataset.
type Run struct {
	ID          string
	Dataset     string
	Rules       string
	LexiconSize int
	StartedAt   time.Time
	FinishedAt  *time.Time
	Total       int
	Matched     int
	Skipped     int
	Accuracy    float64
}

// LexiconSource records how one word list contributed to a run's lexicon.
type LexiconSource struct {
	RunID string
	Path  string
	Words int
	// Error is empty when the source loaded.
	Error string
}

// Evaluation is the persisted form of one evaluated dataset row.
type Evaluation struct {
	RunID          string
	RowIndex       int
	Span           string
	ExpectedFirst  string
	ExpectedSecond string
	Flag           int
	Candidates     []sandhi.Candidate
	Correct        bool
}

// NewEvaluation converts the record at row index of a run.
func NewEvaluation(runID string, index int, rec sandhi.Record) Evaluation {
	return Evaluation{
		RunID:          runID,
		RowIndex:       index,
		Span:           rec.Span,
		ExpectedFirst:  rec.ExpectedFirst,
		ExpectedSecond: rec.ExpectedSecond,
		Flag:           rec.Flag,
		Candidates:     rec.Candidates,
		Correct:        rec.Correct,
	}
}

// Record converts the evaluation back to a record.
func (e Evaluation) Record() sandhi.Record {
	return sandhi.Record{
		Example: sandhi.Example{
			Span:           e.Span,
			ExpectedFirst:  e.ExpectedFirst,
			ExpectedSecond: e.ExpectedSecond,
			Flag:           e.Flag,
		},
		Candidates: e.Candidates,
		Correct:    e.Correct,
	}
}
