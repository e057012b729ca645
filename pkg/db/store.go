package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/japaniel/sandhi/pkg/sandhi"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// CreateRun inserts a new run.
func CreateRun(db DBExecutor, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id must be non-empty")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	_, err := db.Exec(
		`INSERT INTO runs (id, dataset, rules, lexicon_size, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Dataset, run.Rules, run.LexiconSize, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the summary of a completed run.
func FinishRun(db DBExecutor, id string, total, matched, skipped int, accuracy float64) error {
	res, err := db.Exec(
		`UPDATE runs SET finished_at = ?, total = ?, matched = ?, skipped = ?, accuracy = ? WHERE id = ?`,
		time.Now().UTC(), total, matched, skipped, accuracy, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run: %w", sql.ErrNoRows)
	}
	return nil
}

// GetRun returns the run with the given id.
func GetRun(db DBExecutor, id string) (Run, error) {
	row := db.QueryRow(`SELECT id, dataset, rules, lexicon_size, started_at, finished_at, total, matched, skipped, accuracy FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// LatestRun returns the most recently started run.
func LatestRun(db DBExecutor) (Run, error) {
	row := db.QueryRow(`SELECT id, dataset, rules, lexicon_size, started_at, finished_at, total, matched, skipped, accuracy FROM runs ORDER BY started_at DESC LIMIT 1`)
	return scanRun(row)
}

func scanRun(row *sql.Row) (Run, error) {
	var r Run
	var finished sql.NullTime
	if err := row.Scan(&r.ID, &r.Dataset, &r.Rules, &r.LexiconSize, &r.StartedAt, &finished, &r.Total, &r.Matched, &r.Skipped, &r.Accuracy); err != nil {
		return Run{}, err
	}
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return r, nil
}

// RecordLexiconSource stores the contribution of one word list to a run.
// loadErr is nil for a source that loaded.
func RecordLexiconSource(db DBExecutor, runID, path string, words int, loadErr error) error {
	var msg interface{}
	if loadErr != nil {
		msg = loadErr.Error()
	}
	_, err := db.Exec(`INSERT INTO lexicon_sources (run_id, path, words, error) VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, path) DO UPDATE SET words = excluded.words, error = excluded.error`,
		runID, path, words, msg)
	if err != nil {
		return fmt.Errorf("record lexicon source: %w", err)
	}
	return nil
}

// ListLexiconSources returns the word lists recorded for a run in insertion order.
func ListLexiconSources(db DBExecutor, runID string) ([]LexiconSource, error) {
	rows, err := db.Query(`SELECT run_id, path, words, error FROM lexicon_sources WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LexiconSource
	for rows.Next() {
		var s LexiconSource
		var msg sql.NullString
		if err := rows.Scan(&s.RunID, &s.Path, &s.Words, &msg); err != nil {
			return nil, err
		}
		s.Error = msg.String
		out = append(out, s)
	}
	return out, rows.Err()
}

// SaveEvaluation inserts or replaces the evaluation at (run, row index).
func SaveEvaluation(db DBExecutor, e Evaluation) error {
	if e.RowIndex < 0 {
		return fmt.Errorf("row index must be non-negative, got %d", e.RowIndex)
	}
	cands, err := encodeCandidates(e.Candidates)
	if err != nil {
		return err
	}
	_, err = db.Exec(`INSERT INTO evaluations (run_id, row_index, span, expected_first, expected_second, flag, candidates, candidate_count, correct)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, row_index) DO UPDATE SET
	  span = excluded.span,
	  expected_first = excluded.expected_first,
	  expected_second = excluded.expected_second,
	  flag = excluded.flag,
	  candidates = excluded.candidates,
	  candidate_count = excluded.candidate_count,
	  correct = excluded.correct`,
		e.RunID, e.RowIndex, e.Span, e.ExpectedFirst, e.ExpectedSecond, e.Flag, cands, len(e.Candidates), e.Correct)
	if err != nil {
		return fmt.Errorf("save evaluation %d: %w", e.RowIndex, err)
	}
	return nil
}

// EvaluationFilter narrows ListEvaluations.
type EvaluationFilter struct {
	OnlyFailures bool
	// FromIndex is the first row index returned. ToIndex, when positive, is
	// the exclusive upper bound.
	FromIndex int
	ToIndex   int
	Limit     uint64
}

// ListEvaluations returns a run's evaluations ordered by row index.
func ListEvaluations(db DBExecutor, runID string, f EvaluationFilter) ([]Evaluation, error) {
	q := sq.Select("run_id", "row_index", "span", "expected_first", "expected_second", "flag", "candidates", "correct").
		From("evaluations").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("row_index")
	if f.OnlyFailures {
		q = q.Where(sq.Eq{"correct": false})
	}
	if f.FromIndex > 0 {
		q = q.Where(sq.GtOrEq{"row_index": f.FromIndex})
	}
	if f.ToIndex > 0 {
		q = q.Where(sq.Lt{"row_index": f.ToIndex})
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Evaluation
	for rows.Next() {
		var e Evaluation
		var cands string
		if err := rows.Scan(&e.RunID, &e.RowIndex, &e.Span, &e.ExpectedFirst, &e.ExpectedSecond, &e.Flag, &cands, &e.Correct); err != nil {
			return nil, err
		}
		if e.Candidates, err = decodeCandidates(cands); err != nil {
			return nil, fmt.Errorf("evaluation %d: %w", e.RowIndex, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRunProgress returns the highest saved row index for a run, or -1.
func GetRunProgress(db DBExecutor, runID string) (int, error) {
	var index int
	err := db.QueryRow(`SELECT COALESCE(MAX(row_index), -1) FROM evaluations WHERE run_id = ?`, runID).Scan(&index)
	if err != nil {
		return 0, err
	}
	return index, nil
}

// CountEvaluations returns the number of rows and matched rows saved for a run.
func CountEvaluations(db DBExecutor, runID string) (total, matched int, err error) {
	err = db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(correct), 0) FROM evaluations WHERE run_id = ?`, runID).Scan(&total, &matched)
	return total, matched, err
}

func encodeCandidates(cands []sandhi.Candidate) (string, error) {
	pairs := make([][2]string, len(cands))
	for i, c := range cands {
		pairs[i] = [2]string{c.First, c.Second}
	}
	b, err := json.Marshal(pairs)
	if err != nil {
		return "", fmt.Errorf("encode candidates: %w", err)
	}
	return string(b), nil
}

func decodeCandidates(s string) ([]sandhi.Candidate, error) {
	var pairs [][2]string
	if err := json.Unmarshal([]byte(s), &pairs); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make([]sandhi.Candidate, len(pairs))
	for i, p := range pairs {
		out[i] = sandhi.Candidate{First: p[0], Second: p[1]}
	}
	return out, nil
}
