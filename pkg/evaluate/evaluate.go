package evaluate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/japaniel/sandhi/pkg/db"
	"github.com/japaniel/sandhi/pkg/sandhi"
)

// Summary aggregates a run.
type Summary struct {
	Total   int
	Matched int
	// Skipped is filled in by the caller from the dataset reader.
	Skipped  int
	Accuracy float64
}

// Accuracy returns matched/total as a percentage, 0 when total is 0.
func Accuracy(matched, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total) * 100
}

// Summarize counts matched records.
func Summarize(records []sandhi.Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.Correct {
			s.Matched++
		}
	}
	s.Accuracy = Accuracy(s.Matched, s.Total)
	return s
}

// Runner evaluates a dataset against a splitter.
type Runner struct {
	Splitter *sandhi.Splitter
	// DB, if set, receives one evaluations row per example and lets a run
	// resume from its last saved row. The run row must already exist.
	DB        *sql.DB
	BatchSize int
	Workers   int
	// Logger receives resume status and job and commit failures. nil means no logging.
	Logger *slog.Logger
	// OnProgress is called with the number of records placed so far and the total.
	OnProgress func(current, total int)

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) Pool
}

// NewRunner creates a runner with default batching and concurrency.
func NewRunner(s *sandhi.Splitter, conn *sql.DB) *Runner {
	return &Runner{
		Splitter:  s,
		DB:        conn,
		BatchSize: 50,
		Workers:   4,
	}
}

type indexedRecord struct {
	index  int
	record sandhi.Record
}

// Run evaluates examples and returns their records in input order. Records
// are computed in parallel and are identical to a sequential run.
func (r *Runner) Run(ctx context.Context, runID string, examples []sandhi.Example) ([]sandhi.Record, Summary, error) {
	if r.Splitter == nil {
		return nil, Summary{}, fmt.Errorf("runner has no splitter")
	}
	total := len(examples)
	records := make([]sandhi.Record, total)

	start, err := r.resume(runID, examples, records)
	if err != nil {
		return nil, Summary{}, err
	}
	if start >= total {
		return records, Summarize(records), nil
	}

	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	var pool Pool
	if r.PoolFactory != nil {
		pool = r.PoolFactory(workers, workers*2)
	} else {
		wp := NewWorkerPool(workers, workers*2)
		wp.OnJobError = func(err error) {
			r.logger().Debug("evaluation job failed", "run_id", runID, "error", err)
		}
		pool = wp
	}

	var bw *BatchWriter
	if r.DB != nil {
		bw = NewBatchWriter(r.DB, r.BatchSize, 100*time.Millisecond)
		bw.OnError = func(err error) {
			r.logger().Error("batch commit failed", "run_id", runID, "error", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	pool.Start(gctx)

	resultCh := make(chan indexedRecord, workers*2)
	var placed int64

	// Consumer: place records in order and hand them to the batch writer.
	g.Go(func() error {
		buffer := make(map[int]sandhi.Record)
		next := start
		for res := range resultCh {
			buffer[res.index] = res.record
			for {
				rec, ok := buffer[next]
				if !ok {
					break
				}
				delete(buffer, next)
				records[next] = rec

				if bw != nil {
					ev := db.NewEvaluation(runID, next, rec)
					if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
						return db.SaveEvaluation(tx, ev)
					}); err != nil {
						return err
					}
					if err := bw.Err(); err != nil {
						return err
					}
				}

				next++
				atomic.StoreInt64(&placed, int64(next))
				if r.OnProgress != nil && r.BatchSize > 0 && next%r.BatchSize == 0 {
					r.OnProgress(next, total)
				}
			}
		}
		if err := gctx.Err(); err != nil {
			return err
		}
		if next != total {
			return fmt.Errorf("evaluation stopped at row %d of %d", next, total)
		}
		return nil
	})

	// Producer: one job per example.
	g.Go(func() error {
		defer func() {
			pool.Close()
			close(resultCh)
		}()
		for i := start; i < total; i++ {
			idx, ex := i, examples[i]
			job := func(ctx context.Context) error {
				rec := r.Splitter.Evaluate(ex)
				select {
				case resultCh <- indexedRecord{index: idx, record: rec}:
					return nil
				case <-ctx.Done():
					return fmt.Errorf("row %d dropped: %w", idx, ctx.Err())
				}
			}
			if err := pool.SubmitCtx(gctx, job); err != nil {
				return err
			}
		}
		return nil
	})

	runErr := g.Wait()
	if bw != nil {
		if err := bw.Close(); err != nil && runErr == nil {
			runErr = err
		}
	}
	if runErr != nil {
		return nil, Summary{}, fmt.Errorf("run %s: %w (placed %d of %d rows)", runID, runErr, atomic.LoadInt64(&placed), total)
	}

	if r.OnProgress != nil {
		r.OnProgress(total, total)
	}
	return records, Summarize(records), nil
}

// resume loads rows saved by an earlier attempt of runID into records and
// returns the first index still to evaluate. Saved rows must match the
// corresponding examples.
func (r *Runner) resume(runID string, examples []sandhi.Example, records []sandhi.Record) (int, error) {
	if r.DB == nil {
		return 0, nil
	}
	last, err := db.GetRunProgress(r.DB, runID)
	if err != nil {
		return 0, fmt.Errorf("read progress: %w", err)
	}
	if last < 0 {
		return 0, nil
	}
	if last >= len(records) {
		return 0, fmt.Errorf("run %s has %d saved rows but the dataset has %d", runID, last+1, len(records))
	}

	saved, err := db.ListEvaluations(r.DB, runID, db.EvaluationFilter{ToIndex: last + 1})
	if err != nil {
		return 0, fmt.Errorf("load saved rows: %w", err)
	}
	// Rows are committed in order, so saved covers 0..last.
	if len(saved) != last+1 {
		return 0, fmt.Errorf("run %s: expected %d saved rows, found %d", runID, last+1, len(saved))
	}
	for _, e := range saved {
		rec := e.Record()
		if rec.Example != examples[e.RowIndex] {
			return 0, fmt.Errorf("run %s: saved row %d (%q) does not match the dataset (%q): %w",
				runID, e.RowIndex+1, rec.Span, examples[e.RowIndex].Span, ErrDatasetChanged)
		}
		records[e.RowIndex] = rec
	}
	r.logger().Info("resuming run", "run_id", runID, "from_row", last+1, "total", len(records))
	return last + 1, nil
}

// ErrDatasetChanged is returned when a resumed run's saved rows differ from
// the dataset being evaluated.
var ErrDatasetChanged = errors.New("dataset changed since the run started")

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return discardLogger
	}
	return r.Logger
}
