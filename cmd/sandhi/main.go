package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/japaniel/sandhi/pkg/config"
	"github.com/japaniel/sandhi/pkg/corpus"
	"github.com/japaniel/sandhi/pkg/dataset"
	"github.com/japaniel/sandhi/pkg/db"
	"github.com/japaniel/sandhi/pkg/evaluate"
	"github.com/japaniel/sandhi/pkg/lexicon"
	"github.com/japaniel/sandhi/pkg/report"
	"github.com/japaniel/sandhi/pkg/rules"
	"github.com/japaniel/sandhi/pkg/sandhi"
)

func main() {
	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("sandhi failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	split      string
	all        bool
	pageURL    string
	htmlPath   string
	failures   string
	resume     string
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("sandhi", flag.ContinueOnError)
	var opts options
	fs.StringVar(&opts.configPath, "config", "", "Path to YAML config (default $CONFIG_PATH or ./config.yaml)")
	datasetFlag := fs.String("dataset", "", "Labelled dataset to evaluate")
	outFlag := fs.String("out", "", "Path of the results CSV")
	dbFlag := fs.String("db", "", "Path to SQLite run history (empty disables it)")
	rulesFlag := fs.String("rules", "", "YAML rule table (default built-in table)")
	workersFlag := fs.Int("workers", 0, "Number of evaluation workers")
	fs.StringVar(&opts.split, "split", "", "Print the valid splits of one span and exit")
	fs.BoolVar(&opts.all, "all", false, "With -split, print every generated candidate, valid or not")
	fs.StringVar(&opts.pageURL, "url", "", "Fetch a page and propose splits for its words")
	fs.StringVar(&opts.htmlPath, "html", "", "Like -url, for a saved HTML file")
	fs.StringVar(&opts.failures, "failures", "", "List failed rows of a stored run (id or \"latest\")")
	fs.StringVar(&opts.resume, "resume", "", "Continue an interrupted run")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dataset":
			cfg.Dataset.Path = *datasetFlag
		case "out":
			cfg.Output.CSVPath = *outFlag
		case "db":
			cfg.Output.DBPath = *dbFlag
		case "rules":
			cfg.Rules.Path = *rulesFlag
		case "workers":
			cfg.Eval.Workers = *workersFlag
		}
	})
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: validate: %w", err)
	}
	logger := config.NewLogger(cfg.Log)

	if opts.failures != "" {
		return listFailures(cfg, opts.failures, stdout)
	}

	table, err := loadRules(cfg.Rules.Path)
	if err != nil {
		return err
	}
	lex, lexReport, err := loadLexicon(ctx, cfg.Lexicon, logger)
	if err != nil {
		return err
	}
	splitter := sandhi.NewSplitter(table, lex)
	logger.Debug("rules loaded", "markers", splitter.Table().Len(), "path", cfg.Rules.Path)

	switch {
	case opts.split != "":
		cands := splitter.Split(opts.split)
		if opts.all {
			cands = splitter.Candidates(opts.split)
		}
		fmt.Fprintln(stdout, report.FormatCandidates(cands))
		return nil
	case opts.pageURL != "" || opts.htmlPath != "":
		return analyzePage(ctx, splitter, opts, stdout)
	}

	return evaluateDataset(ctx, cfg, opts.resume, splitter, lex, lexReport, logger, stdout)
}

func loadRules(path string) (*rules.Table, error) {
	if path == "" {
		return rules.Default(), nil
	}
	t, err := rules.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return t, nil
}

// loadLexicon fetches missing word lists when a base url is configured and
// unions them. An unreadable list is a warning unless cfg.Strict is set.
func loadLexicon(ctx context.Context, cfg config.LexiconConfig, logger *slog.Logger) (*lexicon.Lexicon, lexicon.Report, error) {
	if cfg.BaseURL != "" {
		for _, p := range cfg.Paths {
			if err := lexicon.EnsureWordList(ctx, lexicon.SourceURL(cfg.BaseURL, p), p); err != nil {
				logger.Warn("word list download failed", "path", p, "error", err)
			}
		}
	}

	start := time.Now()
	lex, rep := lexicon.Load(cfg.Paths...)
	if rep.Degraded() {
		if cfg.Strict {
			return nil, rep, fmt.Errorf("load lexicon: %w", rep.Err())
		}
		for _, f := range rep.Failures {
			logger.Warn("word list skipped", "path", f.Path, "error", f.Err)
		}
		logger.Warn("lexicon is degraded", "failed_sources", len(rep.Failures), "sources", len(rep.Sources))
	}
	logger.Info("lexicon loaded", "words", lex.Len(), "sources", len(rep.Sources), "elapsed", time.Since(start))
	return lex, rep, nil
}

func evaluateDataset(ctx context.Context, cfg *config.Config, resume string, splitter *sandhi.Splitter, lex *lexicon.Lexicon, lexReport lexicon.Report, logger *slog.Logger, stdout io.Writer) error {
	examples, stats, err := dataset.ReadFile(cfg.Dataset.Path)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", "path", cfg.Dataset.Path, "rows", stats.Rows, "accepted", stats.Accepted, "skipped", stats.Skipped)

	runID := resume
	if runID == "" {
		runID = uuid.NewString()
	}

	var conn *sql.DB
	if cfg.Output.DBPath != "" {
		conn, err = db.Open(ctx, cfg.Output.DBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer conn.Close()

		if err := startRun(conn, runID, resume != "", cfg, lex, lexReport); err != nil {
			return err
		}
	} else if resume != "" {
		return fmt.Errorf("-resume needs a database")
	}

	runner := evaluate.NewRunner(splitter, conn)
	runner.Workers = cfg.Eval.Workers
	runner.BatchSize = cfg.Eval.BatchSize
	runner.Logger = logger
	runner.OnProgress = func(current, total int) {
		logger.Debug("progress", "run_id", runID, "rows", current, "total", total)
	}

	start := time.Now()
	records, sum, err := runner.Run(ctx, runID, examples)
	if err != nil {
		return err
	}
	sum.Skipped = stats.Skipped
	logger.Info("evaluation finished", "run_id", runID, "total", sum.Total, "matched", sum.Matched, "elapsed", time.Since(start))

	if conn != nil {
		if err := db.FinishRun(conn, runID, sum.Total, sum.Matched, sum.Skipped, sum.Accuracy); err != nil {
			return err
		}
	}
	if err := report.WriteCSVFile(cfg.Output.CSVPath, records); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Results saved to %s\n", cfg.Output.CSVPath)
	if conn != nil {
		fmt.Fprintf(stdout, "Run ID: %s\n", runID)
	}
	fmt.Fprintln(stdout, report.FormatAccuracy(sum.Accuracy))
	return nil
}

// startRun creates the run row, or checks it exists when resuming.
func startRun(conn *sql.DB, runID string, resuming bool, cfg *config.Config, lex *lexicon.Lexicon, lexReport lexicon.Report) error {
	if resuming {
		if _, err := db.GetRun(conn, runID); err != nil {
			return fmt.Errorf("resume run %s: %w", runID, err)
		}
		return nil
	}

	rulesName := cfg.Rules.Path
	if rulesName == "" {
		rulesName = "builtin"
	}
	if err := db.CreateRun(conn, db.Run{
		ID:          runID,
		Dataset:     cfg.Dataset.Path,
		Rules:       rulesName,
		LexiconSize: lex.Len(),
	}); err != nil {
		return err
	}

	failed := make(map[string]error, len(lexReport.Failures))
	for _, f := range lexReport.Failures {
		failed[f.Path] = f.Err
	}
	for _, s := range lexReport.Sources {
		if err := db.RecordLexiconSource(conn, runID, s.Path, s.Words, failed[s.Path]); err != nil {
			return err
		}
	}
	return nil
}

func listFailures(cfg *config.Config, id string, stdout io.Writer) error {
	if cfg.Output.DBPath == "" {
		return fmt.Errorf("-failures needs a database")
	}
	if _, err := os.Stat(cfg.Output.DBPath); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	conn, err := db.Open(context.Background(), cfg.Output.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer conn.Close()

	var r db.Run
	if id == "latest" {
		r, err = db.LatestRun(conn)
	} else {
		r, err = db.GetRun(conn, id)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return err
	}

	failures, err := db.ListEvaluations(conn, r.ID, db.EvaluationFilter{OnlyFailures: true})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Run %s: %d failed of %d\n", r.ID, len(failures), r.Total)
	for _, e := range failures {
		fmt.Fprintf(stdout, "%d\t%s\t%s + %s\t%s\n", e.RowIndex+1, e.Span, e.ExpectedFirst, e.ExpectedSecond, report.FormatCandidates(e.Candidates))
	}
	return nil
}

func analyzePage(ctx context.Context, splitter *sandhi.Splitter, opts options, stdout io.Writer) error {
	var (
		article corpus.Article
		err     error
	)
	if opts.pageURL != "" {
		article, err = corpus.Fetch(ctx, opts.pageURL)
	} else {
		var body []byte
		body, err = os.ReadFile(opts.htmlPath)
		if err == nil {
			article, err = corpus.ExtractArticle(body, &url.URL{Scheme: "file", Path: opts.htmlPath})
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Title: %s\n", article.Title)
	sentences := corpus.NewAnalyzer(splitter).AnalyzeDocument(article.Text)
	var words, split int
	for _, s := range sentences {
		for _, w := range s.Words {
			words++
			if len(w.Splits) == 0 {
				continue
			}
			split++
			fmt.Fprintf(stdout, "%s\t%s\n", w.Surface, report.FormatCandidates(w.Splits))
		}
	}
	fmt.Fprintf(stdout, "Analyzed %d sentences, %d words, %d with splits.\n", len(sentences), words, split)
	return nil
}
