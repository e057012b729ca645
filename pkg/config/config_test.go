package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `
lexicon:
  paths:
    - "words/a.txt"
    - "words/b.txt"
  base_url: "https://example.org/lists"
  strict: true
rules:
  path: "rules.yaml"
dataset:
  path: "pairs.csv"
output:
  csv_path: "out.csv"
  db_path: ""
eval:
  workers: 2
  batch_size: 10
log:
  level: "debug"
  format: "json"
`

func TestLoad_ValidYAML(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeYAML(t, t.TempDir(), validYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"words/a.txt", "words/b.txt"}, cfg.Lexicon.Paths)
	assert.Equal(t, "https://example.org/lists", cfg.Lexicon.BaseURL)
	assert.True(t, cfg.Lexicon.Strict)
	assert.Equal(t, "rules.yaml", cfg.Rules.Path)
	assert.Equal(t, "pairs.csv", cfg.Dataset.Path)
	assert.Equal(t, "out.csv", cfg.Output.CSVPath)
	assert.Equal(t, 2, cfg.Eval.Workers)
	assert.Equal(t, 10, cfg.Eval.BatchSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Len(t, cfg.Lexicon.Paths, 4)
	assert.Equal(t, "data/Text.txt", cfg.Lexicon.Paths[0])
	assert.False(t, cfg.Lexicon.Strict)
	assert.Empty(t, cfg.Rules.Path)
	assert.Equal(t, "data/text_input.txt", cfg.Dataset.Path)
	assert.Equal(t, "output_results.csv", cfg.Output.CSVPath)
	assert.Equal(t, "sandhi.db", cfg.Output.DBPath)
	assert.Equal(t, 4, cfg.Eval.Workers)
	assert.Equal(t, 50, cfg.Eval.BatchSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("EVAL_WORKERS", "16")
	t.Setenv("LEXICON_PATHS", "x.txt,y.txt,z.txt")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Eval.Workers)
	assert.Equal(t, []string{"x.txt", "y.txt", "z.txt"}, cfg.Lexicon.Paths)
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", writeYAML(t, t.TempDir(), validYAML))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "pairs.csv", cfg.Dataset.Path)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CONFIG_PATH", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SANDHI_TEST_DATASET=from-dotenv\nDATASET_PATH=from-dotenv.csv\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("SANDHI_TEST_DATASET")
		os.Unsetenv("DATASET_PATH")
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.csv", cfg.Dataset.Path)
	assert.Equal(t, "from-dotenv", os.Getenv("SANDHI_TEST_DATASET"))
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"zero workers", map[string]string{"EVAL_WORKERS": "0"}, "workers"},
		{"negative batch", map[string]string{"EVAL_BATCH_SIZE": "-1"}, "batch_size"},
		{"bad level", map[string]string{"LOG_LEVEL": "loud"}, "level"},
		{"bad format", map[string]string{"LOG_FORMAT": "xml"}, "format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv("CONFIG_PATH", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_EmptyLexiconPath(t *testing.T) {
	cfg := Config{
		Lexicon: LexiconConfig{Paths: []string{"a.txt", " "}},
		Eval:    EvalConfig{Workers: 1, BatchSize: 1},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lexicon.paths[1]")

	cfg.Lexicon.Paths = nil
	require.Error(t, cfg.Validate())
}

func TestNewLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := newLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "run_id", "r1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), "expected JSON output, got %q", out)
	assert.Contains(t, out, `"run_id":"r1"`)
	assert.Same(t, logger, slog.Default())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel(" warn "))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("whatever"))
}
