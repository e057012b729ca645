package config

// Config is the root configuration of the sandhi tool.
type Config struct {
	Lexicon LexiconConfig `yaml:"lexicon"`
	Rules   RulesConfig   `yaml:"rules"`
	Dataset DatasetConfig `yaml:"dataset"`
	Output  OutputConfig  `yaml:"output"`
	Eval    EvalConfig    `yaml:"eval"`
	Log     LogConfig     `yaml:"log"`
}

// LexiconConfig lists the word-list files that make up the lexicon.
type LexiconConfig struct {
	Paths []string `yaml:"paths" env:"LEXICON_PATHS" env-separator:"," env-default:"data/Text.txt,data/Noun.txt,data/Adverb.txt,data/Adjective.txt"`
	// BaseURL, if set, is where missing word lists are downloaded from.
	BaseURL string `yaml:"base_url" env:"LEXICON_BASE_URL"`
	// Strict makes an unreadable word list fatal instead of a warning.
	Strict bool `yaml:"strict" env:"LEXICON_STRICT" env-default:"false"`
}

// RulesConfig selects the rule table. An empty path means the built-in table.
type RulesConfig struct {
	Path string `yaml:"path" env:"RULES_PATH"`
}

// DatasetConfig holds the labelled input file.
type DatasetConfig struct {
	Path string `yaml:"path" env:"DATASET_PATH" env-default:"data/text_input.txt"`
}

// OutputConfig holds result destinations.
type OutputConfig struct {
	CSVPath string `yaml:"csv_path" env:"OUTPUT_CSV_PATH" env-default:"output_results.csv"`
	// DBPath is the SQLite file for run history. Passing -db= on the command
	// line disables persistence.
	DBPath string `yaml:"db_path" env:"OUTPUT_DB_PATH" env-default:"sandhi.db"`
}

// EvalConfig tunes the evaluation runner.
type EvalConfig struct {
	Workers   int `yaml:"workers"    env:"EVAL_WORKERS"    env-default:"4"`
	BatchSize int `yaml:"batch_size" env:"EVAL_BATCH_SIZE" env-default:"50"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
