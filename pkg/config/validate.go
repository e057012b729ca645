package config

import (
	"fmt"
	"strings"
)

// Validate performs range and enum checks on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Lexicon.Paths) == 0 {
		return fmt.Errorf("lexicon.paths must name at least one word list")
	}
	for i, p := range c.Lexicon.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("lexicon.paths[%d] is empty", i)
		}
	}
	if err := c.Eval.validate(); err != nil {
		return fmt.Errorf("eval: %w", err)
	}
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func (e *EvalConfig) validate() error {
	if e.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", e.Workers)
	}
	if e.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", e.BatchSize)
	}
	return nil
}

func (l *LogConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be one of debug, info, warn, error (got %q)", l.Level)
	}
	switch strings.ToLower(strings.TrimSpace(l.Format)) {
	case "text", "json":
	default:
		return fmt.Errorf("format must be text or json (got %q)", l.Format)
	}
	return nil
}
