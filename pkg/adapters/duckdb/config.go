package duckdb

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Config holds DuckDB connection settings.
type Config struct {
	// Path is the database file; empty or ":memory:" opens an in-memory database.
	Path string `koanf:"path" yaml:"path,omitempty"`

	// Settings are applied at session level (e.g. memory_limit, threads).
	Settings map[string]string `koanf:"settings" yaml:"settings,omitempty"`
}

// applySettings issues a SET statement per configured setting, in key order.
func (a *Adapter) applySettings(ctx context.Context, settings map[string]string) error {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !isIdentifier(k) {
			return fmt.Errorf("invalid duckdb setting name %q", k)
		}
		stmt := fmt.Sprintf("SET %s = %s", k, QuoteLiteral(settings[k]))
		if err := a.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", k, err)
		}
		a.logger.Debug("applied duckdb setting", "name", k, "value", settings[k])
	}
	return nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return r != '_' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9')
	}) < 0
}
