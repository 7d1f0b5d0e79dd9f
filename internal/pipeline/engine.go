package pipeline

import (
	"fmt"
	"strings"
)

// Engine selects how input tables are loaded and joined.
type Engine string

// Supported engines.
const (
	// EngineNative reads the CSV files and joins them in Go.
	EngineNative Engine = "native"
	// EngineDuckDB loads the CSV files into DuckDB and joins them in SQL.
	EngineDuckDB Engine = "duckdb"
)

// Engines lists the supported engine names.
var Engines = []Engine{EngineNative, EngineDuckDB}

func (e Engine) String() string {
	return string(e)
}

// UnmarshalText parses an engine name, case-insensitively.
// An empty name selects EngineNative.
func (e *Engine) UnmarshalText(text []byte) error {
	name := Engine(strings.ToLower(strings.TrimSpace(string(text))))
	if name == "" {
		*e = EngineNative
		return nil
	}
	for _, known := range Engines {
		if name == known {
			*e = known
			return nil
		}
	}
	return fmt.Errorf("unknown engine %q (expected native or duckdb)", string(text))
}

// MarshalText returns the engine name.
func (e Engine) MarshalText() ([]byte, error) {
	return []byte(e), nil
}
