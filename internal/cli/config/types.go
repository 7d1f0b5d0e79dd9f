// Package config provides configuration management for the countyjoin CLI.
//
// Configuration is layered, highest precedence first:
//
//	command-line flags > COUNTYJOIN_* environment variables > countyjoin.yaml > defaults
//
// Relative paths are resolved against the working directory, matching how the
// tool is invoked from a project root containing public/data.
package config

import (
	"github.com/leapstack-labs/countyjoin/internal/pipeline"
	"github.com/leapstack-labs/countyjoin/pkg/adapters/duckdb"
)

// Config holds all CLI configuration options.
type Config struct {
	ElectionPath     string               `koanf:"election_path" yaml:"election_path"`
	DemographicsPath string               `koanf:"demographics_path" yaml:"demographics_path"`
	EducationPath    string               `koanf:"education_path" yaml:"education_path"`
	OutputPath       string               `koanf:"output_path" yaml:"output_path"`
	Engine           pipeline.Engine      `koanf:"engine" yaml:"engine"`
	DuckDB           duckdb.Config        `koanf:"duckdb" yaml:"duckdb,omitempty"`
	StatePath        string               `koanf:"state_path" yaml:"state_path,omitempty"`
	Environment      string               `koanf:"environment" yaml:"environment,omitempty"`
	Verbose          bool                 `koanf:"verbose" yaml:"verbose,omitempty"`
	Format           string               `koanf:"format" yaml:"format,omitempty"`
	Environments     map[string]EnvConfig `koanf:"environments" yaml:"environments,omitempty"`
}

// EnvConfig holds environment-specific path overrides, e.g. a staging copy of
// the input tables.
type EnvConfig struct {
	ElectionPath     string `koanf:"election_path" yaml:"election_path,omitempty"`
	DemographicsPath string `koanf:"demographics_path" yaml:"demographics_path,omitempty"`
	EducationPath    string `koanf:"education_path" yaml:"education_path,omitempty"`
	OutputPath       string `koanf:"output_path" yaml:"output_path,omitempty"`
}

// Default configuration values.
const (
	DefaultElectionPath     = "public/data/election_2020.csv"
	DefaultDemographicsPath = "public/data/demographics.csv"
	DefaultEducationPath    = "public/data/education_income.csv"
	DefaultOutputPath       = "public/data/processed_data.json"
	DefaultEngine           = pipeline.EngineNative
	DefaultFormat           = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "countyjoin.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "countyjoin.yml"

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		ElectionPath:     DefaultElectionPath,
		DemographicsPath: DefaultDemographicsPath,
		EducationPath:    DefaultEducationPath,
		OutputPath:       DefaultOutputPath,
		Engine:           DefaultEngine,
		Format:           DefaultFormat,
	}
}

// PipelineConfig converts the CLI configuration into a pipeline configuration.
func (c *Config) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		ElectionPath:     c.ElectionPath,
		DemographicsPath: c.DemographicsPath,
		EducationPath:    c.EducationPath,
		OutputPath:       c.OutputPath,
		Engine:           c.Engine,
		DuckDB:           c.DuckDB,
	}
}
