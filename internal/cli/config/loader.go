package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// EnvPrefix is the prefix of environment variables read as configuration.
const EnvPrefix = "COUNTYJOIN_"

// Package-level config file tracking
var (
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"election":     "election_path",
	"demographics": "demographics_path",
	"education":    "education_path",
	"out":          "output_path",
	"database":     "duckdb.path",
	"env":          "environment",
	"state":        "state_path",
}

// skippedFlags are flags that are not configuration keys.
var skippedFlags = map[string]bool{
	"config":  true,
	"help":    true,
	"preview": true,
	"force":   true,
	"limit":   true,
}

// findConfigFile finds the config file to use.
// Priority: explicit path > countyjoin.yaml > countyjoin.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// ResetConfig clears the loaded state. Used for testing.
func ResetConfig() {
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > environment profile > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	configFileUsed = findConfigFile(cfgFile)

	kc, err := load(configFileUsed, nil, flags)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(kc)
	if err != nil {
		return nil, err
	}

	// A selected environment profile sits between the file and env vars, so the
	// tree is rebuilt with the profile layered in.
	if profile, ok := cfg.Environments[cfg.Environment]; ok && cfg.Environment != "" {
		kc, err = load(configFileUsed, profile.values(), flags)
		if err != nil {
			return nil, err
		}
		if cfg, err = decode(kc); err != nil {
			return nil, err
		}
	}

	cfg.ElectionPath = expandEnvVars(cfg.ElectionPath)
	cfg.DemographicsPath = expandEnvVars(cfg.DemographicsPath)
	cfg.EducationPath = expandEnvVars(cfg.EducationPath)
	cfg.OutputPath = expandEnvVars(cfg.OutputPath)
	cfg.DuckDB.Path = expandEnvVars(cfg.DuckDB.Path)
	cfg.StatePath = expandEnvVars(cfg.StatePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	currentConfig = cfg
	return cfg, nil
}

func load(cfgFile string, profile map[string]interface{}, flags *pflag.FlagSet) (*koanf.Koanf, error) {
	kc := koanf.New(".")

	// 1. Load defaults
	if err := kc.Load(confmap.Provider(map[string]interface{}{
		"election_path":     DefaultElectionPath,
		"demographics_path": DefaultDemographicsPath,
		"education_path":    DefaultEducationPath,
		"output_path":       DefaultOutputPath,
		"engine":            string(DefaultEngine),
		"verbose":           false,
		"format":            DefaultFormat,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Load config file
	if cfgFile != "" {
		if err := kc.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment profile overrides
	if len(profile) > 0 {
		if err := kc.Load(confmap.Provider(profile, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load environment profile: %w", err)
		}
	}

	// 4. Load environment variables (COUNTYJOIN_ prefix)
	// Transform: COUNTYJOIN_ELECTION_PATH -> election_path, COUNTYJOIN_DUCKDB_PATH -> duckdb.path
	if err := kc.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if rest, ok := strings.CutPrefix(key, "duckdb_"); ok {
			return "duckdb." + rest
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Load flags (highest priority)
	if flags != nil {
		if err := kc.Load(posflag.ProviderWithFlag(flags, ".", kc, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed || skippedFlags[f.Name] {
				return "", nil
			}
			if key, ok := flagKeys[f.Name]; ok {
				return key, posflag.FlagVal(flags, f)
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}
	return kc, nil
}

func decode(kc *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := kc.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
			Result:           &cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// values returns the profile's non-empty paths keyed by config key.
func (e EnvConfig) values() map[string]interface{} {
	m := make(map[string]interface{})
	set := func(key, v string) {
		if v != "" {
			m[key] = v
		}
	}
	set("election_path", e.ElectionPath)
	set("demographics_path", e.DemographicsPath)
	set("education_path", e.EducationPath)
	set("output_path", e.OutputPath)
	return m
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	required := []struct{ key, value string }{
		{"election_path", c.ElectionPath},
		{"demographics_path", c.DemographicsPath},
		{"education_path", c.EducationPath},
		{"output_path", c.OutputPath},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}
	switch c.Format {
	case "", "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("invalid format %q (expected auto, text, markdown or json)", c.Format)
	}
	return nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}
