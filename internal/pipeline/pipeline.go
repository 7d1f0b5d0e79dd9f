// Package pipeline joins the county election, demographics and education tables
// and writes the merged records as JSON.
//
// A run is a single linear pass:
//
//	load -> normalize FIPS -> left join -> derive shares -> fill missing -> write
//
// Loading and joining are done by an Engine (in Go, or in DuckDB); deriving,
// filling and writing are shared by both.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/countyjoin/internal/dataset"
	"github.com/leapstack-labs/countyjoin/pkg/adapters/duckdb"
)

// Config holds pipeline configuration.
type Config struct {
	// ElectionPath is the election results CSV (left side of the join).
	ElectionPath string
	// DemographicsPath is the county demographics CSV.
	DemographicsPath string
	// EducationPath is the education and income CSV.
	EducationPath string
	// OutputPath is where the JSON array is written.
	OutputPath string
	// Engine selects how tables are loaded and joined (default native).
	Engine Engine
	// DuckDB configures the connection used by EngineDuckDB.
	DuckDB duckdb.Config
	// RunID identifies the run in logs and results; generated when empty.
	RunID string
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Stats summarizes a merge.
type Stats struct {
	// Records is the number of merged rows, always the number of election rows.
	Records int `json:"records"`
	// DemographicsMatched counts rows that found a demographics row.
	DemographicsMatched int `json:"demographics_matched"`
	// EducationMatched counts rows that found an education row.
	EducationMatched int `json:"education_matched"`
	// WhiteColumn is the demographics column read as white_pop.
	WhiteColumn string `json:"white_column"`
}

// Result describes a completed run.
type Result struct {
	RunID      string        `json:"run_id"`
	Engine     Engine        `json:"engine"`
	OutputPath string        `json:"output_path"`
	Stats      Stats         `json:"stats"`
	Duration   time.Duration `json:"duration_ns"`
}

// Pipeline runs the county join.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// source loads and joins the input tables.
type source interface {
	merge(ctx context.Context) ([]dataset.MergedRow, dataset.DemographicsSchema, error)
	Close() error
}

// New creates a pipeline. An empty engine selects EngineNative.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Engine == "" {
		cfg.Engine = EngineNative
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// Merge loads, normalizes and joins the input tables. Shares are not derived and
// missing values are not filled.
func (p *Pipeline) Merge(ctx context.Context) ([]dataset.MergedRow, Stats, error) {
	return p.merge(ctx, p.logger)
}

func (p *Pipeline) merge(ctx context.Context, logger *slog.Logger) ([]dataset.MergedRow, Stats, error) {
	src, err := p.openSource(ctx, logger)
	if err != nil {
		return nil, Stats{}, err
	}
	defer func() { _ = src.Close() }()

	rows, schema, err := src.merge(ctx)
	if err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{Records: len(rows), WhiteColumn: schema.WhiteColumn}
	for i := range rows {
		if rows[i].HasDemographics {
			stats.DemographicsMatched++
		}
		if rows[i].HasEducation {
			stats.EducationMatched++
		}
	}
	logger.Debug("joined tables",
		"records", stats.Records,
		"demographics_matched", stats.DemographicsMatched,
		"education_matched", stats.EducationMatched,
	)
	return rows, stats, nil
}

func (p *Pipeline) openSource(ctx context.Context, logger *slog.Logger) (source, error) {
	switch p.cfg.Engine {
	case EngineNative:
		return &nativeSource{cfg: p.cfg, logger: logger}, nil
	case EngineDuckDB:
		return newDuckDBSource(ctx, p.cfg, logger)
	default:
		return nil, fmt.Errorf("unknown engine %q", p.cfg.Engine)
	}
}

// Records runs Merge, Derive and Fill, returning the records that Run would write.
func (p *Pipeline) Records(ctx context.Context) ([]dataset.Record, Stats, error) {
	return p.records(ctx, p.logger)
}

func (p *Pipeline) records(ctx context.Context, logger *slog.Logger) ([]dataset.Record, Stats, error) {
	rows, stats, err := p.merge(ctx, logger)
	if err != nil {
		return nil, Stats{}, err
	}
	Derive(rows)
	return Fill(rows), stats, nil
}

// Run executes the full pipeline and writes the output file. Nothing is written
// if any step fails.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := p.cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := p.logger.With("run_id", runID)

	logger.Debug("starting run",
		"engine", p.cfg.Engine,
		"election", p.cfg.ElectionPath,
		"demographics", p.cfg.DemographicsPath,
		"education", p.cfg.EducationPath,
	)

	records, stats, err := p.records(ctx, logger)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := WriteJSON(p.cfg.OutputPath, records); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:      runID,
		Engine:     p.cfg.Engine,
		OutputPath: p.cfg.OutputPath,
		Stats:      stats,
		Duration:   time.Since(start),
	}
	logger.Info("run completed", "records", stats.Records, "output", p.cfg.OutputPath, "duration", result.Duration)
	return result, nil
}
