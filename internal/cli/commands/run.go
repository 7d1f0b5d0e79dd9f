package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/countyjoin/internal/cli/output"
	"github.com/leapstack-labs/countyjoin/internal/pipeline"
	"github.com/leapstack-labs/countyjoin/internal/state"
)

// SuccessMessage is printed after the output file has been written.
const SuccessMessage = "Data processed and saved to %s"

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "run",
		Aliases: []string{"process"},
		Short:   "Join the county tables and write the JSON output",
		Long: `Load the election, demographics and education tables, join them on the
county FIPS code, derive population shares and write one JSON record per
election row.

Running countyjoin without a subcommand does the same.`,
		Example: `  # Run with the default public/data paths
  countyjoin run

  # Run in DuckDB with custom paths
  countyjoin run --engine duckdb --election in/election.csv --out out/data.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd)
		},
	}
}

// Run executes the pipeline and reports the result. When a state path is
// configured the run is recorded in the run history.
func Run(cmd *cobra.Command) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()

	runID := uuid.NewString()
	p := cc.Pipeline(runID)

	var store *state.SQLiteStore
	if cc.Cfg.StatePath != "" {
		store = state.NewSQLiteStore(cc.Logger)
		if err := store.Open(ctx, cc.Cfg.StatePath); err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		if _, err := store.CreateRun(ctx, runID, cc.Cfg.Environment, cc.Cfg.Engine.String(), cc.Cfg.OutputPath); err != nil {
			return err
		}
	}

	res, err := p.Run(ctx)
	if store != nil {
		recordRun(store, runID, res, err, cc)
	}
	if err != nil {
		return err
	}

	msg := fmt.Sprintf(SuccessMessage, res.OutputPath)
	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(output.RunOutput{
			Message:             msg,
			RunID:               res.RunID,
			Engine:              res.Engine.String(),
			OutputPath:          res.OutputPath,
			Records:             res.Stats.Records,
			DemographicsMatched: res.Stats.DemographicsMatched,
			EducationMatched:    res.Stats.EducationMatched,
			WhiteColumn:         res.Stats.WhiteColumn,
			DurationMS:          res.Duration.Milliseconds(),
		})
	}
	r.Success(msg)
	return nil
}

// recordRun stores the outcome of a run. It uses a fresh context so that
// cancelled runs are still recorded.
func recordRun(store *state.SQLiteStore, runID string, res *pipeline.Result, runErr error, cc *CommandContext) {
	status := state.RunStatusCompleted
	var outcome state.Outcome
	var errMsg string
	switch {
	case errors.Is(runErr, context.Canceled):
		status, errMsg = state.RunStatusCancelled, runErr.Error()
	case runErr != nil:
		status, errMsg = state.RunStatusFailed, runErr.Error()
	default:
		outcome = state.Outcome{
			Records:             res.Stats.Records,
			DemographicsMatched: res.Stats.DemographicsMatched,
			EducationMatched:    res.Stats.EducationMatched,
			WhiteColumn:         res.Stats.WhiteColumn,
		}
	}
	if err := store.CompleteRun(context.Background(), runID, status, outcome, errMsg); err != nil {
		cc.Logger.Warn("failed to record run", "run_id", runID, "error", err)
	}
}
