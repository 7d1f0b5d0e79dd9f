package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/countyjoin/internal/cli/output"
	"github.com/leapstack-labs/countyjoin/internal/state"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List the most recent runs recorded in the state database.

Runs are only recorded when state_path (or --state) is set.`,
		Example: `  countyjoin history --state .countyjoin/state.db
  countyjoin history --limit 5 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1")
			}
			return runHistory(cmd, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}

func runHistory(cmd *cobra.Command, limit int) error {
	cc := NewCommandContext(cmd)
	if cc.Cfg.StatePath == "" {
		return fmt.Errorf("no state database configured: set state_path or pass --state")
	}

	store := state.NewSQLiteStore(cc.Logger)
	if err := store.Open(cmd.Context(), cc.Cfg.StatePath); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	r := cc.Renderer
	mode := r.EffectiveMode()
	if mode == output.ModeJSON {
		if runs == nil {
			runs = []*state.Run{}
		}
		return r.JSON(runs)
	}

	r.Header(1, fmt.Sprintf("Runs (%d)", len(runs)))
	if len(runs) == 0 {
		r.Muted("No runs recorded in " + cc.Cfg.StatePath)
		return nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"run_id", "started", "engine", "status", "records", "output", "error"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.Engine,
			run.Status,
			run.Records,
			run.OutputPath,
			run.Error,
		})
	}
	if mode == output.ModeMarkdown {
		r.Println(t.RenderMarkdown())
	} else {
		r.Println(t.Render())
	}
	return nil
}
