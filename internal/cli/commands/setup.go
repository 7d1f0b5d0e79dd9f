package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/countyjoin/internal/cli/config"
	"github.com/leapstack-labs/countyjoin/internal/cli/output"
	"github.com/leapstack-labs/countyjoin/internal/pipeline"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Format)),
	}
}

// Pipeline builds a pipeline from the command configuration. An empty runID
// lets the pipeline generate one.
func (c *CommandContext) Pipeline(runID string) *pipeline.Pipeline {
	pc := c.Cfg.PipelineConfig()
	pc.RunID = runID
	pc.Logger = c.Logger
	return pipeline.New(pc)
}

// getConfig returns the current configuration, or the defaults when no
// configuration was loaded (commands executed directly in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}
