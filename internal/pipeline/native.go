package pipeline

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/countyjoin/internal/dataset"
)

// nativeSource reads the CSV inputs with encoding/csv and joins them in memory.
type nativeSource struct {
	cfg    Config
	logger *slog.Logger
}

func (s *nativeSource) merge(ctx context.Context) ([]dataset.MergedRow, dataset.DemographicsSchema, error) {
	elections, err := dataset.LoadElection(s.cfg.ElectionPath)
	if err != nil {
		return nil, dataset.DemographicsSchema{}, err
	}
	s.logger.Debug("loaded table", "table", dataset.TableElection, "rows", len(elections))

	demos, schema, err := dataset.LoadDemographics(s.cfg.DemographicsPath)
	if err != nil {
		return nil, dataset.DemographicsSchema{}, err
	}
	s.logger.Debug("loaded table", "table", dataset.TableDemographics, "rows", len(demos), "white_column", schema.WhiteColumn)

	edus, err := dataset.LoadEducation(s.cfg.EducationPath)
	if err != nil {
		return nil, dataset.DemographicsSchema{}, err
	}
	s.logger.Debug("loaded table", "table", dataset.TableEducation, "rows", len(edus))

	if err := ctx.Err(); err != nil {
		return nil, dataset.DemographicsSchema{}, err
	}

	normalizeKeys(elections, demos, edus)
	return Join(elections, demos, edus), schema, nil
}

func (s *nativeSource) Close() error {
	return nil
}
