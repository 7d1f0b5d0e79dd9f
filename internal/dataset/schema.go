package dataset

import "slices"

// ElectionColumns are the columns the election table must carry.
var ElectionColumns = []string{
	ColCountyFIPS, ColStateName, ColCountyName,
	ColVotesGOP, ColVotesDem, ColTotalVotes, ColDiff,
	ColPerGOP, ColPerDem, ColPerPointDiff,
}

// EducationColumns are the columns the education table must carry.
var EducationColumns = []string{
	ColFIPS, ColBachelorsCount, ColBachelorsPct, ColMedianIncome, ColUnemploymentRate,
}

// whiteColumnVariants is checked in order; the first present name is used.
var whiteColumnVariants = []string{ColWhiteAlone, ColNHWhiteAlone}

// DemographicsSchema is the resolved column layout of a demographics file.
type DemographicsSchema struct {
	// WhiteColumn is the source column emitted as white_pop.
	WhiteColumn string
}

// Columns returns the demographics columns to read under this schema.
func (s DemographicsSchema) Columns() []string {
	return []string{ColFIPS, ColTotalPop, s.WhiteColumn, ColBlack, ColHispanic}
}

// ResolveDemographics picks the white population column from a demographics header
// and checks that the remaining required columns are present.
// path is only used for error messages.
func ResolveDemographics(path string, header []string) (DemographicsSchema, error) {
	var schema DemographicsSchema
	for _, name := range whiteColumnVariants {
		if slices.Contains(header, name) {
			schema.WhiteColumn = name
			break
		}
	}
	if schema.WhiteColumn == "" {
		return DemographicsSchema{}, &MissingColumnError{
			Table:  TableDemographics,
			Path:   path,
			Column: ColWhiteAlone + " or " + ColNHWhiteAlone,
		}
	}
	if err := RequireColumns(TableDemographics, path, header, schema.Columns()); err != nil {
		return DemographicsSchema{}, err
	}
	return schema, nil
}

// RequireColumns reports the first of want missing from header.
func RequireColumns(table Table, path string, header, want []string) error {
	for _, col := range want {
		if !slices.Contains(header, col) {
			return &MissingColumnError{Table: table, Path: path, Column: col}
		}
	}
	return nil
}
