// Package dataset defines the county tables joined by countyjoin and reads them
// from comma-separated files.
//
// Every table is keyed by a county FIPS code. Source rows keep numeric cells as
// sql.NullFloat64 so that a missing value stays distinguishable from zero until
// the pipeline's fill step.
package dataset

import "database/sql"

// Table names an input table.
type Table string

// Input tables.
const (
	TableElection     Table = "election"
	TableDemographics Table = "demographics"
	TableEducation    Table = "education"
)

// Election columns.
const (
	ColCountyFIPS   = "county_fips"
	ColStateName    = "state_name"
	ColCountyName   = "county_name"
	ColVotesGOP     = "votes_gop"
	ColVotesDem     = "votes_dem"
	ColTotalVotes   = "total_votes"
	ColDiff         = "diff"
	ColPerGOP       = "per_gop"
	ColPerDem       = "per_dem"
	ColPerPointDiff = "per_point_diff"
)

// Demographics columns. The white population count is published as White_Alone
// in some releases and NHWhite_Alone in others.
const (
	ColFIPS         = "FIPS"
	ColTotalPop     = "TOT_POP"
	ColWhiteAlone   = "White_Alone"
	ColNHWhiteAlone = "NHWhite_Alone"
	ColBlack        = "Black"
	ColHispanic     = "Hispanic"
)

// Education and income columns.
const (
	ColBachelorsCount   = "Bachelor's degree or higher 2014-18"
	ColBachelorsPct     = "Percent of adults with a bachelor's degree or higher 2014-18"
	ColMedianIncome     = "Median_Household_Income_2018"
	ColUnemploymentRate = "Unemployment_rate_2018"
)

// ElectionRow is one county's 2020 presidential result.
type ElectionRow struct {
	FIPS         string
	StateName    string
	CountyName   string
	VotesGOP     sql.NullFloat64
	VotesDem     sql.NullFloat64
	TotalVotes   sql.NullFloat64
	Diff         sql.NullFloat64
	PerGOP       sql.NullFloat64
	PerDem       sql.NullFloat64
	PerPointDiff sql.NullFloat64
}

// DemographicsRow is one county's population breakdown.
type DemographicsRow struct {
	FIPS     string
	TotalPop sql.NullFloat64
	White    sql.NullFloat64
	Black    sql.NullFloat64
	Hispanic sql.NullFloat64
}

// EducationRow is one county's attainment and income figures.
type EducationRow struct {
	FIPS             string
	BachelorsCount   sql.NullFloat64
	BachelorsPct     sql.NullFloat64
	MedianIncome     sql.NullFloat64
	UnemploymentRate sql.NullFloat64
}

// MergedRow is an election row joined with its demographics and education rows.
// Fields from an unmatched side are left invalid.
type MergedRow struct {
	FIPS         string
	State        string
	County       string
	VotesGOP     sql.NullFloat64
	VotesDem     sql.NullFloat64
	TotalVotes   sql.NullFloat64
	Diff         sql.NullFloat64
	PerGOP       sql.NullFloat64
	PerDem       sql.NullFloat64
	PerPointDiff sql.NullFloat64

	Population  sql.NullFloat64
	WhitePop    sql.NullFloat64
	BlackPop    sql.NullFloat64
	HispanicPop sql.NullFloat64

	BachelorsDegreeCount sql.NullFloat64
	BachelorsDegreePct   sql.NullFloat64
	MedianIncome         sql.NullFloat64
	UnemploymentRate     sql.NullFloat64

	WhitePct    sql.NullFloat64
	BlackPct    sql.NullFloat64
	HispanicPct sql.NullFloat64

	HasDemographics bool
	HasEducation    bool
}

// Record is the serialized form of a merged row. Field order is the JSON key order.
type Record struct {
	FIPS                 string  `json:"fips"`
	State                string  `json:"state"`
	County               string  `json:"county"`
	VotesGOP             float64 `json:"votes_gop"`
	VotesDem             float64 `json:"votes_dem"`
	TotalVotes           float64 `json:"total_votes"`
	Diff                 float64 `json:"diff"`
	PerGOP               float64 `json:"per_gop"`
	PerDem               float64 `json:"per_dem"`
	PerPointDiff         float64 `json:"per_point_diff"`
	Population           float64 `json:"population"`
	WhitePop             float64 `json:"white_pop"`
	BlackPop             float64 `json:"black_pop"`
	HispanicPop          float64 `json:"hispanic_pop"`
	BachelorsDegreeCount float64 `json:"bachelors_degree_count"`
	BachelorsDegreePct   float64 `json:"bachelors_degree_pct"`
	MedianIncome         float64 `json:"median_income"`
	UnemploymentRate     float64 `json:"unemployment_rate"`
	WhitePct             float64 `json:"white_pct"`
	BlackPct             float64 `json:"black_pct"`
	HispanicPct          float64 `json:"hispanic_pct"`
}

// RecordFields lists the JSON keys of a Record in output order.
var RecordFields = []string{
	"fips", "state", "county",
	"votes_gop", "votes_dem", "total_votes", "diff",
	"per_gop", "per_dem", "per_point_diff",
	"population", "white_pop", "black_pop", "hispanic_pop",
	"bachelors_degree_count", "bachelors_degree_pct",
	"median_income", "unemployment_rate",
	"white_pct", "black_pct", "hispanic_pct",
}
