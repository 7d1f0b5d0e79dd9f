package dataset

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/countyjoin/internal/testutil"
)

func TestNormalizeFIPS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123", "00123"},
		{"1001", "01001"},
		{"01001", "01001"},
		{"48201", "48201"},
		{"", "00000"},
		{"123456", "123456"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFIPS(tt.in))
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    sql.NullFloat64
		wantErr bool
	}{
		{name: "integer", in: "1000", want: sql.NullFloat64{Float64: 1000, Valid: true}},
		{name: "fraction", in: "0.667", want: sql.NullFloat64{Float64: 0.667, Valid: true}},
		{name: "negative", in: "-10", want: sql.NullFloat64{Float64: -10, Valid: true}},
		{name: "padded", in: " 42 ", want: sql.NullFloat64{Float64: 42, Valid: true}},
		{name: "empty", in: ""},
		{name: "NA", in: "NA"},
		{name: "NaN", in: "NaN"},
		{name: "infinite", in: "inf"},
		{name: "dash", in: "-"},
		{name: "text", in: "lots", wantErr: true},
		{name: "thousands separator", in: "1,000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNumber(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDemographics(t *testing.T) {
	tests := []struct {
		name      string
		header    []string
		wantWhite string
		wantCol   string
	}{
		{
			name:      "White_Alone release",
			header:    []string{"FIPS", "TOT_POP", "White_Alone", "Black", "Hispanic"},
			wantWhite: ColWhiteAlone,
		},
		{
			name:      "NHWhite_Alone release",
			header:    []string{"FIPS", "TOT_POP", "NHWhite_Alone", "Black", "Hispanic"},
			wantWhite: ColNHWhiteAlone,
		},
		{
			name:      "both present prefers White_Alone",
			header:    []string{"FIPS", "TOT_POP", "NHWhite_Alone", "White_Alone", "Black", "Hispanic"},
			wantWhite: ColWhiteAlone,
		},
		{
			name:    "no white column",
			header:  []string{"FIPS", "TOT_POP", "Black", "Hispanic"},
			wantCol: "White_Alone or NHWhite_Alone",
		},
		{
			name:    "missing Hispanic",
			header:  []string{"FIPS", "TOT_POP", "White_Alone", "Black"},
			wantCol: ColHispanic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := ResolveDemographics("demographics.csv", tt.header)
			if tt.wantCol != "" {
				var colErr *MissingColumnError
				require.ErrorAs(t, err, &colErr)
				assert.Equal(t, TableDemographics, colErr.Table)
				assert.Equal(t, tt.wantCol, colErr.Column)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantWhite, schema.WhiteColumn)
		})
	}
}

func TestLoadElection(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "election.csv",
		"\ufeff"+testutil.ElectionHeader+"\n"+
			"1001,Alabama,Autauga,100,50,150,50,0.667,0.333,0.333\n"+
			"2013,Alaska,Aleutians East,,NA,30,-10,0.333,0.667,-0.333\n")

	rows, err := LoadElection(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "1001", rows[0].FIPS, "identifiers are not padded at load time")
	assert.Equal(t, "Alabama", rows[0].StateName)
	assert.Equal(t, "Autauga", rows[0].CountyName)
	assert.Equal(t, sql.NullFloat64{Float64: 100, Valid: true}, rows[0].VotesGOP)
	assert.Equal(t, sql.NullFloat64{Float64: 0.333, Valid: true}, rows[0].PerPointDiff)

	assert.False(t, rows[1].VotesGOP.Valid)
	assert.False(t, rows[1].VotesDem.Valid)
	assert.Equal(t, sql.NullFloat64{Float64: -10, Valid: true}, rows[1].Diff)
}

func TestLoadElection_ShortRow(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "election.csv",
		testutil.ElectionHeader+"\n1001,Alabama,Autauga,100\n")

	rows, err := LoadElection(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].VotesGOP.Valid)
	assert.False(t, rows[0].PerGOP.Valid)
}

func TestLoadDemographics(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "demographics.csv",
		testutil.DemographicsHeader+"\n123,200,50,100,25\n")

	rows, schema, err := LoadDemographics(path)
	require.NoError(t, err)
	assert.Equal(t, ColNHWhiteAlone, schema.WhiteColumn)
	require.Len(t, rows, 1)
	assert.Equal(t, "123", rows[0].FIPS)
	assert.Equal(t, 200.0, rows[0].TotalPop.Float64)
	assert.Equal(t, 50.0, rows[0].White.Float64)
	assert.Equal(t, 100.0, rows[0].Black.Float64)
	assert.Equal(t, 25.0, rows[0].Hispanic.Float64)
}

func TestLoadEducation(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "education.csv",
		testutil.EducationHeader+"\n1001,5000,25.5,50000,0.05\n")

	rows, err := LoadEducation(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 5000.0, rows[0].BachelorsCount.Float64)
	assert.Equal(t, 25.5, rows[0].BachelorsPct.Float64)
	assert.Equal(t, 50000.0, rows[0].MedianIncome.Float64)
	assert.Equal(t, 0.05, rows[0].UnemploymentRate.Float64)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(dir, "nope.csv")
		_, err := LoadEducation(path)

		var fileErr *MissingFileError
		require.ErrorAs(t, err, &fileErr)
		assert.Equal(t, TableEducation, fileErr.Table)
		assert.Equal(t, path, fileErr.Path)
	})

	t.Run("missing column", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "bad_election.csv",
			"county_fips,state_name,county_name\n1001,Alabama,Autauga\n")
		_, err := LoadElection(path)

		var colErr *MissingColumnError
		require.ErrorAs(t, err, &colErr)
		assert.Equal(t, ColVotesGOP, colErr.Column)
	})

	t.Run("empty file", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "empty.csv", "")
		_, _, err := LoadDemographics(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "header row required")
	})

	t.Run("invalid number", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "bad_numbers.csv",
			testutil.DemographicsHeader+"\n1001,1000,700,200,50\n1003,lots,1,2,3\n")
		_, _, err := LoadDemographics(path)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, 3, parseErr.Line)
		assert.Equal(t, ColTotalPop, parseErr.Column)
		assert.Equal(t, "lots", parseErr.Value)
	})
}

func TestReadHeader(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "demographics.csv", "\ufeff"+testutil.DemographicsHeaderWhiteAlone+"\n")

	header, err := ReadHeader(TableDemographics, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"FIPS", "TOT_POP", "White_Alone", "Black", "Hispanic"}, header)
}
