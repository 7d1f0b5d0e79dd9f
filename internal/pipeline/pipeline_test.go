package pipeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/countyjoin/internal/dataset"
	"github.com/leapstack-labs/countyjoin/internal/testutil"
)

func num(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func newTestPipeline(t *testing.T, in testutil.Inputs, engine Engine) *Pipeline {
	t.Helper()
	return New(Config{
		ElectionPath:     in.Election,
		DemographicsPath: in.Demographics,
		EducationPath:    in.Education,
		OutputPath:       in.Output,
		Engine:           engine,
		Logger:           testutil.NewTestLogger(t),
	})
}

// readOutput decodes the written JSON into generic objects so key sets can be checked.
func readOutput(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestJoin(t *testing.T) {
	elections := []dataset.ElectionRow{
		{FIPS: "01001", StateName: "Alabama", CountyName: "Autauga", VotesGOP: num(100)},
		{FIPS: "02013", StateName: "Alaska", CountyName: "Aleutians East"},
		{FIPS: "01001", StateName: "Alabama", CountyName: "Autauga (again)"},
	}
	demos := []dataset.DemographicsRow{
		{FIPS: "01001", TotalPop: num(1000), White: num(700)},
		{FIPS: "01001", TotalPop: num(9999)},
		{FIPS: "99999", TotalPop: num(1)},
	}
	edus := []dataset.EducationRow{
		{FIPS: "02013", MedianIncome: num(70000)},
	}

	merged := Join(elections, demos, edus)
	require.Len(t, merged, len(elections), "one merged row per election row")

	assert.Equal(t, "Autauga", merged[0].County)
	assert.True(t, merged[0].HasDemographics)
	assert.False(t, merged[0].HasEducation)
	assert.Equal(t, num(1000), merged[0].Population, "first demographics row wins")
	assert.Equal(t, num(700), merged[0].WhitePop)
	assert.False(t, merged[0].MedianIncome.Valid)

	assert.False(t, merged[1].HasDemographics)
	assert.False(t, merged[1].HasEducation, "education joins through the demographics match")
	assert.False(t, merged[1].MedianIncome.Valid)
	assert.False(t, merged[1].Population.Valid)

	assert.Equal(t, "Autauga (again)", merged[2].County)
	assert.Equal(t, num(1000), merged[2].Population)
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name string
		row  dataset.MergedRow
		want sql.NullFloat64
	}{
		{
			name: "exact quarter",
			row:  dataset.MergedRow{WhitePop: num(50), Population: num(200)},
			want: num(0.25),
		},
		{
			name: "zero population",
			row:  dataset.MergedRow{WhitePop: num(50), Population: num(0)},
		},
		{
			name: "missing population",
			row:  dataset.MergedRow{WhitePop: num(50)},
		},
		{
			name: "missing subpopulation",
			row:  dataset.MergedRow{Population: num(200)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []dataset.MergedRow{tt.row}
			Derive(rows)
			assert.Equal(t, tt.want, rows[0].WhitePct)
		})
	}
}

func TestFill(t *testing.T) {
	rows := []dataset.MergedRow{{
		FIPS:       "06003",
		State:      "California",
		County:     "Alpine",
		VotesGOP:   num(1),
		Population: num(200),
	}}
	Derive(rows)
	records := Fill(rows)

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "06003", r.FIPS)
	assert.Equal(t, 1.0, r.VotesGOP)
	assert.Equal(t, 200.0, r.Population)
	assert.Zero(t, r.WhitePop)
	assert.Zero(t, r.WhitePct, "share derived before fill stays zero")
	assert.Zero(t, r.MedianIncome)
}

func TestWriteJSON(t *testing.T) {
	t.Run("empty record set is an empty array", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "out.json")
		require.NoError(t, WriteJSON(path, nil))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	})

	t.Run("replaces existing file without leftovers", func(t *testing.T) {
		dir := t.TempDir()
		path := testutil.WriteFile(t, dir, "out.json", "stale")
		require.NoError(t, WriteJSON(path, []dataset.Record{{FIPS: "01001"}}))

		out := readOutput(t, path)
		require.Len(t, out, 1)
		assert.Equal(t, "01001", out[0]["fips"])

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temporary file should be renamed away")
	})
}

func TestRun_EndToEnd(t *testing.T) {
	for _, engine := range Engines {
		t.Run(string(engine), func(t *testing.T) {
			in := testutil.WriteExampleInputs(t)
			p := newTestPipeline(t, in, engine)

			result, err := p.Run(context.Background())
			require.NoError(t, err)
			assert.NotEmpty(t, result.RunID)
			assert.Equal(t, engine, result.Engine)
			assert.Equal(t, in.Output, result.OutputPath)
			assert.Equal(t, Stats{
				Records:             3,
				DemographicsMatched: 2,
				EducationMatched:    2,
				WhiteColumn:         dataset.ColNHWhiteAlone,
			}, result.Stats)

			out := readOutput(t, in.Output)
			require.Len(t, out, 3, "output count equals election row count")

			for _, rec := range out {
				assert.Len(t, rec, len(dataset.RecordFields))
				for _, key := range dataset.RecordFields {
					assert.Contains(t, rec, key)
				}
			}

			assert.Equal(t, map[string]any{
				"fips":                   "01001",
				"state":                  "Alabama",
				"county":                 "Autauga",
				"votes_gop":              100.0,
				"votes_dem":              50.0,
				"total_votes":            150.0,
				"diff":                   50.0,
				"per_gop":                0.667,
				"per_dem":                0.333,
				"per_point_diff":         0.333,
				"population":             1000.0,
				"white_pop":              700.0,
				"black_pop":              200.0,
				"hispanic_pop":           50.0,
				"bachelors_degree_count": 5000.0,
				"bachelors_degree_pct":   25.5,
				"median_income":          50000.0,
				"unemployment_rate":      0.05,
				"white_pct":              0.7,
				"black_pct":              0.2,
				"hispanic_pct":           0.05,
			}, out[0])

			// No demographics or education match.
			assert.Equal(t, "02013", out[1]["fips"])
			assert.Equal(t, 0.0, out[1]["population"])
			assert.Equal(t, 0.0, out[1]["white_pop"])
			assert.Equal(t, 0.0, out[1]["white_pct"])
			assert.Equal(t, 0.0, out[1]["median_income"])
			assert.Equal(t, -10.0, out[1]["diff"])

			// Zero population divides to a filled zero.
			assert.Equal(t, "06003", out[2]["fips"])
			assert.Equal(t, 0.0, out[2]["white_pct"])
			assert.Equal(t, 60000.0, out[2]["median_income"])
		})
	}
}

func TestRun_WhiteAloneVariant(t *testing.T) {
	for _, engine := range Engines {
		t.Run(string(engine), func(t *testing.T) {
			in := testutil.WriteInputs(t,
				testutil.ElectionHeader+"\n123,Alabama,Somewhere,1,1,2,0,0.5,0.5,0\n",
				testutil.DemographicsHeaderWhiteAlone+"\n00123,200,50,0,0\n",
				testutil.EducationHeader+"\n99999,1,1,1,1\n",
			)
			result, err := newTestPipeline(t, in, engine).Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, dataset.ColWhiteAlone, result.Stats.WhiteColumn)

			out := readOutput(t, in.Output)
			require.Len(t, out, 1)
			assert.Equal(t, "00123", out[0]["fips"])
			assert.Equal(t, 50.0, out[0]["white_pop"])
			assert.Equal(t, 0.25, out[0]["white_pct"])
			assert.NotContains(t, out[0], "White_Alone")
		})
	}
}

func TestRecords_ShortRow(t *testing.T) {
	for _, engine := range Engines {
		t.Run(string(engine), func(t *testing.T) {
			in := testutil.WriteExampleInputs(t)
			in.Election = testutil.WriteFile(t, in.Dir, "election_short.csv",
				testutil.ElectionHeader+"\n1001,Alabama,Autauga,100\n")

			records, stats, err := newTestPipeline(t, in, engine).Records(context.Background())
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, 1, stats.Records)
			assert.Equal(t, 100.0, records[0].VotesGOP)
			assert.Zero(t, records[0].VotesDem)
			assert.Zero(t, records[0].PerGOP)
			assert.Equal(t, 1000.0, records[0].Population)
			assert.Equal(t, 50000.0, records[0].MedianIncome)
		})
	}
}

func TestRecords_EducationRequiresDemographicsMatch(t *testing.T) {
	for _, engine := range Engines {
		t.Run(string(engine), func(t *testing.T) {
			in := testutil.WriteInputs(t,
				testutil.ElectionHeader+"\n"+
					"1001,Alabama,Autauga,100,50,150,50,0.667,0.333,0.333\n"+
					"2013,Alaska,Aleutians East,10,20,30,-10,0.333,0.667,-0.333\n",
				testutil.DemographicsHeader+"\n1001,1000,700,200,50\n",
				testutil.EducationHeader+"\n"+
					"1001,5000,25.5,50000,0.05\n"+
					"2013,5000,30,70000,0.03\n",
			)

			records, stats, err := newTestPipeline(t, in, engine).Records(context.Background())
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, 1, stats.DemographicsMatched)
			assert.Equal(t, 1, stats.EducationMatched)

			assert.Equal(t, 50000.0, records[0].MedianIncome)

			assert.Equal(t, "02013", records[1].FIPS)
			assert.Zero(t, records[1].Population)
			assert.Zero(t, records[1].MedianIncome, "no demographics match means no education fields")
			assert.Zero(t, records[1].BachelorsDegreeCount)
			assert.Zero(t, records[1].UnemploymentRate)
		})
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, in *testutil.Inputs)
		check  func(t *testing.T, err error)
	}{
		{
			name: "missing demographics file",
			mutate: func(_ *testing.T, in *testutil.Inputs) {
				in.Demographics = filepath.Join(in.Dir, "absent.csv")
			},
			check: func(t *testing.T, err error) {
				var fileErr *dataset.MissingFileError
				require.ErrorAs(t, err, &fileErr)
				assert.Equal(t, dataset.TableDemographics, fileErr.Table)
			},
		},
		{
			name: "missing education column",
			mutate: func(t *testing.T, in *testutil.Inputs) {
				in.Education = testutil.WriteFile(t, in.Dir, "edu_bad.csv", "FIPS,Median_Household_Income_2018\n1001,1\n")
			},
			check: func(t *testing.T, err error) {
				var colErr *dataset.MissingColumnError
				require.ErrorAs(t, err, &colErr)
				assert.Equal(t, dataset.TableEducation, colErr.Table)
				assert.Equal(t, dataset.ColBachelorsCount, colErr.Column)
			},
		},
		{
			name: "no white population column",
			mutate: func(t *testing.T, in *testutil.Inputs) {
				in.Demographics = testutil.WriteFile(t, in.Dir, "demo_bad.csv", "FIPS,TOT_POP,Black,Hispanic\n1001,1,1,1\n")
			},
			check: func(t *testing.T, err error) {
				var colErr *dataset.MissingColumnError
				require.ErrorAs(t, err, &colErr)
				assert.Equal(t, dataset.TableDemographics, colErr.Table)
			},
		},
		{
			name: "invalid election number",
			mutate: func(t *testing.T, in *testutil.Inputs) {
				in.Election = testutil.WriteFile(t, in.Dir, "election_bad.csv",
					testutil.ElectionHeader+"\n1001,Alabama,Autauga,many,50,150,50,0.667,0.333,0.333\n")
			},
			check: func(t *testing.T, err error) {
				var parseErr *dataset.ParseError
				require.ErrorAs(t, err, &parseErr)
				assert.Equal(t, dataset.TableElection, parseErr.Table)
				assert.Equal(t, 2, parseErr.Line)
				assert.Equal(t, dataset.ColVotesGOP, parseErr.Column)
			},
		},
		{
			name: "invalid number in unmatched demographics row",
			mutate: func(t *testing.T, in *testutil.Inputs) {
				in.Demographics = testutil.WriteFile(t, in.Dir, "demo_unmatched.csv",
					testutil.DemographicsHeader+"\n1001,1000,700,200,50\n9999,lots,1,1,1\n")
			},
			check: func(t *testing.T, err error) {
				var parseErr *dataset.ParseError
				require.ErrorAs(t, err, &parseErr)
				assert.Equal(t, dataset.TableDemographics, parseErr.Table)
				assert.Equal(t, 3, parseErr.Line)
				assert.Equal(t, dataset.ColTotalPop, parseErr.Column)
				assert.Equal(t, "lots", parseErr.Value)
			},
		},
		{
			name: "invalid number in unmatched education row",
			mutate: func(t *testing.T, in *testutil.Inputs) {
				in.Education = testutil.WriteFile(t, in.Dir, "edu_unmatched.csv",
					testutil.EducationHeader+"\n9999,1,1,plenty,1\n")
			},
			check: func(t *testing.T, err error) {
				var parseErr *dataset.ParseError
				require.ErrorAs(t, err, &parseErr)
				assert.Equal(t, dataset.TableEducation, parseErr.Table)
				assert.Equal(t, 2, parseErr.Line)
				assert.Equal(t, dataset.ColMedianIncome, parseErr.Column)
			},
		},
	}

	for _, engine := range Engines {
		for _, tt := range tests {
			t.Run(string(engine)+"/"+tt.name, func(t *testing.T) {
				in := testutil.WriteExampleInputs(t)
				tt.mutate(t, &in)

				_, err := newTestPipeline(t, in, engine).Run(context.Background())
				tt.check(t, err)

				_, statErr := os.Stat(in.Output)
				assert.True(t, os.IsNotExist(statErr), "no output is written on failure")
			})
		}
	}
}

func TestRun_Cancelled(t *testing.T) {
	in := testutil.WriteExampleInputs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPipeline(t, in, EngineNative).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(in.Output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_UsesConfiguredRunID(t *testing.T) {
	in := testutil.WriteExampleInputs(t)
	p := New(Config{
		ElectionPath:     in.Election,
		DemographicsPath: in.Demographics,
		EducationPath:    in.Education,
		OutputPath:       in.Output,
		RunID:            "run-42",
	})

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-42", result.RunID)
	assert.Equal(t, EngineNative, result.Engine, "empty engine defaults to native")
}

func TestEngine_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    Engine
		wantErr bool
	}{
		{in: "native", want: EngineNative},
		{in: "DuckDB", want: EngineDuckDB},
		{in: "", want: EngineNative},
		{in: "spark", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var e Engine
			err := e.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown engine")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, e)
		})
	}
}
