package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ElectionHeader is the header row of election_2020.csv.
const ElectionHeader = "county_fips,state_name,county_name,votes_gop,votes_dem,total_votes,diff,per_gop,per_dem,per_point_diff"

// DemographicsHeader uses the NHWhite_Alone variant of the white population column.
const DemographicsHeader = "FIPS,TOT_POP,NHWhite_Alone,Black,Hispanic"

// DemographicsHeaderWhiteAlone uses the White_Alone variant.
const DemographicsHeaderWhiteAlone = "FIPS,TOT_POP,White_Alone,Black,Hispanic"

// EducationHeader is the header row of education_income.csv.
const EducationHeader = `FIPS,Bachelor's degree or higher 2014-18,Percent of adults with a bachelor's degree or higher 2014-18,Median_Household_Income_2018,Unemployment_rate_2018`

// Inputs holds the paths of a generated input set.
type Inputs struct {
	Dir          string
	Election     string
	Demographics string
	Education    string
	Output       string
}

// WriteFile writes content under dir and returns the full path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// WriteInputs writes the three input tables to a temporary directory.
// Each argument is the full file content including the header.
func WriteInputs(t testing.TB, election, demographics, education string) Inputs {
	t.Helper()
	dir := t.TempDir()
	return Inputs{
		Dir:          dir,
		Election:     WriteFile(t, dir, "election_2020.csv", election),
		Demographics: WriteFile(t, dir, "demographics.csv", demographics),
		Education:    WriteFile(t, dir, "education_income.csv", education),
		Output:       filepath.Join(dir, "out", "processed_data.json"),
	}
}

// WriteExampleInputs writes a small input set covering Autauga County (fully
// matched), a county with no demographics or education rows, and a county with
// zero population.
func WriteExampleInputs(t testing.TB) Inputs {
	t.Helper()
	return WriteInputs(t,
		ElectionHeader+"\n"+
			"1001,Alabama,Autauga,100,50,150,50,0.667,0.333,0.333\n"+
			"2013,Alaska,Aleutians East,10,20,30,-10,0.333,0.667,-0.333\n"+
			"6003,California,Alpine,1,2,3,-1,0.333,0.667,-0.333\n",
		DemographicsHeader+"\n"+
			"1001,1000,700,200,50\n"+
			"6003,0,0,0,0\n",
		EducationHeader+"\n"+
			"1001,5000,25.5,50000,0.05\n"+
			"6003,10,12.5,60000,0.04\n",
	)
}
