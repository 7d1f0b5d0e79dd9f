package output

import "github.com/leapstack-labs/countyjoin/internal/dataset"

// RunOutput is the JSON summary of a completed run.
type RunOutput struct {
	Message             string `json:"message"`
	RunID               string `json:"run_id"`
	Engine              string `json:"engine"`
	OutputPath          string `json:"output_path"`
	Records             int    `json:"records"`
	DemographicsMatched int    `json:"demographics_matched"`
	EducationMatched    int    `json:"education_matched"`
	WhiteColumn         string `json:"white_column"`
	DurationMS          int64  `json:"duration_ms"`
}

// TableInfo describes one input table.
type TableInfo struct {
	Table   string   `json:"table"`
	Path    string   `json:"path"`
	Columns []string `json:"columns"`
}

// InspectOutput is the JSON form of the inspect command.
type InspectOutput struct {
	Engine              string           `json:"engine"`
	Tables              []TableInfo      `json:"tables"`
	WhiteColumn         string           `json:"white_column"`
	Records             int              `json:"records"`
	DemographicsMatched int              `json:"demographics_matched"`
	EducationMatched    int              `json:"education_matched"`
	Preview             []dataset.Record `json:"preview,omitempty"`
}
