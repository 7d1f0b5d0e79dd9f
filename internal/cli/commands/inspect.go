package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/countyjoin/internal/cli/output"
	"github.com/leapstack-labs/countyjoin/internal/dataset"
)

// previewColumns are the record fields shown by inspect --preview.
var previewColumns = []string{
	"fips", "state", "county", "per_gop", "per_dem",
	"population", "white_pct", "black_pct", "hispanic_pct", "median_income",
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	var preview int

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show input schemas and join coverage without writing output",
		Long: `Load and join the input tables, then report each table's columns, which
white population column was used, and how many election rows matched the
demographics and education tables. Nothing is written to the output path.`,
		Example: `  # Report join coverage
  countyjoin inspect

  # Show the first 10 merged records
  countyjoin inspect --preview 10

  # Machine-readable
  countyjoin inspect --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if preview < 0 {
				return fmt.Errorf("--preview must not be negative")
			}
			return runInspect(cmd, preview)
		},
	}

	cmd.Flags().IntVar(&preview, "preview", 0, "Number of merged records to show")
	return cmd
}

func runInspect(cmd *cobra.Command, preview int) error {
	cc := NewCommandContext(cmd)
	cfg := cc.Cfg

	out := output.InspectOutput{Engine: cfg.Engine.String()}
	inputs := []struct {
		table dataset.Table
		path  string
	}{
		{dataset.TableElection, cfg.ElectionPath},
		{dataset.TableDemographics, cfg.DemographicsPath},
		{dataset.TableEducation, cfg.EducationPath},
	}
	for _, in := range inputs {
		header, err := dataset.ReadHeader(in.table, in.path)
		if err != nil {
			return err
		}
		out.Tables = append(out.Tables, output.TableInfo{Table: string(in.table), Path: in.path, Columns: header})
	}

	records, stats, err := cc.Pipeline("").Records(cmd.Context())
	if err != nil {
		return err
	}
	out.WhiteColumn = stats.WhiteColumn
	out.Records = stats.Records
	out.DemographicsMatched = stats.DemographicsMatched
	out.EducationMatched = stats.EducationMatched
	if preview > len(records) {
		preview = len(records)
	}
	out.Preview = records[:preview]

	r := cc.Renderer
	mode := r.EffectiveMode()
	if mode == output.ModeJSON {
		return r.JSON(out)
	}

	titleCaser := cases.Title(language.English)
	r.Header(1, "Inputs")
	for _, tbl := range out.Tables {
		r.Header(2, titleCaser.String(tbl.Table))
		r.KeyValue("Path", tbl.Path)
		r.KeyValue("Columns", strings.Join(tbl.Columns, ", "))
	}

	r.Header(1, "Join")
	r.KeyValue("Engine", out.Engine)
	r.KeyValue("White population column", out.WhiteColumn)
	r.KeyValue("Records", out.Records)
	r.KeyValue("Demographics matched", coverage(out.DemographicsMatched, out.Records))
	r.KeyValue("Education matched", coverage(out.EducationMatched, out.Records))

	if len(out.Preview) > 0 {
		r.Header(1, "Preview")
		renderPreview(r, out.Preview, mode == output.ModeMarkdown)
	}
	return nil
}

func coverage(matched, total int) string {
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%d (%.1f%%)", matched, float64(matched)*100/float64(total))
}

func renderPreview(r *output.Renderer, records []dataset.Record, markdown bool) {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(previewColumns))
	for i, col := range previewColumns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, rec := range records {
		t.AppendRow(table.Row{
			rec.FIPS, rec.State, rec.County, rec.PerGOP, rec.PerDem,
			rec.Population, rec.WhitePct, rec.BlackPct, rec.HispanicPct, rec.MedianIncome,
		})
	}

	if markdown {
		r.Println(t.RenderMarkdown())
	} else {
		r.Println(t.Render())
	}
	r.Printf("(%d rows)\n", len(records))
}
