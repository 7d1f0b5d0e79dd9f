package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/countyjoin/internal/dataset"
	"github.com/leapstack-labs/countyjoin/pkg/adapters/duckdb"
)

// duckdbSource loads the CSV inputs into DuckDB and joins them in SQL. Numeric
// cells are projected as text and parsed with dataset.ParseNumber, so both
// engines agree on what counts as missing.
type duckdbSource struct {
	cfg    Config
	logger *slog.Logger
	db     *duckdb.Adapter
	schema dataset.DemographicsSchema
}

func newDuckDBSource(ctx context.Context, cfg Config, logger *slog.Logger) (*duckdbSource, error) {
	db := duckdb.New(logger)
	if err := db.Connect(ctx, cfg.DuckDB); err != nil {
		return nil, err
	}
	return &duckdbSource{cfg: cfg, logger: logger, db: db}, nil
}

func (s *duckdbSource) Close() error {
	return s.db.Close()
}

// load checks that path is readable with a header row, then loads it as table
// and returns its column names.
func (s *duckdbSource) load(ctx context.Context, table dataset.Table, path string) ([]string, error) {
	if _, err := dataset.ReadHeader(table, path); err != nil {
		return nil, err
	}
	if err := s.db.LoadCSV(ctx, string(table), path); err != nil {
		return nil, fmt.Errorf("%s table %s: %w", table, path, err)
	}
	meta, err := s.db.GetTableMetadata(ctx, string(table))
	if err != nil {
		return nil, fmt.Errorf("%s table %s: %w", table, path, err)
	}
	s.logger.Debug("loaded table", "table", table, "rows", meta.RowCount, "engine", EngineDuckDB)
	return meta.ColumnNames(), nil
}

// validate parses every numeric cell of a loaded table, so rows the join drops
// still fail with ParseError.
func (s *duckdbSource) validate(ctx context.Context, table dataset.Table, path string, cols []string) error {
	var b strings.Builder
	b.WriteString("SELECT " + duckdb.OrdinalColumn)
	for _, col := range cols {
		b.WriteString(", " + duckdb.QuoteIdent(col))
	}
	fmt.Fprintf(&b, " FROM %s ORDER BY %s", duckdb.QuoteIdent(string(table)), duckdb.OrdinalColumn)

	rows, err := s.db.Query(ctx, b.String())
	if err != nil {
		return fmt.Errorf("%s table %s: %w", table, path, err)
	}
	defer func() { _ = rows.Close() }()

	var ord int64
	raw := make([]sql.NullString, len(cols))
	dest := []any{&ord}
	for i := range raw {
		dest = append(dest, &raw[i])
	}
	values := make([]*sql.NullFloat64, len(cols))
	for i := range values {
		values[i] = new(sql.NullFloat64)
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("%s table %s: %w", table, path, err)
		}
		p := cellParser{table: table, path: path, ord: ord}
		p.parse(cols, raw, values...)
		if p.err != nil {
			return p.err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%s table %s: %w", table, path, err)
	}
	return nil
}

func (s *duckdbSource) merge(ctx context.Context) ([]dataset.MergedRow, dataset.DemographicsSchema, error) {
	var none dataset.DemographicsSchema

	cols, err := s.load(ctx, dataset.TableElection, s.cfg.ElectionPath)
	if err != nil {
		return nil, none, err
	}
	if err := dataset.RequireColumns(dataset.TableElection, s.cfg.ElectionPath, cols, dataset.ElectionColumns); err != nil {
		return nil, none, err
	}
	if err := s.validate(ctx, dataset.TableElection, s.cfg.ElectionPath, dataset.ElectionColumns[3:]); err != nil {
		return nil, none, err
	}

	cols, err = s.load(ctx, dataset.TableDemographics, s.cfg.DemographicsPath)
	if err != nil {
		return nil, none, err
	}
	schema, err := dataset.ResolveDemographics(s.cfg.DemographicsPath, cols)
	if err != nil {
		return nil, none, err
	}
	s.schema = schema
	if err := s.validate(ctx, dataset.TableDemographics, s.cfg.DemographicsPath, schema.Columns()[1:]); err != nil {
		return nil, none, err
	}

	cols, err = s.load(ctx, dataset.TableEducation, s.cfg.EducationPath)
	if err != nil {
		return nil, none, err
	}
	if err := dataset.RequireColumns(dataset.TableEducation, s.cfg.EducationPath, cols, dataset.EducationColumns); err != nil {
		return nil, none, err
	}
	if err := s.validate(ctx, dataset.TableEducation, s.cfg.EducationPath, dataset.EducationColumns[1:]); err != nil {
		return nil, none, err
	}

	rows, err := s.db.Query(ctx, joinQuery(schema))
	if err != nil {
		return nil, none, fmt.Errorf("join failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var merged []dataset.MergedRow
	for rows.Next() {
		m, err := s.scan(rows)
		if err != nil {
			return nil, none, err
		}
		merged = append(merged, m)
	}
	if err := rows.Err(); err != nil {
		return nil, none, fmt.Errorf("join failed: %w", err)
	}
	return merged, schema, nil
}

func (s *duckdbSource) scan(rows *sql.Rows) (dataset.MergedRow, error) {
	var (
		m                    dataset.MergedRow
		eOrd                 int64
		dOrd, uOrd           sql.NullInt64
		state, county        sql.NullString
		election             [7]sql.NullString
		demographics, income [4]sql.NullString
	)
	dest := []any{&eOrd, &m.FIPS, &state, &county}
	for i := range election {
		dest = append(dest, &election[i])
	}
	dest = append(dest, &dOrd)
	for i := range demographics {
		dest = append(dest, &demographics[i])
	}
	dest = append(dest, &uOrd)
	for i := range income {
		dest = append(dest, &income[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return m, fmt.Errorf("failed to scan joined row: %w", err)
	}

	m.State = state.String
	m.County = county.String

	p := cellParser{table: dataset.TableElection, path: s.cfg.ElectionPath, ord: eOrd}
	p.parse(dataset.ElectionColumns[3:], election[:],
		&m.VotesGOP, &m.VotesDem, &m.TotalVotes, &m.Diff, &m.PerGOP, &m.PerDem, &m.PerPointDiff)

	if dOrd.Valid {
		m.HasDemographics = true
		p.switchTo(dataset.TableDemographics, s.cfg.DemographicsPath, dOrd.Int64)
		p.parse(s.schema.Columns()[1:], demographics[:],
			&m.Population, &m.WhitePop, &m.BlackPop, &m.HispanicPop)
	}
	if uOrd.Valid {
		m.HasEducation = true
		p.switchTo(dataset.TableEducation, s.cfg.EducationPath, uOrd.Int64)
		p.parse(dataset.EducationColumns[1:], income[:],
			&m.BachelorsDegreeCount, &m.BachelorsDegreePct, &m.MedianIncome, &m.UnemploymentRate)
	}
	return m, p.err
}

// cellParser parses projected text cells, keeping the first error.
type cellParser struct {
	table dataset.Table
	path  string
	ord   int64
	err   error
}

func (p *cellParser) switchTo(table dataset.Table, path string, ord int64) {
	p.table, p.path, p.ord = table, path, ord
}

func (p *cellParser) parse(cols []string, raw []sql.NullString, dst ...*sql.NullFloat64) {
	for i, col := range cols {
		if p.err != nil {
			return
		}
		v, err := dataset.ParseNumber(raw[i].String)
		if err != nil {
			// Line assumes one physical line per record after the header.
			p.err = &dataset.ParseError{
				Table:  p.table,
				Path:   p.path,
				Line:   int(p.ord) + 2,
				Column: col,
				Value:  raw[i].String,
				Err:    err,
			}
			return
		}
		*dst[i] = v
	}
}

// padFIPS mirrors dataset.NormalizeFIPS: lpad alone would truncate longer values.
func padFIPS(col string) string {
	c := fmt.Sprintf("coalesce(%s, '')", duckdb.QuoteIdent(col))
	return fmt.Sprintf("CASE WHEN length(%[1]s) >= %[2]d THEN %[1]s ELSE lpad(%[1]s, %[2]d, '0') END", c, dataset.FIPSWidth)
}

// rightSide selects the first row per padded FIPS of a right-hand table.
func rightSide(table dataset.Table, cols []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT * FROM (SELECT %s, %s AS fips", duckdb.OrdinalColumn, padFIPS(dataset.ColFIPS))
	for i, col := range cols {
		fmt.Fprintf(&b, ", %s AS c%d", duckdb.QuoteIdent(col), i)
	}
	fmt.Fprintf(&b, ", row_number() OVER (PARTITION BY %s ORDER BY %s) AS _rn FROM %s) WHERE _rn = 1",
		padFIPS(dataset.ColFIPS), duckdb.OrdinalColumn, duckdb.QuoteIdent(string(table)))
	return b.String()
}

// joinQuery builds the left-outer join of the three loaded tables. Columns come
// back in the order duckdbSource.scan reads them.
func joinQuery(schema dataset.DemographicsSchema) string {
	var b strings.Builder
	b.WriteString("WITH e AS (SELECT ")
	fmt.Fprintf(&b, "%s, %s AS fips", duckdb.OrdinalColumn, padFIPS(dataset.ColCountyFIPS))
	for i, col := range dataset.ElectionColumns[1:] {
		fmt.Fprintf(&b, ", %s AS c%d", duckdb.QuoteIdent(col), i)
	}
	fmt.Fprintf(&b, " FROM %s)", duckdb.QuoteIdent(string(dataset.TableElection)))

	fmt.Fprintf(&b, ", d AS (%s)", rightSide(dataset.TableDemographics, schema.Columns()[1:]))
	fmt.Fprintf(&b, ", u AS (%s)", rightSide(dataset.TableEducation, dataset.EducationColumns[1:]))

	fmt.Fprintf(&b, " SELECT e.%s, e.fips", duckdb.OrdinalColumn)
	for i := range dataset.ElectionColumns[1:] {
		fmt.Fprintf(&b, ", e.c%d", i)
	}
	fmt.Fprintf(&b, ", d.%s, d.c0, d.c1, d.c2, d.c3", duckdb.OrdinalColumn)
	fmt.Fprintf(&b, ", u.%s, u.c0, u.c1, u.c2, u.c3", duckdb.OrdinalColumn)
	fmt.Fprintf(&b, " FROM e LEFT JOIN d ON d.fips = e.fips LEFT JOIN u ON u.fips = d.fips ORDER BY e.%s", duckdb.OrdinalColumn)
	return b.String()
}
