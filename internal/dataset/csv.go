package dataset

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// naTokens are cell values read as missing, in addition to the empty string.
var naTokens = []string{"NA", "N/A", "NaN", "nan", "null", "NULL", "-"}

// csvTable is a fully read comma-separated file with a header row.
type csvTable struct {
	name    Table
	path    string
	header  []string
	index   map[string]int
	records [][]string
	lines   []int
}

// Open opens an input table for reading, returning a MissingFileError on failure.
func Open(table Table, path string) (*os.File, error) {
	f, err := os.Open(path) //nolint:gosec // input paths come from configuration
	if err != nil {
		return nil, &MissingFileError{Table: table, Path: path, Err: err}
	}
	return f, nil
}

// ReadHeader returns the header row of an input table.
func ReadHeader(table Table, path string) ([]string, error) {
	f, err := Open(table, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	header, err := newCSVReader(f).Read()
	if err != nil {
		return nil, headerError(table, path, err)
	}
	return header, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	// Spreadsheet exports often lead with a UTF-8 byte order mark, which would
	// otherwise become part of the first column name.
	cr := csv.NewReader(transform.NewReader(r, unicode.UTF8BOM.NewDecoder()))
	cr.FieldsPerRecord = -1
	return cr
}

func headerError(table Table, path string, err error) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%s table %s: empty file, header row required", table, path)
	}
	return fmt.Errorf("%s table %s: failed to read header: %w", table, path, err)
}

func readCSV(table Table, path string) (*csvTable, error) {
	f, err := Open(table, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := newCSVReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, headerError(table, path, err)
	}

	t := &csvTable{
		name:   table,
		path:   path,
		header: slices.Clone(header),
		index:  make(map[string]int, len(header)),
	}
	for i, col := range t.header {
		if _, dup := t.index[col]; !dup {
			t.index[col] = i
		}
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s table %s: %w", table, path, err)
		}
		line, _ := r.FieldPos(0)
		t.records = append(t.records, rec)
		t.lines = append(t.lines, line)
	}
	return t, nil
}

// text returns the named cell of record i, or "" when the row is short.
func (t *csvTable) text(i int, col string) string {
	idx, ok := t.index[col]
	if !ok || idx >= len(t.records[i]) {
		return ""
	}
	return t.records[i][idx]
}

func (t *csvTable) number(i int, col string) (sql.NullFloat64, error) {
	raw := t.text(i, col)
	v, err := ParseNumber(raw)
	if err != nil {
		return sql.NullFloat64{}, &ParseError{
			Table:  t.name,
			Path:   t.path,
			Line:   t.lines[i],
			Column: col,
			Value:  raw,
			Err:    err,
		}
	}
	return v, nil
}

// numbers reads several numeric cells of record i into dst, in order.
func (t *csvTable) numbers(i int, cols []string, dst ...*sql.NullFloat64) error {
	for j, col := range cols {
		v, err := t.number(i, col)
		if err != nil {
			return err
		}
		*dst[j] = v
	}
	return nil
}

// ParseNumber converts a cell to a nullable float. Empty cells, NA tokens and
// non-finite values are missing; any other non-numeric text is an error.
func ParseNumber(s string) (sql.NullFloat64, error) {
	s = strings.TrimSpace(s)
	if s == "" || slices.Contains(naTokens, s) {
		return sql.NullFloat64{}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullFloat64{}, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}, nil
	}
	return sql.NullFloat64{Float64: f, Valid: true}, nil
}
