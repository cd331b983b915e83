package catalog

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

const (
	DefaultSubjectColumn = "Study Number"
	DefaultOffsetColumn  = "Start ah"
)

var (
	// ErrMissingColumn reports that a required column is absent from the header.
	ErrMissingColumn = errors.New("missing column")
	// ErrUnsupportedFormat reports a manifest extension Load cannot read.
	ErrUnsupportedFormat = errors.New("unsupported manifest format")
	// ErrEmptyManifest reports a manifest without a header row.
	ErrEmptyManifest = errors.New("manifest has no header row")
)

// Options selects the columns and sheet to read.
type Options struct {
	SubjectColumn string
	OffsetColumn  string
	// Sheet names the XLSX worksheet; empty selects the first sheet.
	Sheet string
}

// Row is one manifest entry.
type Row struct {
	// Index is the 0-based position among returned rows.
	Index int
	// Line is the 1-based line (or spreadsheet row) the entry came from.
	Line    int
	Subject Subject
	// Offset is the annotated start in seconds; valid only when HasOffset is true.
	Offset    float64
	HasOffset bool
	// OffsetErr is set when the offset cell is present but not a usable number.
	OffsetErr error
}

// Load reads the manifest at path. The format is chosen by extension.
func Load(path string, opts Options) ([]Row, error) {
	opts = opts.withDefaults()

	var (
		table [][]string
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		table, err = readDelimited(path, ',')
	case ".tsv", ".tab":
		table, err = readDelimited(path, '\t')
	case ".xlsx", ".xlsm":
		table, err = readWorkbook(path, opts.Sheet)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}

	rows, err := fromTable(table, opts)
	if err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", path, err)
	}
	return rows, nil
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.SubjectColumn) == "" {
		o.SubjectColumn = DefaultSubjectColumn
	}
	if strings.TrimSpace(o.OffsetColumn) == "" {
		o.OffsetColumn = DefaultOffsetColumn
	}
	return o
}

func fromTable(table [][]string, opts Options) ([]Row, error) {
	if len(table) == 0 {
		return nil, ErrEmptyManifest
	}
	header := table[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	subjectIdx, err := columnIndex(header, opts.SubjectColumn)
	if err != nil {
		return nil, err
	}
	offsetIdx, err := columnIndex(header, opts.OffsetColumn)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(table)-1)
	for i, record := range table[1:] {
		if emptyLine(record) {
			continue
		}
		row := Row{
			Index:   len(rows),
			Line:    i + 2,
			Subject: ParseSubject(cell(record, subjectIdx)),
		}
		row.Offset, row.HasOffset, row.OffsetErr = parseOffset(cell(record, offsetIdx))
		rows = append(rows, row)
	}
	return rows, nil
}

// columnIndex finds name in header, preferring an exact match and falling
// back to a case-folded, whitespace-trimmed comparison.
func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if h == name {
			return i, nil
		}
	}
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(name))
	for i, h := range header {
		if fold.String(strings.TrimSpace(h)) == want {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w %q", ErrMissingColumn, name)
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// emptyLine reports a line with no cells at all. A line of bare delimiters
// still has cells and is kept as a row with a blank subject and offset.
func emptyLine(record []string) bool {
	return len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "")
}

var nullTokens = map[string]struct{}{
	"":     {},
	"nan":  {},
	"na":   {},
	"n/a":  {},
	"null": {},
	"none": {},
}

// IsNull reports whether a manifest cell should be treated as missing.
func IsNull(value string) bool {
	_, ok := nullTokens[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

func parseOffset(raw string) (float64, bool, error) {
	if IsNull(raw) {
		return 0, false, nil
	}
	trimmed := strings.TrimSpace(raw)
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, true, fmt.Errorf("offset %q is not a number", trimmed)
	}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, true, fmt.Errorf("offset %q is not finite", trimmed)
	}
	return value, true, nil
}
