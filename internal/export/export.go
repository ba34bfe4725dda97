// Package export serializes whole collections as JSON, CSV or XLSX for
// the admin export endpoint.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"studiosite/internal/apperr"
)

// Format is an export file format.
type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// listSeparator joins list values into a single CSV or XLSX cell.
const listSeparator = "; "

// ParseFormat validates a format name; empty selects JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return JSON, nil
	case JSON, CSV, XLSX:
		return f, nil
	default:
		return "", apperr.Invalidf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv; charset=utf-8"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json; charset=utf-8"
	}
}

// Filename returns the attachment name for an export of name taken at now,
// e.g. "portfolio-2026-03-09.csv".
func Filename(name string, f Format, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", name, now.Format("2006-01-02"), f)
}

// Write encodes docs, a slice of JSON-serializable documents, to w.
func Write(w io.Writer, f Format, sheet string, docs any) error {
	switch f {
	case CSV:
		header, rows, err := Table(docs)
		if err != nil {
			return err
		}
		return writeCSV(w, header, rows)
	case XLSX:
		header, rows, err := Table(docs)
		if err != nil {
			return err
		}
		return writeXLSX(w, sheet, header, rows)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}
}

// Table flattens docs into a header and rows. The header holds the first
// document's JSON field names in serialization order; every row lists its
// document's values in header order. Lists are joined with "; ", nested
// objects are kept as JSON and nulls become empty cells.
func Table(docs any) ([]string, [][]string, error) {
	raw, err := json.Marshal(docs)
	if err != nil {
		return nil, nil, fmt.Errorf("export: marshal: %w", err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil, fmt.Errorf("export: documents must be a list: %w", err)
	}

	var header []string
	rows := make([][]string, 0, len(items))
	for i, item := range items {
		keys, values, err := fields(item)
		if err != nil {
			return nil, nil, fmt.Errorf("export: document %d: %w", i, err)
		}
		if i == 0 {
			header = keys
		}
		row := make([]string, len(header))
		for j, k := range header {
			row[j] = values[k]
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// fields returns the keys of a JSON object in document order and their
// cell values.
func fields(obj json.RawMessage) ([]string, map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(obj))
	dec.UseNumber()

	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, nil, fmt.Errorf("expected a JSON object")
	}

	var keys []string
	values := make(map[string]string)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)

		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values[key] = cell(v)
	}
	return keys, values, nil
}

// cell renders one JSON value as text.
func cell(v json.RawMessage) string {
	var x any
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	if err := dec.Decode(&x); err != nil {
		return string(v)
	}

	switch t := x.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			b, _ := json.Marshal(e)
			parts[i] = cell(b)
		}
		return strings.Join(parts, listSeparator)
	default:
		return string(v)
	}
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if len(header) > 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("export: csv header: %w", err)
		}
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("export: csv rows: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, sheet string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Export"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("export: xlsx sheet: %w", err)
	}

	setRow := func(n int, values []string) error {
		cellName, err := excelize.CoordinatesToCellName(1, n)
		if err != nil {
			return err
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = v
		}
		return f.SetSheetRow(sheet, cellName, &row)
	}

	if len(header) > 0 {
		if err := setRow(1, header); err != nil {
			return fmt.Errorf("export: xlsx header: %w", err)
		}
		if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return fmt.Errorf("export: xlsx panes: %w", err)
		}
	}
	for i, r := range rows {
		if err := setRow(i+2, r); err != nil {
			return fmt.Errorf("export: xlsx row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: xlsx write: %w", err)
	}
	return nil
}
