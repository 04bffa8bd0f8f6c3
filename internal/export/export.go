// Package export renders records as CSV or XLSX using explicit per-entity
// field accessors, so any subset of fields can be exported by name.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
)

// field reads one named value from a record. Getters return nil, string,
// bool, int, int64, float64 or time.Time.
type field[T any] struct {
	name string
	get  func(T) any
}

// Table is the set of exportable fields of one record type.
type Table[T any] struct {
	sheet    string
	defaults []string
	fields   []field[T]
	index    map[string]int
}

func newTable[T any](sheet string, defaults []string, fields ...field[T]) *Table[T] {
	t := &Table[T]{sheet: sheet, defaults: defaults, fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		t.index[f.name] = i
	}
	return t
}

// Fields lists every exportable field name in declaration order.
func (t *Table[T]) Fields() []string {
	names := make([]string, len(t.fields))
	for i, f := range t.fields {
		names[i] = f.name
	}
	return names
}

// Columns resolves the requested field names, falling back to the table
// defaults when none are given. Unknown names are a validation error.
func (t *Table[T]) Columns(names []string) ([]string, error) {
	if len(names) == 0 {
		return append([]string(nil), t.defaults...), nil
	}
	for _, n := range names {
		if _, ok := t.index[n]; !ok {
			return nil, apperr.Validation("unknown export field %q", n)
		}
	}
	return names, nil
}

// Rows extracts the values of columns from every record.
func (t *Table[T]) Rows(records []T, columns []string) ([][]any, error) {
	cols, err := t.Columns(columns)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = t.fields[t.index[c]].get(rec)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteCSV writes a header row and one line per record to w.
func (t *Table[T]) WriteCSV(w io.Writer, records []T, columns []string) error {
	cols, err := t.Columns(columns)
	if err != nil {
		return err
	}
	rows, err := t.Rows(records, cols)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	line := make([]string, len(cols))
	for _, row := range rows {
		for i, v := range row {
			line[i] = Text(v)
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV returns the CSV rendering as a string.
func (t *Table[T]) CSV(records []T, columns []string) (string, error) {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf, records, columns); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// XLSX renders the records as a single-sheet workbook with a styled header row.
func (t *Table[T]) XLSX(records []T, columns []string) ([]byte, error) {
	cols, err := t.Columns(columns)
	if err != nil {
		return nil, err
	}
	rows, err := t.Rows(records, cols)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(t.sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, name := range cols {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(t.sheet, cell, name); err != nil {
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(t.sheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header %s: %w", cell, err)
		}
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(t.sheet, colName, colName, float64(max(len(name)+4, 14))); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			if ts, ok := v.(time.Time); ok {
				v = ts.UTC().Format(time.RFC3339)
			}
			if err := f.SetCellValue(t.sheet, cell, v); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Text renders a field value as CSV text. Timestamps use RFC 3339.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
