package sheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hazyhaar/notice-registry/pkg/datenorm"
)

// ErrUnknownColumn is returned when a requested column is not in the header row.
var ErrUnknownColumn = errors.New("unknown column")

// Stats summarizes a conversion.
type Stats struct {
	Sheet     string `json:"sheet"`
	Rows      int    `json:"rows"`
	Converted int    `json:"converted"`
	Invalid   int    `json:"invalid"`
	Blank     int    `json:"blank"`
}

// Headers returns the header row of the first worksheet.
func Headers(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := firstSheet(f)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ConvertDateColumns rewrites every cell below the header in the given
// columns of the first worksheet as DD/MM/YYYY. Cells that cannot be read
// become datenorm.Invalid; blank cells stay blank. A nil n uses the default
// Normalizer.
func ConvertDateColumns(r io.Reader, w io.Writer, columns []string, n *datenorm.Normalizer) (Stats, error) {
	if n == nil {
		n = datenorm.New()
	}
	if len(columns) == 0 {
		return Stats{}, fmt.Errorf("%w: no column selected", ErrUnknownColumn)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return Stats{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	st := Stats{Sheet: firstSheet(f)}
	rows, err := f.GetRows(st.Sheet)
	if err != nil {
		return st, fmt.Errorf("read %s: %w", st.Sheet, err)
	}
	if len(rows) == 0 {
		return st, fmt.Errorf("%w: %s has no header row", ErrUnknownColumn, st.Sheet)
	}

	targets, err := columnIndexes(rows[0], columns)
	if err != nil {
		return st, err
	}
	raw, err := f.GetRows(st.Sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return st, fmt.Errorf("read %s: %w", st.Sheet, err)
	}
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	for i, row := range rows[1:] {
		st.Rows++
		for _, col := range targets {
			if col >= len(row) || strings.TrimSpace(row[col]) == "" {
				st.Blank++
				continue
			}
			var out string
			if t, ok := serialDate(row[col], cellAt(raw, i+1, col), date1904); ok {
				out = t.Format(datenorm.Layout)
			} else {
				out = n.Normalize(row[col], datenorm.Sentinel)
			}
			if out == datenorm.Invalid {
				st.Invalid++
			} else {
				st.Converted++
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellStr(st.Sheet, cell, out); err != nil {
				return st, fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return st, fmt.Errorf("xlsx write: %w", err)
	}
	return st, nil
}

// serialDate reports whether a cell holds a native Excel date: a numeric
// stored value shown through a number format. A plain number such as a bare
// year displays as itself and is left to the Normalizer.
func serialDate(display, raw string, date1904 bool) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == strings.TrimSpace(display) {
		return time.Time{}, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(v, date1904)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func cellAt(rows [][]string, r, c int) string {
	if r >= len(rows) || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}

func firstSheet(f *excelize.File) string {
	if list := f.GetSheetList(); len(list) > 0 {
		return list[0]
	}
	return "Sheet1"
}

func columnIndexes(header, columns []string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	var out []int
	for _, c := range columns {
		i, ok := pos[strings.TrimSpace(c)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
		out = append(out, i)
	}
	return out, nil
}
