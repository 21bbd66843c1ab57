// Package sheet renders notice records as spreadsheets and converts date
// columns of existing workbooks.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/hazyhaar/notice-registry/pkg/notice"
)

// DefaultSheet is the worksheet name of exported notices.
const DefaultSheet = "Notice"

// widths per column, aligned with notice.Columns.
var widths = []float64{28, 16, 16, 20, 16, 20, 26, 40, 40, 40}

type options struct {
	sheet string
}

// Option configures WriteRecords.
type Option func(*options)

// WithSheetName overrides the worksheet name.
func WithSheetName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.sheet = name
		}
	}
}

// WriteRecords writes recs as an XLSX workbook: one header row with
// notice.Columns, then one row per record.
func WriteRecords(w io.Writer, recs []notice.Record, opts ...Option) error {
	o := options{sheet: DefaultSheet}
	for _, fn := range opts {
		fn(&o)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", o.sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(o.sheet)
	if err != nil {
		return fmt.Errorf("sheet index: %w", err)
	}
	f.SetActiveSheet(idx)

	header := make([]any, len(notice.Columns))
	for i, c := range notice.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(o.sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range recs {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := make([]any, 0, len(notice.Fields))
		for _, v := range r.Row() {
			row = append(row, v)
		}
		if err := f.SetSheetRow(o.sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := styleHeader(f, o.sheet); err != nil {
		return err
	}
	for i, wd := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(o.sheet, col, col, wd)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(notice.Columns), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// WriteCSV writes the same table as WriteRecords in CSV.
func WriteCSV(w io.Writer, recs []notice.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(notice.Columns); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, r := range recs {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
