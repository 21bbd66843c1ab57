package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hazyhaar/notice-registry/pkg/notice"
	"github.com/hazyhaar/notice-registry/pkg/sheet"
	"github.com/hazyhaar/notice-registry/pkg/textnorm"
)

type extractOptions struct {
	limit    int
	single   bool
	format   string
	output   string
	encoding string
}

func newExtractCmd(a *app) *cobra.Command {
	o := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract records from pasted notice text",
		Long: `Read notice text from a file (or stdin) and print one row per record.

Formats: table (default on a terminal), json, csv, xlsx. xlsx requires --output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return a.runExtract(cmd, path, o)
		},
	}
	f := cmd.Flags()
	f.IntVarP(&o.limit, "limit", "n", 0, "maximum number of records (0 = all)")
	f.BoolVar(&o.single, "single", false, "treat the whole input as one notice")
	f.StringVarP(&o.format, "format", "f", "", "output format: table, json, csv, xlsx")
	f.StringVarP(&o.output, "output", "o", "", "output file (default: stdout)")
	f.StringVar(&o.encoding, "encoding", "utf-8", "input encoding (e.g. windows-1252)")
	f.Bool("normalize-dates", true, "rewrite parseable dates as DD/MM/YYYY")
	return cmd
}

func (a *app) runExtract(cmd *cobra.Command, path string, o *extractOptions) error {
	in, closeIn, err := openInput(cmd, path)
	if err != nil {
		return err
	}
	defer closeIn()

	text, err := textnorm.Decode(in, o.encoding)
	if err != nil {
		return err
	}

	p, err := a.cfg.Pipeline(a.logger)
	if err != nil {
		return err
	}
	var recs []notice.Record
	if o.single {
		recs = []notice.Record{p.Single(text)}
	} else {
		recs = p.Rows(text, o.limit)
	}
	if len(recs) == 0 {
		a.logger.Warn("no records found", "hint", "records start with an uppercase NAME, followed by a comma")
	}

	format := o.format
	if format == "" {
		format = defaultFormat(o.output)
	}

	out := cmd.OutOrStdout()
	if o.output != "" {
		f, err := os.Create(o.output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	} else if format == "xlsx" {
		return fmt.Errorf("xlsx output requires --output")
	}

	if err := writeRecords(out, format, recs); err != nil {
		return err
	}
	a.logger.Info("extract.done", "records", len(recs), "format", format, "output", o.output)
	return nil
}

func defaultFormat(output string) string {
	switch {
	case strings.HasSuffix(output, ".xlsx"):
		return "xlsx"
	case strings.HasSuffix(output, ".csv"):
		return "csv"
	case strings.HasSuffix(output, ".json"):
		return "json"
	case output == "" && term.IsTerminal(int(os.Stdout.Fd())):
		return "table"
	}
	return "json"
}

func writeRecords(w io.Writer, format string, recs []notice.Record) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if recs == nil {
			recs = []notice.Record{}
		}
		return enc.Encode(recs)
	case "csv":
		return sheet.WriteCSV(w, recs)
	case "xlsx":
		return sheet.WriteRecords(w, recs)
	case "table":
		_, err := fmt.Fprintln(w, renderTable(recs))
		return err
	}
	return fmt.Errorf("unknown format %q (want table, json, csv or xlsx)", format)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1).MaxWidth(42)

func renderTable(recs []notice.Record) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(notice.Columns...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range recs {
		t.Row(r.Row()...)
	}
	return t.String()
}
