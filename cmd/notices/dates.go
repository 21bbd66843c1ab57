package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/notice-registry/pkg/datenorm"
	"github.com/hazyhaar/notice-registry/pkg/sheet"
)

func newDatesCmd(a *app) *cobra.Command {
	var policy string
	cmd := &cobra.Command{
		Use:   "dates [value...]",
		Short: "Normalize date expressions to DD/MM/YYYY",
		Long: `Normalize each argument, or each stdin line when no argument is given.

  notices dates "26 février 1781" "1er mars 1900"
  notices dates convert registre.xlsx --columns "Date naissance,Date décès" -o out.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := datenorm.ParsePolicy(policy)
			if err != nil {
				return err
			}
			n := a.cfg.Normalizer()
			out := cmd.OutOrStdout()

			if len(args) > 0 {
				for _, v := range args {
					fmt.Fprintln(out, n.Normalize(v, p))
				}
				return nil
			}
			sc := bufio.NewScanner(cmd.InOrStdin())
			for sc.Scan() {
				fmt.Fprintln(out, n.Normalize(sc.Text(), p))
			}
			return sc.Err()
		},
	}
	cmd.Flags().StringVar(&policy, "policy", "passthrough", "on failure: passthrough (keep input) or sentinel (DATE_INVALID)")
	cmd.PersistentFlags().String("partial-dates", "", "month or year only dates: keep or first_day")

	cmd.AddCommand(newDatesConvertCmd(a), newDatesColumnsCmd())
	return cmd
}

func newDatesConvertCmd(a *app) *cobra.Command {
	var (
		columns []string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "convert <workbook.xlsx>",
		Short: "Convert date columns of a workbook; unreadable cells become DATE_INVALID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = "dates_converties.xlsx"
			}
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			out, err := os.Create(output)
			if err != nil {
				return err
			}
			defer out.Close()

			st, err := sheet.ConvertDateColumns(in, out, columns, a.cfg.Normalizer())
			if err != nil {
				os.Remove(output)
				return err
			}
			a.logger.Info("dates.convert",
				"input", args[0],
				"output", output,
				"sheet", st.Sheet,
				"rows", st.Rows,
				"converted", st.Converted,
				"invalid", st.Invalid,
				"blank", st.Blank,
			)
			fmt.Fprintf(cmd.OutOrStdout(), "%d converted, %d marked %s, written to %s\n",
				st.Converted, st.Invalid, datenorm.Invalid, output)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "header names of the date columns (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output workbook (default dates_converties.xlsx)")
	_ = cmd.MarkFlagRequired("columns")
	return cmd
}

func newDatesColumnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <workbook.xlsx>",
		Short: "List the header row of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			headers, err := sheet.Headers(in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(headers, "\n"))
			return nil
		},
	}
}
