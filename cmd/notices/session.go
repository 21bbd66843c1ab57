package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/notice-registry/pkg/session"
	"github.com/hazyhaar/notice-registry/pkg/textnorm"
)

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Accumulate notices pasted one at a time, then export them together",
	}
	cmd.AddCommand(
		a.sessionNewCmd(),
		a.sessionAddCmd(),
		a.sessionExportCmd(),
		a.sessionListCmd(),
		a.sessionClearCmd(),
		a.sessionDeleteCmd(),
	)
	return cmd
}

func (a *app) withStore(fn func(*session.Store) error) error {
	store, err := session.OpenStore(a.cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (a *app) sessionNewCmd() *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a session and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(func(st *session.Store) error {
				sess, err := st.Create(label)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), sess.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "free-form label")
	return cmd
}

func (a *app) sessionAddCmd() *cobra.Command {
	var encoding string
	cmd := &cobra.Command{
		Use:   "add <session-id> [file]",
		Short: "Add a pasted notice (file or stdin) to a session",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 2 {
				path = args[1]
			}
			in, closeIn, err := openInput(cmd, path)
			if err != nil {
				return err
			}
			defer closeIn()
			text, err := textnorm.Decode(in, encoding)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("empty notice")
			}
			return a.withStore(func(st *session.Store) error {
				n, err := st.Add(args[0], text)
				if err != nil {
					return err
				}
				a.logger.Info("session.add", "session_id", args[0], "notices", n)
				fmt.Fprintf(cmd.OutOrStdout(), "%d notice(s) in session\n", n)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&encoding, "encoding", "utf-8", "input encoding")
	return cmd
}

func (a *app) sessionExportCmd() *cobra.Command {
	var (
		output string
		format string
	)
	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Extract every notice of a session into one table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st *session.Store) error {
				texts, err := st.Texts(args[0])
				if err != nil {
					return err
				}
				p, err := a.cfg.Pipeline(a.logger)
				if err != nil {
					return err
				}
				recs := p.Texts(texts)

				if format == "" {
					format = defaultFormat(output)
				}
				out := cmd.OutOrStdout()
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return err
					}
					defer f.Close()
					out = f
				} else if format == "xlsx" {
					return fmt.Errorf("xlsx output requires --output")
				}
				return writeRecords(out, format, recs)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: table, json, csv, xlsx")
	return cmd
}

func (a *app) sessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(func(st *session.Store) error {
				list, err := st.List()
				if err != nil {
					return err
				}
				for _, s := range list {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%s\n",
						s.ID, s.Notices, time.Unix(s.UpdatedAt, 0).Format(time.DateTime), s.Label)
				}
				return nil
			})
		},
	}
}

func (a *app) sessionClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <session-id>",
		Short: "Remove the notices of a session, keeping the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.withStore(func(st *session.Store) error {
				return st.Clear(args[0])
			})
		},
	}
}

func (a *app) sessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.withStore(func(st *session.Store) error {
				return st.Delete(args[0])
			})
		},
	}
}
