package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/notice-registry/pkg/config"
)

var version = "dev"

// app carries what PersistentPreRunE resolved for the subcommands.
type app struct {
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "notices",
		Short: "Extract INHA biography notices into spreadsheet rows",
		Long: `notices splits text pasted from the INHA "Dictionnaire des historiens de l'art"
into one record per person and extracts name, life span, notice author,
profession, other activities and study subjects.

Configuration hierarchy (highest to lowest priority):
  1. CLI flags
  2. Environment variables (NOTICES_*)
  3. Config file (--config, or ./notices.yaml)
  4. Defaults`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.Logger(cmd.ErrOrStderr())
			slog.SetDefault(a.logger)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ./notices.yaml if present)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("vocabulary", "", "YAML label vocabulary (default: built-in)")
	pf.String("db", "", "session database path")

	root.AddCommand(
		newExtractCmd(a),
		newDatesCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newSessionCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "notices %s\n", version)
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// openInput opens path, or the command's input for "" and "-".
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
