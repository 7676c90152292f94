// Package commands implements CLI command handlers for statname.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/statname/pkg/config"
	"github.com/Sumatoshi-tech/statname/pkg/namestats"
	"github.com/Sumatoshi-tech/statname/pkg/symtab"
)

const jsonIndent = "  "

// CompressCommand holds configuration for the compress command.
type CompressCommand struct {
	configPath string
	format     string
	topTokens  int
	noColor    bool
}

// NewCompressCommand creates the compress cobra command.
func NewCompressCommand() *cobra.Command {
	cc := &CompressCommand{}

	cmd := &cobra.Command{
		Use:   "compress <file|->",
		Short: "Analyze a metric-name corpus and report compression statistics",
		Long: `Reads newline-separated metric names, interns them into a symbol table,
and reports the interned footprint against raw strings and an LZ4 baseline.

Examples:
  statname compress names.txt
  statname compress - < names.txt
  statname compress --format json names.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cc.run(cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&cc.configPath, "config", "", "path to statname.yaml")
	cmd.Flags().StringVar(&cc.format, "format", "", "output format: table, json, yaml (default from config)")
	cmd.Flags().IntVar(&cc.topTokens, "top", 0, "token rows to show (default from config)")
	cmd.Flags().BoolVar(&cc.noColor, "no-color", false, "disable colored output")

	return cmd
}

func (cc *CompressCommand) run(cmd *cobra.Command, inputPath string) error {
	cfg, err := config.LoadConfig(cc.configPath)
	if err != nil {
		return err
	}

	applyReportFlags(&cfg.Report, cc.format, cc.topTokens, cc.noColor)

	report, err := analyzeInput(cmd.InOrStdin(), inputPath, cfg)
	if err != nil {
		return err
	}

	return writeReport(cmd.OutOrStdout(), report, cfg.Report)
}

// applyReportFlags lets explicit flags override the config file.
func applyReportFlags(rc *config.ReportConfig, format string, topTokens int, noColor bool) {
	if format != "" {
		rc.Format = format
	}

	if topTokens > 0 {
		rc.TopTokens = topTokens
	}

	if noColor {
		rc.NoColor = true
	}
}

// readInput reads the corpus from a file or stdin ("-").
func readInput(stdin io.Reader, inputPath string, cfg *config.Config) ([]string, error) {
	reader := stdin

	if inputPath != "-" {
		f, err := os.Open(inputPath)
		if err != nil {
			return nil, fmt.Errorf("open corpus: %w", err)
		}
		defer f.Close()

		reader = f
	}

	names, err := namestats.ReadNames(reader, namestats.Limits{
		MaxNames:      cfg.Corpus.MaxNames,
		MaxNameLength: cfg.Corpus.MaxNameLength,
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}

// analyzeInput reads the corpus and analyzes it against a fresh table.
func analyzeInput(stdin io.Reader, inputPath string, cfg *config.Config) (*namestats.Report, error) {
	names, err := readInput(stdin, inputPath, cfg)
	if err != nil {
		return nil, err
	}

	return namestats.Analyze(names, symtab.New())
}

func writeReport(w io.Writer, report *namestats.Report, rc config.ReportConfig) error {
	switch rc.Format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", jsonIndent)

		err := enc.Encode(report)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}

	case config.FormatYAML:
		err := yaml.NewEncoder(w).Encode(report)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}

	default:
		if rc.NoColor {
			color.NoColor = true //nolint:reassign // intentional override of library global
		}

		report.RenderText(w, rc.TopTokens)
	}

	return nil
}
