package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/statname/pkg/config"
)

// RenderCommand holds configuration for the render command.
type RenderCommand struct {
	configPath string
	outputPath string
	topTokens  int
	title      string
}

// NewRenderCommand creates the render cobra command.
func NewRenderCommand() *cobra.Command {
	rc := &RenderCommand{}

	cmd := &cobra.Command{
		Use:   "render <file|->",
		Short: "Render a token-frequency bar chart as a standalone HTML page",
		Long: `Analyzes a metric-name corpus and writes an HTML page charting the most
frequent tokens.

Examples:
  statname render names.txt -o tokens.html
  statname render - -o tokens.html < names.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.run(cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&rc.configPath, "config", "", "path to statname.yaml")
	cmd.Flags().StringVarP(&rc.outputPath, "output", "o", "tokens.html", "output HTML file")
	cmd.Flags().IntVar(&rc.topTokens, "top", 0, "tokens to chart (default from config)")
	cmd.Flags().StringVar(&rc.title, "title", "", "chart title (default from config)")

	return cmd
}

func (rc *RenderCommand) run(cmd *cobra.Command, inputPath string) error {
	cfg, err := config.LoadConfig(rc.configPath)
	if err != nil {
		return err
	}

	if rc.topTokens > 0 {
		cfg.Report.TopTokens = rc.topTokens
	}

	if rc.title != "" {
		cfg.Chart.Title = rc.title
	}

	report, err := analyzeInput(cmd.InOrStdin(), inputPath, cfg)
	if err != nil {
		return err
	}

	out, err := os.Create(rc.outputPath)
	if err != nil {
		return fmt.Errorf("create chart output: %w", err)
	}
	defer out.Close()

	err = report.WriteChart(out, cfg.Chart.Title, cfg.Chart.Subtitle, cfg.Report.TopTokens)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", rc.outputPath)

	return nil
}
