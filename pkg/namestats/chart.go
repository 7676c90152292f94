package namestats

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartWidth  = "1100px"
	chartHeight = "550px"
	xAxisRotate = 60
)

// WriteChart renders the top-N token frequencies as a standalone HTML bar
// chart page.
func (r *Report) WriteChart(w io.Writer, title, subtitle string, topTokens int) error {
	rows := r.TokenFreq
	if topTokens > 0 && len(rows) > topTokens {
		rows = rows[:topTokens]
	}

	labels := make([]string, len(rows))
	data := make([]opts.BarData, len(rows))

	for i, tc := range rows {
		labels[i] = tc.Token
		data[i] = opts.BarData{Value: tc.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: xAxisRotate, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Occurrences"}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("tokens", data)

	err := bar.Render(w)
	if err != nil {
		return fmt.Errorf("render token chart: %w", err)
	}

	return nil
}
