package namestats

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/statname/pkg/safeconv"
)

const percentScale = 100

// RenderText writes the report as a colored summary followed by a token
// frequency table with at most topTokens rows.
func (r *Report) RenderText(w io.Writer, topTokens int) {
	bold := color.New(color.Bold)
	good := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)

	fmt.Fprintf(w, "%s\n", bold.Sprint("Corpus"))
	fmt.Fprintf(w, "  names:           %d (%d distinct)\n", r.Names, r.DistinctNames)
	fmt.Fprintf(w, "  distinct tokens: %d\n", r.DistinctTokens)
	fmt.Fprintf(w, "\n%s\n", bold.Sprint("Storage"))
	fmt.Fprintf(w, "  raw strings:     %s\n", humanize.Bytes(safeconv.MustIntToUint64(r.RawBytes)))
	fmt.Fprintf(w, "  interned:        %s (%s encodings + %s tokens)\n",
		humanize.Bytes(safeconv.MustIntToUint64(r.InternedBytes())),
		humanize.Bytes(safeconv.MustIntToUint64(r.EncodedBytes)),
		humanize.Bytes(safeconv.MustIntToUint64(r.TokenBytes)))
	fmt.Fprintf(w, "  lz4 baseline:    %s\n", humanize.Bytes(safeconv.MustIntToUint64(r.LZ4Bytes)))

	savings := r.SavingsRatio() * percentScale

	savingsColor := good
	if savings <= 0 {
		savingsColor = warn
	}

	fmt.Fprintf(w, "  savings:         %s\n\n", savingsColor.Sprintf("%.1f%%", savings))

	fmt.Fprintln(w, r.tokenTable(topTokens))
}

// tokenTable renders the top token frequencies in the house table style.
func (r *Report) tokenTable(topTokens int) string {
	rows := r.TokenFreq
	if topTokens > 0 && len(rows) > topTokens {
		rows = rows[:topTokens]
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false

	tbl.AppendHeader(table.Row{"#", "Token", "Count"})

	for i, tc := range rows {
		tbl.AppendRow(table.Row{i + 1, tc.Token, tc.Count})
	}

	if len(rows) < len(r.TokenFreq) {
		tbl.AppendFooter(table.Row{"", fmt.Sprintf("(%d more)", len(r.TokenFreq)-len(rows)), ""})
	}

	var sb strings.Builder

	tbl.SetOutputMirror(&sb)
	tbl.Render()

	return sb.String()
}
