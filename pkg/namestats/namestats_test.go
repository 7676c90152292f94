package namestats_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/statname/pkg/namestats"
	"github.com/Sumatoshi-tech/statname/pkg/symtab"
)

var testLimits = namestats.Limits{MaxNames: 1000, MaxNameLength: 256}

func TestReadNames_SkipsBlanksAndComments(t *testing.T) {
	t.Parallel()

	input := `
cluster.cx.total
# a comment

cluster.cx.active
`

	names, err := namestats.ReadNames(strings.NewReader(input), testLimits)
	require.NoError(t, err)

	assert.Equal(t, []string{"cluster.cx.total", "cluster.cx.active"}, names)
}

func TestReadNames_TooMany(t *testing.T) {
	t.Parallel()

	input := "a\nb\nc\n"

	_, err := namestats.ReadNames(strings.NewReader(input), namestats.Limits{MaxNames: 2, MaxNameLength: 256})
	require.ErrorIs(t, err, namestats.ErrTooManyNames)
}

func TestReadNames_NameTooLong(t *testing.T) {
	t.Parallel()

	input := strings.Repeat("x", 300)

	_, err := namestats.ReadNames(strings.NewReader(input), testLimits)
	require.ErrorIs(t, err, namestats.ErrNameTooLong)
}

func TestAnalyze_CountsAndFrequencies(t *testing.T) {
	t.Parallel()

	table := symtab.New()

	names := []string{
		"http.rq.total",
		"http.rq.active",
		"http.cx.total",
		"http.rq.total", // Duplicate.
	}

	report, err := namestats.Analyze(names, table)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Names)
	assert.Equal(t, 3, report.DistinctNames)
	assert.Equal(t, 5, report.DistinctTokens, "http, rq, active, cx, total")

	require.NotEmpty(t, report.TokenFreq)
	assert.Equal(t, "http", report.TokenFreq[0].Token)
	assert.Equal(t, uint32(3), report.TokenFreq[0].Count)

	// The analysis must leave the table as it found it.
	assert.Zero(t, table.NumSymbols())
}

func TestAnalyze_ByteAccounting(t *testing.T) {
	t.Parallel()

	table := symtab.New()

	report, err := namestats.Analyze([]string{"aa.bb", "aa.cc"}, table)
	require.NoError(t, err)

	assert.Equal(t, 10, report.RawBytes, "two five-byte names")

	// Three tokens, all single-byte symbols: each name is two header bytes
	// plus two payload bytes.
	assert.Equal(t, 8, report.EncodedBytes)
	assert.Equal(t, 6, report.TokenBytes, "aa + bb + cc")
	assert.Equal(t, 14, report.InternedBytes())
	assert.Positive(t, report.LZ4Bytes)
}

func TestAnalyze_EmptyCorpus(t *testing.T) {
	t.Parallel()

	table := symtab.New()

	report, err := namestats.Analyze(nil, table)
	require.NoError(t, err)

	assert.Zero(t, report.Names)
	assert.Zero(t, report.DistinctNames)
	assert.Zero(t, report.LZ4Bytes)
	assert.Zero(t, report.SavingsRatio())
}

func TestAnalyze_SavingsOnRepetitiveCorpus(t *testing.T) {
	t.Parallel()

	table := symtab.New()

	// Many long names over a tiny token alphabet: the sweet spot for
	// interning.
	var names []string
	for _, a := range []string{"cluster", "listener", "server"} {
		for _, b := range []string{"upstream", "downstream"} {
			for _, c := range []string{"connections", "requests", "retries"} {
				names = append(names, a+"."+b+"."+c+".total")
			}
		}
	}

	report, err := namestats.Analyze(names, table)
	require.NoError(t, err)

	assert.Equal(t, 18, report.DistinctNames)
	assert.Equal(t, 9, report.DistinctTokens)
	assert.Positive(t, report.SavingsRatio())
}

func TestRenderText_ContainsSummary(t *testing.T) {
	t.Parallel()

	table := symtab.New()

	report, err := namestats.Analyze([]string{"a.b", "a.c"}, table)
	require.NoError(t, err)

	var sb strings.Builder

	report.RenderText(&sb, 10)

	out := sb.String()

	assert.Contains(t, out, "Corpus")
	assert.Contains(t, out, "2 distinct")
	assert.Contains(t, out, "TOKEN")
	assert.Contains(t, out, "a")
}

func TestWriteChart_ProducesHTML(t *testing.T) {
	t.Parallel()

	table := symtab.New()

	report, err := namestats.Analyze([]string{"x.y", "x.z"}, table)
	require.NoError(t, err)

	var sb strings.Builder

	require.NoError(t, report.WriteChart(&sb, "Tokens", "test corpus", 10))

	out := sb.String()

	assert.Contains(t, out, "<html>")
	assert.Contains(t, out, "echarts")
}
