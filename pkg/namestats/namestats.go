// Package namestats analyzes a corpus of hierarchical metric names and
// reports how much memory symbol-table interning saves over raw strings,
// alongside an LZ4 block-compression baseline for comparison.
package namestats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/statname/pkg/symtab"
)

// Sentinel errors for corpus ingestion.
var (
	// ErrTooManyNames is returned when the corpus exceeds the configured cap.
	ErrTooManyNames = errors.New("namestats: too many names")

	// ErrNameTooLong is returned when a single input line exceeds the
	// configured cap.
	ErrNameTooLong = errors.New("namestats: name too long")
)

// Limits bounds corpus ingestion.
type Limits struct {
	// MaxNames caps the number of names read; blank and comment lines do
	// not count.
	MaxNames int

	// MaxNameLength caps the byte length of one name.
	MaxNameLength int
}

// ReadNames reads newline-separated metric names from r. Blank lines and
// lines starting with '#' are skipped.
func ReadNames(r io.Reader, limits Limits) ([]string, error) {
	var names []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), max(limits.MaxNameLength+1, bufio.MaxScanTokenSize))

	line := 0

	for scanner.Scan() {
		line++

		name := strings.TrimSpace(scanner.Text())
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}

		if len(name) > limits.MaxNameLength {
			return nil, fmt.Errorf("%w: line %d is %d bytes", ErrNameTooLong, line, len(name))
		}

		if len(names) >= limits.MaxNames {
			return nil, fmt.Errorf("%w: more than %d", ErrTooManyNames, limits.MaxNames)
		}

		names = append(names, name)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read names: %w", err)
	}

	return names, nil
}

// TokenCount is one token's occurrence count across the distinct corpus.
type TokenCount struct {
	Token string `json:"token" yaml:"token"`
	Count uint32 `json:"count" yaml:"count"`
}

// Report summarizes the compression characteristics of one corpus.
type Report struct {
	// Names is the total number of input names, duplicates included.
	Names int `json:"names" yaml:"names"`

	// DistinctNames is the number of unique names.
	DistinctNames int `json:"distinct_names" yaml:"distinct_names"`

	// DistinctTokens is the number of unique "."-separated tokens.
	DistinctTokens int `json:"distinct_tokens" yaml:"distinct_tokens"`

	// RawBytes is the string storage for the distinct names.
	RawBytes int `json:"raw_bytes" yaml:"raw_bytes"`

	// EncodedBytes is the per-name storage after interning: two header
	// bytes plus the symbol payload, per distinct name.
	EncodedBytes int `json:"encoded_bytes" yaml:"encoded_bytes"`

	// TokenBytes is the one-time token string storage held by the table.
	TokenBytes int `json:"token_bytes" yaml:"token_bytes"`

	// LZ4Bytes is the LZ4 block size of the newline-joined distinct
	// corpus: what a generic byte compressor achieves on the same data.
	LZ4Bytes int `json:"lz4_bytes" yaml:"lz4_bytes"`

	// TokenFreq lists tokens by descending occurrence count.
	TokenFreq []TokenCount `json:"token_freq" yaml:"token_freq"`
}

// InternedBytes is the total interned footprint: per-name encodings plus the
// shared token strings.
func (r *Report) InternedBytes() int {
	return r.EncodedBytes + r.TokenBytes
}

// SavingsRatio is the fraction of raw string storage saved by interning.
func (r *Report) SavingsRatio() float64 {
	if r.RawBytes == 0 {
		return 0
	}

	return 1 - float64(r.InternedBytes())/float64(r.RawBytes)
}

// Analyze encodes every name into table and measures the result. The table
// must be empty: token counts are read from the table's live state. All
// symbol references taken during analysis are released before returning.
func Analyze(names []string, table *symtab.Table) (*Report, error) {
	report := &Report{Names: len(names)}

	set := symtab.NewStorageSet()
	defer set.Free(table)

	for _, name := range names {
		storage, err := table.Encode(name)
		if err != nil {
			return nil, fmt.Errorf("analyze corpus: %w", err)
		}

		if _, inserted := set.Insert(storage); !inserted {
			storage.Free(table)

			continue
		}

		report.DistinctNames++
		report.RawBytes += len(name)
		report.EncodedBytes += storage.Name().Size()
	}

	for _, info := range table.Snapshot() {
		report.DistinctTokens++
		report.TokenBytes += len(info.Token)
		report.TokenFreq = append(report.TokenFreq, TokenCount{Token: info.Token, Count: info.RefCount})
	}

	sort.SliceStable(report.TokenFreq, func(i, j int) bool {
		return report.TokenFreq[i].Count > report.TokenFreq[j].Count
	})

	report.LZ4Bytes = lz4Baseline(names)

	return report, nil
}

// lz4Baseline compresses the distinct corpus as one newline-joined block.
// Incompressible input is charged at its raw size.
func lz4Baseline(names []string) int {
	seen := make(map[string]struct{}, len(names))
	distinct := make([]string, 0, len(names))

	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}
		distinct = append(distinct, name)
	}

	src := []byte(strings.Join(distinct, "\n"))
	if len(src) == 0 {
		return 0
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(src)))

	written, err := lz4.CompressBlock(src, compressed, nil)
	if err != nil || written == 0 {
		return len(src)
	}

	return written
}
