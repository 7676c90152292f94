package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/statname/pkg/symtab"
)

const (
	metricEncodesTotal = "statname.table.encodes.total"
	metricFreesTotal   = "statname.table.frees.total"
	metricJoinsTotal   = "statname.table.joins.total"
	metricEncodedBytes = "statname.table.encoded.bytes"
	metricLiveSymbols  = "statname.table.symbols.live"
)

// encodedBytesBoundaries covers single-token names up to the 64 KiB payload
// cap.
var encodedBytesBoundaries = []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 1024, 4096, 16384, 65536}

// TableMetrics holds OTel instruments for one symbol table. The table itself
// stays instrument-free; call sites record through this type.
type TableMetrics struct {
	encodesTotal metric.Int64Counter
	freesTotal   metric.Int64Counter
	joinsTotal   metric.Int64Counter
	encodedBytes metric.Int64Histogram
	liveSymbols  metric.Int64ObservableGauge

	registration metric.Registration
}

// NewTableMetrics creates table metric instruments from the given meter and
// registers a callback polling table.NumSymbols for the live-symbols gauge.
func NewTableMetrics(mt metric.Meter, table *symtab.Table) (*TableMetrics, error) {
	encodes, err := mt.Int64Counter(metricEncodesTotal,
		metric.WithDescription("Total names encoded"),
		metric.WithUnit("{name}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricEncodesTotal, err)
	}

	frees, err := mt.Int64Counter(metricFreesTotal,
		metric.WithDescription("Total names freed"),
		metric.WithUnit("{name}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFreesTotal, err)
	}

	joins, err := mt.Int64Counter(metricJoinsTotal,
		metric.WithDescription("Total names produced by join"),
		metric.WithUnit("{name}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricJoinsTotal, err)
	}

	encBytes, err := mt.Int64Histogram(metricEncodedBytes,
		metric.WithDescription("Encoded size of names, header included"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(encodedBytesBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricEncodedBytes, err)
	}

	live, err := mt.Int64ObservableGauge(metricLiveSymbols,
		metric.WithDescription("Interned tokens currently live"),
		metric.WithUnit("{symbol}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricLiveSymbols, err)
	}

	registration, err := mt.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		observer.ObserveInt64(live, int64(table.NumSymbols()))

		return nil
	}, live)
	if err != nil {
		return nil, fmt.Errorf("register %s callback: %w", metricLiveSymbols, err)
	}

	return &TableMetrics{
		encodesTotal: encodes,
		freesTotal:   frees,
		joinsTotal:   joins,
		encodedBytes: encBytes,
		liveSymbols:  live,
		registration: registration,
	}, nil
}

// RecordEncode records one successful encode and its resulting size.
func (tm *TableMetrics) RecordEncode(ctx context.Context, encodedSize int) {
	tm.encodesTotal.Add(ctx, 1)
	tm.encodedBytes.Record(ctx, int64(encodedSize))
}

// RecordFree records one storage returned to the table.
func (tm *TableMetrics) RecordFree(ctx context.Context) {
	tm.freesTotal.Add(ctx, 1)
}

// RecordJoin records one join and the size of the joined name.
func (tm *TableMetrics) RecordJoin(ctx context.Context, encodedSize int) {
	tm.joinsTotal.Add(ctx, 1)
	tm.encodedBytes.Record(ctx, int64(encodedSize))
}

// Unregister stops the live-symbols polling callback. Call when the observed
// table is discarded before the meter provider shuts down.
func (tm *TableMetrics) Unregister() error {
	err := tm.registration.Unregister()
	if err != nil {
		return fmt.Errorf("unregister live symbols callback: %w", err)
	}

	return nil
}
