package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/statname/pkg/config"
	"github.com/Sumatoshi-tech/statname/pkg/observability"
	"github.com/Sumatoshi-tech/statname/pkg/symtab"
	"github.com/Sumatoshi-tech/statname/pkg/version"
)

const (
	defaultBenchWorkers = 8
	defaultBenchRounds  = 10_000

	metricsReadTimeout = 5 * time.Second
)

// ErrLiveSymbolsAfterBench indicates the workload did not return the table
// to empty: an encode/free imbalance in the bench itself.
var ErrLiveSymbolsAfterBench = errors.New("live symbols remain after bench")

// BenchCommand holds configuration for the bench command.
type BenchCommand struct {
	configPath string
	workers    int
	rounds     int
	listen     string
}

// NewBenchCommand creates the bench cobra command.
func NewBenchCommand() *cobra.Command {
	bc := &BenchCommand{}

	cmd := &cobra.Command{
		Use:   "bench <file|->",
		Short: "Run a concurrent encode/free workload over a corpus",
		Long: `Drives the symbol table with concurrent workers that repeatedly encode
and free names from the corpus, recording telemetry along the way.

Examples:
  statname bench names.txt
  statname bench --workers 16 --rounds 50000 names.txt
  statname bench --listen :9090 names.txt    # serve /metrics while running`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return bc.run(cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&bc.configPath, "config", "", "path to statname.yaml")
	cmd.Flags().IntVar(&bc.workers, "workers", defaultBenchWorkers, "concurrent workers")
	cmd.Flags().IntVar(&bc.rounds, "rounds", defaultBenchRounds, "encode/free rounds per worker")
	cmd.Flags().StringVar(&bc.listen, "listen", "", "address to serve Prometheus /metrics on (overrides config)")

	return cmd
}

func (bc *BenchCommand) run(cmd *cobra.Command, inputPath string) error {
	cfg, err := config.LoadConfig(bc.configPath)
	if err != nil {
		return err
	}

	metricsAddr := cfg.Observability.MetricsAddr
	if bc.listen != "" {
		metricsAddr = bc.listen
	}

	names, err := readInput(cmd.InOrStdin(), inputPath, cfg)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		return errors.New("bench: empty corpus")
	}

	providers, err := observability.Init(observability.Config{
		ServiceName:      "statname",
		ServiceVersion:   version.Version,
		Mode:             observability.ModeBench,
		OTLPEndpoint:     cfg.Observability.OTLPEndpoint,
		OTLPInsecure:     cfg.Observability.OTLPInsecure,
		EnablePrometheus: metricsAddr != "",
		SampleRatio:      cfg.Observability.SampleRatio,
		LogLevel:         parseLogLevel(cfg.Observability.LogLevel),
		LogJSON:          cfg.Observability.LogJSON,
	})
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Error("telemetry shutdown", slog.Any("error", shutdownErr))
		}
	}()

	stopMetrics := bc.serveMetrics(metricsAddr, providers)
	defer stopMetrics()

	return bc.runWorkload(cmd.Context(), names, providers)
}

// serveMetrics exposes the Prometheus handler, returning a stop function.
// A no-op stop is returned when no address is configured.
func (bc *BenchCommand) serveMetrics(addr string, providers observability.Providers) func() {
	if addr == "" || providers.MetricsHandler == nil {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", providers.MetricsHandler)

	server := &http.Server{Addr: addr, Handler: mux, ReadTimeout: metricsReadTimeout}

	go func() {
		serveErr := server.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			providers.Logger.Error("metrics server", slog.Any("error", serveErr))
		}
	}()

	providers.Logger.Info("serving metrics", slog.String("addr", addr))

	return func() { _ = server.Close() }
}

func (bc *BenchCommand) runWorkload(ctx context.Context, names []string, providers observability.Providers) error {
	table := symtab.New()

	tm, err := observability.NewTableMetrics(providers.Meter, table)
	if err != nil {
		return err
	}

	ctx, span := providers.Tracer.Start(ctx, "bench.workload")
	defer span.End()

	start := time.Now()

	var wg sync.WaitGroup

	for w := range bc.workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range bc.rounds {
				name := names[(w*bc.rounds+i)%len(names)]

				storage, encodeErr := table.Encode(name)
				if encodeErr != nil {
					providers.Logger.Error("encode", slog.String("name", name), slog.Any("error", encodeErr))

					return
				}

				tm.RecordEncode(ctx, storage.Name().Size())

				storage.Free(table)
				tm.RecordFree(ctx)
			}
		}()
	}

	wg.Wait()

	elapsed := time.Since(start)
	ops := bc.workers * bc.rounds

	providers.Logger.Info("bench complete",
		slog.Int("workers", bc.workers),
		slog.Int("ops", ops),
		slog.Duration("elapsed", elapsed),
		slog.Float64("ops_per_sec", float64(ops)/elapsed.Seconds()),
	)

	if live := table.NumSymbols(); live != 0 {
		return fmt.Errorf("%w: %d", ErrLiveSymbolsAfterBench, live)
	}

	return tm.Unregister()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
