// Package main provides the alert archive query entry point.
// Executes: query → stream → consume → merge → extract → report
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"ztf-alert-lab/internal/archive"
	"ztf-alert-lab/internal/config"
	"ztf-alert-lab/internal/observability"
	"ztf-alert-lab/internal/orchestrator"
	"ztf-alert-lab/internal/reporting"
	"ztf-alert-lab/internal/stream"
	"ztf-alert-lab/internal/tokencache"
)

func main() {
	// Parse flags
	objects := flag.String("objects", "", "Comma-separated object identifiers to query")
	startDate := flag.String("start", "", "Epoch range start date (YYYY-MM-DD)")
	endDate := flag.String("end", "", "Epoch range end date (YYYY-MM-DD)")
	fields := flag.String("fields", "", "Comma-separated mean feature fields (default ra,dec,distnr)")
	resumeToken := flag.String("resume-token", "", "Consume an existing stream instead of initiating one")
	outputDir := flag.String("output-dir", "", "Directory for the CSV output file (stdout only when empty)")
	format := flag.String("format", "markdown", "Stdout table format: csv or markdown")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address while running")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logLevel := zerolog.InfoLevel
	if *verbose {
		logLevel = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(logLevel).
		With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Warn().Str("signal", sig.String()).Msg("cancelling pipeline")
		cancel()
	}()

	metrics := observability.NewMetrics("")
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	baseURL := cfg.Archive.BaseURL
	if baseURL == "" {
		baseURL = archive.DefaultBaseURL
	}

	cacheDir := cfg.Cache.Dir
	if cacheDir == "" {
		if d, err := tokencache.DefaultDir(); err == nil {
			cacheDir = d
		} else {
			log.Warn().Err(err).Msg("token cache disabled")
		}
	}

	client := archive.NewClient(cfg.Archive.Token,
		archive.WithBaseURL(baseURL),
		archive.WithTokenCache(cacheDir),
		archive.WithLogger(log),
		archive.WithRequestLatency(metrics.ArchiveRequestLatency),
	)
	source := stream.NewHTTPSource(baseURL, cfg.Archive.Token,
		stream.WithChunkCounter(metrics.ChunksFetched),
	)
	consumer := stream.NewConsumer(source,
		stream.WithRetryBase(cfg.Stream.RetryBase),
		stream.WithRetryBudget(cfg.Stream.RetryBudget),
		stream.WithConsumerLogger(log),
		stream.WithRetryCounter(metrics.StreamRetries),
	)

	orch := orchestrator.New(orchestrator.Options{
		Client:   client,
		Consumer: consumer,
		Fields:   splitList(*fields),
		Logger:   log,
		Metrics:  metrics,
	})

	var result *orchestrator.RunResult
	if *resumeToken != "" {
		result, err = orch.Resume(ctx, *resumeToken)
	} else {
		var query archive.Query
		query, err = buildQuery(*objects, *startDate, *endDate)
		if err == nil {
			result, err = orch.Run(ctx, query)
		}
	}
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline failed")
	}

	switch *format {
	case "csv":
		fmt.Print(reporting.RenderCSV(result.Table))
	default:
		fmt.Print(reporting.RenderMarkdown(result.Table))
	}

	if *outputDir != "" {
		if err := os.MkdirAll(*outputDir, 0o755); err != nil {
			log.Fatal().Err(err).Msg("create output dir")
		}
		path := filepath.Join(*outputDir, "features.csv")
		if err := os.WriteFile(path, []byte(reporting.RenderCSV(result.Table)), 0o644); err != nil {
			log.Fatal().Err(err).Msg("write output file")
		}
		log.Info().Str("path", path).Msg("feature table written")
	}

	log.Info().
		Int("alerts", result.AlertsFetched).
		Int("objects", result.ObjectsMerged).
		Msg("pipeline completed")
}

// buildQuery assembles the archive query from CLI flags.
func buildQuery(objects, startDate, endDate string) (archive.Query, error) {
	ids := splitList(objects)
	if startDate != "" || endDate != "" {
		q, err := archive.NewEpochQuery(startDate, endDate, nil)
		if err != nil {
			return archive.Query{}, err
		}
		q.ObjectIDs = ids
		return q, nil
	}
	return archive.NewObjectQuery(ids, nil)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
