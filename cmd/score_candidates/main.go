// Command score_candidates scores a file of candidate records and writes
// the results as JSON or JSON lines.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahrav/go-ballot/infrastructure/middleware"
	"github.com/ahrav/go-ballot/infrastructure/source"
	"github.com/ahrav/go-ballot/internal/application"
	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

func main() {
	var (
		inputPath   = flag.String("input", "", "Candidate records file (.json or .jsonl)")
		outputPath  = flag.String("output", "results.json", "Results file path")
		rubricPath  = flag.String("rubric", "", "Rubric YAML file (overrides the config)")
		configPath  = flag.String("config", "", "Run configuration YAML file")
		preset      = flag.String("preset", "", "Headline preset (overrides the config)")
		format      = flag.String("format", "", "Output format: json or jsonl (overrides the config)")
		metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
		verbose     = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "score_candidates: -input is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := run(ctx, logger, options{
		input:       *inputPath,
		output:      *outputPath,
		rubric:      *rubricPath,
		config:      *configPath,
		preset:      *preset,
		format:      *format,
		metricsAddr: *metricsAddr,
	})
	if err != nil {
		logger.Error("scoring failed", "error", err)
		os.Exit(1)
	}
	if report.Failed() > 0 || report.Skipped > 0 {
		os.Exit(3)
	}
}

type options struct {
	input, output, rubric, config string
	preset, format, metricsAddr   string
}

func run(ctx context.Context, logger *slog.Logger, opts options) (application.BatchReport, error) {
	cfg := application.DefaultConfig()
	if opts.config != "" {
		loaded, err := application.LoadConfig(opts.config)
		if err != nil {
			return application.BatchReport{}, err
		}
		cfg = loaded
	}
	if opts.rubric != "" {
		cfg.RubricPath = opts.rubric
	}
	if opts.preset != "" {
		cfg.Preset = opts.preset
	}
	if opts.format != "" {
		cfg.OutputFormat = opts.format
	}
	if err := cfg.Validate(); err != nil {
		return application.BatchReport{}, err
	}

	rubric := domain.DefaultRubric()
	if cfg.RubricPath != "" {
		loader, err := application.NewRubricLoader()
		if err != nil {
			return application.BatchReport{}, err
		}
		if rubric, err = loader.LoadFromFile(ctx, cfg.RubricPath); err != nil {
			return application.BatchReport{}, fmt.Errorf("load rubric: %w", err)
		}
	}

	var metrics ports.MetricsCollector = middleware.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	if opts.metricsAddr != "" {
		srv := serveMetrics(opts.metricsAddr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	engine, err := application.NewEngineFromConfig(cfg, rubric,
		application.WithLogger(logger),
		application.WithMetrics(metrics),
	)
	if err != nil {
		return application.BatchReport{}, err
	}

	src, err := source.Open(opts.input)
	if err != nil {
		return application.BatchReport{}, err
	}
	if rejected := src.Rejected(); len(rejected) > 0 {
		logger.Warn("records rejected on load", "path", opts.input, "loaded", src.Len(), "rejected", len(rejected))
	}
	outFormat, err := source.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return application.BatchReport{}, err
	}
	sink, err := source.Create(opts.output, outFormat)
	if err != nil {
		return application.BatchReport{}, err
	}

	scorer, err := application.NewBatchScorerFromConfig(cfg, engine, src, sink,
		application.WithBatchLogger(logger),
		application.WithBatchMetrics(metrics),
	)
	if err != nil {
		return application.BatchReport{}, errors.Join(err, sink.Close(context.Background()))
	}

	report, runErr := scorer.RunAll(ctx)
	// Results already written are flushed even when the run was cancelled.
	closeErr := sink.Close(context.Background())
	if err := errors.Join(runErr, closeErr); err != nil {
		return report, err
	}

	logger.Info("results written",
		"path", opts.output,
		"rubric", rubric.Name,
		"rubric_version", rubric.Version,
		"scored", report.Scored,
		"failed", report.Failed(),
		"skipped", report.Skipped,
	)
	for _, f := range report.Failures {
		logger.Warn("candidate failed", "candidate_id", f.CandidateID, "stage", f.Stage, "error", f.Err)
	}
	return report, nil
}

func serveMetrics(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return srv
}
