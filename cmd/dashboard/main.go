package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"InvestorsDaily/internal/config"
	"InvestorsDaily/internal/loader"
	"InvestorsDaily/internal/logger"
	"InvestorsDaily/internal/metrics"
	"InvestorsDaily/internal/preparer"
	"InvestorsDaily/internal/recorder"
	"InvestorsDaily/internal/report"
	"InvestorsDaily/internal/scheduler"
	"InvestorsDaily/internal/server"
)

func main() {
	summaryYear := flag.Int("summary", 0, "print a text summary for the given year and exit")
	flag.Parse()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	log.Info().Str("config", cfgPath).Msg("InvestorsDaily starting")

	if err := run(cfg, log, *summaryYear); err != nil {
		log.Fatal().Err(err).Msg("exit")
	}
	log.Info().Msg("InvestorsDaily stopped")
}

func run(cfg *config.Config, log zerolog.Logger, summaryYear int) error {
	policy, err := preparer.ParseAnomalyPolicy(cfg.Data.AnomalyPolicy)
	if err != nil {
		return err
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger.Component(log, "recorder"))
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	m := metrics.New()

	ld := newLoader(cfg, policy, rec, m, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load once up front so a bad file is reported before anything is served.
	table, err := ld.Get(ctx)
	if err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	if summaryYear != 0 {
		fmt.Print(report.FormatYearReport(table, summaryYear))
		return nil
	}

	sched := scheduler.NewScheduler(ctx, ld, logger.Component(log, "scheduler"))
	if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server.New(ld, rec, m, logger.Component(log, "http")).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping...")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	return srv.Shutdown(shutdownCtx)
}

// newLoader wires the CSV source to the load history and metrics observers.
func newLoader(cfg *config.Config, policy preparer.AnomalyPolicy, rec recorder.Recorder, m *metrics.Recorder, log zerolog.Logger) *loader.Loader {
	return loader.New(loader.NewFileSource(cfg.Data.CSVPath),
		loader.WithLogger(logger.Component(log, "loader")),
		loader.WithPrepareOptions(preparer.WithAnomalyPolicy(policy)),
		loader.WithObserver(recorder.Observer(rec, logger.Component(log, "recorder"))),
		loader.WithObserver(m),
	)
}
