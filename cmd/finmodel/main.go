package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"finmodel/internal/backend"
	"finmodel/internal/cli"
	"finmodel/internal/config"
	"finmodel/internal/core"
	apphttp "finmodel/internal/http"
	"finmodel/internal/log"
	"finmodel/internal/services"
	"finmodel/internal/sink"
	"finmodel/internal/source"
	"finmodel/internal/source/memory"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [transactions.csv ...]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Without arguments the configured source is read once, or every REPORT_INTERVAL.")
		fmt.Fprintln(flag.CommandLine.Output(), "With HTTP_ADDR set the report API is served until interrupted.")
		fmt.Fprintln(flag.CommandLine.Output(), "With CSV arguments each file is evaluated as an independent run.")
		flag.PrintDefaults()
	}
	flag.Parse()

	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(config.Load())
	logger.Info("Starting finmodel", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	budgets := cli.LoadBudgets(logger, cfg)

	if err := run(logger, cfg, services.NewReportService(budgets, cfg.BatchConcurrency, logger), flag.Args()); err != nil {
		logger.Error("finmodel failed", log.FieldError, err, log.FieldErrorType, services.ErrorTypeFor(err))
		os.Exit(1)
	}
}

func run(logger *log.Logger, cfg *config.Config, svc *services.ReportService, files []string) error {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	factory := backend.NewFactory(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, err := factory.CreateSink(ctx, bcfg)
	if err != nil {
		return err
	}
	if out.Cleanup != nil {
		defer out.Cleanup()
	}

	if len(files) > 0 {
		return runBatch(ctx, logger, svc, out.Sink, files)
	}

	src, err := factory.CreateSource(ctx, bcfg)
	if err != nil {
		return err
	}
	if src.Cleanup != nil {
		defer src.Cleanup()
	}

	if cfg.HTTPAddr != "" {
		return serve(logger, cfg, svc, src.Source, out.Sink)
	}
	if cfg.ReportInterval > 0 {
		return runScheduled(logger, svc, src.Source, out.Sink, cfg.ReportInterval)
	}

	_, err = svc.Run(ctx, src.Source, out.Sink)
	return err
}

func runScheduled(logger *log.Logger, svc *services.ReportService, src source.TransactionSource, out sink.ReportSink, interval time.Duration) error {
	scheduler := services.NewReportScheduler(svc, src, out, services.ReportSchedulerConfig{Interval: interval})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			logger.Warn("Report scheduler did not stop cleanly", log.FieldError, err)
		}
	})
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	<-done
	return nil
}

// serve runs the report API until a shutdown signal. With REPORT_INTERVAL
// set, scheduled reports are published through the server so they show up
// in its history.
func serve(logger *log.Logger, cfg *config.Config, svc *services.ReportService, src source.TransactionSource, out sink.ReportSink) error {
	srv := apphttp.NewServer(apphttp.Options{
		Addr:              cfg.HTTPAddr,
		RequestsPerMinute: cfg.RateLimitRPM,
		HistorySize:       cfg.ReportHistorySize,
		HistoryTTL:        cfg.ReportHistoryTTL,
	}, svc, src, out, logger)

	var scheduler *services.ReportScheduler
	if cfg.ReportInterval > 0 {
		scheduler = services.NewReportScheduler(svc, src, srv.Sink(), services.ReportSchedulerConfig{Interval: cfg.ReportInterval})
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if scheduler != nil {
			if err := scheduler.Stop(shutdownCtx); err != nil {
				logger.Warn("Report scheduler did not stop cleanly", log.FieldError, err)
			}
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP server did not stop cleanly", log.FieldError, err)
		}
	})
	if scheduler != nil {
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Report API listening", log.FieldOperation, log.OpServe, "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-done:
		return nil
	}
}

func runBatch(ctx context.Context, logger *log.Logger, svc *services.ReportService, out sink.ReportSink, files []string) error {
	snapshots := make([][]core.Transaction, len(files))
	for i, path := range files {
		txns, err := readCSV(path)
		if err != nil {
			return err
		}
		snapshots[i] = txns
	}

	results, err := svc.GenerateBatch(ctx, snapshots)
	if err != nil {
		return err
	}

	var errs []error
	for i, res := range results {
		if res.Report != nil {
			if err := out.Publish(ctx, res.Report); err != nil {
				errs = append(errs, fmt.Errorf("%s: publish: %w", files[i], err))
				continue
			}
		}
		if res.Err != nil {
			logger.Error("Run failed", "file", files[i], log.FieldError, res.Err, log.FieldErrorType, services.ErrorTypeFor(res.Err))
			errs = append(errs, fmt.Errorf("%s: %w", files[i], res.Err))
		}
	}
	return errors.Join(errs...)
}

func readCSV(path string) ([]core.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	txns, err := memory.ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return txns, nil
}
