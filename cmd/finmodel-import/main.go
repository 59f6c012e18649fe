package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"finmodel/internal/backend"
	"finmodel/internal/cli"
	"finmodel/internal/config"
	"finmodel/internal/core"
	"finmodel/internal/log"
	"finmodel/internal/schema"
	"finmodel/internal/source/memory"
)

// rowCounter is implemented by sources that can report their stored size
// without reading every row.
type rowCounter interface {
	Count(ctx context.Context) (int64, error)
}

func main() {
	dbPath := flag.String("db", "", "SQLite database path (default SQLITE_DB_PATH)")
	force := flag.Bool("force", false, "import rows that would fail model validation")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-db path] [-force] transactions.csv ...\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg)

	cfg.SourceBackend = string(backend.SQLiteSource)
	if *dbPath != "" {
		cfg.SQLiteDBPath = *dbPath
	}

	if err := run(logger, cfg, *force, flag.Args()); err != nil {
		logger.Error("Import failed", log.FieldOperation, log.OpImport, log.FieldError, err)
		os.Exit(1)
	}
}

func run(logger *log.Logger, cfg *config.Config, force bool, files []string) error {
	var txns []core.Transaction
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		parsed, err := memory.ParseCSV(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		txns = append(txns, parsed...)
	}

	// A failed build means a later report run would reject the whole table.
	if !force {
		if _, err := schema.Build(txns, nil); err != nil {
			return err
		}
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	res, err := backend.NewFactory(logger).CreateSource(ctx, bcfg)
	if err != nil {
		return err
	}
	if res.Cleanup != nil {
		defer res.Cleanup()
	}
	if res.Importer == nil {
		return fmt.Errorf("source %s cannot store transactions", bcfg.Source)
	}

	n, err := res.Importer.Import(ctx, txns)
	if err != nil {
		return err
	}

	fields := []any{log.FieldTransactions, n, "db_path", bcfg.SQLiteDBPath}
	if c, ok := res.Source.(rowCounter); ok {
		total, err := c.Count(ctx)
		if err != nil {
			return err
		}
		fields = append(fields, "stored_total", total)
	}
	logger.Info("Import complete", fields...)
	return nil
}
