package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"finmodel/internal/core"
	"finmodel/internal/log"
	"finmodel/internal/source"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

var (
	_ source.TransactionSource   = (*SQLiteRepository)(nil)
	_ source.TransactionImporter = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Transactions implements source.TransactionSource. Rows come back in
// insertion order.
func (r *SQLiteRepository) Transactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txns := make([]core.Transaction, len(rows))
	for i, row := range rows {
		date, err := core.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: date %q: %w", row.ID, row.Date, err)
		}
		amount, err := core.ParseAmount(row.Amount)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: amount %q: %w", row.ID, row.Amount, err)
		}
		txns[i] = core.Transaction{
			Date:     date,
			Merchant: row.MerchantName,
			Category: row.CategoryName,
			Amount:   amount,
		}
	}

	r.logger.DebugContext(ctx, "Transactions loaded from SQLite", log.FieldTransactions, len(txns))
	return txns, nil
}

// Import implements source.TransactionImporter. Either every transaction is
// stored or none is.
func (r *SQLiteRepository) Import(ctx context.Context, txns []core.Transaction) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	for i, t := range txns {
		err := q.CreateTransaction(ctx, CreateTransactionParams{
			Date:         t.Date.String(),
			MerchantName: t.Merchant,
			CategoryName: t.Category,
			Amount:       t.Amount.String(),
		})
		if err != nil {
			return 0, fmt.Errorf("insert transaction %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	r.logger.InfoContext(ctx, "Transactions imported to SQLite",
		log.FieldOperation, log.OpImport,
		log.FieldTransactions, len(txns))
	return len(txns), nil
}

// Count returns the number of stored transactions.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
