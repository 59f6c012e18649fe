package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"finmodel/internal/core"
	"finmodel/internal/source"
)

// TransactionsFile is the CSV file NewFromFiles reads from the data directory.
const TransactionsFile = "transactions.csv"

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

var (
	_ source.TransactionSource   = (*Store)(nil)
	_ source.TransactionImporter = (*Store)(nil)
)

func New(txns ...core.Transaction) *Store {
	return &Store{items: append([]core.Transaction(nil), txns...)}
}

// NewFromFiles loads base/transactions.csv. A missing file yields an empty
// store; a malformed one is an error.
func NewFromFiles(base string) (*Store, error) {
	f, err := os.Open(filepath.Join(base, TransactionsFile))
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open transactions: %w", err)
	}
	defer f.Close()

	txns, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name(), err)
	}
	return New(txns...), nil
}

// Append stores the transaction after everything already held.
func (s *Store) Append(_ context.Context, t core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, t)
}

// Import appends txns in order and returns how many were stored.
func (s *Store) Import(_ context.Context, txns []core.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, txns...)
	return len(txns), nil
}

// Transactions returns a copy of the stored transactions in insertion order.
func (s *Store) Transactions(ctx context.Context) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...), nil
}

// ParseCSV reads date,merchant,category,amount records. A leading header
// row and blank lines are skipped.
func ParseCSV(r io.Reader) ([]core.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []core.Transaction
	for first := true; ; first = false {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if source.IsBlank(rec) || (first && source.IsHeader(rec)) {
			continue
		}
		t, err := source.ParseRow(rec)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, t)
	}
	return out, nil
}
