package source

import (
	"context"

	"finmodel/internal/core"
)

// Ports for inbound transaction adapters.
type (
	// TransactionSource yields the raw transaction list in its natural order.
	// The order matters: fact IDs are assigned by position.
	TransactionSource interface {
		Transactions(ctx context.Context) ([]core.Transaction, error)
	}

	// TransactionImporter persists transactions so that a later read returns
	// them after everything already stored.
	TransactionImporter interface {
		Import(ctx context.Context, txns []core.Transaction) (int, error)
	}
)
