package ledger

import (
	"context"

	"github.com/sgarlapa/expense-ledger-bot/internal/expense"
)

// Ledger appends finished expense records to the shared ledger, one call per
// record. Each call is independently retryable; a failed append must not
// prevent sibling records from being attempted.
type Ledger interface {
	Append(ctx context.Context, rec expense.Record) error
}

// Header is the column order every backend writes.
var Header = []interface{}{
	"Date", "Time", "Amount", "Currency", "Description", "User", "Invoice", "Original Message",
}
