// Package backup defines the ports for mirroring transactions to an
// external backup destination.
package backup

import (
	"context"

	"fintrack/internal/core"
)

// Exporter appends a transaction row to the backup destination and
// returns an opaque reference to the written row.
type Exporter interface {
	Append(ctx context.Context, rec core.TransactionRecord, monthKey string) (string, error)
}
