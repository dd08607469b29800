// Package memory provides an in-process Exporter used in tests and
// local development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/backup"
	"fintrack/internal/core"
)

type Row struct {
	Record   core.TransactionRecord
	MonthKey string
}

type Exporter struct {
	mu   sync.Mutex
	rows []Row
}

var _ backup.Exporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

// Append stores the row and returns a synthetic reference.
func (e *Exporter) Append(_ context.Context, rec core.TransactionRecord, monthKey string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = append(e.rows, Row{Record: rec, MonthKey: monthKey})
	return fmt.Sprintf("mem:%d", len(e.rows)), nil
}

// Rows returns a copy of everything exported so far.
func (e *Exporter) Rows() []Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Row, len(e.rows))
	copy(out, e.rows)
	return out
}
