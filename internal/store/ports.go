// Package store defines the ports the ledger core expects from a backing
// store. Implementations live in store/memory (in-process, for development
// and tests) and in the storage package (SQLite).
package store

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

// ErrNotFound is returned when a record or marker does not exist.
var ErrNotFound = errors.New("not found")

type (
	// TransactionStore manages the per-owner active transaction set.
	TransactionStore interface {
		// Insert persists a record and returns it with an assigned ID and
		// creation timestamp.
		Insert(ctx context.Context, rec core.TransactionRecord) (core.TransactionRecord, error)
		// ListActive returns the owner's full active set, unordered.
		ListActive(ctx context.Context, ownerID string) ([]core.TransactionRecord, error)
		// Get returns a single active record by ID.
		Get(ctx context.Context, ownerID, id string) (core.TransactionRecord, error)
		// Delete removes a record from the active set.
		Delete(ctx context.Context, ownerID, id string) error
	}

	// ArchiveStore holds frozen copies of rolled-over records, each
	// tagged with the month key of the record's own date.
	ArchiveStore interface {
		AppendToArchive(ctx context.Context, monthKey string, rec core.TransactionRecord) error
		ListArchive(ctx context.Context, ownerID, monthKey string) ([]core.TransactionRecord, error)
	}

	// MarkerStore tracks the last month each owner was rolled over, the
	// de-duplication key for the rollover policy.
	MarkerStore interface {
		// RolloverMarker returns the owner's last reset month, or
		// ErrNotFound if the owner has never rolled over.
		RolloverMarker(ctx context.Context, ownerID string) (string, error)
		SetRolloverMarker(ctx context.Context, ownerID, monthKey string) error
		// ListOwners returns every owner with at least one active record
		// or marker, for sweep jobs.
		ListOwners(ctx context.Context) ([]string, error)
	}

	// CategoryStore persists the owner's custom categories on top of the
	// built-in defaults.
	CategoryStore interface {
		ListCategories(ctx context.Context, ownerID string) ([]string, error)
		AddCategory(ctx context.Context, ownerID, name string) error
	}

	// Store is the full persistence surface used by the services layer.
	Store interface {
		TransactionStore
		ArchiveStore
		MarkerStore
		CategoryStore
	}
)
