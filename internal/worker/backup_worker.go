// Package worker mirrors recorded and archived transactions to the
// backup destination.
package worker

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/backup"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// BackupWorker consumes sync messages and appends the referenced
// transactions to the exporter.
type BackupWorker struct {
	transactions store.TransactionStore
	archive      store.ArchiveStore
	exporter     backup.Exporter
	logger       *log.Logger
}

func NewBackupWorker(tx store.TransactionStore, archive store.ArchiveStore, exporter backup.Exporter, logger *log.Logger) *BackupWorker {
	return &BackupWorker{
		transactions: tx,
		archive:      archive,
		exporter:     exporter,
		logger:       logger.WithComponent(log.ComponentWorker),
	}
}

// HandleSyncMessage processes a single sync message. It fetches the
// full record from the store and appends it to the exporter. A record
// that no longer exists anywhere is dropped rather than requeued.
func (w *BackupWorker) HandleSyncMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	rec, monthKey, err := w.resolve(ctx, msg)
	if errors.Is(err, store.ErrNotFound) {
		w.logger.WarnContext(ctx, "Record gone before backup, dropping message",
			log.FieldOwnerID, msg.OwnerID,
			log.FieldRecordID, msg.RecordID,
			"event", msg.Event)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve record: %w", err)
	}

	ref, err := w.exporter.Append(ctx, rec, monthKey)
	if err != nil {
		return fmt.Errorf("export record: %w", err)
	}

	w.logger.InfoContext(ctx, "Record mirrored to backup",
		log.FieldOwnerID, rec.OwnerID,
		log.FieldRecordID, rec.ID,
		"event", msg.Event,
		"backup_ref", ref)

	return nil
}

func (w *BackupWorker) resolve(ctx context.Context, msg *amqp.SyncMessage) (core.TransactionRecord, string, error) {
	if msg.Event == amqp.EventArchived {
		records, err := w.archive.ListArchive(ctx, msg.OwnerID, msg.MonthKey)
		if err != nil {
			return core.TransactionRecord{}, "", err
		}
		for _, rec := range records {
			if rec.ID == msg.RecordID {
				return rec, msg.MonthKey, nil
			}
		}
		return core.TransactionRecord{}, "", store.ErrNotFound
	}

	rec, err := w.transactions.Get(ctx, msg.OwnerID, msg.RecordID)
	if err != nil {
		return core.TransactionRecord{}, "", err
	}
	return rec, rec.Date.MonthKey(), nil
}
