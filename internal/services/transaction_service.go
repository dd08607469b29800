// Package services orchestrates the ledger operations across the store
// and the AMQP backup pipeline.
package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// SyncPublisher publishes backup notifications. The AMQP client
// implements it; tests substitute a fake.
type SyncPublisher interface {
	PublishSync(ctx context.Context, msg *amqp.SyncMessage) error
}

// TransactionService saves transactions locally and notifies the backup
// pipeline asynchronously.
type TransactionService struct {
	store     store.Store
	publisher SyncPublisher
	logger    *log.Logger
}

func NewTransactionService(st store.Store, publisher SyncPublisher, logger *log.Logger) *TransactionService {
	return &TransactionService{
		store:     st,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

// Create expands the submission into its dated records and saves each
// one. Records that were saved before a failure are returned alongside
// the error.
func (s *TransactionService) Create(ctx context.Context, tpl core.Template, start core.Date, rule *core.Recurrence) ([]core.TransactionRecord, error) {
	expanded := core.Expand(tpl, start, rule)
	if len(expanded) == 0 {
		return nil, core.ErrEndBeforeStart
	}

	saved := make([]core.TransactionRecord, 0, len(expanded))
	for _, rec := range expanded {
		got, err := s.store.Insert(ctx, rec)
		if err != nil {
			return saved, fmt.Errorf("save transaction: %w", err)
		}
		saved = append(saved, got)

		// Backup notification must not fail the request; the record is
		// already durable locally.
		if err := s.publish(ctx, amqp.NewSyncMessage(got.OwnerID, got.ID, amqp.EventRecorded)); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish sync message",
				log.FieldRecordID, got.ID, log.FieldError, err)
		}
	}

	s.logger.InfoContext(ctx, "Transactions recorded",
		log.FieldOwnerID, tpl.OwnerID,
		log.FieldCategory, tpl.Category,
		log.FieldCount, len(saved))

	return saved, nil
}

// List returns the owner's active transactions.
func (s *TransactionService) List(ctx context.Context, ownerID string) ([]core.TransactionRecord, error) {
	records, err := s.store.ListActive(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return records, nil
}

// ListArchived returns the owner's archived transactions for a month.
func (s *TransactionService) ListArchived(ctx context.Context, ownerID, monthKey string) ([]core.TransactionRecord, error) {
	records, err := s.store.ListArchive(ctx, ownerID, monthKey)
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}
	return records, nil
}

// Delete removes a single transaction.
func (s *TransactionService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldOwnerID, ownerID, log.FieldRecordID, id)
	return nil
}

// Dashboard holds the aggregates shown on the overview page.
type Dashboard struct {
	Summary        core.Summary         `json:"summary"`
	CategoryTotals []core.CategoryTotal `json:"category_totals"`
	WeeklyTrend    []core.WeekTotal     `json:"weekly_trend"`
}

// Overview computes the dashboard aggregates for the month containing now.
func (s *TransactionService) Overview(ctx context.Context, ownerID string, now time.Time) (Dashboard, error) {
	records, err := s.store.ListActive(ctx, ownerID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list transactions: %w", err)
	}

	return Dashboard{
		Summary:        core.Summarize(records),
		CategoryTotals: core.CategoryTotals(records, core.MonthKeyOf(now)),
		WeeklyTrend:    core.WeeklyTrend(records, now, 8),
	}, nil
}

// Categories returns the built-in defaults followed by the owner's
// custom categories, without duplicates.
func (s *TransactionService) Categories(ctx context.Context, ownerID string) ([]string, error) {
	custom, err := s.store.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	names := make([]string, 0, len(core.DefaultCategories)+len(custom))
	seen := make(map[string]bool, len(core.DefaultCategories)+len(custom))
	for _, name := range core.DefaultCategories {
		names = append(names, name)
		seen[name] = true
	}
	for _, name := range custom {
		if seen[name] {
			continue
		}
		names = append(names, name)
		seen[name] = true
	}
	return names, nil
}

// AddCategory registers a new category for the owner.
func (s *TransactionService) AddCategory(ctx context.Context, ownerID, name string) error {
	if err := s.store.AddCategory(ctx, ownerID, name); err != nil {
		return fmt.Errorf("add category: %w", err)
	}
	return nil
}

func (s *TransactionService) publish(ctx context.Context, msg *amqp.SyncMessage) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishSync(ctx, msg)
}
