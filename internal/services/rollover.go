package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

const archiveConcurrency = 8

// RolloverResult reports what a rollover attempt did. MovedCount is the
// number of copy+delete operations attempted, not the number that fully
// completed; a record whose delete failed still counts.
type RolloverResult struct {
	RolledOver bool   `json:"rolled_over"`
	MovedCount int    `json:"moved_count"`
	MonthKey   string `json:"month_key"`
}

// RolloverService closes out a calendar month: when the stored marker
// lags behind the current month it moves the owner's active
// transactions into the archive and advances the marker.
type RolloverService struct {
	store     store.Store
	publisher SyncPublisher
	logger    *log.Logger
}

func NewRolloverService(st store.Store, publisher SyncPublisher, logger *log.Logger) *RolloverService {
	return &RolloverService{
		store:     st,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentRollover),
	}
}

// MaybeRollover archives the owner's transactions if the month has
// changed since the last rollover. Within the same month it is a no-op.
//
// Archiving is at-least-once: each record is copied to the archive
// before being deleted, and a failure on one record does not stop the
// others. The marker only advances after the sweep, so a crash mid-way
// retries the remaining records on the next call.
func (s *RolloverService) MaybeRollover(ctx context.Context, ownerID string, now time.Time) (RolloverResult, error) {
	currentMonth := core.MonthKeyOf(now)

	// An absent marker means the owner was never rolled over, which is
	// not the current month by definition, so the sweep runs.
	marker, err := s.store.RolloverMarker(ctx, ownerID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return RolloverResult{}, fmt.Errorf("read rollover marker: %w", err)
	}

	if marker == currentMonth {
		return RolloverResult{MonthKey: currentMonth}, nil
	}

	records, err := s.store.ListActive(ctx, ownerID)
	if err != nil {
		return RolloverResult{}, fmt.Errorf("list transactions for rollover: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(archiveConcurrency)
	for _, rec := range records {
		rec := rec
		g.Go(func() error {
			monthKey := rec.Date.MonthKey()
			if err := s.store.AppendToArchive(gctx, monthKey, rec); err != nil {
				s.logger.ErrorContext(gctx, "Failed to archive transaction",
					log.FieldOwnerID, ownerID,
					log.FieldRecordID, rec.ID,
					log.FieldError, err)
				return nil
			}
			if err := s.store.Delete(gctx, ownerID, rec.ID); err != nil {
				// The archived copy survives; the duplicate active row is
				// picked up again on the next rollover attempt.
				s.logger.ErrorContext(gctx, "Failed to delete archived transaction",
					log.FieldOwnerID, ownerID,
					log.FieldRecordID, rec.ID,
					log.FieldError, err)
				return nil
			}

			if s.publisher != nil {
				if err := s.publisher.PublishSync(gctx, amqp.NewArchiveMessage(ownerID, rec.ID, monthKey)); err != nil {
					s.logger.ErrorContext(gctx, "Failed to publish archive message",
						log.FieldRecordID, rec.ID, log.FieldError, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RolloverResult{}, fmt.Errorf("archive transactions: %w", err)
	}

	if err := s.store.SetRolloverMarker(ctx, ownerID, currentMonth); err != nil {
		return RolloverResult{}, fmt.Errorf("advance rollover marker: %w", err)
	}

	s.logger.InfoContext(ctx, "Monthly rollover complete",
		log.FieldOwnerID, ownerID,
		log.FieldMonthKey, currentMonth,
		log.FieldCount, len(records))

	return RolloverResult{
		RolledOver: true,
		MovedCount: len(records),
		MonthKey:   currentMonth,
	}, nil
}

// SweepAll runs MaybeRollover for every known owner. Failures on one
// owner do not stop the sweep.
func (s *RolloverService) SweepAll(ctx context.Context, now time.Time) error {
	owners, err := s.store.ListOwners(ctx)
	if err != nil {
		return fmt.Errorf("list owners: %w", err)
	}

	var failed int
	for _, owner := range owners {
		if _, err := s.MaybeRollover(ctx, owner, now); err != nil {
			failed++
			s.logger.ErrorContext(ctx, "Rollover failed for owner",
				log.FieldOwnerID, owner, log.FieldError, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("rollover failed for %d of %d owners", failed, len(owners))
	}
	return nil
}
