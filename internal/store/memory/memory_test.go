package memory

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func sampleRecord(owner string) core.TransactionRecord {
	d, _ := core.ParseDate("2024-03-05")
	return core.TransactionRecord{
		OwnerID:     owner,
		Kind:        core.KindExpense,
		Category:    "Food",
		AmountCents: -1500,
		Date:        d,
	}
}

func TestInsertAssignsIDAndCreatedAt(t *testing.T) {
	s := New()
	got, err := s.Insert(context.Background(), sampleRecord("alice"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got.ID == "" {
		t.Error("expected non-empty ID")
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestInsertRejectsInvalidRecord(t *testing.T) {
	s := New()
	rec := sampleRecord("alice")
	rec.AmountCents = 1500 // positive expense
	if _, err := s.Insert(context.Background(), rec); !errors.Is(err, core.ErrAmountSign) {
		t.Errorf("expected ErrAmountSign, got %v", err)
	}
}

func TestListActiveIsolatesOwners(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.Insert(ctx, sampleRecord("alice")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Insert(ctx, sampleRecord("bob")); err != nil {
		t.Fatal(err)
	}
	got, err := s.ListActive(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record for alice, got %d", len(got))
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	s := New()
	ctx := context.Background()
	rec, err := s.Insert(ctx, sampleRecord("alice"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "alice", rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "alice", rec.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "alice", rec.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestArchiveFilterByMonthKey(t *testing.T) {
	s := New()
	ctx := context.Background()
	rec := sampleRecord("alice")
	rec.ID = "t1"
	if err := s.AppendToArchive(ctx, "2024-02", rec); err != nil {
		t.Fatal(err)
	}
	rec2 := sampleRecord("alice")
	rec2.ID = "t2"
	if err := s.AppendToArchive(ctx, "2024-03", rec2); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListArchive(ctx, "alice", "2024-02")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("expected only t1 for 2024-02, got %+v", got)
	}

	all, err := s.ListArchive(ctx, "alice", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 archived records, got %d", len(all))
	}
}

func TestRolloverMarker(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.RolloverMarker(ctx, "alice"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unset marker, got %v", err)
	}
	if err := s.SetRolloverMarker(ctx, "alice", "2024-03"); err != nil {
		t.Fatal(err)
	}
	mk, err := s.RolloverMarker(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if mk != "2024-03" {
		t.Errorf("expected marker 2024-03, got %s", mk)
	}
}

func TestListOwners(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.Insert(ctx, sampleRecord("bob")); err != nil {
		t.Fatal(err)
	}
	if err := s.SetRolloverMarker(ctx, "alice", "2024-02"); err != nil {
		t.Fatal(err)
	}
	owners, err := s.ListOwners(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(owners) != 2 || owners[0] != "alice" || owners[1] != "bob" {
		t.Errorf("expected [alice bob], got %v", owners)
	}
}

func TestAddCategoryIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.AddCategory(ctx, "alice", "Travel"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddCategory(ctx, "alice", "Travel"); err != nil {
		t.Fatal(err)
	}
	got, err := s.ListCategories(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 category, got %v", got)
	}
	if err := s.AddCategory(ctx, "alice", "  "); !errors.Is(err, core.ErrEmptyCategory) {
		t.Errorf("expected ErrEmptyCategory, got %v", err)
	}
}
