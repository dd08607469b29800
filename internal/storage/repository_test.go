package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "fintrack.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testRecord(owner, dateStr string) core.TransactionRecord {
	d, _ := core.ParseDate(dateStr)
	return core.TransactionRecord{
		OwnerID:     owner,
		Kind:        core.KindExpense,
		Category:    "Food",
		AmountCents: -1500,
		Date:        d,
		Note:        "groceries",
	}
}

func TestInsertAndGetRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	end, _ := core.ParseDate("2024-06-30")
	rec := testRecord("alice", "2024-03-05")
	rec.Recurrence = &core.Recurrence{Frequency: core.FrequencyMonthly, EndDate: &end}

	saved, err := repo.Insert(ctx, rec)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Fatal("expected ID and CreatedAt to be assigned")
	}

	got, err := repo.Get(ctx, "alice", saved.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Category != "Food" || got.AmountCents != -1500 || got.Date.String() != "2024-03-05" {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.Recurrence == nil || got.Recurrence.Frequency != core.FrequencyMonthly {
		t.Fatalf("expected monthly recurrence, got %+v", got.Recurrence)
	}
	if got.Recurrence.EndDate == nil || got.Recurrence.EndDate.String() != "2024-06-30" {
		t.Errorf("expected end date 2024-06-30, got %+v", got.Recurrence.EndDate)
	}
}

func TestListActiveOrdersByDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, d := range []string{"2024-03-15", "2024-03-01", "2024-03-08"} {
		if _, err := repo.Insert(ctx, testRecord("alice", d)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := repo.Insert(ctx, testRecord("bob", "2024-03-02")); err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListActive(ctx, "alice")
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	want := []string{"2024-03-01", "2024-03-08", "2024-03-15"}
	for i, w := range want {
		if got[i].Date.String() != w {
			t.Errorf("record %d: expected date %s, got %s", i, w, got[i].Date.String())
		}
	}
}

func TestDeleteNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Delete(ctx, "alice", "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	rec, err := repo.Insert(ctx, testRecord("alice", "2024-03-05"))
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "bob", rec.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for wrong owner, got %v", err)
	}
	if err := repo.Delete(ctx, "alice", rec.ID); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec, err := repo.Insert(ctx, testRecord("alice", "2024-02-10"))
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.AppendToArchive(ctx, "2024-02", rec); err != nil {
		t.Fatalf("AppendToArchive: %v", err)
	}
	// A retried archive of the same record must not duplicate it.
	if err := repo.AppendToArchive(ctx, "2024-02", rec); err != nil {
		t.Fatalf("AppendToArchive retry: %v", err)
	}

	got, err := repo.ListArchive(ctx, "alice", "2024-02")
	if err != nil {
		t.Fatalf("ListArchive: %v", err)
	}
	if len(got) != 1 || got[0].ID != rec.ID {
		t.Errorf("expected one archived copy of %s, got %+v", rec.ID, got)
	}

	empty, err := repo.ListArchive(ctx, "alice", "2024-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no records for 2024-01, got %d", len(empty))
	}
}

func TestRolloverMarkerUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.RolloverMarker(ctx, "alice"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	for _, mk := range []string{"2024-02", "2024-03"} {
		if err := repo.SetRolloverMarker(ctx, "alice", mk); err != nil {
			t.Fatalf("SetRolloverMarker(%s): %v", mk, err)
		}
	}

	got, err := repo.RolloverMarker(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2024-03" {
		t.Errorf("expected latest marker 2024-03, got %s", got)
	}
}

func TestListOwnersIncludesMarkerOnlyOwners(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Insert(ctx, testRecord("bob", "2024-03-05")); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetRolloverMarker(ctx, "alice", "2024-02"); err != nil {
		t.Fatal(err)
	}

	owners, err := repo.ListOwners(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(owners) != 2 || owners[0] != "alice" || owners[1] != "bob" {
		t.Errorf("expected [alice bob], got %v", owners)
	}
}

func TestCategories(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.AddCategory(ctx, "alice", "Travel"); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddCategory(ctx, "alice", "Travel"); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddCategory(ctx, "alice", ""); !errors.Is(err, core.ErrEmptyCategory) {
		t.Errorf("expected ErrEmptyCategory, got %v", err)
	}

	got, err := repo.ListCategories(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "Travel" {
		t.Errorf("expected [Travel], got %v", got)
	}
}
