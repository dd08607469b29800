// Package storage provides the SQLite-backed persistence layer.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = "id, owner_id, kind, category, amount_cents, tx_date, note, recur_frequency, recur_end_date, created_at"

func (r *SQLiteRepository) Insert(ctx context.Context, rec core.TransactionRecord) (core.TransactionRecord, error) {
	if err := rec.Validate(); err != nil {
		return core.TransactionRecord{}, err
	}

	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()

	freq, end := recurrenceColumns(rec.Recurrence)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OwnerID, string(rec.Kind), rec.Category, rec.AmountCents,
		rec.Date.String(), rec.Note, freq, end, rec.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return core.TransactionRecord{}, fmt.Errorf("insert transaction: %w", err)
	}

	return rec, nil
}

func (r *SQLiteRepository) ListActive(ctx context.Context, ownerID string) ([]core.TransactionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE owner_id = ? ORDER BY tx_date, created_at`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (r *SQLiteRepository) Get(ctx context.Context, ownerID, id string) (core.TransactionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE owner_id = ? AND id = ?`,
		ownerID, id)

	rec, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TransactionRecord{}, store.ErrNotFound
	}
	if err != nil {
		return core.TransactionRecord{}, fmt.Errorf("get transaction: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) AppendToArchive(ctx context.Context, monthKey string, rec core.TransactionRecord) error {
	freq, end := recurrenceColumns(rec.Recurrence)
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO archived_transactions
		 (id, owner_id, kind, category, amount_cents, tx_date, note, recur_frequency, recur_end_date, created_at, month_key, archived_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OwnerID, string(rec.Kind), rec.Category, rec.AmountCents,
		rec.Date.String(), rec.Note, freq, end, rec.CreatedAt.Format(time.RFC3339),
		monthKey, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("append to archive: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListArchive(ctx context.Context, ownerID, monthKey string) ([]core.TransactionRecord, error) {
	query := `SELECT ` + transactionColumns + ` FROM archived_transactions WHERE owner_id = ?`
	args := []any{ownerID}
	if monthKey != "" {
		query += ` AND month_key = ?`
		args = append(args, monthKey)
	}
	query += ` ORDER BY tx_date, created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (r *SQLiteRepository) RolloverMarker(ctx context.Context, ownerID string) (string, error) {
	var monthKey string
	err := r.db.QueryRowContext(ctx,
		`SELECT month_key FROM rollover_markers WHERE owner_id = ?`, ownerID).Scan(&monthKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get rollover marker: %w", err)
	}
	return monthKey, nil
}

func (r *SQLiteRepository) SetRolloverMarker(ctx context.Context, ownerID, monthKey string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rollover_markers (owner_id, month_key, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(owner_id) DO UPDATE SET month_key = excluded.month_key, updated_at = excluded.updated_at`,
		ownerID, monthKey, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("set rollover marker: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListOwners(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT owner_id FROM transactions
		 UNION SELECT owner_id FROM rollover_markers
		 ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM categories WHERE owner_id = ? ORDER BY created_at, name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *SQLiteRepository) AddCategory(ctx context.Context, ownerID, name string) error {
	if name == "" {
		return core.ErrEmptyCategory
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (owner_id, name, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(owner_id, name) DO NOTHING`,
		ownerID, name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("add category: %w", err)
	}
	return nil
}

func recurrenceColumns(rule *core.Recurrence) (freq, end sql.NullString) {
	if rule == nil {
		return
	}
	freq = sql.NullString{String: string(rule.Frequency), Valid: true}
	if rule.EndDate != nil {
		end = sql.NullString{String: rule.EndDate.String(), Valid: true}
	}
	return
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.TransactionRecord, error) {
	var (
		rec       core.TransactionRecord
		kind      string
		txDate    string
		freq      sql.NullString
		end       sql.NullString
		createdAt string
	)
	err := row.Scan(&rec.ID, &rec.OwnerID, &kind, &rec.Category, &rec.AmountCents,
		&txDate, &rec.Note, &freq, &end, &createdAt)
	if err != nil {
		return core.TransactionRecord{}, err
	}

	rec.Kind = core.Kind(kind)
	if rec.Date, err = core.ParseDate(txDate); err != nil {
		return core.TransactionRecord{}, fmt.Errorf("parse tx_date %q: %w", txDate, err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return core.TransactionRecord{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}

	if freq.Valid {
		rule := &core.Recurrence{Frequency: core.Frequency(freq.String)}
		if end.Valid {
			d, err := core.ParseDate(end.String)
			if err != nil {
				return core.TransactionRecord{}, fmt.Errorf("parse recur_end_date %q: %w", end.String, err)
			}
			rule.EndDate = &d
		}
		rec.Recurrence = rule
	}

	return rec, nil
}

func scanTransactions(rows *sql.Rows) ([]core.TransactionRecord, error) {
	var out []core.TransactionRecord
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
