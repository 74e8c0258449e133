package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bilancio/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists the entity store's collections. It is the durable
// backend for the HTTP server and the checkpoint worker; the engines never
// see it and work on snapshots instead.
type SQLiteRepository struct {
	db *sql.DB
}

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

// CreateCategory inserts a category if the name is new and returns the
// stored row either way.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string, limit *core.Money) (core.BudgetCategory, error) {
	cat := core.BudgetCategory{Name: name, MonthlyLimit: limit}
	if err := cat.Validate(); err != nil {
		return core.BudgetCategory{}, err
	}

	var limitCents sql.NullInt64
	if limit != nil {
		limitCents = sql.NullInt64{Int64: limit.Cents, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, monthly_limit_cents) VALUES (?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		name, limitCents)
	if err != nil {
		return core.BudgetCategory{}, fmt.Errorf("create category: %w", err)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, monthly_limit_cents FROM categories WHERE name = ?`, name)
	if err := row.Scan(&cat.ID, &limitCents); err != nil {
		return core.BudgetCategory{}, fmt.Errorf("read back category: %w", err)
	}
	if limitCents.Valid {
		cat.MonthlyLimit = &core.Money{Cents: limitCents.Int64}
	} else {
		cat.MonthlyLimit = nil
	}
	return cat, nil
}

// DeleteCategory removes the named category. Member transactions stay and
// become uncategorized through the ON DELETE SET NULL reference.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// CreateTransaction stores a transaction and returns it with the assigned
// ID. A non-empty categoryName is resolved or created first.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction, categoryName string) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if !t.Recurring {
		t.Interval = core.None
	}

	var categoryID sql.NullInt64
	if categoryName != "" {
		cat, err := r.CreateCategory(ctx, categoryName, nil)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("resolve category: %w", err)
		}
		categoryID = sql.NullInt64{Int64: cat.ID, Valid: true}
		t.CategoryID = cat.ID
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions
		 (amount_cents, kind, occurred_on, recurring, recurrence_interval, description, category_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Amount.Cents, string(t.Kind), t.OccurredOn.String(),
		t.Recurring, string(t.Interval), t.Description, categoryID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"kind", t.Kind,
		"amount_cents", t.Amount.Cents,
		"occurred_on", t.OccurredOn.String())

	return t, nil
}

// DeleteTransaction removes a transaction by ID.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// SetCheckpoint upserts the balance checkpoint for a date. The primary key
// on date enforces the one-checkpoint-per-date invariant.
func (r *SQLiteRepository) SetCheckpoint(ctx context.Context, date core.Date, amount core.Money) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO checkpoints (date, amount_cents) VALUES (?, ?)
		 ON CONFLICT(date) DO UPDATE SET amount_cents = excluded.amount_cents`,
		date.String(), amount.Cents)
	if err != nil {
		return fmt.Errorf("set checkpoint: %w", err)
	}
	return nil
}

// LoadSnapshot reads the full store contents for the engines. Checkpoints
// come back sorted ascending by date and category membership lists are
// rebuilt from the transaction rows.
func (r *SQLiteRepository) LoadSnapshot(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot

	catRows, err := r.db.QueryContext(ctx,
		`SELECT id, name, monthly_limit_cents FROM categories ORDER BY id`)
	if err != nil {
		return snap, fmt.Errorf("load categories: %w", err)
	}
	defer catRows.Close()

	byID := make(map[int64]int)
	for catRows.Next() {
		var cat core.BudgetCategory
		var limitCents sql.NullInt64
		if err := catRows.Scan(&cat.ID, &cat.Name, &limitCents); err != nil {
			return snap, fmt.Errorf("scan category: %w", err)
		}
		if limitCents.Valid {
			cat.MonthlyLimit = &core.Money{Cents: limitCents.Int64}
		}
		byID[cat.ID] = len(snap.Categories)
		snap.Categories = append(snap.Categories, cat)
	}
	if err := catRows.Err(); err != nil {
		return snap, fmt.Errorf("iterate categories: %w", err)
	}

	txnRows, err := r.db.QueryContext(ctx,
		`SELECT id, amount_cents, kind, occurred_on, recurring, recurrence_interval, description, category_id
		 FROM transactions ORDER BY id`)
	if err != nil {
		return snap, fmt.Errorf("load transactions: %w", err)
	}
	defer txnRows.Close()

	for txnRows.Next() {
		var (
			t          core.Transaction
			kind       string
			interval   string
			occurredOn string
			categoryID sql.NullInt64
		)
		if err := txnRows.Scan(&t.ID, &t.Amount.Cents, &kind, &occurredOn,
			&t.Recurring, &interval, &t.Description, &categoryID); err != nil {
			return snap, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = core.TransactionKind(kind)
		t.Interval = core.RecurrenceInterval(interval)
		if t.OccurredOn, err = core.ParseDate(occurredOn); err != nil {
			return snap, fmt.Errorf("parse occurred_on %q: %w", occurredOn, err)
		}
		if categoryID.Valid {
			t.CategoryID = categoryID.Int64
			if i, ok := byID[t.CategoryID]; ok {
				snap.Categories[i].TransactionIDs = append(snap.Categories[i].TransactionIDs, t.ID)
			}
		}
		snap.Transactions = append(snap.Transactions, t)
	}
	if err := txnRows.Err(); err != nil {
		return snap, fmt.Errorf("iterate transactions: %w", err)
	}

	cpRows, err := r.db.QueryContext(ctx,
		`SELECT date, amount_cents FROM checkpoints ORDER BY date`)
	if err != nil {
		return snap, fmt.Errorf("load checkpoints: %w", err)
	}
	defer cpRows.Close()

	for cpRows.Next() {
		var cp core.BalanceCheckpoint
		var date string
		if err := cpRows.Scan(&date, &cp.Amount.Cents); err != nil {
			return snap, fmt.Errorf("scan checkpoint: %w", err)
		}
		if cp.Date, err = core.ParseDate(date); err != nil {
			return snap, fmt.Errorf("parse checkpoint date %q: %w", date, err)
		}
		snap.Checkpoints = append(snap.Checkpoints, cp)
	}
	if err := cpRows.Err(); err != nil {
		return snap, fmt.Errorf("iterate checkpoints: %w", err)
	}

	return snap, nil
}
