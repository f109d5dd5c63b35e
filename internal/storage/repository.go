// Package storage is the SQLite ledger backend.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"assetguard/internal/core"
	"assetguard/internal/ledger"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

type expenseRow struct {
	ID     int64  `db:"id"`
	Date   string `db:"date"`
	Item   string `db:"item"`
	Amount int64  `db:"amount"`
	Month  string `db:"month"`
}

// SQLiteRepository implements ledger.Store on a local database file.
type SQLiteRepository struct {
	db            *sqlx.DB
	defaultBudget int64
}

var _ ledger.Store = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (creating if needed) the database at dbPath and migrates it.
func NewSQLiteRepository(dbPath string, defaultBudget int64) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, core.Unavailable("create db directory", err)
		}
	}

	db, err := sqlx.Open(driverName, dbPath)
	if err != nil {
		return nil, core.Unavailable("open sqlite database", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, core.Unavailable("ping database", err)
	}
	// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, core.Unavailable("run migrations", err)
	}

	return NewWithDB(db, defaultBudget), nil
}

// NewWithDB wraps an already-migrated connection.
func NewWithDB(db *sqlx.DB, defaultBudget int64) *SQLiteRepository {
	return &SQLiteRepository{db: db, defaultBudget: defaultBudget}
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) AppendExpense(ctx context.Context, date core.Date, item string, amount int64) (int64, error) {
	rec, err := core.NewExpenseRecord(date, item, amount)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (date, item, amount, month) VALUES (?, ?, ?, ?)`,
		rec.Date.String(), rec.Item, rec.Amount, rec.Month.String())
	if err != nil {
		return 0, core.Unavailable("insert expense", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, core.Unavailable("insert expense", err)
	}
	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"month", rec.Month.String(),
		"amount", rec.Amount)
	return id, nil
}

func (r *SQLiteRepository) QueryExpenses(ctx context.Context, month core.Month) ([]core.ExpenseRecord, error) {
	var rows []expenseRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, date, item, amount, month FROM expenses WHERE month = ? ORDER BY id`,
		month.String())
	if err != nil {
		return nil, core.Unavailable("query expenses", err)
	}
	out := make([]core.ExpenseRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed expense row", "id", row.ID, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// DeleteExpenses removes all ids in one transaction with a bound IN list.
func (r *SQLiteRepository) DeleteExpenses(ctx context.Context, ids []int64) error {
	ids = ledger.UniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM expenses WHERE id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.Unavailable("begin delete", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return core.Unavailable("delete expenses", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Unavailable("commit delete", err)
	}
	n, _ := res.RowsAffected()
	slog.InfoContext(ctx, "Expenses deleted from SQLite", "requested", len(ids), "deleted", n)
	return nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, month core.Month) (int64, error) {
	var amounts []int64
	err := r.db.SelectContext(ctx, &amounts, `SELECT amount FROM budgets WHERE month = ?`, month.String())
	if err != nil {
		return 0, core.Unavailable("get budget", err)
	}
	if len(amounts) == 0 {
		return r.defaultBudget, nil
	}
	return amounts[0], nil
}

func (r *SQLiteRepository) SetBudget(ctx context.Context, month core.Month, amount int64) error {
	if err := core.ValidateBudget(amount); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (month, amount) VALUES (?, ?)
		 ON CONFLICT(month) DO UPDATE SET amount = excluded.amount`,
		month.String(), amount)
	if err != nil {
		return core.Unavailable("set budget", err)
	}
	return nil
}

func (row expenseRow) toRecord() (core.ExpenseRecord, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	month, err := core.ParseMonth(row.Month)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	return core.ExpenseRecord{
		ID:     row.ID,
		Date:   date,
		Item:   row.Item,
		Amount: row.Amount,
		Month:  month,
	}, nil
}
