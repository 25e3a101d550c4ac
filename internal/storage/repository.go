package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budgeter/internal/core"
	"budgeter/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository keeps the budgeter state in a single sqlite file. The
// singleton documents live in one-row tables keyed by id=1.
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

func (r *SQLiteRepository) LoadBalances(ctx context.Context) store.Loaded[core.Balances] {
	var b core.Balances
	err := r.db.QueryRowContext(ctx, `SELECT account, savings FROM balances WHERE id = 1`).Scan(&b.Account, &b.Savings)
	if l, done := loadFailed(ctx, "balances", core.Balances{}, err); done {
		return l
	}
	return store.Found(b.Normalize())
}

func (r *SQLiteRepository) SaveBalances(ctx context.Context, b core.Balances) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO balances (id, account, savings) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET account = excluded.account, savings = excluded.savings`,
		b.Account, b.Savings)
	if err != nil {
		return fmt.Errorf("save balances: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LoadGoal(ctx context.Context) store.Loaded[core.Goal] {
	var g core.Goal
	err := r.db.QueryRowContext(ctx, `SELECT name, amount FROM goal WHERE id = 1`).Scan(&g.Name, &g.Amount)
	if l, done := loadFailed(ctx, "goal", core.DefaultGoal(), err); done {
		return l
	}
	return store.Found(g.Normalize())
}

func (r *SQLiteRepository) SaveGoal(ctx context.Context, g core.Goal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goal (id, name, amount) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, amount = excluded.amount`,
		g.Name, g.Amount)
	if err != nil {
		return fmt.Errorf("save goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM goal`); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LoadSettings(ctx context.Context) store.Loaded[core.Settings] {
	var s core.Settings
	err := r.db.QueryRowContext(ctx, `SELECT auto_save_percent FROM settings WHERE id = 1`).Scan(&s.AutoSavePercent)
	if l, done := loadFailed(ctx, "settings", core.Settings{}, err); done {
		return l
	}
	return store.Found(s.Normalize())
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.Settings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (id, auto_save_percent) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET auto_save_percent = excluded.auto_save_percent`,
		s.AutoSavePercent)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LoadTheme(ctx context.Context) store.Loaded[core.Theme] {
	var t core.Theme
	err := r.db.QueryRowContext(ctx, `SELECT bg, text FROM theme WHERE id = 1`).Scan(&t.Background, &t.Text)
	if l, done := loadFailed(ctx, "theme", core.DefaultTheme(), err); done {
		return l
	}
	if !t.Valid() {
		slog.WarnContext(ctx, "Invalid theme colors, using default", "table", "theme", "bg", t.Background, "text", t.Text)
		return store.Defaulted(core.DefaultTheme(), fmt.Errorf("invalid theme colors %q/%q", t.Background, t.Text))
	}
	return store.Found(t)
}

func (r *SQLiteRepository) SaveTheme(ctx context.Context, t core.Theme) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO theme (id, bg, text) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET bg = excluded.bg, text = excluded.text`,
		t.Background, t.Text)
	if err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AppendTransaction(ctx context.Context, t core.Transaction) error {
	if err := insertTransaction(ctx, r.db, t); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Transaction saved to SQLite", "type", t.Type, "amount", t.Amount)
	return nil
}

// LoadTransactions returns the ledger in append order.
func (r *SQLiteRepository) LoadTransactions(ctx context.Context) store.Loaded[[]core.Transaction] {
	rows, err := r.db.QueryContext(ctx, `SELECT ts, type, amount, note FROM transactions ORDER BY id`)
	if err != nil {
		slog.WarnContext(ctx, "Cannot query ledger, using empty ledger", "table", "transactions", "error", err)
		return store.Defaulted([]core.Transaction{}, fmt.Errorf("query transactions: %w", err))
	}
	defer rows.Close()

	txns := []core.Transaction{}
	var skipped []error
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.TS, &t.Type, &t.Amount, &t.Note); err != nil {
			skipped = append(skipped, err)
			continue
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		skipped = append(skipped, err)
	}
	if len(txns) == 0 && len(skipped) == 0 {
		return store.Defaulted(txns, nil)
	}

	l := store.Found(txns)
	if len(skipped) > 0 {
		l.Err = errors.Join(skipped...)
		slog.WarnContext(ctx, "Skipped unreadable ledger rows", "table", "transactions", "skipped", len(skipped))
	}
	return l
}

// RewriteTransactions replaces the ledger inside one transaction.
func (r *SQLiteRepository) RewriteTransactions(ctx context.Context, txns []core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rewrite: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	for _, t := range txns {
		if err := insertTransaction(ctx, tx, t); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rewrite: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) RecordUnknownCommand(ctx context.Context, at time.Time, line string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO unknown_commands (recorded_at, line) VALUES (?, ?)`,
		at.Format("2006-01-02T15:04:05"), line)
	if err != nil {
		return fmt.Errorf("record unknown command: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Reset(ctx context.Context, scope store.Scope) error {
	tables := []string{"balances", "goal", "settings", "transactions"}
	if scope == store.ScopeAll {
		tables = append(tables, "theme")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}

	slog.InfoContext(ctx, "Store reset", "backend", "sqlite", "tables", len(tables))
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTransaction(ctx context.Context, db execer, t core.Transaction) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO transactions (ts, type, amount, note) VALUES (?, ?, ?, ?)`,
		t.TS, string(t.Type), t.Amount, t.Note)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// loadFailed maps a singleton read error to a default. done is false when
// the row was read successfully.
func loadFailed[T any](ctx context.Context, table string, def T, err error) (store.Loaded[T], bool) {
	switch {
	case err == nil:
		return store.Loaded[T]{}, false
	case errors.Is(err, sql.ErrNoRows):
		return store.Defaulted(def, nil), true
	default:
		slog.WarnContext(ctx, "Cannot read state row, using default", "table", table, "error", err)
		return store.Defaulted(def, fmt.Errorf("read %s: %w", table, err)), true
	}
}
