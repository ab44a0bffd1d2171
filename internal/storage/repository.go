// Package storage is the SQLite persistence backend for the ledger. It
// implements ledger.Store; the atomic-commit contract lives in
// CommitMutation, which wraps the transaction row change and every wallet
// balance delta in one SQL transaction.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteRepository)(nil)

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

func (r *SQLiteRepository) LoadWallets(ctx context.Context) ([]core.Wallet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, balance_cents, type, color FROM wallets`)
	if err != nil {
		return nil, fmt.Errorf("query wallets: %w", err)
	}
	defer rows.Close()

	var wallets []core.Wallet
	for rows.Next() {
		var (
			w  core.Wallet
			id string
		)
		if err := rows.Scan(&id, &w.Name, &w.Balance.Cents, &w.Type, &w.Color); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		if w.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse wallet id %q: %w", id, err)
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

func (r *SQLiteRepository) LoadCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, icon, color, monthly_budget_cents FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var (
			c      core.Category
			id     string
			budget sql.NullInt64
		)
		if err := rows.Scan(&id, &c.Name, &c.Icon, &c.Color, &budget); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if c.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse category id %q: %w", id, err)
		}
		if budget.Valid {
			c.MonthlyBudget = &core.Money{Cents: budget.Int64}
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, amount_cents, description, date, category_id, wallet_id, created_at
		 FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		t          core.Transaction
		id         string
		date       string
		categoryID sql.NullString
		walletID   sql.NullString
		createdAt  string
	)
	if err := rows.Scan(&id, &t.Type, &t.Amount.Cents, &t.Description, &date,
		&categoryID, &walletID, &createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	var err error
	if t.ID, err = uuid.Parse(id); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction id %q: %w", id, err)
	}
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	t.Date = core.DateOf(day)
	if t.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if categoryID.Valid {
		cid, err := uuid.Parse(categoryID.String)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse category id %q: %w", categoryID.String, err)
		}
		t.CategoryID = &cid
	}
	if walletID.Valid {
		wid, err := uuid.Parse(walletID.String)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse wallet id %q: %w", walletID.String, err)
		}
		t.WalletID = &wid
	}
	return t, nil
}

func (r *SQLiteRepository) LoadProfile(ctx context.Context) (core.Profile, error) {
	var (
		p         core.Profile
		weekStart int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT total_budget_cents, reset_day, week_start FROM profile WHERE id = 1`).
		Scan(&p.TotalBudget.Cents, &p.ResetDay, &weekStart)
	if err != nil {
		return core.Profile{}, fmt.Errorf("query profile: %w", err)
	}
	p.WeekStart = time.Weekday(weekStart)
	return p, nil
}

// CommitMutation writes the transaction change and its balance deltas in
// one SQL transaction. Any failure rolls everything back; the caller's
// in-memory state stays pre-mutation.
func (r *SQLiteRepository) CommitMutation(ctx context.Context, m ledger.TransactionMutation, deltas []ledger.BalanceDelta) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback()

	switch m.Kind {
	case ledger.MutationCreate, ledger.MutationUpdate:
		t := m.Transaction
		var categoryID, walletID any
		if t.CategoryID != nil {
			categoryID = t.CategoryID.String()
		}
		if t.WalletID != nil {
			walletID = t.WalletID.String()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO transactions (id, type, amount_cents, description, date, category_id, wallet_id, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   type = excluded.type,
			   amount_cents = excluded.amount_cents,
			   description = excluded.description,
			   date = excluded.date,
			   category_id = excluded.category_id,
			   wallet_id = excluded.wallet_id`,
			t.ID.String(), t.Type, t.Amount.Cents, t.Description,
			t.Date.Format(dateLayout), categoryID, walletID,
			t.CreatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("upsert transaction: %w", err)
		}
	case ledger.MutationDelete:
		_, err = tx.ExecContext(ctx,
			`DELETE FROM transactions WHERE id = ?`, m.Transaction.ID.String())
		if err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
	default:
		return fmt.Errorf("unknown mutation kind %q", m.Kind)
	}

	for _, d := range deltas {
		res, err := tx.ExecContext(ctx,
			`UPDATE wallets SET balance_cents = balance_cents + ? WHERE id = ?`,
			d.Delta.Cents, d.WalletID.String())
		if err != nil {
			return fmt.Errorf("apply balance delta: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("balance delta rows: %w", err)
		}
		if n != 1 {
			return fmt.Errorf("apply balance delta: wallet %s not found", d.WalletID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mutation: %w", err)
	}

	slog.InfoContext(ctx, "Ledger mutation committed",
		"kind", string(m.Kind),
		"transaction_id", m.Transaction.ID.String(),
		"balance_deltas", len(deltas))
	return nil
}

func (r *SQLiteRepository) SaveWallet(ctx context.Context, w core.Wallet) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wallets (id, name, balance_cents, type, color)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   balance_cents = excluded.balance_cents,
		   type = excluded.type,
		   color = excluded.color`,
		w.ID.String(), w.Name, w.Balance.Cents, w.Type, w.Color)
	if err != nil {
		return fmt.Errorf("save wallet: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteWallet(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM wallets WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SaveCategory(ctx context.Context, c core.Category) error {
	var budget any
	if c.MonthlyBudget != nil {
		budget = c.MonthlyBudget.Cents
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, icon, color, monthly_budget_cents)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   icon = excluded.icon,
		   color = excluded.color,
		   monthly_budget_cents = excluded.monthly_budget_cents`,
		c.ID.String(), c.Name, c.Icon, c.Color, budget)
	if err != nil {
		return fmt.Errorf("save category: %w", err)
	}
	return nil
}

// DeleteCategory removes the category and rewrites transaction references
// in the same SQL transaction, so no dangling reference survives a crash
// between the two statements.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id uuid.UUID, reassignTo *uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	var newRef any
	if reassignTo != nil {
		newRef = reassignTo.String()
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE transactions SET category_id = ? WHERE category_id = ?`,
		newRef, id.String()); err != nil {
		return fmt.Errorf("reassign transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SaveProfile(ctx context.Context, p core.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE profile SET total_budget_cents = ?, reset_day = ?, week_start = ? WHERE id = 1`,
		p.TotalBudget.Cents, p.ResetDay, int(p.WeekStart))
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
