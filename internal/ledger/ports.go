// Package ledger defines the ports between the ledger core and its
// collaborators: the persistence backend and the budget alert sink.
// Adapters live in internal/storage (SQLite), internal/ledger/memory, and
// internal/amqp.
package ledger

import (
	"context"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

// Transaction mutation kinds carried to the persistence backend.
const (
	MutationCreate MutationKind = "create"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
)

type (
	MutationKind string

	// BalanceDelta is one wallet balance adjustment that must land
	// atomically with its transaction mutation.
	BalanceDelta struct {
		WalletID uuid.UUID
		Delta    core.Money
	}

	// TransactionMutation couples the mutated transaction record with the
	// kind of change. For deletes only the ID is meaningful.
	TransactionMutation struct {
		Kind        MutationKind
		Transaction core.Transaction
	}
)

// SnapshotLoader loads the user's full entity snapshot at session start.
type SnapshotLoader interface {
	LoadWallets(ctx context.Context) ([]core.Wallet, error)
	LoadCategories(ctx context.Context) ([]core.Category, error)
	LoadTransactions(ctx context.Context) ([]core.Transaction, error)
	LoadProfile(ctx context.Context) (core.Profile, error)
}

// Committer persists mutations. CommitMutation is all-or-nothing: the
// transaction row and every balance delta land together or not at all.
type Committer interface {
	CommitMutation(ctx context.Context, m TransactionMutation, deltas []BalanceDelta) error
	SaveWallet(ctx context.Context, w core.Wallet) error
	DeleteWallet(ctx context.Context, id uuid.UUID) error
	SaveCategory(ctx context.Context, c core.Category) error
	// DeleteCategory removes the category and, in the same unit of work,
	// either reassigns its transactions to reassignTo or clears their
	// category reference when reassignTo is nil.
	DeleteCategory(ctx context.Context, id uuid.UUID, reassignTo *uuid.UUID) error
	SaveProfile(ctx context.Context, p core.Profile) error
}

// Store is a full persistence backend.
type Store interface {
	SnapshotLoader
	Committer
}

// Alert levels published to the notification boundary.
const (
	AlertWarning AlertLevel = "warning"
	AlertOver    AlertLevel = "over"
)

type (
	AlertLevel string

	// CategoryAlert reports one category's budget usage crossing a
	// threshold.
	CategoryAlert struct {
		CategoryID  uuid.UUID
		Name        string
		Level       AlertLevel
		PercentUsed int
	}

	// TotalBudgetAlert reports overall budget usage for the current
	// period.
	TotalBudgetAlert struct {
		Level       AlertLevel
		PercentUsed int
	}
)

// AlertPublisher hands computed alerts to the notification boundary. The
// publisher decides delivery; the core never calls delivery channels.
type AlertPublisher interface {
	PublishCategoryAlert(ctx context.Context, a CategoryAlert) error
	PublishTotalBudgetAlert(ctx context.Context, a TotalBudgetAlert) error
}
