// Package services orchestrates ledger operations across the session
// store, the SQLite backend, and the AMQP alert boundary.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
	"bilancio/internal/session"
)

// LedgerService wraps the reconciler with budget alert evaluation: every
// mutation that can move period spending is followed by a threshold check,
// and level escalations are published to the alert boundary. Publishing is
// best-effort and never fails the mutation.
type LedgerService struct {
	store      *session.Store
	reconciler *session.Reconciler
	backend    ledger.Store
	alerts     ledger.AlertPublisher

	// now is swapped in tests to pin the budget period.
	now func() time.Time
}

func NewLedgerService(store *session.Store, backend ledger.Store, alerts ledger.AlertPublisher) *LedgerService {
	return &LedgerService{
		store:      store,
		reconciler: session.NewReconciler(store, backend),
		backend:    backend,
		alerts:     alerts,
		now:        time.Now,
	}
}

func (s *LedgerService) Store() *session.Store { return s.store }

// CurrentPeriod is the budget period containing today, from the profile's
// reset day.
func (s *LedgerService) CurrentPeriod() core.Period {
	return core.BudgetPeriodFor(s.store.Profile().ResetDay, core.DateOf(s.now()))
}

// CreateTransaction records a transaction and publishes any budget alert
// the new spending triggers.
func (s *LedgerService) CreateTransaction(ctx context.Context, txn core.Transaction) (core.Transaction, error) {
	before := s.alertSnapshot(categoryRefs(txn.CategoryID))

	created, err := s.reconciler.CreateTransaction(ctx, txn)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publishEscalations(ctx, before)
	return created, nil
}

// UpdateTransaction edits a transaction; both the old and the new category
// are re-checked for alerts since spending moved between them.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id uuid.UUID, updated core.Transaction) (core.Transaction, error) {
	var refs []uuid.UUID
	if original, ok := s.store.Transaction(id); ok {
		refs = categoryRefs(original.CategoryID)
	}
	refs = append(refs, categoryRefs(updated.CategoryID)...)
	before := s.alertSnapshot(refs)

	result, err := s.reconciler.UpdateTransaction(ctx, id, updated)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publishEscalations(ctx, before)
	return result, nil
}

// DeleteTransaction removes a transaction. Deletes only lower spending, so
// no alert evaluation runs.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return s.reconciler.DeleteTransaction(ctx, id)
}

// CheckSufficientFunds is the advisory pre-flight: it reports whether the
// wallet covers the amount but never blocks the mutation.
func (s *LedgerService) CheckSufficientFunds(walletID uuid.UUID, amount core.Money) (bool, error) {
	return s.reconciler.CheckSufficientFunds(walletID, amount)
}

func (s *LedgerService) CreateWallet(ctx context.Context, w core.Wallet) (core.Wallet, error) {
	return s.reconciler.CreateWallet(ctx, w)
}

func (s *LedgerService) UpdateWallet(ctx context.Context, w core.Wallet) (core.Wallet, error) {
	return s.reconciler.UpdateWallet(ctx, w)
}

func (s *LedgerService) DeleteWallet(ctx context.Context, id uuid.UUID) error {
	return s.reconciler.DeleteWallet(ctx, id)
}

func (s *LedgerService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	return s.reconciler.CreateCategory(ctx, c)
}

// UpdateCategory edits category fields. A lowered budget can push the
// category over a threshold without any new spending, so alerts are
// re-evaluated.
func (s *LedgerService) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	before := s.alertSnapshot([]uuid.UUID{c.ID})

	result, err := s.reconciler.UpdateCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}

	s.publishEscalations(ctx, before)
	return result, nil
}

func (s *LedgerService) DeleteCategory(ctx context.Context, id uuid.UUID, reassignTo *uuid.UUID) error {
	var before alertSnapshot
	if reassignTo != nil {
		// Reassigned spending can push the target category over a threshold.
		before = s.alertSnapshot([]uuid.UUID{*reassignTo})
	}

	if err := s.reconciler.DeleteCategory(ctx, id, reassignTo); err != nil {
		return err
	}

	if reassignTo != nil {
		s.publishEscalations(ctx, before)
	}
	return nil
}

// UpdateProfile replaces the budget profile. A lowered total budget can
// trigger a total budget alert immediately.
func (s *LedgerService) UpdateProfile(ctx context.Context, p core.Profile) (core.Profile, error) {
	before := s.alertSnapshot(nil)

	result, err := s.reconciler.UpdateProfile(ctx, p)
	if err != nil {
		return core.Profile{}, err
	}

	s.publishEscalations(ctx, before)
	return result, nil
}

// Close closes the persistence backend and the alert publisher.
func (s *LedgerService) Close() error {
	var errs []error

	if closer, ok := s.backend.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if closer, ok := s.alerts.(io.Closer); ok && s.alerts != nil {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}

func categoryRefs(id *uuid.UUID) []uuid.UUID {
	if id == nil {
		return nil
	}
	return []uuid.UUID{*id}
}

func logPublishFailure(ctx context.Context, err error, what string) {
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish budget alert",
			"alert", what, "error", err)
	}
}
