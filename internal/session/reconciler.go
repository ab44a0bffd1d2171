package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
)

// Reconciler applies ledger mutations: it validates input, computes the
// wallet balance deltas that keep the balance invariant intact, commits
// the mutation atomically to the persistence backend, and only then
// reflects it in the session store. On a failed commit the store is left
// untouched, so callers never observe a partial apply.
//
// The reconciler never logs and never retries; every failure is an
// explicit return value.
type Reconciler struct {
	store   *Store
	backend ledger.Committer
}

func NewReconciler(store *Store, backend ledger.Committer) *Reconciler {
	return &Reconciler{store: store, backend: backend}
}

// CreateTransaction validates and records a transaction, applying its
// signed amount to the wallet balance when a wallet is set. A transaction
// without a wallet is recorded with no balance effect.
func (r *Reconciler) CreateTransaction(ctx context.Context, txn core.Transaction) (core.Transaction, error) {
	txn = txn.Normalized()
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}
	if err := txn.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := r.checkRefs(txn); err != nil {
		return core.Transaction{}, err
	}

	var deltas []ledger.BalanceDelta
	if txn.WalletID != nil {
		unlock := r.store.lockWallets(*txn.WalletID)
		defer unlock()
		deltas = []ledger.BalanceDelta{{WalletID: *txn.WalletID, Delta: txn.BalanceEffect()}}
	}

	m := ledger.TransactionMutation{Kind: ledger.MutationCreate, Transaction: txn}
	if err := r.backend.CommitMutation(ctx, m, deltas); err != nil {
		return core.Transaction{}, &PersistenceError{Op: "create transaction", Err: err}
	}
	r.store.applyMutation(m, deltas)
	return txn, nil
}

// UpdateTransaction reconciles an edit in one logical step. When the
// wallet is unchanged, an amount change applies a signed delta to the one
// wallet. When the wallet changed, the old wallet is fully reverted with
// the old effect and the new wallet fully applied with the new effect —
// never a cross-wallet delta — and both balance writes land together or
// not at all.
func (r *Reconciler) UpdateTransaction(ctx context.Context, id uuid.UUID, updated core.Transaction) (core.Transaction, error) {
	original, ok := r.store.Transaction(id)
	if !ok {
		return core.Transaction{}, &NotFoundError{Resource: "transaction", ID: id}
	}

	updated.ID = id
	updated.CreatedAt = original.CreatedAt
	updated = updated.Normalized()
	if err := updated.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := r.checkRefs(updated); err != nil {
		return core.Transaction{}, err
	}

	ids := make([]uuid.UUID, 0, 2)
	if original.WalletID != nil {
		ids = append(ids, *original.WalletID)
	}
	if updated.WalletID != nil {
		ids = append(ids, *updated.WalletID)
	}
	if len(ids) > 0 {
		unlock := r.store.lockWallets(ids...)
		defer unlock()
	}

	deltas := reconcileDeltas(original, updated)
	m := ledger.TransactionMutation{Kind: ledger.MutationUpdate, Transaction: updated}
	if err := r.backend.CommitMutation(ctx, m, deltas); err != nil {
		return core.Transaction{}, &PersistenceError{Op: "update transaction", Err: err}
	}
	r.store.applyMutation(m, deltas)
	return updated, nil
}

// DeleteTransaction removes a transaction and reverts its wallet effect.
func (r *Reconciler) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	txn, ok := r.store.Transaction(id)
	if !ok {
		return &NotFoundError{Resource: "transaction", ID: id}
	}

	var deltas []ledger.BalanceDelta
	if txn.WalletID != nil {
		unlock := r.store.lockWallets(*txn.WalletID)
		defer unlock()
		deltas = []ledger.BalanceDelta{{WalletID: *txn.WalletID, Delta: txn.BalanceEffect().Neg()}}
	}

	m := ledger.TransactionMutation{Kind: ledger.MutationDelete, Transaction: txn}
	if err := r.backend.CommitMutation(ctx, m, deltas); err != nil {
		return &PersistenceError{Op: "delete transaction", Err: err}
	}
	r.store.applyMutation(m, deltas)
	return nil
}

// reconcileDeltas computes the balance writes for an update. Wallet-switch
// semantics take precedence over amount-delta semantics: when the wallet
// changed the old wallet is reverted in full and the new wallet charged in
// full with the new amount.
func reconcileDeltas(original, updated core.Transaction) []ledger.BalanceDelta {
	sameWallet := original.WalletID != nil && updated.WalletID != nil &&
		*original.WalletID == *updated.WalletID

	if sameWallet {
		delta := updated.BalanceEffect().Sub(original.BalanceEffect())
		if delta.IsZero() {
			return nil
		}
		return []ledger.BalanceDelta{{WalletID: *original.WalletID, Delta: delta}}
	}

	var deltas []ledger.BalanceDelta
	if original.WalletID != nil {
		deltas = append(deltas, ledger.BalanceDelta{
			WalletID: *original.WalletID,
			Delta:    original.BalanceEffect().Neg(),
		})
	}
	if updated.WalletID != nil {
		deltas = append(deltas, ledger.BalanceDelta{
			WalletID: *updated.WalletID,
			Delta:    updated.BalanceEffect(),
		})
	}
	return deltas
}

// CheckSufficientFunds is the advisory pre-flight for an expense: it
// reports whether the wallet currently covers the amount. It never blocks
// a mutation — negative balances are allowed, and the caller decides
// whether to warn the user and proceed.
func (r *Reconciler) CheckSufficientFunds(walletID uuid.UUID, amount core.Money) (bool, error) {
	w, ok := r.store.Wallet(walletID)
	if !ok {
		return false, &NotFoundError{Resource: "wallet", ID: walletID}
	}
	return amount.Cents <= w.Balance.Cents, nil
}

// CreateWallet records a new wallet; its starting balance anchors the
// balance invariant.
func (r *Reconciler) CreateWallet(ctx context.Context, w core.Wallet) (core.Wallet, error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if err := w.Validate(); err != nil {
		return core.Wallet{}, err
	}
	if err := r.backend.SaveWallet(ctx, w); err != nil {
		return core.Wallet{}, &PersistenceError{Op: "create wallet", Err: err}
	}
	r.store.putWallet(w)
	return w, nil
}

// UpdateWallet edits wallet fields. An edited balance re-anchors the
// invariant rather than violating it.
func (r *Reconciler) UpdateWallet(ctx context.Context, w core.Wallet) (core.Wallet, error) {
	if _, ok := r.store.Wallet(w.ID); !ok {
		return core.Wallet{}, &NotFoundError{Resource: "wallet", ID: w.ID}
	}
	if err := w.Validate(); err != nil {
		return core.Wallet{}, err
	}

	unlock := r.store.lockWallets(w.ID)
	defer unlock()

	if err := r.backend.SaveWallet(ctx, w); err != nil {
		return core.Wallet{}, &PersistenceError{Op: "update wallet", Err: err}
	}
	r.store.putWallet(w)
	return w, nil
}

// DeleteWallet removes a wallet with no linked transactions. Otherwise it
// fails with a ConflictError carrying the blocking count and total so the
// caller can offer reassignment or deletion first. No balance check: a
// negative wallet can be deleted.
func (r *Reconciler) DeleteWallet(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.store.Wallet(id); !ok {
		return &NotFoundError{Resource: "wallet", ID: id}
	}
	if count, total := r.store.walletRefs(id); count > 0 {
		return &ConflictError{Resource: "wallet", ID: id, Blocking: count, BlockingTotal: total}
	}
	if err := r.backend.DeleteWallet(ctx, id); err != nil {
		return &PersistenceError{Op: "delete wallet", Err: err}
	}
	r.store.removeWallet(id)
	return nil
}

// CreateCategory records a new category.
func (r *Reconciler) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := r.backend.SaveCategory(ctx, c); err != nil {
		return core.Category{}, &PersistenceError{Op: "create category", Err: err}
	}
	r.store.putCategory(c)
	return c, nil
}

// UpdateCategory edits category fields; budget changes have no balance
// effect.
func (r *Reconciler) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if _, ok := r.store.Category(c.ID); !ok {
		return core.Category{}, &NotFoundError{Resource: "category", ID: c.ID}
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := r.backend.SaveCategory(ctx, c); err != nil {
		return core.Category{}, &PersistenceError{Op: "update category", Err: err}
	}
	r.store.putCategory(c)
	return c, nil
}

// DeleteCategory removes a category. Linked transactions are either
// reassigned to reassignTo or have their category reference cleared; they
// are never left dangling. Balances are unaffected.
func (r *Reconciler) DeleteCategory(ctx context.Context, id uuid.UUID, reassignTo *uuid.UUID) error {
	if _, ok := r.store.Category(id); !ok {
		return &NotFoundError{Resource: "category", ID: id}
	}
	if reassignTo != nil {
		if *reassignTo == id {
			return ErrReassignToSelf
		}
		if _, ok := r.store.Category(*reassignTo); !ok {
			return &NotFoundError{Resource: "category", ID: *reassignTo}
		}
	}
	if err := r.backend.DeleteCategory(ctx, id, reassignTo); err != nil {
		return &PersistenceError{Op: "delete category", Err: err}
	}
	r.store.removeCategory(id, reassignTo)
	return nil
}

// UpdateProfile replaces the budget profile. TotalBudget only ever changes
// here, on explicit user edit.
func (r *Reconciler) UpdateProfile(ctx context.Context, p core.Profile) (core.Profile, error) {
	if err := p.Validate(); err != nil {
		return core.Profile{}, err
	}
	if err := r.backend.SaveProfile(ctx, p); err != nil {
		return core.Profile{}, &PersistenceError{Op: "update profile", Err: err}
	}
	r.store.setProfile(p)
	return p, nil
}

// checkRefs verifies the wallet and category referenced by a transaction
// exist in the session.
func (r *Reconciler) checkRefs(txn core.Transaction) error {
	if txn.WalletID != nil {
		if _, ok := r.store.Wallet(*txn.WalletID); !ok {
			return &NotFoundError{Resource: "wallet", ID: *txn.WalletID}
		}
	}
	if txn.CategoryID != nil {
		if _, ok := r.store.Category(*txn.CategoryID); !ok {
			return &NotFoundError{Resource: "category", ID: *txn.CategoryID}
		}
	}
	return nil
}
