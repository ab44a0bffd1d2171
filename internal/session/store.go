// Package session holds the authoritative in-memory state for one user
// session (the entity store) and the balance reconciler that keeps wallet
// balances consistent with the transaction set. A Store is constructed at
// session start, passed explicitly to every consumer, and discarded at
// logout; there is no ambient global.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
)

// Store is the session-scoped entity snapshot. Mutations are reflected
// here before being considered committed; cross-entity validation is the
// reconciler's job, not the store's.
type Store struct {
	mu           sync.RWMutex
	wallets      map[uuid.UUID]core.Wallet
	categories   map[uuid.UUID]core.Category
	transactions map[uuid.UUID]core.Transaction
	profile      core.Profile

	// Per-wallet write serialization: two in-flight edits touching the
	// same wallet must never compute deltas against a stale balance.
	lockMu    sync.Mutex
	walletMus map[uuid.UUID]*sync.Mutex
}

// NewStore builds an empty session store.
func NewStore() *Store {
	return &Store{
		wallets:      make(map[uuid.UUID]core.Wallet),
		categories:   make(map[uuid.UUID]core.Category),
		transactions: make(map[uuid.UUID]core.Transaction),
		profile:      core.Profile{ResetDay: 1},
		walletMus:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// Load builds a session store from the persistence backend's snapshot.
func Load(ctx context.Context, src ledger.SnapshotLoader) (*Store, error) {
	s := NewStore()

	wallets, err := src.LoadWallets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load wallets: %w", err)
	}
	for _, w := range wallets {
		s.wallets[w.ID] = w
	}

	categories, err := src.LoadCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	for _, c := range categories {
		s.categories[c.ID] = c
	}

	transactions, err := src.LoadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	for _, t := range transactions {
		s.transactions[t.ID] = t
	}

	profile, err := src.LoadProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	s.profile = profile

	return s, nil
}

// Wallets returns a copy of all wallets sorted by name.
func (s *Store) Wallets() []core.Wallet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Wallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Wallet looks up one wallet by ID.
func (s *Store) Wallet(id uuid.UUID) (core.Wallet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[id]
	return w, ok
}

// TotalBalance sums every wallet's balance.
func (s *Store) TotalBalance() core.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, w := range s.wallets {
		total += w.Balance.Cents
	}
	return core.Money{Cents: total}
}

// Categories returns a copy of all categories sorted by name.
func (s *Store) Categories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Category looks up one category by ID.
func (s *Store) Category(id uuid.UUID) (core.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	return c, ok
}

// Transactions returns a copy of all transactions, newest first (date,
// then creation timestamp for same-day ordering).
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Transaction looks up one transaction by ID.
func (s *Store) Transaction(id uuid.UUID) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	return t, ok
}

// Profile returns the budget profile.
func (s *Store) Profile() core.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// walletLock returns the serialization mutex for a wallet, creating it on
// first use.
func (s *Store) walletLock(id uuid.UUID) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	mu, ok := s.walletMus[id]
	if !ok {
		mu = &sync.Mutex{}
		s.walletMus[id] = mu
	}
	return mu
}

// lockWallets acquires the per-wallet mutexes for the given IDs in a
// deterministic order so a wallet-switch update cannot deadlock against a
// concurrent switch in the opposite direction. Returns the unlock func.
func (s *Store) lockWallets(ids ...uuid.UUID) func() {
	uniq := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i].String() < uniq[j].String() })

	locked := make([]*sync.Mutex, 0, len(uniq))
	for _, id := range uniq {
		mu := s.walletLock(id)
		mu.Lock()
		locked = append(locked, mu)
	}
	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}

// --- internal mutators used by the reconciler ---

func (s *Store) putTransaction(t core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[t.ID] = t
}

func (s *Store) removeTransaction(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transactions, id)
}

// applyMutation applies a transaction change together with its balance
// deltas in one critical section so readers never observe a partially
// reconciled snapshot.
func (s *Store) applyMutation(m ledger.TransactionMutation, deltas []ledger.BalanceDelta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch m.Kind {
	case ledger.MutationCreate, ledger.MutationUpdate:
		s.transactions[m.Transaction.ID] = m.Transaction
	case ledger.MutationDelete:
		delete(s.transactions, m.Transaction.ID)
	}
	for _, d := range deltas {
		w := s.wallets[d.WalletID]
		w.Balance = w.Balance.Add(d.Delta)
		s.wallets[d.WalletID] = w
	}
}

func (s *Store) putWallet(w core.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[w.ID] = w
}

func (s *Store) removeWallet(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wallets, id)
}

func (s *Store) putCategory(c core.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
}

// removeCategory drops the category and rewrites transaction references to
// reassignTo (nil clears them).
func (s *Store) removeCategory(id uuid.UUID, reassignTo *uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.categories, id)
	for tid, t := range s.transactions {
		if t.CategoryID != nil && *t.CategoryID == id {
			t.CategoryID = reassignTo
			s.transactions[tid] = t
		}
	}
}

func (s *Store) setProfile(p core.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// walletRefs counts transactions referencing the wallet and their total
// magnitude; used for the delete guard.
func (s *Store) walletRefs(id uuid.UUID) (int, core.Money) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int
	var total int64
	for _, t := range s.transactions {
		if t.WalletID != nil && *t.WalletID == id {
			count++
			total += t.Amount.Cents
		}
	}
	return count, core.Money{Cents: total}
}
