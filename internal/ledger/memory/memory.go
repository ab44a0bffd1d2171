// Package memory is an in-memory ledger.Store used in tests and when
// running without a database.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
)

// Store keeps all entities in maps guarded by one mutex. Commit semantics
// match the SQLite backend: a mutation and its balance deltas apply
// together or not at all.
type Store struct {
	mu           sync.Mutex
	wallets      map[uuid.UUID]core.Wallet
	categories   map[uuid.UUID]core.Category
	transactions map[uuid.UUID]core.Transaction
	profile      core.Profile

	// FailCommits makes every CommitMutation fail; tests use it to
	// exercise the reconciler's rollback path.
	FailCommits bool
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		wallets:      make(map[uuid.UUID]core.Wallet),
		categories:   make(map[uuid.UUID]core.Category),
		transactions: make(map[uuid.UUID]core.Transaction),
		profile:      core.Profile{ResetDay: 1},
	}
}

func (s *Store) LoadWallets(ctx context.Context) ([]core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Wallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		out = append(out, w)
	}
	return out, nil
}

func (s *Store) LoadCategories(ctx context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) LoadProfile(ctx context.Context) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, nil
}

func (s *Store) CommitMutation(ctx context.Context, m ledger.TransactionMutation, deltas []ledger.BalanceDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailCommits {
		return fmt.Errorf("commit mutation: backend unavailable")
	}

	for _, d := range deltas {
		if _, ok := s.wallets[d.WalletID]; !ok {
			return fmt.Errorf("commit mutation: unknown wallet %s", d.WalletID)
		}
	}

	switch m.Kind {
	case ledger.MutationCreate, ledger.MutationUpdate:
		s.transactions[m.Transaction.ID] = m.Transaction
	case ledger.MutationDelete:
		delete(s.transactions, m.Transaction.ID)
	default:
		return fmt.Errorf("commit mutation: unknown kind %q", m.Kind)
	}

	for _, d := range deltas {
		w := s.wallets[d.WalletID]
		w.Balance = w.Balance.Add(d.Delta)
		s.wallets[d.WalletID] = w
	}
	return nil
}

func (s *Store) SaveWallet(ctx context.Context, w core.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[w.ID] = w
	return nil
}

func (s *Store) DeleteWallet(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wallets, id)
	return nil
}

func (s *Store) SaveCategory(ctx context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID, reassignTo *uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.categories, id)
	for tid, t := range s.transactions {
		if t.CategoryID != nil && *t.CategoryID == id {
			t.CategoryID = reassignTo
			s.transactions[tid] = t
		}
	}
	return nil
}

func (s *Store) SaveProfile(ctx context.Context, p core.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	return nil
}
