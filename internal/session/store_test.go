package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/ledger/memory"
)

func newID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

func TestLoadSnapshot(t *testing.T) {
	backend := memory.New()
	ctx := context.Background()

	w := core.Wallet{ID: newID(t), Name: "Main", Balance: core.Money{Cents: 5000}, Type: core.WalletBank}
	if err := backend.SaveWallet(ctx, w); err != nil {
		t.Fatalf("seed wallet: %v", err)
	}
	c := core.Category{ID: newID(t), Name: "Groceries"}
	if err := backend.SaveCategory(ctx, c); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	p := core.Profile{TotalBudget: core.Money{Cents: 100000}, ResetDay: 15, WeekStart: time.Sunday}
	if err := backend.SaveProfile(ctx, p); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	store, err := Load(ctx, backend)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, ok := store.Wallet(w.ID); !ok || got.Balance.Cents != 5000 {
		t.Fatalf("wallet not loaded: %+v ok=%v", got, ok)
	}
	if _, ok := store.Category(c.ID); !ok {
		t.Fatalf("category not loaded")
	}
	if got := store.Profile(); got.ResetDay != 15 || got.WeekStart != time.Sunday {
		t.Fatalf("profile not loaded: %+v", got)
	}
}

func TestTransactionsNewestFirst(t *testing.T) {
	store := NewStore()
	older := core.Transaction{
		ID: newID(t), Type: core.Income, Amount: core.Money{Cents: 100},
		Date: core.NewDate(2026, 3, 1), CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	sameDayEarly := core.Transaction{
		ID: newID(t), Type: core.Income, Amount: core.Money{Cents: 200},
		Date: core.NewDate(2026, 3, 2), CreatedAt: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	}
	sameDayLate := core.Transaction{
		ID: newID(t), Type: core.Income, Amount: core.Money{Cents: 300},
		Date: core.NewDate(2026, 3, 2), CreatedAt: time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC),
	}
	store.putTransaction(older)
	store.putTransaction(sameDayEarly)
	store.putTransaction(sameDayLate)

	got := store.Transactions()
	if len(got) != 3 {
		t.Fatalf("expected 3, got %d", len(got))
	}
	if got[0].ID != sameDayLate.ID || got[1].ID != sameDayEarly.ID || got[2].ID != older.ID {
		t.Fatalf("wrong order: %v %v %v", got[0].Amount.Cents, got[1].Amount.Cents, got[2].Amount.Cents)
	}
}

func TestTotalBalance(t *testing.T) {
	store := NewStore()
	store.putWallet(core.Wallet{ID: newID(t), Name: "A", Balance: core.Money{Cents: 1000}, Type: core.WalletCash})
	store.putWallet(core.Wallet{ID: newID(t), Name: "B", Balance: core.Money{Cents: -250}, Type: core.WalletCard})
	if got := store.TotalBalance(); got.Cents != 750 {
		t.Fatalf("expected 750, got %d", got.Cents)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	store := NewStore()
	store.putWallet(core.Wallet{ID: newID(t), Name: "A", Balance: core.Money{Cents: 1000}, Type: core.WalletCash})

	wallets := store.Wallets()
	wallets[0].Balance = core.Money{Cents: 999999}

	if got := store.Wallets()[0].Balance.Cents; got != 1000 {
		t.Fatalf("mutating the returned slice must not touch the store, got %d", got)
	}
}
