package core

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestWalletValidate(t *testing.T) {
	good := Wallet{ID: uuid.New(), Name: "Checking", Type: WalletBank}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	if err := (Wallet{Name: "", Type: WalletCash}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Wallet{Name: "x", Type: "sock"}).Validate(); !errors.Is(err, ErrInvalidWalletType) {
		t.Fatalf("expected ErrInvalidWalletType, got %v", err)
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{ID: uuid.New(), Name: "Groceries"}).Validate(); err != nil {
		t.Fatalf("track-only category should be valid, got %v", err)
	}
	budget := Money{Cents: 50000}
	if err := (Category{ID: uuid.New(), Name: "Groceries", MonthlyBudget: &budget}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	zero := Money{}
	if err := (Category{ID: uuid.New(), Name: "Groceries", MonthlyBudget: &zero}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	cat := uuid.New()
	good := Transaction{
		ID:          uuid.New(),
		Type:        Expense,
		Amount:      Money{Cents: 1500},
		Description: "lunch",
		Date:        NewDate(2026, 3, 14),
		CategoryID:  &cat,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(tx Transaction) Transaction
		want error
	}{
		{"zero amount", func(tx Transaction) Transaction { tx.Amount = Money{}; return tx }, ErrInvalidAmount},
		{"empty description", func(tx Transaction) Transaction { tx.Description = " "; return tx }, ErrEmptyDescription},
		{"zero date", func(tx Transaction) Transaction { tx.Date = Date{}; return tx }, ErrInvalidDate},
		{"expense without category", func(tx Transaction) Transaction { tx.CategoryID = nil; return tx }, ErrMissingCategory},
		{"bad type", func(tx Transaction) Transaction { tx.Type = "transfer"; return tx }, ErrInvalidTxnType},
	}
	for _, tc := range cases {
		if err := tc.mut(good).Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	// Income never requires a category.
	income := good
	income.Type = Income
	income.CategoryID = nil
	if err := income.Validate(); err != nil {
		t.Fatalf("income without category should be valid, got %v", err)
	}
}

func TestTransactionBalanceEffect(t *testing.T) {
	cat := uuid.New()
	exp := Transaction{Type: Expense, Amount: Money{Cents: 3000}, CategoryID: &cat}
	if got := exp.BalanceEffect(); got.Cents != -3000 {
		t.Fatalf("expense effect: expected -3000, got %d", got.Cents)
	}
	inc := Transaction{Type: Income, Amount: Money{Cents: 3000}}
	if got := inc.BalanceEffect(); got.Cents != 3000 {
		t.Fatalf("income effect: expected 3000, got %d", got.Cents)
	}
}

func TestTransactionNormalized(t *testing.T) {
	cat := uuid.New()
	inc := Transaction{Type: Income, Amount: Money{Cents: 100}, CategoryID: &cat}
	if got := inc.Normalized(); got.CategoryID != nil {
		t.Fatalf("income category should be dropped")
	}
	exp := Transaction{Type: Expense, Amount: Money{Cents: 100}, CategoryID: &cat}
	if got := exp.Normalized(); got.CategoryID == nil {
		t.Fatalf("expense category should survive")
	}
}

func TestProfileValidate(t *testing.T) {
	cases := []struct {
		resetDay int
		ok       bool
	}{
		{1, true},
		{15, true},
		{31, true},
		{LastDayOfMonth, true},
		{0, false},
		{32, false},
		{-2, false},
	}
	for _, tc := range cases {
		p := Profile{TotalBudget: Money{Cents: 100000}, ResetDay: tc.resetDay, WeekStart: time.Monday}
		err := p.Validate()
		if tc.ok && err != nil {
			t.Fatalf("reset day %d: expected ok, got %v", tc.resetDay, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("reset day %d: expected error", tc.resetDay)
		}
	}
}
