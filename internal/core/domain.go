package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Wallet types as stored on the wallet record.
const (
	WalletCard    WalletType = "card"
	WalletCash    WalletType = "cash"
	WalletBank    WalletType = "bank"
	WalletSavings WalletType = "savings"
	WalletEWallet WalletType = "ewallet"
	WalletCrypto  WalletType = "crypto"
)

// Transaction types. The sign of a transaction's balance effect is derived
// from the type; amounts are stored as positive magnitudes.
const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

type (
	WalletType      string
	TransactionType string

	// Date is a calendar date with no time-of-day component.
	Date struct {
		time.Time
	}

	// Wallet holds a signed balance in the user's single currency.
	// The balance is mutated only through the reconciler; a direct user
	// edit re-anchors the balance invariant instead of violating it.
	Wallet struct {
		ID      uuid.UUID
		Name    string
		Balance Money
		Type    WalletType
		Color   string
	}

	// Category groups expense transactions. A nil MonthlyBudget means the
	// category only tracks spending and has no limit.
	Category struct {
		ID            uuid.UUID
		Name          string
		Icon          string
		Color         string
		MonthlyBudget *Money
	}

	// Transaction is a single income or expense record. CategoryID is set
	// for expenses only; WalletID is optional (a transaction without a
	// wallet is recorded but has no balance effect). CreatedAt orders
	// same-day transactions and drives hour-of-day bucketing.
	Transaction struct {
		ID          uuid.UUID
		Type        TransactionType
		Amount      Money
		Description string
		Date        Date
		CategoryID  *uuid.UUID
		WalletID    *uuid.UUID
		CreatedAt   time.Time
	}

	// Profile anchors the monthly budget. TotalBudget is set explicitly by
	// the user and never recomputed from transactions; it is the
	// denominator for "budget used" and allocation percentages. ResetDay
	// is 1..31, or LastDayOfMonth.
	Profile struct {
		TotalBudget Money
		ResetDay    int
		WeekStart   time.Weekday
	}
)

// LastDayOfMonth is the ResetDay sentinel for "last calendar day".
const LastDayOfMonth = -1

// Validation errors surfaced directly to callers, never retried.
var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyName         = errors.New("empty name")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidWalletType = errors.New("invalid wallet type")
	ErrInvalidTxnType    = errors.New("invalid transaction type")
	ErrMissingCategory   = errors.New("expense requires a category")
	ErrInvalidResetDay   = errors.New("invalid budget reset day")
	ErrInvalidGranularity = errors.New("invalid granularity")
	ErrInvalidPeriod      = errors.New("invalid period")
)

// NewDate builds a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// SameDay reports whether two dates fall on the same calendar day.
func (d Date) SameDay(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month() && d.Day() == other.Day()
}

func (t WalletType) Validate() error {
	switch t {
	case WalletCard, WalletCash, WalletBank, WalletSavings, WalletEWallet, WalletCrypto:
		return nil
	}
	return ErrInvalidWalletType
}

func (w Wallet) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return ErrEmptyName
	}
	return w.Type.Validate()
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.MonthlyBudget != nil {
		if err := c.MonthlyBudget.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Expense, Income:
		return nil
	}
	return ErrInvalidTxnType
}

func (t Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Type == Expense && t.CategoryID == nil {
		return ErrMissingCategory
	}
	return nil
}

// BalanceEffect is the signed amount this transaction contributes to its
// wallet's balance: positive for income, negative for expense.
func (t Transaction) BalanceEffect() Money {
	if t.Type == Income {
		return t.Amount
	}
	return t.Amount.Neg()
}

// Normalized returns a copy with income category references dropped;
// category is an expense-only concept in this model.
func (t Transaction) Normalized() Transaction {
	if t.Type == Income {
		t.CategoryID = nil
	}
	return t
}

func (p Profile) Validate() error {
	if p.ResetDay != LastDayOfMonth && (p.ResetDay < 1 || p.ResetDay > 31) {
		return ErrInvalidResetDay
	}
	if p.TotalBudget.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
