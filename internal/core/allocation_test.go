package core

import (
	"testing"

	"github.com/google/uuid"
)

func budgeted(name string, cents int64) Category {
	b := Money{Cents: cents}
	return Category{ID: uuid.New(), Name: name, MonthlyBudget: &b}
}

func TestComputeAllocation(t *testing.T) {
	profile := Profile{TotalBudget: Money{Cents: 100000}, ResetDay: 1}

	cats := []Category{
		budgeted("Groceries", 50000),
		budgeted("Transport", 50000),
		{ID: uuid.New(), Name: "Misc"}, // track-only, contributes 0
	}
	got := ComputeAllocation(cats, profile)
	if got.AllocatedTotal.Cents != 100000 {
		t.Fatalf("expected total 100000, got %d", got.AllocatedTotal.Cents)
	}
	if got.Percent != 100 {
		t.Fatalf("expected 100%%, got %d", got.Percent)
	}
	if got.OverAllocated {
		t.Fatalf("exactly full allocation must not be over-allocated")
	}
	if len(got.PerCategory) != 2 {
		t.Fatalf("expected 2 budgeted categories, got %d", len(got.PerCategory))
	}

	// One extra cent flips the over-allocated flag.
	cats = append(cats, budgeted("Coffee", 1))
	got = ComputeAllocation(cats, profile)
	if !got.OverAllocated {
		t.Fatalf("expected over-allocated")
	}
}

func TestComputeAllocationNoAnchor(t *testing.T) {
	got := ComputeAllocation([]Category{budgeted("Groceries", 50000)}, Profile{})
	if got.Percent != 0 {
		t.Fatalf("unset anchor: expected percent 0, got %d", got.Percent)
	}
	if got.OverAllocated {
		t.Fatalf("unset anchor: nothing to over-allocate against")
	}
}

func TestComputeCategorySpendStatus(t *testing.T) {
	period := NewPeriod(NewDate(2026, 3, 1), NewDate(2026, 3, 31))
	cat := budgeted("Groceries", 10000)

	spendOf := func(cents int64) []Transaction {
		return []Transaction{{
			Type:       Expense,
			Amount:     Money{Cents: cents},
			Date:       NewDate(2026, 3, 10),
			CategoryID: &cat.ID,
		}}
	}

	cases := []struct {
		spentCents int64
		isWarning  bool
		isOver     bool
		level      SpendLevel
	}{
		{7900, false, false, SpendNormal},
		{8000, true, false, SpendWarning},
		{9999, true, false, SpendWarning},
		{10000, false, true, SpendOver},
		{12000, false, true, SpendOver},
	}
	for _, tc := range cases {
		got := ComputeCategorySpendStatus(cat, spendOf(tc.spentCents), period)
		if got.IsWarning != tc.isWarning || got.IsOver != tc.isOver || got.Level != tc.level {
			t.Fatalf("spent %d: expected warning=%v over=%v level=%s, got warning=%v over=%v level=%s",
				tc.spentCents, tc.isWarning, tc.isOver, tc.level, got.IsWarning, got.IsOver, got.Level)
		}
		if got.Remaining.Cents != 10000-tc.spentCents {
			t.Fatalf("spent %d: expected remaining %d, got %d", tc.spentCents, 10000-tc.spentCents, got.Remaining.Cents)
		}
	}
}

func TestComputeCategorySpendStatusTrackOnly(t *testing.T) {
	period := NewPeriod(NewDate(2026, 3, 1), NewDate(2026, 3, 31))
	cat := Category{ID: uuid.New(), Name: "Misc"}
	txns := []Transaction{
		{Type: Expense, Amount: Money{Cents: 5000}, Date: NewDate(2026, 3, 5), CategoryID: &cat.ID},
		{Type: Expense, Amount: Money{Cents: 7000}, Date: NewDate(2026, 3, 6), CategoryID: &cat.ID},
	}
	got := ComputeCategorySpendStatus(cat, txns, period)
	if got.Spent.Cents != 12000 {
		t.Fatalf("expected spent 12000, got %d", got.Spent.Cents)
	}
	if got.HasBudget || got.IsOver || got.IsWarning {
		t.Fatalf("track-only category must carry no budget state: %+v", got)
	}
}

func TestComputeCategorySpendStatusFiltersPeriodAndCategory(t *testing.T) {
	period := NewPeriod(NewDate(2026, 3, 1), NewDate(2026, 3, 31))
	cat := budgeted("Groceries", 10000)
	other := uuid.New()
	txns := []Transaction{
		{Type: Expense, Amount: Money{Cents: 1000}, Date: NewDate(2026, 3, 10), CategoryID: &cat.ID},
		{Type: Expense, Amount: Money{Cents: 2000}, Date: NewDate(2026, 2, 28), CategoryID: &cat.ID}, // outside period
		{Type: Expense, Amount: Money{Cents: 4000}, Date: NewDate(2026, 3, 10), CategoryID: &other},  // other category
		{Type: Income, Amount: Money{Cents: 8000}, Date: NewDate(2026, 3, 10)},                       // income ignored
	}
	got := ComputeCategorySpendStatus(cat, txns, period)
	if got.Spent.Cents != 1000 {
		t.Fatalf("expected spent 1000, got %d", got.Spent.Cents)
	}
}

func TestComputeProjectedAllocation(t *testing.T) {
	others := []Category{budgeted("Groceries", 60000)}
	total := Money{Cents: 100000}

	got := ComputeProjectedAllocation(others, Money{Cents: 30000}, total)
	if got.ProjectedTotal.Cents != 90000 || got.WouldExceed {
		t.Fatalf("expected 90000 within budget, got %+v", got)
	}

	got = ComputeProjectedAllocation(others, Money{Cents: 50000}, total)
	if !got.WouldExceed {
		t.Fatalf("expected projection to exceed")
	}
}

func TestEffectiveTotalBudget(t *testing.T) {
	cats := []Category{budgeted("Groceries", 30000), budgeted("Transport", 20000)}

	anchored := EffectiveTotalBudget(Profile{TotalBudget: Money{Cents: 100000}}, cats)
	if anchored.Cents != 100000 {
		t.Fatalf("anchor present: expected 100000, got %d", anchored.Cents)
	}

	fallback := EffectiveTotalBudget(Profile{}, cats)
	if fallback.Cents != 50000 {
		t.Fatalf("anchor unset: expected 50000, got %d", fallback.Cents)
	}
}

func TestComputeTotalSpendStatus(t *testing.T) {
	period := NewPeriod(NewDate(2026, 3, 1), NewDate(2026, 3, 31))
	txns := []Transaction{
		{Type: Expense, Amount: Money{Cents: 40000}, Date: NewDate(2026, 3, 5)},
		{Type: Expense, Amount: Money{Cents: 45000}, Date: NewDate(2026, 3, 20)},
		{Type: Income, Amount: Money{Cents: 90000}, Date: NewDate(2026, 3, 10)},
		{Type: Expense, Amount: Money{Cents: 9999}, Date: NewDate(2026, 4, 1)}, // outside period
	}

	got := ComputeTotalSpendStatus(txns, period, Money{Cents: 100000})
	if got.Spent.Cents != 85000 {
		t.Fatalf("expected spent 85000, got %d", got.Spent.Cents)
	}
	if got.PercentUsed != 85 || got.Level != SpendWarning {
		t.Fatalf("expected 85%% warning, got %+v", got)
	}

	got = ComputeTotalSpendStatus(txns, period, Money{Cents: 85000})
	if got.Level != SpendOver {
		t.Fatalf("spent equal to budget must be over, got %+v", got)
	}

	got = ComputeTotalSpendStatus(txns, period, Money{})
	if got.HasBudget || got.Level != SpendNormal {
		t.Fatalf("zero budget must carry no level, got %+v", got)
	}
}
