package export

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

func status(name string, spent, budget int64) core.CategorySpendStatus {
	cat := core.Category{ID: uuid.New(), Name: name}
	if budget > 0 {
		b := core.Money{Cents: budget}
		cat.MonthlyBudget = &b
	}
	return core.ComputeCategorySpendStatus(cat, []core.Transaction{
		{Type: core.Expense, Amount: core.Money{Cents: spent}, Date: core.NewDate(2026, 3, 10), CategoryID: &cat.ID},
	}, core.NewPeriod(core.NewDate(2026, 3, 1), core.NewDate(2026, 3, 31)))
}

func TestBuildMonthlyReport(t *testing.T) {
	period := core.NewPeriod(core.NewDate(2026, 3, 1), core.NewDate(2026, 3, 31))
	statuses := []core.CategorySpendStatus{
		status("Groceries", 30000, 40000),
		status("Transport", 50000, 45000),
		{Category: core.Category{Name: "Unused"}}, // no spend, no budget
	}
	total := core.TotalSpendStatus{
		Spent:  core.Money{Cents: 80000},
		Budget: core.Money{Cents: 100000},
	}
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	report := BuildMonthlyReport(statuses, total, period, 20, now)

	if len(report.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(report.Rows))
	}
	if report.Rows[0].Category != "Transport" {
		t.Fatalf("rows must be ordered by spend, got %q first", report.Rows[0].Category)
	}
	if report.Rows[0].Level != core.SpendOver {
		t.Fatalf("transport over budget, got %v", report.Rows[0].Level)
	}
	if report.Rows[1].PercentUsed != 75 {
		t.Fatalf("groceries at 75%%, got %d", report.Rows[1].PercentUsed)
	}
	if report.TotalSpent.Cents != 80000 || report.HealthScore != 20 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if !report.GeneratedAt.Equal(now) {
		t.Fatalf("GeneratedAt = %v", report.GeneratedAt)
	}
}

func TestBuildMonthlyReportKeepsBudgetedUnspent(t *testing.T) {
	period := core.NewPeriod(core.NewDate(2026, 3, 1), core.NewDate(2026, 3, 31))
	b := core.Money{Cents: 20000}
	statuses := []core.CategorySpendStatus{
		{Category: core.Category{Name: "Savings", MonthlyBudget: &b}, HasBudget: true},
	}

	report := BuildMonthlyReport(statuses, core.TotalSpendStatus{}, period, 50, time.Now())
	if len(report.Rows) != 1 || report.Rows[0].Budget.Cents != 20000 {
		t.Fatalf("budgeted category with no spend must stay: %+v", report.Rows)
	}
}
