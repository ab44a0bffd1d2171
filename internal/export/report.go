package export

import (
	"sort"
	"time"

	"bilancio/internal/core"
)

// MonthlyReport is one budget-period snapshot: per-category spending
// against budgets, the overall totals, and the health score.
type MonthlyReport struct {
	Period      core.Period
	Rows        []Row
	TotalSpent  core.Money
	TotalBudget core.Money
	HealthScore int
	GeneratedAt time.Time
}

// Row is one category line, ordered by descending spend.
type Row struct {
	Category    string
	HasBudget   bool
	Budget      core.Money
	Spent       core.Money
	PercentUsed int
	Level       core.SpendLevel
}

// BuildMonthlyReport assembles the report from already-computed statuses.
// Categories with no spending and no budget are left out.
func BuildMonthlyReport(statuses []core.CategorySpendStatus, total core.TotalSpendStatus, period core.Period, healthScore int, now time.Time) MonthlyReport {
	rows := make([]Row, 0, len(statuses))
	for _, s := range statuses {
		if s.Spent.IsZero() && !s.HasBudget {
			continue
		}
		row := Row{
			Category:    s.Category.Name,
			HasBudget:   s.HasBudget,
			Spent:       s.Spent,
			PercentUsed: s.PercentUsed,
			Level:       s.Level,
		}
		if s.HasBudget {
			row.Budget = *s.Category.MonthlyBudget
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Spent.Cents > rows[j].Spent.Cents
	})

	return MonthlyReport{
		Period:      period,
		Rows:        rows,
		TotalSpent:  total.Spent,
		TotalBudget: total.Budget,
		HealthScore: healthScore,
		GeneratedAt: now,
	}
}
