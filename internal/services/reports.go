package services

import (
	"github.com/google/uuid"

	"bilancio/internal/core"
)

// Read-side report methods. Everything is computed fresh from the session
// snapshot; the HTTP layer layers caching on top and invalidates it on
// mutation.

func (s *LedgerService) Allocation() core.Allocation {
	return core.ComputeAllocation(s.store.Categories(), s.store.Profile())
}

// ProjectedAllocation previews committing candidate as the budget of the
// category identified by categoryID (nil for a brand-new category).
func (s *LedgerService) ProjectedAllocation(categoryID *uuid.UUID, candidate core.Money) core.ProjectedAllocation {
	all := s.store.Categories()
	others := make([]core.Category, 0, len(all))
	for _, c := range all {
		if categoryID != nil && c.ID == *categoryID {
			continue
		}
		others = append(others, c)
	}
	return core.ComputeProjectedAllocation(others, candidate, s.EffectiveTotalBudget())
}

func (s *LedgerService) EffectiveTotalBudget() core.Money {
	return core.EffectiveTotalBudget(s.store.Profile(), s.store.Categories())
}

// CategorySpendStatuses grades every category's period spending for the
// budget dashboard.
func (s *LedgerService) CategorySpendStatuses(period core.Period) []core.CategorySpendStatus {
	transactions := s.store.Transactions()
	categories := s.store.Categories()
	out := make([]core.CategorySpendStatus, 0, len(categories))
	for _, c := range categories {
		out = append(out, core.ComputeCategorySpendStatus(c, transactions, period))
	}
	return out
}

func (s *LedgerService) TotalSpendStatus(period core.Period) core.TotalSpendStatus {
	return core.ComputeTotalSpendStatus(s.store.Transactions(), period, s.EffectiveTotalBudget())
}

func (s *LedgerService) CategoryReport(period core.Period) []core.CategoryTotal {
	return core.BucketByCategory(s.store.Transactions(), period)
}

// Timeline buckets expenses over time. For the weekly granularity the
// profile's configured week start applies; custom requires a period.
func (s *LedgerService) Timeline(g core.Granularity, ref core.Date, custom core.Period) ([]core.TimeBucket, error) {
	return core.BucketByTime(s.store.Transactions(), g, ref, s.store.Profile().WeekStart, custom)
}

func (s *LedgerService) BalanceHistory(points int) []core.Money {
	return core.ComputeBalanceHistory(s.store.TotalBalance(), s.store.Transactions(), points)
}

// Trend nets the current period's transactions against the effective
// budget.
func (s *LedgerService) Trend() core.Trend {
	period := s.CurrentPeriod()
	var recent []core.Transaction
	for _, t := range s.store.Transactions() {
		if period.Contains(t.Date) {
			recent = append(recent, t)
		}
	}
	return core.ComputeTrend(recent, s.EffectiveTotalBudget())
}

// HealthScore grades the current period's outflow against the effective
// budget.
func (s *LedgerService) HealthScore() int {
	status := s.TotalSpendStatus(s.CurrentPeriod())
	return core.ComputeHealthScore(status.Spent, status.Budget)
}
