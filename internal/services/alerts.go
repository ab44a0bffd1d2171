package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
)

// alertSnapshot captures spend levels before a mutation so that only
// genuine threshold crossings publish, not every request while a category
// sits in the warning band.
type alertSnapshot struct {
	categories map[uuid.UUID]core.SpendLevel
	total      core.SpendLevel
}

func levelRank(l core.SpendLevel) int {
	switch l {
	case core.SpendWarning:
		return 1
	case core.SpendOver:
		return 2
	}
	return 0
}

func alertLevel(l core.SpendLevel) ledger.AlertLevel {
	if l == core.SpendOver {
		return ledger.AlertOver
	}
	return ledger.AlertWarning
}

// alertSnapshot grades the given categories and the total budget at the
// current period. Unknown or budgetless categories grade as normal.
func (s *LedgerService) alertSnapshot(categoryIDs []uuid.UUID) alertSnapshot {
	period := s.CurrentPeriod()
	transactions := s.store.Transactions()

	snap := alertSnapshot{categories: make(map[uuid.UUID]core.SpendLevel)}
	for _, id := range categoryIDs {
		cat, ok := s.store.Category(id)
		if !ok {
			continue
		}
		status := core.ComputeCategorySpendStatus(cat, transactions, period)
		snap.categories[id] = status.Level
	}

	budget := core.EffectiveTotalBudget(s.store.Profile(), s.store.Categories())
	snap.total = core.ComputeTotalSpendStatus(transactions, period, budget).Level
	return snap
}

// publishEscalations re-grades everything in the pre-mutation snapshot and
// publishes each level escalation. Publish failures are logged and dropped;
// the mutation already committed.
func (s *LedgerService) publishEscalations(ctx context.Context, before alertSnapshot) {
	if s.alerts == nil {
		return
	}

	period := s.CurrentPeriod()
	transactions := s.store.Transactions()

	for id, prev := range before.categories {
		cat, ok := s.store.Category(id)
		if !ok || cat.MonthlyBudget == nil {
			continue
		}
		status := core.ComputeCategorySpendStatus(cat, transactions, period)
		if levelRank(status.Level) <= levelRank(prev) {
			continue
		}

		alert := ledger.CategoryAlert{
			CategoryID:  id,
			Name:        cat.Name,
			Level:       alertLevel(status.Level),
			PercentUsed: status.PercentUsed,
		}
		logPublishFailure(ctx, s.alerts.PublishCategoryAlert(ctx, alert), "category")
		slog.DebugContext(ctx, "Category crossed budget threshold",
			"category_id", id,
			"level", string(alert.Level),
			"percent_used", alert.PercentUsed)
	}

	budget := core.EffectiveTotalBudget(s.store.Profile(), s.store.Categories())
	total := core.ComputeTotalSpendStatus(transactions, period, budget)
	if total.HasBudget && levelRank(total.Level) > levelRank(before.total) {
		alert := ledger.TotalBudgetAlert{
			Level:       alertLevel(total.Level),
			PercentUsed: total.PercentUsed,
		}
		logPublishFailure(ctx, s.alerts.PublishTotalBudgetAlert(ctx, alert), "total_budget")
	}
}
