package core

// Spend levels drive the fixed color policy: over is red, warning amber,
// normal the category's own color.
const (
	SpendNormal  SpendLevel = "normal"
	SpendWarning SpendLevel = "warning"
	SpendOver    SpendLevel = "over"

	// warningThresholdPercent marks the start of the warning band; the
	// band ends just below 100%.
	warningThresholdPercent = 80
)

type (
	SpendLevel string

	// Allocation summarizes how much of the profile's total budget the
	// category budgets claim.
	Allocation struct {
		AllocatedTotal Money
		Percent        int
		OverAllocated  bool
		PerCategory    []CategoryAllocation
	}

	// CategoryAllocation is one category's share of the total budget.
	CategoryAllocation struct {
		Category Category
		Budget   Money
		Percent  int
	}

	// CategorySpendStatus reports period spending against a category's
	// monthly budget. Remaining, Level, and the over/warning flags are
	// meaningful only when HasBudget is true.
	CategorySpendStatus struct {
		Category    Category
		Spent       Money
		HasBudget   bool
		Remaining   Money
		PercentUsed int
		IsOver      bool
		IsWarning   bool
		Level       SpendLevel
	}

	// ProjectedAllocation previews the allocation impact of a candidate
	// category budget before commit.
	ProjectedAllocation struct {
		ProjectedTotal Money
		Percent        int
		WouldExceed    bool
	}

	// TotalSpendStatus reports overall period spending against the
	// effective total budget.
	TotalSpendStatus struct {
		Spent       Money
		Budget      Money
		HasBudget   bool
		PercentUsed int
		Level       SpendLevel
	}
)

// ComputeAllocation sums the category budgets against the profile's total
// budget anchor. Categories without a budget contribute zero. Percent is 0
// when the anchor is unset.
func ComputeAllocation(categories []Category, profile Profile) Allocation {
	var total int64
	per := make([]CategoryAllocation, 0, len(categories))
	for _, c := range categories {
		if c.MonthlyBudget == nil {
			continue
		}
		total += c.MonthlyBudget.Cents
		per = append(per, CategoryAllocation{
			Category: c,
			Budget:   *c.MonthlyBudget,
			Percent:  roundedPercent(c.MonthlyBudget.Cents, profile.TotalBudget.Cents),
		})
	}
	return Allocation{
		AllocatedTotal: Money{Cents: total},
		Percent:        roundedPercent(total, profile.TotalBudget.Cents),
		OverAllocated:  profile.TotalBudget.Cents > 0 && total > profile.TotalBudget.Cents,
		PerCategory:    per,
	}
}

// ComputeCategorySpendStatus sums the category's expenses inside the period
// and grades them against its monthly budget. Track-only categories (no
// budget) report spending with no over/warning state.
func ComputeCategorySpendStatus(category Category, transactions []Transaction, period Period) CategorySpendStatus {
	var spent int64
	for _, t := range transactions {
		if t.Type != Expense || t.CategoryID == nil || *t.CategoryID != category.ID {
			continue
		}
		if !period.Contains(t.Date) {
			continue
		}
		spent += t.Amount.Cents
	}

	status := CategorySpendStatus{
		Category: category,
		Spent:    Money{Cents: spent},
		Level:    SpendNormal,
	}
	if category.MonthlyBudget == nil {
		return status
	}

	budget := category.MonthlyBudget.Cents
	status.HasBudget = true
	status.Remaining = Money{Cents: budget - spent}
	status.PercentUsed = roundedPercent(spent, budget)
	switch {
	case spent >= budget:
		status.IsOver = true
		status.Level = SpendOver
	case spent*100 >= budget*warningThresholdPercent:
		status.IsWarning = true
		status.Level = SpendWarning
	}
	return status
}

// ComputeTotalSpendStatus sums every expense inside the period and grades
// the total against the effective budget with the same thresholds as the
// per-category status. A zero budget reports spending with no level.
func ComputeTotalSpendStatus(transactions []Transaction, period Period, budget Money) TotalSpendStatus {
	var spent int64
	for _, t := range transactions {
		if t.Type != Expense || !period.Contains(t.Date) {
			continue
		}
		spent += t.Amount.Cents
	}

	status := TotalSpendStatus{
		Spent:  Money{Cents: spent},
		Budget: budget,
		Level:  SpendNormal,
	}
	if budget.Cents <= 0 {
		return status
	}
	status.HasBudget = true
	status.PercentUsed = roundedPercent(spent, budget.Cents)
	switch {
	case spent >= budget.Cents:
		status.Level = SpendOver
	case spent*100 >= budget.Cents*warningThresholdPercent:
		status.Level = SpendWarning
	}
	return status
}

// ComputeProjectedAllocation previews the total allocation if candidate
// were committed as a category budget, given every other category's current
// budget. No state is mutated.
func ComputeProjectedAllocation(others []Category, candidate Money, totalBudget Money) ProjectedAllocation {
	total := candidate.Cents
	for _, c := range others {
		if c.MonthlyBudget != nil {
			total += c.MonthlyBudget.Cents
		}
	}
	return ProjectedAllocation{
		ProjectedTotal: Money{Cents: total},
		Percent:        roundedPercent(total, totalBudget.Cents),
		WouldExceed:    totalBudget.Cents > 0 && total > totalBudget.Cents,
	}
}

// EffectiveTotalBudget resolves the budget denominator once per read: the
// stored profile anchor when present and positive, otherwise the summed
// category budgets.
func EffectiveTotalBudget(profile Profile, categories []Category) Money {
	if profile.TotalBudget.Cents > 0 {
		return profile.TotalBudget
	}
	var total int64
	for _, c := range categories {
		if c.MonthlyBudget != nil {
			total += c.MonthlyBudget.Cents
		}
	}
	return Money{Cents: total}
}
