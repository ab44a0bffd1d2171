package core

// Trend classifies a recent window of transactions against the total
// budget anchor.
type Trend struct {
	Net             Money
	PercentOfBudget int
	Positive        bool
}

// ComputeBalanceHistory reconstructs a fixed-length balance series ending
// at the current total wallet balance. newestFirst holds the most recent
// transactions, newest first; each step backward undoes one transaction's
// effect (subtract income, add back expense). The result is ordered
// oldest to newest and has exactly `points` entries: when history is
// shorter than points-1 transactions, the front is padded flat with the
// earliest reconstructed value. Recomputed fresh on each call, no hidden
// state.
func ComputeBalanceHistory(currentTotal Money, newestFirst []Transaction, points int) []Money {
	if points <= 0 {
		return nil
	}
	steps := points - 1
	if len(newestFirst) < steps {
		steps = len(newestFirst)
	}

	series := make([]Money, points)
	series[points-1] = currentTotal
	balance := currentTotal
	for i := 0; i < steps; i++ {
		balance = balance.Sub(newestFirst[i].BalanceEffect())
		series[points-2-i] = balance
	}
	// Flat extension when fewer transactions exist than requested points.
	for i := points - 2 - steps; i >= 0; i-- {
		series[i] = balance
	}
	return series
}

// ComputeTrend nets income against expenses over the supplied recent
// window. PercentOfBudget is 0 when the budget anchor is unset; the sign
// of Net classifies the trend for display.
func ComputeTrend(recent []Transaction, totalBudget Money) Trend {
	var net int64
	for _, t := range recent {
		net += t.BalanceEffect().Cents
	}
	return Trend{
		Net:             Money{Cents: net},
		PercentOfBudget: roundedPercent(net, totalBudget.Cents),
		Positive:        net >= 0,
	}
}

// ComputeHealthScore grades total outflow against the budget anchor on a
// 0..100 scale, 100 meaning nothing spent. With no budget anchor the score
// is a neutral 50.
func ComputeHealthScore(totalOutflow, totalBudget Money) int {
	if totalBudget.Cents <= 0 {
		return 50
	}
	used := roundedPercent(totalOutflow.Cents, totalBudget.Cents)
	if used > 100 {
		used = 100
	}
	if used < 0 {
		used = 0
	}
	return 100 - used
}
