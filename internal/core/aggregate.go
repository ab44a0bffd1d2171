package core

import (
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Time-bucket granularities for spend reports.
const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
	GranularityCustom  Granularity = "custom"
)

// Ranges longer than this many days get thinned labels (about five evenly
// spaced ones); the series itself stays one point per day.
const labelThinningThresholdDays = 14

type (
	Granularity string

	// CategoryTotal is one row of the spend-by-category report.
	CategoryTotal struct {
		CategoryID uuid.UUID
		Total      Money
		Count      int
	}

	// TimeBucket is one point of a spend-over-time series.
	TimeBucket struct {
		Label string
		Date  Date
		Total Money
	}
)

func (g Granularity) Validate() error {
	switch g {
	case GranularityDaily, GranularityWeekly, GranularityMonthly, GranularityCustom:
		return nil
	}
	return ErrInvalidGranularity
}

// BucketByCategory sums expense transactions per category over the period,
// inclusive on both ends, sorted by descending total. Transactions without
// a category are skipped; income never contributes.
func BucketByCategory(transactions []Transaction, period Period) []CategoryTotal {
	totals := make(map[uuid.UUID]*CategoryTotal)
	order := make([]uuid.UUID, 0)
	for _, t := range transactions {
		if t.Type != Expense || t.CategoryID == nil || !period.Contains(t.Date) {
			continue
		}
		id := *t.CategoryID
		ct, ok := totals[id]
		if !ok {
			ct = &CategoryTotal{CategoryID: id}
			totals[id] = ct
			order = append(order, id)
		}
		ct.Total.Cents += t.Amount.Cents
		ct.Count++
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, id := range order {
		out = append(out, *totals[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.Cents > out[j].Total.Cents
	})
	return out
}

// BucketByDay builds a one-point-per-day expense series over the period.
// For periods longer than labelThinningThresholdDays only about five evenly
// spaced labels are emitted; the other points carry an empty label. This is
// a display concern only, the data stays per-day.
func BucketByDay(transactions []Transaction, period Period) []TimeBucket {
	days := period.Days()
	if days <= 0 {
		return nil
	}
	buckets := make([]TimeBucket, days)
	for i := range buckets {
		d := Date{Time: period.Start.AddDate(0, 0, i)}
		buckets[i] = TimeBucket{Label: strconv.Itoa(d.Day()), Date: d}
	}
	for _, t := range transactions {
		if t.Type != Expense || !period.Contains(t.Date) {
			continue
		}
		i := int(t.Date.Sub(period.Start.Time).Hours() / 24)
		if i >= 0 && i < days {
			buckets[i].Total.Cents += t.Amount.Cents
		}
	}
	if days > labelThinningThresholdDays {
		thinLabels(buckets)
	}
	return buckets
}

// thinLabels keeps roughly five evenly spaced labels, always including the
// first and last point.
func thinLabels(buckets []TimeBucket) {
	n := len(buckets)
	step := (n - 1) / 4
	if step < 1 {
		step = 1
	}
	for i := range buckets {
		if i != 0 && i != n-1 && i%step != 0 {
			buckets[i].Label = ""
		}
	}
}

// BucketByHour builds the 24 hour-of-day expense buckets for the reference
// day: only transactions dated exactly on that day count, placed by the
// hour of their creation timestamp.
func BucketByHour(transactions []Transaction, day Date) []TimeBucket {
	buckets := make([]TimeBucket, 24)
	for h := range buckets {
		buckets[h] = TimeBucket{Label: strconv.Itoa(h), Date: day}
	}
	for _, t := range transactions {
		if t.Type != Expense || !t.Date.SameDay(day) {
			continue
		}
		h := t.CreatedAt.Hour()
		buckets[h].Total.Cents += t.Amount.Cents
	}
	return buckets
}

// BucketByTime dispatches on granularity. Daily uses the 24 hourly buckets
// of ref's calendar day; weekly covers the week containing ref from the
// configured week start; monthly covers ref's calendar month; custom covers
// the supplied period.
func BucketByTime(transactions []Transaction, g Granularity, ref Date, weekStart time.Weekday, custom Period) ([]TimeBucket, error) {
	switch g {
	case GranularityDaily:
		return BucketByHour(transactions, ref), nil
	case GranularityWeekly:
		return BucketByDay(transactions, WeekPeriodFor(weekStart, ref)), nil
	case GranularityMonthly:
		return BucketByDay(transactions, MonthPeriodFor(ref)), nil
	case GranularityCustom:
		if custom.Start.IsZero() || custom.End.IsZero() || custom.End.Before(custom.Start.Time) {
			return nil, ErrInvalidPeriod
		}
		return BucketByDay(transactions, custom), nil
	}
	return nil, ErrInvalidGranularity
}
