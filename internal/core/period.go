package core

import "time"

// Period is an inclusive calendar-date range used to filter transactions
// for reports and budget status.
type Period struct {
	Start Date
	End   Date
}

// NewPeriod builds an inclusive period. Start and end may be the same day.
func NewPeriod(start, end Date) Period {
	return Period{Start: start, End: end}
}

// Contains reports whether d falls inside the period, inclusive on both
// ends.
func (p Period) Contains(d Date) bool {
	if d.Before(p.Start.Time) {
		return false
	}
	return !d.After(p.End.Time)
}

// Days returns the number of calendar days covered by the period.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start.Time).Hours()/24) + 1
}

// daysInMonth returns the number of days in the given month.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// clampResetDay resolves a profile reset day against a concrete month,
// clamping 29..31 to the month's last day and mapping LastDayOfMonth.
func clampResetDay(resetDay, year int, month time.Month) int {
	last := daysInMonth(year, month)
	if resetDay == LastDayOfMonth || resetDay > last {
		return last
	}
	return resetDay
}

// BudgetPeriodFor returns the budget period containing ref for the given
// reset day: it starts on the reset day on or before ref and ends the day
// before the next reset.
func BudgetPeriodFor(resetDay int, ref Date) Period {
	year, month := ref.Year(), ref.Time.Month()
	start := NewDate(year, int(month), clampResetDay(resetDay, year, month))
	if ref.Before(start.Time) {
		// Month arithmetic on the first of the month so a day-31 start
		// cannot normalize across short months.
		prev := time.Date(year, month-1, 1, 0, 0, 0, 0, time.UTC)
		py, pm := prev.Year(), prev.Month()
		start = NewDate(py, int(pm), clampResetDay(resetDay, py, pm))
	}
	next := time.Date(start.Year(), start.Time.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	ny, nm := next.Year(), next.Month()
	nextStart := NewDate(ny, int(nm), clampResetDay(resetDay, ny, nm))
	end := Date{Time: nextStart.AddDate(0, 0, -1)}
	return Period{Start: start, End: end}
}

// WeekPeriodFor returns the 7-day period containing ref that begins on the
// configured week start (Monday or Sunday).
func WeekPeriodFor(weekStart time.Weekday, ref Date) Period {
	offset := (int(ref.Weekday()) - int(weekStart) + 7) % 7
	start := Date{Time: ref.AddDate(0, 0, -offset)}
	end := Date{Time: start.AddDate(0, 0, 6)}
	return Period{Start: start, End: end}
}

// MonthPeriodFor returns the calendar-month period containing ref.
func MonthPeriodFor(ref Date) Period {
	year, month := ref.Year(), ref.Month()
	return Period{
		Start: NewDate(year, int(month), 1),
		End:   NewDate(year, int(month), daysInMonth(year, month)),
	}
}
