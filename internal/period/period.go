package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Range is a half-open date interval [Start, End) at calendar-date
// granularity. CompareStart/CompareEnd describe a window of identical
// duration immediately preceding Start, used for percentage-change
// metrics. All marks the unbounded "do not filter by date" sentinel.
type Range struct {
	Start time.Time
	End   time.Time

	CompareStart time.Time
	CompareEnd   time.Time

	All bool
}

// Contains reports whether d falls inside the range. The end bound is
// exclusive so adjacent ranges never double-count a day.
func (r Range) Contains(d time.Time) bool {
	if r.All {
		return true
	}
	d = startOfDay(d)
	return !d.Before(r.Start) && d.Before(r.End)
}

// Duration returns End minus Start.
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Resolve maps a period token to a concrete date range evaluated at now.
// Unrecognized tokens fall back to the current month; malformed input
// never produces an error.
//
// Recognized tokens: current, last_month, last_3_months, last_6_months,
// last_year, current_year, previous_year, all, "YYYY-MM",
// "quarter-YYYY" and "year-YYYY".
func Resolve(token string, now time.Time) Range {
	token = strings.ToLower(strings.TrimSpace(token))
	now = startOfDay(now)

	switch token {
	case "current", "":
		return monthRange(now.Year(), now.Month())
	case "last_month":
		prev := now.AddDate(0, -1, 0)
		return monthRange(prev.Year(), prev.Month())
	case "last_3_months":
		return rollingRange(now, now.AddDate(0, -3, 0))
	case "last_6_months":
		return rollingRange(now, now.AddDate(0, -6, 0))
	case "last_year":
		return rollingRange(now, now.AddDate(-1, 0, 0))
	case "current_year":
		return yearRange(now.Year())
	case "previous_year":
		return yearRange(now.Year() - 1)
	case "all":
		return Range{All: true}
	}

	if year, month, ok := parseYearMonth(token); ok {
		return monthRange(year, month)
	}
	if year, ok := parsePrefixedYear(token, "quarter-"); ok {
		return quarterRange(year, now.Month())
	}
	if year, ok := parsePrefixedYear(token, "year-"); ok {
		return yearRange(year)
	}

	return monthRange(now.Year(), now.Month())
}

// ResolveCustom builds a range from caller-supplied bounds, with the
// comparison window of identical duration immediately preceding start.
func ResolveCustom(start, end time.Time) Range {
	start = startOfDay(start)
	end = startOfDay(end)
	if end.Before(start) {
		start, end = end, start
	}
	return withComparison(Range{Start: start, End: end})
}

// PercentChange formats the relative change between current and previous
// with one decimal and an explicit leading "+" for non-negative values.
// A zero previous value yields "+0%" rather than a division error.
func PercentChange(current, previous decimal.Decimal) string {
	if previous.IsZero() {
		return "+0%"
	}
	change := current.Sub(previous).
		Div(previous).
		Mul(decimal.NewFromInt(100))
	return fmt.Sprintf("%+.1f%%", change.InexactFloat64())
}

func monthRange(year int, month time.Month) Range {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return withComparison(Range{Start: start, End: start.AddDate(0, 1, 0)})
}

func yearRange(year int) Range {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return withComparison(Range{Start: start, End: start.AddDate(1, 0, 0)})
}

// quarterRange derives the quarter from the evaluation month, applied to
// the requested year.
func quarterRange(year int, month time.Month) Range {
	quarter := (int(month) - 1) / 3
	start := time.Date(year, time.Month(quarter*3+1), 1, 0, 0, 0, 0, time.UTC)
	return withComparison(Range{Start: start, End: start.AddDate(0, 3, 0)})
}

// rollingRange covers [start, today] as a half-open interval, so the end
// bound is the day after today.
func rollingRange(today, start time.Time) Range {
	return withComparison(Range{
		Start: startOfDay(start),
		End:   startOfDay(today).AddDate(0, 0, 1),
	})
}

func withComparison(r Range) Range {
	d := r.End.Sub(r.Start)
	r.CompareEnd = r.Start
	r.CompareStart = r.Start.Add(-d)
	return r
}

func parseYearMonth(token string) (int, time.Month, bool) {
	parts := strings.SplitN(token, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1000 || year > 9999 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, time.Month(month), true
}

func parsePrefixedYear(token, prefix string) (int, bool) {
	if !strings.HasPrefix(token, prefix) {
		return 0, false
	}
	year, err := strconv.Atoi(strings.TrimPrefix(token, prefix))
	if err != nil || year < 1000 || year > 9999 {
		return 0, false
	}
	return year, true
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
