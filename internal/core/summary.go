package core

import "sort"

// MonthTotal is the summed amount of one YYYY-MM bucket.
type MonthTotal struct {
	Month string
	Total Money
}

// MonthlyTotals keeps buckets in first-occurrence order.
type MonthlyTotals []MonthTotal

// ComputeMonthlyTotals sums amounts per calendar month of the given snapshot.
//
// The first record whose date does not parse aborts the whole computation
// with a *MalformedDateError; no partial result is returned.
func ComputeMonthlyTotals(records []Expense) (MonthlyTotals, error) {
	index := make(map[string]int)
	totals := make(MonthlyTotals, 0)
	for _, e := range records {
		month, err := e.Month()
		if err != nil {
			return nil, err
		}
		i, seen := index[month]
		if !seen {
			index[month] = len(totals)
			totals = append(totals, MonthTotal{Month: month})
			i = len(totals) - 1
		}
		totals[i].Total = totals[i].Total.Add(e.Amount)
	}
	return totals, nil
}

// Get returns the total of a month and whether the month is present.
func (t MonthlyTotals) Get(month string) (Money, bool) {
	for _, mt := range t {
		if mt.Month == month {
			return mt.Total, true
		}
	}
	return Money{}, false
}

// Months lists the bucket keys in their current order.
func (t MonthlyTotals) Months() []string {
	out := make([]string, len(t))
	for i, mt := range t {
		out[i] = mt.Month
	}
	return out
}

// Sorted returns a chronologically ordered copy.
func (t MonthlyTotals) Sorted() MonthlyTotals {
	out := make(MonthlyTotals, len(t))
	copy(out, t)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// Map returns the totals keyed by month.
func (t MonthlyTotals) Map() map[string]Money {
	out := make(map[string]Money, len(t))
	for _, mt := range t {
		out[mt.Month] = mt.Total
	}
	return out
}
