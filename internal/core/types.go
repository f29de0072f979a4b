package core

import "sort"

// DailyPoint is one day of aggregated usage across the fetched window.
// Day is a UTC calendar date in "2006-01-02" form.
type DailyPoint struct {
	Day  string  `json:"day"`
	Used float64 `json:"used"`
	Cost float64 `json:"cost"`
}

// ModelBreakdown is the current-month usage attributed to one label
// (typically "{ide}/{model}" or just the model name).
type ModelBreakdown struct {
	Label string  `json:"label"`
	Used  float64 `json:"used"`
	Cost  float64 `json:"cost"`
}

// UsageResult is the terminal output of one reconciliation run.
// Used and Cost cover the current month only; Daily spans the whole
// fetched window. Daily is sorted ascending by day, Breakdown descending
// by Used.
type UsageResult struct {
	Used          float64          `json:"used"`
	Cost          float64          `json:"cost"`
	Breakdown     []ModelBreakdown `json:"breakdown,omitempty"`
	Daily         []DailyPoint     `json:"daily,omitempty"`
	FetchedMonths int              `json:"fetched_months"`
}

// SortDaily sorts a daily series ascending by day.
func SortDaily(points []DailyPoint) {
	sort.Slice(points, func(i, j int) bool { return points[i].Day < points[j].Day })
}

// SortBreakdown sorts a breakdown descending by Used, labels ascending on
// ties so repeated runs over the same data produce identical output.
func SortBreakdown(entries []ModelBreakdown) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Used != entries[j].Used {
			return entries[i].Used > entries[j].Used
		}
		return entries[i].Label < entries[j].Label
	})
}
