// Package billing turns heterogeneous monthly billing reports into a
// normalized per-day usage/cost stream. It is pure: no I/O, no clocks,
// no mutable package state.
package billing

import (
	"fmt"
	"time"
)

// MonthlyWindow identifies one calendar month relative to "now" (UTC).
type MonthlyWindow struct {
	Year    int
	Month   int // 1-12
	Current bool
}

// FirstDay returns the window's first day as "2006-01-02".
func (w MonthlyWindow) FirstDay() string {
	return fmt.Sprintf("%04d-%02d-01", w.Year, w.Month)
}

func (w MonthlyWindow) String() string {
	return fmt.Sprintf("%04d-%02d", w.Year, w.Month)
}

// TrailingMonths generates the n most recent calendar months anchored at
// now (UTC): index 0 is the current month, index n-1 the oldest.
func TrailingMonths(now time.Time, n int) []MonthlyWindow {
	now = now.UTC()
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	windows := make([]MonthlyWindow, 0, n)
	for i := 0; i < n; i++ {
		m := anchor.AddDate(0, -i, 0)
		windows = append(windows, MonthlyWindow{
			Year:    m.Year(),
			Month:   int(m.Month()),
			Current: i == 0,
		})
	}
	return windows
}
