package core

// UsagePatch is a partial UsageResult delivered through a progress
// callback while a reconciliation run is still in flight. Nil pointer
// fields and nil slices mean "unchanged"; consumers apply each patch as
// a merge over their previous state, never as a replacement.
type UsagePatch struct {
	Used          *float64
	Cost          *float64
	Breakdown     []ModelBreakdown
	Daily         []DailyPoint
	FetchedMonths *int
}

// Apply merges the patch into res.
func (p UsagePatch) Apply(res *UsageResult) {
	if res == nil {
		return
	}
	if p.Used != nil {
		res.Used = *p.Used
	}
	if p.Cost != nil {
		res.Cost = *p.Cost
	}
	if p.Breakdown != nil {
		res.Breakdown = p.Breakdown
	}
	if p.Daily != nil {
		res.Daily = p.Daily
	}
	if p.FetchedMonths != nil {
		res.FetchedMonths = *p.FetchedMonths
	}
}

// ProgressFunc receives incremental partial results during a refresh.
// It may be invoked zero, one, or many times, always from the goroutine
// running the refresh; implementations must be cheap and must not block.
type ProgressFunc func(UsagePatch)

func Float64Ptr(v float64) *float64 { return &v }

func IntPtr(v int) *int { return &v }
