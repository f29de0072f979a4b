// Package copilot implements the live usage integration for GitHub
// Copilot premium-request billing.
//
// One refresh fetches the current month's premium-request summary for
// the headline used/cost numbers and the model breakdown, then walks a
// 24-month window of per-day billing reports to build the historical
// daily series. Partial results are pushed through the progress
// callback as each month lands, so the dashboard can paint headline
// numbers while history is still loading.
package copilot

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/usagetop/usagetop/internal/billing"
	"github.com/usagetop/usagetop/internal/core"
)

const (
	defaultBaseURL = "https://api.github.com"

	// windowMonths is the rolling report window, current month first.
	windowMonths = 24

	// defaultMonthDelay spaces out consecutive monthly fetches so one
	// refresh does not burst the billing API.
	defaultMonthDelay = 40 * time.Millisecond
)

type Provider struct {
	httpClient *http.Client
	now        func() time.Time
	baseURL    string
	monthDelay time.Duration
}

func New() *Provider {
	return &Provider{
		httpClient: http.DefaultClient,
		now:        time.Now,
		baseURL:    defaultBaseURL,
		monthDelay: defaultMonthDelay,
	}
}

func (p *Provider) ID() string { return "copilot" }

func (p *Provider) Describe() core.ProviderInfo {
	return core.ProviderInfo{
		Name:         "GitHub Copilot",
		Capabilities: []string{"premium_requests", "billing_usage", "daily_series", "model_breakdown"},
		DocURL:       "https://docs.github.com/en/billing/managing-billing-for-your-products",
	}
}

func (p *Provider) FetchUsage(ctx context.Context, acct core.AccountConfig, onProgress core.ProgressFunc) (core.UsageResult, error) {
	token := acct.ResolveAPIKey()
	if token == "" {
		if acct.APIKeyEnv != "" {
			return core.UsageResult{}, fmt.Errorf("copilot: missing credential: set %s or configure a token", acct.APIKeyEnv)
		}
		return core.UsageResult{}, fmt.Errorf("copilot: missing credential: no token configured")
	}

	identity, org := acct.IsOrg()
	if strings.TrimSpace(identity) == "" {
		return core.UsageResult{}, fmt.Errorf(`copilot: missing identity: set a user login or "org:<name>"`)
	}

	return p.reconcile(ctx, token, identity, org, onProgress)
}

// reconcile drives the monthly fetches and accumulates the result. The
// current-month premium summary is fatal on failure; any historical
// month that fails simply contributes no data.
func (p *Provider) reconcile(ctx context.Context, token, identity string, org bool, onProgress core.ProgressFunc) (core.UsageResult, error) {
	months := billing.TrailingMonths(p.now(), windowMonths)
	current := months[0]

	rows, err := p.fetchPremiumSummary(ctx, token, identity, org, current)
	if err != nil {
		return core.UsageResult{}, err
	}
	used, cost, breakdown, included := aggregatePremium(rows, current)
	if included > 0 {
		log.Printf("[copilot] %s: %.0f included premium requests", current, included)
	}

	fetched := 1
	emit(onProgress, core.UsagePatch{
		Used:          core.Float64Ptr(used),
		Cost:          core.Float64Ptr(cost),
		Breakdown:     breakdown,
		FetchedMonths: core.IntPtr(fetched),
	})

	days := make(map[string]core.DailyPoint)
	for i, win := range months {
		rows, err := p.fetchBillingUsage(ctx, token, identity, org, win)
		switch {
		case err != nil:
			// A bad month leaves a gap in the series, nothing more.
			log.Printf("[copilot] skipping %s: %v", win, err)
		default:
			fetched++
			if mergeMonth(days, rows, win) {
				emit(onProgress, core.UsagePatch{
					Daily:         sortedDaily(days),
					FetchedMonths: core.IntPtr(fetched),
				})
			}
		}

		if p.monthDelay > 0 && i < len(months)-1 {
			select {
			case <-ctx.Done():
				return core.UsageResult{}, ctx.Err()
			case <-time.After(p.monthDelay):
			}
		}
	}

	return core.UsageResult{
		Used:          used,
		Cost:          cost,
		Breakdown:     breakdown,
		Daily:         sortedDaily(days),
		FetchedMonths: fetched,
	}, nil
}

func aggregatePremium(rows []billing.ReportRow, win billing.MonthlyWindow) (used, cost float64, breakdown []core.ModelBreakdown, included float64) {
	byLabel := make(map[string]*core.ModelBreakdown)
	for _, row := range rows {
		entry, ok := billing.Normalize(row, win)
		if !ok {
			continue
		}
		used += entry.Quantity
		cost += entry.Cost
		included += entry.Included

		b := byLabel[entry.Label]
		if b == nil {
			b = &core.ModelBreakdown{Label: entry.Label}
			byLabel[entry.Label] = b
		}
		b.Used += entry.Quantity
		b.Cost += entry.Cost
	}

	breakdown = make([]core.ModelBreakdown, 0, len(byLabel))
	for _, b := range byLabel {
		breakdown = append(breakdown, *b)
	}
	core.SortBreakdown(breakdown)
	return used, cost, breakdown, included
}

// mergeMonth folds a month's rows into the running day map additively
// and reports whether the month contributed at least one new day.
func mergeMonth(days map[string]core.DailyPoint, rows []billing.ReportRow, win billing.MonthlyWindow) bool {
	added := false
	for _, row := range rows {
		entry, ok := billing.Normalize(row, win)
		if !ok {
			continue
		}
		point, seen := days[entry.Day]
		if !seen {
			point = core.DailyPoint{Day: entry.Day}
			added = true
		}
		point.Used += entry.Quantity
		point.Cost += entry.Cost
		days[entry.Day] = point
	}
	return added
}

func sortedDaily(days map[string]core.DailyPoint) []core.DailyPoint {
	daily := make([]core.DailyPoint, 0, len(days))
	for _, point := range days {
		daily = append(daily, point)
	}
	core.SortDaily(daily)
	return daily
}

func emit(onProgress core.ProgressFunc, patch core.UsagePatch) {
	if onProgress != nil {
		onProgress(patch)
	}
}
