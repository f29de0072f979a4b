// Package manual implements the static provider for accounts whose
// usage is tracked by hand, typically pay-as-you-go services with no
// usable reporting API. It never performs I/O: the configured numbers
// are echoed back as-is.
package manual

import (
	"context"

	"github.com/usagetop/usagetop/internal/core"
)

type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) ID() string { return "manual" }

func (p *Provider) Describe() core.ProviderInfo {
	return core.ProviderInfo{
		Name:         "Manual entry",
		Capabilities: []string{"static"},
	}
}

// FetchUsage returns the configured figures directly. There is no
// history to page through, so the progress callback is never invoked
// and FetchedMonths stays zero.
func (p *Provider) FetchUsage(_ context.Context, acct core.AccountConfig, _ core.ProgressFunc) (core.UsageResult, error) {
	return core.UsageResult{
		Used: acct.ManualUsed,
		Cost: acct.ManualCost,
	}, nil
}
