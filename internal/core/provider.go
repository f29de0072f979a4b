package core

import (
	"context"
	"os"
)

// BillingMode says whether an account's usage is capped against a fixed
// monthly allowance or billed uncapped per unit.
type BillingMode string

const (
	BillingModeQuota BillingMode = "quota"
	BillingModePAYG  BillingMode = "payg"
)

type AccountConfig struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`

	// Identity is the billing identity the provider fetches reports for.
	// An "org:" prefix selects the organization endpoints; otherwise the
	// value is treated as an individual user login.
	Identity  string `json:"identity,omitempty"`
	APIKeyEnv string `json:"api_key_env,omitempty"` // env var name holding the API token
	Token     string `json:"-"`                     // runtime-only: access token (never persisted)

	BillingMode  BillingMode `json:"billing_mode,omitempty"`
	MonthlyLimit float64     `json:"monthly_limit,omitempty"` // quota-mode allowance, for gauges

	// Manual fallback numbers for accounts without a live integration.
	ManualUsed float64 `json:"manual_used,omitempty"`
	ManualCost float64 `json:"manual_cost,omitempty"`
}

func (c AccountConfig) ResolveAPIKey() string {
	if c.Token != "" {
		return c.Token
	}
	return os.Getenv(c.APIKeyEnv)
}

// IsOrg reports whether the identity selects organization endpoints,
// and returns the identity with the prefix stripped.
func (c AccountConfig) IsOrg() (string, bool) {
	const prefix = "org:"
	if len(c.Identity) > len(prefix) && c.Identity[:len(prefix)] == prefix {
		return c.Identity[len(prefix):], true
	}
	return c.Identity, false
}

type ProviderInfo struct {
	Name         string   // e.g. "GitHub Copilot"
	Capabilities []string // "billing_usage", "premium_requests", "manual"
	DocURL       string   // link to vendor's billing documentation
}

// UsageProvider is the single entry point the dashboard uses to refresh
// one account. onProgress may be nil. Implementations own no shared
// mutable state across concurrent calls for different accounts; callers
// must not issue overlapping calls for the same account.
type UsageProvider interface {
	ID() string

	Describe() ProviderInfo

	FetchUsage(ctx context.Context, acct AccountConfig, onProgress ProgressFunc) (UsageResult, error)
}
