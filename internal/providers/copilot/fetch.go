package copilot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/usagetop/usagetop/internal/billing"
)

// maxErrorExcerpt caps how much of an error response body ends up in
// error messages shown to the user.
const maxErrorExcerpt = 160

func (p *Provider) fetchPremiumSummary(ctx context.Context, token, identity string, org bool, win billing.MonthlyWindow) ([]billing.ReportRow, error) {
	return p.fetchReport(ctx, token, billingPath(identity, org, "premium_request/usage"), "premium request usage", win)
}

func (p *Provider) fetchBillingUsage(ctx context.Context, token, identity string, org bool, win billing.MonthlyWindow) ([]billing.ReportRow, error) {
	return p.fetchReport(ctx, token, billingPath(identity, org, "usage"), "billing usage", win)
}

func billingPath(identity string, org bool, suffix string) string {
	if org {
		return fmt.Sprintf("/organizations/%s/settings/billing/%s", url.PathEscape(identity), suffix)
	}
	return fmt.Sprintf("/users/%s/settings/billing/%s", url.PathEscape(identity), suffix)
}

// fetchReport performs one GET against a billing endpoint and decodes
// the rows. No retries here: the pipeline decides whether a failed
// month is fatal or skipped.
func (p *Provider) fetchReport(ctx context.Context, token, path, kind string, win billing.MonthlyWindow) ([]billing.ReportRow, error) {
	endpoint := fmt.Sprintf("%s%s?year=%d&month=%d", p.baseURL, path, win.Year, win.Month)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("copilot: creating %s request: %w", kind, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("copilot: %s %s: %w", kind, win, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("copilot: reading %s %s: %w", kind, win, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("copilot: %s %s: HTTP %d: %s", kind, win, resp.StatusCode, excerpt(body))
	}

	rows, err := billing.DecodeReport(body)
	if err != nil {
		return nil, fmt.Errorf("copilot: %s %s: %w", kind, win, err)
	}
	return rows, nil
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorExcerpt {
		return s[:maxErrorExcerpt] + "..."
	}
	return s
}
