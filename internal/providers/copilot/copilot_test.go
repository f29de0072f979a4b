package copilot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/usagetop/usagetop/internal/core"
)

// frozen "now": window covers 2024-03 back to 2022-04.
var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func testProvider(baseURL string) *Provider {
	p := New()
	p.baseURL = baseURL
	p.monthDelay = 0
	p.now = func() time.Time { return testNow }
	return p
}

func testAccount() core.AccountConfig {
	return core.AccountConfig{
		ID:       "copilot-test",
		Provider: "copilot",
		Identity: "octocat",
		Token:    "test-token",
	}
}

// billingHandler answers both billing endpoints for user octocat.
// premiumBody is served for the current-month premium summary;
// usageByMonth maps "YYYY-MM" to the billing usage body, with missing
// months answered by an empty array.
func billingHandler(t *testing.T, premiumBody string, usageByMonth map[string]string, failMonths map[string]int) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Bad credentials"}`))
			return
		}

		year := r.URL.Query().Get("year")
		month := r.URL.Query().Get("month")
		if len(month) == 1 {
			month = "0" + month
		}
		key := year + "-" + month

		switch r.URL.Path {
		case "/users/octocat/settings/billing/premium_request/usage":
			if key != "2024-03" {
				t.Errorf("premium summary requested for %s, want current month only", key)
			}
			w.Write([]byte(premiumBody))
		case "/users/octocat/settings/billing/usage":
			if status, ok := failMonths[key]; ok {
				w.WriteHeader(status)
				w.Write([]byte(`{"message":"boom"}`))
				return
			}
			body, ok := usageByMonth[key]
			if !ok {
				body = `[]`
			}
			w.Write([]byte(body))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

const premiumTwoRows = `{"usageItems":[
	{"product":"GitHub Copilot","sku":"Premium Requests","model":"gpt-4","grossQuantity":50,"netAmount":12.5},
	{"product":"GitHub Copilot","sku":"Premium Requests","model":"gpt-4","grossQuantity":30,"netAmount":7.5}
]}`

func TestFetchUsage_CurrentMonthHeadlineNumbers(t *testing.T) {
	server := httptest.NewServer(billingHandler(t, premiumTwoRows, nil, nil))
	defer server.Close()

	p := testProvider(server.URL)
	res, err := p.FetchUsage(context.Background(), testAccount(), nil)
	if err != nil {
		t.Fatalf("FetchUsage() error: %v", err)
	}

	if res.Used != 80 || res.Cost != 20 {
		t.Fatalf("used=%v cost=%v, want 80 and 20", res.Used, res.Cost)
	}
	want := []core.ModelBreakdown{{Label: "gpt-4", Used: 80, Cost: 20}}
	if !reflect.DeepEqual(res.Breakdown, want) {
		t.Fatalf("breakdown = %+v, want %+v", res.Breakdown, want)
	}
	if res.FetchedMonths != 25 { // summary + 24 usage months
		t.Fatalf("fetchedMonths = %d, want 25", res.FetchedMonths)
	}
}

func TestFetchUsage_FailedHistoricalMonthIsSkipped(t *testing.T) {
	usage := map[string]string{
		"2024-03": `{"usageItems":[{"feature":"chat","ide":"vscode","model":"gpt-4","chatCount":3,"netAmount":0.75,"date":"2024-03-02"}]}`,
		"2023-12": `[{"feature":"chat","chatCount":2,"netAmount":0.5,"date":"2023-12-24"}]`,
	}
	fail := map[string]int{"2023-11": http.StatusBadGateway}

	server := httptest.NewServer(billingHandler(t, premiumTwoRows, usage, fail))
	defer server.Close()

	p := testProvider(server.URL)
	res, err := p.FetchUsage(context.Background(), testAccount(), nil)
	if err != nil {
		t.Fatalf("FetchUsage() error: %v", err)
	}

	if res.FetchedMonths != 24 { // 25 minus the one failed month
		t.Fatalf("fetchedMonths = %d, want 24", res.FetchedMonths)
	}
	for _, point := range res.Daily {
		if strings.HasPrefix(point.Day, "2023-11") {
			t.Fatalf("daily contains %s from the failed month", point.Day)
		}
	}
	wantDays := []string{"2023-12-24", "2024-03-02"}
	if len(res.Daily) != len(wantDays) {
		t.Fatalf("daily = %+v, want days %v", res.Daily, wantDays)
	}
	for i, d := range wantDays {
		if res.Daily[i].Day != d {
			t.Fatalf("daily[%d].Day = %s, want %s (ascending order)", i, res.Daily[i].Day, d)
		}
	}
}

func TestFetchUsage_CurrentMonthSummaryFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Must have admin rights"}`))
	}))
	defer server.Close()

	p := testProvider(server.URL)
	_, err := p.FetchUsage(context.Background(), testAccount(), nil)
	if err == nil {
		t.Fatal("FetchUsage() = nil error, want fatal summary error")
	}
	msg := err.Error()
	for _, want := range []string{"HTTP 403", "2024-03", "admin rights"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q does not mention %q", msg, want)
		}
	}
}

func TestFetchUsage_ErrorExcerptTruncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(strings.Repeat("x", 500)))
	}))
	defer server.Close()

	p := testProvider(server.URL)
	_, err := p.FetchUsage(context.Background(), testAccount(), nil)
	if err == nil {
		t.Fatal("FetchUsage() = nil error, want error")
	}
	if strings.Count(err.Error(), "x") > maxErrorExcerpt {
		t.Fatalf("error body excerpt not truncated: %d chars", strings.Count(err.Error(), "x"))
	}
}

func TestFetchUsage_ProgressCallbackOrdering(t *testing.T) {
	usage := map[string]string{
		"2024-03": `[{"feature":"chat","chatCount":1,"date":"2024-03-10"}]`,
		"2023-06": `[{"feature":"chat","chatCount":4,"date":"2023-06-01"}]`,
	}
	server := httptest.NewServer(billingHandler(t, premiumTwoRows, usage, nil))
	defer server.Close()

	p := testProvider(server.URL)
	var patches []core.UsagePatch
	res, err := p.FetchUsage(context.Background(), testAccount(), func(patch core.UsagePatch) {
		patches = append(patches, patch)
	})
	if err != nil {
		t.Fatalf("FetchUsage() error: %v", err)
	}

	// First patch carries the headline numbers, before any history.
	if len(patches) != 3 {
		t.Fatalf("got %d patches, want 3 (headline + two contributing months)", len(patches))
	}
	first := patches[0]
	if first.Used == nil || *first.Used != 80 || first.Cost == nil || *first.Cost != 20 {
		t.Fatalf("first patch = %+v, want headline used/cost", first)
	}
	if first.Daily != nil {
		t.Fatalf("first patch carries daily data: %+v", first.Daily)
	}
	if first.FetchedMonths == nil || *first.FetchedMonths != 1 {
		t.Fatalf("first patch fetchedMonths = %v, want 1", first.FetchedMonths)
	}

	// Months are walked current-to-oldest, so March lands before June.
	if len(patches[1].Daily) != 1 || patches[1].Daily[0].Day != "2024-03-10" {
		t.Fatalf("second patch daily = %+v, want the March day", patches[1].Daily)
	}
	if len(patches[2].Daily) != 2 || patches[2].Daily[0].Day != "2023-06-01" {
		t.Fatalf("third patch daily = %+v, want June prepended in sorted order", patches[2].Daily)
	}

	// Replaying the patches over an empty state converges on the result.
	var replay core.UsageResult
	for _, patch := range patches {
		patch.Apply(&replay)
	}
	replay.FetchedMonths = res.FetchedMonths // final count arrives with the return value
	if !reflect.DeepEqual(replay.Daily, res.Daily) {
		t.Fatalf("replayed daily = %+v, want %+v", replay.Daily, res.Daily)
	}
	if replay.Used != res.Used || replay.Cost != res.Cost {
		t.Fatalf("replayed headline = %v/%v, want %v/%v", replay.Used, replay.Cost, res.Used, res.Cost)
	}
}

func TestFetchUsage_Deterministic(t *testing.T) {
	usage := map[string]string{
		"2024-03": `[
			{"feature":"chat","ide":"vscode","model":"gpt-4","chatCount":3,"netAmount":0.75,"date":"2024-03-02"},
			{"feature":"chat","ide":"jetbrains","model":"claude","chatCount":5,"netAmount":1.25,"date":"2024-03-02"},
			{"feature":"agent","interactionCount":2,"date":"2024-03-03"}
		]`,
		"2024-01": `[{"feature":"chat","chatCount":9,"netAmount":2.25,"date":"2024-01-20"}]`,
	}
	server := httptest.NewServer(billingHandler(t, premiumTwoRows, usage, nil))
	defer server.Close()

	p := testProvider(server.URL)
	first, err := p.FetchUsage(context.Background(), testAccount(), nil)
	if err != nil {
		t.Fatalf("first FetchUsage() error: %v", err)
	}
	second, err := p.FetchUsage(context.Background(), testAccount(), nil)
	if err != nil {
		t.Fatalf("second FetchUsage() error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ between identical runs:\n%+v\n%+v", first, second)
	}

	// Same-day rows merge additively into one point.
	if first.Daily[len(first.Daily)-2].Day != "2024-03-02" {
		t.Fatalf("daily = %+v, want merged 2024-03-02 point", first.Daily)
	}
	var march2 core.DailyPoint
	for _, point := range first.Daily {
		if point.Day == "2024-03-02" {
			march2 = point
		}
	}
	if march2.Used != 8 || march2.Cost != 2 {
		t.Fatalf("2024-03-02 = %+v, want used 8 cost 2", march2)
	}
}

func TestFetchUsage_NewlineDelimitedBody(t *testing.T) {
	usage := map[string]string{
		"2024-02": "{\"feature\":\"chat\",\"chatCount\":1,\"date\":\"2024-02-01\"}\n{\"feature\":\"chat\",\"chatCount\":2,\"date\":\"2024-02-02\"}",
	}
	server := httptest.NewServer(billingHandler(t, premiumTwoRows, usage, nil))
	defer server.Close()

	p := testProvider(server.URL)
	res, err := p.FetchUsage(context.Background(), testAccount(), nil)
	if err != nil {
		t.Fatalf("FetchUsage() error: %v", err)
	}
	if len(res.Daily) != 2 || res.Daily[0].Day != "2024-02-01" {
		t.Fatalf("daily = %+v, want the two February days", res.Daily)
	}
}

func TestFetchUsage_OrgIdentityUsesOrgEndpoints(t *testing.T) {
	var sawOrgPath bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/organizations/acme/settings/billing/") {
			sawOrgPath = true
			w.Write([]byte(`[]`))
			return
		}
		t.Errorf("unexpected path %s", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	acct := testAccount()
	acct.Identity = "org:acme"

	p := testProvider(server.URL)
	if _, err := p.FetchUsage(context.Background(), acct, nil); err != nil {
		t.Fatalf("FetchUsage() error: %v", err)
	}
	if !sawOrgPath {
		t.Fatal("organization endpoints were never hit")
	}
}

func TestFetchUsage_ConfigErrorsBeforeAnyIO(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("network touched despite config error")
	}))
	defer server.Close()

	p := testProvider(server.URL)

	acct := testAccount()
	acct.Token = ""
	acct.APIKeyEnv = "USAGETOP_TEST_NO_SUCH_VAR"
	if _, err := p.FetchUsage(context.Background(), acct, nil); err == nil || !strings.Contains(err.Error(), "USAGETOP_TEST_NO_SUCH_VAR") {
		t.Fatalf("err = %v, want missing-credential error naming the env var", err)
	}

	acct = testAccount()
	acct.Identity = ""
	if _, err := p.FetchUsage(context.Background(), acct, nil); err == nil || !strings.Contains(err.Error(), "identity") {
		t.Fatalf("err = %v, want missing-identity error", err)
	}
}
