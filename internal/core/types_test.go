package core

import (
	"reflect"
	"testing"
)

func TestSortDaily(t *testing.T) {
	points := []DailyPoint{
		{Day: "2025-03-02", Used: 2},
		{Day: "2024-11-30", Used: 1},
		{Day: "2025-03-01", Used: 3},
	}
	SortDaily(points)

	want := []string{"2024-11-30", "2025-03-01", "2025-03-02"}
	for i, w := range want {
		if points[i].Day != w {
			t.Fatalf("points[%d].Day = %q, want %q", i, points[i].Day, w)
		}
	}
}

func TestSortBreakdown_DescendingWithStableTies(t *testing.T) {
	entries := []ModelBreakdown{
		{Label: "vscode/gpt-4", Used: 10},
		{Label: "jetbrains/claude", Used: 25},
		{Label: "aaa", Used: 10},
	}
	SortBreakdown(entries)

	want := []string{"jetbrains/claude", "aaa", "vscode/gpt-4"}
	for i, w := range want {
		if entries[i].Label != w {
			t.Fatalf("entries[%d].Label = %q, want %q", i, entries[i].Label, w)
		}
	}
}

func TestUsagePatch_ApplyMergesOnlySetFields(t *testing.T) {
	res := UsageResult{
		Used:          80,
		Cost:          20,
		Breakdown:     []ModelBreakdown{{Label: "gpt-4", Used: 80, Cost: 20}},
		FetchedMonths: 1,
	}

	patch := UsagePatch{
		Daily:         []DailyPoint{{Day: "2025-01-15", Used: 5, Cost: 1.25}},
		FetchedMonths: IntPtr(3),
	}
	patch.Apply(&res)

	if res.Used != 80 || res.Cost != 20 {
		t.Fatalf("headline numbers changed: used=%v cost=%v", res.Used, res.Cost)
	}
	if len(res.Breakdown) != 1 {
		t.Fatalf("breakdown changed: %+v", res.Breakdown)
	}
	if !reflect.DeepEqual(res.Daily, patch.Daily) {
		t.Fatalf("daily = %+v, want %+v", res.Daily, patch.Daily)
	}
	if res.FetchedMonths != 3 {
		t.Fatalf("fetchedMonths = %d, want 3", res.FetchedMonths)
	}
}

func TestUsagePatch_ApplyEmptyPatchIsNoop(t *testing.T) {
	res := UsageResult{Used: 1, Cost: 2, FetchedMonths: 4}
	before := res
	(UsagePatch{}).Apply(&res)
	if !reflect.DeepEqual(res, before) {
		t.Fatalf("empty patch changed result: %+v", res)
	}
}

func TestAccountConfig_IsOrg(t *testing.T) {
	cases := []struct {
		identity string
		wantID   string
		wantOrg  bool
	}{
		{"org:acme", "acme", true},
		{"octocat", "octocat", false},
		{"org:", "org:", false},
		{"", "", false},
	}
	for _, tc := range cases {
		acct := AccountConfig{Identity: tc.identity}
		id, org := acct.IsOrg()
		if id != tc.wantID || org != tc.wantOrg {
			t.Errorf("IsOrg(%q) = (%q, %v), want (%q, %v)", tc.identity, id, org, tc.wantID, tc.wantOrg)
		}
	}
}
