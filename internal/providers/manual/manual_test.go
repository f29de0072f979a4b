package manual

import (
	"context"
	"testing"

	"github.com/usagetop/usagetop/internal/core"
)

func TestFetchUsage_EchoesConfiguredNumbers(t *testing.T) {
	p := New()
	res, err := p.FetchUsage(context.Background(), core.AccountConfig{
		ID:         "payg",
		Provider:   "manual",
		ManualUsed: 1234,
		ManualCost: 56.78,
	}, func(core.UsagePatch) {
		t.Error("manual provider invoked the progress callback")
	})
	if err != nil {
		t.Fatalf("FetchUsage() error: %v", err)
	}
	if res.Used != 1234 || res.Cost != 56.78 {
		t.Fatalf("res = %+v, want configured used/cost", res)
	}
	if res.FetchedMonths != 0 || res.Daily != nil || res.Breakdown != nil {
		t.Fatalf("res = %+v, want no history or breakdown", res)
	}
}

func TestFetchUsage_ZeroConfigIsValid(t *testing.T) {
	res, err := New().FetchUsage(context.Background(), core.AccountConfig{ID: "empty", Provider: "manual"}, nil)
	if err != nil {
		t.Fatalf("FetchUsage() error: %v", err)
	}
	if res.Used != 0 || res.Cost != 0 {
		t.Fatalf("res = %+v, want zeros", res)
	}
}
