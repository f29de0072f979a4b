package providers

import (
	"github.com/usagetop/usagetop/internal/core"
	"github.com/usagetop/usagetop/internal/providers/copilot"
	"github.com/usagetop/usagetop/internal/providers/manual"
)

func AllProviders() []core.UsageProvider {
	return []core.UsageProvider{
		copilot.New(),
		manual.New(),
	}
}

// ByID resolves a provider by its registry ID.
func ByID(id string) (core.UsageProvider, bool) {
	for _, p := range AllProviders() {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}
