package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/usagetop/usagetop/internal/appupdate"
	"github.com/usagetop/usagetop/internal/config"
	"github.com/usagetop/usagetop/internal/core"
	"github.com/usagetop/usagetop/internal/history"
	"github.com/usagetop/usagetop/internal/providers"
	"github.com/usagetop/usagetop/internal/tui"
	"github.com/usagetop/usagetop/internal/version"
)

// refresher runs account refreshes in the background with at most one
// in flight per account; extra requests while one runs are dropped.
type refresher struct {
	mu       sync.Mutex
	inflight map[string]bool

	byID  map[string]core.UsageProvider
	store *history.Store
	send  func(tea.Msg)
}

func newRefresher(store *history.Store, send func(tea.Msg)) *refresher {
	byID := make(map[string]core.UsageProvider)
	for _, p := range providers.AllProviders() {
		byID[p.ID()] = p
	}
	return &refresher{
		inflight: make(map[string]bool),
		byID:     byID,
		store:    store,
		send:     send,
	}
}

func (r *refresher) refresh(ctx context.Context, acct core.AccountConfig) {
	r.mu.Lock()
	if r.inflight[acct.ID] {
		r.mu.Unlock()
		return
	}
	r.inflight[acct.ID] = true
	r.mu.Unlock()

	provider, ok := r.byID[acct.Provider]
	if !ok {
		r.mu.Lock()
		delete(r.inflight, acct.ID)
		r.mu.Unlock()
		r.send(tui.ResultMsg{AccountID: acct.ID, Err: unknownProviderError(acct.Provider)})
		return
	}

	r.send(tui.RefreshStartedMsg{AccountID: acct.ID})

	go func() {
		defer func() {
			r.mu.Lock()
			delete(r.inflight, acct.ID)
			r.mu.Unlock()
		}()

		res, err := provider.FetchUsage(ctx, acct, func(patch core.UsagePatch) {
			r.send(tui.PatchMsg{AccountID: acct.ID, Patch: patch})
		})
		r.send(tui.ResultMsg{AccountID: acct.ID, Result: res, Err: err})

		if err == nil && r.store != nil {
			if saveErr := r.store.Save(acct.ID, res); saveErr != nil {
				log.Printf("[history] %v", saveErr)
			}
		}
	}()
}

type unknownProviderError string

func (e unknownProviderError) Error() string {
	return "no provider registered for " + string(e)
}

func runDashboard(cfg config.Config) {
	tui.SetThemeByName(cfg.Theme)
	if err := tui.LoadThemes(config.ConfigDir()); err != nil {
		log.Printf("[themes] %v", err)
	}

	if creds, err := config.LoadCredentials(); err == nil {
		creds.Apply(cfg.Accounts)
	} else {
		log.Printf("[config] %v", err)
	}

	store, err := history.Open(filepath.Join(config.ConfigDir(), "history.db"))
	if err != nil {
		log.Printf("[history] disabled: %v", err)
		store = nil
	} else {
		defer store.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := tui.NewModel(cfg)

	var program *tea.Program
	send := func(msg tea.Msg) {
		if program != nil {
			program.Send(msg)
		}
	}

	eng := newRefresher(store, send)

	accountByID := func(accounts []core.AccountConfig, id string) (core.AccountConfig, bool) {
		for _, acct := range accounts {
			if acct.ID == id {
				return acct, true
			}
		}
		return core.AccountConfig{}, false
	}

	// The config the refresh callbacks see; swapped on file reload.
	var cfgMu sync.Mutex
	current := cfg

	model.SetOnRefresh(func(accountID string) {
		cfgMu.Lock()
		acct, ok := accountByID(current.Accounts, accountID)
		cfgMu.Unlock()
		if ok {
			eng.refresh(ctx, acct)
		}
	})

	program = tea.NewProgram(model, tea.WithAltScreen())

	// Paint last-known numbers while the first refresh runs.
	if store != nil {
		go func() {
			cached, err := store.LoadAll()
			if err != nil {
				log.Printf("[history] %v", err)
				return
			}
			for id, c := range cached {
				send(tui.SeedMsg{AccountID: id, Result: c.Result, UpdatedAt: c.UpdatedAt})
			}
		}()
	}

	refreshAll := func() {
		cfgMu.Lock()
		accounts := append([]core.AccountConfig(nil), current.Accounts...)
		cfgMu.Unlock()
		for _, acct := range accounts {
			eng.refresh(ctx, acct)
		}
	}

	go refreshAll()

	interval := time.Duration(cfg.UI.RefreshIntervalSeconds) * time.Second
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refreshAll()
			}
		}
	}()

	stopWatch, err := config.Watch(config.ConfigPath(), func(next config.Config) {
		if creds, err := config.LoadCredentials(); err == nil {
			creds.Apply(next.Accounts)
		}
		cfgMu.Lock()
		current = next
		cfgMu.Unlock()
		send(tui.ConfigMsg(next))
		refreshAll()
	})
	if err != nil {
		log.Printf("[config] watch disabled: %v", err)
	} else {
		defer stopWatch()
	}

	go func() {
		res, err := appupdate.Check(ctx, appupdate.CheckOptions{CurrentVersion: version.Version})
		if err != nil {
			log.Printf("[update] %v", err)
			return
		}
		if res.UpdateAvailable {
			send(tui.UpdateMsg{Version: res.LatestVersion, Hint: res.UpgradeHint})
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("TUI error: %v", err)
	}
}
