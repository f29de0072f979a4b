package tui

import (
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/usagetop/usagetop/internal/config"
	"github.com/usagetop/usagetop/internal/core"
)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// PatchMsg carries an incremental update for one account while its
// refresh is still running.
type PatchMsg struct {
	AccountID string
	Patch     core.UsagePatch
}

// ResultMsg carries the final outcome of one account's refresh.
type ResultMsg struct {
	AccountID string
	Result    core.UsageResult
	Err       error
}

// SeedMsg paints a cached result from a previous run before the first
// live refresh lands.
type SeedMsg struct {
	AccountID string
	Result    core.UsageResult
	UpdatedAt time.Time
}

// RefreshStartedMsg flips an account's row into the refreshing state.
type RefreshStartedMsg struct {
	AccountID string
}

// ConfigMsg replaces the account list after a config file reload.
type ConfigMsg config.Config

// UpdateMsg shows the new-release banner.
type UpdateMsg struct {
	Version string
	Hint    string
}

type accountRow struct {
	result    core.UsageResult
	state     RowState
	err       error
	updatedAt time.Time
}

type Model struct {
	accounts []core.AccountConfig
	rows     map[string]*accountRow

	cursor      int
	monthOffset int // which month of the daily series the detail chart shows
	showHelp    bool
	width       int
	height      int

	warnThreshold float64
	critThreshold float64

	updateVersion string
	updateHint    string

	// onRefresh asks the engine to refresh one account. Set from
	// main; nil in tests.
	onRefresh func(accountID string)
}

func NewModel(cfg config.Config) Model {
	m := Model{
		rows:          make(map[string]*accountRow),
		warnThreshold: cfg.UI.WarnThreshold,
		critThreshold: cfg.UI.CritThreshold,
	}
	m.setAccounts(cfg.Accounts)
	return m
}

func (m *Model) SetOnRefresh(fn func(accountID string)) {
	m.onRefresh = fn
}

func (m *Model) setAccounts(accounts []core.AccountConfig) {
	m.accounts = append([]core.AccountConfig(nil), accounts...)
	sort.SliceStable(m.accounts, func(i, j int) bool {
		return m.accounts[i].ID < m.accounts[j].ID
	})
	for _, acct := range m.accounts {
		if _, ok := m.rows[acct.ID]; !ok {
			m.rows[acct.ID] = &accountRow{state: StateLoading}
		}
	}
	// Drop rows for accounts removed from the config.
	known := make(map[string]bool, len(m.accounts))
	for _, acct := range m.accounts {
		known[acct.ID] = true
	}
	for id := range m.rows {
		if !known[id] {
			delete(m.rows, id)
		}
	}
	if m.cursor >= len(m.accounts) {
		m.cursor = 0
	}
}

func (m Model) selectedAccount() (core.AccountConfig, bool) {
	if len(m.accounts) == 0 || m.cursor < 0 || m.cursor >= len(m.accounts) {
		return core.AccountConfig{}, false
	}
	return m.accounts[m.cursor], true
}

func (m Model) Init() tea.Cmd { return tickCmd() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case SeedMsg:
		if row, ok := m.rows[msg.AccountID]; ok && row.state == StateLoading {
			row.result = msg.Result
			row.state = StateStale
			row.updatedAt = msg.UpdatedAt
		}
		return m, nil

	case RefreshStartedMsg:
		if row, ok := m.rows[msg.AccountID]; ok {
			row.state = StateRefreshing
			row.err = nil
		}
		return m, nil

	case PatchMsg:
		if row, ok := m.rows[msg.AccountID]; ok {
			msg.Patch.Apply(&row.result)
			row.state = StateRefreshing
		}
		return m, nil

	case ResultMsg:
		if row, ok := m.rows[msg.AccountID]; ok {
			row.updatedAt = time.Now()
			if msg.Err != nil {
				row.state = StateError
				row.err = msg.Err
			} else {
				row.result = msg.Result
				row.state = StateOK
				row.err = nil
			}
		}
		return m, nil

	case ConfigMsg:
		m.warnThreshold = msg.UI.WarnThreshold
		m.critThreshold = msg.UI.CritThreshold
		m.setAccounts(msg.Accounts)
		SetThemeByName(msg.Theme)
		return m, nil

	case UpdateMsg:
		m.updateVersion = msg.Version
		m.updateHint = msg.Hint
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.accounts)-1 {
			m.cursor++
			m.monthOffset = 0
		}
		return m, nil

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			m.monthOffset = 0
		}
		return m, nil

	case "h", "left":
		if m.monthOffset < m.maxMonthOffset() {
			m.monthOffset++
		}
		return m, nil

	case "l", "right":
		if m.monthOffset > 0 {
			m.monthOffset--
		}
		return m, nil

	case "r":
		if acct, ok := m.selectedAccount(); ok {
			m.requestRefresh(acct.ID)
		}
		return m, nil

	case "R":
		for _, acct := range m.accounts {
			m.requestRefresh(acct.ID)
		}
		return m, nil

	case "t":
		name := CycleTheme()
		return m, persistThemeCmd(name)

	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	}

	return m, nil
}

func (m Model) requestRefresh(accountID string) {
	if m.onRefresh != nil {
		m.onRefresh(accountID)
	}
}

func (m Model) maxMonthOffset() int {
	acct, ok := m.selectedAccount()
	if !ok {
		return 0
	}
	row, ok := m.rows[acct.ID]
	if !ok {
		return 0
	}
	months := MonthsWithData(row.result.Daily)
	if len(months) == 0 {
		return 0
	}
	return len(months) - 1
}

func persistThemeCmd(name string) tea.Cmd {
	return func() tea.Msg {
		_ = config.SaveTheme(name)
		return nil
	}
}
