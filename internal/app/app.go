// Package app implements the gitdeck terminal dashboard.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/gitdeck/internal/app/services"
	"github.com/chmouel/gitdeck/internal/config"
	"github.com/chmouel/gitdeck/internal/git"
	log "github.com/chmouel/gitdeck/internal/log"
	"github.com/chmouel/gitdeck/internal/state"
)

type tabID int

const (
	tabStatus tabID = iota
	tabHistory
	tabBranches
	tabCommit
	tabCount
)

var tabTitles = [tabCount]string{"Status", "History", "Branches", "Commit"}

const activityLogLimit = 50

// Model is the main application model. It owns the refresh controller and
// renders the four dashboard tabs from store snapshots.
type Model struct {
	config  *config.AppConfig
	ctrl    *state.Controller
	watcher *services.RepoWatcher

	snap state.Snapshot

	activeTab tabID

	historyTable   table.Model
	localTable     table.Model
	statusViewport viewport.Model
	detailViewport viewport.Model
	remoteViewport viewport.Model
	commitInput    textinput.Model
	branchInput    textinput.Model

	enteringBranch bool
	showingDetail  bool
	detailSHA      string
	activityLog    []string

	statusLine string
	statusKind state.OutcomeKind

	windowWidth  int
	windowHeight int

	ctx    context.Context
	cancel context.CancelFunc

	quitting bool
}

// NewModel creates the application model for the repository in dir.
func NewModel(cfg *config.AppConfig, dir string) *Model {
	ctx, cancel := context.WithCancel(context.Background())

	runner := &git.ExecRunner{GitPath: cfg.GitPath}
	gitSvc := git.NewService(runner, dir)
	store := state.NewStore()
	ctrl := state.NewController(
		gitSvc,
		store,
		state.RefreshPolicy(cfg.RefreshPolicy),
		cfg.HistoryPageSize,
		time.Duration(cfg.CommandTimeout)*time.Second,
	)

	historyColumns := []table.Column{
		{Title: "Hash", Width: 10},
		{Title: "Author", Width: 16},
		{Title: "Date", Width: 16},
		{Title: "Subject", Width: 56},
	}
	historyTable := table.New(
		table.WithColumns(historyColumns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	historyTable.SetStyles(tableStyles())

	localColumns := []table.Column{
		{Title: "", Width: 2},
		{Title: "Branch", Width: 30},
		{Title: "Last commit", Width: 42},
	}
	localTable := table.New(
		table.WithColumns(localColumns),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	localTable.SetStyles(tableStyles())

	statusVp := viewport.New(80, 16)
	statusVp.SetContent("Loading...")
	detailVp := viewport.New(80, 16)
	remoteVp := viewport.New(80, 6)

	commitInput := textinput.New()
	commitInput.Placeholder = "Commit message..."
	commitInput.CharLimit = 200
	commitInput.Width = 60

	branchInput := textinput.New()
	branchInput.Placeholder = "New branch name..."
	branchInput.CharLimit = 100
	branchInput.Width = 40

	m := &Model{
		config:         cfg,
		ctrl:           ctrl,
		watcher:        services.NewRepoWatcher(gitSvc, log.Printf),
		historyTable:   historyTable,
		localTable:     localTable,
		statusViewport: statusVp,
		detailViewport: detailVp,
		remoteViewport: remoteVp,
		commitInput:    commitInput,
		branchInput:    branchInput,
		statusLine:     "Loading...",
		ctx:            ctx,
		cancel:         cancel,
	}
	return m
}

// Controller exposes the refresh controller, mainly for tests.
func (m *Model) Controller() *state.Controller {
	return m.ctrl
}

// Close releases background resources after the program finishes.
func (m *Model) Close() {
	m.watcher.Stop()
	m.cancel()
}

// Init starts the initial refresh, the git directory watcher and the
// optional interval ticker.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refreshAllCmd()}
	if m.config.AutoRefresh {
		cmds = append(cmds, m.startWatchCmd())
	}
	if cmd := m.tickCmd(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setWindowSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotMsg:
		m.applySnapshot(msg.snap)
		if msg.err != nil {
			m.reportRefreshError(msg.err)
		}
		return m, nil

	case opDoneMsg:
		m.reportOutcome(msg.outcome)
		m.applySnapshot(m.ctrl.Store().Snapshot())
		return m, nil

	case detailMsg:
		if msg.err != nil {
			m.setStatusLine(msg.err.Error(), state.OutcomeFailed)
			return m, nil
		}
		m.showingDetail = true
		m.detailSHA = msg.sha
		m.detailViewport.SetContent(wrapForViewport(msg.text, m.detailViewport.Width))
		m.detailViewport.GotoTop()
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{m.tickCmd()}
		cmds = append(cmds, m.refreshAllCmd())
		return m, tea.Batch(cmds...)

	case watchStartedMsg:
		if msg.err != nil {
			log.Printf("watcher start failed: %v", msg.err)
			return m, nil
		}
		if !msg.ok {
			return m, nil
		}
		return m, m.waitWatchCmd()

	case watchMsg:
		m.watcher.ResetWaiting()
		cmds := []tea.Cmd{m.waitWatchCmd()}
		if m.watcher.ShouldRefresh(time.Now()) {
			cmds = append(cmds, m.refreshAllCmd())
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.enteringBranch {
		return m.handleBranchInputKey(msg)
	}
	if m.showingDetail {
		return m.handleDetailKey(msg)
	}
	if m.activeTab == tabCommit && m.commitInput.Focused() {
		return m.handleCommitInputKey(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "1":
		return m.switchTab(tabStatus)
	case "2":
		return m.switchTab(tabHistory)
	case "3":
		return m.switchTab(tabBranches)
	case "4":
		return m.switchTab(tabCommit)
	case "tab":
		return m.switchTab((m.activeTab + 1) % tabCount)
	case "r":
		return m, m.refreshTabCmd()
	}

	switch m.activeTab {
	case tabStatus:
		return m.handleStatusKey(msg)
	case tabHistory:
		return m.handleHistoryKey(msg)
	case tabBranches:
		return m.handleBranchesKey(msg)
	case tabCommit:
		return m.handleCommitKey(msg)
	}
	return m, nil
}

func (m *Model) switchTab(tab tabID) (tea.Model, tea.Cmd) {
	m.activeTab = tab
	m.showingDetail = false
	if tab == tabCommit {
		m.commitInput.Focus()
	} else {
		m.commitInput.Blur()
	}
	return m, m.refreshTabCmd()
}

// refreshTabCmd refreshes the slice backing the active tab.
func (m *Model) refreshTabCmd() tea.Cmd {
	switch m.activeTab {
	case tabHistory:
		return m.refreshHistoryCmd(0)
	case tabBranches:
		return m.refreshBranchesCmd()
	default:
		// The status and commit tabs both render the status slice.
		return m.refreshStatusCmd()
	}
}

func (m *Model) handleStatusKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s":
		return m, m.mutationCmd(m.ctrl.StageAll)
	case "u":
		return m, m.mutationCmd(m.ctrl.UnstageAll)
	}
	var cmd tea.Cmd
	m.statusViewport, cmd = m.statusViewport.Update(msg)
	return m, cmd
}

func (m *Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "m":
		return m, m.loadMoreCmd()
	case "enter":
		row := m.historyTable.SelectedRow()
		if len(row) > 0 && row[0] != "" {
			return m, m.detailCmd(row[0])
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.historyTable, cmd = m.historyTable.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter":
		m.showingDetail = false
		return m, nil
	}
	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m *Model) handleBranchesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		m.enteringBranch = true
		m.branchInput.SetValue("")
		return m, m.branchInput.Focus()
	case "p":
		return m, m.mutationCmd(m.ctrl.Pull)
	case "P":
		return m, m.mutationCmd(m.ctrl.Push)
	case "enter":
		row := m.localTable.SelectedRow()
		if len(row) > 1 && row[1] != "" {
			name := row[1]
			return m, m.mutationCmd(func(ctx context.Context) state.Outcome {
				return m.ctrl.SwitchBranch(ctx, name)
			})
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.localTable, cmd = m.localTable.Update(msg)
	return m, cmd
}

func (m *Model) handleBranchInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.enteringBranch = false
		m.branchInput.Blur()
		return m, nil
	case "enter":
		name := trimmed(m.branchInput.Value())
		m.enteringBranch = false
		m.branchInput.Blur()
		if name == "" {
			m.setStatusLine("branch name required", state.OutcomeFailed)
			return m, nil
		}
		return m, m.mutationCmd(func(ctx context.Context) state.Outcome {
			return m.ctrl.CreateBranch(ctx, name)
		})
	}
	var cmd tea.Cmd
	m.branchInput, cmd = m.branchInput.Update(msg)
	return m, cmd
}

func (m *Model) handleCommitKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "i" || msg.String() == "c" {
		return m, m.commitInput.Focus()
	}
	return m, nil
}

func (m *Model) handleCommitInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.commitInput.Blur()
		return m, nil
	case "tab":
		m.commitInput.Blur()
		return m.switchTab((m.activeTab + 1) % tabCount)
	case "enter":
		message := trimmed(m.commitInput.Value())
		if message == "" {
			m.setStatusLine("commit message required", state.OutcomeFailed)
			return m, nil
		}
		m.commitInput.SetValue("")
		return m, m.mutationCmd(func(ctx context.Context) state.Outcome {
			return m.ctrl.Commit(ctx, message)
		})
	case "ctrl+p":
		message := trimmed(m.commitInput.Value())
		if message == "" {
			m.setStatusLine("commit message required", state.OutcomeFailed)
			return m, nil
		}
		m.commitInput.SetValue("")
		return m, m.mutationCmd(func(ctx context.Context) state.Outcome {
			return m.ctrl.CommitAndPush(ctx, message)
		})
	case "ctrl+u":
		return m, m.mutationCmd(m.ctrl.UndoLastCommit)
	case "ctrl+a":
		// Amend keeps the previous message when the input is empty.
		message := trimmed(m.commitInput.Value())
		m.commitInput.SetValue("")
		return m, m.mutationCmd(func(ctx context.Context) state.Outcome {
			return m.ctrl.Amend(ctx, message)
		})
	}
	var cmd tea.Cmd
	m.commitInput, cmd = m.commitInput.Update(msg)
	return m, cmd
}

// Commands

func (m *Model) refreshAllCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		err := ctrl.RefreshAll(ctx)
		return snapshotMsg{snap: ctrl.Store().Snapshot(), err: err}
	}
}

func (m *Model) refreshStatusCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		err := ctrl.RefreshStatus(ctx)
		return snapshotMsg{snap: ctrl.Store().Snapshot(), err: err}
	}
}

func (m *Model) refreshHistoryCmd(count int) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		err := ctrl.RefreshHistory(ctx, count)
		return snapshotMsg{snap: ctrl.Store().Snapshot(), err: err}
	}
}

func (m *Model) loadMoreCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		err := ctrl.LoadMoreHistory(ctx)
		return snapshotMsg{snap: ctrl.Store().Snapshot(), err: err}
	}
}

func (m *Model) refreshBranchesCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		err := ctrl.RefreshBranches(ctx)
		return snapshotMsg{snap: ctrl.Store().Snapshot(), err: err}
	}
}

func (m *Model) mutationCmd(op func(context.Context) state.Outcome) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{outcome: op(ctx)}
	}
}

func (m *Model) detailCmd(sha string) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		text, err := ctrl.CommitDetail(ctx, sha)
		return detailMsg{sha: sha, text: text, err: err}
	}
}

func (m *Model) startWatchCmd() tea.Cmd {
	watcher, ctx := m.watcher, m.ctx
	return func() tea.Msg {
		ok, err := watcher.Start(ctx)
		return watchStartedMsg{ok: ok, err: err}
	}
}

func (m *Model) waitWatchCmd() tea.Cmd {
	ch := m.watcher.NextEvent()
	if ch == nil {
		return nil
	}
	done := m.ctx.Done()
	return func() tea.Msg {
		select {
		case <-done:
			return nil
		case <-ch:
			return watchMsg{}
		}
	}
}

func (m *Model) tickCmd() tea.Cmd {
	if m.config.RefreshInterval <= 0 {
		return nil
	}
	interval := time.Duration(m.config.RefreshInterval) * time.Second
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// State application

func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snap = snap
	m.rebuildStatusContent()
	m.rebuildHistoryRows()
	m.rebuildBranchRows()
}

func (m *Model) rebuildHistoryRows() {
	rows := make([]table.Row, 0, len(m.snap.Commits))
	for _, c := range m.snap.Commits {
		rows = append(rows, table.Row{c.SHA, c.Author, c.Date, c.Subject})
	}
	m.historyTable.SetRows(rows)
}

func (m *Model) rebuildBranchRows() {
	rows := make([]table.Row, 0, len(m.snap.Locals))
	for _, b := range m.snap.Locals {
		marker := "○"
		if b.Current {
			marker = "●"
		}
		rows = append(rows, table.Row{marker, b.Name, b.Summary})
	}
	m.localTable.SetRows(rows)

	remotes := make([]string, 0, len(m.snap.Remotes))
	for _, b := range m.snap.Remotes {
		remotes = append(remotes, "→ "+b.Name)
	}
	if len(remotes) == 0 {
		remotes = append(remotes, "(no remote branches)")
	}
	m.remoteViewport.SetContent(joinLines(remotes))
}

func (m *Model) reportRefreshError(err error) {
	switch {
	case errors.Is(err, state.ErrSuperseded):
		// An equivalent refresh is already running, nothing to report.
	case errors.Is(err, state.ErrNotARepository):
		m.setStatusLine("not a git repository", state.OutcomeFailed)
	default:
		m.setStatusLine(err.Error(), state.OutcomeFailed)
	}
}

func (m *Model) reportOutcome(outcome state.Outcome) {
	m.setStatusLine(outcome.Message, outcome.Kind)
	entry := fmt.Sprintf("%s %s", time.Now().Format("15:04:05"), outcome.Message)
	m.activityLog = append(m.activityLog, entry)
	if len(m.activityLog) > activityLogLimit {
		m.activityLog = m.activityLog[len(m.activityLog)-activityLogLimit:]
	}
}

func (m *Model) setStatusLine(message string, kind state.OutcomeKind) {
	m.statusLine = message
	m.statusKind = kind
}
