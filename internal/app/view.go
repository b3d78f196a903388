package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/chmouel/gitdeck/internal/models"
	"github.com/chmouel/gitdeck/internal/state"
	"github.com/muesli/reflow/wordwrap"
)

var (
	colorAccent    = lipgloss.Color("141")
	colorBorder    = lipgloss.Color("241")
	colorMutedFg   = lipgloss.Color("250")
	colorTextFg    = lipgloss.Color("255")
	colorSuccessFg = lipgloss.Color("48")
	colorWarnFg    = lipgloss.Color("214")
	colorErrorFg   = lipgloss.Color("196")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	tabStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(colorMutedFg)
	tabActive  = lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Foreground(lipgloss.Color("232")).Background(colorAccent)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMutedFg)
	errorStyle   = lipgloss.NewStyle().Foreground(colorErrorFg)
	warnStyle    = lipgloss.NewStyle().Foreground(colorWarnFg)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccessFg)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).Padding(0, 1)
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.Foreground(colorMutedFg).Bold(true)
	s.Cell = s.Cell.Foreground(colorTextFg)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("232")).
		Background(colorAccent).
		Bold(true)
	return s
}

// View renders the dashboard.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.windowWidth == 0 || m.windowHeight == 0 {
		return "Loading..."
	}

	sections := []string{
		m.renderHeader(),
		m.renderRepoInfo(),
		m.renderBody(),
		m.renderStatusLine(),
		m.renderFooter(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	tabs := make([]string, 0, int(tabCount))
	for i, title := range tabTitles {
		label := fmt.Sprintf("%d %s", i+1, title)
		if tabID(i) == m.activeTab {
			tabs = append(tabs, tabActive.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return titleStyle.Render("gitdeck") + "  " +
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderRepoInfo() string {
	if !m.snap.IsRepo() {
		return errorStyle.Render("⚠ not a git repository")
	}
	branch := m.snap.Branch
	if branch == "" {
		branch = "(detached)"
	}
	return mutedStyle.Render(m.snap.Root) + "  " +
		successStyle.Render("⎇ "+branch)
}

func (m *Model) renderBody() string {
	switch m.activeTab {
	case tabStatus:
		return boxStyle.Render(m.statusViewport.View())
	case tabHistory:
		if m.showingDetail {
			header := sectionStyle.Render("Commit " + m.detailSHA)
			return boxStyle.Render(header + "\n" + m.detailViewport.View())
		}
		return boxStyle.Render(m.historyTable.View())
	case tabBranches:
		return m.renderBranches()
	case tabCommit:
		return m.renderCommit()
	}
	return ""
}

func (m *Model) renderBranches() string {
	local := sectionStyle.Render("Local branches") + "\n" + m.localTable.View()
	remote := sectionStyle.Render("Remote branches") + "\n" + m.remoteViewport.View()
	body := lipgloss.JoinVertical(lipgloss.Left, local, "", remote)
	if m.enteringBranch {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "",
			sectionStyle.Render("Create branch")+" "+m.branchInput.View())
	}
	return boxStyle.Render(body)
}

func (m *Model) renderCommit() string {
	counts := m.snap.Counts
	summary := successStyle.Render(fmt.Sprintf("staged: %d", counts.Staged)) + mutedStyle.Render(" | ") +
		warnStyle.Render(fmt.Sprintf("unstaged: %d", counts.Unstaged)) + mutedStyle.Render(" | ") +
		errorStyle.Render(fmt.Sprintf("untracked: %d", counts.Untracked))

	logLines := m.activityLog
	if len(logLines) == 0 {
		logLines = []string{mutedStyle.Render("(no activity yet)")}
	}
	activity := sectionStyle.Render("Activity") + "\n" + joinLines(logLines)

	body := lipgloss.JoinVertical(lipgloss.Left,
		summary,
		"",
		m.commitInput.View(),
		"",
		activity,
	)
	return boxStyle.Render(body)
}

func (m *Model) renderStatusLine() string {
	switch m.statusKind {
	case state.OutcomeFailed:
		return errorStyle.Render(m.statusLine)
	case state.OutcomePartial:
		return warnStyle.Render(m.statusLine)
	default:
		return mutedStyle.Render(m.statusLine)
	}
}

func (m *Model) renderFooter() string {
	var hints string
	switch {
	case m.enteringBranch:
		hints = "enter: create • esc: cancel"
	case m.showingDetail:
		hints = "↑/↓: scroll • esc: back"
	default:
		switch m.activeTab {
		case tabStatus:
			hints = "r: refresh • s: stage all • u: unstage all • tab: next • q: quit"
		case tabHistory:
			hints = "enter: detail • m: more • r: refresh • tab: next • q: quit"
		case tabBranches:
			hints = "enter: switch • n: new • p: pull • P: push • r: refresh • q: quit"
		case tabCommit:
			hints = "enter: commit • ctrl+p: commit+push • ctrl+a: amend • ctrl+u: undo • esc: leave input"
		}
	}
	return mutedStyle.Render(hints)
}

// rebuildStatusContent renders the three file sections into the status
// viewport.
func (m *Model) rebuildStatusContent() {
	if !m.snap.IsRepo() {
		m.statusViewport.SetContent(errorStyle.Render("⚠ not a git repository"))
		return
	}

	var b strings.Builder
	writeFileSection(&b, "Staged", m.snap.Staged, successStyle)
	b.WriteString("\n")
	writeFileSection(&b, "Unstaged", m.snap.Unstaged, warnStyle)
	b.WriteString("\n")
	writeFileSection(&b, "Untracked", m.snap.Untracked, errorStyle)
	m.statusViewport.SetContent(b.String())
}

func writeFileSection(b *strings.Builder, title string, files []models.FileChange, style lipgloss.Style) {
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")
	if len(files) == 0 {
		b.WriteString(mutedStyle.Render("  (none)"))
		b.WriteString("\n")
		return
	}
	for _, f := range files {
		b.WriteString(fmt.Sprintf("  %s %s\n", style.Render(fmt.Sprintf("%-9s", f.Status)), f.Path))
	}
}

func (m *Model) setWindowSize(width, height int) {
	m.windowWidth = width
	m.windowHeight = height

	// Header, repo info, status line, footer and box borders.
	bodyHeight := height - 8
	if bodyHeight < 5 {
		bodyHeight = 5
	}
	contentWidth := width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	m.statusViewport.Width = contentWidth
	m.statusViewport.Height = bodyHeight
	m.detailViewport.Width = contentWidth
	m.detailViewport.Height = bodyHeight - 1
	m.historyTable.SetWidth(contentWidth)
	m.historyTable.SetHeight(bodyHeight)
	m.localTable.SetWidth(contentWidth)
	localHeight := bodyHeight - 10
	if localHeight < 4 {
		localHeight = 4
	}
	m.localTable.SetHeight(localHeight)
	m.remoteViewport.Width = contentWidth
	m.remoteViewport.Height = 6
	m.commitInput.Width = contentWidth - 4
}

func wrapForViewport(text string, width int) string {
	if width <= 0 {
		return text
	}
	return wordwrap.String(text, width)
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
