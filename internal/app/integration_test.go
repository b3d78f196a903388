package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/chmouel/gitdeck/internal/config"
)

// TestKeyboardNavigation drives the program through the tabs and quits.
// A plain temp directory is fine here, refreshes fail fast into the
// not-a-repository path and the UI must stay responsive.
func TestKeyboardNavigation(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AutoRefresh = false

	m := NewModel(cfg, t.TempDir())
	t.Cleanup(m.Close)

	tm := teatest.NewTestModel(
		t,
		m,
		teatest.WithInitialTermSize(120, 40),
	)

	// Wait for the initial refresh to settle.
	time.Sleep(100 * time.Millisecond)

	for _, key := range []string{"2", "3", "4"} {
		tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
		time.Sleep(50 * time.Millisecond)
	}

	// The commit input has focus on tab 4, so escape first.
	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	time.Sleep(50 * time.Millisecond)
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	time.Sleep(50 * time.Millisecond)

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	fm := tm.FinalModel(t)
	final, ok := fm.(*Model)
	if !ok {
		t.Fatal("Final model is not *Model type")
	}
	if !final.quitting {
		t.Error("Model should be marked as quitting after 'q' key")
	}
}

// TestCtrlCQuitsFromAnyMode makes sure ctrl+c always exits, even while an
// input field has focus.
func TestCtrlCQuitsFromAnyMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AutoRefresh = false

	m := NewModel(cfg, t.TempDir())
	t.Cleanup(m.Close)

	tm := teatest.NewTestModel(
		t,
		m,
		teatest.WithInitialTermSize(120, 40),
	)

	time.Sleep(100 * time.Millisecond)

	// Focus the commit message input, then interrupt.
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("4")})
	time.Sleep(50 * time.Millisecond)
	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	fm := tm.FinalModel(t)
	final, ok := fm.(*Model)
	if !ok {
		t.Fatal("Final model is not *Model type")
	}
	if !final.quitting {
		t.Error("Model should be marked as quitting after ctrl+c")
	}
}
