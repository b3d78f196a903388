package app

import (
	"time"

	"github.com/chmouel/gitdeck/internal/state"
)

// Message types for the Bubble Tea app.
type (
	// snapshotMsg carries the latest repository snapshot after a refresh.
	snapshotMsg struct {
		snap state.Snapshot
		err  error
	}
	// opDoneMsg reports the outcome of a mutation.
	opDoneMsg struct {
		outcome state.Outcome
	}
	// detailMsg carries `show --stat` text for a selected commit.
	detailMsg struct {
		sha  string
		text string
		err  error
	}
	// tickMsg drives the optional interval refresh.
	tickMsg time.Time
	// watchMsg signals git directory activity from the fsnotify watcher.
	watchMsg struct{}
	// watchStartedMsg reports whether the watcher could be started.
	watchStartedMsg struct {
		ok  bool
		err error
	}
)
