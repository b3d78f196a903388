package state

import (
	"sync"

	"github.com/chmouel/gitdeck/internal/models"
)

// Store holds the current Snapshot. The Controller is its only writer;
// views read cloned snapshots concurrently. Each slice of the aggregate is
// replaced wholesale on a successful refresh, never patched in place, so a
// failed refresh leaves the previous consistent snapshot untouched.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a deep copy of the current aggregate.
func (st *Store) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snap.Clone()
}

func (st *Store) setStatus(root, branch string, staged, unstaged, untracked []models.FileChange, counts models.StatusCounts) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.snap.Root = root
	st.snap.Branch = branch
	st.snap.Staged = staged
	st.snap.Unstaged = unstaged
	st.snap.Untracked = untracked
	st.snap.Counts = counts
}

func (st *Store) setNotARepo() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.snap.Root = ""
	st.snap.Branch = ""
}

func (st *Store) setHistory(commits []models.Commit, count int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.snap.Commits = commits
	st.snap.HistoryCount = count
}

func (st *Store) setBranches(locals, remotes []models.Branch) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.snap.Locals = locals
	st.snap.Remotes = remotes
}
