// Package state owns the in-memory repository model and the refresh
// controller that keeps it consistent with the working tree.
package state

import (
	"slices"

	"github.com/chmouel/gitdeck/internal/models"
)

// Snapshot is the aggregate repository model as of the last successfully
// completed refresh. Root is empty when the working directory is not
// inside a git repository; Branch is empty on a detached HEAD.
type Snapshot struct {
	Root      string
	Branch    string
	Staged    []models.FileChange
	Unstaged  []models.FileChange
	Untracked []models.FileChange
	Counts    models.StatusCounts
	Commits   []models.Commit
	// HistoryCount is the commit count requested for Commits. Load-more
	// re-fetches with a larger count and replaces Commits wholesale.
	HistoryCount int
	Locals       []models.Branch
	Remotes      []models.Branch
}

// Clone returns a deep copy so readers can hold a snapshot without
// observing later writes.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Staged = slices.Clone(s.Staged)
	out.Unstaged = slices.Clone(s.Unstaged)
	out.Untracked = slices.Clone(s.Untracked)
	out.Commits = slices.Clone(s.Commits)
	out.Locals = slices.Clone(s.Locals)
	out.Remotes = slices.Clone(s.Remotes)
	return out
}

// IsRepo reports whether the last refresh found a repository.
func (s Snapshot) IsRepo() bool {
	return s.Root != ""
}
