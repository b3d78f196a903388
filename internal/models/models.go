// Package models defines the data objects shared across gitdeck packages.
package models

// FileChange represents one working-tree file reported by git status.
// Status is the human-readable change label (Modified, Added, Deleted,
// Renamed, Copied, Untracked).
type FileChange struct {
	Status string
	Path   string
}

// Commit represents one entry from the commit history.
type Commit struct {
	SHA     string
	Author  string
	Date    string // relative date as printed by %ar
	Subject string
}

// Branch represents a local or remote branch listing entry.
type Branch struct {
	Name    string
	Current bool
	Summary string // "<short hash> <subject>" for locals, empty for remotes
}

// StatusCounts summarizes the working tree for the commit tab.
type StatusCounts struct {
	Staged    int
	Unstaged  int
	Untracked int
}
