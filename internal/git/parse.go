package git

import (
	"strings"
	"unicode"

	"github.com/chmouel/gitdeck/internal/models"
)

// Display truncation widths.
const (
	subjectWidth       = 50
	branchSummaryWidth = 40
	detailWidth        = 500
)

var (
	stagedLabels = map[byte]string{
		'M': "Modified",
		'A': "Added",
		'D': "Deleted",
		'R': "Renamed",
		'C': "Copied",
	}
	worktreeLabels = map[byte]string{
		'M': "Modified",
		'D': "Deleted",
	}
)

// ParseStatus classifies porcelain status lines into staged, unstaged and
// untracked file lists. A single line can contribute to both the staged
// and unstaged lists when the index and worktree both carry changes.
// Lines shorter than three characters are skipped.
func ParseStatus(out string) (staged, unstaged, untracked []models.FileChange) {
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 3 {
			continue
		}

		index := line[0]
		worktree := line[1]
		path := line[3:]

		if label, ok := stagedLabels[index]; ok {
			staged = append(staged, models.FileChange{Status: label, Path: path})
		}
		if label, ok := worktreeLabels[worktree]; ok {
			unstaged = append(unstaged, models.FileChange{Status: label, Path: path})
		}
		if index == '?' && worktree == '?' {
			untracked = append(untracked, models.FileChange{Status: "Untracked", Path: path})
		}
	}
	return staged, unstaged, untracked
}

// ParseStatusCounts counts staged, unstaged and untracked entries from
// `status --short` output.
func ParseStatusCounts(out string) models.StatusCounts {
	var counts models.StatusCounts
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		if strings.IndexByte("MADRC", line[0]) >= 0 {
			counts.Staged++
		}
		if len(line) > 1 && strings.IndexByte("MD", line[1]) >= 0 {
			counts.Unstaged++
		}
		if strings.HasPrefix(line, "??") {
			counts.Untracked++
		}
	}
	return counts
}

// ParseLog turns `log --pretty=format:"%h|%an|%ar|%s"` output into commit
// records, most recent first. Each line splits on the first three pipes so
// the subject keeps any pipes it legitimately contains. Lines that do not
// yield four fields are dropped.
func ParseLog(out string) []models.Commit {
	var commits []models.Commit
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 {
			continue
		}
		commits = append(commits, models.Commit{
			SHA:     parts[0],
			Author:  parts[1],
			Date:    parts[2],
			Subject: TruncateSubject(parts[3]),
		})
	}
	return commits
}

// TruncateSubject caps a commit subject at 50 characters, appending an
// ellipsis when it was longer.
func TruncateSubject(subject string) string {
	runes := []rune(subject)
	if len(runes) <= subjectWidth {
		return subject
	}
	return string(runes[:subjectWidth]) + "..."
}

// ParseLocalBranches parses `branch -v` output. The `*` marker denotes the
// checked-out branch. Each line yields the branch name, its short commit
// hash and the commit subject; lines with fewer than two fields are
// skipped as malformed.
func ParseLocalBranches(out string) []models.Branch {
	var branches []models.Branch
	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		current := strings.HasPrefix(line, "*")
		rest := strings.TrimLeft(line, "* ")

		parts := splitFieldsN(rest, 3)
		if len(parts) < 2 {
			continue
		}
		name := parts[0]
		summary := parts[1]
		if len(parts) > 2 {
			summary += " " + parts[2]
		} else {
			summary += " "
		}

		branches = append(branches, models.Branch{
			Name:    name,
			Current: current,
			Summary: truncateRunes(summary, branchSummaryWidth),
		})
	}
	return branches
}

// ParseRemoteBranches parses `branch -r` output, one remote ref per line.
// Lines containing "->" are symbolic aliases (origin/HEAD -> origin/main)
// and are excluded entirely.
func ParseRemoteBranches(out string) []models.Branch {
	var branches []models.Branch
	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.Contains(line, "->") {
			continue
		}
		branches = append(branches, models.Branch{Name: line})
	}
	return branches
}

// TruncateDetail caps commit-detail text at 500 characters for display.
func TruncateDetail(detail string) string {
	runes := []rune(detail)
	if len(runes) <= detailWidth {
		return detail
	}
	return string(runes[:detailWidth]) + "..."
}

// splitFieldsN splits s on runs of whitespace into at most n fields, the
// last field absorbing the remainder verbatim.
func splitFieldsN(s string, n int) []string {
	var parts []string
	s = strings.TrimSpace(s)
	for len(parts) < n-1 {
		i := strings.IndexFunc(s, unicode.IsSpace)
		if i < 0 {
			break
		}
		parts = append(parts, s[:i])
		s = strings.TrimLeftFunc(s[i:], unicode.IsSpace)
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
