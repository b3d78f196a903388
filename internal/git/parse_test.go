package git

import (
	"strings"
	"testing"

	"github.com/chmouel/gitdeck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		staged    []models.FileChange
		unstaged  []models.FileChange
		untracked []models.FileChange
	}{
		{
			name:   "staged modification",
			input:  "M  src/a.py",
			staged: []models.FileChange{{Status: "Modified", Path: "src/a.py"}},
		},
		{
			name:     "worktree modification",
			input:    " M src/a.py",
			unstaged: []models.FileChange{{Status: "Modified", Path: "src/a.py"}},
		},
		{
			name:     "staged and unstaged from one line",
			input:    "MM src/a.py",
			staged:   []models.FileChange{{Status: "Modified", Path: "src/a.py"}},
			unstaged: []models.FileChange{{Status: "Modified", Path: "src/a.py"}},
		},
		{
			name:      "untracked file",
			input:     "?? newfile.txt",
			untracked: []models.FileChange{{Status: "Untracked", Path: "newfile.txt"}},
		},
		{
			name:   "staged addition",
			input:  "A  cmd/main.go",
			staged: []models.FileChange{{Status: "Added", Path: "cmd/main.go"}},
		},
		{
			name:     "staged rename with worktree delete",
			input:    "RD old -> new",
			staged:   []models.FileChange{{Status: "Renamed", Path: "old -> new"}},
			unstaged: []models.FileChange{{Status: "Deleted", Path: "old -> new"}},
		},
		{
			name:   "staged copy",
			input:  "C  copied.txt",
			staged: []models.FileChange{{Status: "Copied", Path: "copied.txt"}},
		},
		{
			name:  "short line skipped",
			input: "M",
		},
		{
			name:  "empty input",
			input: "",
		},
		{
			name: "mixed lines",
			input: strings.Join([]string{
				"M  staged.go",
				" D removed.go",
				"?? fresh.go",
				"",
			}, "\n"),
			staged:    []models.FileChange{{Status: "Modified", Path: "staged.go"}},
			unstaged:  []models.FileChange{{Status: "Deleted", Path: "removed.go"}},
			untracked: []models.FileChange{{Status: "Untracked", Path: "fresh.go"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			staged, unstaged, untracked := ParseStatus(tt.input)
			assert.Equal(t, tt.staged, staged)
			assert.Equal(t, tt.unstaged, unstaged)
			assert.Equal(t, tt.untracked, untracked)
		})
	}
}

func TestParseStatusCounts(t *testing.T) {
	out := strings.Join([]string{
		"M  staged.go",
		"MM both.go",
		" M unstaged.go",
		"?? new.txt",
		"?? other.txt",
	}, "\n")

	counts := ParseStatusCounts(out)
	assert.Equal(t, 2, counts.Staged)
	assert.Equal(t, 2, counts.Unstaged)
	assert.Equal(t, 2, counts.Untracked)
}

func TestParseLog(t *testing.T) {
	out := strings.Join([]string{
		"abc123|Jane|2 days ago|Fix bug: a | b",
		"def456|John|3 days ago|Initial commit",
	}, "\n")

	commits := ParseLog(out)
	require.Len(t, commits, 2)

	assert.Equal(t, "abc123", commits[0].SHA)
	assert.Equal(t, "Jane", commits[0].Author)
	assert.Equal(t, "2 days ago", commits[0].Date)
	// The subject keeps delimiters it legitimately contains.
	assert.Equal(t, "Fix bug: a | b", commits[0].Subject)

	assert.Equal(t, "Initial commit", commits[1].Subject)
}

func TestParseLogMalformedLinesDropped(t *testing.T) {
	out := strings.Join([]string{
		"abc123|Jane|2 days ago|ok",
		"not enough fields",
		"a|b|c",
		"",
	}, "\n")

	commits := ParseLog(out)
	require.Len(t, commits, 1)
	assert.Equal(t, "abc123", commits[0].SHA)
}

func TestTruncateSubject(t *testing.T) {
	long := strings.Repeat("x", 60)
	got := TruncateSubject(long)
	assert.Len(t, got, 53)
	assert.Equal(t, strings.Repeat("x", 50)+"...", got)

	exact := strings.Repeat("y", 50)
	assert.Equal(t, exact, TruncateSubject(exact))

	assert.Equal(t, "short", TruncateSubject("short"))
}

func TestParseLogTruncatesLongSubject(t *testing.T) {
	subject := strings.Repeat("a", 60)
	commits := ParseLog("abc123|Jane|now|" + subject)
	require.Len(t, commits, 1)
	assert.Equal(t, strings.Repeat("a", 50)+"...", commits[0].Subject)
}

func TestParseLocalBranches(t *testing.T) {
	out := strings.Join([]string{
		"* main abc1234 Initial commit",
		"  feature/x def5678 WIP",
	}, "\n")

	branches := ParseLocalBranches(out)
	require.Len(t, branches, 2)

	assert.Equal(t, "main", branches[0].Name)
	assert.True(t, branches[0].Current)
	assert.Equal(t, "abc1234 Initial commit", branches[0].Summary)

	assert.Equal(t, "feature/x", branches[1].Name)
	assert.False(t, branches[1].Current)
	assert.Equal(t, "def5678 WIP", branches[1].Summary)
}

func TestParseLocalBranchesSummaryTruncated(t *testing.T) {
	subject := strings.Repeat("z", 60)
	branches := ParseLocalBranches("* main abc1234 " + subject)
	require.Len(t, branches, 1)
	assert.Len(t, branches[0].Summary, 40)
	assert.Equal(t, ("abc1234 " + subject)[:40], branches[0].Summary)
}

func TestParseLocalBranchesMalformed(t *testing.T) {
	branches := ParseLocalBranches("* lonely")
	assert.Empty(t, branches)

	branches = ParseLocalBranches("")
	assert.Empty(t, branches)
}

func TestParseRemoteBranches(t *testing.T) {
	out := strings.Join([]string{
		"  origin/HEAD -> origin/main",
		"  origin/main",
		"  origin/feature/x",
		"",
	}, "\n")

	branches := ParseRemoteBranches(out)
	require.Len(t, branches, 2)
	assert.Equal(t, "origin/main", branches[0].Name)
	assert.Equal(t, "origin/feature/x", branches[1].Name)
	for _, b := range branches {
		assert.NotContains(t, b.Name, "->")
	}
}

func TestTruncateDetail(t *testing.T) {
	long := strings.Repeat("d", 600)
	got := TruncateDetail(long)
	assert.Equal(t, strings.Repeat("d", 500)+"...", got)

	short := "commit abc123\nAuthor: Jane"
	assert.Equal(t, short, TruncateDetail(short))
}

func TestSplitFieldsN(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c d e"}, splitFieldsN("a  b   c d e", 3))
	assert.Equal(t, []string{"a"}, splitFieldsN("a", 3))
	assert.Empty(t, splitFieldsN("   ", 3))
}
