package git

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func initTestRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)

	dir := t.TempDir()
	runner := &ExecRunner{}
	for _, args := range [][]string{
		{"init"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "Test User"},
	} {
		_, err := runner.Run(t.Context(), args, dir)
		require.NoError(t, err)
	}
	return dir
}

func TestExecRunnerSuccessTrimsOutput(t *testing.T) {
	dir := initTestRepo(t)
	runner := &ExecRunner{}

	out, err := runner.Run(t.Context(), []string{"rev-parse", "--show-toplevel"}, dir)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.NotContains(t, out, "\n")
}

func TestExecRunnerNonzeroExitReturnsStderr(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	runner := &ExecRunner{}

	// A plain directory is not a repository; rev-parse fails on stderr.
	_, err := runner.Run(t.Context(), []string{"rev-parse", "--show-toplevel"}, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a git repository")
}

func TestExecRunnerMissingBinarySharesFailureChannel(t *testing.T) {
	runner := &ExecRunner{GitPath: "gitdeck-no-such-binary"}

	_, err := runner.Run(t.Context(), []string{"status"}, "")
	// Launch failures surface as plain errors, indistinguishable in kind
	// from a nonzero exit.
	require.Error(t, err)
	assert.NotEmpty(t, err.Error())
}

func TestExecRunnerStatusInRepo(t *testing.T) {
	dir := initTestRepo(t)
	runner := &ExecRunner{}

	require.NoError(t, os.WriteFile(dir+"/newfile.txt", []byte("hello\n"), 0o600))

	out, err := runner.Run(t.Context(), []string{"status", "--porcelain"}, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "?? newfile.txt")

	_, _, untracked := ParseStatus(out)
	require.Len(t, untracked, 1)
	assert.Equal(t, "newfile.txt", untracked[0].Path)
}
