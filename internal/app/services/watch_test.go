package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver struct {
	dir string
	err error
}

func (r staticResolver) GitCommonDir(context.Context) (string, error) {
	return r.dir, r.err
}

func newGitDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), ".git")
	for _, sub := range []string{"refs/heads", "logs"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, sub), 0o750))
	}
	return dir
}

func TestStartOutsideRepositoryIsNotAnError(t *testing.T) {
	w := NewRepoWatcher(staticResolver{err: errors.New("fatal: not a git repository")}, nil)

	ok, err := w.Start(t.Context())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, w.Started)
}

func TestStartWatchesGitDir(t *testing.T) {
	dir := newGitDir(t)
	w := NewRepoWatcher(staticResolver{dir: dir}, nil)
	defer w.Stop()

	ok, err := w.Start(t.Context())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, dir, w.CommonDir)

	// Second Start is a no-op.
	ok, err = w.Start(t.Context())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWatcherSignalsOnRefChange(t *testing.T) {
	dir := newGitDir(t)
	w := NewRepoWatcher(staticResolver{dir: dir}, nil)
	defer w.Stop()

	ok, err := w.Start(t.Context())
	require.NoError(t, err)
	require.True(t, ok)

	ch := w.NextEvent()
	require.NotNil(t, ch)

	ref := filepath.Join(dir, "refs", "heads", "main")
	require.NoError(t, os.WriteFile(ref, []byte("abc123\n"), 0o600))

	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("no event after ref write")
	}
}

func TestNextEventWhileWaitingReturnsNil(t *testing.T) {
	dir := newGitDir(t)
	w := NewRepoWatcher(staticResolver{dir: dir}, nil)
	defer w.Stop()

	_, err := w.Start(t.Context())
	require.NoError(t, err)

	require.NotNil(t, w.NextEvent())
	assert.Nil(t, w.NextEvent())

	w.ResetWaiting()
	assert.NotNil(t, w.NextEvent())
}

func TestShouldRefreshDebounces(t *testing.T) {
	w := NewRepoWatcher(staticResolver{}, nil)
	now := time.Now()

	assert.True(t, w.ShouldRefresh(now))
	assert.False(t, w.ShouldRefresh(now.Add(WatchDebounce/2)))
	assert.True(t, w.ShouldRefresh(now.Add(2*WatchDebounce)))
}

func TestIsUnderRoot(t *testing.T) {
	w := &RepoWatcher{Roots: []string{"/repo/.git/refs", "/repo/.git/logs"}}

	assert.True(t, w.IsUnderRoot("/repo/.git/refs"))
	assert.True(t, w.IsUnderRoot("/repo/.git/refs/heads/main"))
	assert.True(t, w.IsUnderRoot("/repo/.git/logs/HEAD"))
	assert.False(t, w.IsUnderRoot("/repo/.git/refsx"))
	assert.False(t, w.IsUnderRoot("/repo/worktree/file.txt"))
	assert.False(t, w.IsUnderRoot(""))
}
