package git

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRunner captures invocations and replays canned responses keyed
// by the joined argument list.
type recordingRunner struct {
	calls []string
	cwds  []string
	outs  map[string]string
	errs  map[string]string
}

func newRecordingRunner() *recordingRunner {
	return &recordingRunner{
		outs: map[string]string{},
		errs: map[string]string{},
	}
}

func (r *recordingRunner) Run(_ context.Context, args []string, cwd string) (string, error) {
	key := strings.Join(args, " ")
	r.calls = append(r.calls, key)
	r.cwds = append(r.cwds, cwd)
	if msg, ok := r.errs[key]; ok {
		return "", errors.New(msg)
	}
	return r.outs[key], nil
}

func TestServiceInvocationShapes(t *testing.T) {
	tests := []struct {
		name string
		call func(s *Service) error
		want string
	}{
		{"stage all", func(s *Service) error { return s.StageAll(t.Context()) }, "add -A"},
		{"unstage all", func(s *Service) error { return s.UnstageAll(t.Context()) }, "reset HEAD"},
		{"commit", func(s *Service) error { return s.Commit(t.Context(), "msg") }, "commit -m msg"},
		{"amend with message", func(s *Service) error { return s.Amend(t.Context(), "new msg") }, "commit --amend -m new msg"},
		{"amend keeps message", func(s *Service) error { return s.Amend(t.Context(), "") }, "commit --amend --no-edit"},
		{"undo last commit", func(s *Service) error { return s.UndoLastCommit(t.Context()) }, "reset --soft HEAD~1"},
		{"pull", func(s *Service) error { return s.Pull(t.Context()) }, "pull"},
		{"push", func(s *Service) error { return s.Push(t.Context()) }, "push"},
		{"checkout", func(s *Service) error { return s.Checkout(t.Context(), "dev") }, "checkout dev"},
		{"create branch", func(s *Service) error { return s.CreateBranch(t.Context(), "dev") }, "checkout -b dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newRecordingRunner()
			svc := NewService(runner, "/repo")

			require.NoError(t, tt.call(svc))
			require.Len(t, runner.calls, 1)
			assert.Equal(t, tt.want, runner.calls[0])
			assert.Equal(t, "/repo", runner.cwds[0])
		})
	}
}

func TestServiceHistoryRequestsCount(t *testing.T) {
	runner := newRecordingRunner()
	runner.outs["log -40 --pretty=format:%h|%an|%ar|%s"] = "abc|Jane|now|hi"
	svc := NewService(runner, "")

	commits, err := svc.History(t.Context(), 40)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "abc", commits[0].SHA)
}

func TestServiceCommitDetailTruncated(t *testing.T) {
	runner := newRecordingRunner()
	runner.outs["show --stat abc123"] = strings.Repeat("x", 600)
	svc := NewService(runner, "")

	detail, err := svc.CommitDetail(t.Context(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 500)+"...", detail)
}

func TestServiceErrorsPassThrough(t *testing.T) {
	runner := newRecordingRunner()
	runner.errs["status --porcelain"] = "fatal: not a git repository"
	svc := NewService(runner, "")

	_, _, _, err := svc.Status(t.Context())
	require.Error(t, err)
	assert.Equal(t, "fatal: not a git repository", err.Error())
}

func TestServiceGitCommonDir(t *testing.T) {
	t.Run("absolute path returned as is", func(t *testing.T) {
		runner := newRecordingRunner()
		runner.outs["rev-parse --git-common-dir"] = "/repo/.git"
		svc := NewService(runner, "")

		dir, err := svc.GitCommonDir(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "/repo/.git", dir)
	})

	t.Run("relative path anchored at repo root", func(t *testing.T) {
		runner := newRecordingRunner()
		runner.outs["rev-parse --git-common-dir"] = ".git"
		runner.outs["rev-parse --show-toplevel"] = "/repo"
		svc := NewService(runner, "")

		dir, err := svc.GitCommonDir(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "/repo/.git", dir)
	})
}
