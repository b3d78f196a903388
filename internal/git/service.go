package git

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/chmouel/gitdeck/internal/models"
)

// Service exposes one typed method per git operation the dashboard needs.
// All parsing is delegated to the pure functions in parse.go so it can be
// tested against captured output without a git binary.
type Service struct {
	runner Runner
	dir    string
}

// NewService constructs a Service running git through runner, in dir when
// non-empty.
func NewService(runner Runner, dir string) *Service {
	return &Service{runner: runner, dir: dir}
}

// RepoRoot returns the absolute path of the repository toplevel. The error
// carries git's own message when the working directory is not inside a
// repository.
func (s *Service) RepoRoot(ctx context.Context) (string, error) {
	return s.runner.Run(ctx, []string{"rev-parse", "--show-toplevel"}, s.dir)
}

// CurrentBranch returns the checked-out branch name, empty when HEAD is
// detached.
func (s *Service) CurrentBranch(ctx context.Context) (string, error) {
	return s.runner.Run(ctx, []string{"branch", "--show-current"}, s.dir)
}

// Status fetches porcelain status and classifies it into staged, unstaged
// and untracked file lists.
func (s *Service) Status(ctx context.Context) (staged, unstaged, untracked []models.FileChange, err error) {
	out, err := s.runner.Run(ctx, []string{"status", "--porcelain"}, s.dir)
	if err != nil {
		return nil, nil, nil, err
	}
	staged, unstaged, untracked = ParseStatus(out)
	return staged, unstaged, untracked, nil
}

// Counts fetches the short status summary, used only for counting.
func (s *Service) Counts(ctx context.Context) (models.StatusCounts, error) {
	out, err := s.runner.Run(ctx, []string{"status", "--short"}, s.dir)
	if err != nil {
		return models.StatusCounts{}, err
	}
	return ParseStatusCounts(out), nil
}

// History fetches the latest n commits, most recent first. Load-more
// semantics are a full re-fetch with a larger n, never an append.
func (s *Service) History(ctx context.Context, n int) ([]models.Commit, error) {
	out, err := s.runner.Run(ctx, []string{
		"log", fmt.Sprintf("-%d", n), "--pretty=format:%h|%an|%ar|%s",
	}, s.dir)
	if err != nil {
		return nil, err
	}
	return ParseLog(out), nil
}

// LocalBranches lists local branches with the current one marked.
func (s *Service) LocalBranches(ctx context.Context) ([]models.Branch, error) {
	out, err := s.runner.Run(ctx, []string{"branch", "-v"}, s.dir)
	if err != nil {
		return nil, err
	}
	return ParseLocalBranches(out), nil
}

// RemoteBranches lists remote branches, excluding symbolic aliases.
func (s *Service) RemoteBranches(ctx context.Context) ([]models.Branch, error) {
	out, err := s.runner.Run(ctx, []string{"branch", "-r"}, s.dir)
	if err != nil {
		return nil, err
	}
	return ParseRemoteBranches(out), nil
}

// StageAll stages every change in the working tree.
func (s *Service) StageAll(ctx context.Context) error {
	_, err := s.runner.Run(ctx, []string{"add", "-A"}, s.dir)
	return err
}

// UnstageAll moves every staged change back to the worktree.
func (s *Service) UnstageAll(ctx context.Context) error {
	_, err := s.runner.Run(ctx, []string{"reset", "HEAD"}, s.dir)
	return err
}

// Commit records the staged changes with the given message.
func (s *Service) Commit(ctx context.Context, message string) error {
	_, err := s.runner.Run(ctx, []string{"commit", "-m", message}, s.dir)
	return err
}

// Amend rewrites the last commit. With an empty message the previous
// message is kept (--no-edit).
func (s *Service) Amend(ctx context.Context, message string) error {
	args := []string{"commit", "--amend", "--no-edit"}
	if message != "" {
		args = []string{"commit", "--amend", "-m", message}
	}
	_, err := s.runner.Run(ctx, args, s.dir)
	return err
}

// UndoLastCommit soft-resets HEAD one commit back, keeping the changes
// staged.
func (s *Service) UndoLastCommit(ctx context.Context) error {
	_, err := s.runner.Run(ctx, []string{"reset", "--soft", "HEAD~1"}, s.dir)
	return err
}

// Pull fetches and integrates from the upstream.
func (s *Service) Pull(ctx context.Context) error {
	_, err := s.runner.Run(ctx, []string{"pull"}, s.dir)
	return err
}

// Push publishes the current branch to its upstream.
func (s *Service) Push(ctx context.Context) error {
	_, err := s.runner.Run(ctx, []string{"push"}, s.dir)
	return err
}

// Checkout switches to an existing branch.
func (s *Service) Checkout(ctx context.Context, name string) error {
	_, err := s.runner.Run(ctx, []string{"checkout", name}, s.dir)
	return err
}

// CreateBranch creates a branch and switches to it.
func (s *Service) CreateBranch(ctx context.Context, name string) error {
	_, err := s.runner.Run(ctx, []string{"checkout", "-b", name}, s.dir)
	return err
}

// GitCommonDir resolves the repository's common git directory, used by the
// auto-refresh watcher. The result is absolute.
func (s *Service) GitCommonDir(ctx context.Context) (string, error) {
	commonDir, err := s.runner.Run(ctx, []string{"rev-parse", "--git-common-dir"}, s.dir)
	if err != nil {
		return "", err
	}
	if commonDir == "" || filepath.IsAbs(commonDir) {
		return commonDir, nil
	}
	root, err := s.RepoRoot(ctx)
	if err == nil && root != "" {
		return filepath.Join(root, commonDir), nil
	}
	return filepath.Abs(commonDir)
}

// CommitDetail returns `show --stat` output for a commit, capped at 500
// characters for display.
func (s *Service) CommitDetail(ctx context.Context, sha string) (string, error) {
	out, err := s.runner.Run(ctx, []string{"show", "--stat", sha}, s.dir)
	if err != nil {
		return "", err
	}
	return TruncateDetail(out), nil
}
