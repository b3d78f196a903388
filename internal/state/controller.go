package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chmouel/gitdeck/internal/git"
	log "github.com/chmouel/gitdeck/internal/log"
)

// RefreshPolicy decides what happens to a refresh request that arrives
// while one is already in flight for the same slice.
type RefreshPolicy string

const (
	// PolicyDrop rejects the overlapping request as superseded.
	PolicyDrop RefreshPolicy = "drop"
	// PolicyQueue coalesces overlapping requests into one re-run after
	// the in-flight refresh completes.
	PolicyQueue RefreshPolicy = "queue"
)

// Sentinel errors surfaced by the controller.
var (
	ErrNotARepository = errors.New("not a git repository")
	ErrSuperseded     = errors.New("refresh already in flight")
)

// refreshSlice identifies the independently refreshable parts of the
// aggregate.
type refreshSlice int

const (
	sliceStatus refreshSlice = iota
	sliceHistory
	sliceBranches
)

// OutcomeKind classifies a mutation result. Partial covers compound
// operations where the first phase succeeded and a later one failed.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeFailed
	OutcomePartial
)

// Outcome reports a mutation to the user. Message carries the tool's raw
// error text on failure; no classification of git's messages is attempted.
type Outcome struct {
	Kind    OutcomeKind
	Message string
}

// Controller coordinates refreshes and mutations against the Store. All
// operations follow the same two-phase shape: dispatch the git commands,
// then on success reconcile the affected slices from freshly fetched data.
// A failure leaves the Store at its last good snapshot.
type Controller struct {
	git      *git.Service
	store    *Store
	policy   RefreshPolicy
	timeout  time.Duration
	pageSize int

	mu       sync.Mutex
	inflight map[refreshSlice]bool
	queued   map[refreshSlice]bool

	// opMu serializes mutations; refreshes only contend per slice.
	opMu sync.Mutex

	subMu sync.Mutex
	subs  []chan Snapshot
}

// NewController wires a controller to a git service and store. pageSize is
// the history page used by initial loads and load-more increments. timeout
// bounds each refresh or mutation, zero meaning none.
func NewController(gitSvc *git.Service, store *Store, policy RefreshPolicy, pageSize int, timeout time.Duration) *Controller {
	if policy != PolicyQueue {
		policy = PolicyDrop
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Controller{
		git:      gitSvc,
		store:    store,
		policy:   policy,
		timeout:  timeout,
		pageSize: pageSize,
		inflight: make(map[refreshSlice]bool),
		queued:   make(map[refreshSlice]bool),
	}
}

// Store returns the store the controller writes to.
func (c *Controller) Store() *Store {
	return c.store
}

// PageSize returns the configured history page size.
func (c *Controller) PageSize() int {
	return c.pageSize
}

// Subscribe returns a channel receiving a snapshot after every store
// write. Slow subscribers miss intermediate snapshots rather than block
// the controller.
func (c *Controller) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	c.subMu.Lock()
	c.subs = append(c.subs, ch)
	c.subMu.Unlock()
	return ch
}

func (c *Controller) publish() {
	snap := c.store.Snapshot()
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so the latest one can go in.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// begin claims a slice for refresh. It returns false with ErrSuperseded
// under the drop policy, or false with nil error when the request was
// coalesced into the in-flight refresh under the queue policy.
func (c *Controller) begin(s refreshSlice) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[s] {
		if c.policy == PolicyQueue {
			c.queued[s] = true
			return false, nil
		}
		return false, ErrSuperseded
	}
	c.inflight[s] = true
	return true, nil
}

// end releases a slice and reports whether a queued request should re-run.
func (c *Controller) end(s refreshSlice) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.queued[s] {
		c.queued[s] = false
		return true
	}
	c.inflight[s] = false
	return false
}

func (c *Controller) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

// RefreshStatus re-derives the repository root and rebuilds the status
// slice (branch, file lists, counts). When the root lookup fails the
// snapshot is marked not-a-repository; any other failure leaves the
// snapshot untouched.
func (c *Controller) RefreshStatus(ctx context.Context) error {
	ok, err := c.begin(sliceStatus)
	if !ok {
		return err
	}
	for {
		err = c.refreshStatus(ctx)
		if !c.end(sliceStatus) {
			return err
		}
	}
}

func (c *Controller) refreshStatus(ctx context.Context) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	root, err := c.git.RepoRoot(ctx)
	if err != nil {
		c.store.setNotARepo()
		c.publish()
		return fmt.Errorf("%w: %s", ErrNotARepository, err)
	}

	branch, err := c.git.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	staged, unstaged, untracked, err := c.git.Status(ctx)
	if err != nil {
		return err
	}
	counts, err := c.git.Counts(ctx)
	if err != nil {
		return err
	}

	c.store.setStatus(root, branch, staged, unstaged, untracked, counts)
	c.publish()
	return nil
}

// RefreshHistory re-fetches the commit sequence with the requested count,
// replacing it wholesale. Count <= 0 re-fetches the current count, or one
// page when nothing is loaded yet.
func (c *Controller) RefreshHistory(ctx context.Context, count int) error {
	ok, err := c.begin(sliceHistory)
	if !ok {
		return err
	}
	for {
		err = c.refreshHistory(ctx, count)
		if !c.end(sliceHistory) {
			return err
		}
	}
}

func (c *Controller) refreshHistory(ctx context.Context, count int) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	if count <= 0 {
		count = c.store.Snapshot().HistoryCount
		if count <= 0 {
			count = c.pageSize
		}
	}
	commits, err := c.git.History(ctx, count)
	if err != nil {
		return err
	}
	c.store.setHistory(commits, count)
	c.publish()
	return nil
}

// LoadMoreHistory grows the commit sequence by one page. The whole
// sequence is re-fetched from scratch; there is no pagination cursor, so a
// commit landing between two fetches may shift which commits appear.
func (c *Controller) LoadMoreHistory(ctx context.Context) error {
	count := c.store.Snapshot().HistoryCount + c.pageSize
	return c.RefreshHistory(ctx, count)
}

// RefreshBranches rebuilds the local and remote branch collections.
func (c *Controller) RefreshBranches(ctx context.Context) error {
	ok, err := c.begin(sliceBranches)
	if !ok {
		return err
	}
	for {
		err = c.refreshBranches(ctx)
		if !c.end(sliceBranches) {
			return err
		}
	}
}

func (c *Controller) refreshBranches(ctx context.Context) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	locals, err := c.git.LocalBranches(ctx)
	if err != nil {
		return err
	}
	remotes, err := c.git.RemoteBranches(ctx)
	if err != nil {
		return err
	}
	c.store.setBranches(locals, remotes)
	c.publish()
	return nil
}

// RefreshAll rebuilds every slice. Per-slice errors are collected so one
// failing slice does not block the others; superseded slices are not an
// error here.
func (c *Controller) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, fn := range []func(context.Context) error{
		c.RefreshStatus,
		func(ctx context.Context) error { return c.RefreshHistory(ctx, 0) },
		c.RefreshBranches,
	} {
		if err := fn(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StageAll stages every change, then reconciles the status slice.
func (c *Controller) StageAll(ctx context.Context) Outcome {
	return c.mutateStatus(ctx, "staged all changes", c.git.StageAll)
}

// UnstageAll unstages everything, then reconciles the status slice.
func (c *Controller) UnstageAll(ctx context.Context) Outcome {
	return c.mutateStatus(ctx, "unstaged all changes", c.git.UnstageAll)
}

// Commit records the staged changes, then reconciles the status slice.
func (c *Controller) Commit(ctx context.Context, message string) Outcome {
	return c.mutateStatus(ctx, "committed: "+message, func(ctx context.Context) error {
		return c.git.Commit(ctx, message)
	})
}

// Amend rewrites the last commit, then reconciles the status slice.
func (c *Controller) Amend(ctx context.Context, message string) Outcome {
	return c.mutateStatus(ctx, "amended last commit", func(ctx context.Context) error {
		return c.git.Amend(ctx, message)
	})
}

// UndoLastCommit soft-resets one commit back, then reconciles the status
// slice.
func (c *Controller) UndoLastCommit(ctx context.Context) Outcome {
	return c.mutateStatus(ctx, "undid last commit", c.git.UndoLastCommit)
}

// CommitAndPush commits and then pushes. A commit failure aborts before
// the push and reports as a plain failure. A push failure after a
// successful commit reports the distinct partial outcome, with the
// commit's effect already reconciled into the snapshot.
func (c *Controller) CommitAndPush(ctx context.Context, message string) Outcome {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	opCtx, cancel := c.opCtx(ctx)
	defer cancel()

	if err := c.git.Commit(opCtx, message); err != nil {
		return Outcome{Kind: OutcomeFailed, Message: "commit failed: " + err.Error()}
	}
	if err := c.git.Push(opCtx); err != nil {
		c.reconcile(ctx, c.RefreshStatus)
		return Outcome{Kind: OutcomePartial, Message: "committed, not pushed: " + err.Error()}
	}
	c.reconcile(ctx, c.RefreshStatus)
	return Outcome{Kind: OutcomeOK, Message: "committed and pushed"}
}

// Pull integrates from the upstream, then reconciles branches and status.
func (c *Controller) Pull(ctx context.Context) Outcome {
	return c.mutateBranches(ctx, "pulled from remote", c.git.Pull)
}

// Push publishes the current branch, then reconciles branches.
func (c *Controller) Push(ctx context.Context) Outcome {
	return c.mutateBranches(ctx, "pushed to remote", c.git.Push)
}

// CreateBranch creates and switches to a branch, then re-fetches the
// branch collections.
func (c *Controller) CreateBranch(ctx context.Context, name string) Outcome {
	return c.mutateBranches(ctx, "created branch "+name, func(ctx context.Context) error {
		return c.git.CreateBranch(ctx, name)
	})
}

// SwitchBranch checks out an existing branch. The branch collections are
// fully re-fetched rather than flipping the current marker locally, so the
// fresh branch's commit summary is accurate.
func (c *Controller) SwitchBranch(ctx context.Context, name string) Outcome {
	return c.mutateBranches(ctx, "switched to "+name, func(ctx context.Context) error {
		return c.git.Checkout(ctx, name)
	})
}

// CommitDetail fetches display text for one commit. Read-only, no
// reconciliation.
func (c *Controller) CommitDetail(ctx context.Context, sha string) (string, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	return c.git.CommitDetail(ctx, sha)
}

// mutateStatus runs a mutation and reconciles the status slice on success.
func (c *Controller) mutateStatus(ctx context.Context, okMessage string, op func(context.Context) error) Outcome {
	return c.mutate(ctx, okMessage, op, c.RefreshStatus)
}

// mutateBranches runs a mutation and reconciles branches and status on
// success. Branch switches and pulls change the working tree too.
func (c *Controller) mutateBranches(ctx context.Context, okMessage string, op func(context.Context) error) Outcome {
	return c.mutate(ctx, okMessage, op, func(ctx context.Context) error {
		berr := c.RefreshBranches(ctx)
		serr := c.RefreshStatus(ctx)
		return errors.Join(berr, serr)
	})
}

func (c *Controller) mutate(ctx context.Context, okMessage string, op, reconcile func(context.Context) error) Outcome {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	opCtx, cancel := c.opCtx(ctx)
	err := op(opCtx)
	cancel()
	if err != nil {
		return Outcome{Kind: OutcomeFailed, Message: err.Error()}
	}

	c.reconcile(ctx, reconcile)
	return Outcome{Kind: OutcomeOK, Message: okMessage}
}

// reconcile refreshes after a successful mutation. The mutation itself
// already succeeded, so a reconcile failure is logged and the snapshot
// stays at its last good state.
func (c *Controller) reconcile(ctx context.Context, refresh func(context.Context) error) {
	if err := refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		log.Printf("reconcile after mutation failed: %v", err)
	}
}
