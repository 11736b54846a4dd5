// Package shadowtree manages the committed revisions of one surface's shadow
// tree and drives the mount transition of the nodes each revision adds.
package shadowtree

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/errors"
)

// DefaultMaxAttempts bounds the optimistic commit loop.
const DefaultMaxAttempts = 1024

var tracer = otel.Tracer("github.com/go-drift/shadow/pkg/shadowtree")

// CommitStatus is the outcome of a commit.
type CommitStatus int

const (
	// CommitSucceeded means a new revision was published and mounted.
	CommitSucceeded CommitStatus = iota
	// CommitFailed means the revision could not be published.
	CommitFailed
	// CommitCancelled means the transaction returned nil.
	CommitCancelled
)

func (s CommitStatus) String() string {
	switch s {
	case CommitSucceeded:
		return "succeeded"
	case CommitFailed:
		return "failed"
	case CommitCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Revision is one committed version of the tree.
type Revision struct {
	Number    uint64
	Root      core.ShadowNode
	Timestamp time.Time
}

// Transaction produces a new root from the current one. It runs outside the
// commit lock and may be retried, so it must not have side effects beyond
// building nodes. Returning nil cancels the commit.
type Transaction func(root core.ShadowNode) core.ShadowNode

// CommitOptions tunes a single commit.
type CommitOptions struct {
	// ProgressState replaces obsolete node state with the family's committed
	// state before publishing.
	ProgressState bool
}

// Delegate is notified after every successful commit.
type Delegate interface {
	ShadowTreeDidCommit(tree *ShadowTree, revision *Revision)
}

// Options configures a ShadowTree.
type Options struct {
	// MaxAttempts bounds retries of a commit that lost a race. Zero uses
	// DefaultMaxAttempts.
	MaxAttempts int
	// ProgressState is applied to every commit.
	ProgressState bool
	// Delegate receives committed revisions.
	Delegate Delegate
	// Now stamps revisions. Nil uses time.Now.
	Now func() time.Time
}

// ShadowTree holds the current revision of a surface's shadow tree.
//
// Readers load the current revision without locking. Commits run their
// transaction optimistically and publish under a mutex only if no other
// commit got in first; publishing also mounts the nodes the new revision
// introduced, which commits their proposed state into their families.
type ShadowTree struct {
	id        uuid.UUID
	surfaceID core.SurfaceID
	options   Options

	current  atomic.Pointer[Revision]
	commitMu sync.Mutex
}

// New creates an empty tree for surfaceID. The first commit installs a root.
func New(surfaceID core.SurfaceID, options Options) *ShadowTree {
	if options.MaxAttempts <= 0 {
		options.MaxAttempts = DefaultMaxAttempts
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	t := &ShadowTree{
		id:        uuid.New(),
		surfaceID: surfaceID,
		options:   options,
	}
	t.current.Store(&Revision{Timestamp: options.Now()})
	return t
}

// ID returns the tree's unique id.
func (t *ShadowTree) ID() uuid.UUID { return t.id }

// SurfaceID returns the surface the tree belongs to.
func (t *ShadowTree) SurfaceID() core.SurfaceID { return t.surfaceID }

// CurrentRevision returns the most recently published revision.
func (t *ShadowTree) CurrentRevision() *Revision {
	return t.current.Load()
}

// Root returns the root of the current revision, or nil before the first
// commit.
func (t *ShadowTree) Root() core.ShadowNode {
	return t.current.Load().Root
}

// Commit runs transaction against the current root and publishes the result.
// A commit that loses a race with another commit is retried with the new
// root, up to the configured attempt limit.
func (t *ShadowTree) Commit(ctx context.Context, transaction Transaction, opts CommitOptions) (CommitStatus, error) {
	ctx, span := tracer.Start(ctx, "shadowtree.Commit", trace.WithAttributes(
		attribute.String("tree.id", t.id.String()),
		attribute.Int("surface.id", int(t.surfaceID)),
	))
	defer span.End()

	start := time.Now()
	opts.ProgressState = opts.ProgressState || t.options.ProgressState

	for attempt := 1; attempt <= t.options.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return t.fail(span, fmt.Errorf("commit abandoned after %d attempts: %w", attempt-1, err))
		}

		commitAttempts.Inc()
		status, revision := t.tryCommit(transaction, opts)
		switch status {
		case CommitSucceeded:
			treeCommits.WithLabelValues(status.String()).Inc()
			commitDuration.Observe(time.Since(start).Seconds())
			span.SetAttributes(
				attribute.Int64("revision", int64(revision.Number)),
				attribute.Int("attempts", attempt),
			)
			if t.options.Delegate != nil {
				t.options.Delegate.ShadowTreeDidCommit(t, revision)
			}
			return status, nil
		case CommitCancelled:
			treeCommits.WithLabelValues(status.String()).Inc()
			span.SetAttributes(attribute.Bool("cancelled", true))
			return status, nil
		}
	}

	return t.fail(span, fmt.Errorf("gave up after %d attempts", t.options.MaxAttempts))
}

func (t *ShadowTree) fail(span trace.Span, cause error) (CommitStatus, error) {
	treeCommits.WithLabelValues(CommitFailed.String()).Inc()
	err := &errors.ShadowError{
		Op:         "ShadowTree.Commit",
		Kind:       errors.KindCommit,
		Err:        cause,
		StackTrace: errors.CaptureStack(),
	}
	errors.Report(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, cause.Error())
	return CommitFailed, err
}

func (t *ShadowTree) tryCommit(transaction Transaction, opts CommitOptions) (CommitStatus, *Revision) {
	old := t.current.Load()

	newRoot := transaction(old.Root)
	if newRoot == nil {
		return CommitCancelled, nil
	}
	if opts.ProgressState {
		newRoot = ProgressState(newRoot)
	}

	t.commitMu.Lock()
	defer t.commitMu.Unlock()

	if t.current.Load() != old {
		return CommitFailed, nil
	}

	revision := &Revision{
		Number:    old.Number + 1,
		Root:      newRoot,
		Timestamp: t.options.Now(),
	}
	t.current.Store(revision)
	updateMountedFlags(old.Root, newRoot)
	return CommitSucceeded, revision
}

// CommitEmptyTree publishes a revision whose root has no children, unmounting
// everything below the root.
func (t *ShadowTree) CommitEmptyTree(ctx context.Context) (CommitStatus, error) {
	return t.Commit(ctx, func(root core.ShadowNode) core.ShadowNode {
		if root == nil {
			return nil
		}
		return root.Clone(core.Fragment{Children: []core.ShadowNode{}})
	}, CommitOptions{})
}

// UpdateState commits a revision in which the node tagged tag proposes data.
// The commit is cancelled when no such node exists, and the node must have
// state data of type T.
func UpdateState[T any](ctx context.Context, tree *ShadowTree, tag core.Tag, data T) (CommitStatus, error) {
	return tree.Commit(ctx, func(root core.ShadowNode) core.ShadowNode {
		newRoot, ok := Replace(root, tag, func(node core.ShadowNode) core.ShadowNode {
			typed, ok := node.(*core.Node[T])
			if !ok {
				errors.Violation(&errors.ProtocolError{
					Op:        "shadowtree.UpdateState",
					Tag:       int32(tag),
					Component: node.ComponentName(),
					Reason:    fmt.Sprintf("node %T does not carry %T state", node, data),
				})
			}
			return typed.WithStateData(data)
		})
		if !ok {
			return nil
		}
		return newRoot
	}, CommitOptions{})
}
