package core

import (
	"fmt"
	"sync/atomic"

	"github.com/go-drift/shadow/pkg/errors"
)

// Tag identifies a logical element within a surface.
type Tag int32

// SurfaceID identifies the surface a tree is rendered into.
type SurfaceID int32

// FamilyIdentity is the stable identity shared by every revision of an element.
type FamilyIdentity struct {
	Tag           Tag
	SurfaceID     SurfaceID
	ComponentName string
}

func (id FamilyIdentity) String() string {
	return fmt.Sprintf("%s#%d", id.ComponentName, id.Tag)
}

// FamilyHandle is the type-erased view of a Family.
type FamilyHandle interface {
	Identity() FamilyIdentity
	Tag() Tag
	SurfaceID() SurfaceID
	ComponentName() string
	MostRecentStateHandle() StateHandle
	CommitCount() uint64
}

// Family is the long-lived identity of a logical element. It outlives every
// node revision that references it and owns the element's most recently
// committed state.
//
// The committed state lives in a single atomic slot. Reads never block and
// commits are atomic exchanges, so every reader sees a whole container.
type Family[T any] struct {
	identity   FamilyIdentity
	initial    *State[T]
	mostRecent atomic.Pointer[State[T]]
	commits    atomic.Uint64
}

// NewFamily creates a family whose committed state starts as a revision-0
// container holding initial.
func NewFamily[T any](identity FamilyIdentity, initial T) *Family[T] {
	f := &Family[T]{
		identity: identity,
		initial:  NewState(initial),
	}
	f.mostRecent.Store(f.initial)
	return f
}

// Identity returns the family's stable identity.
func (f *Family[T]) Identity() FamilyIdentity { return f.identity }

// Tag returns the element tag.
func (f *Family[T]) Tag() Tag { return f.identity.Tag }

// SurfaceID returns the surface the element belongs to.
func (f *Family[T]) SurfaceID() SurfaceID { return f.identity.SurfaceID }

// ComponentName returns the component name of the element.
func (f *Family[T]) ComponentName() string { return f.identity.ComponentName }

// InitialState returns the container the family was seeded with.
func (f *Family[T]) InitialState() *State[T] {
	return f.initial
}

// MostRecentState returns the most recently committed state, or the initial
// state if nothing has been committed. Safe to call from any goroutine.
func (f *Family[T]) MostRecentState() *State[T] {
	return f.mostRecent.Load()
}

// MostRecentStateHandle is MostRecentState behind the StateHandle interface.
func (f *Family[T]) MostRecentStateHandle() StateHandle {
	return f.mostRecent.Load()
}

// MostRecentStateIfObsolete returns the committed state when it is newer than
// s, and nil when s is up to date.
func (f *Family[T]) MostRecentStateIfObsolete(s *State[T]) *State[T] {
	current := f.mostRecent.Load()
	if s == nil || s.revision < current.revision {
		return current
	}
	return nil
}

// Commit makes s the family's most recent state and returns the state it
// replaced. Concurrent commits are totally ordered; the last one wins.
func (f *Family[T]) Commit(s *State[T]) (previous *State[T]) {
	if s == nil {
		errors.Violation(&errors.ProtocolError{
			Op:        "Family.Commit",
			Tag:       int32(f.identity.Tag),
			Component: f.identity.ComponentName,
			Reason:    "cannot commit a nil state",
		})
	}
	previous = f.mostRecent.Swap(s)
	f.commits.Add(1)
	familyCommits.Inc()
	return previous
}

// CommitCount returns how many commits the family has accepted.
func (f *Family[T]) CommitCount() uint64 {
	return f.commits.Load()
}
