package core

// State is an immutable container for application-defined state data.
//
// Containers are compared by identity: two containers built from equal data
// are still distinct, which is how the tree tells whether a node's state has
// been committed to its family.
type State[T any] struct {
	data     T
	revision uint64
}

// NewState creates a container at revision 0.
func NewState[T any](data T) *State[T] {
	return &State[T]{data: data}
}

// Next creates a container holding data whose revision follows s.
// A nil receiver behaves like NewState.
func (s *State[T]) Next(data T) *State[T] {
	if s == nil {
		return NewState(data)
	}
	return &State[T]{data: data, revision: s.revision + 1}
}

// Data returns the stored state data.
func (s *State[T]) Data() T {
	return s.data
}

// Revision returns the monotonic revision of the container.
func (s *State[T]) Revision() uint64 {
	return s.revision
}

// DataAny returns the state data as an untyped value.
func (s *State[T]) DataAny() any {
	return s.data
}

// StateHandle is the type-erased view of a State used by tree-level code.
type StateHandle interface {
	Revision() uint64
	DataAny() any
}

// NoState is the state data of components that carry no state.
type NoState struct{}
