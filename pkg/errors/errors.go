// Package errors provides structured error handling for the shadow tree.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindProtocol indicates misuse of the propose/commit/mount protocol.
	KindProtocol
	// KindCommit indicates a tree commit that could not be applied.
	KindCommit
	// KindConfig indicates a configuration error.
	KindConfig
	// KindBuild indicates a failure while building a tree from a description.
	KindBuild
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindProtocol:
		return "protocol"
	case KindCommit:
		return "commit"
	case KindConfig:
		return "config"
	case KindBuild:
		return "build"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// ShadowError represents a structured error raised by the shadow tree.
type ShadowError struct {
	// Op is the operation that failed (e.g., "shadowtree.Commit").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Tag is the node tag involved, if any.
	Tag int32
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ShadowError) Error() string {
	if e.Tag != 0 {
		return fmt.Sprintf("%s [%s] tag=%d: %v", e.Op, e.Kind, e.Tag, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *ShadowError) Unwrap() error {
	return e.Err
}

// ProtocolError describes a violated immutability or mount invariant.
// It is raised with panic: the caller has a defect and the tree must not
// continue in an inconsistent state.
type ProtocolError struct {
	// Op is the offending operation (e.g., "Node.SetStateData").
	Op string
	// Tag is the tag of the node the operation was applied to.
	Tag int32
	// Component is the component name of that node.
	Component string
	// Reason says which invariant was violated.
	Reason string
}

func (e *ProtocolError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("protocol violation in %s on %s#%d: %s", e.Op, e.Component, e.Tag, e.Reason)
	}
	return fmt.Sprintf("protocol violation in %s: %s", e.Op, e.Reason)
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "inspector.handleTree").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the shadow tree.
type ErrorHandler interface {
	// HandleError is called when an operation fails.
	HandleError(err *ShadowError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleProtocolError is called right before a protocol violation panics.
	HandleProtocolError(err *ProtocolError)
}
