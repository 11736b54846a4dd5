// Package required provides a wrapper for struct fields that must be
// supplied when a value is constructed.
//
// A Required field can only be populated through [Of]. The zero value is
// "unset"; reading it panics. Payload packages pair Required fields with
// positional constructors so that omitting a value is a compile error, and
// the repository lint configuration runs exhaustruct over state payload
// types so composite literals that skip a field are rejected before merge:
//
//	type ScrollViewState struct {
//	    ContentOffset       required.Required[graphics.Point]
//	    ContentBoundingRect required.Required[graphics.Rect]
//	}
//
//	state := ScrollViewState{
//	    ContentOffset:       required.Of(graphics.Point{X: 10, Y: 11}),
//	    ContentBoundingRect: required.Of(rect),
//	}
package required

import (
	"encoding/json"

	"github.com/go-drift/shadow/pkg/errors"
)

// Required holds a value that must be explicitly supplied.
type Required[T any] struct {
	value T
	set   bool
}

// Of wraps v as a supplied value.
func Of[T any](v T) Required[T] {
	return Required[T]{value: v, set: true}
}

// Get returns the wrapped value. Reading a field that was never supplied is
// a programming error and panics.
func (r Required[T]) Get() T {
	if !r.set {
		errors.Violation(&errors.ProtocolError{
			Op:     "required.Get",
			Reason: "required field was never initialized",
		})
	}
	return r.value
}

// IsSet reports whether a value was supplied.
func (r Required[T]) IsSet() bool {
	return r.set
}

// MarshalJSON encodes the wrapped value, or null when unset.
func (r Required[T]) MarshalJSON() ([]byte, error) {
	if !r.set {
		return []byte("null"), nil
	}
	return json.Marshal(r.value)
}
