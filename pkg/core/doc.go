// Package core provides the shadow node, family and state container types and
// the propose/commit protocol that connects them.
//
// A shadow tree is made of immutable [ShadowNode] revisions. Every revision of
// the same logical element shares one [Family], which is the long-lived
// identity of that element and owns its most recently committed [State].
//
// # Proposing and committing state
//
// State is produced locally and promoted later:
//
//	node.SetStateData(ScrollViewState{...}) // local proposal, Family untouched
//	node.SetMounted(true)                   // commits the proposal into the Family
//
// Until the node is mounted, readers of node.Family().MostRecentState() keep
// seeing the previously committed state. Mounting swaps the Family's state
// slot atomically, so concurrent readers observe either the old or the new
// container and never a partially built one.
//
// # Immutability
//
// A node never changes after construction except for the mount transition.
// A proposal on a mounted node panics with an [errors.ProtocolError]; produce
// a new revision with [Node.WithStateData] or [Node.Clone] instead.
//
// # Concurrency
//
// [Family.MostRecentState] is a single atomic load and is safe from any
// goroutine. [Family.Commit] is an atomic exchange, so concurrent commits are
// totally ordered and the last one wins. Node transitions are guarded per node
// and never take a lock shared with readers of the Family.
package core
