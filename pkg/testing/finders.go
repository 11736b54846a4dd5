package testing

import (
	"fmt"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/shadowtree"
)

// Finder locates nodes in a shadow tree.
type Finder interface {
	// Evaluate returns all matching nodes under root (depth-first pre-order).
	Evaluate(root core.ShadowNode) []core.ShadowNode
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	nodes  []core.ShadowNode
	finder Finder
}

// Find evaluates finder against root.
func Find(root core.ShadowNode, finder Finder) FinderResult {
	return FinderResult{nodes: finder.Evaluate(root), finder: finder}
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() core.ShadowNode {
	if len(r.nodes) == 0 {
		panic(fmt.Sprintf("Finder found no nodes: %s", r.description()))
	}
	return r.nodes[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() core.ShadowNode {
	if len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) core.ShadowNode {
	if index < 0 || index >= len(r.nodes) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.nodes), r.description()))
	}
	return r.nodes[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []core.ShadowNode {
	return r.nodes
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.nodes)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.nodes) > 0
}

func (r FinderResult) description() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// NodeOf returns the first match as a node with state data T. Panics if
// there is no match or the node carries other state.
func NodeOf[T any](r FinderResult) *core.Node[T] {
	first := r.First()
	node, ok := first.(*core.Node[T])
	if !ok {
		panic(fmt.Sprintf("%s matched %T, not %T", r.description(), first, node))
	}
	return node
}

// --- Concrete finders ---

// predicateFinder matches nodes satisfying a predicate.
type predicateFinder struct {
	fn   func(core.ShadowNode) bool
	desc string
}

func (f *predicateFinder) Evaluate(root core.ShadowNode) []core.ShadowNode {
	return collectMatches(root, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByComponent returns a finder that matches nodes of the named component.
func ByComponent(name string) Finder {
	return &predicateFinder{
		fn:   func(n core.ShadowNode) bool { return n.ComponentName() == name },
		desc: fmt.Sprintf("ByComponent(%q)", name),
	}
}

// ByTag returns a finder that matches the node with the given tag.
func ByTag(tag core.Tag) Finder {
	return &predicateFinder{
		fn:   func(n core.ShadowNode) bool { return n.Tag() == tag },
		desc: fmt.Sprintf("ByTag(%d)", tag),
	}
}

// ByPhase returns a finder that matches nodes in the given phase.
func ByPhase(phase core.NodePhase) Finder {
	return &predicateFinder{
		fn:   func(n core.ShadowNode) bool { return n.Phase() == phase },
		desc: fmt.Sprintf("ByPhase(%s)", phase),
	}
}

// ObsoleteState returns a finder that matches nodes whose family holds a
// newer state than they do.
func ObsoleteState() Finder {
	return &predicateFinder{
		fn:   core.ShadowNode.IsStateObsolete,
		desc: "ObsoleteState()",
	}
}

// ByPredicate returns a finder that matches nodes satisfying fn.
func ByPredicate(fn func(core.ShadowNode) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// descendantFinder finds nodes matching 'matching' that are descendants
// of nodes matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(root core.ShadowNode) []core.ShadowNode {
	var results []core.ShadowNode
	seen := make(map[core.ShadowNode]bool)
	for _, ancestor := range f.of.Evaluate(root) {
		for _, child := range ancestor.Children() {
			for _, match := range f.matching.Evaluate(child) {
				if !seen[match] {
					seen[match] = true
					results = append(results, match)
				}
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches nodes satisfying 'matching'
// that are descendants of nodes matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

// collectMatches performs depth-first pre-order traversal, collecting
// nodes that satisfy the predicate.
func collectMatches(root core.ShadowNode, predicate func(core.ShadowNode) bool) []core.ShadowNode {
	var results []core.ShadowNode
	shadowtree.Walk(root, func(n core.ShadowNode, _ int) bool {
		if predicate(n) {
			results = append(results, n)
		}
		return true
	})
	return results
}
