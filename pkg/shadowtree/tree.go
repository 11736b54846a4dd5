package shadowtree

import (
	"slices"

	"github.com/go-drift/shadow/pkg/core"
)

// Walk visits root and its descendants depth-first, parents before children.
// Returning false from visit skips the node's children.
func Walk(root core.ShadowNode, visit func(node core.ShadowNode, depth int) bool) {
	walk(root, 0, visit)
}

func walk(node core.ShadowNode, depth int, visit func(core.ShadowNode, int) bool) {
	if node == nil || !visit(node, depth) {
		return
	}
	for _, child := range node.Children() {
		walk(child, depth+1, visit)
	}
}

// Find returns the node tagged tag, or nil.
func Find(root core.ShadowNode, tag core.Tag) core.ShadowNode {
	var found core.ShadowNode
	Walk(root, func(node core.ShadowNode, _ int) bool {
		if found != nil {
			return false
		}
		if node.Tag() == tag {
			found = node
			return false
		}
		return true
	})
	return found
}

// Replace returns a new root in which the node tagged tag is replaced by
// update(node). Every ancestor of that node is cloned; all other subtrees are
// shared with root. The boolean is false when no node has the tag.
func Replace(root core.ShadowNode, tag core.Tag, update func(core.ShadowNode) core.ShadowNode) (core.ShadowNode, bool) {
	if root == nil {
		return nil, false
	}
	if root.Tag() == tag {
		return update(root), true
	}
	children := root.Children()
	for i, child := range children {
		replaced, ok := Replace(child, tag, update)
		if !ok {
			continue
		}
		newChildren := slices.Clone(children)
		newChildren[i] = replaced
		return root.Clone(core.Fragment{Children: newChildren}), true
	}
	return root, false
}

// ProgressState returns a tree in which every node whose state is older than
// its family's committed state carries the committed state. Subtrees without
// obsolete state are shared with root.
func ProgressState(root core.ShadowNode) core.ShadowNode {
	if root == nil {
		return nil
	}

	children := root.Children()
	var newChildren []core.ShadowNode
	for i, child := range children {
		progressed := ProgressState(child)
		if progressed == child {
			continue
		}
		if newChildren == nil {
			newChildren = slices.Clone(children)
		}
		newChildren[i] = progressed
	}

	obsolete := root.IsStateObsolete()
	if newChildren == nil && !obsolete {
		return root
	}

	fragment := core.Fragment{Children: newChildren}
	if obsolete {
		fragment.State = root.FamilyHandle().MostRecentStateHandle()
	}
	return root.Clone(fragment)
}

// sameFamily reports whether two nodes are revisions of the same element.
func sameFamily(a, b core.ShadowNode) bool {
	return a.FamilyHandle() == b.FamilyHandle()
}

// mountDiff collects the nodes a new revision adds and removes, in the order
// they were encountered. Subtrees shared between revisions are skipped.
type mountDiff struct {
	added   []core.ShadowNode
	removed []core.ShadowNode
}

func (d *mountDiff) add(node core.ShadowNode) {
	d.added = append(d.added, node)
	for _, child := range node.Children() {
		d.add(child)
	}
}

func (d *mountDiff) remove(node core.ShadowNode) {
	d.removed = append(d.removed, node)
	for _, child := range node.Children() {
		d.remove(child)
	}
}

func (d *mountDiff) children(oldChildren, newChildren []core.ShadowNode) {
	index := 0
	for ; index < len(oldChildren) && index < len(newChildren); index++ {
		oldChild, newChild := oldChildren[index], newChildren[index]
		if oldChild == newChild {
			continue
		}
		if !sameFamily(oldChild, newChild) {
			break
		}
		d.added = append(d.added, newChild)
		d.removed = append(d.removed, oldChild)
		d.children(oldChild.Children(), newChild.Children())
	}
	for _, newChild := range newChildren[index:] {
		d.add(newChild)
	}
	for _, oldChild := range oldChildren[index:] {
		d.remove(oldChild)
	}
}

// updateMountedFlags unmounts the nodes oldRoot had and newRoot lacks, then
// mounts the nodes newRoot introduced. Mounting commits each node's proposed
// state into its family. A node moved within the tree stays mounted.
func updateMountedFlags(oldRoot, newRoot core.ShadowNode) {
	if oldRoot == newRoot {
		return
	}

	var diff mountDiff
	switch {
	case oldRoot == nil:
		diff.add(newRoot)
	case newRoot == nil:
		diff.remove(oldRoot)
	default:
		diff.added = append(diff.added, newRoot)
		diff.removed = append(diff.removed, oldRoot)
		diff.children(oldRoot.Children(), newRoot.Children())
	}

	kept := make(map[core.ShadowNode]struct{}, len(diff.added))
	for _, node := range diff.added {
		kept[node] = struct{}{}
	}
	for _, node := range diff.removed {
		if _, ok := kept[node]; ok {
			continue
		}
		node.SetMounted(false)
	}
	for _, node := range diff.added {
		if node.Mounted() {
			continue
		}
		node.SetMounted(true)
	}
}
