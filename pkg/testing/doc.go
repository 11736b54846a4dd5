// Package testing provides helpers for testing code built on shadow trees.
//
// # Finding Nodes
//
// Locate nodes in a committed tree:
//
//	scroll := shadowtest.Find(tree.Root(), shadowtest.ByComponent("ScrollView")).First()
//	node := shadowtest.NodeOf[components.ScrollViewState](
//	    shadowtest.Find(tree.Root(), shadowtest.ByTag(10)))
//
// # Snapshot Testing
//
// Capture and compare tree snapshots:
//
//	snapshot := shadowtest.CaptureSnapshot(tree)
//	snapshot.MatchesFile(t, "testdata/scroll.snapshot.json")
//
// Update snapshots with:
//
//	SHADOW_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Deterministic Revisions
//
// Stamp revisions with a controllable clock:
//
//	clock := shadowtest.NewFakeClock()
//	tree := shadowtree.New(1, shadowtree.Options{Now: clock.Now})
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import shadowtest "github.com/go-drift/shadow/pkg/testing"
package testing
