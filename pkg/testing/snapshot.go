package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/shadowtree"
)

// UpdateSnapshotsEnv names the environment variable that switches
// MatchesFile into update mode.
const UpdateSnapshotsEnv = "SHADOW_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the structure, mount flags and state of a shadow tree.
type Snapshot struct {
	Revision uint64               `json:"revision"`
	Tree     *shadowtree.NodeInfo `json:"tree,omitempty"`
}

// CaptureSnapshot captures the current revision of tree.
func CaptureSnapshot(tree *shadowtree.ShadowTree) *Snapshot {
	rev := tree.CurrentRevision()
	return &Snapshot{Revision: rev.Number, Tree: shadowtree.Describe(rev.Root)}
}

// CaptureNode captures the subtree rooted at root, which need not be
// committed.
func CaptureNode(root core.ShadowNode) *Snapshot {
	return &Snapshot{Tree: shadowtree.Describe(root)}
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When SHADOW_UPDATE_SNAPSHOTS=1
// is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateSnapshotsEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateSnapshotsEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	diff, err := s.diffJSON(expected)
	if err != nil {
		t.Fatalf("invalid snapshot %s: %v", path, err)
		return
	}
	if diff != "" {
		t.Errorf("snapshot mismatch: %s (-expected +actual)\n%s\nTo update: %s=1 go test -run %s", path, diff, UpdateSnapshotsEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a diff from other to this snapshot, or the empty string if
// they serialize identically.
func (s *Snapshot) Diff(other *Snapshot) string {
	b, err := marshalSnapshot(other)
	if err != nil {
		return fmt.Sprintf("cannot serialize snapshot: %v", err)
	}
	diff, err := s.diffJSON(b)
	if err != nil {
		return fmt.Sprintf("cannot compare snapshots: %v", err)
	}
	return diff
}

// diffJSON compares the snapshots as generic JSON documents so that typed
// state data and state loaded from disk compare equal.
func (s *Snapshot) diffJSON(expected []byte) (string, error) {
	actual, err := marshalSnapshot(s)
	if err != nil {
		return "", err
	}
	want, err := decodeGeneric(expected)
	if err != nil {
		return "", err
	}
	got, err := decodeGeneric(actual)
	if err != nil {
		return "", err
	}
	return cmp.Diff(want, got), nil
}

func decodeGeneric(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return v, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
