package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/go-drift/shadow/cmd/shadowtree/internal/config"
	"github.com/go-drift/shadow/pkg/components"
	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/element"
	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/shadowtree"
	shadowtest "github.com/go-drift/shadow/pkg/testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { errors.SetHandler(nil) })

	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--dir", t.TempDir(), "--no-color"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTree(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tree.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, Version) || !strings.Contains(out, config.ProtocolVersion) {
		t.Errorf("output = %q", out)
	}
}

func TestBuild_Demo(t *testing.T) {
	out, err := run(t, "build")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, want := range []string{"RootView#1 [mounted]", "├── View#2 [mounted]", "└── ScrollView#10 [mounted] state r0", "    └── View#12"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDemoTree_Snapshot(t *testing.T) {
	root, err := buildTree(1, demoElement())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	tree := shadowtree.New(1, shadowtree.Options{})
	if _, err := tree.Commit(context.Background(), func(core.ShadowNode) core.ShadowNode { return root }, shadowtree.CommitOptions{}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	header := shadowtest.Find(tree.Root(), shadowtest.ByTag(2)).First()

	offset := graphics.Point{X: 0, Y: 120}
	if _, err := shadowtree.UpdateState(context.Background(), tree, demoScrollTag,
		components.NewScrollViewState(offset, graphics.RectFromXYWH(0, 0, 320, 2000))); err != nil {
		t.Fatalf("UpdateState: %v", err)
	}

	scroll := shadowtest.NodeOf[components.ScrollViewState](shadowtest.Find(tree.Root(), shadowtest.ByTag(demoScrollTag)))
	if got := scroll.StateData().ContentOffset.Get(); got != offset {
		t.Errorf("offset = %+v, want %+v", got, offset)
	}
	if shadowtest.Find(tree.Root(), shadowtest.ByTag(2)).First() != header {
		t.Error("header should be shared across the update")
	}
	if n := shadowtest.Find(tree.Root(), shadowtest.ByPhase(core.PhaseMounted)).Count(); n != 5 {
		t.Errorf("mounted nodes = %d, want 5", n)
	}

	shadowtest.CaptureSnapshot(tree).MatchesFile(t, filepath.Join("testdata", "demo.snapshot.json"))
}

func TestBuild_File(t *testing.T) {
	path := writeTree(t, `
component: RootView
tag: 1
children:
  - component: ScrollView
    tag: 5
    state:
      contentOffset: {x: 0, y: 30}
      contentBoundingRect: {origin: {x: 0, y: 0}, size: {width: 100, height: 900}}
  - component: Carousel
    tag: 6
`)

	out, err := run(t, "build", "--json", path)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var info shadowtree.NodeInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(info.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(info.Children))
	}
	if !info.Children[0].Mounted || info.Children[0].State == nil {
		t.Errorf("scroll view = %+v, want mounted with state", info.Children[0])
	}
	if info.Children[1].Component != "UnimplementedView" {
		t.Errorf("unknown component built as %q, want UnimplementedView", info.Children[1].Component)
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"decode", "component: [", "failed to parse"},
		{"duplicate tag", "component: View\ntag: 3\nchildren:\n  - component: View\n    tag: 3", "used twice"},
		{"missing state field", "component: ScrollView\nstate:\n  contentOffset: {x: 1, y: 2}", "contentBoundingRect is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "build", writeTree(t, tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestBuild_MissingFile(t *testing.T) {
	if _, err := run(t, "build", filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestStress(t *testing.T) {
	out, err := run(t, "stress", "--writers", "4", "--updates", "25", "--readers", "2")
	if err != nil {
		t.Fatalf("stress: %v\n%s", err, out)
	}
	for _, want := range []string{"revisions:    101", "commits:      100", "torn reads:   0"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStress_InvalidOptions(t *testing.T) {
	if _, err := run(t, "stress", "--writers", "0"); err == nil {
		t.Error("expected error for zero writers")
	}
}

func TestStressState_IsWhole(t *testing.T) {
	if !isWhole(stressState(3, 17)) {
		t.Error("stress states should be whole")
	}
	mixed := stressState(3, 17)
	mixed.ContentOffset = stressState(4, 17).ContentOffset
	if isWhole(mixed) {
		t.Error("a state mixing two writers should not be whole")
	}
}

func TestConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte("surface:\n  id: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--dir", dir, "--no-color", "build", "--json"})
	t.Cleanup(func() { errors.SetHandler(nil) })
	if err := root.Execute(); err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out.String(), `"component": "RootView"`) {
		t.Errorf("output = %s", out.String())
	}
}

func TestUnknownLogFormat(t *testing.T) {
	if _, err := run(t, "--log-format", "xml", "build"); err == nil {
		t.Error("expected error for an unknown log format")
	}
}

func TestBuildTree_ViolationCarriesStack(t *testing.T) {
	if _, err := newLogger(io.Discard, "json", false); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { errors.SetHandler(nil) })

	_, err := buildTree(1, element.Element{
		Component: components.ViewName,
		Tag:       3,
		Children:  []element.Element{{Component: components.ViewName, Tag: 3}},
	})
	var shadowErr *errors.ShadowError
	if !stderrors.As(err, &shadowErr) || shadowErr.Kind != errors.KindBuild {
		t.Fatalf("err = %v, want KindBuild ShadowError", err)
	}
	if shadowErr.Tag != 3 || shadowErr.StackTrace == "" {
		t.Errorf("build error = %+v, want tag 3 with a stack", shadowErr)
	}
}

func TestNewLogger_RoutesErrorsThroughReturnedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "json", false)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { errors.SetHandler(nil) })

	errors.Report(&errors.ShadowError{Op: "test.op", Kind: errors.KindCommit, Err: stderrors.New("stale")})
	if !strings.Contains(buf.String(), "stale") || !strings.Contains(buf.String(), `"app":"shadowtree"`) {
		t.Errorf("reported error missing from log: %s", buf.String())
	}

	buf.Reset()
	log.Info().Msg("global")
	if strings.Contains(buf.String(), "global") {
		t.Error("newLogger must leave the zerolog global logger alone")
	}
	logger.Info().Msg("local")
	if !strings.Contains(buf.String(), "local") {
		t.Errorf("returned logger should write to w: %s", buf.String())
	}
}
