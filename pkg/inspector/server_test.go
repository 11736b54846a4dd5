package inspector

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-drift/shadow/pkg/components"
	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/element"
	shadowerrors "github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/shadowtree"
	shadowtest "github.com/go-drift/shadow/pkg/testing"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func committedTree(t *testing.T) *shadowtree.ShadowTree {
	t.Helper()
	root := components.NewBuilder(1).Build(element.Element{
		Component: components.RootViewName,
		Tag:       1,
		Children: []element.Element{
			{Component: components.ScrollViewName, Tag: 10},
		},
	})
	tree := shadowtree.New(1, shadowtree.Options{})
	if _, err := tree.Commit(context.Background(), func(core.ShadowNode) core.ShadowNode { return root }, shadowtree.CommitOptions{}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return tree
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	tree := committedTree(t)
	w := get(t, New(tree, zerolog.Nop()), "/health")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Status   string `json:"status"`
		TreeID   string `json:"treeId"`
		Revision uint64 `json:"revision"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Status != "ok" || resp.TreeID != tree.ID().String() || resp.Revision != 1 {
		t.Errorf("health = %+v", resp)
	}
}

func TestTree(t *testing.T) {
	tree := committedTree(t)
	shadowtree.UpdateState(context.Background(), tree, 10, components.NewScrollViewState(
		graphics.Point{X: 0, Y: 64}, graphics.RectFromXYWH(0, 0, 320, 2000)))

	w := get(t, New(tree, zerolog.Nop()), "/tree")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Revision uint64 `json:"revision"`
		Root     struct {
			Component string `json:"component"`
			Mounted   bool   `json:"mounted"`
			Children  []struct {
				Tag            int32 `json:"tag"`
				Mounted        bool  `json:"mounted"`
				StateRevision  uint64
				FamilyRevision uint64
				State          struct {
					ContentOffset graphics.Point `json:"contentOffset"`
				} `json:"state"`
			} `json:"children"`
		} `json:"root"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Revision != 2 {
		t.Errorf("revision = %d, want 2", resp.Revision)
	}
	if resp.Root.Component != components.RootViewName || !resp.Root.Mounted {
		t.Errorf("root = %+v", resp.Root)
	}
	if len(resp.Root.Children) != 1 {
		t.Fatalf("children = %d, want 1", len(resp.Root.Children))
	}
	scroll := resp.Root.Children[0]
	if scroll.Tag != 10 || !scroll.Mounted {
		t.Errorf("scroll = %+v", scroll)
	}
	if scroll.StateRevision != 1 || scroll.FamilyRevision != 1 {
		t.Errorf("revisions = %d/%d, want 1/1", scroll.StateRevision, scroll.FamilyRevision)
	}
	if scroll.State.ContentOffset.Y != 64 {
		t.Errorf("offset = %+v, want y=64", scroll.State.ContentOffset)
	}
}

func TestTree_NoRoot(t *testing.T) {
	w := get(t, New(shadowtree.New(1, shadowtree.Options{}), zerolog.Nop()), "/tree")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestFamily(t *testing.T) {
	tests := []struct {
		name string
		path string
		code int
	}{
		{"found", "/families/10", http.StatusOK},
		{"missing", "/families/99", http.StatusNotFound},
		{"not a number", "/families/abc", http.StatusBadRequest},
	}

	s := New(committedTree(t), zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, s, tt.path)
			if w.Code != tt.code {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.code, w.Body.String())
			}
		})
	}
}

func TestFamily_ReportsCommittedState(t *testing.T) {
	tree := committedTree(t)
	shadowtree.UpdateState(context.Background(), tree, 10, components.NewScrollViewState(
		graphics.Point{X: 0, Y: 12}, graphics.RectFromXYWH(0, 0, 1, 1)))

	w := get(t, New(tree, zerolog.Nop()), "/families/10")
	var resp FamilyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Component != components.ScrollViewName || resp.Revision != 1 || resp.Commits != 1 {
		t.Errorf("family = %+v", resp)
	}

	scroll := shadowtest.NodeOf[components.ScrollViewState](shadowtest.Find(tree.Root(), shadowtest.ByTag(10)))
	if resp.Revision != scroll.State().Revision() {
		t.Errorf("revision = %d, want the mounted node's %d", resp.Revision, scroll.State().Revision())
	}
	if resp.Tag != scroll.Tag() {
		t.Errorf("tag = %d, want %d", resp.Tag, scroll.Tag())
	}
}

func TestMetrics(t *testing.T) {
	tree := committedTree(t)
	w := get(t, New(tree, zerolog.Nop()), "/metrics")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "shadow_tree_commits_total") {
		t.Error("metrics should include tree commit counters")
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	get(t, New(committedTree(t), logger), "/families/99")
	if !strings.Contains(buf.String(), `"status":404`) || !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Errorf("log = %s", buf.String())
	}
}

type panicRecorder struct {
	panics []*shadowerrors.PanicError
}

func (r *panicRecorder) HandleError(*shadowerrors.ShadowError)           {}
func (r *panicRecorder) HandleProtocolError(*shadowerrors.ProtocolError) {}
func (r *panicRecorder) HandlePanic(err *shadowerrors.PanicError) {
	r.panics = append(r.panics, err)
}

func TestRecovery_ReportsPanicAndAnswers500(t *testing.T) {
	recorder := &panicRecorder{}
	shadowerrors.SetHandler(recorder)
	defer shadowerrors.SetHandler(nil)

	var buf bytes.Buffer
	s := New(committedTree(t), zerolog.New(&buf))
	s.router.GET("/boom", func(*gin.Context) { panic("boom") })

	w := get(t, s, "/boom")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if len(recorder.panics) != 1 {
		t.Fatalf("reported %d panics, want 1", len(recorder.panics))
	}
	if p := recorder.panics[0]; p.Op != "inspector /boom" || p.Value != "boom" || p.StackTrace == "" {
		t.Errorf("reported panic = %+v", p)
	}
	if !strings.Contains(buf.String(), `"status":500`) {
		t.Errorf("failed request should be logged: %s", buf.String())
	}
	if w := get(t, s, "/health"); w.Code != http.StatusOK {
		t.Errorf("server should keep serving after a panic, got %d", w.Code)
	}
}

func TestStartShutdown(t *testing.T) {
	s := New(committedTree(t), zerolog.Nop())

	addr, err := s.Start("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	again, err := s.Start("127.0.0.1:0")
	if err != nil || again != addr {
		t.Errorf("second Start = %q, %v; want %q", again, err, addr)
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
}
