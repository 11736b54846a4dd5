package components

import (
	"testing"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/element"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/required"
)

func buildScrollView(t *testing.T) *ScrollViewNode {
	t.Helper()
	builder := NewBuilder(1)
	node := builder.Build(element.Element{Component: ScrollViewName})
	scroll, ok := node.(*ScrollViewNode)
	if !ok {
		t.Fatalf("Build returned %T, want *ScrollViewNode", node)
	}
	return scroll
}

func TestScrollView_SetStateData(t *testing.T) {
	node := buildScrollView(t)

	node.SetStateData(ScrollViewState{
		ContentOffset:        required.Of(graphics.Point{X: 10, Y: 11}),
		ContentBoundingRect:  required.Of(graphics.RectFromXYWH(21, 22, 301, 302)),
		ScrollAwayPaddingTop: 0,
	})

	if node.State() == node.Family().MostRecentState() {
		t.Error("proposed state should differ from the family's most recent state")
	}

	node.SetMounted(true)

	if node.State() != node.Family().MostRecentState() {
		t.Error("mounted state should be the family's most recent state")
	}

	data := node.StateData()
	if got := data.ContentOffset.Get(); got.X != 10 || got.Y != 11 {
		t.Errorf("ContentOffset = %+v, want {10 11}", got)
	}
	rect := data.ContentBoundingRect.Get()
	if rect.Origin.X != 21 || rect.Origin.Y != 22 {
		t.Errorf("ContentBoundingRect.Origin = %+v, want {21 22}", rect.Origin)
	}
	if rect.Size.Width != 301 || rect.Size.Height != 302 {
		t.Errorf("ContentBoundingRect.Size = %+v, want {301 302}", rect.Size)
	}
	if got := data.ContentSize(); got != (graphics.Size{Width: 301, Height: 302}) {
		t.Errorf("ContentSize() = %+v", got)
	}
}

func TestScrollView_InitialStateFromProps(t *testing.T) {
	builder := NewBuilder(1)
	node := builder.Build(element.Element{
		Component: ScrollViewName,
		Props:     ScrollViewProps{ContentOffset: graphics.Point{X: 0, Y: 40}},
	}).(*ScrollViewNode)

	if got := node.StateData().ContentOffset.Get(); got.Y != 40 {
		t.Errorf("initial ContentOffset = %+v, want Y=40", got)
	}
	if node.State() != node.Family().MostRecentState() {
		t.Error("fresh node should carry the family's state")
	}
}

func TestScrollView_StateOverride(t *testing.T) {
	builder := NewBuilder(1)
	override := NewScrollViewState(graphics.Point{X: 1, Y: 2}, graphics.RectFromXYWH(0, 0, 5, 5))
	node := builder.Build(element.Element{Component: ScrollViewName, State: override}).(*ScrollViewNode)

	if got := node.Family().InitialState().Data().ContentOffset.Get(); got != (graphics.Point{X: 1, Y: 2}) {
		t.Errorf("initial ContentOffset = %+v, want {1 2}", got)
	}
}

func TestUnimplementedView_Fallback(t *testing.T) {
	builder := NewBuilder(1)
	node := builder.Build(element.Element{Component: "MapView", Tag: 5, Props: map[string]any{"zoom": 3}})

	if node.ComponentName() != UnimplementedViewName {
		t.Errorf("ComponentName() = %q, want %q", node.ComponentName(), UnimplementedViewName)
	}
	props, ok := node.Props().(UnimplementedViewProps)
	if !ok {
		t.Fatalf("Props() = %T, want UnimplementedViewProps", node.Props())
	}
	if props.ComponentName != "MapView" {
		t.Errorf("requested name = %q, want MapView", props.ComponentName)
	}
	if node.Tag() != 5 {
		t.Errorf("Tag() = %d, want 5", node.Tag())
	}
	if _, ok := node.StateHandle().DataAny().(core.NoState); !ok {
		t.Errorf("state data = %T, want core.NoState", node.StateHandle().DataAny())
	}
}

func TestRegistryNames(t *testing.T) {
	names := Registry().Names()
	want := []string{RootViewName, ScrollViewName, UnimplementedViewName, ViewName}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
