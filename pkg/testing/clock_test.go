package testing

import (
	"context"
	"testing"
	"time"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/shadowtree"
)

func TestFakeClock_Advance(t *testing.T) {
	clock := NewFakeClock()
	start := clock.Now()

	clock.Advance(250 * time.Millisecond)
	if got := clock.Now().Sub(start); got != 250*time.Millisecond {
		t.Errorf("elapsed = %v, want 250ms", got)
	}
}

func TestFakeClock_Set(t *testing.T) {
	clock := NewFakeClock()
	want := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	clock.Set(want)
	if !clock.Now().Equal(want) {
		t.Errorf("Now() = %v, want %v", clock.Now(), want)
	}
}

func TestFakeClock_StampsRevisions(t *testing.T) {
	clock := NewFakeClock()
	tree := shadowtree.New(1, shadowtree.Options{Now: clock.Now})
	if !tree.CurrentRevision().Timestamp.Equal(clock.Now()) {
		t.Error("empty revision should use the fake clock")
	}

	clock.Advance(time.Second)
	root := buildFixture()
	tree.Commit(context.Background(), func(core.ShadowNode) core.ShadowNode { return root }, shadowtree.CommitOptions{})

	if !tree.CurrentRevision().Timestamp.Equal(clock.Now()) {
		t.Errorf("Timestamp = %v, want %v", tree.CurrentRevision().Timestamp, clock.Now())
	}
}
