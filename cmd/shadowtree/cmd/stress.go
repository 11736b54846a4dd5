package cmd

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-drift/shadow/pkg/components"
	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/shadowtree"
)

// stressOptions configures a stress run.
type stressOptions struct {
	writers int
	updates int
	readers int
}

// stressReport summarizes a stress run.
type stressReport struct {
	Revision     uint64
	Commits      uint64
	Observations uint64
	Torn         uint64
	Final        components.ScrollViewState
	Elapsed      time.Duration
}

func newStressCommand(a *app) *cobra.Command {
	opts := stressOptions{}

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Race concurrent state updates against readers",
		Long: `Stress commits scroll view state from several writers at once while
readers sample the family's committed state. Every sampled state must be
whole: a state written by one writer is never observed mixed with another's.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.stress(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "revisions:    %d\n", report.Revision)
			fmt.Fprintf(out, "commits:      %d\n", report.Commits)
			fmt.Fprintf(out, "observations: %d\n", report.Observations)
			fmt.Fprintf(out, "torn reads:   %d\n", report.Torn)
			fmt.Fprintf(out, "final offset: %v\n", report.Final.ContentOffset.Get())
			fmt.Fprintf(out, "elapsed:      %s\n", report.Elapsed.Round(time.Millisecond))
			if report.Torn > 0 {
				return fmt.Errorf("observed %d torn states", report.Torn)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.writers, "writers", 8, "concurrent writers")
	cmd.Flags().IntVar(&opts.updates, "updates", 100, "state updates per writer")
	cmd.Flags().IntVar(&opts.readers, "readers", 2, "concurrent readers")
	return cmd
}

// stressState encodes writer and sequence into both halves of the state so
// a reader can tell whether it saw one writer's whole state.
func stressState(writer, seq int) components.ScrollViewState {
	v := float64(writer*1_000_000 + seq)
	return components.NewScrollViewState(graphics.Point{X: v, Y: v}, graphics.RectFromXYWH(0, 0, v, v))
}

func isWhole(s components.ScrollViewState) bool {
	if !s.ContentOffset.IsSet() || !s.ContentBoundingRect.IsSet() {
		return false
	}
	offset, bounds := s.ContentOffset.Get(), s.ContentBoundingRect.Get()
	return offset.X == offset.Y && offset.X == bounds.Size.Width && bounds.Size.Width == bounds.Size.Height
}

func (a *app) stress(ctx context.Context, opts stressOptions) (*stressReport, error) {
	if opts.writers < 1 || opts.updates < 1 || opts.readers < 0 {
		return nil, fmt.Errorf("writers and updates must be positive, readers non-negative")
	}

	root, err := buildTree(core.SurfaceID(a.cfg.SurfaceID), demoElement())
	if err != nil {
		return nil, err
	}
	tree, err := a.commitTree(ctx, root)
	if err != nil {
		return nil, err
	}
	family := shadowtree.Find(tree.Root(), demoScrollTag).(*components.ScrollViewNode).Family()

	start := time.Now()
	var observations, torn atomic.Uint64
	done := make(chan struct{})

	var readers errgroup.Group
	for r := 0; r < opts.readers; r++ {
		readers.Go(func() error {
			for {
				select {
				case <-done:
					return nil
				default:
				}
				observations.Add(1)
				if !isWhole(family.MostRecentState().Data()) {
					torn.Add(1)
				}
			}
		})
	}

	writers, wctx := errgroup.WithContext(ctx)
	for w := 1; w <= opts.writers; w++ {
		w := w
		writers.Go(func() error {
			for seq := 0; seq < opts.updates; seq++ {
				status, err := shadowtree.UpdateState(wctx, tree, demoScrollTag, stressState(w, seq))
				if err != nil {
					return err
				}
				if status != shadowtree.CommitSucceeded {
					return fmt.Errorf("writer %d: commit %s", w, status)
				}
			}
			return nil
		})
	}

	werr := writers.Wait()
	close(done)
	readers.Wait()
	if werr != nil {
		return nil, werr
	}

	report := &stressReport{
		Revision:     tree.CurrentRevision().Number,
		Commits:      family.CommitCount(),
		Observations: observations.Load(),
		Torn:         torn.Load(),
		Final:        family.MostRecentState().Data(),
		Elapsed:      time.Since(start),
	}
	a.logger.Info().
		Uint64("revision", report.Revision).
		Uint64("commits", report.Commits).
		Uint64("torn", report.Torn).
		Dur("elapsed", report.Elapsed).
		Msg("stress complete")
	return report, nil
}
