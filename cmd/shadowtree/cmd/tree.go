package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/go-drift/shadow/pkg/components"
	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/element"
	"github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/shadowtree"
)

// demoScrollTag is the tag of the scroll view in the demo tree.
const demoScrollTag core.Tag = 10

// demoElement describes the tree used when no file is given.
func demoElement() element.Element {
	return element.Element{
		Component: components.RootViewName,
		Tag:       1,
		Children: []element.Element{
			{Component: components.ViewName, Tag: 2, Props: components.ViewProps{TestID: "header"}},
			{
				Component: components.ScrollViewName,
				Tag:       demoScrollTag,
				Props:     components.ScrollViewProps{ContentOffset: graphics.Point{X: 0, Y: 0}},
				Children: []element.Element{
					{Component: components.ViewName, Tag: 11, Props: components.ViewProps{TestID: "row-0"}},
					{Component: components.ViewName, Tag: 12, Props: components.ViewProps{TestID: "row-1"}},
				},
			},
		},
	}
}

// loadElement decodes the tree description at path, or returns the demo
// tree when path is empty.
func loadElement(path string) (element.Element, error) {
	if path == "" {
		return demoElement(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return element.Element{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return element.Decode(data, components.Codecs())
}

// buildTree builds el and converts protocol violations into errors.
func buildTree(surfaceID core.SurfaceID, el element.Element) (root core.ShadowNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(*errors.ProtocolError)
			if !ok {
				panic(r)
			}
			err = &errors.ShadowError{
				Op:         "build",
				Kind:       errors.KindBuild,
				Tag:        perr.Tag,
				Err:        perr,
				StackTrace: errors.CaptureStack(),
			}
		}
	}()
	return components.NewBuilder(surfaceID).Build(el), nil
}

// commitTree creates a tree for the configured surface and commits root
// as its first revision.
func (a *app) commitTree(ctx context.Context, root core.ShadowNode) (*shadowtree.ShadowTree, error) {
	tree := shadowtree.New(core.SurfaceID(a.cfg.SurfaceID), a.cfg.TreeOptions())
	status, err := tree.Commit(ctx, func(core.ShadowNode) core.ShadowNode { return root }, shadowtree.CommitOptions{})
	if err != nil {
		return nil, err
	}
	if status != shadowtree.CommitSucceeded {
		return nil, fmt.Errorf("initial commit %s", status)
	}
	a.logger.Debug().
		Str("tree", tree.ID().String()).
		Uint64("revision", tree.CurrentRevision().Number).
		Msg("tree committed")
	return tree, nil
}

// treePrinter writes an indented, optionally colored outline of a tree.
type treePrinter struct {
	w         io.Writer
	component *color.Color
	tag       *color.Color
	mounted   *color.Color
	unmounted *color.Color
	state     *color.Color
}

func newTreePrinter(w io.Writer, noColor bool) *treePrinter {
	p := &treePrinter{
		w:         w,
		component: color.New(color.FgCyan, color.Bold),
		tag:       color.New(color.FgHiBlack),
		mounted:   color.New(color.FgGreen),
		unmounted: color.New(color.FgYellow),
		state:     color.New(color.FgMagenta),
	}
	if noColor {
		for _, c := range []*color.Color{p.component, p.tag, p.mounted, p.unmounted, p.state} {
			c.DisableColor()
		}
	}
	return p
}

func (p *treePrinter) print(info *shadowtree.NodeInfo) {
	p.node(info, "", "")
}

func (p *treePrinter) node(info *shadowtree.NodeInfo, prefix, childPrefix string) {
	phase := p.mounted
	if !info.Mounted {
		phase = p.unmounted
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(p.component.Sprint(info.Component))
	b.WriteString(p.tag.Sprintf("#%d", info.Tag))
	b.WriteString(" ")
	b.WriteString(phase.Sprintf("[%s]", info.Phase))
	if info.State != nil {
		data, err := json.Marshal(info.State)
		if err != nil {
			data = []byte(fmt.Sprintf("%v", info.State))
		}
		b.WriteString(" ")
		b.WriteString(p.state.Sprintf("state r%d %s", info.StateRevision, data))
	}
	fmt.Fprintln(p.w, b.String())

	for i, child := range info.Children {
		if i == len(info.Children)-1 {
			p.node(child, childPrefix+"└── ", childPrefix+"    ")
		} else {
			p.node(child, childPrefix+"├── ", childPrefix+"│   ")
		}
	}
}
