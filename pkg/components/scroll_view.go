package components

import (
	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/graphics"
	"github.com/go-drift/shadow/pkg/required"
)

// ScrollViewState is the state of a scroll view: where its content is
// scrolled to and the bounding box of that content.
type ScrollViewState struct {
	ContentOffset        required.Required[graphics.Point] `json:"contentOffset"`
	ContentBoundingRect  required.Required[graphics.Rect]  `json:"contentBoundingRect"`
	ScrollAwayPaddingTop float64                           `json:"scrollAwayPaddingTop"`
}

// NewScrollViewState returns a state with every required field supplied.
func NewScrollViewState(offset graphics.Point, bounds graphics.Rect) ScrollViewState {
	return ScrollViewState{
		ContentOffset:        required.Of(offset),
		ContentBoundingRect:  required.Of(bounds),
		ScrollAwayPaddingTop: 0,
	}
}

// ContentSize returns the size of the scrolled content.
func (s ScrollViewState) ContentSize() graphics.Size {
	return s.ContentBoundingRect.Get().Size
}

// ScrollViewProps configures a ScrollView.
type ScrollViewProps struct {
	ViewProps     `yaml:",inline"`
	Horizontal    bool           `json:"horizontal,omitempty" yaml:"horizontal,omitempty"`
	ContentOffset graphics.Point `json:"contentOffset" yaml:"contentOffset"`
}

// ScrollView is the descriptor of a scroll view. Its initial offset comes
// from ScrollViewProps.ContentOffset.
var ScrollView = core.ConcreteDescriptor[ScrollViewState]{
	Name: ScrollViewName,
	InitialState: func(props core.Props) ScrollViewState {
		var offset graphics.Point
		if p, ok := props.(ScrollViewProps); ok {
			offset = p.ContentOffset
		}
		return NewScrollViewState(offset, graphics.Rect{})
	},
}

// ScrollViewNode is the shadow node type of a scroll view.
type ScrollViewNode = core.Node[ScrollViewState]
