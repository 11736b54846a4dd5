package components

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/element"
	"github.com/go-drift/shadow/pkg/graphics"
)

// scrollViewStateDocument mirrors ScrollViewState with optional fields so
// that missing required values can be reported.
type scrollViewStateDocument struct {
	ContentOffset        *graphics.Point `yaml:"contentOffset"`
	ContentBoundingRect  *graphics.Rect  `yaml:"contentBoundingRect"`
	ScrollAwayPaddingTop float64         `yaml:"scrollAwayPaddingTop"`
}

// Codecs returns the YAML codecs of the built-in components.
func Codecs() element.Codecs {
	viewProps := func(node *yaml.Node) (core.Props, error) {
		var props ViewProps
		if err := node.Decode(&props); err != nil {
			return nil, err
		}
		return props, nil
	}
	return element.Codecs{
		RootViewName: {Props: viewProps},
		ViewName:     {Props: viewProps},
		ScrollViewName: {
			Props: func(node *yaml.Node) (core.Props, error) {
				var props ScrollViewProps
				if err := node.Decode(&props); err != nil {
					return nil, err
				}
				return props, nil
			},
			State: decodeScrollViewState,
		},
	}
}

func decodeScrollViewState(node *yaml.Node) (any, error) {
	var doc scrollViewStateDocument
	if err := node.Decode(&doc); err != nil {
		return nil, err
	}
	if doc.ContentOffset == nil {
		return nil, fmt.Errorf("contentOffset is required")
	}
	if doc.ContentBoundingRect == nil {
		return nil, fmt.Errorf("contentBoundingRect is required")
	}
	state := NewScrollViewState(*doc.ContentOffset, *doc.ContentBoundingRect)
	state.ScrollAwayPaddingTop = doc.ScrollAwayPaddingTop
	return state, nil
}
