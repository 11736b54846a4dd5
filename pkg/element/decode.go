package element

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/errors"
)

// Codec decodes the props and initial state of one component from YAML.
// Either function may be nil.
type Codec struct {
	Props func(node *yaml.Node) (core.Props, error)
	State func(node *yaml.Node) (any, error)
}

// Codecs maps component names to their codecs. Components without a codec
// get their props decoded as map[string]any and no state override.
type Codecs map[string]Codec

// document is the YAML shape of an Element.
type document struct {
	Component string     `yaml:"component"`
	Tag       int32      `yaml:"tag,omitempty"`
	Props     yaml.Node  `yaml:"props,omitempty"`
	State     yaml.Node  `yaml:"state,omitempty"`
	Children  []document `yaml:"children,omitempty"`
}

// Decode parses a YAML tree description:
//
//	component: RootView
//	children:
//	  - component: ScrollView
//	    tag: 10
//	    state:
//	      contentOffset: {x: 10, y: 11}
func Decode(data []byte, codecs Codecs) (Element, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Element{}, &errors.ShadowError{
			Op:   "element.Decode",
			Kind: errors.KindBuild,
			Err:  fmt.Errorf("failed to parse tree description: %w", err),
		}
	}
	return decodeDocument(doc, codecs, "root")
}

func decodeDocument(doc document, codecs Codecs, path string) (Element, error) {
	if doc.Component == "" {
		return Element{}, buildError(doc.Tag, fmt.Errorf("%s: component is required", path))
	}

	el := Element{
		Component: doc.Component,
		Tag:       core.Tag(doc.Tag),
	}
	codec := codecs[doc.Component]

	if !isEmpty(&doc.Props) {
		if codec.Props != nil {
			props, err := codec.Props(&doc.Props)
			if err != nil {
				return Element{}, buildError(doc.Tag, fmt.Errorf("%s: props: %w", path, err))
			}
			el.Props = props
		} else {
			var props map[string]any
			if err := doc.Props.Decode(&props); err != nil {
				return Element{}, buildError(doc.Tag, fmt.Errorf("%s: props: %w", path, err))
			}
			el.Props = props
		}
	}

	if !isEmpty(&doc.State) {
		if codec.State == nil {
			return Element{}, buildError(doc.Tag, fmt.Errorf("%s: %s does not accept state", path, doc.Component))
		}
		state, err := codec.State(&doc.State)
		if err != nil {
			return Element{}, buildError(doc.Tag, fmt.Errorf("%s: state: %w", path, err))
		}
		el.State = state
	}

	for i, child := range doc.Children {
		decoded, err := decodeDocument(child, codecs, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return Element{}, err
		}
		el.Children = append(el.Children, decoded)
	}
	return el, nil
}

func isEmpty(node *yaml.Node) bool {
	return node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}

func buildError(tag int32, err error) error {
	return &errors.ShadowError{
		Op:   "element.Decode",
		Kind: errors.KindBuild,
		Tag:  tag,
		Err:  err,
	}
}
