package shadowtree

import (
	"github.com/go-drift/shadow/pkg/core"
)

// NodeInfo is a serializable description of one node and its family.
type NodeInfo struct {
	Tag            core.Tag    `json:"tag"`
	Component      string      `json:"component"`
	Phase          string      `json:"phase"`
	Mounted        bool        `json:"mounted"`
	StateRevision  uint64      `json:"stateRevision,omitempty"`
	FamilyRevision uint64      `json:"familyRevision,omitempty"`
	Obsolete       bool        `json:"obsolete,omitempty"`
	State          any         `json:"state,omitempty"`
	Props          any         `json:"props,omitempty"`
	Children       []*NodeInfo `json:"children,omitempty"`
}

// Describe returns a description of the tree rooted at root, or nil.
func Describe(root core.ShadowNode) *NodeInfo {
	if root == nil {
		return nil
	}

	info := &NodeInfo{
		Tag:       root.Tag(),
		Component: root.ComponentName(),
		Phase:     root.Phase().String(),
		Mounted:   root.Mounted(),
		Obsolete:  root.IsStateObsolete(),
		Props:     root.Props(),
	}
	if state := root.StateHandle(); state != nil {
		if _, stateless := state.DataAny().(core.NoState); !stateless {
			info.StateRevision = state.Revision()
			info.State = state.DataAny()
		}
	}
	if info.State != nil {
		info.FamilyRevision = root.FamilyHandle().MostRecentStateHandle().Revision()
	}
	for _, child := range root.Children() {
		info.Children = append(info.Children, Describe(child))
	}
	return info
}
