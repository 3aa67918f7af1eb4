package indicator

import (
	"encoding/json"
	"sort"
)

// Node is the in-memory form of one indicator. A node is a leaf iff it has
// no children; only leaves may carry a form schema or calculation schema.
type Node struct {
	ID                string          `json:"id"`
	ParentID          string          `json:"parent_id,omitempty"`
	Order             int             `json:"order"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	IsActive          bool            `json:"is_active"`
	IsAutoCalculable  bool            `json:"is_auto_calculable"`
	IsProfilingOnly   bool            `json:"is_profiling_only"`
	FormSchema        json.RawMessage `json:"form_schema,omitempty"`
	CalculationSchema json.RawMessage `json:"calculation_schema,omitempty"`
	Metadata          map[string]any  `json:"metadata,omitempty"`
	Children          []*Node         `json:"children,omitempty"`
}

func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

func (n *Node) HasSchemas() bool {
	return len(n.FormSchema) > 0 || len(n.CalculationSchema) > 0
}

// FlatState is the storage/builder form of a tree: child pointers are not
// populated, parentage lives on ParentID only.
type FlatState struct {
	Nodes   map[string]*Node `json:"nodes"`
	RootIDs []string         `json:"root_ids"`
}

// BuildTreeFromFlat links nodes into a tree. Children are ordered by their
// Order field. Nodes whose parent is missing from the map are skipped; use
// ValidateTree to surface them.
func BuildTreeFromFlat(state FlatState) []*Node {
	linked := make(map[string]*Node, len(state.Nodes))
	for id, n := range state.Nodes {
		clone := *n
		clone.Children = nil
		linked[id] = &clone
	}
	for _, n := range linked {
		if n.ParentID == "" {
			continue
		}
		parent, ok := linked[n.ParentID]
		if !ok {
			continue
		}
		parent.Children = append(parent.Children, n)
	}
	for _, n := range linked {
		sortSiblings(n.Children)
	}

	roots := make([]*Node, 0, len(state.RootIDs))
	for _, id := range state.RootIDs {
		if n, ok := linked[id]; ok && n.ParentID == "" {
			roots = append(roots, n)
		}
	}
	return roots
}

// FlattenTree is the inverse of BuildTreeFromFlat. The round trip is
// lossless modulo child-array insertion order.
func FlattenTree(roots []*Node) FlatState {
	state := FlatState{Nodes: map[string]*Node{}}
	var walk func(n *Node, parentID string)
	walk = func(n *Node, parentID string) {
		clone := *n
		clone.ParentID = parentID
		clone.Children = nil
		state.Nodes[n.ID] = &clone
		for _, c := range n.Children {
			walk(c, n.ID)
		}
	}
	for _, r := range roots {
		state.RootIDs = append(state.RootIDs, r.ID)
		walk(r, "")
	}
	return state
}

func sortSiblings(siblings []*Node) {
	sort.SliceStable(siblings, func(i, j int) bool {
		if siblings[i].Order != siblings[j].Order {
			return siblings[i].Order < siblings[j].Order
		}
		return siblings[i].ID < siblings[j].ID
	})
}
