package indicator

import (
	"fmt"
	"strconv"
)

// RecalculateCodes reassigns dotted-decimal codes across the whole tree.
// Roots get 1..N by sibling position, a child's code is parent code plus
// "." plus its position among siblings. The full recompute keeps codes
// stable under reorder and delete; idempotent on an unchanged tree.
func RecalculateCodes(roots []*Node) {
	sortSiblings(roots)
	for i, r := range roots {
		r.Order = i + 1
		r.Code = strconv.Itoa(i + 1)
		recalcSubtree(r)
	}
}

func recalcSubtree(parent *Node) {
	sortSiblings(parent.Children)
	for i, c := range parent.Children {
		c.Order = i + 1
		c.Code = fmt.Sprintf("%s.%d", parent.Code, i+1)
		recalcSubtree(c)
	}
}

// RecalculateFlatCodes runs the code recompute against a flat state and
// writes the resulting codes and orders back onto the flat nodes.
func RecalculateFlatCodes(state FlatState) {
	roots := BuildTreeFromFlat(state)
	RecalculateCodes(roots)
	flat := FlattenTree(roots)
	for id, n := range flat.Nodes {
		if orig, ok := state.Nodes[id]; ok {
			orig.Code = n.Code
			orig.Order = n.Order
		}
	}
}
