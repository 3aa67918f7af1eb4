package indicator

// Read-only tree queries over the flat node map. None of these mutate.

func FindParent(nodes map[string]*Node, id string) *Node {
	n, ok := nodes[id]
	if !ok || n.ParentID == "" {
		return nil
	}
	return nodes[n.ParentID]
}

func FindChildren(nodes map[string]*Node, id string) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n.ParentID == id {
			out = append(out, n)
		}
	}
	sortSiblings(out)
	return out
}

func FindDescendants(nodes map[string]*Node, id string) []*Node {
	var out []*Node
	for _, c := range FindChildren(nodes, id) {
		out = append(out, c)
		out = append(out, FindDescendants(nodes, c.ID)...)
	}
	return out
}

func FindAncestors(nodes map[string]*Node, id string) []*Node {
	var out []*Node
	seen := map[string]bool{id: true}
	cur := nodes[id]
	for cur != nil && cur.ParentID != "" {
		parent, ok := nodes[cur.ParentID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		out = append(out, parent)
		cur = parent
	}
	return out
}

// IsAncestor reports whether a is a strict ancestor of b. A node is never
// its own ancestor.
func IsAncestor(nodes map[string]*Node, a, b string) bool {
	if a == b {
		return false
	}
	for _, anc := range FindAncestors(nodes, b) {
		if anc.ID == a {
			return true
		}
	}
	return false
}

func GetNodeDepth(nodes map[string]*Node, id string) int {
	return len(FindAncestors(nodes, id))
}

func GetMaxDepth(nodes map[string]*Node) int {
	max := 0
	for id := range nodes {
		if d := GetNodeDepth(nodes, id); d > max {
			max = d
		}
	}
	return max
}

// GetNodePath returns the chain from root down to and including the node.
func GetNodePath(nodes map[string]*Node, id string) []*Node {
	n, ok := nodes[id]
	if !ok {
		return nil
	}
	ancestors := FindAncestors(nodes, id)
	out := make([]*Node, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		out = append(out, ancestors[i])
	}
	return append(out, n)
}

// GetBreadcrumbs renders the node path as "code name" segments.
func GetBreadcrumbs(nodes map[string]*Node, id string) []string {
	path := GetNodePath(nodes, id)
	out := make([]string, 0, len(path))
	for _, n := range path {
		label := n.Name
		if n.Code != "" {
			label = n.Code + " " + n.Name
		}
		out = append(out, label)
	}
	return out
}
