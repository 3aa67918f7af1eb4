package indicator

import (
	"fmt"
	"strings"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type ValidationError struct {
	NodeID   string   `json:"node_id"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidateTree checks a flat builder state for structural problems:
// empty names, dangling parent references, schemas on non-leaf nodes, and
// parent cycles (a node must not be its own ancestor).
func ValidateTree(state FlatState) []ValidationError {
	var errs []ValidationError

	hasChild := map[string]bool{}
	for _, n := range state.Nodes {
		if n.ParentID != "" {
			hasChild[n.ParentID] = true
		}
	}

	for id, n := range state.Nodes {
		if strings.TrimSpace(n.Name) == "" {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Field:    "name",
				Message:  "indicator name must not be empty",
				Severity: SeverityError,
			})
		}
		if n.ParentID != "" {
			if _, ok := state.Nodes[n.ParentID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Field:    "parent_id",
					Message:  fmt.Sprintf("parent %q not found in tree", n.ParentID),
					Severity: SeverityError,
				})
			}
		}
		if hasChild[id] && n.HasSchemas() {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Field:    "form_schema",
				Message:  "only leaf indicators may carry schemas",
				Severity: SeverityError,
			})
		}
	}

	for _, id := range cycleNodes(state) {
		errs = append(errs, ValidationError{
			NodeID:   id,
			Field:    "parent_id",
			Message:  "indicator is part of a parent cycle",
			Severity: SeverityError,
		})
	}
	return errs
}

// cycleNodes returns the ids of nodes whose parent chain loops back onto
// themselves.
func cycleNodes(state FlatState) []string {
	var out []string
	for id := range state.Nodes {
		seen := map[string]bool{}
		cur := state.Nodes[id]
		for cur != nil && cur.ParentID != "" {
			if seen[cur.ID] {
				out = append(out, id)
				break
			}
			seen[cur.ID] = true
			if cur.ParentID == id {
				out = append(out, id)
				break
			}
			cur = state.Nodes[cur.ParentID]
		}
	}
	return out
}
