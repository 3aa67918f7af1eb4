package completion

import (
	"github.com/dilg-vantage/vantage-backend/internal/formschema"
	"github.com/dilg-vantage/vantage-backend/internal/indicator"
)

// AreaSummary is the rollup for one governance area (a root of the
// indicator tree).
type AreaSummary struct {
	AreaID     string  `json:"area_id"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Total      int     `json:"total_indicators"`
	Completed  int     `json:"completed_indicators"`
	Percentage float64 `json:"completion_percentage"`
}

// Summary is the assessment-wide rollup. Counters are derived from leaf
// state on every call, never persisted authoritatively.
type Summary struct {
	Total      int           `json:"total_indicators"`
	Completed  int           `json:"completed_indicators"`
	Percentage float64       `json:"completion_percentage"`
	Areas      []AreaSummary `json:"areas"`
}

// Summarize recomputes completion over the whole tree. Only active leaves
// count toward the numeric percentage; parents are cosmetic rollups.
// Responses are keyed by indicator id.
func Summarize(roots []*indicator.Node, responses map[string]ResponseState) Summary {
	var summary Summary
	for _, root := range roots {
		total, completed := countLeaves(root, responses)
		pct := 0.0
		if total > 0 {
			pct = float64(completed) / float64(total) * 100
		}
		summary.Areas = append(summary.Areas, AreaSummary{
			AreaID:     root.ID,
			Code:       root.Code,
			Name:       root.Name,
			Total:      total,
			Completed:  completed,
			Percentage: pct,
		})
		summary.Total += total
		summary.Completed += completed
	}
	if summary.Total > 0 {
		summary.Percentage = float64(summary.Completed) / float64(summary.Total) * 100
	}
	return summary
}

// StatusMap derives the displayed status of every node. A parent shows
// completed once all of its leaf descendants are completed, in_progress if
// any descendant has been touched, not_started otherwise.
func StatusMap(roots []*indicator.Node, responses map[string]ResponseState) map[string]Status {
	out := map[string]Status{}
	for _, root := range roots {
		nodeStatus(root, responses, out)
	}
	return out
}

func nodeStatus(n *indicator.Node, responses map[string]ResponseState, out map[string]Status) Status {
	if n.IsLeaf() {
		status := LeafStatus(leafSchema(n), responses[n.ID])
		out[n.ID] = status
		return status
	}

	allCompleted := true
	anyTouched := false
	for _, c := range n.Children {
		switch nodeStatus(c, responses, out) {
		case StatusCompleted:
			anyTouched = true
		case StatusInProgress:
			allCompleted = false
			anyTouched = true
		default:
			allCompleted = false
		}
	}
	status := StatusNotStarted
	if allCompleted && len(n.Children) > 0 {
		status = StatusCompleted
	} else if anyTouched {
		status = StatusInProgress
	}
	out[n.ID] = status
	return status
}

// countLeaves counts completion over active leaves only; container nodes
// are never counted themselves.
func countLeaves(n *indicator.Node, responses map[string]ResponseState) (total, completed int) {
	if n.IsLeaf() {
		if !n.IsActive {
			return 0, 0
		}
		total = 1
		if LeafStatus(leafSchema(n), responses[n.ID]) == StatusCompleted {
			completed = 1
		}
		return total, completed
	}
	for _, c := range n.Children {
		ct, cc := countLeaves(c, responses)
		total += ct
		completed += cc
	}
	return total, completed
}

func leafSchema(n *indicator.Node) *formschema.Schema {
	s, err := formschema.Parse(n.FormSchema)
	if err != nil {
		return &formschema.Schema{}
	}
	return s
}
