package completion

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/dilg-vantage/vantage-backend/internal/indicator"
)

func simpleComplianceSchema(section string) json.RawMessage {
	raw := map[string]any{"fields": []map[string]any{{
		"field_id": "a_compliance",
		"type":     "radio_button",
		"required": true,
		"options":  []string{"yes", "no", "na"},
	}}}
	if section != "" {
		raw["fields"].([]map[string]any)[0]["mov_upload_section"] = section
	}
	b, _ := json.Marshal(raw)
	return b
}

// Three leaves under one area: two answered no/na, one answered yes with a
// required budget MOV.
func assessmentFixture() ([]*indicator.Node, map[string]ResponseState) {
	roots := []*indicator.Node{{
		ID: "area1", Name: "Financial Administration", Code: "1", IsActive: true,
		Children: []*indicator.Node{
			{ID: "i1", Name: "One", Code: "1.1", Order: 1, IsActive: true, FormSchema: simpleComplianceSchema("")},
			{ID: "i2", Name: "Two", Code: "1.2", Order: 2, IsActive: true, FormSchema: simpleComplianceSchema("")},
			{ID: "i3", Name: "Three", Code: "1.3", Order: 3, IsActive: true, FormSchema: simpleComplianceSchema("budget")},
		},
	}}
	responses := map[string]ResponseState{
		"i1": {Data: map[string]any{"a_compliance": "no"}},
		"i2": {Data: map[string]any{"a_compliance": "na"}},
		"i3": {
			Data: map[string]any{"a_compliance": "yes"},
			MOVs: []MOV{{ID: "m1", Filename: "plan.pdf", StoragePath: "assessments/1/budget/plan.pdf"}},
		},
	}
	return roots, responses
}

func TestSummarizeFullCompletion(t *testing.T) {
	roots, responses := assessmentFixture()
	s := Summarize(roots, responses)
	if s.Total != 3 || s.Completed != 3 {
		t.Fatalf("summary = %d/%d, want 3/3", s.Completed, s.Total)
	}
	if s.Percentage != 100 {
		t.Fatalf("percentage = %v, want 100", s.Percentage)
	}
	if len(s.Areas) != 1 || s.Areas[0].Completed != 3 {
		t.Fatalf("area summary = %+v", s.Areas)
	}
}

func TestSummarizeAfterMOVRemoval(t *testing.T) {
	roots, responses := assessmentFixture()
	state := responses["i3"]
	state.MOVs = nil
	responses["i3"] = state

	s := Summarize(roots, responses)
	if s.Total != 3 || s.Completed != 2 {
		t.Fatalf("summary = %d/%d, want 2/3", s.Completed, s.Total)
	}
	if math.Abs(s.Percentage-66.7) > 0.1 {
		t.Fatalf("percentage = %v, want ~66.7", s.Percentage)
	}
}

func TestSummarizeExcludesInactiveLeaves(t *testing.T) {
	roots, responses := assessmentFixture()
	roots[0].Children[2].IsActive = false

	s := Summarize(roots, responses)
	if s.Total != 2 || s.Completed != 2 {
		t.Fatalf("summary = %d/%d, want 2/2 with inactive leaf excluded", s.Completed, s.Total)
	}
}

func TestStatusMapParentRollup(t *testing.T) {
	roots, responses := assessmentFixture()

	statuses := StatusMap(roots, responses)
	if statuses["area1"] != StatusCompleted {
		t.Fatalf("area status = %q, want completed", statuses["area1"])
	}

	// One leaf regressing un-completes every ancestor.
	state := responses["i3"]
	state.MOVs = nil
	responses["i3"] = state

	statuses = StatusMap(roots, responses)
	if statuses["i3"] != StatusInProgress {
		t.Fatalf("leaf status = %q", statuses["i3"])
	}
	if statuses["area1"] == StatusCompleted {
		t.Fatal("parent stayed completed with an incomplete leaf")
	}
}

func TestStatusMapDeepRollup(t *testing.T) {
	roots := []*indicator.Node{{
		ID: "root", Name: "Area", IsActive: true,
		Children: []*indicator.Node{{
			ID: "mid", Name: "Group", IsActive: true,
			Children: []*indicator.Node{
				{ID: "leaf", Name: "Leaf", IsActive: true, FormSchema: simpleComplianceSchema("")},
			},
		}},
	}}
	responses := map[string]ResponseState{
		"leaf": {Data: map[string]any{"a_compliance": "no"}},
	}
	statuses := StatusMap(roots, responses)
	if statuses["leaf"] != StatusCompleted || statuses["mid"] != StatusCompleted || statuses["root"] != StatusCompleted {
		t.Fatalf("rollup chain = %v", statuses)
	}

	responses["leaf"] = ResponseState{}
	statuses = StatusMap(roots, responses)
	if statuses["root"] != StatusNotStarted {
		t.Fatalf("untouched tree root = %q, want not_started", statuses["root"])
	}
}
