package completion

import (
	"sort"
	"strings"

	"github.com/dilg-vantage/vantage-backend/internal/formschema"
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// MOV is the metadata of one uploaded means-of-verification file.
type MOV struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	StoragePath string `json:"storage_path"`
	FileSize    int64  `json:"file_size"`
	ContentType string `json:"content_type"`
	Section     string `json:"section,omitempty"`
}

// ResponseState is the raw answer map plus attachments for one leaf
// indicator.
type ResponseState struct {
	Data map[string]any
	MOVs []MOV
}

// ComplianceAnswer derives the effective yes/no/na answer for a leaf.
// Suffixed compliance fields win over the legacy single-field aliases; the
// answer only counts once every schema-required compliance field has a
// value. A single "yes" anywhere forces the answer to "yes" (MOVs become
// required); otherwise the first field's value stands.
func ComplianceAnswer(schema *formschema.Schema, data map[string]any) (string, bool) {
	values := complianceValues(schema, data)
	if len(values) > 0 {
		required := schema.RequiredComplianceFieldIDs()
		if len(required) > 0 && len(values) < len(required) {
			return "", false
		}
		for _, v := range values {
			if v == "yes" {
				return "yes", true
			}
		}
		return values[0], true
	}

	for _, alias := range formschema.LegacyComplianceAliases() {
		raw, ok := data[alias]
		if !ok {
			continue
		}
		if v, ok := coerceCompliance(raw); ok {
			return v, true
		}
	}
	return "", false
}

// complianceValues collects answered _compliance fields in schema order,
// then any response-only keys in sorted order so the "first field" rule is
// deterministic.
func complianceValues(schema *formschema.Schema, data map[string]any) []string {
	var values []string
	taken := map[string]bool{}
	if schema != nil {
		for _, f := range schema.Fields {
			if !formschema.IsComplianceFieldID(f.FieldID) {
				continue
			}
			if v, ok := complianceValue(data, f.FieldID); ok {
				values = append(values, v)
				taken[f.FieldID] = true
			}
		}
	}
	var extras []string
	for key := range data {
		if taken[key] || !formschema.IsComplianceFieldID(key) {
			continue
		}
		extras = append(extras, key)
	}
	sort.Strings(extras)
	for _, key := range extras {
		if v, ok := complianceValue(data, key); ok {
			values = append(values, v)
		}
	}
	return values
}

func complianceValue(data map[string]any, key string) (string, bool) {
	raw, ok := data[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || !formschema.IsComplianceValue(s) {
		return "", false
	}
	return s, true
}

func coerceCompliance(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		if formschema.IsComplianceValue(v) {
			return v, true
		}
	case bool:
		if v {
			return "yes", true
		}
		return "no", true
	}
	return "", false
}

// LeafStatus derives a leaf indicator's completion state from its answers
// and attachments.
func LeafStatus(schema *formschema.Schema, state ResponseState) Status {
	answer, answered := ComplianceAnswer(schema, state.Data)
	if !answered {
		if len(state.Data) > 0 || len(state.MOVs) > 0 {
			return StatusInProgress
		}
		return StatusNotStarted
	}
	if answer != "yes" {
		return StatusCompleted
	}

	sections := []string{}
	if schema != nil {
		sections = schema.MOVSections()
	}
	if len(sections) == 0 {
		if len(state.MOVs) > 0 {
			return StatusCompleted
		}
		return StatusInProgress
	}
	for _, section := range sections {
		if !sectionSatisfied(section, state.MOVs) {
			return StatusInProgress
		}
	}
	return StatusCompleted
}

// sectionSatisfied accepts either an explicit section tag match or a
// storage-path substring match; both forms exist in stored data.
func sectionSatisfied(section string, movs []MOV) bool {
	for _, m := range movs {
		if m.Section == section || strings.Contains(m.StoragePath, section) {
			return true
		}
	}
	return false
}
