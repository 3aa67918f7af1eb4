package formschema

import (
	"encoding/json"
	"fmt"
)

// Stored form schemas come in two dialects: the fields/sections dialect and
// the legacy flat compliance shape (one yes/no/na question per indicator).
// Parse normalizes both into the canonical Schema at the ingestion boundary
// so nothing downstream branches on shape.

type rawSchema struct {
	Fields   []Field      `json:"fields"`
	Sections []rawSection `json:"sections"`

	// legacy flat shape
	FieldID          string `json:"field_id"`
	Label            string `json:"label"`
	MOVUploadSection string `json:"mov_upload_section"`
}

type rawSection struct {
	Title            string  `json:"title"`
	MOVUploadSection string  `json:"mov_upload_section"`
	Fields           []Field `json:"fields"`
}

// Parse decodes a stored schema of either dialect into the canonical form.
// An empty or null payload yields an empty schema.
func Parse(raw []byte) (*Schema, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return &Schema{}, nil
	}
	var rs rawSchema
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("parse form schema: %w", err)
	}

	if rs.Fields != nil || rs.Sections != nil {
		s := &Schema{Fields: append([]Field{}, rs.Fields...)}
		for _, sec := range rs.Sections {
			for _, f := range sec.Fields {
				// A section-level MOV tag applies to fields that do not
				// declare their own.
				if f.MOVUploadSection == "" {
					f.MOVUploadSection = sec.MOVUploadSection
				}
				s.Fields = append(s.Fields, f)
			}
		}
		for i := range s.Fields {
			if s.Fields[i].Type == "" {
				s.Fields[i].Type = FieldTextInput
			}
		}
		return s, nil
	}

	// Legacy flat dialect: a single required yes/no/na question.
	fieldID := rs.FieldID
	if fieldID == "" {
		fieldID = "compliance"
	}
	label := rs.Label
	if label == "" {
		label = "Is the barangay compliant?"
	}
	return &Schema{Fields: []Field{{
		FieldID:          fieldID,
		Type:             FieldRadioButton,
		Label:            label,
		Required:         true,
		Options:          []string{"yes", "no", "na"},
		MOVUploadSection: rs.MOVUploadSection,
	}}}, nil
}

// Encode serializes the canonical schema for storage. Schemas always round
// trip through the canonical dialect; the legacy shape is read-only.
func Encode(s *Schema) ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s)
}
