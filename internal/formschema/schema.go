package formschema

// FieldType enumerates the supported form controls.
type FieldType string

const (
	FieldCheckboxGroup FieldType = "checkbox_group"
	FieldRadioButton   FieldType = "radio_button"
	FieldNumberInput   FieldType = "number_input"
	FieldTextInput     FieldType = "text_input"
	FieldTextArea      FieldType = "text_area"
	FieldDatePicker    FieldType = "date_picker"
	FieldFileUpload    FieldType = "file_upload"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldCheckboxGroup, FieldRadioButton, FieldNumberInput,
		FieldTextInput, FieldTextArea, FieldDatePicker, FieldFileUpload:
		return true
	}
	return false
}

// Field is one entry of a form schema. The type-specific constraint
// columns are optional and only meaningful for the matching FieldType.
type Field struct {
	FieldID  string    `json:"field_id"`
	Type     FieldType `json:"type"`
	Label    string    `json:"label"`
	Required bool      `json:"required"`

	// checkbox_group / radio_button
	Options []string `json:"options,omitempty"`

	// number_input
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`

	// text_input / text_area
	MaxLength int `json:"max_length,omitempty"`
	Rows      int `json:"rows,omitempty"`

	// file_upload
	AllowedFileTypes []string `json:"allowed_file_types,omitempty"`
	MaxFileSizeMB    int      `json:"max_file_size_mb,omitempty"`

	// Links a compliance-style answer field to the attachment section that
	// must hold at least one MOV when the answer is "yes".
	MOVUploadSection string `json:"mov_upload_section,omitempty"`
}

// Schema is the canonical in-memory form description. Both stored dialects
// (legacy flat compliance schema and the fields/sections dialect) normalize
// into this shape at load time; nothing downstream branches on dialect.
type Schema struct {
	Fields []Field `json:"fields"`
}

func (s *Schema) Field(fieldID string) *Field {
	for i := range s.Fields {
		if s.Fields[i].FieldID == fieldID {
			return &s.Fields[i]
		}
	}
	return nil
}

// RequiredComplianceFieldIDs returns the declared required fields whose id
// carries the compliance suffix. The completion engine gates the
// "compliance answered" state on this count.
func (s *Schema) RequiredComplianceFieldIDs() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required && IsComplianceFieldID(f.FieldID) {
			out = append(out, f.FieldID)
		}
	}
	return out
}

// MOVSections returns the distinct mov_upload_section tags declared on the
// schema, in first-seen field order.
func (s *Schema) MOVSections() []string {
	var out []string
	seen := map[string]bool{}
	for _, f := range s.Fields {
		sec := f.MOVUploadSection
		if sec == "" || seen[sec] {
			continue
		}
		seen[sec] = true
		out = append(out, sec)
	}
	return out
}
