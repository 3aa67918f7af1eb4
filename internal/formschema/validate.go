package formschema

import (
	"fmt"
	"strings"
	"time"
)

type Issue struct {
	FieldID  string `json:"field_id,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // error | warning
}

// ValidateSchema re-checks the whole schema. Errors block completion
// counting; warnings do not block editing.
func ValidateSchema(s *Schema) []Issue {
	var issues []Issue
	seen := map[string]bool{}
	for _, f := range s.Fields {
		if f.FieldID == "" {
			issues = append(issues, Issue{Message: "field without field_id", Severity: "error"})
			continue
		}
		if seen[f.FieldID] {
			issues = append(issues, Issue{FieldID: f.FieldID, Message: "duplicate field_id", Severity: "error"})
		}
		seen[f.FieldID] = true
		if !f.Type.Valid() {
			issues = append(issues, Issue{FieldID: f.FieldID, Message: fmt.Sprintf("unknown field type %q", f.Type), Severity: "error"})
		}
		if strings.TrimSpace(f.Label) == "" {
			issues = append(issues, Issue{FieldID: f.FieldID, Message: "field has no label", Severity: "warning"})
		}
		switch f.Type {
		case FieldCheckboxGroup, FieldRadioButton:
			if len(f.Options) == 0 {
				issues = append(issues, Issue{FieldID: f.FieldID, Message: "choice field has no options", Severity: "error"})
			}
		case FieldNumberInput:
			if f.MinValue != nil && f.MaxValue != nil && *f.MinValue > *f.MaxValue {
				issues = append(issues, Issue{FieldID: f.FieldID, Message: "min_value greater than max_value", Severity: "error"})
			}
		}
		if f.MOVUploadSection != "" && !IsComplianceFieldID(f.FieldID) && f.Type != FieldFileUpload {
			issues = append(issues, Issue{FieldID: f.FieldID, Message: "mov_upload_section on a non-compliance field", Severity: "warning"})
		}
	}
	return issues
}

// ValidateAnswer checks one submitted value against the field's
// constraints. A nil value on an optional field is fine.
func ValidateAnswer(f Field, value any) error {
	if value == nil || value == "" {
		if f.Required {
			return fmt.Errorf("%s: value is required", f.FieldID)
		}
		return nil
	}

	switch f.Type {
	case FieldRadioButton:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: expected a string option", f.FieldID)
		}
		if !contains(f.Options, s) {
			return fmt.Errorf("%s: %q is not one of the options", f.FieldID, s)
		}
	case FieldCheckboxGroup:
		items, ok := toStringSlice(value)
		if !ok {
			return fmt.Errorf("%s: expected a list of options", f.FieldID)
		}
		for _, item := range items {
			if !contains(f.Options, item) {
				return fmt.Errorf("%s: %q is not one of the options", f.FieldID, item)
			}
		}
	case FieldNumberInput:
		n, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("%s: expected a number", f.FieldID)
		}
		if f.MinValue != nil && n < *f.MinValue {
			return fmt.Errorf("%s: %v is below the minimum %v", f.FieldID, n, *f.MinValue)
		}
		if f.MaxValue != nil && n > *f.MaxValue {
			return fmt.Errorf("%s: %v is above the maximum %v", f.FieldID, n, *f.MaxValue)
		}
	case FieldTextInput, FieldTextArea:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: expected text", f.FieldID)
		}
		if f.MaxLength > 0 && len([]rune(s)) > f.MaxLength {
			return fmt.Errorf("%s: text exceeds max length %d", f.FieldID, f.MaxLength)
		}
	case FieldDatePicker:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: expected a date string", f.FieldID)
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return fmt.Errorf("%s: %q is not a valid date", f.FieldID, s)
		}
	}
	return nil
}

// ValidateUpload checks file metadata against a file_upload field's
// constraints.
func ValidateUpload(f Field, filename string, sizeBytes int64) error {
	if len(f.AllowedFileTypes) > 0 {
		ext := strings.ToLower(strings.TrimPrefix(fileExt(filename), "."))
		ok := false
		for _, allowed := range f.AllowedFileTypes {
			if strings.ToLower(strings.TrimPrefix(allowed, ".")) == ext {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%s: file type %q not allowed", f.FieldID, ext)
		}
	}
	if f.MaxFileSizeMB > 0 && sizeBytes > int64(f.MaxFileSizeMB)*1024*1024 {
		return fmt.Errorf("%s: file exceeds %d MB", f.FieldID, f.MaxFileSizeMB)
	}
	return nil
}

func fileExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func toStringSlice(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
