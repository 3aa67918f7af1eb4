package formschema

import (
	"fmt"
	"strings"
)

// Builder edits a schema as an ordered field list. All operations are pure
// list manipulations; a field never silently overwrites another's id.
type Builder struct {
	schema Schema
}

func NewBuilder(base *Schema) *Builder {
	b := &Builder{}
	if base != nil {
		b.schema.Fields = append([]Field{}, base.Fields...)
	}
	return b
}

func (b *Builder) Schema() *Schema {
	out := Schema{Fields: append([]Field{}, b.schema.Fields...)}
	return &out
}

// AddField appends a field. A missing field id is generated from the field
// type; a supplied id that collides with an existing one is rejected.
func (b *Builder) AddField(f Field) (Field, error) {
	if !f.Type.Valid() {
		return Field{}, fmt.Errorf("unknown field type %q", f.Type)
	}
	if f.FieldID == "" {
		f.FieldID = b.GenerateFieldID(f.Type)
	} else if b.schema.Field(f.FieldID) != nil {
		return Field{}, fmt.Errorf("field id %q already exists", f.FieldID)
	}
	b.schema.Fields = append(b.schema.Fields, f)
	return f, nil
}

func (b *Builder) RemoveField(fieldID string) bool {
	for i, f := range b.schema.Fields {
		if f.FieldID == fieldID {
			b.schema.Fields = append(b.schema.Fields[:i], b.schema.Fields[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Builder) UpdateField(fieldID string, update Field) error {
	existing := b.schema.Field(fieldID)
	if existing == nil {
		return fmt.Errorf("field %q not found", fieldID)
	}
	if update.FieldID != "" && update.FieldID != fieldID && b.schema.Field(update.FieldID) != nil {
		return fmt.Errorf("field id %q already exists", update.FieldID)
	}
	if update.FieldID == "" {
		update.FieldID = fieldID
	}
	*existing = update
	return nil
}

// MoveField shifts a field to the given index, clamped to list bounds.
func (b *Builder) MoveField(fieldID string, to int) error {
	from := -1
	for i, f := range b.schema.Fields {
		if f.FieldID == fieldID {
			from = i
			break
		}
	}
	if from == -1 {
		return fmt.Errorf("field %q not found", fieldID)
	}
	if to < 0 {
		to = 0
	}
	if to >= len(b.schema.Fields) {
		to = len(b.schema.Fields) - 1
	}
	f := b.schema.Fields[from]
	rest := append(b.schema.Fields[:from], b.schema.Fields[from+1:]...)
	b.schema.Fields = append(rest[:to], append([]Field{f}, rest[to:]...)...)
	return nil
}

// GenerateFieldID derives a unique id from the field type, adding a numeric
// suffix to disambiguate against existing ids.
func (b *Builder) GenerateFieldID(t FieldType) string {
	base := strings.ReplaceAll(string(t), "-", "_")
	if b.schema.Field(base) == nil {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if b.schema.Field(candidate) == nil {
			return candidate
		}
	}
}
