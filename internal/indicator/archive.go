package indicator

import "encoding/json"

const archivedSchemasKey = "archived_schemas"

// AttachChild makes child a child of parent, enforcing the data-layer
// invariant that only leaves hold schemas: if the parent currently carries
// a form or calculation schema it is archived into the parent's metadata
// before the child is linked. The archive is recoverable via
// RestoreArchivedSchemas. Callers surface their own confirmation UX; the
// archive happens here regardless so programmatic imports stay consistent.
func AttachChild(parent, child *Node) {
	if parent.IsLeaf() && parent.HasSchemas() {
		ArchiveSchemas(parent)
	}
	child.ParentID = parent.ID
	parent.Children = append(parent.Children, child)
	sortSiblings(parent.Children)
}

func ArchiveSchemas(n *Node) {
	if !n.HasSchemas() {
		return
	}
	if n.Metadata == nil {
		n.Metadata = map[string]any{}
	}
	archived := map[string]any{}
	if len(n.FormSchema) > 0 {
		archived["form_schema"] = json.RawMessage(n.FormSchema)
	}
	if len(n.CalculationSchema) > 0 {
		archived["calculation_schema"] = json.RawMessage(n.CalculationSchema)
	}
	n.Metadata[archivedSchemasKey] = archived
	n.FormSchema = nil
	n.CalculationSchema = nil
}

// RestoreArchivedSchemas moves archived schemas back onto the node. It only
// applies to leaves; restoring onto a parent would re-break the invariant.
func RestoreArchivedSchemas(n *Node) bool {
	if !n.IsLeaf() || n.Metadata == nil {
		return false
	}
	raw, ok := n.Metadata[archivedSchemasKey]
	if !ok {
		return false
	}
	archived, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	if fs, ok := archived["form_schema"]; ok {
		n.FormSchema = toRaw(fs)
	}
	if cs, ok := archived["calculation_schema"]; ok {
		n.CalculationSchema = toRaw(cs)
	}
	delete(n.Metadata, archivedSchemasKey)
	return true
}

func toRaw(v any) json.RawMessage {
	switch t := v.(type) {
	case json.RawMessage:
		return t
	case []byte:
		return json.RawMessage(t)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return b
	}
}
