package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dilg-vantage/vantage-backend/internal/calcschema"
	"github.com/dilg-vantage/vantage-backend/internal/formschema"
	"github.com/dilg-vantage/vantage-backend/internal/indicator"
	"github.com/dilg-vantage/vantage-backend/internal/platform/apierr"
	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/repos"
	"github.com/dilg-vantage/vantage-backend/internal/types"
)

type CreateIndicatorInput struct {
	ParentID         *uuid.UUID
	Name             string
	Description      string
	IsAutoCalculable bool
	IsProfilingOnly  bool
}

type UpdateIndicatorInput struct {
	Name             *string
	Description      *string
	IsAutoCalculable *bool
	IsProfilingOnly  *bool
}

// IndicatorService manages the indicator tree: structure, dotted-decimal
// codes, activation, and the schemas attached to leaves. Structural edits
// recalculate codes for the whole tree and persist only the rows that
// changed.
type IndicatorService interface {
	GetTree(ctx context.Context, includeInactive bool) ([]*indicator.Node, error)
	GetNode(ctx context.Context, id uuid.UUID) (*indicator.Node, []string, error)
	Create(ctx context.Context, input CreateIndicatorInput) (*types.Indicator, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateIndicatorInput) (*types.Indicator, error)
	Move(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID, position int) error
	Reorder(ctx context.Context, parentID *uuid.UUID, orderedIDs []uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	AttachFormSchema(ctx context.Context, id uuid.UUID, raw json.RawMessage) error
	AttachCalculationSchema(ctx context.Context, id uuid.UUID, raw json.RawMessage) error
	RestoreArchivedSchemas(ctx context.Context, id uuid.UUID) error
	ValidateTree(ctx context.Context) ([]indicator.ValidationError, error)
}

type indicatorService struct {
	db   *gorm.DB
	repo repos.IndicatorRepo
	log  *logger.Logger
}

func NewIndicatorService(db *gorm.DB, repo repos.IndicatorRepo, log *logger.Logger) IndicatorService {
	return &indicatorService{db: db, repo: repo, log: log.With("service", "IndicatorService")}
}

func (s *indicatorService) GetTree(ctx context.Context, includeInactive bool) ([]*indicator.Node, error) {
	state, _, err := s.loadState(ctx, nil)
	if err != nil {
		return nil, err
	}
	roots := indicator.BuildTreeFromFlat(state)
	if includeInactive {
		return roots, nil
	}
	return pruneInactive(roots), nil
}

func (s *indicatorService) GetNode(ctx context.Context, id uuid.UUID) (*indicator.Node, []string, error) {
	state, _, err := s.loadState(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	n, ok := state.Nodes[id.String()]
	if !ok {
		return nil, nil, apierr.NotFound("indicator_not_found", fmt.Errorf("indicator %s not found", id))
	}
	crumbs := indicator.GetBreadcrumbs(state.Nodes, id.String())
	return n, crumbs, nil
}

func (s *indicatorService) Create(ctx context.Context, input CreateIndicatorInput) (*types.Indicator, error) {
	if input.Name == "" {
		return nil, apierr.BadRequest("indicator_name_required", fmt.Errorf("indicator name must not be empty"))
	}

	var created *types.Indicator
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, rowsByID, err := s.loadState(ctx, tx)
		if err != nil {
			return err
		}

		row := &types.Indicator{
			ID:               uuid.New(),
			ParentID:         input.ParentID,
			Name:             input.Name,
			Description:      input.Description,
			IsActive:         true,
			IsAutoCalculable: input.IsAutoCalculable,
			IsProfilingOnly:  input.IsProfilingOnly,
		}

		siblingParent := ""
		if input.ParentID != nil {
			pid := input.ParentID.String()
			parent, ok := state.Nodes[pid]
			if !ok {
				return apierr.NotFound("parent_not_found", fmt.Errorf("parent %s not found", pid))
			}
			// A leaf gaining its first child loses its schemas to the
			// metadata archive.
			if parent.IsLeaf() && parent.HasSchemas() {
				indicator.ArchiveSchemas(parent)
				if err := s.applyAndSave(ctx, tx, rowsByID[pid], parent); err != nil {
					return err
				}
			}
			siblingParent = pid
		}
		// New siblings append after the current last one. Existing orders
		// are 1-based after a code recalculation, so anything at or below
		// the sibling count would tie and shuffle established codes.
		row.Order = nextSiblingOrder(siblingsOf(state, siblingParent))

		if _, err := s.repo.Create(ctx, tx, []*types.Indicator{row}); err != nil {
			return err
		}

		state.Nodes[row.ID.String()] = nodeFromRow(row)
		if siblingParent == "" {
			state.RootIDs = append(state.RootIDs, row.ID.String())
		}
		rowsByID[row.ID.String()] = row
		if err := s.recalcAndPersist(ctx, tx, state, rowsByID); err != nil {
			return err
		}
		created = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("indicator created", "indicator_id", created.ID, "code", created.Code)
	return created, nil
}

func (s *indicatorService) Update(ctx context.Context, id uuid.UUID, input UpdateIndicatorInput) (*types.Indicator, error) {
	row, err := s.repo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.NotFound("indicator_not_found", err)
	}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, apierr.BadRequest("indicator_name_required", fmt.Errorf("indicator name must not be empty"))
		}
		row.Name = *input.Name
	}
	if input.Description != nil {
		row.Description = *input.Description
	}
	if input.IsAutoCalculable != nil {
		row.IsAutoCalculable = *input.IsAutoCalculable
	}
	if input.IsProfilingOnly != nil {
		row.IsProfilingOnly = *input.IsProfilingOnly
	}
	if err := s.repo.Save(ctx, nil, row); err != nil {
		return nil, err
	}
	return row, nil
}

// Move reparents a node. The new parent must not be the node itself or any
// of its descendants; position is clamped into the sibling range.
func (s *indicatorService) Move(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID, position int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, rowsByID, err := s.loadState(ctx, tx)
		if err != nil {
			return err
		}
		nodeID := id.String()
		node, ok := state.Nodes[nodeID]
		if !ok {
			return apierr.NotFound("indicator_not_found", fmt.Errorf("indicator %s not found", nodeID))
		}

		newPID := ""
		if newParentID != nil {
			newPID = newParentID.String()
			if newPID == nodeID {
				return apierr.Conflict("invalid_move", fmt.Errorf("indicator cannot be its own parent"))
			}
			parent, ok := state.Nodes[newPID]
			if !ok {
				return apierr.NotFound("parent_not_found", fmt.Errorf("parent %s not found", newPID))
			}
			if indicator.IsAncestor(state.Nodes, nodeID, newPID) {
				return apierr.Conflict("invalid_move", fmt.Errorf("cannot move an indicator under its own descendant"))
			}
			if parent.IsLeaf() && parent.HasSchemas() {
				indicator.ArchiveSchemas(parent)
				if err := s.applyAndSave(ctx, tx, rowsByID[newPID], parent); err != nil {
					return err
				}
			}
		}

		oldPID := node.ParentID
		node.ParentID = newPID
		if oldPID == "" || newPID == "" {
			state.RootIDs = rebuildRootIDs(state)
		}

		renumberSiblings(state, oldPID)
		placeAmongSiblings(state, node, newPID, position)

		return s.recalcAndPersist(ctx, tx, state, rowsByID)
	})
}

// Reorder replaces the sibling order under one parent. The id list must be
// exactly the current children of that parent.
func (s *indicatorService) Reorder(ctx context.Context, parentID *uuid.UUID, orderedIDs []uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, rowsByID, err := s.loadState(ctx, tx)
		if err != nil {
			return err
		}
		pid := ""
		if parentID != nil {
			pid = parentID.String()
		}
		current := indicator.FindChildren(state.Nodes, pid)
		if pid == "" {
			current = nil
			for _, rid := range state.RootIDs {
				if n, ok := state.Nodes[rid]; ok {
					current = append(current, n)
				}
			}
		}
		if len(orderedIDs) != len(current) {
			return apierr.BadRequest("invalid_reorder", fmt.Errorf("expected %d sibling ids, got %d", len(current), len(orderedIDs)))
		}
		currentSet := map[string]bool{}
		for _, c := range current {
			currentSet[c.ID] = true
		}
		for i, oid := range orderedIDs {
			sid := oid.String()
			if !currentSet[sid] {
				return apierr.BadRequest("invalid_reorder", fmt.Errorf("indicator %s is not a child of this parent", sid))
			}
			state.Nodes[sid].Order = i
		}
		if pid == "" {
			state.RootIDs = rebuildRootIDs(state)
		}
		return s.recalcAndPersist(ctx, tx, state, rowsByID)
	})
}

// SetActive toggles a node and its whole subtree. Inactive leaves drop out
// of completion totals.
func (s *indicatorService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, rowsByID, err := s.loadState(ctx, tx)
		if err != nil {
			return err
		}
		nodeID := id.String()
		node, ok := state.Nodes[nodeID]
		if !ok {
			return apierr.NotFound("indicator_not_found", fmt.Errorf("indicator %s not found", nodeID))
		}
		targets := append([]*indicator.Node{node}, indicator.FindDescendants(state.Nodes, nodeID)...)
		var dirty []*types.Indicator
		for _, t := range targets {
			if t.IsActive == active {
				continue
			}
			t.IsActive = active
			row := rowsByID[t.ID]
			row.IsActive = active
			dirty = append(dirty, row)
		}
		return s.repo.SaveBatch(ctx, tx, dirty)
	})
}

// Delete soft-deletes a node and all of its descendants, then renumbers and
// recodes the survivors.
func (s *indicatorService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, rowsByID, err := s.loadState(ctx, tx)
		if err != nil {
			return err
		}
		nodeID := id.String()
		node, ok := state.Nodes[nodeID]
		if !ok {
			return apierr.NotFound("indicator_not_found", fmt.Errorf("indicator %s not found", nodeID))
		}
		doomed := []uuid.UUID{id}
		for _, d := range indicator.FindDescendants(state.Nodes, nodeID) {
			did, err := uuid.Parse(d.ID)
			if err != nil {
				return err
			}
			doomed = append(doomed, did)
			delete(state.Nodes, d.ID)
			delete(rowsByID, d.ID)
		}
		parentID := node.ParentID
		delete(state.Nodes, nodeID)
		delete(rowsByID, nodeID)
		state.RootIDs = rebuildRootIDs(state)

		if err := s.repo.SoftDeleteByIDs(ctx, tx, doomed); err != nil {
			return err
		}
		renumberSiblings(state, parentID)
		return s.recalcAndPersist(ctx, tx, state, rowsByID)
	})
}

func (s *indicatorService) AttachFormSchema(ctx context.Context, id uuid.UUID, raw json.RawMessage) error {
	schema, err := formschema.Parse(raw)
	if err != nil {
		return apierr.BadRequest("invalid_form_schema", err)
	}
	for _, issue := range formschema.ValidateSchema(schema) {
		if issue.Severity == "error" {
			return apierr.BadRequest("invalid_form_schema", fmt.Errorf("field %s: %s", issue.FieldID, issue.Message))
		}
	}
	return s.attachSchema(ctx, id, func(row *types.Indicator) {
		row.FormSchema = []byte(raw)
	})
}

func (s *indicatorService) AttachCalculationSchema(ctx context.Context, id uuid.UUID, raw json.RawMessage) error {
	if _, err := calcschema.Parse(raw); err != nil {
		return apierr.BadRequest("invalid_calculation_schema", err)
	}
	return s.attachSchema(ctx, id, func(row *types.Indicator) {
		row.CalculationSchema = []byte(raw)
	})
}

// attachSchema enforces the leaf-only invariant before applying the write.
func (s *indicatorService) attachSchema(ctx context.Context, id uuid.UUID, apply func(row *types.Indicator)) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.repo.GetByID(ctx, tx, id)
		if err != nil {
			return apierr.NotFound("indicator_not_found", err)
		}
		children, err := s.repo.GetChildren(ctx, tx, id)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return apierr.Conflict("not_a_leaf", fmt.Errorf("only leaf indicators may carry schemas"))
		}
		apply(row)
		return s.repo.Save(ctx, tx, row)
	})
}

func (s *indicatorService) RestoreArchivedSchemas(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, rowsByID, err := s.loadState(ctx, tx)
		if err != nil {
			return err
		}
		nodeID := id.String()
		node, ok := state.Nodes[nodeID]
		if !ok {
			return apierr.NotFound("indicator_not_found", fmt.Errorf("indicator %s not found", nodeID))
		}
		if len(indicator.FindChildren(state.Nodes, nodeID)) > 0 {
			return apierr.Conflict("not_a_leaf", fmt.Errorf("archived schemas can only be restored onto a leaf"))
		}
		if !indicator.RestoreArchivedSchemas(node) {
			return apierr.Conflict("nothing_archived", fmt.Errorf("indicator %s has no archived schemas", nodeID))
		}
		return s.applyAndSave(ctx, tx, rowsByID[nodeID], node)
	})
}

func (s *indicatorService) ValidateTree(ctx context.Context) ([]indicator.ValidationError, error) {
	state, _, err := s.loadState(ctx, nil)
	if err != nil {
		return nil, err
	}
	return indicator.ValidateTree(state), nil
}

// loadState reads every indicator row and mirrors it into the flat builder
// state. Nodes are keyed by the row uuid as a string.
func (s *indicatorService) loadState(ctx context.Context, tx *gorm.DB) (indicator.FlatState, map[string]*types.Indicator, error) {
	rows, err := s.repo.GetAll(ctx, tx)
	if err != nil {
		return indicator.FlatState{}, nil, err
	}
	state := indicator.FlatState{Nodes: map[string]*indicator.Node{}}
	rowsByID := make(map[string]*types.Indicator, len(rows))
	for _, row := range rows {
		n := nodeFromRow(row)
		state.Nodes[n.ID] = n
		rowsByID[n.ID] = row
		if n.ParentID == "" {
			state.RootIDs = append(state.RootIDs, n.ID)
		}
	}
	return state, rowsByID, nil
}

// recalcAndPersist rebuilds the tree, recomputes dotted-decimal codes, and
// saves only the rows whose code or order moved.
func (s *indicatorService) recalcAndPersist(ctx context.Context, tx *gorm.DB, state indicator.FlatState, rowsByID map[string]*types.Indicator) error {
	indicator.RecalculateFlatCodes(state)
	var dirty []*types.Indicator
	for id, n := range state.Nodes {
		row, ok := rowsByID[id]
		if !ok {
			continue
		}
		changed := false
		if row.Code != n.Code {
			row.Code = n.Code
			changed = true
		}
		if row.Order != n.Order {
			row.Order = n.Order
			changed = true
		}
		if parentChanged(row.ParentID, n.ParentID) {
			row.ParentID = parseParent(n.ParentID)
			changed = true
		}
		if changed {
			dirty = append(dirty, row)
		}
	}
	return s.repo.SaveBatch(ctx, tx, dirty)
}

func (s *indicatorService) applyAndSave(ctx context.Context, tx *gorm.DB, row *types.Indicator, n *indicator.Node) error {
	applyNodeToRow(n, row)
	return s.repo.Save(ctx, tx, row)
}

func nodeFromRow(row *types.Indicator) *indicator.Node {
	n := &indicator.Node{
		ID:                row.ID.String(),
		Order:             row.Order,
		Code:              row.Code,
		Name:              row.Name,
		Description:       row.Description,
		IsActive:          row.IsActive,
		IsAutoCalculable:  row.IsAutoCalculable,
		IsProfilingOnly:   row.IsProfilingOnly,
		FormSchema:        json.RawMessage(row.FormSchema),
		CalculationSchema: json.RawMessage(row.CalculationSchema),
	}
	if row.ParentID != nil {
		n.ParentID = row.ParentID.String()
	}
	if len(row.Metadata) > 0 {
		_ = json.Unmarshal(row.Metadata, &n.Metadata)
	}
	return n
}

func applyNodeToRow(n *indicator.Node, row *types.Indicator) {
	row.Order = n.Order
	row.Code = n.Code
	row.Name = n.Name
	row.Description = n.Description
	row.IsActive = n.IsActive
	row.FormSchema = []byte(n.FormSchema)
	row.CalculationSchema = []byte(n.CalculationSchema)
	row.ParentID = parseParent(n.ParentID)
	if n.Metadata == nil {
		row.Metadata = nil
		return
	}
	if b, err := json.Marshal(n.Metadata); err == nil {
		row.Metadata = b
	}
}

func parseParent(id string) *uuid.UUID {
	if id == "" {
		return nil
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	return &parsed
}

func parentChanged(current *uuid.UUID, next string) bool {
	if current == nil {
		return next != ""
	}
	return current.String() != next
}

func siblingsOf(state indicator.FlatState, parentID string) []*indicator.Node {
	if parentID != "" {
		return indicator.FindChildren(state.Nodes, parentID)
	}
	var roots []*indicator.Node
	for _, rid := range state.RootIDs {
		if n, ok := state.Nodes[rid]; ok {
			roots = append(roots, n)
		}
	}
	return roots
}

func nextSiblingOrder(siblings []*indicator.Node) int {
	max := 0
	for _, n := range siblings {
		if n.Order > max {
			max = n.Order
		}
	}
	return max + 1
}

func rebuildRootIDs(state indicator.FlatState) []string {
	var roots []*indicator.Node
	for _, n := range state.Nodes {
		if n.ParentID == "" {
			roots = append(roots, n)
		}
	}
	out := make([]string, 0, len(roots))
	for _, n := range sortedSiblings(roots) {
		out = append(out, n.ID)
	}
	return out
}

func sortedSiblings(nodes []*indicator.Node) []*indicator.Node {
	out := append([]*indicator.Node{}, nodes...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func renumberSiblings(state indicator.FlatState, parentID string) {
	var siblings []*indicator.Node
	if parentID == "" {
		for _, rid := range state.RootIDs {
			if n, ok := state.Nodes[rid]; ok {
				siblings = append(siblings, n)
			}
		}
		siblings = sortedSiblings(siblings)
	} else {
		siblings = indicator.FindChildren(state.Nodes, parentID)
	}
	for i, n := range siblings {
		n.Order = i
	}
}

// placeAmongSiblings inserts node at the clamped position among the
// children of parentID and renumbers the whole sibling group.
func placeAmongSiblings(state indicator.FlatState, node *indicator.Node, parentID string, position int) {
	var siblings []*indicator.Node
	if parentID == "" {
		for _, rid := range state.RootIDs {
			if n, ok := state.Nodes[rid]; ok && n.ID != node.ID {
				siblings = append(siblings, n)
			}
		}
		siblings = sortedSiblings(siblings)
	} else {
		for _, c := range indicator.FindChildren(state.Nodes, parentID) {
			if c.ID != node.ID {
				siblings = append(siblings, c)
			}
		}
	}
	if position < 0 {
		position = 0
	}
	if position > len(siblings) {
		position = len(siblings)
	}
	ordered := make([]*indicator.Node, 0, len(siblings)+1)
	ordered = append(ordered, siblings[:position]...)
	ordered = append(ordered, node)
	ordered = append(ordered, siblings[position:]...)
	for i, n := range ordered {
		n.Order = i
	}
	if parentID == "" {
		state.RootIDs = rebuildRootIDs(state)
	}
}

// pruneInactive drops inactive subtrees from a built tree for BLGU-facing
// reads. Admin reads pass includeInactive to see everything.
func pruneInactive(roots []*indicator.Node) []*indicator.Node {
	var out []*indicator.Node
	for _, r := range roots {
		if !r.IsActive {
			continue
		}
		clone := *r
		clone.Children = pruneInactive(r.Children)
		out = append(out, &clone)
	}
	return out
}
