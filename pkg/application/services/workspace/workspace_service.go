// Package workspace implements the per-user build workspace: the
// editable category→component map behind the configurator UI.
package workspace

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/application/services/catalog"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/repositories"
	"github.com/rigforge/rigforge/pkg/domain/services"
	"github.com/shopspring/decimal"
)

// DefaultBuildName is used when a save request names no build
const DefaultBuildName = "My Build"

// Service maintains user workspaces and saved builds
type Service struct {
	workspaces repositories.WorkspaceRepository
	builds     repositories.SavedBuildRepository
	catalog    *catalog.Service
	checker    *services.CompatibilityChecker
}

// NewService creates a workspace service
func NewService(
	workspaces repositories.WorkspaceRepository,
	builds repositories.SavedBuildRepository,
	catalogService *catalog.Service,
	checker *services.CompatibilityChecker,
) *Service {
	return &Service{
		workspaces: workspaces,
		builds:     builds,
		catalog:    catalogService,
		checker:    checker,
	}
}

// Get returns the user's current workspace
func (s *Service) Get(ctx context.Context, userID string) (*entities.Workspace, error) {
	return s.workspaces.Get(ctx, userID)
}

// Add validates a candidate against the current workspace and installs
// it on success. A compatibility rejection is returned as
// *entities.CompatibilityError and the workspace is left untouched.
func (s *Service) Add(ctx context.Context, userID string, category entities.Slug, componentID uuid.UUID) (*entities.Workspace, error) {
	candidate, err := s.catalog.GetComponentByID(ctx, componentID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, fmt.Errorf("component %s: %w", componentID, entities.ErrNotFound)
	}
	if candidate.Category != category {
		return nil, fmt.Errorf("%w: component %s belongs to %s, not %s",
			entities.ErrValidation, componentID, candidate.Category, category)
	}

	workspace, err := s.workspaces.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	expanded, err := s.Expand(ctx, workspace.Components, true)
	if err != nil {
		return nil, err
	}
	if result := s.checker.Check(expanded, category, candidate); !result.OK {
		return nil, &entities.CompatibilityError{Reason: result.Reason}
	}

	workspace.Components[category] = componentID
	if err := s.workspaces.Save(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to save workspace: %w", err)
	}
	return s.workspaces.Get(ctx, userID)
}

// Remove clears one category from the workspace. Removing an absent
// category is a no-op.
func (s *Service) Remove(ctx context.Context, userID string, category entities.Slug) (*entities.Workspace, error) {
	workspace, err := s.workspaces.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, present := workspace.Components[category]; !present {
		return workspace, nil
	}
	delete(workspace.Components, category)
	if err := s.workspaces.Save(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to save workspace: %w", err)
	}
	return s.workspaces.Get(ctx, userID)
}

// Replace overwrites the user's workspace wholesale. Used by the
// auto-builder after its output passed the whole-build check.
func (s *Service) Replace(ctx context.Context, workspace *entities.Workspace) error {
	if err := s.workspaces.Save(ctx, workspace); err != nil {
		return fmt.Errorf("failed to save workspace: %w", err)
	}
	return nil
}

// Reset clears the whole workspace, including any edit-session marker
func (s *Service) Reset(ctx context.Context, userID string) error {
	return s.workspaces.Clear(ctx, userID)
}

// Expand resolves a category→id map to full component records. A
// missing or dangling id becomes a placeholder slot in allowMissing
// mode and is omitted entirely in strict mode.
func (s *Service) Expand(ctx context.Context, components map[entities.Slug]uuid.UUID, allowMissing bool) (entities.ExpandedBuild, error) {
	expanded := make(entities.ExpandedBuild, len(components))
	for slug, id := range components {
		detail, err := s.catalog.GetComponentByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if detail == nil {
			if allowMissing {
				expanded[slug] = &entities.ExpandedPart{}
			}
			continue
		}
		expanded[slug] = &entities.ExpandedPart{Detail: detail}
	}
	return expanded, nil
}

// Summary computes the denormalized totals of an expanded build.
// Compatibility is left unknown; callers run the checker when needed.
func (s *Service) Summary(expanded entities.ExpandedBuild) *entities.BuildSummary {
	summary := &entities.BuildSummary{
		TotalPrice:    decimal.Zero,
		Compatibility: entities.BuildUnknown,
	}
	for _, part := range expanded {
		if part.Placeholder() {
			continue
		}
		summary.TotalPrice = summary.TotalPrice.Add(part.Detail.Price)
		summary.PowerUsage += part.Detail.TDP()
	}
	return summary
}

// ListPickable returns the category's components that are visible and
// compatible with the user's current workspace
func (s *Service) ListPickable(ctx context.Context, userID string, category entities.Slug) ([]*entities.ComponentDetail, error) {
	workspace, err := s.workspaces.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	expanded, err := s.Expand(ctx, workspace.Components, true)
	if err != nil {
		return nil, err
	}

	candidates, err := s.catalog.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	var pickable []*entities.ComponentDetail
	for _, candidate := range candidates {
		if !candidate.Visible() {
			continue
		}
		if result := s.checker.Check(expanded, category, candidate); result.OK {
			pickable = append(pickable, candidate)
		}
	}
	return pickable, nil
}

// Save snapshots the workspace into a named saved build and clears the
// workspace. Placeholder slots are dropped from the snapshot.
func (s *Service) Save(ctx context.Context, userID, name string) (*entities.SavedBuild, error) {
	if name == "" {
		name = DefaultBuildName
	}

	workspace, err := s.workspaces.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(workspace.Components) == 0 {
		return nil, fmt.Errorf("%w: workspace is empty", entities.ErrValidation)
	}

	expanded, err := s.Expand(ctx, workspace.Components, true)
	if err != nil {
		return nil, err
	}

	components := resolvedComponents(workspace.Components, expanded)
	build, err := entities.NewSavedBuild(userID, name, components)
	if err != nil {
		return nil, err
	}

	summary := s.Summary(expanded)
	build.TotalPrice = summary.TotalPrice
	build.PowerUsage = summary.PowerUsage
	build.Compatibility = s.classify(expanded)
	build.Image = entities.PickBuildImage(expanded)

	if err := s.builds.Create(ctx, build); err != nil {
		return nil, fmt.Errorf("failed to create build: %w", err)
	}
	if err := s.workspaces.Clear(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to clear workspace: %w", err)
	}
	return s.builds.GetForUser(ctx, userID, build.ID)
}

// GetSaved returns one of the user's saved builds
func (s *Service) GetSaved(ctx context.Context, userID string, buildID uuid.UUID) (*entities.SavedBuild, error) {
	return s.builds.GetForUser(ctx, userID, buildID)
}

// ListSaved returns the user's saved builds
func (s *Service) ListSaved(ctx context.Context, userID string) ([]*entities.SavedBuild, error) {
	return s.builds.ListForUser(ctx, userID)
}

// Load copies a saved build into the workspace and marks the workspace
// as an edit session of that build
func (s *Service) Load(ctx context.Context, userID string, buildID uuid.UUID) (*entities.Workspace, error) {
	build, err := s.builds.GetForUser(ctx, userID, buildID)
	if err != nil {
		return nil, err
	}

	workspace := entities.NewWorkspace(userID)
	for slug, id := range build.Components {
		workspace.Components[slug] = id
	}
	id := build.ID
	workspace.SourceBuildID = &id

	if err := s.workspaces.Save(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to save workspace: %w", err)
	}
	return s.workspaces.Get(ctx, userID)
}

// UpdateSaved commits the workspace back onto its source saved build.
// The commit is accepted when the workspace carries the build's edit
// marker, or when its category set matches the build's — clients that
// dropped the marker while editing are tolerated. The resulting build
// must pass the whole-build compatibility check.
func (s *Service) UpdateSaved(ctx context.Context, userID string, buildID uuid.UUID, name string) (*entities.SavedBuild, error) {
	build, err := s.builds.GetForUser(ctx, userID, buildID)
	if err != nil {
		return nil, err
	}
	workspace, err := s.workspaces.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	markerMatches := workspace.SourceBuildID != nil && *workspace.SourceBuildID == buildID
	if !markerMatches && !sameCategorySet(workspace.Components, build.Components) {
		return nil, fmt.Errorf("%w: workspace is not editing build %s", entities.ErrValidation, buildID)
	}

	expanded, err := s.Expand(ctx, workspace.Components, true)
	if err != nil {
		return nil, err
	}
	if result := s.checker.CheckWholeBuild(expanded); !result.OK {
		return nil, &entities.CompatibilityError{Reason: result.Reason}
	}

	build.Components = resolvedComponents(workspace.Components, expanded)
	summary := s.Summary(expanded)
	build.TotalPrice = summary.TotalPrice
	build.PowerUsage = summary.PowerUsage
	build.Compatibility = s.classify(expanded)
	build.Image = entities.PickBuildImage(expanded)
	if name != "" {
		build.Name = name
	}

	if err := s.builds.Update(ctx, build); err != nil {
		return nil, fmt.Errorf("failed to update build: %w", err)
	}
	if err := s.workspaces.Clear(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to clear workspace: %w", err)
	}
	return s.builds.GetForUser(ctx, userID, buildID)
}

// Duplicate deep-copies a saved build under a derived unique name
func (s *Service) Duplicate(ctx context.Context, userID string, buildID uuid.UUID) (*entities.SavedBuild, error) {
	original, err := s.builds.GetForUser(ctx, userID, buildID)
	if err != nil {
		return nil, err
	}
	existing, err := s.builds.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, build := range existing {
		taken[build.Name] = true
	}

	copied := original.Clone()
	copied.ID = uuid.New()
	copied.Name = copyName(original.Name, taken)
	copied.IsSaved = true

	if err := s.builds.Create(ctx, copied); err != nil {
		return nil, fmt.Errorf("failed to create duplicate: %w", err)
	}
	return s.builds.GetForUser(ctx, userID, copied.ID)
}

// Delete soft-deletes a saved build so order references stay valid
func (s *Service) Delete(ctx context.Context, userID string, buildID uuid.UUID) error {
	return s.builds.SoftDelete(ctx, userID, buildID)
}

// classify derives the persisted compatibility state of an expanded build
func (s *Service) classify(expanded entities.ExpandedBuild) entities.CompatibilityState {
	if result := s.checker.CheckWholeBuild(expanded); !result.OK {
		return entities.BuildInvalid
	}
	for _, slug := range entities.RequiredBuildSlugs {
		part, present := expanded[slug]
		if !present || part.Placeholder() {
			return entities.BuildIncomplete
		}
	}
	return entities.BuildOK
}

// resolvedComponents filters a component map down to slots that expanded
// to real catalog rows
func resolvedComponents(components map[entities.Slug]uuid.UUID, expanded entities.ExpandedBuild) map[entities.Slug]uuid.UUID {
	resolved := make(map[entities.Slug]uuid.UUID, len(components))
	for slug, id := range components {
		if part, present := expanded[slug]; present && !part.Placeholder() {
			resolved[slug] = id
		}
	}
	return resolved
}

func sameCategorySet(a map[entities.Slug]uuid.UUID, b map[entities.Slug]uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	for slug := range a {
		if _, present := b[slug]; !present {
			return false
		}
	}
	return true
}

// numberedName matches names that already carry a copy suffix, e.g.
// "Gaming Rig (2)". Copies of those append instead of renumbering:
// "Gaming Rig (2)(1)".
var numberedName = regexp.MustCompile(`^.* \(\d+\)$`)

func copyName(original string, taken map[string]bool) string {
	format := original + " (%d)"
	if numberedName.MatchString(original) {
		format = original + "(%d)"
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf(format, n)
		if !taken[candidate] {
			return candidate
		}
	}
}
