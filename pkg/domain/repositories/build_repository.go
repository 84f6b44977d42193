package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/domain/entities"
)

// WorkspaceRepository stores each user's transient build workspace.
// One row per user; the row is created implicitly on first save.
type WorkspaceRepository interface {
	// Get returns the user's workspace, or an empty one if none exists.
	Get(ctx context.Context, userID string) (*entities.Workspace, error)
	// Save upserts the workspace and refreshes its UpdatedAt.
	Save(ctx context.Context, workspace *entities.Workspace) error
	// Clear removes the user's workspace. Clearing an absent workspace
	// is not an error.
	Clear(ctx context.Context, userID string) error
}

// SavedBuildRepository stores named build snapshots. Listing and
// owner-scoped reads see only rows with IsSaved=true; Get resolves
// soft-deleted rows too so order history can still join them.
type SavedBuildRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*entities.SavedBuild, error)
	GetForUser(ctx context.Context, userID string, id uuid.UUID) (*entities.SavedBuild, error)
	ListForUser(ctx context.Context, userID string) ([]*entities.SavedBuild, error)
	Create(ctx context.Context, build *entities.SavedBuild) error
	Update(ctx context.Context, build *entities.SavedBuild) error
	// SoftDelete flips IsSaved to false, preserving the row.
	SoftDelete(ctx context.Context, userID string, id uuid.UUID) error
}
