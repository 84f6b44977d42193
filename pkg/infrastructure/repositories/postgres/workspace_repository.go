package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/repositories"
)

// WorkspaceRepository stores workspaces in user_builds_temp, one row per
// user. The component map is a JSONB column; the edit-session marker is
// its own nullable column.
type WorkspaceRepository struct {
	pool *pgxpool.Pool
}

// NewWorkspaceRepository creates a Postgres workspace repository
func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{pool: pool}
}

// Verify interface compliance
var _ repositories.WorkspaceRepository = (*WorkspaceRepository)(nil)

// Get returns the user's workspace, or an empty one when no row exists
func (r *WorkspaceRepository) Get(ctx context.Context, userID string) (*entities.Workspace, error) {
	workspace := entities.NewWorkspace(userID)
	var componentsJSON []byte
	err := r.pool.QueryRow(ctx, `
		SELECT components, source_build_id, updated_at
		FROM user_builds_temp WHERE user_id = $1`, userID).
		Scan(&componentsJSON, &workspace.SourceBuildID, &workspace.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return workspace, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}
	if err := json.Unmarshal(componentsJSON, &workspace.Components); err != nil {
		return nil, fmt.Errorf("failed to decode workspace components: %w", err)
	}
	return workspace, nil
}

// Save upserts the workspace row
func (r *WorkspaceRepository) Save(ctx context.Context, workspace *entities.Workspace) error {
	componentsJSON, err := json.Marshal(workspace.Components)
	if err != nil {
		return fmt.Errorf("failed to encode workspace components: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO user_builds_temp (user_id, components, source_build_id, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			components = EXCLUDED.components,
			source_build_id = EXCLUDED.source_build_id,
			updated_at = NOW()`,
		workspace.UserID, componentsJSON, workspace.SourceBuildID)
	if err != nil {
		return fmt.Errorf("failed to save workspace: %w", err)
	}
	return nil
}

// Clear removes the user's row; clearing an absent workspace is a no-op
func (r *WorkspaceRepository) Clear(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM user_builds_temp WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear workspace: %w", err)
	}
	return nil
}
