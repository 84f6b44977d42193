package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/repositories"
)

// WorkspaceRepository provides in-memory workspace storage
type WorkspaceRepository struct {
	mu         sync.RWMutex
	workspaces map[string]*entities.Workspace
}

// NewWorkspaceRepository creates a new in-memory workspace repository
func NewWorkspaceRepository() *WorkspaceRepository {
	return &WorkspaceRepository{
		workspaces: make(map[string]*entities.Workspace),
	}
}

// Verify interface compliance
var _ repositories.WorkspaceRepository = (*WorkspaceRepository)(nil)

// Get returns the user's workspace, or an empty one if none exists
func (r *WorkspaceRepository) Get(_ context.Context, userID string) (*entities.Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workspace, exists := r.workspaces[userID]
	if !exists {
		return entities.NewWorkspace(userID), nil
	}
	return workspace.Clone(), nil
}

// Save upserts the workspace and refreshes its UpdatedAt
func (r *WorkspaceRepository) Save(_ context.Context, workspace *entities.Workspace) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := workspace.Clone()
	stored.UpdatedAt = time.Now()
	r.workspaces[workspace.UserID] = stored
	return nil
}

// Clear removes the user's workspace
func (r *WorkspaceRepository) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.workspaces, userID)
	return nil
}
