package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/repositories"
)

// SavedBuildRepository provides in-memory saved build storage
type SavedBuildRepository struct {
	mu     sync.RWMutex
	builds map[uuid.UUID]*entities.SavedBuild
}

// NewSavedBuildRepository creates a new in-memory saved build repository
func NewSavedBuildRepository() *SavedBuildRepository {
	return &SavedBuildRepository{
		builds: make(map[uuid.UUID]*entities.SavedBuild),
	}
}

// Verify interface compliance
var _ repositories.SavedBuildRepository = (*SavedBuildRepository)(nil)

// Get returns a build by id, including soft-deleted rows
func (r *SavedBuildRepository) Get(_ context.Context, id uuid.UUID) (*entities.SavedBuild, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	build, exists := r.builds[id]
	if !exists {
		return nil, fmt.Errorf("build %s: %w", id, entities.ErrNotFound)
	}
	return build.Clone(), nil
}

// GetForUser returns the user's build by id; soft-deleted rows are invisible
func (r *SavedBuildRepository) GetForUser(_ context.Context, userID string, id uuid.UUID) (*entities.SavedBuild, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	build, exists := r.builds[id]
	if !exists || build.UserID != userID || !build.IsSaved {
		return nil, fmt.Errorf("build %s: %w", id, entities.ErrNotFound)
	}
	return build.Clone(), nil
}

// ListForUser returns the user's saved builds, newest first
func (r *SavedBuildRepository) ListForUser(_ context.Context, userID string) ([]*entities.SavedBuild, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var listed []*entities.SavedBuild
	for _, build := range r.builds {
		if build.UserID == userID && build.IsSaved {
			listed = append(listed, build.Clone())
		}
	}
	sort.Slice(listed, func(i, j int) bool {
		return listed[i].CreatedAt.After(listed[j].CreatedAt)
	})
	return listed, nil
}

// Create stores a new saved build
func (r *SavedBuildRepository) Create(_ context.Context, build *entities.SavedBuild) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := build.Clone()
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.builds[build.ID] = stored
	return nil
}

// Update replaces a stored build
func (r *SavedBuildRepository) Update(_ context.Context, build *entities.SavedBuild) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builds[build.ID]; !exists {
		return fmt.Errorf("build %s: %w", build.ID, entities.ErrNotFound)
	}
	stored := build.Clone()
	stored.UpdatedAt = time.Now()
	r.builds[build.ID] = stored
	return nil
}

// SoftDelete flips IsSaved to false, preserving the row for order history
func (r *SavedBuildRepository) SoftDelete(_ context.Context, userID string, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	build, exists := r.builds[id]
	if !exists || build.UserID != userID || !build.IsSaved {
		return fmt.Errorf("build %s: %w", id, entities.ErrNotFound)
	}
	build.IsSaved = false
	build.UpdatedAt = time.Now()
	return nil
}

func (r *SavedBuildRepository) snapshot() map[uuid.UUID]*entities.SavedBuild {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(map[uuid.UUID]*entities.SavedBuild, len(r.builds))
	for id, build := range r.builds {
		snap[id] = build.Clone()
	}
	return snap
}

func (r *SavedBuildRepository) restore(snap map[uuid.UUID]*entities.SavedBuild) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.builds = snap
}
