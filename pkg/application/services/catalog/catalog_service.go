// Package catalog implements the catalog accessor: component reads
// joined with their typed specs, backed by a process-local specs cache.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/repositories"
)

// ImageURLResolver derives a public URL from a stored bucket path
type ImageURLResolver interface {
	PublicURL(path string) string
}

// noImages is used when no resolver is configured (tests, seeds)
type noImages struct{}

func (noImages) PublicURL(path string) string { return path }

// Service reads components and their specs. The specs cache is the only
// process-wide mutable state in the system; it is guarded by a RWMutex
// and caches the no-specs sentinel too, so repeated lookups of partially
// catalogued parts stay cheap.
type Service struct {
	repo   repositories.CatalogRepository
	images ImageURLResolver

	cacheMutex sync.RWMutex
	specsCache map[uuid.UUID]entities.Specs
}

// NewService creates a catalog service without image URL derivation
func NewService(repo repositories.CatalogRepository) *Service {
	return NewServiceWithImages(repo, noImages{})
}

// NewServiceWithImages creates a catalog service that derives public
// image URLs through the given resolver
func NewServiceWithImages(repo repositories.CatalogRepository, images ImageURLResolver) *Service {
	return &Service{
		repo:       repo,
		images:     images,
		specsCache: make(map[uuid.UUID]entities.Specs),
	}
}

// GetComponentByID returns a component joined with its specs, or
// (nil, nil) when the id is unknown: a missing component is not an error.
func (s *Service) GetComponentByID(ctx context.Context, id uuid.UUID) (*entities.ComponentDetail, error) {
	component, err := s.repo.GetComponent(ctx, id)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load component %s: %w", id, err)
	}

	specs, err := s.resolveSpecs(ctx, component.ID, component.Category)
	if err != nil {
		return nil, err
	}

	component.ImageURL = s.images.PublicURL(component.ImagePath)
	return &entities.ComponentDetail{Component: *component, Specs: specs}, nil
}

// ListByCategory returns a category's components with specs, ordered by
// ascending price
func (s *Service) ListByCategory(ctx context.Context, slug entities.Slug) ([]*entities.ComponentDetail, error) {
	components, err := s.repo.ListComponentsByCategory(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s components: %w", slug, err)
	}

	details := make([]*entities.ComponentDetail, 0, len(components))
	for _, component := range components {
		specs, err := s.resolveSpecs(ctx, component.ID, component.Category)
		if err != nil {
			return nil, err
		}
		component.ImageURL = s.images.PublicURL(component.ImagePath)
		details = append(details, &entities.ComponentDetail{Component: *component, Specs: specs})
	}
	return details, nil
}

// GetSpecs returns a component's specs record; nil when the component
// has no specs row
func (s *Service) GetSpecs(ctx context.Context, id uuid.UUID) (entities.Specs, error) {
	component, err := s.repo.GetComponent(ctx, id)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load component %s: %w", id, err)
	}
	return s.resolveSpecs(ctx, component.ID, component.Category)
}

// Invalidate drops a component's cached specs. Admin CRUD must call
// this after any mutation of the component or its specs row.
func (s *Service) Invalidate(id uuid.UUID) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()
	delete(s.specsCache, id)
}

// CreateComponent writes a component through to the repository
func (s *Service) CreateComponent(ctx context.Context, component *entities.Component) error {
	if err := s.repo.CreateComponent(ctx, component); err != nil {
		return fmt.Errorf("failed to create component: %w", err)
	}
	s.Invalidate(component.ID)
	return nil
}

// UpdateComponent writes a component through to the repository and
// invalidates its cached specs
func (s *Service) UpdateComponent(ctx context.Context, component *entities.Component) error {
	if err := s.repo.UpdateComponent(ctx, component); err != nil {
		return fmt.Errorf("failed to update component: %w", err)
	}
	s.Invalidate(component.ID)
	return nil
}

// DeleteComponent removes a component and invalidates its cached specs
func (s *Service) DeleteComponent(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteComponent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete component: %w", err)
	}
	s.Invalidate(id)
	return nil
}

// UpsertSpecs writes a component's specs row and invalidates the cache
func (s *Service) UpsertSpecs(ctx context.Context, id uuid.UUID, specs entities.Specs) error {
	if err := s.repo.UpsertSpecs(ctx, id, specs); err != nil {
		return fmt.Errorf("failed to upsert specs: %w", err)
	}
	s.Invalidate(id)
	return nil
}

func (s *Service) resolveSpecs(ctx context.Context, id uuid.UUID, category entities.Slug) (entities.Specs, error) {
	s.cacheMutex.RLock()
	specs, cached := s.specsCache[id]
	s.cacheMutex.RUnlock()
	if cached {
		return specs, nil
	}

	specs, err := s.repo.GetSpecs(ctx, id, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load specs for %s: %w", id, err)
	}

	s.cacheMutex.Lock()
	s.specsCache[id] = specs
	s.cacheMutex.Unlock()
	return specs, nil
}
