package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/repositories"
)

// CatalogRepository provides in-memory catalog storage
type CatalogRepository struct {
	mu         sync.RWMutex
	categories map[entities.Slug]*entities.Category
	components map[uuid.UUID]*entities.Component
	specs      map[uuid.UUID]entities.Specs
}

// NewCatalogRepository creates a new in-memory catalog repository with
// the eight standard categories pre-seeded
func NewCatalogRepository() *CatalogRepository {
	r := &CatalogRepository{
		categories: make(map[entities.Slug]*entities.Category),
		components: make(map[uuid.UUID]*entities.Component),
		specs:      make(map[uuid.UUID]entities.Specs),
	}
	for _, slug := range entities.AllSlugs {
		r.categories[slug] = &entities.Category{ID: uuid.New(), Slug: slug, Name: string(slug)}
	}
	return r
}

// Verify interface compliance
var _ repositories.CatalogRepository = (*CatalogRepository)(nil)

// GetCategoryBySlug returns a category by its machine slug
func (r *CatalogRepository) GetCategoryBySlug(_ context.Context, slug entities.Slug) (*entities.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, exists := r.categories[slug]
	if !exists {
		return nil, fmt.Errorf("category %q: %w", slug, entities.ErrNotFound)
	}
	copied := *category
	return &copied, nil
}

// GetComponent returns a component by id
func (r *CatalogRepository) GetComponent(_ context.Context, id uuid.UUID) (*entities.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	component, exists := r.components[id]
	if !exists {
		return nil, fmt.Errorf("component %s: %w", id, entities.ErrNotFound)
	}
	copied := *component
	return &copied, nil
}

// ListComponentsByCategory returns a category's components ordered by ascending price
func (r *CatalogRepository) ListComponentsByCategory(_ context.Context, slug entities.Slug) ([]*entities.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var listed []*entities.Component
	for _, component := range r.components {
		if component.Category == slug {
			copied := *component
			listed = append(listed, &copied)
		}
	}
	sort.Slice(listed, func(i, j int) bool {
		return listed[i].Price.LessThan(listed[j].Price)
	})
	return listed, nil
}

// GetSpecs returns the specs row for a component, or (nil, nil) when the
// component has none
func (r *CatalogRepository) GetSpecs(_ context.Context, id uuid.UUID, category entities.Slug) (entities.Specs, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs, exists := r.specs[id]
	if !exists {
		return nil, nil
	}
	if specs.SpecsCategory() != category {
		return nil, nil
	}
	return specs, nil
}

// CreateComponent adds a component to the catalog
func (r *CatalogRepository) CreateComponent(_ context.Context, component *entities.Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *component
	r.components[component.ID] = &copied
	return nil
}

// UpdateComponent replaces a stored component
func (r *CatalogRepository) UpdateComponent(_ context.Context, component *entities.Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[component.ID]; !exists {
		return fmt.Errorf("component %s: %w", component.ID, entities.ErrNotFound)
	}
	copied := *component
	r.components[component.ID] = &copied
	return nil
}

// DeleteComponent removes a component and its specs row
func (r *CatalogRepository) DeleteComponent(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[id]; !exists {
		return fmt.Errorf("component %s: %w", id, entities.ErrNotFound)
	}
	delete(r.components, id)
	delete(r.specs, id)
	return nil
}

// UpsertSpecs writes the specs row for a component
func (r *CatalogRepository) UpsertSpecs(_ context.Context, id uuid.UUID, specs entities.Specs) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[id]; !exists {
		return fmt.Errorf("component %s: %w", id, entities.ErrNotFound)
	}
	r.specs[id] = specs
	return nil
}

// AdjustStock applies a stock delta directly; used by the checkout tx
func (r *CatalogRepository) AdjustStock(id uuid.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	component, exists := r.components[id]
	if !exists {
		return fmt.Errorf("component %s: %w", id, entities.ErrNotFound)
	}
	if component.Stock+delta < 0 {
		return fmt.Errorf("component %s stock would go negative", id)
	}
	component.Stock += delta
	return nil
}

func (r *CatalogRepository) snapshotComponents() map[uuid.UUID]entities.Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(map[uuid.UUID]entities.Component, len(r.components))
	for id, component := range r.components {
		snap[id] = *component
	}
	return snap
}

func (r *CatalogRepository) restoreComponents(snap map[uuid.UUID]entities.Component) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.components = make(map[uuid.UUID]*entities.Component, len(snap))
	for id, component := range snap {
		copied := component
		r.components[id] = &copied
	}
}
