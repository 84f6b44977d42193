package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/domain/entities"
)

// CatalogRepository provides access to categories, components and their
// per-category specs rows. Missing rows are reported as
// entities.ErrNotFound; a missing specs row is (nil, nil) since partially
// catalogued parts are legal.
type CatalogRepository interface {
	GetCategoryBySlug(ctx context.Context, slug entities.Slug) (*entities.Category, error)

	GetComponent(ctx context.Context, id uuid.UUID) (*entities.Component, error)
	// ListComponentsByCategory returns the category's components ordered
	// by ascending price.
	ListComponentsByCategory(ctx context.Context, slug entities.Slug) ([]*entities.Component, error)
	// GetSpecs resolves the specs row for a component. The category slug
	// selects the spec store; lookups never probe other categories.
	GetSpecs(ctx context.Context, id uuid.UUID, category entities.Slug) (entities.Specs, error)

	// Admin mutations. Callers are responsible for invalidating the
	// process-local specs cache after any of these.
	CreateComponent(ctx context.Context, component *entities.Component) error
	UpdateComponent(ctx context.Context, component *entities.Component) error
	DeleteComponent(ctx context.Context, id uuid.UUID) error
	UpsertSpecs(ctx context.Context, id uuid.UUID, specs entities.Specs) error
}
