package entities

import (
	"fmt"

	"github.com/google/uuid"
)

// Slug identifies a component category by its machine name
type Slug string

const (
	SlugCPU         Slug = "cpu"
	SlugCPUCooler   Slug = "cpu_cooler"
	SlugMotherboard Slug = "motherboard"
	SlugGPU         Slug = "gpu"
	SlugMemory      Slug = "memory"
	SlugStorage     Slug = "storage"
	SlugPSU         Slug = "psu"
	SlugCase        Slug = "case"

	// SlugBuildBundle marks a cart or order line that stands for a whole
	// saved build rather than a single component. It is not a catalog
	// category and never appears in a workspace.
	SlugBuildBundle Slug = "build_bundle"
)

// AllSlugs lists the catalog categories in declared order
var AllSlugs = []Slug{
	SlugCPU,
	SlugCPUCooler,
	SlugMotherboard,
	SlugGPU,
	SlugMemory,
	SlugStorage,
	SlugPSU,
	SlugCase,
}

// RequiredBuildSlugs are the categories a build must fill to be complete
var RequiredBuildSlugs = []Slug{
	SlugCPU,
	SlugMotherboard,
	SlugMemory,
	SlugPSU,
	SlugCase,
}

// ParseSlug validates a category slug string
func ParseSlug(s string) (Slug, error) {
	for _, slug := range AllSlugs {
		if string(slug) == s {
			return slug, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrValidation, s)
}

// IsRequiredSlug reports whether the category is mandatory for a complete build
func IsRequiredSlug(s Slug) bool {
	for _, slug := range RequiredBuildSlugs {
		if slug == s {
			return true
		}
	}
	return false
}

// Category represents a component category
type Category struct {
	ID   uuid.UUID
	Slug Slug
	Name string
}
