package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompatibilityState is the persisted verdict on a saved build
type CompatibilityState string

const (
	BuildOK         CompatibilityState = "ok"
	BuildIncomplete CompatibilityState = "incomplete"
	BuildInvalid    CompatibilityState = "invalid"

	// BuildUnknown is a summary-only state: the caller has not run the
	// compatibility checker. It is never persisted.
	BuildUnknown CompatibilityState = "unknown"
)

// Workspace is a user's transient build-in-progress: at most one
// component per category. SourceBuildID is set while the workspace is
// an edit session of a saved build and survives every mutation until
// the session ends (save, update or reset).
type Workspace struct {
	UserID        string
	Components    map[Slug]uuid.UUID
	SourceBuildID *uuid.UUID
	UpdatedAt     time.Time
}

// NewWorkspace creates an empty workspace for a user
func NewWorkspace(userID string) *Workspace {
	return &Workspace{
		UserID:     userID,
		Components: make(map[Slug]uuid.UUID),
	}
}

// Clone returns a deep copy of the workspace
func (w *Workspace) Clone() *Workspace {
	c := &Workspace{
		UserID:     w.UserID,
		Components: make(map[Slug]uuid.UUID, len(w.Components)),
		UpdatedAt:  w.UpdatedAt,
	}
	for slug, id := range w.Components {
		c.Components[slug] = id
	}
	if w.SourceBuildID != nil {
		id := *w.SourceBuildID
		c.SourceBuildID = &id
	}
	return c
}

// ExpandedBuild maps each occupied category to the full component
// record. Placeholder entries (missing or dangling ids expanded in
// allow-missing mode) have a nil Detail.
type ExpandedBuild map[Slug]*ExpandedPart

// ExpandedPart is one slot of an expanded build
type ExpandedPart struct {
	Detail *ComponentDetail // nil for a placeholder
}

// Placeholder reports whether the slot could not be resolved to a catalog row
func (p *ExpandedPart) Placeholder() bool {
	return p == nil || p.Detail == nil
}

// BuildSummary carries the denormalized totals of an expanded build
type BuildSummary struct {
	TotalPrice    decimal.Decimal
	PowerUsage    int
	Compatibility CompatibilityState
}

// imagePriority orders categories for choosing a saved build's image
var imagePriority = []Slug{SlugCase, SlugGPU, SlugCPU, SlugMotherboard, SlugMemory}

// PickBuildImage selects the build image by category priority
// (case, then gpu, cpu, motherboard, memory). Empty when none has one.
func PickBuildImage(expanded ExpandedBuild) string {
	for _, slug := range imagePriority {
		part, ok := expanded[slug]
		if !ok || part.Placeholder() {
			continue
		}
		if part.Detail.ImageURL != "" {
			return part.Detail.ImageURL
		}
	}
	return ""
}

// SavedBuild is a named snapshot of a workspace. Deletion is soft
// (IsSaved=false) so order items referencing the build stay resolvable.
type SavedBuild struct {
	ID            uuid.UUID
	UserID        string
	Name          string
	Components    map[Slug]uuid.UUID
	TotalPrice    decimal.Decimal
	PowerUsage    int
	Compatibility CompatibilityState
	Image         string
	IsSaved       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewSavedBuild creates a validated SavedBuild
func NewSavedBuild(userID, name string, components map[Slug]uuid.UUID) (*SavedBuild, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id cannot be empty", ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: build name cannot be empty", ErrValidation)
	}

	copied := make(map[Slug]uuid.UUID, len(components))
	for slug, id := range components {
		copied[slug] = id
	}

	return &SavedBuild{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       name,
		Components: copied,
		IsSaved:    true,
	}, nil
}

// Clone returns a deep copy of the saved build
func (b *SavedBuild) Clone() *SavedBuild {
	c := *b
	c.Components = make(map[Slug]uuid.UUID, len(b.Components))
	for slug, id := range b.Components {
		c.Components[slug] = id
	}
	return &c
}
