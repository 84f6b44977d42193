package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/repositories"
	"github.com/shopspring/decimal"
)

// SavedBuildRepository stores saved builds in user_builds. Deletion is
// soft (is_saved = false); Get resolves soft-deleted rows for order
// history, every other read is scoped to live rows.
type SavedBuildRepository struct {
	pool *pgxpool.Pool
}

// NewSavedBuildRepository creates a Postgres saved-build repository
func NewSavedBuildRepository(pool *pgxpool.Pool) *SavedBuildRepository {
	return &SavedBuildRepository{pool: pool}
}

// Verify interface compliance
var _ repositories.SavedBuildRepository = (*SavedBuildRepository)(nil)

const buildColumns = `
	id, user_id, name, components, total_price::text, power_usage,
	compatibility, image, is_saved, created_at, updated_at`

// Get resolves a build by id, including soft-deleted rows
func (r *SavedBuildRepository) Get(ctx context.Context, id uuid.UUID) (*entities.SavedBuild, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+buildColumns+` FROM user_builds WHERE id = $1`, id)
	return scanBuild(row, id.String())
}

// GetForUser resolves one of the user's live builds
func (r *SavedBuildRepository) GetForUser(ctx context.Context, userID string, id uuid.UUID) (*entities.SavedBuild, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+buildColumns+` FROM user_builds WHERE id = $1 AND user_id = $2 AND is_saved`,
		id, userID)
	return scanBuild(row, id.String())
}

// ListForUser returns the user's live builds, newest first
func (r *SavedBuildRepository) ListForUser(ctx context.Context, userID string) ([]*entities.SavedBuild, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+buildColumns+` FROM user_builds WHERE user_id = $1 AND is_saved ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer rows.Close()

	var builds []*entities.SavedBuild
	for rows.Next() {
		build, err := scanBuild(rows, "")
		if err != nil {
			return nil, err
		}
		builds = append(builds, build)
	}
	return builds, rows.Err()
}

// Create inserts a build row
func (r *SavedBuildRepository) Create(ctx context.Context, build *entities.SavedBuild) error {
	componentsJSON, err := json.Marshal(build.Components)
	if err != nil {
		return fmt.Errorf("failed to encode build components: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO user_builds (id, user_id, name, components, total_price,
		                         power_usage, compatibility, image, is_saved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		build.ID, build.UserID, build.Name, componentsJSON,
		build.TotalPrice.String(), build.PowerUsage,
		string(build.Compatibility), build.Image, build.IsSaved)
	if err != nil {
		return fmt.Errorf("failed to insert build: %w", err)
	}
	return nil
}

// Update rewrites a build row
func (r *SavedBuildRepository) Update(ctx context.Context, build *entities.SavedBuild) error {
	componentsJSON, err := json.Marshal(build.Components)
	if err != nil {
		return fmt.Errorf("failed to encode build components: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE user_builds
		SET name = $3, components = $4, total_price = $5, power_usage = $6,
		    compatibility = $7, image = $8, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_saved`,
		build.ID, build.UserID, build.Name, componentsJSON,
		build.TotalPrice.String(), build.PowerUsage,
		string(build.Compatibility), build.Image)
	if err != nil {
		return fmt.Errorf("failed to update build: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("build %s: %w", build.ID, entities.ErrNotFound)
	}
	return nil
}

// SoftDelete flips is_saved off, preserving the row for order history
func (r *SavedBuildRepository) SoftDelete(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE user_builds SET is_saved = FALSE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_saved`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete build: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("build %s: %w", id, entities.ErrNotFound)
	}
	return nil
}

func scanBuild(row pgx.Row, ref string) (*entities.SavedBuild, error) {
	var build entities.SavedBuild
	var componentsJSON []byte
	var totalPrice string
	err := row.Scan(&build.ID, &build.UserID, &build.Name, &componentsJSON,
		&totalPrice, &build.PowerUsage, &build.Compatibility, &build.Image,
		&build.IsSaved, &build.CreatedAt, &build.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("build %s: %w", ref, entities.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan build: %w", err)
	}
	if err := json.Unmarshal(componentsJSON, &build.Components); err != nil {
		return nil, fmt.Errorf("failed to decode build components: %w", err)
	}
	build.TotalPrice, err = decimal.NewFromString(totalPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid total price %q: %w", totalPrice, err)
	}
	return &build, nil
}
