package placement

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const placementColumns = `
	id, name, slot, type, format, location, is_enabled,
	position, responsive, custom_code, created_at, updated_at`

// Repository handles placement database operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new placement repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// List returns all placements in insertion order
func (r *Repository) List(ctx context.Context) ([]Placement, error) {
	query := `
		SELECT ` + placementColumns + `
		FROM ad_placements
		ORDER BY created_at ASC
	`

	var placements []Placement
	if err := r.db.SelectContext(ctx, &placements, query); err != nil {
		return nil, err
	}
	return placements, nil
}

// ListByType returns all placements of a type, enabled or not
func (r *Repository) ListByType(ctx context.Context, t Type) ([]Placement, error) {
	query := `
		SELECT ` + placementColumns + `
		FROM ad_placements
		WHERE type = $1
		ORDER BY created_at ASC
	`

	var placements []Placement
	if err := r.db.SelectContext(ctx, &placements, query, t); err != nil {
		return nil, err
	}
	return placements, nil
}

// GetByID returns a placement by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Placement, error) {
	query := `
		SELECT ` + placementColumns + `
		FROM ad_placements
		WHERE id = $1
	`

	var p Placement
	err := r.db.GetContext(ctx, &p, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrPlacementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new placement
func (r *Repository) Create(ctx context.Context, p *Placement) error {
	query := `
		INSERT INTO ad_placements (
			id, name, slot, type, format, location, is_enabled,
			position, responsive, custom_code, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Slot,
		p.Type,
		p.Format,
		p.Location,
		p.IsEnabled,
		p.Position,
		p.Responsive,
		p.CustomCode,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

// Update writes the full placement record
func (r *Repository) Update(ctx context.Context, p *Placement) error {
	query := `
		UPDATE ad_placements
		SET name = $2, slot = $3, type = $4, format = $5, location = $6,
			is_enabled = $7, position = $8, responsive = $9, custom_code = $10,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Slot,
		p.Type,
		p.Format,
		p.Location,
		p.IsEnabled,
		p.Position,
		p.Responsive,
		p.CustomCode,
	)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrPlacementNotFound
	}
	return nil
}

// SetEnabled toggles a placement on or off
func (r *Repository) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	query := `UPDATE ad_placements SET is_enabled = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, enabled)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrPlacementNotFound
	}
	return nil
}

// Delete removes a placement. Historical stat samples are kept.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM ad_placements WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrPlacementNotFound
	}
	return nil
}
