package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nicolukazzz/reservas-api/internal/models"
)

// OfferingRepository manages persistence for the tenant's bookable
// services.
type OfferingRepository struct {
	db *sqlx.DB
}

// NewOfferingRepository constructs an OfferingRepository.
func NewOfferingRepository(db *sqlx.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

// List returns offerings matching the provided filters.
func (r *OfferingRepository) List(ctx context.Context, filter models.OfferingFilter) ([]models.Offering, int, error) {
	base := "FROM offerings"
	args := []interface{}{filter.ClientID}
	conditions := []string{"client_id = $1"}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, client_id, name, price, duration_minutes, active, created_at, updated_at
        %s ORDER BY name ASC LIMIT %d OFFSET %d`, base, size, offset)

	var offerings []models.Offering
	if err := r.db.SelectContext(ctx, &offerings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list offerings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count offerings: %w", err)
	}
	return offerings, total, nil
}

// FindByID fetches an offering scoped to the client.
func (r *OfferingRepository) FindByID(ctx context.Context, clientID, offeringID string) (*models.Offering, error) {
	const query = `SELECT id, client_id, name, price, duration_minutes, active, created_at, updated_at
        FROM offerings WHERE client_id = $1 AND id = $2`
	var offering models.Offering
	if err := r.db.GetContext(ctx, &offering, query, clientID, offeringID); err != nil {
		return nil, err
	}
	return &offering, nil
}

// Create inserts a new offering.
func (r *OfferingRepository) Create(ctx context.Context, offering *models.Offering) error {
	if offering.ID == "" {
		offering.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if offering.CreatedAt.IsZero() {
		offering.CreatedAt = now
	}
	offering.UpdatedAt = now

	const query = `INSERT INTO offerings (id, client_id, name, price, duration_minutes, active, created_at, updated_at)
        VALUES (:id, :client_id, :name, :price, :duration_minutes, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, offering); err != nil {
		return fmt.Errorf("create offering: %w", err)
	}
	return nil
}

// Update rewrites an offering.
func (r *OfferingRepository) Update(ctx context.Context, offering *models.Offering) error {
	offering.UpdatedAt = time.Now().UTC()

	const query = `UPDATE offerings SET name = :name, price = :price, duration_minutes = :duration_minutes,
        active = :active, updated_at = :updated_at WHERE client_id = :client_id AND id = :id`
	result, err := r.db.NamedExecContext(ctx, query, offering)
	if err != nil {
		return fmt.Errorf("update offering: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an offering.
func (r *OfferingRepository) Delete(ctx context.Context, clientID, offeringID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM offerings WHERE client_id = $1 AND id = $2`, clientID, offeringID)
	if err != nil {
		return fmt.Errorf("delete offering: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
