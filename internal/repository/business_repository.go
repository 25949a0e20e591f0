package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/nicolukazzz/reservas-api/internal/models"
)

// BusinessRepository manages the per-tenant profile that carries the
// opening-hours configuration as a JSONB document.
type BusinessRepository struct {
	db *sqlx.DB
}

// NewBusinessRepository constructs a BusinessRepository.
func NewBusinessRepository(db *sqlx.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

type businessProfileRow struct {
	ID        string         `db:"id"`
	ClientID  string         `db:"client_id"`
	Hours     types.JSONText `db:"hours"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// GetByClient fetches the client's profile. Callers see sql.ErrNoRows
// when the tenant has never configured hours; the booking path treats
// that as fail-open rather than an error.
func (r *BusinessRepository) GetByClient(ctx context.Context, clientID string) (*models.BusinessProfile, error) {
	const query = `SELECT id, client_id, hours, created_at, updated_at FROM client_profiles WHERE client_id = $1`
	var row businessProfileRow
	if err := r.db.GetContext(ctx, &row, query, clientID); err != nil {
		return nil, err
	}

	profile := models.BusinessProfile{
		ID:        row.ID,
		ClientID:  row.ClientID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if len(row.Hours) > 0 {
		if err := json.Unmarshal(row.Hours, &profile.Hours); err != nil {
			return nil, fmt.Errorf("decode hours for client %s: %w", clientID, err)
		}
	}
	return &profile, nil
}

// Upsert writes the profile, replacing the hours document wholesale.
func (r *BusinessRepository) Upsert(ctx context.Context, profile *models.BusinessProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	hours, err := json.Marshal(profile.Hours)
	if err != nil {
		return fmt.Errorf("encode hours for client %s: %w", profile.ClientID, err)
	}

	const query = `INSERT INTO client_profiles (id, client_id, hours, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (client_id) DO UPDATE SET hours = EXCLUDED.hours, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, profile.ID, profile.ClientID, types.JSONText(hours), profile.CreatedAt, profile.UpdatedAt); err != nil {
		return fmt.Errorf("upsert client profile: %w", err)
	}
	return nil
}
