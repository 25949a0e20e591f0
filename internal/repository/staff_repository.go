package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/nicolukazzz/reservas-api/internal/models"
)

// StaffRepository manages persistence for staff members. Personal
// hours, weekly schedules and service capabilities live in JSONB
// columns so schedule shapes can evolve without migrations.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

type staffRow struct {
	ID         string         `db:"id"`
	ClientID   string         `db:"client_id"`
	Name       string         `db:"name"`
	Active     bool           `db:"active"`
	ServiceIDs types.JSONText `db:"service_ids"`
	Hours      types.JSONText `db:"hours"`
	Schedule   types.JSONText `db:"schedule"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (row staffRow) toModel() (*models.StaffMember, error) {
	member := models.StaffMember{
		ID:        row.ID,
		ClientID:  row.ClientID,
		Name:      row.Name,
		Active:    row.Active,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if len(row.ServiceIDs) > 0 {
		if err := json.Unmarshal(row.ServiceIDs, &member.ServiceIDs); err != nil {
			return nil, fmt.Errorf("decode service ids for staff %s: %w", row.ID, err)
		}
	}
	if len(row.Hours) > 0 && string(row.Hours) != "null" {
		member.Hours = &models.StaffHours{}
		if err := json.Unmarshal(row.Hours, member.Hours); err != nil {
			return nil, fmt.Errorf("decode hours for staff %s: %w", row.ID, err)
		}
	}
	if len(row.Schedule) > 0 && string(row.Schedule) != "null" {
		member.Schedule = &models.StaffSchedule{}
		if err := json.Unmarshal(row.Schedule, member.Schedule); err != nil {
			return nil, fmt.Errorf("decode schedule for staff %s: %w", row.ID, err)
		}
	}
	return &member, nil
}

func encodeStaff(member *models.StaffMember) (serviceIDs, hours, schedule types.JSONText, err error) {
	ids := member.ServiceIDs
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode service ids: %w", err)
	}
	serviceIDs = types.JSONText(raw)

	if raw, err = json.Marshal(member.Hours); err != nil {
		return nil, nil, nil, fmt.Errorf("encode hours: %w", err)
	}
	hours = types.JSONText(raw)

	if raw, err = json.Marshal(member.Schedule); err != nil {
		return nil, nil, nil, fmt.Errorf("encode schedule: %w", err)
	}
	schedule = types.JSONText(raw)
	return serviceIDs, hours, schedule, nil
}

// List returns staff matching the provided filters in roster order
// (creation order), which auto-selection relies on for tie-breaking.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.StaffMember, int, error) {
	base := "FROM staff"
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

	query := fmt.Sprintf(`SELECT id, client_id, name, active, service_ids, hours, schedule, created_at, updated_at
        %s ORDER BY created_at ASC, id ASC LIMIT %d OFFSET %d`, base, size, offset)

	var rows []staffRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}

	members := make([]models.StaffMember, 0, len(rows))
	for _, row := range rows {
		member, err := row.toModel()
		if err != nil {
			return nil, 0, err
		}
		members = append(members, *member)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count staff: %w", err)
	}
	return members, total, nil
}

// ListByClient returns the client's full roster in roster order.
func (r *StaffRepository) ListByClient(ctx context.Context, clientID string) ([]models.StaffMember, error) {
	members, _, err := r.List(ctx, models.StaffFilter{ClientID: clientID})
	return members, err
}

// FindByID fetches a staff member scoped to the client.
func (r *StaffRepository) FindByID(ctx context.Context, clientID, staffID string) (*models.StaffMember, error) {
	const query = `SELECT id, client_id, name, active, service_ids, hours, schedule, created_at, updated_at
        FROM staff WHERE client_id = $1 AND id = $2`
	var row staffRow
	if err := r.db.GetContext(ctx, &row, query, clientID, staffID); err != nil {
		return nil, err
	}
	return row.toModel()
}

// Create inserts a new staff member.
func (r *StaffRepository) Create(ctx context.Context, member *models.StaffMember) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if member.CreatedAt.IsZero() {
		member.CreatedAt = now
	}
	member.UpdatedAt = now

	serviceIDs, hours, schedule, err := encodeStaff(member)
	if err != nil {
		return err
	}

	const query = `INSERT INTO staff (id, client_id, name, active, service_ids, hours, schedule, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query, member.ID, member.ClientID, member.Name, member.Active,
		serviceIDs, hours, schedule, member.CreatedAt, member.UpdatedAt); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

// Update rewrites a staff member's profile and schedule.
func (r *StaffRepository) Update(ctx context.Context, member *models.StaffMember) error {
	member.UpdatedAt = time.Now().UTC()

	serviceIDs, hours, schedule, err := encodeStaff(member)
	if err != nil {
		return err
	}

	const query = `UPDATE staff SET name = $1, active = $2, service_ids = $3, hours = $4, schedule = $5, updated_at = $6
        WHERE client_id = $7 AND id = $8`
	result, err := r.db.ExecContext(ctx, query, member.Name, member.Active, serviceIDs, hours, schedule,
		member.UpdatedAt, member.ClientID, member.ID)
	if err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate marks a staff member inactive. Existing reservations stay
// in place; the member stops appearing in availability and selection.
func (r *StaffRepository) Deactivate(ctx context.Context, clientID, staffID string) error {
	const query = `UPDATE staff SET active = FALSE, updated_at = $1 WHERE client_id = $2 AND id = $3`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), clientID, staffID)
	if err != nil {
		return fmt.Errorf("deactivate staff: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
