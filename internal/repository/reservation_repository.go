package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nicolukazzz/reservas-api/internal/models"
	"github.com/nicolukazzz/reservas-api/internal/schedule"
)

// ErrOverlap is returned by CreateIfFree and Update when the requested
// window collides with a reservation committed by a concurrent writer.
var ErrOverlap = errors.New("reservation window overlaps an existing reservation")

// ReservationRepository manages persistence for reservations. Writes
// that could double-book go through a locking transaction so the
// database, not the in-service scan, has the final word.
type ReservationRepository struct {
	db *sqlx.DB

	// defaultDurationMinutes derives an end for legacy rows that carry
	// neither end_time nor duration. Must match the booking default.
	defaultDurationMinutes int
}

// NewReservationRepository constructs a ReservationRepository.
func NewReservationRepository(db *sqlx.DB, defaultDurationMinutes int) *ReservationRepository {
	if defaultDurationMinutes <= 0 {
		defaultDurationMinutes = 60
	}
	return &ReservationRepository{db: db, defaultDurationMinutes: defaultDurationMinutes}
}

// List returns reservations matching the provided filters.
func (r *ReservationRepository) List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, int, error) {
	base := "FROM reservations"
	args := []interface{}{filter.ClientID}
	conditions := []string{"client_id = $1"}

	if filter.DateID != "" {
		conditions = append(conditions, fmt.Sprintf("date_id = $%d", len(args)+1))
		args = append(args, filter.DateID)
	}
	if filter.StaffID != "" {
		conditions = append(conditions, fmt.Sprintf("staff_id = $%d", len(args)+1))
		args = append(args, filter.StaffID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(filter.Status))
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"date":       "date_id",
		"time":       "start_time",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "date_id"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, client_id, date_id, start_time, end_time, duration_minutes, staff_id, service_id,
        customer_name, customer_phone, status, created_at, updated_at
        %s ORDER BY %s %s, start_time ASC LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var reservations []models.Reservation
	if err := r.db.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reservations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count reservations: %w", err)
	}
	return reservations, total, nil
}

// ListByDate returns every reservation for the client on the given day,
// ordered by start time. Conflict scans and the availability grid both
// read through here.
func (r *ReservationRepository) ListByDate(ctx context.Context, clientID, dateID string) ([]models.Reservation, error) {
	const query = `SELECT id, client_id, date_id, start_time, end_time, duration_minutes, staff_id, service_id,
        customer_name, customer_phone, status, created_at, updated_at
        FROM reservations WHERE client_id = $1 AND date_id = $2 ORDER BY start_time ASC`
	var reservations []models.Reservation
	if err := r.db.SelectContext(ctx, &reservations, query, clientID, dateID); err != nil {
		return nil, fmt.Errorf("list reservations for %s: %w", dateID, err)
	}
	return reservations, nil
}

// FindByID fetches a reservation scoped to the client.
func (r *ReservationRepository) FindByID(ctx context.Context, clientID, id string) (*models.Reservation, error) {
	const query = `SELECT id, client_id, date_id, start_time, end_time, duration_minutes, staff_id, service_id,
        customer_name, customer_phone, status, created_at, updated_at
        FROM reservations WHERE client_id = $1 AND id = $2`
	var reservation models.Reservation
	if err := r.db.GetContext(ctx, &reservation, query, clientID, id); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// CreateIfFree inserts the reservation unless a committed reservation
// already occupies part of [startMin, endMin) for the same staff member
// and day. The write serializes on an advisory lock for the staff
// member's day before the overlap re-check, so of two concurrent
// writers targeting the same window the loser gets ErrOverlap.
func (r *ReservationRepository) CreateIfFree(ctx context.Context, res *models.Reservation, startMin, endMin int) (err error) {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = now
	}
	res.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reservation transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if res.StaffID != "" {
		if err = r.lockAndCheck(ctx, tx, res.ClientID, res.StaffID, res.DateID, startMin, endMin, ""); err != nil {
			return err
		}
	}

	const insertQuery = `INSERT INTO reservations (id, client_id, date_id, start_time, end_time, duration_minutes,
        staff_id, service_id, customer_name, customer_phone, status, created_at, updated_at)
        VALUES (:id, :client_id, :date_id, :start_time, :end_time, :duration_minutes,
        :staff_id, :service_id, :customer_name, :customer_phone, :status, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, res); err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit reservation: %w", err)
	}
	return nil
}

// Update rewrites a reservation's bookable fields, re-checking overlap
// under lock when the window or staff changed.
func (r *ReservationRepository) Update(ctx context.Context, res *models.Reservation) (err error) {
	res.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reservation transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if res.StaffID != "" && res.Blocks() {
		startMin, endMin, werr := r.window(res)
		if werr != nil {
			return werr
		}
		if err = r.lockAndCheck(ctx, tx, res.ClientID, res.StaffID, res.DateID, startMin, endMin, res.ID); err != nil {
			return err
		}
	}

	const query = `UPDATE reservations SET date_id = :date_id, start_time = :start_time, end_time = :end_time,
        duration_minutes = :duration_minutes, staff_id = :staff_id, service_id = :service_id,
        customer_name = :customer_name, customer_phone = :customer_phone, status = :status, updated_at = :updated_at
        WHERE client_id = :client_id AND id = :id`
	result, err := tx.NamedExecContext(ctx, query, res)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if affected, raErr := result.RowsAffected(); raErr == nil && affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit reservation update: %w", err)
	}
	return nil
}

// UpdateStatus transitions a reservation's status.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, clientID, id string, status models.ReservationStatus) error {
	const query = `UPDATE reservations SET status = $1, updated_at = $2 WHERE client_id = $3 AND id = $4`
	result, err := r.db.ExecContext(ctx, query, string(status), time.Now().UTC(), clientID, id)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a reservation.
func (r *ReservationRepository) Delete(ctx context.Context, clientID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE client_id = $1 AND id = $2`, clientID, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// lockAndCheck serializes writers for the same staff member and day,
// then re-runs the overlap scan inside the transaction. Row locks
// cannot cover a window no row occupies yet, so the serialization
// point is a transaction-scoped advisory lock keyed on (client, staff,
// day): the scan's snapshot is taken after the lock is granted and
// includes any row a concurrent winner committed while we waited.
func (r *ReservationRepository) lockAndCheck(ctx context.Context, tx *sqlx.Tx, clientID, staffID, dateID string, startMin, endMin int, excludeID string) error {
	lockKey := clientID + ":" + staffID + ":" + dateID
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		return fmt.Errorf("lock staff day %s: %w", dateID, err)
	}

	const scanQuery = `SELECT id, client_id, date_id, start_time, end_time, duration_minutes, staff_id, service_id,
        customer_name, customer_phone, status, created_at, updated_at
        FROM reservations
        WHERE client_id = $1 AND staff_id = $2 AND date_id = $3 AND status <> $4`
	var existing []models.Reservation
	if err := tx.SelectContext(ctx, &existing, scanQuery, clientID, staffID, dateID, string(models.StatusCancelada)); err != nil {
		return fmt.Errorf("scan reservations for %s: %w", dateID, err)
	}

	scan := schedule.ConflictScan{DefaultDurationMinutes: r.defaultDurationMinutes}
	if scan.HasConflict(staffID, dateID, startMin, endMin, existing, excludeID) {
		return ErrOverlap
	}
	return nil
}

// window derives the reservation's minute interval for the locked
// overlap re-check.
func (r *ReservationRepository) window(res *models.Reservation) (int, int, error) {
	scan := schedule.ConflictScan{DefaultDurationMinutes: r.defaultDurationMinutes}
	startMin, endMin, err := scan.Window(res)
	if err != nil {
		return 0, 0, fmt.Errorf("derive reservation window: %w", err)
	}
	return startMin, endMin, nil
}
