package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolukazzz/reservas-api/internal/models"
)

func TestBusinessRepositoryGetByClient(t *testing.T) {
	db, mock, cleanup := newReservationMock(t)
	defer cleanup()
	repo := NewBusinessRepository(db)

	hours := []byte(`{"open":"09:00","close":"18:00","slotMinutes":30,"days":[{"day":6,"active":false}]}`)
	rows := sqlmock.NewRows([]string{"id", "client_id", "hours", "created_at", "updated_at"}).
		AddRow("p1", "c1", hours, time.Now(), time.Now())

	mock.ExpectQuery("FROM client_profiles WHERE client_id = \\$1").
		WithArgs("c1").
		WillReturnRows(rows)

	profile, err := repo.GetByClient(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "09:00", profile.Hours.Open)
	assert.Equal(t, 30, profile.Hours.SlotMinutes)
	require.Len(t, profile.Hours.Days, 1)
	assert.Equal(t, 6, profile.Hours.Days[0].Day)
	assert.False(t, profile.Hours.Days[0].Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBusinessRepositoryGetByClientNotConfigured(t *testing.T) {
	db, mock, cleanup := newReservationMock(t)
	defer cleanup()
	repo := NewBusinessRepository(db)

	mock.ExpectQuery("FROM client_profiles WHERE client_id = \\$1").
		WithArgs("never-configured").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByClient(context.Background(), "never-configured")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBusinessRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newReservationMock(t)
	defer cleanup()
	repo := NewBusinessRepository(db)

	mock.ExpectExec("INSERT INTO client_profiles").
		WithArgs(sqlmock.AnyArg(), "c1",
			[]byte(`{"open":"09:00","close":"18:00","slotMinutes":30}`),
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	profile := &models.BusinessProfile{
		ClientID: "c1",
		Hours:    models.BusinessHours{Open: "09:00", Close: "18:00", SlotMinutes: 30},
	}
	err := repo.Upsert(context.Background(), profile)
	require.NoError(t, err)
	assert.NotEmpty(t, profile.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
