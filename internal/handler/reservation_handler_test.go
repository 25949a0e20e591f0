package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolukazzz/reservas-api/internal/dto"
	"github.com/nicolukazzz/reservas-api/internal/models"
	"github.com/nicolukazzz/reservas-api/internal/service"
	"github.com/nicolukazzz/reservas-api/pkg/config"
)

type profileReaderMock struct {
	profile *models.BusinessProfile
}

func (m *profileReaderMock) GetByClient(ctx context.Context, clientID string) (*models.BusinessProfile, error) {
	if m.profile == nil {
		return nil, sql.ErrNoRows
	}
	return m.profile, nil
}

type staffReaderMock struct {
	members []models.StaffMember
}

func (m *staffReaderMock) FindByID(ctx context.Context, clientID, staffID string) (*models.StaffMember, error) {
	for i := range m.members {
		if m.members[i].ID == staffID {
			return &m.members[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *staffReaderMock) ListByClient(ctx context.Context, clientID string) ([]models.StaffMember, error) {
	return m.members, nil
}

type offeringReaderMock struct{}

func (m *offeringReaderMock) FindByID(ctx context.Context, clientID, offeringID string) (*models.Offering, error) {
	return nil, sql.ErrNoRows
}

type reservationStoreMock struct {
	existing []models.Reservation
}

func (m *reservationStoreMock) List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, int, error) {
	return m.existing, len(m.existing), nil
}

func (m *reservationStoreMock) ListByDate(ctx context.Context, clientID, dateID string) ([]models.Reservation, error) {
	return m.existing, nil
}

func (m *reservationStoreMock) FindByID(ctx context.Context, clientID, id string) (*models.Reservation, error) {
	for i := range m.existing {
		if m.existing[i].ID == id {
			r := m.existing[i]
			return &r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *reservationStoreMock) CreateIfFree(ctx context.Context, res *models.Reservation, startMin, endMin int) error {
	m.existing = append(m.existing, *res)
	return nil
}

func (m *reservationStoreMock) Update(ctx context.Context, res *models.Reservation) error { return nil }

func (m *reservationStoreMock) UpdateStatus(ctx context.Context, clientID, id string, status models.ReservationStatus) error {
	return nil
}

func (m *reservationStoreMock) Delete(ctx context.Context, clientID, id string) error { return nil }

func newBookingHandler(store *reservationStoreMock) *ReservationHandler {
	profile := &models.BusinessProfile{
		ClientID: "c1",
		Hours:    models.BusinessHours{Open: "09:00", Close: "18:00", SlotMinutes: 30},
	}
	bookings := service.NewBookingService(
		&profileReaderMock{profile: profile},
		&staffReaderMock{members: []models.StaffMember{{ID: "st1", ClientID: "c1", Name: "María", Active: true}}},
		&offeringReaderMock{},
		store,
		nil,
		nil,
		service.FixedClock{Instant: time.Date(2025, 3, 17, 8, 0, 0, 0, time.UTC)},
		config.BookingConfig{GraceMinutes: 5, DefaultDurationMinutes: 60},
		nil,
	)
	return NewReservationHandler(bookings, nil)
}

func postBooking(t *testing.T, h *ReservationHandler, payload interface{}, invoke func(*gin.Context)) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, "/clients/c1/reservations", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "clientId", Value: "c1"}}
	invoke(c)
	return w
}

func TestReservationHandlerCreate(t *testing.T) {
	store := &reservationStoreMock{}
	h := newBookingHandler(store)

	w := postBooking(t, h, dto.BookingRequest{
		DateID:       "2025-03-17",
		Time:         "10:00",
		StaffID:      "st1",
		CustomerName: "Ana",
	}, h.Create)

	require.Equal(t, http.StatusCreated, w.Code)
	var envelope struct {
		Data dto.BookingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data.Reservation)
	assert.Equal(t, "10:00", envelope.Data.Reservation.Time)
	assert.Equal(t, "11:00", envelope.Data.Reservation.EndTime)
	assert.Equal(t, models.StatusPendiente, envelope.Data.Reservation.Status)
	require.Len(t, store.existing, 1)
}

func TestReservationHandlerCreateOutsideHours(t *testing.T) {
	h := newBookingHandler(&reservationStoreMock{})

	w := postBooking(t, h, dto.BookingRequest{
		DateID: "2025-03-17",
		Time:   "19:00",
	}, h.Create)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "OUTSIDE_HOURS", envelope.Error.Code)
}

func TestReservationHandlerCreateConflict(t *testing.T) {
	store := &reservationStoreMock{existing: []models.Reservation{{
		ID:       "r1",
		ClientID: "c1",
		DateID:   "2025-03-17",
		Time:     "10:00",
		EndTime:  "11:00",
		StaffID:  "st1",
		Status:   models.StatusConfirmada,
	}}}
	h := newBookingHandler(store)

	w := postBooking(t, h, dto.BookingRequest{
		DateID:  "2025-03-17",
		Time:    "10:30",
		StaffID: "st1",
	}, h.Create)

	require.Equal(t, http.StatusConflict, w.Code)
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "STAFF_CONFLICT", envelope.Error.Code)
}

func TestReservationHandlerCreateInvalidBody(t *testing.T) {
	h := newBookingHandler(&reservationStoreMock{})
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/clients/c1/reservations", bytes.NewReader([]byte(`invalid`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "clientId", Value: "c1"}}

	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReservationHandlerValidateDryRun(t *testing.T) {
	store := &reservationStoreMock{}
	h := newBookingHandler(store)

	w := postBooking(t, h, dto.BookingRequest{
		DateID: "2025-03-17",
		Time:   "19:00",
	}, h.Validate)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data dto.ValidateBookingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.CanBook)
	assert.Equal(t, "OUTSIDE_HOURS", envelope.Data.Code)
	// Dry runs never write.
	assert.Empty(t, store.existing)
}
