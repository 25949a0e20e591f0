package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nicolukazzz/reservas-api/internal/dto"
	"github.com/nicolukazzz/reservas-api/internal/models"
	"github.com/nicolukazzz/reservas-api/internal/service"
	appErrors "github.com/nicolukazzz/reservas-api/pkg/errors"
	"github.com/nicolukazzz/reservas-api/pkg/response"
)

// ReservationHandler exposes booking endpoints.
type ReservationHandler struct {
	bookings *service.BookingService
	metrics  *service.MetricsService
}

// NewReservationHandler constructs ReservationHandler.
func NewReservationHandler(bookings *service.BookingService, metrics *service.MetricsService) *ReservationHandler {
	return &ReservationHandler{bookings: bookings, metrics: metrics}
}

// List godoc
// @Summary List reservations
// @Tags Reservations
// @Produce json
// @Param clientId path string true "Client ID"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param staffId query string false "Filter by staff member"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /clients/{clientId}/reservations [get]
func (h *ReservationHandler) List(c *gin.Context) {
	filter := models.ReservationFilter{
		ClientID: c.Param("clientId"),
		DateID:   c.Query("date"),
		StaffID:  c.Query("staffId"),
		Status:   models.ReservationStatus(c.Query("status")),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	reservations, pagination, err := h.bookings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservations, pagination)
}

// Get godoc
// @Summary Get a reservation
// @Tags Reservations
// @Produce json
// @Param clientId path string true "Client ID"
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Envelope
// @Router /clients/{clientId}/reservations/{id} [get]
func (h *ReservationHandler) Get(c *gin.Context) {
	reservation, err := h.bookings.Get(c.Request.Context(), c.Param("clientId"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservation, nil)
}

// Create godoc
// @Summary Create a reservation
// @Description Validates the requested slot against business hours, staff schedules and existing reservations before committing.
// @Tags Reservations
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Param payload body dto.BookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /clients/{clientId}/reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	var req dto.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	booked, err := h.bookings.Create(c.Request.Context(), c.Param("clientId"), req)
	if err != nil {
		h.recordOutcome(err)
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordBookingOutcome("")
	}
	response.Created(c, booked)
}

// Validate godoc
// @Summary Validate a booking without committing it
// @Tags Reservations
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Param payload body dto.BookingRequest true "Booking payload"
// @Success 200 {object} response.Envelope
// @Router /clients/{clientId}/reservations/validate [post]
func (h *ReservationHandler) Validate(c *gin.Context) {
	var req dto.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	decision, err := h.bookings.Validate(c.Request.Context(), c.Param("clientId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ValidateBookingResponse{
		CanBook: decision.CanBook,
		Reason:  decision.Reason,
		Code:    decision.Code,
	}, nil)
}

// Update godoc
// @Summary Reschedule or edit a reservation
// @Tags Reservations
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Param id path string true "Reservation ID"
// @Param payload body dto.BookingRequest true "Booking payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /clients/{clientId}/reservations/{id} [put]
func (h *ReservationHandler) Update(c *gin.Context) {
	var req dto.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	updated, err := h.bookings.Update(c.Request.Context(), c.Param("clientId"), c.Param("id"), req)
	if err != nil {
		h.recordOutcome(err)
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// UpdateStatus godoc
// @Summary Transition a reservation's status
// @Tags Reservations
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Param id path string true "Reservation ID"
// @Param payload body dto.UpdateStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /clients/{clientId}/reservations/{id}/status [patch]
func (h *ReservationHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	updated, err := h.bookings.UpdateStatus(c.Request.Context(), c.Param("clientId"), c.Param("id"), models.ReservationStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Delete godoc
// @Summary Delete a reservation
// @Tags Reservations
// @Param clientId path string true "Client ID"
// @Param id path string true "Reservation ID"
// @Success 204
// @Router /clients/{clientId}/reservations/{id} [delete]
func (h *ReservationHandler) Delete(c *gin.Context) {
	if err := h.bookings.Delete(c.Request.Context(), c.Param("clientId"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *ReservationHandler) recordOutcome(err error) {
	if h.metrics == nil {
		return
	}
	if appErr := appErrors.FromError(err); appErr != nil {
		h.metrics.RecordBookingOutcome(appErr.Code)
	}
}
