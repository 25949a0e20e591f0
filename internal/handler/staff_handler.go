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

// StaffHandler exposes staff roster endpoints.
type StaffHandler struct {
	staff    *service.StaffService
	bookings *service.BookingService
}

// NewStaffHandler constructs StaffHandler.
func NewStaffHandler(staff *service.StaffService, bookings *service.BookingService) *StaffHandler {
	return &StaffHandler{staff: staff, bookings: bookings}
}

// List godoc
// @Summary List staff members
// @Tags Staff
// @Produce json
// @Param clientId path string true "Client ID"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /clients/{clientId}/staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	filter := models.StaffFilter{ClientID: c.Param("clientId")}
	if active := c.Query("active"); active != "" {
		if parsed, err := strconv.ParseBool(active); err == nil {
			filter.Active = &parsed
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}

	members, pagination, err := h.staff.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, pagination)
}

// Get godoc
// @Summary Get a staff member
// @Tags Staff
// @Produce json
// @Param clientId path string true "Client ID"
// @Param id path string true "Staff ID"
// @Success 200 {object} response.Envelope
// @Router /clients/{clientId}/staff/{id} [get]
func (h *StaffHandler) Get(c *gin.Context) {
	member, err := h.staff.Get(c.Request.Context(), c.Param("clientId"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Create godoc
// @Summary Create a staff member
// @Tags Staff
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Param payload body service.UpsertStaffRequest true "Staff payload"
// @Success 201 {object} response.Envelope
// @Router /clients/{clientId}/staff [post]
func (h *StaffHandler) Create(c *gin.Context) {
	var req service.UpsertStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	member, err := h.staff.Create(c.Request.Context(), c.Param("clientId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// Update godoc
// @Summary Update a staff member
// @Tags Staff
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Param id path string true "Staff ID"
// @Param payload body service.UpsertStaffRequest true "Staff payload"
// @Success 200 {object} response.Envelope
// @Router /clients/{clientId}/staff/{id} [put]
func (h *StaffHandler) Update(c *gin.Context) {
	var req service.UpsertStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	member, err := h.staff.Update(c.Request.Context(), c.Param("clientId"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Deactivate godoc
// @Summary Deactivate a staff member
// @Tags Staff
// @Param clientId path string true "Client ID"
// @Param id path string true "Staff ID"
// @Success 204
// @Router /clients/{clientId}/staff/{id} [delete]
func (h *StaffHandler) Deactivate(c *gin.Context) {
	if err := h.staff.Deactivate(c.Request.Context(), c.Param("clientId"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Available godoc
// @Summary List staff able to take a slot
// @Description Returns roster members, in roster order, whose schedule and existing reservations admit the requested window.
// @Tags Staff
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Param payload body dto.BookingRequest true "Slot to check"
// @Success 200 {object} response.Envelope
// @Router /clients/{clientId}/staff/available [post]
func (h *StaffHandler) Available(c *gin.Context) {
	var req dto.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	members, err := h.bookings.FindAvailableStaff(c.Request.Context(), c.Param("clientId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, nil)
}
