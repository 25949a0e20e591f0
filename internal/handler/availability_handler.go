package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nicolukazzz/reservas-api/internal/service"
	"github.com/nicolukazzz/reservas-api/pkg/response"
)

// AvailabilityHandler exposes the slot grid the booking UI renders.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// Day godoc
// @Summary Get the availability grid for a date
// @Description Resolves effective hours for the business or a staff member and returns the slot grid with booked and past slots marked.
// @Tags Availability
// @Produce json
// @Param clientId path string true "Client ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param staffId query string false "Resolve for a specific staff member"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /clients/{clientId}/availability/{date} [get]
func (h *AvailabilityHandler) Day(c *gin.Context) {
	day, err := h.availability.Day(c.Request.Context(), c.Param("clientId"), c.Query("staffId"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, day, nil)
}
