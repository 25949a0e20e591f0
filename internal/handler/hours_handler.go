package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nicolukazzz/reservas-api/internal/models"
	"github.com/nicolukazzz/reservas-api/internal/service"
	appErrors "github.com/nicolukazzz/reservas-api/pkg/errors"
	"github.com/nicolukazzz/reservas-api/pkg/response"
)

// HoursHandler exposes the tenant's opening-hours configuration.
type HoursHandler struct {
	hours *service.HoursService
}

// NewHoursHandler constructs HoursHandler.
func NewHoursHandler(hours *service.HoursService) *HoursHandler {
	return &HoursHandler{hours: hours}
}

// Get godoc
// @Summary Get the business hours configuration
// @Tags Hours
// @Produce json
// @Param clientId path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Router /clients/{clientId}/hours [get]
func (h *HoursHandler) Get(c *gin.Context) {
	profile, err := h.hours.Get(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Put godoc
// @Summary Replace the business hours configuration
// @Tags Hours
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Param payload body models.BusinessHours true "Hours payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /clients/{clientId}/hours [put]
func (h *HoursHandler) Put(c *gin.Context) {
	var hours models.BusinessHours
	if err := c.ShouldBindJSON(&hours); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	profile, err := h.hours.Upsert(c.Request.Context(), c.Param("clientId"), hours)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}
