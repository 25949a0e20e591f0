package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nicolukazzz/reservas-api/internal/models"
	"github.com/nicolukazzz/reservas-api/internal/service"
	appErrors "github.com/nicolukazzz/reservas-api/pkg/errors"
	"github.com/nicolukazzz/reservas-api/pkg/response"
)

// OfferingHandler exposes the tenant's bookable services.
type OfferingHandler struct {
	offerings *service.OfferingService
}

// NewOfferingHandler constructs OfferingHandler.
func NewOfferingHandler(offerings *service.OfferingService) *OfferingHandler {
	return &OfferingHandler{offerings: offerings}
}

// List godoc
// @Summary List offerings
// @Tags Offerings
// @Produce json
// @Param clientId path string true "Client ID"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /clients/{clientId}/services [get]
func (h *OfferingHandler) List(c *gin.Context) {
	filter := models.OfferingFilter{ClientID: c.Param("clientId")}
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

	offerings, pagination, err := h.offerings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offerings, pagination)
}

// Get godoc
// @Summary Get an offering
// @Tags Offerings
// @Produce json
// @Param clientId path string true "Client ID"
// @Param id path string true "Offering ID"
// @Success 200 {object} response.Envelope
// @Router /clients/{clientId}/services/{id} [get]
func (h *OfferingHandler) Get(c *gin.Context) {
	offering, err := h.offerings.Get(c.Request.Context(), c.Param("clientId"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offering, nil)
}

// Create godoc
// @Summary Create an offering
// @Tags Offerings
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Param payload body service.UpsertOfferingRequest true "Offering payload"
// @Success 201 {object} response.Envelope
// @Router /clients/{clientId}/services [post]
func (h *OfferingHandler) Create(c *gin.Context) {
	var req service.UpsertOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	offering, err := h.offerings.Create(c.Request.Context(), c.Param("clientId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, offering)
}

// Update godoc
// @Summary Update an offering
// @Tags Offerings
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Param id path string true "Offering ID"
// @Param payload body service.UpsertOfferingRequest true "Offering payload"
// @Success 200 {object} response.Envelope
// @Router /clients/{clientId}/services/{id} [put]
func (h *OfferingHandler) Update(c *gin.Context) {
	var req service.UpsertOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	offering, err := h.offerings.Update(c.Request.Context(), c.Param("clientId"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offering, nil)
}

// Delete godoc
// @Summary Delete an offering
// @Tags Offerings
// @Param clientId path string true "Client ID"
// @Param id path string true "Offering ID"
// @Success 204
// @Router /clients/{clientId}/services/{id} [delete]
func (h *OfferingHandler) Delete(c *gin.Context) {
	if err := h.offerings.Delete(c.Request.Context(), c.Param("clientId"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
