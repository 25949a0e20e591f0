package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nicolukazzz/reservas-api/internal/models"
	appErrors "github.com/nicolukazzz/reservas-api/pkg/errors"
)

type offeringRepository interface {
	List(ctx context.Context, filter models.OfferingFilter) ([]models.Offering, int, error)
	FindByID(ctx context.Context, clientID, offeringID string) (*models.Offering, error)
	Create(ctx context.Context, offering *models.Offering) error
	Update(ctx context.Context, offering *models.Offering) error
	Delete(ctx context.Context, clientID, offeringID string) error
}

// UpsertOfferingRequest captures the service payload from the
// configuration UI.
type UpsertOfferingRequest struct {
	Name            string  `json:"name" validate:"required"`
	Price           float64 `json:"price" validate:"omitempty,min=0"`
	DurationMinutes int     `json:"durationMinutes" validate:"omitempty,min=1"`
	Active          *bool   `json:"active"`
}

// OfferingService manages the tenant's bookable services.
type OfferingService struct {
	repo      offeringRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOfferingService builds the service.
func NewOfferingService(repo offeringRepository, validate *validator.Validate, logger *zap.Logger) *OfferingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfferingService{repo: repo, validator: validate, logger: logger}
}

// List returns offerings with pagination.
func (s *OfferingService) List(ctx context.Context, filter models.OfferingFilter) ([]models.Offering, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offerings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one offering.
func (s *OfferingService) Get(ctx context.Context, clientID, offeringID string) (*models.Offering, error) {
	offering, err := s.repo.FindByID(ctx, clientID, offeringID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
	}
	return offering, nil
}

// Create adds an offering.
func (s *OfferingService) Create(ctx context.Context, clientID string, req UpsertOfferingRequest) (*models.Offering, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offering payload")
	}
	offering := &models.Offering{
		ClientID:        clientID,
		Name:            req.Name,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		Active:          true,
	}
	if req.Active != nil {
		offering.Active = *req.Active
	}
	if err := s.repo.Create(ctx, offering); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create offering")
	}
	return offering, nil
}

// Update edits an offering.
func (s *OfferingService) Update(ctx context.Context, clientID, offeringID string, req UpsertOfferingRequest) (*models.Offering, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offering payload")
	}
	offering, err := s.Get(ctx, clientID, offeringID)
	if err != nil {
		return nil, err
	}
	offering.Name = req.Name
	offering.Price = req.Price
	offering.DurationMinutes = req.DurationMinutes
	if req.Active != nil {
		offering.Active = *req.Active
	}
	if err := s.repo.Update(ctx, offering); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update offering")
	}
	return offering, nil
}

// Delete removes an offering.
func (s *OfferingService) Delete(ctx context.Context, clientID, offeringID string) error {
	if _, err := s.Get(ctx, clientID, offeringID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, clientID, offeringID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete offering")
	}
	return nil
}
