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

type staffRepository interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.StaffMember, int, error)
	FindByID(ctx context.Context, clientID, staffID string) (*models.StaffMember, error)
	Create(ctx context.Context, member *models.StaffMember) error
	Update(ctx context.Context, member *models.StaffMember) error
	Deactivate(ctx context.Context, clientID, staffID string) error
}

// UpsertStaffRequest captures the staff payload from the configuration UI.
type UpsertStaffRequest struct {
	Name       string                `json:"name" validate:"required"`
	Active     *bool                 `json:"active"`
	ServiceIDs []string              `json:"serviceIds"`
	Hours      *models.StaffHours    `json:"hours"`
	Schedule   *models.StaffSchedule `json:"schedule"`
}

// StaffService manages the tenant's staff roster.
type StaffService struct {
	repo      staffRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStaffService builds the service.
func NewStaffService(repo staffRepository, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{repo: repo, validator: validate, logger: logger}
}

// List returns the roster with pagination.
func (s *StaffService) List(ctx context.Context, filter models.StaffFilter) ([]models.StaffMember, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
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

// Get returns one staff member.
func (s *StaffService) Get(ctx context.Context, clientID, staffID string) (*models.StaffMember, error) {
	member, err := s.repo.FindByID(ctx, clientID, staffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	return member, nil
}

// Create adds a roster member. New members are active unless stated
// otherwise.
func (s *StaffService) Create(ctx context.Context, clientID string, req UpsertStaffRequest) (*models.StaffMember, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}
	if err := validateStaffSchedule(req.Hours, req.Schedule); err != nil {
		return nil, err
	}

	member := &models.StaffMember{
		ClientID:   clientID,
		Name:       req.Name,
		Active:     true,
		ServiceIDs: req.ServiceIDs,
		Hours:      req.Hours,
		Schedule:   req.Schedule,
	}
	if req.Active != nil {
		member.Active = *req.Active
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create staff member")
	}
	return member, nil
}

// Update edits a roster member.
func (s *StaffService) Update(ctx context.Context, clientID, staffID string, req UpsertStaffRequest) (*models.StaffMember, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}
	if err := validateStaffSchedule(req.Hours, req.Schedule); err != nil {
		return nil, err
	}

	member, err := s.Get(ctx, clientID, staffID)
	if err != nil {
		return nil, err
	}

	member.Name = req.Name
	member.ServiceIDs = req.ServiceIDs
	member.Hours = req.Hours
	member.Schedule = req.Schedule
	if req.Active != nil {
		member.Active = *req.Active
	}
	if err := s.repo.Update(ctx, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update staff member")
	}
	return member, nil
}

// Deactivate retires a member from the bookable roster without deleting
// their reservation history.
func (s *StaffService) Deactivate(ctx context.Context, clientID, staffID string) error {
	if _, err := s.Get(ctx, clientID, staffID); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, clientID, staffID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate staff member")
	}
	return nil
}

func validateStaffSchedule(hours *models.StaffHours, schedule *models.StaffSchedule) error {
	if hours != nil {
		if err := validateWindow(hours.Open, hours.Close); err != nil {
			return err
		}
		for _, day := range hours.DaysOfWeek {
			if day < 0 || day > 6 {
				return appErrors.Clone(appErrors.ErrValidation, "daysOfWeek entries must be between 0 and 6")
			}
		}
	}
	if schedule != nil {
		seen := make(map[int]struct{}, len(schedule.Days))
		for _, day := range schedule.Days {
			if day.Day < 0 || day.Day > 6 {
				return appErrors.Clone(appErrors.ErrValidation, "schedule day out of range")
			}
			if _, dup := seen[day.Day]; dup {
				return appErrors.Clone(appErrors.ErrValidation, "duplicate schedule override")
			}
			seen[day.Day] = struct{}{}
			if err := validateWindow(day.Open, day.Close); err != nil {
				return err
			}
		}
	}
	return nil
}
