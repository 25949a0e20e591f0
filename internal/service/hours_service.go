package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nicolukazzz/reservas-api/internal/models"
	"github.com/nicolukazzz/reservas-api/internal/schedule"
	appErrors "github.com/nicolukazzz/reservas-api/pkg/errors"
)

type businessProfileStore interface {
	GetByClient(ctx context.Context, clientID string) (*models.BusinessProfile, error)
	Upsert(ctx context.Context, profile *models.BusinessProfile) error
}

// HoursService manages the tenant's hours configuration.
type HoursService struct {
	repo      businessProfileStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHoursService builds the service.
func NewHoursService(repo businessProfileStore, validate *validator.Validate, logger *zap.Logger) *HoursService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HoursService{repo: repo, validator: validate, logger: logger}
}

// Get returns the stored hours profile.
func (s *HoursService) Get(ctx context.Context, clientID string) (*models.BusinessProfile, error) {
	profile, err := s.repo.GetByClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no hours profile on record")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load business profile")
	}
	return profile, nil
}

// Upsert validates and stores the tenant's hours configuration.
func (s *HoursService) Upsert(ctx context.Context, clientID string, hours models.BusinessHours) (*models.BusinessProfile, error) {
	if err := validateHours(hours); err != nil {
		return nil, err
	}

	profile := &models.BusinessProfile{ClientID: clientID, Hours: hours}
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store business profile")
	}
	return profile, nil
}

func validateHours(hours models.BusinessHours) error {
	if hours.SlotMinutes <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "slotMinutes must be positive")
	}
	if err := validateWindow(hours.Open, hours.Close); err != nil {
		return err
	}

	seen := make(map[int]struct{}, len(hours.Days))
	for _, day := range hours.Days {
		if day.Day < 0 || day.Day > 6 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day %d out of range", day.Day))
		}
		if _, dup := seen[day.Day]; dup {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate override for day %d", day.Day))
		}
		seen[day.Day] = struct{}{}
		if day.Active {
			if err := validateWindow(day.Open, day.Close); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateWindow(open, close string) error {
	openMin, err := schedule.TimeToMinutes(open)
	if err != nil {
		return err
	}
	closeMin, err := schedule.TimeToMinutes(close)
	if err != nil {
		return err
	}
	if openMin >= closeMin {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("open %s must be before close %s", open, close))
	}
	return nil
}
