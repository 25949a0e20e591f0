package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nicolukazzz/reservas-api/internal/dto"
	"github.com/nicolukazzz/reservas-api/internal/models"
	"github.com/nicolukazzz/reservas-api/internal/repository"
	"github.com/nicolukazzz/reservas-api/internal/schedule"
	"github.com/nicolukazzz/reservas-api/pkg/config"
	appErrors "github.com/nicolukazzz/reservas-api/pkg/errors"
)

type businessProfileReader interface {
	GetByClient(ctx context.Context, clientID string) (*models.BusinessProfile, error)
}

type staffReader interface {
	FindByID(ctx context.Context, clientID, staffID string) (*models.StaffMember, error)
	ListByClient(ctx context.Context, clientID string) ([]models.StaffMember, error)
}

type offeringReader interface {
	FindByID(ctx context.Context, clientID, offeringID string) (*models.Offering, error)
}

type reservationStore interface {
	List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, int, error)
	ListByDate(ctx context.Context, clientID, dateID string) ([]models.Reservation, error)
	FindByID(ctx context.Context, clientID, id string) (*models.Reservation, error)
	CreateIfFree(ctx context.Context, res *models.Reservation, startMin, endMin int) error
	Update(ctx context.Context, res *models.Reservation) error
	UpdateStatus(ctx context.Context, clientID, id string, status models.ReservationStatus) error
	Delete(ctx context.Context, clientID, id string) error
}

type availabilityInvalidator interface {
	InvalidateDay(ctx context.Context, clientID, dateID string)
}

// BookingService validates booking requests against tenant schedules,
// staff capability and existing reservations, and writes accepted
// bookings through the conflict-guarded store.
type BookingService struct {
	profiles     businessProfileReader
	staff        staffReader
	offerings    offeringReader
	reservations reservationStore
	invalidator  availabilityInvalidator
	validator    *validator.Validate
	clock        Clock
	cfg          config.BookingConfig
	logger       *zap.Logger
}

// NewBookingService wires the booking pipeline.
func NewBookingService(
	profiles businessProfileReader,
	staff staffReader,
	offerings offeringReader,
	reservations reservationStore,
	invalidator availabilityInvalidator,
	validate *validator.Validate,
	clock Clock,
	cfg config.BookingConfig,
	logger *zap.Logger,
) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.GraceMinutes <= 0 {
		cfg.GraceMinutes = 5
	}
	if cfg.DefaultDurationMinutes <= 0 {
		cfg.DefaultDurationMinutes = 60
	}
	return &BookingService{
		profiles:     profiles,
		staff:        staff,
		offerings:    offerings,
		reservations: reservations,
		invalidator:  invalidator,
		validator:    validate,
		clock:        clock,
		cfg:          cfg,
		logger:       logger,
	}
}

// bookingParams is a parsed, duration-resolved booking request.
type bookingParams struct {
	date      time.Time
	dateID    string
	startMin  int
	endMin    int
	serviceID string
}

// Validate runs the booking checks without writing anything. The
// returned decision carries the machine code of the first failing check.
func (s *BookingService) Validate(ctx context.Context, clientID string, req dto.BookingRequest) (models.BookingDecision, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Rejected(appErrors.ErrValidation.Code, "invalid booking payload"), nil
	}

	params, decision := s.resolveParams(ctx, clientID, req)
	if decision != nil {
		return *decision, nil
	}

	profile, hasProfile, err := s.loadProfile(ctx, clientID)
	if err != nil {
		return models.BookingDecision{}, err
	}

	var staff *models.StaffMember
	if req.StaffID != "" {
		staff, err = s.loadStaff(ctx, clientID, req.StaffID)
		if err != nil {
			return models.BookingDecision{}, err
		}
	}

	var existing []models.Reservation
	if staff != nil {
		existing, err = s.reservations.ListByDate(ctx, clientID, params.dateID)
		if err != nil {
			return models.BookingDecision{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservations")
		}
	}

	return s.decide(clientID, staff, profile, hasProfile, *params, existing, ""), nil
}

// Create validates and persists a booking. When the request names no
// staff member the least-loaded capable one is auto-selected. The
// in-service conflict check is the advisory fast path; the repository
// re-checks inside a transaction and is authoritative under races.
func (s *BookingService) Create(ctx context.Context, clientID string, req dto.BookingRequest) (*dto.BookingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	params, rejected := s.resolveParams(ctx, clientID, req)
	if rejected != nil {
		return nil, decisionError(*rejected)
	}

	profile, hasProfile, err := s.loadProfile(ctx, clientID)
	if err != nil {
		return nil, err
	}

	existing, err := s.reservations.ListByDate(ctx, clientID, params.dateID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservations")
	}

	var staff *models.StaffMember
	if req.StaffID != "" {
		staff, err = s.loadStaff(ctx, clientID, req.StaffID)
		if err != nil {
			return nil, err
		}
		if decision := s.decide(clientID, staff, profile, hasProfile, *params, existing, ""); !decision.CanBook {
			s.logger.Debug("booking rejected",
				zap.String("client_id", clientID),
				zap.String("code", decision.Code),
				zap.String("rejected_by", string(models.RejectedByValidator)),
			)
			return nil, decisionError(decision)
		}
	} else {
		roster, err := s.staff.ListByClient(ctx, clientID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff roster")
		}
		staff = s.autoSelect(clientID, roster, profile, hasProfile, *params, existing)
		if staff == nil {
			return nil, appErrors.Clone(appErrors.ErrNoStaffAvailable, "")
		}
	}

	res := &models.Reservation{
		ID:              uuid.NewString(),
		ClientID:        clientID,
		DateID:          params.dateID,
		Time:            schedule.MinutesToTime(params.startMin),
		EndTime:         schedule.MinutesToTime(params.endMin),
		DurationMinutes: params.endMin - params.startMin,
		StaffID:         staff.ID,
		ServiceID:       req.ServiceID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		Status:          models.StatusPendiente,
	}

	if err := s.reservations.CreateIfFree(ctx, res, params.startMin, params.endMin); err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			s.logger.Warn("booking lost conflict race",
				zap.String("client_id", clientID),
				zap.String("staff_id", staff.ID),
				zap.String("date_id", params.dateID),
				zap.String("rejected_by", string(models.RejectedByStore)),
			)
			return nil, appErrors.Clone(appErrors.ErrStaffConflict, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store reservation")
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateDay(ctx, clientID, params.dateID)
	}

	return &dto.BookingResponse{Reservation: res, Staff: staff}, nil
}

// Update re-validates an edited reservation, excluding it from its own
// conflict scan, and stores the new window.
func (s *BookingService) Update(ctx context.Context, clientID, reservationID string, req dto.BookingRequest) (*models.Reservation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	current, err := s.reservations.FindByID(ctx, clientID, reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reservation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation")
	}

	params, rejected := s.resolveParams(ctx, clientID, req)
	if rejected != nil {
		return nil, decisionError(*rejected)
	}

	staffID := req.StaffID
	if staffID == "" {
		staffID = current.StaffID
	}
	var staff *models.StaffMember
	if staffID != "" {
		staff, err = s.loadStaff(ctx, clientID, staffID)
		if err != nil {
			return nil, err
		}
	}

	profile, hasProfile, err := s.loadProfile(ctx, clientID)
	if err != nil {
		return nil, err
	}

	existing, err := s.reservations.ListByDate(ctx, clientID, params.dateID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservations")
	}

	if decision := s.decide(clientID, staff, profile, hasProfile, *params, existing, current.ID); !decision.CanBook {
		return nil, decisionError(decision)
	}

	current.DateID = params.dateID
	current.Time = schedule.MinutesToTime(params.startMin)
	current.EndTime = schedule.MinutesToTime(params.endMin)
	current.DurationMinutes = params.endMin - params.startMin
	if staff != nil {
		current.StaffID = staff.ID
	}
	if req.ServiceID != "" {
		current.ServiceID = req.ServiceID
	}
	if req.CustomerName != "" {
		current.CustomerName = req.CustomerName
	}
	if req.CustomerPhone != "" {
		current.CustomerPhone = req.CustomerPhone
	}

	if err := s.reservations.Update(ctx, current); err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			s.logger.Warn("reservation update lost conflict race",
				zap.String("client_id", clientID),
				zap.String("reservation_id", current.ID),
				zap.String("staff_id", current.StaffID),
				zap.String("date_id", current.DateID))
			return nil, appErrors.Clone(appErrors.ErrStaffConflict, "the selected time was just taken")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update reservation")
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateDay(ctx, clientID, params.dateID)
	}
	return current, nil
}

// UpdateStatus moves a reservation through its lifecycle.
func (s *BookingService) UpdateStatus(ctx context.Context, clientID, reservationID string, status models.ReservationStatus) (*models.Reservation, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", status))
	}
	current, err := s.reservations.FindByID(ctx, clientID, reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reservation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation")
	}
	if err := s.reservations.UpdateStatus(ctx, clientID, reservationID, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update reservation status")
	}
	current.Status = status
	if s.invalidator != nil {
		s.invalidator.InvalidateDay(ctx, clientID, current.DateID)
	}
	return current, nil
}

// Get fetches a single reservation.
func (s *BookingService) Get(ctx context.Context, clientID, reservationID string) (*models.Reservation, error) {
	current, err := s.reservations.FindByID(ctx, clientID, reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reservation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation")
	}
	return current, nil
}

// List returns reservations for the tenant with pagination.
func (s *BookingService) List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, *models.Pagination, error) {
	items, total, err := s.reservations.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reservations")
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

// Delete removes a reservation.
func (s *BookingService) Delete(ctx context.Context, clientID, reservationID string) error {
	current, err := s.reservations.FindByID(ctx, clientID, reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "reservation not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation")
	}
	if err := s.reservations.Delete(ctx, clientID, reservationID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete reservation")
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateDay(ctx, clientID, current.DateID)
	}
	return nil
}

// FindAvailableStaff returns every roster member that could take the
// requested slot, preserving roster order.
func (s *BookingService) FindAvailableStaff(ctx context.Context, clientID string, req dto.BookingRequest) ([]models.StaffMember, error) {
	params, rejected := s.resolveParams(ctx, clientID, req)
	if rejected != nil {
		return nil, decisionError(*rejected)
	}
	profile, hasProfile, err := s.loadProfile(ctx, clientID)
	if err != nil {
		return nil, err
	}
	roster, err := s.staff.ListByClient(ctx, clientID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff roster")
	}
	existing, err := s.reservations.ListByDate(ctx, clientID, params.dateID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservations")
	}

	available := make([]models.StaffMember, 0, len(roster))
	for i := range roster {
		candidate := roster[i]
		if decision := s.decide(clientID, &candidate, profile, hasProfile, *params, existing, ""); decision.CanBook {
			available = append(available, candidate)
		}
	}
	return available, nil
}

// autoSelect picks the available member with the fewest blocking
// reservations on the target date. Ties break to the earliest roster
// position, which keeps selection reproducible.
func (s *BookingService) autoSelect(clientID string, roster []models.StaffMember, profile *models.BusinessProfile, hasProfile bool, params bookingParams, existing []models.Reservation) *models.StaffMember {
	var best *models.StaffMember
	bestLoad := 0
	for i := range roster {
		candidate := &roster[i]
		if decision := s.decide(clientID, candidate, profile, hasProfile, params, existing, ""); !decision.CanBook {
			continue
		}
		load := schedule.CountBlocking(candidate.ID, params.dateID, existing)
		if best == nil || load < bestLoad {
			best = candidate
			bestLoad = load
		}
	}
	return best
}

// decide runs the ordered short-circuit checks. The first failing check
// names the rejection; the order is a UX decision, not arbitrary.
func (s *BookingService) decide(clientID string, staff *models.StaffMember, profile *models.BusinessProfile, hasProfile bool, params bookingParams, existing []models.Reservation, excludeID string) models.BookingDecision {
	now := s.clock.Now()
	candidate := time.Date(
		params.date.Year(), params.date.Month(), params.date.Day(),
		params.startMin/60, params.startMin%60, 0, 0, now.Location(),
	)
	grace := time.Duration(s.cfg.GraceMinutes) * time.Minute
	if candidate.Before(now.Add(-grace)) {
		return models.Rejected(appErrors.ErrPastTime.Code, appErrors.ErrPastTime.Message)
	}

	if staff != nil && !staff.Active {
		return models.Rejected(appErrors.ErrStaffInactive.Code, appErrors.ErrStaffInactive.Message)
	}

	if staff != nil && params.serviceID != "" && !staff.Capability().Allows(params.serviceID) {
		return models.Rejected(appErrors.ErrServiceNotOffered.Code, appErrors.ErrServiceNotOffered.Message)
	}

	if !hasProfile {
		// No hours profile on record. The default policy lets the
		// booking through rather than blocking the whole tenant; strict
		// mode turns this into a rejection.
		if s.cfg.StrictProfile {
			return models.Rejected(appErrors.ErrClosedDay.Code, "no hours profile on record")
		}
		s.logger.Warn("booking allowed without hours profile",
			zap.String("client_id", clientID),
			zap.String("date_id", params.dateID),
		)
	} else {
		var businessHours *models.BusinessHours
		if profile != nil {
			businessHours = &profile.Hours
		}
		var hours *models.EffectiveHours
		if staff != nil {
			hours = schedule.ResolveStaffHours(staff, businessHours, params.date)
		} else {
			hours = schedule.ResolveBusinessHours(businessHours, params.date)
		}
		if hours == nil {
			return models.Rejected(appErrors.ErrClosedDay.Code, appErrors.ErrClosedDay.Message)
		}

		open, err := schedule.TimeToMinutes(hours.Open)
		if err != nil {
			return models.Rejected(appErrors.ErrValidation.Code, "malformed opening time in configuration")
		}
		closing, err := schedule.TimeToMinutes(hours.Close)
		if err != nil {
			return models.Rejected(appErrors.ErrValidation.Code, "malformed closing time in configuration")
		}
		// A booking ending exactly at close is fine; one starting at
		// close is not.
		if params.startMin < open || params.endMin > closing {
			return models.Rejected(appErrors.ErrOutsideHours.Code, appErrors.ErrOutsideHours.Message)
		}
	}

	if staff != nil {
		scan := schedule.ConflictScan{DefaultDurationMinutes: s.cfg.DefaultDurationMinutes}
		if scan.HasConflict(staff.ID, params.dateID, params.startMin, params.endMin, existing, excludeID) {
			return models.Rejected(appErrors.ErrStaffConflict.Code, appErrors.ErrStaffConflict.Message)
		}
	}

	return models.Allowed()
}

// resolveParams parses the request and resolves its duration from the
// request, then the offering, then the configured default. A non-nil
// decision means the request itself is malformed.
func (s *BookingService) resolveParams(ctx context.Context, clientID string, req dto.BookingRequest) (*bookingParams, *models.BookingDecision) {
	date, err := models.ParseDateID(req.DateID)
	if err != nil {
		d := models.Rejected(appErrors.ErrValidation.Code, fmt.Sprintf("invalid date %q", req.DateID))
		return nil, &d
	}
	startMin, err := schedule.TimeToMinutes(req.Time)
	if err != nil {
		d := models.Rejected(appErrors.ErrValidation.Code, fmt.Sprintf("invalid time %q", req.Time))
		return nil, &d
	}

	duration := req.DurationMinutes
	if duration <= 0 && req.ServiceID != "" && s.offerings != nil {
		offering, err := s.offerings.FindByID(ctx, clientID, req.ServiceID)
		if err == nil && offering.DurationMinutes > 0 {
			duration = offering.DurationMinutes
		}
	}
	if duration <= 0 {
		duration = s.cfg.DefaultDurationMinutes
	}

	return &bookingParams{
		date:      date,
		dateID:    req.DateID,
		startMin:  startMin,
		endMin:    startMin + duration,
		serviceID: req.ServiceID,
	}, nil
}

func (s *BookingService) loadProfile(ctx context.Context, clientID string) (*models.BusinessProfile, bool, error) {
	profile, err := s.profiles.GetByClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load business profile")
	}
	return profile, true, nil
}

func (s *BookingService) loadStaff(ctx context.Context, clientID, staffID string) (*models.StaffMember, error) {
	staff, err := s.staff.FindByID(ctx, clientID, staffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	return staff, nil
}

// decisionError converts a rejection decision into the typed error whose
// HTTP status the boundary expects.
func decisionError(d models.BookingDecision) *appErrors.Error {
	for _, known := range []*appErrors.Error{
		appErrors.ErrPastTime,
		appErrors.ErrOutsideHours,
		appErrors.ErrClosedDay,
		appErrors.ErrStaffInactive,
		appErrors.ErrServiceNotOffered,
		appErrors.ErrStaffConflict,
		appErrors.ErrNoStaffAvailable,
	} {
		if known.Code == d.Code {
			return appErrors.Clone(known, d.Reason)
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, d.Reason)
}
