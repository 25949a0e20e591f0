package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nicolukazzz/reservas-api/internal/dto"
	"github.com/nicolukazzz/reservas-api/internal/models"
	"github.com/nicolukazzz/reservas-api/internal/schedule"
	"github.com/nicolukazzz/reservas-api/pkg/config"
	appErrors "github.com/nicolukazzz/reservas-api/pkg/errors"
)

// AvailabilityService resolves effective hours for a date and generates
// the annotated slot grid the booking UI renders.
type AvailabilityService struct {
	profiles     businessProfileReader
	staff        staffReader
	reservations reservationStore
	cache        *CacheService
	clock        Clock
	cfg          config.BookingConfig
	logger       *zap.Logger
}

// NewAvailabilityService wires the availability pipeline.
func NewAvailabilityService(
	profiles businessProfileReader,
	staff staffReader,
	reservations reservationStore,
	cache *CacheService,
	clock Clock,
	cfg config.BookingConfig,
	logger *zap.Logger,
) *AvailabilityService {
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
	return &AvailabilityService{
		profiles:     profiles,
		staff:        staff,
		reservations: reservations,
		cache:        cache,
		clock:        clock,
		cfg:          cfg,
		logger:       logger,
	}
}

// ResolveHours returns the effective window for the business or, when
// staffID is set, for that staff member. Nil means closed that day.
func (s *AvailabilityService) ResolveHours(ctx context.Context, clientID, staffID, dateID string) (*models.EffectiveHours, error) {
	date, err := models.ParseDateID(dateID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q", dateID))
	}

	profile, err := s.profiles.GetByClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load business profile")
	}

	if staffID == "" {
		return schedule.ResolveBusinessHours(&profile.Hours, date), nil
	}

	member, err := s.staff.FindByID(ctx, clientID, staffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	if !member.Active {
		return nil, nil
	}
	return schedule.ResolveStaffHours(member, &profile.Hours, date), nil
}

// Day builds the annotated slot grid for one date, serving from cache
// when possible.
func (s *AvailabilityService) Day(ctx context.Context, clientID, staffID, dateID string) (*dto.DayAvailability, error) {
	key := s.cacheKey(clientID, staffID, dateID)
	if s.cache.Enabled() {
		var cached dto.DayAvailability
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	hours, err := s.ResolveHours(ctx, clientID, staffID, dateID)
	if err != nil {
		return nil, err
	}
	if hours == nil {
		return &dto.DayAvailability{DateID: dateID, Closed: true}, nil
	}

	step := hours.SlotMinutes
	if step <= 0 {
		step = s.cfg.DefaultDurationMinutes
	}
	starts, err := schedule.GenerateSlots(hours.Open, hours.Close, step)
	if err != nil {
		return nil, err
	}

	existing, err := s.reservations.ListByDate(ctx, clientID, dateID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservations")
	}

	date, _ := models.ParseDateID(dateID)
	now := s.clock.Now()
	scan := schedule.ConflictScan{DefaultDurationMinutes: s.cfg.DefaultDurationMinutes}

	// A slot only turns "past" once it is beyond the booking grace
	// window, so the grid never hides a start the write path accepts.
	cutoff := now.Add(-time.Duration(s.cfg.GraceMinutes) * time.Minute)

	slots := make([]dto.Slot, 0, len(starts))
	for _, start := range starts {
		startMin, _ := schedule.TimeToMinutes(start)
		endMin := startMin + step
		slot := dto.Slot{Time: start, EndTime: schedule.MinutesToTime(endMin), Available: true}

		startAt := time.Date(date.Year(), date.Month(), date.Day(), startMin/60, startMin%60, 0, 0, now.Location())
		switch {
		case startAt.Before(cutoff):
			slot.Available = false
			slot.Reason = "past"
		case staffID != "" && scan.HasConflict(staffID, dateID, startMin, endMin, existing, ""):
			slot.Available = false
			slot.Reason = "booked"
		}
		slots = append(slots, slot)
	}

	result := &dto.DayAvailability{DateID: dateID, Hours: hours, Slots: slots}
	if s.cache.Enabled() {
		s.cache.Set(ctx, key, result)
	}
	return result, nil
}

// InvalidateDay drops cached availability for every staff scope of the
// tenant's date. Called by the booking service after writes.
func (s *AvailabilityService) InvalidateDay(ctx context.Context, clientID, dateID string) {
	s.cache.Invalidate(ctx, fmt.Sprintf("availability:%s:*:%s", clientID, dateID))
}

func (s *AvailabilityService) cacheKey(clientID, staffID, dateID string) string {
	scope := staffID
	if scope == "" {
		scope = "business"
	}
	return fmt.Sprintf("availability:%s:%s:%s", clientID, scope, dateID)
}
