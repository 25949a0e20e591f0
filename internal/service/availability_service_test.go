package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nicolukazzz/reservas-api/internal/dto"
	"github.com/nicolukazzz/reservas-api/internal/models"
	appErrors "github.com/nicolukazzz/reservas-api/pkg/errors"
)

type mockCacheRepo struct {
	store    map[string][]byte
	patterns []string
}

func (m *mockCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.store == nil {
		m.store = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = raw
	return nil
}

func (m *mockCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

func newTestAvailabilityService(profiles *mockProfileRepo, staff *mockStaffRepo, store *mockReservationStore, cacheRepo *mockCacheRepo) *AvailabilityService {
	var cacheSvc *CacheService
	if cacheRepo != nil {
		cacheSvc = NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	}
	return NewAvailabilityService(profiles, staff, store, cacheSvc, FixedClock{Instant: testNow}, testBookingConfig(), zap.NewNop())
}

func TestAvailabilityDayGrid(t *testing.T) {
	svc := newTestAvailabilityService(
		&mockProfileRepo{profile: testProfile()},
		&mockStaffRepo{}, &mockReservationStore{}, nil,
	)

	day, err := svc.Day(context.Background(), "c1", "", testDate)
	require.NoError(t, err)
	assert.False(t, day.Closed)
	require.NotNil(t, day.Hours)

	// 09:00-18:00 at a 30-minute step: 18 slots, half-open at close.
	require.Len(t, day.Slots, 18)
	assert.Equal(t, "09:00", day.Slots[0].Time)
	assert.Equal(t, "09:30", day.Slots[0].EndTime)
	assert.Equal(t, "17:30", day.Slots[len(day.Slots)-1].Time)
}

func TestAvailabilityDayMarksBookedForStaff(t *testing.T) {
	store := &mockReservationStore{existing: []models.Reservation{
		{ID: "r1", ClientID: "c1", DateID: testDate, Time: "10:00", EndTime: "11:00", StaffID: "st1", Status: models.StatusConfirmada},
	}}
	staff := &mockStaffRepo{members: []models.StaffMember{{ID: "st1", Active: true}}}
	svc := newTestAvailabilityService(&mockProfileRepo{profile: testProfile()}, staff, store, nil)

	day, err := svc.Day(context.Background(), "c1", "st1", testDate)
	require.NoError(t, err)

	byTime := map[string]string{}
	for _, slot := range day.Slots {
		if !slot.Available {
			byTime[slot.Time] = slot.Reason
		}
	}
	assert.Equal(t, "booked", byTime["10:00"])
	assert.Equal(t, "booked", byTime["10:30"])
	_, blocked := byTime["11:00"]
	assert.False(t, blocked, "the slot starting at the booking's end must stay free")
}

func TestAvailabilityDayMarksPastSlots(t *testing.T) {
	// Clock reads 08:00 on the booking date; push it to midday instead.
	svc := NewAvailabilityService(
		&mockProfileRepo{profile: testProfile()},
		&mockStaffRepo{}, &mockReservationStore{}, nil,
		FixedClock{Instant: time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)},
		testBookingConfig(), zap.NewNop(),
	)

	day, err := svc.Day(context.Background(), "c1", "", testDate)
	require.NoError(t, err)
	for _, slot := range day.Slots {
		if slot.Time < "12:00" {
			assert.False(t, slot.Available, slot.Time)
			assert.Equal(t, "past", slot.Reason, slot.Time)
		} else {
			assert.True(t, slot.Available, slot.Time)
		}
	}
}

func TestAvailabilityDayKeepsSlotsWithinGrace(t *testing.T) {
	// At 12:03 with a 5-minute grace the 12:00 start is still bookable,
	// so the grid must not mark it past. 11:30 is well beyond the grace.
	svc := NewAvailabilityService(
		&mockProfileRepo{profile: testProfile()},
		&mockStaffRepo{}, &mockReservationStore{}, nil,
		FixedClock{Instant: time.Date(2025, 3, 17, 12, 3, 0, 0, time.UTC)},
		testBookingConfig(), zap.NewNop(),
	)

	day, err := svc.Day(context.Background(), "c1", "", testDate)
	require.NoError(t, err)

	byTime := map[string]dto.Slot{}
	for _, slot := range day.Slots {
		byTime[slot.Time] = slot
	}
	assert.True(t, byTime["12:00"].Available)
	assert.False(t, byTime["11:30"].Available)
	assert.Equal(t, "past", byTime["11:30"].Reason)
}

func TestAvailabilityDayClosed(t *testing.T) {
	profile := testProfile()
	profile.Hours.Days = []models.DayOverride{{Day: 0, Active: false}}
	svc := newTestAvailabilityService(&mockProfileRepo{profile: profile}, &mockStaffRepo{}, &mockReservationStore{}, nil)

	day, err := svc.Day(context.Background(), "c1", "", testDate)
	require.NoError(t, err)
	assert.True(t, day.Closed)
	assert.Empty(t, day.Slots)
}

func TestAvailabilityDayNoProfile(t *testing.T) {
	svc := newTestAvailabilityService(&mockProfileRepo{}, &mockStaffRepo{}, &mockReservationStore{}, nil)

	day, err := svc.Day(context.Background(), "c1", "", testDate)
	require.NoError(t, err)
	assert.True(t, day.Closed)
}

func TestAvailabilityDayInvalidDate(t *testing.T) {
	svc := newTestAvailabilityService(&mockProfileRepo{profile: testProfile()}, &mockStaffRepo{}, &mockReservationStore{}, nil)

	_, err := svc.Day(context.Background(), "c1", "", "not-a-date")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityInactiveStaffIsClosed(t *testing.T) {
	staff := &mockStaffRepo{members: []models.StaffMember{{ID: "st1", Active: false}}}
	svc := newTestAvailabilityService(&mockProfileRepo{profile: testProfile()}, staff, &mockReservationStore{}, nil)

	day, err := svc.Day(context.Background(), "c1", "st1", testDate)
	require.NoError(t, err)
	assert.True(t, day.Closed)
}

func TestAvailabilityDayCachesResult(t *testing.T) {
	cacheRepo := &mockCacheRepo{}
	store := &mockReservationStore{}
	svc := newTestAvailabilityService(&mockProfileRepo{profile: testProfile()}, &mockStaffRepo{}, store, cacheRepo)

	_, err := svc.Day(context.Background(), "c1", "", testDate)
	require.NoError(t, err)
	assert.Contains(t, cacheRepo.store, "availability:c1:business:"+testDate)

	// Second read is served from cache even after new bookings land.
	store.existing = append(store.existing, models.Reservation{
		ID: "r1", ClientID: "c1", DateID: testDate, Time: "10:00", EndTime: "11:00", StaffID: "st1", Status: models.StatusConfirmada,
	})
	day, err := svc.Day(context.Background(), "c1", "", testDate)
	require.NoError(t, err)
	require.Len(t, day.Slots, 18)
}

func TestAvailabilityInvalidateDayPattern(t *testing.T) {
	cacheRepo := &mockCacheRepo{}
	svc := newTestAvailabilityService(&mockProfileRepo{profile: testProfile()}, &mockStaffRepo{}, &mockReservationStore{}, cacheRepo)

	svc.InvalidateDay(context.Background(), "c1", testDate)
	require.Len(t, cacheRepo.patterns, 1)
	assert.Equal(t, "availability:c1:*:"+testDate, cacheRepo.patterns[0])
}
