package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolukazzz/reservas-api/internal/models"
)

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 int
		want           bool
	}{
		{"identical", 600, 660, 600, 660, true},
		{"partial front", 600, 660, 630, 690, true},
		{"partial back", 630, 690, 600, 660, true},
		{"contained", 600, 720, 630, 660, true},
		{"touching boundaries", 600, 660, 660, 720, false},
		{"touching reversed", 660, 720, 600, 660, false},
		{"disjoint", 600, 660, 700, 760, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.s1, tc.e1, tc.s2, tc.e2))
		})
	}
}

func TestWindowPrefersEndTime(t *testing.T) {
	scan := ConflictScan{DefaultDurationMinutes: 60}

	start, end, err := scan.Window(&models.Reservation{Time: "10:00", EndTime: "10:45", DurationMinutes: 90})
	require.NoError(t, err)
	assert.Equal(t, 600, start)
	assert.Equal(t, 645, end)
}

func TestWindowDerivesFromDuration(t *testing.T) {
	scan := ConflictScan{DefaultDurationMinutes: 60}

	start, end, err := scan.Window(&models.Reservation{Time: "10:00", DurationMinutes: 30})
	require.NoError(t, err)
	assert.Equal(t, 600, start)
	assert.Equal(t, 630, end)
}

func TestWindowFallsBackToDefault(t *testing.T) {
	scan := ConflictScan{DefaultDurationMinutes: 45}

	_, end, err := scan.Window(&models.Reservation{Time: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, 645, end)

	// Zero-valued scan still lands on the 60-minute floor.
	_, end, err = ConflictScan{}.Window(&models.Reservation{Time: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, 660, end)
}

func TestHasConflict(t *testing.T) {
	existing := []models.Reservation{
		{ID: "r1", StaffID: "st1", DateID: "2025-03-17", Time: "10:00", EndTime: "11:00", Status: models.StatusConfirmada},
		{ID: "r2", StaffID: "st2", DateID: "2025-03-17", Time: "10:00", EndTime: "11:00", Status: models.StatusConfirmada},
		{ID: "r3", StaffID: "st1", DateID: "2025-03-18", Time: "10:00", EndTime: "11:00", Status: models.StatusPendiente},
	}
	scan := ConflictScan{DefaultDurationMinutes: 60}

	assert.True(t, scan.HasConflict("st1", "2025-03-17", 630, 690, existing, ""))
	// Other staff and other days do not collide.
	assert.False(t, scan.HasConflict("st3", "2025-03-17", 630, 690, existing, ""))
	assert.False(t, scan.HasConflict("st1", "2025-03-19", 630, 690, existing, ""))
	// Back-to-back is allowed.
	assert.False(t, scan.HasConflict("st1", "2025-03-17", 660, 720, existing, ""))
}

func TestHasConflictIgnoresCancelled(t *testing.T) {
	existing := []models.Reservation{
		{ID: "r1", StaffID: "st1", DateID: "2025-03-17", Time: "10:00", EndTime: "11:00", Status: models.StatusCancelada},
	}
	scan := ConflictScan{DefaultDurationMinutes: 60}

	assert.False(t, scan.HasConflict("st1", "2025-03-17", 600, 660, existing, ""))
}

func TestHasConflictExcludesSelf(t *testing.T) {
	existing := []models.Reservation{
		{ID: "r1", StaffID: "st1", DateID: "2025-03-17", Time: "10:00", EndTime: "11:00", Status: models.StatusConfirmada},
	}
	scan := ConflictScan{DefaultDurationMinutes: 60}

	// Editing r1 itself must not collide with its own window.
	assert.False(t, scan.HasConflict("st1", "2025-03-17", 600, 660, existing, "r1"))
	assert.True(t, scan.HasConflict("st1", "2025-03-17", 600, 660, existing, "other"))
}

func TestHasConflictSkipsUnparsableRows(t *testing.T) {
	existing := []models.Reservation{
		{ID: "r1", StaffID: "st1", DateID: "2025-03-17", Time: "garbage", Status: models.StatusConfirmada},
		{ID: "r2", StaffID: "st1", DateID: "2025-03-17", Time: "10:00", EndTime: "11:00", Status: models.StatusConfirmada},
	}
	scan := ConflictScan{DefaultDurationMinutes: 60}

	assert.True(t, scan.HasConflict("st1", "2025-03-17", 600, 660, existing, ""))
	assert.False(t, scan.HasConflict("st1", "2025-03-17", 720, 780, existing, ""))
}

func TestCountBlocking(t *testing.T) {
	existing := []models.Reservation{
		{ID: "r1", StaffID: "st1", DateID: "2025-03-17", Status: models.StatusConfirmada},
		{ID: "r2", StaffID: "st1", DateID: "2025-03-17", Status: models.StatusCancelada},
		{ID: "r3", StaffID: "st1", DateID: "2025-03-18", Status: models.StatusPendiente},
		{ID: "r4", StaffID: "st2", DateID: "2025-03-17", Status: models.StatusPendiente},
	}

	assert.Equal(t, 1, CountBlocking("st1", "2025-03-17", existing))
	assert.Equal(t, 1, CountBlocking("st2", "2025-03-17", existing))
	assert.Equal(t, 0, CountBlocking("st3", "2025-03-17", existing))
}
