package schedule

import (
	"fmt"
	"strconv"
	"strings"

	appErrors "github.com/nicolukazzz/reservas-api/pkg/errors"
)

// TimeToMinutes converts an "HH:MM" string to a minute offset from
// midnight. Only numeric parsing is enforced; values outside 0-23/0-59
// are the caller's responsibility.
func TimeToMinutes(t string) (int, error) {
	parts := strings.Split(t, ":")
	if len(parts) < 2 {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid time format %q", t))
	}
	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid hour in %q", t))
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid minute in %q", t))
	}
	return hours*60 + minutes, nil
}

// MinutesToTime renders a minute offset as a zero-padded "HH:MM" string.
// No range clamping: offsets past midnight render hour values >= 24,
// which is accepted because slots never legitimately cross midnight.
func MinutesToTime(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// AddMinutes shifts an "HH:MM" time by delta minutes.
func AddMinutes(t string, delta int) (string, error) {
	m, err := TimeToMinutes(t)
	if err != nil {
		return "", err
	}
	return MinutesToTime(m + delta), nil
}

// GenerateSlots emits the slot start times in [open, close) at the given
// step. A slot starting at close could not hold any bookable duration,
// so the upper bound is exclusive.
func GenerateSlots(open, close string, stepMinutes int) ([]string, error) {
	if stepMinutes <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot step must be positive")
	}
	start, err := TimeToMinutes(open)
	if err != nil {
		return nil, err
	}
	end, err := TimeToMinutes(close)
	if err != nil {
		return nil, err
	}

	var slots []string
	for t := start; t < end; t += stepMinutes {
		slots = append(slots, MinutesToTime(t))
	}
	return slots, nil
}
