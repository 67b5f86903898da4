// Package summary renders sessions as shareable text and calendar links, and
// assigns avatar colours to players.
package summary

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultDuration is used for sessions stored without a duration.
const DefaultDuration = 90

// ErrInvalidTime is returned for a time of day that is not "HH:MM".
var ErrInvalidTime = errors.New("invalid time of day")

// ParseClock splits "HH:MM" into hours and minutes.
func ParseClock(hhmm string) (hours, minutes int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(hhmm), ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	hours, herr := strconv.Atoi(h)
	minutes, merr := strconv.Atoi(m)
	if herr != nil || merr != nil || hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	return hours, minutes, nil
}

// EndTime adds minutes to a time of day and wraps around midnight, so
// "23:30" plus 90 minutes is "01:00". Days are not tracked.
func EndTime(hhmm string, minutes int) (string, error) {
	h, m, err := ParseClock(hhmm)
	if err != nil {
		return "", err
	}
	total := ((h*60+m+minutes)%(24*60) + 24*60) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}

func durationOf(minutes int) int {
	if minutes <= 0 {
		return DefaultDuration
	}
	return minutes
}
