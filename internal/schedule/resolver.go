// Package schedule resolves the currently airing program of a channel's
// daily time table.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/voyagen/telehaven/internal/models"
)

// ParseClock converts a 24-hour "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("parse clock %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock %q: out of range", s)
	}
	return h*60 + m, nil
}

// MinutesSinceMidnight converts a wall-clock time to minutes since midnight
// in its own location.
func MinutesSinceMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// CurrentProgram returns the slot airing at now (minutes since midnight), or
// nil when no slot is active. Each slot covers the half-open interval from
// its own start to the next slot's start; the last slot covers the rest of
// the day. A now earlier than the first slot's start matches nothing: the
// schedule is complete from its first listed time onward and does not wrap
// past midnight.
//
// Slots must be sorted ascending by time with no duplicates (the catalog
// loader enforces this). The returned pointer aliases the passed slice so
// the caller may latch the slot's Notified flag.
func CurrentProgram(slots []models.ProgramSlot, now int) *models.ProgramSlot {
	for i := range slots {
		start, err := ParseClock(slots[i].Time)
		if err != nil {
			continue
		}
		if now < start {
			continue
		}
		if i+1 < len(slots) {
			next, err := ParseClock(slots[i+1].Time)
			if err == nil && now >= next {
				continue
			}
		}
		return &slots[i]
	}
	return nil
}
