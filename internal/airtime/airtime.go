// Package airtime centralizes broadcast time-of-day arithmetic. All values
// are minutes since midnight; an end of day normalizes to 1440 so that a
// spot running to "next day midnight" has a well-defined duration.
//
// These are wall-clock positions on a weekly grid, not instants, so
// time.Time is deliberately not used.
package airtime

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the normalized end-of-day position.
const MinutesPerDay = 1440

// ParseClock converts an "HH:MM:SS" string to minutes since midnight.
// Seconds are accepted and discarded; the grid has minute resolution.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 && len(parts) != 2 {
		return 0, fmt.Errorf("malformed clock time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed clock time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed clock time %q", s)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return h*60 + m, nil
}

// IsNextDayMidnight reports whether a raw end time is one of the accepted
// spellings of "next-day midnight": a day-offset token such as
// "1 day, 0:00:00", the literal "24:00:00", or "00:00:00" used as an end.
func IsNextDayMidnight(raw string) bool {
	t := strings.ToLower(strings.TrimSpace(raw))
	if strings.Contains(t, "day") && strings.Contains(t, "0:00:00") {
		return true
	}
	return t == "24:00:00" || t == "00:00:00" || t == "0:00:00"
}

// NormalizeEnd converts a raw end time to minutes since midnight, mapping
// every next-day midnight spelling to MinutesPerDay.
func NormalizeEnd(raw string) (int, error) {
	if IsNextDayMidnight(raw) {
		return MinutesPerDay, nil
	}
	return ParseClock(raw)
}

// Span returns the duration in minutes from start to end. An end before the
// start is treated as a midnight rollover for spots that truly cross.
func Span(start, end int) int {
	if end >= start {
		return end - start
	}
	return (MinutesPerDay - start) + end
}

// Overlaps reports whether two half-open ranges share any minutes. A range
// whose end runs past MinutesPerDay crosses midnight; its same-day and
// next-day segments are tested separately so a rollover spot compares
// against both the evening blocks it starts in and the morning blocks it
// ends in.
func Overlaps(start1, end1, start2, end2 int) bool {
	for _, a := range daySegments(start1, end1) {
		for _, b := range daySegments(start2, end2) {
			if a[0] < b[1] && a[1] > b[0] {
				return true
			}
		}
	}
	return false
}

// daySegments splits a half-open range at midnight. Ends at or before
// MinutesPerDay stay one segment.
func daySegments(start, end int) [][2]int {
	if end > MinutesPerDay {
		return [][2]int{{start, MinutesPerDay}, {0, end - MinutesPerDay}}
	}
	return [][2]int{{start, end}}
}

// Hour returns the hour component of a minutes-since-midnight value.
func Hour(minutes int) int {
	return minutes / 60
}
