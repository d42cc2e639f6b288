package gcal

import (
	"errors"
	"time"
)

const dateTimeLayout = "2006-01-02T15:04:05"

// ErrEndBeforeStart is returned when an event range fails validation.
var ErrEndBeforeStart = errors.New("end time must be after start time")

// NormalizeDateTime appends a seconds component to "YYYY-MM-DDTHH:MM" inputs.
// Anything else is passed through untouched for the remote API to judge.
func NormalizeDateTime(s string) string {
	if len(s) == 16 { // "YYYY-MM-DDTHH:MM"
		return s + ":00"
	}
	return s
}

// ParseDateTime parses a normalized zone-less datetime string.
func ParseDateTime(s string) (time.Time, error) {
	return time.Parse(dateTimeLayout, s)
}

// ValidateRange checks end-after-start when both values parse as sane
// timestamps. Unparseable inputs are deferred to the remote API.
func ValidateRange(start, end string) error {
	s, errS := ParseDateTime(start)
	e, errE := ParseDateTime(end)
	if errS != nil || errE != nil {
		return nil
	}
	if !e.After(s) {
		return ErrEndBeforeStart
	}
	return nil
}

// DueToRFC3339 promotes a "YYYY-MM-DD" due date to the RFC 3339 midnight
// form the Tasks API requires.
func DueToRFC3339(due string) string {
	if due == "" {
		return ""
	}
	return due + "T00:00:00.000Z"
}
