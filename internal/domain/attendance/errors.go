package attendance

import "errors"

// Attendance domain errors
var (
	ErrNoActiveClockIn    = errors.New("no active clock-in found")
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidMonth       = errors.New("month must be in YYYY-MM format")

	ErrCorrectionNotFound         = errors.New("correction not found")
	ErrCorrectionAlreadyProcessed = errors.New("already processed")
	ErrCorrectionNeedsClockIn     = errors.New("new_clock_in is required when no attendance exists for the date")
)
