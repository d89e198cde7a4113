package attendance

import (
	"context"
	"io"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// ClockIn opens a new session for the caller. A same-day open session is
	// flagged "Missing Clock Out" and left open.
	ClockIn(ctx context.Context, req ClockInRequest) (ClockInResponse, error)

	// ClockOut closes the caller's newest open session.
	ClockOut(ctx context.Context) (ClockOutResponse, error)

	GetMonthly(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// GetRecent is GetMonthly for the current local month.
	GetRecent(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// ExportMonthly writes the whole month as an XLSX workbook.
	ExportMonthly(ctx context.Context, month string, w io.Writer) error
}

// CorrectionService runs the pending -> approved|rejected workflow.
type CorrectionService interface {
	RequestCorrection(ctx context.Context, req CreateCorrectionRequest) (CorrectionResponse, error)
	ListPending(ctx context.Context) ([]CorrectionResponse, error)
	Approve(ctx context.Context, id string) (CorrectionResponse, error)
	Reject(ctx context.Context, id string) (CorrectionResponse, error)
}
