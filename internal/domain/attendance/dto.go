package attendance

import (
	"time"

	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
	"github.com/hrlite/hr-backend-go/internal/pkg/timeutil"
	"github.com/hrlite/hr-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type ClockInRequest struct {
	IP string `json:"-"`
}

type ClockInResponse struct {
	ID           string    `json:"attendance_id"`
	ClockIn      time.Time `json:"clock_in"`
	ClockInLocal string    `json:"clock_in_local"`
	Note         *string   `json:"note"`
}

type ClockOutResponse struct {
	ID            string    `json:"attendance_id"`
	ClockOut      time.Time `json:"clock_out"`
	ClockOutLocal string    `json:"clock_out_local"`
	Note          *string   `json:"note"`
}

type AttendanceResponse struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employee_id"`
	Name          string     `json:"name"`
	NIK           string     `json:"nik"`
	ClockIn       time.Time  `json:"clock_in"`
	ClockOut      *time.Time `json:"clock_out"`
	ClockInLocal  string     `json:"clock_in_local"`
	ClockOutLocal *string    `json:"clock_out_local"`
	IP            string     `json:"ip"`
	Note          *string    `json:"note"`
}

// AttendanceFilter is the query of the monthly and recent listings.
type AttendanceFilter struct {
	Month string
	pagination.Params
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(f.Month) {
		errs.Add("month", "month is required (YYYY-MM)")
	} else if !timeutil.IsValidMonth(f.Month) {
		errs.Add("month", ErrInvalidMonth.Error())
	}
	return errs.Err()
}

type ListAttendanceResponse struct {
	Data       []AttendanceResponse `json:"data"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"totalPages"`
}

// ========================================
// CORRECTION DTOs
// ========================================

type CreateCorrectionRequest struct {
	Date        string  `json:"date"`
	OldClockIn  *string `json:"old_clock_in"`
	OldClockOut *string `json:"old_clock_out"`
	NewClockIn  *string `json:"new_clock_in"`
	NewClockOut *string `json:"new_clock_out"`
	Reason      string  `json:"reason"`

	parsed Correction
}

func (r *CreateCorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("date", r.Date)
	errs.Required("reason", r.Reason)
	if !validator.IsEmpty(r.Date) {
		d, ok := validator.IsValidDate(r.Date)
		if !ok {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
		r.parsed.Date = d
	}
	if isBlank(r.NewClockIn) && isBlank(r.NewClockOut) {
		errs.Add("new_clock_in", "new_clock_in or new_clock_out is required")
	}

	for _, f := range []struct {
		name string
		raw  *string
		dst  **time.Time
	}{
		{"old_clock_in", r.OldClockIn, &r.parsed.OldClockIn},
		{"old_clock_out", r.OldClockOut, &r.parsed.OldClockOut},
		{"new_clock_in", r.NewClockIn, &r.parsed.NewClockIn},
		{"new_clock_out", r.NewClockOut, &r.parsed.NewClockOut},
	} {
		if isBlank(f.raw) {
			continue
		}
		t, ok := validator.IsValidDateTime(*f.raw)
		if !ok {
			errs.Add(f.name, f.name+" must be an RFC3339 timestamp")
			continue
		}
		utc := t.UTC()
		*f.dst = &utc
	}

	if r.parsed.NewClockIn != nil && r.parsed.NewClockOut != nil && r.parsed.NewClockOut.Before(*r.parsed.NewClockIn) {
		errs.Add("new_clock_out", "new_clock_out must not be before new_clock_in")
	}

	r.parsed.Reason = r.Reason
	return errs.Err()
}

// Correction returns the parsed values. Valid only after Validate succeeded.
func (r *CreateCorrectionRequest) Correction() Correction {
	return r.parsed
}

func isBlank(s *string) bool {
	return s == nil || validator.IsEmpty(*s)
}

type CorrectionResponse struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employee_id"`
	RequesterName string     `json:"requester_name,omitempty"`
	Date          string     `json:"date"`
	OldClockIn    *time.Time `json:"old_clock_in"`
	OldClockOut   *time.Time `json:"old_clock_out"`
	NewClockIn    *time.Time `json:"new_clock_in"`
	NewClockOut   *time.Time `json:"new_clock_out"`
	Reason        string     `json:"reason"`
	RequestedBy   string     `json:"requested_by"`
	Status        string     `json:"status"`
	ApprovedBy    *string    `json:"approved_by"`
}

func NewCorrectionResponse(c Correction) CorrectionResponse {
	return CorrectionResponse{
		ID:            c.ID,
		EmployeeID:    c.EmployeeID,
		RequesterName: c.RequesterName,
		Date:          c.Date.Format(timeutil.DateLayout),
		OldClockIn:    c.OldClockIn,
		OldClockOut:   c.OldClockOut,
		NewClockIn:    c.NewClockIn,
		NewClockOut:   c.NewClockOut,
		Reason:        c.Reason,
		RequestedBy:   c.RequestedBy,
		Status:        string(c.Status),
		ApprovedBy:    c.ApprovedBy,
	}
}
