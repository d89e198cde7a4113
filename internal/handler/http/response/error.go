package response

import (
	"errors"
	"net/http"

	"github.com/hrlite/hr-backend-go/internal/domain/attendance"
	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/domain/employee"
	"github.com/hrlite/hr-backend-go/internal/domain/leave"
	"github.com/hrlite/hr-backend-go/internal/domain/notification"
	"github.com/hrlite/hr-backend-go/internal/domain/payroll"
	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/hrlite/hr-backend-go/internal/pkg/validator"
)

// ErrorRecorder is implemented by response writers that want to see errors
// which fell through to the generic 500.
type ErrorRecorder interface {
	RecordError(err error)
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var rateLimited *auth.RateLimitError
	if errors.As(err, &rateLimited) {
		TooManyRequests(w, "Too many login attempts, please try again later", rateLimited.RetryAfterSeconds)
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrUnauthenticated):
		Unauthorized(w, "Authentication required")
	case errors.Is(err, auth.ErrTokenExpired):
		TokenExpired(w)
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, auth.ErrInvalidResetRequest),
		errors.Is(err, auth.ErrResetCodeExpired),
		errors.Is(err, auth.ErrInvalidResetCode):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, auth.ErrCurrentPasswordMismatch):
		BadRequest(w, "Current password is incorrect", nil)

	// User domain errors
	case errors.Is(err, user.ErrAccountInactive):
		Forbidden(w, "Account is not active")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrInvalidRole), errors.Is(err, user.ErrInvalidStatus):
		BadRequest(w, err.Error(), nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrProfileNotFound):
		NotFound(w, "Employee profile not found, please contact HR")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already exists")
	case errors.Is(err, employee.ErrCannotDeactivateSelf):
		BadRequest(w, "Cannot deactivate your own account", nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrNoActiveClockIn):
		BadRequest(w, "No active clock-in found", nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrInvalidMonth):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrCorrectionNotFound):
		NotFound(w, "Correction not found")
	case errors.Is(err, attendance.ErrCorrectionAlreadyProcessed):
		BadRequest(w, "Already processed", nil)
	case errors.Is(err, attendance.ErrCorrectionNeedsClockIn):
		BadRequest(w, err.Error(), nil)

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed):
		BadRequest(w, "Already processed", nil)
	case errors.Is(err, leave.ErrInsufficientBalance):
		BadRequest(w, "Insufficient leave balance", nil)
	case errors.Is(err, leave.ErrOverlappingLeave):
		Conflict(w, "Leave overlaps with an approved leave")
	case errors.Is(err, leave.ErrInvalidStatus):
		BadRequest(w, "Invalid status", nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrInvalidRunTransition):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrSalaryNotFound):
		UnprocessableEntity(w, "Salary not found for employee")
	case errors.Is(err, payroll.ErrNegativeNetSalary):
		BadRequest(w, "Net salary cannot be negative", nil)
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	// Default
	default:
		if r, ok := w.(ErrorRecorder); ok {
			r.RecordError(err)
		}
		InternalServerError(w, "An unexpected error occurred")
	}
}
