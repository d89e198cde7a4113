package leave

import "errors"

var (
	ErrLeaveRequestNotFound         = errors.New("leave request not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrInsufficientBalance          = errors.New("insufficient leave balance")
	ErrOverlappingLeave             = errors.New("leave overlaps with existing approved leave")
	ErrInvalidStatus                = errors.New("invalid status")
)
