package leave

import "context"

type LeaveService interface {
	// RequestLeave files a pending request for the caller.
	RequestLeave(ctx context.Context, req CreateLeaveRequest) (CreateLeaveResponse, error)

	// UpdateStatus approves or rejects a pending request. Approval re-checks the
	// yearly balance.
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (LeaveRequestResponse, error)

	ListLeaves(ctx context.Context, filter LeaveFilter) (ListLeaveResponse, error)

	GetBalance(ctx context.Context) (BalanceResponse, error)
}
