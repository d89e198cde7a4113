package leave

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/hrlite/hr-backend-go/internal/domain/approval"
	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/domain/employee"
	"github.com/hrlite/hr-backend-go/internal/domain/leave"
	"github.com/hrlite/hr-backend-go/internal/domain/notification"
	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
	"github.com/hrlite/hr-backend-go/internal/pkg/sse"
	"github.com/hrlite/hr-backend-go/internal/pkg/timeutil"
	"github.com/hrlite/hr-backend-go/internal/repository/memory"
	approvalservice "github.com/hrlite/hr-backend-go/internal/service/approval"
	notificationservice "github.com/hrlite/hr-backend-go/internal/service/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leaveFixture struct {
	store    *memory.Store
	svc      leave.LeaveService
	tenantID string
}

func newLeaveFixture(t *testing.T, now time.Time) *leaveFixture {
	t.Helper()
	store := memory.NewStore()
	clock, err := timeutil.NewClock("Asia/Jakarta", timeutil.WithNow(func() time.Time { return now }))
	require.NoError(t, err)

	notifications := notificationservice.NewNotificationService(store.Notifications(), sse.NewHub())
	approvals := approvalservice.NewApprovalService(store.ApprovalLog(), notifications)

	return &leaveFixture{
		store:    store,
		svc:      NewLeaveService(store.Transactor(), store.LeaveRequests(), store.Employees(), store.Users(), approvals, clock),
		tenantID: store.CreateTenant("Acme"),
	}
}

func (f *leaveFixture) member(t *testing.T, tenantID, name string, role user.Role) (context.Context, employee.Employee) {
	t.Helper()
	ctx := context.Background()
	u, err := f.store.Users().Create(ctx, user.User{
		TenantID: tenantID, Name: name, Email: name + "@" + tenantID + ".test",
		PasswordHash: "x", Role: role, Status: user.StatusActive,
	})
	require.NoError(t, err)
	emp, err := f.store.Employees().Create(ctx, employee.Employee{
		TenantID: tenantID, UserID: u.ID, NIK: "NIK-" + name, Position: "Staff", Department: "Ops",
		JoinDate: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return auth.ContextWithIdentity(ctx, auth.Identity{UserID: u.ID, TenantID: tenantID, Role: role}), emp
}

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func (f *leaveFixture) seedApproved(t *testing.T, emp employee.Employee, start, end string, days int) {
	t.Helper()
	_, err := f.store.LeaveRequests().Create(context.Background(), leave.LeaveRequest{
		TenantID: emp.TenantID, EmployeeID: emp.ID, Type: "annual",
		StartDate: date(start), EndDate: date(end), Days: days, Reason: "seed", Status: leave.StatusApproved,
	})
	require.NoError(t, err)
}

func request(start, end string, days int) leave.CreateLeaveRequest {
	return leave.CreateLeaveRequest{Type: "annual", StartDate: start, EndDate: end, Days: &days, Reason: "holiday"}
}

func TestLeaveService_RequestLeave_Success(t *testing.T) {
	f := newLeaveFixture(t, time.Date(2023, 1, 10, 3, 0, 0, 0, time.UTC))
	budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)

	resp, err := f.svc.RequestLeave(budi, request("2023-02-01", "2023-02-03", 3))

	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "pending", resp.Status)
}

func TestLeaveService_RequestLeave_Validation(t *testing.T) {
	f := newLeaveFixture(t, time.Date(2023, 1, 10, 3, 0, 0, 0, time.UTC))
	budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)

	_, err := f.svc.RequestLeave(budi, request("2023-02-03", "2023-02-01", 3))
	assert.Error(t, err, "end before start")

	_, err = f.svc.RequestLeave(budi, request("2023-02-01", "2023-02-01", 0))
	assert.Error(t, err, "days must be positive")
}

func TestLeaveService_RequestLeave_InactiveAccount(t *testing.T) {
	f := newLeaveFixture(t, time.Date(2023, 1, 10, 3, 0, 0, 0, time.UTC))
	budi, emp := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	require.NoError(t, f.store.Users().UpdateStatus(context.Background(), emp.UserID, user.StatusInactive))

	_, err := f.svc.RequestLeave(budi, request("2023-02-01", "2023-02-01", 1))
	assert.ErrorIs(t, err, user.ErrAccountInactive)
}

func TestLeaveService_RequestLeave_OverlapConflict(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
	}{
		{"inside", "2023-03-02", "2023-03-02"},
		{"covers", "2023-02-28", "2023-03-05"},
		{"touches start", "2023-02-27", "2023-03-01"},
		{"touches end", "2023-03-03", "2023-03-09"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newLeaveFixture(t, time.Date(2023, 1, 10, 3, 0, 0, 0, time.UTC))
			budi, emp := f.member(t, f.tenantID, "budi", user.RoleEmployee)
			f.seedApproved(t, emp, "2023-03-01", "2023-03-03", 3)

			_, err := f.svc.RequestLeave(budi, request(tc.start, tc.end, 1))
			assert.ErrorIs(t, err, leave.ErrOverlappingLeave)
		})
	}
}

func TestLeaveService_RequestLeave_AdjacentIsNotOverlap(t *testing.T) {
	f := newLeaveFixture(t, time.Date(2023, 1, 10, 3, 0, 0, 0, time.UTC))
	budi, emp := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	f.seedApproved(t, emp, "2023-03-01", "2023-03-03", 3)

	_, err := f.svc.RequestLeave(budi, request("2023-03-04", "2023-03-04", 1))
	assert.NoError(t, err)
}

func TestLeaveService_UpdateStatus_InsufficientBalance(t *testing.T) {
	f := newLeaveFixture(t, time.Date(2023, 1, 10, 3, 0, 0, 0, time.UTC))
	budi, emp := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	admin, _ := f.member(t, f.tenantID, "admin", user.RoleAdmin)
	f.seedApproved(t, emp, "2023-01-02", "2023-01-13", 12)

	req, err := f.svc.RequestLeave(budi, request("2023-02-01", "2023-02-01", 1))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(admin, leave.UpdateStatusRequest{ID: req.ID, Status: leave.StatusApproved})
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
}

func TestLeaveService_UpdateStatus_BalanceBoundary(t *testing.T) {
	f := newLeaveFixture(t, time.Date(2023, 1, 10, 3, 0, 0, 0, time.UTC))
	budi, emp := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	manager, _ := f.member(t, f.tenantID, "manager", user.RoleManager)
	f.seedApproved(t, emp, "2023-01-02", "2023-01-11", 10)
	// Last year's leave does not count.
	f.seedApproved(t, emp, "2022-12-01", "2022-12-05", 5)

	req, err := f.svc.RequestLeave(budi, request("2023-02-01", "2023-02-02", 2))
	require.NoError(t, err)

	resp, err := f.svc.UpdateStatus(manager, leave.UpdateStatusRequest{ID: req.ID, Status: leave.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, "approved", resp.Status)

	balance, err := f.svc.GetBalance(budi)
	require.NoError(t, err)
	assert.Equal(t, leave.BalanceResponse{Allowance: 12, Used: 12, Remaining: 0, Year: 2023}, balance)
}

func TestLeaveService_UpdateStatus_RejectSkipsBalance(t *testing.T) {
	f := newLeaveFixture(t, time.Date(2023, 1, 10, 3, 0, 0, 0, time.UTC))
	budi, emp := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	hr, _ := f.member(t, f.tenantID, "hr", user.RoleHR)
	f.seedApproved(t, emp, "2023-01-02", "2023-01-13", 12)

	req, err := f.svc.RequestLeave(budi, request("2023-02-01", "2023-02-01", 1))
	require.NoError(t, err)

	comment := "no balance left"
	resp, err := f.svc.UpdateStatus(hr, leave.UpdateStatusRequest{ID: req.ID, Status: leave.StatusRejected, Comment: &comment})
	require.NoError(t, err)
	assert.Equal(t, "rejected", resp.Status)

	entries, err := f.store.ApprovalLog().ListByEntity(context.Background(), f.tenantID, approval.EntityLeaveRequest, req.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, approval.ActionReject, entries[0].Action)
	require.NotNil(t, entries[0].Comment)
	assert.Equal(t, comment, *entries[0].Comment)

	notes, _, err := f.store.Notifications().GetByUserID(context.Background(), f.tenantID, emp.UserID, 1, 10, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, notification.TypeLeaveRejected, notes[0].Type)
	assert.Equal(t, req.ID, notes[0].Data["leave_id"])
}

func TestLeaveService_UpdateStatus_AlreadyProcessedAndNotFound(t *testing.T) {
	f := newLeaveFixture(t, time.Date(2023, 1, 10, 3, 0, 0, 0, time.UTC))
	other := f.store.CreateTenant("Globex")
	budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	hr, _ := f.member(t, f.tenantID, "hr", user.RoleHR)
	otherHR, _ := f.member(t, other, "hr", user.RoleHR)

	req, err := f.svc.RequestLeave(budi, request("2023-02-01", "2023-02-01", 1))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(otherHR, leave.UpdateStatusRequest{ID: req.ID, Status: leave.StatusApproved})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)

	_, err = f.svc.UpdateStatus(hr, leave.UpdateStatusRequest{ID: req.ID, Status: leave.StatusApproved})
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(hr, leave.UpdateStatusRequest{ID: req.ID, Status: leave.StatusRejected})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)

	_, err = f.svc.UpdateStatus(hr, leave.UpdateStatusRequest{ID: req.ID, Status: leave.Status("cancelled")})
	assert.ErrorIs(t, err, leave.ErrInvalidStatus)
}

func TestLeaveService_ConcurrentApprovalsNeverOverspend(t *testing.T) {
	for round := 0; round < 10; round++ {
		f := newLeaveFixture(t, time.Date(2023, 1, 10, 3, 0, 0, 0, time.UTC))
		budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)
		hr, _ := f.member(t, f.tenantID, "hr", user.RoleHR)
		manager, _ := f.member(t, f.tenantID, "manager", user.RoleManager)

		first, err := f.svc.RequestLeave(budi, request("2023-03-01", "2023-03-07", 7))
		require.NoError(t, err)
		second, err := f.svc.RequestLeave(budi, request("2023-04-01", "2023-04-07", 7))
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = f.svc.UpdateStatus(hr, leave.UpdateStatusRequest{ID: first.ID, Status: leave.StatusApproved})
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = f.svc.UpdateStatus(manager, leave.UpdateStatusRequest{ID: second.ID, Status: leave.StatusApproved})
		}()
		wg.Wait()

		failed := 0
		for _, err := range errs {
			if err != nil {
				failed++
				assert.True(t, errors.Is(err, leave.ErrInsufficientBalance), "unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, failed)

		balance, err := f.svc.GetBalance(budi)
		require.NoError(t, err)
		assert.Equal(t, 7, balance.Used)
	}
}

func TestLeaveService_ConcurrentDecisionsOnOneRequest(t *testing.T) {
	f := newLeaveFixture(t, time.Date(2023, 1, 10, 3, 0, 0, 0, time.UTC))
	budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	hr, _ := f.member(t, f.tenantID, "hr", user.RoleHR)
	manager, _ := f.member(t, f.tenantID, "manager", user.RoleManager)

	for round := 0; round < 10; round++ {
		day := time.Date(2023, 5, 1+round, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		req, err := f.svc.RequestLeave(budi, request(day, day, 1))
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = f.svc.UpdateStatus(hr, leave.UpdateStatusRequest{ID: req.ID, Status: leave.StatusApproved})
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = f.svc.UpdateStatus(manager, leave.UpdateStatusRequest{ID: req.ID, Status: leave.StatusRejected})
		}()
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)
			}
		}
		assert.Equal(t, 1, succeeded)
	}
}

func TestLeaveService_ListLeaves_Scoping(t *testing.T) {
	f := newLeaveFixture(t, time.Date(2023, 1, 10, 3, 0, 0, 0, time.UTC))
	budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	siti, _ := f.member(t, f.tenantID, "siti", user.RoleEmployee)
	manager, _ := f.member(t, f.tenantID, "manager", user.RoleManager)

	_, err := f.svc.RequestLeave(budi, request("2023-02-01", "2023-02-01", 1))
	require.NoError(t, err)
	_, err = f.svc.RequestLeave(siti, request("2023-02-02", "2023-02-02", 1))
	require.NoError(t, err)

	own, err := f.svc.ListLeaves(budi, leave.LeaveFilter{})
	require.NoError(t, err)
	require.Len(t, own.Data, 1)
	assert.Equal(t, "budi", own.Data[0].Name)

	all, err := f.svc.ListLeaves(manager, leave.LeaveFilter{Params: pagination.Params{SortBy: "start_date", SortOrder: "asc"}})
	require.NoError(t, err)
	require.Len(t, all.Data, 2)
	assert.Equal(t, "2023-02-01", all.Data[0].StartDate)
	assert.Equal(t, int64(2), all.Total)
}

func TestLeaveService_ListLeaves_PageBeyondRange(t *testing.T) {
	f := newLeaveFixture(t, time.Date(2023, 1, 10, 3, 0, 0, 0, time.UTC))
	budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	_, err := f.svc.RequestLeave(budi, request("2023-02-01", "2023-02-01", 1))
	require.NoError(t, err)

	for _, p := range []int{math.MaxInt, math.MaxInt / 5, 2} {
		resp, err := f.svc.ListLeaves(budi, leave.LeaveFilter{Params: pagination.Params{Page: p, Limit: 10}})
		require.NoError(t, err, "page %d", p)
		assert.Empty(t, resp.Data, "page %d", p)
		assert.Equal(t, int64(1), resp.Total)
	}
}
