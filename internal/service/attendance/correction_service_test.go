package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hrlite/hr-backend-go/internal/domain/approval"
	"github.com/hrlite/hr-backend-go/internal/domain/attendance"
	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/domain/notification"
	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/hrlite/hr-backend-go/internal/pkg/sse"
	approvalservice "github.com/hrlite/hr-backend-go/internal/service/approval"
	notificationservice "github.com/hrlite/hr-backend-go/internal/service/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type correctionFixture struct {
	*attendanceFixture
	corrections attendance.CorrectionService
}

func newCorrectionFixture(t *testing.T) *correctionFixture {
	f := newAttendanceFixture(t)
	notifications := notificationservice.NewNotificationService(f.store.Notifications(), sse.NewHub())
	approvals := approvalservice.NewApprovalService(f.store.ApprovalLog(), notifications)
	return &correctionFixture{
		attendanceFixture: f,
		corrections: NewCorrectionService(
			f.store.Transactor(), f.store.Corrections(), f.store.Attendance(), f.store.Employees(), approvals, f.clock,
		),
	}
}

func strPtr(s string) *string { return &s }

func (f *correctionFixture) countAttendance(t *testing.T, ctx context.Context, month string) int {
	t.Helper()
	resp, err := f.svc.GetMonthly(ctx, attendance.AttendanceFilter{Month: month})
	require.NoError(t, err)
	return int(resp.Total)
}

func TestCorrectionService_Approve_ExactClockInUpdatesInPlace(t *testing.T) {
	f := newCorrectionFixture(t)
	budi, emp := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	manager, _ := f.member(t, f.tenantID, "manager", user.RoleManager)

	f.now = time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	in, err := f.svc.ClockIn(budi, attendance.ClockInRequest{})
	require.NoError(t, err)

	req, err := f.corrections.RequestCorrection(budi, attendance.CreateCorrectionRequest{
		Date:        "2025-01-02",
		OldClockIn:  strPtr("2025-01-02T09:00:00Z"),
		NewClockOut: strPtr("2025-01-02T18:00:00Z"),
		Reason:      "forgot to clock out",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", req.Status)

	approved, err := f.corrections.Approve(manager, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.ApprovedBy)

	rec, err := f.store.Attendance().FindByClockIn(context.Background(), f.tenantID, emp.ID, in.ClockIn)
	require.NoError(t, err)
	assert.Equal(t, in.ID, rec.ID)
	require.NotNil(t, rec.ClockOut)
	assert.True(t, rec.ClockOut.Equal(time.Date(2025, 1, 2, 18, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, f.countAttendance(t, budi, "2025-01"), "no second row")
}

func TestCorrectionService_Approve_SameLocalDayFallback(t *testing.T) {
	f := newCorrectionFixture(t)
	budi, emp := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	manager, _ := f.member(t, f.tenantID, "manager", user.RoleManager)

	// 00:30 local on the 2nd is still the 1st in UTC.
	f.now = time.Date(2025, 1, 1, 17, 30, 0, 0, time.UTC)
	in, err := f.svc.ClockIn(budi, attendance.ClockInRequest{})
	require.NoError(t, err)

	req, err := f.corrections.RequestCorrection(budi, attendance.CreateCorrectionRequest{
		Date:        "2025-01-02",
		OldClockIn:  strPtr("2025-01-02T01:00:00Z"), // does not match
		NewClockIn:  strPtr("2025-01-02T01:00:00Z"),
		NewClockOut: strPtr("2025-01-02T10:00:00Z"),
		Reason:      "wrong time",
	})
	require.NoError(t, err)

	_, err = f.corrections.Approve(manager, req.ID)
	require.NoError(t, err)

	rec, err := f.store.Attendance().FindByClockIn(context.Background(), f.tenantID, emp.ID, time.Date(2025, 1, 2, 1, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, in.ID, rec.ID)
	assert.Equal(t, 1, f.countAttendance(t, budi, "2025-01"))
}

func TestCorrectionService_Approve_NoMatchInsertsOneRecord(t *testing.T) {
	f := newCorrectionFixture(t)
	budi, emp := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	hr, _ := f.member(t, f.tenantID, "hr", user.RoleHR)
	f.now = time.Date(2025, 1, 10, 3, 0, 0, 0, time.UTC)

	req, err := f.corrections.RequestCorrection(budi, attendance.CreateCorrectionRequest{
		Date:        "2025-01-06",
		NewClockIn:  strPtr("2025-01-06T01:00:00Z"),
		NewClockOut: strPtr("2025-01-06T10:00:00Z"),
		Reason:      "was on site",
	})
	require.NoError(t, err)

	_, err = f.corrections.Approve(hr, req.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, f.countAttendance(t, budi, "2025-01"))
	rec, err := f.store.Attendance().FindByClockIn(context.Background(), f.tenantID, emp.ID, time.Date(2025, 1, 6, 1, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, rec.Note)
	assert.Equal(t, attendance.NoteCorrected, *rec.Note)
}

func TestCorrectionService_Approve_NoMatchWithoutClockIn(t *testing.T) {
	f := newCorrectionFixture(t)
	budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	hr, _ := f.member(t, f.tenantID, "hr", user.RoleHR)

	req, err := f.corrections.RequestCorrection(budi, attendance.CreateCorrectionRequest{
		Date:        "2025-01-06",
		NewClockOut: strPtr("2025-01-06T10:00:00Z"),
		Reason:      "left late",
	})
	require.NoError(t, err)

	_, err = f.corrections.Approve(hr, req.ID)
	assert.ErrorIs(t, err, attendance.ErrCorrectionNeedsClockIn)

	pending, err := f.corrections.ListPending(hr)
	require.NoError(t, err)
	assert.Len(t, pending, 1, "correction stays pending")
}

func TestCorrectionService_AlreadyProcessed(t *testing.T) {
	f := newCorrectionFixture(t)
	budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	hr, _ := f.member(t, f.tenantID, "hr", user.RoleHR)

	req, err := f.corrections.RequestCorrection(budi, attendance.CreateCorrectionRequest{
		Date: "2025-01-06", NewClockIn: strPtr("2025-01-06T01:00:00Z"), Reason: "x",
	})
	require.NoError(t, err)

	_, err = f.corrections.Reject(hr, req.ID)
	require.NoError(t, err)

	_, err = f.corrections.Approve(hr, req.ID)
	assert.ErrorIs(t, err, attendance.ErrCorrectionAlreadyProcessed)
	_, err = f.corrections.Reject(hr, req.ID)
	assert.ErrorIs(t, err, attendance.ErrCorrectionAlreadyProcessed)
}

func TestCorrectionService_NotFoundAcrossTenants(t *testing.T) {
	f := newCorrectionFixture(t)
	other := f.store.CreateTenant("Globex")
	budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	otherHR, _ := f.member(t, other, "hr", user.RoleHR)

	req, err := f.corrections.RequestCorrection(budi, attendance.CreateCorrectionRequest{
		Date: "2025-01-06", NewClockIn: strPtr("2025-01-06T01:00:00Z"), Reason: "x",
	})
	require.NoError(t, err)

	_, err = f.corrections.Approve(otherHR, req.ID)
	assert.ErrorIs(t, err, attendance.ErrCorrectionNotFound)
	_, err = f.corrections.Reject(otherHR, req.ID)
	assert.ErrorIs(t, err, attendance.ErrCorrectionNotFound)

	pending, err := f.corrections.ListPending(otherHR)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCorrectionService_DecisionLogsAndNotifies(t *testing.T) {
	f := newCorrectionFixture(t)
	budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	hr, _ := f.member(t, f.tenantID, "hr", user.RoleHR)

	req, err := f.corrections.RequestCorrection(budi, attendance.CreateCorrectionRequest{
		Date: "2025-01-06", NewClockIn: strPtr("2025-01-06T01:00:00Z"), Reason: "x",
	})
	require.NoError(t, err)

	pending, err := f.corrections.ListPending(hr)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "budi", pending[0].RequesterName)

	_, err = f.corrections.Reject(hr, req.ID)
	require.NoError(t, err)

	entries, err := f.store.ApprovalLog().ListByEntity(context.Background(), f.tenantID, approval.EntityAttendanceCorrection, req.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, approval.ActionReject, entries[0].Action)

	budiID, err := auth.IdentityFromContext(budi)
	require.NoError(t, err)
	notes, _, err := f.store.Notifications().GetByUserID(context.Background(), f.tenantID, budiID.UserID, 1, 10, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, notification.TypeCorrectionRejected, notes[0].Type)
	assert.Equal(t, "Your attendance correction was rejected", notes[0].Message)
}

func TestCorrectionService_RequestValidation(t *testing.T) {
	f := newCorrectionFixture(t)
	budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)

	_, err := f.corrections.RequestCorrection(budi, attendance.CreateCorrectionRequest{Date: "2025-01-06", Reason: "x"})
	assert.Error(t, err, "needs a new clock-in or clock-out")

	_, err = f.corrections.RequestCorrection(budi, attendance.CreateCorrectionRequest{
		Date: "06-01-2025", NewClockIn: strPtr("2025-01-06T01:00:00Z"), Reason: "x",
	})
	assert.Error(t, err)
}

func TestCorrectionService_ConcurrentDecisions(t *testing.T) {
	f := newCorrectionFixture(t)
	budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	hr, _ := f.member(t, f.tenantID, "hr", user.RoleHR)
	manager, _ := f.member(t, f.tenantID, "manager", user.RoleManager)

	for round := 0; round < 20; round++ {
		req, err := f.corrections.RequestCorrection(budi, attendance.CreateCorrectionRequest{
			Date: "2025-01-06", NewClockIn: strPtr("2025-01-06T01:00:00Z"), Reason: "x",
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = f.corrections.Approve(hr, req.ID)
		}()
		go func() {
			defer wg.Done()
			if round%2 == 0 {
				_, errs[1] = f.corrections.Approve(manager, req.ID)
			} else {
				_, errs[1] = f.corrections.Reject(manager, req.ID)
			}
		}()
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.True(t, errors.Is(err, attendance.ErrCorrectionAlreadyProcessed), "unexpected error: %v", err)
		}
		assert.Equal(t, 1, succeeded, "round %d", round)

		entries, err := f.store.ApprovalLog().ListByEntity(context.Background(), f.tenantID, approval.EntityAttendanceCorrection, req.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	}
}
