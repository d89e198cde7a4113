package attendance

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/hrlite/hr-backend-go/internal/domain/attendance"
	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/domain/employee"
	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
	"github.com/hrlite/hr-backend-go/internal/pkg/timeutil"
	"github.com/hrlite/hr-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type attendanceFixture struct {
	store    *memory.Store
	clock    *timeutil.Clock
	now      time.Time
	svc      attendance.AttendanceService
	tenantID string
}

func newAttendanceFixture(t *testing.T) *attendanceFixture {
	t.Helper()
	f := &attendanceFixture{store: memory.NewStore()}
	clock, err := timeutil.NewClock("Asia/Jakarta", timeutil.WithNow(func() time.Time { return f.now }))
	require.NoError(t, err)
	f.clock = clock
	f.svc = NewAttendanceService(f.store.Transactor(), f.store.Attendance(), f.store.Employees(), clock)
	f.tenantID = f.store.CreateTenant("Acme")
	return f
}

// member creates a user with an employee profile and returns a context
// authenticated as that user.
func (f *attendanceFixture) member(t *testing.T, tenantID, name string, role user.Role) (context.Context, employee.Employee) {
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
	return auth.ContextWithIdentity(ctx, auth.Identity{UserID: u.ID, TenantID: tenantID, Role: role, Email: u.Email}), emp
}

func TestAttendanceService_ClockIn_Late(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	f.now = time.Date(2023, 1, 1, 2, 30, 0, 0, time.UTC) // 09:30 local

	resp, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{IP: "10.0.0.1"})

	require.NoError(t, err)
	require.NotNil(t, resp.Note)
	assert.Equal(t, attendance.NoteLate, *resp.Note)
	assert.Equal(t, "2023-01-01 09:30:00", resp.ClockInLocal)
}

func TestAttendanceService_ClockIn_OnTime(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	f.now = time.Date(2023, 1, 1, 2, 0, 0, 0, time.UTC) // exactly 09:00 local

	resp, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{})

	require.NoError(t, err)
	assert.Nil(t, resp.Note)
}

func TestAttendanceService_ClockOut_Overtime(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)

	f.now = time.Date(2023, 1, 2, 2, 30, 0, 0, time.UTC) // 09:30 local
	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)

	f.now = time.Date(2023, 1, 2, 11, 0, 0, 0, time.UTC) // 18:00 local
	out, err := f.svc.ClockOut(ctx)
	require.NoError(t, err)
	require.NotNil(t, out.Note)
	assert.Equal(t, "Late, Overtime: 1h", *out.Note)
	assert.Equal(t, "2023-01-02 18:00:00", out.ClockOutLocal)
}

func TestAttendanceService_ClockOut_NoOpenSession(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	f.now = time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC)

	_, err := f.svc.ClockOut(ctx)
	assert.ErrorIs(t, err, attendance.ErrNoActiveClockIn)
}

func TestAttendanceService_ClockIn_TwiceFlagsMissingClockOut(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx, emp := f.member(t, f.tenantID, "budi", user.RoleEmployee)

	f.now = time.Date(2023, 1, 2, 1, 0, 0, 0, time.UTC)
	first, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)

	f.now = time.Date(2023, 1, 2, 1, 30, 0, 0, time.UTC)
	second, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	prev, err := f.store.Attendance().FindByClockIn(ctx, f.tenantID, emp.ID, first.ClockIn)
	require.NoError(t, err)
	require.NotNil(t, prev.Note)
	assert.Equal(t, attendance.NoteMissingClockOut, *prev.Note)
	assert.True(t, prev.IsOpen(), "flagged session is left open")

	// Clock-out closes the newest open session.
	f.now = time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC)
	out, err := f.svc.ClockOut(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, out.ID)
}

func TestAttendanceService_ClockIn_WithoutProfile(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := auth.ContextWithIdentity(context.Background(), auth.Identity{UserID: "ghost", TenantID: f.tenantID, Role: user.RoleEmployee})
	f.now = time.Date(2023, 1, 2, 1, 0, 0, 0, time.UTC)

	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{})
	assert.ErrorIs(t, err, employee.ErrProfileNotFound)
}

func TestAttendanceService_GetMonthly_LocalMonthBucketing(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)

	f.now = time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC) // 2025-01-01 06:00 local
	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)

	jan, err := f.svc.GetMonthly(ctx, attendance.AttendanceFilter{Month: "2025-01"})
	require.NoError(t, err)
	require.Len(t, jan.Data, 1)
	assert.Equal(t, "2025-01-01 06:00:00", jan.Data[0].ClockInLocal)
	assert.Equal(t, "NIK-budi", jan.Data[0].NIK)
	assert.Equal(t, "budi", jan.Data[0].Name)

	dec, err := f.svc.GetMonthly(ctx, attendance.AttendanceFilter{Month: "2024-12"})
	require.NoError(t, err)
	assert.Empty(t, dec.Data)
}

func TestAttendanceService_GetMonthly_RequiresMonth(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)

	_, err := f.svc.GetMonthly(ctx, attendance.AttendanceFilter{})
	assert.Error(t, err)

	_, err = f.svc.GetMonthly(ctx, attendance.AttendanceFilter{Month: "2025-13"})
	assert.Error(t, err)
}

func TestAttendanceService_GetMonthly_EmployeeSeesOwnRowsOnly(t *testing.T) {
	f := newAttendanceFixture(t)
	budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	siti, _ := f.member(t, f.tenantID, "siti", user.RoleEmployee)
	hr, _ := f.member(t, f.tenantID, "hr", user.RoleHR)

	f.now = time.Date(2025, 3, 3, 1, 0, 0, 0, time.UTC)
	_, err := f.svc.ClockIn(budi, attendance.ClockInRequest{})
	require.NoError(t, err)
	f.now = f.now.Add(time.Minute)
	_, err = f.svc.ClockIn(siti, attendance.ClockInRequest{})
	require.NoError(t, err)

	own, err := f.svc.GetMonthly(budi, attendance.AttendanceFilter{Month: "2025-03"})
	require.NoError(t, err)
	require.Len(t, own.Data, 1)
	assert.Equal(t, "budi", own.Data[0].Name)

	all, err := f.svc.GetMonthly(hr, attendance.AttendanceFilter{Month: "2025-03"})
	require.NoError(t, err)
	assert.Len(t, all.Data, 2)
	assert.Equal(t, int64(2), all.Total)
	assert.Equal(t, "siti", all.Data[0].Name, "default sort is clock_in desc")
}

func TestAttendanceService_GetMonthly_TenantIsolation(t *testing.T) {
	f := newAttendanceFixture(t)
	other := f.store.CreateTenant("Globex")
	budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	otherHR, _ := f.member(t, other, "hr", user.RoleHR)

	f.now = time.Date(2025, 3, 3, 1, 0, 0, 0, time.UTC)
	_, err := f.svc.ClockIn(budi, attendance.ClockInRequest{})
	require.NoError(t, err)

	resp, err := f.svc.GetMonthly(otherHR, attendance.AttendanceFilter{Month: "2025-03"})
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
}

func TestAttendanceService_GetMonthly_PaginatesAndSorts(t *testing.T) {
	f := newAttendanceFixture(t)
	budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)

	for day := 3; day <= 7; day++ {
		f.now = time.Date(2025, 3, day, 1, 0, 0, 0, time.UTC)
		_, err := f.svc.ClockIn(budi, attendance.ClockInRequest{})
		require.NoError(t, err)
	}

	resp, err := f.svc.GetMonthly(budi, attendance.AttendanceFilter{
		Month:  "2025-03",
		Params: pagination.Params{Page: 2, Limit: 2, SortBy: "clock_in", SortOrder: "asc"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, int64(5), resp.Total)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, "2025-03-05 08:00:00", resp.Data[0].ClockInLocal)
}

func TestAttendanceService_GetRecent_DefaultsToCurrentMonth(t *testing.T) {
	f := newAttendanceFixture(t)
	budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)

	f.now = time.Date(2025, 2, 27, 1, 0, 0, 0, time.UTC)
	_, err := f.svc.ClockIn(budi, attendance.ClockInRequest{})
	require.NoError(t, err)
	f.now = time.Date(2025, 3, 3, 1, 0, 0, 0, time.UTC)
	_, err = f.svc.ClockIn(budi, attendance.ClockInRequest{})
	require.NoError(t, err)

	resp, err := f.svc.GetRecent(budi, attendance.AttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "2025-03-03 08:00:00", resp.Data[0].ClockInLocal)
}

func TestAttendanceService_GetRecent_NoProfileIsEmpty(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := auth.ContextWithIdentity(context.Background(), auth.Identity{UserID: "ghost", TenantID: f.tenantID, Role: user.RoleEmployee})
	f.now = time.Date(2025, 3, 3, 1, 0, 0, 0, time.UTC)

	resp, err := f.svc.GetRecent(ctx, attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
}

func TestAttendanceService_ExportMonthly(t *testing.T) {
	f := newAttendanceFixture(t)
	budi, _ := f.member(t, f.tenantID, "budi", user.RoleEmployee)
	hr, _ := f.member(t, f.tenantID, "hr", user.RoleHR)

	f.now = time.Date(2025, 3, 3, 2, 30, 0, 0, time.UTC)
	_, err := f.svc.ClockIn(budi, attendance.ClockInRequest{IP: "10.0.0.9"})
	require.NoError(t, err)
	f.now = time.Date(2025, 3, 3, 11, 0, 0, 0, time.UTC)
	_, err = f.svc.ClockOut(budi)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportMonthly(hr, "2025-03", &buf))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Clock In", rows[0][3])
	assert.Equal(t, []string{"2025-03-03", "NIK-budi", "budi", "2025-03-03 09:30:00", "2025-03-03 18:00:00", "10.0.0.9", "Late, Overtime: 1h"}, rows[1])
}
