package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hrlite/hr-backend-go/internal/domain/employee"
	"github.com/hrlite/hr-backend-go/internal/domain/leave"
	"github.com/hrlite/hr-backend-go/internal/domain/payroll"
	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/hrlite/hr-backend-go/internal/pkg/jwt"
	"github.com/hrlite/hr-backend-go/internal/pkg/ratelimit"
	"github.com/hrlite/hr-backend-go/internal/pkg/sse"
	"github.com/hrlite/hr-backend-go/internal/pkg/timeutil"
	"github.com/hrlite/hr-backend-go/internal/repository/memory"
	approvalService "github.com/hrlite/hr-backend-go/internal/service/approval"
	attendanceService "github.com/hrlite/hr-backend-go/internal/service/attendance"
	authService "github.com/hrlite/hr-backend-go/internal/service/auth"
	employeeService "github.com/hrlite/hr-backend-go/internal/service/employee"
	errorlogService "github.com/hrlite/hr-backend-go/internal/service/errorlog"
	leaveService "github.com/hrlite/hr-backend-go/internal/service/leave"
	notificationService "github.com/hrlite/hr-backend-go/internal/service/notification"
	payrollService "github.com/hrlite/hr-backend-go/internal/service/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	handlerTestAccessExp  = "1h"
	handlerTestRefreshExp = "24h"
	handlerTestSecret     = "test-secret-key-for-jwt"
	handlerTestPassword   = "password123"
)

type testApp struct {
	store    *memory.Store
	jwt      *jwt.JWTService
	router   *chi.Mux
	tenantID string
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestApp(t *testing.T, now time.Time) *testApp {
	t.Helper()
	store := memory.NewStore()
	clock, err := timeutil.NewClock("Asia/Jakarta", timeutil.WithNow(func() time.Time { return now }))
	require.NoError(t, err)

	jwtSvc, err := jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp, handlerTestRefreshExp)
	require.NoError(t, err)

	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 5, 5*time.Minute)
	notifications := notificationService.NewNotificationService(store.Notifications(), sse.NewHub())
	approvals := approvalService.NewApprovalService(store.ApprovalLog(), notifications)
	errorLogs := errorlogService.NewErrorLogService(store.ErrorLog())

	tx := store.Transactor()
	handlers := Handlers{
		Auth: NewAuthHandler(authService.NewAuthService(tx, store.Users(), jwtSvc, limiter, authService.WithHashCost(bcrypt.MinCost))),
		Attendance: NewAttendanceHandler(
			attendanceService.NewAttendanceService(tx, store.Attendance(), store.Employees(), clock),
			attendanceService.NewCorrectionService(tx, store.Corrections(), store.Attendance(), store.Employees(), approvals, clock),
		),
		Leave:        NewLeaveHandler(leaveService.NewLeaveService(tx, store.LeaveRequests(), store.Employees(), store.Users(), approvals, clock)),
		Payroll:      NewPayrollHandler(payrollService.NewPayrollService(tx, store.Payroll(), store.Employees(), approvals)),
		Employee:     NewEmployeeHandler(employeeService.NewEmployeeService(tx, store.Employees(), store.Users(), employeeService.WithHashCost(bcrypt.MinCost))),
		Notification: NewNotificationHandler(notifications, jwtSvc),
		Admin:        NewAdminHandler(errorLogs),
		Health:       NewHealthHandler(nil),
	}

	return &testApp{
		store:    store,
		jwt:      jwtSvc,
		router:   NewRouter(RouterConfig{}, jwtSvc, errorLogs, handlers),
		tenantID: store.CreateTenant("Acme"),
	}
}

// member creates an active user with an employee profile and returns a valid
// access token for it.
func (a *testApp) member(t *testing.T, tenantID, name string, role user.Role) (string, employee.Employee) {
	t.Helper()
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte(handlerTestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	u, err := a.store.Users().Create(ctx, user.User{
		TenantID: tenantID, Name: name, Email: name + "@example.com",
		PasswordHash: string(hash), Role: role, Status: user.StatusActive,
	})
	require.NoError(t, err)
	emp, err := a.store.Employees().Create(ctx, employee.Employee{
		TenantID: tenantID, UserID: u.ID, NIK: "NIK-" + name, Position: "Staff", Department: "Ops",
		JoinDate: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	token, _, err := a.jwt.GenerateAccessToken(u.ID, tenantID, u.Email, role)
	require.NoError(t, err)
	return token, emp
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (a *testApp) path(format string, args ...interface{}) string {
	return "/api/" + a.tenantID + fmt.Sprintf(format, args...)
}

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t, time.Now())

	rec, env := app.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"status":"ok"`)
}

func TestRouter_LoginThenClockInLate(t *testing.T) {
	app := newTestApp(t, time.Date(2023, 1, 1, 2, 30, 0, 0, time.UTC))
	app.member(t, app.tenantID, "budi", user.RoleEmployee)

	rec, env := app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "budi@example.com", "password": handlerTestPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tokens struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tokens))
	require.NotEmpty(t, tokens.AccessToken)

	rec, env = app.do(t, http.MethodPost, app.path("/attendance/clock-in"), tokens.AccessToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, string(env.Data), `"note":"Late"`)
}

func TestRouter_Login_RateLimited(t *testing.T) {
	app := newTestApp(t, time.Now())
	app.member(t, app.tenantID, "budi", user.RoleEmployee)
	bad := map[string]string{"email": "budi@example.com", "password": "wrong-password"}

	for i := 0; i < 5; i++ {
		rec, _ := app.do(t, http.MethodPost, "/api/auth/login", "", bad)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec, env := app.do(t, http.MethodPost, "/api/auth/login", "", bad)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", env.Error.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRouter_PayrollApprove_ManagerForbiddenAdminAllowed(t *testing.T) {
	app := newTestApp(t, time.Now())
	hrToken, hrEmp := app.member(t, app.tenantID, "hr", user.RoleHR)
	managerToken, _ := app.member(t, app.tenantID, "manager", user.RoleManager)
	adminToken, _ := app.member(t, app.tenantID, "admin", user.RoleAdmin)
	app.store.PutSalaryConfig(payroll.SalaryConfig{EmployeeID: hrEmp.ID, BaseSalary: decimal.NewFromInt(7_000_000)})

	rec, env := app.do(t, http.MethodPost, app.path("/payroll/draft"), hrToken, payroll.CreateDraftRequest{
		Period: "2025-01", EmployeeIDs: []string{hrEmp.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var run payroll.PayrollRunResponse
	require.NoError(t, json.Unmarshal(env.Data, &run))

	rec, _ = app.do(t, http.MethodPatch, app.path("/payroll/%s/submit", run.ID), hrToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = app.do(t, http.MethodPatch, app.path("/payroll/%s/approve", run.ID), managerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	rec, env = app.do(t, http.MethodPatch, app.path("/payroll/%s/approve", run.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(env.Data), `"status":"approved"`)

	rec, _ = app.do(t, http.MethodPatch, app.path("/payroll/%s/approve", run.ID), adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "a second approval loses")
}

func TestRouter_LeaveApprove_InsufficientBalance(t *testing.T) {
	app := newTestApp(t, time.Date(2023, 1, 10, 3, 0, 0, 0, time.UTC))
	budiToken, budi := app.member(t, app.tenantID, "budi", user.RoleEmployee)
	adminToken, _ := app.member(t, app.tenantID, "admin", user.RoleAdmin)

	_, err := app.store.LeaveRequests().Create(context.Background(), leave.LeaveRequest{
		TenantID: app.tenantID, EmployeeID: budi.ID, Type: "annual",
		StartDate: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2023, 1, 13, 0, 0, 0, 0, time.UTC),
		Days:      12, Reason: "seed", Status: leave.StatusApproved,
	})
	require.NoError(t, err)

	rec, env := app.do(t, http.MethodPost, app.path("/leave"), budiToken, map[string]interface{}{
		"type": "annual", "start_date": "2023-02-01", "end_date": "2023-02-01", "days": 1, "reason": "family",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created leave.CreateLeaveResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))

	rec, env = app.do(t, http.MethodPatch, app.path("/leave/%s/approve", created.ID), adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Regexp(t, "Insufficient leave balance", env.Error.Message)

	rec, _ = app.do(t, http.MethodPatch, app.path("/leave/%s/approve", created.ID), budiToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "employees cannot review leave")
}

func TestRouter_TenantMismatch(t *testing.T) {
	app := newTestApp(t, time.Now())
	token, _ := app.member(t, app.tenantID, "budi", user.RoleEmployee)
	other := app.store.CreateTenant("Globex")

	rec, env := app.do(t, http.MethodGet, "/api/"+other+"/attendance", token, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func TestRouter_Authentication(t *testing.T) {
	app := newTestApp(t, time.Now())
	_, emp := app.member(t, app.tenantID, "budi", user.RoleEmployee)

	past, err := jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp, handlerTestRefreshExp,
		jwt.WithNow(func() time.Time { return time.Now().Add(-2 * time.Hour) }))
	require.NoError(t, err)
	expired, _, err := past.GenerateAccessToken(emp.UserID, app.tenantID, "budi@example.com", user.RoleEmployee)
	require.NoError(t, err)
	refresh, _, err := app.jwt.GenerateRefreshToken(emp.UserID, app.tenantID)
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		wantCode string
	}{
		{name: "missing token", token: "", wantCode: "UNAUTHORIZED"},
		{name: "garbage token", token: "not-a-jwt", wantCode: "UNAUTHORIZED"},
		{name: "expired token", token: expired, wantCode: "TOKEN_EXPIRED"},
		{name: "refresh token used as access", token: refresh, wantCode: "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := app.do(t, http.MethodGet, app.path("/attendance"), tt.token, nil)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestRouter_GetPayslip_HTML(t *testing.T) {
	app := newTestApp(t, time.Now())
	hrToken, _ := app.member(t, app.tenantID, "hr", user.RoleHR)
	aniToken, ani := app.member(t, app.tenantID, "ani", user.RoleEmployee)

	rec, env := app.do(t, http.MethodPost, app.path("/payroll/payslips"), hrToken, map[string]interface{}{
		"employee_id": ani.ID, "period_start": "2025-01-01", "period_end": "2025-01-31",
		"base_salary": "5000000", "allowances": map[string]string{"Transport": "250000"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var slip payroll.PayslipResponse
	require.NoError(t, json.Unmarshal(env.Data, &slip))

	rec, _ = app.do(t, http.MethodGet, app.path("/payroll/payslips/%s?format=html", slip.ID), aniToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "5250000.00")
	assert.Contains(t, rec.Body.String(), "NIK-ani")
}

func TestRouter_AdminErrors_AdminOnly(t *testing.T) {
	app := newTestApp(t, time.Now())
	hrToken, _ := app.member(t, app.tenantID, "hr", user.RoleHR)
	adminToken, _ := app.member(t, app.tenantID, "admin", user.RoleAdmin)

	rec, _ := app.do(t, http.MethodGet, "/admin/errors", hrToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := app.do(t, http.MethodGet, "/admin/errors", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}

func TestRouter_MalformedID_NotFound(t *testing.T) {
	app := newTestApp(t, time.Now())
	adminToken, _ := app.member(t, app.tenantID, "admin", user.RoleAdmin)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPatch, "/leave/abc/approve"},
		{http.MethodPatch, "/leave/abc/reject"},
		{http.MethodPatch, "/attendance/corrections/abc/approve"},
		{http.MethodPatch, "/attendance/corrections/abc/reject"},
		{http.MethodGet, "/payroll/abc"},
		{http.MethodPatch, "/payroll/abc/submit"},
		{http.MethodPatch, "/payroll/abc/approve"},
		{http.MethodGet, "/payroll/payslips/abc"},
		{http.MethodGet, "/employees/abc"},
		{http.MethodPut, "/employees/abc"},
		{http.MethodDelete, "/employees/abc"},
		{http.MethodPatch, "/notifications/abc/read"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec, env := app.do(t, tc.method, app.path("%s", tc.path), adminToken, nil)

			assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
			require.NotNil(t, env.Error)
			assert.Equal(t, "NOT_FOUND", env.Error.Code)
		})
	}

	records, err := app.store.ErrorLog().ListRecent(context.Background(), app.tenantID, 100)
	require.NoError(t, err)
	assert.Empty(t, records, "malformed ids are not unhandled errors")
}

func TestRouter_PayrollDraft_MalformedEmployeeID(t *testing.T) {
	app := newTestApp(t, time.Now())
	hrToken, _ := app.member(t, app.tenantID, "hr", user.RoleHR)

	rec, env := app.do(t, http.MethodPost, app.path("/payroll/draft"), hrToken, payroll.CreateDraftRequest{
		Period: "2025-01", EmployeeIDs: []string{"abc"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, _ = app.do(t, http.MethodPost, app.path("/payroll/payslips"), hrToken, payroll.CreatePayslipRequest{
		EmployeeID: "abc", PeriodStart: "2025-01-01", PeriodEnd: "2025-01-31",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}
