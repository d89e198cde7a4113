package employee

import (
	"context"
	"strings"
	"testing"

	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/domain/employee"
	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
	"github.com/hrlite/hr-backend-go/internal/pkg/validator"
	"github.com/hrlite/hr-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type employeeFixture struct {
	svc   employee.EmployeeService
	store *memory.Store
}

func newEmployeeFixture() *employeeFixture {
	store := memory.NewStore()
	return &employeeFixture{
		svc:   NewEmployeeService(store.Transactor(), store.Employees(), store.Users(), WithHashCost(bcrypt.MinCost)),
		store: store,
	}
}

func asCaller(tenantID, userID string, role user.Role) context.Context {
	return auth.ContextWithIdentity(context.Background(), auth.Identity{UserID: userID, TenantID: tenantID, Role: role})
}

func validCreateRequest(email string) employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		Name:       "Budi Santoso",
		Email:      email,
		NIK:        "EMP-001",
		Position:   "Engineer",
		Department: "IT",
		JoinDate:   "2024-01-15",
	}
}

func TestEmployeeService_CreateEmployee_Success(t *testing.T) {
	f := newEmployeeFixture()
	tenantID := f.store.CreateTenant("Acme")
	ctx := asCaller(tenantID, "hr-user", user.RoleHR)

	resp, err := f.svc.CreateEmployee(ctx, validCreateRequest("budi@acme.test"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.TempPassword, "Temp@"))
	assert.Len(t, resp.TempPassword, len("Temp@")+4)

	u, err := f.store.Users().GetByID(ctx, resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleEmployee, u.Role)
	assert.Equal(t, user.StatusActive, u.Status)
	assert.Equal(t, tenantID, u.TenantID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(resp.TempPassword)))

	got, err := f.svc.GetEmployee(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", got.Name)
	assert.Equal(t, "2024-01-15", got.JoinDate)
}

func TestEmployeeService_CreateEmployee_DuplicateEmail(t *testing.T) {
	f := newEmployeeFixture()
	tenantID := f.store.CreateTenant("Acme")
	ctx := asCaller(tenantID, "hr-user", user.RoleHR)

	_, err := f.svc.CreateEmployee(ctx, validCreateRequest("budi@acme.test"))
	require.NoError(t, err)

	_, err = f.svc.CreateEmployee(ctx, validCreateRequest("BUDI@acme.test"))
	assert.ErrorIs(t, err, employee.ErrEmailExists)
}

func TestEmployeeService_CreateEmployee_ValidationError(t *testing.T) {
	f := newEmployeeFixture()
	ctx := asCaller(f.store.CreateTenant("Acme"), "hr-user", user.RoleHR)

	req := validCreateRequest("not-an-email")
	req.JoinDate = "15/01/2024"
	_, err := f.svc.CreateEmployee(ctx, req)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestEmployeeService_GetEmployee_EmployeeSeesOnlySelf(t *testing.T) {
	f := newEmployeeFixture()
	tenantID := f.store.CreateTenant("Acme")
	hr := asCaller(tenantID, "hr-user", user.RoleHR)

	a, err := f.svc.CreateEmployee(hr, validCreateRequest("a@acme.test"))
	require.NoError(t, err)
	b, err := f.svc.CreateEmployee(hr, validCreateRequest("b@acme.test"))
	require.NoError(t, err)

	self := asCaller(tenantID, a.UserID, user.RoleEmployee)
	_, err = f.svc.GetEmployee(self, a.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetEmployee(self, b.ID)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
}

func TestEmployeeService_TenantIsolation(t *testing.T) {
	f := newEmployeeFixture()
	acme := f.store.CreateTenant("Acme")
	globex := f.store.CreateTenant("Globex")

	created, err := f.svc.CreateEmployee(asCaller(acme, "hr-a", user.RoleHR), validCreateRequest("a@acme.test"))
	require.NoError(t, err)

	other := asCaller(globex, "hr-g", user.RoleHR)
	_, err = f.svc.GetEmployee(other, created.ID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	list, err := f.svc.ListEmployees(other, employee.EmployeeFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Employees)
	assert.Equal(t, int64(0), list.Total)

	err = f.svc.DeleteEmployee(other, created.ID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestEmployeeService_ListEmployees_Paginates(t *testing.T) {
	f := newEmployeeFixture()
	tenantID := f.store.CreateTenant("Acme")
	ctx := asCaller(tenantID, "hr-user", user.RoleHR)

	for _, email := range []string{"a@acme.test", "b@acme.test", "c@acme.test"} {
		_, err := f.svc.CreateEmployee(ctx, validCreateRequest(email))
		require.NoError(t, err)
	}

	list, err := f.svc.ListEmployees(ctx, employee.EmployeeFilter{Params: pagination.Params{Page: 2, Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, list.Employees, 1)
	assert.Equal(t, int64(3), list.Total)
	assert.Equal(t, 2, list.TotalPages)
	assert.Equal(t, 2, list.Page)
}

func TestEmployeeService_UpdateEmployee(t *testing.T) {
	f := newEmployeeFixture()
	tenantID := f.store.CreateTenant("Acme")
	ctx := asCaller(tenantID, "hr-user", user.RoleHR)

	created, err := f.svc.CreateEmployee(ctx, validCreateRequest("a@acme.test"))
	require.NoError(t, err)

	position := "Lead Engineer"
	role := string(user.RoleManager)
	updated, err := f.svc.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{ID: created.ID, Position: &position, Role: &role})
	require.NoError(t, err)

	assert.Equal(t, "Lead Engineer", updated.Position)
	assert.Equal(t, "MANAGER", updated.Role)
	assert.Equal(t, "IT", updated.Department, "unset fields are kept")
}

func TestEmployeeService_DeleteEmployee_Deactivates(t *testing.T) {
	f := newEmployeeFixture()
	tenantID := f.store.CreateTenant("Acme")
	ctx := asCaller(tenantID, "hr-user", user.RoleHR)

	created, err := f.svc.CreateEmployee(ctx, validCreateRequest("a@acme.test"))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteEmployee(ctx, created.ID))

	u, err := f.store.Users().GetByID(ctx, created.UserID)
	require.NoError(t, err)
	assert.Equal(t, user.StatusInactive, u.Status)

	got, err := f.svc.GetEmployee(ctx, created.ID)
	require.NoError(t, err, "row is kept")
	assert.Equal(t, "inactive", got.Status)
}

func TestEmployeeService_DeleteEmployee_CannotDeactivateSelf(t *testing.T) {
	f := newEmployeeFixture()
	tenantID := f.store.CreateTenant("Acme")

	created, err := f.svc.CreateEmployee(asCaller(tenantID, "hr-user", user.RoleHR), validCreateRequest("a@acme.test"))
	require.NoError(t, err)

	self := asCaller(tenantID, created.UserID, user.RoleHR)
	assert.ErrorIs(t, f.svc.DeleteEmployee(self, created.ID), employee.ErrCannotDeactivateSelf)

	inactive := string(user.StatusInactive)
	_, err = f.svc.UpdateEmployee(self, employee.UpdateEmployeeRequest{ID: created.ID, Status: &inactive})
	assert.ErrorIs(t, err, employee.ErrCannotDeactivateSelf)
}
