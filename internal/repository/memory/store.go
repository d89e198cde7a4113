// Package memory provides in-process implementations of every repository
// interface. It backs the service tests and the STORAGE_DRIVER=memory dev mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hrlite/hr-backend-go/internal/domain/approval"
	"github.com/hrlite/hr-backend-go/internal/domain/attendance"
	"github.com/hrlite/hr-backend-go/internal/domain/employee"
	"github.com/hrlite/hr-backend-go/internal/domain/errorlog"
	"github.com/hrlite/hr-backend-go/internal/domain/leave"
	"github.com/hrlite/hr-backend-go/internal/domain/notification"
	"github.com/hrlite/hr-backend-go/internal/domain/payroll"
	"github.com/hrlite/hr-backend-go/internal/domain/tenant"
	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
)

// Store holds every table behind one lock. Repositories are thin views over
// it so a unit of work sees one consistent state.
type Store struct {
	mu sync.RWMutex

	// txMu serialises WithinTransaction callers, standing in for row locks.
	txMu sync.Mutex

	tenants       map[string]tenant.Tenant
	users         map[string]user.User
	employees     map[string]employee.Employee
	attendance    map[string]attendance.Attendance
	corrections   map[string]attendance.Correction
	leaves        map[string]leave.LeaveRequest
	runs          map[string]payroll.PayrollRun
	items         map[string][]payroll.PayrollItem
	salaries      map[string]payroll.SalaryConfig
	payslips      map[string]payroll.Payslip
	notifications []*notification.Notification
	approvals     []approval.LogEntry
	errorRecords  []errorlog.Record

	now func() time.Time
}

type Option func(*Store)

// WithNow sets the clock used for created_at stamps.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		tenants:     make(map[string]tenant.Tenant),
		users:       make(map[string]user.User),
		employees:   make(map[string]employee.Employee),
		attendance:  make(map[string]attendance.Attendance),
		corrections: make(map[string]attendance.Correction),
		leaves:      make(map[string]leave.LeaveRequest),
		runs:        make(map[string]payroll.PayrollRun),
		items:       make(map[string][]payroll.PayrollItem),
		salaries:    make(map[string]payroll.SalaryConfig),
		payslips:    make(map[string]payroll.Payslip),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newID() string {
	return uuid.New().String()
}

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

// CreateTenant registers a tenant and returns its id.
func (s *Store) CreateTenant(name string) string {
	created, _ := s.Tenants().Create(context.Background(), tenant.Tenant{Name: name})
	return created.ID
}

// PutSalaryConfig stores salary reference data, which has no write path in
// the service layer.
func (s *Store) PutSalaryConfig(cfg payroll.SalaryConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.salaries[cfg.EmployeeID] = cfg
}

func (s *Store) Tenants() tenant.TenantRepository             { return &tenantRepository{s} }
func (s *Store) Users() user.UserRepository                   { return &userRepository{s} }
func (s *Store) Employees() employee.EmployeeRepository       { return &employeeRepository{s} }
func (s *Store) Attendance() attendance.AttendanceRepository  { return &attendanceRepository{s} }
func (s *Store) Corrections() attendance.CorrectionRepository { return &correctionRepository{s} }
func (s *Store) LeaveRequests() leave.LeaveRequestRepository  { return &leaveRepository{s} }
func (s *Store) Payroll() payroll.PayrollRepository           { return &payrollRepository{s} }
func (s *Store) Notifications() notification.Repository       { return &notificationRepository{s} }
func (s *Store) ApprovalLog() approval.Repository             { return &approvalRepository{s} }
func (s *Store) ErrorLog() errorlog.Repository                { return &errorLogRepository{s} }
func (s *Store) Transactor() database.Transactor              { return &transactor{s} }

type txKey struct{}

type transactor struct {
	s *Store
}

// WithinTransaction runs fn while holding the store's transaction lock. It
// gives serialisation, not rollback.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}

// sortStable orders items by less, reversed when desc is set.
func sortStable[T any](items []T, desc bool, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 || offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
