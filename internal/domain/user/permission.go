package user

// Operation names a guarded action. Routes declare the operation they perform
// and the gate looks the allowed roles up in OperationRoles.
type Operation string

const (
	OpAttendanceClock  Operation = "attendance.clock"
	OpAttendanceView   Operation = "attendance.view"
	OpAttendanceExport Operation = "attendance.export"

	OpCorrectionRequest Operation = "correction.request"
	OpCorrectionReview  Operation = "correction.review"

	OpLeaveRequest Operation = "leave.request"
	OpLeaveView    Operation = "leave.view"
	OpLeaveReview  Operation = "leave.review"
	OpLeaveBalance Operation = "leave.balance"

	OpPayrollManage  Operation = "payroll.manage"
	OpPayrollApprove Operation = "payroll.approve"
	OpPayslipCreate  Operation = "payslip.create"
	OpPayslipView    Operation = "payslip.view"

	OpEmployeeList   Operation = "employee.list"
	OpEmployeeView   Operation = "employee.view"
	OpEmployeeManage Operation = "employee.manage"

	OpNotificationAccess Operation = "notification.access"
	OpPasswordChange     Operation = "password.change"
	OpErrorLogView       Operation = "errorlog.view"
)

// OperationRoles is the single authorization table. An empty role set admits
// any authenticated caller.
var OperationRoles = map[Operation][]Role{
	OpAttendanceClock:  {},
	OpAttendanceView:   {},
	OpAttendanceExport: {RoleAdmin, RoleHR, RoleManager},

	OpCorrectionRequest: {RoleEmployee, RoleManager, RoleHR, RoleAdmin},
	OpCorrectionReview:  {RoleManager, RoleHR, RoleAdmin},

	OpLeaveRequest: {},
	OpLeaveView:    {},
	OpLeaveReview:  {RoleAdmin, RoleHR, RoleManager},
	OpLeaveBalance: {},

	OpPayrollManage:  {RoleAdmin, RoleHR},
	OpPayrollApprove: {RoleAdmin},
	OpPayslipCreate:  {RoleAdmin, RoleHR},
	OpPayslipView:    {RoleAdmin, RoleHR, RoleManager, RoleEmployee},

	OpEmployeeList:   {RoleAdmin, RoleHR, RoleManager},
	OpEmployeeView:   {RoleAdmin, RoleHR, RoleManager, RoleEmployee},
	OpEmployeeManage: {RoleAdmin, RoleHR},

	OpNotificationAccess: {},
	OpPasswordChange:     {},
	OpErrorLogView:       {RoleAdmin},
}

// IsAllowed checks role against the table. Unknown operations are denied.
func IsAllowed(role Role, op Operation) bool {
	roles, exists := OperationRoles[op]
	if !exists {
		return false
	}
	if len(roles) == 0 {
		return true
	}

	for _, r := range roles {
		if r == role {
			return true
		}
	}

	return false
}
