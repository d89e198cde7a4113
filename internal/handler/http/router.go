package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/hrlite/hr-backend-go/internal/domain/errorlog"
	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/hrlite/hr-backend-go/internal/handler/http/middleware"
	"github.com/hrlite/hr-backend-go/internal/pkg/jwt"
)

type RouterConfig struct {
	Logger      *slog.Logger
	LogLevel    slog.Level
	CORSOrigins []string
}

type Handlers struct {
	Auth         AuthHandler
	Attendance   AttendanceHandler
	Leave        LeaveHandler
	Payroll      PayrollHandler
	Employee     EmployeeHandler
	Notification NotificationHandler
	Admin        AdminHandler
	Health       *HealthHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, errorLogs errorlog.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)

	if cfg.Logger != nil {
		r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
			Level:         cfg.LogLevel,
			Schema:        httplog.SchemaECS,
			RecoverPanics: true,
		}))
	}

	r.Use(middleware.ErrorAudit(errorLogs))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/health", h.Health.Health)

	verifier := jwtauth.Verifier(JWTService.JWTAuth())
	authenticated := func(r chi.Router) {
		r.Use(verifier)
		r.Use(middleware.Authenticate)
	}
	allow := middleware.Authorize

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
		})

		r.Route("/password", func(r chi.Router) {
			r.Post("/forgot-password", h.Auth.ForgotPassword)
			r.Post("/reset-password", h.Auth.ResetPassword)

			r.Group(func(r chi.Router) {
				authenticated(r)
				r.Use(middleware.RequireTenant)
				r.With(allow(user.OpPasswordChange)).Post("/{tenant}/change", h.Auth.ChangePassword)
			})
		})

		r.Route("/{tenant}", func(r chi.Router) {
			// EventSource cannot send headers, the stream authenticates with
			// a short-lived token in the query string instead.
			r.Get("/notifications/stream", h.Notification.Stream)

			r.Group(func(r chi.Router) {
				authenticated(r)
				r.Use(middleware.RequireTenant)

				r.Route("/attendance", func(r chi.Router) {
					r.With(allow(user.OpAttendanceClock)).Post("/clock-in", h.Attendance.ClockIn)
					r.With(allow(user.OpAttendanceClock)).Post("/clock-out", h.Attendance.ClockOut)
					r.With(allow(user.OpAttendanceView)).Get("/", h.Attendance.Recent)
					r.With(allow(user.OpAttendanceView)).Get("/monthly", h.Attendance.Monthly)
					r.With(allow(user.OpAttendanceExport)).Get("/monthly/export", h.Attendance.ExportMonthly)

					r.Route("/corrections", func(r chi.Router) {
						r.With(allow(user.OpCorrectionRequest)).Post("/", h.Attendance.RequestCorrection)

						r.Group(func(r chi.Router) {
							r.Use(allow(user.OpCorrectionReview))
							r.Get("/", h.Attendance.ListPendingCorrections)
							r.Patch("/{id}/approve", h.Attendance.ApproveCorrection)
							r.Patch("/{id}/reject", h.Attendance.RejectCorrection)
						})
					})
				})

				r.Route("/leave", func(r chi.Router) {
					r.With(allow(user.OpLeaveRequest)).Post("/", h.Leave.CreateRequest)
					r.With(allow(user.OpLeaveView)).Get("/", h.Leave.ListRequests)
					r.With(allow(user.OpLeaveBalance)).Get("/balance", h.Leave.GetBalance)
					r.With(allow(user.OpLeaveReview)).Patch("/{id}/approve", h.Leave.ApproveRequest)
					r.With(allow(user.OpLeaveReview)).Patch("/{id}/reject", h.Leave.RejectRequest)
				})

				r.Route("/payroll", func(r chi.Router) {
					r.Route("/payslips", func(r chi.Router) {
						r.With(allow(user.OpPayslipCreate)).Post("/", h.Payroll.CreatePayslip)
						r.With(allow(user.OpPayslipView)).Get("/{id}", h.Payroll.GetPayslip)
					})

					r.With(allow(user.OpPayrollApprove)).Patch("/{id}/approve", h.Payroll.Approve)

					r.Group(func(r chi.Router) {
						r.Use(allow(user.OpPayrollManage))
						r.Post("/draft", h.Payroll.CreateDraft)
						r.Get("/", h.Payroll.ListRuns)
						r.Get("/{id}", h.Payroll.GetRun)
						r.Patch("/{id}/submit", h.Payroll.Submit)
					})
				})

				r.Route("/employees", func(r chi.Router) {
					r.With(allow(user.OpEmployeeList)).Get("/", h.Employee.ListEmployees)
					r.With(allow(user.OpEmployeeView)).Get("/{id}", h.Employee.GetEmployee)

					r.Group(func(r chi.Router) {
						r.Use(allow(user.OpEmployeeManage))
						r.Post("/", h.Employee.CreateEmployee)
						r.Put("/{id}", h.Employee.UpdateEmployee)
						r.Delete("/{id}", h.Employee.DeleteEmployee)
					})
				})

				r.Route("/notifications", func(r chi.Router) {
					r.Use(allow(user.OpNotificationAccess))
					r.Get("/", h.Notification.List)
					r.Get("/unread-count", h.Notification.UnreadCount)
					r.Patch("/read-all", h.Notification.MarkAllAsRead)
					r.Patch("/{id}/read", h.Notification.MarkAsRead)
					r.Post("/sse-token", h.Notification.GetSSEToken)
				})
			})
		})
	})

	r.Route("/admin", func(r chi.Router) {
		authenticated(r)
		r.With(allow(user.OpErrorLogView)).Get("/errors", h.Admin.ListErrors)
	})

	return r
}
