package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hrlite/hr-backend-go/internal/config"
	"github.com/hrlite/hr-backend-go/internal/domain/approval"
	"github.com/hrlite/hr-backend-go/internal/domain/attendance"
	"github.com/hrlite/hr-backend-go/internal/domain/employee"
	"github.com/hrlite/hr-backend-go/internal/domain/errorlog"
	"github.com/hrlite/hr-backend-go/internal/domain/leave"
	"github.com/hrlite/hr-backend-go/internal/domain/notification"
	"github.com/hrlite/hr-backend-go/internal/domain/payroll"
	"github.com/hrlite/hr-backend-go/internal/domain/tenant"
	"github.com/hrlite/hr-backend-go/internal/domain/user"
	appHTTP "github.com/hrlite/hr-backend-go/internal/handler/http"
	"github.com/hrlite/hr-backend-go/internal/pkg/cron"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
	"github.com/hrlite/hr-backend-go/internal/pkg/jwt"
	"github.com/hrlite/hr-backend-go/internal/pkg/ratelimit"
	"github.com/hrlite/hr-backend-go/internal/pkg/sse"
	"github.com/hrlite/hr-backend-go/internal/pkg/timeutil"
	"github.com/hrlite/hr-backend-go/internal/repository/memory"
	"github.com/hrlite/hr-backend-go/internal/repository/postgresql"
	approvalService "github.com/hrlite/hr-backend-go/internal/service/approval"
	attendanceService "github.com/hrlite/hr-backend-go/internal/service/attendance"
	serviceAuth "github.com/hrlite/hr-backend-go/internal/service/auth"
	employeeService "github.com/hrlite/hr-backend-go/internal/service/employee"
	errorlogService "github.com/hrlite/hr-backend-go/internal/service/errorlog"
	leaveService "github.com/hrlite/hr-backend-go/internal/service/leave"
	notificationService "github.com/hrlite/hr-backend-go/internal/service/notification"
	payrollService "github.com/hrlite/hr-backend-go/internal/service/payroll"
	tenantService "github.com/hrlite/hr-backend-go/internal/service/tenant"
)

const (
	limiterSweepInterval   = time.Minute
	resetCodeSweepInterval = 10 * time.Minute
	shutdownTimeout        = 15 * time.Second
)

// repositories is the storage backend chosen by STORAGE_DRIVER.
type repositories struct {
	tx          database.Transactor
	tenants     tenant.TenantRepository
	users       user.UserRepository
	employees   employee.EmployeeRepository
	attendance  attendance.AttendanceRepository
	corrections attendance.CorrectionRepository
	leaves      leave.LeaveRequestRepository
	payroll     payroll.PayrollRepository
	notifs      notification.Repository
	approvals   approval.Repository
	errors      errorlog.Repository
	pinger      appHTTP.Pinger
	close       func()
}

func newPostgresRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if cfg.Database.Migrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		slog.Info("Database schema applied")
	}

	return &repositories{
		tx:          postgresql.NewTransactor(db),
		tenants:     postgresql.NewTenantRepository(db),
		users:       postgresql.NewUserRepository(db),
		employees:   postgresql.NewEmployeeRepository(db),
		attendance:  postgresql.NewAttendanceRepository(db),
		corrections: postgresql.NewCorrectionRepository(db),
		leaves:      postgresql.NewLeaveRequestRepository(db),
		payroll:     postgresql.NewPayrollRepository(db),
		notifs:      postgresql.NewNotificationRepository(db),
		approvals:   postgresql.NewApprovalLogRepository(db),
		errors:      postgresql.NewErrorLogRepository(db),
		pinger:      db,
		close:       db.Close,
	}, nil
}

func newMemoryRepositories() *repositories {
	store := memory.NewStore()
	return &repositories{
		tx:          store.Transactor(),
		tenants:     store.Tenants(),
		users:       store.Users(),
		employees:   store.Employees(),
		attendance:  store.Attendance(),
		corrections: store.Corrections(),
		leaves:      store.LeaveRequests(),
		payroll:     store.Payroll(),
		notifs:      store.Notifications(),
		approvals:   store.ApprovalLog(),
		errors:      store.ErrorLog(),
		close:       func() {},
	}
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if !cfg.IsProduction() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler).With(
		slog.String("app", "hr-backend"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repos *repositories
	switch cfg.Database.Driver {
	case config.StorageDriverMemory:
		slog.Warn("Using in-memory storage, data is lost on restart")
		repos = newMemoryRepositories()
	default:
		repos, err = newPostgresRepositories(ctx, cfg)
		if err != nil {
			return err
		}
	}
	defer repos.close()

	clock, err := timeutil.NewClock(cfg.App.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}
	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}

	limiterStore := ratelimit.NewMemoryStore()
	limiter := ratelimit.NewLimiter(limiterStore, cfg.RateLimit.LoginMaxAttempts, cfg.RateLimit.LoginBlockDuration)
	hub := sse.NewHub()

	notificationSvc := notificationService.NewNotificationService(repos.notifs, hub)
	approvalSvc := approvalService.NewApprovalService(repos.approvals, notificationSvc)
	errorLogSvc := errorlogService.NewErrorLogService(repos.errors)
	authSvc := serviceAuth.NewAuthService(repos.tx, repos.users, JWTService, limiter, serviceAuth.WithResetCodeTTL(cfg.Auth.ResetCodeTTL))
	attendanceSvc := attendanceService.NewAttendanceService(repos.tx, repos.attendance, repos.employees, clock)
	correctionSvc := attendanceService.NewCorrectionService(repos.tx, repos.corrections, repos.attendance, repos.employees, approvalSvc, clock)
	leaveSvc := leaveService.NewLeaveService(repos.tx, repos.leaves, repos.employees, repos.users, approvalSvc, clock)
	payrollSvc := payrollService.NewPayrollService(repos.tx, repos.payroll, repos.employees, approvalSvc)
	employeeSvc := employeeService.NewEmployeeService(repos.tx, repos.employees, repos.users)

	if cfg.Seed.Enabled() {
		provisioner := tenantService.NewProvisioner(repos.tx, repos.tenants, repos.users, repos.employees)
		result, err := provisioner.Provision(ctx, tenant.ProvisionRequest{
			TenantName:    cfg.Seed.TenantName,
			AdminName:     cfg.Seed.AdminName,
			AdminEmail:    cfg.Seed.AdminEmail,
			AdminPassword: cfg.Seed.AdminPassword,
		})
		if err != nil {
			return fmt.Errorf("provision seed tenant: %w", err)
		}
		slog.Info("Seed tenant ready", "tenant_id", result.TenantID, "created", result.Created)
	}

	scheduler := cron.NewScheduler(logger)
	if err := scheduler.AddJob("login-limiter-sweep", limiterSweepInterval, func(ctx context.Context) error {
		removed, err := limiterStore.Sweep(ctx)
		if removed > 0 {
			slog.DebugContext(ctx, "Swept login limiter entries", "removed", removed)
		}
		return err
	}); err != nil {
		return err
	}
	if err := scheduler.AddJob("clear-expired-reset-codes", resetCodeSweepInterval, authSvc.ClearExpiredResetCodes); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:      logger,
			LogLevel:    cfg.SlogLevel(),
			CORSOrigins: cfg.App.CORSOrigins,
		},
		JWTService,
		errorLogSvc,
		appHTTP.Handlers{
			Auth:         appHTTP.NewAuthHandler(authSvc),
			Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc, correctionSvc),
			Leave:        appHTTP.NewLeaveHandler(leaveSvc),
			Payroll:      appHTTP.NewPayrollHandler(payrollSvc),
			Employee:     appHTTP.NewEmployeeHandler(employeeSvc),
			Notification: appHTTP.NewNotificationHandler(notificationSvc, JWTService),
			Admin:        appHTTP.NewAdminHandler(errorLogSvc),
			Health:       appHTTP.NewHealthHandler(repos.pinger),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
