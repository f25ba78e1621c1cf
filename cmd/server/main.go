package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/citamed/api/internal/config"
	v1 "github.com/citamed/api/internal/handler/v1"
	"github.com/citamed/api/internal/identity"
	"github.com/citamed/api/internal/notification"
	"github.com/citamed/api/internal/repository"
	"github.com/citamed/api/internal/service"
	"github.com/citamed/api/pkg/auth"
	"github.com/citamed/api/pkg/database"
	"github.com/citamed/api/pkg/logger"
	"github.com/citamed/api/pkg/metrics"
	"github.com/citamed/api/pkg/tracer"
)

func main() {
	// Missing .env is fine in containerized deployments.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("loading config: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("building logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	collector := metrics.NewCollector("citamed")
	jwtManager := auth.NewJWTManager(cfg.JWT)
	mailer := notification.NewService(cfg.Mailer, log, collector)

	idp, err := identity.NewFirebase(ctx, cfg.Firebase)
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditSvc := service.NewAuditService(auditRepo, log)
	defer auditSvc.Shutdown()

	authSvc := service.NewAuthService(userRepo, patientRepo, jwtManager, idp, mailer, auditSvc, log)
	doctorSvc := service.NewDoctorService(doctorRepo, appointmentRepo, auditSvc, log)
	patientSvc := service.NewPatientService(patientRepo, appointmentRepo, auditSvc, log)
	appointmentSvc := service.NewAppointmentService(
		appointmentRepo, doctorRepo, patientRepo, userRepo, mailer, auditSvc, log, collector)
	adminSvc := service.NewAdminService(userRepo, doctorRepo, patientRepo, appointmentRepo, auditSvc, log)

	router := v1.NewRouter(cfg, db, jwtManager, collector, v1.Handlers{
		Auth:         v1.NewAuthHandler(authSvc),
		Admin:        v1.NewAdminHandler(adminSvc),
		Doctors:      v1.NewDoctorHandler(doctorSvc),
		Patients:     v1.NewPatientHandler(patientSvc),
		Appointments: v1.NewAppointmentHandler(appointmentSvc),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}
