package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/classroom-api/api/swagger"
	"github.com/noah-isme/classroom-api/internal/platform"
	"github.com/noah-isme/classroom-api/internal/repository"
	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/pkg/config"
	"github.com/noah-isme/classroom-api/pkg/logger"
	"github.com/noah-isme/classroom-api/pkg/signer"
)

// @title Classroom API
// @version 1.0.0
// @description Classroom management for teachers: rosters, grades, attendance, transfers and messaging.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	b, err := platform.Open(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer b.Close()

	metrics := service.NewMetricsService()
	factory := service.NewWorkspaceFactory(service.InstrumentStore(b.Store, metrics), logr)
	validate := validator.New()

	var cloud *service.CloudService
	if cfg.Cloud.Enabled {
		db, err := b.Postgres(ctx)
		if err != nil {
			return fmt.Errorf("cloud mirror: %w", err)
		}
		cloud, err = service.NewCloudService(repository.NewCloudRepository(db), logr.Named("cloud"), metrics, service.CloudConfig{
			Workers:    cfg.Cloud.Workers,
			Retries:    cfg.Cloud.Retries,
			RetryDelay: cfg.Cloud.RetryDelay,
		})
		if err != nil {
			return err
		}
		cloud.Start(ctx)
		defer cloud.Stop()
		factory.SetMirror(cloud.Mirror())
	}

	authCfg := service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		DefaultPassword:   cfg.Directory.DefaultPassword,
		CloudPullTimeout:  cfg.Cloud.PullTimeout,
	}
	var auth *service.AuthService
	if cloud != nil {
		auth = service.NewAuthService(factory, cloud, validate, logr, authCfg)
	} else {
		auth = service.NewAuthService(factory, nil, validate, logr, authCfg)
	}

	grades := service.NewGradeService(factory, validate, logr, metrics)
	svcs := services{
		auth:          auth,
		directory:     service.NewDirectoryService(factory, validate, logr),
		schools:       service.NewSchoolService(factory, validate, logr),
		students:      service.NewStudentService(factory, validate, logr),
		attendance:    service.NewAttendanceService(factory, validate, logr),
		grades:        grades,
		transfers:     service.NewTransferService(factory, validate, logr, metrics, service.TransferOptions{AdoptSoleSubject: cfg.Transfer.AdoptSoleSubject}),
		messages:      service.NewMessageService(factory, validate, logr),
		comments:      service.NewCommentService(factory, validate),
		notifications: service.NewNotificationService(factory, factory.Store(), logr, cfg.Notify.PollInterval),
		backups:       service.NewBackupService(factory, logr),
		exports:       service.NewExportService(factory, grades, logr),
		reports:       service.NewReportService(factory, logr),
		metrics:       metrics,
		streamTokens:  signer.NewTokenSigner(cfg.JWT.Secret, time.Minute),
		store:         b.Store,
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, logr, svcs)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Driver, "cloud", cloud != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown", zap.Error(err))
	}
	if cloud != nil {
		if err := cloud.Drain(shutdownCtx); err != nil {
			logr.Warn("cloud pushes still pending at shutdown", zap.Error(err))
		}
	}
	return nil
}
