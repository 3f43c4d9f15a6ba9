package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	_ "github.com/noah-isme/campushub-api/api/swagger"
	"github.com/noah-isme/campushub-api/internal/handler"
	"github.com/noah-isme/campushub-api/internal/repository"
	"github.com/noah-isme/campushub-api/internal/router"
	"github.com/noah-isme/campushub-api/internal/service"
	"github.com/noah-isme/campushub-api/pkg/cache"
	"github.com/noah-isme/campushub-api/pkg/config"
	"github.com/noah-isme/campushub-api/pkg/database"
	"github.com/noah-isme/campushub-api/pkg/events"
	"github.com/noah-isme/campushub-api/pkg/jobs"
	"github.com/noah-isme/campushub-api/pkg/logger"
)

// @title CampusHub Planner API
// @version 1.0.0
// @description Semester timelines, course progress and intake course capacity
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Sugar().Fatalw("failed to run migrations", "error", err)
		}
	}

	var rdb *redis.Client
	if client, err := cache.NewRedis(ctx, cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, planner cache disabled", "error", err)
	} else {
		rdb = client
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	semesterRepo := repository.NewSemesterRepository(db)
	intakeCourseRepo := repository.NewIntakeCourseRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	cacheRepo := repository.NewCacheRepository(rdb, logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Planner.CacheTTL, logr, cfg.Planner.CacheEnabled && rdb != nil)

	publisher := events.NewPublisher(cfg.Kafka, logr)
	defer publisher.Close() //nolint:errcheck

	plannerSvc := service.NewPlannerService(semesterRepo, courseRepo, cacheSvc, metrics, cfg.Planner.CacheTTL, validate, logr)

	refreshQueue := jobs.NewQueue("planner-refresh", plannerSvc.HandleRefreshJob, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.Retries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	refreshQueue.Start(ctx)
	defer refreshQueue.Stop()

	semesterSvc := service.NewSemesterService(semesterRepo, intakeCourseRepo, publisher, refreshQueue, cacheSvc, metrics, validate, logr)
	intakeCourseSvc := service.NewIntakeCourseService(intakeCourseRepo, logr)
	exportSvc := service.NewExportService(plannerSvc, metrics, logr)
	sessions := service.NewSessionService(cfg.JWT)

	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}

	engine := router.Setup(cfg, router.Handlers{
		Semester:     handler.NewSemesterHandler(semesterSvc),
		Planner:      handler.NewPlannerHandler(plannerSvc),
		IntakeCourse: handler.NewIntakeCourseHandler(intakeCourseSvc, exportSvc),
		Metrics:      handler.NewMetricsHandler(metrics, checks),
	}, sessions, metrics, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
