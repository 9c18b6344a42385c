package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/taskmanager-api/internal/config"
	"github.com/phrazzld/taskmanager-api/internal/platform/mailer"
	"github.com/phrazzld/taskmanager-api/internal/platform/postgres"
	"github.com/phrazzld/taskmanager-api/internal/reminder"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
	"github.com/phrazzld/taskmanager-api/internal/supervisor"
)

// application holds the wired dependencies of a running server.
type application struct {
	config *config.Config
	logger *slog.Logger

	jwtService      auth.JWTService
	userService     service.UserService
	taskService     service.TaskService
	categoryService service.CategoryService
	tagService      service.TagService
	activityService service.ActivityService

	// scheduler is nil when reminders are disabled.
	scheduler *reminder.Scheduler
}

// newApplication builds stores, services and the reminder dispatcher on db.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	categoryStore := postgres.NewPostgresCategoryStore(db, logger)
	tagStore := postgres.NewPostgresTagStore(db, logger)
	activityStore := postgres.NewPostgresActivityStore(db, logger)

	userService, err := service.NewUserService(db, userStore, auth.NewBcryptVerifier(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	taskService, err := service.NewTaskService(service.TaskServiceDeps{
		DB:         db,
		Tasks:      taskStore,
		Categories: categoryStore,
		Tags:       tagStore,
		Activity:   activityStore,
	}, time.Duration(cfg.Reminder.LookaheadHours)*time.Hour, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}
	categoryService, err := service.NewCategoryService(categoryStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create category service: %w", err)
	}
	tagService, err := service.NewTagService(tagStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create tag service: %w", err)
	}
	activityService, err := service.NewActivityService(activityStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create activity service: %w", err)
	}

	app := &application{
		config:          cfg,
		logger:          logger,
		jwtService:      jwtService,
		userService:     userService,
		taskService:     taskService,
		categoryService: categoryService,
		tagService:      tagService,
		activityService: activityService,
	}

	if cfg.Reminder.Enabled {
		dispatcher, err := reminder.NewDispatcher(
			db,
			postgres.NewPostgresReminderStore(db, logger),
			mailer.New(cfg.Mail, logger),
			cfg.Reminder,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create reminder dispatcher: %w", err)
		}
		app.scheduler = reminder.NewScheduler(dispatcher, reminder.SchedulerConfig{
			Interval:         time.Duration(cfg.Reminder.IntervalSeconds) * time.Second,
			ExecutionTimeout: time.Duration(cfg.Reminder.ExecutionTimeoutSeconds) * time.Second,
		}, logger)
	}

	return app, nil
}

// Run serves HTTP and the reminder scheduler under one supervisor tree
// until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	shutdownTimeout := time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second

	treeCfg := supervisor.DefaultTreeConfig()
	if shutdownTimeout > 0 {
		treeCfg.ShutdownTimeout = shutdownTimeout
	}
	tree := supervisor.NewTree(app.logger, treeCfg)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	tree.AddAPIService(supervisor.NewHTTPServerService(server, shutdownTimeout))

	if app.scheduler != nil {
		tree.AddJobService(supervisor.NewReminderSchedulerService(app.scheduler))
	} else {
		app.logger.Info("reminder dispatcher disabled")
	}

	app.logger.Info("starting server", slog.Int("port", app.config.Server.Port))
	err := tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor stopped: %w", err)
	}
	app.logger.Info("server stopped")
	return nil
}
