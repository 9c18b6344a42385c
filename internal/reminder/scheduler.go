package reminder

import (
	"context"
	"log/slog"
	"time"
)

// Runner is one unit of periodic work.
type Runner interface {
	RunOnce(ctx context.Context) (int, error)
}

// SchedulerConfig holds configuration for the Scheduler.
type SchedulerConfig struct {
	// Interval between runs. Defaults to one minute.
	Interval time.Duration

	// ExecutionTimeout bounds a single run. Defaults to the interval.
	ExecutionTimeout time.Duration
}

// Scheduler runs a Runner once at start and then on every tick.
type Scheduler struct {
	runner Runner
	config SchedulerConfig
	logger *slog.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(runner Runner, cfg SchedulerConfig, log *slog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.ExecutionTimeout <= 0 {
		cfg.ExecutionTimeout = cfg.Interval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		runner: runner,
		config: cfg,
		logger: log.With(slog.String("component", "reminder_scheduler")),
	}
}

// Run blocks until ctx is cancelled, running the Runner on schedule.
// Run errors are logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("reminder scheduler starting",
		slog.Duration("interval", s.config.Interval),
		slog.Duration("execution_timeout", s.config.ExecutionTimeout))

	s.tick(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopping")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.ExecutionTimeout)
	defer cancel()

	if _, err := s.runner.RunOnce(runCtx); err != nil && ctx.Err() == nil {
		s.logger.Warn("scheduled reminder run failed", slog.String("error", err.Error()))
	}
}
