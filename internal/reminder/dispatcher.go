package reminder

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
	_ "time/tzdata" // zone data for images without a system zoneinfo

	"github.com/phrazzld/taskmanager-api/internal/config"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/metrics"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/platform/mailer"
	"github.com/phrazzld/taskmanager-api/internal/store"
	"golang.org/x/time/rate"
)

// reminderTimeLayout renders the reminder time in the message body.
const reminderTimeLayout = "Mon, 02 Jan 2006 15:04 MST"

// Dispatcher sends the reminders that are due.
type Dispatcher struct {
	db        *sql.DB
	reminders store.ReminderStore
	mailer    mailer.Mailer
	limiter   *rate.Limiter
	batchSize int
	location  *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher. cfg.Timezone must name a location
// known to the time package.
func NewDispatcher(
	db *sql.DB,
	reminders store.ReminderStore,
	m mailer.Mailer,
	cfg config.ReminderConfig,
	log *slog.Logger,
) (*Dispatcher, error) {
	switch {
	case db == nil:
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	case reminders == nil:
		return nil, domain.NewValidationError("reminders", "cannot be nil", domain.ErrValidation)
	case m == nil:
		return nil, domain.NewValidationError("mailer", "cannot be nil", domain.ErrValidation)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, domain.NewValidationError("timezone", fmt.Sprintf("unknown location %q", cfg.Timezone), err)
	}

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 100
	}
	perSecond := cfg.SendsPerSecond
	if perSecond <= 0 {
		perSecond = 10
	}
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		db:        db,
		reminders: reminders,
		mailer:    m,
		limiter:   rate.NewLimiter(rate.Limit(perSecond), 1),
		batchSize: batch,
		location:  loc,
		now:       time.Now,
		logger:    log.With(slog.String("component", "reminder_dispatcher")),
	}, nil
}

// RunOnce sends up to the batch size of due reminders and returns how many
// were sent. The first delivery failure stops the run; the failed task
// stays unsent and is retried on the next run.
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, d.logger)
	start := time.Now()

	sent := 0
	var runErr error
	for sent < d.batchSize {
		claimed, err := d.deliverNext(ctx)
		if err != nil {
			runErr = err
			break
		}
		if !claimed {
			break
		}
		sent++
	}

	metrics.RecordReminderRun(sent, time.Since(start), runErr)
	if runErr != nil {
		log.Error("reminder run aborted",
			slog.Int("sent", sent),
			slog.String("error", runErr.Error()))
		return sent, runErr
	}
	if sent > 0 {
		log.Info("reminders sent", slog.Int("sent", sent))
	}
	return sent, nil
}

// deliverNext claims, sends and marks one reminder in a single
// transaction. It reports false when nothing was due.
func (d *Dispatcher) deliverNext(ctx context.Context) (bool, error) {
	var claimed bool
	err := store.RunInTransaction(ctx, d.db, func(ctx context.Context, tx *sql.Tx) error {
		reminders := d.reminders.WithTx(tx)

		due, ok, err := reminders.ClaimDue(ctx, d.now().UTC())
		if err != nil {
			return fmt.Errorf("failed to claim due reminder: %w", err)
		}
		if !ok {
			return nil
		}
		claimed = true

		if err := d.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("reminder send throttled: %w", err)
		}
		if err := d.mailer.Send(ctx, d.message(due)); err != nil {
			return fmt.Errorf("failed to send reminder for task %s: %w", due.TaskID, err)
		}
		if err := reminders.MarkSent(ctx, due.TaskID); err != nil {
			return fmt.Errorf("failed to mark reminder sent for task %s: %w", due.TaskID, err)
		}

		logger.FromContextOrDefault(ctx, d.logger).Debug("reminder delivered",
			slog.String("task_id", due.TaskID.String()))
		return nil
	})
	return claimed, err
}

func (d *Dispatcher) message(due *domain.DueReminder) mailer.Message {
	return mailer.Message{
		To:      due.Email,
		Subject: "Reminder: " + due.Title,
		Body: fmt.Sprintf("Your task '%s' is due now.\n\nReminder time: %s\n",
			due.Title, due.RemindAt.In(d.location).Format(reminderTimeLayout)),
	}
}
