package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// ActivityService exposes the caller's own activity entries.
type ActivityService interface {
	// List returns a page of the caller's entries, newest first.
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.ActivityLog, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.ActivityLog, error)
}

// Paging bounds for ActivityService.List.
const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 200
)

// ActivityServiceImpl implements ActivityService.
type ActivityServiceImpl struct {
	activity store.ActivityStore
	logger   *slog.Logger
}

var _ ActivityService = (*ActivityServiceImpl)(nil)

// NewActivityService creates a new ActivityService.
func NewActivityService(activity store.ActivityStore, logger *slog.Logger) (*ActivityServiceImpl, error) {
	if activity == nil {
		return nil, domain.NewValidationError("activity", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityServiceImpl{
		activity: activity,
		logger:   logger.With(slog.String("component", "activity_service")),
	}, nil
}

// List implements ActivityService.List.
// limit is clamped to [1, MaxActivityLimit]; zero selects DefaultActivityLimit.
func (s *ActivityServiceImpl) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.ActivityLog, error) {
	switch {
	case limit <= 0:
		limit = DefaultActivityLimit
	case limit > MaxActivityLimit:
		limit = MaxActivityLimit
	}
	if offset < 0 {
		offset = 0
	}
	out, err := s.activity.ListByUser(ctx, userID, limit, offset)
	return out, labelError(ctx, s.logger, "activity", "list", err)
}

// Get implements ActivityService.Get
func (s *ActivityServiceImpl) Get(ctx context.Context, userID, id uuid.UUID) (*domain.ActivityLog, error) {
	out, err := s.activity.Get(ctx, userID, id)
	return out, labelError(ctx, s.logger, "activity", "get", err)
}
