package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// CategoryService provides category lookups and get-or-create.
type CategoryService interface {
	List(ctx context.Context) ([]*domain.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Category, error)

	// GetOrCreate returns the category named name, creating it if needed.
	// created reports whether this call created it.
	GetOrCreate(ctx context.Context, name string) (category *domain.Category, created bool, err error)
}

// TagService provides tag lookups and get-or-create.
type TagService interface {
	List(ctx context.Context) ([]*domain.Tag, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Tag, error)
	GetOrCreate(ctx context.Context, name string) (tag *domain.Tag, created bool, err error)
}

// CategoryServiceImpl implements CategoryService.
type CategoryServiceImpl struct {
	categories store.CategoryStore
	logger     *slog.Logger
}

var _ CategoryService = (*CategoryServiceImpl)(nil)

// NewCategoryService creates a new CategoryService.
func NewCategoryService(categories store.CategoryStore, logger *slog.Logger) (*CategoryServiceImpl, error) {
	if categories == nil {
		return nil, domain.NewValidationError("categories", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryServiceImpl{
		categories: categories,
		logger:     logger.With(slog.String("component", "category_service")),
	}, nil
}

// List implements CategoryService.List
func (s *CategoryServiceImpl) List(ctx context.Context) ([]*domain.Category, error) {
	out, err := s.categories.List(ctx)
	return out, labelError(ctx, s.logger, "category", "list", err)
}

// Get implements CategoryService.Get
func (s *CategoryServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	out, err := s.categories.Get(ctx, id)
	return out, labelError(ctx, s.logger, "category", "get", err)
}

// GetOrCreate implements CategoryService.GetOrCreate
func (s *CategoryServiceImpl) GetOrCreate(ctx context.Context, name string) (*domain.Category, bool, error) {
	out, created, err := s.categories.GetOrCreate(ctx, name)
	return out, created, labelError(ctx, s.logger, "category", "get_or_create", err)
}

// TagServiceImpl implements TagService.
type TagServiceImpl struct {
	tags   store.TagStore
	logger *slog.Logger
}

var _ TagService = (*TagServiceImpl)(nil)

// NewTagService creates a new TagService.
func NewTagService(tags store.TagStore, logger *slog.Logger) (*TagServiceImpl, error) {
	if tags == nil {
		return nil, domain.NewValidationError("tags", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TagServiceImpl{
		tags:   tags,
		logger: logger.With(slog.String("component", "tag_service")),
	}, nil
}

// List implements TagService.List
func (s *TagServiceImpl) List(ctx context.Context) ([]*domain.Tag, error) {
	out, err := s.tags.List(ctx)
	return out, labelError(ctx, s.logger, "tag", "list", err)
}

// Get implements TagService.Get
func (s *TagServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	out, err := s.tags.Get(ctx, id)
	return out, labelError(ctx, s.logger, "tag", "get", err)
}

// GetOrCreate implements TagService.GetOrCreate
func (s *TagServiceImpl) GetOrCreate(ctx context.Context, name string) (*domain.Tag, bool, error) {
	out, created, err := s.tags.GetOrCreate(ctx, name)
	return out, created, labelError(ctx, s.logger, "tag", "get_or_create", err)
}

func labelError(ctx context.Context, base *slog.Logger, svc, op string, err error) error {
	if err == nil || errors.Is(err, store.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		return err
	}
	logger.FromContextOrDefault(ctx, base).Error("label operation failed",
		slog.String("operation", op),
		slog.String("error", err.Error()))
	return NewServiceError(svc, op, "", err)
}
