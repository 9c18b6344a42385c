package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// labelOps adapts the category and tag services to one shape so both
// collections share their handlers.
type labelOps struct {
	kind        string
	notFound    error
	list        func(ctx context.Context) ([]LabelResponse, error)
	get         func(ctx context.Context, id uuid.UUID) (LabelResponse, error)
	getOrCreate func(ctx context.Context, name string) (LabelResponse, bool, error)
}

// LabelHandler serves the category and tag collections. Labels are shared
// by every user, but the routes still require authentication.
type LabelHandler struct {
	ops    labelOps
	logger *slog.Logger
}

// NewCategoryHandler creates a LabelHandler over categories.
func NewCategoryHandler(categories service.CategoryService, logger *slog.Logger) *LabelHandler {
	if categories == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("category service cannot be nil for CategoryHandler")
	}
	toResp := func(c *domain.Category) LabelResponse { return LabelResponse{ID: c.ID, Name: c.Name} }
	return newLabelHandler(labelOps{
		kind:     "category",
		notFound: store.ErrCategoryNotFound,
		list: func(ctx context.Context) ([]LabelResponse, error) {
			cs, err := categories.List(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]LabelResponse, 0, len(cs))
			for _, c := range cs {
				out = append(out, toResp(c))
			}
			return out, nil
		},
		get: func(ctx context.Context, id uuid.UUID) (LabelResponse, error) {
			c, err := categories.Get(ctx, id)
			if err != nil {
				return LabelResponse{}, err
			}
			return toResp(c), nil
		},
		getOrCreate: func(ctx context.Context, name string) (LabelResponse, bool, error) {
			c, created, err := categories.GetOrCreate(ctx, name)
			if err != nil {
				return LabelResponse{}, false, err
			}
			return toResp(c), created, nil
		},
	}, logger)
}

// NewTagHandler creates a LabelHandler over tags.
func NewTagHandler(tags service.TagService, logger *slog.Logger) *LabelHandler {
	if tags == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tag service cannot be nil for TagHandler")
	}
	toResp := func(t *domain.Tag) LabelResponse { return LabelResponse{ID: t.ID, Name: t.Name} }
	return newLabelHandler(labelOps{
		kind:     "tag",
		notFound: store.ErrTagNotFound,
		list: func(ctx context.Context) ([]LabelResponse, error) {
			ts, err := tags.List(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]LabelResponse, 0, len(ts))
			for _, t := range ts {
				out = append(out, toResp(t))
			}
			return out, nil
		},
		get: func(ctx context.Context, id uuid.UUID) (LabelResponse, error) {
			t, err := tags.Get(ctx, id)
			if err != nil {
				return LabelResponse{}, err
			}
			return toResp(t), nil
		},
		getOrCreate: func(ctx context.Context, name string) (LabelResponse, bool, error) {
			t, created, err := tags.GetOrCreate(ctx, name)
			if err != nil {
				return LabelResponse{}, false, err
			}
			return toResp(t), created, nil
		},
	}, logger)
}

func newLabelHandler(ops labelOps, logger *slog.Logger) *LabelHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LabelHandler{
		ops:    ops,
		logger: logger.With(slog.String("component", ops.kind+"_handler")),
	}
}

// List handles GET on the collection.
func (h *LabelHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := handleUserID(w, r, h.logger); !ok {
		return
	}

	labels, err := h.ops.list(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list "+h.ops.kind+" entries")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, labels)
}

// Get handles GET on a single label.
func (h *LabelHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, id, ok := handleUserIDAndPathUUID(w, r, "id", h.ops.notFound, h.logger)
	if !ok {
		return
	}

	label, err := h.ops.get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve "+h.ops.kind)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, label)
}

// Create handles POST on the collection. An existing name is returned
// with 200, a new one with 201.
func (h *LabelHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := handleUserID(w, r, h.logger); !ok {
		return
	}

	var req LabelRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, invalidBody(err), "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	label, created, err := h.ops.getOrCreate(r.Context(), req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create "+h.ops.kind)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	shared.RespondWithJSON(w, r, status, label)
}
