package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// ActivityHandler serves the read-only activity log of the calling user.
type ActivityHandler struct {
	activity service.ActivityService
	logger   *slog.Logger
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activity service.ActivityService, logger *slog.Logger) *ActivityHandler {
	if activity == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("activity service cannot be nil for ActivityHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityHandler{
		activity: activity,
		logger:   logger.With(slog.String("component", "activity_handler")),
	}
}

// List handles GET /api/activity-logs?limit=&offset=.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r, h.logger)
	if !ok {
		return
	}

	limit, offset, err := parsePage(r.URL.Query())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	entries, err := h.activity.List(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list activity logs")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, activitiesToResponse(entries))
}

// Get handles GET /api/activity-logs/{id}.
func (h *ActivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", store.ErrActivityNotFound, h.logger)
	if !ok {
		return
	}

	entry, err := h.activity.Get(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve activity log")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, activityToResponse(entry))
}
