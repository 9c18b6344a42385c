package api

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// TaskHandler handles task HTTP requests. Every route requires an
// authenticated user and only ever sees that user's tasks.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if tasks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("task service cannot be nil for TaskHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// List handles GET /api/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r, h.logger)
	if !ok {
		return
	}

	filter, err := parseTaskFilter(r.URL.Query())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.tasks.List(r.Context(), userID, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, h.logger)
	if !ok {
		return
	}

	body, ok := readTaskBody(w, r)
	if !ok {
		return
	}
	input, err := decodeTaskPatch(body)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.Create(r.Context(), userID, input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	log.Debug("task created", slog.String("task_id", task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", store.ErrTaskNotFound, h.logger)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// Replace handles PUT /api/tasks/{id}. Omitted fields are reset.
func (h *TaskHandler) Replace(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.tasks.Replace)
}

// Patch handles PATCH /api/tasks/{id}. Omitted fields are kept.
func (h *TaskHandler) Patch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.tasks.Patch)
}

// updateFunc is the shared shape of TaskService.Replace and TaskService.Patch.
type updateFunc func(
	ctx context.Context, userID, taskID uuid.UUID, input domain.TaskPatch, body json.RawMessage,
) (*domain.Task, error)

func (h *TaskHandler) update(w http.ResponseWriter, r *http.Request, apply updateFunc) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", store.ErrTaskNotFound, h.logger)
	if !ok {
		return
	}

	body, ok := readTaskBody(w, r)
	if !ok {
		return
	}
	input, err := decodeTaskPatch(body)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := apply(r.Context(), userID, taskID, input, json.RawMessage(body))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", store.ErrTaskNotFound, h.logger)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddCategory handles POST /api/tasks/{id}/add-category.
func (h *TaskHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", store.ErrTaskNotFound, h.logger)
	if !ok {
		return
	}

	var req AddCategoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, invalidBody(err), "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	ref := service.CategoryRef{Name: req.CategoryName}
	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			HandleAPIError(w, r, domain.NewValidationError("category_id", "Must be a valid UUID.", domain.ErrInvalidID), "")
			return
		}
		ref.ID = &id
	}

	task, category, err := h.tasks.AssignCategory(r.Context(), userID, taskID, ref)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to assign category")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AddCategoryResponse{
		TaskID:       task.ID,
		CategoryID:   category.ID,
		CategoryName: category.Name,
	})
}

// AddTag handles POST /api/tasks/{id}/add-tag. The given tags replace the
// task's whole tag set.
func (h *TaskHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", store.ErrTaskNotFound, h.logger)
	if !ok {
		return
	}

	var req AddTagRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, invalidBody(err), "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	refs := service.TagRefs{Names: req.TagNames}
	for _, raw := range req.Tags {
		id, err := uuid.Parse(raw)
		if err != nil {
			HandleAPIError(w, r, domain.NewValidationError("tags", "Must be a valid UUID.", domain.ErrInvalidID), "")
			return
		}
		refs.IDs = append(refs.IDs, id)
	}

	task, tags, err := h.tasks.AssignTags(r.Context(), userID, taskID, refs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to assign tags")
		return
	}

	ids := make([]uuid.UUID, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, AddTagResponse{TaskID: task.ID, Tags: ids})
}

// Logs handles GET /api/tasks/{id}/logs.
func (h *TaskHandler) Logs(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", store.ErrTaskNotFound, h.logger)
	if !ok {
		return
	}

	entries, err := h.tasks.Logs(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load task logs")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, activitiesToResponse(entries))
}

// SetReminder handles POST /api/tasks/{id}/set-reminder. A null or
// missing remind_at clears the reminder.
func (h *TaskHandler) SetReminder(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", store.ErrTaskNotFound, h.logger)
	if !ok {
		return
	}

	body, ok := readTaskBody(w, r)
	if !ok {
		return
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		HandleAPIError(w, r, invalidBody(err), "")
		return
	}

	var at *time.Time
	if v, present := raw[string(domain.FieldRemindAt)]; present {
		parsed, err := decodeTime(v)
		if err != nil {
			HandleAPIError(w, r,
				domain.NewValidationError("remind_at", msgDatetimeForm, domain.ErrInvalidFormat), "")
			return
		}
		at = parsed
	}

	task, err := h.tasks.SetReminder(r.Context(), userID, taskID, at)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to set reminder")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReminderResponse{TaskID: task.ID, RemindAt: task.RemindAt})
}

// Reminders handles GET /api/tasks/reminders.
func (h *TaskHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r, h.logger)
	if !ok {
		return
	}

	tasks, err := h.tasks.UpcomingReminders(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list reminders")
		return
	}

	out := make([]ReminderResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ReminderResponse{TaskID: t.ID, Title: t.Title, RemindAt: t.RemindAt})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// readTaskBody reads a task body. An empty body reads as an empty object.
func readTaskBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := shared.ReadBody(r)
	if err != nil {
		HandleAPIError(w, r, invalidBody(err), "")
		return nil, false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	return body, true
}
