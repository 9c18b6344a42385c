package api

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name"  validate:"max=150"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	User domain.Profile `json:"user"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"access_token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// TaskResponse is the client view of a task. Ownership, the category ID
// and timestamps are not exposed.
type TaskResponse struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	RemindAt     *time.Time `json:"remind_at"`
	ReminderSent bool       `json:"reminder_sent"`
	CategoryName *string    `json:"category_name"`
	TagNames     []string   `json:"tag_names"`
}

func taskToResponse(t *domain.Task) TaskResponse {
	tags := t.TagNames
	if tags == nil {
		tags = []string{}
	}
	return TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       string(t.Status),
		Priority:     string(t.Priority),
		DueDate:      t.DueDate,
		RemindAt:     t.RemindAt,
		ReminderSent: t.ReminderSent,
		CategoryName: t.CategoryName,
		TagNames:     tags,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return out
}

// LabelResponse is the client view of a category or a tag.
type LabelResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ActivityLogResponse is the client view of an activity entry.
type ActivityLogResponse struct {
	ID        uuid.UUID       `json:"id"`
	Task      *uuid.UUID      `json:"task"`
	User      uuid.UUID       `json:"user"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details"`
	Timestamp time.Time       `json:"timestamp"`
}

func activityToResponse(a *domain.ActivityLog) ActivityLogResponse {
	details := a.Details
	if len(details) == 0 {
		details = json.RawMessage("null")
	}
	return ActivityLogResponse{
		ID:        a.ID,
		Task:      a.TaskID,
		User:      a.UserID,
		Action:    string(a.Action),
		Details:   details,
		Timestamp: a.Timestamp,
	}
}

func activitiesToResponse(entries []*domain.ActivityLog) []ActivityLogResponse {
	out := make([]ActivityLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, activityToResponse(e))
	}
	return out
}

// LabelRequest is the body for creating a category or a tag.
type LabelRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// AddCategoryRequest names a category by ID or, failing that, by name.
type AddCategoryRequest struct {
	CategoryID   *string `json:"category_id"   validate:"omitempty,uuid"`
	CategoryName string  `json:"category_name" validate:"max=100"`
}

// AddCategoryResponse reports the category now assigned to a task.
type AddCategoryResponse struct {
	TaskID       uuid.UUID `json:"task_id"`
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name"`
}

// AddTagRequest names the full tag set by IDs or by names.
type AddTagRequest struct {
	Tags     []string `json:"tags"      validate:"omitempty,dive,uuid"`
	TagNames []string `json:"tag_names"`
}

// AddTagResponse lists the IDs of every tag now on the task.
type AddTagResponse struct {
	TaskID uuid.UUID   `json:"task_id"`
	Tags   []uuid.UUID `json:"tags"`
}

// ReminderResponse describes a task's reminder.
type ReminderResponse struct {
	TaskID   uuid.UUID  `json:"task_id"`
	Title    string     `json:"title,omitempty"`
	RemindAt *time.Time `json:"remind_at"`
}

// Error messages for task body fields.
const (
	msgNotNull      = "This field may not be null."
	msgNotString    = "Not a valid string."
	msgDatetimeForm = "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."
)

// decodeTaskPatch reads a task body, keeping track of which fields were
// present. Read-only and unknown keys are ignored.
func decodeTaskPatch(body []byte) (domain.TaskPatch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.TaskPatch{}, domain.NewValidationError("", "JSON parse error.", domain.ErrInvalidFormat)
	}

	var (
		patch domain.TaskPatch
		errs  domain.ValidationErrors
	)

	if v, ok := raw[string(domain.FieldTitle)]; ok {
		s, isNull, err := decodeString(v)
		switch {
		case err != nil:
			errs = append(errs, domain.NewValidationError("title", msgNotString, domain.ErrValidation))
		case isNull:
			errs = append(errs, domain.NewValidationError("title", msgNotNull, domain.ErrValidation))
		default:
			patch.Title = domain.Some(s)
		}
	}

	if v, ok := raw[string(domain.FieldDescription)]; ok {
		s, isNull, err := decodeString(v)
		switch {
		case err != nil:
			errs = append(errs, domain.NewValidationError("description", msgNotString, domain.ErrValidation))
		case isNull:
			patch.Description = domain.Some[*string](nil)
		default:
			patch.Description = domain.Some(&s)
		}
	}

	if v, ok := raw[string(domain.FieldStatus)]; ok {
		s, isNull, err := decodeString(v)
		if err == nil && !isNull {
			if status, perr := domain.ParseStatus(s); perr == nil {
				patch.Status = domain.Some(status)
			} else {
				errs = append(errs, notAChoice("status", s))
			}
		} else if isNull {
			errs = append(errs, domain.NewValidationError("status", msgNotNull, domain.ErrValidation))
		} else {
			errs = append(errs, notAChoice("status", string(v)))
		}
	}

	if v, ok := raw[string(domain.FieldPriority)]; ok {
		s, isNull, err := decodeString(v)
		if err == nil && !isNull {
			if priority, perr := domain.ParsePriority(s); perr == nil {
				patch.Priority = domain.Some(priority)
			} else {
				errs = append(errs, notAChoice("priority", s))
			}
		} else if isNull {
			errs = append(errs, domain.NewValidationError("priority", msgNotNull, domain.ErrValidation))
		} else {
			errs = append(errs, notAChoice("priority", string(v)))
		}
	}

	if v, ok := raw[string(domain.FieldDueDate)]; ok {
		if at, err := decodeTime(v); err != nil {
			errs = append(errs, domain.NewValidationError("due_date", msgDatetimeForm, domain.ErrInvalidFormat))
		} else {
			patch.DueDate = domain.Some(at)
		}
	}

	if v, ok := raw[string(domain.FieldRemindAt)]; ok {
		if at, err := decodeTime(v); err != nil {
			errs = append(errs, domain.NewValidationError("remind_at", msgDatetimeForm, domain.ErrInvalidFormat))
		} else {
			patch.RemindAt = domain.Some(at)
		}
	}

	if err := errs.OrNil(); err != nil {
		return domain.TaskPatch{}, err
	}
	return patch, nil
}

func isJSONNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func decodeString(v json.RawMessage) (string, bool, error) {
	if isJSONNull(v) {
		return "", true, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false, err
	}
	return s, false, nil
}

// decodeTime parses an RFC 3339 timestamp or null.
func decodeTime(v json.RawMessage) (*time.Time, error) {
	if isJSONNull(v) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, err
	}
	at, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, err
	}
	return &at, nil
}

func notAChoice(field, value string) *domain.ValidationError {
	return domain.NewValidationError(field, fmt.Sprintf("%q is not a valid choice.", value), domain.ErrInvalidFormat)
}
