package domain

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ActivityAction tags what happened to a task.
type ActivityAction string

const (
	ActionCreated       ActivityAction = "created"
	ActionUpdated       ActivityAction = "updated"
	ActionRetrieved     ActivityAction = "retrieved"
	ActionDeleted       ActivityAction = "deleted"
	ActionCategoryAdded ActivityAction = "category_added"
	ActionTagAdded      ActivityAction = "tag_added"
)

// ActivityLog is one append-only audit entry.
// TaskID becomes nil once the task it describes is deleted.
type ActivityLog struct {
	ID        uuid.UUID
	TaskID    *uuid.UUID
	UserID    uuid.UUID
	Action    ActivityAction
	Details   json.RawMessage
	Timestamp time.Time
}

// NewActivityLog records action by userID on taskID. Details are
// marshalled to JSON; nil details are stored as null.
func NewActivityLog(taskID, userID uuid.UUID, action ActivityAction, details any) (*ActivityLog, error) {
	var raw json.RawMessage
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return nil, NewValidationError("details", "must be JSON encodable", err)
		}
		raw = b
	}

	id := taskID
	return &ActivityLog{
		ID:        uuid.New(),
		TaskID:    &id,
		UserID:    userID,
		Action:    action,
		Details:   raw,
		Timestamp: time.Now().UTC(),
	}, nil
}
