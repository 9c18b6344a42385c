package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActivityLog(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	userID := uuid.New()

	entry, err := NewActivityLog(taskID, userID, ActionCategoryAdded, map[string]string{"category": "Work"})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	require.NotNil(t, entry.TaskID)
	assert.Equal(t, taskID, *entry.TaskID)
	assert.Equal(t, userID, entry.UserID)
	assert.Equal(t, ActionCategoryAdded, entry.Action)
	assert.JSONEq(t, `{"category":"Work"}`, string(entry.Details))
	assert.False(t, entry.Timestamp.IsZero())
}

func TestNewActivityLogNilDetails(t *testing.T) {
	t.Parallel()

	entry, err := NewActivityLog(uuid.New(), uuid.New(), ActionRetrieved, nil)

	require.NoError(t, err)
	assert.Nil(t, entry.Details)
}

func TestNewActivityLogUnencodableDetails(t *testing.T) {
	t.Parallel()

	_, err := NewActivityLog(uuid.New(), uuid.New(), ActionUpdated, map[string]any{"ch": make(chan int)})

	assert.Error(t, err)
}
