package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func newTestTask(t *testing.T) *Task {
	t.Helper()
	task, err := NewTask(uuid.New(), TaskPatch{
		Title:       Some("Write report"),
		Description: Some(strPtr("x")),
		Status:      Some(StatusIncomplete),
		Priority:    Some(PriorityHigh),
		DueDate:     Some(timePtr(time.Date(2030, 1, 2, 15, 0, 0, 0, time.UTC))),
	})
	require.NoError(t, err)
	return task
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    TaskStatus
		wantErr bool
	}{
		{input: "Incomplete", want: StatusIncomplete},
		{input: "completed", want: StatusCompleted},
		{input: " COMPLETED ", want: StatusCompleted},
		{input: "done", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePriority(t *testing.T) {
	t.Parallel()

	p, err := ParsePriority("high")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	p, err = ParsePriority("Low")
	require.NoError(t, err)
	assert.Equal(t, PriorityLow, p)

	_, err = ParsePriority("urgent")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	assert.Less(t, PriorityLow.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityHigh.Rank())
	assert.Equal(t, 0, TaskPriority("urgent").Rank())
}

func TestNewTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	task, err := NewTask(userID, TaskPatch{
		Title:    Some("  Buy milk "),
		Status:   Some(StatusIncomplete),
		Priority: Some(PriorityLow),
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, userID, task.UserID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Nil(t, task.Description)
	assert.Equal(t, PriorityLow, task.Priority)
	assert.False(t, task.ReminderSent)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestNewTaskRequiresTitleStatusPriority(t *testing.T) {
	t.Parallel()

	_, err := NewTask(uuid.New(), TaskPatch{Description: Some(strPtr("only a description"))})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	fields := FieldErrors(err)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "status")
	assert.Contains(t, fields, "priority")
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*Task)
		wantField string
	}{
		{name: "blank title", mutate: func(tk *Task) { tk.Title = "  " }, wantField: "title"},
		{name: "long title", mutate: func(tk *Task) { tk.Title = strings.Repeat("t", MaxTitleLength+1) }, wantField: "title"},
		{name: "bad status", mutate: func(tk *Task) { tk.Status = "Done" }, wantField: "status"},
		{name: "bad priority", mutate: func(tk *Task) { tk.Priority = "Urgent" }, wantField: "priority"},
		{name: "no owner", mutate: func(tk *Task) { tk.UserID = uuid.Nil }, wantField: "user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			task := newTestTask(t)
			tt.mutate(task)
			assert.Contains(t, FieldErrors(task.Validate()), tt.wantField)
		})
	}

	multibyte := newTestTask(t)
	multibyte.Title = strings.Repeat("é", MaxTitleLength)
	assert.NoError(t, multibyte.Validate())
}

func TestReplacementResetsOmittedFields(t *testing.T) {
	t.Parallel()

	task := newTestTask(t)
	body := TaskPatch{
		Title:    Some("t"),
		Status:   Some(StatusCompleted),
		Priority: Some(PriorityLow),
	}

	require.NoError(t, task.Apply(body.WithResets()))

	assert.Equal(t, "t", task.Title)
	assert.Equal(t, StatusCompleted, task.Status)
	assert.Equal(t, PriorityLow, task.Priority)
	assert.Nil(t, task.Description)
	assert.Nil(t, task.DueDate)
	assert.Nil(t, task.RemindAt)
}

func TestPartialUpdateKeepsOmittedFields(t *testing.T) {
	t.Parallel()

	task := newTestTask(t)
	due := task.DueDate
	body := TaskPatch{
		Title:    Some("t"),
		Status:   Some(StatusCompleted),
		Priority: Some(PriorityLow),
	}

	require.NoError(t, task.Apply(body))

	assert.Equal(t, "t", task.Title)
	require.NotNil(t, task.Description)
	assert.Equal(t, "x", *task.Description)
	assert.Equal(t, due, task.DueDate)
}

func TestWithResetsUsesPolicyTable(t *testing.T) {
	t.Parallel()

	p := TaskPatch{}.WithResets()

	assert.Equal(t, Some(""), p.Title)
	assert.Equal(t, Some[*string](nil), p.Description)
	assert.Equal(t, Some(DefaultStatus), p.Status)
	assert.Equal(t, Some(DefaultPriority), p.Priority)
	assert.Equal(t, Some[*time.Time](nil), p.DueDate)
	assert.Equal(t, Some[*time.Time](nil), p.RemindAt)

	policies := map[TaskField]ResetPolicy{}
	for _, r := range TaskResetPolicies {
		policies[r.Field] = r.Policy
	}
	assert.Equal(t, ResetToEmpty, policies[FieldTitle])
	assert.Equal(t, ResetToNull, policies[FieldDescription])
	assert.Equal(t, ResetToDefault, policies[FieldStatus])
	assert.Equal(t, ResetToDefault, policies[FieldPriority])
	assert.Equal(t, "null", policies[FieldDueDate].String())
}

func TestResetsFollowPolicyNotField(t *testing.T) {
	t.Parallel()

	p := TaskPatch{Priority: Some(PriorityHigh)}.withPolicies([]FieldReset{
		{Field: FieldDescription, Policy: ResetToEmpty},
		{Field: FieldStatus, Policy: ResetToNull},
		{Field: FieldPriority, Policy: ResetToDefault},
		{Field: FieldDueDate, Policy: ResetToDefault},
	})

	require.True(t, p.Description.Set)
	require.NotNil(t, p.Description.Value)
	assert.Equal(t, "", *p.Description.Value)
	assert.Equal(t, Some(TaskStatus("")), p.Status)
	assert.Equal(t, Some(PriorityHigh), p.Priority)
	assert.Equal(t, Some[*time.Time](nil), p.DueDate)
	assert.False(t, p.Title.Set)
	assert.False(t, p.RemindAt.Set)

	p = TaskPatch{}.withPolicies([]FieldReset{{Field: FieldTitle, Policy: ResetToDefault}})
	assert.Equal(t, Some(""), p.Title)
	assert.False(t, p.Status.Set)
}

func TestApplyIsAtomicOnValidationFailure(t *testing.T) {
	t.Parallel()

	task := newTestTask(t)
	before := *task

	err := task.Apply(TaskPatch{Title: Some(""), Priority: Some(PriorityLow)})

	require.Error(t, err)
	assert.Equal(t, before, *task)
}

func TestApplyRearmsReminder(t *testing.T) {
	t.Parallel()

	at := time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)
	task := newTestTask(t)
	require.NoError(t, task.Apply(TaskPatch{RemindAt: Some(timePtr(at))}))
	task.ReminderSent = true

	// Same instant in another zone leaves the flag alone
	ist := time.FixedZone("IST", 5*3600+1800)
	require.NoError(t, task.Apply(TaskPatch{RemindAt: Some(timePtr(at.In(ist)))}))
	assert.True(t, task.ReminderSent)
	assert.Equal(t, time.UTC, task.RemindAt.Location())

	require.NoError(t, task.Apply(TaskPatch{RemindAt: Some(timePtr(at.Add(time.Hour)))}))
	assert.False(t, task.ReminderSent)

	task.ReminderSent = true
	require.NoError(t, task.Apply(TaskPatch{Title: Some("renamed")}))
	assert.True(t, task.ReminderSent)
}

func TestTaskPatchFields(t *testing.T) {
	t.Parallel()

	p := TaskPatch{Priority: Some(PriorityHigh), Title: Some("x")}
	assert.Equal(t, []TaskField{FieldTitle, FieldPriority}, p.Fields())
	assert.Empty(t, TaskPatch{}.Fields())
}
