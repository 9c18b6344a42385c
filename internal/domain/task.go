package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTitleLength is the longest task title accepted, in characters.
const MaxTitleLength = 200

// TaskStatus is the completion state of a task.
type TaskStatus string

const (
	StatusIncomplete TaskStatus = "Incomplete"
	StatusCompleted  TaskStatus = "Completed"
)

// DefaultStatus is assigned when a status is reset.
const DefaultStatus = StatusIncomplete

// ParseStatus matches s case-insensitively against the known statuses
// and returns the canonical spelling.
func ParseStatus(s string) (TaskStatus, error) {
	for _, st := range []TaskStatus{StatusIncomplete, StatusCompleted} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a valid status", ErrInvalidFormat, s)
}

// Valid reports whether s is one of the canonical statuses.
func (s TaskStatus) Valid() bool {
	return s == StatusIncomplete || s == StatusCompleted
}

// TaskPriority is the urgency of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

// DefaultPriority is assigned when a priority is reset.
const DefaultPriority = PriorityMedium

// ParsePriority matches s case-insensitively against the known priorities
// and returns the canonical spelling.
func ParsePriority(s string) (TaskPriority, error) {
	for _, p := range []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh} {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a valid priority", ErrInvalidFormat, s)
}

// Valid reports whether p is one of the canonical priorities.
func (p TaskPriority) Valid() bool {
	return p.Rank() > 0
}

// Rank orders priorities from Low (1) to High (3). Unknown values rank 0.
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

// Task is a work item owned by exactly one user.
//
// CategoryName and TagNames are denormalized for display and are
// populated by the store on read. They are managed through dedicated
// operations and never change through Apply.
type Task struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Title        string
	Description  *string
	Status       TaskStatus
	Priority     TaskPriority
	DueDate      *time.Time
	RemindAt     *time.Time
	ReminderSent bool
	CategoryID   *uuid.UUID
	CategoryName *string
	TagNames     []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewTask creates a task for userID from the fields present in input.
// Title, status and priority must all be present.
func NewTask(userID uuid.UUID, input TaskPatch) (*Task, error) {
	var errs ValidationErrors
	if !input.Title.Set {
		errs = append(errs, NewValidationError(string(FieldTitle), "This field is required.", ErrValidation))
	}
	if !input.Status.Set {
		errs = append(errs, NewValidationError(string(FieldStatus), "This field is required.", ErrValidation))
	}
	if !input.Priority.Set {
		errs = append(errs, NewValidationError(string(FieldPriority), "This field is required.", ErrValidation))
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    DefaultStatus,
		Priority:  DefaultPriority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := task.Apply(input); err != nil {
		return nil, err
	}
	task.UpdatedAt = now
	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	var errs ValidationErrors

	if t.ID == uuid.Nil {
		errs = append(errs, NewValidationError("id", "cannot be empty", ErrInvalidID))
	}
	if t.UserID == uuid.Nil {
		errs = append(errs, NewValidationError("user", "cannot be empty", ErrInvalidID))
	}

	switch {
	case strings.TrimSpace(t.Title) == "":
		errs = append(errs, NewValidationError(string(FieldTitle), "This field may not be blank.", ErrValidation))
	case utf8.RuneCountInString(t.Title) > MaxTitleLength:
		errs = append(errs, NewValidationError(string(FieldTitle),
			fmt.Sprintf("Ensure this field has no more than %d characters.", MaxTitleLength), ErrValidation))
	}

	if !t.Status.Valid() {
		errs = append(errs, NewValidationError(string(FieldStatus),
			fmt.Sprintf("%q is not a valid choice.", t.Status), ErrInvalidFormat))
	}
	if !t.Priority.Valid() {
		errs = append(errs, NewValidationError(string(FieldPriority),
			fmt.Sprintf("%q is not a valid choice.", t.Priority), ErrInvalidFormat))
	}

	return errs.OrNil()
}

// Apply copies every set field of patch onto t and validates the result.
// Moving remind_at to a different instant re-arms the reminder.
func (t *Task) Apply(patch TaskPatch) error {
	next := *t

	if patch.Title.Set {
		next.Title = strings.TrimSpace(patch.Title.Value)
	}
	if patch.Description.Set {
		next.Description = patch.Description.Value
	}
	if patch.Status.Set {
		next.Status = patch.Status.Value
	}
	if patch.Priority.Set {
		next.Priority = patch.Priority.Value
	}
	if patch.DueDate.Set {
		next.DueDate = utcPtr(patch.DueDate.Value)
	}
	if patch.RemindAt.Set {
		next.RemindAt = utcPtr(patch.RemindAt.Value)
		if !sameInstant(t.RemindAt, next.RemindAt) {
			next.ReminderSent = false
		}
	}

	if err := next.Validate(); err != nil {
		return err
	}

	next.UpdatedAt = time.Now().UTC()
	*t = next
	return nil
}

// Optional distinguishes a field that was omitted from one that was
// explicitly provided. For pointer types a set nil Value means null.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// TaskField names a client-writable task attribute by its wire name.
type TaskField string

const (
	FieldTitle       TaskField = "title"
	FieldDescription TaskField = "description"
	FieldStatus      TaskField = "status"
	FieldPriority    TaskField = "priority"
	FieldDueDate     TaskField = "due_date"
	FieldRemindAt    TaskField = "remind_at"
)

// ResetPolicy says what an omitted field becomes on full replacement.
type ResetPolicy int

const (
	ResetToDefault ResetPolicy = iota + 1
	ResetToNull
	ResetToEmpty
)

func (p ResetPolicy) String() string {
	switch p {
	case ResetToDefault:
		return "default"
	case ResetToNull:
		return "null"
	case ResetToEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// FieldReset pairs a task field with its reset policy.
type FieldReset struct {
	Field  TaskField
	Policy ResetPolicy
}

// TaskResetPolicies lists every field a full replacement may reset.
// Identity, ownership, timestamps, reminder_sent, category and tags are
// absent and therefore never reset.
var TaskResetPolicies = []FieldReset{
	{Field: FieldTitle, Policy: ResetToEmpty},
	{Field: FieldDescription, Policy: ResetToNull},
	{Field: FieldStatus, Policy: ResetToDefault},
	{Field: FieldPriority, Policy: ResetToDefault},
	{Field: FieldDueDate, Policy: ResetToNull},
	{Field: FieldRemindAt, Policy: ResetToNull},
}

// TaskPatch carries client-supplied task fields. Unset fields are left
// alone by Apply.
type TaskPatch struct {
	Title       Optional[string]
	Description Optional[*string]
	Status      Optional[TaskStatus]
	Priority    Optional[TaskPriority]
	DueDate     Optional[*time.Time]
	RemindAt    Optional[*time.Time]
}

// WithResets returns a copy of p in which every omitted field is filled
// from TaskResetPolicies, turning a partial body into a full replacement.
func (p TaskPatch) WithResets() TaskPatch {
	return p.withPolicies(TaskResetPolicies)
}

// withPolicies fills the omitted fields named in policies. Fields missing
// from policies stay unset.
func (p TaskPatch) withPolicies(policies []FieldReset) TaskPatch {
	out := p
	for _, r := range policies {
		switch r.Field {
		case FieldTitle:
			resetField(&out.Title, r.Policy, "", "")
		case FieldDescription:
			resetField(&out.Description, r.Policy, nil, new(string))
		case FieldStatus:
			resetField(&out.Status, r.Policy, DefaultStatus, "")
		case FieldPriority:
			resetField(&out.Priority, r.Policy, DefaultPriority, "")
		case FieldDueDate:
			resetField(&out.DueDate, r.Policy, nil, nil)
		case FieldRemindAt:
			resetField(&out.RemindAt, r.Policy, nil, nil)
		}
	}
	return out
}

// resetField sets an omitted o according to policy: def for
// ResetToDefault, empty for ResetToEmpty, the zero value (null) otherwise.
func resetField[T any](o *Optional[T], policy ResetPolicy, def, empty T) {
	if o.Set {
		return
	}
	var v T
	switch policy {
	case ResetToDefault:
		v = def
	case ResetToEmpty:
		v = empty
	}
	*o = Some(v)
}

// Fields returns the names of the set fields, in table order.
func (p TaskPatch) Fields() []TaskField {
	set := map[TaskField]bool{
		FieldTitle:       p.Title.Set,
		FieldDescription: p.Description.Set,
		FieldStatus:      p.Status.Set,
		FieldPriority:    p.Priority.Set,
		FieldDueDate:     p.DueDate.Set,
		FieldRemindAt:    p.RemindAt.Set,
	}
	var fields []TaskField
	for _, r := range TaskResetPolicies {
		if set[r.Field] {
			fields = append(fields, r.Field)
		}
	}
	return fields
}

// DueReminder is a task whose reminder is ready to be delivered.
type DueReminder struct {
	TaskID   uuid.UUID
	Title    string
	RemindAt time.Time
	Email    string
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
