package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
)

// TaskFilter holds the composable list predicates. Zero values disable a
// predicate. All set predicates must hold (AND); Tags matches any (OR).
type TaskFilter struct {
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	Category   string     // exact category name
	CategoryID *uuid.UUID // exact category id
	Tags       []string   // task has at least one of these tag names
	TagID      *uuid.UUID // task has this tag
	DueFrom    *time.Time // due_date >= DueFrom
	DueTo      *time.Time // due_date < DueTo
	Search     string     // case-insensitive substring of title or description
	Ordering   TaskOrdering
}

// OrderField is a sortable task column.
type OrderField string

const (
	OrderByPriority  OrderField = "priority"
	OrderByDueDate   OrderField = "due_date"
	OrderByCreatedAt OrderField = "created_at"
)

// TaskOrdering is a validated sort key and direction.
type TaskOrdering struct {
	Field      OrderField
	Descending bool
}

// DefaultOrdering is newest first.
var DefaultOrdering = TaskOrdering{Field: OrderByCreatedAt, Descending: true}

// ParseOrdering reads an ordering parameter such as "-due_date".
// Keys outside the allow-list fall back to DefaultOrdering.
func ParseOrdering(s string) TaskOrdering {
	s = strings.TrimSpace(s)
	desc := strings.HasPrefix(s, "-")
	field := OrderField(strings.TrimPrefix(s, "-"))

	switch field {
	case OrderByPriority, OrderByDueDate, OrderByCreatedAt:
		return TaskOrdering{Field: field, Descending: desc}
	default:
		return DefaultOrdering
	}
}

// String renders the ordering in parameter form.
func (o TaskOrdering) String() string {
	if o.Field == "" {
		return DefaultOrdering.String()
	}
	if o.Descending {
		return "-" + string(o.Field)
	}
	return string(o.Field)
}
