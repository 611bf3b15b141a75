package task

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a task does not exist in the store.
var ErrNotFound = errors.New("task not found")

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "Todo"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
)

// Statuses lists every known status in workflow order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// ParseStatus resolves a status name case-insensitively.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

const (
	MinPriority = 1
	MaxPriority = 5
)

// Task is the persisted task record.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID          uuid.UUID  `bun:"id,pk,type:varchar(36)" json:"id"`
	Title       string     `bun:"title,notnull" json:"title"`
	Description string     `bun:"description" json:"description,omitempty"`
	Status      Status     `bun:"status,notnull" json:"status"`
	Priority    int        `bun:"priority,notnull" json:"priority"`
	DueDate     *time.Time `bun:"due_date" json:"due_date,omitempty"`
	SortOrder   int        `bun:"sort_order,notnull,default:0" json:"sort_order"`
	CompletedAt *time.Time `bun:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull" json:"updated_at"`
}

// Validate checks the fields a store requires before a write.
func (t *Task) Validate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&t.Description, validation.Length(0, 4000)),
		validation.Field(&t.Status, validation.Required, validation.In(statusValues()...)),
		validation.Field(&t.Priority, validation.Required, validation.Min(MinPriority), validation.Max(MaxPriority)),
	)
}

// Clone returns a copy that shares no pointers with t.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.CompletedAt != nil {
		d := *t.CompletedAt
		c.CompletedAt = &d
	}
	return &c
}

func statusValues() []any {
	out := make([]any, len(Statuses))
	for i, s := range Statuses {
		out[i] = s
	}
	return out
}
