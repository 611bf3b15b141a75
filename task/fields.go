package task

import (
	"slices"
	"time"
)

// Field names a mutable task attribute.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldStatus      Field = "status"
	FieldPriority    Field = "priority"
	FieldDueDate     Field = "due_date"
	FieldSortOrder   Field = "sort_order"
	FieldCompletedAt Field = "completed_at"
)

// CountFields are the task fields that filters match on. A change to any of
// them can move a task in or out of a filtered result and therefore change a
// cached count. Filter fields tagged `count:"..."` must name one of these.
var CountFields = []Field{FieldStatus, FieldTitle, FieldPriority}

// IsCountField reports whether f participates in filter matching.
func IsCountField(f Field) bool {
	return slices.Contains(CountFields, f)
}

// AffectsCount reports whether any of the changed fields participates in
// filter matching.
func AffectsCount(changed []Field) bool {
	for _, f := range changed {
		if IsCountField(f) {
			return true
		}
	}
	return false
}

// Diff returns the fields whose values differ between before and after.
// Identity and audit timestamps are not compared.
func Diff(before, after *Task) []Field {
	if before == nil || after == nil {
		return nil
	}

	var changed []Field
	if before.Title != after.Title {
		changed = append(changed, FieldTitle)
	}
	if before.Description != after.Description {
		changed = append(changed, FieldDescription)
	}
	if before.Status != after.Status {
		changed = append(changed, FieldStatus)
	}
	if before.Priority != after.Priority {
		changed = append(changed, FieldPriority)
	}
	if !sameTime(before.DueDate, after.DueDate) {
		changed = append(changed, FieldDueDate)
	}
	if before.SortOrder != after.SortOrder {
		changed = append(changed, FieldSortOrder)
	}
	if !sameTime(before.CompletedAt, after.CompletedAt) {
		changed = append(changed, FieldCompletedAt)
	}
	return changed
}

func sameTime(a, b *time.Time) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	default:
		return a.Equal(*b)
	}
}
