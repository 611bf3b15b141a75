package task

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidFilter wraps validation failures of a list filter.
var ErrInvalidFilter = errors.New("invalid task filter")

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SortField is a column a task list can be ordered by.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByDueDate   SortField = "dueDate"
	SortByPriority  SortField = "priority"
	SortByTitle     SortField = "title"
	SortBySortOrder SortField = "sortOrder"
	SortByStatus    SortField = "status"
)

// SortFields maps each sortable field to its column.
var SortFields = map[SortField]string{
	SortByCreatedAt: "created_at",
	SortByUpdatedAt: "updated_at",
	SortByDueDate:   "due_date",
	SortByPriority:  "priority",
	SortByTitle:     "title",
	SortBySortOrder: "sort_order",
	SortByStatus:    "status",
}

// SortDirection orders results ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Filter describes a paginated task list request. Fields tagged `count`
// decide which rows match and therefore form the count fingerprint; sorting
// and pagination only arrange the matching rows and never change the total.
type Filter struct {
	Status      *Status `count:"status"`
	TitleSearch string  `count:"title"`
	MinPriority *int    `count:"priority"`
	MaxPriority *int    `count:"priority"`

	SortBy        SortField
	SortDirection SortDirection
	Page          int
	PageSize      int
}

// Normalized returns a copy with defaults applied and search text trimmed.
func (f Filter) Normalized() Filter {
	f.TitleSearch = strings.TrimSpace(f.TitleSearch)
	if f.SortBy == "" {
		f.SortBy = SortByCreatedAt
	}
	f.SortDirection = SortDirection(strings.ToLower(string(f.SortDirection)))
	if f.SortDirection == "" {
		f.SortDirection = SortAsc
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	return f
}

// Offset is the number of matching rows skipped before the requested page.
func (f Filter) Offset() int {
	f = f.Normalized()
	return (f.Page - 1) * f.PageSize
}

// Validate checks a normalized filter.
func (f Filter) Validate() error {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Status, validation.NilOrNotEmpty, validation.In(statusValues()...)),
		validation.Field(&f.TitleSearch, validation.Length(0, 200)),
		validation.Field(&f.MinPriority, validation.Min(MinPriority), validation.Max(MaxPriority)),
		validation.Field(&f.MaxPriority, validation.Min(MinPriority), validation.Max(MaxPriority)),
		validation.Field(&f.SortBy, validation.By(validSortField)),
		validation.Field(&f.SortDirection, validation.In(SortAsc, SortDesc)),
		validation.Field(&f.Page, validation.Min(1)),
		validation.Field(&f.PageSize, validation.Min(1), validation.Max(MaxPageSize)),
	)
	if err == nil && f.MinPriority != nil && f.MaxPriority != nil && *f.MinPriority > *f.MaxPriority {
		err = validation.Errors{"MinPriority": errors.New("must not exceed MaxPriority")}
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	return nil
}

func validSortField(value any) error {
	s, _ := value.(SortField)
	if s == "" {
		return nil
	}
	if _, ok := SortFields[s]; !ok {
		return fmt.Errorf("unsupported sort field %q", s)
	}
	return nil
}

// Page is one page of a filtered task list.
type Page struct {
	Items      []*Task `json:"items"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}

// NewPage assembles page metadata for the given normalized filter.
func NewPage(items []*Task, total int, f Filter) Page {
	f = f.Normalized()
	pages := 0
	if total > 0 {
		pages = (total + f.PageSize - 1) / f.PageSize
	}
	if items == nil {
		items = []*Task{}
	}
	return Page{
		Items:      items,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: pages,
	}
}
