package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-task-countcache/task"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// TaskStore is the source of truth for tasks. Writes go through the generic
// bun repository; list pages are read with a plain select so fetching a page
// never issues a COUNT.
type TaskStore struct {
	db    *bun.DB
	repo  repository.Repository[*task.Task]
	clock clockwork.Clock
}

// Option customizes a TaskStore.
type Option func(*TaskStore)

// WithClock sets the clock used for CreatedAt and UpdatedAt.
func WithClock(clock clockwork.Clock) Option {
	return func(s *TaskStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewTaskStore returns a store backed by db.
func NewTaskStore(db *bun.DB, opts ...Option) *TaskStore {
	s := &TaskStore{
		db:    db,
		repo:  repository.NewRepository[*task.Task](db, Handlers()),
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handlers describes the task model to the generic repository.
func Handlers() repository.ModelHandlers[*task.Task] {
	return repository.ModelHandlers[*task.Task]{
		NewRecord: func() *task.Task {
			return &task.Task{}
		},
		GetID: func(t *task.Task) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *task.Task, id uuid.UUID) {
			t.ID = id
		},
		GetIdentifier: func() string {
			return "title"
		},
	}
}

// Create inserts t, assigning an ID and timestamps when missing.
func (s *TaskStore) Create(ctx context.Context, t *task.Task) (*task.Task, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := s.clock.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

// GetByID loads a single task. It returns task.ErrNotFound when no row has id.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	t := new(task.Task)
	err := s.db.NewSelect().
		Model(t).
		Where("?TableAlias.id = ?", id.String()).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, task.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// Update overwrites every mutable column of t and returns the written task
// together with the row it replaced. The read and the write share one
// transaction, so previous is exactly what this update overwrote.
func (s *TaskStore) Update(ctx context.Context, t *task.Task) (updated, previous *task.Task, err error) {
	if err := t.Validate(); err != nil {
		return nil, nil, err
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		prev := new(task.Task)
		q := tx.NewSelect().
			Model(prev).
			Where("?TableAlias.id = ?", t.ID.String())
		if s.db.Dialect().Name() == dialect.PG {
			q = q.For("UPDATE")
		}
		if err := q.Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return task.ErrNotFound
			}
			return err
		}

		t.CreatedAt = prev.CreatedAt
		t.UpdatedAt = s.clock.Now().UTC()
		if _, err := tx.NewUpdate().
			Model(t).
			ExcludeColumn("id", "created_at").
			WherePK().
			Exec(ctx); err != nil {
			return err
		}
		previous = prev
		return nil
	})
	if errors.Is(err, task.ErrNotFound) {
		return nil, nil, err
	}
	if err != nil {
		return nil, nil, fmt.Errorf("update task %s: %w", t.ID, err)
	}
	return t, previous, nil
}

// Delete removes the task with id.
func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().
		Model(&task.Task{ID: id}).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return task.ErrNotFound
	}
	return nil
}

// Count returns how many tasks match the filter. Sorting and pagination are
// ignored.
func (s *TaskStore) Count(ctx context.Context, f task.Filter) (int, error) {
	n, err := s.repo.Count(ctx, FilterCriteria(f.Normalized()))
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

// List returns one page of tasks matching the filter, ordered by the
// requested column with the id as tie-break.
func (s *TaskStore) List(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	f = f.Normalized()

	column, ok := task.SortFields[f.SortBy]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported sort field %q", task.ErrInvalidFilter, f.SortBy)
	}
	direction := "ASC"
	if f.SortDirection == task.SortDesc {
		direction = "DESC"
	}

	items := []*task.Task{}
	q := s.db.NewSelect().Model(&items)
	q = FilterCriteria(f)(q)
	err := q.
		OrderExpr("?TableAlias.? "+direction, bun.Ident(column)).
		OrderExpr("?TableAlias.id ASC").
		Limit(f.PageSize).
		Offset(f.Offset()).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return items, nil
}

// FilterCriteria turns the matching part of a filter into a select criteria.
func FilterCriteria(f task.Filter) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if f.Status != nil {
			q = q.Where("?TableAlias.status = ?", string(*f.Status))
		}
		if f.TitleSearch != "" {
			pattern := "%" + likeEscaper.Replace(f.TitleSearch) + "%"
			q = q.Where(`LOWER(?TableAlias.title) LIKE LOWER(?) ESCAPE '\'`, pattern)
		}
		if f.MinPriority != nil {
			q = q.Where("?TableAlias.priority >= ?", *f.MinPriority)
		}
		if f.MaxPriority != nil {
			q = q.Where("?TableAlias.priority <= ?", *f.MaxPriority)
		}
		return q
	}
}
