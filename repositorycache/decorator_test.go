package repositorycache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-task-countcache/cache"
	"github.com/goliatone/go-task-countcache/task"
	"github.com/google/uuid"
)

// mockStore is an in-memory TaskStore that counts calls per method.
type mockStore struct {
	mu        sync.Mutex
	tasks     map[uuid.UUID]*task.Task
	calls     map[string]int
	countErr  error
	createErr error
	updateErr error

	// one-shot hooks used to interleave concurrent calls
	afterGet     func()
	beforeUpdate func()
}

func newMockStore(tasks ...*task.Task) *mockStore {
	m := &mockStore{tasks: map[uuid.UUID]*task.Task{}, calls: map[string]int{}}
	for _, t := range tasks {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		m.tasks[t.ID] = t.Clone()
	}
	return m
}

func (m *mockStore) record(method string) {
	m.calls[method]++
}

func (m *mockStore) callCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *mockStore) Create(ctx context.Context, t *task.Task) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Create")
	if m.createErr != nil {
		return nil, m.createErr
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	m.tasks[t.ID] = t.Clone()
	return t.Clone(), nil
}

func (m *mockStore) setAfterGet(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.afterGet = fn
}

func (m *mockStore) setBeforeUpdate(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beforeUpdate = fn
}

func (m *mockStore) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	m.mu.Lock()
	m.record("GetByID")
	stored, ok := m.tasks[id]
	var out *task.Task
	if ok {
		out = stored.Clone()
	}
	hook := m.afterGet
	m.afterGet = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return nil, task.ErrNotFound
	}
	return out, nil
}

func (m *mockStore) Update(ctx context.Context, t *task.Task) (*task.Task, *task.Task, error) {
	m.mu.Lock()
	hook := m.beforeUpdate
	m.beforeUpdate = nil
	m.mu.Unlock()
	if hook != nil {
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Update")
	if m.updateErr != nil {
		return nil, nil, m.updateErr
	}
	previous, ok := m.tasks[t.ID]
	if !ok {
		return nil, nil, task.ErrNotFound
	}
	m.tasks[t.ID] = t.Clone()
	return t.Clone(), previous, nil
}

func (m *mockStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Delete")
	if _, ok := m.tasks[id]; !ok {
		return task.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockStore) Count(ctx context.Context, f task.Filter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Count")
	if m.countErr != nil {
		return 0, m.countErr
	}
	n := 0
	for _, t := range m.tasks {
		if matches(t, f) {
			n++
		}
	}
	return n, nil
}

func (m *mockStore) List(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("List")
	var out []*task.Task
	for _, t := range m.tasks {
		if matches(t, f) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func matches(t *task.Task, f task.Filter) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.TitleSearch != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.TitleSearch)) {
		return false
	}
	if f.MinPriority != nil && t.Priority < *f.MinPriority {
		return false
	}
	if f.MaxPriority != nil && t.Priority > *f.MaxPriority {
		return false
	}
	return true
}

// recordingLogger keeps every message logged at each level.
type recordingLogger struct {
	mu     sync.Mutex
	levels map[string][]string
}

func (l *recordingLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.levels == nil {
		l.levels = map[string][]string{}
	}
	l.levels[level] = append(l.levels[level], msg)
}

func (l *recordingLogger) Debug(msg string, _ Fields) { l.log("debug", msg) }
func (l *recordingLogger) Info(msg string, _ Fields)  { l.log("info", msg) }
func (l *recordingLogger) Warn(msg string, _ Fields)  { l.log("warn", msg) }
func (l *recordingLogger) Error(msg string, _ Fields) { l.log("error", msg) }

func (l *recordingLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.levels[level]...)
}

func statusPtr(s task.Status) *task.Status { return &s }

func fixtureTasks() []*task.Task {
	return []*task.Task{
		{Title: "Write report", Status: task.StatusTodo, Priority: 3},
		{Title: "Fix login bug", Status: task.StatusTodo, Priority: 5},
		{Title: "Plan sprint", Status: task.StatusDone, Priority: 1},
	}
}

func newTestRepository(t *testing.T, base TaskStore, opts ...Option) (*CachedTaskRepository, cache.CountCache) {
	t.Helper()

	counts, err := cache.NewCountCache(cache.Config{TTL: 30 * time.Second})
	if err != nil {
		t.Fatalf("NewCountCache() error = %v", err)
	}
	t.Cleanup(func() { counts.Close() })

	items, err := cache.NewCacheService(cache.DefaultItemConfig())
	if err != nil {
		t.Fatalf("NewCacheService() error = %v", err)
	}

	return New(base, counts, items, opts...), counts
}

func TestNew(t *testing.T) {
	base := newMockStore()
	repo, counts := newTestRepository(t, base)

	if repo.base != base || repo.counts != counts {
		t.Error("expected base and count cache to be stored")
	}
	if repo.keys == nil || repo.fingerprints == nil {
		t.Error("expected default serializers")
	}
	if _, ok := repo.logger.(NopLogger); !ok {
		t.Errorf("expected NopLogger by default, got %T", repo.logger)
	}

	custom := &recordingLogger{}
	repo = New(base, counts, nil, WithLogger(custom), WithLogger(nil))
	if repo.logger != custom {
		t.Error("expected nil logger option to be ignored")
	}
}

func TestList_SharesTotalAcrossSortAndPage(t *testing.T) {
	base := newMockStore(fixtureTasks()...)
	repo, _ := newTestRepository(t, base)
	ctx := context.Background()

	filters := []task.Filter{
		{Status: statusPtr(task.StatusTodo)},
		{Status: statusPtr(task.StatusTodo), SortBy: task.SortByTitle, SortDirection: task.SortDesc},
		{Status: statusPtr(task.StatusTodo), Page: 2, PageSize: 1},
		{Status: statusPtr(task.StatusTodo), SortBy: task.SortByPriority, Page: 3, PageSize: 50},
	}
	for _, f := range filters {
		page, err := repo.List(ctx, f)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if page.Total != 2 {
			t.Errorf("expected total 2, got %d", page.Total)
		}
	}

	if got := base.callCount("Count"); got != 1 {
		t.Errorf("expected one count query for all sort/page variants, got %d", got)
	}
	if got := base.callCount("List"); got != len(filters) {
		t.Errorf("expected every page to be fetched, got %d fetches", got)
	}
}

func TestList_DifferentMatchingFieldsMiss(t *testing.T) {
	base := newMockStore(fixtureTasks()...)
	repo, _ := newTestRepository(t, base)
	ctx := context.Background()

	todo, err := repo.List(ctx, task.Filter{Status: statusPtr(task.StatusTodo)})
	if err != nil {
		t.Fatal(err)
	}
	done, err := repo.List(ctx, task.Filter{Status: statusPtr(task.StatusDone)})
	if err != nil {
		t.Fatal(err)
	}

	if todo.Total != 2 || done.Total != 1 {
		t.Errorf("unexpected totals todo=%d done=%d", todo.Total, done.Total)
	}
	if got := base.callCount("Count"); got != 2 {
		t.Errorf("expected a count query per status, got %d", got)
	}
}

func TestList_PageMetadata(t *testing.T) {
	base := newMockStore(fixtureTasks()...)
	repo, _ := newTestRepository(t, base)

	page, err := repo.List(context.Background(), task.Filter{PageSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || page.TotalPages != 2 || page.Page != 1 || page.PageSize != 2 {
		t.Errorf("unexpected page metadata %+v", page)
	}
}

func TestList_InvalidFilter(t *testing.T) {
	base := newMockStore(fixtureTasks()...)
	repo, _ := newTestRepository(t, base)

	_, err := repo.List(context.Background(), task.Filter{SortBy: "color"})
	if !errors.Is(err, task.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
	if base.callCount("Count")+base.callCount("List") != 0 {
		t.Error("expected no store access for an invalid filter")
	}
}

func TestCount_ErrorNotCached(t *testing.T) {
	base := newMockStore(fixtureTasks()...)
	logger := &recordingLogger{}
	repo, _ := newTestRepository(t, base, WithLogger(logger))
	ctx := context.Background()

	boom := errors.New("connection reset")
	base.countErr = boom
	if _, err := repo.Count(ctx, task.Filter{}); !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	if len(logger.messages("warn")) != 1 {
		t.Errorf("expected a warning for the failed count, got %v", logger.messages("warn"))
	}

	base.countErr = nil
	n, err := repo.Count(ctx, task.Filter{})
	if err != nil || n != 3 {
		t.Fatalf("Count() = %d, %v", n, err)
	}
	if got := base.callCount("Count"); got != 2 {
		t.Errorf("expected the failed count to be retried, got %d queries", got)
	}
}

func TestCount_CancelledContext(t *testing.T) {
	base := newMockStore(fixtureTasks()...)
	logger := &recordingLogger{}
	repo, _ := newTestRepository(t, base, WithLogger(logger))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := repo.Count(ctx, task.Filter{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(logger.messages("warn")) != 0 {
		t.Error("cancellation must not be logged as a failure")
	}
}

func TestWithFreshCount(t *testing.T) {
	base := newMockStore(fixtureTasks()...)
	repo, counts := newTestRepository(t, base)
	ctx := context.Background()

	if _, err := repo.Count(ctx, task.Filter{}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, err := repo.Count(WithFreshCount(ctx), task.Filter{}); err != nil {
			t.Fatal(err)
		}
	}
	if got := base.callCount("Count"); got != 3 {
		t.Errorf("expected fresh reads to bypass the cache, got %d queries", got)
	}
	if counts.Len() != 1 {
		t.Errorf("expected fresh reads not to add entries, Len() = %d", counts.Len())
	}

	if freshCountFromContext(ctx) {
		t.Error("plain context must not be marked fresh")
	}
}

func TestCreate_InvalidatesCounts(t *testing.T) {
	base := newMockStore(fixtureTasks()...)
	repo, counts := newTestRepository(t, base)
	ctx := context.Background()

	first, _ := repo.List(ctx, task.Filter{Status: statusPtr(task.StatusTodo)})
	gen := counts.Generation()

	if _, err := repo.Create(ctx, &task.Task{Title: "New", Status: task.StatusTodo, Priority: 2}); err != nil {
		t.Fatal(err)
	}
	if counts.Generation() != gen+1 {
		t.Error("expected create to invalidate counts")
	}

	second, _ := repo.List(ctx, task.Filter{Status: statusPtr(task.StatusTodo)})
	if second.Total != first.Total+1 {
		t.Errorf("expected total %d after create, got %d", first.Total+1, second.Total)
	}
}

func TestDelete_InvalidatesCounts(t *testing.T) {
	tasks := fixtureTasks()
	base := newMockStore(tasks...)
	repo, counts := newTestRepository(t, base)
	ctx := context.Background()

	first, _ := repo.List(ctx, task.Filter{})
	if err := repo.Delete(ctx, tasks[0].ID); err != nil {
		t.Fatal(err)
	}
	second, _ := repo.List(ctx, task.Filter{})

	if second.Total != first.Total-1 {
		t.Errorf("expected total %d after delete, got %d", first.Total-1, second.Total)
	}
	if counts.Generation() != 1 {
		t.Errorf("expected generation 1, got %d", counts.Generation())
	}
}

func TestFailedWritesKeepCounts(t *testing.T) {
	tasks := fixtureTasks()
	base := newMockStore(tasks...)
	logger := &recordingLogger{}
	repo, counts := newTestRepository(t, base, WithLogger(logger))
	ctx := context.Background()

	base.createErr = errors.New("disk full")
	if _, err := repo.Create(ctx, &task.Task{Title: "x", Status: task.StatusTodo, Priority: 1}); err == nil {
		t.Error("expected create error")
	}

	base.updateErr = errors.New("disk full")
	edit := tasks[0].Clone()
	edit.Status = task.StatusDone
	if _, err := repo.Update(ctx, edit); err == nil {
		t.Error("expected update error")
	}

	if err := repo.Delete(ctx, uuid.New()); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if counts.Generation() != 0 {
		t.Errorf("failed writes must not invalidate, generation = %d", counts.Generation())
	}
	if got := len(logger.messages("error")); got != 2 {
		t.Errorf("expected 2 logged write failures, got %d", got)
	}
}

func TestUpdate_InvalidationPerField(t *testing.T) {
	later := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		field      task.Field
		mutate     func(*task.Task)
		invalidate bool
	}{
		{task.FieldStatus, func(t *task.Task) { t.Status = task.StatusInProgress }, true},
		{task.FieldTitle, func(t *task.Task) { t.Title = "Rewrite report" }, true},
		{task.FieldPriority, func(t *task.Task) { t.Priority = 4 }, true},
		{task.FieldDescription, func(t *task.Task) { t.Description = "details" }, false},
		{task.FieldDueDate, func(t *task.Task) { t.DueDate = &later }, false},
		{task.FieldSortOrder, func(t *task.Task) { t.SortOrder = 42 }, false},
		{task.FieldCompletedAt, func(t *task.Task) { t.CompletedAt = &later }, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			tasks := fixtureTasks()
			base := newMockStore(tasks...)
			repo, counts := newTestRepository(t, base)
			ctx := context.Background()

			if _, err := repo.Count(ctx, task.Filter{Status: statusPtr(task.StatusTodo)}); err != nil {
				t.Fatal(err)
			}

			edit := tasks[0].Clone()
			tt.mutate(edit)
			if _, err := repo.Update(ctx, edit); err != nil {
				t.Fatalf("Update() error = %v", err)
			}

			invalidated := counts.Generation() == 1
			if invalidated != tt.invalidate {
				t.Errorf("invalidated = %v, want %v", invalidated, tt.invalidate)
			}

			if _, err := repo.Count(ctx, task.Filter{Status: statusPtr(task.StatusTodo)}); err != nil {
				t.Fatal(err)
			}
			wantQueries := 1
			if tt.invalidate {
				wantQueries = 2
			}
			if got := base.callCount("Count"); got != wantQueries {
				t.Errorf("expected %d count queries, got %d", wantQueries, got)
			}
		})
	}
}

func TestUpdate_StatusChangeIsVisibleInTotals(t *testing.T) {
	tasks := fixtureTasks()
	base := newMockStore(tasks...)
	repo, _ := newTestRepository(t, base)
	ctx := context.Background()
	todo := task.Filter{Status: statusPtr(task.StatusTodo)}

	before, _ := repo.Count(ctx, todo)

	edit := tasks[0].Clone()
	edit.Status = task.StatusDone
	if _, err := repo.Update(ctx, edit); err != nil {
		t.Fatal(err)
	}

	after, _ := repo.Count(ctx, todo)
	if after != before-1 {
		t.Errorf("expected Todo total %d after completing a task, got %d", before-1, after)
	}
}

func TestUpdate_SameValueDoesNotInvalidate(t *testing.T) {
	tasks := fixtureTasks()
	base := newMockStore(tasks...)
	repo, counts := newTestRepository(t, base)

	edit := tasks[0].Clone()
	edit.Status = tasks[0].Status
	edit.Title = tasks[0].Title
	if _, err := repo.Update(context.Background(), edit); err != nil {
		t.Fatal(err)
	}
	if counts.Generation() != 0 {
		t.Error("rewriting identical values must not invalidate")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	base := newMockStore()
	repo, counts := newTestRepository(t, base)

	_, err := repo.Update(context.Background(), &task.Task{ID: uuid.New(), Title: "x", Status: task.StatusTodo, Priority: 1})
	if !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if counts.Generation() != 0 {
		t.Error("expected no invalidation for a missing task")
	}
}

func TestUpdate_StaleEditRevertingStatusInvalidates(t *testing.T) {
	tasks := fixtureTasks()
	base := newMockStore(tasks...)
	repo, _ := newTestRepository(t, base)
	ctx := context.Background()
	todo := task.Filter{Status: statusPtr(task.StatusTodo)}

	initial, err := repo.Count(ctx, todo)
	if err != nil {
		t.Fatal(err)
	}

	// this writer loaded the task while it was still Todo
	stale := tasks[0].Clone()
	stale.Description = "meeting notes"

	// another writer completes the task and a reader caches the new total
	// before the stale write reaches the store
	base.setBeforeUpdate(func() {
		done := tasks[0].Clone()
		done.Status = task.StatusDone
		if _, err := repo.Update(ctx, done); err != nil {
			t.Error(err)
		}
		if n, err := repo.Count(ctx, todo); err != nil || n != initial-1 {
			t.Errorf("expected %d Todo tasks after completion, got %d (%v)", initial-1, n, err)
		}
	})

	if _, err := repo.Update(ctx, stale); err != nil {
		t.Fatal(err)
	}

	truth, _ := base.Count(ctx, todo)
	got, err := repo.Count(ctx, todo)
	if err != nil {
		t.Fatal(err)
	}
	if got != truth || got != initial {
		t.Errorf("expected Todo total %d after the status was written back, got %d (store has %d)", initial, got, truth)
	}
}

func TestGetByID_WriteDuringFetchIsNotServed(t *testing.T) {
	tests := []struct {
		name  string
		write func(ctx context.Context, repo *CachedTaskRepository, tk *task.Task) error
		check func(t *testing.T, got *task.Task, err error)
	}{
		{
			name: "delete",
			write: func(ctx context.Context, repo *CachedTaskRepository, tk *task.Task) error {
				return repo.Delete(ctx, tk.ID)
			},
			check: func(t *testing.T, got *task.Task, err error) {
				if !errors.Is(err, task.ErrNotFound) {
					t.Errorf("deleted task still served: task=%v err=%v", got, err)
				}
			},
		},
		{
			name: "update",
			write: func(ctx context.Context, repo *CachedTaskRepository, tk *task.Task) error {
				edit := tk.Clone()
				edit.Description = "rewritten"
				_, err := repo.Update(ctx, edit)
				return err
			},
			check: func(t *testing.T, got *task.Task, err error) {
				if err != nil {
					t.Fatal(err)
				}
				if got.Description != "rewritten" {
					t.Errorf("old version still served: description %q", got.Description)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := fixtureTasks()
			base := newMockStore(tasks...)
			repo, _ := newTestRepository(t, base)
			ctx := context.Background()
			id := tasks[0].ID

			read := make(chan struct{})
			release := make(chan struct{})
			base.setAfterGet(func() {
				close(read)
				<-release
			})

			fetched := make(chan error, 1)
			go func() {
				_, err := repo.GetByID(ctx, id)
				fetched <- err
			}()

			<-read
			if err := tt.write(ctx, repo, tasks[0]); err != nil {
				t.Fatal(err)
			}
			close(release)
			if err := <-fetched; err != nil {
				t.Fatalf("racing GetByID() error = %v", err)
			}

			got, err := repo.GetByID(ctx, id)
			tt.check(t, got, err)
		})
	}
}

func TestGetByID_ItemCache(t *testing.T) {
	tasks := fixtureTasks()
	base := newMockStore(tasks...)
	repo, _ := newTestRepository(t, base)
	ctx := context.Background()
	id := tasks[0].ID

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	got.Title = "mutated by caller"

	again, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if again.Title != tasks[0].Title {
		t.Errorf("caller mutation leaked into the cache: %q", again.Title)
	}
	if got := base.callCount("GetByID"); got != 1 {
		t.Errorf("expected one store read, got %d", got)
	}

	edit := again.Clone()
	edit.Description = "now with details"
	if _, err := repo.Update(ctx, edit); err != nil {
		t.Fatal(err)
	}

	fresh, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Description != "now with details" {
		t.Errorf("expected the update to drop the cached record, got %q", fresh.Description)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	base := newMockStore()
	repo, _ := newTestRepository(t, base)
	id := uuid.New()

	for i := 0; i < 2; i++ {
		if _, err := repo.GetByID(context.Background(), id); !errors.Is(err, task.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
	if got := base.callCount("GetByID"); got != 2 {
		t.Errorf("expected misses not to be cached, got %d reads", got)
	}
}

func TestGetByID_WithoutItemCache(t *testing.T) {
	tasks := fixtureTasks()
	base := newMockStore(tasks...)
	counts, err := cache.NewCountCache(cache.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer counts.Close()

	repo := New(base, counts, nil)
	for i := 0; i < 2; i++ {
		if _, err := repo.GetByID(context.Background(), tasks[0].ID); err != nil {
			t.Fatal(err)
		}
	}
	if got := base.callCount("GetByID"); got != 2 {
		t.Errorf("expected reads to go to the store, got %d", got)
	}
}

func TestConcurrentListsAndWrites(t *testing.T) {
	tasks := fixtureTasks()
	base := newMockStore(tasks...)
	repo, _ := newTestRepository(t, base)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := repo.List(ctx, task.Filter{Status: statusPtr(task.StatusTodo)}); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	for j := 0; j < 20; j++ {
		if _, err := repo.Create(ctx, &task.Task{Title: "bulk", Status: task.StatusTodo, Priority: 1}); err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()

	// every write completed before this read, so the total is exact
	n, err := repo.Count(ctx, task.Filter{Status: statusPtr(task.StatusTodo)})
	if err != nil {
		t.Fatal(err)
	}
	if n != 22 {
		t.Errorf("expected 22 Todo tasks, got %d", n)
	}
}
