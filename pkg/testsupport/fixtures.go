package testsupport

import (
	"context"
	_ "embed"
	"encoding/json"
	"os"
	"testing"

	"github.com/goliatone/go-task-countcache/internal/store"
	"github.com/goliatone/go-task-countcache/task"
	"github.com/uptrace/bun"
)

//go:embed testdata/tasks.json
var defaultTasks []byte

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t testing.TB, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// DefaultTasks returns a fresh copy of the shared task fixture: twelve tasks,
// six Todo, three InProgress and three Done, three of them mentioning
// "report" in mixed case.
func DefaultTasks(t testing.TB) []*task.Task {
	t.Helper()

	var tasks []*task.Task
	if err := json.Unmarshal(defaultTasks, &tasks); err != nil {
		t.Fatalf("failed to unmarshal default task fixture: %v", err)
	}
	return tasks
}

// NewSQLiteDB opens a migrated in-memory SQLite database that is closed when
// the test ends.
func NewSQLiteDB(t testing.TB) *bun.DB {
	t.Helper()

	db, err := store.Open(store.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := store.Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return db
}

// TaskCreator is satisfied by the store and by the caching repository.
type TaskCreator interface {
	Create(ctx context.Context, t *task.Task) (*task.Task, error)
}

// SeedTasks creates every task through c and returns the stored records.
func SeedTasks(t testing.TB, c TaskCreator, tasks []*task.Task) []*task.Task {
	t.Helper()

	out := make([]*task.Task, 0, len(tasks))
	for _, tk := range tasks {
		created, err := c.Create(context.Background(), tk)
		if err != nil {
			t.Fatalf("failed to seed task %q: %v", tk.Title, err)
		}
		out = append(out, created)
	}
	return out
}
