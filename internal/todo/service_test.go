package todo_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baiirun/minitodo/internal/db"
	"github.com/baiirun/minitodo/internal/ingest"
	"github.com/baiirun/minitodo/internal/jsonfile"
	"github.com/baiirun/minitodo/internal/model"
	"github.com/baiirun/minitodo/internal/todo"
)

// backends returns a constructor per storage engine so every test runs on both.
func backends() map[string]func(t *testing.T) todo.Store {
	return map[string]func(t *testing.T) todo.Store{
		"sqlite": func(t *testing.T) todo.Store {
			database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
			require.NoError(t, err)
			require.NoError(t, database.Init())
			t.Cleanup(func() { _ = database.Close() })
			return database
		},
		"jsonfile": func(t *testing.T) todo.Store {
			s, err := jsonfile.Open(filepath.Join(t.TempDir(), "todos.json"))
			require.NoError(t, err)
			return s
		},
	}
}

// fakeClock advances by one second per call.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func eachBackend(t *testing.T, fn func(t *testing.T, svc *todo.Service, clock *fakeClock)) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
			svc := todo.NewService(open(t), zerolog.Nop(), todo.WithClock(clock.Now))
			fn(t, svc, clock)
		})
	}
}

func create(t *testing.T, svc *todo.Service, title string) model.Item {
	t.Helper()
	item, err := svc.Create(context.Background(), todo.CreateRequest{Title: title, Description: title + " details"})
	require.NoError(t, err)
	return item
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCreate_TaskNumbersIncrease(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		for want := int64(1); want <= 4; want++ {
			item := create(t, svc, "task "+string(rune('a'+want)))
			require.NotNil(t, item.TaskNumber)
			assert.Equal(t, want, *item.TaskNumber)
		}
	})
}

func TestCreate_ExplicitTaskNumber(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		ctx := context.Background()
		item, err := svc.Create(ctx, todo.CreateRequest{Title: "t", Description: "d", TaskNumber: model.Ptr(int64(40))})
		require.NoError(t, err)
		assert.Equal(t, int64(40), *item.TaskNumber)

		next := create(t, svc, "after")
		assert.Equal(t, int64(41), *next.TaskNumber)
	})
}

func TestCreate_RoundTrip(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		created := create(t, svc, "round trip")

		got, ok, err := svc.Get(context.Background(), created.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, created, got)
		assert.Equal(t, model.StatusNew, got.Status)
		assert.Nil(t, got.CompletedAt)
		assert.Nil(t, got.FilePath)
	})
}

func TestCreate_Validation(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		ctx := context.Background()

		_, err := svc.Create(ctx, todo.CreateRequest{Title: "  ", Description: "d"})
		assert.ErrorIs(t, err, model.ErrInvalidArgument)

		_, err = svc.Create(ctx, todo.CreateRequest{Title: "t", Description: ""})
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	})
}

func TestCreate_DuplicateConflict(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		ctx := context.Background()
		first := create(t, svc, "same")

		_, err := svc.Create(ctx, todo.CreateRequest{Title: "same", Description: "same details"})
		require.ErrorIs(t, err, model.ErrConflict)
		assert.Contains(t, err.Error(), "ID: ")

		items, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, first.ID, items[0].ID)

		// Same title, different description is fine.
		_, err = svc.Create(ctx, todo.CreateRequest{Title: "same", Description: "other"})
		assert.NoError(t, err)
	})
}

func TestCreate_FromFile(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		ctx := context.Background()
		path := writeFile(t, t.TempDir(), "refactor-auth.md", "\n  rewrite the login flow  \n")

		item, err := svc.Create(ctx, todo.CreateRequest{Title: path, Description: "ignored", FilePath: path})
		require.NoError(t, err)

		assert.Equal(t, "refactor-auth", item.Title)
		require.NotNil(t, item.FilePath)
		assert.Equal(t, path, *item.FilePath)
		assert.Equal(t,
			"**Source File:** "+path+"\n\nrewrite the login flow\n\n"+todo.CompletionInstruction(item.ID),
			item.Description)
		assert.NotContains(t, item.Description, todo.CompletionPlaceholder)

		got, _, err := svc.Get(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item.Description, got.Description, "finalized description is stored")
	})
}

func TestCreate_FromFileKeepsExplicitTitle(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		path := writeFile(t, t.TempDir(), "x.txt", "body")

		item, err := svc.Create(context.Background(), todo.CreateRequest{Title: "Custom", Description: "d", FilePath: path})
		require.NoError(t, err)
		assert.Equal(t, "Custom", item.Title)
	})
}

func TestCreate_FromFileErrors(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		ctx := context.Background()
		dir := t.TempDir()

		_, err := svc.Create(ctx, todo.CreateRequest{Title: "t", Description: "d", FilePath: filepath.Join(dir, "missing.txt")})
		assert.ErrorIs(t, err, model.ErrNotFound)

		empty := writeFile(t, dir, "empty.txt", " \n\t ")
		_, err = svc.Create(ctx, todo.CreateRequest{Title: "t", Description: "d", FilePath: empty})
		assert.ErrorIs(t, err, model.ErrEmptyContent)

		_, err = svc.Create(ctx, todo.CreateRequest{Title: "t", Description: "d", FilePath: dir})
		assert.ErrorIs(t, err, model.ErrInvalidArgument)

		items, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, items, "failed creates leave nothing behind")
	})
}

func TestGet_Absent(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		_, ok, err := svc.Get(context.Background(), 12345)
		require.NoError(t, err)
		assert.False(t, ok)

		_, _, err = svc.Get(context.Background(), 0)
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	})
}

func TestUpdate(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		ctx := context.Background()
		item := create(t, svc, "original")

		updated, err := svc.Update(ctx, todo.UpdateRequest{ID: item.ID, Title: model.Ptr("renamed")})
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Title)
		assert.Equal(t, item.Description, updated.Description, "unspecified field kept")
		assert.True(t, updated.UpdatedAt.After(item.UpdatedAt))
		assert.Equal(t, item.CreatedAt, updated.CreatedAt)
		assert.Equal(t, *item.TaskNumber, *updated.TaskNumber)

		got, _, err := svc.Get(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})
}

func TestUpdate_Errors(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		ctx := context.Background()
		item := create(t, svc, "x")

		_, err := svc.Update(ctx, todo.UpdateRequest{ID: item.ID})
		assert.ErrorIs(t, err, model.ErrInvalidArgument)

		_, err = svc.Update(ctx, todo.UpdateRequest{ID: item.ID, Description: model.Ptr("")})
		assert.ErrorIs(t, err, model.ErrInvalidArgument)

		_, err = svc.Update(ctx, todo.UpdateRequest{ID: -1, Title: model.Ptr("t")})
		assert.ErrorIs(t, err, model.ErrInvalidArgument)

		_, err = svc.Update(ctx, todo.UpdateRequest{ID: item.ID + 100, Title: model.Ptr("t")})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestComplete_KeepsFirstCompletionTime(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		ctx := context.Background()
		item := create(t, svc, "finish me")

		first, err := svc.Complete(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusDone, first.Status)
		assert.True(t, first.Completed())
		require.NotNil(t, first.CompletedAt)
		assert.Equal(t, *first.CompletedAt, first.UpdatedAt)

		second, err := svc.Complete(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusDone, second.Status)
		assert.Equal(t, *first.CompletedAt, *second.CompletedAt, "first completion time is kept")
		assert.True(t, second.UpdatedAt.After(first.UpdatedAt), "updatedAt still moves")

		got, _, err := svc.Get(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, second, got)
	})
}

func TestComplete_Missing(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		_, err := svc.Complete(context.Background(), 77)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		ctx := context.Background()
		item := create(t, svc, "delete me")

		ok, err := svc.Delete(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = svc.Delete(ctx, item.ID)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestNext(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		ctx := context.Background()

		_, ok, err := svc.Next(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		a := create(t, svc, "a")
		b := create(t, svc, "b")

		next, ok, err := svc.Next(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, a.ID, next.ID)

		_, err = svc.Complete(ctx, a.ID)
		require.NoError(t, err)

		ref, ok, err := svc.NextID(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, b.ID, ref.ID)
		assert.Equal(t, int64(2), *ref.TaskNumber)

		_, err = svc.Complete(ctx, b.ID)
		require.NoError(t, err)
		_, ok, err = svc.NextID(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestClearAll_Scenario(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			create(t, svc, strings.Repeat("x", i+1))
		}

		n, err := svc.ClearAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5), n)

		_, ok, err := svc.Next(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		item := create(t, svc, "fresh")
		assert.Equal(t, int64(1), *item.TaskNumber)
	})
}

func TestDuplicateIndex_Paths(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		ctx := context.Background()
		path := writeFile(t, t.TempDir(), "tracked.txt", "content")
		_, err := svc.Create(ctx, todo.CreateRequest{Title: "t", Description: "d", FilePath: path})
		require.NoError(t, err)

		dup, err := svc.Duplicates().IsDuplicatePath(ctx, path)
		require.NoError(t, err)
		assert.True(t, dup)

		dup, err = svc.Duplicates().IsDuplicatePath(ctx, path+".other")
		require.NoError(t, err)
		assert.False(t, dup)

		_, found, err := svc.Duplicates().Existing(ctx, "t", "nope")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestCreate_FromFileTwiceConflicts(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		ctx := context.Background()
		dir := t.TempDir()
		path := writeFile(t, dir, "notes.md", "ship it")

		first, err := svc.Create(ctx, todo.CreateRequest{Title: "First", FilePath: path})
		require.NoError(t, err)

		_, err = svc.Create(ctx, todo.CreateRequest{Title: "Second", FilePath: path})
		assert.ErrorIs(t, err, model.ErrConflict)

		_, err = svc.Create(ctx, todo.CreateRequest{Title: "Third", FilePath: filepath.Join(dir, "sub", "..", "notes.md")})
		assert.ErrorIs(t, err, model.ErrConflict, "same file through a different spelling")

		items, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, first.ID, items[0].ID)
	})
}

func TestCreate_RelativePathStoredAbsolute(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		ctx := context.Background()
		dir := t.TempDir()
		abs := writeFile(t, dir, "a.txt", "alpha")
		writeFile(t, dir, "b.txt", "beta")
		t.Chdir(dir)

		item, err := svc.Create(ctx, todo.CreateRequest{FilePath: "a.txt"})
		require.NoError(t, err)
		require.NotNil(t, item.FilePath)
		assert.Equal(t, abs, *item.FilePath)
		assert.Equal(t, "a", item.Title)

		res, err := ingest.New(svc, zerolog.Nop()).Run(ctx, ingest.Request{Folder: "."})
		require.NoError(t, err)
		assert.Equal(t, []string{abs}, res.Duplicates)
		require.Len(t, res.Created, 1)
		assert.Equal(t, filepath.Join(dir, "b.txt"), *res.Created[0].FilePath)

		items, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 2, "each file backs exactly one item")
	})
}

func TestSequencer(t *testing.T) {
	eachBackend(t, func(t *testing.T, svc *todo.Service, _ *fakeClock) {
		ctx := context.Background()

		next, err := svc.Sequencer().Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), next)

		_, err = svc.Create(ctx, todo.CreateRequest{Title: "t", Description: "d", TaskNumber: model.Ptr(int64(9))})
		require.NoError(t, err)

		next, err = svc.Sequencer().Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(10), next)
	})
}
