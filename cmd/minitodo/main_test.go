package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baiirun/minitodo/internal/config"
	"github.com/baiirun/minitodo/internal/ingest"
	"github.com/baiirun/minitodo/internal/model"
)

type testEnv struct {
	t       *testing.T
	backend string
	dbPath  string
	config  string
}

// setupTestEnv isolates the CLI from the user's home, config and environment.
func setupTestEnv(t *testing.T, backend string) *testEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, env := range []string{config.EnvDB, config.EnvBackend, config.EnvLogLevel, config.EnvLogFile, config.EnvConcurrency} {
		t.Setenv(env, "")
	}
	ext := ".db"
	if backend == config.BackendJSON {
		ext = ".json"
	}
	return &testEnv{
		t:       t,
		backend: backend,
		dbPath:  filepath.Join(t.TempDir(), "todos"+ext),
		config:  filepath.Join(home, "missing.yaml"),
	}
}

func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config", e.config, "--db", e.dbPath, "--backend", e.backend, "--log-level", "disabled"}, args...)
	err := run(full, &stdout, &stderr)
	return stdout.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "minitodo %v", args)
	return out
}

func eachBackend(t *testing.T, fn func(t *testing.T, env *testEnv)) {
	for _, backend := range []string{config.BackendSQLite, config.BackendJSON} {
		t.Run(backend, func(t *testing.T) {
			fn(t, setupTestEnv(t, backend))
		})
	}
}

func TestAddShowDone(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		out := env.mustRun("add", "Write docs", "-d", "README first")
		assert.Equal(t, "✅ Created Todo 1: Write docs\n", out)

		out = env.mustRun("show", "1")
		assert.Equal(t, "## Task 1: Write docs ⏳\n\nREADME first\n", out)

		out = env.mustRun("done", "1")
		assert.Equal(t, "✅ Todo 1: Write docs completed\n", out)

		out = env.mustRun("next")
		assert.Equal(t, "No todos found that need to be completed.\n", out)
	})
}

func TestListJSON(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		out := env.mustRun("--json", "list")
		var empty []model.Item
		require.NoError(t, json.Unmarshal([]byte(out), &empty), "output: %s", out)
		assert.Empty(t, empty)

		env.mustRun("add", "a", "-d", "one")
		env.mustRun("add", "b", "-d", "two", "-n", "10")

		out = env.mustRun("--json", "list")
		var items []model.Item
		require.NoError(t, json.Unmarshal([]byte(out), &items), "output: %s", out)
		require.Len(t, items, 2)
		assert.Equal(t, int64(1), *items[0].TaskNumber)
		assert.Equal(t, int64(10), *items[1].TaskNumber)
		assert.Equal(t, model.StatusNew, items[1].Status)
	})
}

func TestUpdateAndDelete(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		env.mustRun("add", "draft", "-d", "text")

		out := env.mustRun("update", "1", "--title", "final")
		assert.Equal(t, "✅ Updated Todo 1: final\n", out)

		_, err := env.run("update", "1")
		assert.ErrorIs(t, err, model.ErrInvalidArgument)

		out = env.mustRun("delete", "1")
		assert.Equal(t, "✅ Todo Deleted: \"final\"\n", out)

		_, err = env.run("delete", "1")
		assert.ErrorIs(t, err, model.ErrNotFound)

		_, err = env.run("show", "abc")
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	})
}

func TestNextID(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		env.mustRun("add", "a", "-d", "one")
		env.mustRun("add", "b", "-d", "two")
		env.mustRun("done", "1")

		out := env.mustRun("next", "--id")
		assert.Equal(t, "ID: 2, Task Number: 2\n", out)
	})
}

func TestIngestAndRerun(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		dir := t.TempDir()
		for name, content := range map[string]string{"f2.md": "two", "f12.md": "twelve", "f1.md": "one", "skip.tmp": "x"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
		}

		out := env.mustRun("--json", "ingest", dir, "--exclude", "*.tmp")
		var res ingest.Result
		require.NoError(t, json.Unmarshal([]byte(out), &res), "output: %s", out)
		require.Len(t, res.Created, 3)
		assert.Equal(t, "Task 1: f1", res.Created[0].Title)
		assert.Equal(t, "Task 3: f12", res.Created[2].Title)

		_, err := env.run("ingest", dir, "--exclude", "*.tmp")
		var nothing *model.NothingToProcessError
		require.ErrorAs(t, err, &nothing)
		assert.True(t, nothing.AllFilesAlreadyProcessed())

		out = env.mustRun("ingest", dir, "--clear", "--exclude", "*.tmp")
		assert.Equal(t, "✅ Created 3 todos from files in "+dir+" (after clearing all existing todos)\n", out)

		out = env.mustRun("clear")
		assert.Equal(t, "✅ Cleared 3 todos from the database.\n", out)
	})
}

func TestRulesCommands(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		path := filepath.Join(t.TempDir(), "rules.md")
		require.NoError(t, os.WriteFile(path, []byte("Use gofmt."), 0o644))

		out := env.mustRun("rules", "add", path)
		assert.Equal(t, "✅ Created 1 rule from "+path+"\n", out)

		out = env.mustRun("rules", "list")
		assert.Contains(t, out, "**Rule 1**")
		assert.Contains(t, out, "Use gofmt.")

		_, err := env.run("rules", "list", "--id", "5")
		assert.ErrorIs(t, err, model.ErrNotFound)

		out = env.mustRun("rules", "clear")
		assert.Equal(t, "✅ Cleared 1 rules from the database.\n", out)
	})
}

func TestConfigFileSelectsBackend(t *testing.T) {
	setupTestEnv(t, config.BackendSQLite)
	storePath := filepath.Join(t.TempDir(), "from-config.json")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("backend: json\ndb_path: "+storePath+"\nlog:\n  level: disabled\n"), 0o644))

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--config", cfgPath, "add", "t", "-d", "d"}, &stdout, &stderr))

	data, err := os.ReadFile(storePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "t"`)
}

func TestInvalidBackendFlag(t *testing.T) {
	env := setupTestEnv(t, "postgres")
	_, err := env.run("list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend must be")
}
