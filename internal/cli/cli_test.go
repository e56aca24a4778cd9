package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/relmap/pkg/relmap"
	"github.com/mesh-intelligence/relmap/pkg/types"
)

// testEnv holds isolated config and store locations for one test.
type testEnv struct {
	t         *testing.T
	configDir string
	storePath string
}

type runResult struct {
	Stdout string
	Stderr string
	Err    error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, key := range []string{"RELMAP_STORE_PATH", "RELMAP_CONFIG_DIR", "RELMAP_LOG_LEVEL",
		"RELMAP_LOG_FORMAT", "RELMAP_CREATE_IF_MISSING", "RELMAP_INDENT"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	return &testEnv{
		t:         t,
		configDir: filepath.Join(dir, "config"),
		storePath: filepath.Join(dir, "data", "json", "project_directories.json"),
	}
}

// run executes the root command with the env's config dir and store.
func (e *testEnv) run(args ...string) runResult {
	e.t.Helper()
	full := append([]string{"--config-dir", e.configDir, "--store", e.storePath}, args...)
	return e.runRaw(full...)
}

// runRaw executes the root command with exactly args.
func (e *testEnv) runRaw(args ...string) runResult {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return runResult{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

func (e *testEnv) mustRun(args ...string) runResult {
	e.t.Helper()
	res := e.run(args...)
	require.NoError(e.t, res.Err, "stderr: %s", res.Stderr)
	return res
}

func (e *testEnv) addJSON(name, dir string) projectView {
	e.t.Helper()
	res := e.mustRun("--json", "add", "--name", name, "--dir", dir)
	var v projectView
	require.NoError(e.t, json.Unmarshal([]byte(res.Stdout), &v))
	return v
}

func (e *testEnv) storeContent() string {
	e.t.Helper()
	data, err := os.ReadFile(e.storePath)
	require.NoError(e.t, err)
	return string(data)
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	res := env.mustRun("version")
	assert.Equal(t, fmt.Sprintf("relmap v%s\nmodule: %s\n", relmap.Version, modulePath), res.Stdout)
}

func TestInit(t *testing.T) {
	env := newTestEnv(t)

	res := env.mustRun("init")
	assert.Contains(t, res.Stdout, "Wrote configuration to "+env.configDir)
	assert.Contains(t, res.Stdout, "Project store ready: "+env.storePath)
	assert.Equal(t, "{}\n", env.storeContent())

	cfg, err := os.ReadFile(filepath.Join(env.configDir, configFileExt))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "store_path: "+env.storePath)
	assert.Contains(t, string(cfg), "create_if_missing: true")

	t.Run("second init is idempotent", func(t *testing.T) {
		env.addJSON("Alpha", "/tmp/a")
		before := env.storeContent()

		res := env.mustRun("init")
		assert.NotContains(t, res.Stdout, "Wrote configuration")
		assert.Equal(t, before, env.storeContent())
	})
}

func TestAddGetDeleteLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")

	added := env.addJSON("Alpha", "/tmp/a")
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "Alpha", added.Name)
	assert.Equal(t, "/tmp/a", added.Directory)
	assert.NotEmpty(t, added.AddedDate)

	res := env.mustRun("get", added.ID)
	assert.Contains(t, res.Stdout, "ID:        "+added.ID)
	assert.Contains(t, res.Stdout, "Name:      Alpha")
	assert.Contains(t, res.Stdout, "Directory: /tmp/a")

	res = env.mustRun("--json", "show", added.ID)
	var got projectView
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &got))
	assert.Equal(t, added, got)

	res = env.mustRun("delete", added.ID)
	assert.Equal(t, "Deleted project: "+added.ID+"\n", res.Stdout)

	res = env.run("get", added.ID)
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, types.ErrProjectNotFound)
	assert.Equal(t, exitUserError, exitCode(res.Err))
}

func TestAddPlainOutput(t *testing.T) {
	env := newTestEnv(t)

	res := env.mustRun("add", "--name", "Alpha", "--dir", "/tmp/a")
	assert.True(t, strings.HasPrefix(res.Stdout, `Added project "Alpha": `), res.Stdout)
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing name", args: []string{"add", "--dir", "/tmp/a"}},
		{name: "missing dir", args: []string{"add", "--name", "Alpha"}},
		{name: "blank name", args: []string{"add", "--name", " ", "--dir", "/tmp/a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.mustRun("init")

			res := env.run(tt.args...)
			require.Error(t, res.Err)
			assert.ErrorIs(t, res.Err, types.ErrValidation)
			assert.Equal(t, exitUserError, exitCode(res.Err))
			assert.Equal(t, "{}\n", env.storeContent())
		})
	}
}

func TestDeleteUnknownSucceeds(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")

	res := env.mustRun("--json", "delete", "nope")
	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &out))
	assert.Equal(t, "nope", out["deleted"])
	assert.Equal(t, "{}\n", env.storeContent())
}

func TestListEmpty(t *testing.T) {
	env := newTestEnv(t)

	res := env.mustRun("list")
	assert.Equal(t, "No projects found.\n", res.Stdout)

	res = env.mustRun("--json", "list")
	assert.Equal(t, "[]\n", res.Stdout)
}

func TestListTable(t *testing.T) {
	env := newTestEnv(t)
	a := env.addJSON("Alpha", "/tmp/a")
	b := env.addJSON("Beta", "/tmp/b")

	res := env.mustRun("list")
	lines := strings.Split(strings.TrimSpace(res.Stdout), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[2], a.ID)
	assert.Contains(t, lines[2], "Alpha")
	assert.Contains(t, lines[3], b.ID)
	assert.Equal(t, "Total: 2 project(s)", lines[4])
}

func TestListFilters(t *testing.T) {
	env := newTestEnv(t)
	env.addJSON("Timeline", "/srv/timeline")
	env.addJSON("Relation map", "/home/me/relmap")
	env.addJSON("timeline archive", "/srv/archive")

	names := func(res runResult) []string {
		t.Helper()
		require.NoError(t, res.Err, "stderr: %s", res.Stderr)
		var views []projectView
		require.NoError(t, json.Unmarshal([]byte(res.Stdout), &views))
		out := make([]string, len(views))
		for i, v := range views {
			out[i] = v.Name
		}
		return out
	}

	assert.Equal(t, []string{"Timeline", "timeline archive"},
		names(env.run("--json", "list", "--name", "TIMELINE")))
	assert.Equal(t, []string{"Timeline", "timeline archive"},
		names(env.run("--json", "list", "--dir-prefix", "/srv/")))
	assert.Equal(t, []string{"timeline archive", "Timeline", "Relation map"},
		names(env.run("--json", "list", "--sort", "name", "--desc")))
	assert.Equal(t, []string{"Relation map"},
		names(env.run("--json", "list", "--limit", "1", "--offset", "1")))
	assert.Equal(t, []string{"Timeline", "Relation map", "timeline archive"},
		names(env.run("--json", "list", "--since", "2000-01-01")))
	assert.Empty(t, names(env.run("--json", "list", "--until", "2000-01-01")))
	assert.Len(t, names(env.run("--json", "list", "--until", "9999-12-31")), 3)
	assert.Len(t, names(env.run("--json", "list", "--since", "1000-01-01")), 3)

	env.addJSON("Été", "/srv/ete")
	assert.Equal(t, []string{"Été"}, names(env.run("--json", "list", "--name", "été")))
}

func TestListInvalidFilter(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown sort key", args: []string{"list", "--sort", "size"}},
		{name: "negative limit", args: []string{"list", "--limit", "-2"}},
		{name: "bad since", args: []string{"list", "--since", "last week"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			res := env.run(tt.args...)
			require.Error(t, res.Err)
			assert.ErrorIs(t, res.Err, types.ErrInvalidFilter)
			assert.Equal(t, exitUserError, exitCode(res.Err))
		})
	}
}

func TestUpdate(t *testing.T) {
	env := newTestEnv(t)
	added := env.addJSON("Alpha", "/tmp/a")

	res := env.mustRun("--json", "update", added.ID, "--name", "Alpha Prime")
	var got projectView
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &got))
	assert.Equal(t, "Alpha Prime", got.Name)
	assert.Equal(t, "/tmp/a", got.Directory)
	assert.Equal(t, added.AddedDate, got.AddedDate)

	res = env.mustRun("update", added.ID, "--dir", "/srv/alpha")
	assert.Equal(t, "Updated project: "+added.ID+"\n", res.Stdout)

	res = env.mustRun("--json", "get", added.ID)
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &got))
	assert.Equal(t, "/srv/alpha", got.Directory)

	t.Run("no flags", func(t *testing.T) {
		res := env.run("update", added.ID)
		require.Error(t, res.Err)
		assert.Equal(t, exitUserError, exitCode(res.Err))
	})

	t.Run("unknown id", func(t *testing.T) {
		res := env.run("update", "nope", "--name", "X")
		assert.ErrorIs(t, res.Err, types.ErrProjectNotFound)
		assert.Equal(t, exitUserError, exitCode(res.Err))
	})

	t.Run("empty name", func(t *testing.T) {
		res := env.run("update", added.ID, "--name", "")
		assert.ErrorIs(t, res.Err, types.ErrValidation)
	})
}

func TestCorruptStoreIsSystemError(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(env.storePath), 0o755))
	require.NoError(t, os.WriteFile(env.storePath, []byte(`{"a": `), 0o644))

	res := env.run("list")
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, types.ErrCorruptData)
	assert.Equal(t, exitSysError, exitCode(res.Err))
	assert.Equal(t, `{"a": `, env.storeContent())
}

func TestConfigFileSettings(t *testing.T) {
	t.Run("store_path from config.yaml", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, os.MkdirAll(env.configDir, 0o755))
		cfg := fmt.Sprintf("store_path: %s\n", env.storePath)
		require.NoError(t, os.WriteFile(filepath.Join(env.configDir, configFileExt), []byte(cfg), 0o644))

		res := env.runRaw("--config-dir", env.configDir, "path")
		require.NoError(t, res.Err)
		assert.Equal(t, env.storePath+"\n", res.Stdout)
	})

	t.Run("create_if_missing false reports missing file", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, os.MkdirAll(env.configDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(env.configDir, configFileExt),
			[]byte("create_if_missing: false\n"), 0o644))

		res := env.run("list")
		require.Error(t, res.Err)
		assert.ErrorIs(t, res.Err, types.ErrNotFound)
		assert.Equal(t, exitSysError, exitCode(res.Err))
		_, err := os.Stat(env.storePath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("indent from config.yaml", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, os.MkdirAll(env.configDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(env.configDir, configFileExt),
			[]byte("indent: 2\n"), 0o644))

		env.addJSON("Alpha", "/tmp/a")
		assert.Contains(t, env.storeContent(), "\n    \"name\": \"Alpha\"")
		assert.NotContains(t, env.storeContent(), "\n        \"")
	})

	t.Run("malformed config.yaml is a user error", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, os.MkdirAll(env.configDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(env.configDir, configFileExt),
			[]byte("indent: [\n"), 0o644))

		res := env.run("list")
		require.Error(t, res.Err)
		assert.Equal(t, exitUserError, exitCode(res.Err))
	})

	t.Run("env overrides log level", func(t *testing.T) {
		env := newTestEnv(t)
		t.Setenv("RELMAP_LOG_LEVEL", "info")

		res := env.mustRun("add", "--name", "Alpha", "--dir", "/tmp/a")
		assert.Contains(t, res.Stderr, "added project")
	})
}

func TestLogLevelFlag(t *testing.T) {
	env := newTestEnv(t)

	res := env.mustRun("list")
	assert.Empty(t, res.Stderr, "default level keeps routine logs quiet")

	res = env.mustRun("--log-level", "debug", "list")
	assert.Contains(t, res.Stderr, "loaded projects")

	res = env.run("--log-level", "chatty", "list")
	require.Error(t, res.Err)
	assert.Equal(t, exitUserError, exitCode(res.Err))
}

func TestPathCommand(t *testing.T) {
	env := newTestEnv(t)

	res := env.mustRun("--json", "path")
	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &out))
	assert.Equal(t, env.storePath, out["store"])
	assert.Equal(t, env.configDir, out["config_dir"])
}

func TestCommandsThatLeaveStoreAlone(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "version", args: []string{"version"}},
		{name: "help", args: []string{"help", "add"}},
		{name: "completion bash", args: []string{"completion", "bash"}},
		{name: "completion zsh", args: []string{"completion", "zsh"}},
		{name: "completion request", args: []string{cobra.ShellCompRequestCmd, "get", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			res := env.run(tt.args...)
			require.NoError(t, res.Err, "stderr: %s", res.Stderr)
			assert.NotEmpty(t, res.Stdout)

			_, err := os.Stat(filepath.Dir(env.storePath))
			assert.True(t, os.IsNotExist(err), "data directory was created")
		})
	}
}

func TestArgumentErrorsAreUserErrors(t *testing.T) {
	env := newTestEnv(t)

	res := env.run("get")
	require.Error(t, res.Err)
	assert.Equal(t, exitUserError, exitCode(res.Err))

	res = env.run("list", "--bogus")
	require.Error(t, res.Err)
	assert.Equal(t, exitUserError, exitCode(res.Err))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitSuccess},
		{name: "validation", err: fmt.Errorf("add: %w", &types.ValidationError{Field: "name"}), want: exitUserError},
		{name: "unknown project", err: types.ErrProjectNotFound, want: exitUserError},
		{name: "bad filter", err: types.ErrInvalidFilter, want: exitUserError},
		{name: "user error", err: &userError{errors.New("bad flag")}, want: exitUserError},
		{name: "corrupt data", err: &types.CorruptDataError{Path: "p", Err: errors.New("eof")}, want: exitSysError},
		{name: "missing file", err: types.ErrNotFound, want: exitSysError},
		{name: "other", err: errors.New("disk full"), want: exitSysError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
