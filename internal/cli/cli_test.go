package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// service is a stand-in for the hosted table and storage service.
type service struct {
	mu       sync.Mutex
	inserted []map[string]any
	uploads  []string
}

func (s *service) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		all := `[{"id":2,"Title":"Portfolio","Description":"site","Img":"cover.png","TechStack":"React, Go","Features":"[\"fast\"]"},` +
			`{"id":1,"Title":"CLI","Description":"tool","Images":["a.png"],"TechStack":["Go"]}]`
		switch r.URL.Query().Get("id") {
		case "":
			io.WriteString(w, all)
		case "eq.2":
			io.WriteString(w, `[{"id":2,"Title":"Portfolio","Description":"site","Img":"cover.png","TechStack":"React, Go","Features":"[\"fast\"]","Github":"https://github.com/example/site"}]`)
		default:
			io.WriteString(w, `[]`)
		}
	})
	mux.HandleFunc("/rest/v1/certificates", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":9,"Img":"aws.png"}]`)
	})
	mux.HandleFunc("/rest/v1/comments", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			io.WriteString(w, `[{"id":1,"Name":"Ana","Comment":"hi","created_at":"2024-05-01T10:00:00Z"},`+
				`{"id":2,"Name":"Owner","Comment":"welcome","Pinned":true,"created_at":"2024-01-01T10:00:00Z"}]`)
			return
		}
		var rows []map[string]any
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil || len(rows) != 1 {
			http.Error(w, `{"message":"bad body"}`, http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.inserted = append(s.inserted, rows[0])
		s.mu.Unlock()
		rows[0]["id"] = 42
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(rows)
	})
	mux.HandleFunc("/storage/v1/object/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.uploads = append(s.uploads, r.URL.Path)
		s.mu.Unlock()
		io.WriteString(w, `{"Key":"ok"}`)
	})
	return mux
}

type env struct {
	configDir string
	dataDir   string
	svc       *service
	srv       *httptest.Server
}

// newEnv writes a config pointing at a fake service with the given snapshot
// backend.
func newEnv(t *testing.T, backend string) *env {
	t.Helper()
	svc := &service{}
	srv := httptest.NewServer(svc.handler())
	t.Cleanup(srv.Close)

	e := &env{
		configDir: t.TempDir(),
		dataDir:   t.TempDir(),
		svc:       svc,
		srv:       srv,
	}
	e.writeConfig(t, srv.URL, backend)
	return e
}

func (e *env) writeConfig(t *testing.T, url, backend string) {
	t.Helper()
	cfg := fmt.Sprintf("remote:\n  url: %q\n  timeout_seconds: 2\nsnapshot:\n  backend: %s\nlog:\n  level: ERROR\n", url, backend)
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte(cfg), 0o644))
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	e := newEnv(t, types.BackendMemory)
	out, err := e.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "showcase v"+Version)
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "cfg")
	dataDir := filepath.Join(t.TempDir(), "data")
	run := func() string {
		root := NewRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs([]string{"init", "--config-dir", configDir, "--data-dir", dataDir})
		require.NoError(t, root.Execute())
		return out.String()
	}

	out := run()
	assert.Contains(t, out, "Wrote ")
	assert.Contains(t, out, "Showcase initialized successfully")
	assert.FileExists(t, filepath.Join(configDir, "config.yaml"))
	assert.FileExists(t, filepath.Join(dataDir, "snapshots.db"))

	out = run()
	assert.NotContains(t, out, "Wrote ")
}

func TestProjectsList_FallsBackToSnapshot(t *testing.T) {
	e := newEnv(t, types.BackendJSONL)

	out, err := e.run(t, "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Portfolio")
	assert.Contains(t, out, "React, Go")
	assert.Contains(t, out, "Total: 2 project(s)")

	e.srv.Close()

	out, err = e.run(t, "projects", "--json")
	require.NoError(t, err)
	var projects []types.ProjectView
	require.NoError(t, json.Unmarshal([]byte(out), &projects))
	require.Len(t, projects, 2)
	assert.Equal(t, int64(2), projects[0].ID)
	assert.Equal(t, []string{"React", "Go"}, projects[0].TechStack)
}

func TestProjectsList_EmptyWithoutServiceOrSnapshot(t *testing.T) {
	e := newEnv(t, types.BackendSQLite)
	e.writeConfig(t, "", types.BackendSQLite)

	out, err := e.run(t, "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects found.")
}

func TestProjectsShow(t *testing.T) {
	e := newEnv(t, types.BackendMemory)

	out, err := e.run(t, "projects", "show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Portfolio (#2)")
	assert.Contains(t, out, "  - React")
	assert.Contains(t, out, "  - fast")
	assert.Contains(t, out, "  - cover.png")
	assert.Contains(t, out, "Source: https://github.com/example/site")

	out, err = e.run(t, "projects", "show", "2", "--json")
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	assert.Equal(t, []any{"React", "Go"}, raw["tech_stack"])
	assert.Equal(t, []any{"fast"}, raw["features"])
	assert.Equal(t, []any{"cover.png"}, raw["images"])
	assert.NotContains(t, raw, "TechStack")

	_, err = e.run(t, "projects", "show", "77")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestCertificatesList(t *testing.T) {
	e := newEnv(t, types.BackendMemory)
	out, err := e.run(t, "certificates", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "aws.png")
	assert.Contains(t, out, "Total: 1 certificate(s)")
}

func TestCommentsList_PinnedFirst(t *testing.T) {
	e := newEnv(t, types.BackendMemory)
	out, err := e.run(t, "comments", "list")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Owner"), strings.Index(out, "Ana"))
}

func TestCommentsPost(t *testing.T) {
	e := newEnv(t, types.BackendJSONL)

	photo := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(photo, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o644))

	out, err := e.run(t, "comments", "post", "--name", "Ana", "--email", "ana@example.com", "--comment", "Great work", "--photo", photo)
	require.NoError(t, err)
	assert.Contains(t, out, "Comment 42 posted")

	require.Len(t, e.svc.inserted, 1)
	assert.Equal(t, "Ana", e.svc.inserted[0]["Name"])
	require.Len(t, e.svc.uploads, 1)
	assert.True(t, strings.HasPrefix(e.svc.uploads[0], "/storage/v1/object/Portfolio/comment-photos/"))
	assert.True(t, strings.HasSuffix(e.svc.uploads[0], ".png"))
	assert.Contains(t, e.svc.inserted[0]["Photo"], "/storage/v1/object/public/Portfolio/comment-photos/")
}

func TestCommentsPost_Errors(t *testing.T) {
	t.Run("oversized photo", func(t *testing.T) {
		e := newEnv(t, types.BackendMemory)
		photo := filepath.Join(t.TempDir(), "big.png")
		require.NoError(t, os.WriteFile(photo, bytes.Repeat([]byte{0}, 6<<20), 0o644))

		_, err := e.run(t, "comments", "post", "--name", "Ana", "--email", "ana@example.com", "--comment", "hi", "--photo", photo)
		require.ErrorIs(t, err, types.ErrInvalidPhoto)
		assert.Equal(t, exitUserError, exitCode(err))
		assert.Empty(t, e.svc.inserted)
	})

	t.Run("service unavailable", func(t *testing.T) {
		e := newEnv(t, types.BackendMemory)
		e.srv.Close()

		_, err := e.run(t, "comments", "post", "--name", "Ana", "--email", "ana@example.com", "--comment", "hi")
		require.ErrorIs(t, err, types.ErrBackend)
		assert.Equal(t, exitUserError, exitCode(err))
	})

	t.Run("blank comment", func(t *testing.T) {
		e := newEnv(t, types.BackendMemory)
		_, err := e.run(t, "comments", "post", "--name", "Ana", "--email", "ana@example.com", "--comment", "   ")
		require.ErrorIs(t, err, types.ErrInvalidComment)
	})
}

func TestStats(t *testing.T) {
	e := newEnv(t, types.BackendJSONL)
	_, err := e.run(t, "projects", "list")
	require.NoError(t, err)
	_, err = e.run(t, "certificates", "list")
	require.NoError(t, err)

	out, err := e.run(t, "stats", "--json")
	require.NoError(t, err)
	var got struct {
		Projects     int `json:"projects"`
		Certificates int `json:"certificates"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Projects)
	assert.Equal(t, 1, got.Certificates)
}

func TestBadConfigIsSystemError(t *testing.T) {
	e := newEnv(t, types.BackendMemory)
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte("snapshot:\n  backend: redis\n"), 0o644))

	_, err := e.run(t, "projects", "list")
	require.Error(t, err)
	assert.Equal(t, exitSysError, exitCode(err))
}

func TestOpenApp_InstallsConfiguredLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	e := newEnv(t, types.BackendMemory)
	_, err := e.run(t, "certificates", "list")
	require.NoError(t, err)

	ctx := context.Background()
	assert.False(t, slog.Default().Enabled(ctx, slog.LevelWarn))
	assert.True(t, slog.Default().Enabled(ctx, slog.LevelError))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(errors.New("boom")))
	assert.Equal(t, exitSysError, exitCode(fmt.Errorf("wrapped: %w", &sysError{errors.New("disk")})))
}
