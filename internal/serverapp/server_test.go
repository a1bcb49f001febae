package serverapp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/config"
	"github.com/wilkenstelisma/Work-Tracker-SN/internal/model"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.DataDir = t.TempDir()
	app, err := New(Options{Config: cfg, Logger: zerolog.Nop()})
	require.NoError(t, err)
	return app
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app.Handler, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, app.Handler, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, app.Handler, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app.Handler, http.MethodPost, "/api/tasks", map[string]any{
		"title":    "Write proposal",
		"priority": "high",
		"dueDate":  "2099-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rec = doJSON(t, app.Handler, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = doJSON(t, app.Handler, http.MethodPatch, "/api/tasks/"+string(created.ID), map[string]any{
		"status": "complete",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, model.StatusComplete, updated.Status)
	assert.NotNil(t, updated.CompletedAt)
	require.Len(t, updated.Changelog, 1)
	assert.Equal(t, "status", updated.Changelog[0].Field)

	rec = doJSON(t, app.Handler, http.MethodGet, "/api/tasks/"+string(created.ID)+"/changelog", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, app.Handler, http.MethodDelete, "/api/tasks/"+string(created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, app.Handler, http.MethodGet, "/api/tasks/"+string(created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTaskValidation(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app.Handler, http.MethodPost, "/api/tasks", map[string]any{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewBufferString("{broken"))
	out := httptest.NewRecorder()
	app.Handler.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestAlertsEndpointAfterSweep(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app.Handler, http.MethodPost, "/api/tasks", map[string]any{
		"title":   "Long overdue",
		"dueDate": "2020-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	app.Sweeper.Sweep(time.Now())

	rec = doJSON(t, app.Handler, http.MethodGet, "/api/alerts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Alerts []model.AlertItem `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, model.AlertOverdue, resp.Alerts[0].Type)

	rec = doJSON(t, app.Handler, http.MethodPost, "/api/alerts/dismiss", map[string]any{
		"id": resp.Alerts[0].ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, app.Handler, http.MethodGet, "/api/alerts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Alerts)
}

func TestProjectDeleteUnlinksTasks(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app.Handler, http.MethodPost, "/api/projects", map[string]any{
		"name": "Q3 launch",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var proj model.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &proj))

	rec = doJSON(t, app.Handler, http.MethodPost, "/api/tasks", map[string]any{
		"title":     "Launch checklist",
		"projectId": string(proj.ID),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var task model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	require.NotNil(t, task.ProjectID)

	rec = doJSON(t, app.Handler, http.MethodDelete, "/api/projects/"+string(proj.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var del struct {
		Unlinked int `json:"unlinked"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &del))
	assert.Equal(t, 1, del.Unlinked)

	rec = doJSON(t, app.Handler, http.MethodGet, "/api/tasks/"+string(task.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Nil(t, got.ProjectID)
}

func TestCalendarExport(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app.Handler, http.MethodPost, "/api/tasks", map[string]any{
		"title":   "Review budget",
		"dueDate": "2099-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, app.Handler, http.MethodGet, "/api/tasks/"+string(created.ID)+"/calendar.ics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, rec.Body.String(), "SUMMARY:Review budget")

	// No due date: export has nothing to anchor the event on.
	rec = doJSON(t, app.Handler, http.MethodPost, "/api/tasks", map[string]any{"title": "Undated"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var undated model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &undated))
	rec = doJSON(t, app.Handler, http.MethodGet, "/api/tasks/"+string(undated.ID)+"/calendar.ics", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app.Handler, http.MethodGet, "/healthz", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "trace-me")
	out := httptest.NewRecorder()
	app.Handler.ServeHTTP(out, req)
	assert.Equal(t, "trace-me", out.Header().Get("X-Request-Id"))
}
