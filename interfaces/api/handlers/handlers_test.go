package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/application/serviceimpl"
	"taskhub/infrastructure/memory"
	"taskhub/infrastructure/messaging"
	"taskhub/infrastructure/redis"
	"taskhub/interfaces/api/handlers"
	"taskhub/interfaces/api/middleware"
	"taskhub/interfaces/api/routes"
)

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	cache := redis.NewNopReadCache()
	events := messaging.NopPublisher{}

	h := handlers.NewHandlers(&handlers.Services{
		UserService: serviceimpl.NewUserService(store.Users(), store.Tasks(), store.TxManager(), events, cache),
		TaskService: serviceimpl.NewTaskService(store.Tasks(), store.Users(), store.TxManager(), events, cache),
		Health:      handlers.HealthCheck{Store: "memory", Version: "test"},
	})

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RecoverMiddleware())
	app.Use(middleware.RequestIDMiddleware())
	routes.SetupRoutes(app, h)
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

type userBody struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PendingTasks []string `json:"pendingTasks"`
}

type taskBody struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Deadline         string `json:"deadline"`
	Completed        bool   `json:"completed"`
	AssignedUser     string `json:"assignedUser"`
	AssignedUserName string `json:"assignedUserName"`
}

func TestAPI_AssignAndCompleteScenario(t *testing.T) {
	app := newTestApp(t)

	status, env := do(t, app, http.MethodPost, "/users", `{"name":"Ann","email":"a@x.com"}`)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Created", env.Message)
	ann := decode[userBody](t, env)
	assert.Equal(t, []string{}, ann.PendingTasks)

	status, env = do(t, app, http.MethodPost, "/tasks",
		`{"name":"T1","deadline":"2025-01-01","assignedUser":"`+ann.ID+`"}`)
	require.Equal(t, fiber.StatusCreated, status)
	t1 := decode[taskBody](t, env)
	assert.Equal(t, "Ann", t1.AssignedUserName)
	assert.Equal(t, "2025-01-01T00:00:00Z", t1.Deadline)

	status, env = do(t, app, http.MethodGet, "/users/"+ann.ID, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "OK", env.Message)
	assert.Equal(t, []string{t1.ID}, decode[userBody](t, env).PendingTasks)

	status, _ = do(t, app, http.MethodPut, "/tasks/"+t1.ID, `{"name":"T1","deadline":"2025-01-01","completed":true}`)
	require.Equal(t, fiber.StatusOK, status)

	_, env = do(t, app, http.MethodGet, "/users/"+ann.ID, "")
	assert.Empty(t, decode[userBody](t, env).PendingTasks)
}

func TestAPI_CompleteAndMoveIsRejected(t *testing.T) {
	app := newTestApp(t)

	_, env := do(t, app, http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`)
	ann := decode[userBody](t, env)
	_, env = do(t, app, http.MethodPost, "/users", `{"name":"Bob","email":"bob@x.com"}`)
	bob := decode[userBody](t, env)
	_, env = do(t, app, http.MethodPost, "/tasks", `{"name":"T1","deadline":1735689600000,"assignedUser":"`+ann.ID+`"}`)
	t1 := decode[taskBody](t, env)

	status, env := do(t, app, http.MethodPut, "/tasks/"+t1.ID,
		`{"name":"T1","deadline":"2025-01-01","completed":true,"assignedUser":"`+bob.ID+`"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "null", string(env.Data))

	_, env = do(t, app, http.MethodGet, "/tasks/"+t1.ID, "")
	got := decode[taskBody](t, env)
	assert.Equal(t, ann.ID, got.AssignedUser)
	assert.False(t, got.Completed)
}

func TestAPI_ListQueries(t *testing.T) {
	app := newTestApp(t)
	for _, name := range []string{"B", "A", "C"} {
		status, _ := do(t, app, http.MethodPost, "/tasks", `{"name":"`+name+`","deadline":"2025-01-01"}`)
		require.Equal(t, fiber.StatusCreated, status)
	}

	q := url.Values{}
	q.Set("sort", `{"name":1}`)
	q.Set("skip", "1")
	q.Set("limit", "1")
	q.Set("select", `{"name":1,"_id":0}`)
	status, env := do(t, app, http.MethodGet, "/tasks?"+q.Encode(), "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[{"name":"B"}]`, string(env.Data))

	q.Set("count", "true")
	_, env = do(t, app, http.MethodGet, "/tasks?"+q.Encode(), "")
	assert.Equal(t, "3", string(env.Data))

	q = url.Values{}
	q.Set("where", `{"name":{"$in":["A","C"]}}`)
	q.Set("count", "true")
	_, env = do(t, app, http.MethodGet, "/tasks?"+q.Encode(), "")
	assert.Equal(t, "2", string(env.Data))
}

func TestAPI_ClientErrors(t *testing.T) {
	app := newTestApp(t)
	_, env := do(t, app, http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`)
	ann := decode[userBody](t, env)

	tests := []struct {
		name    string
		method  string
		target  string
		body    string
		status  int
		message string
	}{
		{"malformed where", http.MethodGet, "/users?where=" + url.QueryEscape(`{"name":`), "", 400, "Invalid JSON in 'where' parameter"},
		{"malformed sort", http.MethodGet, "/tasks?sort=" + url.QueryEscape(`{`), "", 400, "Invalid JSON in 'sort' parameter"},
		{"malformed select", http.MethodGet, "/users/" + ann.ID + "?select=" + url.QueryEscape(`nope`), "", 400, "Invalid JSON in 'select' parameter"},
		{"bad user id", http.MethodGet, "/users/123", "", 400, "Invalid user id"},
		{"bad task id", http.MethodDelete, "/tasks/123", "", 400, "Invalid task id"},
		{"missing user", http.MethodGet, "/users/00000000-0000-0000-0000-000000000001", "", 404, "User not found"},
		{"missing task", http.MethodPut, "/tasks/00000000-0000-0000-0000-000000000001", `{"name":"x","deadline":"2025-01-01"}`, 404, "Task not found"},
		{"duplicate email", http.MethodPost, "/users", `{"name":"Other","email":"ANN@x.com"}`, 400, "Email already exists"},
		{"invalid body", http.MethodPost, "/users", `{"name":`, 400, "Invalid request body"},
		{"missing email", http.MethodPost, "/users", `{"name":"Bob"}`, 400, "Validation failed: email is required"},
		{"unknown assignee", http.MethodPost, "/tasks", `{"name":"T","deadline":"2025-01-01","assignedUser":"00000000-0000-0000-0000-000000000002"}`, 400, "Assigned user not found"},
		{"unknown route", http.MethodGet, "/nope", "", 404, "Cannot GET /nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, app, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, env.Message)
			assert.Equal(t, "null", string(env.Data))
		})
	}
}

func TestAPI_GetHonoursSelect(t *testing.T) {
	app := newTestApp(t)
	_, env := do(t, app, http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`)
	ann := decode[userBody](t, env)

	_, env = do(t, app, http.MethodGet, "/users/"+ann.ID+"?select="+url.QueryEscape(`{"pendingTasks":0}`), "")
	assert.JSONEq(t, `{"id":"`+ann.ID+`","name":"Ann","email":"ann@x.com"}`, string(env.Data))
}

func TestAPI_DeleteUserReleasesTasks(t *testing.T) {
	app := newTestApp(t)
	_, env := do(t, app, http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`)
	ann := decode[userBody](t, env)
	_, env = do(t, app, http.MethodPost, "/tasks", `{"name":"T1","deadline":"2025-01-01","assignedUser":"`+ann.ID+`"}`)
	t1 := decode[taskBody](t, env)

	req := httptest.NewRequest(http.MethodDelete, "/users/"+ann.ID, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Empty(t, body)

	_, env = do(t, app, http.MethodGet, "/tasks/"+t1.ID, "")
	got := decode[taskBody](t, env)
	assert.Equal(t, "", got.AssignedUser)
	assert.Equal(t, "unassigned", got.AssignedUserName)
}

func TestAPI_Health(t *testing.T) {
	app := newTestApp(t)

	status, env := do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok","store":"memory","version":"test"}`, string(env.Data))
}

func TestHealth_ReportsDependencies(t *testing.T) {
	newApp := func(check handlers.HealthCheck) *fiber.App {
		app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
		app.Get("/health", handlers.NewHealthHandler(check).Health)
		return app
	}

	app := newApp(handlers.HealthCheck{
		Store:  "postgres",
		Ping:   func(context.Context) error { return nil },
		Events: func(context.Context) (any, error) { return map[string]int{"messages": 3}, nil },
	})
	status, env := do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok","store":"postgres","events":{"messages":3}}`, string(env.Data))

	app = newApp(handlers.HealthCheck{
		Store: "postgres",
		Ping:  func(context.Context) error { return errors.New("connection refused") },
	})
	status, env = do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "Store unavailable", env.Message)

	app = newApp(handlers.HealthCheck{
		Store: "mongodb",
		Cache: func(context.Context) error { return errors.New("i/o timeout") },
	})
	status, env = do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok","store":"mongodb","cache":"unavailable"}`, string(env.Data))
}
