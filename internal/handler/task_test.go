package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/repository"
	"github.com/taskdeck/taskdeck/internal/service"
)

// fakeTaskStore is an in-memory TaskStore with the repository's
// owner-scoping behavior. A non-nil failWith is returned by GetTask.
type fakeTaskStore struct {
	tasks    map[string]*model.Task
	failWith error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[string]*model.Task)}
}

func (f *fakeTaskStore) CreateTask(_ context.Context, task *model.Task) error {
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) GetTask(_ context.Context, id, ownerID string) (*model.Task, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	task, ok := f.tasks[id]
	if !ok || !task.IsOwnedBy(ownerID) {
		return nil, repository.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) ListTasks(_ context.Context, ownerID string, filter repository.TaskFilter) ([]*model.Task, error) {
	var out []*model.Task
	for _, task := range f.tasks {
		if !task.IsOwnedBy(ownerID) {
			continue
		}
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		copied := *task
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeTaskStore) UpdateTask(_ context.Context, task *model.Task) error {
	existing, ok := f.tasks[task.ID]
	if !ok || !existing.IsOwnedBy(task.OwnerID) {
		return repository.ErrTaskNotFound
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) DeleteTask(_ context.Context, id, ownerID string) error {
	existing, ok := f.tasks[id]
	if !ok || !existing.IsOwnedBy(ownerID) {
		return repository.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// identityInjector stands in for the session auth middleware in tests.
func identityInjector(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.ContextWithIdentity(r.Context(), &model.Identity{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newTaskRouter(store *fakeTaskStore, userID string) http.Handler {
	svc := service.NewTaskService(store, nil)
	h := NewTaskHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Route("/api/v1/tasks", func(r chi.Router) {
		r.Use(identityInjector(userID))
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Patch("/{id}/complete", h.Complete)
		r.Patch("/{id}/incomplete", h.Incomplete)
	})
	return r
}

type taskEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		ID        string `json:"id"`
		OwnerID   string `json:"ownerId"`
		Title     string `json:"title"`
		Completed bool   `json:"completed"`
		Priority  string `json:"priority"`
		Tag       string `json:"tag"`
		Deleted   bool   `json:"deleted"`
	} `json:"data"`
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) (*httptest.ResponseRecorder, taskEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var env taskEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON response: %v (%s)", err, rec.Body.String())
	}
	return rec, env
}

func TestCreateTaskEndpoint(t *testing.T) {
	router := newTaskRouter(newFakeTaskStore(), "user-1")

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/tasks",
		`{"title":"write report","priority":"high","tag":"work"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !env.Success {
		t.Fatal("expected success envelope")
	}
	if env.Data.ID == "" || env.Data.OwnerID != "user-1" {
		t.Errorf("unexpected data: %+v", env.Data)
	}
	if env.Data.Title != "write report" || env.Data.Priority != "high" {
		t.Errorf("unexpected data: %+v", env.Data)
	}
}

func TestCreateTaskValidationErrors(t *testing.T) {
	router := newTaskRouter(newFakeTaskStore(), "user-1")

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{"invalid_json", `{not json`, http.StatusBadRequest, "INVALID_JSON", ""},
		{"empty_title", `{"title":""}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title"},
		{"bad_priority", `{"title":"ok","priority":"urgent"}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "priority"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec, env := doRequest(t, router, http.MethodPost, "/api/v1/tasks", test.body)
			if rec.Code != test.wantStatus {
				t.Fatalf("expected %d, got %d: %s", test.wantStatus, rec.Code, rec.Body.String())
			}
			if env.Success {
				t.Fatal("expected error envelope")
			}
			if env.Error.Code != test.wantCode {
				t.Errorf("expected code %s, got %s", test.wantCode, env.Error.Code)
			}
			if test.wantField != "" {
				if _, ok := env.Error.Details[test.wantField]; !ok {
					t.Errorf("expected details for %s, got %v", test.wantField, env.Error.Details)
				}
			}
		})
	}
}

func TestGetTaskConflatesNotFoundAndNotOwned(t *testing.T) {
	store := newFakeTaskStore()
	store.tasks["theirs"] = &model.Task{ID: "theirs", OwnerID: "someone-else", Title: "secret"}
	router := newTaskRouter(store, "user-1")

	for _, id := range []string{"missing", "theirs"} {
		rec, env := doRequest(t, router, http.MethodGet, "/api/v1/tasks/"+id, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("id %s: expected 404, got %d", id, rec.Code)
		}
		if env.Error.Code != "TASK_NOT_FOUND" {
			t.Errorf("id %s: expected TASK_NOT_FOUND, got %s", id, env.Error.Code)
		}
	}
}

func TestGetTaskStoreFailure(t *testing.T) {
	store := newFakeTaskStore()
	store.failWith = errors.New("connection reset")
	router := newTaskRouter(store, "user-1")

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/tasks/t1", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.Error.Code != "GET_TASK_FAILED" {
		t.Errorf("expected GET_TASK_FAILED, got %s", env.Error.Code)
	}
	if strings.Contains(env.Error.Message, "connection reset") {
		t.Error("internal error detail leaked to the client")
	}
}

func TestUpdateTaskEndpoint(t *testing.T) {
	store := newFakeTaskStore()
	router := newTaskRouter(store, "user-1")

	_, created := doRequest(t, router, http.MethodPost, "/api/v1/tasks", `{"title":"old name","tag":"home"}`)

	rec, env := doRequest(t, router, http.MethodPut, "/api/v1/tasks/"+created.Data.ID, `{"title":"new name"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.Data.Title != "new name" {
		t.Errorf("expected title updated, got %q", env.Data.Title)
	}
	if env.Data.Tag != "home" {
		t.Errorf("expected tag unchanged, got %q", env.Data.Tag)
	}

	// PATCH is accepted as an alias for the same partial update.
	rec, env = doRequest(t, router, http.MethodPatch, "/api/v1/tasks/"+created.Data.ID, `{"tag":"work"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.Data.Title != "new name" || env.Data.Tag != "work" {
		t.Errorf("unexpected data after patch: %+v", env.Data)
	}
}

func TestCompleteAndIncompleteEndpoints(t *testing.T) {
	store := newFakeTaskStore()
	router := newTaskRouter(store, "user-1")

	_, created := doRequest(t, router, http.MethodPost, "/api/v1/tasks", `{"title":"repeat me"}`)
	id := created.Data.ID

	// Complete twice; same result both times.
	for i := 0; i < 2; i++ {
		rec, env := doRequest(t, router, http.MethodPatch, "/api/v1/tasks/"+id+"/complete", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("complete %d: expected 200, got %d", i, rec.Code)
		}
		if !env.Data.Completed {
			t.Fatalf("complete %d: expected completed true", i)
		}
	}

	rec, env := doRequest(t, router, http.MethodPatch, "/api/v1/tasks/"+id+"/incomplete", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.Data.Completed {
		t.Error("expected completed false")
	}

	rec, env = doRequest(t, router, http.MethodPatch, "/api/v1/tasks/missing/complete", "")
	if rec.Code != http.StatusNotFound || env.Error.Code != "TASK_NOT_FOUND" {
		t.Errorf("expected 404 TASK_NOT_FOUND, got %d %s", rec.Code, env.Error.Code)
	}
}

func TestDeleteTaskEndpoint(t *testing.T) {
	store := newFakeTaskStore()
	router := newTaskRouter(store, "user-1")

	_, created := doRequest(t, router, http.MethodPost, "/api/v1/tasks", `{"title":"short lived"}`)
	id := created.Data.ID

	rec, env := doRequest(t, router, http.MethodDelete, "/api/v1/tasks/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !env.Data.Deleted || env.Data.ID != id {
		t.Errorf("expected deleted confirmation, got %+v", env.Data)
	}

	rec, env = doRequest(t, router, http.MethodGet, "/api/v1/tasks/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}

	rec, _ = doRequest(t, router, http.MethodDelete, "/api/v1/tasks/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeat delete, got %d", rec.Code)
	}
}

func TestListTasksEndpoint(t *testing.T) {
	store := newFakeTaskStore()
	router := newTaskRouter(store, "user-1")

	doRequest(t, router, http.MethodPost, "/api/v1/tasks", `{"title":"one"}`)
	_, second := doRequest(t, router, http.MethodPost, "/api/v1/tasks", `{"title":"two"}`)
	doRequest(t, router, http.MethodPatch, "/api/v1/tasks/"+second.Data.ID+"/complete", "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks?completed=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var env struct {
		Success bool `json:"success"`
		Data    []struct {
			Title     string `json:"title"`
			Completed bool   `json:"completed"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(env.Data) != 1 || env.Data[0].Title != "two" {
		t.Errorf("expected only completed task, got %+v", env.Data)
	}
}

func TestListTasksEmptyIsArray(t *testing.T) {
	router := newTaskRouter(newFakeTaskStore(), "user-1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}
