package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/todoreminder/pkg/auth"
	appsvcs "github.com/ghuser/todoreminder/services/todo/application/services"
	"github.com/ghuser/todoreminder/services/todo/domain"
	"github.com/ghuser/todoreminder/services/todo/domain/models"
)

type memRepo struct {
	mu     sync.Mutex
	items  map[string]*models.Todo
	nextID int
}

func (m *memRepo) FetchAll(_ context.Context, userID string) ([]*models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Todo
	for _, t := range m.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memRepo) Get(_ context.Context, userID, id string) (*models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.items[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTodoNotFound
	}
	return t, nil
}

func (m *memRepo) Create(_ context.Context, userID string, t *models.Todo) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = fmt.Sprintf("todo-%d", m.nextID)
	t.UserID = userID
	m.items[t.ID] = t
	return t.ID, nil
}

func (m *memRepo) Update(_ context.Context, userID, id string, t *models.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.items[id]; !ok || old.UserID != userID {
		return domain.ErrTodoNotFound
	}
	m.items[id] = t
	return nil
}

func (m *memRepo) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.items[id]; !ok || old.UserID != userID {
		return domain.ErrTodoNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memRepo) UserIDs(context.Context) ([]string, error) { return nil, nil }

// newTestRouter mounts the handlers the way TodoRoutes does, with a fixed
// user id standing in for the session middleware. An empty userID leaves
// the request unauthenticated.
func newTestRouter(userID string) (http.Handler, *memRepo) {
	repo := &memRepo{items: map[string]*models.Todo{}}
	svcs := &appsvcs.Services{Todo: appsvcs.NewTodoService(repo)}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if userID != "" {
				req = req.WithContext(auth.WithUserID(req.Context(), userID))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/todos", NewListTodosHandler(svcs).Execute)
	r.Post("/todos", NewPostTodoHandler(svcs).Execute)
	r.Get("/todos/{id}", NewGetTodoHandler(svcs).Execute)
	r.Put("/todos/{id}", NewPutTodoHandler(svcs).Execute)
	r.Delete("/todos/{id}", NewDeleteTodoHandler(svcs).Execute)
	return r, repo
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func future(d time.Duration) string {
	return time.Now().Add(d).UTC().Format(time.RFC3339)
}

func TestPostTodo(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"created", `{"title":"Buy milk","date":"` + future(time.Hour) + `"}`, http.StatusCreated},
		{"with location", `{"title":"Swim","date":"` + future(time.Hour) + `","latitude":35.1,"longitude":129}`, http.StatusCreated},
		{"malformed json", `{"title":`, http.StatusBadRequest},
		{"unknown field", `{"title":"x","date":"` + future(time.Hour) + `","done":true}`, http.StatusBadRequest},
		{"missing title", `{"date":"` + future(time.Hour) + `"}`, http.StatusUnprocessableEntity},
		{"blank title", `{"title":"   ","date":"` + future(time.Hour) + `"}`, http.StatusUnprocessableEntity},
		{"missing date", `{"title":"x"}`, http.StatusUnprocessableEntity},
		{"past date", `{"title":"x","date":"` + future(-time.Hour) + `"}`, http.StatusUnprocessableEntity},
		{"latitude out of range", `{"title":"x","date":"` + future(time.Hour) + `","latitude":95,"longitude":0}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, repo := newTestRouter("u1")
			w := do(t, h, http.MethodPost, "/todos", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				if len(repo.items) != 0 {
					t.Fatal("rejected request must not reach the store")
				}
				return
			}

			var resp TodoResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.ID == "" || w.Header().Get("Location") != "/api/todos/"+resp.ID {
				t.Fatalf("expected id and Location header, got %+v / %q", resp, w.Header().Get("Location"))
			}
		})
	}
}

func TestPostTodoPastDateNamesField(t *testing.T) {
	h, _ := newTestRouter("u1")
	w := do(t, h, http.MethodPost, "/todos", `{"title":"x","date":"`+future(-time.Minute)+`"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Fields["date"] != "Must be in the future" {
		t.Fatalf("expected a date field error, got %v", body.Fields)
	}
}

func TestPostTodoDefaultLocation(t *testing.T) {
	h, _ := newTestRouter("u1")
	w := do(t, h, http.MethodPost, "/todos", `{"title":"Read","date":"`+future(time.Hour)+`"}`)

	var resp TodoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Latitude != models.DefaultLocation.Latitude || resp.Longitude != models.DefaultLocation.Longitude {
		t.Fatalf("expected default location, got (%v, %v)", resp.Latitude, resp.Longitude)
	}
}

func TestListTodosSortedByDate(t *testing.T) {
	h, _ := newTestRouter("u1")
	for _, body := range []string{
		`{"title":"third","date":"` + future(3*time.Hour) + `"}`,
		`{"title":"first","date":"` + future(time.Hour) + `"}`,
		`{"title":"second","date":"` + future(2*time.Hour) + `"}`,
	} {
		if w := do(t, h, http.MethodPost, "/todos", body); w.Code != http.StatusCreated {
			t.Fatalf("seed: %d %s", w.Code, w.Body.String())
		}
	}

	w := do(t, h, http.MethodGet, "/todos", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp TodoListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var titles []string
	for _, it := range resp.Items {
		titles = append(titles, it.Title)
	}
	if strings.Join(titles, ",") != "first,second,third" {
		t.Fatalf("expected first,second,third got %v", titles)
	}
}

func TestTodoLifecycle(t *testing.T) {
	h, _ := newTestRouter("u1")

	w := do(t, h, http.MethodPost, "/todos", `{"title":"Draft","date":"`+future(time.Hour)+`"}`)
	var created TodoResponse
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	path := "/todos/" + created.ID

	if w := do(t, h, http.MethodGet, path, ""); w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}

	w = do(t, h, http.MethodPut, path, `{"title":"Final","date":"`+future(2*time.Hour)+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("put: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated TodoResponse
	_ = json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.ID != created.ID || updated.Title != "Final" {
		t.Fatalf("unexpected update %+v", updated)
	}

	if w := do(t, h, http.MethodDelete, path, ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, path, ""); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", w.Code)
	}
	if w := do(t, h, http.MethodDelete, path, ""); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", w.Code)
	}
}

func TestPutUnknownTodo(t *testing.T) {
	h, _ := newTestRouter("u1")
	w := do(t, h, http.MethodPut, "/todos/missing", `{"title":"x","date":"`+future(time.Hour)+`"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHandlersRequireUser(t *testing.T) {
	h, _ := newTestRouter("")
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/todos"},
		{http.MethodPost, "/todos"},
		{http.MethodGet, "/todos/1"},
		{http.MethodPut, "/todos/1"},
		{http.MethodDelete, "/todos/1"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			if w := do(t, h, tc.method, tc.path, `{}`); w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}
