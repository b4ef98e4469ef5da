package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"tasklist/internal/service"
)

// APIServer emulates a json-server /tasks resource over HTTP.
type APIServer struct {
	*httptest.Server

	mu       sync.Mutex
	tasks    []service.Task
	numeric  bool
	nextID   int
	failures map[string]int
	delay    time.Duration
	requests []string
}

// NewAPIServer starts an emulator that is closed when the test ends.
// New tasks get UUIDs unless UseNumericIDs is called.
func NewAPIServer(t testing.TB) *APIServer {
	t.Helper()
	s := &APIServer{nextID: 1, failures: make(map[string]int)}

	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(s.intercept)
	r.Get("/tasks", s.handleList)
	r.Post("/tasks", s.handleCreate)
	r.Patch("/tasks/{id}", s.handlePatch)
	r.Delete("/tasks/{id}", s.handleDelete)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// UseNumericIDs makes the server assign and send integer IDs.
func (s *APIServer) UseNumericIDs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.numeric = true
}

// Seed adds tasks to the resource.
func (s *APIServer) Seed(tasks ...service.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, tasks...)
}

// Tasks returns the stored tasks.
func (s *APIServer) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// FailWith makes every request with method answer status.
func (s *APIServer) FailWith(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = status
}

// SetDelay delays every response by d.
func (s *APIServer) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Requests returns the requests received as "METHOD /path".
func (s *APIServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

func (s *APIServer) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		status, fail := s.failures[r.Method]
		delay := s.delay
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if fail {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *APIServer) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]map[string]any, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, s.encodeLocked(t))
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *APIServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var draft service.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	task := service.Task{Title: draft.Title, Completed: draft.Completed}
	if s.numeric {
		task.ID = strconv.Itoa(s.nextID)
		s.nextID++
	} else {
		task.ID = uuid.NewString()
	}
	s.tasks = append(s.tasks, task)
	body := s.encodeLocked(task)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, body)
}

func (s *APIServer) handlePatch(w http.ResponseWriter, r *http.Request) {
	var patch service.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	i := s.indexLocked(chi.URLParam(r, "id"))
	if i < 0 {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	s.tasks[i].Apply(patch)
	body := s.encodeLocked(s.tasks[i])
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, body)
}

func (s *APIServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	i := s.indexLocked(chi.URLParam(r, "id"))
	if i < 0 {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *APIServer) indexLocked(id string) int {
	return slices.IndexFunc(s.tasks, func(t service.Task) bool { return t.ID == id })
}

// encodeLocked sends numeric IDs as JSON numbers in numeric mode.
func (s *APIServer) encodeLocked(t service.Task) map[string]any {
	var id any = t.ID
	if s.numeric {
		if n, err := strconv.Atoi(t.ID); err == nil {
			id = n
		}
	}
	return map[string]any{"id": id, "title": t.Title, "completed": t.Completed}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
