package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tasklist/internal/controller"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded || r.URL.Query().Has("reload") {
		// A failed load is shown inline and as an alert.
		if err := s.ctrl.LoadAndRender(r.Context()); err == nil {
			s.loaded = true
		}
	}

	alerts, pending := s.dialogs.flush()
	data := pageData{
		Alerts:  alerts,
		Confirm: pending,
		Input:   s.input.Value(),
		List:    s.list.html(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.log.Error("render page failed", "err", err)
	}
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.input.value = r.PostForm.Get("title")
	s.dialogs.begin(r.URL.Path, r.PostForm)
	if _, err := s.ctrl.AddTask(r.Context()); err != nil {
		s.log.Debug("add task rejected", "err", err)
	}
	s.mu.Unlock()

	seeOther(w, r)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	affordance := chi.URLParam(r, "action")
	if controller.ResolveAction(affordance) == controller.ActionNone {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.dialogs.begin(r.URL.Path, r.PostForm)
	err := s.ctrl.HandleAction(r.Context(), controller.Event{
		RowID:      chi.URLParam(r, "id"),
		Affordance: affordance,
	})
	if errors.Is(err, controller.ErrTaskNotFound) {
		s.dialogs.Alert("This task no longer exists.")
	}
	s.mu.Unlock()

	seeOther(w, r)
}

// seeOther sends the browser back to the page after a form post.
func seeOther(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
