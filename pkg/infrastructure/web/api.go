package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/taskboard/pkg/application"
	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
)

type listResponse struct {
	Tasks  []todo.Row `json:"tasks"`
	Amount int        `json:"amount"`
}

type addRequest struct {
	Text string `json:"text"`
}

type updateRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

type orderRequest struct {
	Keys []string `json:"keys"`
}

type amountRequest struct {
	// Amount accepts a JSON number or string.
	Amount json.RawMessage `json:"amount"`
}

type amountResponse struct {
	Amount int `json:"amount"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	rows := s.svc.Load(r.Context())
	writeJSON(w, http.StatusOK, listResponse{Tasks: nonNil(rows), Amount: s.svc.Amount()})
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if !decode(w, r, &req) {
		return
	}
	row, err := s.svc.Add(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

func (s *Server) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteAll(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var req updateRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Text == nil && req.Completed == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "nothing to update"})
		return
	}

	var (
		row todo.Row
		err error
	)
	if req.Text != nil {
		if row, err = s.svc.Edit(r.Context(), key, *req.Text); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if req.Completed != nil {
		if row, err = s.svc.SetCompleted(r.Context(), key, *req.Completed); err != nil {
			s.writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleRemoveTask(w http.ResponseWriter, r *http.Request) {
	if _, err := s.svc.Remove(r.Context(), r.PathValue("key")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.svc.Reorder(r.Context(), req.Keys); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Tasks: nonNil(s.svc.Snapshot()), Amount: s.svc.Amount()})
}

func (s *Server) handleGetAmount(w http.ResponseWriter, r *http.Request) {
	s.svc.Load(r.Context())
	writeJSON(w, http.StatusOK, amountResponse{Amount: s.svc.Amount()})
}

func (s *Server) handleSetAmount(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decode(w, r, &req) {
		return
	}
	raw := strings.TrimSpace(string(req.Amount))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	amount, err := s.svc.SetAmount(r.Context(), raw)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, amountResponse{Amount: amount})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.Reconcile(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Tasks: nonNil(rows), Amount: s.svc.Amount()})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrEmptyText),
		errors.Is(err, application.ErrInvalidAmount),
		errors.Is(err, application.ErrInvalidOrder):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrDuplicateText):
		return http.StatusConflict
	case errors.Is(err, application.ErrTemplateUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func nonNil(rows []todo.Row) []todo.Row {
	if rows == nil {
		return []todo.Row{}
	}
	return rows
}
