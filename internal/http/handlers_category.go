package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"bilancio/internal/log"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories := s.svc.Store().Categories()
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "category not found"})
		return
	}
	c, ok := s.svc.Store().Category(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "category not found", ID: &id})
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.svc.CreateCategory(r.Context(), req.toDomain(uuid.Nil))
	if err != nil {
		writeError(w, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Category created",
		log.FieldCategoryID, created.ID.String(),
		"has_budget", created.MonthlyBudget != nil)
	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "category not found"})
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.svc.UpdateCategory(r.Context(), req.toDomain(id))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(updated))
}

// handleDeleteCategory deletes a category. The optional reassign_to query
// parameter moves its transactions to another category; without it their
// category reference is cleared.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "category not found"})
		return
	}

	var reassignTo *uuid.UUID
	if v := strings.TrimSpace(r.URL.Query().Get("reassign_to")); v != "" {
		target, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "invalid reassign_to parameter"})
			return
		}
		reassignTo = &target
	}

	if err := s.svc.DeleteCategory(r.Context(), id, reassignTo); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
