package http

import (
	"net/http"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/log"

	"github.com/google/uuid"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	period, err := periodQuery(r, core.Period{})
	if err != nil {
		writeError(w, err)
		return
	}
	filtered := !period.Start.IsZero()

	transactions := s.svc.Store().Transactions()
	out := make([]transactionResponse, 0, len(transactions))
	for _, t := range transactions {
		if filtered && !period.Contains(t.Date) {
			continue
		}
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "transaction not found"})
		return
	}
	t, ok := s.svc.Store().Transaction(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "transaction not found", ID: &id})
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	txn, err := req.toDomain(uuid.Nil, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := s.svc.CreateTransaction(r.Context(), txn)
	if err != nil {
		writeError(w, err)
		return
	}

	s.slog.LogTransactionRecorded(r.Context(), created.ID.String(), created.Description, created.Amount.Cents)
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "transaction not found"})
		return
	}
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	txn, err := req.toDomain(id, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.svc.UpdateTransaction(r.Context(), id, txn)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "transaction not found"})
		return
	}
	if err := s.svc.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.logger.InfoContext(r.Context(), "Transaction deleted", log.FieldTransactionID, id.String())
	w.WriteHeader(http.StatusNoContent)
}
