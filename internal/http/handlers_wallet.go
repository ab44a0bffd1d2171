package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	wallets := s.svc.Store().Wallets()
	out := make([]walletResponse, 0, len(wallets))
	for _, wallet := range wallets {
		out = append(out, toWalletResponse(wallet))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "wallet not found"})
		return
	}
	wallet, ok := s.svc.Store().Wallet(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "wallet not found", ID: &id})
		return
	}
	writeJSON(w, http.StatusOK, toWalletResponse(wallet))
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.svc.CreateWallet(r.Context(), req.toDomain(uuid.Nil))
	if err != nil {
		writeError(w, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Wallet created",
		log.FieldWalletID, created.ID.String(),
		"wallet_type", string(created.Type))
	writeJSON(w, http.StatusCreated, toWalletResponse(created))
}

func (s *Server) handleUpdateWallet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "wallet not found"})
		return
	}
	var req walletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.svc.UpdateWallet(r.Context(), req.toDomain(id))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWalletResponse(updated))
}

func (s *Server) handleDeleteWallet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "wallet not found"})
		return
	}
	if err := s.svc.DeleteWallet(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSufficientFunds is the advisory pre-flight: it reports whether the
// wallet covers the amount but never blocks anything. 200 either way.
func (s *Server) handleSufficientFunds(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "wallet not found"})
		return
	}

	amountStr := strings.TrimSpace(r.URL.Query().Get("amount"))
	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		writeError(w, err)
		return
	}

	sufficient, err := s.svc.CheckSufficientFunds(id, core.Money{Cents: cents})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := struct {
		Sufficient bool   `json:"sufficient"`
		Warning    string `json:"warning,omitempty"`
	}{Sufficient: sufficient}
	if !sufficient {
		resp.Warning = "insufficient funds: the wallet balance does not cover this amount"
	}
	writeJSON(w, http.StatusOK, resp)
}
