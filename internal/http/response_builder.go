package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/session"
)

// Response payloads.
type (
	walletResponse struct {
		ID           uuid.UUID `json:"id"`
		Name         string    `json:"name"`
		Type         string    `json:"type"`
		Color        string    `json:"color,omitempty"`
		BalanceCents int64     `json:"balance_cents"`
		Balance      string    `json:"balance"`
	}

	categoryResponse struct {
		ID                 uuid.UUID `json:"id"`
		Name               string    `json:"name"`
		Icon               string    `json:"icon,omitempty"`
		Color              string    `json:"color,omitempty"`
		MonthlyBudgetCents *int64    `json:"monthly_budget_cents"`
	}

	transactionResponse struct {
		ID          uuid.UUID  `json:"id"`
		Type        string     `json:"type"`
		AmountCents int64      `json:"amount_cents"`
		Amount      string     `json:"amount"`
		Description string     `json:"description"`
		Date        string     `json:"date"`
		CategoryID  *uuid.UUID `json:"category_id"`
		WalletID    *uuid.UUID `json:"wallet_id"`
		CreatedAt   time.Time  `json:"created_at"`
	}

	profileResponse struct {
		TotalBudgetCents int64 `json:"total_budget_cents"`
		ResetDay         int   `json:"reset_day"`
		WeekStart        int   `json:"week_start"`
	}

	errorBody struct {
		Error         string     `json:"error"`
		Resource      string     `json:"resource,omitempty"`
		ID            *uuid.UUID `json:"id,omitempty"`
		Blocking      int        `json:"blocking_transactions,omitempty"`
		BlockingCents int64      `json:"blocking_total_cents,omitempty"`
	}
)

func toWalletResponse(w core.Wallet) walletResponse {
	return walletResponse{
		ID:           w.ID,
		Name:         w.Name,
		Type:         string(w.Type),
		Color:        w.Color,
		BalanceCents: w.Balance.Cents,
		Balance:      w.Balance.String(),
	}
}

func toCategoryResponse(c core.Category) categoryResponse {
	resp := categoryResponse{
		ID:    c.ID,
		Name:  c.Name,
		Icon:  c.Icon,
		Color: c.Color,
	}
	if c.MonthlyBudget != nil {
		cents := c.MonthlyBudget.Cents
		resp.MonthlyBudgetCents = &cents
	}
	return resp
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		AmountCents: t.Amount.Cents,
		Amount:      t.Amount.String(),
		Description: t.Description,
		Date:        t.Date.Format("2006-01-02"),
		CategoryID:  t.CategoryID,
		WalletID:    t.WalletID,
		CreatedAt:   t.CreatedAt,
	}
}

func toProfileResponse(p core.Profile) profileResponse {
	return profileResponse{
		TotalBudgetCents: p.TotalBudget.Cents,
		ResetDay:         p.ResetDay,
		WeekStart:        int(p.WeekStart),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain and session errors onto HTTP statuses: validation
// failures are 422, missing entities 404, referential conflicts 409 (with
// the blocking count and total so clients can offer remediation), and
// failed commits 500.
func writeError(w http.ResponseWriter, err error) {
	var notFound *session.NotFoundError
	if errors.As(err, &notFound) {
		id := notFound.ID
		writeJSON(w, http.StatusNotFound, errorBody{
			Error:    notFound.Error(),
			Resource: notFound.Resource,
			ID:       &id,
		})
		return
	}

	var conflict *session.ConflictError
	if errors.As(err, &conflict) {
		id := conflict.ID
		writeJSON(w, http.StatusConflict, errorBody{
			Error:         conflict.Error(),
			Resource:      conflict.Resource,
			ID:            &id,
			Blocking:      conflict.Blocking,
			BlockingCents: conflict.BlockingTotal.Cents,
		})
		return
	}

	var persistence *session.PersistenceError
	if errors.As(err, &persistence) {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "persistence failure, mutation rolled back"})
		return
	}

	if errors.Is(err, errMalformedBody) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
}
