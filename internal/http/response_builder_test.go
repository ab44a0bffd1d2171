package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/session"
)

func TestWriteErrorMapping(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", &session.NotFoundError{Resource: "wallet", ID: id}, http.StatusNotFound},
		{"conflict", &session.ConflictError{Resource: "wallet", ID: id, Blocking: 3, BlockingTotal: core.Money{Cents: 4500}}, http.StatusConflict},
		{"persistence", &session.PersistenceError{Op: "create transaction", Err: core.ErrInvalidAmount}, http.StatusInternalServerError},
		{"validation sentinel", core.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{"reassign to self", session.ErrReassignToSelf, http.StatusUnprocessableEntity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error == "" {
				t.Fatal("empty error message")
			}
		})
	}
}

func TestWriteErrorConflictDetail(t *testing.T) {
	id := uuid.New()
	rec := httptest.NewRecorder()
	writeError(rec, &session.ConflictError{Resource: "wallet", ID: id, Blocking: 2, BlockingTotal: core.Money{Cents: 999}})

	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Resource != "wallet" || body.ID == nil || *body.ID != id {
		t.Fatalf("body = %+v", body)
	}
	if body.Blocking != 2 || body.BlockingCents != 999 {
		t.Fatalf("blocking detail = %+v", body)
	}
}

func TestToTransactionResponse(t *testing.T) {
	walletID := uuid.New()
	txn := core.Transaction{
		ID:          uuid.New(),
		Type:        core.Expense,
		Amount:      core.Money{Cents: 1234},
		Description: "coffee",
		Date:        core.NewDate(2026, 3, 10),
		WalletID:    &walletID,
	}
	got := toTransactionResponse(txn)
	if got.Amount != "12.34" || got.Date != "2026-03-10" {
		t.Fatalf("response = %+v", got)
	}
	if got.WalletID == nil || *got.WalletID != walletID {
		t.Fatalf("wallet = %v", got.WalletID)
	}
}
