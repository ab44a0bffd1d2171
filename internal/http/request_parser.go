package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

// Request payloads. Monetary amounts come in as decimal strings ("12.34"
// or "12,34"); budgets come in as cents to allow explicit zero/null.
type (
	walletRequest struct {
		Name         string `json:"name"`
		Type         string `json:"type"`
		Color        string `json:"color"`
		BalanceCents int64  `json:"balance_cents"`
	}

	categoryRequest struct {
		Name               string `json:"name"`
		Icon               string `json:"icon"`
		Color              string `json:"color"`
		MonthlyBudgetCents *int64 `json:"monthly_budget_cents"`
	}

	transactionRequest struct {
		Type        string  `json:"type"`
		Amount      string  `json:"amount"`
		Description string  `json:"description"`
		Date        string  `json:"date"`
		CategoryID  *string `json:"category_id"`
		WalletID    *string `json:"wallet_id"`
	}

	profileRequest struct {
		TotalBudgetCents int64 `json:"total_budget_cents"`
		ResetDay         int   `json:"reset_day"`
		WeekStart        int   `json:"week_start"`
	}
)

const maxBodyBytes = 64 << 10

var errMalformedBody = errors.New("malformed request body")

// decodeJSON reads a single JSON object from the body, rejecting unknown
// fields and trailing garbage.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if dec.More() {
		return errMalformedBody
	}
	return nil
}

func (req walletRequest) toDomain(id uuid.UUID) core.Wallet {
	return core.Wallet{
		ID:      id,
		Name:    strings.TrimSpace(req.Name),
		Balance: core.Money{Cents: req.BalanceCents},
		Type:    core.WalletType(req.Type),
		Color:   req.Color,
	}
}

func (req categoryRequest) toDomain(id uuid.UUID) core.Category {
	c := core.Category{
		ID:    id,
		Name:  strings.TrimSpace(req.Name),
		Icon:  req.Icon,
		Color: req.Color,
	}
	if req.MonthlyBudgetCents != nil {
		c.MonthlyBudget = &core.Money{Cents: *req.MonthlyBudgetCents}
	}
	return c
}

func (req transactionRequest) toDomain(id uuid.UUID, now time.Time) (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	categoryID, err := parseOptionalUUID(req.CategoryID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("category_id: %w", err)
	}
	walletID, err := parseOptionalUUID(req.WalletID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("wallet_id: %w", err)
	}

	return core.Transaction{
		ID:          id,
		Type:        core.TransactionType(req.Type),
		Amount:      core.Money{Cents: cents},
		Description: strings.TrimSpace(req.Description),
		Date:        date,
		CategoryID:  categoryID,
		WalletID:    walletID,
		CreatedAt:   now,
	}, nil
}

func (req profileRequest) toDomain() core.Profile {
	return core.Profile{
		TotalBudget: core.Money{Cents: req.TotalBudgetCents},
		ResetDay:    req.ResetDay,
		WeekStart:   time.Weekday(req.WeekStart),
	}
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (core.Date, error) {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(dateStr))
	if err != nil {
		return core.Date{}, core.ErrInvalidDate
	}
	return core.DateOf(parsed), nil
}

func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*s))
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// pathID extracts the {id} path segment as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("id"))
}

// periodQuery reads optional from/to query parameters, falling back to the
// supplied period when both are absent.
func periodQuery(r *http.Request, fallback core.Period) (core.Period, error) {
	fromStr := strings.TrimSpace(r.URL.Query().Get("from"))
	toStr := strings.TrimSpace(r.URL.Query().Get("to"))
	if fromStr == "" && toStr == "" {
		return fallback, nil
	}
	if fromStr == "" || toStr == "" {
		return core.Period{}, core.ErrInvalidPeriod
	}
	from, err := parseDate(fromStr)
	if err != nil {
		return core.Period{}, err
	}
	to, err := parseDate(toStr)
	if err != nil {
		return core.Period{}, err
	}
	if to.Before(from.Time) {
		return core.Period{}, core.ErrInvalidPeriod
	}
	return core.NewPeriod(from, to), nil
}

// intQuery reads an integer query parameter with a default.
func intQuery(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return n, nil
}
