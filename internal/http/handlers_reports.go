package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

type (
	periodResponse struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}

	categoryStatusResponse struct {
		ID             uuid.UUID `json:"id"`
		Name           string    `json:"name"`
		SpentCents     int64     `json:"spent_cents"`
		BudgetCents    *int64    `json:"budget_cents"`
		RemainingCents *int64    `json:"remaining_cents"`
		PercentUsed    int       `json:"percent_used"`
		Level          string    `json:"level"`
	}

	totalStatusResponse struct {
		SpentCents  int64  `json:"spent_cents"`
		BudgetCents int64  `json:"budget_cents"`
		HasBudget   bool   `json:"has_budget"`
		PercentUsed int    `json:"percent_used"`
		Level       string `json:"level"`
	}

	timeBucketResponse struct {
		Label      string `json:"label"`
		Date       string `json:"date"`
		TotalCents int64  `json:"total_cents"`
	}

	allocationResponse struct {
		AllocatedCents int64                        `json:"allocated_cents"`
		Percent        int                          `json:"percent"`
		OverAllocated  bool                         `json:"over_allocated"`
		PerCategory    []categoryAllocationResponse `json:"per_category"`
	}

	categoryAllocationResponse struct {
		ID          uuid.UUID `json:"id"`
		Name        string    `json:"name"`
		BudgetCents int64     `json:"budget_cents"`
		Percent     int       `json:"percent"`
	}
)

func toPeriodResponse(p core.Period) periodResponse {
	return periodResponse{
		Start: p.Start.Format("2006-01-02"),
		End:   p.End.Format("2006-01-02"),
	}
}

func toCategoryStatusResponse(s core.CategorySpendStatus) categoryStatusResponse {
	resp := categoryStatusResponse{
		ID:          s.Category.ID,
		Name:        s.Category.Name,
		SpentCents:  s.Spent.Cents,
		PercentUsed: s.PercentUsed,
		Level:       string(s.Level),
	}
	if s.HasBudget {
		budget := s.Category.MonthlyBudget.Cents
		remaining := s.Remaining.Cents
		resp.BudgetCents = &budget
		resp.RemainingCents = &remaining
	}
	return resp
}

// handleReportCategories grades every category's period spending against
// its budget, plus the overall total. Defaults to the current budget
// period; from/to override it.
func (s *Server) handleReportCategories(w http.ResponseWriter, r *http.Request) {
	period, err := periodQuery(r, s.svc.CurrentPeriod())
	if err != nil {
		writeError(w, err)
		return
	}

	statuses := s.svc.CategorySpendStatuses(period)
	rows := make([]categoryStatusResponse, 0, len(statuses))
	for _, status := range statuses {
		rows = append(rows, toCategoryStatusResponse(status))
	}
	total := s.svc.TotalSpendStatus(period)

	writeJSON(w, http.StatusOK, struct {
		Period     periodResponse           `json:"period"`
		Categories []categoryStatusResponse `json:"categories"`
		Total      totalStatusResponse      `json:"total"`
	}{
		Period:     toPeriodResponse(period),
		Categories: rows,
		Total: totalStatusResponse{
			SpentCents:  total.Spent.Cents,
			BudgetCents: total.Budget.Cents,
			HasBudget:   total.HasBudget,
			PercentUsed: total.PercentUsed,
			Level:       string(total.Level),
		},
	})
}

// handleReportTimeline buckets spending over time. granularity is one of
// daily, weekly, monthly, or custom (which requires from/to); date anchors
// the non-custom granularities and defaults to today.
func (s *Server) handleReportTimeline(w http.ResponseWriter, r *http.Request) {
	granularity := core.Granularity(strings.TrimSpace(r.URL.Query().Get("granularity")))
	if granularity == "" {
		granularity = core.GranularityDaily
	}
	if err := granularity.Validate(); err != nil {
		writeError(w, err)
		return
	}

	ref := core.DateOf(time.Now())
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		parsed, err := parseDate(v)
		if err != nil {
			writeError(w, err)
			return
		}
		ref = parsed
	}

	var custom core.Period
	if granularity == core.GranularityCustom {
		period, err := periodQuery(r, core.Period{})
		if err != nil {
			writeError(w, err)
			return
		}
		if period.Start.IsZero() {
			writeError(w, core.ErrInvalidPeriod)
			return
		}
		custom = period
	}

	buckets, err := s.svc.Timeline(granularity, ref, custom)
	if err != nil {
		writeError(w, err)
		return
	}

	rows := make([]timeBucketResponse, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, timeBucketResponse{
			Label:      b.Label,
			Date:       b.Date.Format("2006-01-02"),
			TotalCents: b.Total.Cents,
		})
	}
	writeJSON(w, http.StatusOK, struct {
		Granularity string               `json:"granularity"`
		Buckets     []timeBucketResponse `json:"buckets"`
	}{Granularity: string(granularity), Buckets: rows})
}

const defaultHistoryPoints = 30

// handleReportBalanceHistory reconstructs the total balance series ending
// at the current balance, one point per transaction step, front-padded
// flat when history is short.
func (s *Server) handleReportBalanceHistory(w http.ResponseWriter, r *http.Request) {
	points, err := intQuery(r, "points", defaultHistoryPoints)
	if err != nil || points < 2 || points > 365 {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "points must be between 2 and 365"})
		return
	}

	series := s.svc.BalanceHistory(points)
	cents := make([]int64, len(series))
	for i, m := range series {
		cents[i] = m.Cents
	}
	writeJSON(w, http.StatusOK, struct {
		Points []int64 `json:"points"`
	}{Points: cents})
}

func (s *Server) handleReportTrend(w http.ResponseWriter, r *http.Request) {
	trend := s.svc.Trend()
	writeJSON(w, http.StatusOK, struct {
		NetCents        int64 `json:"net_cents"`
		PercentOfBudget int   `json:"percent_of_budget"`
		Positive        bool  `json:"positive"`
	}{NetCents: trend.Net.Cents, PercentOfBudget: trend.PercentOfBudget, Positive: trend.Positive})
}

func (s *Server) handleReportHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Score int `json:"score"`
	}{Score: s.svc.HealthScore()})
}

func (s *Server) handleBudgetAllocation(w http.ResponseWriter, r *http.Request) {
	allocation := s.svc.Allocation()
	per := make([]categoryAllocationResponse, 0, len(allocation.PerCategory))
	for _, ca := range allocation.PerCategory {
		per = append(per, categoryAllocationResponse{
			ID:          ca.Category.ID,
			Name:        ca.Category.Name,
			BudgetCents: ca.Budget.Cents,
			Percent:     ca.Percent,
		})
	}
	writeJSON(w, http.StatusOK, allocationResponse{
		AllocatedCents: allocation.AllocatedTotal.Cents,
		Percent:        allocation.Percent,
		OverAllocated:  allocation.OverAllocated,
		PerCategory:    per,
	})
}

// handleBudgetProjection previews committing amount_cents as the budget of
// category_id (absent for a brand-new category) without mutating anything.
func (s *Server) handleBudgetProjection(w http.ResponseWriter, r *http.Request) {
	amountStr := strings.TrimSpace(r.URL.Query().Get("amount_cents"))
	cents, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil || cents < 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "invalid amount_cents parameter"})
		return
	}

	var categoryID *uuid.UUID
	if v := strings.TrimSpace(r.URL.Query().Get("category_id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "invalid category_id parameter"})
			return
		}
		categoryID = &id
	}

	projection := s.svc.ProjectedAllocation(categoryID, core.Money{Cents: cents})
	writeJSON(w, http.StatusOK, struct {
		ProjectedCents int64 `json:"projected_cents"`
		Percent        int   `json:"percent"`
		WouldExceed    bool  `json:"would_exceed"`
	}{
		ProjectedCents: projection.ProjectedTotal.Cents,
		Percent:        projection.Percent,
		WouldExceed:    projection.WouldExceed,
	})
}
