package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

type (
	balanceResponse struct {
		Date    string `json:"date"`
		Balance string `json:"balance"`
	}

	transactionRequest struct {
		Amount      string `json:"amount"`
		Kind        string `json:"kind"`
		Date        string `json:"date"`
		Category    string `json:"category"`
		Recurring   bool   `json:"recurring"`
		Interval    string `json:"interval"`
		Description string `json:"description"`
	}

	transactionResponse struct {
		ID          int64  `json:"id"`
		Amount      string `json:"amount"`
		Kind        string `json:"kind"`
		Date        string `json:"date"`
		Category    string `json:"category,omitempty"`
		Recurring   bool   `json:"recurring"`
		Interval    string `json:"interval,omitempty"`
		Description string `json:"description,omitempty"`
	}

	categoryRequest struct {
		Name         string `json:"name"`
		MonthlyLimit string `json:"monthly_limit,omitempty"`
	}

	categoryResponse struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		MonthlyLimit string `json:"monthly_limit,omitempty"`
		Transactions int    `json:"transactions"`
	}

	checkpointRequest struct {
		Date   string `json:"date"`
		Amount string `json:"amount"`
	}

	totalsResponse struct {
		Income  string `json:"income"`
		Expense string `json:"expense"`
		Net     string `json:"net"`
	}

	reportResponse struct {
		Window     string                    `json:"window"`
		Kind       string                    `json:"kind"`
		Totals     totalsResponse            `json:"totals"`
		ByCategory map[string]totalsResponse `json:"by_category"`
	}
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).String(),
	})
}

// handleBalance serves GET /api/v1/balance?date=YYYY-MM-DD, defaulting to
// today. The projection runs over a fresh snapshot unless cached.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	target, err := parseDateParam(r, "date", core.Today(time.Now()))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	key := target.String()
	if resp, ok := s.balanceCache.Get(key); ok {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load snapshot failed")
		return
	}

	balance := services.NewProjector(snap).ProjectBalance(target)
	resp := balanceResponse{Date: target.String(), Balance: balance.String()}
	s.balanceCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

// handleReport serves GET /api/v1/report?day=&month=&year=. Missing pieces
// of the window default from today, matching the CLI behavior.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	day := parseIntParam(r, "day")
	month := parseIntParam(r, "month")
	year := parseIntParam(r, "year")

	window := services.ResolveWindow(day, month, year, core.Today(time.Now()))

	key := string(window.Kind) + ":" + window.Resolved()
	report, ok := s.reportCache.Get(key)
	if !ok {
		snap, err := s.ledger.Snapshot(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load snapshot failed")
			return
		}
		report = services.NewReporter(snap).Aggregate(window)
		s.reportCache.Set(key, report)
	}

	writeJSON(w, http.StatusOK, toReportResponse(report))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	date, err := parseDateOrToday(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	t := core.Transaction{
		Amount:      core.Money{Cents: cents},
		Kind:        core.TransactionKind(req.Kind),
		OccurredOn:  date,
		Recurring:   req.Recurring,
		Interval:    core.RecurrenceInterval(req.Interval),
		Description: req.Description,
	}
	if err := t.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, err := s.ledger.RecordTransaction(r.Context(), t, req.Category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "record transaction failed")
		return
	}
	s.invalidate()

	writeJSON(w, http.StatusCreated, transactionResponse{
		ID:          stored.ID,
		Amount:      stored.Amount.String(),
		Kind:        string(stored.Kind),
		Date:        stored.OccurredOn.String(),
		Category:    req.Category,
		Recurring:   stored.Recurring,
		Interval:    intervalLabel(stored),
		Description: stored.Description,
	})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	deleted, err := s.ledger.RemoveTransaction(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "delete transaction failed")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	s.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load snapshot failed")
		return
	}

	out := make([]categoryResponse, 0, len(snap.Categories))
	for _, c := range snap.Categories {
		resp := categoryResponse{
			ID:           c.ID,
			Name:         c.Name,
			Transactions: len(c.TransactionIDs),
		}
		if c.MonthlyLimit != nil {
			resp.MonthlyLimit = c.MonthlyLimit.String()
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var limit *core.Money
	if req.MonthlyLimit != "" {
		cents, err := core.ParseDecimalToCents(req.MonthlyLimit)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid monthly limit")
			return
		}
		limit = &core.Money{Cents: cents}
	}

	cat, err := s.ledger.CreateCategory(r.Context(), req.Name, limit)
	if err != nil {
		if err == core.ErrEmptyCategoryName {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "create category failed")
		return
	}
	s.invalidate()

	resp := categoryResponse{ID: cat.ID, Name: cat.Name}
	if cat.MonthlyLimit != nil {
		resp.MonthlyLimit = cat.MonthlyLimit.String()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.ledger.RemoveCategory(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "delete category failed")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	s.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetCheckpoint(w http.ResponseWriter, r *http.Request) {
	var req checkpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	cents, err := core.ParseSignedDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	if err := s.ledger.WriteCheckpoint(r.Context(), date, core.Money{Cents: cents}); err != nil {
		writeError(w, http.StatusInternalServerError, "write checkpoint failed")
		return
	}
	s.invalidate()

	writeJSON(w, http.StatusCreated, map[string]string{
		"date":   date.String(),
		"amount": core.Money{Cents: cents}.String(),
	})
}

func toReportResponse(report services.SpendingReport) reportResponse {
	resp := reportResponse{
		Window:     report.Window,
		Kind:       string(report.Kind),
		Totals:     toTotalsResponse(report.Totals),
		ByCategory: make(map[string]totalsResponse, len(report.ByCategory)),
	}
	for name, totals := range report.ByCategory {
		resp.ByCategory[name] = toTotalsResponse(totals)
	}
	return resp
}

func toTotalsResponse(t services.Totals) totalsResponse {
	return totalsResponse{
		Income:  t.Income.String(),
		Expense: t.Expense.String(),
		Net:     t.Net.String(),
	}
}

func intervalLabel(t core.Transaction) string {
	if !t.Recurring {
		return ""
	}
	return string(t.Interval)
}
