package http

import (
	"encoding/json"
	"net/http"

	"github.com/kengo-k/taxdesk-sub002/internal/core"
	"github.com/kengo-k/taxdesk-sub002/internal/log"
	"github.com/kengo-k/taxdesk-sub002/internal/services"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Data(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Repo.Ping(r.Context()); err != nil {
		s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		NewJSONResponse().
			Status(http.StatusServiceUnavailable).
			Data(map[string]string{"status": "unavailable"}).
			Write(w)
		return
	}
	NewJSONResponse().Data(map[string]string{"status": "ready"}).Write(w)
}

func (s *Server) handleListFiscalYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.deps.Repo.ListFiscalYears(r.Context())
	if err != nil {
		ErrorResponse(r, core.Unexpected(err)).Write(w)
		return
	}
	NewJSONResponse().Data(map[string]any{"fiscalYears": years}).Write(w)
}

func (s *Server) handleListJournals(w http.ResponseWriter, r *http.Request) {
	fy, err := PathFiscalYear(r)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	filter, err := ParseJournalFilter(r.URL.Query())
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	js, err := s.deps.Journals.ListJournals(r.Context(), fy, filter)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	if js == nil {
		js = []core.Journal{}
	}
	NewJSONResponse().Data(map[string]any{"journals": js}).Write(w)
}

type createJournalBody struct {
	Date          core.Date `json:"date"`
	DebitAccount  string    `json:"debitAccount"`
	DebitAmount   core.Yen  `json:"debitAmount"`
	CreditAccount string    `json:"creditAccount"`
	CreditAmount  core.Yen  `json:"creditAmount"`
	Note          string    `json:"note"`
}

func (s *Server) handleCreateJournal(w http.ResponseWriter, r *http.Request) {
	fy, err := PathFiscalYear(r)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	var body createJournalBody
	if err := DecodeJSON(w, r, &body); err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	j, err := s.deps.Journals.CreateJournal(r.Context(), core.JournalInput{
		FiscalYear:    fy,
		Date:          body.Date,
		DebitAccount:  body.DebitAccount,
		DebitAmount:   body.DebitAmount,
		CreditAccount: body.CreditAccount,
		CreditAmount:  body.CreditAmount,
		Note:          body.Note,
	})
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Data(j).Write(w)
}

func (s *Server) handleGetJournal(w http.ResponseWriter, r *http.Request) {
	fy, err := PathFiscalYear(r)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	id, err := PathID(r, "id")
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	j, err := s.deps.Journals.GetJournal(r.Context(), fy, id)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	NewJSONResponse().Data(j).Write(w)
}

func (s *Server) handleCheckedStatuses(w http.ResponseWriter, r *http.Request) {
	fy, err := PathFiscalYear(r)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	statuses, err := s.deps.Journals.ListCheckedStatuses(r.Context(), fy)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	NewJSONResponse().Data(map[string]any{"statuses": statuses}).Write(w)
}

func (s *Server) handleSetChecked(w http.ResponseWriter, r *http.Request) {
	fy, err := PathFiscalYear(r)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	id, err := PathID(r, "id")
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	var body struct {
		Checked *checkedFlag `json:"checked"`
	}
	if err := DecodeJSON(w, r, &body); err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	if body.Checked == nil {
		BadRequestError(r, "checked is required").Write(w)
		return
	}
	j, err := s.deps.Journals.SetChecked(r.Context(), fy, id, bool(*body.Checked))
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	NewJSONResponse().Data(j).Write(w)
}

func (s *Server) handleDeleteJournals(w http.ResponseWriter, r *http.Request) {
	fy, err := PathFiscalYear(r)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	var body struct {
		IDs []int64 `json:"ids"`
	}
	if err := DecodeJSON(w, r, &body); err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	n, err := s.deps.Journals.SoftDelete(r.Context(), fy, body.IDs)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	NewJSONResponse().Data(map[string]int64{"count": n}).Write(w)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	fy, err := PathFiscalYear(r)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	var body struct {
		Requests []json.RawMessage `json:"requests"`
	}
	if err := DecodeJSON(w, r, &body); err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	requests, err := services.DecodeReportRequests(body.Requests)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	results, err := s.deps.Reports.Assemble(r.Context(), fy, requests)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	NewJSONResponse().Data(map[string]any{"results": results}).Write(w)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	fy, err := PathFiscalYear(r)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	month, err := core.ParseMonthFilter(r.URL.Query().Get("month"))
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	account := r.PathValue("account")
	lines, err := s.deps.Aggregator.Ledger(r.Context(), fy, account, month)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	NewJSONResponse().Data(map[string]any{
		"account": account,
		"count":   len(lines),
		"lines":   lines,
	}).Write(w)
}

func (s *Server) handleCashBalance(w http.ResponseWriter, r *http.Request) {
	fy, err := PathFiscalYear(r)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	balance, err := s.deps.Aggregator.CashBalance(r.Context(), fy)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	NewJSONResponse().Data(balance).Write(w)
}

func (s *Server) handleAccountCounts(w http.ResponseWriter, r *http.Request) {
	fy, err := PathFiscalYear(r)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	counts, err := s.deps.Aggregator.CountByAccount(r.Context(), fy)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	NewJSONResponse().Data(map[string]any{"accounts": counts}).Write(w)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	fy, err := PathFiscalYear(r)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	payments, err := s.deps.Payroll.GetPaymentStatuses(r.Context(), fy)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	if payments == nil {
		payments = []core.PayrollPayment{}
	}
	NewJSONResponse().Data(map[string]any{"payments": payments}).Write(w)
}

func (s *Server) handleCheckPayments(w http.ResponseWriter, r *http.Request) {
	fy, err := PathFiscalYear(r)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	dates, err := ParseDates(r.URL.Query())
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	checks, err := s.deps.Payroll.CheckDates(r.Context(), fy, dates)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	NewJSONResponse().Data(map[string]any{"checks": checks}).Write(w)
}

func (s *Server) handleSetPayment(w http.ResponseWriter, r *http.Request) {
	fy, err := PathFiscalYear(r)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	month, err := core.ParseMonth(r.PathValue("month"))
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	var body struct {
		IsPaid *bool `json:"isPaid"`
	}
	if err := DecodeJSON(w, r, &body); err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	if body.IsPaid == nil {
		BadRequestError(r, "isPaid is required").Write(w)
		return
	}
	p, err := s.deps.Payroll.SetPaymentStatus(r.Context(), fy, month, *body.IsPaid)
	if err != nil {
		ErrorResponse(r, err).Write(w)
		return
	}
	NewJSONResponse().Data(p).Write(w)
}
