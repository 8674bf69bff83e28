package services

import (
	"encoding/json"
	"fmt"

	"github.com/kengo-k/taxdesk-sub002/internal/core"
)

// ReportType is the wire tag of a report request.
type ReportType string

const (
	ReportBreakdown      ReportType = "breakdown"
	ReportCountByAccount ReportType = "count_by_account"
	ReportCountLedger    ReportType = "count_ledger"
	ReportCashBalance    ReportType = "cash_balance"
	ReportCheckStatus    ReportType = "check_status"
	ReportPaymentStatus  ReportType = "payment_status"
	ReportPaymentSummary ReportType = "payment_summary"
)

// ReportRequest is one of the request variants declared in this file. The
// unexported method keeps the set closed.
type ReportRequest interface {
	ReportType() ReportType
	withFiscalYear(fiscalYear string) ReportRequest
}

type BreakdownRequest struct {
	FiscalYear   string        `json:"-"`
	Kind         BreakdownKind `json:"kind"`
	Granularity  Granularity   `json:"granularity"`
	CategoryCode string        `json:"categoryCode,omitempty"`
}

type CountByAccountRequest struct {
	FiscalYear string `json:"-"`
}

// CountLedgerRequest counts one account's journals. An empty Month means the whole year.
type CountLedgerRequest struct {
	FiscalYear string `json:"-"`
	Account    string `json:"account"`
	Month      string `json:"month,omitempty"`
}

type CashBalanceRequest struct {
	FiscalYear string `json:"-"`
}

type CheckStatusRequest struct {
	FiscalYear string `json:"-"`
}

type PaymentStatusRequest struct {
	FiscalYear string `json:"-"`
}

type PaymentSummaryRequest struct {
	FiscalYear string `json:"-"`
}

func (BreakdownRequest) ReportType() ReportType      { return ReportBreakdown }
func (CountByAccountRequest) ReportType() ReportType { return ReportCountByAccount }
func (CountLedgerRequest) ReportType() ReportType    { return ReportCountLedger }
func (CashBalanceRequest) ReportType() ReportType    { return ReportCashBalance }
func (CheckStatusRequest) ReportType() ReportType    { return ReportCheckStatus }
func (PaymentStatusRequest) ReportType() ReportType  { return ReportPaymentStatus }
func (PaymentSummaryRequest) ReportType() ReportType { return ReportPaymentSummary }

func (r BreakdownRequest) withFiscalYear(fy string) ReportRequest {
	r.FiscalYear = fy
	return r
}

func (r CountByAccountRequest) withFiscalYear(fy string) ReportRequest {
	r.FiscalYear = fy
	return r
}

func (r CountLedgerRequest) withFiscalYear(fy string) ReportRequest {
	r.FiscalYear = fy
	return r
}

func (r CashBalanceRequest) withFiscalYear(fy string) ReportRequest {
	r.FiscalYear = fy
	return r
}

func (r CheckStatusRequest) withFiscalYear(fy string) ReportRequest {
	r.FiscalYear = fy
	return r
}

func (r PaymentStatusRequest) withFiscalYear(fy string) ReportRequest {
	r.FiscalYear = fy
	return r
}

func (r PaymentSummaryRequest) withFiscalYear(fy string) ReportRequest {
	r.FiscalYear = fy
	return r
}

// ReportResult pairs a request's type with its computed data.
type ReportResult struct {
	Type ReportType `json:"type"`
	Data any        `json:"data"`
}

// DecodeReportRequest maps a {"type": ...} object onto its variant.
func DecodeReportRequest(raw json.RawMessage) (ReportRequest, error) {
	var head struct {
		Type ReportType `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, core.Validation(core.CodeInvalidRequest, "malformed report request: %v", err)
	}

	var req ReportRequest
	switch head.Type {
	case ReportBreakdown:
		var r BreakdownRequest
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, core.Validation(core.CodeInvalidRequest, "malformed %s request: %v", head.Type, err)
		}
		req = r
	case ReportCountLedger:
		var r CountLedgerRequest
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, core.Validation(core.CodeInvalidRequest, "malformed %s request: %v", head.Type, err)
		}
		req = r
	case ReportCountByAccount:
		req = CountByAccountRequest{}
	case ReportCashBalance:
		req = CashBalanceRequest{}
	case ReportCheckStatus:
		req = CheckStatusRequest{}
	case ReportPaymentStatus:
		req = PaymentStatusRequest{}
	case ReportPaymentSummary:
		req = PaymentSummaryRequest{}
	default:
		return nil, core.Validation(core.CodeUnknownReportType, "unknown report type %q", head.Type)
	}
	return req, nil
}

// DecodeReportRequests decodes a batch, failing on the first bad entry.
func DecodeReportRequests(raws []json.RawMessage) ([]ReportRequest, error) {
	out := make([]ReportRequest, 0, len(raws))
	for i, raw := range raws {
		req, err := DecodeReportRequest(raw)
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		out = append(out, req)
	}
	return out, nil
}
