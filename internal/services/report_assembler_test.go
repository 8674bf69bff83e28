package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kengo-k/taxdesk-sub002/internal/core"
)

func decodeAll(t *testing.T, body string) ([]ReportRequest, error) {
	t.Helper()
	var raws []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &raws))
	return DecodeReportRequests(raws)
}

func TestDecodeReportRequests(t *testing.T) {
	reqs, err := decodeAll(t, `[
		{"type":"breakdown","kind":"expense","granularity":"month"},
		{"type":"count_ledger","account":"10201","month":"04"},
		{"type":"cash_balance"}
	]`)
	require.NoError(t, err)
	require.Len(t, reqs, 3)

	b, ok := reqs[0].(BreakdownRequest)
	require.True(t, ok)
	assert.Equal(t, BreakdownExpense, b.Kind)
	assert.Equal(t, ByMonth, b.Granularity)
	assert.Equal(t, CountLedgerRequest{Account: "10201", Month: "04"}, reqs[1])
	assert.Equal(t, ReportCashBalance, reqs[2].ReportType())

	_, err = decodeAll(t, `[{"type":"cash_balance"},{"type":"tax_table"}]`)
	require.Error(t, err)
	assert.Equal(t, core.KindValidation, core.KindOf(err))
	assert.Equal(t, core.CodeUnknownReportType, core.CodeOf(err))
	assert.Contains(t, err.Error(), "request 1")

	_, err = decodeAll(t, `[{"type":"breakdown","kind":7}]`)
	assert.Equal(t, core.CodeInvalidRequest, core.CodeOf(err))
}

func TestAssemble_PreservesOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.add(t, "20250415", "10201", "40101", 1000)
	env.add(t, "20250515", "50101", "10201", 200)

	requests := []ReportRequest{
		CheckStatusRequest{},
		BreakdownRequest{Kind: BreakdownIncome, Granularity: ByYear},
		CountLedgerRequest{Account: "10201"},
		CashBalanceRequest{},
		PaymentStatusRequest{},
		CountByAccountRequest{},
		PaymentSummaryRequest{},
	}
	results, err := env.assembler.Assemble(ctx, "2025", requests)
	require.NoError(t, err)
	require.Len(t, results, len(requests))
	for i, r := range results {
		assert.Equal(t, requests[i].ReportType(), r.Type)
	}

	statuses := results[0].Data.([]core.MonthCheckStatus)
	assert.Len(t, statuses, 2)
	income := results[1].Data.(core.BreakdownResult)
	assert.Equal(t, core.Yen(1000), income.Total)
	assert.Equal(t, map[string]int64{"count": 2}, results[2].Data)
	cash := results[3].Data.(core.CashBalance)
	assert.Equal(t, "2025", cash.FiscalYear)
	assert.Equal(t, core.Yen(1000), cash.Total)
	assert.Equal(t, core.Yen(800), cash.NetTotal)
}

func TestAssemble_FirstErrorFailsBatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.assembler.Assemble(ctx, "2025", []ReportRequest{
		CashBalanceRequest{},
		CountLedgerRequest{Account: "99999"},
	})
	assert.Equal(t, core.CodeAccountNotFound, core.CodeOf(err))

	_, err = env.assembler.Assemble(ctx, "2025", []ReportRequest{CountLedgerRequest{Account: "10201", Month: "13"}})
	assert.Equal(t, core.CodeInvalidMonth, core.CodeOf(err))

	_, err = env.assembler.Assemble(ctx, "FY25", []ReportRequest{CashBalanceRequest{}})
	assert.Equal(t, core.CodeInvalidFiscalYear, core.CodeOf(err))

	results, err := env.assembler.Assemble(ctx, "2025", nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
