package core

import "github.com/shopspring/decimal"

// AccountCount is the number of live journals referencing one account.
type AccountCount struct {
	AccountCode  string `json:"accountCode"`
	AccountName  string `json:"accountName"`
	CategoryCode string `json:"categoryCode"`
	CategoryName string `json:"categoryName"`
	Bucket       Bucket `json:"bucket"`
	Count        int64  `json:"count"`
}

// BreakdownRow is the amount recorded against one category.
// Month is 0 for yearly rows.
type BreakdownRow struct {
	Month        int             `json:"month,omitempty"`
	CategoryCode string          `json:"categoryCode"`
	CategoryName string          `json:"categoryName"`
	Amount       Yen             `json:"amount"`
	Share        decimal.Decimal `json:"share"`
}

type BreakdownResult struct {
	Rows  []BreakdownRow `json:"rows"`
	Total Yen            `json:"total"`
}

// CashEntry is the balance of one cash-equivalent category.
type CashEntry struct {
	CategoryCode string `json:"categoryCode"`
	CategoryName string `json:"categoryName"`
	Debit        Yen    `json:"debit"`
	Credit       Yen    `json:"credit"`
	Balance      Yen    `json:"balance"`
}

// CashBalance is the cash position of a fiscal year. Total is the grand
// total of the debit sums; NetTotal nets credits out of it.
type CashBalance struct {
	FiscalYear string      `json:"fiscalYear"`
	Entries    []CashEntry `json:"entries"`
	Total      Yen         `json:"total"`
	NetTotal   Yen         `json:"netTotal"`
}

// LedgerLine is one journal seen from a single account, with the running balance.
type LedgerLine struct {
	JournalID      int64  `json:"journalId"`
	Date           Date   `json:"date"`
	CounterAccount string `json:"counterAccount"`
	Debit          Yen    `json:"debit"`
	Credit         Yen    `json:"credit"`
	Balance        Yen    `json:"balance"`
	Note           string `json:"note"`
	Checked        bool   `json:"checked"`
}

// MonthPaymentSummary pairs a month's payroll state with its journal review state.
type MonthPaymentSummary struct {
	Month          int   `json:"month"`
	IsPaid         bool  `json:"isPaid"`
	TotalCount     int64 `json:"totalCount"`
	UncheckedCount int64 `json:"uncheckedCount"`
	AllChecked     bool  `json:"allChecked"`
}
