package core

import (
	"strings"
	"time"
)

// Side is the normal balance side of an account: L for debit, R for credit.
type Side string

const (
	SideLeft  Side = "L"
	SideRight Side = "R"
)

// Bucket is the top-level classification of a category.
type Bucket string

const (
	BucketAsset     Bucket = "asset"
	BucketLiability Bucket = "liability"
	BucketEquity    Bucket = "equity"
	BucketRevenue   Bucket = "revenue"
	BucketExpense   Bucket = "expense"
	BucketTax       Bucket = "tax"
	BucketClosing   Bucket = "closing"
)

// IsValid reports whether b is one of the known buckets.
func (b Bucket) IsValid() bool {
	switch b {
	case BucketAsset, BucketLiability, BucketEquity, BucketRevenue, BucketExpense, BucketTax, BucketClosing:
		return true
	default:
		return false
	}
}

type (
	FiscalYear struct {
		Code      string `json:"code"`
		StartDate Date   `json:"startDate"`
		EndDate   Date   `json:"endDate"`
		Fixed     bool   `json:"fixed"`
	}

	// BucketInfo is a row of the top-level classification table.
	BucketInfo struct {
		Code Bucket `json:"code"`
		Name string `json:"name"`
		Side Side   `json:"side"`
	}

	// Category (kamoku) groups accounts. Side is inherited from the bucket.
	Category struct {
		Code   string `json:"code"`
		Name   string `json:"name"`
		Bucket Bucket `json:"bucket"`
		IsCash bool   `json:"isCash"`
	}

	// Account (saimoku) is the leaf ledger account referenced by journals.
	Account struct {
		ID           int64  `json:"id"`
		Code         string `json:"code"`
		Name         string `json:"name"`
		CategoryCode string `json:"categoryCode"`
	}

	Journal struct {
		ID            int64     `json:"id"`
		FiscalYear    string    `json:"fiscalYear"`
		Date          Date      `json:"date"`
		DebitAccount  string    `json:"debitAccount"`
		DebitAmount   Yen       `json:"debitAmount"`
		CreditAccount string    `json:"creditAccount"`
		CreditAmount  Yen       `json:"creditAmount"`
		Note          string    `json:"note"`
		Checked       bool      `json:"checked"`
		Deleted       bool      `json:"-"`
		CreatedAt     time.Time `json:"createdAt"`
		UpdatedAt     time.Time `json:"updatedAt"`
	}

	// JournalInput carries the fields needed to record a new journal.
	JournalInput struct {
		FiscalYear    string
		Date          Date
		DebitAccount  string
		DebitAmount   Yen
		CreditAccount string
		CreditAmount  Yen
		Note          string
	}

	PayrollPayment struct {
		FiscalYear string    `json:"fiscalYear"`
		Month      int       `json:"month"`
		IsPaid     bool      `json:"isPaid"`
		CreatedAt  time.Time `json:"createdAt"`
		UpdatedAt  time.Time `json:"updatedAt"`
	}

	// MonthCheckStatus summarizes the review state of one month's journals.
	MonthCheckStatus struct {
		Month          int   `json:"month"`
		TotalCount     int64 `json:"totalCount"`
		CheckedCount   int64 `json:"checkedCount"`
		UncheckedCount int64 `json:"uncheckedCount"`
		AllChecked     bool  `json:"allChecked"`
	}

	// JournalFilter narrows a journal listing. Checked nil matches both states.
	JournalFilter struct {
		Month   MonthFilter
		Account string
		Checked *bool
	}

	// PaymentCheck is the payroll gate answer for one date.
	PaymentCheck struct {
		Date       Date   `json:"date"`
		IsPaid     bool   `json:"isPaid"`
		FiscalYear string `json:"fiscalYear"`
		Month      int    `json:"month"`
	}
)

// NewMonthCheckStatus derives unchecked/allChecked from the raw counts.
func NewMonthCheckStatus(month int, total, checked int64) MonthCheckStatus {
	unchecked := total - checked
	return MonthCheckStatus{
		Month:          month,
		TotalCount:     total,
		CheckedCount:   checked,
		UncheckedCount: unchecked,
		AllChecked:     unchecked == 0,
	}
}

// Validate checks the input independently of the chart of accounts.
func (in JournalInput) Validate() error {
	if _, err := ParseFiscalYear(in.FiscalYear); err != nil {
		return err
	}
	if in.Date.IsZero() {
		return Validation(CodeInvalidDate, "date is required")
	}
	if !InFiscalYear(in.Date, in.FiscalYear) {
		return Validation(CodeDateOutsideYear, "date %s is outside fiscal year %s", in.Date, in.FiscalYear)
	}
	if strings.TrimSpace(in.DebitAccount) == "" || strings.TrimSpace(in.CreditAccount) == "" {
		return Validation(CodeInvalidRequest, "debit and credit accounts are required")
	}
	if err := in.DebitAmount.Validate(); err != nil {
		return err
	}
	if err := in.CreditAmount.Validate(); err != nil {
		return err
	}
	if in.DebitAmount != in.CreditAmount {
		return Validation(CodeUnbalancedJournal, "debit amount %s does not equal credit amount %s", in.DebitAmount, in.CreditAmount)
	}
	if len(in.Note) > 200 {
		return Validation(CodeInvalidRequest, "note too long (max 200 characters)")
	}
	return nil
}
