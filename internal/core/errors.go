package core

import (
	"errors"
	"fmt"
)

// Kind classifies errors surfaced to callers of the engine.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindConflict   Kind = "CONFLICT"
	KindUnexpected Kind = "UNEXPECTED"
)

// Machine-readable error codes.
const (
	CodeInvalidDate         = "INVALID_DATE"
	CodeInvalidFiscalYear   = "INVALID_FISCAL_YEAR"
	CodeInvalidMonth        = "INVALID_MONTH"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnbalancedJournal   = "UNBALANCED_JOURNAL"
	CodeDateOutsideYear     = "DATE_OUTSIDE_FISCAL_YEAR"
	CodeUnknownReportType   = "UNKNOWN_REPORT_TYPE"
	CodePayrollPeriodLocked = "PAYROLL_PERIOD_LOCKED"
	CodeAccountNotFound     = "ACCOUNT_NOT_FOUND"
	CodeCategoryNotFound    = "CATEGORY_NOT_FOUND"
	CodeJournalNotFound     = "JOURNAL_NOT_FOUND"
	CodeFiscalYearNotFound  = "FISCAL_YEAR_NOT_FOUND"
	CodeJournalConflict     = "JOURNAL_CONFLICT"
	CodeInternal            = "INTERNAL"
)

// Error is the typed error returned by engine operations.
// Month is set only for period-related failures (payroll lock, month range).
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Month   int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a VALIDATION error.
func Validation(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a NOT_FOUND error.
func NotFound(code, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns a CONFLICT error.
func Conflict(code, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Unexpected wraps an infrastructure failure.
func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Code: CodeInternal, Message: "unexpected error", Err: err}
}

// PayrollLocked is the veto returned when payroll for the month has been paid.
func PayrollLocked(fiscalYear string, month int) *Error {
	e := Validation(CodePayrollPeriodLocked,
		"payroll for fiscal year %s month %d is already paid; journals dated in this month are locked",
		fiscalYear, month)
	e.Month = month
	return e
}

// KindOf reports the kind of err. Errors that are not *Error are UNEXPECTED.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// CodeOf returns the machine-readable code of err, or "" when err is not an *Error.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
