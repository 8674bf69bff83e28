package storage

// Row types mirror the tables one to one. Timestamps are kept as the stored
// RFC 3339 strings so updates can be guarded on the exact value read.

type FiscalYear struct {
	Code      string
	StartDate string
	EndDate   string
	Fixed     int64
}

type Bucket struct {
	Code string
	Name string
	Side string
}

type Category struct {
	Code       string
	Name       string
	BucketCode string
	IsCash     int64
}

type Account struct {
	ID           int64
	Code         string
	Name         string
	CategoryCode string
}

type Journal struct {
	ID            int64
	FiscalYear    string
	Date          string
	DebitAccount  string
	DebitAmount   int64
	CreditAccount string
	CreditAmount  int64
	Note          string
	Checked       int64
	Deleted       int64
	CreatedAt     string
	UpdatedAt     string
}

type PayrollPayment struct {
	FiscalYear string
	Month      int64
	IsPaid     int64
	CreatedAt  string
	UpdatedAt  string
}

type MonthCheckCount struct {
	Month        int64
	TotalCount   int64
	CheckedCount int64
}
