// Package accounts holds the chart of accounts as an immutable lookup table.
package accounts

import (
	"context"
	"fmt"
	"sort"

	"github.com/kengo-k/taxdesk-sub002/internal/core"
)

// Classification is the resolved position of an account in the chart.
type Classification struct {
	AccountCode  string      `json:"accountCode"`
	AccountName  string      `json:"accountName"`
	CategoryCode string      `json:"categoryCode"`
	CategoryName string      `json:"categoryName"`
	Bucket       core.Bucket `json:"bucket"`
	Side         core.Side   `json:"side"`
	IsCash       bool        `json:"isCash"`
}

// Source reads the reference rows the chart is built from.
type Source interface {
	ListBuckets(ctx context.Context) ([]core.BucketInfo, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	ListAccounts(ctx context.Context) ([]core.Account, error)
}

// Chart resolves account codes without re-joining per journal row.
// It is safe for concurrent use because it is never mutated after NewChart.
type Chart struct {
	buckets    map[core.Bucket]core.BucketInfo
	categories []core.Category
	byCategory map[string]core.Category
	accounts   []core.Account
	byCode     map[string]Classification
}

// NewChart joins accounts to categories and categories to buckets once.
//
// When the same account code appears more than once the row with the
// smallest ID is kept, so classification is deterministic.
func NewChart(buckets []core.BucketInfo, categories []core.Category, accts []core.Account) (*Chart, error) {
	c := &Chart{
		buckets:    make(map[core.Bucket]core.BucketInfo, len(buckets)),
		byCategory: make(map[string]core.Category, len(categories)),
		byCode:     make(map[string]Classification, len(accts)),
	}
	for _, b := range buckets {
		if !b.Code.IsValid() {
			return nil, fmt.Errorf("unknown bucket %q", b.Code)
		}
		c.buckets[b.Code] = b
	}

	for _, cat := range categories {
		if _, ok := c.buckets[cat.Bucket]; !ok {
			return nil, fmt.Errorf("category %s references unknown bucket %q", cat.Code, cat.Bucket)
		}
		if _, dup := c.byCategory[cat.Code]; dup {
			return nil, fmt.Errorf("duplicate category code %s", cat.Code)
		}
		c.byCategory[cat.Code] = cat
		c.categories = append(c.categories, cat)
	}
	sort.Slice(c.categories, func(i, j int) bool { return c.categories[i].Code < c.categories[j].Code })

	sorted := append([]core.Account(nil), accts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, a := range sorted {
		if _, seen := c.byCode[a.Code]; seen {
			continue
		}
		cat, ok := c.byCategory[a.CategoryCode]
		if !ok {
			return nil, fmt.Errorf("account %s references unknown category %s", a.Code, a.CategoryCode)
		}
		bucket := c.buckets[cat.Bucket]
		c.byCode[a.Code] = Classification{
			AccountCode:  a.Code,
			AccountName:  a.Name,
			CategoryCode: cat.Code,
			CategoryName: cat.Name,
			Bucket:       cat.Bucket,
			Side:         bucket.Side,
			IsCash:       cat.IsCash,
		}
		c.accounts = append(c.accounts, a)
	}

	return c, nil
}

// Load reads the reference rows from src and builds a Chart.
func Load(ctx context.Context, src Source) (*Chart, error) {
	buckets, err := src.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	categories, err := src.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	accts, err := src.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return NewChart(buckets, categories, accts)
}

// Classify resolves an account code to its category, bucket and side.
func (c *Chart) Classify(accountCode string) (Classification, error) {
	cl, ok := c.byCode[accountCode]
	if !ok {
		return Classification{}, core.NotFound(core.CodeAccountNotFound, "account %q not found", accountCode)
	}
	return cl, nil
}

// Exists reports whether an account code is in the chart.
func (c *Chart) Exists(accountCode string) bool {
	_, ok := c.byCode[accountCode]
	return ok
}

// Accounts returns every account ordered by ID.
func (c *Chart) Accounts() []core.Account {
	return append([]core.Account(nil), c.accounts...)
}

// Categories returns every category ordered by code.
func (c *Chart) Categories() []core.Category {
	return append([]core.Category(nil), c.categories...)
}

// CategoriesIn returns the categories of one bucket ordered by code.
func (c *Chart) CategoriesIn(bucket core.Bucket) []core.Category {
	var out []core.Category
	for _, cat := range c.categories {
		if cat.Bucket == bucket {
			out = append(out, cat)
		}
	}
	return out
}

// Category looks up a category by code.
func (c *Chart) Category(code string) (core.Category, bool) {
	cat, ok := c.byCategory[code]
	return cat, ok
}

// CategorySide returns the side inherited by a category from its bucket.
func (c *Chart) CategorySide(code string) (core.Side, bool) {
	cat, ok := c.byCategory[code]
	if !ok {
		return "", false
	}
	return c.buckets[cat.Bucket].Side, true
}
