// Package catalog builds the paged, filtered and full-text searchable product listing.
package catalog

import (
	"math"
	"strings"

	"github.com/marketly-dev/marketly/internal/apperr"
	"github.com/marketly-dev/marketly/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// must match the text search configuration of products.search_vector
	tsQuery = "websearch_to_tsquery('english', ?)"
)

// Filters are optional and combine with AND. A nil field is not applied.
type Filters struct {
	CategoryID *uint
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	InStock    *bool
	SellerID   *uint
	Search     string
}

type ProductPage struct {
	Items    []models.Product
	Total    int64
	Page     int
	PageSize int
}

func (f Filters) Validate() error {
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		return apperr.Validation("min_price must not be negative")
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		return apperr.Validation("max_price must not be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return apperr.Validation("min_price cannot be greater than max_price")
	}
	return nil
}

func (f Filters) searchTerm() string {
	return strings.TrimSpace(f.Search)
}

// Scope applies every present filter on top of is_active = true. The count and the
// page fetch both go through it so that total always matches the fetched rows.
func (f Filters) Scope() func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		exprs := []clause.Expression{
			clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "is_active"}, Value: true},
		}

		if f.CategoryID != nil {
			exprs = append(exprs, clause.Eq{Column: column("category_id"), Value: *f.CategoryID})
		}
		if f.MinPrice != nil {
			exprs = append(exprs, clause.Gte{Column: column("price"), Value: *f.MinPrice})
		}
		if f.MaxPrice != nil {
			exprs = append(exprs, clause.Lte{Column: column("price"), Value: *f.MaxPrice})
		}
		if f.InStock != nil {
			if *f.InStock {
				exprs = append(exprs, clause.Gt{Column: column("stock"), Value: 0})
			} else {
				exprs = append(exprs, clause.Eq{Column: column("stock"), Value: 0})
			}
		}
		if f.SellerID != nil {
			exprs = append(exprs, clause.Eq{Column: column("seller_id"), Value: *f.SellerID})
		}
		if term := f.searchTerm(); term != "" {
			exprs = append(exprs, clause.Expr{
				SQL:  "? @@ " + tsQuery,
				Vars: []interface{}{column("search_vector"), term},
			})
		}

		return tx.Clauses(clause.Where{Exprs: exprs})
	}
}

// CountAndFetch returns one page of active products matching f, ordered by id, or by
// search rank (then id) when a search term is present.
func CountAndFetch(tx *gorm.DB, f Filters, page, pageSize int) (*ProductPage, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if page < 1 {
		return nil, apperr.Validation("page must be at least 1")
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, apperr.Validation("page_size must be between 1 and 100")
	}

	var total int64
	if err := tx.Model(&models.Product{}).Scopes(f.Scope()).Count(&total).Error; err != nil {
		return nil, err
	}

	items := []models.Product{}
	// An offset past MaxInt can't address any row.
	if page-1 > math.MaxInt/pageSize {
		return &ProductPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
	}
	if err := fetchQuery(tx, f, page, pageSize).Find(&items).Error; err != nil {
		return nil, err
	}

	return &ProductPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func fetchQuery(tx *gorm.DB, f Filters, page, pageSize int) *gorm.DB {
	query := tx.Model(&models.Product{}).Scopes(f.Scope())

	byID := clause.OrderByColumn{Column: column("id")}

	if term := f.searchTerm(); term != "" {
		query = query.
			Select("products.*, ts_rank(products.search_vector, "+tsQuery+") AS rank", term).
			Order(clause.OrderBy{Columns: []clause.OrderByColumn{
				{Column: clause.Column{Name: "rank", Raw: true}, Desc: true},
				byID,
			}})
	} else {
		query = query.Order(clause.OrderBy{Columns: []clause.OrderByColumn{byID}})
	}

	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

func column(name string) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: name}
}
