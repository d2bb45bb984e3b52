package repo

import (
	"context"
	"strings"

	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Filter narrows a query. Each entity package defines its own typed filter.
type Filter interface {
	Apply(q *gorm.DB) *gorm.DB
}

// Contains adds a case-insensitive substring match on column when value is set.
func Contains(q *gorm.DB, column, value string) *gorm.DB {
	value = strings.TrimSpace(value)
	if value == "" {
		return q
	}
	return q.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(value)+"%")
}

// Equals adds an equality predicate when value is non-nil.
func Equals[T any](q *gorm.DB, column string, value *T) *gorm.DB {
	if value == nil {
		return q
	}
	return q.Where(column+" = ?", *value)
}

// In adds an IN predicate when values is non-empty.
func In[T any](q *gorm.DB, column string, values []T) *gorm.DB {
	if len(values) == 0 {
		return q
	}
	return q.Where(column+" IN ?", values)
}

// Paginate counts the filtered set and then loads one page of it. The count
// always reflects the whole filtered set, independent of offset and limit.
func Paginate[T any](q *gorm.DB, params pagination.Params, order string) (pagination.Page[T], error) {
	params = pagination.Normalize(params)
	page := pagination.Page[T]{Items: []T{}}

	filtered := q.Session(&gorm.Session{})
	if err := filtered.Count(&page.Count).Error; err != nil {
		return page, err
	}
	if page.Count == 0 {
		return page, nil
	}

	if order != "" {
		filtered = filtered.Order(order)
	}
	if err := filtered.Offset(params.Offset).Limit(params.Limit).Find(&page.Items).Error; err != nil {
		return page, err
	}
	return page, nil
}
