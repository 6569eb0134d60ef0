// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
)

// DB 数据库接口
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ListFilter 列表查询过滤器
type ListFilter struct {
	Month    string `json:"month,omitempty"` // YYYY-MM
	Status   string `json:"status,omitempty"`
	Offset   int    `json:"offset"`
	Limit    int    `json:"limit"`
	OrderBy  string `json:"order_by,omitempty"`
	OrderDir string `json:"order_dir,omitempty"` // asc/desc
}

// DefaultListFilter 返回默认过滤器
func DefaultListFilter() ListFilter {
	return ListFilter{
		Offset:   0,
		Limit:    20,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

// WithLimit 设置限制
func (f ListFilter) WithLimit(limit int) ListFilter {
	f.Limit = limit
	return f
}

// WithOffset 设置偏移
func (f ListFilter) WithOffset(offset int) ListFilter {
	f.Offset = offset
	return f
}

// WithMonth 设置月份过滤
func (f ListFilter) WithMonth(month string) ListFilter {
	f.Month = month
	return f
}

// Scanner 行扫描接口
type Scanner interface {
	Scan(dest ...interface{}) error
}
