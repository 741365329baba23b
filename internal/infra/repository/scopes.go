package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
)

// notFound turns gorm's record-not-found into a caller-facing error and
// passes everything else through.
func notFound(err error, code, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &httperr.AppError{Kind: httperr.KindNotFound, Code: code, Message: message, Err: err}
	}
	return err
}

// where applies a squirrel-rendered predicate. An empty predicate is a
// no-op.
func where(q *gorm.DB, sql string, args []any) *gorm.DB {
	if sql == "" {
		return q
	}
	return q.Where(sql, args...)
}

func page(q *gorm.DB, p pagination.Params) *gorm.DB {
	if p.Limit <= 0 {
		return q
	}
	return q.Offset(p.Offset()).Limit(p.Limit)
}
