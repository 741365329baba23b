package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
)

// AuditLogFilter selects audit rows. To is inclusive: the whole day is
// matched.
type AuditLogFilter struct {
	Action string    `form:"action"`
	Entity string    `form:"entity"`
	From   time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To     time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`

	pagination.Params
}

type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

func (r *AuditLogGormRepository) List(
	ctx context.Context,
	f AuditLogFilter,
) ([]models.AuditLog, int64, error) {

	conds := sq.And{}
	if f.Action != "" {
		conds = append(conds, sq.Eq{"action": f.Action})
	}
	if f.Entity != "" {
		conds = append(conds, sq.Eq{"entity": f.Entity})
	}
	if !f.From.IsZero() {
		conds = append(conds, sq.GtOrEq{"created_at": f.From})
	}
	if !f.To.IsZero() {
		conds = append(conds, sq.Lt{"created_at": f.To.AddDate(0, 0, 1)})
	}

	sql, args, err := conds.ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, "build audit filter")
	}

	var total int64
	if err := where(r.db.WithContext(ctx).Model(&models.AuditLog{}), sql, args).
		Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count audit logs")
	}

	var logs []models.AuditLog
	if err := page(where(r.db.WithContext(ctx), sql, args), f.Params).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list audit logs")
	}

	return logs, total, nil
}
