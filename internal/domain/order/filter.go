package order

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/pagination"
	"github.com/lebarbier/lebarbier-api/internal/validators"
)

type Filter struct {
	UserID      *uuid.UUID
	Status      string `validate:"omitempty,oneof=PENDING CONFIRMED PROCESSING SHIPPED DELIVERED CANCELLED REFUNDED"`
	OrderNumber string `validate:"omitempty,max=40"`

	pagination.Params
}

func (f Filter) Validate() error {
	return validators.Struct(f)
}

func (f Filter) Where() (string, []any, error) {
	conds := sq.And{}

	if f.UserID != nil {
		conds = append(conds, sq.Eq{"user_id": f.UserID.String()})
	}
	if f.Status != "" {
		conds = append(conds, sq.Eq{"status": f.Status})
	}
	if n := strings.TrimSpace(f.OrderNumber); n != "" {
		conds = append(conds, sq.ILike{"order_number": "%" + n + "%"})
	}

	return conds.ToSql()
}
