package appointment

import (
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/validators"
)

// Filter narrows appointment listings. Nil fields are ignored.
type Filter struct {
	UserID     *uuid.UUID
	EmployeeID *uuid.UUID
	Status     string `validate:"omitempty,oneof=PENDING CONFIRMED IN_PROGRESS COMPLETED CANCELLED"`
	From       *time.Time
	To         *time.Time
}

func (f Filter) Validate() error {
	if err := validators.Struct(f); err != nil {
		return err
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return httperr.Validation("invalid_date_range", "La date de début doit précéder la date de fin.")
	}
	return nil
}

// Where renders the filter as a SQL predicate with ? placeholders.
func (f Filter) Where() (string, []any, error) {
	conds := sq.And{}

	if f.UserID != nil {
		conds = append(conds, sq.Eq{"user_id": f.UserID.String()})
	}
	if f.EmployeeID != nil {
		conds = append(conds, sq.Eq{"employee_id": f.EmployeeID.String()})
	}
	if f.Status != "" {
		conds = append(conds, sq.Eq{"status": f.Status})
	}
	if f.From != nil {
		conds = append(conds, sq.GtOrEq{"date": *f.From})
	}
	if f.To != nil {
		conds = append(conds, sq.Lt{"date": *f.To})
	}

	return conds.ToSql()
}
