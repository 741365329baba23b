package review

import (
	"context"
	"math"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
	"github.com/lebarbier/lebarbier-api/internal/validators"
)

const (
	MinRating = 1
	MaxRating = 5
)

func ValidateRating(field string, v int) error {
	if v < MinRating || v > MaxRating {
		return httperr.Validation("invalid_rating", "La note "+field+" doit être comprise entre 1 et 5.")
	}
	return nil
}

// Average rounds the mean to one decimal. An empty set averages to zero.
func Average(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return math.Round(float64(sum)/float64(len(ratings))*10) / 10
}

type Filter struct {
	EmployeeID *uuid.UUID
	UserID     *uuid.UUID
	Approved   *bool
	MinRating  int `validate:"omitempty,min=1,max=5"`

	// Viewer, when set, widens an approved-only listing to also include
	// that user's own pending reviews.
	Viewer *uuid.UUID

	pagination.Params
}

func (f Filter) Validate() error {
	return validators.Struct(f)
}

func (f Filter) Where() (string, []any, error) {
	conds := sq.And{}

	if f.EmployeeID != nil {
		conds = append(conds, sq.Eq{"employee_id": f.EmployeeID.String()})
	}
	if f.UserID != nil {
		conds = append(conds, sq.Eq{"user_id": f.UserID.String()})
	}
	if f.Approved != nil {
		approved := sq.Sqlizer(sq.Eq{"is_approved": *f.Approved})
		if *f.Approved && f.Viewer != nil {
			approved = sq.Or{approved, sq.Eq{"user_id": f.Viewer.String()}}
		}
		conds = append(conds, approved)
	}
	if f.MinRating > 0 {
		conds = append(conds, sq.Or{
			sq.GtOrEq{"service_rating": f.MinRating},
			sq.GtOrEq{"employee_rating": f.MinRating},
		})
	}

	return conds.ToSql()
}

type Stats struct {
	Total                 int64   `json:"total"`
	Approved              int64   `json:"approved"`
	Pending               int64   `json:"pending"`
	AverageServiceRating  float64 `json:"average_service_rating"`
	AverageEmployeeRating float64 `json:"average_employee_rating"`
}

type Repository interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error

	GetAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error)

	Create(ctx context.Context, r *models.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	Update(ctx context.Context, r *models.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter) ([]models.Review, int64, error)
	Stats(ctx context.Context, f Filter) (Stats, error)

	// ApprovedRatings returns the employee ratings of every approved review
	// of the employee.
	ApprovedRatings(ctx context.Context, employeeID uuid.UUID) ([]int, error)
	SetEmployeeRating(ctx context.Context, employeeID uuid.UUID, avg float64, count int) error
}
