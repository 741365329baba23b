package repository

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/lebarbier/lebarbier-api/internal/domain/review"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

type ReviewGormRepository struct {
	db *gorm.DB
}

func NewReviewGormRepository(db *gorm.DB) *ReviewGormRepository {
	return &ReviewGormRepository{db: db}
}

func (r *ReviewGormRepository) WithTx(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ReviewGormRepository{db: tx})
	})
}

func (r *ReviewGormRepository) GetAppointment(
	ctx context.Context,
	id uuid.UUID,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).First(&ap, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "appointment_not_found", "Rendez-vous introuvable.")
	}
	return &ap, nil
}

func (r *ReviewGormRepository) Create(ctx context.Context, rv *models.Review) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(rv).Error
	if httperr.IsUniqueViolation(err) {
		return &httperr.AppError{
			Kind:    httperr.KindConflict,
			Code:    "review_exists",
			Message: "Un avis existe déjà pour ce rendez-vous.",
			Err:     err,
		}
	}
	return err
}

func (r *ReviewGormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var rv models.Review
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Employee.User").
		First(&rv, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "review_not_found", "Avis introuvable.")
	}
	return &rv, nil
}

func (r *ReviewGormRepository) Update(ctx context.Context, rv *models.Review) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(rv).Error
}

func (r *ReviewGormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Review{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete review")
	}
	if res.RowsAffected == 0 {
		return httperr.NotFoundError("review_not_found", "Avis introuvable.")
	}
	return nil
}

func (r *ReviewGormRepository) List(
	ctx context.Context,
	f domain.Filter,
) ([]models.Review, int64, error) {

	sql, args, err := f.Where()
	if err != nil {
		return nil, 0, errors.Wrap(err, "build review filter")
	}

	var total int64
	if err := where(r.db.WithContext(ctx).Model(&models.Review{}), sql, args).
		Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count reviews")
	}

	var reviews []models.Review
	if err := page(where(r.db.WithContext(ctx), sql, args), f.Params).
		Preload("User").
		Preload("Employee.User").
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list reviews")
	}

	return reviews, total, nil
}

func (r *ReviewGormRepository) Stats(ctx context.Context, f domain.Filter) (domain.Stats, error) {
	// the moderation breakdown covers both states regardless of the filter
	f.Approved = nil

	sql, args, err := f.Where()
	if err != nil {
		return domain.Stats{}, errors.Wrap(err, "build review filter")
	}

	var row struct {
		Total          int64
		Approved       int64
		ServiceRating  float64
		EmployeeRating float64
	}
	if err := where(r.db.WithContext(ctx).Model(&models.Review{}), sql, args).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_approved) AS approved,
			COALESCE(AVG(service_rating), 0) AS service_rating,
			COALESCE(AVG(employee_rating), 0) AS employee_rating`).
		Scan(&row).Error; err != nil {
		return domain.Stats{}, errors.Wrap(err, "review stats")
	}

	return domain.Stats{
		Total:                 row.Total,
		Approved:              row.Approved,
		Pending:               row.Total - row.Approved,
		AverageServiceRating:  roundTenth(row.ServiceRating),
		AverageEmployeeRating: roundTenth(row.EmployeeRating),
	}, nil
}

func (r *ReviewGormRepository) ApprovedRatings(
	ctx context.Context,
	employeeID uuid.UUID,
) ([]int, error) {

	var ratings []int
	if err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("employee_id = ? AND is_approved = ?", employeeID, true).
		Pluck("employee_rating", &ratings).Error; err != nil {
		return nil, errors.Wrap(err, "approved ratings")
	}
	return ratings, nil
}

func (r *ReviewGormRepository) SetEmployeeRating(
	ctx context.Context,
	employeeID uuid.UUID,
	avg float64,
	count int,
) error {
	res := r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("id = ?", employeeID).
		Updates(map[string]any{"rating": avg, "review_count": count})
	if res.Error != nil {
		return errors.Wrap(res.Error, "set employee rating")
	}
	if res.RowsAffected == 0 {
		return httperr.NotFoundError("employee_not_found", "Employé introuvable.")
	}
	return nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

var _ domain.Repository = (*ReviewGormRepository)(nil)
