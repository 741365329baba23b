package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/lebarbier/lebarbier-api/internal/domain/appointment"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func (r *AppointmentGormRepository) WithTx(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	id uuid.UUID,
) (*models.Service, error) {

	var s models.Service
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "service_not_found", "Service introuvable.")
	}
	return &s, nil
}

func (r *AppointmentGormRepository) GetEmployee(
	ctx context.Context,
	id uuid.UUID,
) (*models.Employee, error) {

	var e models.Employee
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(&e, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "employee_not_found", "Employé introuvable.")
	}
	return &e, nil
}

func (r *AppointmentGormRepository) GetEmployeeByUser(
	ctx context.Context,
	userID uuid.UUID,
) (*models.Employee, error) {

	var e models.Employee
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&e).Error; err != nil {
		return nil, notFound(err, "employee_not_found", "Aucun profil employé pour ce compte.")
	}
	return &e, nil
}

func (r *AppointmentGormRepository) LockEmployee(
	ctx context.Context,
	id uuid.UUID,
) error {

	var e models.Employee
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&e, "id = ?", id).Error

	return notFound(err, "employee_not_found", "Employé introuvable.")
}

// --------------------------------------------------
// Schedule
// --------------------------------------------------

func (r *AppointmentGormRepository) ListBlocking(
	ctx context.Context,
	employeeID uuid.UUID,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Select("id", "date", "end_time", "status").
		Where(
			"employee_id = ? AND status IN ? AND date < ? AND end_time > ?",
			employeeID, blockingStatuses(), to, from,
		).
		Order("date ASC").
		Find(&apps).Error; err != nil {
		return nil, errors.Wrap(err, "list blocking appointments")
	}

	return apps, nil
}

func (r *AppointmentGormRepository) HasBlockingOverlap(
	ctx context.Context,
	employeeID uuid.UUID,
	start time.Time,
	end time.Time,
	exclude *uuid.UUID,
) (bool, error) {

	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"employee_id = ? AND status IN ? AND date < ? AND end_time > ?",
			employeeID, blockingStatuses(), end, start,
		)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "check appointment overlap")
	}

	return count > 0, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) Create(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(ap).Error
}

func (r *AppointmentGormRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Employee.User").
		Preload("Service").
		First(&ap, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "appointment_not_found", "Rendez-vous introuvable.")
	}

	return &ap, nil
}

func (r *AppointmentGormRepository) GetByIDForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ap, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "appointment_not_found", "Rendez-vous introuvable.")
	}

	return &ap, nil
}

func (r *AppointmentGormRepository) Update(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(ap).Error
}

func (r *AppointmentGormRepository) List(
	ctx context.Context,
	f domain.Filter,
) ([]models.Appointment, error) {

	sql, args, err := f.Where()
	if err != nil {
		return nil, errors.Wrap(err, "build appointment filter")
	}

	var apps []models.Appointment
	if err := where(r.db.WithContext(ctx), sql, args).
		Preload("User").
		Preload("Employee.User").
		Preload("Service").
		Order("date ASC").
		Find(&apps).Error; err != nil {
		return nil, errors.Wrap(err, "list appointments")
	}

	return apps, nil
}

func (r *AppointmentGormRepository) CountByStatus(
	ctx context.Context,
	f domain.Filter,
) (map[domain.Status]int64, error) {

	// the status breakdown covers every status regardless of the filter's own
	f.Status = ""

	sql, args, err := f.Where()
	if err != nil {
		return nil, errors.Wrap(err, "build appointment filter")
	}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := where(r.db.WithContext(ctx).Model(&models.Appointment{}), sql, args).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "count appointments by status")
	}

	out := make(map[domain.Status]int64, len(domain.AllStatuses))
	for _, s := range domain.AllStatuses {
		out[s] = 0
	}
	for _, row := range rows {
		out[domain.Status(row.Status)] = row.Count
	}

	return out, nil
}

func blockingStatuses() []string {
	out := make([]string, 0, len(domain.BlockingStatuses))
	for _, s := range domain.BlockingStatuses {
		out = append(out, string(s))
	}
	return out
}

var _ domain.Repository = (*AppointmentGormRepository)(nil)
