package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lebarbier/lebarbier-api/internal/domain/catalog"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

// --------------------------------------------------
// Product
// --------------------------------------------------

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductGormRepository) Update(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProductGormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "product_not_found", "Produit introuvable.")
	}
	return &p, nil
}

func (r *ProductGormRepository) List(
	ctx context.Context,
	f catalog.ProductFilter,
) ([]models.Product, int64, error) {

	sql, args, err := f.Where()
	if err != nil {
		return nil, 0, errors.Wrap(err, "build product filter")
	}

	var total int64
	if err := where(r.db.WithContext(ctx).Model(&models.Product{}), sql, args).
		Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	var products []models.Product
	if err := page(where(r.db.WithContext(ctx), sql, args), f.Params).
		Order(f.OrderBy()).
		Find(&products).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list products")
	}

	return products, total, nil
}

var _ catalog.ProductRepository = (*ProductGormRepository)(nil)

// --------------------------------------------------
// Service
// --------------------------------------------------

type ServiceGormRepository struct {
	db *gorm.DB
}

func NewServiceGormRepository(db *gorm.DB) *ServiceGormRepository {
	return &ServiceGormRepository{db: db}
}

func (r *ServiceGormRepository) Create(ctx context.Context, s *models.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ServiceGormRepository) Update(ctx context.Context, s *models.Service) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *ServiceGormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var s models.Service
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "service_not_found", "Service introuvable.")
	}
	return &s, nil
}

func (r *ServiceGormRepository) List(ctx context.Context, includeInactive bool) ([]models.Service, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}

	var services []models.Service
	if err := q.Find(&services).Error; err != nil {
		return nil, errors.Wrap(err, "list services")
	}
	return services, nil
}

var _ catalog.ServiceRepository = (*ServiceGormRepository)(nil)

// --------------------------------------------------
// Employee
// --------------------------------------------------

type EmployeeGormRepository struct {
	db *gorm.DB
}

func NewEmployeeGormRepository(db *gorm.DB) *EmployeeGormRepository {
	return &EmployeeGormRepository{db: db}
}

func (r *EmployeeGormRepository) Create(ctx context.Context, e *models.Employee) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error
}

func (r *EmployeeGormRepository) Update(ctx context.Context, e *models.Employee) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(e).Error
}

func (r *EmployeeGormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var e models.Employee
	if err := r.db.WithContext(ctx).Preload("User").First(&e, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "employee_not_found", "Employé introuvable.")
	}
	return &e, nil
}

func (r *EmployeeGormRepository) List(ctx context.Context, includeInactive bool) ([]models.Employee, error) {
	q := r.db.WithContext(ctx).Preload("User").Order("created_at ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}

	var employees []models.Employee
	if err := q.Find(&employees).Error; err != nil {
		return nil, errors.Wrap(err, "list employees")
	}
	return employees, nil
}

var _ catalog.EmployeeRepository = (*EmployeeGormRepository)(nil)
