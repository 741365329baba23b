package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/lebarbier/lebarbier-api/internal/domain/order"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) WithTx(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&OrderGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Stock
// --------------------------------------------------

func (r *OrderGormRepository) LockProducts(
	ctx context.Context,
	ids []uuid.UUID,
) ([]models.Product, error) {

	if len(ids) == 0 {
		return nil, nil
	}

	var products []models.Product
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return nil, errors.Wrap(err, "lock products")
	}

	return products, nil
}

func (r *OrderGormRepository) DecrementStock(
	ctx context.Context,
	productID uuid.UUID,
	qty int,
) error {

	if qty <= 0 {
		return httperr.Validation("invalid_quantity", "La quantité doit être positive.")
	}

	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return errors.Wrap(res.Error, "decrement stock")
	}
	if res.RowsAffected == 0 {
		return httperr.Conflict("insufficient_stock", "Stock insuffisant pour ce produit.")
	}

	return nil
}

func (r *OrderGormRepository) IncrementStock(
	ctx context.Context,
	productID uuid.UUID,
	qty int,
) error {

	if qty <= 0 {
		return httperr.Validation("invalid_quantity", "La quantité doit être positive.")
	}

	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", qty)).Error

	return errors.Wrap(err, "increment stock")
}

// --------------------------------------------------
// Order
// --------------------------------------------------

func (r *OrderGormRepository) Create(
	ctx context.Context,
	o *models.Order,
) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderGormRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*models.Order, error) {

	var o models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&o, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "order_not_found", "Commande introuvable.")
	}

	return &o, nil
}

func (r *OrderGormRepository) GetByIDForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*models.Order, error) {

	var o models.Order
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&o, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "order_not_found", "Commande introuvable.")
	}

	// items are loaded separately: FOR UPDATE cannot ride on a preload
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", o.ID).
		Find(&o.Items).Error; err != nil {
		return nil, errors.Wrap(err, "load order items")
	}

	return &o, nil
}

func (r *OrderGormRepository) Update(
	ctx context.Context,
	o *models.Order,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(o).Error
}

func (r *OrderGormRepository) Delete(
	ctx context.Context,
	id uuid.UUID,
) error {

	if err := r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Delete(&models.OrderItem{}).Error; err != nil {
		return errors.Wrap(err, "delete order items")
	}

	res := r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete order")
	}
	if res.RowsAffected == 0 {
		return httperr.NotFoundError("order_not_found", "Commande introuvable.")
	}

	return nil
}

func (r *OrderGormRepository) List(
	ctx context.Context,
	f domain.Filter,
) ([]models.Order, int64, error) {

	sql, args, err := f.Where()
	if err != nil {
		return nil, 0, errors.Wrap(err, "build order filter")
	}

	var total int64
	if err := where(r.db.WithContext(ctx).Model(&models.Order{}), sql, args).
		Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count orders")
	}

	var orders []models.Order
	if err := page(where(r.db.WithContext(ctx), sql, args), f.Params).
		Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list orders")
	}

	return orders, total, nil
}

func (r *OrderGormRepository) Stats(
	ctx context.Context,
	f domain.Filter,
) ([]domain.StatusStat, error) {

	f.Status = ""

	sql, args, err := f.Where()
	if err != nil {
		return nil, errors.Wrap(err, "build order filter")
	}

	var stats []domain.StatusStat
	if err := where(r.db.WithContext(ctx).Model(&models.Order{}), sql, args).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Group("status").
		Order("status").
		Scan(&stats).Error; err != nil {
		return nil, errors.Wrap(err, "order stats")
	}

	return stats, nil
}

var _ domain.Repository = (*OrderGormRepository)(nil)
