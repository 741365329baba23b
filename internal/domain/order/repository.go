package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lebarbier/lebarbier-api/internal/models"
)

type StatusStat struct {
	Status string          `json:"status"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

type Repository interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error

	// LockProducts returns the products under row lock, in id order.
	LockProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	// DecrementStock fails with insufficient_stock when fewer than qty
	// units remain.
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) error
	IncrementStock(ctx context.Context, productID uuid.UUID, qty int) error

	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, f Filter) ([]models.Order, int64, error)
	Stats(ctx context.Context, f Filter) ([]StatusStat, error)
}
