package order

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lebarbier/lebarbier-api/internal/audit"
	"github.com/lebarbier/lebarbier-api/internal/config"
	"github.com/lebarbier/lebarbier-api/internal/domain/catalog"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/order"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

type CreateInput struct {
	UserID          uuid.UUID
	Items           []domain.LineRequest
	ShippingAddress string
	Notes           string
}

type CreateOrder struct {
	repo        domain.Repository
	invalidator catalog.ProductInvalidator
	audit       audit.Publisher
	shipping    domain.ShippingPolicy
	now         func() time.Time
}

func ShippingFromConfig(cfg *config.Config) domain.ShippingPolicy {
	return domain.ShippingPolicy{
		FreeThreshold: decimal.NewFromInt(cfg.Shop.FreeShippingThreshold),
		Fee:           decimal.NewFromInt(cfg.Shop.ShippingFee),
	}
}

func NewCreateOrder(
	repo domain.Repository,
	invalidator catalog.ProductInvalidator,
	audit audit.Publisher,
	shipping domain.ShippingPolicy,
) *CreateOrder {
	return &CreateOrder{
		repo:        repo,
		invalidator: invalidator,
		audit:       audit,
		shipping:    shipping,
		now:         time.Now,
	}
}

// Execute prices the cart against locked product rows and commits the
// order together with every stock decrement. Any failure leaves stock and
// orders untouched.
func (uc *CreateOrder) Execute(ctx context.Context, in CreateInput) (*models.Order, error) {
	lines, err := domain.MergeLines(in.Items)
	if err != nil {
		return nil, err
	}
	ids := domain.ProductIDs(lines)

	var o *models.Order

	err = uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		locked, err := tx.LockProducts(ctx, ids)
		if err != nil {
			return err
		}

		products := make(map[uuid.UUID]models.Product, len(locked))
		for _, p := range locked {
			products[p.ID] = p
		}

		quote, err := domain.Price(lines, products, uc.shipping)
		if err != nil {
			return err
		}

		for _, item := range quote.Items {
			if err := tx.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		o = &models.Order{
			OrderNumber:     domain.NewNumber(uc.now()),
			UserID:          in.UserID,
			Items:           quote.Items,
			Subtotal:        quote.Subtotal,
			ShippingFee:     quote.ShippingFee,
			Discount:        quote.Discount,
			Total:           quote.Total,
			Status:          string(domain.StatusPending),
			ShippingAddress: strings.TrimSpace(in.ShippingAddress),
			Notes:           strings.TrimSpace(in.Notes),
		}

		return tx.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidator.Invalidate(ctx, ids...)

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   audit.ActionOrderCreated,
		Entity:   audit.EntityOrder,
		EntityID: &o.ID,
		Metadata: map[string]any{
			"order_number": o.OrderNumber,
			"total":        o.Total.String(),
			"items":        len(o.Items),
		},
	})

	return o, nil
}
