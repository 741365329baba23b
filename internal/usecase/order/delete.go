package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/audit"
	"github.com/lebarbier/lebarbier-api/internal/authz"
	"github.com/lebarbier/lebarbier-api/internal/domain/catalog"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/order"
)

type DeleteOrder struct {
	repo        domain.Repository
	invalidator catalog.ProductInvalidator
	audit       audit.Publisher
}

func NewDeleteOrder(
	repo domain.Repository,
	invalidator catalog.ProductInvalidator,
	audit audit.Publisher,
) *DeleteOrder {
	return &DeleteOrder{repo: repo, invalidator: invalidator, audit: audit}
}

// Execute removes an order. Stock comes back unless the order already
// shipped out or was restocked by a cancellation.
func (uc *DeleteOrder) Execute(ctx context.Context, who *authz.Principal, id uuid.UUID) error {
	var (
		restocked []uuid.UUID
		number    string
	)

	err := uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		current, err := tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		number = current.OrderNumber

		if domain.Status(current.Status).RestocksOnDelete() {
			for _, item := range current.Items {
				if err := tx.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
			restocked = itemProductIDs(current.Items)
		}

		return tx.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if len(restocked) > 0 {
		uc.invalidator.Invalidate(ctx, restocked...)
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &who.UserID,
		Action:   audit.ActionOrderDeleted,
		Entity:   audit.EntityOrder,
		EntityID: &id,
		Metadata: map[string]any{"order_number": number, "restocked": len(restocked) > 0},
	})

	return nil
}
