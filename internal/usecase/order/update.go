package order

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/audit"
	"github.com/lebarbier/lebarbier-api/internal/authz"
	"github.com/lebarbier/lebarbier-api/internal/domain/catalog"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/order"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

type UpdateOrder struct {
	repo        domain.Repository
	invalidator catalog.ProductInvalidator
	audit       audit.Publisher
}

func NewUpdateOrder(
	repo domain.Repository,
	invalidator catalog.ProductInvalidator,
	audit audit.Publisher,
) *UpdateOrder {
	return &UpdateOrder{repo: repo, invalidator: invalidator, audit: audit}
}

// Execute applies u under a row lock. Moving into CANCELLED puts every
// line back in stock within the same transaction.
func (uc *UpdateOrder) Execute(
	ctx context.Context,
	who *authz.Principal,
	id uuid.UUID,
	u domain.Update,
) (*models.Order, error) {

	var (
		o       *models.Order
		from    domain.Status
		restock bool
	)

	err := uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		current, err := tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !who.Owns(current.UserID) {
			return httperr.Forbidden("forbidden", "Cette commande ne vous appartient pas.")
		}

		from = domain.Status(current.Status)
		restock, err = domain.Plan(from, u, who.IsAdmin())
		if err != nil {
			return err
		}

		if restock {
			for _, item := range current.Items {
				if err := tx.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		apply(current, u)
		o = current

		return tx.Update(ctx, current)
	})
	if err != nil {
		return nil, err
	}

	action := audit.ActionOrderUpdated
	if restock {
		action = audit.ActionOrderCancelled
		uc.invalidator.Invalidate(ctx, itemProductIDs(o.Items)...)
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &who.UserID,
		Action:   action,
		Entity:   audit.EntityOrder,
		EntityID: &o.ID,
		Metadata: map[string]any{"from": from, "to": o.Status},
	})

	return o, nil
}

func apply(o *models.Order, u domain.Update) {
	if u.Status != nil {
		o.Status = string(*u.Status)
	}
	if u.TrackingNumber != nil {
		o.TrackingNumber = strings.TrimSpace(*u.TrackingNumber)
	}
	if u.ShippingAddress != nil {
		o.ShippingAddress = strings.TrimSpace(*u.ShippingAddress)
	}
	if u.Notes != nil {
		o.Notes = strings.TrimSpace(*u.Notes)
	}
}

func itemProductIDs(items []models.OrderItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
