package order

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

type LineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// maxLineQuantity caps one merged cart line at the range of the stock column.
const maxLineQuantity = math.MaxInt32

func errQuantityTooLarge() error {
	return httperr.Validation("invalid_quantity", "Quantité trop élevée.")
}

// ShippingPolicy charges Fee below FreeThreshold and nothing at or above it.
type ShippingPolicy struct {
	FreeThreshold decimal.Decimal
	Fee           decimal.Decimal
}

func DefaultShipping() ShippingPolicy {
	return ShippingPolicy{
		FreeThreshold: decimal.NewFromInt(50000),
		Fee:           decimal.NewFromInt(2500),
	}
}

func (p ShippingPolicy) FeeFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.Fee
}

type Quote struct {
	Items       []models.OrderItem
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
}

// MergeLines rejects empty carts and non-positive quantities and folds
// repeated products into one line, keeping first-seen order.
func MergeLines(lines []LineRequest) ([]LineRequest, error) {
	if len(lines) == 0 {
		return nil, httperr.Validation("empty_order", "La commande doit contenir au moins un article.")
	}

	merged := make([]LineRequest, 0, len(lines))
	index := make(map[uuid.UUID]int, len(lines))

	for _, l := range lines {
		if l.ProductID == uuid.Nil {
			return nil, httperr.Validation("invalid_product", "Produit invalide.")
		}
		if l.Quantity <= 0 {
			return nil, httperr.Validation("invalid_quantity", "La quantité doit être positive.")
		}
		if i, ok := index[l.ProductID]; ok {
			if l.Quantity > maxLineQuantity-merged[i].Quantity {
				return nil, errQuantityTooLarge()
			}
			merged[i].Quantity += l.Quantity
			continue
		}
		if l.Quantity > maxLineQuantity {
			return nil, errQuantityTooLarge()
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}

	return merged, nil
}

// ProductIDs lists the distinct products referenced by lines.
func ProductIDs(lines []LineRequest) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

// Price checks every line against the catalog and snapshots unit prices.
// One bad line rejects the whole cart.
func Price(lines []LineRequest, products map[uuid.UUID]models.Product, shipping ShippingPolicy) (*Quote, error) {
	q := &Quote{
		Items:    make([]models.OrderItem, 0, len(lines)),
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
	}

	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok || !p.IsActive {
			return nil, httperr.NotFoundError("product_not_found",
				fmt.Sprintf("Produit %s introuvable ou indisponible.", l.ProductID))
		}
		if l.Quantity <= 0 {
			return nil, httperr.Validation("invalid_quantity", "La quantité doit être positive.")
		}
		if l.Quantity > p.Stock {
			return nil, httperr.Conflict("insufficient_stock",
				fmt.Sprintf("Stock insuffisant pour %s (disponible: %d).", p.Name, p.Stock))
		}

		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		q.Items = append(q.Items, models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    l.Quantity,
			Price:       p.Price,
			Total:       lineTotal,
		})
		q.Subtotal = q.Subtotal.Add(lineTotal)
	}

	q.ShippingFee = shipping.FeeFor(q.Subtotal)
	q.Total = q.Subtotal.Add(q.ShippingFee).Sub(q.Discount)

	return q, nil
}
