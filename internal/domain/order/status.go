package order

import "github.com/lebarbier/lebarbier-api/internal/httperr"

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

var AllStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusRefunded,
}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// RestocksOnDelete: deleting an order gives its stock back unless the goods
// left the shop or were already returned to stock.
func (s Status) RestocksOnDelete() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusRefunded:
		return false
	default:
		return true
	}
}

// Update is a partial order change. Nil fields are left alone.
type Update struct {
	Status          *Status
	TrackingNumber  *string
	ShippingAddress *string
	Notes           *string
}

// Plan validates u against the current status and the caller's privilege
// and reports whether stock must be restored.
func Plan(current Status, u Update, admin bool) (restock bool, err error) {
	if !admin {
		if u.TrackingNumber != nil || u.ShippingAddress != nil || u.Notes != nil {
			return false, httperr.Forbidden("forbidden", "Seule l'annulation est autorisée.")
		}
		if u.Status == nil || *u.Status != StatusCancelled {
			return false, httperr.Forbidden("forbidden", "Seule l'annulation est autorisée.")
		}
		if current != StatusPending && current != StatusConfirmed {
			return false, httperr.Conflict("invalid_state", "Cette commande ne peut plus être annulée.")
		}
		return true, nil
	}

	if u.Status == nil || *u.Status == current {
		return false, nil
	}
	if !u.Status.Valid() {
		return false, httperr.Validation("invalid_status", "Statut invalide.")
	}
	// Stock given back on cancellation is never taken again.
	if current == StatusCancelled {
		return false, httperr.Conflict("invalid_state", "Une commande annulée ne peut pas être réactivée.")
	}

	return *u.Status == StatusCancelled, nil
}
