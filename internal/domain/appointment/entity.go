package appointment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

type Location string

const (
	LocationSalon Location = "SALON"
	LocationHome  Location = "HOME"
)

func (l Location) Valid() bool {
	return l == LocationSalon || l == LocationHome
}

// Price returns the travel fee and total for a booking. Home visits carry
// the flat travel fee.
func Price(servicePrice decimal.Decimal, loc Location, homeTravelFee decimal.Decimal) (travelFee, total decimal.Decimal) {
	travelFee = decimal.Zero
	if loc == LocationHome {
		travelFee = homeTravelFee
	}
	return travelFee, servicePrice.Add(travelFee)
}

// ValidateWindow enforces start < end.
func ValidateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return httperr.Validation("invalid_date", "Date invalide.")
	}
	if !start.Before(end) {
		return httperr.Validation("invalid_time_range", "La fin doit être postérieure au début.")
	}
	return nil
}

func Cancel(ap *models.Appointment, now time.Time, reason string) error {
	if err := CanClientCancel(Status(ap.Status)); err != nil {
		return err
	}
	markCancelled(ap, now, reason)
	return nil
}

// Transition applies a staff status change and stamps the matching
// timestamp.
func Transition(ap *models.Appointment, to Status, now time.Time, reason string) error {
	if err := CanTransition(Status(ap.Status), to); err != nil {
		return err
	}

	switch to {
	case StatusCancelled:
		markCancelled(ap, now, reason)
	case StatusCompleted:
		ap.Status = string(to)
		ap.CompletedAt = &now
	default:
		ap.Status = string(to)
	}
	return nil
}

func markCancelled(ap *models.Appointment, now time.Time, reason string) {
	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	if reason != "" {
		ap.CancellationReason = reason
	}
}
