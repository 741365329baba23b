package appointment

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/audit"
	"github.com/lebarbier/lebarbier-api/internal/authz"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/appointment"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

type CancelAppointment struct {
	repo     domain.Repository
	audit    audit.Publisher
	settings Settings
}

func NewCancelAppointment(
	repo domain.Repository,
	audit audit.Publisher,
	settings Settings,
) *CancelAppointment {
	return &CancelAppointment{
		repo:     repo,
		audit:    audit,
		settings: settings,
	}
}

// Execute lets the owner (or an admin) withdraw a pending or confirmed
// appointment.
func (uc *CancelAppointment) Execute(
	ctx context.Context,
	who *authz.Principal,
	appointmentID uuid.UUID,
	reason string,
) (*models.Appointment, error) {

	var ap *models.Appointment

	err := uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		current, err := tx.GetByIDForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}
		if !who.Owns(current.UserID) {
			return httperr.Forbidden("forbidden", "Ce rendez-vous ne vous appartient pas.")
		}

		if err := domain.Cancel(current, uc.settings.now(), strings.TrimSpace(reason)); err != nil {
			return err
		}

		ap = current
		return tx.Update(ctx, current)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &who.UserID,
		Action:   audit.ActionAppointmentCancelled,
		Entity:   audit.EntityAppointment,
		EntityID: &ap.ID,
		Metadata: map[string]any{"reason": ap.CancellationReason},
	})

	return ap, nil
}
