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

type UpdateStatusInput struct {
	AppointmentID uuid.UUID
	Status        domain.Status
	Reason        string
}

type UpdateStatus struct {
	repo     domain.Repository
	audit    audit.Publisher
	settings Settings
}

func NewUpdateStatus(
	repo domain.Repository,
	audit audit.Publisher,
	settings Settings,
) *UpdateStatus {
	return &UpdateStatus{
		repo:     repo,
		audit:    audit,
		settings: settings,
	}
}

// Execute applies a staff transition. Only the assigned employee or an
// admin may move an appointment; entering a blocking status rechecks the
// employee's schedule under lock.
func (uc *UpdateStatus) Execute(
	ctx context.Context,
	who *authz.Principal,
	in UpdateStatusInput,
) (*models.Appointment, error) {

	if !in.Status.Valid() {
		return nil, httperr.Validation("invalid_status", "Statut invalide.")
	}

	var (
		ap   *models.Appointment
		from domain.Status
	)

	err := uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		current, err := tx.GetByIDForUpdate(ctx, in.AppointmentID)
		if err != nil {
			return err
		}

		if !who.IsAdmin() {
			employee, err := tx.GetEmployeeByUser(ctx, who.UserID)
			if err != nil {
				return httperr.Forbidden("forbidden", "Rendez-vous non assigné à ce compte.")
			}
			if employee.ID != current.EmployeeID {
				return httperr.Forbidden("forbidden", "Rendez-vous non assigné à ce compte.")
			}
		}

		from = domain.Status(current.Status)
		if err := domain.Transition(current, in.Status, uc.settings.now(), strings.TrimSpace(in.Reason)); err != nil {
			return err
		}

		if in.Status.Blocking() && !from.Blocking() {
			if err := tx.LockEmployee(ctx, current.EmployeeID); err != nil {
				return err
			}
			busy, err := tx.HasBlockingOverlap(ctx, current.EmployeeID, current.Date, current.EndTime, &current.ID)
			if err != nil {
				return err
			}
			if busy {
				return errSlotUnavailable()
			}
		}

		ap = current
		return tx.Update(ctx, current)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &who.UserID,
		Action:   audit.ActionAppointmentStatus,
		Entity:   audit.EntityAppointment,
		EntityID: &ap.ID,
		Metadata: map[string]any{"from": from, "to": in.Status},
	})

	return ap, nil
}
