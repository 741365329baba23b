package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/audit"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/appointment"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateInput struct {
	UserID     uuid.UUID
	EmployeeID uuid.UUID
	ServiceID  uuid.UUID

	Date time.Time
	// EndTime defaults to Date plus the service duration.
	EndTime *time.Time

	Location      domain.Location
	CustomAddress string
	Lat           *float64
	Lng           *float64
	Notes         string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo     domain.Repository
	audit    audit.Publisher
	settings Settings
}

func NewCreateAppointment(
	repo domain.Repository,
	audit audit.Publisher,
	settings Settings,
) *CreateAppointment {
	return &CreateAppointment{
		repo:     repo,
		audit:    audit,
		settings: settings,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateInput,
) (*models.Appointment, error) {

	if in.Location == "" {
		in.Location = domain.LocationSalon
	}
	if !in.Location.Valid() {
		return nil, httperr.Validation("invalid_location", "Lieu invalide.")
	}
	in.CustomAddress = strings.TrimSpace(in.CustomAddress)
	if in.Location == domain.LocationHome && in.CustomAddress == "" {
		return nil, httperr.Validation("address_required", "Une adresse est requise pour un rendez-vous à domicile.")
	}

	// --------------------------------------------------
	// Catalog
	// --------------------------------------------------
	service, err := uc.repo.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if !service.IsActive {
		return nil, httperr.NotFoundError("service_not_found", "Service introuvable.")
	}

	employee, err := uc.repo.GetEmployee(ctx, in.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !employee.IsActive {
		return nil, httperr.NotFoundError("employee_not_found", "Employé introuvable.")
	}

	// --------------------------------------------------
	// Window
	// --------------------------------------------------
	start := in.Date.In(uc.settings.Location)
	end := start.Add(time.Duration(service.DurationMin) * time.Minute)
	if in.EndTime != nil {
		end = in.EndTime.In(uc.settings.Location)
	}

	if err := domain.ValidateWindow(start, end); err != nil {
		return nil, err
	}
	if !start.After(uc.settings.now()) {
		return nil, httperr.Validation("date_in_past", "La date du rendez-vous doit être dans le futur.")
	}
	if !uc.settings.Hours.Contains(start, end, uc.settings.Location) {
		return nil, httperr.Validation("outside_working_hours", "Le créneau est en dehors des heures d'ouverture.")
	}

	travelFee, total := domain.Price(service.Price, in.Location, uc.settings.HomeTravelFee)

	ap := &models.Appointment{
		UserID:        in.UserID,
		EmployeeID:    employee.ID,
		ServiceID:     service.ID,
		Date:          start,
		EndTime:       end,
		Status:        string(domain.InitialStatus()),
		ServicePrice:  service.Price,
		TravelFee:     travelFee,
		TotalPrice:    total,
		Location:      string(in.Location),
		CustomAddress: in.CustomAddress,
		Lat:           in.Lat,
		Lng:           in.Lng,
		Notes:         strings.TrimSpace(in.Notes),
	}

	// --------------------------------------------------
	// Conflict check + insert, serialized per employee
	// --------------------------------------------------
	err = uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		if err := tx.LockEmployee(ctx, employee.ID); err != nil {
			return err
		}

		busy, err := tx.HasBlockingOverlap(ctx, employee.ID, start, end, nil)
		if err != nil {
			return err
		}
		if busy {
			return errSlotUnavailable()
		}

		return tx.Create(ctx, ap)
	})
	if err != nil {
		if httperr.IsCode(err, "slot_unavailable") {
			uc.audit.Dispatch(audit.Event{
				UserID:   &in.UserID,
				Action:   audit.ActionAppointmentConflict,
				Entity:   audit.EntityAppointment,
				Metadata: map[string]any{"employee_id": employee.ID, "start": start, "end": end},
			})
		}
		return nil, err
	}

	ap.Service = service
	ap.Employee = employee

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   audit.ActionAppointmentBooked,
		Entity:   audit.EntityAppointment,
		EntityID: &ap.ID,
		Metadata: map[string]any{
			"employee_id": employee.ID,
			"service_id":  service.ID,
			"start":       start,
			"location":    ap.Location,
		},
	})

	return ap, nil
}

func errSlotUnavailable() error {
	return httperr.Conflict("slot_unavailable", "Ce créneau n'est plus disponible.")
}
