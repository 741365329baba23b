package appointment

import (
	"context"

	"github.com/google/uuid"

	domain "github.com/lebarbier/lebarbier-api/internal/domain/appointment"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/timezone"
)

type AvailabilityInput struct {
	EmployeeID uuid.UUID
	Date       string
}

type GetAvailability struct {
	repo     domain.Repository
	settings Settings
}

func NewGetAvailability(repo domain.Repository, settings Settings) *GetAvailability {
	return &GetAvailability{repo: repo, settings: settings}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in AvailabilityInput,
) ([]domain.AvailabilitySlot, error) {

	day, err := timezone.ParseDate(in.Date, uc.settings.Location)
	if err != nil {
		return nil, httperr.Validation("invalid_date", "Date invalide (format attendu AAAA-MM-JJ).")
	}

	employee, err := uc.repo.GetEmployee(ctx, in.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !employee.IsActive {
		return nil, httperr.NotFoundError("employee_not_found", "Employé introuvable.")
	}

	slots, err := domain.GenerateSlots(day, uc.settings.Location, uc.settings.Hours)
	if err != nil {
		return nil, err
	}

	opening, closing := uc.settings.Hours.Bounds(day, uc.settings.Location)

	booked, err := uc.repo.ListBlocking(ctx, employee.ID, opening, closing)
	if err != nil {
		return nil, err
	}

	return domain.MarkAvailability(slots, domain.BookedIntervals(booked)), nil
}
