package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/authz"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/appointment"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/timezone"
)

type ListInput struct {
	Status    string
	StartDate string
	EndDate   string
	// Date is a single calendar day; it overrides StartDate/EndDate.
	Date string
}

type ListOutput struct {
	Appointments []models.Appointment     `json:"appointments"`
	Stats        map[domain.Status]int64 `json:"stats"`
}

type ListAppointments struct {
	repo     domain.Repository
	settings Settings
}

func NewListAppointments(repo domain.Repository, settings Settings) *ListAppointments {
	return &ListAppointments{repo: repo, settings: settings}
}

// ForClient lists the caller's own bookings.
func (uc *ListAppointments) ForClient(
	ctx context.Context,
	who *authz.Principal,
	in ListInput,
) (*ListOutput, error) {

	f, err := uc.filter(in)
	if err != nil {
		return nil, err
	}
	f.UserID = &who.UserID

	return uc.run(ctx, f)
}

// ForStaff lists the caller's schedule. Admins see every employee.
func (uc *ListAppointments) ForStaff(
	ctx context.Context,
	who *authz.Principal,
	in ListInput,
) (*ListOutput, error) {

	f, err := uc.filter(in)
	if err != nil {
		return nil, err
	}

	if !who.IsAdmin() {
		employee, err := uc.repo.GetEmployeeByUser(ctx, who.UserID)
		if err != nil {
			return nil, err
		}
		f.EmployeeID = &employee.ID
	}

	return uc.run(ctx, f)
}

func (uc *ListAppointments) filter(in ListInput) (domain.Filter, error) {
	f := domain.Filter{Status: in.Status}
	loc := uc.settings.Location

	parse := func(s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		t, err := timezone.ParseDate(s, loc)
		if err != nil {
			return nil, httperr.Validation("invalid_date", "Date invalide (format attendu AAAA-MM-JJ).")
		}
		return &t, nil
	}

	if in.Date != "" {
		day, err := parse(in.Date)
		if err != nil {
			return f, err
		}
		from, to := timezone.DayBounds(*day, loc)
		f.From, f.To = &from, &to
	} else {
		from, err := parse(in.StartDate)
		if err != nil {
			return f, err
		}
		to, err := parse(in.EndDate)
		if err != nil {
			return f, err
		}
		if to != nil {
			// end date is inclusive
			next := to.AddDate(0, 0, 1)
			to = &next
		}
		f.From, f.To = from, to
	}

	return f, f.Validate()
}

func (uc *ListAppointments) run(ctx context.Context, f domain.Filter) (*ListOutput, error) {
	apps, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	stats, err := uc.repo.CountByStatus(ctx, f)
	if err != nil {
		return nil, err
	}

	if apps == nil {
		apps = []models.Appointment{}
	}

	return &ListOutput{Appointments: apps, Stats: stats}, nil
}

type GetAppointment struct {
	repo domain.Repository
}

func NewGetAppointment(repo domain.Repository) *GetAppointment {
	return &GetAppointment{repo: repo}
}

// Execute returns the appointment to its owner, its assigned employee or
// an admin.
func (uc *GetAppointment) Execute(
	ctx context.Context,
	who *authz.Principal,
	id uuid.UUID,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if who.Owns(ap.UserID) {
		return ap, nil
	}

	if who.Role == authz.RoleEmployee {
		employee, err := uc.repo.GetEmployeeByUser(ctx, who.UserID)
		if err == nil && employee.ID == ap.EmployeeID {
			return ap, nil
		}
	}

	return nil, httperr.Forbidden("forbidden", "Accès refusé à ce rendez-vous.")
}
