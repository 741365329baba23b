package review

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/audit"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/review"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

type employeeRating struct {
	avg   float64
	count int
}

type fakeRepo struct {
	appointments map[uuid.UUID]models.Appointment
	reviews      map[uuid.UUID]models.Review
	ratings      map[uuid.UUID]employeeRating
	last         domain.Filter
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		appointments: map[uuid.UUID]models.Appointment{},
		reviews:      map[uuid.UUID]models.Review{},
		ratings:      map[uuid.UUID]employeeRating{},
	}
}

func (f *fakeRepo) addAppointment(userID, employeeID uuid.UUID, status string) models.Appointment {
	ap := models.Appointment{ID: uuid.New(), UserID: userID, EmployeeID: employeeID, Status: status}
	f.appointments[ap.ID] = ap
	return ap
}

func (f *fakeRepo) WithTx(_ context.Context, fn func(tx domain.Repository) error) error {
	reviews := make(map[uuid.UUID]models.Review, len(f.reviews))
	for k, v := range f.reviews {
		reviews[k] = v
	}
	ratings := make(map[uuid.UUID]employeeRating, len(f.ratings))
	for k, v := range f.ratings {
		ratings[k] = v
	}

	if err := fn(f); err != nil {
		f.reviews, f.ratings = reviews, ratings
		return err
	}
	return nil
}

func (f *fakeRepo) GetAppointment(_ context.Context, id uuid.UUID) (*models.Appointment, error) {
	ap, ok := f.appointments[id]
	if !ok {
		return nil, httperr.NotFoundError("appointment_not_found", "Rendez-vous introuvable.")
	}
	return &ap, nil
}

func (f *fakeRepo) Create(_ context.Context, rv *models.Review) error {
	for _, existing := range f.reviews {
		if existing.AppointmentID == rv.AppointmentID {
			return httperr.Conflict("review_exists", "Un avis existe déjà pour ce rendez-vous.")
		}
	}
	rv.ID = uuid.New()
	f.reviews[rv.ID] = *rv
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Review, error) {
	rv, ok := f.reviews[id]
	if !ok {
		return nil, httperr.NotFoundError("review_not_found", "Avis introuvable.")
	}
	return &rv, nil
}

func (f *fakeRepo) Update(_ context.Context, rv *models.Review) error {
	f.reviews[rv.ID] = *rv
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.reviews[id]; !ok {
		return httperr.NotFoundError("review_not_found", "Avis introuvable.")
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context, filter domain.Filter) ([]models.Review, int64, error) {
	f.last = filter

	var out []models.Review
	for _, rv := range f.reviews {
		if filter.Approved != nil && rv.IsApproved != *filter.Approved &&
			(filter.Viewer == nil || rv.UserID != *filter.Viewer) {
			continue
		}
		if filter.EmployeeID != nil && rv.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, rv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, int64(len(out)), nil
}

func (f *fakeRepo) Stats(_ context.Context, _ domain.Filter) (domain.Stats, error) {
	var s domain.Stats
	for _, rv := range f.reviews {
		s.Total++
		if rv.IsApproved {
			s.Approved++
		} else {
			s.Pending++
		}
	}
	return s, nil
}

func (f *fakeRepo) ApprovedRatings(_ context.Context, employeeID uuid.UUID) ([]int, error) {
	var out []int
	for _, rv := range f.reviews {
		if rv.EmployeeID == employeeID && rv.IsApproved {
			out = append(out, rv.EmployeeRating)
		}
	}
	return out, nil
}

func (f *fakeRepo) SetEmployeeRating(_ context.Context, employeeID uuid.UUID, avg float64, count int) error {
	f.ratings[employeeID] = employeeRating{avg: avg, count: count}
	return nil
}

type recordingPublisher struct {
	events []audit.Event
}

func (p *recordingPublisher) Dispatch(ev audit.Event) {
	p.events = append(p.events, ev)
}
