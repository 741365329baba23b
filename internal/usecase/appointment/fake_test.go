package appointment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lebarbier/lebarbier-api/internal/audit"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/appointment"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

var wat = time.FixedZone("WAT", 3600)

// fixedNow is a Monday morning before opening.
var fixedNow = time.Date(2030, 1, 7, 7, 0, 0, 0, wat)

func testSettings() Settings {
	return Settings{
		Location:      wat,
		Hours:         domain.DefaultWorkingHours(),
		HomeTravelFee: decimal.NewFromInt(5000),
		Now:           func() time.Time { return fixedNow },
	}
}

func at(hour, min int) time.Time {
	return time.Date(2030, 1, 7, hour, min, 0, 0, wat)
}

type fakeRepo struct {
	mu           sync.Mutex
	services     map[uuid.UUID]models.Service
	employees    map[uuid.UUID]models.Employee
	appointments map[uuid.UUID]models.Appointment
	locked       []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		services:     map[uuid.UUID]models.Service{},
		employees:    map[uuid.UUID]models.Employee{},
		appointments: map[uuid.UUID]models.Appointment{},
	}
}

func (f *fakeRepo) addService(minutes int, price int64) models.Service {
	s := models.Service{ID: uuid.New(), Name: "Coupe", DurationMin: minutes, Price: decimal.NewFromInt(price), IsActive: true}
	f.services[s.ID] = s
	return s
}

func (f *fakeRepo) addEmployee() models.Employee {
	e := models.Employee{ID: uuid.New(), UserID: uuid.New(), IsActive: true}
	f.employees[e.ID] = e
	return e
}

func (f *fakeRepo) addAppointment(employeeID uuid.UUID, start, end time.Time, status domain.Status) models.Appointment {
	ap := models.Appointment{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		EmployeeID: employeeID,
		Date:       start,
		EndTime:    end,
		Status:     string(status),
	}
	f.appointments[ap.ID] = ap
	return ap
}

func (f *fakeRepo) WithTx(_ context.Context, fn func(tx domain.Repository) error) error {
	f.mu.Lock()
	snapshot := make(map[uuid.UUID]models.Appointment, len(f.appointments))
	for k, v := range f.appointments {
		snapshot[k] = v
	}
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.appointments = snapshot
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeRepo) GetService(_ context.Context, id uuid.UUID) (*models.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, httperr.NotFoundError("service_not_found", "Service introuvable.")
	}
	return &s, nil
}

func (f *fakeRepo) GetEmployee(_ context.Context, id uuid.UUID) (*models.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return nil, httperr.NotFoundError("employee_not_found", "Employé introuvable.")
	}
	return &e, nil
}

func (f *fakeRepo) GetEmployeeByUser(_ context.Context, userID uuid.UUID) (*models.Employee, error) {
	for _, e := range f.employees {
		if e.UserID == userID {
			return &e, nil
		}
	}
	return nil, httperr.NotFoundError("employee_not_found", "Employé introuvable.")
}

func (f *fakeRepo) LockEmployee(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locked = append(f.locked, id)
	return nil
}

func (f *fakeRepo) ListBlocking(_ context.Context, employeeID uuid.UUID, from, to time.Time) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Appointment
	for _, ap := range f.appointments {
		if ap.EmployeeID == employeeID && domain.Status(ap.Status).Blocking() && domain.Overlaps(ap.Date, ap.EndTime, from, to) {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (f *fakeRepo) HasBlockingOverlap(ctx context.Context, employeeID uuid.UUID, start, end time.Time, exclude *uuid.UUID) (bool, error) {
	apps, _ := f.ListBlocking(ctx, employeeID, start, end)
	for _, ap := range apps {
		if exclude != nil && ap.ID == *exclude {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (f *fakeRepo) Create(_ context.Context, ap *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ap.ID = uuid.New()
	f.appointments[ap.ID] = *ap
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ap, ok := f.appointments[id]
	if !ok {
		return nil, httperr.NotFoundError("appointment_not_found", "Rendez-vous introuvable.")
	}
	return &ap, nil
}

func (f *fakeRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRepo) Update(_ context.Context, ap *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appointments[ap.ID] = *ap
	return nil
}

func (f *fakeRepo) List(_ context.Context, flt domain.Filter) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Appointment
	for _, ap := range f.appointments {
		if matches(ap, flt) {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountByStatus(ctx context.Context, flt domain.Filter) (map[domain.Status]int64, error) {
	flt.Status = ""
	apps, _ := f.List(ctx, flt)

	out := map[domain.Status]int64{}
	for _, s := range domain.AllStatuses {
		out[s] = 0
	}
	for _, ap := range apps {
		out[domain.Status(ap.Status)]++
	}
	return out, nil
}

func matches(ap models.Appointment, f domain.Filter) bool {
	switch {
	case f.UserID != nil && ap.UserID != *f.UserID:
		return false
	case f.EmployeeID != nil && ap.EmployeeID != *f.EmployeeID:
		return false
	case f.Status != "" && ap.Status != f.Status:
		return false
	case f.From != nil && ap.Date.Before(*f.From):
		return false
	case f.To != nil && !ap.Date.Before(*f.To):
		return false
	}
	return true
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []audit.Event
}

func (p *recordingPublisher) Dispatch(ev audit.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Action)
	}
	return out
}
