package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/models"
)

type Repository interface {
	// WithTx runs fn against a repository bound to one transaction.
	WithTx(ctx context.Context, fn func(tx Repository) error) error

	// -------- Catalog --------
	GetService(ctx context.Context, id uuid.UUID) (*models.Service, error)
	GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	GetEmployeeByUser(ctx context.Context, userID uuid.UUID) (*models.Employee, error)

	// LockEmployee takes a row lock on the employee, serializing bookings
	// against the same schedule until the transaction ends.
	LockEmployee(ctx context.Context, id uuid.UUID) error

	// -------- Schedule --------
	ListBlocking(ctx context.Context, employeeID uuid.UUID, from, to time.Time) ([]models.Appointment, error)
	HasBlockingOverlap(ctx context.Context, employeeID uuid.UUID, start, end time.Time, exclude *uuid.UUID) (bool, error)

	// -------- Appointment --------
	Create(ctx context.Context, ap *models.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	Update(ctx context.Context, ap *models.Appointment) error
	List(ctx context.Context, f Filter) ([]models.Appointment, error)
	CountByStatus(ctx context.Context, f Filter) (map[Status]int64, error)
}
