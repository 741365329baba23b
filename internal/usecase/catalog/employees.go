package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/authz"
	"github.com/lebarbier/lebarbier-api/internal/domain/account"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/catalog"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

type Employees struct {
	repo  domain.EmployeeRepository
	users account.Repository
}

func NewEmployees(repo domain.EmployeeRepository, users account.Repository) *Employees {
	return &Employees{repo: repo, users: users}
}

func (uc *Employees) List(ctx context.Context, who *authz.Principal) ([]models.Employee, error) {
	employees, err := uc.repo.List(ctx, who.IsAdmin())
	if err != nil {
		return nil, err
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	return employees, nil
}

func (uc *Employees) Get(ctx context.Context, who *authz.Principal, id uuid.UUID) (*models.Employee, error) {
	e, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.IsActive && !who.IsAdmin() {
		return nil, httperr.NotFoundError("employee_not_found", "Employé introuvable.")
	}
	return e, nil
}

// Create promotes an existing account to EMPLOYEE and attaches its staff
// profile. Admin accounts keep their role.
func (uc *Employees) Create(ctx context.Context, userID uuid.UUID, specialties string) (*models.Employee, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	e := &models.Employee{
		UserID:      user.ID,
		Specialties: strings.TrimSpace(specialties),
		IsActive:    true,
	}
	if err := uc.repo.Create(ctx, e); err != nil {
		if httperr.IsUniqueViolation(err) {
			return nil, httperr.Conflict("already_employee", "Cet utilisateur est déjà employé.")
		}
		return nil, err
	}

	if authz.Role(user.Role) != authz.RoleAdmin {
		if err := uc.users.UpdateRole(ctx, user.ID, string(authz.RoleEmployee)); err != nil {
			return nil, err
		}
		user.Role = string(authz.RoleEmployee)
	}

	e.User = *user
	return e, nil
}

// Deactivate takes an employee off the booking schedule. The account and
// its role are left as they are.
func (uc *Employees) Deactivate(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	e, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	e.IsActive = false
	if err := uc.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}
