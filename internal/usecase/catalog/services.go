package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lebarbier/lebarbier-api/internal/authz"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/catalog"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

type ServicePatch struct {
	Name        *string
	Description *string
	DurationMin *int
	Price       *decimal.Decimal
	IsActive    *bool
}

type Services struct {
	repo domain.ServiceRepository
}

func NewServices(repo domain.ServiceRepository) *Services {
	return &Services{repo: repo}
}

func (uc *Services) List(ctx context.Context, who *authz.Principal) ([]models.Service, error) {
	services, err := uc.repo.List(ctx, who.IsAdmin())
	if err != nil {
		return nil, err
	}
	if services == nil {
		services = []models.Service{}
	}
	return services, nil
}

// Get hides retired services from everyone but admins.
func (uc *Services) Get(ctx context.Context, who *authz.Principal, id uuid.UUID) (*models.Service, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.IsActive && !who.IsAdmin() {
		return nil, httperr.NotFoundError("service_not_found", "Service introuvable.")
	}
	return s, nil
}

func (uc *Services) Create(ctx context.Context, p ServicePatch) (*models.Service, error) {
	if p.Name == nil || p.DurationMin == nil || p.Price == nil {
		return nil, httperr.Validation("missing_fields", "Nom, durée et prix sont requis.")
	}

	s := &models.Service{IsActive: true}
	if err := applyService(s, p); err != nil {
		return nil, err
	}
	s.Slug = domain.Slugify(s.Name)

	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *Services) Update(ctx context.Context, id uuid.UUID, p ServicePatch) (*models.Service, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyService(s, p); err != nil {
		return nil, err
	}
	if p.Name != nil {
		s.Slug = domain.Slugify(s.Name)
	}

	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func applyService(dst *models.Service, p ServicePatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return httperr.Validation("name_required", "Le nom de la prestation est requis.")
		}
		dst.Name = name
	}
	if p.Description != nil {
		dst.Description = strings.TrimSpace(*p.Description)
	}
	if p.DurationMin != nil {
		if *p.DurationMin <= 0 || *p.DurationMin > 8*60 {
			return httperr.Validation("invalid_duration", "Durée de prestation invalide.")
		}
		dst.DurationMin = *p.DurationMin
	}
	if p.Price != nil {
		if p.Price.IsNegative() {
			return httperr.Validation("invalid_price", "Le prix ne peut pas être négatif.")
		}
		dst.Price = p.Price.Round(2)
	}
	if p.IsActive != nil {
		dst.IsActive = *p.IsActive
	}
	return nil
}

// Deactivate retires a service. Past appointments keep pointing at it.
func (uc *Services) Deactivate(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	off := false
	return uc.Update(ctx, id, ServicePatch{IsActive: &off})
}
