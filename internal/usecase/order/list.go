package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/authz"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/order"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
)

type ListInput struct {
	// UserID narrows an admin listing to one customer. Ignored for others.
	UserID      *uuid.UUID
	Status      string
	OrderNumber string
	pagination.Params
}

type ListOutput struct {
	Orders     []models.Order      `json:"orders"`
	Pagination pagination.Meta     `json:"pagination"`
	Stats      []domain.StatusStat `json:"stats"`
}

type ListOrders struct {
	repo domain.Repository
}

func NewListOrders(repo domain.Repository) *ListOrders {
	return &ListOrders{repo: repo}
}

func (uc *ListOrders) Execute(ctx context.Context, who *authz.Principal, in ListInput) (*ListOutput, error) {
	f := domain.Filter{
		Status:      in.Status,
		OrderNumber: in.OrderNumber,
		Params:      in.Params.Normalize(pagination.DefaultLimit),
	}

	switch {
	case who.IsAdmin():
		f.UserID = in.UserID
	default:
		f.UserID = &who.UserID
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	orders, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	stats, err := uc.repo.Stats(ctx, f)
	if err != nil {
		return nil, err
	}

	if orders == nil {
		orders = []models.Order{}
	}

	return &ListOutput{
		Orders:     orders,
		Pagination: pagination.NewMeta(f.Params, total),
		Stats:      stats,
	}, nil
}

type GetOrder struct {
	repo domain.Repository
}

func NewGetOrder(repo domain.Repository) *GetOrder {
	return &GetOrder{repo: repo}
}

func (uc *GetOrder) Execute(ctx context.Context, who *authz.Principal, id uuid.UUID) (*models.Order, error) {
	o, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !who.Owns(o.UserID) {
		return nil, httperr.Forbidden("forbidden", "Cette commande ne vous appartient pas.")
	}
	return o, nil
}
