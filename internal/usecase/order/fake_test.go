package order

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lebarbier/lebarbier-api/internal/audit"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/order"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

type fakeRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]models.Product
	orders   map[uuid.UUID]models.Order

	// failCreate makes the final insert fail, after stock was decremented.
	failCreate error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products: map[uuid.UUID]models.Product{},
		orders:   map[uuid.UUID]models.Order{},
	}
}

func (f *fakeRepo) addProduct(name string, price int64, stock int) models.Product {
	p := models.Product{ID: uuid.New(), Name: name, Price: decimal.NewFromInt(price), Stock: stock, IsActive: true}
	f.products[p.ID] = p
	return p
}

func (f *fakeRepo) stock(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].Stock
}

func (f *fakeRepo) WithTx(_ context.Context, fn func(tx domain.Repository) error) error {
	f.mu.Lock()
	products := make(map[uuid.UUID]models.Product, len(f.products))
	for k, v := range f.products {
		products[k] = v
	}
	orders := make(map[uuid.UUID]models.Order, len(f.orders))
	for k, v := range f.orders {
		orders[k] = v
	}
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.products, f.orders = products, orders
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeRepo) LockProducts(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (f *fakeRepo) DecrementStock(_ context.Context, id uuid.UUID, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	if p.Stock < qty {
		return httperr.Conflict("insufficient_stock", "Stock insuffisant pour ce produit.")
	}
	p.Stock -= qty
	f.products[id] = p
	return nil
}

func (f *fakeRepo) IncrementStock(_ context.Context, id uuid.UUID, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	p.Stock += qty
	f.products[id] = p
	return nil
}

func (f *fakeRepo) Create(_ context.Context, o *models.Order) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = uuid.New()
	f.orders[o.ID] = *o
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, httperr.NotFoundError("order_not_found", "Commande introuvable.")
	}
	return &o, nil
}

func (f *fakeRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRepo) Update(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = *o
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[id]; !ok {
		return httperr.NotFoundError("order_not_found", "Commande introuvable.")
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context, flt domain.Filter) ([]models.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if flt.UserID != nil && o.UserID != *flt.UserID {
			continue
		}
		if flt.Status != "" && o.Status != flt.Status {
			continue
		}
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) Stats(ctx context.Context, flt domain.Filter) ([]domain.StatusStat, error) {
	flt.Status = ""
	orders, _, _ := f.List(ctx, flt)

	by := map[string]*domain.StatusStat{}
	for _, o := range orders {
		s, ok := by[o.Status]
		if !ok {
			s = &domain.StatusStat{Status: o.Status, Total: decimal.Zero}
			by[o.Status] = s
		}
		s.Count++
		s.Total = s.Total.Add(o.Total)
	}

	out := make([]domain.StatusStat, 0, len(by))
	for _, s := range by {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

type recordingInvalidator struct {
	ids []uuid.UUID
}

func (r *recordingInvalidator) Invalidate(_ context.Context, ids ...uuid.UUID) {
	r.ids = append(r.ids, ids...)
}

type recordingPublisher struct {
	events []audit.Event
}

func (p *recordingPublisher) Dispatch(ev audit.Event) {
	p.events = append(p.events, ev)
}
