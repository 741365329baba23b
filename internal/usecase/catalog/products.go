package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lebarbier/lebarbier-api/internal/audit"
	"github.com/lebarbier/lebarbier-api/internal/authz"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/catalog"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/infra/storage"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
)

// ProductPatch carries optional fields; nil leaves the column untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Category    *string
	Price       *decimal.Decimal
	Stock       *int
	IsActive    *bool
}

type ProductList struct {
	Products   []models.Product `json:"products"`
	Pagination pagination.Meta  `json:"pagination"`
}

type Products struct {
	repo  domain.ProductRepository
	store storage.ObjectStore
	audit audit.Publisher

	maxWidth int
	quality  float32
}

func NewProducts(
	repo domain.ProductRepository,
	store storage.ObjectStore,
	audit audit.Publisher,
	maxWidth int,
	quality float32,
) *Products {
	return &Products{repo: repo, store: store, audit: audit, maxWidth: maxWidth, quality: quality}
}

// List hides inactive products from everyone but admins.
func (uc *Products) List(ctx context.Context, who *authz.Principal, f domain.ProductFilter) (*ProductList, error) {
	if !who.IsAdmin() {
		f.IncludeInactive = false
	}
	f.Params = f.Params.Normalize(pagination.DefaultLimit)

	if err := f.Validate(); err != nil {
		return nil, err
	}

	products, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}

	return &ProductList{Products: products, Pagination: pagination.NewMeta(f.Params, total)}, nil
}

func (uc *Products) Get(ctx context.Context, who *authz.Principal, id uuid.UUID) (*models.Product, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive && !who.IsAdmin() {
		return nil, httperr.NotFoundError("product_not_found", "Produit introuvable.")
	}
	return p, nil
}

func (uc *Products) Create(ctx context.Context, who *authz.Principal, p ProductPatch) (*models.Product, error) {
	if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
		return nil, httperr.Validation("name_required", "Le nom du produit est requis.")
	}
	if p.Price == nil {
		return nil, httperr.Validation("price_required", "Le prix du produit est requis.")
	}

	product := &models.Product{IsActive: true}
	if err := applyProduct(product, p); err != nil {
		return nil, err
	}
	product.Slug = domain.Slugify(product.Name)

	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	uc.dispatch(who, audit.ActionProductCreated, product)
	return product, nil
}

func (uc *Products) Update(ctx context.Context, who *authz.Principal, id uuid.UUID, p ProductPatch) (*models.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyProduct(product, p); err != nil {
		return nil, err
	}
	if p.Name != nil {
		product.Slug = domain.Slugify(product.Name)
	}

	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	uc.dispatch(who, audit.ActionProductUpdated, product)
	return product, nil
}

// Deactivate retires a product from the shop. Orders keep their line
// snapshots.
func (uc *Products) Deactivate(ctx context.Context, who *authz.Principal, id uuid.UUID) (*models.Product, error) {
	off := false
	return uc.Update(ctx, who, id, ProductPatch{IsActive: &off})
}

// UploadImage re-encodes the upload as WebP, stores it and points the
// product at the stored object.
func (uc *Products) UploadImage(ctx context.Context, who *authz.Principal, id uuid.UUID, raw []byte) (*models.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	webp, err := storage.ToWebP(raw, uc.maxWidth, uc.quality)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("products/%s/%s.webp", product.ID, uuid.NewString())
	url, err := uc.store.Put(ctx, key, webp, "image/webp")
	if err != nil {
		return nil, err
	}

	product.ImageURL = url
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	uc.dispatch(who, audit.ActionProductUpdated, product)
	return product, nil
}

func (uc *Products) dispatch(who *authz.Principal, action string, p *models.Product) {
	uc.audit.Dispatch(audit.Event{
		UserID:   &who.UserID,
		Action:   action,
		Entity:   audit.EntityProduct,
		EntityID: &p.ID,
		Metadata: map[string]any{"name": p.Name, "price": p.Price.StringFixed(2), "stock": p.Stock},
	})
}

func applyProduct(dst *models.Product, p ProductPatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return httperr.Validation("name_required", "Le nom du produit est requis.")
		}
		dst.Name = name
	}
	if p.Description != nil {
		dst.Description = strings.TrimSpace(*p.Description)
	}
	if p.Category != nil {
		dst.Category = strings.TrimSpace(*p.Category)
	}
	if p.Price != nil {
		if !p.Price.IsPositive() {
			return httperr.Validation("invalid_price", "Le prix doit être positif.")
		}
		dst.Price = p.Price.Round(2)
	}
	if p.Stock != nil {
		if *p.Stock < 0 {
			return httperr.Validation("invalid_stock", "Le stock ne peut pas être négatif.")
		}
		dst.Stock = *p.Stock
	}
	if p.IsActive != nil {
		dst.IsActive = *p.IsActive
	}
	return nil
}
