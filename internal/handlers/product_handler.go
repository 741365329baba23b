package handlers

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domain "github.com/lebarbier/lebarbier-api/internal/domain/catalog"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/httpresp"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
	cataloguc "github.com/lebarbier/lebarbier-api/internal/usecase/catalog"
)

// maxImageForm bounds the multipart read; storage.ToWebP enforces the
// exact image limit.
const maxImageForm = 8<<20 + 1

type ProductHandler struct {
	products *cataloguc.Products
}

func NewProductHandler(products *cataloguc.Products) *ProductHandler {
	return &ProductHandler{products: products}
}

// --------- Requests ---------

type ListProductsQuery struct {
	Category        string `form:"category"`
	Query           string `form:"query"`
	MinPrice        string `form:"minPrice"`
	MaxPrice        string `form:"maxPrice"`
	Sort            string `form:"sort"`
	IncludeInactive bool   `form:"includeInactive"`

	pagination.Params
}

type ProductRequest struct {
	Name        *string          `json:"name,omitempty" binding:"omitempty,max=150"`
	Description *string          `json:"description,omitempty" binding:"omitempty,max=1000"`
	Category    *string          `json:"category,omitempty" binding:"omitempty,max=50"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Active      *bool            `json:"active,omitempty"`
}

func (r ProductRequest) patch() cataloguc.ProductPatch {
	return cataloguc.ProductPatch{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		Stock:       r.Stock,
		IsActive:    r.Active,
	}
}

// --------- Handlers ---------

func (h *ProductHandler) List(c *gin.Context) {
	var q ListProductsQuery
	if !bindQuery(c, &q) {
		return
	}

	f := domain.ProductFilter{
		Category:        q.Category,
		Query:           q.Query,
		Sort:            q.Sort,
		IncludeInactive: q.IncludeInactive,
		Params:          q.Params,
	}

	var err error
	if f.MinPrice, err = optionalDecimal(q.MinPrice); err != nil {
		httperr.Respond(c, err)
		return
	}
	if f.MaxPrice, err = optionalDecimal(q.MaxPrice); err != nil {
		httperr.Respond(c, err)
		return
	}

	out, err := h.products.List(c.Request.Context(), principal(c), f)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, out)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	p, err := h.products.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, p)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.products.Create(c.Request.Context(), principal(c), req.patch())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, "Produit créé.", p)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.products.Update(c.Request.Context(), principal(c), id, req.patch())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Produit mis à jour.", p)
}

// UploadImage takes the multipart field "image".
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	p, err := h.products.Deactivate(c.Request.Context(), principal(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Produit désactivé.", p)
}

func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		httperr.Respond(c, httperr.Validation("image_required", "Le champ image est requis."))
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxImageForm))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	p, err := h.products.UploadImage(c.Request.Context(), principal(c), id, raw)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Image enregistrée.", p)
}

func optionalDecimal(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, httperr.Validation("invalid_price", "Prix invalide.")
	}
	return &d, nil
}
