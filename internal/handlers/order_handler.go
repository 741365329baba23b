package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/authz"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/order"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/httpresp"
	"github.com/lebarbier/lebarbier-api/internal/infra/receipt"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
	orderuc "github.com/lebarbier/lebarbier-api/internal/usecase/order"
)

// ======================================================
// HANDLER
// ======================================================

type orderCreator interface {
	Execute(ctx context.Context, in orderuc.CreateInput) (*models.Order, error)
}

type orderLister interface {
	Execute(ctx context.Context, who *authz.Principal, in orderuc.ListInput) (*orderuc.ListOutput, error)
}

type orderGetter interface {
	Execute(ctx context.Context, who *authz.Principal, id uuid.UUID) (*models.Order, error)
}

type orderUpdater interface {
	Execute(ctx context.Context, who *authz.Principal, id uuid.UUID, u domain.Update) (*models.Order, error)
}

type orderDeleter interface {
	Execute(ctx context.Context, who *authz.Principal, id uuid.UUID) error
}

type receiptRenderer interface {
	PNG(o *models.Order) ([]byte, error)
}

type OrderHandler struct {
	create  orderCreator
	list    orderLister
	get     orderGetter
	update  orderUpdater
	remove  orderDeleter
	receipt receiptRenderer
}

func NewOrderHandler(
	create *orderuc.CreateOrder,
	list *orderuc.ListOrders,
	get *orderuc.GetOrder,
	update *orderuc.UpdateOrder,
	remove *orderuc.DeleteOrder,
	receipts *receipt.Generator,
) *OrderHandler {
	return &OrderHandler{
		create:  create,
		list:    list,
		get:     get,
		update:  update,
		remove:  remove,
		receipt: receipts,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateOrderRequest struct {
	Items           []domain.LineRequest `json:"items" binding:"required,dive"`
	ShippingAddress string               `json:"shipping_address" binding:"required,max=500"`
	Notes           string               `json:"notes" binding:"max=500"`
}

type UpdateOrderRequest struct {
	Status          *string `json:"status,omitempty"`
	TrackingNumber  *string `json:"tracking_number,omitempty" binding:"omitempty,max=100"`
	ShippingAddress *string `json:"shipping_address,omitempty" binding:"omitempty,max=500"`
	Notes           *string `json:"notes,omitempty" binding:"omitempty,max=500"`
}

type ListOrdersQuery struct {
	UserID      string `form:"userId" binding:"omitempty,uuid"`
	Status      string `form:"status"`
	OrderNumber string `form:"orderNumber"`

	pagination.Params
}

// ======================================================
// HANDLERS
// ======================================================

func (h *OrderHandler) List(c *gin.Context) {
	var q ListOrdersQuery
	if !bindQuery(c, &q) {
		return
	}

	in := orderuc.ListInput{
		Status:      q.Status,
		OrderNumber: q.OrderNumber,
		Params:      q.Params,
	}
	if q.UserID != "" {
		id := uuid.MustParse(q.UserID)
		in.UserID = &id
	}

	out, err := h.list.Execute(c.Request.Context(), principal(c), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, out)
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.create.Execute(c.Request.Context(), orderuc.CreateInput{
		UserID:          principal(c).UserID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, "Commande créée avec succès.", o)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	o, err := h.get.Execute(c.Request.Context(), principal(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, o)
}

func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	u := domain.Update{
		TrackingNumber:  req.TrackingNumber,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	}
	if req.Status != nil {
		s := domain.Status(*req.Status)
		u.Status = &s
	}

	o, err := h.update.Execute(c.Request.Context(), principal(c), id, u)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Commande mise à jour.", o)
}

func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.remove.Execute(c.Request.Context(), principal(c), id); err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Commande supprimée.", nil)
}

// Receipt renders the order's QR receipt as a PNG.
func (h *OrderHandler) Receipt(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	o, err := h.get.Execute(c.Request.Context(), principal(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	png, err := h.receipt.PNG(o)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, "image/png", png)
}
