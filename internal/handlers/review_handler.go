package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/authz"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/httpresp"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
	reviewuc "github.com/lebarbier/lebarbier-api/internal/usecase/review"
)

type reviewService interface {
	Create(ctx context.Context, who *authz.Principal, in reviewuc.CreateInput) (*models.Review, error)
	List(ctx context.Context, who *authz.Principal, in reviewuc.ListInput) (*reviewuc.ListOutput, error)
	Get(ctx context.Context, who *authz.Principal, id uuid.UUID) (*models.Review, error)
	Update(ctx context.Context, who *authz.Principal, id uuid.UUID, in reviewuc.UpdateInput) (*models.Review, error)
	Moderate(ctx context.Context, who *authz.Principal, id uuid.UUID, approved bool) (*models.Review, error)
	Respond(ctx context.Context, id uuid.UUID, response string) (*models.Review, error)
	Delete(ctx context.Context, who *authz.Principal, id uuid.UUID) error
}

type ReviewHandler struct {
	reviews reviewService
}

func NewReviewHandler(reviews *reviewuc.Reviews) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// --------- Requests ---------

type ListReviewsQuery struct {
	EmployeeID string `form:"employeeId" binding:"omitempty,uuid"`
	UserID     string `form:"userId" binding:"omitempty,uuid"`
	Approved   *bool  `form:"isApproved"`
	MinRating  int    `form:"minRating" binding:"omitempty,min=1,max=5"`
	pagination.Params
}

// Column sizes bound the text fields.
type CreateReviewRequest struct {
	AppointmentID  uuid.UUID  `json:"appointment_id" binding:"required"`
	EmployeeID     *uuid.UUID `json:"employee_id"`
	ServiceRating  int        `json:"service_rating" binding:"required,min=1,max=5"`
	EmployeeRating int        `json:"employee_rating" binding:"required,min=1,max=5"`
	Comment        string     `json:"comment" binding:"max=1000"`
}

type UpdateReviewRequest struct {
	ServiceRating  *int    `json:"service_rating,omitempty" binding:"omitempty,min=1,max=5"`
	EmployeeRating *int    `json:"employee_rating,omitempty" binding:"omitempty,min=1,max=5"`
	Comment        *string `json:"comment,omitempty" binding:"omitempty,max=1000"`
}

type ModerateReviewRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

type RespondReviewRequest struct {
	Response string `json:"response" binding:"required,max=1000"`
}

// --------- Handlers ---------

func (h *ReviewHandler) List(c *gin.Context) {
	var q ListReviewsQuery
	if !bindQuery(c, &q) {
		return
	}

	out, err := h.reviews.List(c.Request.Context(), principal(c), reviewuc.ListInput{
		EmployeeID: optionalUUID(q.EmployeeID),
		UserID:     optionalUUID(q.UserID),
		Approved:   q.Approved,
		MinRating:  q.MinRating,
		Params:     q.Params,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, out)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	rv, err := h.reviews.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, rv)
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	rv, err := h.reviews.Create(c.Request.Context(), principal(c), reviewuc.CreateInput{
		AppointmentID:  req.AppointmentID,
		EmployeeID:     req.EmployeeID,
		ServiceRating:  req.ServiceRating,
		EmployeeRating: req.EmployeeRating,
		Comment:        req.Comment,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, "Avis envoyé. Il sera publié après modération.", rv)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	rv, err := h.reviews.Update(c.Request.Context(), principal(c), id, reviewuc.UpdateInput{
		ServiceRating:  req.ServiceRating,
		EmployeeRating: req.EmployeeRating,
		Comment:        req.Comment,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Avis mis à jour.", rv)
}

func (h *ReviewHandler) Moderate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req ModerateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	rv, err := h.reviews.Moderate(c.Request.Context(), principal(c), id, *req.Approved)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	msg := "Avis masqué."
	if rv.IsApproved {
		msg = "Avis approuvé."
	}
	httpresp.Message(c, msg, rv)
}

func (h *ReviewHandler) Respond(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req RespondReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	rv, err := h.reviews.Respond(c.Request.Context(), id, req.Response)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Réponse publiée.", rv)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.reviews.Delete(c.Request.Context(), principal(c), id); err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Avis supprimé.", nil)
}
