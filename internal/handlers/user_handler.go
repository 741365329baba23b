package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/lebarbier/lebarbier-api/internal/authz"
	"github.com/lebarbier/lebarbier-api/internal/domain/account"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/httpresp"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
	authuc "github.com/lebarbier/lebarbier-api/internal/usecase/auth"
)

type profileUpdater interface {
	Execute(ctx context.Context, who *authz.Principal, p authuc.ProfilePatch) (*models.User, error)
}

type userLister interface {
	Execute(ctx context.Context, f account.UserFilter) (*authuc.UserList, error)
}

type userCreator interface {
	Execute(ctx context.Context, who *authz.Principal, in authuc.RegisterInput, role authz.Role) (*models.User, error)
}

type UserHandler struct {
	me     profileReader
	update profileUpdater
	list   userLister
	create userCreator
}

func NewUserHandler(
	me *authuc.Me,
	update *authuc.UpdateProfile,
	list *authuc.ListUsers,
	create *authuc.CreateUser,
) *UserHandler {
	return &UserHandler{me: me, update: update, list: list, create: create}
}

// --------- Requests ---------

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" binding:"omitempty,max=100"`
	Phone     *string `json:"phone,omitempty" binding:"omitempty,max=30"`
}

type ListUsersQuery struct {
	Role   string `form:"role" binding:"omitempty,oneof=CLIENT EMPLOYEE ADMIN"`
	Search string `form:"search" binding:"omitempty,max=100"`
	pagination.Params
}

type CreateUserRequest struct {
	RegisterRequest
	Role string `json:"role" binding:"required,oneof=CLIENT EMPLOYEE ADMIN"`
}

// --------- Handlers ---------

func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.me.Execute(c.Request.Context(), principal(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.update.Execute(c.Request.Context(), principal(c), authuc.ProfilePatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Profil mis à jour.", user)
}

func (h *UserHandler) List(c *gin.Context) {
	var q ListUsersQuery
	if !bindQuery(c, &q) {
		return
	}

	out, err := h.list.Execute(c.Request.Context(), account.UserFilter{
		Role:   q.Role,
		Search: q.Search,
		Params: q.Params,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, out)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.create.Execute(c.Request.Context(), principal(c), authuc.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	}, authz.Role(req.Role))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, "Utilisateur créé.", user)
}
