package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/lebarbier/lebarbier-api/internal/authz"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/httpresp"
	"github.com/lebarbier/lebarbier-api/internal/models"
	authuc "github.com/lebarbier/lebarbier-api/internal/usecase/auth"
)

type registerer interface {
	Execute(ctx context.Context, in authuc.RegisterInput) (*authuc.Session, error)
}

type authenticator interface {
	Execute(ctx context.Context, email, password string) (*authuc.Session, error)
}

type profileReader interface {
	Execute(ctx context.Context, who *authz.Principal) (*models.User, error)
}

type AuthHandler struct {
	register registerer
	login    authenticator
	me       profileReader
}

func NewAuthHandler(register *authuc.Register, login *authuc.Login, me *authuc.Me) *AuthHandler {
	return &AuthHandler{register: register, login: login, me: me}
}

// --------- Requests ---------

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,max=150,email,emaildomain"`
	Password  string `json:"password" binding:"required,min=8"`
	Phone     string `json:"phone" binding:"omitempty,max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.register.Execute(c.Request.Context(), authuc.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, "Compte créé avec succès.", session)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.login.Execute(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, session)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.me.Execute(c.Request.Context(), principal(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, user)
}
