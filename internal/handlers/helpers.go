package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/authz"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/middleware"
)

func principal(c *gin.Context) *authz.Principal {
	return middleware.Principal(c)
}

// idParam reads a UUID path parameter and answers 400 itself when the
// value is malformed.
func idParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.Respond(c, httperr.Validation("invalid_id", "Identifiant invalide."))
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUID parses a query value already checked by the uuid binding.
func optionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id := uuid.MustParse(s)
	return &id
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		httperr.Respond(c, httperr.Bind(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		httperr.Respond(c, httperr.Bind(err))
		return false
	}
	return true
}
