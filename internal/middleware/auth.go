package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lebarbier/lebarbier-api/internal/authz"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
)

const ContextPrincipal = "principal"

type TokenParser interface {
	Parse(raw string) (*authz.Principal, error)
}

// Authenticate attaches the caller to the context when a bearer token is
// present. A missing header is not an error here; Require decides whether
// the route needs a caller. A malformed or invalid token always is.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			httperr.Respond(c, httperr.Unauthenticated("invalid_authorization_header", "En-tête Authorization invalide."))
			return
		}

		who, err := tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			httperr.Respond(c, err)
			return
		}

		c.Set(ContextPrincipal, who)
		c.Next()
	}
}

// Require evaluates the route policy before the handler runs.
func Require(p authz.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := authz.Evaluate(p, Principal(c))
		if !d.Allowed {
			httperr.Respond(c, d.Err)
			return
		}
		c.Next()
	}
}

// Principal returns the authenticated caller, or nil on public routes.
func Principal(c *gin.Context) *authz.Principal {
	if v, ok := c.Get(ContextPrincipal); ok {
		if who, ok := v.(*authz.Principal); ok {
			return who
		}
	}
	return nil
}
