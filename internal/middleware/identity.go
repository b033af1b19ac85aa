package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/auth"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/httputil"
)

const ContextIdentity = "identity"

// IdentityMiddleware turns a bearer token into a model.Identity.
type IdentityMiddleware struct {
	tokens auth.JWTService
}

func NewIdentityMiddleware(tokens auth.JWTService) *IdentityMiddleware {
	return &IdentityMiddleware{tokens: tokens}
}

// Authenticate rejects requests without a valid token.
func (m *IdentityMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if authHeader == "" || !ok || token == "" {
			httputil.RespondWithError(c, errors.Unauthenticated(fmt.Errorf("missing bearer token")))
			return
		}

		id, err := m.tokens.ValidateToken(token)
		if err != nil {
			httputil.RespondWithError(c, errors.Unauthenticated(err))
			return
		}

		c.Set(ContextIdentity, id)
		c.Next()
	}
}

// IdentityFrom returns the caller set by Authenticate.
func IdentityFrom(c *gin.Context) (model.Identity, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return model.Identity{}, false
	}
	id, ok := v.(model.Identity)
	return id, ok
}
