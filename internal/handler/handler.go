// Package handler holds what the resource handlers share.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/salon-api/internal/middleware"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/errors"
)

// Identity returns the authenticated caller. Routes behind Authenticate
// always have one; a missing identity is treated as unauthenticated.
func Identity(c *gin.Context) (model.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return model.Identity{}, errors.Unauthenticated(nil)
	}
	return id, nil
}

// Filters flattens the query string. Repeated keys keep their first value.
func Filters(c *gin.Context) map[string]string {
	values := c.Request.URL.Query()
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// ParamID parses a positive integer path parameter.
func ParamID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.Validation(name+" must be a positive integer", err)
	}
	return id, nil
}
