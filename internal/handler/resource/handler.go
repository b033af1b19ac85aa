package resource

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/salon-api/internal/access"
	"github.com/jwalitptl/salon-api/internal/handler"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/httputil"
)

// Handler serves the read side of every protected resource plus client
// updates. Visibility is decided by access.Service, never here.
type Handler struct {
	access *access.Service
}

func NewHandler(svc *access.Service) *Handler {
	return &Handler{access: svc}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	routes := map[string]model.Resource{
		"/clients":      model.ResourceClients,
		"/appointments": model.ResourceAppointments,
		"/payments":     model.ResourcePayments,
		"/audit-logs":   model.ResourceAuditLogs,
	}
	for path, res := range routes {
		r.GET(path, h.List(res))
		r.GET(path+"/:id", h.Get(res))
	}
	r.PATCH("/clients/:id", h.UpdateClient)
}

func (h *Handler) List(resource model.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := handler.Identity(c)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		list, err := h.access.List(c.Request.Context(), id, resource, handler.Filters(c))
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithPagination(c, list.Items, list.Page, list.PageSize, list.Total)
	}
}

func (h *Handler) Get(resource model.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := handler.Identity(c)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		record, err := h.access.Get(c.Request.Context(), id, resource, c.Param("id"))
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, record)
	}
}

func (h *Handler) UpdateClient(c *gin.Context) {
	id, err := handler.Identity(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	clientID, err := handler.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body", err))
		return
	}

	out, err := h.access.Mutate(c.Request.Context(), id, model.ResourceClients, model.ActionUpdate, clientID, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, out)
}
