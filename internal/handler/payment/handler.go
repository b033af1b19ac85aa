package payment

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/salon-api/internal/access"
	"github.com/jwalitptl/salon-api/internal/handler"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/httputil"
)

// Handler serves payment mutations. Reads go through the resource handler.
type Handler struct {
	access *access.Service
}

func NewHandler(svc *access.Service) *Handler {
	return &Handler{access: svc}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	payments := r.Group("/payments")
	{
		payments.POST("", h.CreatePayment)
		payments.POST("/:id/confirm", h.ConfirmPayment)
		payments.POST("/:id/cancel", h.CancelPayment)
	}
}

// CreatePayment records cash or opens a gateway payment. The two are
// separate policy actions.
func (h *Handler) CreatePayment(c *gin.Context) {
	id, err := handler.Identity(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body", err))
		return
	}

	action := model.ActionCreate
	if req.Method == model.PaymentMethodCash {
		action = model.ActionRecordCash
	}

	out, err := h.access.Mutate(c.Request.Context(), id, model.ResourcePayments, action, 0, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, out)
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	id, err := handler.Identity(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	paymentID, err := handler.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body", err))
		return
	}

	out, err := h.access.Mutate(c.Request.Context(), id, model.ResourcePayments, model.ActionConfirm, paymentID, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, out)
}

func (h *Handler) CancelPayment(c *gin.Context) {
	id, err := handler.Identity(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	paymentID, err := handler.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	out, err := h.access.Mutate(c.Request.Context(), id, model.ResourcePayments, model.ActionCancel, paymentID, nil)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, out)
}
