package webhook

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/salon-api/internal/webhook"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/httputil"
)

const HeaderStripeSignature = "Stripe-Signature"

type Handler struct {
	adapter *webhook.Adapter
}

func NewHandler(adapter *webhook.Adapter) *Handler {
	return &Handler{adapter: adapter}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/webhooks/stripe", h.Stripe)
}

// Stripe answers 200 for handled or ignored events and 400 for anything that
// fails verification. Other errors are non-2xx so the provider redelivers.
func (h *Handler) Stripe(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("unreadable body", err))
		return
	}

	res, err := h.adapter.Handle(c.Request.Context(), body, c.GetHeader(HeaderStripeSignature))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
