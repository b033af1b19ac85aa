package stripe

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/jwalitptl/salon-api/internal/gateway"
	"github.com/jwalitptl/salon-api/pkg/circuitbreaker"
	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/metrics"
)

// MetadataIntentKey is the PaymentIntent metadata entry carrying our key.
const MetadataIntentKey = "intent_key"

type Config struct {
	APIKey string
	// URL overrides the API endpoint, e.g. for stripe-mock.
	URL     string
	Timeout time.Duration
}

// Client implements gateway.Gateway with Stripe PaymentIntents.
type Client struct {
	api     *client.API
	cb      *circuitbreaker.CircuitBreaker
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewClient(cfg Config, log *logger.Logger, m *metrics.Metrics) *Client {
	backendCfg := &stripe.BackendConfig{
		// Retries belong to the provider's webhook redelivery, not to us.
		MaxNetworkRetries: stripe.Int64(0),
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.URL != "" {
		backendCfg.URL = stripe.String(cfg.URL)
	}

	api := &client.API{}
	api.Init(cfg.APIKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
	})

	return &Client{
		api: api,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "stripe",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
			IsFailure: func(err error) bool {
				return !stderrors.Is(err, gateway.ErrDeclined)
			},
		}),
		logger:  log,
		metrics: m,
	}
}

func (c *Client) CreateIntent(ctx context.Context, req gateway.IntentRequest) (*gateway.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(req.Amount)),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.IdempotencyKey = stripe.String(req.IdempotencyKey)
	params.AddMetadata(MetadataIntentKey, req.IdempotencyKey)
	params.AddMetadata("client_id", strconv.FormatInt(req.ClientID, 10))
	params.Context = ctx

	start := time.Now()
	var pi *stripe.PaymentIntent
	err := c.cb.Execute(func() error {
		var err error
		pi, err = c.api.PaymentIntents.New(params)
		if err != nil {
			return mapError(ctx, err)
		}
		return nil
	})
	if stderrors.Is(err, circuitbreaker.ErrOpen) {
		err = fmt.Errorf("%w: %v", gateway.ErrUnavailable, err)
	}
	c.metrics.GatewayLatency.WithLabelValues("create_intent", result(err)).Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Warn(err, "stripe intent creation failed", "intent_key", req.IdempotencyKey)
		return nil, err
	}

	return &gateway.Intent{
		Reference:    pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case stderrors.Is(err, gateway.ErrTimeout):
		return "timeout"
	case stderrors.Is(err, gateway.ErrDeclined):
		return "declined"
	default:
		return "error"
	}
}

// mapError converts stripe-go errors into gateway errors so callers never
// import stripe types.
func mapError(ctx context.Context, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", gateway.ErrTimeout, err)
	}

	var stripeErr *stripe.Error
	if stderrors.As(err, &stripeErr) {
		if stripeErr.Type == stripe.ErrorTypeCard {
			return fmt.Errorf("%w: %s", gateway.ErrDeclined, stripeErr.Msg)
		}
		if stripeErr.HTTPStatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %s", gateway.ErrUnavailable, stripeErr.Msg)
		}
		return fmt.Errorf("stripe rejected request (%s): %s", stripeErr.Code, stripeErr.Msg)
	}

	var netErr interface{ Timeout() bool }
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", gateway.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", gateway.ErrUnavailable, err)
}
