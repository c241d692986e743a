package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arekbor/helpdesk/internal/httpx"
	"github.com/arekbor/helpdesk/internal/payment"
)

// SubscriptionHandler fronts the billing provider: embedded checkout,
// price catalogue, saved payment methods and the webhook sink.
type SubscriptionHandler struct {
	Payments *payment.Service
}

type paymentIntentRequest struct {
	PriceID string `json:"priceId"`
}

// CreatePaymentIntent opens an embedded subscription checkout session and
// returns its client secret.
func (h *SubscriptionHandler) CreatePaymentIntent(c echo.Context) error {
	var req paymentIntentRequest
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest("invalid request body")
	}
	if req.PriceID == "" {
		return httpx.BadRequest("priceId is required")
	}

	clientSecret, err := h.Payments.CreateSubscriptionCheckout(req.PriceID)
	if err != nil {
		return httpx.Internal("Failed to create checkout session")
	}
	return c.JSON(http.StatusOK, map[string]string{"clientSecret": clientSecret})
}

func (h *SubscriptionHandler) Prices(c echo.Context) error {
	prices, err := h.Payments.ListPrices()
	if err != nil {
		return httpx.Internal("Failed to list prices")
	}
	return c.JSON(http.StatusOK, httpx.Data(prices))
}

func (h *SubscriptionHandler) PaymentMethods(c echo.Context) error {
	customerID := c.QueryParam("customer")
	if customerID == "" {
		return httpx.BadRequest("customer is required")
	}
	methods, err := h.Payments.ListPaymentMethods(customerID)
	if err != nil {
		return httpx.Internal("Failed to list payment methods")
	}
	return c.JSON(http.StatusOK, httpx.Data(methods))
}

// Webhook verifies the provider signature over the raw body and acknowledges
// the event. Signature failures get a 400 so the provider retries.
func (h *SubscriptionHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return httpx.BadRequest("unable to read request body")
	}

	event, err := h.Payments.VerifyWebhook(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return httpx.BadRequest("Webhook Error: invalid signature")
	}

	switch event.Type {
	case "checkout.session.completed":
		slog.Info("checkout session completed", "event_id", event.ID)
	case "invoice.paid":
		slog.Info("subscription invoice paid", "event_id", event.ID)
	case "invoice.payment_failed":
		slog.Warn("subscription invoice payment failed", "event_id", event.ID)
	default:
		slog.Debug("unhandled billing event", "type", event.Type, "event_id", event.ID)
	}
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
