// Package payment wraps the Stripe integration: embedded subscription
// checkout, price listing, payment-method listing and webhook verification.
package payment

import (
	"fmt"

	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/paymentmethod"
	"github.com/stripe/stripe-go/v81/price"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/arekbor/helpdesk/internal/config"
)

type Service struct {
	webhookSecret string
	returnURL     string
}

// NewService installs the API key globally (the stripe-go convention) and
// keeps the webhook secret for signature checks.
func NewService(cfg config.StripeConfig) *Service {
	stripe.Key = cfg.APIKey
	return &Service{webhookSecret: cfg.WebhookSecret, returnURL: cfg.ReturnURL}
}

// CreateSubscriptionCheckout opens an embedded checkout session for a
// subscription on the given price and returns its client secret.
func (s *Service) CreateSubscriptionCheckout(priceID string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		UIMode: stripe.String(string(stripe.CheckoutSessionUIModeEmbedded)),
		Mode:   stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Currency:  stripe.String("pln"),
		ReturnURL: stripe.String(s.returnURL + "?session_id={CHECKOUT_SESSION_ID}"),
	}
	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.ClientSecret, nil
}

// ListPrices returns all active prices.
func (s *Service) ListPrices() ([]*stripe.Price, error) {
	iter := price.List(&stripe.PriceListParams{Active: stripe.Bool(true)})
	var prices []*stripe.Price
	for iter.Next() {
		prices = append(prices, iter.Price())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	return prices, nil
}

// ListPaymentMethods returns the card payment methods of a customer.
func (s *Service) ListPaymentMethods(customerID string) ([]*stripe.PaymentMethod, error) {
	iter := paymentmethod.List(&stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String(string(stripe.PaymentMethodTypeCard)),
	})
	var methods []*stripe.PaymentMethod
	for iter.Next() {
		methods = append(methods, iter.PaymentMethod())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	return methods, nil
}

// VerifyWebhook checks the Stripe-Signature header against the raw payload
// and returns the decoded event.
func (s *Service) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
}
