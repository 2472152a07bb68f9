package services

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/kento-cell/MyHobbyCoffee/utils"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway implements PaymentGateway with Stripe Checkout.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, webhookSecret: webhookSecret}
}

func lineItemName(l PricedLine) string {
	if l.Roast != "" {
		return fmt.Sprintf("%s %dg (%s)", l.ProductName, l.Grams, l.Roast)
	}
	return fmt.Sprintf("%s %dg", l.ProductName, l.Grams)
}

func buildSessionParams(req SessionRequest) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}

	for _, l := range req.Lines {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:     stripe.String(lineItemName(l)),
			Metadata: map[string]string{"productId": l.ProductID},
		}
		if l.Image != "" && l.Image != NoImagePlaceholder {
			product.Images = stripe.StringSlice([]string{l.Image})
		}

		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(l.Qty)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(string(stripe.CurrencyJPY)),
				UnitAmount:  stripe.Int64(l.UnitPrice),
				ProductData: product,
			},
		})
	}

	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := buildSessionParams(req)
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if g.webhookSecret == "" || signature == "" {
		return nil, fmt.Errorf("%w: missing stripe signature", ErrInvalidSignature)
	}

	// Only the signature and timestamp gate the event; the session fields read
	// below are stable across API versions.
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if event.APIVersion != stripe.APIVersion {
		utils.InfoLogger.Warnf("stripe event %s uses API version %s, expected %s", event.ID, event.APIVersion, stripe.APIVersion)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return out, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	email := cs.CustomerEmail
	if cs.CustomerDetails != nil && cs.CustomerDetails.Email != "" {
		email = cs.CustomerDetails.Email
	}
	out.Completion = &CheckoutCompletion{
		SessionID:   cs.ID,
		Email:       email,
		AmountTotal: cs.AmountTotal,
		Metadata:    cs.Metadata,
	}
	return out, nil
}
