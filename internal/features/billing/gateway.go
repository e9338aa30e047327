package billing

import (
	"context"

	"go-hse/internal/config"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Gateway is the part of Stripe the billing service uses.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, name, companyID string) (string, error)
	CreateCheckoutSession(ctx context.Context, s CheckoutSession) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	ParseEvent(payload []byte, signature string) (stripe.Event, error)
}

type CheckoutSession struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	CompanyID  string
	Plan       string
}

type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripeGateway(cfg *config.Config) Gateway {
	api := &client.API{}
	api.Init(cfg.StripeSecretKey, nil)
	return &StripeGateway{api: api, webhookSecret: cfg.StripeWebhookSecret}
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, email, name, companyID string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	params.AddMetadata("company_id", companyID)

	customer, err := g.api.Customers.New(params)
	if err != nil {
		return "", err
	}
	return customer.ID, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, s CheckoutSession) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(s.CustomerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(s.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:               stripe.String(s.SuccessURL),
		CancelURL:                stripe.String(s.CancelURL),
		AllowPromotionCodes:      stripe.Bool(true),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionAuto)),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"company_id": s.CompanyID, "plan": s.Plan},
		},
	}
	params.Context = ctx
	params.AddMetadata("company_id", s.CompanyID)
	params.AddMetadata("plan", s.Plan)

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return session.URL, nil
}

func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	session, err := g.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", err
	}
	return session.URL, nil
}

// ParseEvent verifies the Stripe-Signature header and decodes the event.
func (g *StripeGateway) ParseEvent(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
