package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	common_models "go-hse/internal/common/models"
	"go-hse/internal/config"
	"go-hse/internal/features/audit"
	"go-hse/internal/metrics"

	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrNoPrice         = errors.New("no Stripe price configured")
)

// subscriptionStatuses maps Stripe subscription statuses to company statuses. Anything
// else counts as active.
var subscriptionStatuses = map[stripe.SubscriptionStatus]string{
	stripe.SubscriptionStatusActive:            StatusActive,
	stripe.SubscriptionStatusTrialing:          StatusTrial,
	stripe.SubscriptionStatusPastDue:           StatusActive,
	stripe.SubscriptionStatusCanceled:          StatusCancelled,
	stripe.SubscriptionStatusUnpaid:            StatusInactive,
	stripe.SubscriptionStatusIncomplete:        StatusInactive,
	stripe.SubscriptionStatusIncompleteExpired: StatusInactive,
	stripe.SubscriptionStatusPaused:            StatusInactive,
}

func companyStatus(s stripe.SubscriptionStatus) string {
	if status, ok := subscriptionStatuses[s]; ok {
		return status
	}
	return StatusActive
}

type BillingService interface {
	ParseEvent(payload []byte, signature string) (stripe.Event, error)
	HandleEvent(ctx context.Context, event stripe.Event) error
	StartCheckout(ctx context.Context, identity common_models.Identity, req CheckoutRequest) (string, error)
	OpenPortal(ctx context.Context, identity common_models.Identity, req PortalRequest) (string, error)
	ListInvoices(ctx context.Context, companyID string) ([]Invoice, error)
	// AllInvoices is the cross-company view for super admins.
	AllInvoices(ctx context.Context, query InvoiceQuery) (*InvoiceOverview, error)
	ExportInvoices(ctx context.Context, query InvoiceQuery) ([]byte, string, error)
}

type BillingServiceImpl struct {
	repo         BillingRepository
	gateway      Gateway
	auditService audit.AuditService
	config       *config.Config
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

func NewBillingService(repo BillingRepository, gateway Gateway, auditService audit.AuditService, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) BillingService {
	return &BillingServiceImpl{
		repo:         repo,
		gateway:      gateway,
		auditService: auditService,
		config:       cfg,
		metrics:      m,
		logger:       logger,
	}
}

func (s *BillingServiceImpl) ParseEvent(payload []byte, signature string) (stripe.Event, error) {
	return s.gateway.ParseEvent(payload, signature)
}

// HandleEvent applies a verified webhook event. Events without a company id and
// unhandled event types are ignored.
func (s *BillingServiceImpl) HandleEvent(ctx context.Context, event stripe.Event) error {
	var err error
	switch event.Type {
	case stripe.EventTypeCustomerSubscriptionCreated, stripe.EventTypeCustomerSubscriptionUpdated:
		err = s.subscriptionChanged(ctx, event)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		err = s.subscriptionDeleted(ctx, event)
	case stripe.EventTypeInvoicePaid:
		err = s.invoicePaid(ctx, event)
	case stripe.EventTypeInvoicePaymentFailed:
		err = s.invoicePaymentFailed(ctx, event)
	case stripe.EventTypeCheckoutSessionCompleted:
		err = s.checkoutCompleted(ctx, event)
	default:
		s.logger.Info("Unhandled Stripe event", zap.String("event_type", string(event.Type)))
		s.metrics.RecordWebhookEvent(string(event.Type), "ignored")
		return nil
	}

	outcome := "handled"
	if err != nil {
		outcome = "failed"
	}
	s.metrics.RecordWebhookEvent(string(event.Type), outcome)
	return err
}

func decode(event stripe.Event, v interface{}) error {
	if event.Data == nil {
		return fmt.Errorf("event %s has no data", event.ID)
	}
	return json.Unmarshal(event.Data.Raw, v)
}

func unixTime(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func strPtr(s string) *string { return &s }

func (s *BillingServiceImpl) logBilling(ctx context.Context, companyID, field string, value interface{}) {
	if s.auditService == nil {
		return
	}
	ctx = context.WithValue(ctx, common_models.CompanyIDKey, companyID)
	_ = s.auditService.LogChange(ctx, common_models.AuditActionBilling, "companies", companyID, map[string]common_models.Change{
		field: {New: value},
	})
}

func (s *BillingServiceImpl) subscriptionChanged(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := decode(event, &sub); err != nil {
		return err
	}
	companyID := sub.Metadata["company_id"]
	if companyID == "" {
		return nil
	}
	plan := sub.Metadata["plan"]
	if plan == "" {
		plan = "basic"
	}

	status := companyStatus(sub.Status)
	update := CompanyUpdate{
		SubscriptionTier:      strPtr(plan),
		SubscriptionStatus:    strPtr(status),
		StripeSubscriptionID:  strPtr(sub.ID),
		SubscriptionStartDate: unixTime(sub.StartDate),
		SubscriptionEndDate:   unixTime(sub.CurrentPeriodEnd),
		ClearEndDate:          sub.CurrentPeriodEnd == 0,
	}
	if err := s.repo.UpdateCompany(ctx, companyID, update); err != nil {
		return err
	}
	s.logBilling(ctx, companyID, "subscription_status", status)
	return nil
}

func (s *BillingServiceImpl) subscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := decode(event, &sub); err != nil {
		return err
	}
	companyID := sub.Metadata["company_id"]
	if companyID == "" {
		return nil
	}

	update := CompanyUpdate{
		SubscriptionStatus:  strPtr(StatusCancelled),
		SubscriptionEndDate: unixTime(sub.CanceledAt),
		ClearEndDate:        sub.CanceledAt == 0,
	}
	if err := s.repo.UpdateCompany(ctx, companyID, update); err != nil {
		return err
	}
	s.logBilling(ctx, companyID, "subscription_status", StatusCancelled)
	return nil
}

func invoiceCompanyID(inv *stripe.Invoice) string {
	if inv.SubscriptionDetails != nil {
		if id := inv.SubscriptionDetails.Metadata["company_id"]; id != "" {
			return id
		}
	}
	return inv.Metadata["company_id"]
}

// invoiceNumber falls back to INV-<year>-<last 5 digits of the creation timestamp>.
func invoiceNumber(inv *stripe.Invoice, now time.Time) string {
	if inv.Number != "" {
		return inv.Number
	}
	created := fmt.Sprintf("%d", inv.Created)
	if len(created) > 5 {
		created = created[len(created)-5:]
	}
	return fmt.Sprintf("INV-%d-%s", now.Year(), created)
}

func cents(v int64) float64 {
	return float64(v) / 100
}

func (s *BillingServiceImpl) invoicePaid(ctx context.Context, event stripe.Event) error {
	var inv stripe.Invoice
	if err := decode(event, &inv); err != nil {
		return err
	}
	companyID := invoiceCompanyID(&inv)
	if companyID == "" {
		return nil
	}

	now := time.Now().UTC()
	total := inv.AmountPaid
	if total == 0 {
		total = inv.Total
	}
	currency := string(inv.Currency)
	if currency == "" {
		currency = "usd"
	}
	paidAt := &now
	if inv.StatusTransitions != nil && inv.StatusTransitions.PaidAt != 0 {
		paidAt = unixTime(inv.StatusTransitions.PaidAt)
	}

	createdAt := now
	if t := unixTime(inv.Created); t != nil {
		createdAt = *t
	}

	invoice := &Invoice{
		CompanyID:          companyID,
		InvoiceNumber:      invoiceNumber(&inv, now),
		Status:             InvoicePaid,
		Subtotal:           cents(inv.Subtotal),
		TaxAmount:          cents(inv.Tax),
		Total:              cents(total),
		Currency:           strings.ToUpper(currency),
		PaidAt:             paidAt,
		PaymentMethod:      "stripe",
		DueDate:            unixTime(inv.DueDate),
		BillingPeriodStart: unixTime(inv.PeriodStart),
		BillingPeriodEnd:   unixTime(inv.PeriodEnd),
		Notes:              inv.Description,
		LineItems:          []LineItem{},
		Metadata: map[string]string{
			"stripe_invoice_id": inv.ID,
			"stripe_hosted_url": inv.HostedInvoiceURL,
		},
		CreatedAt: createdAt,
	}
	if inv.Lines != nil {
		for _, line := range inv.Lines.Data {
			invoice.LineItems = append(invoice.LineItems, lineItem(line))
		}
	}
	return s.repo.UpsertInvoice(ctx, invoice)
}

func lineItem(line *stripe.InvoiceLineItem) LineItem {
	item := LineItem{
		Description: line.Description,
		Quantity:    line.Quantity,
		UnitPrice:   cents(line.Amount),
		Total:       cents(line.Amount),
	}
	if item.Description == "" {
		item.Description = "Subscription"
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if line.UnitAmountExcludingTax != 0 {
		item.UnitPrice = line.UnitAmountExcludingTax / 100
	}
	return item
}

func (s *BillingServiceImpl) invoicePaymentFailed(ctx context.Context, event stripe.Event) error {
	var inv stripe.Invoice
	if err := decode(event, &inv); err != nil {
		return err
	}
	if inv.Number == "" {
		return nil
	}
	return s.repo.MarkInvoiceOverdue(ctx, inv.Number)
}

func (s *BillingServiceImpl) checkoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := decode(event, &session); err != nil {
		return err
	}
	companyID, plan := session.Metadata["company_id"], session.Metadata["plan"]
	if companyID == "" || plan == "" {
		return nil
	}
	if err := s.repo.UpdateCompany(ctx, companyID, CompanyUpdate{
		SubscriptionTier:   strPtr(plan),
		SubscriptionStatus: strPtr(StatusActive),
	}); err != nil {
		return err
	}
	s.logBilling(ctx, companyID, "subscription_tier", plan)
	return nil
}

// customerFor returns the company's Stripe customer, creating it on first use.
func (s *BillingServiceImpl) customerFor(ctx context.Context, identity common_models.Identity) (string, error) {
	company, err := s.repo.GetCompany(ctx, identity.CompanyID)
	if err != nil {
		return "", err
	}
	if company.StripeCustomerID != "" {
		return company.StripeCustomerID, nil
	}

	email := company.BillingEmail
	if email == "" {
		email = company.Email
	}
	if email == "" {
		email = identity.Email
	}
	name := company.Name
	if name == "" {
		name = "Company"
	}

	customerID, err := s.gateway.CreateCustomer(ctx, email, name, company.ID)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdateCompany(ctx, company.ID, CompanyUpdate{StripeCustomerID: strPtr(customerID)}); err != nil {
		return "", err
	}
	return customerID, nil
}

// StartCheckout creates a subscription checkout session and returns its URL.
func (s *BillingServiceImpl) StartCheckout(ctx context.Context, identity common_models.Identity, req CheckoutRequest) (string, error) {
	if req.Tier == "" {
		req.Tier = "standard"
	}
	if req.SuccessURL == "" {
		req.SuccessURL = s.config.SiteURL + "/invoices?checkout=success"
	}
	if req.CancelURL == "" {
		req.CancelURL = s.config.SiteURL + "/invoices?checkout=cancelled"
	}
	priceID := s.config.StripePrices[req.Tier]
	if priceID == "" {
		return "", fmt.Errorf("%w for plan: %s. Add STRIPE_PRICE_%s secret", ErrNoPrice, req.Tier, strings.ToUpper(req.Tier))
	}

	customerID, err := s.customerFor(ctx, identity)
	if err != nil {
		return "", err
	}
	return s.gateway.CreateCheckoutSession(ctx, CheckoutSession{
		CustomerID: customerID,
		PriceID:    priceID,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
		CompanyID:  identity.CompanyID,
		Plan:       req.Tier,
	})
}

// OpenPortal creates a billing portal session and returns its URL.
func (s *BillingServiceImpl) OpenPortal(ctx context.Context, identity common_models.Identity, req PortalRequest) (string, error) {
	if req.ReturnURL == "" {
		req.ReturnURL = s.config.SiteURL + "/invoices"
	}
	customerID, err := s.customerFor(ctx, identity)
	if err != nil {
		return "", err
	}
	return s.gateway.CreatePortalSession(ctx, customerID, req.ReturnURL)
}

func (s *BillingServiceImpl) ListInvoices(ctx context.Context, companyID string) ([]Invoice, error) {
	return s.repo.ListInvoices(ctx, companyID)
}
