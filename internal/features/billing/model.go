package billing

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Company subscription statuses.
const (
	StatusActive    = "active"
	StatusTrial     = "trial"
	StatusCancelled = "cancelled"
	StatusInactive  = "inactive"
)

// Invoice statuses.
const (
	InvoicePaid    = "paid"
	InvoicePending = "pending"
	InvoiceOverdue = "overdue"
)

type Company struct {
	ID                    string     `bson:"_id" json:"id"`
	Name                  string     `bson:"name" json:"name"`
	Email                 string     `bson:"email,omitempty" json:"email,omitempty"`
	BillingEmail          string     `bson:"billing_email,omitempty" json:"billing_email,omitempty"`
	StripeCustomerID      string     `bson:"stripe_customer_id,omitempty" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID  string     `bson:"stripe_subscription_id,omitempty" json:"stripe_subscription_id,omitempty"`
	SubscriptionTier      string     `bson:"subscription_tier,omitempty" json:"subscription_tier,omitempty"`
	SubscriptionStatus    string     `bson:"subscription_status,omitempty" json:"subscription_status,omitempty"`
	SubscriptionStartDate *time.Time `bson:"subscription_start_date,omitempty" json:"subscription_start_date,omitempty"`
	SubscriptionEndDate   *time.Time `bson:"subscription_end_date,omitempty" json:"subscription_end_date,omitempty"`
}

// CompanyUpdate sets only the non-nil fields. ClearEndDate unsets the end date.
type CompanyUpdate struct {
	StripeCustomerID      *string
	StripeSubscriptionID  *string
	SubscriptionTier      *string
	SubscriptionStatus    *string
	SubscriptionStartDate *time.Time
	SubscriptionEndDate   *time.Time
	ClearEndDate          bool
}

type LineItem struct {
	Description string  `bson:"description" json:"description"`
	Quantity    int64   `bson:"quantity" json:"quantity"`
	UnitPrice   float64 `bson:"unit_price" json:"unit_price"`
	Total       float64 `bson:"total" json:"total"`
}

type Invoice struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID          string             `bson:"company_id" json:"company_id"`
	InvoiceNumber      string             `bson:"invoice_number" json:"invoice_number"`
	Status             string             `bson:"status" json:"status"`
	Subtotal           float64            `bson:"subtotal" json:"subtotal"`
	TaxAmount          float64            `bson:"tax_amount" json:"tax_amount"`
	Total              float64            `bson:"total" json:"total"`
	Currency           string             `bson:"currency" json:"currency"`
	PaidAt             *time.Time         `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	PaymentMethod      string             `bson:"payment_method" json:"payment_method"`
	DueDate            *time.Time         `bson:"due_date,omitempty" json:"due_date,omitempty"`
	BillingPeriodStart *time.Time         `bson:"billing_period_start,omitempty" json:"billing_period_start,omitempty"`
	BillingPeriodEnd   *time.Time         `bson:"billing_period_end,omitempty" json:"billing_period_end,omitempty"`
	Notes              string             `bson:"notes,omitempty" json:"notes,omitempty"`
	LineItems          []LineItem         `bson:"line_items" json:"line_items"`
	Metadata           map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}

type CheckoutRequest struct {
	Tier       string `json:"tier"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

type PortalRequest struct {
	ReturnURL string `json:"return_url"`
}

// InvoiceQuery filters and orders the cross-company invoice list. Empty fields match
// everything; Sort is one of created_at, invoice_number, total, status or company.
type InvoiceQuery struct {
	CompanyID string
	Status    string
	Search    string
	Sort      string
	Ascending bool
}

// CompanySummary is the company shown next to each invoice.
type CompanySummary struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	BillingEmail       string `json:"billing_email,omitempty"`
	SubscriptionTier   string `json:"subscription_tier"`
	SubscriptionStatus string `json:"subscription_status"`
	StripeConnected    bool   `json:"stripe_connected"`
}

type CompanyInvoice struct {
	Invoice
	Company CompanySummary `json:"company"`
}

// InvoiceStats is computed over every invoice, independent of the query filters.
type InvoiceStats struct {
	Total           float64 `json:"total"`
	Paid            float64 `json:"paid"`
	PaidCount       int     `json:"paid_count"`
	Pending         float64 `json:"pending"`
	PendingCount    int     `json:"pending_count"`
	Overdue         float64 `json:"overdue"`
	OverdueCount    int     `json:"overdue_count"`
	StripeConnected int     `json:"stripe_connected"`
	TotalCompanies  int     `json:"total_companies"`
}

type InvoiceOverview struct {
	Stats    InvoiceStats     `json:"stats"`
	Invoices []CompanyInvoice `json:"invoices"`
}
