package billing

import (
	"context"
	"errors"
	"time"

	"go-hse/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BillingRepository interface {
	GetCompany(ctx context.Context, id string) (*Company, error)
	UpdateCompany(ctx context.Context, id string, update CompanyUpdate) error
	// UpsertInvoice replaces the invoice with the same number.
	UpsertInvoice(ctx context.Context, invoice *Invoice) error
	MarkInvoiceOverdue(ctx context.Context, number string) error
	ListInvoices(ctx context.Context, companyID string) ([]Invoice, error)
	ListAllInvoices(ctx context.Context) ([]Invoice, error)
	ListCompanies(ctx context.Context) ([]Company, error)
}

type BillingRepositoryImpl struct {
	Companies *mongo.Collection
	Invoices  *mongo.Collection
}

func NewBillingRepository(mongodb *database.MongodbDB) BillingRepository {
	return &BillingRepositoryImpl{
		Companies: mongodb.DB.Collection("companies"),
		Invoices:  mongodb.DB.Collection("invoices"),
	}
}

func (r *BillingRepositoryImpl) GetCompany(ctx context.Context, id string) (*Company, error) {
	var company Company
	err := r.Companies.FindOne(ctx, bson.M{"_id": id}).Decode(&company)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *BillingRepositoryImpl) UpdateCompany(ctx context.Context, id string, u CompanyUpdate) error {
	set := bson.M{}
	if u.StripeCustomerID != nil {
		set["stripe_customer_id"] = *u.StripeCustomerID
	}
	if u.StripeSubscriptionID != nil {
		set["stripe_subscription_id"] = *u.StripeSubscriptionID
	}
	if u.SubscriptionTier != nil {
		set["subscription_tier"] = *u.SubscriptionTier
	}
	if u.SubscriptionStatus != nil {
		set["subscription_status"] = *u.SubscriptionStatus
	}
	if u.SubscriptionStartDate != nil {
		set["subscription_start_date"] = *u.SubscriptionStartDate
	}
	if u.SubscriptionEndDate != nil {
		set["subscription_end_date"] = *u.SubscriptionEndDate
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if u.ClearEndDate && u.SubscriptionEndDate == nil {
		update["$unset"] = bson.M{"subscription_end_date": ""}
	}
	if len(update) == 0 {
		return nil
	}

	res, err := r.Companies.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func (r *BillingRepositoryImpl) UpsertInvoice(ctx context.Context, invoice *Invoice) error {
	invoice.UpdatedAt = time.Now()
	doc, err := bson.Marshal(invoice)
	if err != nil {
		return err
	}
	var fields bson.M
	if err := bson.Unmarshal(doc, &fields); err != nil {
		return err
	}
	delete(fields, "_id")

	opts := options.Update().SetUpsert(true)
	_, err = r.Invoices.UpdateOne(ctx, bson.M{"invoice_number": invoice.InvoiceNumber}, bson.M{"$set": fields}, opts)
	return err
}

func (r *BillingRepositoryImpl) MarkInvoiceOverdue(ctx context.Context, number string) error {
	_, err := r.Invoices.UpdateOne(ctx,
		bson.M{"invoice_number": number},
		bson.M{"$set": bson.M{"status": InvoiceOverdue, "updated_at": time.Now()}},
	)
	return err
}

func (r *BillingRepositoryImpl) ListInvoices(ctx context.Context, companyID string) ([]Invoice, error) {
	opts := options.Find().SetSort(bson.M{"paid_at": -1})
	cursor, err := r.Invoices.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, err
	}
	var invoices []Invoice
	if err = cursor.All(ctx, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// ListAllInvoices is unscoped and only served to super admins.
func (r *BillingRepositoryImpl) ListAllInvoices(ctx context.Context) ([]Invoice, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.Invoices.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var invoices []Invoice
	if err = cursor.All(ctx, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *BillingRepositoryImpl) ListCompanies(ctx context.Context) ([]Company, error) {
	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := r.Companies.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var companies []Company
	if err = cursor.All(ctx, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *BillingRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Invoices.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "invoice_number", Value: 1}},
			Options: options.Index().SetName("idx_invoice_number").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "paid_at", Value: -1}},
			Options: options.Index().SetName("idx_company_paid"),
		},
	})
	return err
}
