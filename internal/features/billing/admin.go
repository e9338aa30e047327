package billing

import (
	"context"
	"sort"
	"strings"
	"time"

	"go-hse/pkg/utils"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var invoiceExportHeaders = []string{
	"Invoice Number", "Company", "Company Email", "Status", "Subtotal", "Tax", "Total",
	"Currency", "Created", "Paid At", "Due Date", "Payment Method",
}

// unknownCompany stands in for invoices whose company row no longer exists.
func unknownCompany(id string) CompanySummary {
	return CompanySummary{
		ID:                 id,
		Name:               "Unknown",
		SubscriptionTier:   "basic",
		SubscriptionStatus: StatusInactive,
	}
}

func summarize(c Company) CompanySummary {
	return CompanySummary{
		ID:                 c.ID,
		Name:               c.Name,
		Email:              c.Email,
		BillingEmail:       c.BillingEmail,
		SubscriptionTier:   c.SubscriptionTier,
		SubscriptionStatus: c.SubscriptionStatus,
		StripeConnected:    c.StripeCustomerID != "",
	}
}

func (s *BillingServiceImpl) AllInvoices(ctx context.Context, query InvoiceQuery) (*InvoiceOverview, error) {
	invoices, err := s.repo.ListAllInvoices(ctx)
	if err != nil {
		return nil, err
	}
	companies, err := s.repo.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	return buildOverview(invoices, companies, query), nil
}

func buildOverview(invoices []Invoice, companies []Company, query InvoiceQuery) *InvoiceOverview {
	byID := make(map[string]CompanySummary, len(companies))
	overview := &InvoiceOverview{Invoices: []CompanyInvoice{}}
	for _, c := range companies {
		byID[c.ID] = summarize(c)
		if c.StripeCustomerID != "" {
			overview.Stats.StripeConnected++
		}
	}
	overview.Stats.TotalCompanies = len(companies)

	search := strings.ToLower(strings.TrimSpace(query.Search))
	for _, inv := range invoices {
		overview.Stats.Total += inv.Total
		switch inv.Status {
		case InvoicePaid:
			overview.Stats.Paid += inv.Total
			overview.Stats.PaidCount++
		case InvoicePending:
			overview.Stats.Pending += inv.Total
			overview.Stats.PendingCount++
		case InvoiceOverdue:
			overview.Stats.Overdue += inv.Total
			overview.Stats.OverdueCount++
		}

		company, ok := byID[inv.CompanyID]
		if !ok {
			company = unknownCompany(inv.CompanyID)
		}
		if query.CompanyID != "" && inv.CompanyID != query.CompanyID {
			continue
		}
		if query.Status != "" && inv.Status != query.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(inv.InvoiceNumber), search) &&
			!strings.Contains(strings.ToLower(company.Name), search) &&
			!strings.Contains(strings.ToLower(company.Email), search) {
			continue
		}
		overview.Invoices = append(overview.Invoices, CompanyInvoice{Invoice: inv, Company: company})
	}

	sortInvoices(overview.Invoices, query.Sort, query.Ascending)
	return overview
}

func sortInvoices(list []CompanyInvoice, field string, ascending bool) {
	less := func(a, b CompanyInvoice) bool {
		switch field {
		case "total":
			return a.Total < b.Total
		case "company":
			return a.Company.Name < b.Company.Name
		case "invoice_number":
			return a.InvoiceNumber < b.InvoiceNumber
		case "status":
			return a.Status < b.Status
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if ascending {
			return less(list[i], list[j])
		}
		return less(list[j], list[i])
	})
}

// ExportInvoices writes the filtered cross-company list as a spreadsheet.
func (s *BillingServiceImpl) ExportInvoices(ctx context.Context, query InvoiceQuery) ([]byte, string, error) {
	overview, err := s.AllInvoices(ctx, query)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Invoices"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, h := range invoiceExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for r, inv := range overview.Invoices {
		values := []interface{}{
			inv.InvoiceNumber, inv.Company.Name, inv.Company.Email, inv.Status,
			inv.Subtotal, inv.TaxAmount, inv.Total, inv.Currency,
			formatDate(&inv.CreatedAt), formatDate(inv.PaidAt), formatDate(inv.DueDate), inv.PaymentMethod,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("Invoices exported", zap.Int("rows", len(overview.Invoices)))
	return buf.Bytes(), utils.ExportFilename("invoices", "invoices", "xlsx", time.Now()), nil
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
