package numbering

import (
	"context"
	"fmt"

	"github.com/bizbooks/backend/internal/domain/billing"
	"github.com/bizbooks/backend/internal/domain/company"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Generator routes each document type to its numbering strategy. Proforma
// invoices use the scan strategy; every other series is count based.
type Generator struct {
	strategies map[billing.DocumentType]Strategy
}

// Repositories bundles the series sources the generator counts or scans
type Repositories struct {
	Companies      company.Repository
	Invoices       billing.InvoiceRepository
	Payments       billing.PaymentRepository
	CreditNotes    billing.CreditNoteRepository
	Quotations     billing.QuotationRepository
	Proformas      billing.ProformaRepository
	PurchaseOrders billing.PurchaseOrderRepository
}

// NewGenerator wires the default strategy per document type
func NewGenerator(repos Repositories, logger *zap.Logger) *Generator {
	countStrategy := NewCountStrategy(repos.Companies, map[billing.DocumentType]SeriesCounter{
		billing.DocTypeInvoice:       repos.Invoices.CountForCompany,
		billing.DocTypePayment:       repos.Payments.CountForCompany,
		billing.DocTypeCreditNote:    repos.CreditNotes.CountForCompany,
		billing.DocTypeQuotation:     repos.Quotations.CountForCompany,
		billing.DocTypePurchaseOrder: repos.PurchaseOrders.CountForCompany,
	}, logger)

	return &Generator{
		strategies: map[billing.DocumentType]Strategy{
			billing.DocTypeInvoice:       countStrategy,
			billing.DocTypePayment:       countStrategy,
			billing.DocTypeCreditNote:    countStrategy,
			billing.DocTypeQuotation:     countStrategy,
			billing.DocTypePurchaseOrder: countStrategy,
			billing.DocTypeProforma:      NewScanStrategy(repos.Proformas),
		},
	}
}

// NextNumber returns the next document number for the series
func (g *Generator) NextNumber(ctx context.Context, companyID uuid.UUID, docType billing.DocumentType) (string, error) {
	strategy, ok := g.strategies[docType]
	if !ok {
		return "", fmt.Errorf("no numbering strategy for document type %s", docType)
	}
	return strategy.Next(ctx, companyID, docType)
}

var _ billing.DocumentNumberGenerator = (*Generator)(nil)
