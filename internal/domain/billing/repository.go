package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvoiceFilter narrows invoice queries
type InvoiceFilter struct {
	CustomerID *uuid.UUID
	Status     *InvoiceStatus
	DueBefore  *time.Time
	Page       int
	PageSize   int
}

// InvoiceRepository persists invoices.
// Find methods return (nil, nil) when no record exists.
type InvoiceRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, companyID uuid.UUID, number string) (*Invoice, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter InvoiceFilter) ([]Invoice, int64, error)
	Save(ctx context.Context, inv *Invoice) error
	// SaveWithLock saves the invoice only if the stored version matches,
	// returning CONCURRENT_MODIFICATION on a lost race.
	SaveWithLock(ctx context.Context, inv *Invoice) error
	CountForCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
}

// PaymentFilter narrows payment queries
type PaymentFilter struct {
	CustomerID *uuid.UUID
	Method     *PaymentMethod
	Page       int
	PageSize   int
}

// PaymentRepository persists payments and their allocations
type PaymentRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Payment, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter PaymentFilter) ([]Payment, int64, error)
	Save(ctx context.Context, p *Payment) error
	SaveAllocation(ctx context.Context, a *PaymentAllocation) error
	FindAllocationsByPayment(ctx context.Context, companyID, paymentID uuid.UUID) ([]PaymentAllocation, error)
	FindAllocationsByInvoice(ctx context.Context, companyID, invoiceID uuid.UUID) ([]PaymentAllocation, error)
	CountForCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
}

// CreditNoteFilter narrows credit note queries
type CreditNoteFilter struct {
	CustomerID *uuid.UUID
	Status     *CreditNoteStatus
	Page       int
	PageSize   int
}

// CreditNoteRepository persists credit notes
type CreditNoteRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*CreditNote, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter CreditNoteFilter) ([]CreditNote, int64, error)
	Save(ctx context.Context, cn *CreditNote) error
	SaveWithLock(ctx context.Context, cn *CreditNote) error
	CountForCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
}

// QuotationRepository persists quotations
type QuotationRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Quotation, error)
	FindAll(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]Quotation, int64, error)
	Save(ctx context.Context, q *Quotation) error
	CountForCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
}

// ProformaRepository persists proforma invoices
type ProformaRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*ProformaInvoice, error)
	FindAll(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]ProformaInvoice, int64, error)
	Save(ctx context.Context, p *ProformaInvoice) error
	// MaxNumberWithPrefix returns the lexicographically greatest proforma
	// number starting with prefix, or "" when none exists.
	MaxNumberWithPrefix(ctx context.Context, companyID uuid.UUID, prefix string) (string, error)
}

// PurchaseOrderRepository persists purchase orders
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*PurchaseOrder, error)
	FindAll(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]PurchaseOrder, int64, error)
	Save(ctx context.Context, po *PurchaseOrder) error
	CountForCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
}

// DocumentNumberGenerator produces the next number in a document series.
// Implementations choose the sequencing strategy per document type.
type DocumentNumberGenerator interface {
	NextNumber(ctx context.Context, companyID uuid.UUID, docType DocumentType) (string, error)
}
