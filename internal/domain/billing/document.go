package billing

import (
	"fmt"
	"time"

	"github.com/bizbooks/backend/internal/domain/shared"
	"github.com/bizbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentType identifies a numbered document series. The value doubles as
// the type tag embedded in generated document numbers.
type DocumentType string

const (
	DocTypeQuotation     DocumentType = "QUO"
	DocTypeInvoice       DocumentType = "INV"
	DocTypeProforma      DocumentType = "PF"
	DocTypePurchaseOrder DocumentType = "LPO"
	DocTypeCreditNote    DocumentType = "CN"
	DocTypePayment       DocumentType = "PAY"
)

// IsValid checks if the document type is valid
func (t DocumentType) IsValid() bool {
	switch t {
	case DocTypeQuotation, DocTypeInvoice, DocTypeProforma,
		DocTypePurchaseOrder, DocTypeCreditNote, DocTypePayment:
		return true
	}
	return false
}

// String returns the type tag
func (t DocumentType) String() string {
	return string(t)
}

// QuotationStatus represents the lifecycle status of a quotation
type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "draft"
	QuotationStatusSent     QuotationStatus = "sent"
	QuotationStatusAccepted QuotationStatus = "accepted"
	QuotationStatusRejected QuotationStatus = "rejected"
	QuotationStatusExpired  QuotationStatus = "expired"
)

// Quotation represents a priced offer sent to a customer before invoicing
type Quotation struct {
	shared.CompanyAggregateRoot
	QuotationNumber string          `json:"quotation_number"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	IssueDate       time.Time       `json:"issue_date"`
	ValidUntil      *time.Time      `json:"valid_until"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          QuotationStatus `json:"status"`
	Notes           string          `json:"notes"`
}

// NewQuotation creates a new draft quotation
func NewQuotation(
	companyID uuid.UUID,
	quotationNumber string,
	customerID uuid.UUID,
	customerName string,
	totalAmount valueobject.Money,
	issueDate time.Time,
	validUntil *time.Time,
) (*Quotation, error) {
	if err := validateDocumentFields(quotationNumber, customerID, customerName, totalAmount); err != nil {
		return nil, err
	}
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	return &Quotation{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		QuotationNumber:      quotationNumber,
		CustomerID:           customerID,
		CustomerName:         customerName,
		IssueDate:            issueDate,
		ValidUntil:           validUntil,
		TotalAmount:          totalAmount.Amount(),
		Status:               QuotationStatusDraft,
	}, nil
}

// Send marks the quotation as sent
func (q *Quotation) Send() error {
	if q.Status != QuotationStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send quotation in %s status", q.Status))
	}
	q.Status = QuotationStatusSent
	q.Touch()
	q.IncrementVersion()
	return nil
}

// Accept marks a sent quotation as accepted by the customer
func (q *Quotation) Accept() error {
	if q.Status != QuotationStatusSent {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot accept quotation in %s status", q.Status))
	}
	q.Status = QuotationStatusAccepted
	q.Touch()
	q.IncrementVersion()
	return nil
}

// ProformaStatus represents the lifecycle status of a proforma invoice
type ProformaStatus string

const (
	ProformaStatusDraft     ProformaStatus = "draft"
	ProformaStatusSent      ProformaStatus = "sent"
	ProformaStatusConverted ProformaStatus = "converted" // became a real invoice
	ProformaStatusCancelled ProformaStatus = "cancelled"
)

// ProformaInvoice represents a preliminary invoice issued before the final
// one. Proformas carry no ledger value; they exist to be numbered and sent.
type ProformaInvoice struct {
	shared.CompanyAggregateRoot
	ProformaNumber string          `json:"proforma_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	IssueDate      time.Time       `json:"issue_date"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         ProformaStatus  `json:"status"`
	Notes          string          `json:"notes"`
}

// NewProformaInvoice creates a new draft proforma invoice
func NewProformaInvoice(
	companyID uuid.UUID,
	proformaNumber string,
	customerID uuid.UUID,
	customerName string,
	totalAmount valueobject.Money,
	issueDate time.Time,
) (*ProformaInvoice, error) {
	if err := validateDocumentFields(proformaNumber, customerID, customerName, totalAmount); err != nil {
		return nil, err
	}
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	return &ProformaInvoice{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		ProformaNumber:       proformaNumber,
		CustomerID:           customerID,
		CustomerName:         customerName,
		IssueDate:            issueDate,
		TotalAmount:          totalAmount.Amount(),
		Status:               ProformaStatusDraft,
	}, nil
}

// MarkConverted records that the proforma was converted into an invoice
func (p *ProformaInvoice) MarkConverted() error {
	if p.Status == ProformaStatusConverted || p.Status == ProformaStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot convert proforma in %s status", p.Status))
	}
	p.Status = ProformaStatusConverted
	p.Touch()
	p.IncrementVersion()
	return nil
}

// PurchaseOrderStatus represents the lifecycle status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderStatusIssued    PurchaseOrderStatus = "issued"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// PurchaseOrder represents a local purchase order (LPO) issued to a supplier
type PurchaseOrder struct {
	shared.CompanyAggregateRoot
	OrderNumber  string              `json:"order_number"`
	SupplierID   uuid.UUID           `json:"supplier_id"`
	SupplierName string              `json:"supplier_name"`
	OrderDate    time.Time           `json:"order_date"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	Status       PurchaseOrderStatus `json:"status"`
	Notes        string              `json:"notes"`
}

// NewPurchaseOrder creates a new draft purchase order
func NewPurchaseOrder(
	companyID uuid.UUID,
	orderNumber string,
	supplierID uuid.UUID,
	supplierName string,
	totalAmount valueobject.Money,
	orderDate time.Time,
) (*PurchaseOrder, error) {
	if err := validateDocumentFields(orderNumber, supplierID, supplierName, totalAmount); err != nil {
		return nil, err
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	return &PurchaseOrder{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		OrderNumber:          orderNumber,
		SupplierID:           supplierID,
		SupplierName:         supplierName,
		OrderDate:            orderDate,
		TotalAmount:          totalAmount.Amount(),
		Status:               PurchaseOrderStatusDraft,
	}, nil
}

// Issue marks the purchase order as issued to the supplier
func (po *PurchaseOrder) Issue() error {
	if po.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot issue purchase order in %s status", po.Status))
	}
	po.Status = PurchaseOrderStatusIssued
	po.Touch()
	po.IncrementVersion()
	return nil
}

func validateDocumentFields(number string, partyID uuid.UUID, partyName string, total valueobject.Money) error {
	if number == "" {
		return shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}
	if len(number) > 50 {
		return shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot exceed 50 characters")
	}
	if partyID == uuid.Nil {
		return shared.NewDomainError("INVALID_PARTY", "Party ID cannot be empty")
	}
	if partyName == "" {
		return shared.NewDomainError("INVALID_PARTY_NAME", "Party name cannot be empty")
	}
	if total.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Document total cannot be negative")
	}
	return nil
}
