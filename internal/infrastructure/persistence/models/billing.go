package models

import (
	"time"

	"github.com/bizbooks/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	CompanyAggregateModel
	InvoiceNumber string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_company_number,priority:2"`
	CustomerID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerName  string                `gorm:"type:varchar(200);not null"`
	IssueDate     time.Time             `gorm:"not null"`
	DueDate       *time.Time            `gorm:"index"`
	TotalAmount   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaidAmount    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	BalanceDue    decimal.Decimal       `gorm:"type:decimal(18,4);not null;index"`
	Status        billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Notes         string                `gorm:"type:text"`
	PaidAt        *time.Time
	CancelledAt   *time.Time
	CancelReason  string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		InvoiceNumber: m.InvoiceNumber,
		CustomerID:    m.CustomerID,
		CustomerName:  m.CustomerName,
		IssueDate:     m.IssueDate,
		DueDate:       m.DueDate,
		TotalAmount:   m.TotalAmount,
		PaidAmount:    m.PaidAmount,
		BalanceDue:    m.BalanceDue,
		Status:        m.Status,
		Notes:         m.Notes,
		PaidAt:        m.PaidAt,
		CancelledAt:   m.CancelledAt,
		CancelReason:  m.CancelReason,
	}
	m.PopulateCompanyAggregateRoot(&inv.CompanyAggregateRoot)
	return inv
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainCompanyAggregateRoot(inv.CompanyAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerID = inv.CustomerID
	m.CustomerName = inv.CustomerName
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.TotalAmount = inv.TotalAmount
	m.PaidAmount = inv.PaidAmount
	m.BalanceDue = inv.BalanceDue
	m.Status = inv.Status
	m.Notes = inv.Notes
	m.PaidAt = inv.PaidAt
	m.CancelledAt = inv.CancelledAt
	m.CancelReason = inv.CancelReason
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	CompanyAggregateModel
	PaymentNumber string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_company_number,priority:2"`
	CustomerID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerName  string                `gorm:"type:varchar(200);not null"`
	PaymentDate   time.Time             `gorm:"not null;index"`
	Amount        decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Method        billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	Reference     string                `gorm:"type:varchar(100)"`
	Notes         string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *billing.Payment {
	p := &billing.Payment{
		PaymentNumber: m.PaymentNumber,
		CustomerID:    m.CustomerID,
		CustomerName:  m.CustomerName,
		PaymentDate:   m.PaymentDate,
		Amount:        m.Amount,
		Method:        m.Method,
		Reference:     m.Reference,
		Notes:         m.Notes,
	}
	m.PopulateCompanyAggregateRoot(&p.CompanyAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainCompanyAggregateRoot(p.CompanyAggregateRoot)
	m.PaymentNumber = p.PaymentNumber
	m.CustomerID = p.CustomerID
	m.CustomerName = p.CustomerName
	m.PaymentDate = p.PaymentDate
	m.Amount = p.Amount
	m.Method = p.Method
	m.Reference = p.Reference
	m.Notes = p.Notes
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// PaymentAllocationModel is the persistence model for PaymentAllocation.
type PaymentAllocationModel struct {
	CompanyAggregateModel
	PaymentID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AllocationDate time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentAllocationModel) TableName() string {
	return "payment_allocations"
}

// ToDomain converts the persistence model to a domain PaymentAllocation entity.
func (m *PaymentAllocationModel) ToDomain() *billing.PaymentAllocation {
	a := &billing.PaymentAllocation{
		PaymentID:      m.PaymentID,
		InvoiceID:      m.InvoiceID,
		Amount:         m.Amount,
		AllocationDate: m.AllocationDate,
	}
	m.PopulateCompanyAggregateRoot(&a.CompanyAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain PaymentAllocation entity.
func (m *PaymentAllocationModel) FromDomain(a *billing.PaymentAllocation) {
	m.FromDomainCompanyAggregateRoot(a.CompanyAggregateRoot)
	m.PaymentID = a.PaymentID
	m.InvoiceID = a.InvoiceID
	m.Amount = a.Amount
	m.AllocationDate = a.AllocationDate
}

// PaymentAllocationModelFromDomain creates a new persistence model from a domain PaymentAllocation.
func PaymentAllocationModelFromDomain(a *billing.PaymentAllocation) *PaymentAllocationModel {
	m := &PaymentAllocationModel{}
	m.FromDomain(a)
	return m
}

// CreditNoteModel is the persistence model for the CreditNote aggregate root.
type CreditNoteModel struct {
	CompanyAggregateModel
	CreditNoteNumber string                        `gorm:"type:varchar(50);not null;uniqueIndex:idx_credit_note_company_number,priority:2"`
	CustomerID       uuid.UUID                     `gorm:"type:uuid;not null;index"`
	CustomerName     string                        `gorm:"type:varchar(200);not null"`
	InvoiceID        *uuid.UUID                    `gorm:"type:uuid;index"`
	IssueDate        time.Time                     `gorm:"not null"`
	TotalAmount      decimal.Decimal               `gorm:"type:decimal(18,4);not null"`
	AppliedAmount    decimal.Decimal               `gorm:"type:decimal(18,4);not null"`
	Balance          decimal.Decimal               `gorm:"type:decimal(18,4);not null;index"`
	Status           billing.CreditNoteStatus      `gorm:"type:varchar(20);not null;default:'draft';index"`
	Reason           string                        `gorm:"type:varchar(500)"`
	Allocations      billing.CreditNoteAllocations `gorm:"type:jsonb;default:'[]'"`
	AppliedAt        *time.Time
	CancelledAt      *time.Time
	CancelReason     string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CreditNoteModel) TableName() string {
	return "credit_notes"
}

// ToDomain converts the persistence model to a domain CreditNote entity.
func (m *CreditNoteModel) ToDomain() *billing.CreditNote {
	cn := &billing.CreditNote{
		CreditNoteNumber: m.CreditNoteNumber,
		CustomerID:       m.CustomerID,
		CustomerName:     m.CustomerName,
		InvoiceID:        m.InvoiceID,
		IssueDate:        m.IssueDate,
		TotalAmount:      m.TotalAmount,
		AppliedAmount:    m.AppliedAmount,
		Balance:          m.Balance,
		Status:           m.Status,
		Reason:           m.Reason,
		Allocations:      m.Allocations,
		AppliedAt:        m.AppliedAt,
		CancelledAt:      m.CancelledAt,
		CancelReason:     m.CancelReason,
	}
	if cn.Allocations == nil {
		cn.Allocations = billing.CreditNoteAllocations{}
	}
	m.PopulateCompanyAggregateRoot(&cn.CompanyAggregateRoot)
	return cn
}

// FromDomain populates the persistence model from a domain CreditNote entity.
func (m *CreditNoteModel) FromDomain(cn *billing.CreditNote) {
	m.FromDomainCompanyAggregateRoot(cn.CompanyAggregateRoot)
	m.CreditNoteNumber = cn.CreditNoteNumber
	m.CustomerID = cn.CustomerID
	m.CustomerName = cn.CustomerName
	m.InvoiceID = cn.InvoiceID
	m.IssueDate = cn.IssueDate
	m.TotalAmount = cn.TotalAmount
	m.AppliedAmount = cn.AppliedAmount
	m.Balance = cn.Balance
	m.Status = cn.Status
	m.Reason = cn.Reason
	m.Allocations = cn.Allocations
	m.AppliedAt = cn.AppliedAt
	m.CancelledAt = cn.CancelledAt
	m.CancelReason = cn.CancelReason
}

// CreditNoteModelFromDomain creates a new persistence model from a domain CreditNote.
func CreditNoteModelFromDomain(cn *billing.CreditNote) *CreditNoteModel {
	m := &CreditNoteModel{}
	m.FromDomain(cn)
	return m
}

// QuotationModel is the persistence model for the Quotation aggregate root.
type QuotationModel struct {
	CompanyAggregateModel
	QuotationNumber string                  `gorm:"type:varchar(50);not null;uniqueIndex:idx_quotation_company_number,priority:2"`
	CustomerID      uuid.UUID               `gorm:"type:uuid;not null;index"`
	CustomerName    string                  `gorm:"type:varchar(200);not null"`
	IssueDate       time.Time               `gorm:"not null"`
	ValidUntil      *time.Time              `gorm:"index"`
	TotalAmount     decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Status          billing.QuotationStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Notes           string                  `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (QuotationModel) TableName() string {
	return "quotations"
}

// ToDomain converts the persistence model to a domain Quotation entity.
func (m *QuotationModel) ToDomain() *billing.Quotation {
	q := &billing.Quotation{
		QuotationNumber: m.QuotationNumber,
		CustomerID:      m.CustomerID,
		CustomerName:    m.CustomerName,
		IssueDate:       m.IssueDate,
		ValidUntil:      m.ValidUntil,
		TotalAmount:     m.TotalAmount,
		Status:          m.Status,
		Notes:           m.Notes,
	}
	m.PopulateCompanyAggregateRoot(&q.CompanyAggregateRoot)
	return q
}

// FromDomain populates the persistence model from a domain Quotation entity.
func (m *QuotationModel) FromDomain(q *billing.Quotation) {
	m.FromDomainCompanyAggregateRoot(q.CompanyAggregateRoot)
	m.QuotationNumber = q.QuotationNumber
	m.CustomerID = q.CustomerID
	m.CustomerName = q.CustomerName
	m.IssueDate = q.IssueDate
	m.ValidUntil = q.ValidUntil
	m.TotalAmount = q.TotalAmount
	m.Status = q.Status
	m.Notes = q.Notes
}

// QuotationModelFromDomain creates a new persistence model from a domain Quotation.
func QuotationModelFromDomain(q *billing.Quotation) *QuotationModel {
	m := &QuotationModel{}
	m.FromDomain(q)
	return m
}

// ProformaInvoiceModel is the persistence model for the ProformaInvoice aggregate root.
type ProformaInvoiceModel struct {
	CompanyAggregateModel
	ProformaNumber string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_proforma_company_number,priority:2"`
	CustomerID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	CustomerName   string                 `gorm:"type:varchar(200);not null"`
	IssueDate      time.Time              `gorm:"not null"`
	TotalAmount    decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Status         billing.ProformaStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Notes          string                 `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ProformaInvoiceModel) TableName() string {
	return "proforma_invoices"
}

// ToDomain converts the persistence model to a domain ProformaInvoice entity.
func (m *ProformaInvoiceModel) ToDomain() *billing.ProformaInvoice {
	p := &billing.ProformaInvoice{
		ProformaNumber: m.ProformaNumber,
		CustomerID:     m.CustomerID,
		CustomerName:   m.CustomerName,
		IssueDate:      m.IssueDate,
		TotalAmount:    m.TotalAmount,
		Status:         m.Status,
		Notes:          m.Notes,
	}
	m.PopulateCompanyAggregateRoot(&p.CompanyAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain ProformaInvoice entity.
func (m *ProformaInvoiceModel) FromDomain(p *billing.ProformaInvoice) {
	m.FromDomainCompanyAggregateRoot(p.CompanyAggregateRoot)
	m.ProformaNumber = p.ProformaNumber
	m.CustomerID = p.CustomerID
	m.CustomerName = p.CustomerName
	m.IssueDate = p.IssueDate
	m.TotalAmount = p.TotalAmount
	m.Status = p.Status
	m.Notes = p.Notes
}

// ProformaInvoiceModelFromDomain creates a new persistence model from a domain ProformaInvoice.
func ProformaInvoiceModelFromDomain(p *billing.ProformaInvoice) *ProformaInvoiceModel {
	m := &ProformaInvoiceModel{}
	m.FromDomain(p)
	return m
}

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	CompanyAggregateModel
	OrderNumber  string                      `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_order_company_number,priority:2"`
	SupplierID   uuid.UUID                   `gorm:"type:uuid;not null;index"`
	SupplierName string                      `gorm:"type:varchar(200);not null"`
	OrderDate    time.Time                   `gorm:"not null"`
	TotalAmount  decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	Status       billing.PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Notes        string                      `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) ToDomain() *billing.PurchaseOrder {
	po := &billing.PurchaseOrder{
		OrderNumber:  m.OrderNumber,
		SupplierID:   m.SupplierID,
		SupplierName: m.SupplierName,
		OrderDate:    m.OrderDate,
		TotalAmount:  m.TotalAmount,
		Status:       m.Status,
		Notes:        m.Notes,
	}
	m.PopulateCompanyAggregateRoot(&po.CompanyAggregateRoot)
	return po
}

// FromDomain populates the persistence model from a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) FromDomain(po *billing.PurchaseOrder) {
	m.FromDomainCompanyAggregateRoot(po.CompanyAggregateRoot)
	m.OrderNumber = po.OrderNumber
	m.SupplierID = po.SupplierID
	m.SupplierName = po.SupplierName
	m.OrderDate = po.OrderDate
	m.TotalAmount = po.TotalAmount
	m.Status = po.Status
	m.Notes = po.Notes
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder.
func PurchaseOrderModelFromDomain(po *billing.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(po)
	return m
}
