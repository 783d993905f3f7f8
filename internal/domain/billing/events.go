package billing

import (
	"github.com/bizbooks/backend/internal/domain/shared"
	"github.com/bizbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventInvoiceCreated         = "billing.invoice.created"
	EventInvoiceSent            = "billing.invoice.sent"
	EventInvoicePaymentRecorded = "billing.invoice.payment_recorded"
	EventInvoiceCreditApplied   = "billing.invoice.credit_applied"
	EventInvoiceOverdue         = "billing.invoice.overdue"
	EventInvoiceCancelled       = "billing.invoice.cancelled"
	EventPaymentRecorded        = "billing.payment.recorded"
	EventCreditNoteCreated      = "billing.credit_note.created"
	EventCreditNoteApplied      = "billing.credit_note.applied"
	EventCreditNoteExhausted    = "billing.credit_note.exhausted"
)

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewInvoiceCreatedEvent creates an InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceCreated, "Invoice", inv.ID, inv.CompanyID),
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoiceSentEvent is raised when an invoice is sent to the customer
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
}

// NewInvoiceSentEvent creates an InvoiceSentEvent
func NewInvoiceSentEvent(inv *Invoice) *InvoiceSentEvent {
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceSent, "Invoice", inv.ID, inv.CompanyID),
		InvoiceNumber:   inv.InvoiceNumber,
	}
}

// InvoicePaymentRecordedEvent is raised when a payment settles invoice value
type InvoicePaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	Status        InvoiceStatus   `json:"status"`
}

// NewInvoicePaymentRecordedEvent creates an InvoicePaymentRecordedEvent
func NewInvoicePaymentRecordedEvent(inv *Invoice, amount valueobject.Money) *InvoicePaymentRecordedEvent {
	return &InvoicePaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoicePaymentRecorded, "Invoice", inv.ID, inv.CompanyID),
		InvoiceNumber:   inv.InvoiceNumber,
		Amount:          amount.Amount(),
		PaidAmount:      inv.PaidAmount,
		BalanceDue:      inv.BalanceDue,
		Status:          inv.Status,
	}
}

// InvoiceCreditAppliedEvent is raised when credit note value settles invoice value
type InvoiceCreditAppliedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	Status        InvoiceStatus   `json:"status"`
}

// NewInvoiceCreditAppliedEvent creates an InvoiceCreditAppliedEvent
func NewInvoiceCreditAppliedEvent(inv *Invoice, amount valueobject.Money) *InvoiceCreditAppliedEvent {
	return &InvoiceCreditAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceCreditApplied, "Invoice", inv.ID, inv.CompanyID),
		InvoiceNumber:   inv.InvoiceNumber,
		Amount:          amount.Amount(),
		BalanceDue:      inv.BalanceDue,
		Status:          inv.Status,
	}
}

// InvoiceOverdueEvent is raised when an invoice is flagged overdue
type InvoiceOverdueEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
}

// NewInvoiceOverdueEvent creates an InvoiceOverdueEvent
func NewInvoiceOverdueEvent(inv *Invoice) *InvoiceOverdueEvent {
	return &InvoiceOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceOverdue, "Invoice", inv.ID, inv.CompanyID),
		InvoiceNumber:   inv.InvoiceNumber,
		BalanceDue:      inv.BalanceDue,
	}
}

// InvoiceCancelledEvent is raised when an invoice is cancelled
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	Reason        string `json:"reason"`
}

// NewInvoiceCancelledEvent creates an InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceCancelled, "Invoice", inv.ID, inv.CompanyID),
		InvoiceNumber:   inv.InvoiceNumber,
		Reason:          inv.CancelReason,
	}
}

// PaymentRecordedEvent is raised when a payment is recorded
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentNumber string          `json:"payment_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
}

// NewPaymentRecordedEvent creates a PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentRecorded, "Payment", p.ID, p.CompanyID),
		PaymentNumber:   p.PaymentNumber,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		Method:          p.Method,
	}
}

// CreditNoteCreatedEvent is raised when a credit note is created
type CreditNoteCreatedEvent struct {
	shared.BaseDomainEvent
	CreditNoteNumber string          `json:"credit_note_number"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
}

// NewCreditNoteCreatedEvent creates a CreditNoteCreatedEvent
func NewCreditNoteCreatedEvent(cn *CreditNote) *CreditNoteCreatedEvent {
	return &CreditNoteCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventCreditNoteCreated, "CreditNote", cn.ID, cn.CompanyID),
		CreditNoteNumber: cn.CreditNoteNumber,
		CustomerID:       cn.CustomerID,
		TotalAmount:      cn.TotalAmount,
	}
}

// CreditNoteAppliedEvent is raised when credit is applied against an invoice
type CreditNoteAppliedEvent struct {
	shared.BaseDomainEvent
	CreditNoteNumber string          `json:"credit_note_number"`
	InvoiceID        uuid.UUID       `json:"invoice_id"`
	Amount           decimal.Decimal `json:"amount"`
	Balance          decimal.Decimal `json:"balance"`
}

// NewCreditNoteAppliedEvent creates a CreditNoteAppliedEvent
func NewCreditNoteAppliedEvent(cn *CreditNote, invoiceID uuid.UUID, amount valueobject.Money) *CreditNoteAppliedEvent {
	return &CreditNoteAppliedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventCreditNoteApplied, "CreditNote", cn.ID, cn.CompanyID),
		CreditNoteNumber: cn.CreditNoteNumber,
		InvoiceID:        invoiceID,
		Amount:           amount.Amount(),
		Balance:          cn.Balance,
	}
}

// CreditNoteExhaustedEvent is raised when a credit note is fully consumed
type CreditNoteExhaustedEvent struct {
	shared.BaseDomainEvent
	CreditNoteNumber string `json:"credit_note_number"`
}

// NewCreditNoteExhaustedEvent creates a CreditNoteExhaustedEvent
func NewCreditNoteExhaustedEvent(cn *CreditNote) *CreditNoteExhaustedEvent {
	return &CreditNoteExhaustedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventCreditNoteExhausted, "CreditNote", cn.ID, cn.CompanyID),
		CreditNoteNumber: cn.CreditNoteNumber,
	}
}
