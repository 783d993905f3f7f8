package billing

import (
	"fmt"
	"time"

	"github.com/bizbooks/backend/internal/domain/shared"
	"github.com/bizbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPartial   InvoiceStatus = "partial"   // 0 < paid < total
	InvoiceStatusPaid      InvoiceStatus = "paid"      // paid >= total
	InvoiceStatusOverdue   InvoiceStatus = "overdue"   // past due date, not settled
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartial,
		InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanReceiveValue returns true if payments or credit can still be applied
func (s InvoiceStatus) CanReceiveValue() bool {
	return s != InvoiceStatusCancelled
}

// Invoice represents an invoice aggregate root. It tracks the amount a
// customer owes for a billed sale and accumulates settlements against it.
//
// The invariant BalanceDue == TotalAmount - PaidAmount holds after every
// successful mutation; TotalAmount never changes after creation and
// PaidAmount never decreases.
type Invoice struct {
	shared.CompanyAggregateRoot
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       *time.Time      `json:"due_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	Status        InvoiceStatus   `json:"status"`
	Notes         string          `json:"notes"`
	PaidAt        *time.Time      `json:"paid_at"`
	CancelledAt   *time.Time      `json:"cancelled_at"`
	CancelReason  string          `json:"cancel_reason"`
}

// NewInvoice creates a new draft invoice
func NewInvoice(
	companyID uuid.UUID,
	invoiceNumber string,
	customerID uuid.UUID,
	customerName string,
	totalAmount valueobject.Money,
	issueDate time.Time,
	dueDate *time.Time,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if !totalAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice total must be positive")
	}
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	inv := &Invoice{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		InvoiceNumber:        invoiceNumber,
		CustomerID:           customerID,
		CustomerName:         customerName,
		IssueDate:            issueDate,
		DueDate:              dueDate,
		TotalAmount:          totalAmount.Amount(),
		PaidAmount:           decimal.Zero,
		BalanceDue:           totalAmount.Amount(),
		Status:               InvoiceStatusDraft,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// Send marks a draft invoice as sent to the customer
func (inv *Invoice) Send() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send invoice in %s status", inv.Status))
	}

	inv.Status = InvoiceStatusSent
	inv.Touch()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceSentEvent(inv))

	return nil
}

// RecordPayment applies a payment amount to the invoice
func (inv *Invoice) RecordPayment(amount valueobject.Money) error {
	if !inv.Status.CanReceiveValue() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record payment on invoice in %s status", inv.Status))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	inv.settle(amount.Amount())
	inv.AddDomainEvent(NewInvoicePaymentRecordedEvent(inv, amount))

	return nil
}

// ApplyCredit applies credit note value to the invoice. Unlike payments,
// credit can never push the invoice past its balance due.
func (inv *Invoice) ApplyCredit(amount valueobject.Money) error {
	if !inv.Status.CanReceiveValue() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply credit to invoice in %s status", inv.Status))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.BalanceDue) {
		return shared.NewDomainError("EXCEEDS_INVOICE_BALANCE",
			fmt.Sprintf("Credit amount %s exceeds invoice balance due %s", amount.Amount().StringFixed(2), inv.BalanceDue.StringFixed(2)))
	}

	inv.settle(amount.Amount())
	inv.AddDomainEvent(NewInvoiceCreditAppliedEvent(inv, amount))

	return nil
}

// settle accumulates paid value and recomputes balance and status.
// Paid in full wins over partial; any other status is left as-is so an
// overdue or draft invoice keeps its standing until the thresholds apply.
func (inv *Invoice) settle(amount decimal.Decimal) {
	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.BalanceDue = inv.TotalAmount.Sub(inv.PaidAmount)

	switch {
	case inv.PaidAmount.GreaterThanOrEqual(inv.TotalAmount):
		now := time.Now()
		inv.Status = InvoiceStatusPaid
		inv.PaidAt = &now
	case inv.PaidAmount.GreaterThan(decimal.Zero):
		inv.Status = InvoiceStatusPartial
	}

	inv.Touch()
	inv.IncrementVersion()
}

// MarkOverdue flags an unsettled invoice whose due date has passed
func (inv *Invoice) MarkOverdue(asOf time.Time) error {
	if inv.Status != InvoiceStatusSent && inv.Status != InvoiceStatusPartial {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark invoice in %s status as overdue", inv.Status))
	}
	if inv.DueDate == nil || !asOf.After(*inv.DueDate) {
		return shared.NewDomainError("NOT_PAST_DUE", "Invoice due date has not passed")
	}

	inv.Status = InvoiceStatusOverdue
	inv.Touch()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceOverdueEvent(inv))

	return nil
}

// Cancel cancels the invoice (only if nothing has been paid against it)
func (inv *Invoice) Cancel(reason string) error {
	if inv.Status == InvoiceStatusCancelled || inv.Status == InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}
	if inv.PaidAmount.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("HAS_PAYMENTS", "Cannot cancel invoice with recorded payments")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))

	return nil
}

// SetNotes sets free-form notes
func (inv *Invoice) SetNotes(notes string) {
	inv.Notes = notes
	inv.Touch()
	inv.IncrementVersion()
}

// GetTotalAmountMoney returns total amount as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(inv.TotalAmount)
}

// GetPaidAmountMoney returns paid amount as Money
func (inv *Invoice) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(inv.PaidAmount)
}

// GetBalanceDueMoney returns balance due as Money
func (inv *Invoice) GetBalanceDueMoney() valueobject.Money {
	return valueobject.NewMoneyKES(inv.BalanceDue)
}

// IsPaid returns true if the invoice is fully paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// IsCancelled returns true if the invoice is cancelled
func (inv *Invoice) IsCancelled() bool {
	return inv.Status == InvoiceStatusCancelled
}

// IsPastDue returns true if the due date has passed and the invoice is unsettled
func (inv *Invoice) IsPastDue(asOf time.Time) bool {
	if inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusCancelled {
		return false
	}
	if inv.DueDate == nil {
		return false
	}
	return asOf.After(*inv.DueDate)
}
