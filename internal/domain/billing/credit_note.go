package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bizbooks/backend/internal/domain/shared"
	"github.com/bizbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditNoteStatus represents the lifecycle status of a credit note
type CreditNoteStatus string

const (
	CreditNoteStatusDraft     CreditNoteStatus = "draft"
	CreditNoteStatusSent      CreditNoteStatus = "sent"
	CreditNoteStatusApplied   CreditNoteStatus = "applied" // fully consumed
	CreditNoteStatusCancelled CreditNoteStatus = "cancelled"
)

// IsValid checks if the status is a valid CreditNoteStatus
func (s CreditNoteStatus) IsValid() bool {
	switch s {
	case CreditNoteStatusDraft, CreditNoteStatusSent, CreditNoteStatusApplied, CreditNoteStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of CreditNoteStatus
func (s CreditNoteStatus) String() string {
	return string(s)
}

// CanApply returns true if credit can still be applied in this status
func (s CreditNoteStatus) CanApply() bool {
	return s == CreditNoteStatusDraft || s == CreditNoteStatusSent
}

// CreditNoteAllocation records credit applied against a single invoice.
// There is at most one allocation per invoice; re-applying to the same
// invoice accumulates the amount and refreshes the allocation date.
type CreditNoteAllocation struct {
	ID          uuid.UUID       `json:"id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	AllocatedAt time.Time       `json:"allocated_at"`
	Notes       string          `json:"notes,omitempty"`
}

// CreditNoteAllocations is a slice of CreditNoteAllocation that implements
// GORM Scanner/Valuer for JSONB storage
type CreditNoteAllocations []CreditNoteAllocation

// Value implements driver.Valuer interface for GORM to store as JSONB
func (a CreditNoteAllocations) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (a *CreditNoteAllocations) Scan(value interface{}) error {
	if value == nil {
		*a = CreditNoteAllocations{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan CreditNoteAllocations: unsupported type")
	}

	if len(bytes) == 0 {
		*a = CreditNoteAllocations{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// CreditNote represents a credit note aggregate root. It carries value owed
// back to a customer and is consumed by applying it against invoices.
//
// The invariant Balance == TotalAmount - AppliedAmount holds after every
// successful mutation.
type CreditNote struct {
	shared.CompanyAggregateRoot
	CreditNoteNumber string                `json:"credit_note_number"`
	CustomerID       uuid.UUID             `json:"customer_id"`
	CustomerName     string                `json:"customer_name"`
	InvoiceID        *uuid.UUID            `json:"invoice_id"` // originating invoice, if any
	IssueDate        time.Time             `json:"issue_date"`
	TotalAmount      decimal.Decimal       `json:"total_amount"`
	AppliedAmount    decimal.Decimal       `json:"applied_amount"`
	Balance          decimal.Decimal       `json:"balance"`
	Status           CreditNoteStatus      `json:"status"`
	Reason           string                `json:"reason"`
	Allocations      CreditNoteAllocations `json:"allocations"`
	AppliedAt        *time.Time            `json:"applied_at"` // when fully consumed
	CancelledAt      *time.Time            `json:"cancelled_at"`
	CancelReason     string                `json:"cancel_reason"`
}

// NewCreditNote creates a new draft credit note
func NewCreditNote(
	companyID uuid.UUID,
	creditNoteNumber string,
	customerID uuid.UUID,
	customerName string,
	invoiceID *uuid.UUID,
	totalAmount valueobject.Money,
	issueDate time.Time,
	reason string,
) (*CreditNote, error) {
	if creditNoteNumber == "" {
		return nil, shared.NewDomainError("INVALID_CREDIT_NOTE_NUMBER", "Credit note number cannot be empty")
	}
	if len(creditNoteNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_CREDIT_NOTE_NUMBER", "Credit note number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if !totalAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit note total must be positive")
	}
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	cn := &CreditNote{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		CreditNoteNumber:     creditNoteNumber,
		CustomerID:           customerID,
		CustomerName:         customerName,
		InvoiceID:            invoiceID,
		IssueDate:            issueDate,
		TotalAmount:          totalAmount.Amount(),
		AppliedAmount:        decimal.Zero,
		Balance:              totalAmount.Amount(),
		Status:               CreditNoteStatusDraft,
		Reason:               reason,
		Allocations:          CreditNoteAllocations{},
	}

	cn.AddDomainEvent(NewCreditNoteCreatedEvent(cn))

	return cn, nil
}

// Send marks a draft credit note as sent to the customer
func (cn *CreditNote) Send() error {
	if cn.Status != CreditNoteStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send credit note in %s status", cn.Status))
	}

	cn.Status = CreditNoteStatusSent
	cn.Touch()
	cn.IncrementVersion()

	return nil
}

// ApplyToInvoice consumes credit against an invoice. The allocation for a
// given invoice is upserted: a second application to the same invoice
// accumulates the amount rather than adding a new allocation.
func (cn *CreditNote) ApplyToInvoice(invoiceID uuid.UUID, amount valueobject.Money, notes string) error {
	if !cn.Status.CanApply() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply credit note in %s status", cn.Status))
	}
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Applied amount must be positive")
	}
	if amount.Amount().GreaterThan(cn.Balance) {
		return shared.NewDomainError("INSUFFICIENT_CREDIT",
			fmt.Sprintf("Applied amount %s exceeds credit note balance %s", amount.Amount().StringFixed(2), cn.Balance.StringFixed(2)))
	}

	now := time.Now()

	found := false
	for i := range cn.Allocations {
		if cn.Allocations[i].InvoiceID == invoiceID {
			cn.Allocations[i].Amount = cn.Allocations[i].Amount.Add(amount.Amount())
			cn.Allocations[i].AllocatedAt = now
			if notes != "" {
				cn.Allocations[i].Notes = notes
			}
			found = true
			break
		}
	}
	if !found {
		cn.Allocations = append(cn.Allocations, CreditNoteAllocation{
			ID:          uuid.New(),
			InvoiceID:   invoiceID,
			Amount:      amount.Amount(),
			AllocatedAt: now,
			Notes:       notes,
		})
	}

	cn.AppliedAmount = cn.AppliedAmount.Add(amount.Amount())
	cn.Balance = cn.TotalAmount.Sub(cn.AppliedAmount)

	if cn.Balance.IsZero() {
		cn.Status = CreditNoteStatusApplied
		cn.AppliedAt = &now
		cn.AddDomainEvent(NewCreditNoteExhaustedEvent(cn))
	}

	cn.UpdatedAt = now
	cn.IncrementVersion()

	cn.AddDomainEvent(NewCreditNoteAppliedEvent(cn, invoiceID, amount))

	return nil
}

// Cancel cancels the credit note (only if no credit has been applied)
func (cn *CreditNote) Cancel(reason string) error {
	if cn.Status == CreditNoteStatusApplied || cn.Status == CreditNoteStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel credit note in %s status", cn.Status))
	}
	if cn.AppliedAmount.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("HAS_APPLICATIONS", "Cannot cancel credit note with applied credit")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	cn.Status = CreditNoteStatusCancelled
	cn.CancelledAt = &now
	cn.CancelReason = reason
	cn.UpdatedAt = now
	cn.IncrementVersion()

	return nil
}

// AllocationFor returns the allocation for an invoice, or nil if none exists
func (cn *CreditNote) AllocationFor(invoiceID uuid.UUID) *CreditNoteAllocation {
	for i := range cn.Allocations {
		if cn.Allocations[i].InvoiceID == invoiceID {
			return &cn.Allocations[i]
		}
	}
	return nil
}

// GetTotalAmountMoney returns total amount as Money
func (cn *CreditNote) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(cn.TotalAmount)
}

// GetAppliedAmountMoney returns applied amount as Money
func (cn *CreditNote) GetAppliedAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(cn.AppliedAmount)
}

// GetBalanceMoney returns the remaining balance as Money
func (cn *CreditNote) GetBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyKES(cn.Balance)
}

// IsExhausted returns true if the credit note is fully consumed
func (cn *CreditNote) IsExhausted() bool {
	return cn.Status == CreditNoteStatusApplied
}
