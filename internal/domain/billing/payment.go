package billing

import (
	"time"

	"github.com/bizbooks/backend/internal/domain/shared"
	"github.com/bizbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheque, PaymentMethodBankTransfer,
		PaymentMethodMobileMoney, PaymentMethodCreditCard, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment represents money received from a customer. A payment is immutable
// once recorded; its value reaches invoices through allocations.
type Payment struct {
	shared.CompanyAggregateRoot
	PaymentNumber string          `json:"payment_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	PaymentDate   time.Time       `json:"payment_date"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	Reference     string          `json:"reference"`
	Notes         string          `json:"notes"`
}

// NewPayment creates a new payment record
func NewPayment(
	companyID uuid.UUID,
	paymentNumber string,
	customerID uuid.UUID,
	customerName string,
	amount valueobject.Money,
	method PaymentMethod,
	paymentDate time.Time,
	reference string,
	notes string,
) (*Payment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	p := &Payment{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		PaymentNumber:        paymentNumber,
		CustomerID:           customerID,
		CustomerName:         customerName,
		PaymentDate:          paymentDate,
		Amount:               amount.Amount(),
		Method:               method,
		Reference:            reference,
		Notes:                notes,
	}

	p.AddDomainEvent(NewPaymentRecordedEvent(p))

	return p, nil
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(p.Amount)
}

// AllocateTo creates an allocation of this payment against an invoice.
// The allocated amount may not exceed the payment amount.
func (p *Payment) AllocateTo(invoiceID uuid.UUID, amount valueobject.Money, allocationDate time.Time) (*PaymentAllocation, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if amount.Amount().GreaterThan(p.Amount) {
		return nil, shared.NewDomainError("EXCEEDS_PAYMENT", "Allocation amount exceeds the payment amount")
	}
	if allocationDate.IsZero() {
		allocationDate = p.PaymentDate
	}

	return &PaymentAllocation{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(p.CompanyID),
		PaymentID:            p.ID,
		InvoiceID:            invoiceID,
		Amount:               amount.Amount(),
		AllocationDate:       allocationDate,
	}, nil
}

// PaymentAllocation links a payment to the invoice it settles
type PaymentAllocation struct {
	shared.CompanyAggregateRoot
	PaymentID      uuid.UUID       `json:"payment_id"`
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	Amount         decimal.Decimal `json:"amount"`
	AllocationDate time.Time       `json:"allocation_date"`
}

// GetAmountMoney returns the allocated amount as Money
func (a *PaymentAllocation) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(a.Amount)
}
