// Package billing contains the application services for the billing ledger.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/bizbooks/backend/internal/domain/billing"
	"github.com/bizbooks/backend/internal/domain/shared"
	"github.com/bizbooks/backend/internal/domain/shared/valueobject"
	"github.com/bizbooks/backend/internal/infrastructure/persistence"
	"github.com/bizbooks/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Config holds tunables shared by the billing services
type Config struct {
	// NumberRetryAttempts is how many times document creation retries with a
	// recomputed sequence after a duplicate-number collision.
	NumberRetryAttempts int
	// IdempotencyTTL is how long a processed Idempotency-Key stays claimed
	IdempotencyTTL time.Duration
}

func (c Config) retryAttempts() int {
	if c.NumberRetryAttempts < 1 {
		return 1
	}
	return c.NumberRetryAttempts
}

// PaymentService records customer payments and allocates them to invoices
type PaymentService struct {
	invoices    billing.InvoiceRepository
	payments    billing.PaymentRepository
	numbers     billing.DocumentNumberGenerator
	tx          shared.TransactionManager
	idempotency shared.IdempotencyStore
	cfg         Config
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService. The idempotency store may
// be nil, in which case Idempotency-Key handling is disabled.
func NewPaymentService(
	invoices billing.InvoiceRepository,
	payments billing.PaymentRepository,
	numbers billing.DocumentNumberGenerator,
	tx shared.TransactionManager,
	idempotency shared.IdempotencyStore,
	cfg Config,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		invoices:    invoices,
		payments:    payments,
		numbers:     numbers,
		tx:          tx,
		idempotency: idempotency,
		cfg:         cfg,
		logger:      logger,
	}
}

// RecordPaymentRequest is a request to record a payment against an invoice
type RecordPaymentRequest struct {
	CompanyID      uuid.UUID
	InvoiceID      uuid.UUID
	Amount         decimal.Decimal
	Method         billing.PaymentMethod
	PaymentDate    time.Time
	Reference      string
	Notes          string
	IdempotencyKey string
}

// RecordPaymentResult reports the recorded payment and the invoice it settled
type RecordPaymentResult struct {
	PaymentID     uuid.UUID             `json:"payment_id"`
	PaymentNumber string                `json:"payment_number"`
	AllocationID  uuid.UUID             `json:"allocation_id"`
	InvoiceID     uuid.UUID             `json:"invoice_id"`
	InvoiceNumber string                `json:"invoice_number"`
	InvoiceStatus billing.InvoiceStatus `json:"invoice_status"`
	PaidAmount    decimal.Decimal       `json:"paid_amount"`
	BalanceDue    decimal.Decimal       `json:"balance_due"`
}

// RecordPayment atomically records a payment, allocates it to the invoice,
// and rolls the invoice's paid amount, balance due, and status forward.
// Payments may overpay an invoice; the invoice settles at paid.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*RecordPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrCompanyID, req.CompanyID.String(),
		telemetry.SpanAttrInvoiceID, req.InvoiceID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	invoice, err := s.invoices.FindByID(ctx, req.CompanyID, req.InvoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		err := shared.NewDomainError("NOT_FOUND", "Invoice not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if !req.Amount.GreaterThan(decimal.Zero) {
		err := shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !req.Method.IsValid() {
		err := shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.claimIdempotencyKey(ctx, req.IdempotencyKey); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var result *RecordPaymentResult
	for attempt := 1; ; attempt++ {
		result, err = s.recordOnce(ctx, req, invoice.CustomerID, invoice.CustomerName)
		if err == nil {
			break
		}
		if !persistence.IsUniqueViolation(err) || attempt >= s.cfg.retryAttempts() {
			telemetry.RecordError(span, err)
			return nil, err
		}
		s.logger.Warn("payment number collision, retrying with recomputed sequence",
			zap.String("company_id", req.CompanyID.String()),
			zap.Int("attempt", attempt),
		)
	}

	telemetry.AddEvent(span, "payment_recorded",
		telemetry.SpanAttrPaymentID, result.PaymentID.String(),
		telemetry.SpanAttrInvoiceNumber, result.InvoiceNumber,
	)
	s.logger.Info("payment recorded",
		zap.String("payment_number", result.PaymentNumber),
		zap.String("invoice_number", result.InvoiceNumber),
		zap.String("amount", req.Amount.String()),
		zap.String("invoice_status", result.InvoiceStatus.String()),
	)

	return result, nil
}

// recordOnce performs one transactional attempt at recording the payment
func (s *PaymentService) recordOnce(ctx context.Context, req RecordPaymentRequest, customerID uuid.UUID, customerName string) (*RecordPaymentResult, error) {
	var result *RecordPaymentResult

	err := s.tx.Do(ctx, func(txCtx context.Context) error {
		number, err := s.numbers.NextNumber(txCtx, req.CompanyID, billing.DocTypePayment)
		if err != nil {
			return fmt.Errorf("failed to generate payment number: %w", err)
		}

		amount := valueobject.NewMoneyKES(req.Amount)
		payment, err := billing.NewPayment(
			req.CompanyID, number, customerID, customerName,
			amount, req.Method, req.PaymentDate, req.Reference, req.Notes,
		)
		if err != nil {
			return err
		}

		// Reload inside the transaction so the optimistic lock covers the
		// full read-modify-write.
		invoice, err := s.invoices.FindByID(txCtx, req.CompanyID, req.InvoiceID)
		if err != nil {
			return fmt.Errorf("failed to load invoice: %w", err)
		}
		if invoice == nil {
			return shared.NewDomainError("NOT_FOUND", "Invoice not found")
		}

		allocation, err := payment.AllocateTo(invoice.ID, amount, req.PaymentDate)
		if err != nil {
			return err
		}
		if err := invoice.RecordPayment(amount); err != nil {
			return err
		}

		if err := s.payments.Save(txCtx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		if err := s.payments.SaveAllocation(txCtx, allocation); err != nil {
			return fmt.Errorf("failed to save allocation: %w", err)
		}
		if err := s.invoices.SaveWithLock(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}

		result = &RecordPaymentResult{
			PaymentID:     payment.ID,
			PaymentNumber: payment.PaymentNumber,
			AllocationID:  allocation.ID,
			InvoiceID:     invoice.ID,
			InvoiceNumber: invoice.InvoiceNumber,
			InvoiceStatus: invoice.Status,
			PaidAmount:    invoice.PaidAmount,
			BalanceDue:    invoice.BalanceDue,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// claimIdempotencyKey atomically claims the request key, rejecting replays
func (s *PaymentService) claimIdempotencyKey(ctx context.Context, key string) error {
	if key == "" || s.idempotency == nil {
		return nil
	}

	ttl := s.cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	claimed, err := s.idempotency.MarkProcessed(ctx, key, ttl)
	if err != nil {
		return fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if !claimed {
		return shared.NewDomainError("DUPLICATE_REQUEST", "A payment with this idempotency key was already recorded")
	}
	return nil
}

// GetPayment returns a payment with its allocations
func (s *PaymentService) GetPayment(ctx context.Context, companyID, paymentID uuid.UUID) (*billing.Payment, []billing.PaymentAllocation, error) {
	payment, err := s.payments.FindByID(ctx, companyID, paymentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, nil, shared.NewDomainError("NOT_FOUND", "Payment not found")
	}

	allocations, err := s.payments.FindAllocationsByPayment(ctx, companyID, paymentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load allocations: %w", err)
	}
	return payment, allocations, nil
}

// ListPayments returns a page of payments for a company
func (s *PaymentService) ListPayments(ctx context.Context, companyID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, int64, error) {
	return s.payments.FindAll(ctx, companyID, filter)
}
