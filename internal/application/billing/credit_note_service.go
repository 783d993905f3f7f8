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

// CreditNoteService issues credit notes and applies their balance to invoices
type CreditNoteService struct {
	creditNotes billing.CreditNoteRepository
	invoices    billing.InvoiceRepository
	numbers     billing.DocumentNumberGenerator
	tx          shared.TransactionManager
	cfg         Config
	logger      *zap.Logger
}

// NewCreditNoteService creates a new CreditNoteService
func NewCreditNoteService(
	creditNotes billing.CreditNoteRepository,
	invoices billing.InvoiceRepository,
	numbers billing.DocumentNumberGenerator,
	tx shared.TransactionManager,
	cfg Config,
	logger *zap.Logger,
) *CreditNoteService {
	return &CreditNoteService{
		creditNotes: creditNotes,
		invoices:    invoices,
		numbers:     numbers,
		tx:          tx,
		cfg:         cfg,
		logger:      logger,
	}
}

// CreateCreditNoteRequest is a request to issue a credit note
type CreateCreditNoteRequest struct {
	CompanyID    uuid.UUID
	CustomerID   uuid.UUID
	CustomerName string
	InvoiceID    *uuid.UUID
	TotalAmount  decimal.Decimal
	IssueDate    time.Time
	Reason       string
}

// CreateCreditNote issues a new draft credit note with a generated number
func (s *CreditNoteService) CreateCreditNote(ctx context.Context, req CreateCreditNoteRequest) (*billing.CreditNote, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit_note", "create")
	defer span.End()

	var created *billing.CreditNote
	var err error
	for attempt := 1; ; attempt++ {
		created, err = s.createOnce(ctx, req)
		if err == nil {
			break
		}
		if !persistence.IsUniqueViolation(err) || attempt >= s.cfg.retryAttempts() {
			telemetry.RecordError(span, err)
			return nil, err
		}
		s.logger.Warn("credit note number collision, retrying with recomputed sequence",
			zap.String("company_id", req.CompanyID.String()),
			zap.Int("attempt", attempt),
		)
	}

	s.logger.Info("credit note created",
		zap.String("credit_note_number", created.CreditNoteNumber),
		zap.String("amount", req.TotalAmount.String()),
	)
	return created, nil
}

func (s *CreditNoteService) createOnce(ctx context.Context, req CreateCreditNoteRequest) (*billing.CreditNote, error) {
	var created *billing.CreditNote

	err := s.tx.Do(ctx, func(txCtx context.Context) error {
		number, err := s.numbers.NextNumber(txCtx, req.CompanyID, billing.DocTypeCreditNote)
		if err != nil {
			return fmt.Errorf("failed to generate credit note number: %w", err)
		}

		cn, err := billing.NewCreditNote(
			req.CompanyID, number, req.CustomerID, req.CustomerName,
			req.InvoiceID, valueobject.NewMoneyKES(req.TotalAmount), req.IssueDate, req.Reason,
		)
		if err != nil {
			return err
		}

		if err := s.creditNotes.Save(txCtx, cn); err != nil {
			return fmt.Errorf("failed to save credit note: %w", err)
		}
		created = cn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ApplyCreditNoteRequest is a request to apply credit note balance to an invoice
type ApplyCreditNoteRequest struct {
	CompanyID    uuid.UUID
	CreditNoteID uuid.UUID
	InvoiceID    uuid.UUID
	Amount       decimal.Decimal
	Notes        string
}

// ApplyCreditNoteResult reports both sides of a credit application
type ApplyCreditNoteResult struct {
	CreditNoteID      uuid.UUID                `json:"credit_note_id"`
	CreditNoteNumber  string                   `json:"credit_note_number"`
	CreditNoteStatus  billing.CreditNoteStatus `json:"credit_note_status"`
	CreditNoteBalance decimal.Decimal          `json:"credit_note_balance"`
	AllocationID      uuid.UUID                `json:"allocation_id"`
	AllocatedAmount   decimal.Decimal          `json:"allocated_amount"`
	InvoiceID         uuid.UUID                `json:"invoice_id"`
	InvoiceNumber     string                   `json:"invoice_number"`
	InvoiceStatus     billing.InvoiceStatus    `json:"invoice_status"`
	InvoicePaidAmount decimal.Decimal          `json:"invoice_paid_amount"`
	InvoiceBalanceDue decimal.Decimal          `json:"invoice_balance_due"`
}

// ApplyCreditNote applies part of a credit note's balance to an invoice.
//
// Checks run in a fixed order before anything mutates: the credit note must
// exist, the invoice must exist, the amount must be positive, the credit
// note must hold enough balance, and the invoice balance due must cover the
// amount. Credit can never overpay an invoice.
//
// Applying the same credit note to the same invoice again accumulates into
// the existing allocation rather than adding a second one.
func (s *CreditNoteService) ApplyCreditNote(ctx context.Context, req ApplyCreditNoteRequest) (*ApplyCreditNoteResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit_note", "apply")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrCompanyID, req.CompanyID.String(),
		telemetry.SpanAttrCreditNoteID, req.CreditNoteID.String(),
		telemetry.SpanAttrInvoiceID, req.InvoiceID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if err := s.validateApplication(ctx, req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var result *ApplyCreditNoteResult
	err := s.tx.Do(ctx, func(txCtx context.Context) error {
		cn, err := s.creditNotes.FindByID(txCtx, req.CompanyID, req.CreditNoteID)
		if err != nil {
			return fmt.Errorf("failed to load credit note: %w", err)
		}
		if cn == nil {
			return shared.NewDomainError("NOT_FOUND", "Credit note not found")
		}

		invoice, err := s.invoices.FindByID(txCtx, req.CompanyID, req.InvoiceID)
		if err != nil {
			return fmt.Errorf("failed to load invoice: %w", err)
		}
		if invoice == nil {
			return shared.NewDomainError("NOT_FOUND", "Invoice not found")
		}

		amount := valueobject.NewMoneyKES(req.Amount)
		if err := cn.ApplyToInvoice(invoice.ID, amount, req.Notes); err != nil {
			return err
		}
		if err := invoice.ApplyCredit(amount); err != nil {
			return err
		}

		if err := s.creditNotes.SaveWithLock(txCtx, cn); err != nil {
			return fmt.Errorf("failed to save credit note: %w", err)
		}
		if err := s.invoices.SaveWithLock(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}

		allocation := cn.AllocationFor(invoice.ID)
		result = &ApplyCreditNoteResult{
			CreditNoteID:      cn.ID,
			CreditNoteNumber:  cn.CreditNoteNumber,
			CreditNoteStatus:  cn.Status,
			CreditNoteBalance: cn.Balance,
			AllocationID:      allocation.ID,
			AllocatedAmount:   allocation.Amount,
			InvoiceID:         invoice.ID,
			InvoiceNumber:     invoice.InvoiceNumber,
			InvoiceStatus:     invoice.Status,
			InvoicePaidAmount: invoice.PaidAmount,
			InvoiceBalanceDue: invoice.BalanceDue,
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("credit note applied",
		zap.String("credit_note_number", result.CreditNoteNumber),
		zap.String("invoice_number", result.InvoiceNumber),
		zap.String("amount", req.Amount.String()),
		zap.String("credit_note_status", result.CreditNoteStatus.String()),
		zap.String("invoice_status", result.InvoiceStatus.String()),
	)
	return result, nil
}

// validateApplication runs the ordered pre-mutation checks
func (s *CreditNoteService) validateApplication(ctx context.Context, req ApplyCreditNoteRequest) error {
	cn, err := s.creditNotes.FindByID(ctx, req.CompanyID, req.CreditNoteID)
	if err != nil {
		return fmt.Errorf("failed to load credit note: %w", err)
	}
	if cn == nil {
		return shared.NewDomainError("NOT_FOUND", "Credit note not found")
	}

	invoice, err := s.invoices.FindByID(ctx, req.CompanyID, req.InvoiceID)
	if err != nil {
		return fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}

	if !req.Amount.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Applied amount must be positive")
	}
	if req.Amount.GreaterThan(cn.Balance) {
		return shared.NewDomainError("INSUFFICIENT_CREDIT",
			fmt.Sprintf("Applied amount %s exceeds credit note balance %s", req.Amount.StringFixed(2), cn.Balance.StringFixed(2)))
	}
	if req.Amount.GreaterThan(invoice.BalanceDue) {
		return shared.NewDomainError("EXCEEDS_INVOICE_BALANCE",
			fmt.Sprintf("Applied amount %s exceeds invoice balance due %s", req.Amount.StringFixed(2), invoice.BalanceDue.StringFixed(2)))
	}
	return nil
}

// GetCreditNote returns a credit note by ID
func (s *CreditNoteService) GetCreditNote(ctx context.Context, companyID, creditNoteID uuid.UUID) (*billing.CreditNote, error) {
	cn, err := s.creditNotes.FindByID(ctx, companyID, creditNoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credit note: %w", err)
	}
	if cn == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Credit note not found")
	}
	return cn, nil
}

// ListCreditNotes returns a page of credit notes for a company
func (s *CreditNoteService) ListCreditNotes(ctx context.Context, companyID uuid.UUID, filter billing.CreditNoteFilter) ([]billing.CreditNote, int64, error) {
	return s.creditNotes.FindAll(ctx, companyID, filter)
}

// CancelCreditNote cancels an unapplied credit note
func (s *CreditNoteService) CancelCreditNote(ctx context.Context, companyID, creditNoteID uuid.UUID, reason string) (*billing.CreditNote, error) {
	cn, err := s.creditNotes.FindByID(ctx, companyID, creditNoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credit note: %w", err)
	}
	if cn == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Credit note not found")
	}

	if err := cn.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.creditNotes.SaveWithLock(ctx, cn); err != nil {
		return nil, fmt.Errorf("failed to save credit note: %w", err)
	}
	return cn, nil
}
