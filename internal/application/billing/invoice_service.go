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

// InvoiceService manages the invoice lifecycle
type InvoiceService struct {
	invoices billing.InvoiceRepository
	numbers  billing.DocumentNumberGenerator
	tx       shared.TransactionManager
	cfg      Config
	logger   *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoices billing.InvoiceRepository,
	numbers billing.DocumentNumberGenerator,
	tx shared.TransactionManager,
	cfg Config,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoices: invoices,
		numbers:  numbers,
		tx:       tx,
		cfg:      cfg,
		logger:   logger,
	}
}

// CreateInvoiceRequest is a request to issue a new invoice
type CreateInvoiceRequest struct {
	CompanyID    uuid.UUID
	CustomerID   uuid.UUID
	CustomerName string
	TotalAmount  decimal.Decimal
	IssueDate    time.Time
	DueDate      *time.Time
	Notes        string
}

// CreateInvoice issues a new draft invoice with a generated number
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()

	var created *billing.Invoice
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
		s.logger.Warn("invoice number collision, retrying with recomputed sequence",
			zap.String("company_id", req.CompanyID.String()),
			zap.Int("attempt", attempt),
		)
	}

	s.logger.Info("invoice created",
		zap.String("invoice_number", created.InvoiceNumber),
		zap.String("amount", req.TotalAmount.String()),
	)
	return created, nil
}

func (s *InvoiceService) createOnce(ctx context.Context, req CreateInvoiceRequest) (*billing.Invoice, error) {
	var created *billing.Invoice

	err := s.tx.Do(ctx, func(txCtx context.Context) error {
		number, err := s.numbers.NextNumber(txCtx, req.CompanyID, billing.DocTypeInvoice)
		if err != nil {
			return fmt.Errorf("failed to generate invoice number: %w", err)
		}

		inv, err := billing.NewInvoice(
			req.CompanyID, number, req.CustomerID, req.CustomerName,
			valueobject.NewMoneyKES(req.TotalAmount), req.IssueDate, req.DueDate,
		)
		if err != nil {
			return err
		}
		if req.Notes != "" {
			inv.Notes = req.Notes
		}

		if err := s.invoices.Save(txCtx, inv); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}
		created = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetInvoice returns an invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, companyID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	inv, err := s.invoices.FindByID(ctx, companyID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if inv == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	return inv, nil
}

// ListInvoices returns a page of invoices for a company
func (s *InvoiceService) ListInvoices(ctx context.Context, companyID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, int64, error) {
	return s.invoices.FindAll(ctx, companyID, filter)
}

// SendInvoice marks a draft invoice as sent
func (s *InvoiceService) SendInvoice(ctx context.Context, companyID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	inv, err := s.GetInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := inv.Send(); err != nil {
		return nil, err
	}
	if err := s.invoices.SaveWithLock(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}
	return inv, nil
}

// CancelInvoice cancels an invoice that has no recorded payments
func (s *InvoiceService) CancelInvoice(ctx context.Context, companyID, invoiceID uuid.UUID, reason string) (*billing.Invoice, error) {
	inv, err := s.GetInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := inv.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.invoices.SaveWithLock(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}
	return inv, nil
}

// MarkOverdueResult reports one overdue sweep
type MarkOverdueResult struct {
	MarkedCount int         `json:"marked_count"`
	InvoiceIDs  []uuid.UUID `json:"invoice_ids"`
}

// MarkOverdueInvoices flags every sent or partially paid invoice whose due
// date has passed as of the given time. Invoices that fail to save are
// skipped so one contended row does not abort the sweep.
func (s *InvoiceService) MarkOverdueInvoices(ctx context.Context, companyID uuid.UUID, asOf time.Time) (*MarkOverdueResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "mark_overdue")
	defer span.End()

	result := &MarkOverdueResult{}
	for _, status := range []billing.InvoiceStatus{billing.InvoiceStatusSent, billing.InvoiceStatusPartial} {
		status := status
		due, _, err := s.invoices.FindAll(ctx, companyID, billing.InvoiceFilter{
			Status:    &status,
			DueBefore: &asOf,
			PageSize:  100,
		})
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to list due invoices: %w", err)
		}

		for i := range due {
			inv := &due[i]
			if err := inv.MarkOverdue(asOf); err != nil {
				continue
			}
			if err := s.invoices.SaveWithLock(ctx, inv); err != nil {
				s.logger.Warn("failed to mark invoice overdue",
					zap.String("invoice_number", inv.InvoiceNumber),
					zap.Error(err),
				)
				continue
			}
			result.MarkedCount++
			result.InvoiceIDs = append(result.InvoiceIDs, inv.ID)
		}
	}

	s.logger.Info("overdue sweep completed",
		zap.String("company_id", companyID.String()),
		zap.Int("marked", result.MarkedCount),
	)
	return result, nil
}
