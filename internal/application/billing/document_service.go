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

// DocumentService manages quotations, proforma invoices, and purchase orders
type DocumentService struct {
	quotations     billing.QuotationRepository
	proformas      billing.ProformaRepository
	purchaseOrders billing.PurchaseOrderRepository
	numbers        billing.DocumentNumberGenerator
	tx             shared.TransactionManager
	cfg            Config
	logger         *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	quotations billing.QuotationRepository,
	proformas billing.ProformaRepository,
	purchaseOrders billing.PurchaseOrderRepository,
	numbers billing.DocumentNumberGenerator,
	tx shared.TransactionManager,
	cfg Config,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		quotations:     quotations,
		proformas:      proformas,
		purchaseOrders: purchaseOrders,
		numbers:        numbers,
		tx:             tx,
		cfg:            cfg,
		logger:         logger,
	}
}

// CreateDocumentRequest is a request to create a numbered document.
// ValidUntil only applies to quotations.
type CreateDocumentRequest struct {
	CompanyID   uuid.UUID
	PartyID     uuid.UUID
	PartyName   string
	TotalAmount decimal.Decimal
	IssueDate   time.Time
	ValidUntil  *time.Time
	Notes       string
}

// CreateQuotation issues a new draft quotation with a generated number
func (s *DocumentService) CreateQuotation(ctx context.Context, req CreateDocumentRequest) (*billing.Quotation, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "create_quotation")
	defer span.End()

	var created *billing.Quotation
	err := s.createWithRetry(ctx, req.CompanyID, "quotation", func(txCtx context.Context) error {
		number, err := s.numbers.NextNumber(txCtx, req.CompanyID, billing.DocTypeQuotation)
		if err != nil {
			return fmt.Errorf("failed to generate quotation number: %w", err)
		}
		q, err := billing.NewQuotation(
			req.CompanyID, number, req.PartyID, req.PartyName,
			valueobject.NewMoneyKES(req.TotalAmount), req.IssueDate, req.ValidUntil,
		)
		if err != nil {
			return err
		}
		q.Notes = req.Notes
		if err := s.quotations.Save(txCtx, q); err != nil {
			return fmt.Errorf("failed to save quotation: %w", err)
		}
		created = q
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("quotation created", zap.String("quotation_number", created.QuotationNumber))
	return created, nil
}

// CreateProforma issues a new draft proforma invoice with a generated number
func (s *DocumentService) CreateProforma(ctx context.Context, req CreateDocumentRequest) (*billing.ProformaInvoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "create_proforma")
	defer span.End()

	var created *billing.ProformaInvoice
	err := s.createWithRetry(ctx, req.CompanyID, "proforma", func(txCtx context.Context) error {
		number, err := s.numbers.NextNumber(txCtx, req.CompanyID, billing.DocTypeProforma)
		if err != nil {
			return fmt.Errorf("failed to generate proforma number: %w", err)
		}
		p, err := billing.NewProformaInvoice(
			req.CompanyID, number, req.PartyID, req.PartyName,
			valueobject.NewMoneyKES(req.TotalAmount), req.IssueDate,
		)
		if err != nil {
			return err
		}
		p.Notes = req.Notes
		if err := s.proformas.Save(txCtx, p); err != nil {
			return fmt.Errorf("failed to save proforma: %w", err)
		}
		created = p
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("proforma created", zap.String("proforma_number", created.ProformaNumber))
	return created, nil
}

// CreatePurchaseOrder issues a new draft purchase order with a generated number
func (s *DocumentService) CreatePurchaseOrder(ctx context.Context, req CreateDocumentRequest) (*billing.PurchaseOrder, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "create_purchase_order")
	defer span.End()

	var created *billing.PurchaseOrder
	err := s.createWithRetry(ctx, req.CompanyID, "purchase order", func(txCtx context.Context) error {
		number, err := s.numbers.NextNumber(txCtx, req.CompanyID, billing.DocTypePurchaseOrder)
		if err != nil {
			return fmt.Errorf("failed to generate purchase order number: %w", err)
		}
		po, err := billing.NewPurchaseOrder(
			req.CompanyID, number, req.PartyID, req.PartyName,
			valueobject.NewMoneyKES(req.TotalAmount), req.IssueDate,
		)
		if err != nil {
			return err
		}
		po.Notes = req.Notes
		if err := s.purchaseOrders.Save(txCtx, po); err != nil {
			return fmt.Errorf("failed to save purchase order: %w", err)
		}
		created = po
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("purchase order created", zap.String("order_number", created.OrderNumber))
	return created, nil
}

// createWithRetry runs one transactional create, retrying after a duplicate
// number so the sequence is recomputed against committed rows
func (s *DocumentService) createWithRetry(ctx context.Context, companyID uuid.UUID, kind string, create func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := s.tx.Do(ctx, create)
		if err == nil {
			return nil
		}
		if !persistence.IsUniqueViolation(err) || attempt >= s.cfg.retryAttempts() {
			return err
		}
		s.logger.Warn("document number collision, retrying with recomputed sequence",
			zap.String("document_kind", kind),
			zap.String("company_id", companyID.String()),
			zap.Int("attempt", attempt),
		)
	}
}

// GetQuotation returns a quotation by ID
func (s *DocumentService) GetQuotation(ctx context.Context, companyID, id uuid.UUID) (*billing.Quotation, error) {
	q, err := s.quotations.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotation: %w", err)
	}
	if q == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Quotation not found")
	}
	return q, nil
}

// ListQuotations returns a page of quotations for a company
func (s *DocumentService) ListQuotations(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]billing.Quotation, int64, error) {
	return s.quotations.FindAll(ctx, companyID, page, pageSize)
}

// AcceptQuotation marks a sent quotation as accepted by the customer
func (s *DocumentService) AcceptQuotation(ctx context.Context, companyID, id uuid.UUID) (*billing.Quotation, error) {
	q, err := s.GetQuotation(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := q.Accept(); err != nil {
		return nil, err
	}
	if err := s.quotations.Save(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to save quotation: %w", err)
	}
	return q, nil
}

// SendQuotation marks a draft quotation as sent
func (s *DocumentService) SendQuotation(ctx context.Context, companyID, id uuid.UUID) (*billing.Quotation, error) {
	q, err := s.GetQuotation(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := q.Send(); err != nil {
		return nil, err
	}
	if err := s.quotations.Save(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to save quotation: %w", err)
	}
	return q, nil
}

// GetProforma returns a proforma invoice by ID
func (s *DocumentService) GetProforma(ctx context.Context, companyID, id uuid.UUID) (*billing.ProformaInvoice, error) {
	p, err := s.proformas.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load proforma: %w", err)
	}
	if p == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Proforma invoice not found")
	}
	return p, nil
}

// ListProformas returns a page of proforma invoices for a company
func (s *DocumentService) ListProformas(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]billing.ProformaInvoice, int64, error) {
	return s.proformas.FindAll(ctx, companyID, page, pageSize)
}

// ConvertProforma records that a proforma became a real invoice
func (s *DocumentService) ConvertProforma(ctx context.Context, companyID, id uuid.UUID) (*billing.ProformaInvoice, error) {
	p, err := s.GetProforma(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := p.MarkConverted(); err != nil {
		return nil, err
	}
	if err := s.proformas.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save proforma: %w", err)
	}
	return p, nil
}

// GetPurchaseOrder returns a purchase order by ID
func (s *DocumentService) GetPurchaseOrder(ctx context.Context, companyID, id uuid.UUID) (*billing.PurchaseOrder, error) {
	po, err := s.purchaseOrders.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase order: %w", err)
	}
	if po == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Purchase order not found")
	}
	return po, nil
}

// ListPurchaseOrders returns a page of purchase orders for a company
func (s *DocumentService) ListPurchaseOrders(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]billing.PurchaseOrder, int64, error) {
	return s.purchaseOrders.FindAll(ctx, companyID, page, pageSize)
}

// IssuePurchaseOrder marks a draft purchase order as issued to the supplier
func (s *DocumentService) IssuePurchaseOrder(ctx context.Context, companyID, id uuid.UUID) (*billing.PurchaseOrder, error) {
	po, err := s.GetPurchaseOrder(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := po.Issue(); err != nil {
		return nil, err
	}
	if err := s.purchaseOrders.Save(ctx, po); err != nil {
		return nil, fmt.Errorf("failed to save purchase order: %w", err)
	}
	return po, nil
}
