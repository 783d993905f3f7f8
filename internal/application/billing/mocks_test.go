package billing

import (
	"context"
	"time"

	"github.com/bizbooks/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, companyID, id)
	if inv := args.Get(0); inv != nil {
		return inv.(*billing.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, companyID uuid.UUID, number string) (*billing.Invoice, error) {
	args := m.Called(ctx, companyID, number)
	if inv := args.Get(0); inv != nil {
		return inv.(*billing.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, int64, error) {
	args := m.Called(ctx, companyID, filter)
	if invs := args.Get(0); invs != nil {
		return invs.([]billing.Invoice), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, inv *billing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) CountForCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, companyID, id)
	if p := args.Get(0); p != nil {
		return p.(*billing.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, int64, error) {
	args := m.Called(ctx, companyID, filter)
	if ps := args.Get(0); ps != nil {
		return ps.([]billing.Payment), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *billing.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveAllocation(ctx context.Context, a *billing.PaymentAllocation) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindAllocationsByPayment(ctx context.Context, companyID, paymentID uuid.UUID) ([]billing.PaymentAllocation, error) {
	args := m.Called(ctx, companyID, paymentID)
	if as := args.Get(0); as != nil {
		return as.([]billing.PaymentAllocation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentRepository) FindAllocationsByInvoice(ctx context.Context, companyID, invoiceID uuid.UUID) ([]billing.PaymentAllocation, error) {
	args := m.Called(ctx, companyID, invoiceID)
	if as := args.Get(0); as != nil {
		return as.([]billing.PaymentAllocation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentRepository) CountForCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

type MockCreditNoteRepository struct {
	mock.Mock
}

func (m *MockCreditNoteRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*billing.CreditNote, error) {
	args := m.Called(ctx, companyID, id)
	if cn := args.Get(0); cn != nil {
		return cn.(*billing.CreditNote), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCreditNoteRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter billing.CreditNoteFilter) ([]billing.CreditNote, int64, error) {
	args := m.Called(ctx, companyID, filter)
	if cns := args.Get(0); cns != nil {
		return cns.([]billing.CreditNote), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

func (m *MockCreditNoteRepository) Save(ctx context.Context, cn *billing.CreditNote) error {
	args := m.Called(ctx, cn)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) SaveWithLock(ctx context.Context, cn *billing.CreditNote) error {
	args := m.Called(ctx, cn)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) CountForCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

type MockQuotationRepository struct {
	mock.Mock
}

func (m *MockQuotationRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*billing.Quotation, error) {
	args := m.Called(ctx, companyID, id)
	if q := args.Get(0); q != nil {
		return q.(*billing.Quotation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuotationRepository) FindAll(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]billing.Quotation, int64, error) {
	args := m.Called(ctx, companyID, page, pageSize)
	if qs := args.Get(0); qs != nil {
		return qs.([]billing.Quotation), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

func (m *MockQuotationRepository) Save(ctx context.Context, q *billing.Quotation) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQuotationRepository) CountForCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

type MockProformaRepository struct {
	mock.Mock
}

func (m *MockProformaRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*billing.ProformaInvoice, error) {
	args := m.Called(ctx, companyID, id)
	if p := args.Get(0); p != nil {
		return p.(*billing.ProformaInvoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProformaRepository) FindAll(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]billing.ProformaInvoice, int64, error) {
	args := m.Called(ctx, companyID, page, pageSize)
	if ps := args.Get(0); ps != nil {
		return ps.([]billing.ProformaInvoice), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

func (m *MockProformaRepository) Save(ctx context.Context, p *billing.ProformaInvoice) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProformaRepository) MaxNumberWithPrefix(ctx context.Context, companyID uuid.UUID, prefix string) (string, error) {
	args := m.Called(ctx, companyID, prefix)
	return args.String(0), args.Error(1)
}

type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*billing.PurchaseOrder, error) {
	args := m.Called(ctx, companyID, id)
	if po := args.Get(0); po != nil {
		return po.(*billing.PurchaseOrder), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]billing.PurchaseOrder, int64, error) {
	args := m.Called(ctx, companyID, page, pageSize)
	if pos := args.Get(0); pos != nil {
		return pos.([]billing.PurchaseOrder), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, po *billing.PurchaseOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) CountForCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

type MockNumberGenerator struct {
	mock.Mock
}

func (m *MockNumberGenerator) NextNumber(ctx context.Context, companyID uuid.UUID, docType billing.DocumentType) (string, error) {
	args := m.Called(ctx, companyID, docType)
	return args.String(0), args.Error(1)
}

// stubIdempotencyStore remembers claimed keys in memory
type stubIdempotencyStore struct {
	claimed map[string]bool
	err     error
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{claimed: make(map[string]bool)}
}

func (s *stubIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.claimed[key] {
		return false, nil
	}
	s.claimed[key] = true
	return true, nil
}

func (s *stubIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	return s.claimed[key], s.err
}

func (s *stubIdempotencyStore) Close() error { return nil }
