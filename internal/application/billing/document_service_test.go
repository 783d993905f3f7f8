package billing

import (
	"context"
	"testing"
	"time"

	"github.com/bizbooks/backend/internal/domain/billing"
	"github.com/bizbooks/backend/internal/domain/shared"
	"github.com/bizbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newDocumentServiceForTest(
	quotations *MockQuotationRepository,
	proformas *MockProformaRepository,
	purchaseOrders *MockPurchaseOrderRepository,
	numbers *MockNumberGenerator,
) *DocumentService {
	return NewDocumentService(
		quotations, proformas, purchaseOrders, numbers,
		shared.NopTransactionManager{},
		Config{NumberRetryAttempts: 3},
		zap.NewNop(),
	)
}

func TestDocumentService_CreateQuotation(t *testing.T) {
	companyID := uuid.New()

	quotations := new(MockQuotationRepository)
	numbers := new(MockNumberGenerator)
	numbers.On("NextNumber", mock.Anything, companyID, billing.DocTypeQuotation).Return("BIO-QUO-2026-0003", nil)
	quotations.On("Save", mock.Anything, mock.AnythingOfType("*billing.Quotation")).Return(nil)

	svc := newDocumentServiceForTest(quotations, new(MockProformaRepository), new(MockPurchaseOrderRepository), numbers)

	validUntil := time.Now().AddDate(0, 0, 14)
	q, err := svc.CreateQuotation(context.Background(), CreateDocumentRequest{
		CompanyID:   companyID,
		PartyID:     uuid.New(),
		PartyName:   "Chandarana Foodplus",
		TotalAmount: decimal.NewFromInt(18500),
		IssueDate:   time.Now(),
		ValidUntil:  &validUntil,
	})

	require.NoError(t, err)
	assert.Equal(t, "BIO-QUO-2026-0003", q.QuotationNumber)
	assert.Equal(t, billing.QuotationStatusDraft, q.Status)
	quotations.AssertExpectations(t)
}

func TestDocumentService_CreateProforma_UsesScanSeries(t *testing.T) {
	companyID := uuid.New()

	proformas := new(MockProformaRepository)
	numbers := new(MockNumberGenerator)
	numbers.On("NextNumber", mock.Anything, companyID, billing.DocTypeProforma).Return("PF-2026-0008", nil)
	proformas.On("Save", mock.Anything, mock.AnythingOfType("*billing.ProformaInvoice")).Return(nil)

	svc := newDocumentServiceForTest(new(MockQuotationRepository), proformas, new(MockPurchaseOrderRepository), numbers)

	p, err := svc.CreateProforma(context.Background(), CreateDocumentRequest{
		CompanyID:   companyID,
		PartyID:     uuid.New(),
		PartyName:   "Chandarana Foodplus",
		TotalAmount: decimal.NewFromInt(9000),
		IssueDate:   time.Now(),
	})

	require.NoError(t, err)
	assert.Equal(t, "PF-2026-0008", p.ProformaNumber)
	numbers.AssertCalled(t, "NextNumber", mock.Anything, companyID, billing.DocTypeProforma)
}

func TestDocumentService_CreatePurchaseOrder_RetriesOnNumberCollision(t *testing.T) {
	companyID := uuid.New()

	purchaseOrders := new(MockPurchaseOrderRepository)
	numbers := new(MockNumberGenerator)
	numbers.On("NextNumber", mock.Anything, companyID, billing.DocTypePurchaseOrder).Return("BIO-LPO-2026-0001", nil).Once()
	numbers.On("NextNumber", mock.Anything, companyID, billing.DocTypePurchaseOrder).Return("BIO-LPO-2026-0002", nil).Once()
	purchaseOrders.On("Save", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey).Once()
	purchaseOrders.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	svc := newDocumentServiceForTest(new(MockQuotationRepository), new(MockProformaRepository), purchaseOrders, numbers)

	po, err := svc.CreatePurchaseOrder(context.Background(), CreateDocumentRequest{
		CompanyID:   companyID,
		PartyID:     uuid.New(),
		PartyName:   "Kenchic Suppliers",
		TotalAmount: decimal.NewFromInt(42000),
		IssueDate:   time.Now(),
	})

	require.NoError(t, err)
	assert.Equal(t, "BIO-LPO-2026-0002", po.OrderNumber)
	purchaseOrders.AssertNumberOfCalls(t, "Save", 2)
}

func TestDocumentService_AcceptQuotation_RequiresSent(t *testing.T) {
	companyID := uuid.New()
	q, err := billing.NewQuotation(
		companyID, "BIO-QUO-2026-0004", uuid.New(), "Chandarana Foodplus",
		valueobject.NewMoneyKESFromFloat(100), time.Now(), nil,
	)
	require.NoError(t, err)

	quotations := new(MockQuotationRepository)
	quotations.On("FindByID", mock.Anything, companyID, q.ID).Return(q, nil)

	svc := newDocumentServiceForTest(quotations, new(MockProformaRepository), new(MockPurchaseOrderRepository), new(MockNumberGenerator))

	_, err = svc.AcceptQuotation(context.Background(), companyID, q.ID)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestDocumentService_ConvertProforma(t *testing.T) {
	companyID := uuid.New()
	p, err := billing.NewProformaInvoice(
		companyID, "PF-2026-0009", uuid.New(), "Chandarana Foodplus",
		valueobject.NewMoneyKESFromFloat(9000), time.Now(),
	)
	require.NoError(t, err)

	proformas := new(MockProformaRepository)
	proformas.On("FindByID", mock.Anything, companyID, p.ID).Return(p, nil)
	proformas.On("Save", mock.Anything, p).Return(nil)

	svc := newDocumentServiceForTest(new(MockQuotationRepository), proformas, new(MockPurchaseOrderRepository), new(MockNumberGenerator))

	converted, err := svc.ConvertProforma(context.Background(), companyID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.ProformaStatusConverted, converted.Status)
}

func TestDocumentService_GetPurchaseOrder_NotFound(t *testing.T) {
	companyID := uuid.New()

	purchaseOrders := new(MockPurchaseOrderRepository)
	purchaseOrders.On("FindByID", mock.Anything, companyID, mock.Anything).Return(nil, nil)

	svc := newDocumentServiceForTest(new(MockQuotationRepository), new(MockProformaRepository), purchaseOrders, new(MockNumberGenerator))

	_, err := svc.GetPurchaseOrder(context.Background(), companyID, uuid.New())

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}
