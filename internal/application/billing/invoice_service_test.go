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

func newInvoiceServiceForTest(invoices *MockInvoiceRepository, numbers *MockNumberGenerator) *InvoiceService {
	return NewInvoiceService(
		invoices, numbers,
		shared.NopTransactionManager{},
		Config{NumberRetryAttempts: 3},
		zap.NewNop(),
	)
}

func TestInvoiceService_CreateInvoice(t *testing.T) {
	companyID := uuid.New()

	invoices := new(MockInvoiceRepository)
	numbers := new(MockNumberGenerator)
	numbers.On("NextNumber", mock.Anything, companyID, billing.DocTypeInvoice).Return("BIO-INV-2026-0042", nil)
	invoices.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	svc := newInvoiceServiceForTest(invoices, numbers)

	due := time.Now().AddDate(0, 1, 0)
	inv, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		CompanyID:    companyID,
		CustomerID:   uuid.New(),
		CustomerName: "Tusker Distributors",
		TotalAmount:  decimal.NewFromInt(25000),
		IssueDate:    time.Now(),
		DueDate:      &due,
		Notes:        "net 30",
	})

	require.NoError(t, err)
	assert.Equal(t, "BIO-INV-2026-0042", inv.InvoiceNumber)
	assert.Equal(t, billing.InvoiceStatusDraft, inv.Status)
	assert.True(t, inv.BalanceDue.Equal(decimal.NewFromInt(25000)))
	assert.Equal(t, "net 30", inv.Notes)
	invoices.AssertExpectations(t)
}

func TestInvoiceService_CreateInvoice_RetriesOnNumberCollision(t *testing.T) {
	companyID := uuid.New()

	invoices := new(MockInvoiceRepository)
	numbers := new(MockNumberGenerator)
	numbers.On("NextNumber", mock.Anything, companyID, billing.DocTypeInvoice).Return("BIO-INV-2026-0042", nil).Once()
	numbers.On("NextNumber", mock.Anything, companyID, billing.DocTypeInvoice).Return("BIO-INV-2026-0043", nil).Once()
	invoices.On("Save", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey).Once()
	invoices.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	svc := newInvoiceServiceForTest(invoices, numbers)

	inv, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		CompanyID:    companyID,
		CustomerID:   uuid.New(),
		CustomerName: "Tusker Distributors",
		TotalAmount:  decimal.NewFromInt(100),
		IssueDate:    time.Now(),
	})

	require.NoError(t, err)
	assert.Equal(t, "BIO-INV-2026-0043", inv.InvoiceNumber)
}

func TestInvoiceService_CreateInvoice_RejectsNonPositiveTotal(t *testing.T) {
	companyID := uuid.New()

	numbers := new(MockNumberGenerator)
	numbers.On("NextNumber", mock.Anything, companyID, billing.DocTypeInvoice).Return("BIO-INV-2026-0044", nil)

	svc := newInvoiceServiceForTest(new(MockInvoiceRepository), numbers)

	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		CompanyID:    companyID,
		CustomerID:   uuid.New(),
		CustomerName: "Tusker Distributors",
		TotalAmount:  decimal.Zero,
		IssueDate:    time.Now(),
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
}

func TestInvoiceService_SendInvoice(t *testing.T) {
	companyID := uuid.New()
	inv, err := billing.NewInvoice(
		companyID, "BIO-INV-2026-0050", uuid.New(), "Tusker Distributors",
		valueobject.NewMoneyKESFromFloat(500), time.Now(), nil,
	)
	require.NoError(t, err)

	invoices := new(MockInvoiceRepository)
	invoices.On("FindByID", mock.Anything, companyID, inv.ID).Return(inv, nil)
	invoices.On("SaveWithLock", mock.Anything, inv).Return(nil)

	svc := newInvoiceServiceForTest(invoices, new(MockNumberGenerator))

	sent, err := svc.SendInvoice(context.Background(), companyID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusSent, sent.Status)
}

func TestInvoiceService_CancelInvoice_RejectedAfterPayment(t *testing.T) {
	companyID := uuid.New()
	inv := newSentInvoice(t, companyID, 1000)
	require.NoError(t, inv.RecordPayment(valueobject.NewMoneyKESFromFloat(100)))

	invoices := new(MockInvoiceRepository)
	invoices.On("FindByID", mock.Anything, companyID, inv.ID).Return(inv, nil)

	svc := newInvoiceServiceForTest(invoices, new(MockNumberGenerator))

	_, err := svc.CancelInvoice(context.Background(), companyID, inv.ID, "customer changed order")

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "HAS_PAYMENTS", domainErr.Code)
	invoices.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestInvoiceService_GetInvoice_NotFound(t *testing.T) {
	companyID := uuid.New()

	invoices := new(MockInvoiceRepository)
	invoices.On("FindByID", mock.Anything, companyID, mock.Anything).Return(nil, nil)

	svc := newInvoiceServiceForTest(invoices, new(MockNumberGenerator))

	_, err := svc.GetInvoice(context.Background(), companyID, uuid.New())

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestInvoiceService_MarkOverdueInvoices(t *testing.T) {
	companyID := uuid.New()
	asOf := time.Now()

	pastDue := asOf.AddDate(0, 0, -10)
	overdue := newSentInvoice(t, companyID, 1000)
	overdue.DueDate = &pastDue

	futureDue := asOf.AddDate(0, 0, 10)
	current := newSentInvoice(t, companyID, 500)
	current.DueDate = &futureDue

	invoices := new(MockInvoiceRepository)
	sentStatus := billing.InvoiceStatusSent
	partialStatus := billing.InvoiceStatusPartial
	invoices.On("FindAll", mock.Anything, companyID, mock.MatchedBy(func(f billing.InvoiceFilter) bool {
		return f.Status != nil && *f.Status == sentStatus
	})).Return([]billing.Invoice{*overdue, *current}, int64(2), nil)
	invoices.On("FindAll", mock.Anything, companyID, mock.MatchedBy(func(f billing.InvoiceFilter) bool {
		return f.Status != nil && *f.Status == partialStatus
	})).Return([]billing.Invoice{}, int64(0), nil)
	invoices.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(inv *billing.Invoice) bool {
		return inv.ID == overdue.ID && inv.Status == billing.InvoiceStatusOverdue
	})).Return(nil)

	svc := newInvoiceServiceForTest(invoices, new(MockNumberGenerator))

	result, err := svc.MarkOverdueInvoices(context.Background(), companyID, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.MarkedCount)
	assert.Equal(t, []uuid.UUID{overdue.ID}, result.InvoiceIDs)
	invoices.AssertNumberOfCalls(t, "SaveWithLock", 1)
}
