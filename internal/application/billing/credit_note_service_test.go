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

func newSentCreditNote(t *testing.T, companyID uuid.UUID, total float64) *billing.CreditNote {
	t.Helper()
	cn, err := billing.NewCreditNote(
		companyID, "BIO-CN-2026-0001", uuid.New(), "Nakumatt Holdings",
		nil, valueobject.NewMoneyKESFromFloat(total), time.Now(), "damaged goods returned",
	)
	require.NoError(t, err)
	require.NoError(t, cn.Send())
	return cn
}

func newCreditNoteServiceForTest(creditNotes *MockCreditNoteRepository, invoices *MockInvoiceRepository, numbers *MockNumberGenerator) *CreditNoteService {
	return NewCreditNoteService(
		creditNotes, invoices, numbers,
		shared.NopTransactionManager{},
		Config{NumberRetryAttempts: 3},
		zap.NewNop(),
	)
}

func TestCreditNoteService_ApplyCreditNote_PartialApplication(t *testing.T) {
	companyID := uuid.New()
	cn := newSentCreditNote(t, companyID, 300)
	invoice := newSentInvoice(t, companyID, 1000)

	creditNotes := new(MockCreditNoteRepository)
	invoices := new(MockInvoiceRepository)

	creditNotes.On("FindByID", mock.Anything, companyID, cn.ID).Return(cn, nil)
	invoices.On("FindByID", mock.Anything, companyID, invoice.ID).Return(invoice, nil)
	creditNotes.On("SaveWithLock", mock.Anything, cn).Return(nil)
	invoices.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	svc := newCreditNoteServiceForTest(creditNotes, invoices, new(MockNumberGenerator))

	result, err := svc.ApplyCreditNote(context.Background(), ApplyCreditNoteRequest{
		CompanyID:    companyID,
		CreditNoteID: cn.ID,
		InvoiceID:    invoice.ID,
		Amount:       decimal.NewFromInt(200),
	})

	require.NoError(t, err)
	assert.Equal(t, billing.CreditNoteStatusSent, result.CreditNoteStatus)
	assert.True(t, result.CreditNoteBalance.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, billing.InvoiceStatusPartial, result.InvoiceStatus)
	assert.True(t, result.InvoiceBalanceDue.Equal(decimal.NewFromInt(800)))
	assert.True(t, result.AllocatedAmount.Equal(decimal.NewFromInt(200)))
	creditNotes.AssertExpectations(t)
	invoices.AssertExpectations(t)
}

func TestCreditNoteService_ApplyCreditNote_ReapplyAccumulatesAllocation(t *testing.T) {
	companyID := uuid.New()
	cn := newSentCreditNote(t, companyID, 300)
	invoice := newSentInvoice(t, companyID, 1000)

	creditNotes := new(MockCreditNoteRepository)
	invoices := new(MockInvoiceRepository)

	creditNotes.On("FindByID", mock.Anything, companyID, cn.ID).Return(cn, nil)
	invoices.On("FindByID", mock.Anything, companyID, invoice.ID).Return(invoice, nil)
	creditNotes.On("SaveWithLock", mock.Anything, cn).Return(nil)
	invoices.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	svc := newCreditNoteServiceForTest(creditNotes, invoices, new(MockNumberGenerator))

	first, err := svc.ApplyCreditNote(context.Background(), ApplyCreditNoteRequest{
		CompanyID:    companyID,
		CreditNoteID: cn.ID,
		InvoiceID:    invoice.ID,
		Amount:       decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	second, err := svc.ApplyCreditNote(context.Background(), ApplyCreditNoteRequest{
		CompanyID:    companyID,
		CreditNoteID: cn.ID,
		InvoiceID:    invoice.ID,
		Amount:       decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	// same allocation, accumulated amount, note fully consumed
	assert.Equal(t, first.AllocationID, second.AllocationID)
	assert.True(t, second.AllocatedAmount.Equal(decimal.NewFromInt(300)))
	assert.Len(t, cn.Allocations, 1)
	assert.Equal(t, billing.CreditNoteStatusApplied, second.CreditNoteStatus)
	assert.True(t, second.CreditNoteBalance.IsZero())
	assert.NotNil(t, cn.AppliedAt)
	assert.True(t, second.InvoiceBalanceDue.Equal(decimal.NewFromInt(700)))
}

func TestCreditNoteService_ApplyCreditNote_CreditNoteNotFoundCheckedFirst(t *testing.T) {
	companyID := uuid.New()

	creditNotes := new(MockCreditNoteRepository)
	invoices := new(MockInvoiceRepository)
	creditNotes.On("FindByID", mock.Anything, companyID, mock.Anything).Return(nil, nil)

	svc := newCreditNoteServiceForTest(creditNotes, invoices, new(MockNumberGenerator))

	// amount is invalid too; the missing credit note must win
	_, err := svc.ApplyCreditNote(context.Background(), ApplyCreditNoteRequest{
		CompanyID:    companyID,
		CreditNoteID: uuid.New(),
		InvoiceID:    uuid.New(),
		Amount:       decimal.NewFromInt(-5),
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	assert.Contains(t, domainErr.Message, "Credit note")
	invoices.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestCreditNoteService_ApplyCreditNote_InvoiceNotFound(t *testing.T) {
	companyID := uuid.New()
	cn := newSentCreditNote(t, companyID, 300)

	creditNotes := new(MockCreditNoteRepository)
	invoices := new(MockInvoiceRepository)
	creditNotes.On("FindByID", mock.Anything, companyID, cn.ID).Return(cn, nil)
	invoices.On("FindByID", mock.Anything, companyID, mock.Anything).Return(nil, nil)

	svc := newCreditNoteServiceForTest(creditNotes, invoices, new(MockNumberGenerator))

	_, err := svc.ApplyCreditNote(context.Background(), ApplyCreditNoteRequest{
		CompanyID:    companyID,
		CreditNoteID: cn.ID,
		InvoiceID:    uuid.New(),
		Amount:       decimal.NewFromInt(100),
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	assert.Contains(t, domainErr.Message, "Invoice")
}

func TestCreditNoteService_ApplyCreditNote_ValidationOrderAndNoMutation(t *testing.T) {
	companyID := uuid.New()

	cases := []struct {
		name     string
		amount   decimal.Decimal
		wantCode string
	}{
		{"zero amount", decimal.Zero, "INVALID_AMOUNT"},
		{"negative amount", decimal.NewFromInt(-10), "INVALID_AMOUNT"},
		{"more than credit balance", decimal.NewFromInt(301), "INSUFFICIENT_CREDIT"},
		{"more than invoice balance due", decimal.NewFromInt(250), "EXCEEDS_INVOICE_BALANCE"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cn := newSentCreditNote(t, companyID, 300)
			invoice := newSentInvoice(t, companyID, 1000)
			require.NoError(t, invoice.RecordPayment(valueobject.NewMoneyKESFromFloat(800)))

			creditNotes := new(MockCreditNoteRepository)
			invoices := new(MockInvoiceRepository)
			creditNotes.On("FindByID", mock.Anything, companyID, cn.ID).Return(cn, nil)
			invoices.On("FindByID", mock.Anything, companyID, invoice.ID).Return(invoice, nil)

			svc := newCreditNoteServiceForTest(creditNotes, invoices, new(MockNumberGenerator))

			_, err := svc.ApplyCreditNote(context.Background(), ApplyCreditNoteRequest{
				CompanyID:    companyID,
				CreditNoteID: cn.ID,
				InvoiceID:    invoice.ID,
				Amount:       tc.amount,
			})

			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tc.wantCode, domainErr.Code)

			// rejected application leaves both sides untouched
			assert.True(t, cn.AppliedAmount.IsZero())
			assert.Empty(t, cn.Allocations)
			assert.True(t, invoice.BalanceDue.Equal(decimal.NewFromInt(200)))
			creditNotes.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
			invoices.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		})
	}
}

func TestCreditNoteService_ApplyCreditNote_ExactBalanceSettlesInvoice(t *testing.T) {
	companyID := uuid.New()
	cn := newSentCreditNote(t, companyID, 500)
	invoice := newSentInvoice(t, companyID, 1000)
	require.NoError(t, invoice.RecordPayment(valueobject.NewMoneyKESFromFloat(800)))

	creditNotes := new(MockCreditNoteRepository)
	invoices := new(MockInvoiceRepository)
	creditNotes.On("FindByID", mock.Anything, companyID, cn.ID).Return(cn, nil)
	invoices.On("FindByID", mock.Anything, companyID, invoice.ID).Return(invoice, nil)
	creditNotes.On("SaveWithLock", mock.Anything, cn).Return(nil)
	invoices.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	svc := newCreditNoteServiceForTest(creditNotes, invoices, new(MockNumberGenerator))

	result, err := svc.ApplyCreditNote(context.Background(), ApplyCreditNoteRequest{
		CompanyID:    companyID,
		CreditNoteID: cn.ID,
		InvoiceID:    invoice.ID,
		Amount:       decimal.NewFromInt(200),
	})

	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPaid, result.InvoiceStatus)
	assert.True(t, result.InvoiceBalanceDue.IsZero())
	assert.Equal(t, billing.CreditNoteStatusSent, result.CreditNoteStatus)
	assert.True(t, result.CreditNoteBalance.Equal(decimal.NewFromInt(300)))
}

func TestCreditNoteService_CreateCreditNote_RetriesOnNumberCollision(t *testing.T) {
	companyID := uuid.New()

	creditNotes := new(MockCreditNoteRepository)
	numbers := new(MockNumberGenerator)

	numbers.On("NextNumber", mock.Anything, companyID, billing.DocTypeCreditNote).Return("BIO-CN-2026-0002", nil).Once()
	numbers.On("NextNumber", mock.Anything, companyID, billing.DocTypeCreditNote).Return("BIO-CN-2026-0003", nil).Once()
	creditNotes.On("Save", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey).Once()
	creditNotes.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	svc := newCreditNoteServiceForTest(creditNotes, new(MockInvoiceRepository), numbers)

	cn, err := svc.CreateCreditNote(context.Background(), CreateCreditNoteRequest{
		CompanyID:    companyID,
		CustomerID:   uuid.New(),
		CustomerName: "Nakumatt Holdings",
		TotalAmount:  decimal.NewFromInt(300),
		IssueDate:    time.Now(),
		Reason:       "pricing adjustment",
	})

	require.NoError(t, err)
	assert.Equal(t, "BIO-CN-2026-0003", cn.CreditNoteNumber)
}

func TestCreditNoteService_CancelCreditNote(t *testing.T) {
	companyID := uuid.New()
	cn := newSentCreditNote(t, companyID, 300)

	creditNotes := new(MockCreditNoteRepository)
	creditNotes.On("FindByID", mock.Anything, companyID, cn.ID).Return(cn, nil)
	creditNotes.On("SaveWithLock", mock.Anything, cn).Return(nil)

	svc := newCreditNoteServiceForTest(creditNotes, new(MockInvoiceRepository), new(MockNumberGenerator))

	cancelled, err := svc.CancelCreditNote(context.Background(), companyID, cn.ID, "issued in error")
	require.NoError(t, err)
	assert.Equal(t, billing.CreditNoteStatusCancelled, cancelled.Status)
	assert.Equal(t, "issued in error", cancelled.CancelReason)
}
