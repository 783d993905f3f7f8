package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/bizbooks/backend/internal/domain/billing"
	"github.com/bizbooks/backend/internal/domain/shared"
	"github.com/bizbooks/backend/internal/domain/shared/valueobject"
	"github.com/bizbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupBillingTestDB creates an in-memory SQLite database with the billing tables
func setupBillingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.InvoiceModel{},
		&models.PaymentModel{},
		&models.PaymentAllocationModel{},
		&models.CreditNoteModel{},
		&models.QuotationModel{},
		&models.ProformaInvoiceModel{},
		&models.PurchaseOrderModel{},
		&models.CompanyModel{},
		&models.UserModel{},
	)
	require.NoError(t, err)

	return db
}

func newTestInvoice(t *testing.T, companyID uuid.UUID, number string, total float64) *billing.Invoice {
	t.Helper()

	due := time.Now().AddDate(0, 1, 0)
	inv, err := billing.NewInvoice(
		companyID,
		number,
		uuid.New(),
		"Acme Traders Ltd",
		valueobject.NewMoneyKESFromFloat(total),
		time.Now(),
		&due,
	)
	require.NoError(t, err)
	return inv
}

func TestGormInvoiceRepository_SaveAndFind(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	inv := newTestInvoice(t, companyID, "ACM-INV-2026-0001", 1000)
	require.NoError(t, repo.Save(ctx, inv))

	found, err := repo.FindByID(ctx, companyID, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, inv.ID, found.ID)
	assert.Equal(t, "ACM-INV-2026-0001", found.InvoiceNumber)
	assert.True(t, found.TotalAmount.Equal(inv.TotalAmount))
	assert.True(t, found.BalanceDue.Equal(inv.TotalAmount))
	assert.Equal(t, billing.InvoiceStatusDraft, found.Status)

	byNumber, err := repo.FindByNumber(ctx, companyID, "ACM-INV-2026-0001")
	require.NoError(t, err)
	require.NotNil(t, byNumber)
	assert.Equal(t, inv.ID, byNumber.ID)
}

func TestGormInvoiceRepository_FindByID_NotFound(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)

	found, err := repo.FindByID(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestGormInvoiceRepository_FindByID_WrongCompany(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	inv := newTestInvoice(t, companyID, "ACM-INV-2026-0001", 500)
	require.NoError(t, repo.Save(ctx, inv))

	found, err := repo.FindByID(ctx, uuid.New(), inv.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestGormInvoiceRepository_SaveWithLock(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	inv := newTestInvoice(t, companyID, "ACM-INV-2026-0002", 1000)
	require.NoError(t, repo.Save(ctx, inv))

	require.NoError(t, inv.RecordPayment(valueobject.NewMoneyKESFromFloat(400)))
	require.NoError(t, repo.SaveWithLock(ctx, inv))

	found, err := repo.FindByID(ctx, companyID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPartial, found.Status)
	assert.True(t, found.PaidAmount.Equal(inv.PaidAmount))
	assert.True(t, found.BalanceDue.Equal(inv.BalanceDue))
	assert.Equal(t, 2, found.Version)
}

func TestGormInvoiceRepository_SaveWithLock_StaleVersion(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	inv := newTestInvoice(t, companyID, "ACM-INV-2026-0003", 1000)
	require.NoError(t, repo.Save(ctx, inv))

	stale := *inv
	stale.Version = 5 // does not match the stored version

	err := repo.SaveWithLock(ctx, &stale)
	require.Error(t, err)

	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "CONCURRENT_MODIFICATION", derr.Code)
}

func TestGormInvoiceRepository_SaveWithLock_ZeroBalancePersisted(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	inv := newTestInvoice(t, companyID, "ACM-INV-2026-0004", 1000)
	require.NoError(t, repo.Save(ctx, inv))

	require.NoError(t, inv.RecordPayment(valueobject.NewMoneyKESFromFloat(1000)))
	require.NoError(t, repo.SaveWithLock(ctx, inv))

	found, err := repo.FindByID(ctx, companyID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPaid, found.Status)
	assert.True(t, found.BalanceDue.IsZero())
	assert.NotNil(t, found.PaidAt)
}

func TestGormInvoiceRepository_FindAll(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	first := newTestInvoice(t, companyID, "ACM-INV-2026-0005", 100)
	second := newTestInvoice(t, companyID, "ACM-INV-2026-0006", 200)
	require.NoError(t, second.Send())
	other := newTestInvoice(t, uuid.New(), "XYZ-INV-2026-0001", 300)

	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))
	require.NoError(t, repo.Save(ctx, other))

	all, total, err := repo.FindAll(ctx, companyID, billing.InvoiceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	sent := billing.InvoiceStatusSent
	filtered, total, err := repo.FindAll(ctx, companyID, billing.InvoiceFilter{Status: &sent})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, filtered, 1)
	assert.Equal(t, second.ID, filtered[0].ID)
}

func TestGormInvoiceRepository_CountForCompany(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	count, err := repo.CountForCompany(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, repo.Save(ctx, newTestInvoice(t, companyID, "ACM-INV-2026-0007", 100)))
	require.NoError(t, repo.Save(ctx, newTestInvoice(t, companyID, "ACM-INV-2026-0008", 100)))

	count, err = repo.CountForCompany(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGormPaymentRepository_SaveAndAllocations(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()
	companyID := uuid.New()
	invoiceID := uuid.New()

	payment, err := billing.NewPayment(
		companyID,
		"ACM-PAY-2026-0001",
		uuid.New(),
		"Acme Traders Ltd",
		valueobject.NewMoneyKESFromFloat(400),
		billing.PaymentMethodMobileMoney,
		time.Now(),
		"MPESA-REF-123",
		"",
	)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, payment))

	allocation, err := payment.AllocateTo(invoiceID, valueobject.NewMoneyKESFromFloat(400), time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.SaveAllocation(ctx, allocation))

	found, err := repo.FindByID(ctx, companyID, payment.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, billing.PaymentMethodMobileMoney, found.Method)
	assert.Equal(t, "MPESA-REF-123", found.Reference)

	byPayment, err := repo.FindAllocationsByPayment(ctx, companyID, payment.ID)
	require.NoError(t, err)
	require.Len(t, byPayment, 1)
	assert.Equal(t, invoiceID, byPayment[0].InvoiceID)
	assert.True(t, byPayment[0].Amount.Equal(payment.Amount))

	byInvoice, err := repo.FindAllocationsByInvoice(ctx, companyID, invoiceID)
	require.NoError(t, err)
	require.Len(t, byInvoice, 1)
	assert.Equal(t, payment.ID, byInvoice[0].PaymentID)
}

func TestGormCreditNoteRepository_AllocationsRoundTrip(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormCreditNoteRepository(db)
	ctx := context.Background()
	companyID := uuid.New()
	invoiceID := uuid.New()

	cn, err := billing.NewCreditNote(
		companyID,
		"ACM-CN-2026-0001",
		uuid.New(),
		"Acme Traders Ltd",
		nil,
		valueobject.NewMoneyKESFromFloat(500),
		time.Now(),
		"Damaged goods returned",
	)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, cn))

	require.NoError(t, cn.ApplyToInvoice(invoiceID, valueobject.NewMoneyKESFromFloat(200), ""))
	require.NoError(t, repo.SaveWithLock(ctx, cn))

	found, err := repo.FindByID(ctx, companyID, cn.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, billing.CreditNoteStatusDraft, found.Status)
	assert.True(t, found.AppliedAmount.Equal(cn.AppliedAmount))
	assert.True(t, found.Balance.Equal(cn.Balance))
	require.Len(t, found.Allocations, 1)
	assert.Equal(t, invoiceID, found.Allocations[0].InvoiceID)
	assert.True(t, found.Allocations[0].Amount.Equal(cn.Allocations[0].Amount))
}

func TestGormCreditNoteRepository_SaveWithLock_StaleVersion(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormCreditNoteRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	cn, err := billing.NewCreditNote(
		companyID,
		"ACM-CN-2026-0002",
		uuid.New(),
		"Acme Traders Ltd",
		nil,
		valueobject.NewMoneyKESFromFloat(500),
		time.Now(),
		"Overbilled",
	)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, cn))

	stale := *cn
	stale.Version = 9

	err = repo.SaveWithLock(ctx, &stale)
	require.Error(t, err)

	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "CONCURRENT_MODIFICATION", derr.Code)
}

func TestGormProformaRepository_MaxNumberWithPrefix(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormProformaRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	max, err := repo.MaxNumberWithPrefix(ctx, companyID, "PF-2026-")
	require.NoError(t, err)
	assert.Equal(t, "", max)

	for _, number := range []string{"PF-2026-0003", "PF-2026-0010", "PF-2025-0099"} {
		p, err := billing.NewProformaInvoice(
			companyID,
			number,
			uuid.New(),
			"Acme Traders Ltd",
			valueobject.NewMoneyKESFromFloat(100),
			time.Now(),
		)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, p))
	}

	// proforma of another company must not leak into the scan
	foreign, err := billing.NewProformaInvoice(
		uuid.New(),
		"PF-2026-9999",
		uuid.New(),
		"Other Company Ltd",
		valueobject.NewMoneyKESFromFloat(100),
		time.Now(),
	)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, foreign))

	max, err = repo.MaxNumberWithPrefix(ctx, companyID, "PF-2026-")
	require.NoError(t, err)
	assert.Equal(t, "PF-2026-0010", max)
}

func TestGormQuotationRepository_SaveAndFindAll(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormQuotationRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	q, err := billing.NewQuotation(
		companyID,
		"ACM-QUO-2026-0001",
		uuid.New(),
		"Acme Traders Ltd",
		valueobject.NewMoneyKESFromFloat(750),
		time.Now(),
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, q))

	all, total, err := repo.FindAll(ctx, companyID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, all, 1)
	assert.Equal(t, "ACM-QUO-2026-0001", all[0].QuotationNumber)
}

func TestGormPurchaseOrderRepository_SaveAndFind(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	po, err := billing.NewPurchaseOrder(
		companyID,
		"ACM-LPO-2026-0001",
		uuid.New(),
		"Nairobi Supplies Co",
		valueobject.NewMoneyKESFromFloat(1200),
		time.Now(),
	)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, po))

	found, err := repo.FindByID(ctx, companyID, po.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Nairobi Supplies Co", found.SupplierName)

	count, err := repo.CountForCompany(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormTransactionManager_RollsBackOnError(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	txManager := NewGormTransactionManager(db)
	ctx := context.Background()
	companyID := uuid.New()

	inv := newTestInvoice(t, companyID, "ACM-INV-2026-0100", 1000)

	err := txManager.Do(ctx, func(txCtx context.Context) error {
		if err := repo.Save(txCtx, inv); err != nil {
			return err
		}
		return shared.NewDomainError("BOOM", "forced failure")
	})
	require.Error(t, err)

	found, err := repo.FindByID(ctx, companyID, inv.ID)
	require.NoError(t, err)
	assert.Nil(t, found, "rolled back invoice must not be visible")
}

func TestGormTransactionManager_CommitsOnSuccess(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	txManager := NewGormTransactionManager(db)
	ctx := context.Background()
	companyID := uuid.New()

	inv := newTestInvoice(t, companyID, "ACM-INV-2026-0101", 1000)

	err := txManager.Do(ctx, func(txCtx context.Context) error {
		return repo.Save(txCtx, inv)
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, companyID, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, inv.ID, found.ID)
}
