package persistence

import (
	"context"
	"errors"

	"github.com/bizbooks/backend/internal/domain/billing"
	"github.com/bizbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements billing.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID for a company
func (r *GormPaymentRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := dbFromContext(ctx, r.db).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds payments for a company with filtering and pagination
func (r *GormPaymentRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, int64, error) {
	query := dbFromContext(ctx, r.db).Model(&models.PaymentModel{}).
		Where("company_id = ?", companyID)

	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Method != nil {
		query = query.Where("method = ?", *filter.Method)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var paymentModels []models.PaymentModel
	if err := query.
		Order("payment_date DESC, created_at DESC").
		Offset(pageOffset(filter.Page, filter.PageSize)).
		Limit(pageLimit(filter.PageSize)).
		Find(&paymentModels).Error; err != nil {
		return nil, 0, err
	}

	payments := make([]billing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, total, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, p *billing.Payment) error {
	model := models.PaymentModelFromDomain(p)
	return dbFromContext(ctx, r.db).Save(model).Error
}

// SaveAllocation creates or updates a payment allocation
func (r *GormPaymentRepository) SaveAllocation(ctx context.Context, a *billing.PaymentAllocation) error {
	model := models.PaymentAllocationModelFromDomain(a)
	return dbFromContext(ctx, r.db).Save(model).Error
}

// FindAllocationsByPayment lists allocations made from a payment
func (r *GormPaymentRepository) FindAllocationsByPayment(ctx context.Context, companyID, paymentID uuid.UUID) ([]billing.PaymentAllocation, error) {
	var allocationModels []models.PaymentAllocationModel
	if err := dbFromContext(ctx, r.db).
		Where("company_id = ? AND payment_id = ?", companyID, paymentID).
		Order("allocation_date ASC").
		Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	allocations := make([]billing.PaymentAllocation, len(allocationModels))
	for i, model := range allocationModels {
		allocations[i] = *model.ToDomain()
	}
	return allocations, nil
}

// FindAllocationsByInvoice lists allocations received by an invoice
func (r *GormPaymentRepository) FindAllocationsByInvoice(ctx context.Context, companyID, invoiceID uuid.UUID) ([]billing.PaymentAllocation, error) {
	var allocationModels []models.PaymentAllocationModel
	if err := dbFromContext(ctx, r.db).
		Where("company_id = ? AND invoice_id = ?", companyID, invoiceID).
		Order("allocation_date ASC").
		Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	allocations := make([]billing.PaymentAllocation, len(allocationModels))
	for i, model := range allocationModels {
		allocations[i] = *model.ToDomain()
	}
	return allocations, nil
}

// CountForCompany counts payments for a company
func (r *GormPaymentRepository) CountForCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("company_id = ?", companyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
