package persistence

import (
	"context"
	"errors"

	"github.com/bizbooks/backend/internal/domain/billing"
	"github.com/bizbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormQuotationRepository implements billing.QuotationRepository using GORM
type GormQuotationRepository struct {
	db *gorm.DB
}

// NewGormQuotationRepository creates a new GormQuotationRepository
func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db}
}

// FindByID finds a quotation by ID for a company
func (r *GormQuotationRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*billing.Quotation, error) {
	var model models.QuotationModel
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

// FindAll finds quotations for a company with pagination
func (r *GormQuotationRepository) FindAll(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]billing.Quotation, int64, error) {
	query := dbFromContext(ctx, r.db).Model(&models.QuotationModel{}).
		Where("company_id = ?", companyID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quotationModels []models.QuotationModel
	if err := query.
		Order("issue_date DESC, created_at DESC").
		Offset(pageOffset(page, pageSize)).
		Limit(pageLimit(pageSize)).
		Find(&quotationModels).Error; err != nil {
		return nil, 0, err
	}

	quotations := make([]billing.Quotation, len(quotationModels))
	for i, model := range quotationModels {
		quotations[i] = *model.ToDomain()
	}
	return quotations, total, nil
}

// Save creates or updates a quotation
func (r *GormQuotationRepository) Save(ctx context.Context, q *billing.Quotation) error {
	model := models.QuotationModelFromDomain(q)
	return dbFromContext(ctx, r.db).Save(model).Error
}

// CountForCompany counts quotations for a company
func (r *GormQuotationRepository) CountForCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).
		Model(&models.QuotationModel{}).
		Where("company_id = ?", companyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GormProformaRepository implements billing.ProformaRepository using GORM
type GormProformaRepository struct {
	db *gorm.DB
}

// NewGormProformaRepository creates a new GormProformaRepository
func NewGormProformaRepository(db *gorm.DB) *GormProformaRepository {
	return &GormProformaRepository{db: db}
}

// FindByID finds a proforma invoice by ID for a company
func (r *GormProformaRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*billing.ProformaInvoice, error) {
	var model models.ProformaInvoiceModel
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

// FindAll finds proforma invoices for a company with pagination
func (r *GormProformaRepository) FindAll(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]billing.ProformaInvoice, int64, error) {
	query := dbFromContext(ctx, r.db).Model(&models.ProformaInvoiceModel{}).
		Where("company_id = ?", companyID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var proformaModels []models.ProformaInvoiceModel
	if err := query.
		Order("issue_date DESC, created_at DESC").
		Offset(pageOffset(page, pageSize)).
		Limit(pageLimit(pageSize)).
		Find(&proformaModels).Error; err != nil {
		return nil, 0, err
	}

	proformas := make([]billing.ProformaInvoice, len(proformaModels))
	for i, model := range proformaModels {
		proformas[i] = *model.ToDomain()
	}
	return proformas, total, nil
}

// Save creates or updates a proforma invoice
func (r *GormProformaRepository) Save(ctx context.Context, p *billing.ProformaInvoice) error {
	model := models.ProformaInvoiceModelFromDomain(p)
	return dbFromContext(ctx, r.db).Save(model).Error
}

// MaxNumberWithPrefix returns the greatest proforma number starting with
// prefix for a company, or "" when none exists. Numbers share a fixed-width
// suffix so lexicographic MAX matches numeric order.
func (r *GormProformaRepository) MaxNumberWithPrefix(ctx context.Context, companyID uuid.UUID, prefix string) (string, error) {
	var max *string
	if err := dbFromContext(ctx, r.db).
		Model(&models.ProformaInvoiceModel{}).
		Where("company_id = ? AND proforma_number LIKE ?", companyID, prefix+"%").
		Select("MAX(proforma_number)").
		Scan(&max).Error; err != nil {
		return "", err
	}
	if max == nil {
		return "", nil
	}
	return *max, nil
}

// GormPurchaseOrderRepository implements billing.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by ID for a company
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*billing.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
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

// FindAll finds purchase orders for a company with pagination
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, companyID uuid.UUID, page, pageSize int) ([]billing.PurchaseOrder, int64, error) {
	query := dbFromContext(ctx, r.db).Model(&models.PurchaseOrderModel{}).
		Where("company_id = ?", companyID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orderModels []models.PurchaseOrderModel
	if err := query.
		Order("order_date DESC, created_at DESC").
		Offset(pageOffset(page, pageSize)).
		Limit(pageLimit(pageSize)).
		Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]billing.PurchaseOrder, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, total, nil
}

// Save creates or updates a purchase order
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *billing.PurchaseOrder) error {
	model := models.PurchaseOrderModelFromDomain(po)
	return dbFromContext(ctx, r.db).Save(model).Error
}

// CountForCompany counts purchase orders for a company
func (r *GormPurchaseOrderRepository) CountForCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).
		Model(&models.PurchaseOrderModel{}).
		Where("company_id = ?", companyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var (
	_ billing.QuotationRepository     = (*GormQuotationRepository)(nil)
	_ billing.ProformaRepository      = (*GormProformaRepository)(nil)
	_ billing.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
)
