package persistence

import (
	"context"
	"errors"

	"github.com/bizbooks/backend/internal/domain/billing"
	"github.com/bizbooks/backend/internal/domain/shared"
	"github.com/bizbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCreditNoteRepository implements billing.CreditNoteRepository using GORM
type GormCreditNoteRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteRepository creates a new GormCreditNoteRepository
func NewGormCreditNoteRepository(db *gorm.DB) *GormCreditNoteRepository {
	return &GormCreditNoteRepository{db: db}
}

// FindByID finds a credit note by ID for a company
func (r *GormCreditNoteRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*billing.CreditNote, error) {
	var model models.CreditNoteModel
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

// FindAll finds credit notes for a company with filtering and pagination
func (r *GormCreditNoteRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter billing.CreditNoteFilter) ([]billing.CreditNote, int64, error) {
	query := dbFromContext(ctx, r.db).Model(&models.CreditNoteModel{}).
		Where("company_id = ?", companyID)

	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var creditNoteModels []models.CreditNoteModel
	if err := query.
		Order("issue_date DESC, created_at DESC").
		Offset(pageOffset(filter.Page, filter.PageSize)).
		Limit(pageLimit(filter.PageSize)).
		Find(&creditNoteModels).Error; err != nil {
		return nil, 0, err
	}

	creditNotes := make([]billing.CreditNote, len(creditNoteModels))
	for i, model := range creditNoteModels {
		creditNotes[i] = *model.ToDomain()
	}
	return creditNotes, total, nil
}

// Save creates or updates a credit note
func (r *GormCreditNoteRepository) Save(ctx context.Context, cn *billing.CreditNote) error {
	model := models.CreditNoteModelFromDomain(cn)
	return dbFromContext(ctx, r.db).Save(model).Error
}

// SaveWithLock saves with optimistic locking on the version column
func (r *GormCreditNoteRepository) SaveWithLock(ctx context.Context, cn *billing.CreditNote) error {
	model := models.CreditNoteModelFromDomain(cn)
	result := dbFromContext(ctx, r.db).
		Model(model).
		Where("id = ? AND version = ?", cn.ID, cn.Version-1).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The credit note has been modified by another transaction")
	}
	return nil
}

// CountForCompany counts credit notes for a company
func (r *GormCreditNoteRepository) CountForCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).
		Model(&models.CreditNoteModel{}).
		Where("company_id = ?", companyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ billing.CreditNoteRepository = (*GormCreditNoteRepository)(nil)
