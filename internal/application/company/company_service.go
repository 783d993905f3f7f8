// Package company contains the application service for company settings.
package company

import (
	"context"
	"fmt"

	"github.com/bizbooks/backend/internal/domain/company"
	"github.com/bizbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service manages the company profile backing the ledger
type Service struct {
	companies company.Repository
	logger    *zap.Logger
}

// NewService creates a new company Service
func NewService(companies company.Repository, logger *zap.Logger) *Service {
	return &Service{companies: companies, logger: logger}
}

// CreateCompanyRequest is a request to register a company
type CreateCompanyRequest struct {
	Name     string
	Currency string
	TaxRate  decimal.Decimal
}

// CreateCompany registers a new company profile
func (s *Service) CreateCompany(ctx context.Context, req CreateCompanyRequest) (*company.Company, error) {
	c, err := company.NewCompany(req.Name, req.Currency, req.TaxRate)
	if err != nil {
		return nil, err
	}
	if err := s.companies.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save company: %w", err)
	}

	s.logger.Info("company registered",
		zap.String("company_id", c.ID.String()),
		zap.String("name", c.Name),
		zap.String("number_code", c.NumberCode()),
	)
	return c, nil
}

// GetCompany returns the company profile
func (s *Service) GetCompany(ctx context.Context, companyID uuid.UUID) (*company.Company, error) {
	c, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}
	if c == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Company not found")
	}
	return c, nil
}

// UpdateProfileRequest is a request to update company details
type UpdateProfileRequest struct {
	Name           string
	RegistrationNo string
	TaxPIN         string
	Email          string
	Phone          string
	Address        string
}

// UpdateProfile updates the company's contact and registration details
func (s *Service) UpdateProfile(ctx context.Context, companyID uuid.UUID, req UpdateProfileRequest) (*company.Company, error) {
	c, err := s.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if err := c.UpdateProfile(req.Name, req.RegistrationNo, req.TaxPIN, req.Email, req.Phone, req.Address); err != nil {
		return nil, err
	}
	if err := s.companies.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save company: %w", err)
	}

	s.logger.Info("company profile updated", zap.String("company_id", c.ID.String()))
	return c, nil
}

// SetTaxRate updates the company's default tax rate
func (s *Service) SetTaxRate(ctx context.Context, companyID uuid.UUID, rate decimal.Decimal) (*company.Company, error) {
	c, err := s.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if err := c.SetTaxRate(rate); err != nil {
		return nil, err
	}
	if err := s.companies.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save company: %w", err)
	}
	return c, nil
}
