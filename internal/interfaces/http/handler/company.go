package handler

import (
	appcompany "github.com/bizbooks/backend/internal/application/company"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CompanyHandler serves the company settings endpoints
type CompanyHandler struct {
	BaseHandler
	companies *appcompany.Service
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companies *appcompany.Service) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

// RegisterRoutes registers company routes
func (h *CompanyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	company := rg.Group("/company")
	{
		company.GET("", h.Get)
		company.PUT("", h.Update)
		company.PUT("/tax-rate", h.SetTaxRate)
	}
}

// Get handles GET /company
func (h *CompanyHandler) Get(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	company, err := h.companies.GetCompany(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// UpdateCompanyRequest is the update company request body
type UpdateCompanyRequest struct {
	Name           string `json:"name" binding:"required"`
	RegistrationNo string `json:"registration_no"`
	TaxPIN         string `json:"tax_pin"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
}

// Update handles PUT /company
func (h *CompanyHandler) Update(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	company, err := h.companies.UpdateProfile(c.Request.Context(), companyID, appcompany.UpdateProfileRequest{
		Name:           req.Name,
		RegistrationNo: req.RegistrationNo,
		TaxPIN:         req.TaxPIN,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// SetTaxRateRequest is the set tax rate request body
type SetTaxRateRequest struct {
	TaxRate decimal.Decimal `json:"tax_rate" binding:"required"`
}

// SetTaxRate handles PUT /company/tax-rate
func (h *CompanyHandler) SetTaxRate(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req SetTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	company, err := h.companies.SetTaxRate(c.Request.Context(), companyID, req.TaxRate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}
