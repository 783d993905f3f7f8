package handler

import (
	"time"

	appbilling "github.com/bizbooks/backend/internal/application/billing"
	"github.com/bizbooks/backend/internal/domain/billing"
	"github.com/bizbooks/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditNoteHandler serves the credit note endpoints
type CreditNoteHandler struct {
	BaseHandler
	creditNotes *appbilling.CreditNoteService
}

// NewCreditNoteHandler creates a new CreditNoteHandler
func NewCreditNoteHandler(creditNotes *appbilling.CreditNoteService) *CreditNoteHandler {
	return &CreditNoteHandler{creditNotes: creditNotes}
}

// RegisterRoutes registers credit note routes
func (h *CreditNoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	creditNotes := rg.Group("/credit-notes")
	{
		creditNotes.POST("", h.Create)
		creditNotes.GET("", h.List)
		creditNotes.GET("/:id", h.Get)
		creditNotes.POST("/:id/apply", h.Apply)
		creditNotes.POST("/:id/cancel", h.Cancel)
	}
}

// CreateCreditNoteRequest is the create credit note request body
type CreateCreditNoteRequest struct {
	CustomerID   string          `json:"customer_id" binding:"required,uuid"`
	CustomerName string          `json:"customer_name" binding:"required"`
	InvoiceID    *string         `json:"invoice_id"`
	TotalAmount  decimal.Decimal `json:"total_amount" binding:"required"`
	IssueDate    time.Time       `json:"issue_date"`
	Reason       string          `json:"reason"`
}

// Create handles POST /credit-notes
func (h *CreditNoteHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	customerID, _ := uuid.Parse(req.CustomerID)

	var invoiceID *uuid.UUID
	if req.InvoiceID != nil {
		parsed, err := uuid.Parse(*req.InvoiceID)
		if err != nil {
			h.BadRequest(c, "Invalid invoice_id")
			return
		}
		invoiceID = &parsed
	}

	cn, err := h.creditNotes.CreateCreditNote(c.Request.Context(), appbilling.CreateCreditNoteRequest{
		CompanyID:    companyID,
		CustomerID:   customerID,
		CustomerName: req.CustomerName,
		InvoiceID:    invoiceID,
		TotalAmount:  req.TotalAmount,
		IssueDate:    req.IssueDate,
		Reason:       req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cn)
}

// List handles GET /credit-notes
func (h *CreditNoteHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	listReq.Normalize()

	filter := billing.CreditNoteFilter{Page: listReq.Page, PageSize: listReq.PageSize}
	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid customer_id")
			return
		}
		filter.CustomerID = &customerID
	}
	if raw := c.Query("status"); raw != "" {
		status := billing.CreditNoteStatus(raw)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid status")
			return
		}
		filter.Status = &status
	}

	creditNotes, total, err := h.creditNotes.ListCreditNotes(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, creditNotes, total, listReq.Page, listReq.PageSize)
}

// Get handles GET /credit-notes/:id
func (h *CreditNoteHandler) Get(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid credit note ID")
		return
	}

	cn, err := h.creditNotes.GetCreditNote(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cn)
}

// ApplyCreditNoteRequest is the apply credit note request body
type ApplyCreditNoteRequest struct {
	InvoiceID string          `json:"invoice_id" binding:"required,uuid"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Notes     string          `json:"notes"`
}

// Apply handles POST /credit-notes/:id/apply
func (h *CreditNoteHandler) Apply(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid credit note ID")
		return
	}

	var req ApplyCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	invoiceID, _ := uuid.Parse(req.InvoiceID)

	result, err := h.creditNotes.ApplyCreditNote(c.Request.Context(), appbilling.ApplyCreditNoteRequest{
		CompanyID:    companyID,
		CreditNoteID: id,
		InvoiceID:    invoiceID,
		Amount:       req.Amount,
		Notes:        req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CancelCreditNoteRequest is the cancel credit note request body
type CancelCreditNoteRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Cancel handles POST /credit-notes/:id/cancel
func (h *CreditNoteHandler) Cancel(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid credit note ID")
		return
	}

	var req CancelCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	cn, err := h.creditNotes.CancelCreditNote(c.Request.Context(), companyID, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cn)
}
