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

// InvoiceHandler serves the invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices     *appbilling.InvoiceService
	sweepEnabled bool
}

// InvoiceHandlerOption configures an InvoiceHandler
type InvoiceHandlerOption func(*InvoiceHandler)

// WithOverdueSweep toggles the mark-overdue sweep endpoint
func WithOverdueSweep(enabled bool) InvoiceHandlerOption {
	return func(h *InvoiceHandler) {
		h.sweepEnabled = enabled
	}
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices *appbilling.InvoiceService, opts ...InvoiceHandlerOption) *InvoiceHandler {
	h := &InvoiceHandler{invoices: invoices, sweepEnabled: true}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.Get)
		invoices.POST("/:id/send", h.Send)
		invoices.POST("/:id/cancel", h.Cancel)
		if h.sweepEnabled {
			invoices.POST("/mark-overdue", h.MarkOverdue)
		}
	}
}

// CreateInvoiceRequest is the create invoice request body
type CreateInvoiceRequest struct {
	CustomerID   string          `json:"customer_id" binding:"required,uuid"`
	CustomerName string          `json:"customer_name" binding:"required"`
	TotalAmount  decimal.Decimal `json:"total_amount" binding:"required"`
	IssueDate    time.Time       `json:"issue_date"`
	DueDate      *time.Time      `json:"due_date"`
	Notes        string          `json:"notes"`
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	customerID, _ := uuid.Parse(req.CustomerID)

	inv, err := h.invoices.CreateInvoice(c.Request.Context(), appbilling.CreateInvoiceRequest{
		CompanyID:    companyID,
		CustomerID:   customerID,
		CustomerName: req.CustomerName,
		TotalAmount:  req.TotalAmount,
		IssueDate:    req.IssueDate,
		DueDate:      req.DueDate,
		Notes:        req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
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

	filter := billing.InvoiceFilter{Page: listReq.Page, PageSize: listReq.PageSize}
	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid customer_id")
			return
		}
		filter.CustomerID = &customerID
	}
	if raw := c.Query("status"); raw != "" {
		status := billing.InvoiceStatus(raw)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid status")
			return
		}
		filter.Status = &status
	}

	invoices, total, err := h.invoices.ListInvoices(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, invoices, total, listReq.Page, listReq.PageSize)
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	inv, err := h.invoices.GetInvoice(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Send handles POST /invoices/:id/send
func (h *InvoiceHandler) Send(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	inv, err := h.invoices.SendInvoice(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// CancelInvoiceRequest is the cancel invoice request body
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Cancel handles POST /invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	inv, err := h.invoices.CancelInvoice(c.Request.Context(), companyID, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// MarkOverdue handles POST /invoices/mark-overdue
func (h *InvoiceHandler) MarkOverdue(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.invoices.MarkOverdueInvoices(c.Request.Context(), companyID, time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
