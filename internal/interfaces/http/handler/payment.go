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

// IdempotencyKeyHeader carries the client-chosen key that makes payment
// recording safe to retry
const IdempotencyKeyHeader = "Idempotency-Key"

// PaymentHandler serves the payment endpoints
type PaymentHandler struct {
	BaseHandler
	payments *appbilling.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *appbilling.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.Record)
		payments.GET("", h.List)
		payments.GET("/:id", h.Get)
	}
}

// RecordPaymentRequest is the record payment request body
type RecordPaymentRequest struct {
	InvoiceID   string          `json:"invoice_id" binding:"required,uuid"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Method      string          `json:"method" binding:"required,payment_method"`
	PaymentDate time.Time       `json:"payment_date"`
	Reference   string          `json:"reference"`
	Notes       string          `json:"notes"`
}

// Record handles POST /payments
func (h *PaymentHandler) Record(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	invoiceID, _ := uuid.Parse(req.InvoiceID)

	if req.PaymentDate.IsZero() {
		req.PaymentDate = time.Now()
	}

	result, err := h.payments.RecordPayment(c.Request.Context(), appbilling.RecordPaymentRequest{
		CompanyID:      companyID,
		InvoiceID:      invoiceID,
		Amount:         req.Amount,
		Method:         billing.PaymentMethod(req.Method),
		PaymentDate:    req.PaymentDate,
		Reference:      req.Reference,
		Notes:          req.Notes,
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List handles GET /payments
func (h *PaymentHandler) List(c *gin.Context) {
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

	filter := billing.PaymentFilter{Page: listReq.Page, PageSize: listReq.PageSize}
	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid customer_id")
			return
		}
		filter.CustomerID = &customerID
	}
	if raw := c.Query("method"); raw != "" {
		method := billing.PaymentMethod(raw)
		if !method.IsValid() {
			h.BadRequest(c, "Invalid method")
			return
		}
		filter.Method = &method
	}

	payments, total, err := h.payments.ListPayments(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, payments, total, listReq.Page, listReq.PageSize)
}

// PaymentDetailResponse is a payment with its allocations
type PaymentDetailResponse struct {
	Payment     *billing.Payment            `json:"payment"`
	Allocations []billing.PaymentAllocation `json:"allocations"`
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, allocations, err := h.payments.GetPayment(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PaymentDetailResponse{Payment: payment, Allocations: allocations})
}
