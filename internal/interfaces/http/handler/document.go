package handler

import (
	"time"

	appbilling "github.com/bizbooks/backend/internal/application/billing"
	"github.com/bizbooks/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentHandler serves quotations, proforma invoices, and purchase orders
type DocumentHandler struct {
	BaseHandler
	documents *appbilling.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documents *appbilling.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// RegisterRoutes registers document routes
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	quotations := rg.Group("/quotations")
	{
		quotations.POST("", h.CreateQuotation)
		quotations.GET("", h.ListQuotations)
		quotations.GET("/:id", h.GetQuotation)
		quotations.POST("/:id/send", h.SendQuotation)
		quotations.POST("/:id/accept", h.AcceptQuotation)
	}

	proformas := rg.Group("/proformas")
	{
		proformas.POST("", h.CreateProforma)
		proformas.GET("", h.ListProformas)
		proformas.GET("/:id", h.GetProforma)
		proformas.POST("/:id/convert", h.ConvertProforma)
	}

	purchaseOrders := rg.Group("/purchase-orders")
	{
		purchaseOrders.POST("", h.CreatePurchaseOrder)
		purchaseOrders.GET("", h.ListPurchaseOrders)
		purchaseOrders.GET("/:id", h.GetPurchaseOrder)
		purchaseOrders.POST("/:id/issue", h.IssuePurchaseOrder)
	}
}

// CreateDocumentRequest is the create document request body. party_id and
// party_name are the customer for quotations and proformas, the supplier
// for purchase orders.
type CreateDocumentRequest struct {
	PartyID     string          `json:"party_id" binding:"required,uuid"`
	PartyName   string          `json:"party_name" binding:"required"`
	TotalAmount decimal.Decimal `json:"total_amount" binding:"required"`
	IssueDate   time.Time       `json:"issue_date"`
	ValidUntil  *time.Time      `json:"valid_until"`
	Notes       string          `json:"notes"`
}

func (h *DocumentHandler) bindCreateRequest(c *gin.Context) (uuid.UUID, appbilling.CreateDocumentRequest, bool) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, appbilling.CreateDocumentRequest{}, false
	}

	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return uuid.Nil, appbilling.CreateDocumentRequest{}, false
	}
	partyID, _ := uuid.Parse(req.PartyID)

	return companyID, appbilling.CreateDocumentRequest{
		CompanyID:   companyID,
		PartyID:     partyID,
		PartyName:   req.PartyName,
		TotalAmount: req.TotalAmount,
		IssueDate:   req.IssueDate,
		ValidUntil:  req.ValidUntil,
		Notes:       req.Notes,
	}, true
}

// CreateQuotation handles POST /quotations
func (h *DocumentHandler) CreateQuotation(c *gin.Context) {
	_, req, ok := h.bindCreateRequest(c)
	if !ok {
		return
	}
	q, err := h.documents.CreateQuotation(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, q)
}

// ListQuotations handles GET /quotations
func (h *DocumentHandler) ListQuotations(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	listReq := h.bindListRequest(c)

	quotations, total, err := h.documents.ListQuotations(c.Request.Context(), companyID, listReq.Page, listReq.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, quotations, total, listReq.Page, listReq.PageSize)
}

// GetQuotation handles GET /quotations/:id
func (h *DocumentHandler) GetQuotation(c *gin.Context) {
	companyID, id, ok := h.bindIDRequest(c)
	if !ok {
		return
	}
	q, err := h.documents.GetQuotation(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// SendQuotation handles POST /quotations/:id/send
func (h *DocumentHandler) SendQuotation(c *gin.Context) {
	companyID, id, ok := h.bindIDRequest(c)
	if !ok {
		return
	}
	q, err := h.documents.SendQuotation(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// AcceptQuotation handles POST /quotations/:id/accept
func (h *DocumentHandler) AcceptQuotation(c *gin.Context) {
	companyID, id, ok := h.bindIDRequest(c)
	if !ok {
		return
	}
	q, err := h.documents.AcceptQuotation(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// CreateProforma handles POST /proformas
func (h *DocumentHandler) CreateProforma(c *gin.Context) {
	_, req, ok := h.bindCreateRequest(c)
	if !ok {
		return
	}
	p, err := h.documents.CreateProforma(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// ListProformas handles GET /proformas
func (h *DocumentHandler) ListProformas(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	listReq := h.bindListRequest(c)

	proformas, total, err := h.documents.ListProformas(c.Request.Context(), companyID, listReq.Page, listReq.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, proformas, total, listReq.Page, listReq.PageSize)
}

// GetProforma handles GET /proformas/:id
func (h *DocumentHandler) GetProforma(c *gin.Context) {
	companyID, id, ok := h.bindIDRequest(c)
	if !ok {
		return
	}
	p, err := h.documents.GetProforma(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// ConvertProforma handles POST /proformas/:id/convert
func (h *DocumentHandler) ConvertProforma(c *gin.Context) {
	companyID, id, ok := h.bindIDRequest(c)
	if !ok {
		return
	}
	p, err := h.documents.ConvertProforma(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// CreatePurchaseOrder handles POST /purchase-orders
func (h *DocumentHandler) CreatePurchaseOrder(c *gin.Context) {
	_, req, ok := h.bindCreateRequest(c)
	if !ok {
		return
	}
	po, err := h.documents.CreatePurchaseOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, po)
}

// ListPurchaseOrders handles GET /purchase-orders
func (h *DocumentHandler) ListPurchaseOrders(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	listReq := h.bindListRequest(c)

	purchaseOrders, total, err := h.documents.ListPurchaseOrders(c.Request.Context(), companyID, listReq.Page, listReq.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, purchaseOrders, total, listReq.Page, listReq.PageSize)
}

// GetPurchaseOrder handles GET /purchase-orders/:id
func (h *DocumentHandler) GetPurchaseOrder(c *gin.Context) {
	companyID, id, ok := h.bindIDRequest(c)
	if !ok {
		return
	}
	po, err := h.documents.GetPurchaseOrder(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

// IssuePurchaseOrder handles POST /purchase-orders/:id/issue
func (h *DocumentHandler) IssuePurchaseOrder(c *gin.Context) {
	companyID, id, ok := h.bindIDRequest(c)
	if !ok {
		return
	}
	po, err := h.documents.IssuePurchaseOrder(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

func (h *DocumentHandler) bindListRequest(c *gin.Context) dto.ListRequest {
	var listReq dto.ListRequest
	_ = c.ShouldBindQuery(&listReq)
	listReq.Normalize()
	return listReq
}

func (h *DocumentHandler) bindIDRequest(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid document ID")
		return uuid.Nil, uuid.Nil, false
	}
	return companyID, id, true
}
