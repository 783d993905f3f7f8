package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appbilling "github.com/bizbooks/backend/internal/application/billing"
	"github.com/bizbooks/backend/internal/domain/billing"
	"github.com/bizbooks/backend/internal/domain/shared"
	"github.com/bizbooks/backend/internal/domain/shared/valueobject"
	"github.com/bizbooks/backend/internal/interfaces/http/dto"
	"github.com/bizbooks/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	middleware.SetupValidator()
}

// stubInvoiceRepo holds a single invoice keyed by company and ID
type stubInvoiceRepo struct {
	invoice *billing.Invoice
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*billing.Invoice, error) {
	if r.invoice != nil && r.invoice.CompanyID == companyID && r.invoice.ID == id {
		return r.invoice, nil
	}
	return nil, nil
}

func (r *stubInvoiceRepo) FindByNumber(_ context.Context, _ uuid.UUID, number string) (*billing.Invoice, error) {
	if r.invoice != nil && r.invoice.InvoiceNumber == number {
		return r.invoice, nil
	}
	return nil, nil
}

func (r *stubInvoiceRepo) FindAll(_ context.Context, _ uuid.UUID, _ billing.InvoiceFilter) ([]billing.Invoice, int64, error) {
	if r.invoice == nil {
		return nil, 0, nil
	}
	return []billing.Invoice{*r.invoice}, 1, nil
}

func (r *stubInvoiceRepo) Save(_ context.Context, inv *billing.Invoice) error {
	r.invoice = inv
	return nil
}

func (r *stubInvoiceRepo) SaveWithLock(_ context.Context, inv *billing.Invoice) error {
	r.invoice = inv
	return nil
}

func (r *stubInvoiceRepo) CountForCompany(context.Context, uuid.UUID) (int64, error) { return 1, nil }

// stubPaymentRepo collects saved payments and allocations
type stubPaymentRepo struct {
	payments    []*billing.Payment
	allocations []*billing.PaymentAllocation
}

func (r *stubPaymentRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*billing.Payment, error) {
	for _, p := range r.payments {
		if p.CompanyID == companyID && p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *stubPaymentRepo) FindAll(_ context.Context, _ uuid.UUID, _ billing.PaymentFilter) ([]billing.Payment, int64, error) {
	out := make([]billing.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPaymentRepo) Save(_ context.Context, p *billing.Payment) error {
	r.payments = append(r.payments, p)
	return nil
}

func (r *stubPaymentRepo) SaveAllocation(_ context.Context, a *billing.PaymentAllocation) error {
	r.allocations = append(r.allocations, a)
	return nil
}

func (r *stubPaymentRepo) FindAllocationsByPayment(_ context.Context, _, paymentID uuid.UUID) ([]billing.PaymentAllocation, error) {
	var out []billing.PaymentAllocation
	for _, a := range r.allocations {
		if a.PaymentID == paymentID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubPaymentRepo) FindAllocationsByInvoice(_ context.Context, _, invoiceID uuid.UUID) ([]billing.PaymentAllocation, error) {
	var out []billing.PaymentAllocation
	for _, a := range r.allocations {
		if a.InvoiceID == invoiceID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubPaymentRepo) CountForCompany(context.Context, uuid.UUID) (int64, error) {
	return int64(len(r.payments)), nil
}

type stubNumberGenerator struct {
	number string
}

func (g *stubNumberGenerator) NextNumber(context.Context, uuid.UUID, billing.DocumentType) (string, error) {
	return g.number, nil
}

// testAuth injects JWT claim values the way the auth middleware would
func testAuth(companyID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTCompanyIDKey, companyID.String())
		c.Set(middleware.JWTUserIDKey, uuid.New().String())
		c.Next()
	}
}

func newPaymentTestServer(t *testing.T, companyID uuid.UUID, invoices *stubInvoiceRepo, payments *stubPaymentRepo) *gin.Engine {
	t.Helper()

	svc := appbilling.NewPaymentService(
		invoices, payments,
		&stubNumberGenerator{number: "BIO-PAY-2026-0001"},
		shared.NopTransactionManager{}, nil,
		appbilling.Config{NumberRetryAttempts: 3},
		zap.NewNop(),
	)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(testAuth(companyID))
	NewPaymentHandler(svc).RegisterRoutes(api)
	return r
}

func TestPaymentHandler_Record(t *testing.T) {
	companyID := uuid.New()
	inv, err := billing.NewInvoice(
		companyID, "BIO-INV-2026-0001", uuid.New(), "Nakumatt Holdings",
		valueobject.NewMoneyKESFromFloat(1000), time.Now(), nil,
	)
	require.NoError(t, err)
	require.NoError(t, inv.Send())

	invoices := &stubInvoiceRepo{invoice: inv}
	payments := &stubPaymentRepo{}
	r := newPaymentTestServer(t, companyID, invoices, payments)

	body := `{"invoice_id":"` + inv.ID.String() + `","amount":400,"method":"mobile_money","reference":"MPESA-REF-001"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "BIO-PAY-2026-0001", data["payment_number"])
	assert.Equal(t, "partial", data["invoice_status"])
	assert.Len(t, payments.allocations, 1)
	assert.True(t, invoices.invoice.BalanceDue.IntPart() == 600)
}

func TestPaymentHandler_Record_InvalidAmountIs422(t *testing.T) {
	companyID := uuid.New()
	inv, err := billing.NewInvoice(
		companyID, "BIO-INV-2026-0001", uuid.New(), "Nakumatt Holdings",
		valueobject.NewMoneyKESFromFloat(1000), time.Now(), nil,
	)
	require.NoError(t, err)

	r := newPaymentTestServer(t, companyID, &stubInvoiceRepo{invoice: inv}, &stubPaymentRepo{})

	body := `{"invoice_id":"` + inv.ID.String() + `","amount":-50,"method":"cash"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeInvalidAmount)
}

func TestPaymentHandler_Record_UnknownInvoiceIs404(t *testing.T) {
	companyID := uuid.New()
	r := newPaymentTestServer(t, companyID, &stubInvoiceRepo{}, &stubPaymentRepo{})

	body := `{"invoice_id":"` + uuid.NewString() + `","amount":100,"method":"cash"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeNotFound)
}

func TestPaymentHandler_Get(t *testing.T) {
	companyID := uuid.New()
	inv, err := billing.NewInvoice(
		companyID, "BIO-INV-2026-0001", uuid.New(), "Nakumatt Holdings",
		valueobject.NewMoneyKESFromFloat(1000), time.Now(), nil,
	)
	require.NoError(t, err)

	invoices := &stubInvoiceRepo{invoice: inv}
	payments := &stubPaymentRepo{}
	r := newPaymentTestServer(t, companyID, invoices, payments)

	body := `{"invoice_id":"` + inv.ID.String() + `","amount":250,"method":"bank_transfer"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	paymentID := payments.payments[0].ID

	req = httptest.NewRequest(http.MethodGet, "/api/v1/payments/"+paymentID.String(), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.NotNil(t, data["payment"])
	assert.Len(t, data["allocations"], 1)
}
