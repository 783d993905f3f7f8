package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bizbooks/backend/internal/infrastructure/auth"
	"github.com/bizbooks/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWTTestService(accessExpiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "middleware-test-secret",
		AccessTokenExpiration:  accessExpiration,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "bizbooks-test",
	})
}

func newJWTTestRouter(svc *auth.JWTService) *gin.Engine {
	r := gin.New()
	r.Use(JWTAuthMiddleware(svc))
	r.GET("/api/v1/invoices", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"company_id": GetJWTCompanyID(c),
			"user_id":    GetJWTUserID(c),
			"username":   GetJWTUsername(c),
		})
	})
	r.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	r := newJWTTestRouter(newJWTTestService(time.Hour))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_SkipPath(t *testing.T) {
	r := newJWTTestRouter(newJWTTestService(time.Hour))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newJWTTestService(time.Hour)
	r := newJWTTestRouter(svc)

	companyID := uuid.New()
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(companyID, userID, "jane.accounts")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, companyID.String(), body["company_id"])
	assert.Equal(t, userID.String(), body["user_id"])
	assert.Equal(t, "jane.accounts", body["username"])
}

func TestJWTAuthMiddleware_ExpiredToken(t *testing.T) {
	issuer := newJWTTestService(-time.Minute)
	r := newJWTTestRouter(newJWTTestService(time.Hour))

	pair, err := issuer.GenerateTokenPair(uuid.New(), uuid.New(), "jane.accounts")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_TOKEN_EXPIRED")
}

func TestJWTAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	svc := newJWTTestService(time.Hour)
	r := newJWTTestRouter(svc)

	pair, err := svc.GenerateTokenPair(uuid.New(), uuid.New(), "jane.accounts")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_MalformedHeader(t *testing.T) {
	r := newJWTTestRouter(newJWTTestService(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	req.Header.Set("Authorization", "Token abc123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
