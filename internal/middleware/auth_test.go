package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/requestdata"
)

const testSecret = "unit-test-secret"

func newTestMiddleware(t *testing.T) *AuthMiddleware {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)
	log, err := logger.New("development")
	require.NoError(t, err)
	am, err := NewAuthMiddleware(log)
	require.NoError(t, err)
	return am
}

func mintToken(t *testing.T, role string, barangayID string) string {
	t.Helper()
	claims := tokenClaims{
		Role:       role,
		BarangayID: barangayID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func testRouter(am *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	api := router.Group("/api")
	api.Use(am.RequireAuth())
	api.GET("/barangays", ok)
	router.GET("/api/files/:id/download", am.RequireAuthWithQueryToken(), ok)
	return router
}

func TestRequireAuthAcceptsBearerHeader(t *testing.T) {
	router := testRouter(newTestMiddleware(t))
	token := mintToken(t, requestdata.RoleAssessor, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/barangays", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthRejectsQueryToken(t *testing.T) {
	router := testRouter(newTestMiddleware(t))
	token := mintToken(t, requestdata.RoleAssessor, "")

	// Ordinary routes never read the token from the query string; those
	// URLs end up in access logs.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/barangays?token="+token, nil)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDownloadRouteAcceptsQueryToken(t *testing.T) {
	router := testRouter(newTestMiddleware(t))
	token := mintToken(t, requestdata.RoleBLGU, uuid.NewString())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/files/"+uuid.NewString()+"/download?token="+token, nil)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthRejectsUnknownRole(t *testing.T) {
	router := testRouter(newTestMiddleware(t))
	token := mintToken(t, "superadmin", "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/barangays", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsBLGUWithoutBarangay(t *testing.T) {
	router := testRouter(newTestMiddleware(t))
	token := mintToken(t, requestdata.RoleBLGU, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/barangays", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
