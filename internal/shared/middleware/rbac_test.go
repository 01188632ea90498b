package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-picking-backend/pkg/jwt"
)

func newTestRouter(jwtManager *jwt.Manager, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	group := router.Group("/")
	group.Use(AuthMiddleware(jwtManager))
	if len(roles) > 0 {
		group.Use(RequireRole(roles...))
	}
	group.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c), "role": Role(c)})
	})

	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	m := jwt.NewManager("test-secret", 15*time.Minute, time.Hour)

	token, err := m.GenerateAccessToken(7, "alice", "staff")
	require.NoError(t, err)

	router := newTestRouter(m)

	t.Run("valid token passes", func(t *testing.T) {
		w := doRequest(router, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":7`)
	})

	t.Run("missing header", func(t *testing.T) {
		w := doRequest(router, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := doRequest(router, "Token "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := doRequest(router, "Bearer garbage")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		refresh, err := m.GenerateRefreshToken(7)
		require.NoError(t, err)
		w := doRequest(router, "Bearer "+refresh)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	m := jwt.NewManager("test-secret", 15*time.Minute, time.Hour)
	router := newTestRouter(m, "admin", "superadmin")

	tokenFor := func(role string) string {
		token, err := m.GenerateAccessToken(1, "u", role)
		require.NoError(t, err)
		return token
	}

	t.Run("admin allowed", func(t *testing.T) {
		w := doRequest(router, "Bearer "+tokenFor("admin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("superadmin allowed", func(t *testing.T) {
		w := doRequest(router, "Bearer "+tokenFor("superadmin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("staff forbidden", func(t *testing.T) {
		w := doRequest(router, "Bearer "+tokenFor("staff"))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
