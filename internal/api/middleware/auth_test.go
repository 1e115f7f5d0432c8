package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/api/middleware"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/auth"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
)

const secret = "middleware-secret"

func setupAuthEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", middleware.AuthMiddleware(secret))
	group.GET("/me", func(c *gin.Context) {
		userID, _ := middleware.UserIDFromContext(c)
		role, _ := middleware.RoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
	})
	group.GET("/seller-only", middleware.RoleMiddleware(models.RoleSeller), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func bearer(t *testing.T, userID string, role models.Role) string {
	token, err := auth.GenerateJWT(userID, role, secret, time.Minute)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthMiddleware(t *testing.T) {
	router := setupAuthEngine()

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid", bearer(t, "buyer-1", models.RoleBuyer), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.code, w.Code)
			if tc.code == http.StatusOK {
				assert.JSONEq(t, `{"user_id":"buyer-1","role":"buyer"}`, w.Body.String())
			}
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	router := setupAuthEngine()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/seller-only", nil)
	req.Header.Set("Authorization", bearer(t, "buyer-1", models.RoleBuyer))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/seller-only", nil)
	req.Header.Set("Authorization", bearer(t, "seller-1", models.RoleSeller))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CORSMiddleware("https://homes.example.com"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/x", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://homes.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
