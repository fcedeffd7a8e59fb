package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqsmith/internal/auth"
	"reqsmith/internal/config"
	"reqsmith/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authTestRouter(tokens *auth.TokenManager) *gin.Engine {
	r := gin.New()
	r.GET("/protected", middleware.Auth(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"subject": middleware.GetSubject(c),
			"email":   middleware.GetEmail(c),
		})
	})
	return r
}

func TestAuth_ValidToken(t *testing.T) {
	tokens := auth.NewTokenManager(config.JWTConfig{
		Secret:            "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "reqsmith-test",
	})
	token, _, err := tokens.Issue("user-1", "user@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	authTestRouter(tokens).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user-1")
	assert.Contains(t, rec.Body.String(), "user@example.com")
}

func TestAuth_MissingHeader(t *testing.T) {
	tokens := auth.NewTokenManager(config.JWTConfig{Secret: "secret", AccessTokenExpiry: time.Hour})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	authTestRouter(tokens).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_BadToken(t *testing.T) {
	tokens := auth.NewTokenManager(config.JWTConfig{Secret: "secret", AccessTokenExpiry: time.Hour})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	authTestRouter(tokens).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
