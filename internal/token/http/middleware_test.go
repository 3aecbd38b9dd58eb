package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	tokenDomain "github.com/geocrest/gateway/internal/token/domain"
	tokenService "github.com/geocrest/gateway/internal/token/service"
)

// mockTokenService is a mock implementation of TokenService for testing.
type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) Create(groupName, clientID string, ttl time.Duration) (*tokenDomain.Token, error) {
	args := m.Called(groupName, clientID, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Token), args.Error(1)
}

func (m *mockTokenService) Encode(token *tokenDomain.Token) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

func (m *mockTokenService) Decode(encoded string, req tokenDomain.RequestInfo) *tokenDomain.Token {
	args := m.Called(encoded, req)
	return args.Get(0).(*tokenDomain.Token)
}

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouter(tokens tokenService.TokenService, groups []string) *gin.Engine {
	router := gin.New()
	router.Use(TokenAuthorizationMiddleware(tokens, groups, createTestLogger()))
	handler := func(c *gin.Context) {
		token, ok := GetToken(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"group": token.GroupName})
	}
	router.GET("/v1/catalog", handler)
	router.POST("/v1/catalog", handler)
	return router
}

func TestTokenAuthorizationMiddleware_Success(t *testing.T) {
	tokens := &mockTokenService{}
	tokens.On("Decode", "abc", mock.Anything).
		Return(&tokenDomain.Token{GroupName: "planning", IsValid: true})

	router := newRouter(tokens, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/catalog?token=abc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "planning")
	tokens.AssertExpectations(t)
}

func TestTokenAuthorizationMiddleware_InvalidToken(t *testing.T) {
	tokens := &mockTokenService{}
	tokens.On("Decode", "", mock.Anything).Return(&tokenDomain.Token{})

	router := newRouter(tokens, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/catalog", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, InvalidTokenMessage, w.Body.String())
}

func TestTokenAuthorizationMiddleware_GroupNotAllowed(t *testing.T) {
	tokens := &mockTokenService{}
	tokens.On("Decode", "abc", mock.Anything).
		Return(&tokenDomain.Token{GroupName: "public", IsValid: true})

	router := newRouter(tokens, []string{"planning", "utilities"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/catalog", nil)
	req.Header.Set("token", "abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, UnauthorizedMessage, w.Body.String())
}

func TestTokenAuthorizationMiddleware_PassesRequestInfo(t *testing.T) {
	tokens := &mockTokenService{}
	tokens.On("Decode", "abc", tokenDomain.RequestInfo{
		RemoteAddr: "192.0.2.1",
		Referer:    "https://maps.example.com/",
	}).Return(&tokenDomain.Token{GroupName: "planning", IsValid: true})

	router := newRouter(tokens, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/catalog?token=abc", nil)
	req.Header.Set("Referer", "https://maps.example.com/")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	tokens.AssertExpectations(t)
}

func TestExtractToken_Order(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		header string
		form   string
		want   string
	}{
		{"query wins", "q", "h", "f", "q"},
		{"header before form", "", "h", "f", "h"},
		{"form last", "", "", "f", "f"},
		{"none", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/v1/catalog"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			body := url.Values{}
			if tt.form != "" {
				body.Set("token", tt.form)
			}
			req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.header != "" {
				req.Header.Set("token", tt.header)
			}

			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = req

			assert.Equal(t, tt.want, ExtractToken(c))
		})
	}
}

func TestTokenAuthorizationMiddleware_RealService(t *testing.T) {
	tokens, err := tokenService.NewTokenService("integration-key")
	require.NoError(t, err)

	created, err := tokens.Create("planning", "ref.maps.example.com", time.Hour)
	require.NoError(t, err)
	encoded, err := tokens.Encode(created)
	require.NoError(t, err)

	router := newRouter(tokens, []string{"planning"})

	t.Run("FormToken_RefererMatches", func(t *testing.T) {
		body := url.Values{"token": {encoded}}
		req := httptest.NewRequest(http.MethodPost, "/v1/catalog", strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Referer", "https://maps.example.com/viewer")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("RefererMismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/catalog?token="+encoded, nil)
		req.Header.Set("Referer", "https://other.example.org/")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, InvalidTokenMessage, w.Body.String())
	})
}

func TestGetToken_Empty(t *testing.T) {
	token, ok := GetToken(context.Background())
	assert.False(t, ok)
	assert.Nil(t, token)
}
