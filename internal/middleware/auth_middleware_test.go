package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/internal/app/service"
	apperrors "github.com/ratethestore/ratethestore-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuthService resolves tokens from a fixed table.
type fakeAuthService struct {
	service.AuthService
	sessions map[string]*service.Session
	errs     map[string]error
}

func (f *fakeAuthService) VerifyToken(token string) (*service.Session, error) {
	if err, ok := f.errs[token]; ok {
		return nil, err
	}
	if s, ok := f.sessions[token]; ok {
		return s, nil
	}
	return nil, service.ErrInvalidToken
}

func setupMiddlewareTest() (*gin.Engine, *AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := &fakeAuthService{
		sessions: map[string]*service.Session{
			"admin-token": {UserID: 1, Role: model.RoleAdmin},
			"user-token":  {UserID: 2, Role: model.RoleNormalUser},
			"owner-token": {UserID: 3, Role: model.RoleStoreOwner},
		},
		errs: map[string]error{
			"expired-token": service.ErrExpiredToken,
			"broken-db":     errors.New("connection reset"),
		},
	}
	return router, NewAuthMiddleware(auth)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		session, ok := GetSession(c)
		require.True(t, ok)
		userID, _ := GetUserID(c)
		role, _ := GetUserRole(c)
		assert.Equal(t, session.UserID, userID)

		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{name: "Valid token", header: "Bearer user-token", wantStatus: http.StatusOK},
		{name: "Lowercase scheme", header: "bearer user-token", wantStatus: http.StatusOK},
		{name: "Missing header", header: "", wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthUnauthorized},
		{name: "Wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthTokenInvalid},
		{name: "Unknown token", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthTokenInvalid},
		{name: "Expired token", header: "Bearer expired-token", wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthTokenExpired},
		{name: "Storage failure", header: "Bearer broken-db", wantStatus: http.StatusInternalServerError, wantCode: apperrors.InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				body := decodeError(t, w)
				assert.False(t, body.Success)
				assert.Equal(t, tt.wantCode, body.Error)
				assert.NotContains(t, body.Message, "connection reset")
			}
		})
	}
}

func TestAuthMiddleware_RequireCapability(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()

	router.GET("/admin", authMiddleware.Authenticate(), authMiddleware.RequireCapability(service.CapAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/manage", authMiddleware.Authenticate(), authMiddleware.RequireCapability(service.CapManageStores), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/no-auth", authMiddleware.RequireCapability(service.CapAuthenticated), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
	}{
		{"Admin on admin route", "/admin", "admin-token", http.StatusOK},
		{"Normal user on admin route", "/admin", "user-token", http.StatusForbidden},
		{"Store owner on admin route", "/admin", "owner-token", http.StatusForbidden},
		{"Store owner manages stores", "/manage", "owner-token", http.StatusOK},
		{"Normal user cannot manage stores", "/manage", "user-token", http.StatusForbidden},
		{"Capability without session", "/no-auth", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusForbidden {
				body := decodeError(t, w)
				assert.Equal(t, apperrors.AuthzForbidden, body.Error)
				assert.Equal(t, "forbidden", body.Message)
			}
		})
	}
}
