package middleware

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/internal/app/service"
	"github.com/ratethestore/ratethestore-backend/internal/errors"
)

// Context keys for session information
const (
	SessionKey  = "session"
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"
)

type AuthMiddleware struct {
	authService service.AuthService
}

func NewAuthMiddleware(authService service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Authenticate requires a valid bearer token and stores the caller's
// session, re-read from the user record, in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthUnauthorized, "authentication required")
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "invalid authorization header")
			return
		}

		session, err := m.authService.VerifyToken(parts[1])
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			switch {
			case stderrors.Is(err, service.ErrExpiredToken):
				errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "token has expired")
			case stderrors.Is(err, service.ErrInvalidToken):
				errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "invalid token")
			default:
				log.Error("Failed to resolve session", err)
				errors.AbortWithError(c, http.StatusInternalServerError, errors.InternalServerError, "internal server error")
			}
			return
		}

		c.Set(SessionKey, session)
		c.Set(UserIDKey, session.UserID)
		c.Set(UserRoleKey, session.Role)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": session.UserID,
			"role":    session.Role,
		})

		c.Next()
	}
}

// RequireCapability must run after Authenticate. Denials are 403 with a
// generic body.
func (m *AuthMiddleware) RequireCapability(capability service.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		session, _ := GetSession(c)
		if err := service.Authorize(session, capability); err != nil {
			fields := map[string]interface{}{
				"capability": capability.String(),
				"path":       c.Request.URL.Path,
			}
			if session != nil {
				fields["user_id"] = session.UserID
				fields["user_role"] = session.Role
			}
			log.Warn("Insufficient permissions", fields)
			errors.AbortWithError(c, http.StatusForbidden, errors.AuthzForbidden, "forbidden")
			return
		}

		c.Next()
	}
}

// GetSession extracts the authenticated session from context
func GetSession(c *gin.Context) (*service.Session, bool) {
	value, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*service.Session)
	return session, ok && session != nil
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUserRole extracts user role from context
func GetUserRole(c *gin.Context) (model.UserRole, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	r, ok := role.(model.UserRole)
	return r, ok
}
