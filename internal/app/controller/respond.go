package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/ratethestore/ratethestore-backend/internal/app/service"
	apperrors "github.com/ratethestore/ratethestore-backend/internal/errors"
	"github.com/ratethestore/ratethestore-backend/internal/middleware"
)

// SuccessResponse acknowledges mutations that return no resource.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// respondServiceError maps service sentinel errors to HTTP responses.
// Anything unrecognized is logged and answered with a generic message.
func respondServiceError(c *gin.Context, err error, context string) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrInvalidRating):
		apperrors.BadRequest(c, apperrors.RatingInvalidValue, err.Error())
	case errors.Is(err, service.ErrInvalidRole):
		apperrors.BadRequest(c, apperrors.ValidationInvalidRole, err.Error())
	case errors.Is(err, service.ErrWeakPassword):
		apperrors.BadRequest(c, apperrors.AuthWeakPassword, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
	case errors.Is(err, service.ErrEmailAlreadyExists):
		apperrors.BadRequest(c, apperrors.AuthEmailAlreadyExists, "Email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		apperrors.BadRequest(c, apperrors.AuthInvalidCredentials, "Invalid credentials")
	case errors.Is(err, service.ErrCurrentPasswordIncorrect):
		apperrors.BadRequest(c, apperrors.AuthPasswordIncorrect, "Current password incorrect")
	case errors.Is(err, service.ErrExpiredToken):
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "token has expired")
	case errors.Is(err, service.ErrInvalidToken):
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "invalid token")
	case errors.Is(err, service.ErrForbidden):
		apperrors.Forbidden(c)
	case errors.Is(err, service.ErrUserNotFound):
		apperrors.NotFound(c, apperrors.UserNotFound, "user not found")
	case errors.Is(err, service.ErrStoreNotFound):
		apperrors.NotFound(c, apperrors.StoreNotFound, "store not found")
	case errors.Is(err, service.ErrOwnerNotFound):
		apperrors.NotFound(c, apperrors.OwnerNotFound, err.Error())
	default:
		log.Error("Request failed", err, map[string]interface{}{
			"context": context,
		})
		apperrors.ParseAndRespond(c, err, context)
	}
}

// respondBindingError reports malformed bodies or query strings, listing
// the offending fields when the validator produced them.
func respondBindingError(c *gin.Context, err error) {
	log := middleware.GetLoggerFromContext(c)
	log.Warn("Invalid request", map[string]interface{}{
		"error": err.Error(),
	})

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[lowerFirst(fe.Field())] = describeTag(fe)
		}
		apperrors.RespondWithValidationError(c, fields)
		return
	}
	apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "malformed request")
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// parseIDParam reads a positive integer path parameter or responds 400.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// requireSession returns the session set by AuthMiddleware or responds 401.
func requireSession(c *gin.Context) (*service.Session, bool) {
	session, ok := middleware.GetSession(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return nil, false
	}
	return session, true
}
