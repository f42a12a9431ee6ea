package errors

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a client-safe classification of an error
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

// ParseError classifies raw storage errors so driver text never reaches
// the client. context names the operation, e.g. "store" or "delete user".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return internal(context)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Status:  http.StatusNotFound,
			Code:    notFoundCode(context),
			Message: notFoundMessage(context),
		}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return parseDuplicateKeyError(err.Error())
	}

	errLower := strings.ToLower(err.Error())

	// postgres 23505 / sqlite UNIQUE
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}

	// postgres 23503
	if errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(errLower, "foreign key constraint") {
		return ErrorInfo{
			Status:  http.StatusBadRequest,
			Code:    ResourceConflict,
			Message: "referenced record does not exist or is still in use",
		}
	}

	// postgres 23502
	if strings.Contains(errLower, "null value") && strings.Contains(errLower, "not-null constraint") {
		return ErrorInfo{
			Status:  http.StatusBadRequest,
			Code:    ValidationRequired,
			Message: "a required field is missing",
		}
	}

	// postgres 23514
	if errors.Is(err, gorm.ErrCheckConstraintViolated) || strings.Contains(errLower, "check constraint") {
		if strings.Contains(errLower, "rating") {
			return ErrorInfo{
				Status:  http.StatusBadRequest,
				Code:    RatingInvalidValue,
				Message: "rating must be between 1 and 5",
			}
		}
		return ErrorInfo{
			Status:  http.StatusBadRequest,
			Code:    ValidationInvalidInput,
			Message: "invalid input",
		}
	}

	return internal(context)
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "email") {
		return ErrorInfo{
			Status:  http.StatusBadRequest,
			Code:    AuthEmailAlreadyExists,
			Message: "Email already exists",
		}
	}

	return ErrorInfo{
		Status:  http.StatusConflict,
		Code:    ResourceAlreadyExists,
		Message: "record already exists",
	}
}

func internal(context string) ErrorInfo {
	return ErrorInfo{
		Status:  http.StatusInternalServerError,
		Code:    InternalServerError,
		Message: defaultErrorMessage(context),
	}
}

func notFoundCode(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "store"):
		return StoreNotFound
	case strings.Contains(contextLower, "user"):
		return UserNotFound
	default:
		return ResourceNotFound
	}
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "store"):
		return "store not found"
	case strings.Contains(contextLower, "user"):
		return "user not found"
	default:
		return "resource not found"
	}
}

func defaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "create"):
		return "failed to create record, please try again later"
	case strings.Contains(contextLower, "update"):
		return "failed to update record, please try again later"
	case strings.Contains(contextLower, "delete"):
		return "failed to delete record, please try again later"
	default:
		return "internal server error"
	}
}

// ParseAndRespond classifies err and writes the matching response.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, err error, context string) {
	info := ParseError(err, context)
	c.JSON(info.Status, ErrorResponse{
		Success: false,
		Error:   info.Code,
		Message: info.Message,
	})
}
