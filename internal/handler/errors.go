package handler

import (
	"errors"
	"net/http"

	"bcard/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeServiceError maps a service error to its status code and a structured
// body. Unexpected errors are logged and reported without detail.
func writeServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		validationErr *service.ValidationError
		invalidErr    *service.InvalidCredentialsError
		lockedErr     *service.AccountLockedError
	)

	switch {
	case errors.As(err, &validationErr):
		body := gin.H{"error": "validation", "message": validationErr.Error()}
		if validationErr.Field != "" {
			body["field"] = validationErr.Field
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "conflict", "message": err.Error()})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})
	case errors.As(err, &invalidErr):
		body := gin.H{"error": "invalid_credentials", "message": invalidErr.Error()}
		if invalidErr.Counted {
			body["attempts_remaining"] = invalidErr.AttemptsRemaining
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &lockedErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           "account_locked",
			"message":         lockedErr.Error(),
			"suspended_until": lockedErr.Until,
		})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": err.Error()})
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "Internal server error"})
	}
}

func writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": "Invalid request: " + err.Error()})
}
