package handler

import (
	"errors"
	"net/http"

	domainLocker "smart-locker/internal/domain/locker"
	"smart-locker/internal/domain/user"
	"smart-locker/internal/infrastructure/hardware"
	"smart-locker/internal/logger"
	"smart-locker/internal/middleware"
	"smart-locker/internal/usecase/admin"
	appErrors "smart-locker/pkg/errors"
	"smart-locker/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondWithError maps domain errors onto HTTP status codes. Everything
// unrecognized is a 500 and gets logged with its request id.
func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, user.ErrInvalidBirthday),
		errors.Is(err, user.ErrEmptyPassword),
		errors.Is(err, domainLocker.ErrEmptyItem),
		errors.Is(err, appErrors.ErrInvalidInput):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, user.ErrIdentityMismatch),
		errors.Is(err, user.ErrCodeMismatch),
		errors.Is(err, appErrors.ErrInvalidToken),
		errors.Is(err, appErrors.ErrUnauthorized):
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, appErrors.ErrForbidden):
		utils.ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, domainLocker.ErrLockerNotFound),
		errors.Is(err, admin.ErrRowNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, user.ErrUsernameTaken),
		errors.Is(err, user.ErrDuplicateIdentity),
		errors.Is(err, domainLocker.ErrAlreadyOccupied),
		errors.Is(err, domainLocker.ErrNotOwner),
		errors.Is(err, domainLocker.ErrLockerEmpty),
		errors.Is(err, domainLocker.ErrHoldLimitReached):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, admin.ErrTableNotAllowed),
		errors.Is(err, admin.ErrColumnNotAllowed):
		utils.ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, hardware.ErrChannelBusy),
		errors.Is(err, hardware.ErrUnknownChannel),
		errors.Is(err, hardware.ErrHardwareFault):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, err.Error())
	default:
		var appErr *appErrors.AppError
		if errors.As(err, &appErr) {
			utils.ErrorResponse(c, http.StatusBadRequest, appErr.Message)
			return
		}

		logger.Error("Internal server error",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}

// caller extracts the authenticated identity set by the auth
// middleware; it writes the error response itself when missing.
func caller(c *gin.Context) (uuid.UUID, string, bool) {
	id, exists := c.Get("userID")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, "", false
	}

	userID, okID := id.(uuid.UUID)
	username := c.GetString("username")
	if !okID || username == "" {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Invalid user identifier")
		return uuid.Nil, "", false
	}
	return userID, username, true
}
