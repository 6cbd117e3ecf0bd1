package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"auth_service/internal/model"
	"auth_service/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors to a status and stable code. Anything
// unrecognised is logged and reported as an internal error.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status, code, msg := http.StatusInternalServerError, model.CodeInternal, "internal server error"

	switch {
	case errors.Is(err, service.ErrUserAlreadyExists):
		status, code, msg = http.StatusConflict, model.CodeDuplicateUser, service.ErrUserAlreadyExists.Error()
	case errors.Is(err, service.ErrRoleAlreadyExists):
		status, code, msg = http.StatusConflict, model.CodeDuplicateRole, service.ErrRoleAlreadyExists.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		status, code, msg = http.StatusUnauthorized, model.CodeInvalidCredentials, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrUnauthorized):
		status, code, msg = http.StatusUnauthorized, model.CodeUnauthorized, service.ErrUnauthorized.Error()
	case errors.Is(err, service.ErrInvalidRoleName), errors.Is(err, service.ErrPasswordTooLong):
		status, code, msg = http.StatusBadRequest, model.CodeInvalidRequest, err.Error()
	case errors.Is(err, service.ErrForbidden):
		status, code, msg = http.StatusForbidden, model.CodeForbidden, service.ErrForbidden.Error()
	default:
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, model.ErrorResponse{Error: msg, Code: code})
}

func respondBadRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, model.ErrorResponse{
		Error: "invalid request: " + err.Error(),
		Code:  model.CodeInvalidRequest,
	})
}
