package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/huangang/bigbrother/internal/services"
	"github.com/huangang/bigbrother/pkg/response"
)

// serviceError maps a service error onto an HTTP status: validation failures
// become 400, bad credentials 401, missing login permission 403, missing
// records 404. Anything else is an internal error.
func serviceError(c *gin.Context, err error) {
	switch {
	case services.IsValidationError(err):
		response.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrLoginNotAllowed):
		response.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		response.NotFound(c, err.Error())
	default:
		response.Error(c, err)
	}
}
