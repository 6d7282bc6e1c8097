package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the error envelope returned by the API. Code mirrors the HTTP
// status so clients behind proxies that rewrite statuses can still branch on
// the body.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func reply(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Code: status, Message: msg})
}

// BadRequest rejects a malformed or invalid submission.
func BadRequest(c *gin.Context, msg string) {
	reply(c, http.StatusBadRequest, msg)
}

// Unauthorized rejects a request with missing or bad credentials.
func Unauthorized(c *gin.Context, msg string) {
	reply(c, http.StatusUnauthorized, msg)
}

// Forbidden rejects an authenticated request lacking permission.
func Forbidden(c *gin.Context, msg string) {
	reply(c, http.StatusForbidden, msg)
}

// NotFound reports a missing resource.
func NotFound(c *gin.Context, msg string) {
	reply(c, http.StatusNotFound, msg)
}

// ServerError reports an internal failure with an explicit message.
func ServerError(c *gin.Context, msg string) {
	reply(c, http.StatusInternalServerError, msg)
}

// Error reports an unclassified internal failure.
func Error(c *gin.Context, err error) {
	reply(c, http.StatusInternalServerError, err.Error())
}
