package response

import (
	"net/http"

	appErrors "github.com/domainlens/whoisproxy/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ErrorBody is the failure payload: an error summary plus the diagnostic
// text of the underlying cause. Lookup failures intentionally carry the
// upstream error messages in Details so callers can see why both tiers failed.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// JSON writes the payload as-is with the provided status code.
// Successful lookups return the result object itself, without an envelope.
func JSON(c *gin.Context, statusCode int, payload interface{}) {
	c.JSON(statusCode, payload)
}

// OK writes the payload as-is with status 200.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, ErrorBody{
		Error:   appErr.Message,
		Details: appErr.Details(),
	})
}

// AbortWithError writes the error payload and stops the handler chain.
// Used by middleware that rejects a request before routing.
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
