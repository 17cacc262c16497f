package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/smilescombine/internal/interfaces/http/middleware"
	"github.com/turtacn/smilescombine/pkg/errors"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse wraps ErrorBody under "error".
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// respondError maps err to its HTTP status.  Server-side failures are logged
// and reported with the code's generic message only.
func respondError(c *gin.Context, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)

	body := ErrorBody{
		Code:      code.String(),
		RequestID: middleware.GetRequestID(c),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			logging.String("path", c.Request.URL.Path),
			logging.String("request_id", body.RequestID),
			logging.Err(err))
		body.Message = errors.DefaultMessageForCode(code)
	} else {
		var ae *errors.AppError
		if errors.As(err, &ae) {
			body.Message = ae.Message
			body.Detail = ae.Detail
		} else {
			body.Message = err.Error()
		}
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: body})
}

func badRequest(err error) error {
	return errors.New(errors.ErrCodeBadRequest, "invalid request body").WithDetail(err.Error())
}

// parseLimit reads ?limit=, clamped to (0, maxListLimit].
func parseLimit(c *gin.Context) int {
	limit := defaultListLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit
}

//Personal.AI order the ending
