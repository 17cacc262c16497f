package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPRecorder receives one observation per request.
type HTTPRecorder interface {
	TrackActive(method string) (done func())
	RecordHTTPRequest(method, path string, statusCode int, d time.Duration)
}

// Metrics records request counts and latency.  Paths are labelled by route
// template so IDs do not explode label cardinality; unmatched routes share
// one label.
func Metrics(rec HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		done := rec.TrackActive(c.Request.Method)
		start := time.Now()
		c.Next()
		done()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		rec.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

//Personal.AI order the ending
