package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-Id"

// requestID tags each request with the X-Request-Id of the caller or a
// new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// quietPaths are polled by monitoring and logged at trace level.
var quietPaths = map[string]bool{"/healthz": true, "/metrics": true}

func accessLevel(path string, status int) logrus.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return logrus.ErrorLevel
	case status >= http.StatusBadRequest:
		return logrus.WarnLevel
	case quietPaths[path]:
		return logrus.TraceLevel
	default:
		return logrus.DebugLevel
	}
}

// ginLogger writes one access log line per request through logger.
func ginLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Handlers may rewrite the path.
		path := c.Request.URL.Path
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		entry := logger.WithFields(logrus.Fields{
			"statusCode": status,
			"latency":    latency.Round(time.Millisecond).String(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      c.Request.URL.RawQuery,
			"dataLength": max(c.Writer.Size(), 0),
			"requestID":  c.GetString("requestID"),
		})

		msg := fmt.Sprintf("%s %s %d", c.Request.Method, path, status)
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			msg = errs.String()
		}
		entry.Log(accessLevel(path, status), msg)
	}
}

// fail writes {error} with code and records err for the access log.
func fail(c *gin.Context, code int, err error) {
	c.IndentedJSON(code, gin.H{"error": err.Error()})
	_ = c.Error(err)
}

func success(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, gin.H{"msg": "success!"})
}
