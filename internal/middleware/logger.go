package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorLogger logs failed requests and recovers from handler panics.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				logRequestError(c, start, "panic", err.Error())
				log.Printf("stack: %s", debug.Stack())

				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "Internal Server Error",
					},
				})
				c.Abort()
				return
			}

			if len(c.Errors) > 0 {
				for _, err := range c.Errors {
					logRequestError(c, start, "handler_error", err.Error())
				}
				return
			}

			if c.Writer.Status() >= http.StatusInternalServerError {
				logRequestError(c, start, "http_error", fmt.Sprintf("status=%d", c.Writer.Status()))
			}
		}()

		c.Next()
	}
}

func logRequestError(c *gin.Context, start time.Time, kind, msg string) {
	log.Printf("[%s] %s %s status=%d dur=%s err=%s",
		kind,
		c.Request.Method,
		c.Request.URL.Path,
		c.Writer.Status(),
		time.Since(start),
		msg,
	)
}
