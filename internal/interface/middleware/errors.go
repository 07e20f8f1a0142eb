package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dogshouse/dogs-api/pkg/apperror"
	"github.com/dogshouse/dogs-api/pkg/validation"
)

// ErrorHandler is the single place errors become responses. Handlers attach
// failures with c.Error and abort; this middleware normalizes the last one
// and renders it. Development responses carry the cause and a stack trace,
// production responses only the status word and a safe message.
func ErrorHandler(log *logrus.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		last := c.Errors.Last().Err
		appErr, operational := apperror.Normalize(last)

		entry := log.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     appErr.Code,
		})
		if operational {
			entry.WithError(last).Debug("request failed")
		} else {
			entry.WithError(last).Error("unexpected error")
		}

		body := gin.H{
			"status":  apperror.StatusWord(appErr.Code),
			"message": appErr.Message,
		}
		if !production {
			if details := validation.ToDetails(last); details != nil {
				body["error"] = details
			} else {
				body["error"] = last.Error()
			}
			body["stack"] = string(debug.Stack())
		}
		c.JSON(appErr.Code, body)
	}
}

// NotFoundHandler serves unknown routes in the same envelope as every other
// failure.
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(404, gin.H{
			"status":  "fail",
			"message": "Can't find " + c.Request.URL.Path + " on this server!",
		})
	}
}
