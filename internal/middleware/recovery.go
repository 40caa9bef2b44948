package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"aneka-keramik/internal/apis/dtos"
	"aneka-keramik/internal/constants"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CustomRecoveryMiddleware handles panics and returns a proper response DTO
func CustomRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logrus.WithFields(logrus.Fields{
					"panic":  err,
					"method": c.Request.Method,
					"path":   c.Request.URL.Path,
				}).Errorf("Recovered from panic\n%s", debug.Stack())

				errorMsg := constants.MsgInternalError
				if gin.IsDebugging() {
					errorMsg = fmt.Sprintf("%s: %v", constants.MsgInternalError, err)
				}

				c.AbortWithStatusJSON(http.StatusInternalServerError, dtos.Response{
					Success: false,
					Error:   &dtos.ErrorBody{Message: errorMsg},
				})
			}
		}()
		c.Next()
	}
}
