package handlers

import (
	"context"
	"errors"
	"net/http"

	"aneka-keramik/internal/apis/dtos"
	"aneka-keramik/internal/constants"
	"aneka-keramik/internal/repositories"
	"aneka-keramik/internal/services"
	"aneka-keramik/pkg/llm"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError is the single place where service errors become HTTP answers.
func respondError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": status,
		}).Error("Request failed")
	}
	c.JSON(status, dtos.Response{Success: false, Error: body})
}

func errorResponse(err error) (int, *dtos.ErrorBody) {
	var responseErr *services.ResponseError
	switch {
	case errors.As(err, &responseErr):
		return responseErr.Status, &dtos.ErrorBody{Message: responseErr.Message, Errors: responseErr.Errors}
	case errors.Is(err, services.ErrUnknownTool):
		return http.StatusBadRequest, &dtos.ErrorBody{Message: err.Error()}
	case errors.Is(err, llm.ErrRateLimited):
		return http.StatusTooManyRequests, &dtos.ErrorBody{Message: constants.MsgProviderRateLimited}
	case errors.Is(err, repositories.ErrSessionConflict):
		return http.StatusConflict, &dtos.ErrorBody{Message: constants.MsgSessionConflict}
	case errors.Is(err, services.ErrToolLoopExceeded):
		return http.StatusBadGateway, &dtos.ErrorBody{Message: constants.MsgRecommendationLoop}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, &dtos.ErrorBody{Message: constants.MsgRecommendationSlow}
	default:
		return http.StatusInternalServerError, &dtos.ErrorBody{Message: constants.MsgInternalError}
	}
}

// respondBindError answers a request body that failed to bind.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dtos.Response{
		Success: false,
		Error:   &dtos.ErrorBody{Message: constants.MsgValidationError, Errors: bindErrorItems(err)},
	})
}
