package services

import (
	"errors"
	"net/http"

	"aneka-keramik/internal/apis/dtos"
	"aneka-keramik/internal/constants"
)

var (
	// ErrUnknownTool is returned when the model calls a function that was never declared.
	ErrUnknownTool = errors.New("model called an unknown tool")
	// ErrToolLoopExceeded is returned when the model keeps calling tools past the per-turn ceiling.
	ErrToolLoopExceeded = errors.New("tool-calling loop exceeded its iteration limit")
)

// ResponseError is an error that carries the HTTP status it should be answered with.
type ResponseError struct {
	Status  int
	Message string
	Errors  []dtos.ValidationErrorItem
}

func (e *ResponseError) Error() string {
	return e.Message
}

func NewResponseError(status int, message string) *ResponseError {
	return &ResponseError{Status: status, Message: message}
}

func NewValidationError(items ...dtos.ValidationErrorItem) *ResponseError {
	return &ResponseError{
		Status:  http.StatusBadRequest,
		Message: constants.MsgValidationError,
		Errors:  items,
	}
}

func BadRequest(message string) *ResponseError {
	return NewResponseError(http.StatusBadRequest, message)
}

func NotFound(message string) *ResponseError {
	return NewResponseError(http.StatusNotFound, message)
}
