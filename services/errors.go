package services

import (
	"fmt"
	"net/http"
)

type AppError struct {
	HTTPCode int
	Message  string
	Data     interface{}
	Err      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newAppError(httpCode int, message string, err error) *AppError {
	return &AppError{HTTPCode: httpCode, Message: message, Err: err}
}

func newAppErrorWithData(httpCode int, message string, data interface{}, err error) *AppError {
	return &AppError{HTTPCode: httpCode, Message: message, Data: data, Err: err}
}

// The error taxonomy: validation, conflict, and not-found are surfaced
// synchronously with a distinct code each; everything else is internal.

func newValidationError(message string) *AppError {
	return newAppError(http.StatusBadRequest, message, nil)
}

func newConflictError(message string) *AppError {
	return newAppError(http.StatusConflict, message, nil)
}

func newNotFoundError(message string) *AppError {
	return newAppError(http.StatusNotFound, message, nil)
}

func newInternalError(message string, err error) *AppError {
	return newAppError(http.StatusInternalServerError, message, err)
}
