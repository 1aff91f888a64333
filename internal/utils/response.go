package utils

import "net/http"

// Response represents a standardized response structure.
// It includes a status code, a message, and data.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"` // Always present, null when empty
}

// ErrorBody is the flat error shape partners and the web UI read from the
// access endpoints.
type ErrorBody struct {
	Error string `json:"error"`
}

// NewResponse creates a new Response instance.
func NewResponse(status int, message string, data interface{}) Response {
	return Response{
		Status:  status,
		Message: message,
		Data:    data,
	}
}

// NewSuccessResponse creates a new success Response instance.
func NewSuccessResponse(message string, data interface{}) Response {
	return NewResponse(http.StatusOK, message, data)
}

// NewErrorResponse creates a new error Response instance with nil data.
func NewErrorResponse(status int, message string) Response {
	return NewResponse(status, message, nil)
}
