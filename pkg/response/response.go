package response

import (
	"net/http"
)

// Response represents the standard API response structure
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo represents error details in the response
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Error codes
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"

	// Purchase errors
	ErrCodeValidationFailed           = "VALIDATION_FAILED"
	ErrCodePaymentFailed              = "PAYMENT_FAILED"
	ErrCodeSeatReservationFailed      = "SEAT_RESERVATION_FAILED"
	ErrCodeSeatReservationUnavailable = "SEAT_RESERVATION_UNAVAILABLE"
	ErrCodeTicketLimitExceeded        = "TICKET_LIMIT_EXCEEDED"
	ErrCodeAdultTicketRequired        = "ADULT_TICKET_REQUIRED"
	ErrCodeInvalidTicketType          = "INVALID_TICKET_TYPE"
	ErrCodeNoTicketsSelected          = "NO_TICKETS_SELECTED"
)

// ErrorCodeToHTTPStatus maps error codes to HTTP status codes
var ErrorCodeToHTTPStatus = map[string]int{
	ErrCodeBadRequest:                 http.StatusBadRequest,
	ErrCodeUnauthorized:               http.StatusUnauthorized,
	ErrCodeNotFound:                   http.StatusNotFound,
	ErrCodeInternalError:              http.StatusInternalServerError,
	ErrCodeServiceUnavailable:         http.StatusServiceUnavailable,
	ErrCodeTooManyRequests:            http.StatusTooManyRequests,
	ErrCodeValidationFailed:           http.StatusBadRequest,
	ErrCodeTicketLimitExceeded:        http.StatusBadRequest,
	ErrCodeAdultTicketRequired:        http.StatusBadRequest,
	ErrCodeInvalidTicketType:          http.StatusBadRequest,
	ErrCodeNoTicketsSelected:          http.StatusBadRequest,
	ErrCodePaymentFailed:              http.StatusPaymentRequired,
	ErrCodeSeatReservationFailed:      http.StatusConflict,
	ErrCodeSeatReservationUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeToHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Success creates a success response with data
func Success(data interface{}) *Response {
	return &Response{
		Success: true,
		Data:    data,
	}
}

// Error creates an error response
func Error(code string, message string) *Response {
	return &Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// ErrorWithDetails creates an error response with additional details
func ErrorWithDetails(code string, message string, details map[string]string) *Response {
	return &Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// BadRequest creates a bad request error response
func BadRequest(message string) *Response {
	return Error(ErrCodeBadRequest, message)
}

// Unauthorized creates an unauthorized error response
func Unauthorized(message string) *Response {
	if message == "" {
		message = "Authentication required"
	}
	return Error(ErrCodeUnauthorized, message)
}

// InternalError creates an internal server error response
func InternalError(message string) *Response {
	if message == "" {
		message = "An internal error occurred"
	}
	return Error(ErrCodeInternalError, message)
}

// ServiceUnavailable creates a service unavailable error response
func ServiceUnavailable(message string) *Response {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	return Error(ErrCodeServiceUnavailable, message)
}
