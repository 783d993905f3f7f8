package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeAccountDisabled    = "ERR_ACCOUNT_DISABLED"
)

// Resource error codes
const (
	ErrCodeNotFound               = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists          = "ERR_ALREADY_EXISTS"
	ErrCodeConflict               = "ERR_CONFLICT"
	ErrCodeConcurrentModification = "ERR_CONCURRENT_MODIFICATION"
	ErrCodeDuplicateRequest       = "ERR_DUPLICATE_REQUEST"
)

// Business rule error codes
const (
	ErrCodeInvalidState          = "ERR_INVALID_STATE"
	ErrCodeInvalidAmount         = "ERR_INVALID_AMOUNT"
	ErrCodeInsufficientCredit    = "ERR_INSUFFICIENT_CREDIT"
	ErrCodeExceedsInvoiceBalance = "ERR_EXCEEDS_INVOICE_BALANCE"
	ErrCodeHasPayments           = "ERR_HAS_PAYMENTS"
	ErrCodeHasApplications       = "ERR_HAS_APPLICATIONS"
	ErrCodeNotPastDue            = "ERR_NOT_PAST_DUE"
)

// Input error codes
const (
	ErrCodeBadRequest           = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput         = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON          = "ERR_INVALID_JSON"
	ErrCodeInvalidPaymentMethod = "ERR_INVALID_PAYMENT_METHOD"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountDisabled:    http.StatusForbidden,

	ErrCodeNotFound:               http.StatusNotFound,
	ErrCodeAlreadyExists:          http.StatusConflict,
	ErrCodeConflict:               http.StatusConflict,
	ErrCodeConcurrentModification: http.StatusConflict,
	ErrCodeDuplicateRequest:       http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:          http.StatusUnprocessableEntity,
	ErrCodeInvalidAmount:         http.StatusUnprocessableEntity,
	ErrCodeInsufficientCredit:    http.StatusUnprocessableEntity,
	ErrCodeExceedsInvoiceBalance: http.StatusUnprocessableEntity,
	ErrCodeHasPayments:           http.StatusUnprocessableEntity,
	ErrCodeHasApplications:       http.StatusUnprocessableEntity,
	ErrCodeNotPastDue:            http.StatusUnprocessableEntity,

	ErrCodeBadRequest:           http.StatusBadRequest,
	ErrCodeInvalidInput:         http.StatusBadRequest,
	ErrCodeInvalidJSON:          http.StatusBadRequest,
	ErrCodeInvalidPaymentMethod: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"ALREADY_EXISTS":          ErrCodeAlreadyExists,
	"INVALID_INPUT":           ErrCodeInvalidInput,
	"INVALID_STATE":           ErrCodeInvalidState,
	"UNAUTHORIZED":            ErrCodeUnauthorized,
	"FORBIDDEN":               ErrCodeForbidden,
	"CONCURRENT_MODIFICATION": ErrCodeConcurrentModification,
	"DUPLICATE_REQUEST":       ErrCodeDuplicateRequest,
	"INVALID_AMOUNT":          ErrCodeInvalidAmount,
	"INSUFFICIENT_CREDIT":     ErrCodeInsufficientCredit,
	"EXCEEDS_INVOICE_BALANCE": ErrCodeExceedsInvoiceBalance,
	"HAS_PAYMENTS":            ErrCodeHasPayments,
	"HAS_APPLICATIONS":        ErrCodeHasApplications,
	"NOT_PAST_DUE":            ErrCodeNotPastDue,
	"INVALID_PAYMENT_METHOD":  ErrCodeInvalidPaymentMethod,
	"INVALID_CREDENTIALS":     ErrCodeInvalidCredentials,
	"ACCOUNT_DISABLED":        ErrCodeAccountDisabled,
	"INVALID_TOKEN":           ErrCodeTokenInvalid,

	// creation validation failures map to 400
	"INVALID_INVOICE_NUMBER":     ErrCodeInvalidInput,
	"INVALID_CREDIT_NOTE_NUMBER": ErrCodeInvalidInput,
	"INVALID_DOCUMENT_NUMBER":    ErrCodeInvalidInput,
	"INVALID_CUSTOMER":           ErrCodeInvalidInput,
	"INVALID_CUSTOMER_NAME":      ErrCodeInvalidInput,
	"INVALID_PARTY":              ErrCodeInvalidInput,
	"INVALID_PARTY_NAME":         ErrCodeInvalidInput,
	"INVALID_INVOICE":            ErrCodeInvalidInput,
	"INVALID_REASON":             ErrCodeInvalidInput,
	"INVALID_COMPANY_NAME":       ErrCodeInvalidInput,
	"INVALID_CURRENCY":           ErrCodeInvalidInput,
	"INVALID_TAX_RATE":           ErrCodeInvalidInput,
	"INVALID_USERNAME":           ErrCodeInvalidInput,
	"INVALID_PASSWORD":           ErrCodeInvalidInput,
	"INVALID_COMPANY":            ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to the API format.
// If the code is already in the API format or unknown, returns it as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
