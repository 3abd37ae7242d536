package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every module.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeExternalService    ErrorCode = "COMMON_011"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_012"
)

// Catalog module error codes.
const (
	ErrCodePatentNotFound     ErrorCode = "CAT_001"
	ErrCodeCompanyNotFound    ErrorCode = "CAT_002"
	ErrCodeCatalogUnavailable ErrorCode = "CAT_003"
)

// Company-resolution module error codes.
const (
	ErrCodeNoMatch               ErrorCode = "RES_001"
	ErrCodeResolutionUnavailable ErrorCode = "RES_002"
)

// Generative-model module error codes.
const (
	ErrCodeModelInvocationFailure ErrorCode = "LLM_001"
	ErrCodeMalformedModelOutput   ErrorCode = "LLM_002"
	ErrCodeInvalidLikelihoodLabel ErrorCode = "LLM_003"
)

// Report module error codes.
const (
	ErrCodePersistenceFailure ErrorCode = "RPT_001"
	ErrCodeReportNotFound     ErrorCode = "RPT_002"
)

// Auth module error codes.
const (
	ErrCodeInvalidCredentials ErrorCode = "AUTH_001"
	ErrCodeTokenExpired       ErrorCode = "AUTH_002"
	ErrCodeTokenInvalid       ErrorCode = "AUTH_003"
	ErrCodeEmailAlreadyExists ErrorCode = "AUTH_004"
)

// Short aliases used at call sites throughout the codebase.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeUnauthorized = ErrCodeUnauthorized
	CodeForbidden    = ErrCodeForbidden
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	ErrCodePatentNotFound:     http.StatusNotFound,
	ErrCodeCompanyNotFound:    http.StatusNotFound,
	ErrCodeCatalogUnavailable: http.StatusServiceUnavailable,

	ErrCodeNoMatch:               http.StatusNotFound,
	ErrCodeResolutionUnavailable: http.StatusServiceUnavailable,

	ErrCodeModelInvocationFailure: http.StatusBadGateway,
	ErrCodeMalformedModelOutput:   http.StatusBadGateway,
	ErrCodeInvalidLikelihoodLabel: http.StatusBadGateway,

	ErrCodePersistenceFailure: http.StatusInternalServerError,
	ErrCodeReportNotFound:     http.StatusNotFound,

	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeEmailAlreadyExists: http.StatusConflict,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeExternalService:    "external service error",
	ErrCodeServiceUnavailable: "service unavailable",

	ErrCodePatentNotFound:     "patent not found",
	ErrCodeCompanyNotFound:    "company not found",
	ErrCodeCatalogUnavailable: "catalog unavailable",

	ErrCodeNoMatch:               "no matching company",
	ErrCodeResolutionUnavailable: "company resolution unavailable",

	ErrCodeModelInvocationFailure: "model invocation failed",
	ErrCodeMalformedModelOutput:   "malformed model output",
	ErrCodeInvalidLikelihoodLabel: "invalid infringement likelihood label",

	ErrCodePersistenceFailure: "failed to persist report",
	ErrCodeReportNotFound:     "report not found",

	ErrCodeInvalidCredentials: "invalid email or password",
	ErrCodeTokenExpired:       "token expired",
	ErrCodeTokenInvalid:       "invalid token",
	ErrCodeEmailAlreadyExists: "email already registered",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
