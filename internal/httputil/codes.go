package httputil

// Machine-readable error codes returned in ErrorResponse.Code.
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"

	CodeEmailAlreadyExists    = "EMAIL_ALREADY_EXISTS"
	CodeInvalidEmailFormat    = "INVALID_EMAIL_FORMAT"
	CodePasswordRequired      = "PASSWORD_REQUIRED"
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeInvalidFederatedToken = "INVALID_FEDERATED_TOKEN"

	CodeMissingAuth       = "MISSING_AUTH"
	CodeInvalidAuthHeader = "INVALID_AUTH_HEADER"
	CodeInvalidToken      = "INVALID_TOKEN"
)
