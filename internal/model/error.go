package model

// Stable error codes returned in ErrorResponse.Code
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeDuplicateUser      = "DUPLICATE_USER"
	CodeDuplicateRole      = "DUPLICATE_ROLE"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
