package internal

const (
	// ErrCodeUnknown is the error code for unknown errors
	ErrCodeUnknown = "UNKNOWN_ERROR"
	// ErrCodeRepoError is returned when the request to a repo fails with an error
	ErrCodeRepoError = "STORAGE_QUERY_FAILED"
	// ErrCodeRequiredFieldMissing is returned when at least one required field has not been populated on an incoming
	// request
	ErrCodeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	// ErrCodeIllegalJSON is returned when the request did not contain a valid JSON body
	ErrCodeIllegalJSON = "ILLEGAL_JSON_REQUEST"
	// ErrCodeEventNotFound is returned when an operation works on an event that does not exist
	ErrCodeEventNotFound = "EVENT_NOT_FOUND"
	// ErrCodeProfileNotFound is returned when a profile is requested that does not exist
	ErrCodeProfileNotFound = "PROFILE_NOT_FOUND"
	// ErrCodeInvalidID is returned when an ID is required inside a request, but is not provided or in a wrong format
	ErrCodeInvalidID = "INVALID_ID"
	// ErrCodeQRCodeFailed is returned when the QR code image of an event could not be created
	ErrCodeQRCodeFailed = "QR_CODE_FAILED"
	// ErrCodeUnavailable is returned by the health check when the server cannot reach its database
	ErrCodeUnavailable = "SERVICE_UNAVAILABLE"
	// ErrCodeInternal is returned when processing a request panicked
	ErrCodeInternal = "INTERNAL_ERROR"
)

// HTTPError is an error that contains information about the error message to return to the client
type HTTPError struct {
	message string
	code    string
	status  int
	data    interface{}
}

// MakeError creates a new HTTPError with the given contents
func MakeError(status int, code, message string) *HTTPError {
	return MakeErrorWithData(status, code, message, nil)
}

// MakeErrorWithData creates a new HTTPError with the given contents and an additional data element
func MakeErrorWithData(status int, code, message string, data interface{}) *HTTPError {
	return &HTTPError{message, code, status, data}
}

// Error implements the errorer interface
func (e *HTTPError) Error() string {
	return e.message
}

// Status returns the HTTP status that should be returned
func (e *HTTPError) Status() int {
	return e.status
}

// ErrorCode returns the machine-readable error code
func (e *HTTPError) ErrorCode() string {
	return e.code
}

// Data returns additional data about the error
func (e *HTTPError) Data() interface{} {
	return e.data
}

// fieldError is the data element of an error concerning a single request field
type fieldError struct {
	Field string `json:"field"`
}
