package githubapi

import (
	"fmt"
	"strings"
)

const (
	referenceNotFoundErrorTemplateConstant  = "reference %q not found in %s"
	objectNotFoundErrorTemplateConstant     = "object %q not found in %s"
	referenceConflictErrorTemplateConstant  = "reference %q in %s moved: %s"
	validationErrorTemplateConstant         = "validation failed: %s"
	validationFieldErrorTemplateConstant    = "%s: %s"
	authenticationErrorTemplateConstant     = "authentication failed: %s"
	rateLimitErrorTemplateConstant          = "rate limit exceeded: %s"
	transportErrorTemplateConstant          = "%s request failed"
	transportErrorWithCauseTemplateConstant = "%s request failed: %s"
	transportErrorStatusTemplateConstant    = "%s request failed with status %d: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	payloadEncodingErrorTemplateConstant    = "%s payload encoding failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	fieldErrorSeparatorConstant             = "; "
)

// OperationName describes a named gateway operation.
type OperationName string

// Gateway operation names referenced by classified errors.
const (
	GetReferenceOperationName    OperationName = OperationName("GetReference")
	GetCommitOperationName       OperationName = OperationName("GetCommit")
	CreateBlobOperationName      OperationName = OperationName("CreateBlob")
	CreateTreeOperationName      OperationName = OperationName("CreateTree")
	CreateCommitOperationName    OperationName = OperationName("CreateCommit")
	UpdateReferenceOperationName OperationName = OperationName("UpdateReference")
	CreateReferenceOperationName OperationName = OperationName("CreateReference")
)

// InvalidInputError surfaces validation issues for operation inputs before any request is made.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// ReferenceNotFoundError indicates the requested branch reference does not exist.
type ReferenceNotFoundError struct {
	Repository    string
	ReferenceName string
	Message       string
}

// Error describes the missing reference.
func (notFoundError ReferenceNotFoundError) Error() string {
	return fmt.Sprintf(referenceNotFoundErrorTemplateConstant, notFoundError.ReferenceName, notFoundError.Repository)
}

// ObjectNotFoundError indicates a commit, tree, or blob lookup failed.
type ObjectNotFoundError struct {
	Repository       string
	ObjectIdentifier string
	Message          string
}

// Error describes the missing object.
func (notFoundError ObjectNotFoundError) Error() string {
	return fmt.Sprintf(objectNotFoundErrorTemplateConstant, notFoundError.ObjectIdentifier, notFoundError.Repository)
}

// ReferenceConflictError indicates the branch reference moved since it was resolved.
type ReferenceConflictError struct {
	Repository    string
	ReferenceName string
	Message       string
}

// Error describes the conflicting update.
func (conflictError ReferenceConflictError) Error() string {
	return fmt.Sprintf(referenceConflictErrorTemplateConstant, conflictError.ReferenceName, conflictError.Repository, conflictError.Message)
}

// FieldError captures a single field-level validation failure reported by the API.
type FieldError struct {
	Resource string
	Field    string
	Code     string
	Message  string
}

// ValidationError indicates the API rejected a malformed payload.
type ValidationError struct {
	Message     string
	FieldErrors []FieldError
}

// Error describes the validation failure including field details.
func (validationError ValidationError) Error() string {
	descriptions := make([]string, 0, len(validationError.FieldErrors)+1)
	descriptions = append(descriptions, fmt.Sprintf(validationErrorTemplateConstant, validationError.Message))
	for _, fieldError := range validationError.FieldErrors {
		descriptions = append(descriptions, fmt.Sprintf(validationFieldErrorTemplateConstant, fieldError.Field, fieldError.Message))
	}
	return strings.Join(descriptions, fieldErrorSeparatorConstant)
}

// AuthenticationError indicates the token was rejected or lacks required scopes.
type AuthenticationError struct {
	Message string
}

// Error describes the authentication failure.
func (authenticationError AuthenticationError) Error() string {
	return fmt.Sprintf(authenticationErrorTemplateConstant, authenticationError.Message)
}

// RateLimitError indicates the API rate limit was exhausted.
type RateLimitError struct {
	Message string
}

// Error describes the exhausted rate limit.
func (rateLimitError RateLimitError) Error() string {
	return fmt.Sprintf(rateLimitErrorTemplateConstant, rateLimitError.Message)
}

// TransportError wraps network failures and unclassified HTTP statuses.
type TransportError struct {
	Operation  OperationName
	StatusCode int
	Message    string
	Cause      error
}

// Error describes the transport failure.
func (transportError TransportError) Error() string {
	if transportError.StatusCode > 0 {
		return fmt.Sprintf(transportErrorStatusTemplateConstant, transportError.Operation, transportError.StatusCode, transportError.Message)
	}
	if transportError.Cause != nil {
		return fmt.Sprintf(transportErrorWithCauseTemplateConstant, transportError.Operation, transportError.Cause)
	}
	return fmt.Sprintf(transportErrorTemplateConstant, transportError.Operation)
}

// Unwrap exposes the underlying cause.
func (transportError TransportError) Unwrap() error {
	return transportError.Cause
}

// PayloadEncodingError indicates JSON encoding issues.
type PayloadEncodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the encoding failure.
func (encodingError PayloadEncodingError) Error() string {
	return fmt.Sprintf(payloadEncodingErrorTemplateConstant, encodingError.Operation, encodingError.Cause)
}

// Unwrap exposes the underlying error.
func (encodingError PayloadEncodingError) Unwrap() error {
	return encodingError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}
