package githubapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	statusErrorTemplateConstant       = "%s returned status %d: %s"
	emptyResponseMessageConstant      = "empty response"
	statusErrorFieldTemplateConstant  = " (%s)"
	statusErrorFieldJoinerConstant    = ", "
	statusErrorFieldPartTemplateConst = "%s: %s"
)

type blobPayload struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type treeEntryPayload struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
}

type treePayload struct {
	BaseTree string             `json:"base_tree,omitempty"`
	Tree     []treeEntryPayload `json:"tree"`
}

type commitPayload struct {
	Message string   `json:"message"`
	Tree    string   `json:"tree"`
	Parents []string `json:"parents"`
}

type updateReferencePayload struct {
	SHA   string `json:"sha"`
	Force bool   `json:"force"`
}

type createReferencePayload struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

type shaResponse struct {
	SHA string `json:"sha"`
}

type referenceResponse struct {
	Ref    string `json:"ref"`
	Object struct {
		Type string `json:"type"`
		SHA  string `json:"sha"`
	} `json:"object"`
}

type commitResponse struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	HTMLURL string `json:"html_url"`
	Tree    struct {
		SHA string `json:"sha"`
	} `json:"tree"`
	Parents []struct {
		SHA string `json:"sha"`
	} `json:"parents"`
}

func (response commitResponse) toCommit() Commit {
	parentSHAs := make([]string, 0, len(response.Parents))
	for _, parent := range response.Parents {
		parentSHAs = append(parentSHAs, parent.SHA)
	}

	return Commit{
		SHA:        response.SHA,
		TreeSHA:    response.Tree.SHA,
		ParentSHAs: parentSHAs,
		Message:    response.Message,
		HTMLURL:    response.HTMLURL,
	}
}

type apiErrorResponse struct {
	Message string `json:"message"`
	Errors  []struct {
		Resource string `json:"resource"`
		Field    string `json:"field"`
		Code     string `json:"code"`
		Message  string `json:"message"`
	} `json:"errors"`
}

// statusError is the pre-classification form of an HTTP failure; operation
// wrappers convert it into the exported taxonomy before returning.
type statusError struct {
	operation   OperationName
	statusCode  int
	message     string
	fieldErrors []FieldError
}

func (failure *statusError) Error() string {
	description := fmt.Sprintf(statusErrorTemplateConstant, failure.operation, failure.statusCode, failure.message)
	if len(failure.fieldErrors) == 0 {
		return description
	}

	fieldDescriptions := make([]string, 0, len(failure.fieldErrors))
	for _, fieldError := range failure.fieldErrors {
		fieldDescriptions = append(fieldDescriptions, fmt.Sprintf(statusErrorFieldPartTemplateConst, fieldError.Field, fieldError.Message))
	}

	return description + fmt.Sprintf(statusErrorFieldTemplateConstant, strings.Join(fieldDescriptions, statusErrorFieldJoinerConstant))
}

func newStatusError(operation OperationName, statusCode int, responseBody []byte) error {
	failure := &statusError{operation: operation, statusCode: statusCode}

	if len(responseBody) == 0 {
		failure.message = emptyResponseMessageConstant
		return failure
	}

	var decodedResponse apiErrorResponse
	if decodingError := json.Unmarshal(responseBody, &decodedResponse); decodingError != nil || len(decodedResponse.Message) == 0 {
		failure.message = strings.TrimSpace(string(responseBody))
		return failure
	}

	failure.message = decodedResponse.Message
	for _, decodedFieldError := range decodedResponse.Errors {
		failure.fieldErrors = append(failure.fieldErrors, FieldError{
			Resource: decodedFieldError.Resource,
			Field:    decodedFieldError.Field,
			Code:     decodedFieldError.Code,
			Message:  decodedFieldError.Message,
		})
	}

	return failure
}

func asStatusError(candidate error) (*statusError, bool) {
	var failure *statusError
	if errors.As(candidate, &failure) {
		return failure, true
	}
	return nil, false
}
