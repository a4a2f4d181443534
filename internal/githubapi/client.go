package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	defaultBaseURLConstant                  = "https://api.github.com"
	defaultUserAgentConstant                = "hubctl"
	defaultRequestTimeoutConstant           = 30 * time.Second
	acceptHeaderNameConstant                = "Accept"
	acceptHeaderValueConstant               = "application/vnd.github+json"
	userAgentHeaderNameConstant             = "User-Agent"
	apiVersionHeaderNameConstant            = "X-GitHub-Api-Version"
	apiVersionHeaderValueConstant           = "2022-11-28"
	contentTypeHeaderNameConstant           = "Content-Type"
	contentTypeHeaderValueConstant          = "application/json"
	tokenRequiredMessageConstant            = "github token not configured"
	repositoryFieldNameConstant             = "repository"
	branchFieldNameConstant                 = "branch"
	commitFieldNameConstant                 = "commit"
	treeFieldNameConstant                   = "tree"
	requiredValueMessageConstant            = "value required"
	ownerSlashNameMessageConstant           = "expected owner/name"
	repositorySeparatorConstant             = "/"
	blobContentEncodingConstant             = "utf-8"
	regularFileModeConstant                 = "100644"
	blobTreeEntryTypeConstant               = "blob"
	branchReferencePrefixConstant           = "refs/heads/"
	getReferenceEndpointTemplateConstant    = "repos/%s/git/ref/heads/%s"
	getCommitEndpointTemplateConstant       = "repos/%s/git/commits/%s"
	createBlobEndpointTemplateConstant      = "repos/%s/git/blobs"
	createTreeEndpointTemplateConstant      = "repos/%s/git/trees"
	createCommitEndpointTemplateConstant    = "repos/%s/git/commits"
	updateRefEndpointTemplateConstant       = "repos/%s/git/refs/heads/%s"
	createRefEndpointTemplateConstant       = "repos/%s/git/refs"
	requestLogMessageConstant               = "github api request"
	logFieldOperationConstant               = "operation"
	logFieldMethodConstant                  = "method"
	logFieldEndpointConstant                = "endpoint"
	rateLimitMessageFragmentConstant        = "rate limit"
	fastForwardMessageFragmentConstant      = "fast forward"
	referenceMissingMessageFragmentConstant = "does not exist"
)

// ErrTokenRequired indicates the client was constructed without an authentication token.
var ErrTokenRequired = errors.New(tokenRequiredMessageConstant)

// Configuration carries the explicit settings required to construct a Client.
type Configuration struct {
	Token     string
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Reference identifies a branch head inside a repository.
type Reference struct {
	Name string
	SHA  string
}

// Commit captures the commit fields used by hubctl services.
type Commit struct {
	SHA        string
	TreeSHA    string
	ParentSHAs []string
	Message    string
	HTMLURL    string
}

// TreeEntry describes one path override layered onto a base tree.
type TreeEntry struct {
	Path    string
	BlobSHA string
}

// Client performs authenticated requests against the GitHub REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *zap.Logger
}

// NewClient constructs a gateway client from explicit configuration.
func NewClient(configuration Configuration, logger *zap.Logger) (*Client, error) {
	trimmedToken := strings.TrimSpace(configuration.Token)
	if len(trimmedToken) == 0 {
		return nil, ErrTokenRequired
	}

	baseURL := strings.TrimSpace(configuration.BaseURL)
	if len(baseURL) == 0 {
		baseURL = defaultBaseURLConstant
	}
	baseURL = strings.TrimRight(baseURL, repositorySeparatorConstant)

	userAgent := strings.TrimSpace(configuration.UserAgent)
	if len(userAgent) == 0 {
		userAgent = defaultUserAgentConstant
	}

	requestTimeout := configuration.Timeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeoutConstant
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken})
	httpClient := oauth2.NewClient(context.Background(), tokenSource)
	httpClient.Timeout = requestTimeout

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
		logger:     logger,
	}, nil
}

// GetReference resolves the current head commit of a branch.
func (client *Client) GetReference(executionContext context.Context, repository string, branchName string) (Reference, error) {
	repositoryIdentifier, repositoryError := validateRepository(repository)
	if repositoryError != nil {
		return Reference{}, repositoryError
	}
	trimmedBranchName, branchError := requireValue(branchFieldNameConstant, branchName)
	if branchError != nil {
		return Reference{}, branchError
	}

	endpoint := fmt.Sprintf(getReferenceEndpointTemplateConstant, repositoryIdentifier, trimmedBranchName)

	var response referenceResponse
	executionError := client.execute(executionContext, GetReferenceOperationName, http.MethodGet, endpoint, nil, &response)
	if executionError != nil {
		return Reference{}, client.classifyReferenceFailure(repositoryIdentifier, trimmedBranchName, executionError)
	}

	return Reference{Name: trimmedBranchName, SHA: response.Object.SHA}, nil
}

// GetCommit fetches a commit object by identifier.
func (client *Client) GetCommit(executionContext context.Context, repository string, commitSHA string) (Commit, error) {
	repositoryIdentifier, repositoryError := validateRepository(repository)
	if repositoryError != nil {
		return Commit{}, repositoryError
	}
	trimmedCommitSHA, commitError := requireValue(commitFieldNameConstant, commitSHA)
	if commitError != nil {
		return Commit{}, commitError
	}

	endpoint := fmt.Sprintf(getCommitEndpointTemplateConstant, repositoryIdentifier, trimmedCommitSHA)

	var response commitResponse
	executionError := client.execute(executionContext, GetCommitOperationName, http.MethodGet, endpoint, nil, &response)
	if executionError != nil {
		return Commit{}, client.classifyObjectFailure(repositoryIdentifier, trimmedCommitSHA, executionError)
	}

	return response.toCommit(), nil
}

// CreateBlob materializes one file's content as a blob object and returns its identifier.
func (client *Client) CreateBlob(executionContext context.Context, repository string, content string) (string, error) {
	repositoryIdentifier, repositoryError := validateRepository(repository)
	if repositoryError != nil {
		return "", repositoryError
	}

	endpoint := fmt.Sprintf(createBlobEndpointTemplateConstant, repositoryIdentifier)
	payload := blobPayload{Content: content, Encoding: blobContentEncodingConstant}

	var response shaResponse
	executionError := client.execute(executionContext, CreateBlobOperationName, http.MethodPost, endpoint, payload, &response)
	if executionError != nil {
		return "", client.classifyMutationFailure(executionError)
	}

	return response.SHA, nil
}

// CreateTree composes a new tree from a base tree plus path overrides.
// Entries always receive the regular-file mode; executability changes and
// symlinks are not supported through this gateway.
func (client *Client) CreateTree(executionContext context.Context, repository string, baseTreeSHA string, entries []TreeEntry) (string, error) {
	repositoryIdentifier, repositoryError := validateRepository(repository)
	if repositoryError != nil {
		return "", repositoryError
	}
	trimmedBaseTreeSHA, treeError := requireValue(treeFieldNameConstant, baseTreeSHA)
	if treeError != nil {
		return "", treeError
	}

	entryPayloads := make([]treeEntryPayload, 0, len(entries))
	for _, entry := range entries {
		entryPayloads = append(entryPayloads, treeEntryPayload{
			Path: entry.Path,
			Mode: regularFileModeConstant,
			Type: blobTreeEntryTypeConstant,
			SHA:  entry.BlobSHA,
		})
	}

	endpoint := fmt.Sprintf(createTreeEndpointTemplateConstant, repositoryIdentifier)
	payload := treePayload{BaseTree: trimmedBaseTreeSHA, Tree: entryPayloads}

	var response shaResponse
	executionError := client.execute(executionContext, CreateTreeOperationName, http.MethodPost, endpoint, payload, &response)
	if executionError != nil {
		return "", client.classifyMutationFailure(executionError)
	}

	return response.SHA, nil
}

// CreateCommit records a new commit referencing the provided tree and parents.
func (client *Client) CreateCommit(executionContext context.Context, repository string, treeSHA string, parentSHAs []string, message string) (Commit, error) {
	repositoryIdentifier, repositoryError := validateRepository(repository)
	if repositoryError != nil {
		return Commit{}, repositoryError
	}
	trimmedTreeSHA, treeError := requireValue(treeFieldNameConstant, treeSHA)
	if treeError != nil {
		return Commit{}, treeError
	}

	endpoint := fmt.Sprintf(createCommitEndpointTemplateConstant, repositoryIdentifier)
	payload := commitPayload{Message: message, Tree: trimmedTreeSHA, Parents: parentSHAs}

	var response commitResponse
	executionError := client.execute(executionContext, CreateCommitOperationName, http.MethodPost, endpoint, payload, &response)
	if executionError != nil {
		return Commit{}, client.classifyMutationFailure(executionError)
	}

	return response.toCommit(), nil
}

// UpdateReference advances a branch to the provided commit identifier.
// With forceUpdate false the server rejects non-fast-forward updates, which
// surfaces as ReferenceConflictError.
func (client *Client) UpdateReference(executionContext context.Context, repository string, branchName string, commitSHA string, forceUpdate bool) (Reference, error) {
	repositoryIdentifier, repositoryError := validateRepository(repository)
	if repositoryError != nil {
		return Reference{}, repositoryError
	}
	trimmedBranchName, branchError := requireValue(branchFieldNameConstant, branchName)
	if branchError != nil {
		return Reference{}, branchError
	}
	trimmedCommitSHA, commitError := requireValue(commitFieldNameConstant, commitSHA)
	if commitError != nil {
		return Reference{}, commitError
	}

	endpoint := fmt.Sprintf(updateRefEndpointTemplateConstant, repositoryIdentifier, trimmedBranchName)
	payload := updateReferencePayload{SHA: trimmedCommitSHA, Force: forceUpdate}

	var response referenceResponse
	executionError := client.execute(executionContext, UpdateReferenceOperationName, http.MethodPatch, endpoint, payload, &response)
	if executionError != nil {
		return Reference{}, client.classifyReferenceUpdateFailure(repositoryIdentifier, trimmedBranchName, executionError)
	}

	return Reference{Name: trimmedBranchName, SHA: response.Object.SHA}, nil
}

// CreateReference creates a new branch reference pointing at the provided commit.
func (client *Client) CreateReference(executionContext context.Context, repository string, branchName string, commitSHA string) (Reference, error) {
	repositoryIdentifier, repositoryError := validateRepository(repository)
	if repositoryError != nil {
		return Reference{}, repositoryError
	}
	trimmedBranchName, branchError := requireValue(branchFieldNameConstant, branchName)
	if branchError != nil {
		return Reference{}, branchError
	}
	trimmedCommitSHA, commitError := requireValue(commitFieldNameConstant, commitSHA)
	if commitError != nil {
		return Reference{}, commitError
	}

	endpoint := fmt.Sprintf(createRefEndpointTemplateConstant, repositoryIdentifier)
	payload := createReferencePayload{Ref: branchReferencePrefixConstant + trimmedBranchName, SHA: trimmedCommitSHA}

	var response referenceResponse
	executionError := client.execute(executionContext, CreateReferenceOperationName, http.MethodPost, endpoint, payload, &response)
	if executionError != nil {
		return Reference{}, client.classifyMutationFailure(executionError)
	}

	return Reference{Name: trimmedBranchName, SHA: response.Object.SHA}, nil
}

func (client *Client) execute(executionContext context.Context, operation OperationName, httpMethod string, endpoint string, requestPayload any, responseTarget any) error {
	requestURL := client.baseURL + repositorySeparatorConstant + endpoint

	var requestBody io.Reader
	if requestPayload != nil {
		payloadBytes, encodingError := json.Marshal(requestPayload)
		if encodingError != nil {
			return PayloadEncodingError{Operation: operation, Cause: encodingError}
		}
		requestBody = bytes.NewReader(payloadBytes)
	}

	request, requestError := http.NewRequestWithContext(executionContext, httpMethod, requestURL, requestBody)
	if requestError != nil {
		return TransportError{Operation: operation, Cause: requestError}
	}

	request.Header.Set(acceptHeaderNameConstant, acceptHeaderValueConstant)
	request.Header.Set(userAgentHeaderNameConstant, client.userAgent)
	request.Header.Set(apiVersionHeaderNameConstant, apiVersionHeaderValueConstant)
	if requestPayload != nil {
		request.Header.Set(contentTypeHeaderNameConstant, contentTypeHeaderValueConstant)
	}

	client.logger.Debug(
		requestLogMessageConstant,
		zap.String(logFieldOperationConstant, string(operation)),
		zap.String(logFieldMethodConstant, httpMethod),
		zap.String(logFieldEndpointConstant, endpoint),
	)

	response, executionError := client.httpClient.Do(request)
	if executionError != nil {
		return TransportError{Operation: operation, Cause: executionError}
	}
	defer response.Body.Close()

	responseBody, readError := io.ReadAll(response.Body)
	if readError != nil {
		return TransportError{Operation: operation, Cause: readError}
	}

	if response.StatusCode >= http.StatusBadRequest {
		return newStatusError(operation, response.StatusCode, responseBody)
	}

	if responseTarget == nil || response.StatusCode == http.StatusNoContent {
		return nil
	}

	decodingError := json.Unmarshal(responseBody, responseTarget)
	if decodingError != nil {
		return ResponseDecodingError{Operation: operation, Cause: decodingError}
	}

	return nil
}

func (client *Client) classifyReferenceFailure(repository string, referenceName string, executionError error) error {
	statusFailure, isStatusFailure := asStatusError(executionError)
	if !isStatusFailure {
		return executionError
	}

	if statusFailure.statusCode == http.StatusNotFound {
		return ReferenceNotFoundError{Repository: repository, ReferenceName: referenceName, Message: statusFailure.message}
	}

	return client.classifyCommonFailure(statusFailure)
}

func (client *Client) classifyObjectFailure(repository string, objectIdentifier string, executionError error) error {
	statusFailure, isStatusFailure := asStatusError(executionError)
	if !isStatusFailure {
		return executionError
	}

	if statusFailure.statusCode == http.StatusNotFound {
		return ObjectNotFoundError{Repository: repository, ObjectIdentifier: objectIdentifier, Message: statusFailure.message}
	}

	return client.classifyCommonFailure(statusFailure)
}

func (client *Client) classifyReferenceUpdateFailure(repository string, referenceName string, executionError error) error {
	statusFailure, isStatusFailure := asStatusError(executionError)
	if !isStatusFailure {
		return executionError
	}

	normalizedMessage := strings.ToLower(statusFailure.message)

	switch statusFailure.statusCode {
	case http.StatusNotFound:
		return ReferenceNotFoundError{Repository: repository, ReferenceName: referenceName, Message: statusFailure.message}
	case http.StatusConflict:
		return ReferenceConflictError{Repository: repository, ReferenceName: referenceName, Message: statusFailure.message}
	case http.StatusUnprocessableEntity:
		if strings.Contains(normalizedMessage, referenceMissingMessageFragmentConstant) {
			return ReferenceNotFoundError{Repository: repository, ReferenceName: referenceName, Message: statusFailure.message}
		}
		if strings.Contains(normalizedMessage, fastForwardMessageFragmentConstant) {
			return ReferenceConflictError{Repository: repository, ReferenceName: referenceName, Message: statusFailure.message}
		}
	}

	return client.classifyCommonFailure(statusFailure)
}

func (client *Client) classifyMutationFailure(executionError error) error {
	statusFailure, isStatusFailure := asStatusError(executionError)
	if !isStatusFailure {
		return executionError
	}

	return client.classifyCommonFailure(statusFailure)
}

func (client *Client) classifyCommonFailure(statusFailure *statusError) error {
	switch statusFailure.statusCode {
	case http.StatusUnauthorized:
		return AuthenticationError{Message: statusFailure.message}
	case http.StatusForbidden:
		if strings.Contains(strings.ToLower(statusFailure.message), rateLimitMessageFragmentConstant) {
			return RateLimitError{Message: statusFailure.message}
		}
		return AuthenticationError{Message: statusFailure.message}
	case http.StatusUnprocessableEntity:
		return ValidationError{Message: statusFailure.message, FieldErrors: statusFailure.fieldErrors}
	}

	return TransportError{Operation: statusFailure.operation, StatusCode: statusFailure.statusCode, Message: statusFailure.message}
}

func validateRepository(repository string) (string, error) {
	trimmedRepository := strings.TrimSpace(repository)
	if len(trimmedRepository) == 0 {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	separatorCount := strings.Count(trimmedRepository, repositorySeparatorConstant)
	segments := strings.Split(trimmedRepository, repositorySeparatorConstant)
	if separatorCount != 1 || len(strings.TrimSpace(segments[0])) == 0 || len(strings.TrimSpace(segments[1])) == 0 {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: ownerSlashNameMessageConstant}
	}

	return trimmedRepository, nil
}

func requireValue(fieldName string, value string) (string, error) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return "", InvalidInputError{FieldName: fieldName, Message: requiredValueMessageConstant}
	}
	return trimmedValue, nil
}
