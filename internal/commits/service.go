package commits

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hubctl/hubctl/internal/githubapi"
)

const (
	gatewayMissingMessageConstant         = "github gateway not configured"
	repositoryRequiredMessageConstant     = "repository must be provided"
	branchNameRequiredMessageConstant     = "branch name must be provided"
	commitMessageRequiredMessageConstant  = "commit message must be provided"
	emptyChangePathMessageConstant        = "change set contains an empty path"
	resolveHeadErrorTemplateConstant      = "failed to resolve branch head: %w"
	resolveBaseTreeErrorTemplateConstant  = "failed to resolve base tree: %w"
	createBlobErrorTemplateConstant       = "failed to create blob for %q: %w"
	composeTreeErrorTemplateConstant      = "failed to compose tree: %w"
	createCommitErrorTemplateConstant     = "failed to create commit: %w"
	advanceReferenceErrorTemplateConstant = "failed to advance branch reference: %w"
	pushedFileSeparatorConstant           = ", "
	resultTextTemplateConstant            = "commit %s\nmessage: %s\nfiles: %s\nurl: %s"
	noChangedFilesPlaceholderConstant     = "(none)"
)

// ErrGatewayNotConfigured indicates the gateway dependency was missing.
var ErrGatewayNotConfigured = errors.New(gatewayMissingMessageConstant)

// ErrRepositoryRequired indicates the repository option was empty.
var ErrRepositoryRequired = errors.New(repositoryRequiredMessageConstant)

// ErrBranchNameRequired indicates the branch name option was empty.
var ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)

// ErrCommitMessageRequired indicates the commit message option was empty.
var ErrCommitMessageRequired = errors.New(commitMessageRequiredMessageConstant)

// ErrEmptyChangePath indicates the change set mapped an empty path to content.
var ErrEmptyChangePath = errors.New(emptyChangePathMessageConstant)

// Gateway enumerates the Git Data operations consumed by the builder.
type Gateway interface {
	GetReference(executionContext context.Context, repository string, branchName string) (githubapi.Reference, error)
	GetCommit(executionContext context.Context, repository string, commitSHA string) (githubapi.Commit, error)
	CreateBlob(executionContext context.Context, repository string, content string) (string, error)
	CreateTree(executionContext context.Context, repository string, baseTreeSHA string, entries []githubapi.TreeEntry) (string, error)
	CreateCommit(executionContext context.Context, repository string, treeSHA string, parentSHAs []string, message string) (githubapi.Commit, error)
	UpdateReference(executionContext context.Context, repository string, branchName string, commitSHA string, forceUpdate bool) (githubapi.Reference, error)
}

// Dependencies enumerates external collaborators required for push operations.
type Dependencies struct {
	Gateway Gateway
}

// Options configures one composite commit build.
type Options struct {
	Repository string
	BranchName string
	Message    string
	Changes    map[string]string
}

// Result captures the observable outcomes of a composite commit build.
type Result struct {
	CommitSHA    string   `json:"sha"`
	Message      string   `json:"message"`
	ChangedPaths []string `json:"files_pushed"`
	CommitURL    string   `json:"html_url,omitempty"`
}

// RenderText produces the human-readable summary of the push result.
func (result Result) RenderText() string {
	changedFiles := noChangedFilesPlaceholderConstant
	if len(result.ChangedPaths) > 0 {
		changedFiles = strings.Join(result.ChangedPaths, pushedFileSeparatorConstant)
	}
	return fmt.Sprintf(resultTextTemplateConstant, result.CommitSHA, result.Message, changedFiles, result.CommitURL)
}

// Service coordinates composite commit builds against the gateway.
type Service struct {
	gateway Gateway
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Gateway == nil {
		return nil, ErrGatewayNotConfigured
	}
	return &Service{gateway: dependencies.Gateway}, nil
}

// Push applies the change set to the branch as one commit and advances the
// branch reference. The reference update is the only externally visible
// mutation: failures in any earlier step leave the branch untouched, and the
// update references exactly the head resolved at the start, so a concurrent
// advance of the branch is rejected by the server rather than overwritten.
// Callers observing a conflict must re-run the whole sequence against the new
// head; no step is retried here.
func (service *Service) Push(executionContext context.Context, options Options) (Result, error) {
	trimmedRepository := strings.TrimSpace(options.Repository)
	if len(trimmedRepository) == 0 {
		return Result{}, ErrRepositoryRequired
	}

	trimmedBranchName := strings.TrimSpace(options.BranchName)
	if len(trimmedBranchName) == 0 {
		return Result{}, ErrBranchNameRequired
	}

	trimmedMessage := strings.TrimSpace(options.Message)
	if len(trimmedMessage) == 0 {
		return Result{}, ErrCommitMessageRequired
	}

	changedPaths := make([]string, 0, len(options.Changes))
	for changePath := range options.Changes {
		if len(strings.TrimSpace(changePath)) == 0 {
			return Result{}, ErrEmptyChangePath
		}
		changedPaths = append(changedPaths, changePath)
	}
	sort.Strings(changedPaths)

	headReference, headError := service.gateway.GetReference(executionContext, trimmedRepository, trimmedBranchName)
	if headError != nil {
		return Result{}, fmt.Errorf(resolveHeadErrorTemplateConstant, headError)
	}

	baseCommit, baseCommitError := service.gateway.GetCommit(executionContext, trimmedRepository, headReference.SHA)
	if baseCommitError != nil {
		return Result{}, fmt.Errorf(resolveBaseTreeErrorTemplateConstant, baseCommitError)
	}

	treeEntries := make([]githubapi.TreeEntry, 0, len(changedPaths))
	for _, changePath := range changedPaths {
		blobSHA, blobError := service.gateway.CreateBlob(executionContext, trimmedRepository, options.Changes[changePath])
		if blobError != nil {
			return Result{}, fmt.Errorf(createBlobErrorTemplateConstant, changePath, blobError)
		}
		treeEntries = append(treeEntries, githubapi.TreeEntry{Path: changePath, BlobSHA: blobSHA})
	}

	// An empty change set keeps the base tree as-is; a commit node is still
	// recorded below.
	newTreeSHA := baseCommit.TreeSHA
	if len(treeEntries) > 0 {
		composedTreeSHA, treeError := service.gateway.CreateTree(executionContext, trimmedRepository, baseCommit.TreeSHA, treeEntries)
		if treeError != nil {
			return Result{}, fmt.Errorf(composeTreeErrorTemplateConstant, treeError)
		}
		newTreeSHA = composedTreeSHA
	}

	newCommit, commitError := service.gateway.CreateCommit(executionContext, trimmedRepository, newTreeSHA, []string{headReference.SHA}, trimmedMessage)
	if commitError != nil {
		return Result{}, fmt.Errorf(createCommitErrorTemplateConstant, commitError)
	}

	_, updateError := service.gateway.UpdateReference(executionContext, trimmedRepository, trimmedBranchName, newCommit.SHA, false)
	if updateError != nil {
		return Result{}, fmt.Errorf(advanceReferenceErrorTemplateConstant, updateError)
	}

	return Result{
		CommitSHA:    newCommit.SHA,
		Message:      newCommit.Message,
		ChangedPaths: changedPaths,
		CommitURL:    newCommit.HTMLURL,
	}, nil
}
