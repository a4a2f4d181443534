package branches

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hubctl/hubctl/internal/githubapi"
)

const (
	gatewayMissingMessageConstant        = "github gateway not configured"
	repositoryRequiredMessageConstant    = "repository must be provided"
	branchNameRequiredMessageConstant    = "branch name must be provided"
	sourceBranchRequiredMessageConstant  = "source branch must be provided"
	resolveSourceErrorTemplateConstant   = "failed to resolve source branch: %w"
	createReferenceErrorTemplateConstant = "failed to create branch reference: %w"
	resultTextTemplateConstant           = "created branch %s at %s"
)

// ErrGatewayNotConfigured indicates the gateway dependency was missing.
var ErrGatewayNotConfigured = errors.New(gatewayMissingMessageConstant)

// ErrRepositoryRequired indicates the repository option was empty.
var ErrRepositoryRequired = errors.New(repositoryRequiredMessageConstant)

// ErrBranchNameRequired indicates the branch name option was empty.
var ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)

// ErrSourceBranchRequired indicates the source branch option was empty.
var ErrSourceBranchRequired = errors.New(sourceBranchRequiredMessageConstant)

// Gateway enumerates the reference operations consumed by branch creation.
type Gateway interface {
	GetReference(executionContext context.Context, repository string, branchName string) (githubapi.Reference, error)
	CreateReference(executionContext context.Context, repository string, branchName string, commitSHA string) (githubapi.Reference, error)
}

// Dependencies enumerates external collaborators required for branch operations.
type Dependencies struct {
	Gateway Gateway
}

// Options configures a branch creation.
type Options struct {
	Repository   string
	BranchName   string
	SourceBranch string
}

// Result captures the observable outcomes of a branch creation.
type Result struct {
	BranchName string `json:"branch"`
	CommitSHA  string `json:"sha"`
}

// RenderText produces the human-readable summary of the creation result.
func (result Result) RenderText() string {
	return fmt.Sprintf(resultTextTemplateConstant, result.BranchName, result.CommitSHA)
}

// Service coordinates branch creation through the gateway.
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

// Create points a new branch reference at the current head of the source branch.
func (service *Service) Create(executionContext context.Context, options Options) (Result, error) {
	trimmedRepository := strings.TrimSpace(options.Repository)
	if len(trimmedRepository) == 0 {
		return Result{}, ErrRepositoryRequired
	}

	trimmedBranchName := strings.TrimSpace(options.BranchName)
	if len(trimmedBranchName) == 0 {
		return Result{}, ErrBranchNameRequired
	}

	trimmedSourceBranch := strings.TrimSpace(options.SourceBranch)
	if len(trimmedSourceBranch) == 0 {
		return Result{}, ErrSourceBranchRequired
	}

	sourceReference, sourceError := service.gateway.GetReference(executionContext, trimmedRepository, trimmedSourceBranch)
	if sourceError != nil {
		return Result{}, fmt.Errorf(resolveSourceErrorTemplateConstant, sourceError)
	}

	createdReference, creationError := service.gateway.CreateReference(executionContext, trimmedRepository, trimmedBranchName, sourceReference.SHA)
	if creationError != nil {
		return Result{}, fmt.Errorf(createReferenceErrorTemplateConstant, creationError)
	}

	return Result{BranchName: createdReference.Name, CommitSHA: createdReference.SHA}, nil
}
