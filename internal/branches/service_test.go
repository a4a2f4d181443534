package branches_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hubctl/hubctl/internal/branches"
	"github.com/hubctl/hubctl/internal/githubapi"
)

const (
	stubRepositoryConstant   = "acme/widgets"
	stubSourceBranchConstant = "main"
	stubBranchNameConstant   = "feature/login"
	stubHeadSHAConstant      = "abc123"
)

type stubGateway struct {
	references         map[string]string
	createdBranchName  string
	createdCommitSHA   string
	getReferenceError  error
	createReferenceErr error
}

func (gateway *stubGateway) GetReference(_ context.Context, _ string, branchName string) (githubapi.Reference, error) {
	if gateway.getReferenceError != nil {
		return githubapi.Reference{}, gateway.getReferenceError
	}
	headSHA, branchExists := gateway.references[branchName]
	if !branchExists {
		return githubapi.Reference{}, githubapi.ReferenceNotFoundError{Repository: stubRepositoryConstant, ReferenceName: branchName}
	}
	return githubapi.Reference{Name: branchName, SHA: headSHA}, nil
}

func (gateway *stubGateway) CreateReference(_ context.Context, _ string, branchName string, commitSHA string) (githubapi.Reference, error) {
	if gateway.createReferenceErr != nil {
		return githubapi.Reference{}, gateway.createReferenceErr
	}
	gateway.createdBranchName = branchName
	gateway.createdCommitSHA = commitSHA
	return githubapi.Reference{Name: branchName, SHA: commitSHA}, nil
}

func TestNewServiceRequiresGateway(testInstance *testing.T) {
	service, creationError := branches.NewService(branches.Dependencies{})
	require.ErrorIs(testInstance, creationError, branches.ErrGatewayNotConfigured)
	require.Nil(testInstance, service)
}

func TestCreateValidatesOptions(testInstance *testing.T) {
	testCases := []struct {
		name        string
		options     branches.Options
		expectedErr error
	}{
		{
			name:        "MissingRepository",
			options:     branches.Options{BranchName: stubBranchNameConstant, SourceBranch: stubSourceBranchConstant},
			expectedErr: branches.ErrRepositoryRequired,
		},
		{
			name:        "MissingBranchName",
			options:     branches.Options{Repository: stubRepositoryConstant, SourceBranch: stubSourceBranchConstant},
			expectedErr: branches.ErrBranchNameRequired,
		},
		{
			name:        "MissingSourceBranch",
			options:     branches.Options{Repository: stubRepositoryConstant, BranchName: stubBranchNameConstant},
			expectedErr: branches.ErrSourceBranchRequired,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			gateway := &stubGateway{references: map[string]string{}}
			service, creationError := branches.NewService(branches.Dependencies{Gateway: gateway})
			require.NoError(subTest, creationError)

			_, createError := service.Create(context.Background(), testCase.options)
			require.ErrorIs(subTest, createError, testCase.expectedErr)
			require.Empty(subTest, gateway.createdBranchName)
		})
	}
}

func TestCreatePointsBranchAtSourceHead(testInstance *testing.T) {
	gateway := &stubGateway{references: map[string]string{stubSourceBranchConstant: stubHeadSHAConstant}}
	service, creationError := branches.NewService(branches.Dependencies{Gateway: gateway})
	require.NoError(testInstance, creationError)

	result, createError := service.Create(context.Background(), branches.Options{
		Repository:   stubRepositoryConstant,
		BranchName:   stubBranchNameConstant,
		SourceBranch: stubSourceBranchConstant,
	})
	require.NoError(testInstance, createError)

	require.Equal(testInstance, stubBranchNameConstant, gateway.createdBranchName)
	require.Equal(testInstance, stubHeadSHAConstant, gateway.createdCommitSHA)
	require.Equal(testInstance, branches.Result{BranchName: stubBranchNameConstant, CommitSHA: stubHeadSHAConstant}, result)
}

func TestCreateSurfacesMissingSourceBranch(testInstance *testing.T) {
	gateway := &stubGateway{references: map[string]string{}}
	service, creationError := branches.NewService(branches.Dependencies{Gateway: gateway})
	require.NoError(testInstance, creationError)

	_, createError := service.Create(context.Background(), branches.Options{
		Repository:   stubRepositoryConstant,
		BranchName:   stubBranchNameConstant,
		SourceBranch: "missing",
	})

	var notFoundError githubapi.ReferenceNotFoundError
	require.ErrorAs(testInstance, createError, &notFoundError)
	require.Contains(testInstance, createError.Error(), "resolve source branch")
	require.Empty(testInstance, gateway.createdBranchName)
}

func TestCreateSurfacesReferenceCreationFailure(testInstance *testing.T) {
	injectedFailure := errors.New("reference already exists")
	gateway := &stubGateway{
		references:         map[string]string{stubSourceBranchConstant: stubHeadSHAConstant},
		createReferenceErr: injectedFailure,
	}
	service, creationError := branches.NewService(branches.Dependencies{Gateway: gateway})
	require.NoError(testInstance, creationError)

	_, createError := service.Create(context.Background(), branches.Options{
		Repository:   stubRepositoryConstant,
		BranchName:   stubBranchNameConstant,
		SourceBranch: stubSourceBranchConstant,
	})

	require.ErrorIs(testInstance, createError, injectedFailure)
	require.Contains(testInstance, createError.Error(), "create branch reference")
}

func TestResultRenderText(testInstance *testing.T) {
	result := branches.Result{BranchName: stubBranchNameConstant, CommitSHA: stubHeadSHAConstant}
	require.Equal(testInstance, "created branch feature/login at abc123", result.RenderText())
}
