package commits_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hubctl/hubctl/internal/commits"
)

func TestParseChangeSet(testInstance *testing.T) {
	testCases := []struct {
		name            string
		filePairs       []string
		filesJSON       string
		expectedChanges map[string]string
		expectError     bool
	}{
		{
			name:            "PairsOnly",
			filePairs:       []string{"docs/readme.md=hello", "config.yaml=key: value"},
			expectedChanges: map[string]string{"docs/readme.md": "hello", "config.yaml": "key: value"},
		},
		{
			name:            "ContentContainingSeparator",
			filePairs:       []string{"app.env=TOKEN=abc=def"},
			expectedChanges: map[string]string{"app.env": "TOKEN=abc=def"},
		},
		{
			name:            "JSONOnly",
			filesJSON:       `{"a.txt":"1","b.txt":"2"}`,
			expectedChanges: map[string]string{"a.txt": "1", "b.txt": "2"},
		},
		{
			name:            "JSONWinsOverPairs",
			filePairs:       []string{"a.txt=from-pair"},
			filesJSON:       `{"a.txt":"from-json"}`,
			expectedChanges: map[string]string{"a.txt": "from-json"},
		},
		{
			name:            "EmptyInputs",
			expectedChanges: map[string]string{},
		},
		{
			name:        "PairWithoutSeparator",
			filePairs:   []string{"no-separator"},
			expectError: true,
		},
		{
			name:        "PairWithEmptyPath",
			filePairs:   []string{"=content"},
			expectError: true,
		},
		{
			name:        "MalformedJSON",
			filesJSON:   `{"a.txt":`,
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			changes, parseError := commits.ParseChangeSet(testCase.filePairs, testCase.filesJSON)
			if testCase.expectError {
				require.Error(subTest, parseError)
				return
			}
			require.NoError(subTest, parseError)
			require.Equal(subTest, testCase.expectedChanges, changes)
		})
	}
}

func TestCommandRejectsMissingInputs(testInstance *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedMessage string
	}{
		{
			name:            "MissingRepository",
			arguments:       []string{"--branch", fakeBranchNameConstant, "--message", fakeCommitMessageConstant},
			expectedMessage: "repository is required",
		},
		{
			name:            "MissingBranch",
			arguments:       []string{"--repository", fakeRepositoryConstant, "--message", fakeCommitMessageConstant},
			expectedMessage: "branch is required",
		},
		{
			name:            "MissingMessage",
			arguments:       []string{"--repository", fakeRepositoryConstant, "--branch", fakeBranchNameConstant},
			expectedMessage: "commit message is required",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			gateway, _ := newFakeGateway(subTest, fakeBranchNameConstant, nil)
			builder := &commits.CommandBuilder{
				GatewayProvider: func() (commits.Gateway, error) { return gateway, nil },
			}
			command, buildError := builder.Build()
			require.NoError(subTest, buildError)

			command.SetArgs(testCase.arguments)
			command.SetOut(&bytes.Buffer{})
			command.SetErr(&bytes.Buffer{})

			executionError := command.ExecuteContext(context.Background())
			require.Error(subTest, executionError)
			require.Contains(subTest, executionError.Error(), testCase.expectedMessage)
			require.Empty(subTest, gateway.recordedCalls)
		})
	}
}

func TestCommandFallsBackToConfiguredRepositoryAndBranch(testInstance *testing.T) {
	gateway, _ := newFakeGateway(testInstance, fakeBranchNameConstant, map[string]string{"a.txt": "1"})
	builder := &commits.CommandBuilder{
		GatewayProvider: func() (commits.Gateway, error) { return gateway, nil },
		ConfigurationProvider: func() commits.CommandConfiguration {
			return commits.CommandConfiguration{Repository: fakeRepositoryConstant, BranchName: fakeBranchNameConstant}
		},
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetArgs([]string{"--message", fakeCommitMessageConstant, "--file", "b.txt=2"})
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})

	executionError := command.ExecuteContext(context.Background())
	require.NoError(testInstance, executionError)

	var renderedResult struct {
		CommitSHA    string   `json:"sha"`
		Message      string   `json:"message"`
		ChangedPaths []string `json:"files_pushed"`
	}
	require.NoError(testInstance, json.Unmarshal(outputBuffer.Bytes(), &renderedResult))
	require.Equal(testInstance, fakeCommitMessageConstant, renderedResult.Message)
	require.Equal(testInstance, []string{"b.txt"}, renderedResult.ChangedPaths)

	headSHA, _ := gateway.headCommit(testInstance, fakeBranchNameConstant)
	require.Equal(testInstance, headSHA, renderedResult.CommitSHA)
}

func TestCommandReportsGatewayFailure(testInstance *testing.T) {
	builder := &commits.CommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetArgs([]string{
		"--repository", fakeRepositoryConstant,
		"--branch", fakeBranchNameConstant,
		"--message", fakeCommitMessageConstant,
	})
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})

	executionError := command.ExecuteContext(context.Background())
	require.ErrorIs(testInstance, executionError, commits.ErrGatewayNotConfigured)
	require.Contains(testInstance, executionError.Error(), "github gateway unavailable")
}
