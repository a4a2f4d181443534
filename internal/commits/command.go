package commits

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hubctl/hubctl/internal/output"
	"github.com/hubctl/hubctl/internal/utils"
)

const (
	commandUseConstant                 = "push"
	commandShortDescriptionConstant    = "Push multiple files to a branch in one commit"
	commandLongDescriptionConstant     = "push applies a set of file additions and updates to a branch as a single commit using the Git Data API, preserving every path not named in the change set."
	repositoryFlagNameConstant         = "repository"
	repositoryFlagDescriptionConstant  = "Target repository in owner/name form"
	branchFlagNameConstant             = "branch"
	branchFlagDescriptionConstant      = "Branch whose head receives the commit"
	messageFlagNameConstant            = "message"
	messageFlagDescriptionConstant     = "Commit message"
	fileFlagNameConstant               = "file"
	fileFlagDescriptionConstant        = "File change as path=content; repeatable"
	filesJSONFlagNameConstant          = "files-json"
	filesJSONFlagDescriptionConstant   = "File changes as a JSON object of path to content"
	missingRepositoryMessageConstant   = "repository is required; supply --repository"
	missingBranchMessageConstant       = "branch is required; supply --branch"
	missingMessageMessageConstant      = "commit message is required; supply --message"
	gatewayUnavailableTemplateConstant = "github gateway unavailable: %w"
	malformedFilePairTemplateConstant  = "malformed --file value %q: expected path=content"
	malformedFilesJSONTemplateConstant = "invalid --files-json value: %w"
	filePairSeparatorConstant          = "="
	filePairSegmentCountConstant       = 2
	pushCompletedLogMessageConstant    = "files pushed"
	logFieldRepositoryConstant         = "repository"
	logFieldBranchConstant             = "branch"
	logFieldCommitSHAConstant          = "commit_sha"
	logFieldFileCountConstant          = "file_count"
	renderedResultTemplateConstant     = "%s\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// GatewayProvider yields the configured GitHub gateway.
type GatewayProvider func() (Gateway, error)

// CommandBuilder assembles the push command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GatewayProvider       GatewayProvider
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the push command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(repositoryFlagNameConstant, "", repositoryFlagDescriptionConstant)
	command.Flags().String(branchFlagNameConstant, "", branchFlagDescriptionConstant)
	command.Flags().String(messageFlagNameConstant, "", messageFlagDescriptionConstant)
	command.Flags().StringArray(fileFlagNameConstant, nil, fileFlagDescriptionConstant)
	command.Flags().String(filesJSONFlagNameConstant, "", filesJSONFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	repository, repositoryFlagError := command.Flags().GetString(repositoryFlagNameConstant)
	if repositoryFlagError != nil {
		return repositoryFlagError
	}
	if len(strings.TrimSpace(repository)) == 0 {
		repository = configuration.Repository
	}
	if len(strings.TrimSpace(repository)) == 0 {
		return errors.New(missingRepositoryMessageConstant)
	}

	branchName, branchFlagError := command.Flags().GetString(branchFlagNameConstant)
	if branchFlagError != nil {
		return branchFlagError
	}
	if len(strings.TrimSpace(branchName)) == 0 {
		branchName = configuration.BranchName
	}
	if len(strings.TrimSpace(branchName)) == 0 {
		return errors.New(missingBranchMessageConstant)
	}

	commitMessage, messageFlagError := command.Flags().GetString(messageFlagNameConstant)
	if messageFlagError != nil {
		return messageFlagError
	}
	if len(strings.TrimSpace(commitMessage)) == 0 {
		return errors.New(missingMessageMessageConstant)
	}

	filePairs, fileFlagError := command.Flags().GetStringArray(fileFlagNameConstant)
	if fileFlagError != nil {
		return fileFlagError
	}
	filesJSON, filesJSONFlagError := command.Flags().GetString(filesJSONFlagNameConstant)
	if filesJSONFlagError != nil {
		return filesJSONFlagError
	}

	changes, changesError := ParseChangeSet(filePairs, filesJSON)
	if changesError != nil {
		return changesError
	}

	gateway, gatewayError := builder.resolveGateway()
	if gatewayError != nil {
		return fmt.Errorf(gatewayUnavailableTemplateConstant, gatewayError)
	}

	service, serviceCreationError := NewService(Dependencies{Gateway: gateway})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	result, pushError := service.Push(command.Context(), Options{
		Repository: repository,
		BranchName: branchName,
		Message:    commitMessage,
		Changes:    changes,
	})
	if pushError != nil {
		return pushError
	}

	builder.resolveLogger().Info(
		pushCompletedLogMessageConstant,
		zap.String(logFieldRepositoryConstant, repository),
		zap.String(logFieldBranchConstant, branchName),
		zap.String(logFieldCommitSHAConstant, result.CommitSHA),
		zap.Int(logFieldFileCountConstant, len(result.ChangedPaths)),
	)

	renderedResult, renderError := output.NewFormatter().Render(result, resolveOutputFormat(command))
	if renderError != nil {
		return renderError
	}
	fmt.Fprintf(command.OutOrStdout(), renderedResultTemplateConstant, renderedResult)

	return nil
}

// ParseChangeSet merges repeated path=content pairs with an optional JSON
// object of path to content into one change set. JSON entries win when the
// same path appears in both forms.
func ParseChangeSet(filePairs []string, filesJSON string) (map[string]string, error) {
	changes := map[string]string{}

	for _, filePair := range filePairs {
		segments := strings.SplitN(filePair, filePairSeparatorConstant, filePairSegmentCountConstant)
		if len(segments) != filePairSegmentCountConstant || len(strings.TrimSpace(segments[0])) == 0 {
			return nil, fmt.Errorf(malformedFilePairTemplateConstant, filePair)
		}
		changes[segments[0]] = segments[1]
	}

	trimmedFilesJSON := strings.TrimSpace(filesJSON)
	if len(trimmedFilesJSON) > 0 {
		jsonChanges := map[string]string{}
		if decodingError := json.Unmarshal([]byte(trimmedFilesJSON), &jsonChanges); decodingError != nil {
			return nil, fmt.Errorf(malformedFilesJSONTemplateConstant, decodingError)
		}
		for changePath, changeContent := range jsonChanges {
			changes[changePath] = changeContent
		}
	}

	return changes, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveGateway() (Gateway, error) {
	if builder.GatewayProvider == nil {
		return nil, ErrGatewayNotConfigured
	}
	return builder.GatewayProvider()
}

func resolveOutputFormat(command *cobra.Command) output.Format {
	contextAccessor := utils.NewCommandContextAccessor()
	if formatValue, formatAvailable := contextAccessor.OutputFormat(command.Context()); formatAvailable {
		if parsedFormat, parseError := output.ParseFormat(formatValue); parseError == nil {
			return parsedFormat
		}
	}
	return output.FormatJSON
}
