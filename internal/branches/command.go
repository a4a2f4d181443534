package branches

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hubctl/hubctl/internal/output"
	"github.com/hubctl/hubctl/internal/utils"
)

const (
	groupCommandUseConstant            = "branch"
	groupCommandShortDescriptionConst  = "Branch management helpers"
	groupCommandLongDescriptionConst   = "branch groups subcommands that manage branch references through the GitHub REST API."
	createCommandUseConstant           = "create"
	createCommandShortDescriptionConst = "Create a branch from an explicit source branch"
	createCommandLongDescriptionConst  = "create points a new branch reference at the current head of a named source branch. The source branch must be supplied explicitly or configured; hubctl never guesses between naming conventions."
	repositoryFlagNameConstant         = "repository"
	repositoryFlagDescriptionConstant  = "Target repository in owner/name form"
	branchFlagNameConstant             = "branch"
	branchFlagDescriptionConstant      = "Name of the branch to create"
	fromFlagNameConstant               = "from"
	fromFlagDescriptionConstant        = "Source branch the new branch starts from"
	missingRepositoryMessageConstant   = "repository is required; supply --repository"
	missingBranchMessageConstant       = "branch name is required; supply --branch"
	missingSourceMessageConstant       = "source branch is required; supply --from or configure tools.branch.source_branch"
	gatewayUnavailableTemplateConstant = "github gateway unavailable: %w"
	creationLogMessageConstant         = "branch created"
	logFieldRepositoryConstant         = "repository"
	logFieldBranchConstant             = "branch"
	logFieldSourceBranchConstant       = "source_branch"
	logFieldCommitSHAConstant          = "commit_sha"
	renderedResultTemplateConstant     = "%s\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// GatewayProvider yields the configured GitHub gateway.
type GatewayProvider func() (Gateway, error)

// CommandBuilder assembles the branch command group.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GatewayProvider       GatewayProvider
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the branch command group with its create subcommand.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	groupCommand := &cobra.Command{
		Use:   groupCommandUseConstant,
		Short: groupCommandShortDescriptionConst,
		Long:  groupCommandLongDescriptionConst,
	}

	createCommand := &cobra.Command{
		Use:   createCommandUseConstant,
		Short: createCommandShortDescriptionConst,
		Long:  createCommandLongDescriptionConst,
		Args:  cobra.NoArgs,
		RunE:  builder.runCreate,
	}

	createCommand.Flags().String(repositoryFlagNameConstant, "", repositoryFlagDescriptionConstant)
	createCommand.Flags().String(branchFlagNameConstant, "", branchFlagDescriptionConstant)
	createCommand.Flags().String(fromFlagNameConstant, "", fromFlagDescriptionConstant)

	groupCommand.AddCommand(createCommand)

	return groupCommand, nil
}

func (builder *CommandBuilder) runCreate(command *cobra.Command, arguments []string) error {
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
		return errors.New(missingBranchMessageConstant)
	}

	sourceBranch, fromFlagError := command.Flags().GetString(fromFlagNameConstant)
	if fromFlagError != nil {
		return fromFlagError
	}
	if len(strings.TrimSpace(sourceBranch)) == 0 {
		sourceBranch = configuration.SourceBranch
	}
	if len(strings.TrimSpace(sourceBranch)) == 0 {
		return errors.New(missingSourceMessageConstant)
	}

	gateway, gatewayError := builder.resolveGateway()
	if gatewayError != nil {
		return fmt.Errorf(gatewayUnavailableTemplateConstant, gatewayError)
	}

	service, serviceCreationError := NewService(Dependencies{Gateway: gateway})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	result, creationError := service.Create(command.Context(), Options{
		Repository:   repository,
		BranchName:   branchName,
		SourceBranch: sourceBranch,
	})
	if creationError != nil {
		return creationError
	}

	builder.resolveLogger().Info(
		creationLogMessageConstant,
		zap.String(logFieldRepositoryConstant, repository),
		zap.String(logFieldBranchConstant, result.BranchName),
		zap.String(logFieldSourceBranchConstant, sourceBranch),
		zap.String(logFieldCommitSHAConstant, result.CommitSHA),
	)

	renderedResult, renderError := output.NewFormatter().Render(result, resolveOutputFormat(command))
	if renderError != nil {
		return renderError
	}
	fmt.Fprintf(command.OutOrStdout(), renderedResultTemplateConstant, renderedResult)

	return nil
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
