package cli

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hubctl/hubctl/internal/branches"
	"github.com/hubctl/hubctl/internal/commits"
	"github.com/hubctl/hubctl/internal/githubapi"
	"github.com/hubctl/hubctl/internal/output"
	"github.com/hubctl/hubctl/internal/utils"
)

const (
	applicationNameConstant                 = "hubctl"
	applicationShortDescriptionConstant     = "Command-line interface for GitHub Git Data workflows"
	applicationLongDescriptionConstant      = "hubctl applies multi-file changes to GitHub branches as single commits and manages branch references through the REST API."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	outputFlagNameConstant                  = "output"
	outputFlagUsageConstant                 = "Override the configured output format (json, compact, or text)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	commonOutputConfigKeyConstant           = commonConfigurationKeyConstant + ".output"
	githubConfigurationKeyConstant          = "github"
	githubTokenConfigKeyConstant            = githubConfigurationKeyConstant + ".token"
	githubBaseURLConfigKeyConstant          = githubConfigurationKeyConstant + ".base_url"
	githubUserAgentConfigKeyConstant        = githubConfigurationKeyConstant + ".user_agent"
	githubTimeoutConfigKeyConstant          = githubConfigurationKeyConstant + ".timeout"
	environmentPrefixConstant               = "HUBCTL"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationOutputFieldConstant        = "output"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	outputFormatErrorTemplateConstant       = "unable to apply output format: %w"
	rootCommandInfoMessageConstant          = "hubctl CLI executed"
	rootCommandDebugMessageConstant         = "hubctl CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	defaultBaseURLConstant                  = "https://api.github.com"
	defaultUserAgentConstant                = "hubctl"
	defaultRequestTimeoutConstant           = 30 * time.Second
	toolsConfigurationKeyConstant           = "tools"
	pushConfigurationKeyConstant            = toolsConfigurationKeyConstant + ".push"
	branchConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".branch"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	GitHub ApplicationGitHubConfiguration `mapstructure:"github"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging and rendering configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Output    string `mapstructure:"output"`
}

// ApplicationGitHubConfiguration stores the explicit gateway settings.
type ApplicationGitHubConfiguration struct {
	Token     string        `mapstructure:"token"`
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands grouped by tool family.
type ApplicationToolsConfiguration struct {
	Push   commits.CommandConfiguration  `mapstructure:"push"`
	Branch branches.CommandConfiguration `mapstructure:"branch"`
}

// Application wires the Cobra root command, configuration loader, structured logger, and gateway.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	outputFlagValue        string
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.outputFlagValue, outputFlagNameConstant, "", outputFlagUsageConstant)

	pushBuilder := commits.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		GatewayProvider: func() (commits.Gateway, error) {
			gatewayClient, gatewayError := application.buildGateway()
			if gatewayError != nil {
				return nil, gatewayError
			}
			return gatewayClient, nil
		},
		ConfigurationProvider: func() commits.CommandConfiguration {
			return application.configuration.Tools.Push
		},
	}
	pushCommand, pushBuildError := pushBuilder.Build()
	if pushBuildError == nil {
		cobraCommand.AddCommand(pushCommand)
	}

	branchBuilder := branches.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		GatewayProvider: func() (branches.Gateway, error) {
			gatewayClient, gatewayError := application.buildGateway()
			if gatewayError != nil {
				return nil, gatewayError
			}
			return gatewayClient, nil
		},
		ConfigurationProvider: func() branches.CommandConfiguration {
			return application.configuration.Tools.Branch
		},
	}
	branchCommand, branchBuildError := branchBuilder.Build()
	if branchBuildError == nil {
		cobraCommand.AddCommand(branchCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
		commonOutputConfigKeyConstant:    string(output.FormatJSON),
		githubTokenConfigKeyConstant:     "",
		githubBaseURLConfigKeyConstant:   defaultBaseURLConstant,
		githubUserAgentConfigKeyConstant: defaultUserAgentConstant,
		githubTimeoutConfigKeyConstant:   defaultRequestTimeoutConstant.String(),
	}
	for configurationKey, configurationValue := range commits.DefaultConfigurationValues(pushConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range branches.DefaultConfigurationValues(branchConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	if application.persistentFlagChanged(command, outputFlagNameConstant) {
		application.configuration.Common.Output = application.outputFlagValue
	}

	outputFormat, outputFormatError := output.ParseFormat(application.configuration.Common.Output)
	if outputFormatError != nil {
		return fmt.Errorf(outputFormatErrorTemplateConstant, outputFormatError)
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationOutputFieldConstant, string(outputFormat)),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithOutputFormat(updatedContext, string(outputFormat))
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

// buildGateway constructs the GitHub gateway from the explicit configuration
// values resolved during initialization. The token is never read from the
// process environment here; environment overrides flow through the
// configuration loader's HUBCTL prefix.
func (application *Application) buildGateway() (*githubapi.Client, error) {
	return githubapi.NewClient(githubapi.Configuration{
		Token:     application.configuration.GitHub.Token,
		BaseURL:   application.configuration.GitHub.BaseURL,
		UserAgent: application.configuration.GitHub.UserAgent,
		Timeout:   application.configuration.GitHub.Timeout,
	}, application.logger)
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	var persistentFlag *pflag.Flag
	if rootCommand := command.Root(); rootCommand != nil {
		persistentFlag = rootCommand.PersistentFlags().Lookup(flagName)
	}
	if persistentFlag == nil {
		persistentFlag = command.Flags().Lookup(flagName)
	}

	return persistentFlag != nil && persistentFlag.Changed
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	return nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}
