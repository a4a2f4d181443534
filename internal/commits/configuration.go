package commits

import "strings"

const (
	repositoryConfigurationKeyConstant = ".repository"
	branchConfigurationKeyConstant     = ".branch"
)

// CommandConfiguration captures persistent settings for the push command.
type CommandConfiguration struct {
	Repository string `mapstructure:"repository"`
	BranchName string `mapstructure:"branch"`
}

// DefaultCommandConfiguration returns baseline configuration values for the push command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{}
}

// DefaultConfigurationValues exposes viper defaults keyed beneath the provided prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + repositoryConfigurationKeyConstant: "",
		configurationKeyPrefix + branchConfigurationKeyConstant:     "",
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.BranchName = strings.TrimSpace(configuration.BranchName)
	return sanitized
}
