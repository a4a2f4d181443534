package branches

import "strings"

const (
	repositoryConfigurationKeyConstant   = ".repository"
	sourceBranchConfigurationKeyConstant = ".source_branch"
)

// CommandConfiguration captures persistent settings for the branch command group.
type CommandConfiguration struct {
	Repository   string `mapstructure:"repository"`
	SourceBranch string `mapstructure:"source_branch"`
}

// DefaultCommandConfiguration returns baseline configuration values for the branch command group.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{}
}

// DefaultConfigurationValues exposes viper defaults keyed beneath the provided prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + repositoryConfigurationKeyConstant:   "",
		configurationKeyPrefix + sourceBranchConfigurationKeyConstant: "",
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.SourceBranch = strings.TrimSpace(configuration.SourceBranch)
	return sanitized
}
