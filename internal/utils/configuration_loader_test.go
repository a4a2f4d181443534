package utils_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hubctl/hubctl/internal/utils"
)

const (
	testEnvironmentPrefixConstant      = "TESTHUBCTL"
	testCommonSectionKeyConstant       = "common"
	testLogLevelKeyConstant            = testCommonSectionKeyConstant + ".log_level"
	testTimeoutKeyConstant             = "github.timeout"
	testDefaultLogLevelConstant        = "info"
	testConfiguredLogLevelConstant     = "debug"
	testEnvironmentLogLevelConstant    = "error"
	testConfigFileNameConstant         = "config.yaml"
	testConfigContentTemplateConstant  = "common:\n  log_level: %s\ngithub:\n  timeout: 45s\n"
	testConfigurationNameConstant      = "config"
	testConfigurationTypeConstant      = "yaml"
	testLogLevelEnvironmentKeyConstant = testEnvironmentPrefixConstant + "_COMMON_LOG_LEVEL"
	testDefaultTimeoutConstant         = "30s"
)

type configurationFixture struct {
	Common configurationCommonFixture `mapstructure:"common"`
	GitHub configurationGitHubFixture `mapstructure:"github"`
}

type configurationCommonFixture struct {
	LogLevel string `mapstructure:"log_level"`
}

type configurationGitHubFixture struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

func writeConfigurationFile(testInstance *testing.T, logLevel string) string {
	testInstance.Helper()

	configurationDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(configurationDirectory, testConfigFileNameConstant)
	configurationContent := fmt.Sprintf(testConfigContentTemplateConstant, logLevel)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(configurationContent), 0o600))

	return configurationFilePath
}

func TestConfigurationLoaderAppliesDefaults(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader(
		testConfigurationNameConstant,
		testConfigurationTypeConstant,
		testEnvironmentPrefixConstant,
		[]string{testInstance.TempDir()},
	)

	defaultValues := map[string]any{
		testLogLevelKeyConstant: testDefaultLogLevelConstant,
		testTimeoutKeyConstant:  testDefaultTimeoutConstant,
	}

	var configuration configurationFixture
	loadedConfiguration, loadError := loader.LoadConfiguration("", defaultValues, &configuration)
	require.NoError(testInstance, loadError)
	require.Empty(testInstance, loadedConfiguration.ConfigFileUsed)
	require.Equal(testInstance, testDefaultLogLevelConstant, configuration.Common.LogLevel)
	require.Equal(testInstance, 30*time.Second, configuration.GitHub.Timeout)
}

func TestConfigurationLoaderReadsConfigurationFile(testInstance *testing.T) {
	configurationFilePath := writeConfigurationFile(testInstance, testConfiguredLogLevelConstant)

	loader := utils.NewConfigurationLoader(
		testConfigurationNameConstant,
		testConfigurationTypeConstant,
		testEnvironmentPrefixConstant,
		nil,
	)

	defaultValues := map[string]any{
		testLogLevelKeyConstant: testDefaultLogLevelConstant,
		testTimeoutKeyConstant:  testDefaultTimeoutConstant,
	}

	var configuration configurationFixture
	loadedConfiguration, loadError := loader.LoadConfiguration(configurationFilePath, defaultValues, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, configurationFilePath, loadedConfiguration.ConfigFileUsed)
	require.Equal(testInstance, testConfiguredLogLevelConstant, configuration.Common.LogLevel)
	require.Equal(testInstance, 45*time.Second, configuration.GitHub.Timeout)
}

func TestConfigurationLoaderEnvironmentOverridesFile(testInstance *testing.T) {
	configurationFilePath := writeConfigurationFile(testInstance, testConfiguredLogLevelConstant)
	testInstance.Setenv(testLogLevelEnvironmentKeyConstant, testEnvironmentLogLevelConstant)

	loader := utils.NewConfigurationLoader(
		testConfigurationNameConstant,
		testConfigurationTypeConstant,
		testEnvironmentPrefixConstant,
		nil,
	)

	defaultValues := map[string]any{
		testLogLevelKeyConstant: testDefaultLogLevelConstant,
		testTimeoutKeyConstant:  testDefaultTimeoutConstant,
	}

	var configuration configurationFixture
	_, loadError := loader.LoadConfiguration(configurationFilePath, defaultValues, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, testEnvironmentLogLevelConstant, configuration.Common.LogLevel)
}

func TestConfigurationLoaderRejectsMalformedFile(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(configurationDirectory, testConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte("common: ["), 0o600))

	loader := utils.NewConfigurationLoader(
		testConfigurationNameConstant,
		testConfigurationTypeConstant,
		testEnvironmentPrefixConstant,
		nil,
	)

	var configuration configurationFixture
	_, loadError := loader.LoadConfiguration(configurationFilePath, nil, &configuration)
	require.Error(testInstance, loadError)
}
