package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hubctl/hubctl/internal/utils"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logLevel      utils.LogLevel
		logFormat     utils.LogFormat
		expectFailure bool
	}{
		{
			name:      "StructuredDebugLogger",
			logLevel:  utils.LogLevelDebug,
			logFormat: utils.LogFormatStructured,
		},
		{
			name:      "ConsoleInfoLogger",
			logLevel:  utils.LogLevelInfo,
			logFormat: utils.LogFormatConsole,
		},
		{
			name:      "StructuredWarnLogger",
			logLevel:  utils.LogLevelWarn,
			logFormat: utils.LogFormatStructured,
		},
		{
			name:      "StructuredErrorLogger",
			logLevel:  utils.LogLevelError,
			logFormat: utils.LogFormatStructured,
		},
		{
			name:          "UnsupportedLevel",
			logLevel:      utils.LogLevel("verbose"),
			logFormat:     utils.LogFormatStructured,
			expectFailure: true,
		},
		{
			name:          "UnsupportedFormat",
			logLevel:      utils.LogLevelInfo,
			logFormat:     utils.LogFormat("plain"),
			expectFailure: true,
		},
	}

	factory := utils.NewLoggerFactory()

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			logger, creationError := factory.CreateLogger(testCase.logLevel, testCase.logFormat)
			if testCase.expectFailure {
				require.Error(subTest, creationError)
				require.Nil(subTest, logger)
				return
			}
			require.NoError(subTest, creationError)
			require.NotNil(subTest, logger)
		})
	}
}
