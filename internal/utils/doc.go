// Package utils exposes reusable helpers consumed by multiple commands.
//
// It currently houses the ConfigurationLoader and LoggerFactory abstractions
// that integrate Viper, environment variables, and zap logging for the CLI,
// plus the CommandContextAccessor used to thread resolved settings through
// command execution contexts.
package utils
