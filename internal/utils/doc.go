// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses ConfigurationLoader and LoggerFactory, which integrate Viper,
// environment variables, and zap logging for the CLI, along with the
// UsageError type that the entrypoint maps to exit status 2.
package utils
