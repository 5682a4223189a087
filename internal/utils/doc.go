// Package utils exposes reusable helpers consumed by the jobber commands.
//
// It houses ConfigurationLoader, LoggerFactory, and FlushingWriter, which
// integrate Viper, environment variables, zap logging, and live console output.
package utils
