package jobs

import (
	"strings"
	"time"

	"github.com/temirov/jobber/internal/jobs"
)

const (
	verbosityConfigurationKeyConstant       = "verbosity"
	noJobLoggingConfigurationKeyConstant    = "no_job_logging"
	appDataRootConfigurationKeyConstant     = "app_data_root"
	scriptRetentionConfigurationKeyConstant = "script_retention"
	configurationKeySeparatorConstant       = "."
	defaultScriptRetentionConstant          = 7 * 24 * time.Hour
)

// CommandConfiguration captures the jobs configuration section.
type CommandConfiguration struct {
	Verbosity       int           `mapstructure:"verbosity"`
	NoJobLogging    bool          `mapstructure:"no_job_logging"`
	AppDataRoot     string        `mapstructure:"app_data_root"`
	ScriptRetention time.Duration `mapstructure:"script_retention"`
}

// DefaultCommandConfiguration provides the defaults applied when no configuration is supplied.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Verbosity:       0,
		NoJobLogging:    false,
		AppDataRoot:     "",
		ScriptRetention: defaultScriptRetentionConstant,
	}
}

// DefaultConfigurationValues returns the defaults keyed under configurationPrefix for the configuration loader.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefixedKey(configurationPrefix, verbosityConfigurationKeyConstant):       defaults.Verbosity,
		prefixedKey(configurationPrefix, noJobLoggingConfigurationKeyConstant):    defaults.NoJobLogging,
		prefixedKey(configurationPrefix, appDataRootConfigurationKeyConstant):     defaults.AppDataRoot,
		prefixedKey(configurationPrefix, scriptRetentionConfigurationKeyConstant): defaults.ScriptRetention.String(),
	}
}

// Sanitize normalizes configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.AppDataRoot = strings.TrimSpace(configuration.AppDataRoot)
	if sanitized.Verbosity < 0 {
		sanitized.Verbosity = 0
	}
	if sanitized.ScriptRetention <= 0 {
		sanitized.ScriptRetention = defaultScriptRetentionConstant
	}
	return sanitized
}

// EngineConfiguration projects the execution options consumed by the job engine.
func (configuration CommandConfiguration) EngineConfiguration() jobs.Configuration {
	return jobs.Configuration{
		Verbosity:    configuration.Verbosity,
		NoJobLogging: configuration.NoJobLogging,
	}
}

func prefixedKey(configurationPrefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(configurationPrefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}
