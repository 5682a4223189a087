package jobs

// Configuration holds execution options fixed for the lifetime of a runner or persister.
type Configuration struct {
	Verbosity    int  `mapstructure:"verbosity"`
	NoJobLogging bool `mapstructure:"no_job_logging"`
}

// DefaultConfiguration returns the zero verbosity, logging-enabled configuration.
func DefaultConfiguration() Configuration {
	return Configuration{
		Verbosity:    0,
		NoJobLogging: false,
	}
}

// EchoEnabled reports whether live output should reach the console.
func (configuration Configuration) EchoEnabled() bool {
	return configuration.Verbosity > 0
}

func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration
	if sanitized.Verbosity < 0 {
		sanitized.Verbosity = 0
	}
	return sanitized
}
