package cli

import (
	"bytes"
	_ "embed"
)

// defaultJobberConfiguration holds the common and jobs sections applied before any user configuration file.
//
//go:embed default_config.yaml
var defaultJobberConfiguration []byte

// EmbeddedDefaultConfiguration returns a copy of the built-in jobber configuration and its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return bytes.Clone(defaultJobberConfiguration), configurationTypeConstant
}
