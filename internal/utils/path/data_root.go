package pathutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const dataRootLookupErrorTemplateConstant = "unable to determine application data root: %w"

// UserConfigurationDirectoryProvider resolves the per-user configuration directory.
type UserConfigurationDirectoryProvider func() (string, error)

// DataRootResolver turns a configured application data root into an absolute directory.
// An empty configured value falls back to <user config dir>/<application directory name>.
type DataRootResolver struct {
	homeExpander                       *HomeExpander
	userConfigurationDirectoryProvider UserConfigurationDirectoryProvider
	applicationDirectoryName           string
}

// NewDataRootResolver constructs a resolver for applicationDirectoryName.
func NewDataRootResolver(homeExpander *HomeExpander, provider UserConfigurationDirectoryProvider, applicationDirectoryName string) *DataRootResolver {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	if provider == nil {
		provider = os.UserConfigDir
	}
	return &DataRootResolver{
		homeExpander:                       homeExpander,
		userConfigurationDirectoryProvider: provider,
		applicationDirectoryName:           applicationDirectoryName,
	}
}

// Resolve returns the expanded configured root or the default location.
func (resolver *DataRootResolver) Resolve(configuredRoot string) (string, error) {
	trimmedRoot := strings.TrimSpace(configuredRoot)
	if len(trimmedRoot) > 0 {
		return resolver.homeExpander.Expand(trimmedRoot), nil
	}

	userConfigurationDirectory, lookupError := resolver.userConfigurationDirectoryProvider()
	if lookupError != nil {
		return "", fmt.Errorf(dataRootLookupErrorTemplateConstant, lookupError)
	}
	return filepath.Join(userConfigurationDirectory, resolver.applicationDirectoryName), nil
}

// Provider binds configuredRoot so the result can be handed to components expecting a root provider.
func (resolver *DataRootResolver) Provider(configuredRoot string) func() (string, error) {
	return func() (string, error) {
		return resolver.Resolve(configuredRoot)
	}
}
