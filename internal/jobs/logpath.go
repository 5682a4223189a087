package jobs

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// HistoryDirectoryName is the directory under the application data root holding job history.
	HistoryDirectoryName = "pfchrs-history"

	logDirectoryPermissionsConstant   = 0o755
	logDateLayoutConstant             = "2006-01-02"
	logPathFallbackMessageConstant    = "unable to create job history directory; using fallback"
	logPathProvisionedMessageConstant = "job history directory ready"
	logFieldLogPathConstant           = "log_path"
	logFieldFallbackPathConstant      = "fallback_path"
	applicationDataRootMissingMessage = "application data root not configured"
	applicationDataRootEmptyMessage   = "application data root is empty"
)

var (
	// ErrApplicationDataRootNotConfigured indicates the provisioner has no root provider.
	ErrApplicationDataRootNotConfigured = errors.New(applicationDataRootMissingMessage)
	errApplicationDataRootEmpty         = errors.New(applicationDataRootEmptyMessage)
)

// ApplicationDataRootProvider supplies the application data root directory.
type ApplicationDataRootProvider func() (string, error)

// Clock returns the current time.
type Clock func() time.Time

// LogPathProvisioner computes and creates the dated job history directory.
type LogPathProvisioner struct {
	logger       *zap.Logger
	fileSystem   afero.Fs
	rootProvider ApplicationDataRootProvider
	clock        Clock
	fallbackPath string
}

// LogPathProvisionerOption customizes a LogPathProvisioner.
type LogPathProvisionerOption func(*LogPathProvisioner)

// WithProvisionerFileSystem overrides the filesystem used to create directories.
func WithProvisionerFileSystem(fileSystem afero.Fs) LogPathProvisionerOption {
	return func(provisioner *LogPathProvisioner) {
		if fileSystem != nil {
			provisioner.fileSystem = fileSystem
		}
	}
}

// WithProvisionerClock overrides the time source.
func WithProvisionerClock(clock Clock) LogPathProvisionerOption {
	return func(provisioner *LogPathProvisioner) {
		if clock != nil {
			provisioner.clock = clock
		}
	}
}

// WithFallbackPath overrides the directory used when the history directory cannot be created.
func WithFallbackPath(fallbackPath string) LogPathProvisionerOption {
	return func(provisioner *LogPathProvisioner) {
		if len(fallbackPath) > 0 {
			provisioner.fallbackPath = fallbackPath
		}
	}
}

// NewLogPathProvisioner constructs a provisioner rooted at the directory returned by rootProvider.
func NewLogPathProvisioner(logger *zap.Logger, rootProvider ApplicationDataRootProvider, options ...LogPathProvisionerOption) *LogPathProvisioner {
	if logger == nil {
		logger = zap.NewNop()
	}
	provisioner := &LogPathProvisioner{
		logger:       logger,
		fileSystem:   afero.NewOsFs(),
		rootProvider: rootProvider,
		clock:        time.Now,
		fallbackPath: os.TempDir(),
	}
	for _, option := range options {
		option(provisioner)
	}
	return provisioner
}

// HistoryRoot returns <root>/pfchrs-history.
func (provisioner *LogPathProvisioner) HistoryRoot() (string, error) {
	if provisioner.rootProvider == nil {
		return "", ErrApplicationDataRootNotConfigured
	}
	applicationDataRoot, rootError := provisioner.rootProvider()
	if rootError != nil {
		return "", rootError
	}
	if len(applicationDataRoot) == 0 {
		return "", errApplicationDataRootEmpty
	}
	return filepath.Join(applicationDataRoot, HistoryDirectoryName), nil
}

// FileSystem exposes the filesystem the provisioner writes to.
func (provisioner *LogPathProvisioner) FileSystem() afero.Fs {
	return provisioner.fileSystem
}

// Provision returns today's history directory, creating it when missing.
// Failures are logged and the fallback directory is returned instead.
func (provisioner *LogPathProvisioner) Provision() string {
	logPath, pathError := provisioner.datedPath()
	if pathError == nil {
		pathError = provisioner.fileSystem.MkdirAll(logPath, logDirectoryPermissionsConstant)
	}
	if pathError != nil {
		provisioner.logger.Warn(
			logPathFallbackMessageConstant,
			zap.String(logFieldLogPathConstant, logPath),
			zap.String(logFieldFallbackPathConstant, provisioner.fallbackPath),
			zap.Error(pathError),
		)
		return provisioner.fallbackPath
	}

	provisioner.logger.Debug(logPathProvisionedMessageConstant, zap.String(logFieldLogPathConstant, logPath))
	return logPath
}

func (provisioner *LogPathProvisioner) datedPath() (string, error) {
	historyRoot, rootError := provisioner.HistoryRoot()
	if rootError != nil {
		return "", rootError
	}
	today := provisioner.clock()
	return filepath.Join(historyRoot, strconv.Itoa(today.Year()), today.Format(logDateLayoutConstant)), nil
}
