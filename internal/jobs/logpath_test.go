package jobs_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/jobber/internal/jobs"
)

const (
	testApplicationDataRootConstant = "/data/jobber"
	testFallbackPathConstant        = "/fallback"
)

var testReferenceTime = time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

func fixedClock() time.Time {
	return testReferenceTime
}

func staticRootProvider(root string) jobs.ApplicationDataRootProvider {
	return func() (string, error) {
		return root, nil
	}
}

func TestLogPathProvisionerProvision(testInstance *testing.T) {
	expectedPath := filepath.Join(testApplicationDataRootConstant, jobs.HistoryDirectoryName, "2024", "2024-03-05")

	testCases := []struct {
		name            string
		fileSystem      func() afero.Fs
		rootProvider    jobs.ApplicationDataRootProvider
		expectedPath    string
		expectedWarning bool
	}{
		{
			name:         "creates_dated_directory",
			fileSystem:   afero.NewMemMapFs,
			rootProvider: staticRootProvider(testApplicationDataRootConstant),
			expectedPath: expectedPath,
		},
		{
			name: "read_only_filesystem_falls_back",
			fileSystem: func() afero.Fs {
				return afero.NewReadOnlyFs(afero.NewMemMapFs())
			},
			rootProvider:    staticRootProvider(testApplicationDataRootConstant),
			expectedPath:    testFallbackPathConstant,
			expectedWarning: true,
		},
		{
			name:            "missing_provider_falls_back",
			fileSystem:      afero.NewMemMapFs,
			expectedPath:    testFallbackPathConstant,
			expectedWarning: true,
		},
		{
			name:       "provider_error_falls_back",
			fileSystem: afero.NewMemMapFs,
			rootProvider: func() (string, error) {
				return "", errors.New("settings unavailable")
			},
			expectedPath:    testFallbackPathConstant,
			expectedWarning: true,
		},
		{
			name:            "empty_root_falls_back",
			fileSystem:      afero.NewMemMapFs,
			rootProvider:    staticRootProvider(""),
			expectedPath:    testFallbackPathConstant,
			expectedWarning: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			fileSystem := testCase.fileSystem()
			provisioner := jobs.NewLogPathProvisioner(
				zap.New(observerCore),
				testCase.rootProvider,
				jobs.WithProvisionerFileSystem(fileSystem),
				jobs.WithProvisionerClock(fixedClock),
				jobs.WithFallbackPath(testFallbackPathConstant),
			)

			provisionedPath := provisioner.Provision()
			require.Equal(testInstance, testCase.expectedPath, provisionedPath)

			warnings := observedLogs.FilterLevelExact(zapcore.WarnLevel).All()
			if testCase.expectedWarning {
				require.Len(testInstance, warnings, 1)
				return
			}
			require.Empty(testInstance, warnings)

			directoryExists, existsError := afero.DirExists(fileSystem, provisionedPath)
			require.NoError(testInstance, existsError)
			require.True(testInstance, directoryExists)
		})
	}
}

func TestLogPathProvisionerIsIdempotent(testInstance *testing.T) {
	provisioner := jobs.NewLogPathProvisioner(
		zap.NewNop(),
		staticRootProvider(testApplicationDataRootConstant),
		jobs.WithProvisionerFileSystem(afero.NewMemMapFs()),
		jobs.WithProvisionerClock(fixedClock),
	)

	firstPath := provisioner.Provision()
	secondPath := provisioner.Provision()
	require.Equal(testInstance, firstPath, secondPath)
}

func TestLogPathProvisionerHistoryRoot(testInstance *testing.T) {
	provisioner := jobs.NewLogPathProvisioner(nil, nil)
	_, rootError := provisioner.HistoryRoot()
	require.ErrorIs(testInstance, rootError, jobs.ErrApplicationDataRootNotConfigured)

	provisioner = jobs.NewLogPathProvisioner(nil, staticRootProvider(testApplicationDataRootConstant))
	historyRoot, rootError := provisioner.HistoryRoot()
	require.NoError(testInstance, rootError)
	require.Equal(testInstance, filepath.Join(testApplicationDataRootConstant, jobs.HistoryDirectoryName), historyRoot)
}
