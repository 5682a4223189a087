package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/jobber/internal/utils/path"
)

const (
	testHomeDirectoryConstant              = "/home/tester"
	testUserConfigurationDirectoryConstant = "/home/tester/.config"
	testApplicationDirectoryNameConstant   = "pfchrs"
)

func TestDataRootResolverResolve(testInstance *testing.T) {
	homeExpander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	testCases := []struct {
		name           string
		configuredRoot string
		lookupError    error
		expectedRoot   string
		expectError    bool
	}{
		{
			name:           "absolute_root_unchanged",
			configuredRoot: "/srv/jobs",
			expectedRoot:   "/srv/jobs",
		},
		{
			name:           "tilde_root_expanded",
			configuredRoot: "~/jobs",
			expectedRoot:   filepath.Join(testHomeDirectoryConstant, "jobs"),
		},
		{
			name:           "empty_root_uses_user_configuration_directory",
			configuredRoot: "  ",
			expectedRoot:   filepath.Join(testUserConfigurationDirectoryConstant, testApplicationDirectoryNameConstant),
		},
		{
			name:           "lookup_failure_reported",
			configuredRoot: "",
			lookupError:    errors.New("no configuration directory"),
			expectError:    true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolver := pathutils.NewDataRootResolver(homeExpander, func() (string, error) {
				if testCase.lookupError != nil {
					return "", testCase.lookupError
				}
				return testUserConfigurationDirectoryConstant, nil
			}, testApplicationDirectoryNameConstant)

			resolvedRoot, resolveError := resolver.Provider(testCase.configuredRoot)()
			if testCase.expectError {
				require.ErrorIs(testInstance, resolveError, testCase.lookupError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedRoot, resolvedRoot)
		})
	}
}

func TestHomeExpanderLeavesPathsWithoutTilde(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("home unavailable")
	})

	require.Equal(testInstance, "relative/path", expander.Expand("relative/path"))
	require.Equal(testInstance, "~/jobs", expander.Expand("~/jobs"))
}
