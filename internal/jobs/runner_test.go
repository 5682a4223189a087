package jobs_test

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/jobber/internal/jobs"
)

const (
	testWorkingDirectoryConstant = "/work/project"
	testMissingExecutableCommand = "jobber-missing-executable-for-tests --flag"
)

type recordingObserver struct {
	mutex     sync.Mutex
	started   []string
	completed []jobs.ExecutionResult
	failures  []error
}

func (observer *recordingObserver) JobStarted(command string) {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	observer.started = append(observer.started, command)
}

func (observer *recordingObserver) JobCompleted(result jobs.ExecutionResult) {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	observer.completed = append(observer.completed, result)
}

func (observer *recordingObserver) JobExecutionFailed(command string, failure error) {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	observer.failures = append(observer.failures, failure)
}

func staticWorkingDirectory() (string, error) {
	return testWorkingDirectoryConstant, nil
}

func newTestRunner(testInstance *testing.T, configuration jobs.Configuration, options ...jobs.RunnerOption) *jobs.Runner {
	testInstance.Helper()
	options = append([]jobs.RunnerOption{jobs.WithRunnerWorkingDirectoryProvider(staticWorkingDirectory)}, options...)
	runner, runnerError := jobs.NewRunner(zap.NewNop(), configuration, options...)
	require.NoError(testInstance, runnerError)
	return runner
}

func TestRunnerRun(testInstance *testing.T) {
	testCases := []struct {
		name                   string
		command                string
		expectedStandardOutput string
		expectedStandardError  string
		expectedReturnCode     int
	}{
		{
			name:                   "successful_command",
			command:                "echo hello",
			expectedStandardOutput: "hello\n",
			expectedReturnCode:     0,
		},
		{
			name:                   "quoted_arguments_stay_together",
			command:                `printf '%s|%s' "two words" plain`,
			expectedStandardOutput: "two words|plain",
		},
		{
			name:                  "nonzero_exit_reported",
			command:               `sh -c 'echo broken >&2; exit 3'`,
			expectedStandardError: "broken\n",
			expectedReturnCode:    3,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			runner := newTestRunner(testInstance, jobs.DefaultConfiguration())

			result, runError := runner.Run(context.Background(), testCase.command)
			require.NoError(testInstance, runError)
			require.Equal(testInstance, testCase.expectedStandardOutput, result.StandardOutput)
			require.Equal(testInstance, testCase.expectedStandardError, result.StandardError)
			require.Equal(testInstance, testCase.expectedReturnCode, result.ReturnCode)
			require.Equal(testInstance, jobs.ExitStatusCompleted, result.Status)
			require.Equal(testInstance, testCase.command, result.Command)
			require.Equal(testInstance, testWorkingDirectoryConstant, result.WorkingDirectory)
		})
	}
}

func TestRunnerConsoleEcho(testInstance *testing.T) {
	const command = `sh -c 'echo out; echo err >&2'`

	testCases := []struct {
		name            string
		verbosity       int
		expectedConsole string
	}{
		{
			name:            "silent_without_verbosity",
			verbosity:       0,
			expectedConsole: "",
		},
		{
			name:            "stdout_live_stderr_after_completion",
			verbosity:       1,
			expectedConsole: "out\n\nstderr: \nerr\n\n",
		},
		{
			name:            "negative_verbosity_is_silent",
			verbosity:       -2,
			expectedConsole: "",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			console := &bytes.Buffer{}
			runner := newTestRunner(testInstance, jobs.Configuration{Verbosity: testCase.verbosity}, jobs.WithConsole(console))

			result, runError := runner.Run(context.Background(), command)
			require.NoError(testInstance, runError)
			require.Equal(testInstance, "out\n", result.StandardOutput)
			require.Equal(testInstance, "err\n", result.StandardError)
			require.Equal(testInstance, testCase.expectedConsole, console.String())
		})
	}
}

func TestRunnerLineBufferedStandardError(testInstance *testing.T) {
	console := &bytes.Buffer{}
	runner := newTestRunner(
		testInstance,
		jobs.Configuration{Verbosity: 1},
		jobs.WithConsole(console),
		jobs.WithStandardErrorPolicy(jobs.StreamPolicyLineBuffered),
	)

	result, runError := runner.Run(context.Background(), `sh -c 'echo err >&2'`)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, "err\n", result.StandardError)
	require.Equal(testInstance, "err\n", console.String())
}

func TestRunnerLargeOutputOnBothStreams(testInstance *testing.T) {
	runner := newTestRunner(testInstance, jobs.DefaultConfiguration())

	result, runError := runner.Run(context.Background(), `sh -c 'i=0; while [ $i -lt 5000 ]; do echo line-$i; echo warn-$i >&2; i=$((i+1)); done'`)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 0, result.ReturnCode)
	require.Contains(testInstance, result.StandardOutput, "line-4999\n")
	require.Contains(testInstance, result.StandardError, "warn-4999\n")
}

func TestRunnerReportsExecutionFailures(testInstance *testing.T) {
	testCases := []struct {
		name          string
		command       string
		expectedCause error
	}{
		{name: "missing_executable", command: testMissingExecutableCommand, expectedCause: exec.ErrNotFound},
		{name: "empty_command", command: "   ", expectedCause: jobs.ErrEmptyCommand},
		{name: "unterminated_quote", command: `echo "unterminated`},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observer := &recordingObserver{}
			runner := newTestRunner(testInstance, jobs.DefaultConfiguration(), jobs.WithRunnerObserver(observer))

			result, runError := runner.Run(context.Background(), testCase.command)
			require.Error(testInstance, runError)
			require.IsType(testInstance, jobs.CommandExecutionError{}, runError)
			if testCase.expectedCause != nil {
				require.True(testInstance, errors.Is(runError, testCase.expectedCause))
			}
			require.Equal(testInstance, jobs.ExecutionResult{}, result)
			require.Len(testInstance, observer.failures, 1)
			require.Empty(testInstance, observer.completed)
		})
	}
}

func TestRunnerNotifiesObserver(testInstance *testing.T) {
	observer := &recordingObserver{}
	runner := newTestRunner(testInstance, jobs.DefaultConfiguration(), jobs.WithRunnerObserver(observer))

	result, runError := runner.Run(context.Background(), "echo observed")
	require.NoError(testInstance, runError)
	require.Equal(testInstance, []string{"echo observed"}, observer.started)
	require.Equal(testInstance, []jobs.ExecutionResult{result}, observer.completed)
	require.Empty(testInstance, observer.failures)
}

func TestRunnerCancellation(testInstance *testing.T) {
	runner := newTestRunner(testInstance, jobs.DefaultConfiguration())

	executionContext, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, runError := runner.Run(executionContext, "sleep 5")
	require.NoError(testInstance, runError)
	require.Equal(testInstance, jobs.ExitStatusCancelled, result.Status)
	require.Equal(testInstance, 0, result.ReturnCode)
	require.False(testInstance, result.Completed())
}

func TestRunArgumentsRecordsCommandString(testInstance *testing.T) {
	runner := newTestRunner(testInstance, jobs.DefaultConfiguration())

	parameters := jobs.Parameters{{Name: "data", Value: jobs.TextValue(`{"a":1}`)}}
	arguments := append([]string{"printf", "%s %s"}, jobs.EncodeArguments(parameters)...)

	result, runError := runner.RunArguments(context.Background(), "printf data", arguments)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, `--data {"a":1}`, result.StandardOutput)
	require.Equal(testInstance, "printf data", result.Command)
}

func TestNewRunnerRequiresLogger(testInstance *testing.T) {
	_, runnerError := jobs.NewRunner(nil, jobs.DefaultConfiguration())
	require.ErrorIs(testInstance, runnerError, jobs.ErrLoggerNotConfigured)
}
