package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/jobber/internal/jobs"
	"github.com/temirov/jobber/internal/workflow"
)

type stubCommandRunner struct {
	mutex       sync.Mutex
	commands    []string
	returnCodes map[string]int
	failures    map[string]error
}

func (runner *stubCommandRunner) Run(_ context.Context, commandString string) (jobs.ExecutionResult, error) {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()
	runner.commands = append(runner.commands, commandString)
	if failure, exists := runner.failures[commandString]; exists {
		return jobs.ExecutionResult{}, failure
	}
	return jobs.ExecutionResult{
		StandardOutput: commandString + "\n",
		Command:        commandString,
		ReturnCode:     runner.returnCodes[commandString],
		Status:         jobs.ExitStatusCompleted,
	}, nil
}

func newScriptRunner(testInstance *testing.T) *jobs.ScriptRunner {
	testInstance.Helper()
	dataRoot := testInstance.TempDir()
	provisioner := jobs.NewLogPathProvisioner(zap.NewNop(), func() (string, error) { return dataRoot, nil })
	scriptRunner, runnerError := jobs.NewScriptRunner(zap.NewNop(), provisioner)
	require.NoError(testInstance, runnerError)
	return scriptRunner
}

func TestExecutorRunsStepsInOrder(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	runner := &stubCommandRunner{}
	output := &bytes.Buffer{}

	configuration := workflow.Configuration{Steps: []workflow.StepConfiguration{
		{Name: "first", Command: "echo one", Mode: workflow.StepModeRun, Persist: workflow.PersistConfiguration{Directory: "/out", Prefix: "first."}},
		{Name: "second", Command: "echo two", Mode: workflow.StepModeRun, Parameters: map[string]any{"flag": true}},
	}}

	executor, executorError := workflow.NewExecutor(configuration, workflow.Environment{
		Runner:    runner,
		Persister: jobs.NewOutputPersister(fileSystem, jobs.DefaultConfiguration()),
		Output:    output,
	})
	require.NoError(testInstance, executorError)

	state, executionError := executor.Execute(context.Background())
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, []string{"echo one", "echo two --flag"}, runner.commands)
	require.Len(testInstance, state.Outcomes, 2)
	require.True(testInstance, state.Outcomes[0].Succeeded())
	require.Equal(testInstance, "first\tcompleted\t0\nsecond\tcompleted\t0\n", output.String())

	persistedOutput, readError := afero.ReadFile(fileSystem, "/out/first.stdout")
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "echo one\n", string(persistedOutput))
}

func TestExecutorStopsAtFailingStep(testInstance *testing.T) {
	testCases := []struct {
		name              string
		continueOnFailure bool
		expectedCommands  []string
		expectError       bool
	}{
		{name: "stops", continueOnFailure: false, expectedCommands: []string{"false"}, expectError: true},
		{name: "continues", continueOnFailure: true, expectedCommands: []string{"false", "echo after"}, expectError: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			runner := &stubCommandRunner{returnCodes: map[string]int{"false": 1}}
			configuration := workflow.Configuration{Steps: []workflow.StepConfiguration{
				{Name: "failing", Command: "false", Mode: workflow.StepModeRun, ContinueOnFailure: testCase.continueOnFailure},
				{Name: "after", Command: "echo after", Mode: workflow.StepModeRun},
			}}

			executor, executorError := workflow.NewExecutor(configuration, workflow.Environment{Runner: runner})
			require.NoError(testInstance, executorError)

			state, executionError := executor.Execute(context.Background())
			require.Equal(testInstance, testCase.expectedCommands, runner.commands)
			if testCase.expectError {
				require.ErrorIs(testInstance, executionError, workflow.ErrStepFailed)
				require.False(testInstance, state.Outcomes[0].Succeeded())
				return
			}
			require.NoError(testInstance, executionError)
		})
	}
}

func TestExecutorReportsExecutionErrors(testInstance *testing.T) {
	spawnFailure := jobs.CommandExecutionError{Command: "missing", Cause: errors.New("not found")}
	runner := &stubCommandRunner{failures: map[string]error{"missing": spawnFailure}}

	executor, executorError := workflow.NewExecutor(
		workflow.Configuration{Steps: []workflow.StepConfiguration{{Name: "spawn", Command: "missing", Mode: workflow.StepModeRun}}},
		workflow.Environment{Runner: runner},
	)
	require.NoError(testInstance, executorError)

	_, executionError := executor.Execute(context.Background())
	require.Error(testInstance, executionError)

	var commandError jobs.CommandExecutionError
	require.ErrorAs(testInstance, executionError, &commandError)
}

func TestExecutorAwaitsConcurrentScriptSteps(testInstance *testing.T) {
	configuration := workflow.Configuration{Steps: []workflow.StepConfiguration{
		{Name: "slow", Command: "sleep 0.2; echo slow", Mode: workflow.StepModeScript, Concurrent: true},
		{Name: "fast", Command: "echo fast", Mode: workflow.StepModeScript, Concurrent: true},
		{Name: "inline", Command: "echo inline", Mode: workflow.StepModeScript},
	}}

	executor, executorError := workflow.NewExecutor(configuration, workflow.Environment{ScriptStarter: newScriptRunner(testInstance)})
	require.NoError(testInstance, executorError)

	startTime := time.Now()
	state, executionError := executor.Execute(context.Background())
	require.NoError(testInstance, executionError)
	require.GreaterOrEqual(testInstance, time.Since(startTime), 200*time.Millisecond)

	outputsByStep := make(map[string]string, len(state.Outcomes))
	for _, outcome := range state.Outcomes {
		require.True(testInstance, outcome.Succeeded())
		outputsByStep[outcome.Name] = outcome.Result.StandardOutput
	}
	require.Equal(testInstance, map[string]string{"slow": "slow\n", "fast": "fast\n", "inline": "inline\n"}, outputsByStep)
	require.Equal(testInstance, "inline", state.Outcomes[0].Name)
}

func TestNewExecutorValidatesDependencies(testInstance *testing.T) {
	_, executorError := workflow.NewExecutor(
		workflow.Configuration{Steps: []workflow.StepConfiguration{{Name: "script", Command: "ls", Mode: workflow.StepModeScript}}},
		workflow.Environment{Runner: &stubCommandRunner{}},
	)
	require.Error(testInstance, executorError)

	_, executorError = workflow.NewExecutor(
		workflow.Configuration{Steps: []workflow.StepConfiguration{{Name: "run", Command: "ls", Mode: workflow.StepModeRun}}},
		workflow.Environment{},
	)
	require.Error(testInstance, executorError)
}
