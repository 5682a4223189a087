package workflow

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/jobber/internal/jobs"
)

// CommandRunner executes a command synchronously.
type CommandRunner interface {
	Run(executionContext context.Context, commandString string) (jobs.ExecutionResult, error)
}

// ScriptStarter launches a command as a script artifact.
type ScriptStarter interface {
	Start(executionContext context.Context, commandString string) (*jobs.ScriptJob, error)
}

// ResultPersister writes execution results to disk.
type ResultPersister interface {
	Persist(result jobs.ExecutionResult, outputDirectory string, prefix string) (jobs.PersistStatus, error)
}

// Operation coordinates a single workflow step.
type Operation interface {
	Name() string
	Execute(executionContext context.Context, environment *Environment, state *State) error
}

// Environment exposes shared dependencies for workflow operations.
type Environment struct {
	Runner        CommandRunner
	ScriptStarter ScriptStarter
	Persister     ResultPersister
	Output        io.Writer
	Logger        *zap.Logger
}

// StepOutcome records the result of one executed step.
type StepOutcome struct {
	Name   string
	Result jobs.ExecutionResult
	Error  error
}

// Succeeded reports whether the step ran and exited with code zero.
func (outcome StepOutcome) Succeeded() bool {
	return outcome.Error == nil && outcome.Result.Completed() && outcome.Result.ReturnCode == 0
}

// State tracks step outcomes and script jobs still running.
type State struct {
	Outcomes    []StepOutcome
	pendingJobs []pendingScriptJob
}

type pendingScriptJob struct {
	step StepConfiguration
	job  *jobs.ScriptJob
}
