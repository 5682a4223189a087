package workflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/jobber/internal/jobs"
)

const (
	workflowExecutionErrorTemplateConstant = "workflow step %s failed: %w"
	workflowPersistErrorTemplateConstant   = "workflow step %s: %w"
	workflowRunnerMissingMessageConstant   = "workflow executor requires a command runner for run steps"
	workflowScriptMissingMessageConstant   = "workflow executor requires a script runner for script steps"
	workflowStepStartedMessageConstant     = "workflow step started"
	workflowStepFinishedMessageConstant    = "workflow step finished"
	workflowStepSummaryTemplateConstant    = "%s\t%s\t%d\n"
	workflowSummaryFailedLabelConstant     = "failed"
	logFieldStepNameConstant               = "step"
	logFieldStepModeConstant               = "mode"
	logFieldReturnCodeConstant             = "return_code"
)

// ErrStepFailed marks a step that ran but did not exit with code zero.
var ErrStepFailed = errors.New("step exited unsuccessfully")

// Executor coordinates workflow step execution.
type Executor struct {
	operations  []Operation
	environment Environment
}

// NewExecutor builds one operation per configured step.
func NewExecutor(configuration Configuration, environment Environment) (*Executor, error) {
	if environment.Logger == nil {
		environment.Logger = zap.NewNop()
	}

	operations := make([]Operation, 0, len(configuration.Steps))
	for _, step := range configuration.Steps {
		switch step.Mode {
		case StepModeScript:
			if environment.ScriptStarter == nil {
				return nil, errors.New(workflowScriptMissingMessageConstant)
			}
		default:
			if environment.Runner == nil {
				return nil, errors.New(workflowRunnerMissingMessageConstant)
			}
		}
		operations = append(operations, &stepOperation{step: step})
	}
	return &Executor{operations: operations, environment: environment}, nil
}

// Execute runs the steps in order. Concurrent script steps are awaited once every step has started.
func (executor *Executor) Execute(executionContext context.Context) (*State, error) {
	state := &State{}
	var executionError error
	for _, operation := range executor.operations {
		if operationError := operation.Execute(executionContext, &executor.environment, state); operationError != nil {
			executionError = fmt.Errorf(workflowExecutionErrorTemplateConstant, operation.Name(), operationError)
			break
		}
	}

	if awaitError := awaitPendingJobs(&executor.environment, state); awaitError != nil && executionError == nil {
		executionError = awaitError
	}
	return state, executionError
}

type stepOperation struct {
	step StepConfiguration
}

func (operation *stepOperation) Name() string {
	return operation.step.Name
}

func (operation *stepOperation) Execute(executionContext context.Context, environment *Environment, state *State) error {
	commandLine, commandError := operation.step.CommandLine()
	if commandError != nil {
		return commandError
	}

	environment.Logger.Debug(
		workflowStepStartedMessageConstant,
		zap.String(logFieldStepNameConstant, operation.step.Name),
		zap.String(logFieldStepModeConstant, string(operation.step.Mode)),
	)

	if operation.step.Mode == StepModeScript {
		scriptJob, startError := environment.ScriptStarter.Start(executionContext, commandLine)
		if startError != nil {
			return recordOutcome(environment, state, operation.step, jobs.ExecutionResult{}, startError)
		}
		if operation.step.Concurrent {
			state.pendingJobs = append(state.pendingJobs, pendingScriptJob{step: operation.step, job: scriptJob})
			return nil
		}
		result, waitError := scriptJob.Wait()
		return recordOutcome(environment, state, operation.step, result, waitError)
	}

	result, runError := environment.Runner.Run(executionContext, commandLine)
	return recordOutcome(environment, state, operation.step, result, runError)
}

func awaitPendingJobs(environment *Environment, state *State) error {
	var firstError error
	for _, pending := range state.pendingJobs {
		result, waitError := pending.job.Wait()
		if outcomeError := recordOutcome(environment, state, pending.step, result, waitError); outcomeError != nil && firstError == nil {
			firstError = fmt.Errorf(workflowExecutionErrorTemplateConstant, pending.step.Name, outcomeError)
		}
	}
	state.pendingJobs = nil
	return firstError
}

// recordOutcome stores the outcome, persists the result when requested, and reports failures the step does not tolerate.
func recordOutcome(environment *Environment, state *State, step StepConfiguration, result jobs.ExecutionResult, executionError error) error {
	outcome := StepOutcome{Name: step.Name, Result: result, Error: executionError}

	if executionError == nil && len(step.Persist.Directory) > 0 && environment.Persister != nil {
		if _, persistError := environment.Persister.Persist(result, step.Persist.Directory, step.Persist.Prefix); persistError != nil {
			outcome.Error = fmt.Errorf(workflowPersistErrorTemplateConstant, step.Name, persistError)
		}
	}

	state.Outcomes = append(state.Outcomes, outcome)
	environment.Logger.Debug(
		workflowStepFinishedMessageConstant,
		zap.String(logFieldStepNameConstant, step.Name),
		zap.Int(logFieldReturnCodeConstant, result.ReturnCode),
		zap.Error(outcome.Error),
	)
	writeSummary(environment, outcome)

	if outcome.Succeeded() || step.ContinueOnFailure {
		return nil
	}
	if outcome.Error != nil {
		return outcome.Error
	}
	return ErrStepFailed
}

func writeSummary(environment *Environment, outcome StepOutcome) {
	if environment.Output == nil {
		return
	}
	statusLabel := string(outcome.Result.Status)
	if outcome.Error != nil {
		statusLabel = workflowSummaryFailedLabelConstant
	}
	fmt.Fprintf(environment.Output, workflowStepSummaryTemplateConstant, outcome.Name, statusLabel, outcome.Result.ReturnCode)
}
