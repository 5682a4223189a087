package jobs

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/temirov/jobber/internal/utils"
)

const (
	standardErrorEchoTemplateConstant = "\nstderr: \n%s\n"
	runnerStartedMessageConstant      = "running job"
	runnerCompletedMessageConstant    = "job finished"
	runnerFailedMessageConstant       = "job could not be executed"
	logFieldCommandConstant           = "command"
	logFieldWorkingDirectoryConstant  = "working_directory"
	logFieldReturnCodeConstant        = "return_code"
	logFieldStatusConstant            = "status"
)

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithConsole overrides the writer receiving live output.
func WithConsole(console io.Writer) RunnerOption {
	return func(runner *Runner) {
		if console != nil {
			runner.console = utils.NewFlushingWriter(console)
		}
	}
}

// WithRunnerObserver registers a lifecycle observer.
func WithRunnerObserver(observer JobEventObserver) RunnerOption {
	return func(runner *Runner) {
		if observer != nil {
			runner.observer = observer
		}
	}
}

// WithRunnerWorkingDirectoryProvider overrides how the recorded cwd is resolved.
func WithRunnerWorkingDirectoryProvider(provider WorkingDirectoryProvider) RunnerOption {
	return func(runner *Runner) {
		if provider != nil {
			runner.workingDirectoryProvider = provider
		}
	}
}

// WithStandardErrorPolicy overrides how stderr is surfaced; stdout stays line buffered.
func WithStandardErrorPolicy(policy StreamPolicy) RunnerOption {
	return func(runner *Runner) {
		runner.standardErrorPolicy = policy
	}
}

// Runner executes commands directly, echoing stdout live when verbosity is nonzero.
type Runner struct {
	logger                   *zap.Logger
	configuration            Configuration
	console                  io.Writer
	observer                 JobEventObserver
	workingDirectoryProvider WorkingDirectoryProvider
	standardErrorPolicy      StreamPolicy
}

// NewRunner constructs a Runner.
func NewRunner(logger *zap.Logger, configuration Configuration, options ...RunnerOption) (*Runner, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	runner := &Runner{
		logger:                   logger,
		configuration:            configuration.sanitize(),
		console:                  utils.NewFlushingWriter(os.Stdout),
		observer:                 noopJobEventObserver{},
		workingDirectoryProvider: os.Getwd,
		standardErrorPolicy:      StreamPolicyReadToCompletion,
	}
	for _, option := range options {
		option(runner)
	}
	return runner, nil
}

// Run tokenizes commandString and executes it without a shell.
// A nonzero exit is reported in the result, not as an error.
func (runner *Runner) Run(executionContext context.Context, commandString string) (ExecutionResult, error) {
	arguments, tokenizeError := shellquote.Split(commandString)
	if tokenizeError != nil {
		return runner.fail(commandString, fmt.Errorf(commandTokenizeErrorTemplateConstant, tokenizeError))
	}
	return runner.RunArguments(executionContext, commandString, arguments)
}

// RunArguments executes an explicit argument vector. commandString is recorded as the result's cmd.
func (runner *Runner) RunArguments(executionContext context.Context, commandString string, arguments []string) (ExecutionResult, error) {
	if len(arguments) == 0 {
		return runner.fail(commandString, ErrEmptyCommand)
	}
	if executionContext == nil {
		executionContext = context.Background()
	}

	workingDirectory := currentWorkingDirectory(runner.workingDirectoryProvider)
	runner.observer.JobStarted(commandString)
	runner.logger.Debug(
		runnerStartedMessageConstant,
		zap.String(logFieldCommandConstant, commandString),
		zap.String(logFieldWorkingDirectoryConstant, workingDirectory),
	)

	command := exec.CommandContext(executionContext, arguments[0], arguments[1:]...)
	process, startError := startProcess(executionContext, command, runner.standardOutputCapture(), runner.standardErrorCapture())
	if startError != nil {
		return runner.fail(commandString, startError)
	}

	outcome, waitError := process.wait()
	if waitError != nil {
		return runner.fail(commandString, waitError)
	}

	result := ExecutionResult{
		StandardOutput:   outcome.standardOutput,
		StandardError:    outcome.standardError,
		Command:          commandString,
		WorkingDirectory: workingDirectory,
		ReturnCode:       outcome.returnCode,
		Status:           outcome.status,
	}

	if runner.configuration.EchoEnabled() && runner.standardErrorPolicy == StreamPolicyReadToCompletion && len(result.StandardError) > 0 {
		fmt.Fprintf(runner.console, standardErrorEchoTemplateConstant, result.StandardError)
	}

	runner.logger.Debug(
		runnerCompletedMessageConstant,
		zap.String(logFieldCommandConstant, commandString),
		zap.Int(logFieldReturnCodeConstant, result.ReturnCode),
		zap.String(logFieldStatusConstant, string(result.Status)),
	)
	runner.observer.JobCompleted(result)
	return result, nil
}

func (runner *Runner) standardOutputCapture() StreamCapture {
	capture := StreamCapture{Policy: StreamPolicyLineBuffered}
	if runner.configuration.EchoEnabled() {
		capture.Echo = runner.console
	}
	return capture
}

func (runner *Runner) standardErrorCapture() StreamCapture {
	capture := StreamCapture{Policy: runner.standardErrorPolicy}
	if runner.configuration.EchoEnabled() {
		capture.Echo = runner.console
	}
	return capture
}

func (runner *Runner) fail(commandString string, cause error) (ExecutionResult, error) {
	runner.logger.Debug(runnerFailedMessageConstant, zap.String(logFieldCommandConstant, commandString), zap.Error(cause))
	executionError := CommandExecutionError{Command: commandString, Cause: cause}
	runner.observer.JobExecutionFailed(commandString, executionError)
	return ExecutionResult{}, executionError
}
