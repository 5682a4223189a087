package jobs

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// ScriptInterpreter runs every generated job script.
	ScriptInterpreter = "/bin/bash"
	// ScriptShebang is the first line of every generated job script.
	ScriptShebang = "#!" + ScriptInterpreter

	scriptFileNamePrefixConstant   = "job-"
	scriptFileExtensionConstant    = ".sh"
	scriptPermissionsConstant      = 0o755
	scriptContentTemplateConstant  = "%s\n\n%s\n"
	carriageReturnConstant         = "\r"
	scriptWrittenMessageConstant   = "job script written"
	scriptFinishedMessageConstant  = "job script finished"
	scriptUnknownStatusMessage     = "job script exit status unavailable"
	logFieldScriptPathConstant     = "script_path"
	logFieldJobIdentifierConstant  = "job_identifier"
	logFieldUserIdentifierConstant = "user_identifier"
)

// JobIdentifierGenerator produces the opaque identifier used to name script artifacts.
type JobIdentifierGenerator func() string

// UserIdentifierProvider reports the identifier of the invoking user.
type UserIdentifierProvider func() string

// NewJobIdentifier returns a random 32 character hexadecimal identifier.
func NewJobIdentifier() string {
	identifier := uuid.New()
	return hex.EncodeToString(identifier[:])
}

func currentUserIdentifier() string {
	return strconv.Itoa(os.Getuid())
}

// ScriptContent renders the script body for commandString.
func ScriptContent(commandString string) string {
	return fmt.Sprintf(scriptContentTemplateConstant, ScriptShebang, strings.ReplaceAll(commandString, carriageReturnConstant, ""))
}

// ScriptRunnerOption customizes a ScriptRunner.
type ScriptRunnerOption func(*ScriptRunner)

// WithScriptObserver registers a lifecycle observer.
func WithScriptObserver(observer JobEventObserver) ScriptRunnerOption {
	return func(runner *ScriptRunner) {
		if observer != nil {
			runner.observer = observer
		}
	}
}

// WithJobIdentifierGenerator overrides how script artifacts are named.
func WithJobIdentifierGenerator(generator JobIdentifierGenerator) ScriptRunnerOption {
	return func(runner *ScriptRunner) {
		if generator != nil {
			runner.identifierGenerator = generator
		}
	}
}

// WithUserIdentifierProvider overrides the uid recorded in script results.
func WithUserIdentifierProvider(provider UserIdentifierProvider) ScriptRunnerOption {
	return func(runner *ScriptRunner) {
		if provider != nil {
			runner.userIdentifierProvider = provider
		}
	}
}

// WithScriptWorkingDirectoryProvider overrides how the recorded cwd is resolved.
func WithScriptWorkingDirectoryProvider(provider WorkingDirectoryProvider) ScriptRunnerOption {
	return func(runner *ScriptRunner) {
		if provider != nil {
			runner.workingDirectoryProvider = provider
		}
	}
}

// ScriptRunner materializes commands as script artifacts under the job history directory and runs them.
type ScriptRunner struct {
	logger                   *zap.Logger
	provisioner              *LogPathProvisioner
	observer                 JobEventObserver
	identifierGenerator      JobIdentifierGenerator
	userIdentifierProvider   UserIdentifierProvider
	workingDirectoryProvider WorkingDirectoryProvider
}

// NewScriptRunner constructs a ScriptRunner writing artifacts where provisioner points.
func NewScriptRunner(logger *zap.Logger, provisioner *LogPathProvisioner, options ...ScriptRunnerOption) (*ScriptRunner, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if provisioner == nil {
		return nil, ErrProvisionerNotConfigured
	}
	runner := &ScriptRunner{
		logger:                   logger,
		provisioner:              provisioner,
		observer:                 noopJobEventObserver{},
		identifierGenerator:      NewJobIdentifier,
		userIdentifierProvider:   currentUserIdentifier,
		workingDirectoryProvider: os.Getwd,
	}
	for _, option := range options {
		option(runner)
	}
	return runner, nil
}

// ScriptJob is a running script artifact whose result becomes available once it exits.
type ScriptJob struct {
	identifier string
	scriptPath string
	done       chan struct{}
	result     ExecutionResult
	failure    error
}

// Identifier returns the job identifier embedded in the script name.
func (job *ScriptJob) Identifier() string {
	return job.identifier
}

// ScriptPath returns the location of the script artifact.
func (job *ScriptJob) ScriptPath() string {
	return job.scriptPath
}

// Done is closed once the result is available.
func (job *ScriptJob) Done() <-chan struct{} {
	return job.done
}

// Wait blocks until the script exits and returns its result.
func (job *ScriptJob) Wait() (ExecutionResult, error) {
	<-job.done
	return job.result, job.failure
}

// RunAsScript writes commandString to a script artifact, runs it, and waits for the result.
func (runner *ScriptRunner) RunAsScript(executionContext context.Context, commandString string) (ExecutionResult, error) {
	job, startError := runner.Start(executionContext, commandString)
	if startError != nil {
		return ExecutionResult{}, startError
	}
	return job.Wait()
}

// Start writes the script artifact and launches it. Output is collected in the background.
// Spawn failures are returned immediately.
func (runner *ScriptRunner) Start(executionContext context.Context, commandString string) (*ScriptJob, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	identifier := runner.identifierGenerator()
	scriptPath := filepath.Join(runner.provisioner.Provision(), scriptFileNamePrefixConstant+identifier+scriptFileExtensionConstant)

	if writeError := runner.writeScript(scriptPath, commandString); writeError != nil {
		return nil, runner.fail(commandString, writeError)
	}
	runner.logger.Debug(
		scriptWrittenMessageConstant,
		zap.String(logFieldScriptPathConstant, scriptPath),
		zap.String(logFieldJobIdentifierConstant, identifier),
	)

	workingDirectory := currentWorkingDirectory(runner.workingDirectoryProvider)
	userIdentifier := runner.userIdentifierProvider()
	runner.observer.JobStarted(commandString)

	// The interpreter is invoked explicitly so a concurrently forked child holding the
	// freshly written script open cannot fail the exec with ETXTBSY.
	command := exec.CommandContext(executionContext, ScriptInterpreter, scriptPath)
	process, startError := startProcess(
		executionContext,
		command,
		StreamCapture{Policy: StreamPolicyReadToCompletion},
		StreamCapture{Policy: StreamPolicyReadToCompletion},
	)
	if startError != nil {
		return nil, runner.fail(commandString, startError)
	}

	job := &ScriptJob{
		identifier: identifier,
		scriptPath: scriptPath,
		done:       make(chan struct{}),
	}

	go func() {
		defer close(job.done)

		outcome, waitError := process.wait()
		if waitError != nil {
			job.failure = runner.fail(commandString, waitError)
			return
		}

		job.result = ExecutionResult{
			StandardOutput:   outcome.standardOutput,
			StandardError:    outcome.standardError,
			Command:          commandString,
			WorkingDirectory: workingDirectory,
			ReturnCode:       outcome.returnCode,
			Status:           outcome.status,
			UserIdentifier:   userIdentifier,
			ScriptPath:       scriptPath,
		}

		if job.result.Status == ExitStatusUnknown {
			runner.logger.Warn(scriptUnknownStatusMessage, zap.String(logFieldScriptPathConstant, scriptPath))
		}
		runner.logger.Debug(
			scriptFinishedMessageConstant,
			zap.String(logFieldScriptPathConstant, scriptPath),
			zap.String(logFieldUserIdentifierConstant, userIdentifier),
			zap.Int(logFieldReturnCodeConstant, job.result.ReturnCode),
			zap.String(logFieldStatusConstant, string(job.result.Status)),
		)
		runner.observer.JobCompleted(job.result)
	}()

	return job, nil
}

func (runner *ScriptRunner) writeScript(scriptPath string, commandString string) error {
	fileSystem := runner.provisioner.FileSystem()
	if writeError := afero.WriteFile(fileSystem, scriptPath, []byte(ScriptContent(commandString)), scriptPermissionsConstant); writeError != nil {
		return fmt.Errorf(scriptWriteErrorTemplateConstant, scriptPath, writeError)
	}
	if chmodError := fileSystem.Chmod(scriptPath, scriptPermissionsConstant); chmodError != nil {
		return fmt.Errorf(scriptWriteErrorTemplateConstant, scriptPath, chmodError)
	}
	return nil
}

func (runner *ScriptRunner) fail(commandString string, cause error) error {
	executionError := CommandExecutionError{Command: commandString, Cause: cause}
	runner.observer.JobExecutionFailed(commandString, executionError)
	return executionError
}
