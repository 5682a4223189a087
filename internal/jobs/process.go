package jobs

import (
	"context"
	"errors"
	"os"
	"os/exec"
)

// WorkingDirectoryProvider reports the directory recorded as a job's cwd.
type WorkingDirectoryProvider func() (string, error)

type processOutcome struct {
	standardOutput string
	standardError  string
	returnCode     int
	status         ExitStatus
}

type runningProcess struct {
	command      *exec.Cmd
	outputSink   *streamSink
	errorSink    *streamSink
	cancellation context.Context
}

// startProcess attaches capture sinks and starts command. A start failure is returned unchanged.
func startProcess(executionContext context.Context, command *exec.Cmd, outputCapture StreamCapture, errorCapture StreamCapture) (*runningProcess, error) {
	process := &runningProcess{
		command:      command,
		outputSink:   outputCapture.newSink(),
		errorSink:    errorCapture.newSink(),
		cancellation: executionContext,
	}
	command.Stdout = process.outputSink
	command.Stderr = process.errorSink

	if startError := command.Start(); startError != nil {
		return nil, startError
	}
	return process, nil
}

// wait blocks until the process exits and both streams are drained.
func (process *runningProcess) wait() (processOutcome, error) {
	waitError := process.command.Wait()

	outcome := processOutcome{
		standardOutput: process.outputSink.String(),
		standardError:  process.errorSink.String(),
	}
	outcome.status, outcome.returnCode = resolveExitStatus(process.cancellation, process.command.ProcessState)

	if waitError != nil && outcome.status != ExitStatusCancelled {
		var exitError *exec.ExitError
		if !errors.As(waitError, &exitError) {
			return outcome, waitError
		}
	}

	process.outputSink.flush()
	process.errorSink.flush()
	return outcome, nil
}

// resolveExitStatus maps the process state onto the tagged exit status.
// The return code is 0 whenever the process reported none.
func resolveExitStatus(executionContext context.Context, processState *os.ProcessState) (ExitStatus, int) {
	if processState != nil && processState.ExitCode() >= 0 {
		return ExitStatusCompleted, processState.ExitCode()
	}
	if executionContext != nil && executionContext.Err() != nil {
		return ExitStatusCancelled, 0
	}
	return ExitStatusUnknown, 0
}

func currentWorkingDirectory(provider WorkingDirectoryProvider) string {
	if provider == nil {
		return ""
	}
	workingDirectory, workingDirectoryError := provider()
	if workingDirectoryError != nil {
		return ""
	}
	return workingDirectory
}
