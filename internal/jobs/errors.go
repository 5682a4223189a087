package jobs

import (
	"errors"
	"fmt"
)

const (
	loggerNotConfiguredMessageConstant      = "logger not configured"
	provisionerNotConfiguredMessageConstant = "log path provisioner not configured"
	emptyCommandMessageConstant             = "command is empty"
	commandExecutionErrorTemplateConstant   = "%s failed: %v"
	scriptWriteErrorTemplateConstant        = "unable to write job script %s: %w"
	commandTokenizeErrorTemplateConstant    = "unable to tokenize command: %w"
	persistWriteErrorTemplateConstant       = "unable to persist %s: %w"
)

var (
	// ErrLoggerNotConfigured indicates a missing logger dependency.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrProvisionerNotConfigured indicates a script runner was built without a log path provisioner.
	ErrProvisionerNotConfigured = errors.New(provisionerNotConfiguredMessageConstant)
	// ErrEmptyCommand indicates a command string without any tokens.
	ErrEmptyCommand = errors.New(emptyCommandMessageConstant)
)

// CommandExecutionError reports a job that could not be started or observed.
type CommandExecutionError struct {
	Command string
	Cause   error
}

// Error describes the failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, executionError.Command, executionError.Cause)
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}
