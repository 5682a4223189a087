package ui

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/jobber/internal/jobs"
)

const (
	jobStartedMessageTemplateConstant          = "Running %s"
	jobCompletedMessageTemplateConstant        = "Completed %s"
	jobFailedExitCodeMessageTemplateConstant   = "%s failed with exit code %d"
	jobUnknownStatusMessageTemplateConstant    = "%s finished without an exit status"
	jobCancelledMessageTemplateConstant        = "%s was cancelled"
	jobExecutionFailureMessageTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant     = " (in %s)"
	standardErrorSuffixTemplateConstant        = ": %s"
	unknownFailureMessageConstant              = "unknown error"
	emptyStringConstant                        = ""
)

// JobEventFormatter builds human-readable messages for job lifecycle events.
type JobEventFormatter struct{}

// BuildStartedMessage formats the message describing a job about to run.
func (formatter JobEventFormatter) BuildStartedMessage(command string) string {
	return fmt.Sprintf(jobStartedMessageTemplateConstant, strings.TrimSpace(command))
}

// BuildCompletedMessage formats the message describing a finished job according to its exit status.
func (formatter JobEventFormatter) BuildCompletedMessage(result jobs.ExecutionResult) string {
	label := formatter.formatResultLabel(result)
	switch result.Status {
	case jobs.ExitStatusCancelled:
		return fmt.Sprintf(jobCancelledMessageTemplateConstant, label)
	case jobs.ExitStatusUnknown:
		return fmt.Sprintf(jobUnknownStatusMessageTemplateConstant, label)
	}
	if result.ReturnCode == 0 {
		return fmt.Sprintf(jobCompletedMessageTemplateConstant, label)
	}
	return fmt.Sprintf(jobFailedExitCodeMessageTemplateConstant, label, result.ReturnCode) + formatter.formatStandardErrorSuffix(result.StandardError)
}

// BuildExecutionFailureMessage formats the message describing a job that could not run.
func (formatter JobEventFormatter) BuildExecutionFailureMessage(command string, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(jobExecutionFailureMessageTemplateConstant, strings.TrimSpace(command), failureMessage)
}

func (formatter JobEventFormatter) formatResultLabel(result jobs.ExecutionResult) string {
	label := strings.TrimSpace(result.Command)
	trimmedWorkingDirectory := strings.TrimSpace(result.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return label
	}
	return label + fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter JobEventFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

// ConsoleJobEventLogger renders job lifecycle events through a human-readable zap logger.
type ConsoleJobEventLogger struct {
	logger    *zap.Logger
	formatter JobEventFormatter
}

// NewConsoleJobEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleJobEventLogger(logger *zap.Logger) *ConsoleJobEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleJobEventLogger{logger: logger, formatter: JobEventFormatter{}}
}

// JobStarted implements jobs.JobEventObserver.
func (eventLogger *ConsoleJobEventLogger) JobStarted(command string) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(command))
}

// JobCompleted implements jobs.JobEventObserver. Nonzero and ambiguous exits are logged as warnings.
func (eventLogger *ConsoleJobEventLogger) JobCompleted(result jobs.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	message := eventLogger.formatter.BuildCompletedMessage(result)
	if result.Completed() && result.ReturnCode == 0 {
		eventLogger.logger.Info(message)
		return
	}
	eventLogger.logger.Warn(message)
}

// JobExecutionFailed implements jobs.JobEventObserver.
func (eventLogger *ConsoleJobEventLogger) JobExecutionFailed(command string, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}
