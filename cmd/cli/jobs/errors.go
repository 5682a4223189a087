package jobs

import (
	"fmt"

	"github.com/temirov/jobber/internal/jobs"
)

const (
	jobFailedExitCodeTemplateConstant = "%s exited with code %d"
	jobFailedStatusTemplateConstant   = "%s finished with status %s"
	genericFailureExitCodeConstant    = 1
)

// JobFailedError reports a job that ran but did not succeed.
type JobFailedError struct {
	Command    string
	ReturnCode int
	Status     jobs.ExitStatus
}

// Error describes the failure.
func (failure JobFailedError) Error() string {
	if failure.Status == jobs.ExitStatusCompleted {
		return fmt.Sprintf(jobFailedExitCodeTemplateConstant, failure.Command, failure.ReturnCode)
	}
	return fmt.Sprintf(jobFailedStatusTemplateConstant, failure.Command, failure.Status)
}

// ExitCode returns the process exit code the CLI should terminate with.
func (failure JobFailedError) ExitCode() int {
	if failure.Status == jobs.ExitStatusCompleted && failure.ReturnCode > 0 {
		return failure.ReturnCode
	}
	return genericFailureExitCodeConstant
}
