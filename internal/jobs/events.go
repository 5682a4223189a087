package jobs

// JobEventObserver receives lifecycle notifications for job execution.
type JobEventObserver interface {
	// JobStarted notifies observers that a job is about to run.
	JobStarted(command string)
	// JobCompleted notifies observers that a job finished and supplies its result.
	JobCompleted(result ExecutionResult)
	// JobExecutionFailed reports failures that prevented a result from being produced.
	JobExecutionFailed(command string, failure error)
}

type noopJobEventObserver struct{}

func (noopJobEventObserver) JobStarted(string) {}

func (noopJobEventObserver) JobCompleted(ExecutionResult) {}

func (noopJobEventObserver) JobExecutionFailed(string, error) {}
