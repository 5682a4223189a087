package jobs

import (
	"github.com/spf13/cobra"

	"github.com/temirov/jobber/internal/jobs"
	"github.com/temirov/jobber/internal/workflow"
)

const (
	workflowCommandUseConstant              = "workflow <file>"
	workflowCommandShortDescriptionConstant = "Run the jobs described in a workflow file"
	workflowCommandLongDescriptionConstant  = "workflow runs each step of a YAML or JSON workflow file in order and prints one summary line per step: name, status, and return code."
)

// WorkflowCommandBuilder assembles the workflow command.
type WorkflowCommandBuilder struct {
	CommandDependencies
}

// Build constructs the workflow command.
func (builder *WorkflowCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   workflowCommandUseConstant,
		Short: workflowCommandShortDescriptionConstant,
		Long:  workflowCommandLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}
	command.Flags().IntP(verbosityFlagNameConstant, verbosityFlagShorthandConstant, 0, verbosityFlagDescriptionConstant)
	command.Flags().Bool(noJobLoggingFlagNameConstant, false, noJobLoggingFlagDescriptionConstant)
	registerDataRootFlag(command)
	return command, nil
}

func (builder *WorkflowCommandBuilder) run(command *cobra.Command, arguments []string) error {
	workflowConfiguration, loadError := workflow.LoadConfiguration(builder.fileSystem(), arguments[0])
	if loadError != nil {
		return loadError
	}

	configuration := applyFlagOverrides(command, builder.configuration())
	logger := builder.logger()
	observer := builder.observer()

	runner, runnerError := jobs.NewRunner(
		logger,
		configuration.EngineConfiguration(),
		jobs.WithConsole(command.ErrOrStderr()),
		jobs.WithRunnerObserver(observer),
	)
	if runnerError != nil {
		return runnerError
	}

	scriptRunner, scriptRunnerError := jobs.NewScriptRunner(logger, builder.provisioner(configuration), jobs.WithScriptObserver(observer))
	if scriptRunnerError != nil {
		return scriptRunnerError
	}

	executor, executorError := workflow.NewExecutor(workflowConfiguration, workflow.Environment{
		Runner:        runner,
		ScriptStarter: scriptRunner,
		Persister:     jobs.NewOutputPersister(builder.fileSystem(), configuration.EngineConfiguration()),
		Output:        command.OutOrStdout(),
		Logger:        logger,
	})
	if executorError != nil {
		return executorError
	}

	_, executionError := executor.Execute(command.Context())
	return executionError
}
