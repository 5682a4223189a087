package jobs

import (
	"github.com/spf13/cobra"

	"github.com/temirov/jobber/internal/jobs"
)

const (
	runCommandUseConstant              = "run [flags] -- <command>"
	runCommandShortDescriptionConstant = "Run a command directly and capture its output"
	runCommandLongDescriptionConstant  = "run tokenizes the command like a shell would, executes it without a shell, echoes stdout live when verbosity is set, and reports the captured result."
)

// RunCommandBuilder assembles the run command.
type RunCommandBuilder struct {
	CommandDependencies
}

// Build constructs the run command.
func (builder *RunCommandBuilder) Build() (*cobra.Command, error) {
	flags := &executionFlags{}
	command := &cobra.Command{
		Use:   runCommandUseConstant,
		Short: runCommandShortDescriptionConstant,
		Long:  runCommandLongDescriptionConstant,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, *flags)
		},
	}
	registerExecutionFlags(command, flags)
	return command, nil
}

func (builder *RunCommandBuilder) run(command *cobra.Command, arguments []string, flags executionFlags) error {
	commandString, commandError := commandStringFromArguments(arguments)
	if commandError != nil {
		return commandError
	}

	configuration := applyFlagOverrides(command, builder.configuration())
	runner, runnerError := jobs.NewRunner(
		builder.logger(),
		configuration.EngineConfiguration(),
		jobs.WithConsole(command.OutOrStdout()),
		jobs.WithRunnerObserver(builder.observer()),
	)
	if runnerError != nil {
		return runnerError
	}

	result, runError := runner.Run(command.Context(), commandString)
	if runError != nil {
		return runError
	}
	return finishExecution(command, builder.CommandDependencies, configuration, flags, result)
}
