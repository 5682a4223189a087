package jobs

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/jobber/internal/jobs"
)

const (
	scriptCommandUseConstant              = "script [flags] -- <command>"
	scriptCommandShortDescriptionConstant = "Run a command as a bash script artifact"
	scriptCommandLongDescriptionConstant  = "script writes the command to a job script under the dated history directory, runs it with bash, and reports the captured result. The script is kept on disk until pruned."
	scriptStartedMessageConstant          = "job script started"
	logFieldScriptPathConstant            = "script_path"
)

// ScriptCommandBuilder assembles the script command.
type ScriptCommandBuilder struct {
	CommandDependencies
}

// Build constructs the script command.
func (builder *ScriptCommandBuilder) Build() (*cobra.Command, error) {
	flags := &executionFlags{}
	command := &cobra.Command{
		Use:   scriptCommandUseConstant,
		Short: scriptCommandShortDescriptionConstant,
		Long:  scriptCommandLongDescriptionConstant,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, *flags)
		},
	}
	registerExecutionFlags(command, flags)
	registerDataRootFlag(command)
	return command, nil
}

func (builder *ScriptCommandBuilder) run(command *cobra.Command, arguments []string, flags executionFlags) error {
	commandString, commandError := commandStringFromArguments(arguments)
	if commandError != nil {
		return commandError
	}

	configuration := applyFlagOverrides(command, builder.configuration())
	logger := builder.logger()
	scriptRunner, runnerError := jobs.NewScriptRunner(
		logger,
		builder.provisioner(configuration),
		jobs.WithScriptObserver(builder.observer()),
	)
	if runnerError != nil {
		return runnerError
	}

	scriptJob, startError := scriptRunner.Start(command.Context(), commandString)
	if startError != nil {
		return startError
	}
	logger.Debug(scriptStartedMessageConstant, zap.String(logFieldScriptPathConstant, scriptJob.ScriptPath()))

	result, waitError := scriptJob.Wait()
	if waitError != nil {
		return waitError
	}
	return finishExecution(command, builder.CommandDependencies, configuration, flags, result)
}
