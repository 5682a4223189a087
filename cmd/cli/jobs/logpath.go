package jobs

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	logPathCommandUseConstant              = "logpath"
	logPathCommandShortDescriptionConstant = "Create and print today's job history directory"
)

// LogPathCommandBuilder assembles the logpath command.
type LogPathCommandBuilder struct {
	CommandDependencies
}

// Build constructs the logpath command.
func (builder *LogPathCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   logPathCommandUseConstant,
		Short: logPathCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	registerDataRootFlag(command)
	return command, nil
}

func (builder *LogPathCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := applyFlagOverrides(command, builder.configuration())
	_, writeError := fmt.Fprintln(command.OutOrStdout(), builder.provisioner(configuration).Provision())
	return writeError
}
