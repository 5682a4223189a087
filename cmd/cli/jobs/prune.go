package jobs

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/jobber/internal/jobs"
)

const (
	pruneCommandUseConstant              = "prune"
	pruneCommandShortDescriptionConstant = "Remove job scripts older than the retention window"
	retentionFlagNameConstant            = "retention"
	retentionFlagDescriptionConstant     = "Keep job scripts modified within this duration"
	pruneErrorTemplateConstant           = "unable to prune job scripts: %w"
	pruneCompletedMessageConstant        = "job scripts pruned"
	logFieldRemovedCountConstant         = "removed_count"
)

// PruneCommandBuilder assembles the prune command.
type PruneCommandBuilder struct {
	CommandDependencies
}

// Build constructs the prune command.
func (builder *PruneCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   pruneCommandUseConstant,
		Short: pruneCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	command.Flags().Duration(retentionFlagNameConstant, defaultScriptRetentionConstant, retentionFlagDescriptionConstant)
	registerDataRootFlag(command)
	return command, nil
}

func (builder *PruneCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := applyFlagOverrides(command, builder.configuration())
	retention := configuration.ScriptRetention
	if command.Flags().Changed(retentionFlagNameConstant) {
		retention, _ = command.Flags().GetDuration(retentionFlagNameConstant)
	}

	logger := builder.logger()
	pruner, prunerError := jobs.NewArtifactPruner(logger, builder.provisioner(configuration), builder.Clock)
	if prunerError != nil {
		return prunerError
	}

	report, pruneError := pruner.Prune(retention)
	if pruneError != nil {
		return fmt.Errorf(pruneErrorTemplateConstant, pruneError)
	}

	for _, removedScript := range report.RemovedScripts {
		if _, writeError := fmt.Fprintln(command.OutOrStdout(), removedScript); writeError != nil {
			return writeError
		}
	}
	logger.Info(pruneCompletedMessageConstant, zap.Int(logFieldRemovedCountConstant, len(report.RemovedScripts)))
	return nil
}
