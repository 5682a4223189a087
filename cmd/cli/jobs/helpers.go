package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/jobber/internal/jobs"
	"github.com/temirov/jobber/internal/ui"
	flagutils "github.com/temirov/jobber/internal/utils/flags"
	pathutils "github.com/temirov/jobber/internal/utils/path"
)

const (
	// DefaultApplicationDataDirectoryName names the directory created under the user configuration directory.
	DefaultApplicationDataDirectoryName = "pfchrs"

	outputFlagNameConstant               = "output"
	outputFlagDescriptionConstant        = "Render the execution result."
	outputFormatTextConstant             = "text"
	outputFormatJSONConstant             = "json"
	outputFormatYAMLConstant             = "yaml"
	verbosityFlagNameConstant            = "verbosity"
	verbosityFlagShorthandConstant       = "v"
	verbosityFlagDescriptionConstant     = "Echo job output to the console when greater than zero"
	noJobLoggingFlagNameConstant         = "no-job-logging"
	noJobLoggingFlagDescriptionConstant  = "Skip writing result files"
	persistDirectoryFlagNameConstant     = "persist-dir"
	persistDirectoryFlagDescription      = "Directory receiving one file per result field"
	persistPrefixFlagNameConstant        = "prefix"
	persistPrefixFlagDescriptionConstant = "File name prefix for persisted result fields"
	dataRootFlagNameConstant             = "data-root"
	dataRootFlagDescriptionConstant      = "Application data root holding the job history directory"
	textFieldTemplateConstant            = "%s: %s\n"
	jsonIndentConstant                   = "  "
	renderErrorTemplateConstant          = "unable to render result: %w"
	persistErrorTemplateConstant         = "unable to persist result: %w"
	commandRequiredMessageConstant       = "command required; pass it after --"
	resultPersistedMessageConstant       = "job result persisted"
	logFieldDirectoryConstant            = "directory"
	logFieldFileCountConstant            = "file_count"
	newlineConstant                      = "\n"
)

var outputFormatChoices = []string{outputFormatTextConstant, outputFormatJSONConstant, outputFormatYAMLConstant}

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandDependencies carries collaborators shared by the jobs commands.
type CommandDependencies struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	FileSystem                   afero.Fs
	Clock                        jobs.Clock
	DataRootResolver             *pathutils.DataRootResolver
}

func (dependencies CommandDependencies) logger() *zap.Logger {
	return resolveLogger(dependencies.LoggerProvider)
}

// observer renders lifecycle events through the console logger when human-readable logging is enabled.
func (dependencies CommandDependencies) observer() jobs.JobEventObserver {
	if dependencies.HumanReadableLoggingProvider != nil && dependencies.HumanReadableLoggingProvider() {
		return ui.NewConsoleJobEventLogger(resolveLogger(dependencies.ConsoleLoggerProvider))
	}
	return ui.NewConsoleJobEventLogger(dependencies.logger())
}

func (dependencies CommandDependencies) configuration() CommandConfiguration {
	if dependencies.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return dependencies.ConfigurationProvider().Sanitize()
}

func (dependencies CommandDependencies) fileSystem() afero.Fs {
	if dependencies.FileSystem == nil {
		return afero.NewOsFs()
	}
	return dependencies.FileSystem
}

func (dependencies CommandDependencies) provisioner(configuration CommandConfiguration) *jobs.LogPathProvisioner {
	resolver := dependencies.DataRootResolver
	if resolver == nil {
		resolver = pathutils.NewDataRootResolver(nil, nil, DefaultApplicationDataDirectoryName)
	}
	options := []jobs.LogPathProvisionerOption{jobs.WithProvisionerFileSystem(dependencies.fileSystem())}
	if dependencies.Clock != nil {
		options = append(options, jobs.WithProvisionerClock(dependencies.Clock))
	}
	return jobs.NewLogPathProvisioner(dependencies.logger(), resolver.Provider(configuration.AppDataRoot), options...)
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// executionFlags holds the flag values shared by run and script.
type executionFlags struct {
	outputFormat     string
	persistDirectory string
	persistPrefix    string
}

// registerExecutionFlags stops flag parsing at the first positional argument so the job's own flags pass through.
func registerExecutionFlags(command *cobra.Command, values *executionFlags) {
	command.Flags().SetInterspersed(false)
	flagutils.AddChoiceFlag(command.Flags(), &values.outputFormat, outputFlagNameConstant, outputFormatTextConstant, outputFormatChoices, outputFlagDescriptionConstant)
	command.Flags().IntP(verbosityFlagNameConstant, verbosityFlagShorthandConstant, 0, verbosityFlagDescriptionConstant)
	command.Flags().Bool(noJobLoggingFlagNameConstant, false, noJobLoggingFlagDescriptionConstant)
	command.Flags().StringVar(&values.persistDirectory, persistDirectoryFlagNameConstant, "", persistDirectoryFlagDescription)
	command.Flags().StringVar(&values.persistPrefix, persistPrefixFlagNameConstant, "", persistPrefixFlagDescriptionConstant)
}

func registerDataRootFlag(command *cobra.Command) {
	command.Flags().String(dataRootFlagNameConstant, "", dataRootFlagDescriptionConstant)
}

// applyFlagOverrides layers explicitly set flags over configuration values.
func applyFlagOverrides(command *cobra.Command, configuration CommandConfiguration) CommandConfiguration {
	overridden := configuration
	if command == nil {
		return overridden
	}
	flagSet := command.Flags()
	if flagSet.Lookup(verbosityFlagNameConstant) != nil && flagSet.Changed(verbosityFlagNameConstant) {
		overridden.Verbosity, _ = flagSet.GetInt(verbosityFlagNameConstant)
	}
	if flagSet.Lookup(noJobLoggingFlagNameConstant) != nil && flagSet.Changed(noJobLoggingFlagNameConstant) {
		overridden.NoJobLogging, _ = flagSet.GetBool(noJobLoggingFlagNameConstant)
	}
	if flagSet.Lookup(dataRootFlagNameConstant) != nil && flagSet.Changed(dataRootFlagNameConstant) {
		overridden.AppDataRoot, _ = flagSet.GetString(dataRootFlagNameConstant)
	}
	return overridden.Sanitize()
}

// commandStringFromArguments takes a single argument verbatim and shell-quotes several so their boundaries survive tokenizing.
func commandStringFromArguments(arguments []string) (string, error) {
	commandString := ""
	if len(arguments) == 1 {
		commandString = strings.TrimSpace(arguments[0])
	} else {
		commandString = shellquote.Join(arguments...)
	}
	if len(strings.TrimSpace(commandString)) == 0 {
		return "", errors.New(commandRequiredMessageConstant)
	}
	return commandString, nil
}

func renderResult(output io.Writer, result jobs.ExecutionResult, outputFormat string) error {
	switch outputFormat {
	case outputFormatJSONConstant:
		encodedResult, encodeError := json.MarshalIndent(result, "", jsonIndentConstant)
		if encodeError != nil {
			return fmt.Errorf(renderErrorTemplateConstant, encodeError)
		}
		_, writeError := fmt.Fprintln(output, string(encodedResult))
		return writeError
	case outputFormatYAMLConstant:
		encodedResult, encodeError := yaml.Marshal(result)
		if encodeError != nil {
			return fmt.Errorf(renderErrorTemplateConstant, encodeError)
		}
		_, writeError := output.Write(encodedResult)
		return writeError
	default:
		for _, field := range result.Fields() {
			if _, writeError := fmt.Fprintf(output, textFieldTemplateConstant, field.Name, strings.TrimRight(field.Value, newlineConstant)); writeError != nil {
				return writeError
			}
		}
		return nil
	}
}

// finishExecution renders and optionally persists result, then reports unsuccessful jobs as errors.
func finishExecution(command *cobra.Command, dependencies CommandDependencies, configuration CommandConfiguration, flags executionFlags, result jobs.ExecutionResult) error {
	if renderError := renderResult(command.OutOrStdout(), result, flags.outputFormat); renderError != nil {
		return renderError
	}

	if len(strings.TrimSpace(flags.persistDirectory)) > 0 {
		persister := jobs.NewOutputPersister(dependencies.fileSystem(), configuration.EngineConfiguration())
		persistStatus, persistError := persister.Persist(result, flags.persistDirectory, flags.persistPrefix)
		if persistError != nil {
			return fmt.Errorf(persistErrorTemplateConstant, persistError)
		}
		dependencies.logger().Debug(
			resultPersistedMessageConstant,
			zap.String(logFieldDirectoryConstant, flags.persistDirectory),
			zap.Int(logFieldFileCountConstant, len(persistStatus.WrittenFiles)),
		)
	}

	if !result.Completed() || result.ReturnCode != 0 {
		return JobFailedError{Command: result.Command, ReturnCode: result.ReturnCode, Status: result.Status}
	}
	return nil
}
