package jobs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/temirov/jobber/internal/jobs"
)

const (
	encodeCommandUseConstant              = "encode [--argv] name[=value]..."
	encodeCommandShortDescriptionConstant = "Encode job parameters as command-line flags"
	encodeCommandLongDescriptionConstant  = "encode renders name=value pairs as --name value flags. A bare name or name=true becomes a flag, name=false is dropped, and JSON values are single-quoted."
	argvFlagNameConstant                  = "argv"
	argvFlagDescriptionConstant           = "Print the shell-quoted argument vector instead of the flag string"
	parameterAssignmentConstant           = "="
	invalidParameterTemplateConstant      = "invalid parameter %q: name required"
)

// EncodeCommandBuilder assembles the encode command.
type EncodeCommandBuilder struct{}

// Build constructs the encode command.
func (builder *EncodeCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   encodeCommandUseConstant,
		Short: encodeCommandShortDescriptionConstant,
		Long:  encodeCommandLongDescriptionConstant,
		RunE:  builder.run,
	}
	command.Flags().Bool(argvFlagNameConstant, false, argvFlagDescriptionConstant)
	return command, nil
}

func (builder *EncodeCommandBuilder) run(command *cobra.Command, arguments []string) error {
	parameters, parseError := ParseParameters(arguments)
	if parseError != nil {
		return parseError
	}

	argumentVectorRequested, _ := command.Flags().GetBool(argvFlagNameConstant)
	if argumentVectorRequested {
		_, writeError := fmt.Fprintln(command.OutOrStdout(), shellquote.Join(jobs.EncodeArguments(parameters)...))
		return writeError
	}
	_, writeError := fmt.Fprintln(command.OutOrStdout(), jobs.EncodeParameters(parameters))
	return writeError
}

// ParseParameters converts name[=value] arguments into ordered job parameters.
func ParseParameters(arguments []string) (jobs.Parameters, error) {
	parameters := make(jobs.Parameters, 0, len(arguments))
	for _, argument := range arguments {
		name, value, hasValue := strings.Cut(argument, parameterAssignmentConstant)
		name = strings.TrimSpace(name)
		if len(name) == 0 {
			return nil, fmt.Errorf(invalidParameterTemplateConstant, argument)
		}
		if !hasValue {
			parameters = append(parameters, jobs.Parameter{Name: name, Value: jobs.BooleanValue(true)})
			continue
		}
		if booleanValue, parseError := strconv.ParseBool(value); parseError == nil && isBooleanLiteral(value) {
			parameters = append(parameters, jobs.Parameter{Name: name, Value: jobs.BooleanValue(booleanValue)})
			continue
		}
		parameters = append(parameters, jobs.Parameter{Name: name, Value: jobs.TextValue(value)})
	}
	return parameters, nil
}

// isBooleanLiteral limits boolean parsing to true and false so values like "1" stay text.
func isBooleanLiteral(value string) bool {
	switch strings.ToLower(value) {
	case "true", "false":
		return true
	default:
		return false
	}
}
