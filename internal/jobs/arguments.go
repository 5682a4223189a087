package jobs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	flagPrefixConstant                   = "--"
	encodedFlagTemplateConstant          = "--%s "
	encodedFlagWithValueTemplateConstant = "--%s %s "
	jsonQuoteTemplateConstant            = "'%s'"
	unsupportedParameterTemplateConstant = "unsupported value type %T for parameter %s"
)

// ParameterValue is the value half of a job parameter: either a boolean flag or text.
type ParameterValue struct {
	isBoolean    bool
	booleanValue bool
	textValue    string
}

// BooleanValue constructs a flag parameter value.
func BooleanValue(value bool) ParameterValue {
	return ParameterValue{isBoolean: true, booleanValue: value}
}

// TextValue constructs a string (or JSON text) parameter value.
func TextValue(value string) ParameterValue {
	return ParameterValue{textValue: value}
}

// IsBoolean reports whether the value is a flag.
func (value ParameterValue) IsBoolean() bool {
	return value.isBoolean
}

// Bool returns the flag state; false for text values.
func (value ParameterValue) Bool() bool {
	return value.isBoolean && value.booleanValue
}

// Text returns the text payload; empty for flags.
func (value ParameterValue) Text() string {
	return value.textValue
}

// Parameter pairs a parameter name with its value.
type Parameter struct {
	Name  string
	Value ParameterValue
}

// Parameters is an ordered collection of job parameters.
type Parameters []Parameter

// ParametersFromMap converts a loosely typed mapping into Parameters ordered by name.
func ParametersFromMap(rawParameters map[string]any) (Parameters, error) {
	names := make([]string, 0, len(rawParameters))
	for name := range rawParameters {
		names = append(names, name)
	}
	sort.Strings(names)

	parameters := make(Parameters, 0, len(names))
	for _, name := range names {
		switch typedValue := rawParameters[name].(type) {
		case bool:
			parameters = append(parameters, Parameter{Name: name, Value: BooleanValue(typedValue)})
		case string:
			parameters = append(parameters, Parameter{Name: name, Value: TextValue(typedValue)})
		case fmt.Stringer:
			parameters = append(parameters, Parameter{Name: name, Value: TextValue(typedValue.String())})
		default:
			return nil, fmt.Errorf(unsupportedParameterTemplateConstant, typedValue, name)
		}
	}
	return parameters, nil
}

// EncodeValue wraps valid JSON text in single quotes so a shell passes it as one token.
// Any other value is returned unchanged.
func EncodeValue(value string) string {
	if !json.Valid([]byte(value)) {
		return value
	}
	return fmt.Sprintf(jsonQuoteTemplateConstant, value)
}

// EncodeParameters renders parameters as a command-line fragment with a trailing space.
func EncodeParameters(parameters Parameters) string {
	var builder strings.Builder
	for _, parameter := range parameters {
		if parameter.Value.IsBoolean() {
			if parameter.Value.Bool() {
				builder.WriteString(fmt.Sprintf(encodedFlagTemplateConstant, parameter.Name))
			}
			continue
		}
		if len(parameter.Value.Text()) == 0 {
			continue
		}
		builder.WriteString(fmt.Sprintf(encodedFlagWithValueTemplateConstant, parameter.Name, EncodeValue(parameter.Value.Text())))
	}
	return builder.String()
}

// EncodeArguments renders parameters as an argument vector suitable for exec without a shell.
// JSON values are not quoted since no shell sits between the caller and the process.
func EncodeArguments(parameters Parameters) []string {
	arguments := make([]string, 0, len(parameters)*2)
	for _, parameter := range parameters {
		if parameter.Value.IsBoolean() {
			if parameter.Value.Bool() {
				arguments = append(arguments, flagPrefixConstant+parameter.Name)
			}
			continue
		}
		if len(parameter.Value.Text()) == 0 {
			continue
		}
		arguments = append(arguments, flagPrefixConstant+parameter.Name, parameter.Value.Text())
	}
	return arguments
}
