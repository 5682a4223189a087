package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/temirov/jobber/internal/jobs"
)

const (
	configurationLoadErrorTemplateConstant       = "failed to load workflow configuration: %w"
	configurationParseErrorTemplateConstant      = "failed to parse workflow configuration: %w"
	configurationPathRequiredMessageConstant     = "workflow configuration path must be provided"
	configurationEmptyStepsMessageConstant       = "workflow configuration must define at least one step"
	configurationCommandMissingTemplateConstant  = "workflow step %d missing command"
	configurationDuplicateStepTemplateConstant   = "workflow configuration defines duplicate step name %s"
	configurationUnsupportedModeTemplateConstant = "workflow step %s has unsupported mode %q"
	configurationConcurrentModeTemplateConstant  = "workflow step %s: only script steps can run concurrently"
	configurationParameterTemplateConstant       = "workflow step %s: %w"
	parameterEncodeErrorTemplateConstant         = "unable to encode parameter %s: %w"
	defaultStepNameTemplateConstant              = "step-%d"
)

// StepMode selects how a step's command is executed.
type StepMode string

// Supported step modes.
const (
	StepModeRun    StepMode = StepMode("run")
	StepModeScript StepMode = StepMode("script")
)

// Configuration describes the ordered workflow steps loaded from YAML or JSON.
type Configuration struct {
	Steps []StepConfiguration `yaml:"steps" json:"steps"`
}

// StepConfiguration describes one job in a workflow.
type StepConfiguration struct {
	Name              string               `yaml:"name" json:"name"`
	Command           string               `yaml:"command" json:"command"`
	Mode              StepMode             `yaml:"mode" json:"mode"`
	Parameters        map[string]any       `yaml:"parameters" json:"parameters"`
	Persist           PersistConfiguration `yaml:"persist" json:"persist"`
	Concurrent        bool                 `yaml:"concurrent" json:"concurrent"`
	ContinueOnFailure bool                 `yaml:"continue_on_failure" json:"continue_on_failure"`
}

// PersistConfiguration selects where a step's result fields are written.
type PersistConfiguration struct {
	Directory string `yaml:"directory" json:"directory"`
	Prefix    string `yaml:"prefix" json:"prefix"`
}

// LoadConfiguration reads the workflow definition and performs basic validation.
// A document nesting the steps under a top-level workflow key is accepted as well.
func LoadConfiguration(fileSystem afero.Fs, filePath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Configuration{}, errors.New(configurationPathRequiredMessageConstant)
	}
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}

	contentBytes, readError := afero.ReadFile(fileSystem, trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(configurationLoadErrorTemplateConstant, readError)
	}

	return ParseConfiguration(contentBytes)
}

// ParseConfiguration decodes and validates a workflow document.
func ParseConfiguration(contentBytes []byte) (Configuration, error) {
	var configuration Configuration
	if unmarshalError := yaml.Unmarshal(contentBytes, &configuration); unmarshalError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, unmarshalError)
	}

	if len(configuration.Steps) == 0 {
		var wrapper struct {
			Workflow Configuration `yaml:"workflow" json:"workflow"`
		}
		if nestedError := yaml.Unmarshal(contentBytes, &wrapper); nestedError == nil {
			configuration = wrapper.Workflow
		}
	}

	if validationError := configuration.normalize(); validationError != nil {
		return Configuration{}, validationError
	}
	return configuration, nil
}

func (configuration *Configuration) normalize() error {
	if len(configuration.Steps) == 0 {
		return errors.New(configurationEmptyStepsMessageConstant)
	}

	seenNames := make(map[string]struct{}, len(configuration.Steps))
	for stepIndex := range configuration.Steps {
		step := &configuration.Steps[stepIndex]
		step.Command = strings.TrimSpace(step.Command)
		if len(step.Command) == 0 {
			return fmt.Errorf(configurationCommandMissingTemplateConstant, stepIndex+1)
		}

		step.Name = strings.TrimSpace(step.Name)
		if len(step.Name) == 0 {
			step.Name = fmt.Sprintf(defaultStepNameTemplateConstant, stepIndex+1)
		}
		if _, exists := seenNames[step.Name]; exists {
			return fmt.Errorf(configurationDuplicateStepTemplateConstant, step.Name)
		}
		seenNames[step.Name] = struct{}{}

		step.Mode = StepMode(strings.ToLower(strings.TrimSpace(string(step.Mode))))
		switch step.Mode {
		case "":
			step.Mode = StepModeRun
		case StepModeRun, StepModeScript:
		default:
			return fmt.Errorf(configurationUnsupportedModeTemplateConstant, step.Name, step.Mode)
		}
		if step.Concurrent && step.Mode != StepModeScript {
			return fmt.Errorf(configurationConcurrentModeTemplateConstant, step.Name)
		}

		if _, parametersError := step.EncodedParameters(); parametersError != nil {
			return fmt.Errorf(configurationParameterTemplateConstant, step.Name, parametersError)
		}
	}
	return nil
}

// EncodedParameters converts the step parameters into job parameters ordered by name.
// Numbers become text and nested mappings or sequences become JSON text.
func (step StepConfiguration) EncodedParameters() (jobs.Parameters, error) {
	normalized := make(map[string]any, len(step.Parameters))
	names := make([]string, 0, len(step.Parameters))
	for name := range step.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value, normalizeError := normalizeParameterValue(step.Parameters[name])
		if normalizeError != nil {
			return nil, fmt.Errorf(parameterEncodeErrorTemplateConstant, name, normalizeError)
		}
		normalized[name] = value
	}
	return jobs.ParametersFromMap(normalized)
}

// CommandLine appends the encoded parameters to the step command.
func (step StepConfiguration) CommandLine() (string, error) {
	parameters, parametersError := step.EncodedParameters()
	if parametersError != nil {
		return "", parametersError
	}
	encodedParameters := strings.TrimSpace(jobs.EncodeParameters(parameters))
	if len(encodedParameters) == 0 {
		return step.Command, nil
	}
	return step.Command + " " + encodedParameters, nil
}

func normalizeParameterValue(rawValue any) (any, error) {
	switch typedValue := rawValue.(type) {
	case nil:
		return "", nil
	case bool, string:
		return typedValue, nil
	case int:
		return strconv.Itoa(typedValue), nil
	case int64:
		return strconv.FormatInt(typedValue, 10), nil
	case uint64:
		return strconv.FormatUint(typedValue, 10), nil
	case float64:
		return strconv.FormatFloat(typedValue, 'f', -1, 64), nil
	case map[string]any, []any:
		encodedValue, encodeError := json.Marshal(typedValue)
		if encodeError != nil {
			return nil, encodeError
		}
		return string(encodedValue), nil
	default:
		return typedValue, nil
	}
}
