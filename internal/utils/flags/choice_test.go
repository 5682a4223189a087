package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(t *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "DefaultFirstChoice",
			defaultChoice:  "text",
			choices:        []string{"text", "json", "yaml"},
			description:    "Render the execution result.",
			expectedOutput: "`<TEXT|json|yaml>` Render the execution result.",
		},
		{
			name:           "DefaultLastChoice",
			defaultChoice:  "yaml",
			choices:        []string{"text", "json", "yaml"},
			description:    "Render the execution result.",
			expectedOutput: "`<text|json|YAML>` Render the execution result.",
		},
		{
			name:           "EmptyDescription",
			defaultChoice:  "alpha",
			choices:        []string{"alpha", "beta"},
			description:    "",
			expectedOutput: "`<ALPHA|beta>`",
		},
		{
			name:           "DuplicateChoicesIgnored",
			defaultChoice:  "beta",
			choices:        []string{"beta", "beta", "alpha", "alpha"},
			description:    "Select between options.",
			expectedOutput: "`<BETA|alpha>` Select between options.",
		},
		{
			name:           "WhitespaceTrimmed",
			defaultChoice:  "primary",
			choices:        []string{" primary ", " secondary "},
			description:    "Pick a palette.",
			expectedOutput: "`<PRIMARY|secondary>` Pick a palette.",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			actual := FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description)
			require.Equal(t, testCase.expectedOutput, actual)
		})
	}
}

func TestAddChoiceFlagParsesValues(t *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedValue string
		expectError   bool
	}{
		{name: "DefaultApplied", arguments: []string{}, expectedValue: "text"},
		{name: "ExplicitChoice", arguments: []string{"--output", "json"}, expectedValue: "json"},
		{name: "CaseInsensitive", arguments: []string{"--output", "YAML"}, expectedValue: "yaml"},
		{name: "RejectsUnknown", arguments: []string{"--output", "xml"}, expectError: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			command := &cobra.Command{}

			var outputValue string
			AddChoiceFlag(command.Flags(), &outputValue, "output", "text", []string{"text", "json", "yaml"}, "Render format")

			parseError := command.ParseFlags(testCase.arguments)
			if testCase.expectError {
				require.Error(t, parseError)
				return
			}
			require.NoError(t, parseError)
			require.Equal(t, testCase.expectedValue, outputValue)
		})
	}
}
