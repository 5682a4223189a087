package jobs

import "strconv"

const (
	resultFieldStandardOutputConstant   = "stdout"
	resultFieldStandardErrorConstant    = "stderr"
	resultFieldCommandConstant          = "cmd"
	resultFieldWorkingDirectoryConstant = "cwd"
	resultFieldReturnCodeConstant       = "returncode"
	resultFieldStatusConstant           = "status"
	resultFieldUserIdentifierConstant   = "uid"
	resultFieldScriptPathConstant       = "script"
)

// ExitStatus distinguishes a known process exit from an unavailable or interrupted one.
type ExitStatus string

// Exit status values.
const (
	ExitStatusCompleted ExitStatus = "completed"
	ExitStatusUnknown   ExitStatus = "unknown"
	ExitStatusCancelled ExitStatus = "cancelled"
)

// ExecutionResult records a single job invocation.
type ExecutionResult struct {
	StandardOutput   string     `json:"stdout" yaml:"stdout"`
	StandardError    string     `json:"stderr" yaml:"stderr"`
	Command          string     `json:"cmd" yaml:"cmd"`
	WorkingDirectory string     `json:"cwd" yaml:"cwd"`
	ReturnCode       int        `json:"returncode" yaml:"returncode"`
	Status           ExitStatus `json:"status" yaml:"status"`
	UserIdentifier   string     `json:"uid,omitempty" yaml:"uid,omitempty"`
	ScriptPath       string     `json:"script,omitempty" yaml:"script,omitempty"`
}

// Completed reports whether the process exited with a known return code.
//
// A ReturnCode of 0 alongside ExitStatusUnknown does not mean the job succeeded.
func (result ExecutionResult) Completed() bool {
	return result.Status == ExitStatusCompleted
}

// ResultField is a named, rendered field of an ExecutionResult.
type ResultField struct {
	Name  string
	Value string
}

// Fields lists the result fields in persistence order. Script-only fields appear when set.
func (result ExecutionResult) Fields() []ResultField {
	fields := []ResultField{
		{Name: resultFieldStandardOutputConstant, Value: result.StandardOutput},
		{Name: resultFieldStandardErrorConstant, Value: result.StandardError},
		{Name: resultFieldCommandConstant, Value: result.Command},
		{Name: resultFieldWorkingDirectoryConstant, Value: result.WorkingDirectory},
		{Name: resultFieldReturnCodeConstant, Value: strconv.Itoa(result.ReturnCode)},
		{Name: resultFieldStatusConstant, Value: string(result.Status)},
	}
	if len(result.UserIdentifier) > 0 {
		fields = append(fields, ResultField{Name: resultFieldUserIdentifierConstant, Value: result.UserIdentifier})
	}
	if len(result.ScriptPath) > 0 {
		fields = append(fields, ResultField{Name: resultFieldScriptPathConstant, Value: result.ScriptPath})
	}
	return fields
}
