// Package workflow runs a sequence of jobs described in a YAML or JSON file.
//
// Each step names a command, optional parameters encoded as flags, and
// whether it runs directly or as a script artifact. Script steps marked
// concurrent start immediately and are awaited after the last step starts.
package workflow
