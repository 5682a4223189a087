// Package jobs exposes the job engine as Cobra commands: run, script, encode,
// logpath, prune, and workflow.
package jobs
