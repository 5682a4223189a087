// Package jobs runs external commands on behalf of higher-level tools.
//
// It encodes structured parameters into command-line fragments, runs commands
// directly through Runner with live stdout echo, materializes commands as
// script artifacts under a dated history directory through ScriptRunner, and
// writes captured results to disk through OutputPersister.
package jobs
