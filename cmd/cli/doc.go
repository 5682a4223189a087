// Package cli constructs the jobber command-line interface, wiring the Cobra
// command hierarchy, configuration loader, and structured logging primitives
// around the job engine.
package cli
