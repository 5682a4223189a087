// Package ui provides helpers for formatting human-readable console output.
//
// The helpers translate job lifecycle events into concise messages so that
// execution feedback stays readable for CLI users while detailed telemetry
// continues to flow through the structured logger.
package ui
