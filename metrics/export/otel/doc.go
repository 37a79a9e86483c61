// Package otel bridges rotor metrics into an OpenTelemetry meter using
// observable instruments. The bridge reads snapshots on collection; it adds
// no overhead to the hot path.
package otel
