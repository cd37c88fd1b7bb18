// Package probe provides ffprobe-based media inspection and typed result
// structures. A single JSON call returns everything the planner and verifier
// need: stream types and the container duration.
package probe
