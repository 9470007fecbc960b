// Package preflight validates the runtime environment before a batch:
// required binaries on PATH, judge reachability, and output volume access
// and headroom.
package preflight
