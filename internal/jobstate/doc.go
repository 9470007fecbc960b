// Package jobstate tracks per-step outcomes across a batch and performs the
// guarded removal of working artifacts. A batch with any recorded failure
// keeps its working tree so a rerun can resume from the cache.
package jobstate
