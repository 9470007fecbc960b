// Package outputs defines the on-disk layout of a batch: where selected
// media, working artifacts, score caches, digests, and the JSON manifest
// live relative to the output root.
package outputs
