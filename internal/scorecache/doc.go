// Package scorecache persists per-file scoring results in SQLite so repeat
// runs skip the judge for unchanged media. Entries are keyed by file path and
// validated against a content fingerprint on read.
package scorecache
