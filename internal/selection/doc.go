// Package selection picks the final media subset from scored candidates.
// Photos are chosen against a count quota after duplicate clusters collapse
// to their best member; video clips are chosen against a duration budget
// with an optional per-source or batch-wide duplicate accumulator.
package selection
