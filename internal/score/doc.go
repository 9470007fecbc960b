// Package score is the parsing boundary for judge output. Normalize turns an
// arbitrary untrusted payload into a canonical Analysis, and the two penalty
// passes discount the judge's score for objective pixel defects and for the
// judge's own risk flags. Every score leaving this package is in [0,1].
package score
