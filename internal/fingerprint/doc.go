// Package fingerprint computes 64-bit perceptual hashes for near-duplicate
// detection. Two perceptually similar images typically differ in only a few
// bits, so Hamming distance against a small threshold is the duplicate test.
package fingerprint
