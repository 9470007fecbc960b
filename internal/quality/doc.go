// Package quality computes the objective quality signals used to discount
// judge scores: mean brightness, pixel count, and edge variance over three
// regions of the frame, plus the derived boolean flags with fixed
// thresholds.
package quality
