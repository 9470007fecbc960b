// Package audio detects speech presence in extracted clip audio using
// windowed RMS energy over 16-bit PCM WAV data.
package audio
