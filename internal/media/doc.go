// Package media wraps ffmpeg and ffprobe for probing, fixed-duration
// splitting, frame and audio extraction, and digest concatenation. Command
// execution sits behind an Executor so tests never spawn processes.
package media
