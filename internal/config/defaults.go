package config

const (
	defaultJudgeBaseURL        = "http://localhost:11434"
	defaultJudgeTimeoutSeconds = 30
	defaultJudgeMaxRetries     = 2
	defaultJudgeBackoffMS      = 800

	defaultPhotoHammingThreshold = 8

	defaultVideoMinClipSeconds   = 2
	defaultVideoMaxClipSeconds   = 6
	defaultVideoPreset           = "youtube16x9"
	defaultVideoDedupeScope      = "per_source"
	defaultVideoDedupeThreshold  = 6
	defaultVideoMaxSelectedClips = 20
	defaultVideoTargetSeconds    = 90

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Judge: Judge{
			BaseURL:        defaultJudgeBaseURL,
			TimeoutSeconds: defaultJudgeTimeoutSeconds,
			MaxRetries:     defaultJudgeMaxRetries,
			RetryBackoffMS: defaultJudgeBackoffMS,
		},
		Photos: Photos{
			Dedupe:           true,
			HammingThreshold: defaultPhotoHammingThreshold,
		},
		Video: Video{
			MinClipSeconds:         defaultVideoMinClipSeconds,
			MaxClipSeconds:         defaultVideoMaxClipSeconds,
			Preset:                 defaultVideoPreset,
			Dedupe:                 true,
			DedupeScope:            defaultVideoDedupeScope,
			DedupeHammingThreshold: defaultVideoDedupeThreshold,
			MaxSelectedClips:       defaultVideoMaxSelectedClips,
			TargetDigestSeconds:    defaultVideoTargetSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
