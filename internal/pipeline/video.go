package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"reelpick/internal/audio"
	"reelpick/internal/config"
	"reelpick/internal/fileutil"
	"reelpick/internal/fingerprint"
	"reelpick/internal/imaging"
	"reelpick/internal/jobstate"
	"reelpick/internal/judge"
	"reelpick/internal/logging"
	"reelpick/internal/media"
	"reelpick/internal/outputs"
	"reelpick/internal/quality"
	"reelpick/internal/score"
	"reelpick/internal/scorecache"
	"reelpick/internal/selection"
)

// VideoRunner executes one video digest batch.
type VideoRunner struct {
	cfg    *config.Config
	judge  Judge
	tool   MediaTool
	logger *slog.Logger
}

// NewVideoRunner wires a video batch runner.
func NewVideoRunner(cfg *config.Config, judgeClient Judge, tool MediaTool, logger *slog.Logger) *VideoRunner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &VideoRunner{cfg: cfg, judge: judgeClient, tool: tool, logger: logging.WithComponent(logger, "videos")}
}

// VideoRequest names the inputs of one video batch.
type VideoRequest struct {
	InputDir  string
	OutputDir string
	Keep      bool
}

// Run splits every source under InputDir into clips, scores each clip's
// midpoint frame, selects a duration-budgeted digest per source, and
// concatenates it. Sources are processed in sorted path order so a
// global-scope dedupe accumulator behaves deterministically. The working
// tree is removed afterwards only when the whole batch is failure-free.
func (r *VideoRunner) Run(ctx context.Context, req VideoRequest) (*outputs.VideoManifest, error) {
	release, err := lockOutputDir(req.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("video run: %w", err)
	}
	defer release()

	paths := outputs.NewVideoPaths(req.OutputDir)
	sources, err := media.CollectVideos(req.InputDir)
	if err != nil {
		return nil, fmt.Errorf("video run: %w", err)
	}

	store, err := scorecache.Open(paths.CachePath())
	if err != nil {
		return nil, fmt.Errorf("video run: %w", err)
	}
	defer store.Close()

	manifest := &outputs.VideoManifest{
		BatchID:     uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		OutputDir:   req.OutputDir,
	}
	ledger := jobstate.NewLedger()
	r.logger.Info("starting video batch",
		logging.String("batch_id", manifest.BatchID),
		logging.Int("sources", len(sources)))

	var globalAcc *selection.Accumulator
	if r.cfg.Video.Dedupe && r.cfg.Video.DedupeScope == config.DedupeScopeGlobal {
		globalAcc = selection.NewAccumulator(r.cfg.Video.DedupeHammingThreshold)
	}

	batchFailed := false
	for _, source := range sources {
		result := r.processSource(ctx, store, ledger, paths, source, globalAcc)
		if result.Error != "" {
			batchFailed = true
		}
		for _, clip := range result.Clips {
			if clip.Error != "" {
				batchFailed = true
			}
		}
		manifest.Sources = append(manifest.Sources, result)
	}

	if err := outputs.WriteManifest(paths.Manifest(), manifest); err != nil {
		return nil, fmt.Errorf("video run: %w", err)
	}

	report, cleanupErr := jobstate.CleanupTemp(ledger, jobstate.CleanupOptions{
		WorkDir:     paths.TempDir(),
		OutputDir:   req.OutputDir,
		Keep:        req.Keep || r.cfg.Video.KeepTemp,
		BatchFailed: batchFailed,
	}, r.logger)
	if cleanupErr != nil {
		r.logger.Warn("cleanup refused", logging.Error(cleanupErr))
	} else if report.Skipped {
		r.logger.Info("working tree kept", logging.String("reason", report.SkipReason))
	}

	return manifest, nil
}

// processSource handles split, score, select, and concat for one source.
// All failures land on the result or the ledger, never abort the batch.
func (r *VideoRunner) processSource(
	ctx context.Context,
	store *scorecache.Store,
	ledger *jobstate.Ledger,
	paths outputs.VideoPaths,
	source string,
	globalAcc *selection.Accumulator,
) outputs.SourceResult {
	result := outputs.SourceResult{Source: source}
	logger := r.logger.With(logging.String("source", filepath.Base(source)))

	probe, err := r.tool.Probe(ctx, source)
	if err != nil {
		result.Error = err.Error()
		_ = ledger.RecordFailure(jobstate.StepSplit, source, err)
		logger.Warn("probe failed", logging.Error(err))
		return result
	}

	segments, err := r.tool.Split(ctx, source, paths.SourceTempDir(source),
		float64(r.cfg.Video.MinClipSeconds), float64(r.cfg.Video.MaxClipSeconds))
	if err != nil {
		result.Error = err.Error()
		_ = ledger.RecordFailure(jobstate.StepSplit, source, err)
		logger.Warn("split failed", logging.Error(err))
		return result
	}
	_ = ledger.RecordOK(jobstate.StepSplit, source)
	result.TotalClips = len(segments)

	clips := make([]selection.Clip, 0, len(segments))
	records := make([]outputs.ClipRecord, 0, len(segments))
	recordIndex := make(map[string]int, len(segments))
	speech := make(map[string]*bool, len(segments))
	for _, segment := range segments {
		rec, clip := r.scoreClip(ctx, store, paths, source, segment)
		if rec.Error != "" {
			_ = ledger.RecordFailure(jobstate.StepScore, segment.Path, fmt.Errorf("%s", rec.Error))
		} else {
			_ = ledger.RecordOK(jobstate.StepScore, segment.Path)
			speech[segment.Path] = r.detectSpeech(ctx, paths, source, segment, logger)
		}
		if rec.Score != nil {
			if sidecarErr := outputs.WriteManifest(paths.ScoreFile(source, segment.Index), rec); sidecarErr != nil {
				logger.Warn("score sidecar write failed",
					logging.String("clip", segment.Path), logging.Error(sidecarErr))
			}
		}
		recordIndex[segment.Path] = len(records)
		records = append(records, rec)
		clips = append(clips, clip)
	}

	opts := selection.VideoOptions{
		MaxSourceSeconds:    probe.Duration,
		TargetDigestSeconds: float64(r.cfg.Video.TargetDigestSeconds),
		MaxSelectedClips:    r.cfg.Video.MaxSelectedClips,
		Dedupe:              r.cfg.Video.Dedupe,
		HammingThreshold:    r.cfg.Video.DedupeHammingThreshold,
	}
	acc := globalAcc
	if r.cfg.Video.Dedupe && acc == nil {
		acc = selection.NewAccumulator(r.cfg.Video.DedupeHammingThreshold)
	}
	selected := selection.SelectClips(clips, opts, acc)
	_ = ledger.RecordOK(jobstate.StepSelect, source)

	result.ScoredClips = selected.ScoredClips
	result.RemovedDuplicates = selected.RemovedDuplicates
	result.TotalSelectedSeconds = selected.TotalSelectedSeconds
	result.ScoreStats = selected.Stats

	// Publish and concatenate in timeline order so the digest plays
	// chronologically no matter where each clip landed in the score walk.
	publish := append([]selection.Clip(nil), selected.Selected...)
	sort.Slice(publish, func(i, j int) bool { return publish[i].Index < publish[j].Index })

	selectedPaths := make(map[string]struct{}, len(publish))
	var digestClips []string
	for _, clip := range publish {
		selectedPaths[clip.Path] = struct{}{}
		records[recordIndex[clip.Path]].Selected = true

		dest := filepath.Join(paths.SourceClipsDir(source), filepath.Base(clip.Path))
		if copyErr := fileutil.CopyFileVerified(clip.Path, dest); copyErr != nil {
			logger.Warn("failed to copy clip", logging.String("clip", clip.Path), logging.Error(copyErr))
			_ = ledger.RecordFailure(jobstate.StepSelect, clip.Path, copyErr)
			records[recordIndex[clip.Path]].Error = copyErr.Error()
			dest = ""
		}
		digestClips = append(digestClips, clip.Path)
		result.SelectedClips = append(result.SelectedClips, outputs.SelectedClip{
			Path:        clip.Path,
			Index:       clip.Index,
			Duration:    clip.Duration,
			Score:       clip.Score,
			Fingerprint: clip.Fingerprint.Hex(),
			HasSpeech:   speech[clip.Path],
			Destination: dest,
		})
	}
	result.Clips = records

	if r.cfg.Video.DeleteSplitFiles {
		for _, segment := range segments {
			if _, keep := selectedPaths[segment.Path]; !keep {
				_ = os.Remove(segment.Path)
			}
		}
	}

	if len(digestClips) == 0 {
		logger.Info("no clips selected, skipping digest")
		return result
	}
	wantRootDigest := r.cfg.Video.Preset != config.PresetClipsOnly
	if !wantRootDigest && !r.cfg.Video.ConcatInDigestFolder {
		logger.Info("clips_only preset, skipping digest")
		return result
	}

	listPath := paths.ConcatList(source)
	if err := media.WriteConcatList(listPath, digestClips); err != nil {
		result.Error = err.Error()
		_ = ledger.RecordFailure(jobstate.StepConcat, source, err)
		return result
	}
	if wantRootDigest {
		digestPath := paths.Digest(source)
		if err := r.tool.Concat(ctx, listPath, digestPath); err != nil {
			result.Error = err.Error()
			_ = ledger.RecordFailure(jobstate.StepConcat, source, err)
			logger.Warn("concat failed", logging.Error(err))
			return result
		}
		result.DigestPath = digestPath
	}
	if r.cfg.Video.ConcatInDigestFolder {
		// Additional digest.mp4 beside the published clips.
		if err := r.tool.Concat(ctx, listPath, paths.FolderDigest(source)); err != nil {
			result.Error = err.Error()
			_ = ledger.RecordFailure(jobstate.StepConcat, paths.FolderDigest(source), err)
			logger.Warn("folder digest concat failed", logging.Error(err))
			return result
		}
	}
	_ = ledger.RecordOK(jobstate.StepConcat, source)

	logger.Info("digest complete",
		logging.Int("selected", len(result.SelectedClips)),
		logging.Float64("seconds", result.TotalSelectedSeconds))
	return result
}

// scoreClip extracts the clip's midpoint frame and produces its record and
// selection candidate.
func (r *VideoRunner) scoreClip(
	ctx context.Context,
	store *scorecache.Store,
	paths outputs.VideoPaths,
	source string,
	segment media.Segment,
) (outputs.ClipRecord, selection.Clip) {
	rec := outputs.ClipRecord{Path: segment.Path, Index: segment.Index, Duration: segment.Duration}
	clip := selection.Clip{
		Path:     segment.Path,
		Source:   source,
		Index:    segment.Index,
		Duration: segment.Duration,
	}

	framePath := filepath.Join(paths.SourceTempDir(source), "frames",
		fmt.Sprintf("frame_%04d.jpg", segment.Index))
	if err := r.tool.ExtractFrame(ctx, segment.Path, segment.Duration, framePath); err != nil {
		rec.Error = err.Error()
		clip.Err = err
		return rec, clip
	}

	img, err := imaging.Decode(framePath)
	if err != nil {
		rec.Error = err.Error()
		clip.Err = err
		return rec, clip
	}
	bounds := img.Bounds()
	rec.Width = bounds.Dx()
	rec.Height = bounds.Dy()
	rec.Orientation = imaging.Orientation(bounds.Dx(), bounds.Dy())
	fp := fingerprint.Compute(img)
	metrics := quality.Analyze(img)
	rec.Quality = &metrics
	clip.Fingerprint = fp
	clip.Brightness = metrics.Brightness

	if cached, cacheErr := store.Get(ctx, segment.Path, fp.Hex()); cacheErr == nil && cached != nil {
		rec.Score = &cached.Score
		rec.Analysis = cached.Analysis
		rec.FromCache = true
		clip.Score = cached.Score
		clip.HasScore = true
		return rec, clip
	}

	payload, err := imaging.EncodeBase64(framePath)
	if err != nil {
		rec.Error = err.Error()
		clip.Err = err
		return rec, clip
	}
	analysis, err := r.judge.Judge(ctx, judge.BuildPrompt(&metrics), payload)
	if err != nil {
		rec.Error = err.Error()
		clip.Err = err
		return rec, clip
	}

	final := score.ApplyQualityCorrections(analysis.Score, metrics, bounds.Dx(), bounds.Dy())
	final = score.ApplyRiskPenalties(final, analysis.Risks)
	rec.Score = &final
	rec.Analysis = analysis
	clip.Score = final
	clip.HasScore = true

	if upsertErr := store.Upsert(ctx, scorecache.Record{
		Path:        segment.Path,
		Fingerprint: fp.Hex(),
		Score:       final,
		Analysis:    analysis,
		Quality:     &metrics,
	}); upsertErr != nil {
		r.logger.Warn("cache write failed", logging.String("clip", segment.Path), logging.Error(upsertErr))
	}
	return rec, clip
}

// detectSpeech extracts the clip audio and runs the energy detector. Any
// failure here is informational only.
func (r *VideoRunner) detectSpeech(
	ctx context.Context,
	paths outputs.VideoPaths,
	source string,
	segment media.Segment,
	logger *slog.Logger,
) *bool {
	wavPath := filepath.Join(paths.SourceTempDir(source), "audio",
		fmt.Sprintf("clip_%04d.wav", segment.Index))
	if err := r.tool.ExtractAudio(ctx, segment.Path, wavPath); err != nil {
		logger.Debug("audio extract failed", logging.String("clip", segment.Path), logging.Error(err))
		return nil
	}
	analysis, err := audio.AnalyzeWAV(wavPath)
	if err != nil {
		logger.Debug("audio analysis failed", logging.String("clip", segment.Path), logging.Error(err))
		return nil
	}
	return &analysis.HasSpeech
}
