package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"reelpick/internal/config"
	"reelpick/internal/fileutil"
	"reelpick/internal/fingerprint"
	"reelpick/internal/imaging"
	"reelpick/internal/judge"
	"reelpick/internal/logging"
	"reelpick/internal/outputs"
	"reelpick/internal/quality"
	"reelpick/internal/score"
	"reelpick/internal/scorecache"
	"reelpick/internal/selection"
)

// PhotoRunner executes one photo curation batch.
type PhotoRunner struct {
	cfg    *config.Config
	judge  Judge
	logger *slog.Logger
}

// NewPhotoRunner wires a photo batch runner.
func NewPhotoRunner(cfg *config.Config, judgeClient Judge, logger *slog.Logger) *PhotoRunner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &PhotoRunner{cfg: cfg, judge: judgeClient, logger: logging.WithComponent(logger, "photos")}
}

// PhotoRequest names the inputs of one photo batch.
type PhotoRequest struct {
	InputDir    string
	OutputDir   string
	TargetCount int
}

// Run scores every image under InputDir, resuming from the cache where the
// fingerprint still matches, then selects up to TargetCount photos and
// copies them into the output layout. Per-item failures are captured on the
// manifest record; the batch always completes.
func (r *PhotoRunner) Run(ctx context.Context, req PhotoRequest) (*outputs.PhotoManifest, error) {
	if req.TargetCount <= 0 {
		return nil, fmt.Errorf("photo run: target count must be positive")
	}
	release, err := lockOutputDir(req.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("photo run: %w", err)
	}
	defer release()

	paths := outputs.NewPhotoPaths(req.OutputDir)
	images, err := imaging.CollectImages(req.InputDir)
	if err != nil {
		return nil, fmt.Errorf("photo run: %w", err)
	}

	store, err := scorecache.Open(paths.CachePath())
	if err != nil {
		return nil, fmt.Errorf("photo run: %w", err)
	}
	defer store.Close()

	manifest := &outputs.PhotoManifest{
		BatchID:     uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		InputDir:    req.InputDir,
		OutputDir:   req.OutputDir,
		TargetCount: req.TargetCount,
		TotalItems:  len(images),
	}
	r.logger.Info("starting photo batch",
		logging.String("batch_id", manifest.BatchID),
		logging.Int("inputs", len(images)))

	records := make([]outputs.PhotoRecord, len(images))
	for i, path := range images {
		records[i] = r.scorePhoto(ctx, store, path)
		if records[i].Score != nil {
			if sidecarErr := outputs.WriteManifest(paths.ScoreFile(path), records[i]); sidecarErr != nil {
				r.logger.Warn("score sidecar write failed",
					logging.String("path", path), logging.Error(sidecarErr))
			}
		}
	}

	candidates := make([]selection.Candidate, 0, len(records))
	index := make(map[string]int, len(records))
	for i, rec := range records {
		index[rec.Path] = i
		cand := selection.Candidate{Path: rec.Path}
		if rec.Error != "" {
			cand.Err = fmt.Errorf("%s", rec.Error)
			manifest.ErrorCount++
		}
		if rec.Score != nil {
			cand.Score = *rec.Score
			cand.HasScore = true
		}
		if rec.Fingerprint != "" {
			if fp, parseErr := fingerprint.ParseHex(rec.Fingerprint); parseErr == nil {
				cand.Fingerprint = fp
			}
		}
		candidates = append(candidates, cand)
	}

	result := selection.SelectPhotos(candidates, selection.PhotoOptions{
		TargetCount:      req.TargetCount,
		Dedupe:           r.cfg.Photos.Dedupe,
		HammingThreshold: r.cfg.Photos.HammingThreshold,
	})
	manifest.RemovedDuplicates = result.RemovedDuplicates
	manifest.SelectedCount = len(result.Selected)

	for rank, cand := range result.Selected {
		rec := &records[index[cand.Path]]
		rec.Selected = true
		rec.Destination = paths.SelectedPhoto(rank+1, cand.Path)
		if copyErr := fileutil.CopyFileVerified(cand.Path, rec.Destination); copyErr != nil {
			rec.Selected = false
			rec.Destination = ""
			rec.Error = copyErr.Error()
			manifest.ErrorCount++
			manifest.SelectedCount--
			r.logger.Warn("failed to copy selected photo",
				logging.String("path", cand.Path), logging.Error(copyErr))
		}
	}
	manifest.Items = records

	if err := outputs.WriteManifest(paths.Manifest(), manifest); err != nil {
		return nil, fmt.Errorf("photo run: %w", err)
	}
	r.logger.Info("photo batch complete",
		logging.Int("selected", manifest.SelectedCount),
		logging.Int("duplicates_removed", manifest.RemovedDuplicates),
		logging.Int("errors", manifest.ErrorCount))
	return manifest, nil
}

// scorePhoto produces the manifest record for one image: fingerprint and
// quality always, then either a cache hit or a judge round trip followed by
// the two penalty passes.
func (r *PhotoRunner) scorePhoto(ctx context.Context, store *scorecache.Store, path string) outputs.PhotoRecord {
	rec := outputs.PhotoRecord{Path: path}

	img, err := imaging.Decode(path)
	if err != nil {
		rec.Error = err.Error()
		r.logger.Warn("undecodable image", logging.String("path", path), logging.Error(err))
		return rec
	}
	bounds := img.Bounds()
	if info, infoErr := imaging.ReadInfo(path); infoErr == nil {
		rec.Width = info.Width
		rec.Height = info.Height
		rec.Orientation = info.Orientation
	}
	fp := fingerprint.Compute(img)
	metrics := quality.Analyze(img)
	rec.Fingerprint = fp.Hex()
	rec.Quality = &metrics

	if cached, cacheErr := store.Get(ctx, path, fp.Hex()); cacheErr == nil && cached != nil {
		rec.Score = &cached.Score
		rec.Analysis = cached.Analysis
		rec.FromCache = true
		r.logger.Debug("score cache hit", logging.String("path", path))
		return rec
	}

	payload, err := imaging.EncodeBase64(path)
	if err != nil {
		rec.Error = err.Error()
		return rec
	}
	analysis, err := r.judge.Judge(ctx, judge.BuildPrompt(&metrics), payload)
	if err != nil {
		rec.Error = err.Error()
		r.logger.Warn("judge failed", logging.String("path", path), logging.Error(err))
		return rec
	}

	final := score.ApplyQualityCorrections(analysis.Score, metrics, bounds.Dx(), bounds.Dy())
	final = score.ApplyRiskPenalties(final, analysis.Risks)
	rec.Score = &final
	rec.Analysis = analysis

	if upsertErr := store.Upsert(ctx, scorecache.Record{
		Path:        path,
		Fingerprint: fp.Hex(),
		Score:       final,
		Analysis:    analysis,
		Quality:     &metrics,
	}); upsertErr != nil {
		r.logger.Warn("cache write failed", logging.String("path", path), logging.Error(upsertErr))
	}
	return rec
}
